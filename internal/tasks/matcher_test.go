package tasks

import (
	"testing"

	"github.com/desertthunder/csvlist/internal/models"
)

func TestMatch(t *testing.T) {
	req := models.Request{Row: 1, Artist: "Queen", Song: "Bohemian Rhapsody"}

	t.Run("Empty candidates is no results", func(t *testing.T) {
		got := Match(req, nil)
		if got.Matched {
			t.Fatal("expected no match")
		}
		if got.Reason != models.ReasonNoResults {
			t.Errorf("expected ReasonNoResults, got %v", got.Reason)
		}
		if got.Request != req {
			t.Errorf("expected request to be carried, got %+v", got.Request)
		}
	})

	tests := []struct {
		name      string
		song      string
		candidate models.Candidate
		want      bool
	}{
		{
			name:      "exact title",
			song:      "Bohemian Rhapsody",
			candidate: models.Candidate{ID: "t1", Title: "Bohemian Rhapsody", Artist: "Queen"},
			want:      true,
		},
		{
			name:      "case differs",
			song:      "bohemian RHAPSODY",
			candidate: models.Candidate{ID: "t1", Title: "Bohemian Rhapsody", Artist: "Queen"},
			want:      true,
		},
		{
			name:      "candidate contains requested",
			song:      "Song",
			candidate: models.Candidate{ID: "t2", Title: "Song (Remastered)", Artist: "Band"},
			want:      true,
		},
		{
			name:      "requested contains candidate",
			song:      "Song (Remastered 2011)",
			candidate: models.Candidate{ID: "t3", Title: "Song", Artist: "Band"},
			want:      true,
		},
		{
			name:      "artist is ignored",
			song:      "Yesterday",
			candidate: models.Candidate{ID: "t4", Title: "Yesterday", Artist: "Someone Else Entirely"},
			want:      true,
		},
		{
			name:      "non-ascii lowercasing",
			song:      "ÉTÉ",
			candidate: models.Candidate{ID: "t5", Title: "été indien", Artist: "Joe Dassin"},
			want:      true,
		},
		{
			name:      "disjoint titles",
			song:      "Bohemian Rhapsody",
			candidate: models.Candidate{ID: "t6", Title: "Under Pressure", Artist: "Queen"},
			want:      false,
		},
		{
			name:      "partial word overlap is not containment",
			song:      "Love Song",
			candidate: models.Candidate{ID: "t7", Title: "Song of Love", Artist: "X"},
			want:      false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := models.Request{Row: 1, Artist: "Requested Artist", Song: tc.song}
			got := Match(r, []models.Candidate{tc.candidate})

			if got.Matched != tc.want {
				t.Fatalf("Match(%q, %q) matched = %v, want %v", tc.song, tc.candidate.Title, got.Matched, tc.want)
			}

			if tc.want {
				if got.Reason != models.ReasonMatched {
					t.Errorf("expected ReasonMatched, got %v", got.Reason)
				}
				if got.TrackID != tc.candidate.ID || got.Title != tc.candidate.Title || got.Artist != tc.candidate.Artist {
					t.Errorf("expected candidate fields to be carried, got %+v", got)
				}
				return
			}

			if got.Reason != models.ReasonBadMatch {
				t.Errorf("expected ReasonBadMatch, got %v", got.Reason)
			}
			if got.TrackID != "" {
				t.Errorf("expected no track id on rejection, got %s", got.TrackID)
			}
			if got.Title != tc.candidate.Title || got.Artist != tc.candidate.Artist {
				t.Errorf("expected rejected candidate in diagnostics, got %q by %q", got.Title, got.Artist)
			}
		})
	}

	t.Run("Only the top candidate is inspected", func(t *testing.T) {
		candidates := []models.Candidate{
			{ID: "wrong", Title: "Killer Queen", Artist: "Queen"},
			{ID: "right", Title: "Bohemian Rhapsody", Artist: "Queen"},
		}

		got := Match(req, candidates)
		if got.Matched {
			t.Fatalf("expected rejection based on the first candidate, got match %s", got.TrackID)
		}
		if got.Title != "Killer Queen" {
			t.Errorf("expected diagnostic for the first candidate, got %q", got.Title)
		}
	})

	t.Run("Top candidate wins over later ones", func(t *testing.T) {
		candidates := []models.Candidate{
			{ID: "first", Title: "Bohemian Rhapsody - Live", Artist: "Queen"},
			{ID: "second", Title: "Bohemian Rhapsody", Artist: "Queen"},
		}

		if got := Match(req, candidates); got.TrackID != "first" {
			t.Errorf("expected first candidate, got %s", got.TrackID)
		}
	})
}

// package models defines the data model for an import run
package models

import (
	"fmt"
	"time"
)

// Request is a single (artist, song) pair read from the input table.
type Request struct {
	Row    int    `json:"row" yaml:"row"` // 1-based data row, header excluded
	Artist string `json:"artist" yaml:"artist"`
	Song   string `json:"song" yaml:"song"`
}

func (r Request) String() string {
	return fmt.Sprintf("%s - %s", r.Artist, r.Song)
}

// Candidate is a track returned by a catalog search, in the service's relevance order.
type Candidate struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"` // primary artist
}

// Reason explains an [Outcome].
type Reason int

const (
	ReasonMatched Reason = iota
	ReasonNoResults
	ReasonBadMatch
	ReasonSearchError
)

func (r Reason) String() string {
	switch r {
	case ReasonMatched:
		return "matched"
	case ReasonNoResults:
		return "no_results"
	case ReasonBadMatch:
		return "bad_match"
	case ReasonSearchError:
		return "search_error"
	default:
		return "unknown"
	}
}

// MarshalText implements [encoding.TextMarshaler].
func (r Reason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Outcome is the match decision for one [Request].
//
// For [ReasonBadMatch], Title and Artist describe the rejected candidate and TrackID is empty.
type Outcome struct {
	Request Request `json:"request" yaml:"request"`
	Matched bool    `json:"matched" yaml:"matched"`
	TrackID string  `json:"track_id,omitempty" yaml:"track_id,omitempty"`
	Title   string  `json:"title,omitempty" yaml:"title,omitempty"`
	Artist  string  `json:"artist,omitempty" yaml:"artist,omitempty"`
	Reason  Reason  `json:"reason" yaml:"reason"`
	Err     error   `json:"-" yaml:"-"`
}

// Matched builds an accepted [Outcome].
func Matched(req Request, c Candidate) Outcome {
	return Outcome{Request: req, Matched: true, TrackID: c.ID, Title: c.Title, Artist: c.Artist, Reason: ReasonMatched}
}

// NoMatch builds a rejected [Outcome] with the given reason.
func NoMatch(req Request, reason Reason) Outcome {
	return Outcome{Request: req, Reason: reason}
}

// Playlist is a playlist created on the remote service.
type Playlist struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Public      bool   `json:"public" yaml:"public"`
	URL         string `json:"url,omitempty" yaml:"url,omitempty"`
	TrackCount  int    `json:"track_count" yaml:"track_count"`
}

// RunSummary reports the result of an import run.
//
// Matched and Unmatched partition the input: their lengths sum to Total and, merged by Row, they
// reproduce the input order.
type RunSummary struct {
	RunID       string        `json:"run_id" yaml:"run_id"`
	Total       int           `json:"total" yaml:"total"`
	Matched     []Request     `json:"matched" yaml:"matched"`
	Unmatched   []Request     `json:"unmatched" yaml:"unmatched"`
	Outcomes    []Outcome     `json:"outcomes" yaml:"outcomes"`
	Playlist    *Playlist     `json:"playlist,omitempty" yaml:"playlist,omitempty"`
	Appended    int           `json:"appended" yaml:"appended"`
	DryRun      bool          `json:"dry_run" yaml:"dry_run"`
	Duration    time.Duration `json:"duration" yaml:"duration"`
	PopulateErr error         `json:"-" yaml:"-"`
}

// Record appends an outcome, keeping Matched and Unmatched in input order.
func (s *RunSummary) Record(o Outcome) {
	s.Outcomes = append(s.Outcomes, o)
	if o.Matched {
		s.Matched = append(s.Matched, o.Request)
	} else {
		s.Unmatched = append(s.Unmatched, o.Request)
	}
}

// TrackIDs returns the matched track identifiers in input order, duplicates included.
func (s *RunSummary) TrackIDs() []string {
	ids := make([]string, 0, len(s.Matched))
	for _, o := range s.Outcomes {
		if o.Matched {
			ids = append(ids, o.TrackID)
		}
	}
	return ids
}

// MatchPercentage is the share of processed requests that matched.
func (s *RunSummary) MatchPercentage() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(len(s.Matched)) / float64(s.Total) * 100
}

// Count returns how many outcomes carry the given reason.
func (s *RunSummary) Count(reason Reason) int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Reason == reason {
			n++
		}
	}
	return n
}

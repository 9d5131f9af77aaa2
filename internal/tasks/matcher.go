package tasks

import (
	"strings"

	"github.com/desertthunder/csvlist/internal/models"
)

// Match decides whether the top-ranked candidate is an acceptable match for req.
//
// Only candidates[0] is inspected. The candidate is accepted when either lowercased title contains the other;
// the artist is carried for diagnostics and never takes part in the decision.
func Match(req models.Request, candidates []models.Candidate) models.Outcome {
	if len(candidates) == 0 {
		return models.NoMatch(req, models.ReasonNoResults)
	}

	top := candidates[0]
	if titlesOverlap(req.Song, top.Title) {
		return models.Matched(req, top)
	}

	outcome := models.NoMatch(req, models.ReasonBadMatch)
	outcome.Title = top.Title
	outcome.Artist = top.Artist
	return outcome
}

func titlesOverlap(requested, found string) bool {
	a, b := normalizeTitle(requested), normalizeTitle(found)
	return strings.Contains(b, a) || strings.Contains(a, b)
}

func normalizeTitle(s string) string {
	return strings.ToLower(s)
}

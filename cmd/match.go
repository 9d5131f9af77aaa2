package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/csvlist/internal/models"
	"github.com/desertthunder/csvlist/internal/services"
	"github.com/desertthunder/csvlist/internal/shared"
	"github.com/urfave/cli/v3"
)

// matchResult is the JSON shape printed by `csvlist match --json`.
type matchResult struct {
	Query      string             `json:"query"`
	Candidates []models.Candidate `json:"candidates"`
	Outcome    models.Outcome     `json:"outcome"`
	Error      string             `json:"error,omitempty"`
}

// Match searches once for a single artist and song and prints the candidates and the match decision.
func (r *Runner) Match(ctx context.Context, cmd *cli.Command) error {
	artist := strings.TrimSpace(cmd.String("artist"))
	song := strings.TrimSpace(cmd.String("song"))
	if artist == "" || song == "" {
		return fmt.Errorf("%w: --artist and --song are required", shared.ErrMissingArgument)
	}

	engine, err := r.newEngine(engineOpts{dryRun: true})
	if err != nil {
		return err
	}

	req := models.Request{Row: 1, Artist: artist, Song: song}
	candidates, outcome := engine.Lookup(ctx, req, cmd.Int("limit"))
	if reauthed, authErr := r.handleSpotifyAuthError(ctx, outcome.Err); reauthed {
		if authErr != nil {
			return authErr
		}
		candidates, outcome = engine.Lookup(ctx, req, cmd.Int("limit"))
	}

	if cmd.Bool("json") {
		res := matchResult{Query: services.SearchQuery(artist, song), Candidates: candidates, Outcome: outcome}
		if res.Candidates == nil {
			res.Candidates = []models.Candidate{}
		}
		if outcome.Err != nil {
			res.Error = outcome.Err.Error()
		}
		return r.writeJSON(res, cmd.Bool("pretty"))
	}

	r.writePlainHeader(req.String())
	if outcome.Err != nil {
		r.writePlain("✗ Search failed: %v\n", outcome.Err)
		return nil
	}

	if len(candidates) == 0 {
		r.writePlain("No results\n")
	}
	for i, c := range candidates {
		marker := " "
		if i == 0 {
			marker = "→"
		}
		r.writePlain("%s %d. %s - %s (%s)\n", marker, i+1, c.Artist, c.Title, c.ID)
	}

	r.writePlain("\n")
	if outcome.Matched {
		r.writePlain("✓ Matched: %s - %s\n", outcome.Artist, outcome.Title)
	} else {
		r.writePlain("✗ No match (%s)\n", outcome.Reason)
	}
	return nil
}

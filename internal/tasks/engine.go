package tasks

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/csvlist/internal/models"
	"github.com/desertthunder/csvlist/internal/services"
	"github.com/desertthunder/csvlist/internal/shared"
)

// DefaultSearchLimit is the number of candidates requested per search.
const DefaultSearchLimit = 3

// Recorder observes an import run. Implemented by metrics.Collector.
type Recorder interface {
	ObserveOutcome(o models.Outcome)
	ObserveBatch(size int, err error)
	ObserveRun(s *models.RunSummary)
}

type nopRecorder struct{}

func (nopRecorder) ObserveOutcome(models.Outcome) {}
func (nopRecorder) ObserveBatch(int, error)       {}
func (nopRecorder) ObserveRun(*models.RunSummary) {}

// ImportOptions describes a single import run.
type ImportOptions struct {
	Requests    []models.Request
	Name        string
	Description string
	Public      bool
	DryRun      bool // search and match only
	SearchLimit int  // defaults to [DefaultSearchLimit]
}

// ImportEngine runs the search, match, and populate sequence for a list of requests.
type ImportEngine struct {
	catalog   services.Catalog
	populator *Populator
	pacer     Pacer
	logger    *log.Logger
	recorder  Recorder
}

// NewImportEngine creates an [ImportEngine]. pacer is applied after every search call.
func NewImportEngine(catalog services.Catalog, populator *Populator, pacer Pacer, logger *log.Logger) *ImportEngine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &ImportEngine{
		catalog:   catalog,
		populator: populator,
		pacer:     pacerOrDefault(pacer),
		logger:    logger,
		recorder:  nopRecorder{},
	}
}

// SetRecorder registers r with the engine and its populator.
func (e *ImportEngine) SetRecorder(r Recorder) {
	if r == nil {
		r = nopRecorder{}
	}
	e.recorder = r
	if e.populator != nil {
		e.populator.SetRecorder(r)
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *ImportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Lookup runs one catalog search for req and matches the result.
//
// Search failures are logged and returned as a [models.ReasonSearchError] outcome, never as an error.
func (e *ImportEngine) Lookup(ctx context.Context, req models.Request, limit int) ([]models.Candidate, models.Outcome) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	l := e.logger.With("row", req.Row, "artist", req.Artist, "song", req.Song)

	candidates, err := e.catalog.SearchTracks(ctx, services.SearchQuery(req.Artist, req.Song), limit)
	if err != nil {
		outcome := models.NoMatch(req, models.ReasonSearchError)
		outcome.Err = fmt.Errorf("%w: %w", shared.ErrSearch, err)
		l.Warn("Error searching", "err", err)
		return nil, outcome
	}

	outcome := Match(req, candidates)
	switch outcome.Reason {
	case models.ReasonNoResults:
		l.Warn("No results found")
	case models.ReasonBadMatch:
		l.Warn("Potential bad match", "found_artist", outcome.Artist, "found_title", outcome.Title)
	default:
		l.Debug("Matched", "track", outcome.TrackID, "title", outcome.Title)
	}
	return candidates, outcome
}

// Run performs an import.
//
// Unless opts.DryRun is set the playlist is created first; a creation failure ends the run and is returned
// with an empty summary (Total 0, no playlist). Each request then gets exactly one search followed by one
// pause. Matched ids are appended once all requests are processed; an append failure is stored on
// [models.RunSummary.PopulateErr] and does not make Run fail. An interrupted run returns a summary covering
// the rows searched so far.
func (e *ImportEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, opts ImportOptions) (*models.RunSummary, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}
	if !opts.DryRun && e.populator == nil {
		return nil, fmt.Errorf("%w: playlist service not initialized", shared.ErrServiceUnavailable)
	}

	start := time.Now()
	total := len(opts.Requests)
	summary := &models.RunSummary{
		RunID:     shared.GenerateID(),
		DryRun:    opts.DryRun,
		Matched:   []models.Request{},
		Unmatched: []models.Request{},
	}
	finish := func() {
		summary.Duration = time.Since(start)
		e.recorder.ObserveRun(summary)
	}

	l := shared.WithLogger(e.logger, "run", summary.RunID)
	l.Info("Starting import", "rows", total, "dry_run", opts.DryRun)

	if !opts.DryRun {
		e.sendProgress(progress, creatingPlaylistUpdate(opts.Name))
		pl, err := e.populator.Create(ctx, opts.Name, opts.Description, opts.Public)
		if err != nil {
			l.Error("Failed to create playlist", "err", err)
			finish()
			return summary, err
		}
		summary.Playlist = pl
		e.sendProgress(progress, createPlaylistUpdate(pl))
	}

	// Total counts processed rows only, so Matched and Unmatched always partition it.
	for i, req := range opts.Requests {
		_, outcome := e.Lookup(ctx, req, opts.SearchLimit)
		summary.Record(outcome)
		summary.Total++
		e.recorder.ObserveOutcome(outcome)
		e.sendProgress(progress, searchTrackUpdate(i+1, total, outcome))

		if err := e.pacer.Pause(ctx, i+1); err != nil {
			finish()
			return summary, err
		}
	}

	ids := summary.TrackIDs()
	switch {
	case len(ids) == 0:
		l.Warn("No matches found, skipping playlist population")
	case opts.DryRun:
		l.Info("Dry run, skipping playlist population", "matches", len(ids))
	default:
		batches := (len(ids) + e.populator.BatchSize() - 1) / e.populator.BatchSize()
		e.sendProgress(progress, addTracksUpdate(len(ids), batches))

		n, err := e.populator.Populate(ctx, summary.Playlist.ID, ids)
		summary.Appended = n
		summary.Playlist.TrackCount = n
		if err != nil {
			summary.PopulateErr = err
			l.Error("Playlist population aborted", "appended", n, "of", len(ids), "err", err)
		}
	}

	finish()
	l.Info("Import finished", "matched", len(summary.Matched), "unmatched", len(summary.Unmatched), "duration", summary.Duration)
	e.sendProgress(progress, doneUpdate(summary))
	return summary, nil
}

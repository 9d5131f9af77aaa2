package tasks

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/csvlist/internal/models"
	"github.com/desertthunder/csvlist/internal/services"
	"github.com/desertthunder/csvlist/internal/shared"
)

// BatchError reports the append call that aborted [Populator.Populate].
type BatchError struct {
	Index  int // 1-based batch number
	Offset int // position of the batch's first id in the full sequence
	Size   int
	Err    error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%v: batch %d (items %d-%d): %v",
		shared.ErrAppendItems, e.Index, e.Offset+1, e.Offset+e.Size, e.Err)
}

func (e *BatchError) Unwrap() []error {
	return []error{shared.ErrAppendItems, e.Err}
}

// Populator creates a playlist and fills it in order-preserving batches.
type Populator struct {
	playlists services.PlaylistService
	pacer     Pacer
	batchSize int
	logger    *log.Logger
	recorder  Recorder
}

// NewPopulator returns a [Populator] that pauses with pacer after every append call.
//
// batchSize is clamped to 1..[shared.MaxBatchSize]; zero selects the maximum.
func NewPopulator(playlists services.PlaylistService, pacer Pacer, batchSize int, logger *log.Logger) *Populator {
	if batchSize <= 0 || batchSize > shared.MaxBatchSize {
		batchSize = shared.MaxBatchSize
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Populator{
		playlists: playlists,
		pacer:     pacerOrDefault(pacer),
		batchSize: batchSize,
		logger:    logger,
		recorder:  nopRecorder{},
	}
}

// SetRecorder registers r to observe every append call.
func (p *Populator) SetRecorder(r Recorder) {
	if r == nil {
		r = nopRecorder{}
	}
	p.recorder = r
}

// BatchSize reports the effective batch size.
func (p *Populator) BatchSize() int {
	return p.batchSize
}

// Create makes a new playlist owned by the authenticated user.
//
// Any failure is wrapped in [shared.ErrCreatePlaylist] and leaves no playlist to populate.
func (p *Populator) Create(ctx context.Context, name, description string, public bool) (*models.Playlist, error) {
	ownerID, err := p.playlists.CurrentUserID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to resolve current user: %w", shared.ErrCreatePlaylist, err)
	}

	pl, err := p.playlists.CreatePlaylist(ctx, ownerID, name, description, public)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrCreatePlaylist, err)
	}
	if pl == nil || pl.ID == "" {
		return nil, fmt.Errorf("%w: service returned no playlist id", shared.ErrCreatePlaylist)
	}

	p.logger.Info("Created playlist", "id", pl.ID, "name", pl.Name, "visibility", shared.VisibilityString(pl.Public))
	return pl, nil
}

// Populate appends trackIDs to the playlist, one call per batch, pausing after each call whether or not it
// succeeded.
//
// The first failing batch aborts the operation with a [*BatchError]; batches before it stay committed. The
// returned count is the number of ids committed.
func (p *Populator) Populate(ctx context.Context, playlistID string, trackIDs []string) (int, error) {
	if playlistID == "" {
		return 0, fmt.Errorf("%w: playlist id is required", shared.ErrMissingArgument)
	}

	batches := Batches(trackIDs, p.batchSize)
	committed := 0

	for i, batch := range batches {
		err := p.playlists.AddItems(ctx, playlistID, batch)
		p.recorder.ObserveBatch(len(batch), err)

		if err != nil {
			berr := &BatchError{Index: i + 1, Offset: committed, Size: len(batch), Err: err}
			p.logger.Error("Failed to add tracks to playlist", "playlist", playlistID, "batch", i+1, "size", len(batch), "err", err)
			if perr := p.pacer.Pause(ctx, i+1); perr != nil {
				p.logger.Debug("Pause interrupted", "err", perr)
			}
			return committed, berr
		}

		committed += len(batch)
		p.logger.Debug("Added batch", "playlist", playlistID, "batch", i+1, "of", len(batches), "size", len(batch))

		if err := p.pacer.Pause(ctx, i+1); err != nil {
			return committed, err
		}
	}

	return committed, nil
}

// Batches splits ids into contiguous chunks of at most size, preserving order. The chunks share ids' backing array.
func Batches(ids []string, size int) [][]string {
	if size <= 0 {
		size = shared.MaxBatchSize
	}

	batches := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		batches = append(batches, ids[start:end:end])
	}
	return batches
}

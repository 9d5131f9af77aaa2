package tasks

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/csvlist/internal/shared"
	tu "github.com/desertthunder/csvlist/internal/testing"
)

func TestBatches(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		size  int
		sizes []int
	}{
		{name: "empty", n: 0, size: 100, sizes: []int{}},
		{name: "single partial", n: 1, size: 100, sizes: []int{1}},
		{name: "exactly one batch", n: 100, size: 100, sizes: []int{100}},
		{name: "one over", n: 101, size: 100, sizes: []int{100, 1}},
		{name: "two hundred fifty", n: 250, size: 100, sizes: []int{100, 100, 50}},
		{name: "small batches", n: 7, size: 3, sizes: []int{3, 3, 1}},
		{name: "zero size uses max", n: 150, size: 0, sizes: []int{100, 50}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ids := tu.TrackIDs(tc.n)
			batches := Batches(ids, tc.size)

			sizes := make([]int, len(batches))
			var joined []string
			for i, b := range batches {
				sizes[i] = len(b)
				joined = append(joined, b...)
			}

			if !slices.Equal(sizes, tc.sizes) {
				t.Errorf("expected sizes %v, got %v", tc.sizes, sizes)
			}
			if !slices.Equal(joined, ids) {
				t.Error("concatenated batches do not reproduce the input")
			}
		})
	}

	t.Run("appending to a batch does not clobber the next", func(t *testing.T) {
		ids := tu.TrackIDs(4)
		batches := Batches(ids, 2)
		_ = append(batches[0], "extra")
		if batches[1][0] != "track-002" {
			t.Errorf("expected second batch untouched, got %v", batches[1])
		}
	})
}

func TestPopulator(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		t.Run("creates playlist for current user", func(t *testing.T) {
			svc := tu.NewMockService()
			p := NewPopulator(svc, NoPacing, 0, nil)

			pl, err := p.Create(ctx, "Road Trip", "from csv", false)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if pl.ID != "playlist-1" || pl.Name != "Road Trip" || pl.Public {
				t.Errorf("unexpected playlist %+v", pl)
			}
		})

		t.Run("user lookup failure", func(t *testing.T) {
			svc := tu.NewMockService()
			svc.UserErr = shared.ErrTokenExpired
			p := NewPopulator(svc, NoPacing, 0, nil)

			pl, err := p.Create(ctx, "Road Trip", "", false)
			if !errors.Is(err, shared.ErrCreatePlaylist) || !errors.Is(err, shared.ErrTokenExpired) {
				t.Errorf("expected ErrCreatePlaylist wrapping ErrTokenExpired, got %v", err)
			}
			if pl != nil {
				t.Error("expected no playlist")
			}
			if len(svc.Created) != 0 {
				t.Error("expected no creation call")
			}
		})

		t.Run("creation failure", func(t *testing.T) {
			svc := tu.NewMockService()
			svc.CreateErr = shared.ErrAPIRequest
			p := NewPopulator(svc, NoPacing, 0, nil)

			if _, err := p.Create(ctx, "Road Trip", "", false); !errors.Is(err, shared.ErrCreatePlaylist) {
				t.Errorf("expected ErrCreatePlaylist, got %v", err)
			}
		})
	})

	t.Run("Populate", func(t *testing.T) {
		t.Run("250 ids in three paced batches", func(t *testing.T) {
			svc := tu.NewMockService()
			pacer := &tu.CountingPacer{}
			p := NewPopulator(svc, pacer, shared.MaxBatchSize, nil)

			ids := tu.TrackIDs(250)
			n, err := p.Populate(ctx, "playlist-1", ids)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if n != 250 {
				t.Errorf("expected 250 committed, got %d", n)
			}

			if len(svc.Batches) != 3 {
				t.Fatalf("expected 3 append calls, got %d", len(svc.Batches))
			}
			for i, want := range []int{100, 100, 50} {
				if len(svc.Batches[i]) != want {
					t.Errorf("batch %d: expected %d ids, got %d", i+1, want, len(svc.Batches[i]))
				}
			}
			if !slices.Equal(svc.Appended(), ids) {
				t.Error("appended ids do not match input order")
			}
			if !slices.Equal(pacer.Calls, []int{1, 2, 3}) {
				t.Errorf("expected a pause after each call, got %v", pacer.Calls)
			}
		})

		t.Run("call count is ceil(n/100)", func(t *testing.T) {
			for _, n := range []int{1, 99, 100, 101, 199, 200, 201, 1000} {
				svc := tu.NewMockService()
				p := NewPopulator(svc, NoPacing, 0, nil)

				if _, err := p.Populate(ctx, "playlist-1", tu.TrackIDs(n)); err != nil {
					t.Fatalf("n=%d: unexpected error %v", n, err)
				}

				want := (n + 99) / 100
				if len(svc.Batches) != want {
					t.Errorf("n=%d: expected %d calls, got %d", n, want, len(svc.Batches))
				}
				for _, b := range svc.Batches {
					if len(b) > shared.MaxBatchSize {
						t.Errorf("n=%d: batch of %d exceeds limit", n, len(b))
					}
				}
			}
		})

		t.Run("failure at batch K issues exactly K calls", func(t *testing.T) {
			for k := 1; k <= 3; k++ {
				svc := tu.NewMockService()
				svc.FailBatch = k
				svc.AddErr = shared.ErrRateLimited
				pacer := &tu.CountingPacer{}
				p := NewPopulator(svc, pacer, 0, nil)

				n, err := p.Populate(ctx, "playlist-1", tu.TrackIDs(350))
				if len(svc.Batches) != k {
					t.Errorf("K=%d: expected %d calls, got %d", k, k, len(svc.Batches))
				}
				if n != (k-1)*100 {
					t.Errorf("K=%d: expected %d committed, got %d", k, (k-1)*100, n)
				}
				if pacer.Count() != k {
					t.Errorf("K=%d: expected pause after failed call too, got %d pauses", k, pacer.Count())
				}

				var berr *BatchError
				if !errors.As(err, &berr) {
					t.Fatalf("K=%d: expected *BatchError, got %v", k, err)
				}
				if berr.Index != k || berr.Offset != (k-1)*100 || berr.Size != 100 {
					t.Errorf("K=%d: unexpected batch error %+v", k, berr)
				}
				if !errors.Is(err, shared.ErrAppendItems) || !errors.Is(err, shared.ErrRateLimited) {
					t.Errorf("K=%d: expected error chain to hold ErrAppendItems and cause, got %v", k, err)
				}
				if !strings.Contains(err.Error(), "batch") {
					t.Errorf("K=%d: expected batch in message, got %v", k, err)
				}
			}
		})

		t.Run("empty input makes no calls", func(t *testing.T) {
			svc := tu.NewMockService()
			pacer := &tu.CountingPacer{}
			p := NewPopulator(svc, pacer, 0, nil)

			n, err := p.Populate(ctx, "playlist-1", nil)
			if err != nil || n != 0 {
				t.Errorf("expected (0, nil), got (%d, %v)", n, err)
			}
			if len(svc.Batches) != 0 || pacer.Count() != 0 {
				t.Error("expected no calls and no pauses")
			}
		})

		t.Run("missing playlist id", func(t *testing.T) {
			p := NewPopulator(tu.NewMockService(), NoPacing, 0, nil)
			if _, err := p.Populate(ctx, "", tu.TrackIDs(1)); !errors.Is(err, shared.ErrMissingArgument) {
				t.Errorf("expected ErrMissingArgument, got %v", err)
			}
		})

		t.Run("batch size is clamped", func(t *testing.T) {
			svc := tu.NewMockService()
			p := NewPopulator(svc, NoPacing, 500, nil)
			if p.BatchSize() != shared.MaxBatchSize {
				t.Errorf("expected batch size clamped to %d, got %d", shared.MaxBatchSize, p.BatchSize())
			}
		})

		t.Run("cancelled pause stops after committed batch", func(t *testing.T) {
			svc := tu.NewMockService()
			cctx, cancel := context.WithCancel(ctx)
			pacer := PacerFunc(func(ctx context.Context, call int) error {
				if call == 1 {
					cancel()
				}
				return ctx.Err()
			})
			p := NewPopulator(svc, pacer, 0, nil)

			n, err := p.Populate(cctx, "playlist-1", tu.TrackIDs(150))
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
			if n != 100 || len(svc.Batches) != 1 {
				t.Errorf("expected one committed batch, got n=%d calls=%d", n, len(svc.Batches))
			}
		})
	})
}

func TestFixedPacer(t *testing.T) {
	t.Run("waits for the delay", func(t *testing.T) {
		p := FixedPacer{Delay: 20 * time.Millisecond}
		start := time.Now()
		if err := p.Pause(context.Background(), 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
			t.Errorf("expected at least 20ms, got %v", elapsed)
		}
	})

	t.Run("returns early on cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		p := FixedPacer{Delay: time.Hour}
		if err := p.Pause(ctx, 1); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("zero delay does not wait", func(t *testing.T) {
		if err := NoPacing.Pause(context.Background(), 1); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

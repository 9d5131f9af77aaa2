package tasks

import (
	"fmt"

	"github.com/desertthunder/csvlist/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	CreatePlaylist Phase = iota
	SearchTracks
	AddTracks
	Done
)

func (p Phase) String() string {
	switch p {
	case CreatePlaylist:
		return "create_playlist"
	case SearchTracks:
		return "search_tracks"
	case AddTracks:
		return "add_tracks"
	case Done:
		return "done"
	default:
		return ""
	}
}

func creatingPlaylistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist %q...", name),
	}
}

func createPlaylistUpdate(pl *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist created: %s (ID: %s)", pl.Name, pl.ID),
		Data:    pl,
	}
}

// searchTrackUpdate carries the [models.Outcome] for the request just processed.
func searchTrackUpdate(step, total int, o models.Outcome) ProgressUpdate {
	mark := "✗"
	if o.Matched {
		mark = "✓"
	}
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s", step, total, mark, o.Request),
		Data:    o,
	}
}

func addTracksUpdate(count, batches int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    0,
		Total:   batches,
		Message: fmt.Sprintf("Adding %d tracks in %d batch(es)...", count, batches),
	}
}

func doneUpdate(s *models.RunSummary) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Matched %d of %d tracks", len(s.Matched), s.Total),
		Data:    s,
	}
}

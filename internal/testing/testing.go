// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/csvlist/internal/models"
)

// MockService is a test double for services.MusicService.
//
// Search results are keyed by the exact query string. AddItems calls are recorded in order; FailBatch makes the
// n-th call (1-based) return AddErr.
type MockService struct {
	mu sync.Mutex

	Results   map[string][]models.Candidate
	SearchErr map[string]error
	UserID    string
	UserErr   error
	CreateErr error
	AddErr    error
	FailBatch int

	Queries  []string
	Limits   []int
	Created  []models.Playlist
	Batches  [][]string
	Playlist *models.Playlist
}

// NewMockService returns a [MockService] whose playlist creation succeeds with id "playlist-1".
func NewMockService() *MockService {
	return &MockService{
		Results:   map[string][]models.Candidate{},
		SearchErr: map[string]error{},
		UserID:    "user-1",
	}
}

func (m *MockService) Name() string { return "mock" }

func (m *MockService) SearchTracks(ctx context.Context, query string, limit int) ([]models.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Queries = append(m.Queries, query)
	m.Limits = append(m.Limits, limit)
	if err, ok := m.SearchErr[query]; ok {
		return nil, err
	}
	return slices.Clone(m.Results[query]), nil
}

func (m *MockService) CurrentUserID(ctx context.Context) (string, error) {
	if m.UserErr != nil {
		return "", m.UserErr
	}
	return m.UserID, nil
}

func (m *MockService) CreatePlaylist(ctx context.Context, ownerID, name, description string, public bool) (*models.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	pl := models.Playlist{
		ID:          fmt.Sprintf("playlist-%d", len(m.Created)+1),
		Name:        name,
		Description: description,
		Public:      public,
		URL:         "https://open.spotify.com/playlist/" + name,
	}
	m.Created = append(m.Created, pl)
	m.Playlist = &pl
	return &pl, nil
}

func (m *MockService) AddItems(ctx context.Context, playlistID string, trackIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Batches = append(m.Batches, slices.Clone(trackIDs))
	if m.FailBatch > 0 && len(m.Batches) == m.FailBatch {
		if m.AddErr != nil {
			return m.AddErr
		}
		return errors.New("append failed")
	}
	if m.FailBatch == 0 && m.AddErr != nil {
		return m.AddErr
	}
	return nil
}

// Appended returns every id passed to AddItems, in call order.
func (m *MockService) Appended() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var all []string
	for _, b := range m.Batches {
		all = append(all, b...)
	}
	return all
}

// CountingPacer records each pause without sleeping.
type CountingPacer struct {
	mu    sync.Mutex
	Calls []int
}

func (p *CountingPacer) Pause(ctx context.Context, call int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = append(p.Calls, call)
	return ctx.Err()
}

// Count returns the number of recorded pauses.
func (p *CountingPacer) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}

// Requests builds numbered requests from "artist|song" pairs.
func Requests(pairs ...string) []models.Request {
	reqs := make([]models.Request, 0, len(pairs))
	for i, p := range pairs {
		artist, song, _ := strings.Cut(p, "|")
		reqs = append(reqs, models.Request{Row: i + 1, Artist: artist, Song: song})
	}
	return reqs
}

// TrackIDs returns n ids of the form "track-000".
func TrackIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("track-%03d", i)
	}
	return ids
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// FReader always returns an error on Read
type FReader struct{}

func (f *FReader) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}

// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"testing"

	"ytmb/internal/ytmusic"
)

// MockPlaylistService is a test double for tasks.PlaylistService. Each
// function field may be nil, in which case the call succeeds with zero values.
// Call counts are safe for concurrent use.
type MockPlaylistService struct {
	SearchFn         func(ctx context.Context, query string, limit int) ([]ytmusic.Candidate, error)
	CreatePlaylistFn func(ctx context.Context, title, description, privacy string) (string, error)
	AddItemsFn       func(ctx context.Context, playlistID string, videoIDs []string) (*ytmusic.AddItemsResult, error)

	mu          sync.Mutex
	SearchCalls []string
	AddedIDs    []string
}

func (m *MockPlaylistService) Search(ctx context.Context, query string, limit int) ([]ytmusic.Candidate, error) {
	m.mu.Lock()
	m.SearchCalls = append(m.SearchCalls, query)
	m.mu.Unlock()

	if m.SearchFn != nil {
		return m.SearchFn(ctx, query, limit)
	}
	return nil, nil
}

func (m *MockPlaylistService) CreatePlaylist(ctx context.Context, title, description, privacy string) (string, error) {
	if m.CreatePlaylistFn != nil {
		return m.CreatePlaylistFn(ctx, title, description, privacy)
	}
	return "PL_mock", nil
}

func (m *MockPlaylistService) AddItems(ctx context.Context, playlistID string, videoIDs []string) (*ytmusic.AddItemsResult, error) {
	m.mu.Lock()
	m.AddedIDs = append(m.AddedIDs, videoIDs...)
	m.mu.Unlock()

	if m.AddItemsFn != nil {
		return m.AddItemsFn(ctx, playlistID, videoIDs)
	}
	return &ytmusic.AddItemsResult{Added: videoIDs}, nil
}

// MockSessionSource is a test double for ytmusic.SessionSource.
type MockSessionSource struct {
	Headers     http.Header
	Err         error
	Invalidated int
}

func (m *MockSessionSource) Session(ctx context.Context) (http.Header, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Headers != nil {
		return m.Headers, nil
	}
	h := http.Header{}
	h.Set("Authorization", "Bearer test-token")
	h.Set("Content-Type", "application/json")
	return h, nil
}

func (m *MockSessionSource) Invalidate() {
	m.Invalidated++
}

// MemoryCache is an in-memory tasks.ResolutionCacher.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	PutErr  error
}

type cacheEntry struct {
	candidate ytmusic.Candidate
	score     int
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]cacheEntry)}
}

func (c *MemoryCache) Get(query string) (*ytmusic.Candidate, int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[query]
	if !ok {
		return nil, 0, false
	}
	candidate := entry.candidate
	return &candidate, entry.score, true
}

func (c *MemoryCache) Put(query string, candidate ytmusic.Candidate, score int) error {
	if c.PutErr != nil {
		return c.PutErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[query] = cacheEntry{candidate: candidate, score: score}
	return nil
}

func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
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

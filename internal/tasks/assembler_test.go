package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"ytmb/internal/match"
	"ytmb/internal/shared"
	tu "ytmb/internal/testing"
	"ytmb/internal/ytmusic"
)

func singleCandidate(query string) []ytmusic.Candidate {
	return []ytmusic.Candidate{{
		TrackID:     "vid_" + query,
		Title:       query,
		ArtistNames: []string{"Artist"},
	}}
}

func TestAssemble(t *testing.T) {
	t.Run("one outcome per query in input order", func(t *testing.T) {
		svc := &tu.MockPlaylistService{
			SearchFn: func(ctx context.Context, query string, limit int) ([]ytmusic.Candidate, error) {
				return singleCandidate(query), nil
			},
		}
		engine := NewAssembler(svc, nil, nil, AssemblerOpts{Workers: 3, RateLimit: 1000})

		queries := []string{"alpha", "bravo", "charlie", "delta"}
		result, err := engine.Assemble(context.Background(), nil, AssembleRequest{
			Title:   "Mix",
			Queries: queries,
		})
		if err != nil {
			t.Fatalf("Assemble failed: %v", err)
		}

		if result.TotalCount != len(queries) {
			t.Errorf("TotalCount = %d, want %d", result.TotalCount, len(queries))
		}
		if len(result.Queries) != len(queries) {
			t.Fatalf("expected %d outcomes, got %d", len(queries), len(result.Queries))
		}
		for i, outcome := range result.Queries {
			if outcome.Query != queries[i] {
				t.Errorf("outcome %d query = %q, want %q", i, outcome.Query, queries[i])
			}
			if !outcome.Matched {
				t.Errorf("outcome %d unmatched: %s", i, outcome.Reason)
			}
		}
		if result.AddedCount != len(queries) {
			t.Errorf("AddedCount = %d, want %d", result.AddedCount, len(queries))
		}
		if result.PlaylistURL != ytmusic.PlaylistURL(result.PlaylistID) {
			t.Error("PlaylistURL does not match PlaylistID")
		}
	})

	t.Run("failed query does not abort siblings", func(t *testing.T) {
		svc := &tu.MockPlaylistService{
			SearchFn: func(ctx context.Context, query string, limit int) ([]ytmusic.Candidate, error) {
				if query == "broken" {
					return nil, &ytmusic.SearchError{Query: query, Err: errors.New("connection reset")}
				}
				return singleCandidate(query), nil
			},
		}
		engine := NewAssembler(svc, nil, nil, AssemblerOpts{RateLimit: 1000})

		result, err := engine.Assemble(context.Background(), nil, AssembleRequest{
			Title:   "Mix",
			Queries: []string{"good", "broken"},
		})
		if err != nil {
			t.Fatalf("Assemble failed: %v", err)
		}

		if result.TotalCount != 2 {
			t.Errorf("TotalCount = %d, want 2", result.TotalCount)
		}
		if result.AddedCount != 1 {
			t.Errorf("AddedCount = %d, want 1", result.AddedCount)
		}
		if !result.Queries[0].Matched {
			t.Error("expected first query matched")
		}
		if result.Queries[1].Matched {
			t.Error("expected second query unmatched")
		}
		if result.Queries[1].Reason == "" {
			t.Error("expected failure reason recorded")
		}
	})

	t.Run("empty search results recorded as unmatched", func(t *testing.T) {
		svc := &tu.MockPlaylistService{
			SearchFn: func(ctx context.Context, query string, limit int) ([]ytmusic.Candidate, error) {
				return nil, nil
			},
		}
		engine := NewAssembler(svc, nil, nil, AssemblerOpts{RateLimit: 1000})

		result, err := engine.Assemble(context.Background(), nil, AssembleRequest{
			Title:   "Mix",
			Queries: []string{"obscure b-side"},
		})
		if err != nil {
			t.Fatalf("Assemble failed: %v", err)
		}

		outcome := result.Queries[0]
		if outcome.Matched {
			t.Error("expected unmatched outcome")
		}
		if outcome.Reason != "No search results" {
			t.Errorf("Reason = %q", outcome.Reason)
		}
		if len(svc.AddedIDs) != 0 {
			t.Errorf("expected no add call content, got %v", svc.AddedIDs)
		}
	})

	t.Run("playlist creation failure is fatal", func(t *testing.T) {
		svc := &tu.MockPlaylistService{
			CreatePlaylistFn: func(ctx context.Context, title, description, privacy string) (string, error) {
				return "", fmt.Errorf("%w: quota exceeded", shared.ErrPlaylistCreateFailed)
			},
		}
		engine := NewAssembler(svc, nil, nil, AssemblerOpts{RateLimit: 1000})

		_, err := engine.Assemble(context.Background(), nil, AssembleRequest{
			Title:   "Mix",
			Queries: []string{"alpha"},
		})
		if !errors.Is(err, shared.ErrPlaylistCreateFailed) {
			t.Errorf("expected ErrPlaylistCreateFailed, got %v", err)
		}
		if len(svc.SearchCalls) != 0 {
			t.Error("expected no resolution after failed create")
		}
	})

	t.Run("no queries", func(t *testing.T) {
		engine := NewAssembler(&tu.MockPlaylistService{}, nil, nil, AssemblerOpts{})

		_, err := engine.Assemble(context.Background(), nil, AssembleRequest{Title: "Mix"})
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("matched ids keep input order", func(t *testing.T) {
		svc := &tu.MockPlaylistService{
			SearchFn: func(ctx context.Context, query string, limit int) ([]ytmusic.Candidate, error) {
				return singleCandidate(query), nil
			},
		}
		engine := NewAssembler(svc, nil, nil, AssemblerOpts{Workers: 4, RateLimit: 1000})

		queries := []string{"one", "two", "three", "four", "five", "six"}
		result, err := engine.Assemble(context.Background(), nil, AssembleRequest{
			Title:   "Mix",
			Queries: queries,
		})
		if err != nil {
			t.Fatalf("Assemble failed: %v", err)
		}
		_ = result

		for i, query := range queries {
			want := "vid_" + query
			if svc.AddedIDs[i] != want {
				t.Errorf("added id %d = %q, want %q", i, svc.AddedIDs[i], want)
			}
		}
	})

	t.Run("add failure keeps outcomes and zero added count", func(t *testing.T) {
		svc := &tu.MockPlaylistService{
			SearchFn: func(ctx context.Context, query string, limit int) ([]ytmusic.Candidate, error) {
				return singleCandidate(query), nil
			},
			AddItemsFn: func(ctx context.Context, playlistID string, videoIDs []string) (*ytmusic.AddItemsResult, error) {
				return nil, errors.New("add endpoint down")
			},
		}
		engine := NewAssembler(svc, nil, nil, AssemblerOpts{RateLimit: 1000})

		result, err := engine.Assemble(context.Background(), nil, AssembleRequest{
			Title:   "Mix",
			Queries: []string{"alpha"},
		})
		if err != nil {
			t.Fatalf("expected add failure to be non-fatal, got %v", err)
		}
		if result.AddedCount != 0 {
			t.Errorf("AddedCount = %d, want 0", result.AddedCount)
		}
		if !result.Queries[0].Matched {
			t.Error("resolution outcome should survive add failure")
		}
	})

	t.Run("cache hit skips search", func(t *testing.T) {
		cache := tu.NewMemoryCache()
		cached := singleCandidate("alpha")[0]
		if err := cache.Put(match.NormalizeQuery("Alpha"), cached, 10); err != nil {
			t.Fatal(err)
		}

		svc := &tu.MockPlaylistService{
			SearchFn: func(ctx context.Context, query string, limit int) ([]ytmusic.Candidate, error) {
				t.Errorf("unexpected search for %q", query)
				return nil, nil
			},
		}
		engine := NewAssembler(svc, cache, nil, AssemblerOpts{RateLimit: 1000})

		result, err := engine.Assemble(context.Background(), nil, AssembleRequest{
			Title:   "Mix",
			Queries: []string{"Alpha"},
		})
		if err != nil {
			t.Fatalf("Assemble failed: %v", err)
		}
		if !result.Queries[0].Matched || result.Queries[0].Candidate.TrackID != cached.TrackID {
			t.Errorf("expected cached candidate, got %+v", result.Queries[0])
		}
		if result.Queries[0].Score != 10 {
			t.Errorf("expected cached score surfaced, got %d", result.Queries[0].Score)
		}
	})

	t.Run("resolutions are cached", func(t *testing.T) {
		cache := tu.NewMemoryCache()
		svc := &tu.MockPlaylistService{
			SearchFn: func(ctx context.Context, query string, limit int) ([]ytmusic.Candidate, error) {
				return singleCandidate(query), nil
			},
		}
		engine := NewAssembler(svc, cache, nil, AssemblerOpts{RateLimit: 1000})

		if _, err := engine.Assemble(context.Background(), nil, AssembleRequest{
			Title:   "Mix",
			Queries: []string{"alpha", "bravo"},
		}); err != nil {
			t.Fatalf("Assemble failed: %v", err)
		}

		if cache.Len() != 2 {
			t.Errorf("expected 2 cached resolutions, got %d", cache.Len())
		}
	})

	t.Run("progress updates do not block without a reader", func(t *testing.T) {
		svc := &tu.MockPlaylistService{
			SearchFn: func(ctx context.Context, query string, limit int) ([]ytmusic.Candidate, error) {
				return singleCandidate(query), nil
			},
		}
		engine := NewAssembler(svc, nil, nil, AssemblerOpts{RateLimit: 1000})

		// Unbuffered channel with no receiver; sendProgress must drop updates.
		progress := make(chan ProgressUpdate)
		_, err := engine.Assemble(context.Background(), progress, AssembleRequest{
			Title:   "Mix",
			Queries: []string{"alpha", "bravo"},
		})
		if err != nil {
			t.Fatalf("Assemble failed: %v", err)
		}
	})

	t.Run("cancelled context marks undispatched queries", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		svc := &tu.MockPlaylistService{
			SearchFn: func(ctx context.Context, query string, limit int) ([]ytmusic.Candidate, error) {
				return singleCandidate(query), nil
			},
		}
		engine := NewAssembler(svc, nil, nil, AssemblerOpts{RateLimit: 0.001})

		result, err := engine.Assemble(ctx, nil, AssembleRequest{
			Title:   "Mix",
			Queries: []string{"alpha", "bravo", "charlie"},
		})
		if err != nil {
			t.Fatalf("Assemble failed: %v", err)
		}

		if len(result.Queries) != 3 {
			t.Fatalf("expected 3 outcomes, got %d", len(result.Queries))
		}
		for i, outcome := range result.Queries {
			if outcome.Query == "" {
				t.Errorf("outcome %d missing query", i)
			}
		}
	})
}

func TestAssembleFromIDs(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &tu.MockPlaylistService{}
		engine := NewAssembler(svc, nil, nil, AssemblerOpts{})

		result, err := engine.AssembleFromIDs(context.Background(), nil, "Mix", "", "PRIVATE", []string{"vid1", "vid2"})
		if err != nil {
			t.Fatalf("AssembleFromIDs failed: %v", err)
		}
		if result.AddedCount != 2 || result.TotalCount != 2 {
			t.Errorf("counts = %d/%d, want 2/2", result.AddedCount, result.TotalCount)
		}
		if len(svc.SearchCalls) != 0 {
			t.Error("expected no search calls")
		}
	})

	t.Run("no ids", func(t *testing.T) {
		engine := NewAssembler(&tu.MockPlaylistService{}, nil, nil, AssemblerOpts{})

		_, err := engine.AssembleFromIDs(context.Background(), nil, "Mix", "", "", nil)
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestSearchBatch(t *testing.T) {
	svc := &tu.MockPlaylistService{
		SearchFn: func(ctx context.Context, query string, limit int) ([]ytmusic.Candidate, error) {
			if query == "broken" {
				return nil, &ytmusic.SearchError{Query: query, Err: errors.New("boom")}
			}
			return singleCandidate(query), nil
		},
	}
	engine := NewAssembler(svc, nil, nil, AssemblerOpts{RateLimit: 1000})

	results, err := engine.SearchBatch(context.Background(), nil, []string{"alpha", "broken"}, 5)
	if err != nil {
		t.Fatalf("SearchBatch failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Query != "alpha" || len(results[0].Candidates) != 1 {
		t.Errorf("unexpected first result: %+v", results[0])
	}
	if results[1].Error == "" {
		t.Error("expected error recorded for second query")
	}
}

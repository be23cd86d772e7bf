package repositories

import (
	"reflect"
	"testing"

	"ytmb/internal/shared"
	"ytmb/internal/ytmusic"
)

func newTestRepository(t *testing.T) *ResolutionRepository {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return NewResolutionRepository(db)
}

func TestResolutionRepository(t *testing.T) {
	candidate := ytmusic.Candidate{
		TrackID:         "vid1",
		Title:           "Test Song",
		ArtistNames:     []string{"Artist One", "Artist Two"},
		AlbumName:       "Album",
		DurationSeconds: 181,
		IsExplicit:      true,
		SourceRank:      1,
	}

	t.Run("miss on empty repository", func(t *testing.T) {
		repo := newTestRepository(t)

		if _, _, ok := repo.Get("test song"); ok {
			t.Error("expected miss on empty repository")
		}
	})

	t.Run("put then get round trip", func(t *testing.T) {
		repo := newTestRepository(t)

		if err := repo.Put("test song", candidate, 10); err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		got, score, ok := repo.Get("test song")
		if !ok {
			t.Fatal("expected hit")
		}
		if score != 10 {
			t.Errorf("score = %d, want 10", score)
		}
		if !reflect.DeepEqual(*got, candidate) {
			t.Errorf("candidate = %+v, want %+v", got, candidate)
		}
	})

	t.Run("put replaces existing entry", func(t *testing.T) {
		repo := newTestRepository(t)

		if err := repo.Put("test song", candidate, 10); err != nil {
			t.Fatal(err)
		}

		updated := candidate
		updated.TrackID = "vid2"
		if err := repo.Put("test song", updated, 7); err != nil {
			t.Fatalf("replace Put failed: %v", err)
		}

		got, score, ok := repo.Get("test song")
		if !ok || got.TrackID != "vid2" || score != 7 {
			t.Errorf("expected replaced entry, got %+v score %d", got, score)
		}

		count, _, err := repo.Stats()
		if err != nil {
			t.Fatal(err)
		}
		if count != 1 {
			t.Errorf("expected 1 row after replace, got %d", count)
		}
	})

	t.Run("candidate without artists", func(t *testing.T) {
		repo := newTestRepository(t)

		bare := ytmusic.Candidate{TrackID: "vid3", Title: "Instrumental"}
		if err := repo.Put("instrumental", bare, 0); err != nil {
			t.Fatal(err)
		}

		got, _, ok := repo.Get("instrumental")
		if !ok {
			t.Fatal("expected hit")
		}
		if len(got.ArtistNames) != 0 {
			t.Errorf("expected no artists, got %v", got.ArtistNames)
		}
	})

	t.Run("clear removes all entries", func(t *testing.T) {
		repo := newTestRepository(t)

		for _, query := range []string{"one", "two", "three"} {
			if err := repo.Put(query, candidate, 1); err != nil {
				t.Fatal(err)
			}
		}

		removed, err := repo.Clear()
		if err != nil {
			t.Fatalf("Clear failed: %v", err)
		}
		if removed != 3 {
			t.Errorf("removed = %d, want 3", removed)
		}

		count, _, err := repo.Stats()
		if err != nil {
			t.Fatal(err)
		}
		if count != 0 {
			t.Errorf("expected empty repository, got %d rows", count)
		}
	})

	t.Run("stats on populated repository", func(t *testing.T) {
		repo := newTestRepository(t)

		if err := repo.Put("one", candidate, 1); err != nil {
			t.Fatal(err)
		}

		count, lastUpdated, err := repo.Stats()
		if err != nil {
			t.Fatalf("Stats failed: %v", err)
		}
		if count != 1 {
			t.Errorf("count = %d, want 1", count)
		}
		if lastUpdated.IsZero() {
			t.Error("expected non-zero last updated timestamp")
		}
	})
}

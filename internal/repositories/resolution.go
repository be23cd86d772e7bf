package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"ytmb/internal/shared"
	"ytmb/internal/ytmusic"
)

// artistSeparator joins artist names into the single artists column.
// Unit separator avoids collisions with names containing commas.
const artistSeparator = "\x1f"

// ResolutionRepository caches query resolutions in SQLite. It implements
// tasks.ResolutionCacher; cache rows are keyed by normalized query text.
type ResolutionRepository struct {
	db *sql.DB
}

// NewResolutionRepository creates a new ResolutionRepository with the given database connection
func NewResolutionRepository(db *sql.DB) *ResolutionRepository {
	return &ResolutionRepository{db: db}
}

// Get retrieves the cached candidate for a normalized query, if present.
func (r *ResolutionRepository) Get(query string) (*ytmusic.Candidate, int, bool) {
	row := r.db.QueryRow(`
		SELECT track_id, title, artists, album, duration_seconds,
			is_explicit, is_live, is_remix, is_remaster, source_rank, score
		FROM resolutions
		WHERE normalized_query = ?
	`, query)

	var c ytmusic.Candidate
	var artists string
	var score int

	err := row.Scan(
		&c.TrackID,
		&c.Title,
		&artists,
		&c.AlbumName,
		&c.DurationSeconds,
		&c.IsExplicit,
		&c.IsLive,
		&c.IsRemix,
		&c.IsRemaster,
		&c.SourceRank,
		&score,
	)
	if err != nil {
		return nil, 0, false
	}

	if artists != "" {
		c.ArtistNames = strings.Split(artists, artistSeparator)
	}

	return &c, score, true
}

// Put stores (or replaces) the resolution for a normalized query.
func (r *ResolutionRepository) Put(query string, candidate ytmusic.Candidate, score int) error {
	now := time.Now().UTC()

	_, err := r.db.Exec(`
		INSERT INTO resolutions (
			id, normalized_query, track_id, title, artists, album,
			duration_seconds, is_explicit, is_live, is_remix, is_remaster,
			source_rank, score, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(normalized_query) DO UPDATE SET
			track_id = excluded.track_id,
			title = excluded.title,
			artists = excluded.artists,
			album = excluded.album,
			duration_seconds = excluded.duration_seconds,
			is_explicit = excluded.is_explicit,
			is_live = excluded.is_live,
			is_remix = excluded.is_remix,
			is_remaster = excluded.is_remaster,
			source_rank = excluded.source_rank,
			score = excluded.score,
			updated_at = excluded.updated_at
	`,
		shared.GenerateID(),
		query,
		candidate.TrackID,
		candidate.Title,
		strings.Join(candidate.ArtistNames, artistSeparator),
		candidate.AlbumName,
		candidate.DurationSeconds,
		candidate.IsExplicit,
		candidate.IsLive,
		candidate.IsRemix,
		candidate.IsRemaster,
		candidate.SourceRank,
		score,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to cache resolution: %w", err)
	}

	return nil
}

// Clear deletes all cached resolutions and reports how many were removed.
func (r *ResolutionRepository) Clear() (int, error) {
	result, err := r.db.Exec("DELETE FROM resolutions")
	if err != nil {
		return 0, fmt.Errorf("failed to clear resolutions: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Stats reports the number of cached resolutions and the most recent update.
func (r *ResolutionRepository) Stats() (count int, lastUpdated time.Time, err error) {
	if err = r.db.QueryRow("SELECT COUNT(*) FROM resolutions").Scan(&count); err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to read resolution stats: %w", err)
	}
	if count == 0 {
		return 0, time.Time{}, nil
	}

	err = r.db.QueryRow("SELECT updated_at FROM resolutions ORDER BY updated_at DESC LIMIT 1").Scan(&lastUpdated)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to read resolution stats: %w", err)
	}
	return count, lastUpdated, nil
}

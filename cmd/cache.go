package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"ytmb/internal/repositories"
	"ytmb/internal/shared"
	"ytmb/internal/tasks"
)

// openCache opens the resolution cache database and returns the repository
// with a closer. The database must have been created by 'ytmb setup database'.
func (r *Runner) openCache() (tasks.ResolutionCacher, func(), error) {
	if _, err := os.Stat(r.config.Database.Path); err != nil {
		return nil, nil, fmt.Errorf("database not initialized, run 'ytmb setup database': %w", err)
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	return repositories.NewResolutionRepository(db), func() { db.Close() }, nil
}

// openRepository is openCache with the concrete repository type, for commands
// that need Clear and Stats.
func (r *Runner) openRepository() (*repositories.ResolutionRepository, func(), error) {
	cache, closeDB, err := r.openCache()
	if err != nil {
		return nil, nil, err
	}
	return cache.(*repositories.ResolutionRepository), closeDB, nil
}

// CacheStats reports the number of cached resolutions.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	repo, closeDB, err := r.openRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	count, lastUpdated, err := repo.Stats()
	if err != nil {
		return err
	}

	r.writePlain("Cached resolutions: %d\n", count)
	if count > 0 {
		r.writePlain("Last updated: %s\n", lastUpdated.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// CacheClear deletes all cached resolutions.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	repo, closeDB, err := r.openRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	removed, err := repo.Clear()
	if err != nil {
		return err
	}

	r.writePlain("✓ Removed %d cached resolutions\n", removed)
	return nil
}

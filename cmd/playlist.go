package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"ytmb/internal/formatter"
	"ytmb/internal/shared"
	"ytmb/internal/tasks"
)

// PlaylistBuild creates a playlist from free-text queries given as arguments
// or read from a file.
func (r *Runner) PlaylistBuild(ctx context.Context, cmd *cli.Command) error {
	queries := cmd.StringArgs("queries")
	if filePath := cmd.String("file"); filePath != "" {
		fileQueries, err := readQueryFile(filePath)
		if err != nil {
			return err
		}
		queries = append(queries, fileQueries...)
	}
	if len(queries) == 0 {
		return fmt.Errorf("%w: provide queries as arguments or via --file", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	engine, closeDB, err := r.assembler()
	if err != nil {
		return err
	}
	defer closeDB()

	title := cmd.String("title")
	r.logger.Info("building playlist", "title", title, "queries", len(queries))

	// Create progress channel and goroutine to handle updates
	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			switch update.Phase {
			case tasks.CreatePlaylist:
				r.writePlain("📝 %s\n", update.Message)
			case tasks.ResolveTracks:
				r.writePlain("🔍 [%d/%d] %s\n", update.Step, update.Total, update.Message)
			case tasks.AddTracks:
				r.writePlain("➕ %s\n", update.Message)
			}
		}
	}()

	result, err := engine.Assemble(ctx, progressCh, tasks.AssembleRequest{
		Title:       title,
		Description: cmd.String("description"),
		Privacy:     cmd.String("privacy"),
		Queries:     queries,
		SearchLimit: r.config.API.SearchLimit,
	})
	close(progressCh)

	if err != nil {
		return err
	}

	r.writePlain("\n")
	return formatter.WriteReport(result, format, title, cmd.String("output"))
}

// PlaylistFromIDs creates a playlist directly from track identifiers.
func (r *Runner) PlaylistFromIDs(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.StringArgs("ids")
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one track id is required", shared.ErrMissingArgument)
	}

	engine, closeDB, err := r.assembler()
	if err != nil {
		return err
	}
	defer closeDB()

	result, err := engine.AssembleFromIDs(ctx, nil, cmd.String("title"), cmd.String("description"), cmd.String("privacy"), ids)
	if err != nil {
		return err
	}

	r.writePlain("✓ Playlist created: %s\n", result.PlaylistURL)
	r.writePlain("Added %d of %d tracks\n", result.AddedCount, result.TotalCount)
	return nil
}

// SearchTracks resolves queries and prints the ranked candidates per query.
func (r *Runner) SearchTracks(ctx context.Context, cmd *cli.Command) error {
	queries := cmd.StringArgs("queries")
	if len(queries) == 0 {
		return fmt.Errorf("%w: at least one query is required", shared.ErrMissingArgument)
	}

	limit := int(cmd.Int("limit"))
	if limit == 0 {
		limit = r.config.API.SearchLimit
	}

	engine, closeDB, err := r.assembler()
	if err != nil {
		return err
	}
	defer closeDB()

	results, err := engine.SearchBatch(ctx, nil, queries, limit)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(results, true)
	}

	for _, result := range results {
		r.writePlain("%s\n", result.Query)
		if result.Error != "" {
			r.writePlain("  error: %s\n", result.Error)
			continue
		}
		if len(result.Candidates) == 0 {
			r.writePlain("  no results\n")
			continue
		}
		for _, c := range result.Candidates {
			r.writePlain("  %d. %s - %s (%s)\n", c.SourceRank+1, strings.Join(c.ArtistNames, ", "), c.Title, c.TrackID)
		}
	}
	return nil
}

// readQueryFile reads one query per line, skipping blanks and # comments.
// A path of "-" reads stdin.
func readQueryFile(path string) ([]string, error) {
	var file *os.File
	if path == "-" {
		file = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open query file: %w", err)
		}
		defer f.Close()
		file = f
	}

	var queries []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		queries = append(queries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read query file: %w", err)
	}

	return queries, nil
}

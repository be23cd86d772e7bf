// package tasks implements playlist assembly from batches of free-text track
// queries.
//
// The core abstraction is Assembler, which orchestrates playlist creation,
// concurrent query resolution, and the batch add step. Operations emit
// progress updates via channels for non-blocking status reporting to the CLI
// layer.
package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"ytmb/internal/match"
	"ytmb/internal/shared"
	"ytmb/internal/ytmusic"
)

// PlaylistService defines the remote operations the assembler depends on.
type PlaylistService interface {
	Search(ctx context.Context, query string, limit int) ([]ytmusic.Candidate, error)
	CreatePlaylist(ctx context.Context, title, description, privacy string) (string, error)
	AddItems(ctx context.Context, playlistID string, videoIDs []string) (*ytmusic.AddItemsResult, error)
}

// ResolutionCacher caches resolved queries so repeated assemblies skip the
// network. Implementations are best-effort; errors are logged, never fatal.
type ResolutionCacher interface {
	Get(query string) (*ytmusic.Candidate, int, bool)
	Put(query string, candidate ytmusic.Candidate, score int) error
}

// ResolutionOutcome records the result of resolving one query. One outcome is
// produced per input query, in input order, matched or not.
type ResolutionOutcome struct {
	Query     string             `json:"query"`
	Matched   bool               `json:"matched"`
	Candidate *ytmusic.Candidate `json:"candidate,omitempty"`
	Score     int                `json:"score,omitempty"`
	Reason    string             `json:"reason,omitempty"`
}

// AssemblyResult aggregates a full assemble operation.
//
// AddedCount counts only identifiers confirmed added; it never exceeds
// TotalCount, which always equals the number of input queries.
type AssemblyResult struct {
	PlaylistID  string              `json:"playlist_id"`
	PlaylistURL string              `json:"playlist_url"`
	CreatedAt   time.Time           `json:"created_at"`
	Queries     []ResolutionOutcome `json:"queries"`
	AddedCount  int                 `json:"added_count"`
	TotalCount  int                 `json:"total_count"`
}

// QuerySearchResult carries the full candidate list for one query of a batch
// search.
type QuerySearchResult struct {
	Query      string              `json:"query"`
	Candidates []ytmusic.Candidate `json:"candidates"`
	Error      string              `json:"error,omitempty"`
}

// AssembleRequest describes one playlist assembly.
type AssembleRequest struct {
	Title       string
	Description string
	Privacy     string
	Queries     []string
	SearchLimit int
}

// AssemblerOpts tunes the resolution worker pool.
type AssemblerOpts struct {
	Workers   int     // Concurrent search workers (default 4, max 8)
	RateLimit float64 // Search dispatches per second (default 5)
}

// Assembler implements the resolution and assembly pipeline.
type Assembler struct {
	svc    PlaylistService
	cache  ResolutionCacher
	logger *log.Logger
	opts   AssemblerOpts
}

// NewAssembler creates an Assembler. The cache may be nil.
func NewAssembler(svc PlaylistService, cache ResolutionCacher, logger *log.Logger, opts AssemblerOpts) *Assembler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Workers > 8 {
		opts.Workers = 8
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	return &Assembler{svc: svc, cache: cache, logger: logger, opts: opts}
}

// sendProgress sends a progress update through the channel without blocking.
func (a *Assembler) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Assemble creates a playlist and populates it from a batch of queries.
//
// Playlist creation is the one all-or-nothing step. Each query then resolves
// independently; a failed query never aborts its siblings. Matched identifiers
// are attached in input order with a single add call after all resolution work
// completes.
func (a *Assembler) Assemble(ctx context.Context, progress chan<- ProgressUpdate, req AssembleRequest) (*AssemblyResult, error) {
	if a.svc == nil {
		return nil, fmt.Errorf("%w: playlist service not initialized", shared.ErrServiceUnavailable)
	}
	if len(req.Queries) == 0 {
		return nil, fmt.Errorf("%w: at least one query is required", shared.ErrMissingArgument)
	}

	a.sendProgress(progress, createPlaylistUpdate(req.Title))

	playlistID, err := a.svc.CreatePlaylist(ctx, req.Title, req.Description, req.Privacy)
	if err != nil {
		return nil, err
	}

	result := &AssemblyResult{
		PlaylistID:  playlistID,
		PlaylistURL: ytmusic.PlaylistURL(playlistID),
		CreatedAt:   time.Now().UTC(),
		TotalCount:  len(req.Queries),
	}

	result.Queries = a.resolveAll(ctx, progress, req.Queries, req.SearchLimit)

	var videoIDs []string
	for _, outcome := range result.Queries {
		if outcome.Matched {
			videoIDs = append(videoIDs, outcome.Candidate.TrackID)
		}
	}

	if len(videoIDs) > 0 {
		a.sendProgress(progress, addTracksUpdate(len(videoIDs)))

		added, err := a.svc.AddItems(ctx, playlistID, videoIDs)
		if err != nil {
			// Resolution outcomes stand; the playlist simply ends up emptier.
			a.logger.Warn("failed to add tracks to playlist", "playlist_id", playlistID, "error", err)
		} else {
			result.AddedCount = len(added.Added)
			if len(added.Failed) > 0 {
				a.logger.Warn("some tracks failed to attach", "failed", len(added.Failed))
			}
		}
	}

	return result, nil
}

// AssembleFromIDs creates a playlist from already-resolved track identifiers.
func (a *Assembler) AssembleFromIDs(ctx context.Context, progress chan<- ProgressUpdate, title, description, privacy string, videoIDs []string) (*AssemblyResult, error) {
	if a.svc == nil {
		return nil, fmt.Errorf("%w: playlist service not initialized", shared.ErrServiceUnavailable)
	}
	if len(videoIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one video id is required", shared.ErrMissingArgument)
	}

	a.sendProgress(progress, createPlaylistUpdate(title))

	playlistID, err := a.svc.CreatePlaylist(ctx, title, description, privacy)
	if err != nil {
		return nil, err
	}

	result := &AssemblyResult{
		PlaylistID:  playlistID,
		PlaylistURL: ytmusic.PlaylistURL(playlistID),
		CreatedAt:   time.Now().UTC(),
		TotalCount:  len(videoIDs),
	}

	a.sendProgress(progress, addTracksUpdate(len(videoIDs)))

	added, err := a.svc.AddItems(ctx, playlistID, videoIDs)
	if err != nil {
		a.logger.Warn("failed to add tracks to playlist", "playlist_id", playlistID, "error", err)
		return result, nil
	}

	result.AddedCount = len(added.Added)
	return result, nil
}

// SearchBatch resolves the full candidate list for each query concurrently,
// without creating a playlist. Used when the caller wants to pick matches
// itself.
func (a *Assembler) SearchBatch(ctx context.Context, progress chan<- ProgressUpdate, queries []string, limit int) ([]QuerySearchResult, error) {
	if a.svc == nil {
		return nil, fmt.Errorf("%w: playlist service not initialized", shared.ErrServiceUnavailable)
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("%w: at least one query is required", shared.ErrMissingArgument)
	}

	results := make([]QuerySearchResult, len(queries))

	a.forEachQuery(ctx, progress, queries, func(ctx context.Context, i int, query string) {
		results[i] = QuerySearchResult{Query: query}

		candidates, err := a.svc.Search(ctx, query, limit)
		if err != nil {
			results[i].Error = err.Error()
			return
		}
		results[i].Candidates = candidates
	})

	return results, nil
}

// resolveAll resolves every query through the worker pool, producing exactly
// one outcome per query in input order.
func (a *Assembler) resolveAll(ctx context.Context, progress chan<- ProgressUpdate, queries []string, limit int) []ResolutionOutcome {
	outcomes := make([]ResolutionOutcome, len(queries))

	// Queries never dispatched (cancellation) keep this placeholder outcome.
	for i, query := range queries {
		outcomes[i] = ResolutionOutcome{Query: query, Reason: "Cancelled"}
	}

	a.forEachQuery(ctx, progress, queries, func(ctx context.Context, i int, query string) {
		outcomes[i] = a.resolveOne(ctx, query, limit)
	})

	return outcomes
}

// forEachQuery runs fn for each query on a bounded worker pool with rate
// limited dispatch. Cancellation stops dispatching new queries; in-flight
// calls complete or time out on their own.
func (a *Assembler) forEachQuery(ctx context.Context, progress chan<- ProgressUpdate, queries []string, fn func(ctx context.Context, i int, query string)) {
	limiter := rate.NewLimiter(rate.Limit(a.opts.RateLimit), 1)
	jobs := make(chan int, len(queries))

	var wg sync.WaitGroup
	for w := 0; w < a.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fn(ctx, i, queries[i])
			}
		}()
	}

	total := len(queries)
	for i, query := range queries {
		if err := limiter.Wait(ctx); err != nil {
			break
		}
		a.sendProgress(progress, resolveTrackUpdate(i+1, total, query))
		jobs <- i
	}
	close(jobs)

	wg.Wait()
}

// resolveOne turns one free-text query into zero-or-one selected candidate.
func (a *Assembler) resolveOne(ctx context.Context, query string, limit int) ResolutionOutcome {
	outcome := ResolutionOutcome{Query: query}

	if a.cache != nil {
		if cached, score, ok := a.cache.Get(match.NormalizeQuery(query)); ok {
			outcome.Matched = true
			outcome.Candidate = cached
			outcome.Score = score
			return outcome
		}
	}

	candidates, err := a.svc.Search(ctx, query, limit)
	if err != nil {
		outcome.Reason = err.Error()
		return outcome
	}

	best, score := match.SelectBest(candidates, query)
	if best == nil {
		outcome.Reason = "No search results"
		return outcome
	}

	outcome.Matched = true
	outcome.Candidate = best
	outcome.Score = score

	if a.cache != nil {
		if err := a.cache.Put(match.NormalizeQuery(query), *best, score); err != nil {
			a.logger.Debug("failed to cache resolution", "query", query, "error", err)
		}
	}

	return outcome
}

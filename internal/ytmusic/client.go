// Package ytmusic implements the YouTube Music API client.
//
// The client talks to a ytmusicapi proxy and converts its loose response
// shapes into the [Candidate] boundary schema. Authentication headers come
// from a [SessionSource] resolved per request, so token refreshes made by the
// session layer are picked up transparently.
package ytmusic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"ytmb/internal/shared"
)

const (
	defaultBaseURL = "http://localhost:8080"
	defaultTimeout = 30 * time.Second
)

// SessionSource supplies the outbound header set for authenticated requests.
// Invalidate is called when the service rejects the session so header-based
// credentials can be discarded.
type SessionSource interface {
	Session(ctx context.Context) (http.Header, error)
	Invalidate()
}

// SearchError reports a per-query transport or API failure, as distinct from
// an empty (but successful) result.
type SearchError struct {
	Query string
	Err   error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search failed for %q: %v", e.Query, e.Err)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// AddItemsResult carries per-item outcomes of an add-to-playlist call.
type AddItemsResult struct {
	Added  []string `json:"added"`
	Failed []string `json:"failed"`
}

// HealthStatus is the service health report used as a session validity probe.
type HealthStatus struct {
	Status        string `json:"status"`
	Authenticated bool   `json:"authenticated"`
}

// Client is the YouTube Music API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	sessions   SessionSource
}

// NewClient creates a Client against the given base URL with a default
// request timeout. A nil httpClient gets a timeout-configured default.
func NewClient(baseURL string, sessions SessionSource, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		sessions:   sessions,
	}
}

// Search executes one free-text search and returns candidates in the remote
// relevance order, recorded in SourceRank. An empty result is not an error;
// transport and API failures return a [*SearchError].
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Candidate, error) {
	if limit <= 0 {
		limit = 5
	}

	endpoint := fmt.Sprintf("/api/search?q=%s&filter=songs&limit=%d", url.QueryEscape(query), limit)

	var tracks []wireTrack
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &tracks); err != nil {
		return nil, &SearchError{Query: query, Err: err}
	}

	candidates := make([]Candidate, 0, len(tracks))
	for rank, track := range tracks {
		if track.VideoID == "" {
			continue
		}
		candidates = append(candidates, track.toCandidate(rank))
	}

	return candidates, nil
}

// CreatePlaylist creates an empty playlist and returns its id.
func (c *Client) CreatePlaylist(ctx context.Context, title, description, privacy string) (string, error) {
	if title == "" {
		return "", fmt.Errorf("%w: playlist title is required", shared.ErrMissingArgument)
	}
	if privacy == "" {
		privacy = "PRIVATE"
	}

	body := struct {
		Title         string `json:"title"`
		Description   string `json:"description"`
		PrivacyStatus string `json:"privacy_status"`
	}{title, description, privacy}

	var resp struct {
		PlaylistID string `json:"playlist_id"`
	}

	if err := c.doRequest(ctx, http.MethodPost, "/api/playlists", body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrPlaylistCreateFailed, err)
	}
	if resp.PlaylistID == "" {
		return "", fmt.Errorf("%w: response carried no playlist id", shared.ErrPlaylistCreateFailed)
	}

	return resp.PlaylistID, nil
}

// AddItems attaches the given video ids to a playlist in one call and returns
// per-item outcomes. A response without per-item detail counts every id as
// added.
func (c *Client) AddItems(ctx context.Context, playlistID string, videoIDs []string) (*AddItemsResult, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist id is required", shared.ErrMissingArgument)
	}
	if len(videoIDs) == 0 {
		return &AddItemsResult{}, nil
	}

	body := struct {
		VideoIDs []string `json:"video_ids"`
	}{videoIDs}

	var resp AddItemsResult
	if err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/api/playlists/%s/items", playlistID), body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if len(resp.Added) == 0 && len(resp.Failed) == 0 {
		resp.Added = videoIDs
	}

	return &resp, nil
}

// Health probes the service and the validity of the current session.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.doRequest(ctx, http.MethodGet, "/health", nil, &status); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	return &status, nil
}

// PlaylistURL returns the public listen URL for a playlist id.
func PlaylistURL(playlistID string) string {
	return "https://music.youtube.com/playlist?list=" + playlistID
}

func (c *Client) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	headers, err := c.sessions.Session(ctx)
	if err != nil {
		return err
	}

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range headers {
		for _, value := range values {
			req.Header.Set(key, value)
		}
	}
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.sessions.Invalidate()
		return fmt.Errorf("%w: service rejected session (status %d)", shared.ErrNotAuthenticated, resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Detail != "" {
			return fmt.Errorf("youtube music API error (status %d): %s", resp.StatusCode, errResp.Detail)
		}
		return fmt.Errorf("youtube music API error: status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

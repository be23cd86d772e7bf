package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"ytmb/internal/shared"
)

const (
	googleDeviceAuthURL = "https://oauth2.googleapis.com/device/code"
	googleTokenURL      = "https://oauth2.googleapis.com/token"
	youtubeScope        = "https://www.googleapis.com/auth/youtube"
)

// State is the session lifecycle state.
type State int

const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
	Expired
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	case Expired:
		return "expired"
	default:
		return ""
	}
}

// Handshake describes a started device-code authorization awaiting user
// approval.
type Handshake struct {
	VerificationURL string `json:"verification_url"`
	UserCode        string `json:"user_code"`
	DeviceCode      string `json:"device_code"`
	IntervalSeconds int    `json:"interval_seconds"`
}

// Manager owns the single active session. It coordinates the credential store
// and header normalizer, runs the device-code handshake, and refreshes expired
// token credentials exactly once per session request.
//
// Header credentials never expire here; their validity is discovered
// empirically, at which point Invalidate drops the manager back to
// Unauthenticated.
type Manager struct {
	store  *FileStore
	logger *log.Logger

	mu          sync.Mutex
	cred        *Credential
	pendingCfg  *oauth2.Config
	pendingAuth *oauth2.DeviceAuthResponse

	endpoint oauth2.Endpoint
	now      func() time.Time
}

// NewManager creates a session manager backed by the given store.
func NewManager(store *FileStore, logger *log.Logger) *Manager {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Manager{
		store:  store,
		logger: logger,
		endpoint: oauth2.Endpoint{
			AuthURL:       googleTokenURL,
			TokenURL:      googleTokenURL,
			DeviceAuthURL: googleDeviceAuthURL,
		},
		now: time.Now,
	}
}

// IsAuthenticated reports whether a credential is present, expired or not.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked() == nil
}

// State reports the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.loadLocked(); err != nil {
		if m.pendingAuth != nil {
			return Authenticating
		}
		return Unauthenticated
	}
	if m.cred.Expired(m.now()) {
		return Expired
	}
	return Authenticated
}

// Credential returns the loaded credential, if any.
func (m *Manager) Credential() *Credential {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.loadLocked(); err != nil {
		return nil
	}
	return m.cred
}

// StartDeviceAuth begins a device-code authorization handshake. Starting a new
// handshake discards any pending one.
func (m *Manager) StartDeviceAuth(ctx context.Context, clientID, clientSecret string) (*Handshake, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("%w: client_id and client_secret are required", shared.ErrMissingArgument)
	}

	cfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       []string{youtubeScope},
		Endpoint:     m.endpoint,
	}

	resp, err := cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: device authorization request failed: %v", shared.ErrAPIRequest, err)
	}

	m.mu.Lock()
	m.pendingCfg = cfg
	m.pendingAuth = resp
	m.mu.Unlock()

	m.logger.Info("device authorization started", "verification_url", resp.VerificationURI)

	return &Handshake{
		VerificationURL: resp.VerificationURI,
		UserCode:        resp.UserCode,
		DeviceCode:      resp.DeviceCode,
		IntervalSeconds: int(resp.Interval),
	}, nil
}

// CompleteDeviceAuth polls the token endpoint until the user approves the
// pending handshake or ctx expires, then persists the resulting token
// credential.
func (m *Manager) CompleteDeviceAuth(ctx context.Context) (*Credential, error) {
	m.mu.Lock()
	cfg, pending := m.pendingCfg, m.pendingAuth
	m.mu.Unlock()

	if cfg == nil || pending == nil {
		return nil, fmt.Errorf("%w: call StartDeviceAuth first", shared.ErrNoPendingHandshake)
	}

	token, err := cfg.DeviceAccessToken(ctx, pending)
	if err != nil {
		return nil, fmt.Errorf("%w: device token exchange failed: %v", shared.ErrAPIRequest, err)
	}

	cred := &Credential{
		Kind:         KindToken,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
	}
	if !token.Expiry.IsZero() {
		cred.ExpiresAt = token.Expiry.Unix()
	}

	if err := m.store.Save(cred); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.cred = cred
	m.pendingCfg = nil
	m.pendingAuth = nil
	m.mu.Unlock()

	m.logger.Info("authentication complete", "kind", KindToken)
	return cred, nil
}

// SetHeaders normalizes a raw browser capture and persists it as the active
// header credential, replacing any existing credential.
func (m *Manager) SetHeaders(raw string) (*Credential, error) {
	headers, err := NormalizeHeaders(raw)
	if err != nil {
		return nil, err
	}

	cred := &Credential{Kind: KindHeaders, Headers: headers}
	if err := m.store.Save(cred); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.cred = cred
	m.mu.Unlock()

	m.logger.Info("authentication complete", "kind", KindHeaders, "headers", len(headers))
	return cred, nil
}

// Session returns the outbound header set for API requests, refreshing an
// expired token credential exactly once before failing.
func (m *Manager) Session(ctx context.Context) (http.Header, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.loadLocked(); err != nil {
		return nil, err
	}

	if m.cred.Expired(m.now()) {
		if err := m.refreshLocked(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrSessionExpired, err)
		}
	}

	header := make(http.Header)
	switch m.cred.Kind {
	case KindToken:
		header.Set("Authorization", "Bearer "+m.cred.AccessToken)
		header.Set("Content-Type", "application/json")
	case KindHeaders:
		for key, value := range m.cred.Headers {
			header.Set(key, value)
		}
	}

	return header, nil
}

// Invalidate handles an empirical authorization failure. Header credentials
// have no refresh path, so the credential is removed and the manager returns
// to Unauthenticated. Token credentials are left in place for the refresh
// path.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cred == nil || m.cred.Kind != KindHeaders {
		return
	}

	m.logger.Warn("header session rejected by service, re-setup required")
	if err := m.store.Clear(); err != nil {
		m.logger.Error("failed to remove credential file", "error", err)
	}
	m.cred = nil
}

// Logout removes the persisted credential of either kind and resets the
// manager to Unauthenticated. Any pending handshake is discarded.
func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cred = nil
	m.pendingCfg = nil
	m.pendingAuth = nil

	return m.store.Clear()
}

// Store exposes the backing credential store.
func (m *Manager) Store() *FileStore {
	return m.store
}

// loadLocked lazily loads the persisted credential. Callers hold m.mu.
func (m *Manager) loadLocked() error {
	if m.cred != nil {
		return nil
	}
	cred, err := m.store.Load()
	if err != nil {
		return err
	}
	m.cred = cred
	return nil
}

// refreshLocked exchanges the refresh token for a new access token and
// persists the result. A single attempt; retries are the caller's concern.
func (m *Manager) refreshLocked(ctx context.Context) error {
	if m.cred.RefreshToken == "" {
		return shared.ErrNoRefreshToken
	}

	cfg := &oauth2.Config{
		ClientID:     m.cred.ClientID,
		ClientSecret: m.cred.ClientSecret,
		Endpoint:     m.endpoint,
	}

	token, err := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: m.cred.RefreshToken}).Token()
	if err != nil {
		return fmt.Errorf("token refresh failed: %w", err)
	}

	m.cred.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		m.cred.RefreshToken = token.RefreshToken
	}
	if token.TokenType != "" {
		m.cred.TokenType = token.TokenType
	}
	if !token.Expiry.IsZero() {
		m.cred.ExpiresAt = token.Expiry.Unix()
	}

	if err := m.store.Save(m.cred); err != nil {
		return err
	}

	m.logger.Info("access token refreshed", "expires_at", m.cred.ExpiresAt)
	return nil
}

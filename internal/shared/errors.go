package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication and session errors
	ErrNotAuthenticated       = fmt.Errorf("not authenticated")
	ErrSessionExpired         = fmt.Errorf("session expired")
	ErrInvalidCredentialInput = fmt.Errorf("no usable session token in credential input")
	ErrNoRefreshToken         = fmt.Errorf("no refresh token available")
	ErrNoPendingHandshake     = fmt.Errorf("no pending authorization handshake")

	// API and service errors
	ErrAPIRequest           = fmt.Errorf("API request failed")
	ErrServiceUnavailable   = fmt.Errorf("service unavailable")
	ErrPlaylistCreateFailed = fmt.Errorf("playlist creation failed")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

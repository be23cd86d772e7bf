package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"ytmb/internal/shared"
)

// AuthLogin runs the OAuth device-code flow end to end: starts a handshake,
// shows the verification URL and user code, then polls until the user
// approves or the command is cancelled.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	clientID := cmd.String("client-id")
	if clientID == "" {
		clientID = r.config.Credentials.ClientID
	}
	clientSecret := cmd.String("client-secret")
	if clientSecret == "" {
		clientSecret = r.config.Credentials.ClientSecret
	}

	handshake, err := r.manager.StartDeviceAuth(ctx, clientID, clientSecret)
	if err != nil {
		return err
	}

	r.writePlain("Visit %s and enter code: %s\n", handshake.VerificationURL, handshake.UserCode)

	if !cmd.Bool("no-browser") {
		if err := shared.OpenBrowser(handshake.VerificationURL); err != nil {
			r.logger.Debug("failed to open browser", "error", err)
		}
	}

	r.writePlain("Waiting for approval...\n")

	cred, err := r.manager.CompleteDeviceAuth(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("authentication successful", "kind", cred.Kind)
	return r.writePlain("✓ Authentication successful\n")
}

// AuthHeaders persists a browser-header credential from a cURL command, a
// file, or stdin. Input may be a cURL command, a JSON object, or raw header
// lines; all forms are normalized before saving.
func (r *Runner) AuthHeaders(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	filePath := cmd.String("file")

	if curlCmd != "" && filePath != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --file", shared.ErrInvalidArgument)
	}

	var raw string
	switch {
	case curlCmd != "":
		raw = curlCmd
	case filePath != "":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("failed to read headers file: %w", err)
		}
		raw = string(data)
	default:
		r.writePlain("Paste headers (cURL command, JSON, or raw lines), then EOF (Ctrl-D):\n")
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		raw = string(data)
	}

	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%w: no header input provided", shared.ErrMissingArgument)
	}

	cred, err := r.manager.SetHeaders(raw)
	if err != nil {
		return err
	}

	r.logger.Info("browser headers saved", "count", len(cred.Headers))
	return r.writePlain("✓ Authentication successful (%d headers)\n", len(cred.Headers))
}

// AuthStatus reports the session state. With --probe it also performs a live
// health check against the service.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	state := r.manager.State()

	status := map[string]any{
		"state":           state.String(),
		"credential_path": r.manager.Store().Path(),
	}
	if cred := r.manager.Credential(); cred != nil {
		status["kind"] = cred.Kind
	}

	if cmd.Bool("probe") {
		health, err := r.client.Health(ctx)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
		}
		status["service"] = health.Status
		status["service_authenticated"] = health.Authenticated
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, true)
	}

	r.writePlain("State: %s\n", state)
	if kind, ok := status["kind"]; ok {
		r.writePlain("Credential: %s (%s)\n", kind, r.manager.Store().Path())
	}
	if svc, ok := status["service"]; ok {
		r.writePlain("Service: %s\n", svc)
		if status["service_authenticated"] == true {
			r.writePlain("Authentication: ✓ Authenticated\n")
		} else {
			r.writePlain("Authentication: ✗ Not authenticated\n")
		}
	}
	return nil
}

// AuthLogout deletes the persisted credential.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.manager.Logout(); err != nil {
		return err
	}
	return r.writePlain("✓ Credential removed\n")
}

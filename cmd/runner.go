package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"ytmb/internal/auth"
	"ytmb/internal/shared"
	"ytmb/internal/tasks"
	"ytmb/internal/ytmusic"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	manager *auth.Manager
	client  *ytmusic.Client
	logger  *log.Logger
	output  io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Manager    *auth.Manager
	Client     *ytmusic.Client
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Manager == nil {
		opts.Manager = auth.NewManager(auth.NewFileStore(opts.Config.Credentials.Path), opts.Logger)
	}
	if opts.Client == nil {
		httpClient := opts.HTTPClient
		if httpClient == nil {
			httpClient = &http.Client{Timeout: time.Duration(opts.Config.API.TimeoutSeconds) * time.Second}
		}
		opts.Client = ytmusic.NewClient(opts.Config.API.BaseURL, opts.Manager, httpClient)
	}

	return &Runner{
		config:  opts.Config,
		manager: opts.Manager,
		client:  opts.Client,
		logger:  opts.Logger,
		output:  opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, playlistCommand, searchCommand, cacheCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// assembler builds a playlist assembler, wiring in the resolution cache when
// the database exists. A missing database only disables caching.
func (r *Runner) assembler() (*tasks.Assembler, func(), error) {
	cache, closeDB, err := r.openCache()
	if err != nil {
		r.logger.Debug("resolution cache unavailable", "error", err)
		cache = nil
		closeDB = func() {}
	}

	engine := tasks.NewAssembler(r.client, cache, r.logger, tasks.AssemblerOpts{
		Workers:   r.config.Assembler.Workers,
		RateLimit: r.config.Assembler.RateLimit,
	})

	return engine, closeDB, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

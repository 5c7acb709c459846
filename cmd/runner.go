package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tripx/internal/formatter"
	"github.com/desertthunder/tripx/internal/models"
	"github.com/desertthunder/tripx/internal/services"
	"github.com/desertthunder/tripx/internal/session"
	"github.com/desertthunder/tripx/internal/shared"
	"github.com/desertthunder/tripx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	storage    session.Storage
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	store        *session.Store
	gateway      *services.Gateway
	auth         *services.AuthClient
	trips        *services.TripClient
	destinations *services.DestinationClient
	weather      *services.WeatherClient
	sync         *tasks.Synchronizer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Storage holds the durable session keys; nil keeps them in memory for the life of the process.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Storage    session.Storage
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
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Config.Server.Timeout.Duration}
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		storage:    opts.Storage,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
	r.wire()

	return r
}

// wire builds the session store, gateway, resource clients and synchronizer.
//
// Components get child loggers, which copy the level at creation, so a level change means wiring again.
// The session itself lives in storage and survives rewiring.
func (r *Runner) wire() {
	r.store = session.NewStore(r.storage, shared.WithLogger(r.logger, "component", "session"))
	r.gateway = services.NewGateway(services.GatewayOpts{
		Origin:    r.config.Server.Origin,
		Client:    r.httpClient,
		RateLimit: r.config.Server.RateLimit,
		Burst:     r.config.Server.Burst,
		Store:     r.store,
		Logger:    shared.WithLogger(r.logger, "component", "gateway"),
	})

	r.auth = services.NewAuthClient(r.gateway)
	r.trips = services.NewTripClient(r.gateway)
	r.destinations = services.NewDestinationClient(r.gateway)
	r.weather = services.NewWeatherClient(r.gateway)

	r.sync = tasks.NewSynchronizer(tasks.SyncOpts{
		Store:        r.store,
		Auth:         r.auth,
		Trips:        r.trips,
		Destinations: r.destinations,
		CSRF:         r.gateway,
		Renderer:     formatter.NewTripWriter(r.output),
		Logger:       shared.WithLogger(r.logger, "component", "sync"),
	})
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, tripsCommand, destinationsCommand, weatherCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// connect restores the stored session and, when the command will mutate, seeds the CSRF token.
//
// A failure to seed is not fatal. The backend's rejection of the mutation is the error the user sees.
func (r *Runner) connect(ctx context.Context, mutating bool) *models.Session {
	sess, err := r.store.Restore()
	if err != nil {
		r.logger.Warn("could not restore session", "error", err)
	}
	if mutating && !r.gateway.InitCSRF(ctx) {
		r.logger.Debug("mutating without a CSRF token", "origin", r.gateway.Origin())
	}
	return sess
}

// requireSession is [Runner.connect] for commands that make no sense anonymously.
func (r *Runner) requireSession(ctx context.Context, mutating bool) (*models.Session, error) {
	sess := r.connect(ctx, mutating)
	if sess == nil {
		return nil, fmt.Errorf("%w: run 'tripx auth login' first", shared.ErrNotAuthenticated)
	}
	return sess, nil
}

// quiet stops the synchronizer from printing the trip table, for commands that write their own output.
func (r *Runner) quiet() {
	r.sync.SetRenderer(nil)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return err
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

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// idArg reads a positional argument that must be a positive integer id.
func idArg(cmd *cli.Command, name string) (int, error) {
	raw := cmd.StringArg(name)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", shared.ErrInvalidArgument, name, raw)
	}
	return id, nil
}

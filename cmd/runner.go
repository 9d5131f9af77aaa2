package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/csvlist/internal/metrics"
	"github.com/desertthunder/csvlist/internal/services"
	"github.com/desertthunder/csvlist/internal/shared"
	"github.com/desertthunder/csvlist/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// ConnectFunc builds the Spotify service for a config. configPath is where refreshed tokens are saved.
type ConnectFunc func(ctx context.Context, config *shared.Config, configPath string, logger *log.Logger) (services.MusicService, error)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	spotify    services.MusicService
	connectFn  ConnectFunc
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Spotify    services.MusicService
	Connect    ConnectFunc
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

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		spotify:    opts.Spotify,
		connectFn:  opts.Connect,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// connect (re)builds the Spotify service from the current config. Without a ConnectFunc the injected service is
// kept.
func (r *Runner) connect(ctx context.Context) error {
	if r.connectFn == nil {
		return nil
	}
	svc, err := r.connectFn(ctx, r.config, r.configPath, r.logger)
	if err != nil {
		r.spotify = nil
		return err
	}
	r.spotify = svc
	return nil
}

// useConfig switches to the file named by --config when it differs from the one already loaded.
func (r *Runner) useConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if !cmd.IsSet("config") || path == "" || path == r.configPath {
		return nil
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrMissingConfig, err)
	}
	shared.ApplyEnv(config)

	r.config = config
	r.configPath = path
	r.logger.Debug("using config", "path", path)

	if err := r.connect(ctx); err != nil {
		r.logger.Warn("spotify service unavailable", "error", err)
	}
	return nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		importCommand, matchCommand, spotifyCommand, setupCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// engineOpts are the pacing and batching settings for one import engine.
type engineOpts struct {
	searchDelay time.Duration
	appendDelay time.Duration
	batchSize   int
	dryRun      bool
	recorder    tasks.Recorder
}

// engineOptsFrom reads pacing flags, falling back to the [pacing] section of the config.
func (r *Runner) engineOptsFrom(cmd *cli.Command) engineOpts {
	opts := engineOpts{
		searchDelay: r.config.Pacing.SearchDelay.Duration,
		appendDelay: r.config.Pacing.AppendDelay.Duration,
		batchSize:   r.config.Pacing.BatchSize,
		dryRun:      cmd.Bool("dry-run"),
	}
	if cmd.IsSet("search-delay") {
		opts.searchDelay = cmd.Duration("search-delay")
	}
	if cmd.IsSet("append-delay") {
		opts.appendDelay = cmd.Duration("append-delay")
	}
	if cmd.IsSet("batch-size") {
		opts.batchSize = cmd.Int("batch-size")
	}
	return opts
}

// newEngine builds an [tasks.ImportEngine] over the runner's Spotify service. Dry runs get no populator.
func (r *Runner) newEngine(opts engineOpts) (*tasks.ImportEngine, error) {
	if r.spotify == nil {
		return nil, fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	var populator *tasks.Populator
	if !opts.dryRun {
		populator = tasks.NewPopulator(r.spotify, tasks.FixedPacer{Delay: opts.appendDelay}, opts.batchSize, r.logger)
	}

	engine := tasks.NewImportEngine(r.spotify, populator, tasks.FixedPacer{Delay: opts.searchDelay}, r.logger)
	if opts.recorder != nil {
		engine.SetRecorder(opts.recorder)
	}
	return engine, nil
}

// metricsPath returns the textfile path from --metrics-file or [metrics].textfile.
func (r *Runner) metricsPath(cmd *cli.Command) string {
	if p := cmd.String("metrics-file"); p != "" {
		return p
	}
	return r.config.Metrics.Textfile
}

// writeMetrics writes the collector's textfile, logging instead of failing the command.
func (r *Runner) writeMetrics(c *metrics.Collector, path string) {
	if c == nil || path == "" {
		return
	}
	if err := c.WriteTextfile(path); err != nil {
		r.logger.Warn("failed to write metrics textfile", "path", path, "error", err)
		return
	}
	r.logger.Info("metrics written", "path", path)
}

// saveTokens stores token in the config and persists only the token fields to configPath when one is set.
func (r *Runner) saveTokens(token *oauth2.Token) error {
	if r.config == nil {
		return fmt.Errorf("%w: config is nil", shared.ErrMissingConfig)
	}
	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}
	if r.configPath == "" {
		return nil
	}
	if err := shared.SaveToken(r.configPath, token); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
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

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

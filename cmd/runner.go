package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/monthly/internal/shared"
	"github.com/desertthunder/monthly/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	library     tasks.Library
	logger      *log.Logger
	output      io.Writer
	input       io.Reader
	getenv      func(string) string
	now         func() time.Time
	openBrowser func(string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config      // Used instead of reading --config when set
	Library     tasks.Library       // Used instead of an authorized Spotify client when set
	Logger      *log.Logger
	Output      io.Writer
	Input       io.Reader           // Source of the pasted redirect URL in headless mode
	Getenv      func(string) string // Defaults to os.Getenv
	Now         func() time.Time
	OpenBrowser func(string) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}

	return &Runner{
		config:      opts.Config,
		library:     opts.Library,
		logger:      opts.Logger,
		output:      opts.Output,
		input:       opts.Input,
		getenv:      opts.Getenv,
		now:         opts.Now,
		openBrowser: opts.OpenBrowser,
	}
}

// loadConfig builds the effective configuration: defaults, then the TOML file, then the
// environment, then command-line flags.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	var config *shared.Config
	if r.config != nil {
		c := *r.config
		config = &c
	} else {
		path := cmd.String("config")
		if _, err := os.Stat(path); err == nil {
			if config, err = shared.LoadConfig(path); err != nil {
				return nil, err
			}
			r.logger.Debug("loaded config", "path", path)
		} else if cmd.IsSet("config") {
			return nil, fmt.Errorf("%w: config file %s not found", shared.ErrInvalidConfig, path)
		} else {
			config = shared.DefaultConfig()
		}
	}

	config.ApplyEnv(r.getenv)

	if cmd.IsSet("since") {
		config.Sync.Since = cmd.String("since")
	}
	if cmd.IsSet("format") {
		config.Sync.NameFormat = cmd.String("format")
	}
	if cmd.IsSet("headless") {
		config.Sync.Headless = cmd.Bool("headless")
	}
	if cmd.IsSet("schedule") {
		config.Schedule.Spec = cmd.String("schedule")
	}
	if cmd.IsSet("database") {
		config.Database.Path = cmd.String("database")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
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

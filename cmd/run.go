package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/monthly/internal/formatter"
	"github.com/desertthunder/monthly/internal/repositories"
	"github.com/desertthunder/monthly/internal/shared"
	"github.com/desertthunder/monthly/internal/tasks"
	"github.com/desertthunder/monthly/internal/ui"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v3"
)

// Run performs a single sync.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	syncer, closeFn, err := r.synchronizer(ctx, config)
	if err != nil {
		return err
	}
	defer closeFn()

	_, err = r.runOnce(ctx, syncer, outputOpts(cmd))
	return err
}

// Watch syncs once immediately and then on the configured schedule until ctx is cancelled.
//
// The same [tasks.Synchronizer] serves every run so the watermark carries over. A run that is
// still going when the next one is due causes that tick to be skipped.
func (r *Runner) Watch(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	clog := cronLogger{logger: r.logger}
	scheduler := cron.New(
		cron.WithLogger(clog),
		cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)),
	)

	syncer, closeFn, err := r.synchronizer(ctx, config)
	if err != nil {
		return err
	}
	defer closeFn()

	out := outputOpts(cmd)
	job := func() {
		if _, err := r.runOnce(ctx, syncer, out); err != nil {
			r.logger.Error("scheduled sync failed", "error", err)
		}
	}

	if _, err := scheduler.AddFunc(config.Schedule.Spec, job); err != nil {
		return fmt.Errorf("%w: schedule %q: %v", shared.ErrInvalidConfig, config.Schedule.Spec, err)
	}

	r.logger.Info("watching liked songs", "schedule", config.Schedule.Spec)
	job()

	scheduler.Start()
	<-ctx.Done()
	<-scheduler.Stop().Done()

	r.logger.Info("stopped watching")
	return nil
}

// Init writes the example configuration to the --config path.
func (r *Runner) Init(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.writePlain("✓ Created %s\n", path)
	return r.writePlain("Set %s and %s (or edit the file), then run: monthly auth\n", shared.EnvClientID, shared.EnvClientSecret)
}

// synchronizer builds a Synchronizer over the configured library. The returned func releases
// the token cache.
func (r *Runner) synchronizer(ctx context.Context, config *shared.Config) (*tasks.Synchronizer, func(), error) {
	watermark, err := shared.ParseSince(config.Sync.Since, r.now())
	if err != nil {
		return nil, nil, err
	}

	library, closeFn := r.library, func() {}
	if library == nil {
		db, err := repositories.Open(config.Database.Path)
		if err != nil {
			return nil, nil, err
		}
		spotify, err := r.authorize(ctx, config, db, false)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		library = spotify
		closeFn = func() { db.Close() }
	}

	syncer := tasks.NewSynchronizer(library, tasks.SynchronizerOpts{
		Watermark:  watermark,
		NameFormat: config.Sync.NameFormat,
		Logger:     shared.WithLogger(r.logger, "component", "sync"),
	})
	return syncer, closeFn, nil
}

// runOutput selects what a run prints or writes besides the summary.
type runOutput struct {
	progress bool
	report   string
}

func outputOpts(cmd *cli.Command) runOutput {
	return runOutput{progress: cmd.Bool("progress"), report: cmd.String("report")}
}

// runOnce runs syncer, prints the summary, and writes the report when one was requested.
func (r *Runner) runOnce(ctx context.Context, syncer *tasks.Synchronizer, out runOutput) (*tasks.RunResult, error) {
	var (
		progress chan tasks.ProgressUpdate
		wg       sync.WaitGroup
	)
	if out.progress {
		progress = make(chan tasks.ProgressUpdate, 64)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for update := range progress {
				r.writePlain("%s\n", ui.ProgressLine(update))
			}
		}()
	}

	result, err := syncer.Run(ctx, progress)
	if progress != nil {
		close(progress)
		wg.Wait()
	}

	if result == nil {
		return nil, err
	}

	r.writePlain("%s", ui.Summary(result))
	if out.report != "" {
		if reportErr := formatter.WriteReport(result, out.report); reportErr != nil {
			r.logger.Warn("failed to write report", "path", out.report, "error", reportErr)
		} else {
			r.logger.Info("report written", "path", out.report)
		}
	}
	return result, err
}

// cronLogger adapts a [log.Logger] to [cron.Logger].
type cronLogger struct {
	logger *log.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.logger.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.logger.Error(msg, append(keysAndValues, "error", err)...)
}

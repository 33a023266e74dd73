// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

const version = "0.1.0"

// app builds the root command. Without a subcommand it performs a single sync.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:     "monthly",
		Usage:    "File newly liked Spotify songs into monthly playlists",
		Version:  version,
		Flags:    globalFlags(),
		Action:   r.Run,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		runCommand, watchCommand, authCommand, initCommand,
	} {
		commands = append(commands, fn(r))
	}
	return commands
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
			Sources: cli.EnvVars("MONTHLY_CONFIG"),
		},
		&cli.StringFlag{
			Name:    "since",
			Usage:   "Only file songs liked after this instant (RFC 3339 or YYYY-MM-DD, default: start of this month)",
			Sources: cli.EnvVars("MONTHLY_SINCE"),
		},
		&cli.StringFlag{
			Name:    "format",
			Usage:   "Go time layout used to name monthly playlists",
			Value:   "Jan '06",
			Sources: cli.EnvVars("MONTHLY_FORMAT"),
		},
		&cli.BoolFlag{
			Name:    "headless",
			Usage:   "Authorize without a browser by pasting the redirect URL",
			Sources: cli.EnvVars("MONTHLY_HEADLESS"),
		},
		&cli.StringFlag{
			Name:    "database",
			Usage:   "Path to the token cache database",
			Sources: cli.EnvVars("MONTHLY_DATABASE"),
		},
		&cli.StringFlag{
			Name:  "report",
			Usage: "Write a report of each run to this file (.csv, .md, or plain text)",
		},
		&cli.BoolFlag{
			Name:  "progress",
			Usage: "Print progress while syncing",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable debug logging",
		},
	}
}

// runCommand performs one sync.
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Add songs liked since the watermark to their monthly playlists",
		Action: r.Run,
	}
}

// watchCommand syncs on a schedule until interrupted.
func watchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Sync now and then on a schedule until interrupted",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "schedule",
				Usage:   "Cron spec or @every duration",
				Value:   "@every 1h",
				Sources: cli.EnvVars("MONTHLY_SCHEDULE"),
			},
		},
		Action: r.Watch,
	}
}

// authCommand authorizes monthly with Spotify and caches the token.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorize with Spotify and cache the token",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "logout",
				Usage: "Forget the cached token",
			},
		},
		Action: r.Auth,
	}
}

// initCommand writes an example config file.
func initCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "init",
		Usage:  "Create config.toml from the built-in example",
		Action: r.Init,
	}
}

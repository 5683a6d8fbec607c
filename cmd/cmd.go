// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// sourceFlags are shared by every command that aggregates library tracks.
func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "sources",
			Aliases: []string{"s"},
			Usage:   "Playlist IDs to aggregate (default: liked songs)",
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Maximum number of tracks to fetch per source (0 = all)",
		},
	}
}

// sortFlags are shared by every sort subcommand.
func sortFlags() []cli.Flag {
	flags := []cli.Flag{
		configFlag(),
		&cli.StringFlag{
			Name:    "prefix",
			Aliases: []string{"p"},
			Usage:   "Playlist name prefix",
		},
		&cli.BoolFlag{
			Name:  "public",
			Usage: "Create public playlists",
		},
		&cli.IntFlag{
			Name:  "min-tracks",
			Usage: "Skip buckets with fewer writable tracks",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Preview buckets without creating playlists",
		},
		&cli.BoolFlag{
			Name:    "yes",
			Aliases: []string{"y"},
			Usage:   "Skip the confirmation prompt",
		},
		&cli.BoolFlag{
			Name:  "export",
			Usage: "Write buckets to local files",
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "Export format (json, csv, markdown, txt)",
			Value: "json",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Export output directory",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
	}
	return append(flags, sourceFlags()...)
}

// authCommand handles Spotify OAuth operations.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authenticate with Spotify using OAuth2",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show stored token state",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthStatus,
			},
		},
	}
}

// libraryCommand handles read-only library inspection.
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "library",
		Aliases: []string{"lib"},
		Usage:   "Inspect the Spotify library",
		Commands: []*cli.Command{
			{
				Name:  "tracks",
				Usage: "List saved tracks",
				Flags: append([]cli.Flag{
					configFlag(),
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
				}, sourceFlags()...),
				Action: r.LibraryTracks,
			},
			{
				Name:  "playlists",
				Usage: "List playlists",
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{Name: "limit", Usage: "Maximum number of playlists to return"},
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
				},
				Action: r.LibraryPlaylists,
			},
			{
				Name:  "top-artists",
				Usage: "Show your most-listened artists",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{Name: "time", Usage: "Time range (short=4 weeks, medium=6 months, long=all time)", Value: "medium"},
					&cli.IntFlag{Name: "limit", Usage: "Number of artists to show", Value: 20},
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
				},
				Action: r.LibraryTopArtists,
			},
			{
				Name:   "stats",
				Usage:  "Summarize the aggregated library",
				Flags:  append([]cli.Flag{configFlag()}, sourceFlags()...),
				Action: r.LibraryStats,
			},
		},
	}
}

// sortCommand classifies the library and builds playlists, one subcommand per scheme.
func sortCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sort",
		Usage: "Classify the library and create playlists",
		Commands: []*cli.Command{
			{
				Name:   "genre",
				Usage:  "Group tracks by the primary artist's genres",
				Flags:  sortFlags(),
				Action: r.SortGenre,
			},
			{
				Name:   "mood",
				Usage:  "Group tracks by audio-feature moods",
				Flags:  sortFlags(),
				Action: r.SortMood,
			},
			{
				Name:   "decade",
				Usage:  "Group tracks by release decade",
				Flags:  sortFlags(),
				Action: r.SortDecade,
			},
			{
				Name:   "artist",
				Usage:  "Group tracks by primary artist",
				Flags:  sortFlags(),
				Action: r.SortArtist,
			},
		},
	}
}

// filterCommand selects tracks matching year, artist, genre, and mood criteria.
func filterCommand(r *Runner) *cli.Command {
	flags := []cli.Flag{
		configFlag(),
		&cli.IntFlag{Name: "year-from", Usage: "Earliest release year, inclusive"},
		&cli.IntFlag{Name: "year-to", Usage: "Latest release year, inclusive"},
		&cli.StringSliceFlag{Name: "artist", Usage: "Artist name (exact, case-insensitive, any credited artist)"},
		&cli.StringSliceFlag{Name: "genre", Usage: "Genre fragment (substring, case-insensitive)"},
		&cli.StringFlag{Name: "mood", Usage: "Mood rule name (happy, sad, energetic, calm, party, chill)"},
		&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
		&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
		&cli.StringFlag{Name: "save", Usage: "Create a playlist with this name from the matching tracks"},
	}
	return &cli.Command{
		Name:   "filter",
		Usage:  "List library tracks matching the given criteria",
		Flags:  append(flags, sourceFlags()...),
		Action: r.Filter,
	}
}

// historyCommand inspects recorded sort runs.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect recorded sort runs",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent sort runs",
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{Name: "limit", Usage: "Maximum number of runs to show", Value: 10},
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Show one run with its created playlists",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.HistoryShow,
			},
			{
				Name:  "delete",
				Usage: "Delete a recorded run (playlists on Spotify are untouched)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.HistoryDelete,
			},
		},
	}
}

// setupCommand handles setup operations for database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "config",
				Usage:  "Create a config.toml from the embedded template",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
		},
	}
}

// infoCommand shows the authenticated account profile.
func infoCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "info",
		Usage: "Show your Spotify account information",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
		},
		Action: r.Info,
	}
}

// tuiCommand returns the top-level TUI command for interactive sorting.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for library sorting",
		Action:  r.TUI,
	}
}

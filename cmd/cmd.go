// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/undertone/internal/models"
	"github.com/urfave/cli/v3"
)

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
		},
	}
}

func credentialFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "username",
			Aliases:  []string{"u"},
			Usage:    "Account username",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"p"},
			Usage:   "Account password",
			Sources: cli.EnvVars("UNDERTONE_PASSWORD"),
		},
	}
}

func saveFlag() cli.Flag {
	return &cli.IntFlag{
		Name:  "save",
		Usage: "Save the result at this 1-based position",
	}
}

// setupCommand handles setup operations for configuration and the cookie database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a config.toml from the built-in template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize the session database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the latest database migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// authCommand handles the backend session.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Log in, register and inspect the backend session",
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show whether a session is active",
				Flags:  jsonFlags(),
				Action: r.AuthStatus,
			},
			{
				Name:   "login",
				Usage:  "Log in and store the session cookie",
				Flags:  credentialFlags(),
				Action: r.AuthLogin,
			},
			{
				Name:   "register",
				Usage:  "Create an account",
				Flags:  credentialFlags(),
				Action: r.AuthRegister,
			},
			{
				Name:   "logout",
				Usage:  "End the session and forget stored cookies",
				Action: r.AuthLogout,
			},
		},
	}
}

// libraryCommand handles the saved collection.
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "library",
		Aliases: []string{"lib"},
		Usage:   "Saved songs, ratings and exports",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List saved songs with their ratings",
				Flags:  jsonFlags(),
				Action: r.LibraryList,
			},
			{
				Name:  "rate",
				Usage: "Rate a saved song from 1 to 5 stars",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "stars"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "comment",
						Usage: "Optional comment stored with the rating",
					},
				},
				Action: r.LibraryRate,
			},
			{
				Name:  "export",
				Usage: "Export the library as csv, md, txt or json",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (csv, md, txt, json)",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: library.<format>)",
					},
				},
				Action: r.LibraryExport,
			},
		},
	}
}

// recsCommand handles the recommendation feed.
func recsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "recs",
		Aliases: []string{"feed"},
		Usage:   "Recommendations based on your ratings",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List recommendations in backend order",
				Flags:  jsonFlags(),
				Action: r.RecsList,
			},
			{
				Name:  "save",
				Usage: "Save the recommendation at a 1-based position",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "position"},
				},
				Action: r.RecsSave,
			},
		},
	}
}

// searchCommand handles the discovery searches.
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Explore the catalog, filter it, or search by intent",
		Commands: []*cli.Command{
			{
				Name:   "explore",
				Usage:  "Browse the catalog",
				Flags:  append(jsonFlags(), saveFlag()),
				Action: r.SearchExplore,
			},
			{
				Name:  "objective",
				Usage: "Filter by genre and audio buckets",
				Flags: append(jsonFlags(),
					&cli.StringFlag{Name: "genre", Usage: "Genre (free-form)", Value: models.AnyFilter},
					&cli.StringFlag{Name: "tempo", Usage: "slow, moderate or fast", Value: models.AnyFilter},
					&cli.StringFlag{Name: "loudness", Usage: "soft or heavy", Value: models.AnyFilter},
					&cli.StringFlag{Name: "popularity", Usage: "undertone or mainstream", Value: models.AnyFilter},
					saveFlag(),
				),
				Action: r.SearchObjective,
			},
			{
				Name:  "intent",
				Usage: "Describe what you want to hear",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "text"},
				},
				Flags: append(jsonFlags(),
					&cli.StringFlag{
						Name:    "mode",
						Aliases: []string{"m"},
						Usage:   "Discovery mode (all, undertone, mainstream)",
					},
					saveFlag(),
				),
				Action: r.SearchIntent,
			},
		},
	}
}

// importCommand handles external catalog lookups.
func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Find songs outside the catalog and import them",
		Commands: []*cli.Command{
			{
				Name:  "search",
				Usage: "Look up tracks in the external catalog",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "query"},
				},
				Flags:  jsonFlags(),
				Action: r.ImportSearch,
			},
			{
				Name:  "add",
				Usage: "Import a track into the catalog",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "artist", Usage: "Track artist", Required: true},
					&cli.StringFlag{Name: "title", Usage: "Track title", Required: true},
					&cli.BoolFlag{Name: "save", Usage: "Also save the imported song to your library"},
				},
				Action: r.ImportAdd,
			},
		},
	}
}

// apiCommand handles direct backend calls.
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct API calls to the Undertone backend",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints the response body",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

// tuiCommand launches the interactive interface.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Interactive terminal interface",
		Action: r.TUI,
	}
}

// devserverCommand runs the in-memory development backend.
func devserverCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "devserver",
		Usage: "Run a local in-memory Undertone backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (default: server.host:server.port)",
			},
			&cli.StringSliceFlag{
				Name:  "origins",
				Usage: "Browser origins allowed to call the backend with credentials",
			},
		},
		Action: r.DevServer,
	}
}

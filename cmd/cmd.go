// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// configFlag points setup at the config file the runner was started with.
func configFlag(r *Runner) *cli.StringFlag {
	path := r.configPath
	if path == "" {
		path = defaultConfigPath
	}
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   path,
	}
}

// setupCommand handles setup operations for the config file and local database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml and initialize the session database",
		Flags:  []cli.Flag{configFlag(r)},
		Action: r.Setup,
		Commands: []*cli.Command{
			{
				Name:   "rollback",
				Usage:  "Revert the most recent database migration",
				Flags:  []cli.Flag{configFlag(r)},
				Action: r.SetupRollback,
			},
		},
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the backend session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in and store the session locally",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "username"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "password",
						Aliases: []string{"p"},
						Usage:   "Account password",
						Sources: cli.EnvVars("TRIPX_PASSWORD"),
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "register",
				Usage: "Create a new account",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "username"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account email address",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "password",
						Aliases: []string{"p"},
						Usage:   "Account password",
						Sources: cli.EnvVars("TRIPX_PASSWORD"),
					},
				},
				Action: r.AuthRegister,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored session",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show backend health and the current session",
				Action: r.AuthStatus,
			},
		},
	}
}

// tripsCommand handles trip operations
func tripsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "trips",
		Aliases: []string{"trip", "t"},
		Usage:   "List, create and delete trips",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List trips with their destinations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.TripsList,
			},
			{
				Name:  "create",
				Usage: "Create a trip",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "description",
						Aliases: []string{"d"},
						Usage:   "Trip description",
					},
					&cli.StringFlag{
						Name:  "start",
						Usage: "Start date (YYYY-MM-DD)",
					},
					&cli.StringFlag{
						Name:  "end",
						Usage: "End date (YYYY-MM-DD)",
					},
				},
				Action: r.TripsCreate,
			},
			{
				Name:    "delete",
				Aliases: []string{"rm"},
				Usage:   "Delete a trip and its destinations",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.TripsDelete,
			},
			{
				Name:  "export",
				Usage: "Export trips to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: json, csv, markdown, txt or xlsx",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: trips.<ext>)",
					},
					&cli.BoolFlag{
						Name:  "with-weather",
						Usage: "Include current weather per destination (xlsx only)",
					},
				},
				Action: r.TripsExport,
			},
			{
				Name:  "chart",
				Usage: "Bar chart of destinations per trip",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "width",
						Usage: "Width of the longest bar",
						Value: 40,
					},
				},
				Action: r.TripsChart,
			},
		},
	}
}

// destinationsCommand handles destination operations
func destinationsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "destinations",
		Aliases: []string{"dest", "d"},
		Usage:   "Manage the stops of a trip",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List the destinations of a trip",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "trip-id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.DestinationsList,
			},
			{
				Name:  "add",
				Usage: "Add a destination to a trip",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "trip-id"},
					&cli.StringArg{Name: "city"},
					&cli.StringArg{Name: "country"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "arrival",
						Usage: "Arrival date (YYYY-MM-DD)",
					},
					&cli.StringFlag{
						Name:  "departure",
						Usage: "Departure date (YYYY-MM-DD)",
					},
				},
				Action: r.DestinationsAdd,
			},
			{
				Name:    "delete",
				Aliases: []string{"rm"},
				Usage:   "Remove a destination",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.DestinationsDelete,
			},
		},
	}
}

// weatherCommand handles weather lookups
func weatherCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "weather",
		Aliases: []string{"w"},
		Usage:   "Current conditions and forecasts",
		Commands: []*cli.Command{
			{
				Name:  "current",
				Usage: "Current conditions at a destination",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "destination-id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "refresh",
						Usage: "Ask the backend to re-query its provider",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.WeatherCurrent,
			},
			{
				Name:  "forecast",
				Usage: "Five-day forecast for a destination",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "destination-id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.WeatherForecast,
			},
			{
				Name:  "city",
				Usage: "Current conditions for any city",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "city"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "country",
						Usage: "ISO country code to disambiguate the city",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.WeatherCity,
			},
			{
				Name:  "trip",
				Usage: "Current conditions at every destination of a trip",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "trip-id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Every trip instead of one",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent requests with --all",
						Value: 3,
					},
				},
				Action: r.WeatherTrip,
			},
		},
	}
}

// apiCommand handles direct API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the backend with the stored session attached",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints the response body",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON bodies",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with a JSON body",
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
			{
				Name:  "delete",
				Usage: "Direct DELETE",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Action: r.APIDelete,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive trip management.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive trip planner",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the TUI owns the terminal",
				Value: "./tmp/tripx-tui.log",
			},
		},
		Action: r.TUI,
	}
}

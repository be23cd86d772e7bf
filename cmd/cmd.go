// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand groups local setup operations
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
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
		},
	}
}

// authCommand handles session lifecycle operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage YouTube Music authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authenticate via the OAuth device flow",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "client-id",
						Usage: "OAuth client ID (overrides config)",
					},
					&cli.StringFlag{
						Name:  "client-secret",
						Usage: "OAuth client secret (overrides config)",
					},
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the verification URL instead of opening a browser",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "headers",
				Usage: "Authenticate from captured browser headers",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "Raw cURL command copied from browser dev tools",
					},
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "File containing headers (cURL command, JSON, or raw header lines)",
					},
				},
				Action: r.AuthHeaders,
			},
			{
				Name:  "status",
				Usage: "Show current authentication state",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "probe",
						Usage: "Verify the session against the live service",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Delete the persisted credential",
				Action: r.AuthLogout,
			},
		},
	}
}

// playlistCommand handles playlist assembly operations
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Build YouTube Music playlists",
		Commands: []*cli.Command{
			{
				Name:  "build",
				Usage: "Create a playlist from free-text track queries",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "title",
						Aliases:  []string{"t"},
						Usage:    "Playlist title",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "description",
						Aliases: []string{"d"},
						Usage:   "Playlist description",
					},
					&cli.StringFlag{
						Name:  "privacy",
						Usage: "Playlist visibility (PRIVATE, PUBLIC, UNLISTED)",
						Value: "PRIVATE",
					},
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "File with one track query per line (- for stdin)",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Report format (json, markdown, text)",
						Value: "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the report to a file instead of stdout",
					},
				},
				Arguments: []cli.Argument{
					&cli.StringArgs{
						Name: "queries",
						Max:  -1,
					},
				},
				Action: r.PlaylistBuild,
			},
			{
				Name:  "from-ids",
				Usage: "Create a playlist from known track identifiers",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "title",
						Aliases:  []string{"t"},
						Usage:    "Playlist title",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "description",
						Aliases: []string{"d"},
						Usage:   "Playlist description",
					},
					&cli.StringFlag{
						Name:  "privacy",
						Usage: "Playlist visibility (PRIVATE, PUBLIC, UNLISTED)",
						Value: "PRIVATE",
					},
				},
				Arguments: []cli.Argument{
					&cli.StringArgs{
						Name: "ids",
						Max:  -1,
					},
				},
				Action: r.PlaylistFromIDs,
			},
		},
	}
}

// searchCommand resolves queries without creating a playlist
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search tracks and print ranked candidates",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum candidates per query",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Arguments: []cli.Argument{
			&cli.StringArgs{
				Name: "queries",
				Max:  -1,
			},
		},
		Action: r.SearchTracks,
	}
}

// cacheCommand manages the resolution cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the resolution cache",
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show cached resolution counts",
				Action: r.CacheStats,
			},
			{
				Name:   "clear",
				Usage:  "Delete all cached resolutions",
				Action: r.CacheClear,
			},
		},
	}
}

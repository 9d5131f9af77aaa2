// submodule cmd contains command definitions
package main

import (
	"fmt"
	"strings"

	"github.com/desertthunder/csvlist/internal/formatter"
	"github.com/urfave/cli/v3"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// pacingFlags override the [pacing] section of the config for a single run.
func pacingFlags(r *Runner) []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:  "search-delay",
			Usage: "Pause after each search call",
			Value: r.config.Pacing.SearchDelay.Duration,
		},
		&cli.DurationFlag{
			Name:  "append-delay",
			Usage: "Pause after each append call",
			Value: r.config.Pacing.AppendDelay.Duration,
		},
		&cli.IntFlag{
			Name:  "batch-size",
			Usage: "Track ids per append call (1-100)",
			Value: r.config.Pacing.BatchSize,
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Candidates requested per search",
			Value: r.config.Pacing.SearchLimit,
		},
	}
}

// inputFlags locate the CSV file and name the playlist to create.
func inputFlags(r *Runner) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "CSV file with artist and song columns",
			Value:   r.config.Input.Path,
		},
		&cli.StringFlag{
			Name:  "artist-column",
			Usage: "Header of the artist column",
			Value: r.config.Input.ArtistColumn,
		},
		&cli.StringFlag{
			Name:  "song-column",
			Usage: "Header of the song column",
			Value: r.config.Input.SongColumn,
		},
		&cli.StringFlag{
			Name:    "name",
			Aliases: []string{"n"},
			Usage:   "Name of the playlist to create",
			Value:   r.config.Playlist.Name,
		},
		&cli.StringFlag{
			Name:  "description",
			Usage: "Playlist description",
			Value: r.config.Playlist.Description,
		},
		&cli.BoolFlag{
			Name:  "public",
			Usage: "Create a public playlist",
			Value: r.config.Playlist.Public,
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Search and match without creating a playlist",
		},
	}
}

func formatNames() string {
	names := make([]string, len(formatter.Formats))
	for i, f := range formatter.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// importCommand reads a CSV file and builds a Spotify playlist from it.
func importCommand(r *Runner) *cli.Command {
	flags := append(inputFlags(r), pacingFlags(r)...)
	flags = append(flags,
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the run summary to this file",
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: fmt.Sprintf("Summary export format (%s); inferred from --output when empty", formatNames()),
		},
		&cli.StringFlag{
			Name:  "metrics-file",
			Usage: "Write Prometheus textfile metrics to this path",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable debug logging",
		},
		configFlag(),
	)

	return &cli.Command{
		Name:      "import",
		Aliases:   []string{"run"},
		Usage:     "Create a Spotify playlist from a CSV of artists and songs",
		ArgsUsage: "[file]",
		Flags:     flags,
		Action:    r.Import,
	}
}

// matchCommand runs a single search and shows the decision for one pair.
func matchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "match",
		Usage: "Search Spotify for one artist and song and show the match decision",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "artist",
				Aliases:  []string{"a"},
				Usage:    "Artist name",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "song",
				Aliases:  []string{"s"},
				Usage:    "Song title",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Candidates requested",
				Value: r.config.Pacing.SearchLimit,
			},
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
		Action: r.Match,
	}
}

// spotifyCommand handles Spotify account operations
func spotifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotify",
		Aliases: []string{"spot"},
		Usage:   "Spotify account operations",
		Commands: []*cli.Command{
			{
				Name:   "auth",
				Usage:  "Authenticate with Spotify using OAuth2",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SpotifyAuth,
			},
			{
				Name:  "me",
				Usage: "Show the authenticated Spotify user",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.SpotifyMe,
			},
		},
	}
}

// setupCommand handles first-run configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a config.toml template and validate it",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing config file",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for an interactive import.
func tuiCommand(r *Runner) *cli.Command {
	flags := append(inputFlags(r), pacingFlags(r)...)
	flags = append(flags,
		&cli.StringFlag{
			Name:  "metrics-file",
			Usage: "Write Prometheus textfile metrics to this path",
		},
		configFlag(),
	)

	return &cli.Command{
		Name:      "tui",
		Aliases:   []string{"interactive", "ui"},
		Usage:     "Launch interactive TUI to preview and run an import",
		ArgsUsage: "[file]",
		Flags:     flags,
		Action:    r.TUI,
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/csvlist/internal/formatter"
	"github.com/desertthunder/csvlist/internal/metrics"
	"github.com/desertthunder/csvlist/internal/models"
	"github.com/desertthunder/csvlist/internal/shared"
	"github.com/desertthunder/csvlist/internal/tasks"
	"github.com/urfave/cli/v3"
)

// stringFlag returns the flag value when set on the command line, else fallback.
func stringFlag(cmd *cli.Command, name, fallback string) string {
	if cmd.IsSet(name) {
		return cmd.String(name)
	}
	return fallback
}

// importOptions reads the CSV named by the first argument, --file, or [input].path and resolves playlist settings.
func (r *Runner) importOptions(cmd *cli.Command) (tasks.ImportOptions, error) {
	path := cmd.Args().First()
	if path == "" {
		path = stringFlag(cmd, "file", r.config.Input.Path)
	}
	if path == "" {
		return tasks.ImportOptions{}, fmt.Errorf("%w: a CSV file is required (argument, --file, or [input].path)", shared.ErrMissingArgument)
	}

	cols := formatter.ColumnMap{
		Artist: stringFlag(cmd, "artist-column", r.config.Input.ArtistColumn),
		Song:   stringFlag(cmd, "song-column", r.config.Input.SongColumn),
	}

	requests, err := formatter.ReadRequestsFile(path, cols)
	if err != nil {
		return tasks.ImportOptions{}, err
	}
	r.logger.Info("read input", "path", path, "rows", len(requests))

	public := r.config.Playlist.Public
	if cmd.IsSet("public") {
		public = cmd.Bool("public")
	}

	limit := r.config.Pacing.SearchLimit
	if cmd.IsSet("limit") {
		limit = cmd.Int("limit")
	}

	opts := tasks.ImportOptions{
		Requests:    requests,
		Name:        strings.TrimSpace(stringFlag(cmd, "name", r.config.Playlist.Name)),
		Description: stringFlag(cmd, "description", r.config.Playlist.Description),
		Public:      public,
		DryRun:      cmd.Bool("dry-run"),
		SearchLimit: limit,
	}
	if opts.Name == "" && !opts.DryRun {
		return opts, fmt.Errorf("%w: playlist name cannot be empty", shared.ErrMissingArgument)
	}
	return opts, nil
}

// printProgress writes engine updates until the channel closes.
func (r *Runner) printProgress(updates <-chan tasks.ProgressUpdate, wg *sync.WaitGroup) {
	defer wg.Done()
	for update := range updates {
		switch update.Phase {
		case tasks.CreatePlaylist:
			r.writePlain("📝 %s\n", update.Message)
		case tasks.SearchTracks:
			if update.Step == 1 {
				r.writePlain("\n🔍 Searching %d songs...\n", update.Total)
			}
			r.writePlain("   %s\n", update.Message)
		case tasks.AddTracks:
			r.writePlain("\n➕ %s\n", update.Message)
		}
	}
}

// runImport executes one engine run, printing progress as it goes.
func (r *Runner) runImport(ctx context.Context, engine *tasks.ImportEngine, opts tasks.ImportOptions) (*models.RunSummary, error) {
	updates := make(chan tasks.ProgressUpdate, 50)

	var wg sync.WaitGroup
	wg.Add(1)
	go r.printProgress(updates, &wg)

	summary, err := engine.Run(ctx, updates, opts)
	close(updates)
	wg.Wait()

	return summary, err
}

// Import reads a CSV file, searches Spotify for each row, and appends the matches to a new playlist.
//
// A failure to create the playlist fails the command; a failed append is reported in the summary only.
func (r *Runner) Import(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	if err := r.useConfig(ctx, cmd); err != nil {
		return err
	}
	if err := r.config.Validate(); err != nil {
		return err
	}

	opts, err := r.importOptions(cmd)
	if err != nil {
		return err
	}

	exportPath := cmd.String("output")
	exportFormat := formatter.FormatFromPath(exportPath)
	if f := cmd.String("format"); f != "" {
		if exportFormat, err = formatter.ParseFormat(f); err != nil {
			return err
		}
	}

	eopts := r.engineOptsFrom(cmd)
	metricsPath := r.metricsPath(cmd)
	var collector *metrics.Collector
	if metricsPath != "" {
		collector = metrics.New()
		eopts.recorder = collector
	}

	engine, err := r.newEngine(eopts)
	if err != nil {
		return err
	}

	if opts.DryRun {
		r.writePlain("Dry run: matching %d songs without creating a playlist\n", len(opts.Requests))
	} else {
		r.writePlain("Importing %d songs into '%s' (%s)\n", len(opts.Requests), opts.Name, shared.VisibilityString(opts.Public))
	}

	summary, err := r.runImport(ctx, engine, opts)
	if errors.Is(err, shared.ErrTokenExpired) && summary != nil && summary.Playlist == nil {
		if reauthed, authErr := r.handleSpotifyAuthError(ctx, err); reauthed {
			if authErr != nil {
				return authErr
			}
			if engine, err = r.newEngine(eopts); err != nil {
				return err
			}
			summary, err = r.runImport(ctx, engine, opts)
		}
	}
	r.writeMetrics(collector, metricsPath)
	if err != nil {
		return err
	}

	r.writePlain("\n")
	if err := formatter.WriteSummary(r.output, summary); err != nil {
		return err
	}

	if exportPath != "" {
		if err := formatter.WriteSummaryExport(summary, exportPath, exportFormat); err != nil {
			return err
		}
		r.logger.Info("summary exported", "path", exportPath, "format", exportFormat)
	}

	r.writePlain("\n")
	switch {
	case summary.PopulateErr != nil:
		r.writePlain("⚠ Added %d of %d matched tracks: %v\n", summary.Appended, len(summary.Matched), summary.PopulateErr)
	case summary.Playlist != nil && summary.Appended > 0:
		r.writePlain("✓ Added %d tracks to '%s'\n", summary.Appended, summary.Playlist.Name)
	case summary.Playlist != nil:
		r.writePlain("⚠ Playlist '%s' was created but no tracks were added\n", summary.Playlist.Name)
	}
	if summary.Playlist != nil && summary.Playlist.URL != "" {
		r.writePlain("  %s\n", summary.Playlist.URL)
	}

	return nil
}

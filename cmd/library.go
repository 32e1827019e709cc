package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/undertone/internal/formatter"
	"github.com/desertthunder/undertone/internal/models"
	"github.com/desertthunder/undertone/internal/shared"
	"github.com/desertthunder/undertone/internal/views"
	"github.com/urfave/cli/v3"
)

// LibraryList prints the saved songs as cards, or raw entries with --json.
func (r *Runner) LibraryList(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("json") {
		entries, err := r.undertone.Library(ctx)
		if err != nil {
			return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
		}
		return r.writeJSON(entries, cmd.Bool("pretty"))
	}

	state, err := r.profile.Library.Load(ctx)
	if err != nil {
		r.writePlain("%s\n", state.Message)
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	if state.Status == views.Empty {
		return r.writePlain("%s\n", state.Message)
	}

	r.writePlainHeader(fmt.Sprintf("Library (%d songs)", len(state.Cards)))
	for _, c := range state.Cards {
		r.writePlain("[%d] %s\n", c.Song.ID, formatter.Card(c.Song))
		r.writePlain("    %s", formatter.Stars(c.Stars))
		if c.Comment != "" {
			r.writePlain("  \"%s\"", c.Comment)
		}
		r.writePlain("\n\n")
	}
	return nil
}

// LibraryRate selects stars on a saved song and submits them with an optional comment.
func (r *Runner) LibraryRate(ctx context.Context, cmd *cli.Command) error {
	songID, err := strconv.ParseInt(cmd.StringArg("id"), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: song id must be a number", shared.ErrInvalidArgument)
	}
	stars, err := strconv.Atoi(cmd.StringArg("stars"))
	if err != nil {
		return fmt.Errorf("%w: stars must be a number from 1 to 5", shared.ErrInvalidArgument)
	}

	if _, err := r.profile.Library.Load(ctx); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	if err := r.profile.Library.SelectStars(songID, stars); err != nil {
		return err
	}
	if cmd.IsSet("comment") {
		if err := r.profile.Library.SetComment(songID, cmd.String("comment")); err != nil {
			return err
		}
	}

	r.logger.Info("rating song", "song", songID, "stars", stars)
	msg, err := r.profile.Library.SubmitRating(ctx, songID)
	if err != nil {
		r.writePlain("✗ %s\n", msg)
		return err
	}
	return r.writePlain("✓ %s\n", msg)
}

// LibraryExport writes the library to a file in the requested format.
func (r *Runner) LibraryExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	me, err := r.undertone.Me(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	if !me.LoggedIn {
		return fmt.Errorf("%w: log in to export your library", shared.ErrNotAuthenticated)
	}

	entries, err := r.undertone.Library(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}

	path, err := formatter.WriteExport(formatter.NewExport(me.Username, entries), format, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("library exported", "path", path, "songs", len(entries))
	return r.writePlain("✓ Exported %d songs to %s\n", len(entries), path)
}

// pick returns the result at a 1-based position.
func pick(results []models.Result, position int) (models.Result, error) {
	if position < 1 || position > len(results) {
		return models.Result{}, fmt.Errorf("%w: position %d is out of range (1-%d)", shared.ErrInvalidArgument, position, len(results))
	}
	return results[position-1], nil
}

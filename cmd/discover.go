package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/undertone/internal/formatter"
	"github.com/desertthunder/undertone/internal/models"
	"github.com/desertthunder/undertone/internal/shared"
	"github.com/desertthunder/undertone/internal/views"
	"github.com/urfave/cli/v3"
)

func (r *Runner) writeResults(title string, results []models.Result) {
	r.writePlainHeader(title)
	for i, res := range results {
		r.writePlain("%2d. %s\n", i+1, formatter.Card(res.Song))
		if res.Kind == models.Suggestion {
			r.writePlain("    (suggestion, saved by artist and title)\n")
		}
	}
}

// reportSave prints a save outcome and turns failures into errors.
func (r *Runner) reportSave(out views.SaveOutcome) error {
	if out.OK() {
		return r.writePlain("✓ %s\n", out.Message)
	}

	r.writePlain("✗ %s\n", out.Message)
	if out.Err != nil {
		return out.Err
	}
	return fmt.Errorf("%w: %s", shared.ErrAPIRequest, out.Message)
}

// RecsList prints the recommendation feed in backend order.
func (r *Runner) RecsList(ctx context.Context, cmd *cli.Command) error {
	state, err := r.profile.Feed.Load(ctx)
	if err != nil {
		r.writePlain("%s\n", state.Message)
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(state.Results, cmd.Bool("pretty"))
	}
	if state.Status == views.Empty {
		return r.writePlain("%s\n", state.Message)
	}
	r.writeResults("Recommended for you", state.Results)
	return nil
}

// RecsSave saves the recommendation at the given position.
func (r *Runner) RecsSave(ctx context.Context, cmd *cli.Command) error {
	position, err := strconv.Atoi(cmd.StringArg("position"))
	if err != nil {
		return fmt.Errorf("%w: position must be a number", shared.ErrInvalidArgument)
	}

	state, err := r.profile.Feed.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	result, err := pick(state.Results, position)
	if err != nil {
		return err
	}
	return r.reportSave(r.profile.Feed.Save(ctx, result))
}

// finishSearch prints a settled search and saves the result selected with --save.
func (r *Runner) finishSearch(ctx context.Context, cmd *cli.Command, state views.SearchState, err error) error {
	if err != nil {
		if state.Message != "" {
			r.writePlain("%s\n", state.Message)
		}
		return err
	}

	if cmd.Bool("json") {
		if err := r.writeJSON(state.Results, cmd.Bool("pretty")); err != nil {
			return err
		}
	} else if state.Status == views.Empty {
		r.writePlain("%s\n", state.Message)
	} else {
		r.writeResults(state.Session.Kind.Title(), state.Results)
		if tags := state.Session.FeedbackTags; len(tags) > 0 {
			r.writePlain("\nUnderstood as: %s\n", strings.Join(tags, ", "))
		}
	}

	position := int(cmd.Int("save"))
	if position == 0 {
		return nil
	}
	result, err := pick(state.Results, position)
	if err != nil {
		return err
	}
	return r.reportSave(r.profile.Search.Save(ctx, state.Session, result))
}

// SearchExplore browses the catalog.
func (r *Runner) SearchExplore(ctx context.Context, cmd *cli.Command) error {
	state, err := r.profile.Search.Explore(ctx)
	return r.finishSearch(ctx, cmd, state, err)
}

// SearchObjective filters the catalog by genre and audio buckets.
func (r *Runner) SearchObjective(ctx context.Context, cmd *cli.Command) error {
	filters := models.ObjectiveFilters{
		Genre:      cmd.String("genre"),
		Tempo:      cmd.String("tempo"),
		Loudness:   cmd.String("loudness"),
		Popularity: cmd.String("popularity"),
	}
	r.logger.Debug("objective search", "filters", filters.Query().Encode())

	state, err := r.profile.Search.Objective(ctx, filters)
	return r.finishSearch(ctx, cmd, state, err)
}

// SearchIntent runs a natural-language search. --mode overrides the configured default.
func (r *Runner) SearchIntent(ctx context.Context, cmd *cli.Command) error {
	if mode := cmd.String("mode"); mode != "" {
		if err := r.profile.Search.SetMode(mode); err != nil {
			return err
		}
	}

	state, err := r.profile.Search.Intent(ctx, cmd.StringArg("text"))
	return r.finishSearch(ctx, cmd, state, err)
}

// ImportSearch looks up tracks in the external catalog.
func (r *Runner) ImportSearch(ctx context.Context, cmd *cli.Command) error {
	state, err := r.profile.Importer.Lookup(ctx, cmd.StringArg("query"))
	if err != nil {
		if state.Message != "" {
			r.writePlain("%s\n", state.Message)
		}
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(state.Tracks, cmd.Bool("pretty"))
	}
	if state.Status == views.Empty {
		return r.writePlain("%s\n", state.Message)
	}

	r.writePlainHeader(fmt.Sprintf("External results for %q", state.Query))
	for i, t := range state.Tracks {
		r.writePlain("%2d. %s\n", i+1, t.Label())
	}
	return nil
}

// ImportAdd imports a track, or imports and saves it in one call with --save.
func (r *Runner) ImportAdd(ctx context.Context, cmd *cli.Command) error {
	track := models.ExternalTrack{Artist: cmd.String("artist"), Title: cmd.String("title")}

	if cmd.Bool("save") {
		return r.reportSave(r.profile.Importer.ImportAndSave(ctx, track))
	}
	return r.reportSave(r.profile.Importer.Import(ctx, track))
}

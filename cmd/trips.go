package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/tripx/internal/formatter"
	"github.com/desertthunder/tripx/internal/models"
	"github.com/desertthunder/tripx/internal/services"
	"github.com/desertthunder/tripx/internal/shared"
	"github.com/desertthunder/tripx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// TripsList prints the user's trips.
func (r *Runner) TripsList(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(ctx, false); err != nil {
		return err
	}

	if cmd.Bool("json") {
		r.quiet()
		return r.writeJSON(r.sync.Refresh(ctx), cmd.Bool("pretty"))
	}

	r.sync.Refresh(ctx)
	return nil
}

// TripsCreate creates a trip and prints the refreshed collection.
func (r *Runner) TripsCreate(ctx context.Context, cmd *cli.Command) error {
	fields := services.TripFields{
		Name:        cmd.StringArg("name"),
		Description: cmd.String("description"),
		StartDate:   cmd.String("start"),
		EndDate:     cmd.String("end"),
	}
	if strings.TrimSpace(fields.Name) == "" {
		return fmt.Errorf("%w: name", shared.ErrMissingArgument)
	}
	if _, err := r.requireSession(ctx, true); err != nil {
		return err
	}

	trip, err := r.sync.CreateTrip(ctx, fields)
	if err != nil {
		return err
	}
	return r.writePlainln("✓ Created trip %d: %s", trip.ID, trip.Name)
}

// TripsDelete deletes a trip and prints the refreshed collection.
func (r *Runner) TripsDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}
	if _, err := r.requireSession(ctx, true); err != nil {
		return err
	}

	if err := r.sync.DeleteTrip(ctx, id); err != nil {
		return err
	}
	return r.writePlainln("✓ Deleted trip %d", id)
}

// TripsExport writes every trip to a file in the requested format.
func (r *Runner) TripsExport(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	if _, err := r.requireSession(ctx, false); err != nil {
		return err
	}

	r.quiet()
	trips := r.sync.Refresh(ctx)

	var weather map[int]*models.TripWeather
	if cmd.Bool("with-weather") {
		if !strings.EqualFold(strings.TrimSpace(format), formatter.FormatXLSX) {
			r.logger.Warn("--with-weather only applies to xlsx exports", "format", format)
		} else {
			weather = r.collectWeather(ctx, trips, tasks.CollectOpts{})
		}
	}

	path, err := formatter.WriteExport(trips, weather, format, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("export complete", "path", path, "trips", len(trips))
	return r.writePlain("✓ Exported %d trips to %s\n", len(trips), path)
}

// TripsChart draws a bar per trip sized by its destination count.
func (r *Runner) TripsChart(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(ctx, false); err != nil {
		return err
	}

	r.quiet()
	trips := r.sync.Refresh(ctx)
	return r.writePlain("%s", formatter.DestinationChart(trips, int(cmd.Int("width"))))
}

// collectWeather fetches trip weather concurrently and keeps the successful results, keyed by trip id.
func (r *Runner) collectWeather(ctx context.Context, trips []models.Trip, opts tasks.CollectOpts) map[int]*models.TripWeather {
	results, err := tasks.CollectWeather(ctx, nil, r.weather, trips, opts)
	if err != nil {
		r.logger.Warn("weather collection interrupted", "error", err)
	}

	weather := make(map[int]*models.TripWeather, len(results))
	for _, res := range results {
		if res.Error != nil {
			r.logger.Warn("no weather for trip", "trip", res.Trip.Name, "error", res.Error)
			continue
		}
		weather[res.Trip.ID] = res.Weather
	}
	return weather
}

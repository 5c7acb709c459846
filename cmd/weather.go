package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tripx/internal/formatter"
	"github.com/desertthunder/tripx/internal/shared"
	"github.com/desertthunder/tripx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// WeatherCurrent prints current conditions at a destination.
func (r *Runner) WeatherCurrent(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd, "destination-id")
	if err != nil {
		return err
	}
	if _, err := r.requireSession(ctx, false); err != nil {
		return err
	}

	report, err := r.weather.Current(ctx, id, cmd.Bool("refresh"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(report, true)
	}
	return r.writePlain("%s", formatter.FormatWeatherCard(report.Destination.Place(), report.Current))
}

// WeatherForecast prints the forecast for a destination grouped into days of the display timezone.
func (r *Runner) WeatherForecast(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd, "destination-id")
	if err != nil {
		return err
	}
	if _, err := r.requireSession(ctx, true); err != nil {
		return err
	}

	entries, err := r.weather.Forecast(ctx, id)
	if err != nil {
		return err
	}
	days := tasks.GroupForecast(entries, r.config.Display.Location())

	if cmd.Bool("json") {
		return r.writeJSON(days, true)
	}
	return r.writePlain("%s", formatter.FormatForecast(days))
}

// WeatherCity prints current conditions for a city. No session is needed.
func (r *Runner) WeatherCity(ctx context.Context, cmd *cli.Command) error {
	city := cmd.StringArg("city")
	if city == "" {
		return fmt.Errorf("%w: city", shared.ErrMissingArgument)
	}

	weather, err := r.weather.ByCity(ctx, city, cmd.String("country"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(weather, true)
	}

	snapshot := weather.Snapshot()
	place := weather.Name
	if place == "" {
		place = city
	}
	return r.writePlain("%s", formatter.FormatWeatherCard(place, &snapshot))
}

// WeatherTrip prints current conditions at every destination of one trip, or of all trips with --all.
func (r *Runner) WeatherTrip(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("all") {
		return r.weatherAllTrips(ctx, int(cmd.Int("workers")))
	}

	id, err := idArg(cmd, "trip-id")
	if err != nil {
		return err
	}
	if _, err := r.requireSession(ctx, false); err != nil {
		return err
	}

	tw, err := r.weather.ByTrip(ctx, id)
	if err != nil {
		return err
	}
	return r.writePlain("%s", formatter.FormatTripWeather(tw))
}

func (r *Runner) weatherAllTrips(ctx context.Context, workers int) error {
	if _, err := r.requireSession(ctx, false); err != nil {
		return err
	}

	r.quiet()
	trips := r.sync.Refresh(ctx)
	if len(trips) == 0 {
		return r.writePlain("No trips found\n")
	}

	r.writePlain("Fetching weather for %d trips...\n", len(trips))

	progressCh := make(chan tasks.ProgressUpdate, len(trips))
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for update := range progressCh {
			r.writePlain("  %s\n", update.Message)
		}
	}()

	results, err := tasks.CollectWeather(ctx, progressCh, r.weather, trips, tasks.CollectOpts{NumWorkers: workers})
	close(progressCh)
	<-printed
	if err != nil {
		return err
	}

	r.writePlain("\n")
	failed := 0
	for _, res := range results {
		if res.Error != nil {
			failed++
			r.writePlain("%s\n  ✗ %v\n\n", res.Trip.Name, res.Error)
			continue
		}
		r.writePlain("%s", formatter.FormatTripWeather(res.Weather))
	}

	if failed > 0 {
		r.logger.Warn("some trips had no weather", "failed", failed, "total", len(results))
	}
	return nil
}

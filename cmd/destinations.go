package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tripx/internal/formatter"
	"github.com/desertthunder/tripx/internal/services"
	"github.com/desertthunder/tripx/internal/shared"
	"github.com/urfave/cli/v3"
)

// DestinationsList prints the destinations of one trip.
func (r *Runner) DestinationsList(ctx context.Context, cmd *cli.Command) error {
	tripID, err := idArg(cmd, "trip-id")
	if err != nil {
		return err
	}
	if _, err := r.requireSession(ctx, false); err != nil {
		return err
	}

	dests, err := r.destinations.ListByTrip(ctx, tripID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(dests, true)
	}
	return r.writePlain("%s", formatter.FormatDestinations(dests))
}

// DestinationsAdd adds a stop to a trip and prints the refreshed collection.
func (r *Runner) DestinationsAdd(ctx context.Context, cmd *cli.Command) error {
	tripID, err := idArg(cmd, "trip-id")
	if err != nil {
		return err
	}
	fields := services.DestinationFields{
		TripID:        tripID,
		City:          cmd.StringArg("city"),
		Country:       cmd.StringArg("country"),
		ArrivalDate:   cmd.String("arrival"),
		DepartureDate: cmd.String("departure"),
	}
	if fields.City == "" || fields.Country == "" {
		return fmt.Errorf("%w: city and country", shared.ErrMissingArgument)
	}
	if _, err := r.requireSession(ctx, true); err != nil {
		return err
	}

	dest, err := r.sync.CreateDestination(ctx, fields)
	if err != nil {
		return err
	}
	return r.writePlainln("✓ Added %s to trip %d (destination %d)", dest.Place(), tripID, dest.ID)
}

// DestinationsDelete removes a stop and prints the refreshed collection.
func (r *Runner) DestinationsDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}
	if _, err := r.requireSession(ctx, true); err != nil {
		return err
	}

	if err := r.sync.DeleteDestination(ctx, id); err != nil {
		return err
	}
	return r.writePlainln("✓ Deleted destination %d", id)
}

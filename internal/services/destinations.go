package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/tripx/internal/models"
	"github.com/desertthunder/tripx/internal/shared"
)

// DestinationFields is user input for a new destination.
type DestinationFields struct {
	TripID        int
	City          string
	Country       string
	ArrivalDate   string
	DepartureDate string
}

type destinationBody struct {
	TripID        int     `json:"trip_id"`
	City          string  `json:"city"`
	Country       string  `json:"country"`
	ArrivalDate   *string `json:"arrival_date,omitempty"`
	DepartureDate *string `json:"departure_date,omitempty"`
}

func (f DestinationFields) body() (destinationBody, error) {
	city, country := strings.TrimSpace(f.City), strings.TrimSpace(f.Country)
	switch {
	case f.TripID <= 0:
		return destinationBody{}, fmt.Errorf("%w: trip id must be positive", shared.ErrInvalidArgument)
	case city == "":
		return destinationBody{}, fmt.Errorf("%w: city is required", shared.ErrMissingArgument)
	case country == "":
		return destinationBody{}, fmt.Errorf("%w: country is required", shared.ErrMissingArgument)
	}

	arrival, err := shared.NormalizeStartDate(f.ArrivalDate)
	if err != nil {
		return destinationBody{}, err
	}
	departure, err := shared.NormalizeEndDate(f.DepartureDate)
	if err != nil {
		return destinationBody{}, err
	}

	return destinationBody{
		TripID:        f.TripID,
		City:          city,
		Country:       country,
		ArrivalDate:   arrival,
		DepartureDate: departure,
	}, nil
}

// DestinationClient covers the /destinations endpoints.
type DestinationClient struct {
	api Requester
}

func NewDestinationClient(api Requester) *DestinationClient {
	return &DestinationClient{api: api}
}

// ListByTrip returns the destinations of one trip.
func (c *DestinationClient) ListByTrip(ctx context.Context, tripID int) ([]models.Destination, error) {
	var out []models.Destination
	path := fmt.Sprintf("/destinations/trip/%d", tripID)
	if err := call(ctx, c.api, path, RequestOpts{}, "failed to load destinations", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Destination{}
	}
	return out, nil
}

// Create adds a destination to a trip.
func (c *DestinationClient) Create(ctx context.Context, fields DestinationFields) (*models.Destination, error) {
	body, err := fields.body()
	if err != nil {
		return nil, err
	}

	var dest models.Destination
	opts := RequestOpts{Method: http.MethodPost, Body: body}
	if err := call(ctx, c.api, "/destinations/", opts, "failed to create destination", &dest); err != nil {
		return nil, err
	}
	return &dest, nil
}

// Delete removes a destination.
func (c *DestinationClient) Delete(ctx context.Context, id int) error {
	path := fmt.Sprintf("/destinations/%d", id)
	return call(ctx, c.api, path, RequestOpts{Method: http.MethodDelete}, "failed to delete destination", nil)
}

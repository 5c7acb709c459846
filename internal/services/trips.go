package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/tripx/internal/models"
	"github.com/desertthunder/tripx/internal/shared"
)

// TripFields is user input for a new trip. Dates are bare YYYY-MM-DD strings; empty means unset.
type TripFields struct {
	Name        string
	Description string
	StartDate   string
	EndDate     string
}

// tripBody is the wire form of [TripFields]. Unset fields are omitted, never sent as "".
type tripBody struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	StartDate   *string `json:"start_date,omitempty"`
	EndDate     *string `json:"end_date,omitempty"`
}

// body validates the fields and normalizes dates to the backend's timestamp form.
func (f TripFields) body() (tripBody, error) {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return tripBody{}, fmt.Errorf("%w: trip name is required", shared.ErrMissingArgument)
	}

	start, err := shared.NormalizeStartDate(f.StartDate)
	if err != nil {
		return tripBody{}, err
	}
	end, err := shared.NormalizeEndDate(f.EndDate)
	if err != nil {
		return tripBody{}, err
	}

	b := tripBody{Name: name, StartDate: start, EndDate: end}
	if desc := strings.TrimSpace(f.Description); desc != "" {
		b.Description = &desc
	}
	return b, nil
}

// TripClient covers the /trips endpoints.
type TripClient struct {
	api Requester
}

func NewTripClient(api Requester) *TripClient {
	return &TripClient{api: api}
}

// List returns the current user's trips with their destinations.
func (c *TripClient) List(ctx context.Context) ([]models.Trip, error) {
	var trips []models.Trip
	if err := call(ctx, c.api, "/trips/", RequestOpts{}, "failed to load trips", &trips); err != nil {
		return nil, err
	}
	if trips == nil {
		trips = []models.Trip{}
	}
	return trips, nil
}

// Get returns one trip.
func (c *TripClient) Get(ctx context.Context, id int) (*models.Trip, error) {
	var trip models.Trip
	if err := call(ctx, c.api, fmt.Sprintf("/trips/%d", id), RequestOpts{}, "failed to load trip", &trip); err != nil {
		return nil, err
	}
	return &trip, nil
}

// Create posts a new trip and returns the server's record.
func (c *TripClient) Create(ctx context.Context, fields TripFields) (*models.Trip, error) {
	body, err := fields.body()
	if err != nil {
		return nil, err
	}

	var trip models.Trip
	err = call(ctx, c.api, "/trips/", RequestOpts{Method: http.MethodPost, Body: body}, "failed to create trip", &trip)
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

// Delete removes a trip and its destinations.
func (c *TripClient) Delete(ctx context.Context, id int) error {
	return call(ctx, c.api, fmt.Sprintf("/trips/%d", id), RequestOpts{Method: http.MethodDelete}, "failed to delete trip", nil)
}

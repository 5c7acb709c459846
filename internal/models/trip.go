package models

// Trip is a user's named travel plan. IDs are assigned by the server.
type Trip struct {
	ID           int           `json:"id"`
	UserID       int           `json:"user_id"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	StartDate    *DateTime     `json:"start_date,omitempty"`
	EndDate      *DateTime     `json:"end_date,omitempty"`
	CreatedAt    *DateTime     `json:"created_at,omitempty"`
	UpdatedAt    *DateTime     `json:"updated_at,omitempty"`
	Destinations []Destination `json:"destinations"`
}

// Destination is a stop belonging to exactly one trip.
type Destination struct {
	ID            int       `json:"id"`
	TripID        int       `json:"trip_id"`
	City          string    `json:"city"`
	Country       string    `json:"country"`
	ArrivalDate   *DateTime `json:"arrival_date,omitempty"`
	DepartureDate *DateTime `json:"departure_date,omitempty"`
	Latitude      *float64  `json:"latitude,omitempty"`
	Longitude     *float64  `json:"longitude,omitempty"`
	CreatedAt     *DateTime `json:"created_at,omitempty"`
}

// Place formats the destination as "City, Country".
func (d Destination) Place() string {
	if d.Country == "" {
		return d.City
	}
	return d.City + ", " + d.Country
}

// FindTrip returns the trip with id from trips.
func FindTrip(trips []Trip, id int) (Trip, bool) {
	for _, t := range trips {
		if t.ID == id {
			return t, true
		}
	}
	return Trip{}, false
}

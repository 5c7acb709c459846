package testing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tripx/internal/models"
	"github.com/desertthunder/tripx/internal/server"
	"github.com/desertthunder/tripx/internal/shared"
	"github.com/golang-jwt/jwt/v5"
)

const (
	tripNotFound        = "Voyage non trouvé"
	destinationNotFound = "Destination non trouvée"
)

type backendUser struct {
	models.User
	password string
}

type failure struct {
	status int
	detail string
}

// Backend is an in-memory stand-in for the trip-planning REST service.
//
// It enforces strict CSRF rotation and bearer authentication through internal/server, so clients
// must seed a token with GET / before their first mutation. Serve it with [httptest.NewServer].
type Backend struct {
	mu       sync.Mutex
	users    []backendUser
	trips    []models.Trip
	weather  map[string]models.WeatherSnapshot
	forecast map[string][]models.ForecastEntry
	failures map[string]failure
	nextID   int

	CSRF   *server.CSRF
	router *server.BasicRouter
}

func NewBackend() *Backend {
	b := &Backend{
		weather:  make(map[string]models.WeatherSnapshot),
		forecast: make(map[string][]models.ForecastEntry),
		failures: make(map[string]failure),
		CSRF:     server.NewCSRF(server.CSRFOpts{Strict: true, Exempt: []string{"/health"}}),
		router:   server.NewBasicRouter(),
	}

	logger := shared.WithLogger(shared.NewLogger(nil), "component", "backend")
	if testing.Verbose() {
		logger.SetLevel(log.DebugLevel)
	}

	r := b.router
	r.Use(server.RequestLogger(logger), b.CSRF.Middleware(), server.Authenticate(b.validateToken), b.injectFailures)

	r.HandleFunc(http.MethodGet, "/{$}", func(w http.ResponseWriter, _ *http.Request) {
		server.WriteJSON(w, http.StatusOK, map[string]string{"message": "Trip planner API"})
	})
	r.HandleFunc(http.MethodGet, "/health", func(w http.ResponseWriter, _ *http.Request) {
		server.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy", "message": "API is running"})
	})

	r.HandleFunc(http.MethodPost, "/users/register", b.register)
	r.HandleFunc(http.MethodPost, "/users/login", b.login)
	r.HandleFunc(http.MethodGet, "/users/me", server.RequireUser(b.me))

	r.HandleFunc(http.MethodGet, "/trips/", server.RequireUser(b.listTrips))
	r.HandleFunc(http.MethodPost, "/trips/", server.RequireUser(b.createTrip))
	r.HandleFunc(http.MethodGet, "/trips/{id}", server.RequireUser(b.getTrip))
	r.HandleFunc(http.MethodDelete, "/trips/{id}", server.RequireUser(b.deleteTrip))

	r.HandleFunc(http.MethodGet, "/destinations/trip/{id}", server.RequireUser(b.listDestinations))
	r.HandleFunc(http.MethodPost, "/destinations/", server.RequireUser(b.createDestination))
	r.HandleFunc(http.MethodDelete, "/destinations/{id}", server.RequireUser(b.deleteDestination))

	r.HandleFunc(http.MethodGet, "/weather/destination/{id}", server.RequireUser(b.destinationWeather))
	r.HandleFunc(http.MethodPost, "/weather/destination/{id}/forecast", server.RequireUser(b.destinationForecast))
	r.HandleFunc(http.MethodGet, "/weather/city/{city}", b.cityWeather)
	r.HandleFunc(http.MethodGet, "/weather/trip/{id}", server.RequireUser(b.tripWeather))

	return b
}

func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.router.ServeHTTP(w, r)
}

// AddUser registers an account directly and returns its id.
func (b *Backend) AddUser(username, password string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addUser(username, username+"@example.com", password).ID
}

var signingKey = []byte("tripx-test-backend")

// Token returns an HS256 access token for userID that expires in an hour, as the backend issues on login.
func Token(userID int) string {
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		panic(err)
	}
	return signed
}

// AddTrip stores trip for its UserID and returns it with server-assigned ids.
func (b *Backend) AddTrip(trip models.Trip) models.Trip {
	b.mu.Lock()
	defer b.mu.Unlock()

	trip.ID = b.id()
	dests := trip.Destinations
	trip.Destinations = []models.Destination{}
	for _, d := range dests {
		d.ID = b.id()
		d.TripID = trip.ID
		trip.Destinations = append(trip.Destinations, d)
	}
	b.trips = append(b.trips, trip)
	return cloneTrip(trip)
}

// Trips returns a copy of every stored trip.
func (b *Backend) Trips() []models.Trip {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]models.Trip, 0, len(b.trips))
	for _, t := range b.trips {
		out = append(out, cloneTrip(t))
	}
	return out
}

// SetWeather sets the current conditions reported for city. Cities without weather answer 404.
func (b *Backend) SetWeather(city string, s models.WeatherSnapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.weather[strings.ToLower(city)] = s
}

// SetForecast sets the entries returned by the forecast endpoint for city.
func (b *Backend) SetForecast(city string, entries []models.ForecastEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.forecast[strings.ToLower(city)] = entries
}

// FailNext makes the next request matching method and path answer status with detail.
func (b *Backend) FailNext(method, path string, status int, detail string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+path] = failure{status: status, detail: detail}
}

func (b *Backend) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		b.mu.Lock()
		f, ok := b.failures[key]
		delete(b.failures, key)
		b.mu.Unlock()

		if ok {
			server.WriteDetail(w, f.status, f.detail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) id() int {
	b.nextID++
	return b.nextID
}

func (b *Backend) addUser(username, email, password string) backendUser {
	u := backendUser{User: models.User{ID: b.id(), Username: username, Email: email}, password: password}
	b.users = append(b.users, u)
	return u
}

func (b *Backend) validateToken(token string) (int, bool) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return 0, false
	}
	id, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return 0, false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.ID == id {
			return id, true
		}
	}
	return 0, false
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &in) {
		return
	}
	if in.Username == "" || in.Password == "" {
		validationError(w, "Field required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.Username == in.Username {
			server.WriteDetail(w, http.StatusBadRequest, "Username already registered")
			return
		}
	}
	u := b.addUser(in.Username, in.Email, in.Password)
	server.WriteJSON(w, http.StatusCreated, u.User)
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decode(w, r, &in) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.Username == in.Username && u.password == in.Password {
			server.WriteJSON(w, http.StatusOK, models.LoginResponse{
				AccessToken: Token(u.ID),
				TokenType:   "bearer",
				UserID:      u.ID,
				Username:    u.Username,
			})
			return
		}
	}
	server.WriteDetail(w, http.StatusUnauthorized, "Incorrect username or password")
}

func (b *Backend) me(w http.ResponseWriter, r *http.Request) {
	uid, _ := server.UserID(r.Context())

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.ID == uid {
			server.WriteJSON(w, http.StatusOK, u.User)
			return
		}
	}
	server.WriteDetail(w, http.StatusNotFound, "User not found")
}

func (b *Backend) listTrips(w http.ResponseWriter, r *http.Request) {
	uid, _ := server.UserID(r.Context())

	b.mu.Lock()
	defer b.mu.Unlock()
	out := []models.Trip{}
	for _, t := range b.trips {
		if t.UserID == uid {
			out = append(out, cloneTrip(t))
		}
	}
	server.WriteJSON(w, http.StatusOK, out)
}

func (b *Backend) getTrip(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i, ok := b.ownedTrip(w, r, "id")
	if !ok {
		return
	}
	server.WriteJSON(w, http.StatusOK, cloneTrip(b.trips[i]))
}

func (b *Backend) createTrip(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		StartDate   string `json:"start_date"`
		EndDate     string `json:"end_date"`
	}
	if !decode(w, r, &in) {
		return
	}
	if in.Name == "" {
		validationError(w, "Field required")
		return
	}
	start, ok1 := parseDate(in.StartDate)
	end, ok2 := parseDate(in.EndDate)
	if !ok1 || !ok2 {
		validationError(w, "Input should be a valid datetime")
		return
	}

	uid, _ := server.UserID(r.Context())
	now := models.DateTime{Time: time.Now().UTC().Truncate(time.Second)}

	b.mu.Lock()
	defer b.mu.Unlock()
	trip := models.Trip{
		ID:           b.id(),
		UserID:       uid,
		Name:         in.Name,
		Description:  in.Description,
		StartDate:    start,
		EndDate:      end,
		CreatedAt:    &now,
		Destinations: []models.Destination{},
	}
	b.trips = append(b.trips, trip)
	server.WriteJSON(w, http.StatusCreated, cloneTrip(trip))
}

func (b *Backend) deleteTrip(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i, ok := b.ownedTrip(w, r, "id")
	if !ok {
		return
	}
	b.trips = slices.Delete(b.trips, i, i+1)
	server.WriteJSON(w, http.StatusNoContent, nil)
}

func (b *Backend) listDestinations(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i, ok := b.ownedTrip(w, r, "id")
	if !ok {
		return
	}
	server.WriteJSON(w, http.StatusOK, slices.Clone(b.trips[i].Destinations))
}

func (b *Backend) createDestination(w http.ResponseWriter, r *http.Request) {
	var in struct {
		TripID        int    `json:"trip_id"`
		City          string `json:"city"`
		Country       string `json:"country"`
		ArrivalDate   string `json:"arrival_date"`
		DepartureDate string `json:"departure_date"`
	}
	if !decode(w, r, &in) {
		return
	}
	if in.City == "" || in.Country == "" {
		validationError(w, "Field required")
		return
	}
	arrival, ok1 := parseDate(in.ArrivalDate)
	departure, ok2 := parseDate(in.DepartureDate)
	if !ok1 || !ok2 {
		validationError(w, "Input should be a valid datetime")
		return
	}

	uid, _ := server.UserID(r.Context())

	b.mu.Lock()
	defer b.mu.Unlock()
	i := slices.IndexFunc(b.trips, func(t models.Trip) bool { return t.ID == in.TripID && t.UserID == uid })
	if i < 0 {
		server.WriteDetail(w, http.StatusNotFound, tripNotFound)
		return
	}
	d := models.Destination{
		ID:            b.id(),
		TripID:        in.TripID,
		City:          in.City,
		Country:       in.Country,
		ArrivalDate:   arrival,
		DepartureDate: departure,
	}
	b.trips[i].Destinations = append(b.trips[i].Destinations, d)
	server.WriteJSON(w, http.StatusCreated, d)
}

func (b *Backend) deleteDestination(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ti, di, ok := b.ownedDestination(w, r)
	if !ok {
		return
	}
	b.trips[ti].Destinations = slices.Delete(b.trips[ti].Destinations, di, di+1)
	server.WriteJSON(w, http.StatusNoContent, nil)
}

func (b *Backend) destinationWeather(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ti, di, ok := b.ownedDestination(w, r)
	if !ok {
		return
	}
	d := b.trips[ti].Destinations[di]
	report := models.WeatherReport{Destination: d, Forecast: []models.WeatherSnapshot{}}
	if s, ok := b.weather[strings.ToLower(d.City)]; ok {
		s.DestinationID = d.ID
		report.Current = &s
	}
	server.WriteJSON(w, http.StatusOK, report)
}

func (b *Backend) destinationForecast(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ti, di, ok := b.ownedDestination(w, r)
	if !ok {
		return
	}
	d := b.trips[ti].Destinations[di]
	entries, ok := b.forecast[strings.ToLower(d.City)]
	if !ok {
		server.WriteDetail(w, http.StatusNotFound, "Impossible de récupérer les prévisions pour "+d.City)
		return
	}
	server.WriteJSON(w, http.StatusOK, models.ForecastResponse{
		Message:   fmt.Sprintf("%d prévisions enregistrées", len(entries)),
		Count:     len(entries),
		Forecasts: entries,
	})
}

func (b *Backend) cityWeather(w http.ResponseWriter, r *http.Request) {
	city := r.PathValue("city")

	b.mu.Lock()
	s, ok := b.weather[strings.ToLower(city)]
	b.mu.Unlock()

	if !ok {
		server.WriteDetail(w, http.StatusNotFound, "Impossible de récupérer la météo pour "+city)
		return
	}

	var out models.CityWeather
	out.Name = city
	out.Main.Temp = s.Temperature
	out.Main.FeelsLike = s.FeelsLike
	out.Main.TempMin = s.TempMin
	out.Main.TempMax = s.TempMax
	out.Main.Humidity = s.Humidity
	out.Wind.Speed = s.WindSpeed
	out.Clouds.All = s.Clouds
	out.Weather = []models.Condition{{Main: s.ConditionCode, Description: s.Description, Icon: s.Icon}}
	server.WriteJSON(w, http.StatusOK, out)
}

func (b *Backend) tripWeather(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i, ok := b.ownedTrip(w, r, "id")
	if !ok {
		return
	}
	trip := cloneTrip(b.trips[i])
	out := models.TripWeather{Trip: trip, Destinations: []models.DestinationWeather{}}
	for _, d := range trip.Destinations {
		dw := models.DestinationWeather{Destination: d}
		if s, ok := b.weather[strings.ToLower(d.City)]; ok {
			dw.Current = &s
		}
		out.Destinations = append(out.Destinations, dw)
	}
	server.WriteJSON(w, http.StatusOK, out)
}

// ownedTrip finds the caller's trip named by the path value key. Callers hold b.mu.
func (b *Backend) ownedTrip(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	id, err := strconv.Atoi(r.PathValue(key))
	if err != nil {
		validationError(w, "Input should be a valid integer")
		return 0, false
	}
	uid, _ := server.UserID(r.Context())
	i := slices.IndexFunc(b.trips, func(t models.Trip) bool { return t.ID == id && t.UserID == uid })
	if i < 0 {
		server.WriteDetail(w, http.StatusNotFound, tripNotFound)
		return 0, false
	}
	return i, true
}

func (b *Backend) ownedDestination(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		validationError(w, "Input should be a valid integer")
		return 0, 0, false
	}
	uid, _ := server.UserID(r.Context())
	for ti, t := range b.trips {
		if t.UserID != uid {
			continue
		}
		if di := slices.IndexFunc(t.Destinations, func(d models.Destination) bool { return d.ID == id }); di >= 0 {
			return ti, di, true
		}
	}
	server.WriteDetail(w, http.StatusNotFound, destinationNotFound)
	return 0, 0, false
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		validationError(w, "JSON decode error")
		return false
	}
	return true
}

// validationError mirrors the 422 body FastAPI produces: a list of {loc, msg, type} objects.
func validationError(w http.ResponseWriter, msg string) {
	server.WriteJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"detail": []map[string]any{{"loc": []string{"body"}, "msg": msg, "type": "value_error"}},
	})
}

func parseDate(s string) (*models.DateTime, bool) {
	if s == "" {
		return nil, true
	}
	t, err := models.ParseDateTime(s, time.UTC)
	if err != nil {
		return nil, false
	}
	return &t, true
}

func cloneTrip(t models.Trip) models.Trip {
	t.Destinations = slices.Clone(t.Destinations)
	if t.Destinations == nil {
		t.Destinations = []models.Destination{}
	}
	return t
}

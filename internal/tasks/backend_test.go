package tasks

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/desertthunder/tripx/internal/models"
	"github.com/desertthunder/tripx/internal/services"
	"github.com/desertthunder/tripx/internal/session"
	"github.com/desertthunder/tripx/internal/shared"
	tu "github.com/desertthunder/tripx/internal/testing"
)

type backendHarness struct {
	backend *tu.Backend
	store   *session.Store
	gateway *services.Gateway
	sync    *Synchronizer
	render  *renderSpy
	weather *services.WeatherClient
}

func newBackendHarness(t *testing.T, storage session.Storage) *backendHarness {
	t.Helper()

	backend := tu.NewBackend()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	store := session.NewStore(storage, nil)
	gateway := services.NewGateway(services.GatewayOpts{Origin: srv.URL, Store: store, Timeout: 5 * time.Second})
	render := &renderSpy{}

	return &backendHarness{
		backend: backend,
		store:   store,
		gateway: gateway,
		render:  render,
		weather: services.NewWeatherClient(gateway),
		sync: NewSynchronizer(SyncOpts{
			Store:        store,
			Auth:         services.NewAuthClient(gateway),
			Trips:        services.NewTripClient(gateway),
			Destinations: services.NewDestinationClient(gateway),
			CSRF:         gateway,
			Renderer:     render,
		}),
	}
}

func TestAgainstBackend(t *testing.T) {
	ctx := context.Background()

	t.Run("Full Session", func(t *testing.T) {
		h := newBackendHarness(t, session.NewMemoryStorage())
		uid := h.backend.AddUser("alice", "secret")

		if sess := h.sync.Start(ctx); sess != nil {
			t.Fatalf("expected anonymous start, got %+v", sess)
		}
		if h.store.CSRFToken() == "" {
			t.Fatal("start should seed the CSRF token")
		}

		sess, err := h.sync.Login(ctx, "alice", "secret")
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}
		if sess.UserID != uid || sess.Username != "alice" || sess.AuthToken == "" {
			t.Errorf("unexpected session %+v", sess)
		}

		trip, err := h.sync.CreateTrip(ctx, services.TripFields{Name: "Italy", StartDate: "2024-03-01", EndDate: "2024-03-05"})
		if err != nil {
			t.Fatalf("create trip failed: %v", err)
		}
		if got := trip.EndDate.Format(models.NaiveLayout); got != "2024-03-05T23:59:59" {
			t.Errorf("end date should be normalized to end of day, got %s", got)
		}

		dest, err := h.sync.CreateDestination(ctx, services.DestinationFields{TripID: trip.ID, City: "Rome", Country: "IT"})
		if err != nil {
			t.Fatalf("create destination failed: %v", err)
		}

		rendered := h.render.last()
		if len(rendered) != 1 || len(rendered[0].Destinations) != 1 || rendered[0].Destinations[0].ID != dest.ID {
			t.Fatalf("refresh should render the new destination, got %+v", rendered)
		}

		if err := h.sync.DeleteDestination(ctx, dest.ID); err != nil {
			t.Fatalf("delete destination failed: %v", err)
		}
		if err := h.sync.DeleteTrip(ctx, trip.ID); err != nil {
			t.Fatalf("delete trip failed: %v", err)
		}
		if len(h.render.last()) != 0 || len(h.backend.Trips()) != 0 {
			t.Error("expected no trips after deletes")
		}

		if err := h.sync.Logout(); err != nil {
			t.Fatalf("logout failed: %v", err)
		}
		if h.store.Authenticated() {
			t.Error("store should be anonymous after logout")
		}
	})

	t.Run("Rejected Delete Keeps Trip", func(t *testing.T) {
		h := newBackendHarness(t, nil)
		uid := h.backend.AddUser("alice", "secret")
		kept := h.backend.AddTrip(models.Trip{UserID: uid, Name: "Keep me"})

		h.sync.Start(ctx)
		if _, err := h.sync.Login(ctx, "alice", "secret"); err != nil {
			t.Fatalf("login failed: %v", err)
		}

		err := h.sync.DeleteTrip(ctx, kept.ID+100)
		var apiErr *services.APIError
		if !errors.As(err, &apiErr) || apiErr.Message != "Voyage non trouvé" {
			t.Fatalf("expected backend detail, got %v", err)
		}
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}

		rendered := h.render.last()
		if len(rendered) != 1 || rendered[0].ID != kept.ID {
			t.Errorf("trip should still be rendered, got %+v", rendered)
		}
	})

	t.Run("Mutation Without CSRF Is Rejected", func(t *testing.T) {
		h := newBackendHarness(t, nil)
		h.backend.AddUser("alice", "secret")

		_, err := h.sync.Login(ctx, "alice", "secret")
		var apiErr *services.APIError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusForbidden {
			t.Fatalf("expected 403 without a seeded token, got %v", err)
		}

		if _, err := h.sync.Login(ctx, "alice", "secret"); err != nil {
			t.Errorf("the rejection carried a fresh token, retry should succeed: %v", err)
		}
	})

	t.Run("Session Survives Restart", func(t *testing.T) {
		storage := session.NewMemoryStorage()
		first := newBackendHarness(t, storage)
		uid := first.backend.AddUser("bob", "pw")
		first.backend.AddTrip(models.Trip{UserID: uid, Name: "Lisbon"})

		first.sync.Start(ctx)
		if _, err := first.sync.Login(ctx, "bob", "pw"); err != nil {
			t.Fatalf("login failed: %v", err)
		}

		restored := session.NewStore(storage, nil)
		sess, err := restored.Restore()
		if err != nil || sess == nil || sess.UserID != uid || sess.Username != "bob" {
			t.Fatalf("expected restored session for bob, got %+v (%v)", sess, err)
		}
		if exp, ok := restored.TokenExpiry(); !ok || time.Until(exp) <= 0 {
			t.Errorf("expected a future token expiry, got %v %v", exp, ok)
		}
	})

	t.Run("Weather And Forecast", func(t *testing.T) {
		h := newBackendHarness(t, nil)
		uid := h.backend.AddUser("alice", "secret")
		trip := h.backend.AddTrip(models.Trip{UserID: uid, Name: "Italy", Destinations: []models.Destination{
			{City: "Rome", Country: "IT"},
			{City: "Atlantis", Country: "XX"},
		}})
		h.backend.SetWeather("Rome", models.WeatherSnapshot{Temperature: models.Of(21), ConditionCode: "Clear"})
		h.backend.SetForecast("Rome", []models.ForecastEntry{
			{ForecastDate: "2024-03-01T09:00:00", Temperature: models.Of(10)},
			{ForecastDate: "2024-03-01T12:00:00", Temperature: models.Of(14)},
			{ForecastDate: "2024-03-02T12:00:00", Temperature: models.Of(18)},
		})

		h.sync.Start(ctx)
		if _, err := h.sync.Login(ctx, "alice", "secret"); err != nil {
			t.Fatalf("login failed: %v", err)
		}

		rome, atlantis := trip.Destinations[0], trip.Destinations[1]

		report, err := h.weather.Current(ctx, rome.ID, true)
		if err != nil || report.Current == nil || report.Current.Temperature.Value != 21 {
			t.Fatalf("unexpected current weather %+v (%v)", report, err)
		}
		if report, err := h.weather.Current(ctx, atlantis.ID, false); err != nil || report.Current != nil {
			t.Errorf("destination without data should report no current weather, got %+v (%v)", report, err)
		}

		entries, err := h.weather.Forecast(ctx, rome.ID)
		if err != nil {
			t.Fatalf("forecast failed: %v", err)
		}
		days := GroupForecast(entries, time.UTC)
		if len(days) != 2 || days[0].AvgTemp.Value != 12 {
			t.Errorf("unexpected grouping %+v", days)
		}

		if _, err := h.weather.ByCity(ctx, "Atlantis", ""); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound for unknown city, got %v", err)
		}

		results, err := CollectWeather(ctx, nil, h.weather, []models.Trip{trip}, CollectOpts{})
		if err != nil || results[0].Error != nil {
			t.Fatalf("collect failed: %v %v", err, results[0].Error)
		}
		if dw := results[0].Weather.Destinations; len(dw) != 2 || dw[0].Current == nil || dw[1].Current != nil {
			t.Errorf("unexpected trip weather %+v", dw)
		}
	})
}

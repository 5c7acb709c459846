package tasks

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/desertthunder/tripx/internal/models"
	"github.com/desertthunder/tripx/internal/services"
	"github.com/desertthunder/tripx/internal/session"
	"github.com/desertthunder/tripx/internal/shared"
)

type mockTrips struct {
	mu        sync.Mutex
	trips     []models.Trip
	listErr   error
	createErr error
	deleteErr error
	calls     []string
}

func (m *mockTrips) List(ctx context.Context) ([]models.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "list")
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]models.Trip, len(m.trips))
	copy(out, m.trips)
	return out, nil
}

func (m *mockTrips) Create(ctx context.Context, f services.TripFields) (*models.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "create")
	if m.createErr != nil {
		return nil, m.createErr
	}
	trip := models.Trip{ID: len(m.trips) + 1, Name: f.Name}
	m.trips = append(m.trips, trip)
	return &trip, nil
}

func (m *mockTrips) Delete(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "delete")
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for i, t := range m.trips {
		if t.ID == id {
			m.trips = append(m.trips[:i], m.trips[i+1:]...)
			break
		}
	}
	return nil
}

type mockDestinations struct {
	createErr error
	deleteErr error
	created   []services.DestinationFields
}

func (m *mockDestinations) Create(ctx context.Context, f services.DestinationFields) (*models.Destination, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = append(m.created, f)
	return &models.Destination{ID: 1, TripID: f.TripID, City: f.City}, nil
}

func (m *mockDestinations) Delete(ctx context.Context, id int) error {
	return m.deleteErr
}

type mockAuth struct {
	sess *models.Session
	err  error
}

func (m *mockAuth) Login(ctx context.Context, username, password string) (*models.Session, error) {
	return m.sess, m.err
}

type mockCSRF struct {
	calls int
	ok    bool
}

func (m *mockCSRF) InitCSRF(ctx context.Context) bool {
	m.calls++
	return m.ok
}

// renderSpy records every collection handed to the renderer.
type renderSpy struct {
	renders [][]models.Trip
}

func (r *renderSpy) RenderTrips(trips []models.Trip) {
	r.renders = append(r.renders, trips)
}

func (r *renderSpy) last() []models.Trip {
	if len(r.renders) == 0 {
		return nil
	}
	return r.renders[len(r.renders)-1]
}

func newTestSync(trips *mockTrips, auth *mockAuth) (*Synchronizer, *renderSpy, *session.Store) {
	spy := &renderSpy{}
	store := session.NewStore(session.NewMemoryStorage(), nil)
	s := NewSynchronizer(SyncOpts{
		Store:        store,
		Auth:         auth,
		Trips:        trips,
		Destinations: &mockDestinations{},
		Renderer:     spy,
	})
	return s, spy, store
}

func TestSynchronizer(t *testing.T) {
	ctx := context.Background()

	t.Run("Refresh", func(t *testing.T) {
		trips := &mockTrips{trips: []models.Trip{{ID: 1, Name: "Rome"}, {ID: 2, Name: "Oslo"}}}
		s, spy, store := newTestSync(trips, nil)

		got := s.Refresh(ctx)
		if len(got) != 2 || len(store.Trips()) != 2 || len(spy.last()) != 2 {
			t.Errorf("expected 2 trips everywhere, got %d/%d/%d", len(got), len(store.Trips()), len(spy.last()))
		}
	})

	t.Run("Refresh Failure Empties Collection", func(t *testing.T) {
		trips := &mockTrips{trips: []models.Trip{{ID: 1}}}
		s, spy, store := newTestSync(trips, nil)
		s.Refresh(ctx)

		trips.listErr = &services.APIError{StatusCode: 500, Message: "failed to load trips"}
		got := s.Refresh(ctx)

		if got == nil || len(got) != 0 {
			t.Errorf("expected empty non-nil result, got %v", got)
		}
		if len(store.Trips()) != 0 {
			t.Errorf("store should be emptied, got %v", store.Trips())
		}
		if last := spy.last(); last == nil || len(last) != 0 {
			t.Errorf("renderer should receive an empty list, got %v", last)
		}
	})

	t.Run("Login Stores Session And Refreshes", func(t *testing.T) {
		trips := &mockTrips{trips: []models.Trip{{ID: 3, Name: "Kyoto"}}}
		auth := &mockAuth{sess: &models.Session{UserID: 7, Username: "alice", AuthToken: "t1"}}
		s, spy, store := newTestSync(trips, auth)

		sess, err := s.Login(ctx, "alice", "x")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sess.UserID != 7 || sess.Username != "alice" || sess.AuthToken != "t1" {
			t.Errorf("unexpected session %+v", sess)
		}
		if store.AuthToken() != "t1" {
			t.Error("session should be stored")
		}
		if len(trips.calls) != 1 || trips.calls[0] != "list" {
			t.Errorf("expected one refresh, got calls %v", trips.calls)
		}
		if len(spy.last()) != 1 {
			t.Error("refreshed trips should be rendered")
		}
	})

	t.Run("Login Failure Does Not Refresh", func(t *testing.T) {
		trips := &mockTrips{}
		auth := &mockAuth{err: &services.APIError{StatusCode: 401, Message: "Identifiants incorrects"}}
		s, spy, store := newTestSync(trips, auth)

		if _, err := s.Login(ctx, "alice", "bad"); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if store.Authenticated() || len(trips.calls) != 0 || len(spy.renders) != 0 {
			t.Error("failed login must not touch the session or trips")
		}
	})

	t.Run("Logout", func(t *testing.T) {
		trips := &mockTrips{trips: []models.Trip{{ID: 1}}}
		auth := &mockAuth{sess: &models.Session{UserID: 1, Username: "a", AuthToken: "b"}}
		s, spy, store := newTestSync(trips, auth)
		_, _ = s.Login(ctx, "a", "pw")

		if err := s.Logout(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if store.Authenticated() || len(store.Trips()) != 0 {
			t.Error("logout should clear session and trips")
		}
		if last := spy.last(); len(last) != 0 {
			t.Errorf("renderer should get an empty list, got %v", last)
		}
	})

	t.Run("Mutations Always Refresh", func(t *testing.T) {
		boom := &services.APIError{StatusCode: 500, Message: "failed"}
		tests := []struct {
			name string
			run  func(s *Synchronizer, trips *mockTrips, dests *mockDestinations) error
		}{
			{"CreateTrip Success", func(s *Synchronizer, _ *mockTrips, _ *mockDestinations) error {
				_, err := s.CreateTrip(ctx, services.TripFields{Name: "Rome"})
				return err
			}},
			{"CreateTrip Failure", func(s *Synchronizer, trips *mockTrips, _ *mockDestinations) error {
				trips.createErr = boom
				_, err := s.CreateTrip(ctx, services.TripFields{Name: "Rome"})
				return err
			}},
			{"DeleteTrip Failure", func(s *Synchronizer, trips *mockTrips, _ *mockDestinations) error {
				trips.deleteErr = boom
				return s.DeleteTrip(ctx, 1)
			}},
			{"CreateDestination Failure", func(s *Synchronizer, _ *mockTrips, d *mockDestinations) error {
				d.createErr = boom
				_, err := s.CreateDestination(ctx, services.DestinationFields{TripID: 1, City: "Rome", Country: "IT"})
				return err
			}},
			{"DeleteDestination Failure", func(s *Synchronizer, _ *mockTrips, d *mockDestinations) error {
				d.deleteErr = boom
				return s.DeleteDestination(ctx, 1)
			}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				trips := &mockTrips{}
				dests := &mockDestinations{}
				spy := &renderSpy{}
				s := NewSynchronizer(SyncOpts{Trips: trips, Destinations: dests, Renderer: spy})

				_ = tt.run(s, trips, dests)

				if n := len(trips.calls); n == 0 || trips.calls[n-1] != "list" {
					t.Errorf("expected a refresh after the mutation, got %v", trips.calls)
				}
				if len(spy.renders) != 1 {
					t.Errorf("expected exactly one render, got %d", len(spy.renders))
				}
			})
		}
	})

	t.Run("Start", func(t *testing.T) {
		t.Run("With Stored Session", func(t *testing.T) {
			storage := session.NewMemoryStorage()
			_ = storage.Set(session.KeyToken, "t1")
			_ = storage.Set(session.KeyUserID, "7")
			_ = storage.Set(session.KeyUsername, "alice")

			trips := &mockTrips{trips: []models.Trip{{ID: 1}}}
			csrf := &mockCSRF{ok: true}
			s := NewSynchronizer(SyncOpts{Store: session.NewStore(storage, nil), Trips: trips, CSRF: csrf})

			sess := s.Start(ctx)
			if sess == nil || sess.UserID != 7 {
				t.Fatalf("expected restored session, got %+v", sess)
			}
			if csrf.calls != 1 {
				t.Errorf("expected one CSRF seed, got %d", csrf.calls)
			}
			if len(trips.calls) != 1 {
				t.Errorf("expected trips to load, got %v", trips.calls)
			}
		})

		t.Run("Anonymous", func(t *testing.T) {
			trips := &mockTrips{}
			csrf := &mockCSRF{}
			s := NewSynchronizer(SyncOpts{Trips: trips, CSRF: csrf})

			if sess := s.Start(ctx); sess != nil {
				t.Errorf("expected anonymous start, got %+v", sess)
			}
			if csrf.calls != 1 {
				t.Error("CSRF should be seeded even when anonymous")
			}
			if len(trips.calls) != 0 {
				t.Error("anonymous start must not load trips")
			}
		})

		t.Run("Storage Failure Is Not Fatal", func(t *testing.T) {
			storage := session.NewMemoryStorage()
			storage.Fail = true
			s := NewSynchronizer(SyncOpts{Store: session.NewStore(storage, nil), Trips: &mockTrips{}})

			if sess := s.Start(ctx); sess != nil {
				t.Errorf("expected anonymous start, got %+v", sess)
			}
		})
	})

	t.Run("Progress Never Blocks", func(t *testing.T) {
		progress := make(chan ProgressUpdate, 1)
		trips := &mockTrips{}
		s := NewSynchronizer(SyncOpts{Trips: trips, Destinations: &mockDestinations{}, Progress: progress})

		_, _ = s.CreateTrip(ctx, services.TripFields{Name: "a"})
		_, _ = s.CreateTrip(ctx, services.TripFields{Name: "b"})

		select {
		case u := <-progress:
			if u.Phase != CreateTrip {
				t.Errorf("expected first update from create_trip, got %s", u.Phase)
			}
		default:
			t.Error("expected a buffered update")
		}
	})
}

// TestDeleteRejectedKeepsTrip runs the synchronizer against real clients and a stub backend
// that refuses to delete trip 42.
func TestDeleteRejectedKeepsTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/trips/":
			w.Write([]byte(`[{"id":42,"user_id":7,"name":"Lisbon","destinations":[]}]`))
		case r.Method == http.MethodDelete && r.URL.Path == "/trips/42":
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail":"Voyage non trouvé"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	store := session.NewStore(nil, nil)
	gateway := services.NewGateway(services.GatewayOpts{Origin: server.URL, Store: store})
	spy := &renderSpy{}
	s := NewSynchronizer(SyncOpts{
		Store:    store,
		Trips:    services.NewTripClient(gateway),
		Renderer: spy,
	})

	err := s.DeleteTrip(context.Background(), 42)

	var apiErr *services.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Voyage non trouvé" {
		t.Fatalf("expected server detail, got %v", err)
	}
	if _, ok := models.FindTrip(spy.last(), 42); !ok {
		t.Errorf("trip 42 should still be rendered, got %v", spy.last())
	}
	if _, ok := models.FindTrip(store.Trips(), 42); !ok {
		t.Error("trip 42 should still be stored")
	}
}

func TestRefreshSkipsMalformedDates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[` +
			`{"id":1,"user_id":7,"name":"Rome","start_date":"not-a-date","created_at":"yesterday","destinations":[]},` +
			`{"id":2,"user_id":7,"name":"Paris","start_date":"2024-04-01T00:00:00","destinations":[]}]`))
	}))
	defer server.Close()

	store := session.NewStore(nil, nil)
	gateway := services.NewGateway(services.GatewayOpts{Origin: server.URL, Store: store})
	spy := &renderSpy{}
	s := NewSynchronizer(SyncOpts{
		Store:    store,
		Trips:    services.NewTripClient(gateway),
		Renderer: spy,
	})

	got := s.Refresh(context.Background())
	if len(got) != 2 || len(spy.last()) != 2 {
		t.Fatalf("expected both trips, got %d returned and %d rendered", len(got), len(spy.last()))
	}
	if rome, ok := models.FindTrip(got, 1); !ok || rome.StartDate.DateString() != "" {
		t.Errorf("bad start date should read as absent, got %+v", rome)
	}
	if paris, _ := models.FindTrip(got, 2); paris.StartDate.DateString() != "2024-04-01" {
		t.Errorf("unexpected start date %v", paris.StartDate)
	}
}

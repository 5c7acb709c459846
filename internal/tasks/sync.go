package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tripx/internal/models"
	"github.com/desertthunder/tripx/internal/services"
	"github.com/desertthunder/tripx/internal/session"
	"github.com/desertthunder/tripx/internal/shared"
)

// Renderer receives the trip collection whenever it changes.
type Renderer interface {
	RenderTrips(trips []models.Trip)
}

// RenderFunc adapts a function to [Renderer].
type RenderFunc func(trips []models.Trip)

func (f RenderFunc) RenderTrips(trips []models.Trip) { f(trips) }

// Authenticator exchanges credentials for a session.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*models.Session, error)
}

// TripService is the subset of [services.TripClient] the synchronizer drives.
type TripService interface {
	List(ctx context.Context) ([]models.Trip, error)
	Create(ctx context.Context, fields services.TripFields) (*models.Trip, error)
	Delete(ctx context.Context, id int) error
}

// DestinationService is the subset of [services.DestinationClient] the synchronizer drives.
type DestinationService interface {
	Create(ctx context.Context, fields services.DestinationFields) (*models.Destination, error)
	Delete(ctx context.Context, id int) error
}

// CSRFSeeder primes the CSRF token before the first mutation.
type CSRFSeeder interface {
	InitCSRF(ctx context.Context) bool
}

// SyncOpts wires a [Synchronizer]. Renderer, Logger and Progress are optional.
type SyncOpts struct {
	Store        *session.Store
	Auth         Authenticator
	Trips        TripService
	Destinations DestinationService
	CSRF         CSRFSeeder
	Renderer     Renderer
	Logger       *log.Logger
	Progress     chan<- ProgressUpdate
}

// Synchronizer applies mutations and re-fetches the trip collection after each one.
type Synchronizer struct {
	store        *session.Store
	auth         Authenticator
	trips        TripService
	destinations DestinationService
	csrf         CSRFSeeder
	renderer     Renderer
	logger       *log.Logger
	progress     chan<- ProgressUpdate
}

// NewSynchronizer creates a [Synchronizer] from opts.
func NewSynchronizer(opts SyncOpts) *Synchronizer {
	s := &Synchronizer{
		store:        opts.Store,
		auth:         opts.Auth,
		trips:        opts.Trips,
		destinations: opts.Destinations,
		csrf:         opts.CSRF,
		renderer:     opts.Renderer,
		logger:       opts.Logger,
		progress:     opts.Progress,
	}
	if s.store == nil {
		s.store = session.NewStore(nil, opts.Logger)
	}
	if s.renderer == nil {
		s.renderer = RenderFunc(func([]models.Trip) {})
	}
	if s.logger == nil {
		s.logger = shared.DiscardLogger()
	}
	return s
}

// Store returns the session store the synchronizer writes to.
func (s *Synchronizer) Store() *session.Store {
	return s.store
}

// SetRenderer swaps the rendering collaborator. A nil renderer discards updates.
func (s *Synchronizer) SetRenderer(r Renderer) {
	if r == nil {
		r = RenderFunc(func([]models.Trip) {})
	}
	s.renderer = r
}

// SetProgress replaces the channel progress updates are sent to. Nil disables them.
func (s *Synchronizer) SetProgress(progress chan<- ProgressUpdate) {
	s.progress = progress
}

// Refresh re-fetches the trip collection, stores it and hands it to the renderer.
//
// A failed fetch is logged and treated as an empty collection.
func (s *Synchronizer) Refresh(ctx context.Context) []models.Trip {
	trips, err := s.trips.List(ctx)
	if err != nil {
		s.logger.Error("failed to load trips", "error", err)
		trips = []models.Trip{}
	}

	s.store.SetTrips(trips)
	s.renderer.RenderTrips(s.store.Trips())
	sendProgress(s.progress, fetchTripsUpdate(len(trips), err != nil))
	return trips
}

// Login authenticates, stores the session and refreshes trips.
func (s *Synchronizer) Login(ctx context.Context, username, password string) (*models.Session, error) {
	sess, err := s.auth.Login(ctx, username, password)
	if err != nil {
		sendProgress(s.progress, mutationUpdate(Login, "log in", err))
		return nil, err
	}

	if err := s.store.SetSession(sess); err != nil {
		s.logger.Warn("session will not survive a restart", "error", err)
	}
	sendProgress(s.progress, mutationUpdate(Login, "logged in as "+sess.Username, nil))

	s.Refresh(ctx)
	return s.store.Session(), nil
}

// Logout drops the session and renders an empty collection.
//
// The returned error only reports a failure to remove the stored keys; the in-memory logout always happens.
func (s *Synchronizer) Logout() error {
	err := s.store.Clear()
	if err != nil {
		s.logger.Warn("failed to remove stored session", "error", err)
	}
	s.renderer.RenderTrips([]models.Trip{})
	sendProgress(s.progress, phaseUpdate(Logout, "Logged out"))
	return err
}

// Start restores any stored session, seeds the CSRF token and loads trips when authenticated.
func (s *Synchronizer) Start(ctx context.Context) *models.Session {
	sess, err := s.store.Restore()
	if err != nil {
		s.logger.Warn("could not restore session", "error", err)
	}
	sendProgress(s.progress, phaseUpdate(RestoreSession, restoreMessage(sess)))

	if s.csrf != nil && s.csrf.InitCSRF(ctx) {
		sendProgress(s.progress, phaseUpdate(SeedCSRF, "CSRF token ready"))
	}

	if sess != nil {
		s.Refresh(ctx)
	}
	return sess
}

// CreateTrip creates a trip, then refreshes regardless of the outcome.
func (s *Synchronizer) CreateTrip(ctx context.Context, fields services.TripFields) (*models.Trip, error) {
	trip, err := s.trips.Create(ctx, fields)
	sendProgress(s.progress, mutationUpdate(CreateTrip, "create trip "+fields.Name, err))
	s.Refresh(ctx)
	return trip, err
}

// DeleteTrip deletes a trip, then refreshes regardless of the outcome.
func (s *Synchronizer) DeleteTrip(ctx context.Context, id int) error {
	err := s.trips.Delete(ctx, id)
	sendProgress(s.progress, mutationUpdate(DeleteTrip, fmt.Sprintf("delete trip %d", id), err))
	s.Refresh(ctx)
	return err
}

// CreateDestination adds a destination, then refreshes regardless of the outcome.
func (s *Synchronizer) CreateDestination(ctx context.Context, fields services.DestinationFields) (*models.Destination, error) {
	dest, err := s.destinations.Create(ctx, fields)
	sendProgress(s.progress, mutationUpdate(CreateDestination, "add "+fields.City, err))
	s.Refresh(ctx)
	return dest, err
}

// DeleteDestination removes a destination, then refreshes regardless of the outcome.
func (s *Synchronizer) DeleteDestination(ctx context.Context, id int) error {
	err := s.destinations.Delete(ctx, id)
	sendProgress(s.progress, mutationUpdate(DeleteDestination, fmt.Sprintf("delete destination %d", id), err))
	s.Refresh(ctx)
	return err
}

func restoreMessage(sess *models.Session) string {
	if sess == nil {
		return "No stored session"
	}
	return "Restored session for " + sess.Username
}

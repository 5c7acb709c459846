package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	RestoreSession Phase = iota
	SeedCSRF
	FetchTrips
	Login
	Logout
	CreateTrip
	DeleteTrip
	CreateDestination
	DeleteDestination
	FetchWeather
)

func (p Phase) String() string {
	switch p {
	case RestoreSession:
		return "restore_session"
	case SeedCSRF:
		return "seed_csrf"
	case FetchTrips:
		return "fetch_trips"
	case Login:
		return "login"
	case Logout:
		return "logout"
	case CreateTrip:
		return "create_trip"
	case DeleteTrip:
		return "delete_trip"
	case CreateDestination:
		return "create_destination"
	case DeleteDestination:
		return "delete_destination"
	case FetchWeather:
		return "fetch_weather"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func phaseUpdate(phase Phase, msg string) ProgressUpdate {
	return ProgressUpdate{Phase: phase, Step: 1, Total: 1, Message: msg}
}

func fetchTripsUpdate(count int, failed bool) ProgressUpdate {
	if failed {
		return ProgressUpdate{Phase: FetchTrips, Step: 1, Total: 1, Message: "Could not load trips"}
	}
	return ProgressUpdate{Phase: FetchTrips, Step: 1, Total: 1, Message: fmt.Sprintf("Loaded %d trips", count), Data: count}
}

func mutationUpdate(phase Phase, subject string, err error) ProgressUpdate {
	if err != nil {
		return ProgressUpdate{Phase: phase, Step: 1, Total: 1, Message: fmt.Sprintf("✗ %s: %v", subject, err)}
	}
	return ProgressUpdate{Phase: phase, Step: 1, Total: 1, Message: "✓ " + subject}
}

func weatherFetchedUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchWeather,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, name),
	}
}

func weatherFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchWeather,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}

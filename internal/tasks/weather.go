package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/tripx/internal/models"
	"github.com/desertthunder/tripx/internal/shared"
	"golang.org/x/time/rate"
)

// TripWeatherFetcher is the subset of [services.WeatherClient] used by [CollectWeather].
type TripWeatherFetcher interface {
	ByTrip(ctx context.Context, tripID int) (*models.TripWeather, error)
}

// CollectOpts configures [CollectWeather].
type CollectOpts struct {
	NumWorkers int     // Concurrent workers (default: 3, max: 8)
	RateLimit  float64 // Requests per second (default: 2)
}

// TripWeatherResult is the outcome for one trip.
type TripWeatherResult struct {
	Trip    models.Trip
	Weather *models.TripWeather
	Error   error
}

// CollectWeather fetches trip-wide weather for each trip concurrently.
//
// Results are returned in the order of trips. Per-trip failures are recorded in the result, not returned.
func CollectWeather(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	fetcher TripWeatherFetcher,
	trips []models.Trip,
	opts CollectOpts,
) ([]TripWeatherResult, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("%w: weather client not initialized", shared.ErrServiceUnavailable)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 3
	}
	if opts.NumWorkers > 8 {
		opts.NumWorkers = 8
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}

	results := make([]TripWeatherResult, len(trips))
	if len(trips) == 0 {
		return results, nil
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan int, len(trips))
	done := make(chan int, len(trips))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = fetchTripWeather(ctx, limiter, fetcher, trips[i])
				done <- i
			}
		}()
	}

	for i := range trips {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(done)
	}()

	completed := 0
	for i := range done {
		completed++
		res := results[i]
		if res.Error != nil {
			sendProgress(prog, weatherFailedUpdate(completed, len(trips), res.Trip.Name, res.Error))
		} else {
			sendProgress(prog, weatherFetchedUpdate(completed, len(trips), res.Trip.Name))
		}
	}

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

func fetchTripWeather(ctx context.Context, limiter *rate.Limiter, fetcher TripWeatherFetcher, trip models.Trip) TripWeatherResult {
	res := TripWeatherResult{Trip: trip}
	if err := limiter.Wait(ctx); err != nil {
		res.Error = err
		return res
	}
	res.Weather, res.Error = fetcher.ByTrip(ctx, trip.ID)
	return res
}

// Package snapshot builds the immutable DecisionContext each cycle evaluates
// against. External feeds are queried concurrently with a per-query timeout;
// a failing feed degrades the snapshot instead of blocking the cycle.
package snapshot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Jainil7227/AlphaNeuron/core/geo"
	"github.com/Jainil7227/AlphaNeuron/core/model"
	"github.com/Jainil7227/AlphaNeuron/core/providers"
	"github.com/Jainil7227/AlphaNeuron/infra/logger"
)

// Config bounds the aggregation work per cycle.
type Config struct {
	QueryTimeout    time.Duration `json:"query_timeout"`
	CycleBudget     time.Duration `json:"cycle_budget"`
	CorridorWidthKm float64       `json:"corridor_width_km"`
	Region          string        `json:"region"`

	// ConfidencePenalty is subtracted from the snapshot confidence for each
	// degraded field.
	ConfidencePenalty float64 `json:"confidence_penalty"`
}

// SetDefaults applies the default aggregation bounds.
func (c *Config) SetDefaults() {
	if c.QueryTimeout == 0 {
		c.QueryTimeout = 3 * time.Second
	}
	if c.CycleBudget == 0 {
		c.CycleBudget = 10 * time.Second
	}
	if c.CorridorWidthKm == 0 {
		c.CorridorWidthKm = 25
	}
	if c.ConfidencePenalty == 0 {
		c.ConfidencePenalty = 0.15
	}
}

// lastGood caches the most recent successful answer per feed so a transient
// outage degrades gracefully instead of zeroing the field.
type lastGood struct {
	route     *providers.RouteInfo
	alternate *model.Route
	weather   *model.WeatherCondition
	fuelPrice float64
}

// Aggregator gathers one DecisionContext per cycle for a single mission.
// It is not safe for concurrent Gather calls; the scheduler serializes cycles.
type Aggregator struct {
	cfg         Config
	routing     providers.Routing
	weather     providers.Weather
	fuel        providers.FuelPrice
	marketplace providers.Marketplace
	log         logger.Logger

	mu     sync.Mutex
	cache  lastGood
	now    func() time.Time
	filter func(model.Load) bool
}

// New builds an aggregator over the injected providers.
func New(cfg Config, routing providers.Routing, weather providers.Weather, fuel providers.FuelPrice, marketplace providers.Marketplace, log logger.Logger) *Aggregator {
	cfg.SetDefaults()
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Aggregator{
		cfg:         cfg,
		routing:     routing,
		weather:     weather,
		fuel:        fuel,
		marketplace: marketplace,
		log:         log,
		now:         time.Now,
	}
}

// SetClock overrides the time source.
func (a *Aggregator) SetClock(now func() time.Time) { a.now = now }

// SetCandidateFilter installs a predicate applied to marketplace candidates
// before they enter the snapshot. Used to drop driver-rejected loads.
func (a *Aggregator) SetCandidateFilter(keep func(model.Load) bool) { a.filter = keep }

// Gather queries every feed concurrently and assembles the snapshot. It never
// fails outright: each unavailable feed falls back to its last known good
// value (or a neutral default) and is listed in Degraded. The whole gather is
// bounded by the cycle budget regardless of how many feeds stall.
func (a *Aggregator) Gather(ctx context.Context, m *model.Mission, v model.Vehicle) model.DecisionContext {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.CycleBudget)
	defer cancel()

	dc := model.DecisionContext{
		ID:        uuid.NewString(),
		MissionID: m.ID,
		At:        a.now(),
		Vehicle:   v,
	}

	var (
		route     providers.RouteInfo
		alternate *model.Route
		weather   model.WeatherCondition
		price     float64
		loads     []model.Load

		degraded []model.ContextField
		degMu    sync.Mutex
	)
	markDegraded := func(f model.ContextField, err error) {
		degMu.Lock()
		degraded = append(degraded, f)
		degMu.Unlock()
		a.log.Warnf("mission %s: %s feed degraded: %v", m.ID, f, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r, err := query(gctx, a.cfg.QueryTimeout, func(qctx context.Context) (providers.RouteInfo, error) {
			return a.routing.GetRoute(qctx, v.Position, m.Destination, providers.RouteConstraints{})
		})
		if err != nil {
			markDegraded(model.FieldRoute, err)
			a.mu.Lock()
			if a.cache.route != nil {
				route = *a.cache.route
			}
			a.mu.Unlock()
			return nil
		}
		route = r
		a.mu.Lock()
		a.cache.route = &r
		a.mu.Unlock()
		return nil
	})

	g.Go(func() error {
		alt, err := query(gctx, a.cfg.QueryTimeout, func(qctx context.Context) (providers.RouteInfo, error) {
			return a.routing.GetRoute(qctx, v.Position, m.Destination, providers.RouteConstraints{AvoidTraffic: true})
		})
		if err != nil {
			markDegraded(model.FieldAlternate, err)
			a.mu.Lock()
			alternate = a.cache.alternate
			a.mu.Unlock()
			return nil
		}
		alternate = &alt.Route
		a.mu.Lock()
		a.cache.alternate = &alt.Route
		a.mu.Unlock()
		return nil
	})

	g.Go(func() error {
		w, err := query(gctx, a.cfg.QueryTimeout, func(qctx context.Context) (model.WeatherCondition, error) {
			return a.weather.GetConditions(qctx, v.Position)
		})
		if err != nil {
			markDegraded(model.FieldWeather, err)
			a.mu.Lock()
			if a.cache.weather != nil {
				weather = *a.cache.weather
			}
			a.mu.Unlock()
			return nil
		}
		weather = w
		a.mu.Lock()
		a.cache.weather = &w
		a.mu.Unlock()
		return nil
	})

	g.Go(func() error {
		p, err := query(gctx, a.cfg.QueryTimeout, func(qctx context.Context) (float64, error) {
			return a.fuel.GetPrice(qctx, a.cfg.Region)
		})
		if err != nil {
			markDegraded(model.FieldFuelPrice, err)
			a.mu.Lock()
			price = a.cache.fuelPrice
			a.mu.Unlock()
			return nil
		}
		price = p
		a.mu.Lock()
		a.cache.fuelPrice = p
		a.mu.Unlock()
		return nil
	})

	g.Go(func() error {
		remaining := geo.RemainingFrom(m.Route.Points(), v.Position)
		ls, err := query(gctx, a.cfg.QueryTimeout, func(qctx context.Context) ([]model.Load, error) {
			return a.marketplace.SearchCorridor(qctx, remaining, a.cfg.CorridorWidthKm, providers.SearchFilters{
				MaxWeightTons: v.AvailableWeightTons(),
			})
		})
		if err != nil {
			// No stale load cache: a stale marketplace answer risks committing
			// to a load that is already gone.
			markDegraded(model.FieldLoads, err)
			return nil
		}
		if a.filter != nil {
			kept := ls[:0]
			for _, l := range ls {
				if a.filter(l) {
					kept = append(kept, l)
				}
			}
			ls = kept
		}
		loads = ls
		return nil
	})

	_ = g.Wait()

	dc.Traffic = route.Traffic
	dc.CheckpointDelaySev = route.CheckpointDelayProb
	dc.Weather = weather
	dc.FuelPricePerLiter = price
	dc.Candidates = loads
	dc.AlternateRoute = alternate
	dc.Degraded = degraded

	a.fillRoute(&dc, m, v, route)

	dc.ContinuousDrivingMin = continuousDrivingMin(m, dc.At)
	dc.Confidence = 1 - a.cfg.ConfidencePenalty*float64(len(degraded))
	if dc.Confidence < 0 {
		dc.Confidence = 0
	}
	return dc
}

// fillRoute derives the remaining-route view. The fresh routing answer wins;
// when the routing feed is down it falls back to trimming the mission's
// planned route at the vehicle position.
func (a *Aggregator) fillRoute(dc *model.DecisionContext, m *model.Mission, v model.Vehicle, fresh providers.RouteInfo) {
	if len(fresh.Route.Points()) > 0 {
		dc.RemainingRoute = fresh.Route
		dc.RemainingRoute.Version = m.Route.Version
	} else {
		remaining := geo.RemainingFrom(m.Route.Points(), v.Position)
		dc.RemainingRoute = m.Route
		dc.RemainingRoute.Polyline = remaining
		dc.RemainingRoute.Encoded = ""
		dc.RemainingRoute.DistanceKm = geo.PathLengthKm(remaining)
		if v.SpeedKmh > 0 {
			dc.RemainingRoute.DurationMin = dc.RemainingRoute.DistanceKm / v.SpeedKmh * 60
		}
	}
	dc.DistanceToDestKm = dc.RemainingRoute.DistanceKm
	dc.TimeRemainingMin = dc.RemainingRoute.DurationMin

	if !m.ExpectedArrival.IsZero() {
		eta := dc.At.Add(time.Duration(dc.TimeRemainingMin * float64(time.Minute)))
		dc.DelayMinutes = eta.Sub(m.ExpectedArrival).Minutes()
		if dc.DelayMinutes < 0 {
			dc.DelayMinutes = 0
		}
	}
}

// continuousDrivingMin measures driving time since the last completed rest
// stop, or since mission start when the driver has not rested yet.
func continuousDrivingMin(m *model.Mission, now time.Time) float64 {
	since := m.StartedAt
	for _, wp := range m.Route.Waypoints {
		if wp.Kind == model.WaypointRest && !wp.ActualAt.IsZero() && wp.ActualAt.After(since) {
			since = wp.ActualAt
		}
	}
	if since.IsZero() || now.Before(since) {
		return 0
	}
	return now.Sub(since).Minutes()
}

// query runs one provider call under the per-query timeout.
func query[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	qctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	out, err := fn(qctx)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("provider query: %w", err)
	}
	return out, nil
}

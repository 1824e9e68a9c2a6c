package providers

import (
	"context"

	"github.com/Jainil7227/AlphaNeuron/core/geo"
	"github.com/Jainil7227/AlphaNeuron/core/model"
)

// StaticRouting is a deterministic routing stub. Routes are straight-line
// polylines scaled by a road factor, driven at a fixed average speed.
type StaticRouting struct {
	SpeedKmh   float64
	RoadFactor float64
	TollPerKm  float64

	Traffic             model.TrafficSeverity
	CheckpointDelayProb float64

	// Alternate routes (AvoidTraffic queries) shave AltTimeSavedMin off the
	// duration and add AltTollDelta to the tolls.
	AltTimeSavedMin float64
	AltTollDelta    float64

	Err error
}

// GetRoute implements Routing.
func (s StaticRouting) GetRoute(_ context.Context, origin, dest geo.Point, c RouteConstraints) (RouteInfo, error) {
	if s.Err != nil {
		return RouteInfo{}, s.Err
	}
	speed := s.SpeedKmh
	if speed <= 0 {
		speed = 50
	}
	factor := s.RoadFactor
	if factor <= 0 {
		factor = 1.2
	}
	dist := geo.HaversineKm(origin, dest) * factor
	dur := dist / speed * 60
	toll := dist * s.TollPerKm
	if c.AvoidTraffic {
		dur -= s.AltTimeSavedMin
		if dur < 0 {
			dur = 0
		}
		toll += s.AltTollDelta
	}
	mid := geo.Point{Lat: (origin.Lat + dest.Lat) / 2, Lng: (origin.Lng + dest.Lng) / 2}
	route := model.Route{
		Polyline:    []geo.Point{origin, mid, dest},
		DistanceKm:  dist,
		DurationMin: dur,
		TollCost:    toll,
	}
	route.Seal()
	return RouteInfo{
		Route:               route,
		Traffic:             s.Traffic,
		CheckpointDelayProb: s.CheckpointDelayProb,
	}, nil
}

// StaticWeather always reports the configured conditions.
type StaticWeather struct {
	Conditions model.WeatherCondition
	Err        error
}

// GetConditions implements Weather.
func (s StaticWeather) GetConditions(context.Context, geo.Point) (model.WeatherCondition, error) {
	if s.Err != nil {
		return model.WeatherCondition{}, s.Err
	}
	return s.Conditions, nil
}

// StaticFuelPrice reports fixed per-region prices with a default.
type StaticFuelPrice struct {
	Default float64
	Regions map[string]float64
	Err     error
}

// GetPrice implements FuelPrice.
func (s StaticFuelPrice) GetPrice(_ context.Context, region string) (float64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	if p, ok := s.Regions[region]; ok {
		return p, nil
	}
	return s.Default, nil
}

// StaticMarketplace serves a fixed set of loads, filtered by corridor width
// and the caller's capacity filters.
type StaticMarketplace struct {
	Loads []model.Load
	Err   error
}

// SearchCorridor implements Marketplace.
func (s StaticMarketplace) SearchCorridor(_ context.Context, polyline []geo.Point, widthKm float64, f SearchFilters) ([]model.Load, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []model.Load
	for _, l := range s.Loads {
		if l.Status != model.LoadAvailable {
			continue
		}
		if f.MaxWeightTons > 0 && l.WeightTons > f.MaxWeightTons {
			continue
		}
		if f.MaxVolumeM3 > 0 && l.VolumeM3 > f.MaxVolumeM3 {
			continue
		}
		if len(polyline) > 0 && geo.PointToPolylineKm(l.Pickup, polyline) > widthKm {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// Package providers defines the external data contracts the decision core
// consumes. Implementations are selected by dependency injection: HTTP
// clients in infra/providers for production, the Static* stubs here for tests
// and demos. The core never inspects provider internals.
package providers

import (
	"context"

	"github.com/Jainil7227/AlphaNeuron/core/geo"
	"github.com/Jainil7227/AlphaNeuron/core/model"
)

// RouteConstraints narrow a routing query.
type RouteConstraints struct {
	AvoidTraffic bool   `json:"avoid_traffic"`
	VehicleType  string `json:"vehicle_type,omitempty"`
}

// RouteInfo is a routing provider answer: the route itself plus the traffic
// and checkpoint signals observed along it.
type RouteInfo struct {
	Route               model.Route           `json:"route"`
	Traffic             model.TrafficSeverity `json:"traffic"`
	CheckpointDelayProb float64               `json:"checkpoint_delay_probability"`
}

// Routing resolves routes between two points.
type Routing interface {
	GetRoute(ctx context.Context, origin, dest geo.Point, c RouteConstraints) (RouteInfo, error)
}

// Weather reports conditions at a point.
type Weather interface {
	GetConditions(ctx context.Context, p geo.Point) (model.WeatherCondition, error)
}

// FuelPrice reports the current diesel price for a region.
type FuelPrice interface {
	GetPrice(ctx context.Context, region string) (float64, error)
}

// SearchFilters narrow a marketplace corridor search.
type SearchFilters struct {
	MaxWeightTons float64 `json:"max_weight_tons,omitempty"`
	MaxVolumeM3   float64 `json:"max_volume_m3,omitempty"`
	CargoTypes    []string `json:"cargo_types,omitempty"`
}

// Marketplace searches posted loads along a route corridor.
type Marketplace interface {
	SearchCorridor(ctx context.Context, polyline []geo.Point, widthKm float64, f SearchFilters) ([]model.Load, error)
}

package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Jainil7227/AlphaNeuron/core/geo"
	"github.com/Jainil7227/AlphaNeuron/core/model"
	coreproviders "github.com/Jainil7227/AlphaNeuron/core/providers"
)

// RoutingClient queries a REST routing service. The answer carries the path
// as an encoded polyline which is decoded into the route.
type RoutingClient struct {
	baseURL string
	apiKey  string
	cli     *http.Client
}

// NewRoutingClient builds a client for the given endpoint.
func NewRoutingClient(baseURL, apiKey string, timeout time.Duration) *RoutingClient {
	return &RoutingClient{baseURL: baseURL, apiKey: apiKey, cli: newHTTPClient(timeout)}
}

type routingResponse struct {
	Polyline            string  `json:"polyline"`
	DistanceKm          float64 `json:"distance_km"`
	DurationMin         float64 `json:"duration_min"`
	TollCost            float64 `json:"toll_cost"`
	Traffic             string  `json:"traffic"`
	CheckpointDelayProb float64 `json:"checkpoint_delay_probability"`
}

// GetRoute implements providers.Routing.
func (c *RoutingClient) GetRoute(ctx context.Context, origin, dest geo.Point, rc coreproviders.RouteConstraints) (coreproviders.RouteInfo, error) {
	q := url.Values{}
	q.Set("origin", fmt.Sprintf("%f,%f", origin.Lat, origin.Lng))
	q.Set("destination", fmt.Sprintf("%f,%f", dest.Lat, dest.Lng))
	q.Set("avoid_traffic", strconv.FormatBool(rc.AvoidTraffic))
	if rc.VehicleType != "" {
		q.Set("vehicle_type", rc.VehicleType)
	}

	var resp routingResponse
	if err := getJSON(ctx, c.cli, withQuery(c.baseURL+"/route", q), c.apiKey, &resp); err != nil {
		return coreproviders.RouteInfo{}, err
	}
	pts, err := geo.DecodePolyline(resp.Polyline)
	if err != nil {
		return coreproviders.RouteInfo{}, fmt.Errorf("decode route polyline: %w", err)
	}
	return coreproviders.RouteInfo{
		Route: model.Route{
			Polyline:    pts,
			Encoded:     resp.Polyline,
			DistanceKm:  resp.DistanceKm,
			DurationMin: resp.DurationMin,
			TollCost:    resp.TollCost,
		},
		Traffic:             trafficFromString(resp.Traffic),
		CheckpointDelayProb: resp.CheckpointDelayProb,
	}, nil
}

func trafficFromString(s string) model.TrafficSeverity {
	switch s {
	case "moderate":
		return model.TrafficModerate
	case "heavy":
		return model.TrafficHeavy
	case "severe":
		return model.TrafficSevere
	default:
		return model.TrafficLight
	}
}

package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Jainil7227/AlphaNeuron/core/geo"
	"github.com/Jainil7227/AlphaNeuron/core/model"
	coreproviders "github.com/Jainil7227/AlphaNeuron/core/providers"
)

// WeatherClient queries a REST weather service.
type WeatherClient struct {
	baseURL string
	apiKey  string
	cli     *http.Client
}

func NewWeatherClient(baseURL, apiKey string, timeout time.Duration) *WeatherClient {
	return &WeatherClient{baseURL: baseURL, apiKey: apiKey, cli: newHTTPClient(timeout)}
}

// GetConditions implements providers.Weather.
func (c *WeatherClient) GetConditions(ctx context.Context, p geo.Point) (model.WeatherCondition, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", p.Lat))
	q.Set("lng", fmt.Sprintf("%f", p.Lng))

	var resp model.WeatherCondition
	if err := getJSON(ctx, c.cli, withQuery(c.baseURL+"/conditions", q), c.apiKey, &resp); err != nil {
		return model.WeatherCondition{}, err
	}
	return resp, nil
}

// FuelPriceClient queries a REST fuel-price service.
type FuelPriceClient struct {
	baseURL string
	apiKey  string
	cli     *http.Client
}

func NewFuelPriceClient(baseURL, apiKey string, timeout time.Duration) *FuelPriceClient {
	return &FuelPriceClient{baseURL: baseURL, apiKey: apiKey, cli: newHTTPClient(timeout)}
}

// GetPrice implements providers.FuelPrice.
func (c *FuelPriceClient) GetPrice(ctx context.Context, region string) (float64, error) {
	q := url.Values{}
	q.Set("region", region)
	q.Set("fuel", "diesel")

	var resp struct {
		PricePerLiter float64 `json:"price_per_liter"`
	}
	if err := getJSON(ctx, c.cli, withQuery(c.baseURL+"/price", q), c.apiKey, &resp); err != nil {
		return 0, err
	}
	return resp.PricePerLiter, nil
}

// MarketplaceClient queries the load marketplace for corridor candidates.
type MarketplaceClient struct {
	baseURL string
	apiKey  string
	cli     *http.Client
}

func NewMarketplaceClient(baseURL, apiKey string, timeout time.Duration) *MarketplaceClient {
	return &MarketplaceClient{baseURL: baseURL, apiKey: apiKey, cli: newHTTPClient(timeout)}
}

// SearchCorridor implements providers.Marketplace. The corridor polyline is
// sent encoded to keep the query compact.
func (c *MarketplaceClient) SearchCorridor(ctx context.Context, polyline []geo.Point, widthKm float64, f coreproviders.SearchFilters) ([]model.Load, error) {
	q := url.Values{}
	q.Set("corridor", geo.EncodePolyline(polyline))
	q.Set("width_km", fmt.Sprintf("%f", widthKm))
	if f.MaxWeightTons > 0 {
		q.Set("max_weight_tons", fmt.Sprintf("%f", f.MaxWeightTons))
	}
	if f.MaxVolumeM3 > 0 {
		q.Set("max_volume_m3", fmt.Sprintf("%f", f.MaxVolumeM3))
	}
	if len(f.CargoTypes) > 0 {
		q.Set("cargo_types", strings.Join(f.CargoTypes, ","))
	}

	var resp struct {
		Loads []model.Load `json:"loads"`
	}
	if err := getJSON(ctx, c.cli, withQuery(c.baseURL+"/loads/search", q), c.apiKey, &resp); err != nil {
		return nil, err
	}
	return resp.Loads, nil
}

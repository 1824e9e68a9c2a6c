package fare

// ReturnCost breaks down the cost of driving a leg empty (dead miles).
type ReturnCost struct {
	FuelCost   float64 `json:"fuel_cost"`
	TollCost   float64 `json:"toll_cost"`
	DriverCost float64 `json:"driver_cost"`
	WearCost   float64 `json:"wear_cost"`
	Total      float64 `json:"total"`
	PerKm      float64 `json:"per_km"`
}

// EmptyReturnCost prices an empty return leg: fuel, tolls, driver time at an
// assumed 50 km/h average, and a per-km maintenance reserve.
func EmptyReturnCost(cfg Config, distanceKm, tollCost float64) ReturnCost {
	fuel := 0.0
	if cfg.FuelEfficiency > 0 {
		fuel = distanceKm / cfg.FuelEfficiency * cfg.FuelPricePerLiter
	}
	driver := distanceKm / 50 * cfg.DriverRatePerHour
	wear := distanceKm * cfg.WearPerKm
	total := fuel + tollCost + driver + wear
	perKm := 0.0
	if distanceKm > 0 {
		perKm = total / distanceKm
	}
	return ReturnCost{
		FuelCost:   fuel,
		TollCost:   tollCost,
		DriverCost: driver,
		WearCost:   wear,
		Total:      total,
		PerKm:      perKm,
	}
}

// RiskFactor scales load profitability by shipper trust and cargo class,
// bounded to [1.0, 1.5]. A well-rated shipper with general cargo divides by
// 1.0; unknown shippers with sensitive cargo approach 1.5.
func RiskFactor(shipperRating float64, cargoType string) float64 {
	f := 1.0
	switch {
	case shipperRating == 0:
		f += 0.2 // unknown shipper
	case shipperRating < 3:
		f += 0.25
	case shipperRating < 4:
		f += 0.1
	}
	switch cargoType {
	case "hazmat", "chemicals":
		f += 0.25
	case "perishables", "pharmaceuticals", "fragile":
		f += 0.15
	}
	if f > 1.5 {
		f = 1.5
	}
	return f
}

package model

import (
	"fmt"

	"github.com/Jainil7227/AlphaNeuron/core/geo"
)

// Vehicle represents a truck participating in missions. The capacity
// invariant current load <= max capacity holds after every accepted load; the
// capacity manager enforces it before any load reaches scoring.
type Vehicle struct {
	ID                string    `json:"id"`
	MaxWeightTons     float64   `json:"max_weight_tons"`
	MaxVolumeM3       float64   `json:"max_volume_m3"`
	CurrentWeightTons float64   `json:"current_weight_tons"`
	CurrentVolumeM3   float64   `json:"current_volume_m3"`
	FuelLevelPercent  float64   `json:"fuel_level_percent"`
	FuelEfficiency    float64   `json:"fuel_efficiency_km_per_l"`
	TankLiters        float64   `json:"tank_liters"`
	Position          geo.Point `json:"position"`
	SpeedKmh          float64   `json:"speed_kmh"`
}

// Validate checks that the vehicle configuration is sound.
func (v Vehicle) Validate() error {
	if v.MaxWeightTons <= 0 {
		return fmt.Errorf("vehicle %s: max weight must be positive", v.ID)
	}
	if v.CurrentWeightTons < 0 || v.CurrentWeightTons > v.MaxWeightTons {
		return fmt.Errorf("vehicle %s: current load %.2ft outside [0, %.2ft]",
			v.ID, v.CurrentWeightTons, v.MaxWeightTons)
	}
	if v.MaxVolumeM3 > 0 && v.CurrentVolumeM3 > v.MaxVolumeM3 {
		return fmt.Errorf("vehicle %s: current volume exceeds capacity", v.ID)
	}
	return nil
}

// AvailableWeightTons returns the remaining weight capacity.
func (v Vehicle) AvailableWeightTons() float64 {
	return v.MaxWeightTons - v.CurrentWeightTons
}

// UtilizationPercent returns the weight utilization in percent.
func (v Vehicle) UtilizationPercent() float64 {
	if v.MaxWeightTons <= 0 {
		return 0
	}
	return v.CurrentWeightTons / v.MaxWeightTons * 100
}

// RangeKm estimates the remaining driving range from fuel level, tank size
// and efficiency. Zero when any input is unknown.
func (v Vehicle) RangeKm() float64 {
	if v.TankLiters <= 0 || v.FuelEfficiency <= 0 {
		return 0
	}
	return v.TankLiters * v.FuelLevelPercent / 100 * v.FuelEfficiency
}

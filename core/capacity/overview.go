package capacity

import "github.com/Jainil7227/AlphaNeuron/core/model"

// MissionUtilization summarises one mission's capacity usage.
type MissionUtilization struct {
	MissionID          string  `json:"mission_id"`
	CapacityTons       float64 `json:"capacity_tons"`
	LoadTons           float64 `json:"load_tons"`
	UtilizationPercent float64 `json:"utilization_percent"`
	PooledLoads        int     `json:"pooled_loads"`
	HasBackhaul        bool    `json:"has_backhaul"`
}

// Recommendation suggests a capacity action for a mission.
type Recommendation struct {
	MissionID string `json:"mission_id"`
	Kind      string `json:"kind"` // low_utilization, moderate_utilization, no_backhaul
	Severity  string `json:"severity"`
	Message   string `json:"message"`
}

// Overview aggregates utilization across active missions and the fleet.
type Overview struct {
	TotalCapacityTons  float64              `json:"total_capacity_tons"`
	UsedTons           float64              `json:"used_tons"`
	UtilizationPercent float64              `json:"utilization_percent"`
	Missions           []MissionUtilization `json:"missions"`
	Recommendations    []Recommendation     `json:"recommendations"`
}

// FleetOverview computes utilization for the given mission/vehicle pairs and
// flags underused capacity or missing backhauls.
func FleetOverview(missions []*model.Mission, vehicles map[string]*model.Vehicle) Overview {
	var ov Overview
	for _, m := range missions {
		v, ok := vehicles[m.VehicleID]
		if !ok || m.Status.Terminal() {
			continue
		}
		load := m.ManifestWeightTons()
		util := 0.0
		if v.MaxWeightTons > 0 {
			util = load / v.MaxWeightTons * 100
		}
		mu := MissionUtilization{
			MissionID:          m.ID,
			CapacityTons:       v.MaxWeightTons,
			LoadTons:           load,
			UtilizationPercent: util,
			PooledLoads:        len(m.Manifest),
			HasBackhaul:        m.Backhaul != nil,
		}
		ov.Missions = append(ov.Missions, mu)
		ov.TotalCapacityTons += v.MaxWeightTons
		ov.UsedTons += load

		switch {
		case util < 50:
			ov.Recommendations = append(ov.Recommendations, Recommendation{
				MissionID: m.ID, Kind: "low_utilization", Severity: "high",
				Message: "under half capacity used, pool corridor loads",
			})
		case util < 75:
			ov.Recommendations = append(ov.Recommendations, Recommendation{
				MissionID: m.ID, Kind: "moderate_utilization", Severity: "medium",
				Message: "spare capacity available for small loads",
			})
		}
		if m.Backhaul == nil {
			ov.Recommendations = append(ov.Recommendations, Recommendation{
				MissionID: m.ID, Kind: "no_backhaul", Severity: "high",
				Message: "no return load booked, return leg will run empty",
			})
		}
	}
	if ov.TotalCapacityTons > 0 {
		ov.UtilizationPercent = ov.UsedTons / ov.TotalCapacityTons * 100
	}
	return ov
}

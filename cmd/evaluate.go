package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Jainil7227/AlphaNeuron/config"
	"github.com/Jainil7227/AlphaNeuron/core/capacity"
	"github.com/Jainil7227/AlphaNeuron/core/fare"
	"github.com/Jainil7227/AlphaNeuron/core/model"
	"github.com/Jainil7227/AlphaNeuron/core/policy"
	"github.com/Jainil7227/AlphaNeuron/core/providers"
	"github.com/Jainil7227/AlphaNeuron/core/snapshot"
	"github.com/Jainil7227/AlphaNeuron/infra/logger"
)

var scenarioPath string

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Run one offline decision cycle against static providers",
	RunE:  evaluate,
}

func init() {
	evaluateCmd.Flags().StringVarP(&scenarioPath, "scenario", "s", "scenario.json", "scenario file with mission, vehicle and loads")
	rootCmd.AddCommand(evaluateCmd)
}

// scenario is the offline input: one mission/vehicle pair plus the loads the
// static marketplace should serve.
type scenario struct {
	Mission model.Mission `json:"mission"`
	Vehicle model.Vehicle `json:"vehicle"`
	Loads   []model.Load  `json:"loads"`
}

func evaluate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	raw, err := os.ReadFile(scenarioPath)
	if err != nil {
		return fmt.Errorf("read scenario: %w", err)
	}
	var sc scenario
	if err := json.Unmarshal(raw, &sc); err != nil {
		return fmt.Errorf("decode scenario: %w", err)
	}

	log := logger.New("evaluate")
	caps := capacity.NewManager(log)
	agg := snapshot.New(cfg.Snapshot,
		providers.StaticRouting{},
		providers.StaticWeather{},
		providers.StaticFuelPrice{Default: cfg.Fare.FuelPricePerLiter},
		providers.StaticMarketplace{Loads: sc.Loads},
		log)
	eval := policy.NewEvaluator(cfg.Policy, log,
		policy.Refuel{Cfg: cfg.Policy},
		policy.Rest{Cfg: cfg.Policy},
		policy.Reroute{Cfg: cfg.Policy},
		policy.Backhaul{Cfg: cfg.Policy, FareCfg: cfg.Fare, Capacity: caps},
		policy.LoadMatch{Cfg: cfg.Policy, Capacity: caps},
	)
	prior := policy.Priorities(
		policy.Refuel{}, policy.Rest{}, policy.Reroute{},
		policy.Backhaul{}, policy.LoadMatch{},
	)

	ctx := context.Background()
	dc := agg.Gather(ctx, &sc.Mission, sc.Vehicle)
	options := eval.Evaluate(ctx, dc, &sc.Mission, &sc.Vehicle)

	out := struct {
		Quote    fare.Quote              `json:"quote"`
		Options  []model.EvaluatedOption `json:"options"`
		Decision string                  `json:"decision"`
	}{
		Quote: fare.Calculate(cfg.Fare, fare.QuoteInput{
			DistanceKm:          dc.DistanceToDestKm,
			DurationMin:         dc.TimeRemainingMin,
			TollCost:            dc.RemainingRoute.TollCost,
			WeightTons:          sc.Vehicle.CurrentWeightTons,
			CheckpointDelayProb: dc.CheckpointDelaySev,
			TrafficSeverity:     dc.Traffic.Normalized(),
			WeatherSeverity:     dc.Weather.Severity,
			TimingPressure:      -1,
		}),
		Options:  options,
		Decision: model.DecisionNoAction.String(),
	}
	if best, ok := policy.Select(options, cfg.Policy.MinActionThreshold, prior); ok {
		out.Decision = best.Type.String()
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

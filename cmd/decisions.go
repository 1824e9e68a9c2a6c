package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Jainil7227/AlphaNeuron/config"
	"github.com/Jainil7227/AlphaNeuron/core/decisionlog"
)

var (
	decisionsMission string
	decisionsSince   string
)

var decisionsCmd = &cobra.Command{
	Use:   "decisions",
	Short: "Query the decision log",
	RunE:  listDecisions,
}

func init() {
	decisionsCmd.Flags().StringVarP(&decisionsMission, "mission", "m", "", "filter by mission id")
	decisionsCmd.Flags().StringVar(&decisionsSince, "since", "", "only decisions after this RFC3339 timestamp")
	rootCmd.AddCommand(decisionsCmd)
}

func listDecisions(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	var store decisionlog.Store
	switch cfg.DecisionLog.Backend {
	case "sqlite":
		store, err = decisionlog.NewSQLiteStore(cfg.DecisionLog.Path)
	default:
		store, err = decisionlog.NewJSONLStore(cfg.DecisionLog.Path)
	}
	if err != nil {
		return fmt.Errorf("open decision log: %w", err)
	}
	defer func() { _ = store.Close() }()

	q := decisionlog.Query{MissionID: decisionsMission}
	if decisionsSince != "" {
		start, err := time.Parse(time.RFC3339, decisionsSince)
		if err != nil {
			return fmt.Errorf("parse --since: %w", err)
		}
		q.Start = start
	}
	decisions, err := store.Query(cmd.Context(), q)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(decisions)
}

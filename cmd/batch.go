package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jagostokes/zipline-data-analytics-p1v1/internal/logging"
	"github.com/jagostokes/zipline-data-analytics-p1v1/internal/models"
	"github.com/jagostokes/zipline-data-analytics-p1v1/internal/output"
	"github.com/jagostokes/zipline-data-analytics-p1v1/internal/simulator"
)

// progressChunkSec balances bar smoothness against advance-call overhead.
const progressChunkSec = 600.0

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run the simulation offline to a fixed horizon and report",
	Long: `batch advances the simulation with a fixed step to the given horizon,
decoupled from the wall clock, then prints an exact summary report built from
the retained order history. Event sinks are not attached; use --export to
write the completed orders as JSON, or enable Postgres to bulk-load them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		horizon := viper.GetFloat64("horizon_sec")
		if horizon <= 0 {
			return fmt.Errorf("horizon-sec must be positive, got %v", horizon)
		}

		log := logging.New("batch")
		sim := simulator.New(cfg)

		bar := progressbar.NewOptions64(int64(horizon),
			progressbar.OptionSetDescription("simulating"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		for sim.Clock() < horizon {
			next := sim.Clock() + progressChunkSec
			if next > horizon {
				next = horizon
			}
			sim.RunToHorizon(next)
			_ = bar.Set64(int64(sim.Clock()))
		}
		_ = bar.Finish()

		metrics := sim.SnapshotMetrics()
		orders := sim.ExportCompletedOrders()
		report := simulator.BuildReport(orders)

		log.Info().
			Str("run_id", sim.RunID()).
			Float64("horizon_sec", horizon).
			Int64("orders_completed", metrics.OrdersCompleted).
			Int64("queue_depth", metrics.QueueDepth).
			Msg("batch run finished")

		encoded, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("error encoding report: %w", err)
		}
		fmt.Println(string(encoded))

		if exportPath := viper.GetString("export_path"); exportPath != "" {
			if err := exportOrders(exportPath, orders); err != nil {
				return fmt.Errorf("error exporting orders: %w", err)
			}
			log.Info().Str("path", exportPath).Int("orders", len(orders)).Msg("orders exported")
		}

		if cfg.PostgresEnabled {
			sink, err := output.NewPostgresOutput(&cfg.Database)
			if err != nil {
				return fmt.Errorf("error connecting to postgres: %w", err)
			}
			defer sink.Close()
			if err := sink.BulkInsertOrders(context.Background(), sim.RunID(), cfg.StartDate, orders); err != nil {
				return fmt.Errorf("error loading orders into postgres: %w", err)
			}
			log.Info().Int("orders", len(orders)).Msg("orders loaded into postgres")
		}

		return nil
	},
}

func exportOrders(path string, orders []models.Order) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for i := range orders {
		if err := enc.Encode(&orders[i]); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	batchCmd.Flags().Float64("horizon-sec", 86400, "Simulated horizon in seconds")
	batchCmd.Flags().String("export", "", "Write completed orders to this file as JSON lines")

	viper.BindPFlag("horizon_sec", batchCmd.Flags().Lookup("horizon-sec"))
	viper.BindPFlag("export_path", batchCmd.Flags().Lookup("export"))

	rootCmd.AddCommand(batchCmd)
}

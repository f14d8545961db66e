package cmd

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jagostokes/zipline-data-analytics-p1v1/internal/models"
	"github.com/jagostokes/zipline-data-analytics-p1v1/internal/simulator"
)

var fleetsizeCmd = &cobra.Command{
	Use:   "fleetsize",
	Short: "Find the smallest fleet meeting a P95 wait target",
	Long: `fleetsize binary searches fleet sizes between the floor and the ceiling.
Each candidate runs an independent offline simulation to the horizon; the
smallest size whose P95 wait stays strictly below the target wins. If even
the ceiling misses the target, the ceiling is reported.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		target := viper.GetFloat64("target_p95_sec")
		horizon := viper.GetFloat64("search_horizon_sec")
		if target < 0 {
			return fmt.Errorf("target-p95-sec must not be negative, got %v", target)
		}
		if horizon <= 0 {
			return fmt.Errorf("horizon-sec must be positive, got %v", horizon)
		}

		opts := simulator.FleetSearchOptions{
			Floor:   viper.GetInt("search_floor"),
			Ceiling: viper.GetInt("search_ceiling"),
		}

		// binary search probes at most ceil(log2(range)) candidates
		probes := 0
		for span := opts.Ceiling - opts.Floor + 1; span > 1; span = (span + 1) / 2 {
			probes++
		}
		bar := progressbar.NewOptions(probes,
			progressbar.OptionSetDescription("probing fleet sizes"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		opts.OnProbe = func(fleetSize int, p95 float64) {
			_ = bar.Add(1)
		}

		size := simulator.FindMinimumFleetSize(cfg, target, horizon, opts)
		_ = bar.Finish()

		fmt.Printf("minimum fleet size: %d\n", size)
		return nil
	},
}

func init() {
	fleetsizeCmd.Flags().Float64("target-p95-sec", 120, "P95 wait target in simulated seconds")
	fleetsizeCmd.Flags().Float64("horizon-sec", 43200, "Probe horizon in simulated seconds")
	fleetsizeCmd.Flags().Int("floor", 1, "Smallest fleet size to consider")
	fleetsizeCmd.Flags().Int("ceiling", models.MaxFleetSize, "Largest fleet size to consider")

	viper.BindPFlag("target_p95_sec", fleetsizeCmd.Flags().Lookup("target-p95-sec"))
	viper.BindPFlag("search_horizon_sec", fleetsizeCmd.Flags().Lookup("horizon-sec"))
	viper.BindPFlag("search_floor", fleetsizeCmd.Flags().Lookup("floor"))
	viper.BindPFlag("search_ceiling", fleetsizeCmd.Flags().Lookup("ceiling"))

	rootCmd.AddCommand(fleetsizeCmd)
}

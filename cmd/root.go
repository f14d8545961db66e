package cmd

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jagostokes/zipline-data-analytics-p1v1/internal/logging"
	"github.com/jagostokes/zipline-data-analytics-p1v1/internal/metrics"
	"github.com/jagostokes/zipline-data-analytics-p1v1/internal/models"
	"github.com/jagostokes/zipline-data-analytics-p1v1/internal/simulator"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "dronefleet",
	Short: "Simulates a single-depot delivery drone fleet with streaming metrics",
	Long: `dronefleet runs a discrete-event simulation of a homogeneous drone fleet
serving stochastically arriving orders from a single depot. Order lifecycle and
metrics events stream to the configured sink (console, JSON, CSV, Parquet,
Kafka or Postgres); live gauges can be exposed on a Prometheus endpoint.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		log := logging.New("cli")
		sim := simulator.New(cfg)

		if cfg.MetricsEnabled {
			pub, err := metrics.NewPromPublisher()
			if err != nil {
				return fmt.Errorf("error registering metrics: %w", err)
			}
			sim.SetMetricsPublisher(pub)

			addr := fmt.Sprintf(":%d", cfg.MetricsPort)
			go func() {
				http.Handle("/metrics", promhttp.Handler())
				if err := http.ListenAndServe(addr, nil); err != nil {
					log.Error().Err(err).Str("addr", addr).Msg("metrics endpoint failed")
				}
			}()
			log.Info().Str("addr", addr).Msg("serving Prometheus metrics")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return sim.Run(ctx)
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is examples/config.json)")

	pf := rootCmd.PersistentFlags()
	pf.Int64("seed", 0, "Random seed (0 seeds from the wall clock)")
	pf.Int("fleet-size", models.DefaultFleetSize, "Number of drones in the fleet")
	pf.Float64("cruise-speed-kmh", models.DefaultCruiseSpeedKmh, "Cruise speed in km/h")
	pf.Float64("orders-per-hour", models.DefaultOrdersPerHour, "Target order arrival rate")
	pf.Float64("avg-radius-km", models.DefaultAvgRadiusKm, "Average delivery radius in km")
	pf.Float64("max-range-km", models.DefaultMaxRangeKm, "Maximum one-way range in km")

	rootCmd.Flags().Float64("time-scale", models.DefaultTimeScale, "Simulated seconds per wall second")
	rootCmd.Flags().Bool("kafka-enabled", false, "Emit events to Kafka")
	rootCmd.Flags().String("kafka-broker-list", "localhost:9092", "Kafka broker list")
	rootCmd.Flags().String("output-file-path", "", "Base path for file output")
	rootCmd.Flags().String("output-format", "", "File output format: json, csv or parquet")
	rootCmd.Flags().Bool("metrics-enabled", false, "Serve live gauges for Prometheus")
	rootCmd.Flags().Int("metrics-port", 9100, "Prometheus endpoint port")

	viper.BindPFlag("seed", pf.Lookup("seed"))
	viper.BindPFlag("fleet_size", pf.Lookup("fleet-size"))
	viper.BindPFlag("cruise_speed_kmh", pf.Lookup("cruise-speed-kmh"))
	viper.BindPFlag("orders_per_hour", pf.Lookup("orders-per-hour"))
	viper.BindPFlag("avg_radius_km", pf.Lookup("avg-radius-km"))
	viper.BindPFlag("max_range_km", pf.Lookup("max-range-km"))
	viper.BindPFlag("time_scale", rootCmd.Flags().Lookup("time-scale"))
	viper.BindPFlag("kafka_enabled", rootCmd.Flags().Lookup("kafka-enabled"))
	viper.BindPFlag("kafka_broker_list", rootCmd.Flags().Lookup("kafka-broker-list"))
	viper.BindPFlag("output_file_path", rootCmd.Flags().Lookup("output-file-path"))
	viper.BindPFlag("output_format", rootCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("metrics_enabled", rootCmd.Flags().Lookup("metrics-enabled"))
	viper.BindPFlag("metrics_port", rootCmd.Flags().Lookup("metrics-port"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	viper.AutomaticEnv()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

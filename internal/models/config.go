package models

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type CloudStorageConfig struct {
	Provider   string `mapstructure:"provider"`
	BucketName string `mapstructure:"bucket_name"`
	Region     string `mapstructure:"region"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type Config struct {
	Seed      int64     `mapstructure:"seed"`
	StartDate time.Time `mapstructure:"start_date"`

	DepotLat float64 `mapstructure:"depot_latitude"`
	DepotLon float64 `mapstructure:"depot_longitude"`

	FleetSize         int     `mapstructure:"fleet_size"`
	CruiseSpeedKmh    float64 `mapstructure:"cruise_speed_kmh"`
	LoadTimeSec       float64 `mapstructure:"load_time_sec"`
	ServiceTimeSec    float64 `mapstructure:"service_time_sec"`
	TurnaroundTimeSec float64 `mapstructure:"turnaround_time_sec"`

	AvgRadiusKm   float64 `mapstructure:"avg_radius_km"`
	MaxRangeKm    float64 `mapstructure:"max_range_km"`
	OrdersPerHour float64 `mapstructure:"orders_per_hour"`

	TimeScale        float64       `mapstructure:"time_scale"`
	TickInterval     time.Duration `mapstructure:"tick_interval"`
	SnapshotInterval time.Duration `mapstructure:"snapshot_interval"`

	StatsWindow         int  `mapstructure:"stats_window"`
	HistoryLimit        int  `mapstructure:"history_limit"`
	SyntheticRecipients bool `mapstructure:"synthetic_recipients"`

	KafkaEnabled    bool   `mapstructure:"kafka_enabled"`
	KafkaBrokerList string `mapstructure:"kafka_broker_list"`

	OutputPath        string             `mapstructure:"output_file_path"`
	OutputFolder      string             `mapstructure:"output_folder"`
	OutputFormat      string             `mapstructure:"output_format"`
	OutputDestination string             `mapstructure:"output_destination"`
	CloudStorage      CloudStorageConfig `mapstructure:"cloud_storage"`

	PostgresEnabled bool           `mapstructure:"postgres_enabled"`
	Database        DatabaseConfig `mapstructure:"database"`

	MetricsEnabled bool `mapstructure:"metrics_enabled"`
	MetricsPort    int  `mapstructure:"metrics_port"`
}

// LoadConfig initializes and reads the configuration using Viper
func LoadConfig(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Default config location
		viper.AddConfigPath("examples")
		viper.SetConfigName("config")
		viper.SetConfigType("json")
	}

	viper.AutomaticEnv() // Read in environment variables that match

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.StringToTimeDurationHookFunc(),
		)
	})
	if err := viper.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("start_date", time.Now().Format(time.RFC3339))
	viper.SetDefault("fleet_size", DefaultFleetSize)
	viper.SetDefault("cruise_speed_kmh", DefaultCruiseSpeedKmh)
	viper.SetDefault("load_time_sec", DefaultLoadTimeSec)
	viper.SetDefault("service_time_sec", DefaultServiceTimeSec)
	viper.SetDefault("turnaround_time_sec", DefaultTurnaroundSec)
	viper.SetDefault("avg_radius_km", DefaultAvgRadiusKm)
	viper.SetDefault("max_range_km", DefaultMaxRangeKm)
	viper.SetDefault("orders_per_hour", DefaultOrdersPerHour)
	viper.SetDefault("time_scale", DefaultTimeScale)
	viper.SetDefault("tick_interval", "250ms")
	viper.SetDefault("snapshot_interval", "1s")
	viper.SetDefault("stats_window", DefaultStatsWindowSize)
	viper.SetDefault("history_limit", DefaultHistoryLimit)
	viper.SetDefault("synthetic_recipients", true)
	viper.SetDefault("output_destination", "local")
	viper.SetDefault("metrics_port", 9100)
}

// Validate rejects parameter combinations the engine cannot run with.
func (cfg *Config) Validate() error {
	if cfg.FleetSize < 1 || cfg.FleetSize > MaxFleetSize {
		return fmt.Errorf("fleet_size must be between 1 and %d, got %d", MaxFleetSize, cfg.FleetSize)
	}
	if cfg.CruiseSpeedKmh <= 0 {
		return fmt.Errorf("cruise_speed_kmh must be positive, got %v", cfg.CruiseSpeedKmh)
	}
	if cfg.LoadTimeSec <= 0 || cfg.ServiceTimeSec <= 0 || cfg.TurnaroundTimeSec <= 0 {
		return fmt.Errorf("load, service and turnaround times must be positive")
	}
	if cfg.AvgRadiusKm <= 0 {
		return fmt.Errorf("avg_radius_km must be positive, got %v", cfg.AvgRadiusKm)
	}
	if cfg.MaxRangeKm <= 0 {
		return fmt.Errorf("max_range_km must be positive, got %v", cfg.MaxRangeKm)
	}
	if cfg.OrdersPerHour < 0 {
		return fmt.Errorf("orders_per_hour must not be negative, got %v", cfg.OrdersPerHour)
	}
	if cfg.TimeScale <= 0 {
		return fmt.Errorf("time_scale must be positive, got %v", cfg.TimeScale)
	}
	if cfg.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %v", cfg.TickInterval)
	}
	if cfg.SnapshotInterval <= 0 {
		return fmt.Errorf("snapshot_interval must be positive, got %v", cfg.SnapshotInterval)
	}
	if cfg.StatsWindow < 1 {
		return fmt.Errorf("stats_window must be at least 1, got %d", cfg.StatsWindow)
	}
	if cfg.HistoryLimit < 1 {
		return fmt.Errorf("history_limit must be at least 1, got %d", cfg.HistoryLimit)
	}
	return nil
}

// Clone returns a copy safe to mutate for probe runs.
func (cfg *Config) Clone() *Config {
	clone := *cfg
	return &clone
}

// Options carries a partial reconfiguration. Nil fields leave the current
// value in place. Fleet size changes take effect on the next reset.
type Options struct {
	FleetSize         *int
	CruiseSpeedKmh    *float64
	LoadTimeSec       *float64
	ServiceTimeSec    *float64
	TurnaroundTimeSec *float64
	AvgRadiusKm       *float64
	MaxRangeKm        *float64
	OrdersPerHour     *float64
	TimeScale         *float64
}

// Apply validates each provided option against the current configuration and
// applies the full set only if all of them pass.
func (cfg *Config) Apply(opts Options) error {
	next := *cfg
	if opts.FleetSize != nil {
		next.FleetSize = *opts.FleetSize
	}
	if opts.CruiseSpeedKmh != nil {
		next.CruiseSpeedKmh = *opts.CruiseSpeedKmh
	}
	if opts.LoadTimeSec != nil {
		next.LoadTimeSec = *opts.LoadTimeSec
	}
	if opts.ServiceTimeSec != nil {
		next.ServiceTimeSec = *opts.ServiceTimeSec
	}
	if opts.TurnaroundTimeSec != nil {
		next.TurnaroundTimeSec = *opts.TurnaroundTimeSec
	}
	if opts.AvgRadiusKm != nil {
		next.AvgRadiusKm = *opts.AvgRadiusKm
	}
	if opts.MaxRangeKm != nil {
		next.MaxRangeKm = *opts.MaxRangeKm
	}
	if opts.OrdersPerHour != nil {
		next.OrdersPerHour = *opts.OrdersPerHour
	}
	if opts.TimeScale != nil {
		next.TimeScale = *opts.TimeScale
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*cfg = next
	return nil
}

// ConnString renders the database settings as a pgx connection string.
func (db DatabaseConfig) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		db.User, db.Password, db.Host, db.Port, db.DBName, db.SSLMode)
}

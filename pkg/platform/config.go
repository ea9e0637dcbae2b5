package platform

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything tunable about a quotation run. Values come from
// the config file (rfq-engine.yaml), overridden by RFQ_* env vars.
type Config struct {
	LogLevel string `mapstructure:"log_level"`
	LogJSON  bool   `mapstructure:"log_json"`

	// Engine knobs
	NumericTolerance float64       `mapstructure:"numeric_tolerance"`
	TopK             int           `mapstructure:"top_k"`
	Workers          int           `mapstructure:"workers"`
	RetrieveTimeout  time.Duration `mapstructure:"retrieve_timeout"`

	// Synonyms maps a canonical spec name to its accepted alternates. It is
	// configuration data: new synonyms must not require a code change.
	Synonyms map[string][]string `mapstructure:"synonyms"`

	ClickHouse ClickHouseConfig `mapstructure:"clickhouse"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
}

// ClickHouseConfig holds pricing store connection settings.
type ClickHouseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// PostgresConfig holds catalog store connection settings.
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// DefaultSynonyms replicates the canonical spec-name synonym table shipped
// with the engine. Loadable config replaces it wholesale when present.
func DefaultSynonyms() map[string][]string {
	return map[string][]string{
		"conductor material": {"conductor_material", "conductor", "material"},
		"conductor size":     {"conductor_size", "size", "cross_section", "cross section"},
		"insulation":         {"insulation_type", "insulation", "insulating material"},
		"voltage":            {"voltage_grade", "voltage", "rated voltage", "voltage rating"},
		"cores":              {"number of cores", "cores", "core count", "no of cores"},
	}
}

// LoadConfig reads configuration from the given file (optional) and the
// environment, applying defaults for everything unset.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
	v.SetDefault("numeric_tolerance", 0.10)
	v.SetDefault("top_k", 3)
	v.SetDefault("workers", 4)
	v.SetDefault("retrieve_timeout", "10s")
	v.SetDefault("clickhouse.host", "localhost")
	v.SetDefault("clickhouse.port", 9000)
	v.SetDefault("clickhouse.database", "rfq")
	v.SetDefault("clickhouse.username", "default")
	v.SetDefault("clickhouse.password", "")
	v.SetDefault("postgres.dsn", "")

	v.SetEnvPrefix("RFQ")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if len(cfg.Synonyms) == 0 {
		cfg.Synonyms = DefaultSynonyms()
	}
	return cfg, nil
}

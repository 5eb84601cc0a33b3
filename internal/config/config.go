// Package config holds the typed hgnc-miner configuration and its
// defaults. Values are resolved by viper from flags, HGNC_MINER_*
// environment variables and the YAML config file, in that order.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/inodb/hgnc-miner/internal/datasource/clinvar"
	"github.com/inodb/hgnc-miner/internal/datasource/mygene"
	"github.com/inodb/hgnc-miner/internal/enrich"
	"github.com/inodb/hgnc-miner/internal/httputil"
	"github.com/inodb/hgnc-miner/internal/store"
	"github.com/inodb/hgnc-miner/internal/textextract"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "HGNC_MINER"

// Config is the resolved configuration.
type Config struct {
	Similarity Similarity `mapstructure:"similarity"`
	HTTP       HTTP       `mapstructure:"http"`
	MyGene     MyGene     `mapstructure:"mygene"`
	ClinVar    ClinVar    `mapstructure:"clinvar"`
	PDF        PDF        `mapstructure:"pdf"`
	Output     Output     `mapstructure:"output"`
	DB         DB         `mapstructure:"db"`
	Log        Log        `mapstructure:"log"`
}

type Similarity struct {
	Threshold int    `mapstructure:"threshold"`
	Metric    string `mapstructure:"metric"`
}

type HTTP struct {
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
	UserAgent  string        `mapstructure:"user_agent"`
}

type MyGene struct {
	URL     string `mapstructure:"url"`
	Species string `mapstructure:"species"`
}

type ClinVar struct {
	ESearchURL        string  `mapstructure:"esearch_url"`
	ESummaryURL       string  `mapstructure:"esummary_url"`
	RetMax            int     `mapstructure:"retmax"`
	APIKey            string  `mapstructure:"api_key"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
}

type PDF struct {
	Engine string `mapstructure:"engine"`
}

type Output struct {
	Dir  string `mapstructure:"dir"`
	XLSX bool   `mapstructure:"xlsx"`
}

type DB struct {
	Driver       string        `mapstructure:"driver"`
	DSN          string        `mapstructure:"dsn"`
	WaitAttempts int           `mapstructure:"wait_attempts"`
	WaitDelay    time.Duration `mapstructure:"wait_delay"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults registers the default of every key on v and enables
// environment overrides.
func SetDefaults(v *viper.Viper, version string) {
	v.SetDefault("similarity.threshold", enrich.DefaultThreshold)
	v.SetDefault("similarity.metric", enrich.MetricIndel)

	v.SetDefault("http.timeout", httputil.DefaultTimeout)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.user_agent", "hgnc-miner/"+version)

	v.SetDefault("mygene.url", mygene.DefaultURL)
	v.SetDefault("mygene.species", mygene.DefaultSpecies)

	v.SetDefault("clinvar.esearch_url", clinvar.DefaultESearchURL)
	v.SetDefault("clinvar.esummary_url", clinvar.DefaultESummaryURL)
	v.SetDefault("clinvar.retmax", clinvar.DefaultRetMax)
	v.SetDefault("clinvar.api_key", "")
	v.SetDefault("clinvar.requests_per_second", clinvar.DefaultRequestsPerSecond)

	v.SetDefault("pdf.engine", textextract.EngineNative)

	v.SetDefault("output.dir", "output")
	v.SetDefault("output.xlsx", false)

	v.SetDefault("db.driver", store.DriverDuckDB)
	v.SetDefault("db.dsn", "output/genes.duckdb")
	v.SetDefault("db.wait_attempts", 30)
	v.SetDefault("db.wait_delay", 2*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if c.Similarity.Threshold < 0 || c.Similarity.Threshold > 100 {
		return fmt.Errorf("similarity.threshold must be within 0-100, got %d", c.Similarity.Threshold)
	}
	if _, err := enrich.NewScorer(c.Similarity.Metric); err != nil {
		return fmt.Errorf("similarity.metric: %w", err)
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be positive, got %s", c.HTTP.Timeout)
	}
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must not be negative, got %d", c.HTTP.MaxRetries)
	}
	if c.ClinVar.RetMax <= 0 {
		return fmt.Errorf("clinvar.retmax must be positive, got %d", c.ClinVar.RetMax)
	}
	switch c.PDF.Engine {
	case textextract.EngineNative, textextract.EngineMuPDF:
	default:
		return fmt.Errorf("pdf.engine must be %s or %s, got %q", textextract.EngineNative, textextract.EngineMuPDF, c.PDF.Engine)
	}
	switch c.DB.Driver {
	case store.DriverDuckDB, store.DriverSQLite:
	default:
		return fmt.Errorf("db.driver must be %s or %s, got %q", store.DriverDuckDB, store.DriverSQLite, c.DB.Driver)
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir must not be empty")
	}
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v, "test")
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.Similarity.Threshold)
	assert.Equal(t, "indel", cfg.Similarity.Metric)
	assert.Equal(t, 10*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 3, cfg.HTTP.MaxRetries)
	assert.Equal(t, "hgnc-miner/test", cfg.HTTP.UserAgent)
	assert.Equal(t, "https://mygene.info/v3/query", cfg.MyGene.URL)
	assert.Equal(t, "human", cfg.MyGene.Species)
	assert.Equal(t, 100, cfg.ClinVar.RetMax)
	assert.Equal(t, 3.0, cfg.ClinVar.RequestsPerSecond)
	assert.Equal(t, "native", cfg.PDF.Engine)
	assert.Equal(t, "output", cfg.Output.Dir)
	assert.False(t, cfg.Output.XLSX)
	assert.Equal(t, "duckdb", cfg.DB.Driver)
	assert.Equal(t, "output/genes.duckdb", cfg.DB.DSN)
	assert.Equal(t, 30, cfg.DB.WaitAttempts)
	assert.Equal(t, 2*time.Second, cfg.DB.WaitDelay)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hgnc-miner.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
similarity:
  threshold: 75
  metric: levenshtein
http:
  timeout: 30s
db:
  driver: sqlite3
  dsn: /tmp/genes.db
  wait_delay: 500ms
`), 0644))

	v := newViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 75, cfg.Similarity.Threshold)
	assert.Equal(t, "levenshtein", cfg.Similarity.Metric)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "sqlite3", cfg.DB.Driver)
	assert.Equal(t, "/tmp/genes.db", cfg.DB.DSN)
	assert.Equal(t, 500*time.Millisecond, cfg.DB.WaitDelay)
	assert.Equal(t, 30, cfg.DB.WaitAttempts)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("HGNC_MINER_DB_DSN", "env.duckdb")
	t.Setenv("HGNC_MINER_CLINVAR_API_KEY", "secret")
	t.Setenv("HGNC_MINER_SIMILARITY_THRESHOLD", "80")

	cfg, err := Load(newViper())
	require.NoError(t, err)
	assert.Equal(t, "env.duckdb", cfg.DB.DSN)
	assert.Equal(t, "secret", cfg.ClinVar.APIKey)
	assert.Equal(t, 80, cfg.Similarity.Threshold)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value any
	}{
		{"similarity.threshold", 101},
		{"similarity.metric", "jaro"},
		{"http.timeout", "0s"},
		{"http.max_retries", -1},
		{"clinvar.retmax", 0},
		{"pdf.engine", "poppler"},
		{"db.driver", "postgres"},
		{"output.dir", ""},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			v := newViper()
			v.Set(tt.key, tt.value)
			_, err := Load(v)
			assert.Error(t, err)
		})
	}
}

package main

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args in a clean environment.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	cfgFile = ""
	t.Setenv("HOME", t.TempDir())
	t.Cleanup(viper.Reset)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "hgnc-miner version dev (none) built unknown\n", out)
}

func TestRun_MissingPDF(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	_, err := execute(t, "run", "--output", dir, filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr), "output directory must not be created")
}

func TestRun_InvalidEngine(t *testing.T) {
	_, err := execute(t, "run", "--pdf-engine", "poppler", "paper.pdf")
	assert.ErrorContains(t, err, "pdf.engine")
}

func TestIDs_MissingPDF(t *testing.T) {
	_, err := execute(t, "ids", "missing.pdf")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoad_MissingCSV(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "load",
		"--output", dir,
		"--db-driver", "sqlite3",
		"--db-dsn", filepath.Join(dir, "genes.sqlite"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestConfigSetGet(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "hgnc-miner.yaml")

	out, err := execute(t, "--config", cfg, "config", "get", "similarity.threshold")
	require.Error(t, err, "reading a missing explicit config file fails")
	assert.Empty(t, out)

	require.NoError(t, os.WriteFile(cfg, []byte("log:\n  level: warn\n"), 0644))

	out, err = execute(t, "--config", cfg, "config", "set", "similarity.threshold", "70")
	require.NoError(t, err)
	assert.Contains(t, out, "Set similarity.threshold = 70")

	out, err = execute(t, "--config", cfg, "config", "get", "similarity.threshold")
	require.NoError(t, err)
	assert.Equal(t, "70\n", out)

	out, err = execute(t, "--config", cfg, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "# Config file: "+cfg)
	assert.Contains(t, out, "threshold: 70")
}

func TestConfigSet_Invalid(t *testing.T) {
	_, err := execute(t, "config", "set", "db.driver", "postgres")
	assert.ErrorContains(t, err, "db.driver")
}

func TestConfigGet_Unknown(t *testing.T) {
	_, err := execute(t, "config", "get", "no.such.key")
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		l, err := newLogger("debug", format)
		require.NoError(t, err, format)
		assert.NotNil(t, l)
	}

	_, err := newLogger("loud", "console")
	assert.Error(t, err)

	_, err = newLogger("info", "xml")
	assert.Error(t, err)
}

func TestFindConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	assert.Equal(t, "", findConfigFile())

	path := filepath.Join(home, ".hgnc-miner.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0644))
	assert.Equal(t, path, findConfigFile())
}

func TestHelpListsCommands(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)
	for _, name := range []string{"run", "ids", "load", "config"} {
		assert.True(t, strings.Contains(out, "  "+name+" "), name)
	}
}

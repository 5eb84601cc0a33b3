package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/hgnc-miner/internal/config"
	"github.com/inodb/hgnc-miner/internal/store"
)

func newLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load the CSV files into the database",
		Long: `Load hgnc_gene.csv, gene_aliases.csv and gene_diseases.csv from the output
directory into the hgnc_gene, gene_aliases and gene_diseases tables. Each
table is replaced; a table that fails to load is reported and skipped.`,
		Example: `  hgnc-miner load
  hgnc-miner load --db-driver sqlite3 --db-dsn output/genes.sqlite`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd, map[string]string{
				"output.dir": "output",
				"db.driver":  "db-driver",
				"db.dsn":     "db-dsn",
			})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return loadDatabase(cmd.Context(), cfg, cfg.Output.Dir)
		},
	}

	f := cmd.Flags()
	f.StringP("output", "o", "output", "Directory holding the CSV files")
	f.String("db-driver", store.DriverDuckDB, "Database driver: duckdb or sqlite3")
	f.String("db-dsn", "output/genes.duckdb", "Database DSN")

	return cmd
}

// loadDatabase waits for the database, loads the CSV files and records
// the run in the ledger.
func loadDatabase(ctx context.Context, cfg *config.Config, source string) error {
	s, err := store.Open(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		return err
	}
	defer s.Close()
	s.SetLogger(logger)

	if err := s.WaitReady(ctx, cfg.DB.WaitAttempts, cfg.DB.WaitDelay); err != nil {
		return err
	}
	if err := s.EnsureSchema(ctx); err != nil {
		return err
	}

	res, err := s.LoadCSV(ctx, cfg.Output.Dir)
	if err != nil {
		return err
	}

	run := store.NewRun(source, res)
	if err := s.RecordRun(ctx, run); err != nil {
		return fmt.Errorf("ledger: %w", err)
	}

	logger.Info("database load complete",
		zap.String("run_id", run.ID),
		zap.String("driver", cfg.DB.Driver),
		zap.Int("genes", run.Genes),
		zap.Int("aliases", run.Aliases),
		zap.Int("diseases", run.Diseases),
		zap.Strings("failed", res.Failed()))
	return nil
}

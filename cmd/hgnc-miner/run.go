package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/hgnc-miner/internal/config"
	"github.com/inodb/hgnc-miner/internal/datasource/clinvar"
	"github.com/inodb/hgnc-miner/internal/datasource/mygene"
	"github.com/inodb/hgnc-miner/internal/enrich"
	"github.com/inodb/hgnc-miner/internal/httputil"
	"github.com/inodb/hgnc-miner/internal/output"
	"github.com/inodb/hgnc-miner/internal/pipeline"
	"github.com/inodb/hgnc-miner/internal/textextract"
)

func newRunCmd() *cobra.Command {
	var load bool

	cmd := &cobra.Command{
		Use:   "run [flags] <pdf-or-url>",
		Short: "Mine a PDF and write the gene, alias and disease CSV files",
		Example: `  hgnc-miner run paper.pdf
  hgnc-miner run --xlsx --output results paper.pdf
  hgnc-miner run --load https://example.org/paper.pdf`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd, map[string]string{
				"output.dir":           "output",
				"output.xlsx":          "xlsx",
				"pdf.engine":           "pdf-engine",
				"similarity.threshold": "threshold",
			})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runMine(cmd.Context(), cfg, args[0], load)
		},
	}

	f := cmd.Flags()
	f.StringP("output", "o", "output", "Directory for the CSV files")
	f.Bool("xlsx", false, "Also write the relations to "+output.WorkbookFile)
	f.String("pdf-engine", textextract.EngineNative, "PDF text engine: native or mupdf")
	f.Int("threshold", enrich.DefaultThreshold, "Similarity a line must exceed to confirm a disease")
	f.BoolVar(&load, "load", false, "Load the CSV files into the database afterwards")

	return cmd
}

func runMine(ctx context.Context, cfg *config.Config, source string, load bool) error {
	path := source
	if isURL(source) {
		tmp, err := fetchPDF(ctx, source, cfg.HTTP.UserAgent, os.Stderr)
		if err != nil {
			return err
		}
		defer os.Remove(tmp)
		path = tmp
	}

	runner, err := newRunner(cfg)
	if err != nil {
		return err
	}

	summary, err := runner.Run(ctx, path, func() ([]pipeline.RecordWriter, error) {
		return openWriters(cfg.Output)
	})
	if err != nil {
		return err
	}

	logger.Info("PDF processing complete",
		zap.String("source", source),
		zap.Int("identifiers", summary.Identifiers),
		zap.Int("genes", len(summary.Records)),
		zap.Int("aliases", summary.Aliases),
		zap.Int("diseases", summary.Diseases),
		zap.String("output", cfg.Output.Dir))

	if !load {
		return nil
	}
	return loadDatabase(ctx, cfg, source)
}

// newRunner wires the extractor, remote clients and filter from cfg.
func newRunner(cfg *config.Config) (*pipeline.Runner, error) {
	extractor, err := textextract.New(cfg.PDF.Engine, logger)
	if err != nil {
		return nil, err
	}

	runner := pipeline.NewRunner(extractor, newResolver(cfg))
	runner.SetLogger(logger)
	return runner, nil
}

func newResolver(cfg *config.Config) *enrich.Resolver {
	hc := httputil.NewClient(httputil.Options{
		Timeout:    cfg.HTTP.Timeout,
		UserAgent:  cfg.HTTP.UserAgent,
		MaxRetries: cfg.HTTP.MaxRetries,
	})
	hc.SetLogger(logger)

	genes := mygene.NewClient(hc, cfg.MyGene.URL, cfg.MyGene.Species)
	diseases := clinvar.NewClient(hc, clinvar.Options{
		ESearchURL:        cfg.ClinVar.ESearchURL,
		ESummaryURL:       cfg.ClinVar.ESummaryURL,
		RetMax:            cfg.ClinVar.RetMax,
		APIKey:            cfg.ClinVar.APIKey,
		RequestsPerSecond: cfg.ClinVar.RequestsPerSecond,
	})

	// The metric was checked by config.Validate.
	scorer, _ := enrich.NewScorer(cfg.Similarity.Metric)
	filter := enrich.NewFilter(scorer, cfg.Similarity.Threshold)

	r := enrich.NewResolver(genes, diseases, filter)
	r.SetLogger(logger)
	return r
}

// openWriters truncates the CSV files and, if enabled, the workbook.
func openWriters(cfg config.Output) ([]pipeline.RecordWriter, error) {
	csvw, err := output.CreateCSV(cfg.Dir)
	if err != nil {
		return nil, err
	}
	writers := []pipeline.RecordWriter{csvw}

	if cfg.XLSX {
		xw, err := output.CreateXLSX(cfg.Dir)
		if err != nil {
			csvw.Close()
			return nil, fmt.Errorf("workbook: %w", err)
		}
		writers = append(writers, xw)
	}
	return writers, nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inodb/hgnc-miner/internal/pipeline"
	"github.com/inodb/hgnc-miner/internal/textextract"
)

func newIDsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ids [flags] <pdf>",
		Short: "Print the HGNC identifiers found in a PDF",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd, map[string]string{"pdf.engine": "pdf-engine"})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			extractor, err := textextract.New(cfg.PDF.Engine, logger)
			if err != nil {
				return err
			}

			runner := pipeline.NewRunner(extractor, nil)
			runner.SetLogger(logger)
			_, ids, err := runner.Identify(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, id := range ids.Sorted() {
				fmt.Fprintln(out, id)
			}
			return nil
		},
	}
	cmd.Flags().String("pdf-engine", textextract.EngineNative, "PDF text engine: native or mupdf")
	return cmd
}

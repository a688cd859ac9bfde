package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rdtrends/rdtrends/internal/dataset"
	"github.com/rdtrends/rdtrends/internal/export"
	"github.com/rdtrends/rdtrends/internal/report"
)

func newExportCommand(opts *globalOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the derived aggregates to an XLSX workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			if out == "" {
				out = filepath.Join(cfg.PlotsDir, export.DefaultFile)
			}

			ds, err := dataset.Load(cfg.DataPath)
			if err != nil {
				return fmt.Errorf("loading dataset: %w", err)
			}
			summary, err := report.Summarize(ds.Rows, cfg.TopN, nil)
			if err != nil {
				return err
			}
			if err := export.WriteWorkbook(out, summary); err != nil {
				return fmt.Errorf("exporting summary: %w", err)
			}

			logger.Info("summary exported", append(summary.LogAttrs(), "path", out)...)
			fmt.Fprintf(cmd.OutOrStdout(), "Summary written to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "workbook path (default <plots-dir>/"+export.DefaultFile+")")

	return cmd
}

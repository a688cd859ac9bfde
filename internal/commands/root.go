package commands

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rdtrends/rdtrends/internal/buildinfo"
	"github.com/rdtrends/rdtrends/internal/config"
	"github.com/rdtrends/rdtrends/internal/logging"
	"github.com/rdtrends/rdtrends/internal/report"
	"github.com/rdtrends/rdtrends/internal/runlog"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	dataPath   string
	plotsDir   string
	dpi        int
	logLevel   string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
// Running it without a subcommand renders every chart.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "rdtrends",
		Short:   "Chart R&D expenditure trends by sector",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			_, err = newPipeline(cfg, cmd.OutOrStdout(), logger).Run(cmd.Context())
			if err != nil {
				logging.LogError(logger, "analysis failed", err)
			}
			return err
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.FileName, "config file (optional)")
	flags.StringVar(&opts.dataPath, "data", "", "input table (.csv or .xlsx)")
	flags.StringVar(&opts.plotsDir, "plots-dir", "", "output directory for charts")
	flags.IntVar(&opts.dpi, "dpi", 0, "chart resolution in dots per inch")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newExportCommand(opts))
	rootCmd.AddCommand(newWatchCommand(opts))

	return rootCmd
}

// resolve merges defaults, the config file, the environment and flags, in
// that order, and builds the logger.
func (o *globalOptions) resolve(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Resolve(o.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.DataPath = o.dataPath
	}
	if flags.Changed("plots-dir") {
		cfg.PlotsDir = o.plotsDir
	}
	if flags.Changed("dpi") {
		cfg.DPI = o.dpi
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("creating logger: %w", err)
	}
	return cfg, logger, nil
}

func newPipeline(cfg *config.Config, out io.Writer, logger *slog.Logger) *report.Pipeline {
	return report.New(report.Options{
		DataPath: cfg.DataPath,
		PlotsDir: cfg.PlotsDir,
		DPI:      cfg.DPI,
		TopN:     cfg.TopN,
		RunLog:   filepath.Join(cfg.PlotsDir, runlog.FileName),
	}, out, logger)
}

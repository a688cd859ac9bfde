package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rdtrends/rdtrends/internal/config"
	"github.com/rdtrends/rdtrends/internal/export"
	"github.com/rdtrends/rdtrends/internal/gitops"
	"github.com/rdtrends/rdtrends/internal/runlog"
)

func newInitCommand() *cobra.Command {
	var force, withGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create the data and plots directories and a default config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			if err := runInit(cmd.OutOrStdout(), absDir, force); err != nil {
				return err
			}
			if withGit {
				return initGit(cmd.Context(), cmd.OutOrStdout(), absDir)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	cmd.Flags().BoolVar(&withGit, "git", false, "initialize a git repository and commit the scaffold")

	return cmd
}

func runInit(out io.Writer, dir string, force bool) error {
	cfg := config.Default()

	// Create directory structure.
	for _, d := range []string{filepath.Dir(cfg.DataPath), cfg.PlotsDir} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	// Write rdtrends.yaml.
	path := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Keep the empty plots directory in version control.
	if err := os.WriteFile(filepath.Join(dir, cfg.PlotsDir, ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	fmt.Fprintf(out, "Initialized rdtrends project at %s\n", dir)
	fmt.Fprintf(out, "Place the expenditure table at %s\n", filepath.Join(dir, cfg.DataPath))
	return nil
}

// initGit versions the project, ignoring everything rdtrends generates.
func initGit(ctx context.Context, out io.Writer, dir string) error {
	if !gitops.Available() {
		return errors.New("git not found on PATH")
	}
	if err := gitops.Init(ctx, dir); err != nil {
		return err
	}

	plots := config.Default().PlotsDir
	if _, err := gitops.EnsureIgnored(dir,
		plots+"/*.png",
		plots+"/"+export.DefaultFile,
		plots+"/"+runlog.FileName,
	); err != nil {
		return err
	}

	hash, err := gitops.CommitAll(ctx, dir, "init: rdtrends project")
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Committed scaffold as %s\n", hash)
	return nil
}

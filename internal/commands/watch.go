package commands

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/rdtrends/rdtrends/internal/logging"
)

const defaultDebounce = 300 * time.Millisecond

func newWatchCommand(opts *globalOptions) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-render the charts whenever the input table changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			ctx := logging.WithLogger(cmd.Context(), logger)
			pipeline := newPipeline(cfg, cmd.OutOrStdout(), logger)

			rerun := func(ctx context.Context) {
				if _, err := pipeline.Run(ctx); err != nil {
					logging.LogError(logger, "analysis failed", err, slog.String("data", cfg.DataPath))
				}
			}
			rerun(ctx)

			fmt.Fprintf(cmd.OutOrStdout(), "\nWatching %s for changes (Ctrl+C to stop)...\n", cfg.DataPath)
			return watchFile(ctx, cfg.DataPath, debounce, rerun)
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", defaultDebounce, "quiet period before re-running after a change")

	return cmd
}

// watchFile calls onChange after path is written, created or renamed into
// place, once per burst of events separated by less than debounce. It
// returns nil when ctx is done.
func watchFile(ctx context.Context, path string, debounce time.Duration, onChange func(context.Context)) error {
	logger := logging.FromContext(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer logging.CloseWithLogging(watcher, logger, "closing_watcher")

	// Watch the directory: editors often replace the file instead of writing it.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	target := filepath.Clean(path)

	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			logger.Debug("input changed", slog.String("path", event.Name), slog.String("op", event.Op.String()))
			timer.Reset(debounce)
		case <-timer.C:
			onChange(ctx)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watching %s: %w", path, err)
		}
	}
}

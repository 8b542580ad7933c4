package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	apperrors "chartline-trader/internal/errors"
	"chartline-trader/internal/logging"
	"chartline-trader/internal/notify"
	"chartline-trader/pkg/utils"
)

// settleDelay is how long a file must stay quiet before it is processed.
// Screenshot tools usually write in several chunks.
const settleDelay = 500 * time.Millisecond

// Watcher analyzes snapshots as they appear in a directory.
type Watcher struct {
	app    *App
	dir    string
	save   bool
	settle time.Duration
	retry  utils.RetryConfig

	// OnReport is called after each processed snapshot.
	OnReport func(*Report)
	// OnError is called when a snapshot fails.
	OnError func(path string, err error)
}

// NewWatcher creates a watcher for dir.
func NewWatcher(app *App, dir string, save bool) *Watcher {
	return &Watcher{app: app, dir: dir, save: save, settle: settleDelay, retry: snapshotRetry()}
}

// Run blocks until ctx is cancelled or the underlying watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return err
	}
	logger := w.app.logger(ctx).With().Str("dir", w.dir).Logger()
	logger.Info().Msg("Watching for snapshots")
	ctx = logging.WithLogger(ctx, logger)

	ticker := time.NewTicker(w.settle / 2)
	defer ticker.Stop()

	// last event time per path; a path is processed once it has settled
	pending := make(map[string]time.Time)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 || !IsSnapshot(ev.Name) {
				continue
			}
			pending[ev.Name] = time.Now()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("Watcher error")

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < w.settle {
					continue
				}
				delete(pending, path)
				w.process(ctx, path)
			}
		}
	}
}

// snapshotRetry re-reads snapshots that fail to decode; the file may still
// be growing after the settle delay.
func snapshotRetry() utils.RetryConfig {
	cfg := utils.DefaultRetryConfig()
	cfg.Retryable = func(err error) bool {
		var de *apperrors.DataError
		return errors.As(err, &de) && (de.DataType == "image" || de.DataType == "csv")
	}
	return cfg
}

func (w *Watcher) process(ctx context.Context, path string) {
	report, err := utils.RetryWithResult(ctx, w.retry, func() (*Report, error) {
		return w.app.Process(ctx, path, w.save)
	})
	if err != nil {
		logger := w.app.logger(ctx)
		logger.Error().Err(err).Str("source", path).Msg("Snapshot failed")
		if w.OnError != nil {
			w.OnError(path, err)
		}
		return
	}
	if w.OnReport != nil {
		w.OnReport(report)
	}
}

func newWatchCmd(app *App) *cobra.Command {
	var (
		save bool
		bell bool
	)

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Analyze new snapshots as they land in a directory",
		Example: `  chartline watch ~/Pictures/charts
  chartline watch ./inbox --save --json
  chartline watch ./inbox --bell`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// Notifications go to stderr so --json output stays parseable.
			alerts := notify.NewTerminalNotifier(100, cmd.ErrOrStderr())
			alerts.SetBellEnabled(bell)
			alerts.AddHandler(func(n notify.Notification) {
				fmt.Fprintln(cmd.ErrOrStderr(), notify.Format(n, !output.IsJSON() && isTerminal()))
			})
			alerts.Start(ctx)

			w := NewWatcher(app, args[0], save || app.Config.Store.Enabled)
			w.OnReport = func(r *Report) {
				for _, c := range r.Pending {
					alerts.NotifyContract(r.Run.Source, c.View())
				}
				if output.IsJSON() {
					_ = app.writeJSON(output, "summary", summaryOf(r))
					return
				}
				renderReport(output, r, true)
				output.Println()
			}
			w.OnError = func(path string, err error) {
				alerts.NotifyError(path, err)
			}

			if !output.IsJSON() {
				output.Info("Watching %s (Ctrl+C to stop)", args[0])
			}
			return w.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "persist every run to the store")
	cmd.Flags().BoolVar(&bell, "bell", false, "ring the terminal bell for new pending contracts")

	return cmd
}

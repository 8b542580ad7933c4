package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	"chartline-trader/internal/extract"
	"chartline-trader/internal/logging"
)

// BatchSummary is the JSON shape of one processed snapshot.
type BatchSummary struct {
	Source    string `json:"source"`
	RunID     string `json:"run_id"`
	Candles   int    `json:"candles"`
	Contracts int    `json:"contracts"`
	Pending   int    `json:"pending"`
}

// ProcessAll runs every path through the pipeline on a bounded worker pool.
// Each path gets its own Pipeline.Run, so no state is shared between
// snapshots. Reports come back ordered by source; failures are joined into
// the returned error without stopping the other snapshots.
func (a *App) ProcessAll(ctx context.Context, paths []string, save bool) ([]*Report, error) {
	workers := a.Config.Batch.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	ctx = logging.WithLogger(ctx, a.logger(ctx).With().Int("workers", workers).Logger())

	p := pool.NewWithResults[*Report]().
		WithContext(ctx).
		WithMaxGoroutines(workers)
	for _, path := range paths {
		path := path
		p.Go(func(ctx context.Context) (*Report, error) {
			report, err := a.Process(ctx, path, save)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			return report, nil
		})
	}

	reports, err := p.Wait()
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Run.Source < reports[j].Run.Source
	})
	return reports, err
}

// CollectSnapshots expands args into supported snapshot files. Directories
// contribute their direct children.
func CollectSnapshots(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			path := filepath.Join(arg, e.Name())
			if IsSnapshot(path) {
				out = append(out, path)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// IsSnapshot reports whether path has a supported snapshot extension.
func IsSnapshot(path string) bool {
	return extract.IsImageFile(path) || strings.EqualFold(filepath.Ext(path), ".csv")
}

func newBatchCmd(app *App) *cobra.Command {
	var (
		save    bool
		workers int
	)

	cmd := &cobra.Command{
		Use:   "batch <snapshot|dir>...",
		Short: "Analyze many snapshots concurrently",
		Example: `  chartline batch ./snapshots
  chartline batch a.png b.png --workers 4 --save`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			paths, err := CollectSnapshots(args)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				output.Warning("No snapshots found")
				return nil
			}
			if workers > 0 {
				app.Config.Batch.Workers = workers
			}

			reports, runErr := app.ProcessAll(cmd.Context(), paths, save || app.Config.Store.Enabled)

			if output.IsJSON() {
				summaries := make([]BatchSummary, 0, len(reports))
				for _, r := range reports {
					summaries = append(summaries, summaryOf(r))
				}
				if err := output.JSON(summaries); err != nil {
					return err
				}
				return runErr
			}

			table := NewTable(output, "SOURCE", "RUN", "CANDLES", "CONTRACTS", "PENDING", "TIME")
			for _, r := range reports {
				table.AddRow(
					TruncateString(r.Run.Source, 48),
					ShortID(r.Run.ID),
					fmt.Sprintf("%d", r.Run.CandleCount),
					fmt.Sprintf("%d", r.Run.ContractCount),
					fmt.Sprintf("%d", r.Run.PendingCount),
					FormatDuration(r.Duration),
				)
			}
			table.Render()
			output.Println()
			output.Info("%d of %d snapshots processed", len(reports), len(paths))
			if runErr != nil {
				output.Error("%v", runErr)
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "persist every run to the store")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent snapshots (default: config or one per CPU)")

	return cmd
}

func summaryOf(r *Report) BatchSummary {
	return BatchSummary{
		Source:    r.Run.Source,
		RunID:     r.Run.ID,
		Candles:   r.Run.CandleCount,
		Contracts: r.Run.ContractCount,
		Pending:   r.Run.PendingCount,
	}
}

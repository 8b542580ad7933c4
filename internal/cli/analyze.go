package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"chartline-trader/internal/analysis"
	"chartline-trader/internal/logging"
	"chartline-trader/internal/models"
)

// Report is the outcome of processing one snapshot.
type Report struct {
	Run      *models.Run
	Result   analysis.Result
	Pending  []models.Contract
	Duration time.Duration
}

// Process extracts a chart from path, runs the pipeline and optionally
// persists the run. Log lines go to the logger carried by ctx, falling back
// to the app logger.
func (a *App) Process(ctx context.Context, path string, save bool) (*Report, error) {
	start := time.Now()
	logger := logging.WithSource(a.logger(ctx), path)

	chart, err := a.Extractor.ExtractFile(path)
	if err != nil {
		return nil, err
	}

	result := a.Pipeline.Run(chart)
	pending := result.Pending(a.Config.Pipeline.NumContracts)

	run := &models.Run{
		ID:            uuid.NewString(),
		Source:        path,
		CreatedAt:     time.Now().UTC(),
		Params:        a.Pipeline.Params(),
		CandleCount:   len(chart.Candles),
		HighCount:     len(result.Swings.Highs),
		LowCount:      len(result.Swings.Lows),
		ContractCount: len(result.Contracts),
		PendingCount:  len(pending),
		Contracts:     analysis.Views(result.Contracts),
	}
	logger = logging.WithRun(logger, run.ID)

	for _, d := range result.Diagnostics {
		logging.LogDiagnostic(logger, d)
	}
	for _, c := range pending {
		logging.LogContract(logger, c.View())
	}

	if save {
		s, err := a.OpenStore()
		if err != nil {
			return nil, err
		}
		if err := s.SaveRun(ctx, run); err != nil {
			return nil, fmt.Errorf("saving run: %w", err)
		}
	}

	duration := time.Since(start)
	logging.LogRun(logger, run, duration)

	return &Report{Run: run, Result: result, Pending: pending, Duration: duration}, nil
}

func newAnalyzeCmd(app *App) *cobra.Command {
	var (
		pendingOnly bool
		save        bool
		diagnostics bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <snapshot>",
		Short: "Analyze one chart image or candle CSV",
		Long: `Extract candles from a snapshot, detect swing highs and lows, chain
trendlines and print one contract per trendline.

Supported inputs: PNG, JPEG, GIF, BMP, TIFF, WebP and candle CSV files
with x,top_y,bottom_y,color columns.`,
		Example: `  chartline analyze chart.png
  chartline analyze chart.png --pending --json
  chartline analyze candles.csv --save`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			report, err := app.Process(cmd.Context(), args[0], save || app.Config.Store.Enabled)
			if err != nil {
				output.Error("Analysis failed: %v", err)
				return err
			}

			if output.IsJSON() {
				if pendingOnly {
					return output.JSON(analysis.Views(report.Pending))
				}
				return output.JSON(report.Run.Contracts)
			}

			renderReport(output, report, pendingOnly)
			if diagnostics {
				renderDiagnostics(output, report.Result.Diagnostics)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&pendingOnly, "pending", false, "show only valid pending contracts")
	cmd.Flags().BoolVar(&save, "save", false, "persist the run to the store")
	cmd.Flags().BoolVar(&diagnostics, "diagnostics", false, "list rejected candidates")

	return cmd
}

func newExportCmd(app *App) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export <snapshot>",
		Short: "Export pending contracts as CSV",
		Long:  "Analyze a snapshot and write its valid pending contracts, newest receiver first, as CSV.",
		Example: `  chartline export chart.png
  chartline export chart.png -o pending.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := app.Process(cmd.Context(), args[0], false)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return WritePendingCSV(w, analysis.Views(report.Pending))
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default: stdout)")

	return cmd
}

func renderReport(output *Output, report *Report, pendingOnly bool) {
	run := report.Run
	output.Bold("%s", run.Source)
	output.Dim("run %s  candles %d  highs %d  lows %d  %s",
		ShortID(run.ID), run.CandleCount, run.HighCount, run.LowCount, FormatDuration(report.Duration))
	output.Println()

	views := run.Contracts
	if pendingOnly {
		views = analysis.Views(report.Pending)
	}
	if len(views) == 0 {
		output.Warning("No contracts")
		return
	}
	renderContracts(output, views)
	output.Println()
	output.Info("%d contracts, %d pending", run.ContractCount, run.PendingCount)
}

func renderContracts(output *Output, views []models.ContractView) {
	table := NewTable(output, "TRENDLINE", "ORDER", "STATUS", "BREAKOUT", "ORDER PARENT", "ACTUAL", "REASSIGNED", "BOX")
	for _, v := range views {
		table.AddRow(
			FormatTrendline(v),
			output.OrderType(v.Receiver.OrderType),
			output.Status(v.Receiver.OrderStatus),
			v.Receiver.BreakoutParent,
			v.Receiver.OrderParent,
			v.Receiver.ActualOrderParent,
			FormatBool(v.Receiver.ReassignedOrderParent),
			FormatBox(v.Box),
		)
	}
	table.Render()
}

func renderDiagnostics(output *Output, diags []models.Diagnostic) {
	output.Println()
	output.Bold("Diagnostics")
	if len(diags) == 0 {
		output.Dim("none")
		return
	}
	table := NewTable(output, "STAGE", "SUBJECT", "REASON")
	for _, d := range diags {
		table.AddRow(d.Stage, d.Subject, TruncateString(d.Reason, 60))
	}
	table.Render()
}

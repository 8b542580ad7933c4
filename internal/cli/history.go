package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"chartline-trader/internal/models"
	"chartline-trader/internal/store"
)

func newHistoryCmd(app *App) *cobra.Command {
	var (
		source string
		days   int
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved runs",
		Example: `  chartline history
  chartline history --source chart.png --days 7
  chartline history show 3f2a9c1e-...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			s, err := app.OpenStore()
			if err != nil {
				return err
			}

			filter := store.RunFilter{Source: source, Limit: limit}
			if days > 0 {
				filter.StartDate = time.Now().UTC().AddDate(0, 0, -days)
			}
			runs, err := s.GetRuns(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(runs)
			}
			if len(runs) == 0 {
				output.Warning("No saved runs")
				return nil
			}

			table := NewTable(output, "RUN", "WHEN", "SOURCE", "CANDLES", "CONTRACTS", "PENDING")
			for _, r := range runs {
				table.AddRow(
					ShortID(r.ID),
					FormatDateTime(r.CreatedAt),
					TruncateString(r.Source, 40),
					fmt.Sprintf("%d", r.CandleCount),
					fmt.Sprintf("%d", r.ContractCount),
					fmt.Sprintf("%d", r.PendingCount),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "only runs of this snapshot")
	cmd.Flags().IntVar(&days, "days", 0, "only runs from the last N days")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list")

	cmd.AddCommand(newHistoryShowCmd(app))

	return cmd
}

func newHistoryShowCmd(app *App) *cobra.Command {
	var (
		kind   string
		status string
	)

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the contracts of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			s, err := app.OpenStore()
			if err != nil {
				return err
			}

			run, err := s.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if kind != "" || status != "" {
				run.Contracts, err = s.GetContracts(cmd.Context(), run.ID, store.ContractFilter{
					Type:   models.TrendlineKind(kind),
					Status: models.OrderStatus(status),
				})
				if err != nil {
					return err
				}
			}

			if output.IsJSON() {
				return output.JSON(run)
			}

			output.Bold("%s", run.Source)
			output.Dim("run %s  %s  candles %d  highs %d  lows %d",
				run.ID, FormatDateTime(run.CreatedAt), run.CandleCount, run.HighCount, run.LowCount)
			output.Println()
			if len(run.Contracts) == 0 {
				output.Warning("No contracts")
				return nil
			}
			renderContracts(output, run.Contracts)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "type", "", "filter by trendline type (PH_to_PH, PL_to_PL)")
	cmd.Flags().StringVar(&status, "status", "", "filter by order status (PENDING, EXECUTED, INVALID)")

	return cmd
}

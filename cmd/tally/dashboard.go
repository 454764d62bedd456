package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tallyhq/tally/internal/cli"
	"github.com/tallyhq/tally/internal/common"
)

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the budget summary and per-category status",
		RunE:  runDashboard,
	}

	flow := &cobra.Command{
		Use:   "flow",
		Short: "Show monthly inflow and outflow for a fiscal year",
		RunE:  runDashboardFlow,
	}
	flow.Flags().Int("fiscal-year", 0, "fiscal year ID (defaults to the active year in the cache)")

	forecast := &cobra.Command{
		Use:   "forecast",
		Short: "Show projected versus actual spend for a fiscal year",
		RunE:  runDashboardForecast,
	}
	forecast.Flags().Int("fiscal-year", 0, "fiscal year ID (defaults to the active year in the cache)")

	cmd.AddCommand(flow)
	cmd.AddCommand(forecast)

	return cmd
}

func currencySymbol() string {
	if symbol := viper.GetString("currency.symbol"); symbol != "" {
		return symbol
	}
	return "₱"
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	client, err := initClient()
	if err != nil {
		return err
	}

	summary, err := client.BudgetSummary(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch budget summary: %w", err)
	}

	symbol := currencySymbol()

	fmt.Println(cli.FormatTitle("Budget Summary — " + summary.FiscalYear))
	cli.RenderTable(os.Stdout,
		[]string{"Budget", "Spent", "Remaining", "Utilization"},
		[][]string{{
			common.FormatCurrency(summary.TotalBudget, symbol),
			common.FormatCurrency(summary.TotalSpent, symbol),
			common.FormatCurrency(summary.TotalRemaining, symbol),
			fmt.Sprintf("%.1f%%", summary.UtilizationPct),
		}})

	statuses, err := client.CategoryBudgetStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch category status: %w", err)
	}

	fmt.Println()
	fmt.Println(cli.FormatTitle("Category Status"))

	rows := make([][]string, 0, len(statuses))
	for i := range statuses {
		status := &statuses[i]
		variance := common.FormatCurrency(status.Variance(), symbol)
		if status.OverBudget() {
			variance = cli.NegativeStyle.Render(variance)
		}
		rows = append(rows, []string{
			status.Category,
			common.FormatCurrency(status.Budget, symbol),
			common.FormatCurrency(status.Spent, symbol),
			variance,
		})
	}
	cli.RenderTable(os.Stdout, []string{"Category", "Budget", "Spent", "Variance"}, rows)

	return nil
}

// resolveFiscalYear turns the --fiscal-year flag into an ID, falling back to
// the active fiscal year in the local cache.
func resolveFiscalYear(ctx context.Context, cmd *cobra.Command) (int, error) {
	id, _ := cmd.Flags().GetInt("fiscal-year")
	if id > 0 {
		return id, nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = store.Close() }()

	year, err := store.GetActiveFiscalYear(ctx)
	if err != nil {
		return 0, err
	}
	if year == nil {
		return 0, fmt.Errorf("no active fiscal year in the cache: pass --fiscal-year or run 'tally sync'")
	}
	return year.ID, nil
}

func runDashboardFlow(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	fiscalYearID, err := resolveFiscalYear(ctx, cmd)
	if err != nil {
		return err
	}

	client, err := initClient()
	if err != nil {
		return err
	}

	flows, err := client.MonthlyFlow(ctx, fiscalYearID)
	if err != nil {
		return fmt.Errorf("failed to fetch monthly flow: %w", err)
	}

	symbol := currencySymbol()

	fmt.Println(cli.FormatTitle("Monthly Flow"))
	rows := make([][]string, 0, len(flows))
	for i := range flows {
		flow := &flows[i]
		net := common.FormatCurrency(flow.Net(), symbol)
		if flow.Net().IsNegative() {
			net = cli.NegativeStyle.Render(net)
		}
		rows = append(rows, []string{
			flow.Month,
			common.FormatCurrency(flow.Inflow, symbol),
			common.FormatCurrency(flow.Outflow, symbol),
			net,
		})
	}
	cli.RenderTable(os.Stdout, []string{"Month", "Inflow", "Outflow", "Net"}, rows)

	return nil
}

func runDashboardForecast(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	fiscalYearID, err := resolveFiscalYear(ctx, cmd)
	if err != nil {
		return err
	}

	client, err := initClient()
	if err != nil {
		return err
	}

	points, err := client.Forecast(ctx, fiscalYearID)
	if err != nil {
		return fmt.Errorf("failed to fetch forecast: %w", err)
	}

	symbol := currencySymbol()

	fmt.Println(cli.FormatTitle("Forecast"))
	rows := make([][]string, 0, len(points))
	for i := range points {
		point := &points[i]
		rows = append(rows, []string{
			point.Month,
			common.FormatCurrency(point.Projected, symbol),
			common.FormatCurrency(point.Actual, symbol),
			common.FormatCurrency(point.Actual.Sub(point.Projected), symbol),
		})
	}
	cli.RenderTable(os.Stdout, []string{"Month", "Projected", "Actual", "Delta"}, rows)

	return nil
}

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tallyhq/tally/internal/cli"
	"github.com/tallyhq/tally/internal/model"
	"github.com/tallyhq/tally/internal/sheets"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate reports from dashboard data",
	}

	cmd.AddCommand(reportAuthCmd())
	cmd.AddCommand(reportExportCmd())

	return cmd
}

func reportAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with Google Sheets",
		Long: `Authenticate with Google Sheets using OAuth2. Opens a browser, captures
the callback locally, and stores the refresh token in the config file for
future exports.`,
		RunE: runReportAuth,
	}

	cmd.Flags().String("client-id", "", "OAuth2 Client ID (overrides config)")
	cmd.Flags().String("client-secret", "", "OAuth2 Client Secret (overrides config)")

	return cmd
}

func sheetsTokenFile() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "tally", "sheets-token.json"), nil
}

func runReportAuth(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	clientID := viper.GetString("sheets.client_id")
	clientSecret := viper.GetString("sheets.client_secret")

	if flagID, _ := cmd.Flags().GetString("client-id"); flagID != "" {
		clientID = flagID
	}
	if flagSecret, _ := cmd.Flags().GetString("client-secret"); flagSecret != "" {
		clientSecret = flagSecret
	}

	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("OAuth2 credentials not found: set sheets.client_id and sheets.client_secret in config or use --client-id and --client-secret")
	}

	tokenFile, err := sheetsTokenFile()
	if err != nil {
		return err
	}

	slog.Info("Starting Google Sheets authentication", "token_file", tokenFile)

	// Reuses a previously saved token when one exists; otherwise runs the
	// interactive browser flow.
	token, err := sheets.GetOrCreateToken(ctx, sheets.OAuth2Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenFile:    tokenFile,
	})
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	if token.RefreshToken != "" {
		viper.Set("sheets.refresh_token", token.RefreshToken)
	}

	if err := saveConfig(); err != nil {
		slog.Warn("Failed to update config file with refresh token", "error", err)
		slog.Info("Please add this to your config.yaml manually:")
		slog.Info(fmt.Sprintf("sheets:\n  refresh_token: %q", token.RefreshToken))
	} else {
		fmt.Println(cli.FormatSuccess("Google Sheets is configured"))
	}

	return nil
}

func reportExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the variance report to Google Sheets",
		Long: `Fetch the budget summary, per-category status, and monthly flow for the
active fiscal year and write them to a Google Sheets spreadsheet. Run
'tally report auth' once beforehand to set up credentials.`,
		RunE: runReportExport,
	}

	cmd.Flags().String("spreadsheet-id", "", "existing spreadsheet to overwrite (default: create a new one)")
	cmd.Flags().Int("fiscal-year", 0, "fiscal year ID for the monthly flow section")

	return cmd
}

func runReportExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	client, err := initClient()
	if err != nil {
		return err
	}

	summary, err := client.BudgetSummary(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch budget summary: %w", err)
	}

	statuses, err := client.CategoryBudgetStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch category status: %w", err)
	}

	// Monthly flow is optional: without a resolvable fiscal year the report
	// just omits that section.
	var flows []model.MonthlyFlow
	if fiscalYearID, fyErr := resolveFiscalYear(ctx, cmd); fyErr == nil {
		flows, err = client.MonthlyFlow(ctx, fiscalYearID)
		if err != nil {
			slog.Warn("skipping monthly flow section", "error", err)
			flows = nil
		}
	}

	config := sheets.DefaultConfig()
	config.ClientID = viper.GetString("sheets.client_id")
	config.ClientSecret = viper.GetString("sheets.client_secret")
	config.RefreshToken = viper.GetString("sheets.refresh_token")
	config.ServiceAccountPath = viper.GetString("sheets.service_account_path")
	config.SpreadsheetID = viper.GetString("sheets.spreadsheet_id")
	if flagID, _ := cmd.Flags().GetString("spreadsheet-id"); flagID != "" {
		config.SpreadsheetID = flagID
	}
	if config.SpreadsheetName == "" {
		config.SpreadsheetName = "Budget Variance Report"
	}

	writer, err := sheets.NewWriter(ctx, config, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create sheets writer: %w", err)
	}

	if err := writer.Write(ctx, summary, statuses, flows); err != nil {
		return fmt.Errorf("failed to export report: %w", err)
	}

	fmt.Println(cli.FormatSuccess("Variance report exported"))
	return nil
}

// saveConfig writes the in-memory viper state back to the config file,
// creating it if it does not exist yet.
func saveConfig() error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		configFile = filepath.Join(home, ".config", "tally", "config.yaml")
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0750); err != nil {
		return err
	}

	return viper.WriteConfigAs(configFile)
}

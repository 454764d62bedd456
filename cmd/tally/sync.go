package main

import (
	"context"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/tallyhq/tally/internal/api"
	"github.com/tallyhq/tally/internal/cli"
	"github.com/tallyhq/tally/internal/common"
)

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull backend records into the local cache",
		Long: `Pull the paginated journal and expense listings from the backend into
the local cache for offline browsing. Transient network failures are retried
with backoff; an expired session triggers the normal refresh path.`,
		RunE: runSync,
	}
	cmd.Flags().Int("page-size", 100, "records fetched per request")
	return cmd
}

var syncRetryOpts = common.RetryOptions{
	MaxAttempts:  3,
	InitialDelay: 500 * time.Millisecond,
	MaxDelay:     10 * time.Second,
	Multiplier:   2.0,
}

// syncResource drains one paginated endpoint into the cache with a progress
// bar sized from the server's total count.
func syncResource[T any](
	ctx context.Context,
	name string,
	pageSize int,
	fetch func(context.Context, api.ListParams) (*api.Page[T], error),
	save func(context.Context, []T) error,
) (int, error) {
	params := api.ListParams{Page: 1, PageSize: pageSize}

	var bar *progressbar.ProgressBar
	var synced int

	for {
		var page *api.Page[T]
		err := common.WithRetry(ctx, func() error {
			var fetchErr error
			page, fetchErr = fetch(ctx, params)
			return fetchErr
		}, syncRetryOpts)
		if err != nil {
			return synced, fmt.Errorf("failed to fetch %s page %d: %w", name, params.Page, err)
		}

		if bar == nil {
			bar = progressbar.NewOptions(page.Count,
				progressbar.OptionSetDescription("syncing "+name),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}

		if err := save(ctx, page.Results); err != nil {
			return synced, fmt.Errorf("failed to cache %s: %w", name, err)
		}

		synced += len(page.Results)
		_ = bar.Add(len(page.Results))

		if !page.HasNext {
			_ = bar.Finish()
			return synced, nil
		}
		params.Page++
	}
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	client, err := initClient()
	if err != nil {
		return err
	}
	if !client.Authenticated() {
		return fmt.Errorf("not logged in: run 'tally login' first")
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	pageSize, _ := cmd.Flags().GetInt("page-size")

	var total int
	for _, resource := range []struct {
		name string
		pull func() (int, error)
	}{
		{"fiscal years", func() (int, error) {
			return syncResource(ctx, "fiscal years", pageSize, client.ListFiscalYears, store.SaveFiscalYears)
		}},
		{"accounts", func() (int, error) {
			return syncResource(ctx, "accounts", pageSize, client.ListAccounts, store.SaveAccounts)
		}},
		{"users", func() (int, error) {
			return syncResource(ctx, "users", pageSize, client.ListUsers, store.SaveUsers)
		}},
		{"ledger entries", func() (int, error) {
			return syncResource(ctx, "ledger entries", pageSize, client.ListLedgerEntries, store.SaveLedgerEntries)
		}},
		{"proposals", func() (int, error) {
			return syncResource(ctx, "proposals", pageSize, client.ListProposals, store.SaveProposals)
		}},
		{"journal entries", func() (int, error) {
			return syncResource(ctx, "journal entries", pageSize, client.ListJournalEntries, store.SaveJournalEntries)
		}},
		{"expenses", func() (int, error) {
			return syncResource(ctx, "expenses", pageSize, client.ListExpenses, store.SaveExpenses)
		}},
	} {
		count, err := resource.pull()
		if err != nil {
			return err
		}
		total += count
		common.LogDebug("synced resource", common.Fields{
			"resource": resource.name,
			"records":  count,
		})
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Synced %d records across 7 resources", total)))
	return nil
}

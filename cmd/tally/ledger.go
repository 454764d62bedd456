package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tallyhq/tally/internal/common"
	"github.com/tallyhq/tally/internal/listquery"
	"github.com/tallyhq/tally/internal/model"
	"github.com/tallyhq/tally/internal/tui"
)

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Browse the general ledger",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List cached ledger entries",
		RunE:  runLedgerList,
	}
	addListFlags(list)
	list.Flags().String("account", "", "filter by account code")
	list.Flags().String("category", "", "filter by category")

	cmd.AddCommand(list)
	return cmd
}

func ledgerListSpec(symbol string) listSpec[model.LedgerEntry] {
	return listSpec[model.LedgerEntry]{
		title:   "General Ledger",
		columns: []string{"Date", "Account", "Description", "Reference", "Debit", "Credit", "Balance"},
		row: func(e model.LedgerEntry) []string {
			return []string{
				e.Date.Format("2006-01-02"),
				fmt.Sprintf("%s %s", e.AccountCode, e.AccountName),
				e.Description,
				e.Reference,
				common.FormatCurrency(e.Debit, symbol),
				common.FormatCurrency(e.Credit, symbol),
				common.FormatCurrency(e.Balance, symbol),
			}
		},
		cfg: listquery.Config[model.LedgerEntry]{
			SearchFields: []listquery.Accessor[model.LedgerEntry]{
				func(e model.LedgerEntry) string { return e.Description },
				func(e model.LedgerEntry) string { return e.Reference },
				func(e model.LedgerEntry) string { return e.AccountName },
			},
			FilterFields: map[string]listquery.Accessor[model.LedgerEntry]{
				"account":  func(e model.LedgerEntry) string { return e.AccountCode },
				"category": func(e model.LedgerEntry) string { return e.Category },
			},
		},
	}
}

func runLedgerList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	entries, err := store.GetLedgerEntries(ctx)
	if err != nil {
		return fmt.Errorf("failed to load ledger entries: %w", err)
	}
	warnIfCacheEmpty(len(entries))

	spec := ledgerListSpec(currencySymbol())
	spec.filters = []tui.Filter{
		{Name: "account", Values: distinct(entries, func(e model.LedgerEntry) string { return e.AccountCode })},
		{Name: "category", Values: distinct(entries, func(e model.LedgerEntry) string { return e.Category })},
	}

	account, _ := cmd.Flags().GetString("account")
	category, _ := cmd.Flags().GetString("category")

	return runList(entries, spec, getListFlags(cmd), map[string]string{
		"account":  account,
		"category": category,
	})
}

// distinct collects the unique non-empty values of one field, in first-seen
// order, for populating filter cycles.
func distinct[T any](records []T, field func(T) string) []string {
	seen := make(map[string]bool)
	var values []string
	for _, record := range records {
		value := field(record)
		if value == "" || seen[value] {
			continue
		}
		seen[value] = true
		values = append(values, value)
	}
	return values
}

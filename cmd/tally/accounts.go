package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tallyhq/tally/internal/listquery"
	"github.com/tallyhq/tally/internal/model"
	"github.com/tallyhq/tally/internal/tui"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Browse the chart of accounts",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List cached accounts",
		RunE:  runAccountsList,
	}
	addListFlags(list)
	list.Flags().String("type", "", "filter by account type (asset, liability, equity, revenue, expense)")

	cmd.AddCommand(list)
	return cmd
}

func accountsListSpec() listSpec[model.Account] {
	return listSpec[model.Account]{
		title:   "Chart of Accounts",
		columns: []string{"Code", "Name", "Type", "Active"},
		row: func(a model.Account) []string {
			return []string{
				a.Code,
				a.Name,
				string(a.Type),
				strconv.FormatBool(a.Active),
			}
		},
		cfg: listquery.Config[model.Account]{
			SearchFields: []listquery.Accessor[model.Account]{
				func(a model.Account) string { return a.Name },
				func(a model.Account) string { return a.Code },
			},
			FilterFields: map[string]listquery.Accessor[model.Account]{
				"type": func(a model.Account) string { return string(a.Type) },
			},
		},
		filters: []tui.Filter{
			{Name: "type", Values: []string{
				string(model.AccountTypeAsset), string(model.AccountTypeLiability),
				string(model.AccountTypeEquity), string(model.AccountTypeRevenue),
				string(model.AccountTypeExpense),
			}},
		},
	}
}

func runAccountsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	accounts, err := store.GetAccounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load accounts: %w", err)
	}
	warnIfCacheEmpty(len(accounts))

	accountType, _ := cmd.Flags().GetString("type")

	return runList(accounts, accountsListSpec(), getListFlags(cmd), map[string]string{
		"type": accountType,
	})
}

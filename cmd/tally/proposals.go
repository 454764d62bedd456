package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tallyhq/tally/internal/common"
	"github.com/tallyhq/tally/internal/listquery"
	"github.com/tallyhq/tally/internal/model"
	"github.com/tallyhq/tally/internal/tui"
)

func proposalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proposals",
		Short: "Browse budget proposals",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List cached budget proposals",
		RunE:  runProposalsList,
	}
	addListFlags(list)
	list.Flags().String("status", "", "filter by status (draft, pending, approved, rejected)")
	list.Flags().String("department", "", "filter by department")

	cmd.AddCommand(list)
	return cmd
}

func proposalsListSpec(symbol string) listSpec[model.Proposal] {
	return listSpec[model.Proposal]{
		title:   "Budget Proposals",
		columns: []string{"Submitted", "Title", "Department", "Category", "Amount", "Status", "By"},
		row: func(p model.Proposal) []string {
			return []string{
				p.SubmittedAt.Format("2006-01-02"),
				p.Title,
				p.Department,
				p.Category,
				common.FormatCurrency(p.Amount, symbol),
				string(p.Status),
				p.SubmittedBy,
			}
		},
		cfg: listquery.Config[model.Proposal]{
			SearchFields: []listquery.Accessor[model.Proposal]{
				func(p model.Proposal) string { return p.Title },
				func(p model.Proposal) string { return p.SubmittedBy },
			},
			FilterFields: map[string]listquery.Accessor[model.Proposal]{
				"status":     func(p model.Proposal) string { return string(p.Status) },
				"department": func(p model.Proposal) string { return p.Department },
			},
		},
		filters: []tui.Filter{
			{Name: "status", Values: []string{
				string(model.ProposalDraft), string(model.ProposalPending),
				string(model.ProposalApproved), string(model.ProposalRejected),
			}},
		},
	}
}

func runProposalsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	proposals, err := store.GetProposals(ctx)
	if err != nil {
		return fmt.Errorf("failed to load proposals: %w", err)
	}
	warnIfCacheEmpty(len(proposals))

	spec := proposalsListSpec(currencySymbol())
	spec.filters = append(spec.filters, tui.Filter{
		Name:   "department",
		Values: distinct(proposals, func(p model.Proposal) string { return p.Department }),
	})

	status, _ := cmd.Flags().GetString("status")
	department, _ := cmd.Flags().GetString("department")

	return runList(proposals, spec, getListFlags(cmd), map[string]string{
		"status":     status,
		"department": department,
	})
}

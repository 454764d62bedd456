package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tallyhq/tally/internal/cli"
	"github.com/tallyhq/tally/internal/common"
	"github.com/tallyhq/tally/internal/listquery"
	"github.com/tallyhq/tally/internal/model"
	"github.com/tallyhq/tally/internal/ofx"
	"github.com/tallyhq/tally/internal/tui"
)

func expensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "Track and submit expenses",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List tracked expenses",
		RunE:  runExpensesList,
	}
	addListFlags(list)
	list.Flags().String("status", "", "filter by status (pending, approved, reimbursed, rejected)")
	list.Flags().String("category", "", "filter by category")
	list.Flags().Bool("cached", false, "list from the local cache instead of the backend")

	submit := &cobra.Command{
		Use:   "submit",
		Short: "Submit a new expense",
		RunE:  runExpensesSubmit,
	}
	submit.Flags().String("date", "", "expense date (YYYY-MM-DD, default today)")
	submit.Flags().String("description", "", "what the money was spent on")
	submit.Flags().String("category", "", "expense category")
	submit.Flags().String("department", "", "department to charge")
	submit.Flags().String("amount", "", "amount, e.g. 1250.00")
	submit.Flags().String("receipt", "", "receipt reference")
	_ = submit.MarkFlagRequired("description")
	_ = submit.MarkFlagRequired("amount")

	importCmd := &cobra.Command{
		Use:   "import <file.ofx>",
		Short: "Import debits from an OFX/QFX bank statement as expenses",
		Long: `Parse a bank statement and stage its debit transactions as pending
expenses in the local cache. Each candidate gets a client reference derived
from the statement's FITID, so importing the same file twice stages nothing
new and submitting twice does not duplicate server-side. Pass --submit to
send the staged candidates to the backend immediately.`,
		Args: cobra.ExactArgs(1),
		RunE: runExpensesImport,
	}
	importCmd.Flags().Bool("submit", false, "submit imported expenses to the backend")

	cmd.AddCommand(list)
	cmd.AddCommand(submit)
	cmd.AddCommand(importCmd)
	return cmd
}

func expensesListSpec(symbol string) listSpec[model.Expense] {
	return listSpec[model.Expense]{
		title:   "Expenses",
		columns: []string{"Date", "Description", "Category", "Department", "Amount", "Status"},
		row: func(e model.Expense) []string {
			return []string{
				e.Date.Format("2006-01-02"),
				e.Description,
				e.Category,
				e.Department,
				common.FormatCurrency(e.Amount, symbol),
				string(e.Status),
			}
		},
		cfg: listquery.Config[model.Expense]{
			SearchFields: []listquery.Accessor[model.Expense]{
				func(e model.Expense) string { return e.Description },
				func(e model.Expense) string { return e.SubmittedBy },
			},
			FilterFields: map[string]listquery.Accessor[model.Expense]{
				"status":   func(e model.Expense) string { return string(e.Status) },
				"category": func(e model.Expense) string { return e.Category },
			},
		},
		filters: []tui.Filter{
			{Name: "status", Values: []string{
				string(model.ExpensePending), string(model.ExpenseApproved),
				string(model.ExpenseReimbursed), string(model.ExpenseRejected),
			}},
		},
	}
}

func runExpensesList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	var expenses []model.Expense
	cached, _ := cmd.Flags().GetBool("cached")
	if cached {
		store, err := initStorage(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		expenses, err = store.GetExpenses(ctx)
		if err != nil {
			return fmt.Errorf("failed to load cached expenses: %w", err)
		}
	} else {
		client, err := initClient()
		if err != nil {
			return err
		}

		expenses, err = fetchAllPages(ctx, client.ListExpenses)
		if err != nil {
			return fmt.Errorf("failed to fetch expenses: %w", err)
		}
	}

	spec := expensesListSpec(currencySymbol())
	spec.filters = append(spec.filters, tui.Filter{
		Name:   "category",
		Values: distinct(expenses, func(e model.Expense) string { return e.Category }),
	})

	status, _ := cmd.Flags().GetString("status")
	category, _ := cmd.Flags().GetString("category")

	return runList(expenses, spec, getListFlags(cmd), map[string]string{
		"status":   status,
		"category": category,
	})
}

func runExpensesSubmit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	amountStr, _ := cmd.Flags().GetString("amount")
	amount, err := common.ParseCurrency(amountStr, currencySymbol())
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", amountStr, err)
	}

	date := time.Now()
	if dateStr, _ := cmd.Flags().GetString("date"); dateStr != "" {
		date, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", dateStr)
		}
	}

	description, _ := cmd.Flags().GetString("description")
	category, _ := cmd.Flags().GetString("category")
	department, _ := cmd.Flags().GetString("department")
	receipt, _ := cmd.Flags().GetString("receipt")

	client, err := initClient()
	if err != nil {
		return err
	}

	expense := &model.Expense{
		Date:        date,
		Description: description,
		Category:    category,
		Department:  department,
		Receipt:     receipt,
		Amount:      amount,
		Status:      model.ExpensePending,
	}

	submitted, err := client.SubmitExpense(ctx, expense)
	if err != nil {
		return fmt.Errorf("failed to submit expense: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Submitted expense %s for %s",
		submitted.ID, common.FormatCurrency(submitted.Amount, currencySymbol()))))
	return nil
}

func runExpensesImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	file, err := os.Open(args[0]) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to open statement: %w", err)
	}
	defer func() { _ = file.Close() }()

	candidates, err := ofx.NewParser().ParseExpenses(ctx, file)
	if err != nil {
		return fmt.Errorf("failed to parse statement: %w", err)
	}
	if len(candidates) == 0 {
		fmt.Println(cli.FormatWarning("No debit transactions found in the statement"))
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	// Skip candidates already staged or submitted from a previous import of
	// the same statement.
	fresh := make([]model.Expense, 0, len(candidates))
	for i := range candidates {
		existing, err := store.GetExpenseByClientRef(ctx, candidates[i].ClientRef)
		if err != nil {
			return fmt.Errorf("failed to check for duplicates: %w", err)
		}
		if existing == nil {
			fresh = append(fresh, candidates[i])
		}
	}

	if len(fresh) == 0 {
		fmt.Println(cli.FormatWarning("All transactions in this statement were already imported"))
		return nil
	}

	if err := store.SaveExpenses(ctx, fresh); err != nil {
		return fmt.Errorf("failed to stage expenses: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Staged %d expense(s) from %s (%d duplicate(s) skipped)",
		len(fresh), args[0], len(candidates)-len(fresh))))

	submit, _ := cmd.Flags().GetBool("submit")
	if !submit {
		return nil
	}

	client, err := initClient()
	if err != nil {
		return err
	}

	var failed int
	for i := range fresh {
		if _, err := client.SubmitExpense(ctx, &fresh[i]); err != nil {
			common.LogError(err, "failed to submit imported expense", common.Fields{
				"client_ref": fresh[i].ClientRef,
			})
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("submitted %d of %d expenses: %d failed", len(fresh)-failed, len(fresh), failed)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Submitted %d expense(s)", len(fresh))))
	return nil
}

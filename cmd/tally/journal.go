package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tallyhq/tally/internal/cli"
	"github.com/tallyhq/tally/internal/common"
	"github.com/tallyhq/tally/internal/listquery"
	"github.com/tallyhq/tally/internal/model"
	"github.com/tallyhq/tally/internal/tui"
)

func journalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Browse and create journal entries",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List journal entries",
		RunE:  runJournalList,
	}
	addListFlags(list)
	list.Flags().String("status", "", "filter by status (draft, posted)")
	list.Flags().Bool("cached", false, "list from the local cache instead of the backend")

	create := &cobra.Command{
		Use:   "create",
		Short: "Create a journal entry",
		Long: `Create a double-entry journal record. Each --line flag adds one leg in
the form code:debit:credit, e.g.

  tally journal create --reference INV-204 --description "Office chairs" \
      --line 5010:12500.00:0 --line 1010:0:12500.00

Debits must equal credits; unbalanced entries are rejected before anything
is sent to the backend.`,
		RunE: runJournalCreate,
	}
	create.Flags().String("date", "", "entry date (YYYY-MM-DD, default today)")
	create.Flags().String("reference", "", "reference number")
	create.Flags().String("description", "", "entry description")
	create.Flags().StringArray("line", nil, "entry leg as code:debit:credit (repeatable)")
	_ = create.MarkFlagRequired("description")
	_ = create.MarkFlagRequired("line")

	cmd.AddCommand(list)
	cmd.AddCommand(create)
	return cmd
}

func journalListSpec(symbol string) listSpec[model.JournalEntry] {
	return listSpec[model.JournalEntry]{
		title:   "Journal Entries",
		columns: []string{"Date", "Reference", "Description", "Debit", "Credit", "Status"},
		row: func(e model.JournalEntry) []string {
			return []string{
				e.Date.Format("2006-01-02"),
				e.Reference,
				e.Description,
				common.FormatCurrency(e.TotalDebit(), symbol),
				common.FormatCurrency(e.TotalCredit(), symbol),
				string(e.Status),
			}
		},
		cfg: listquery.Config[model.JournalEntry]{
			SearchFields: []listquery.Accessor[model.JournalEntry]{
				func(e model.JournalEntry) string { return e.Description },
				func(e model.JournalEntry) string { return e.Reference },
			},
			FilterFields: map[string]listquery.Accessor[model.JournalEntry]{
				"status": func(e model.JournalEntry) string { return string(e.Status) },
			},
		},
		filters: []tui.Filter{
			{Name: "status", Values: []string{
				string(model.JournalDraft), string(model.JournalPosted),
			}},
		},
	}
}

func runJournalList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	var entries []model.JournalEntry
	cached, _ := cmd.Flags().GetBool("cached")
	if cached {
		store, err := initStorage(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		entries, err = store.GetJournalEntries(ctx)
		if err != nil {
			return fmt.Errorf("failed to load cached journal entries: %w", err)
		}
	} else {
		client, err := initClient()
		if err != nil {
			return err
		}

		entries, err = fetchAllPages(ctx, client.ListJournalEntries)
		if err != nil {
			return fmt.Errorf("failed to fetch journal entries: %w", err)
		}
	}

	status, _ := cmd.Flags().GetString("status")

	return runList(entries, journalListSpec(currencySymbol()), getListFlags(cmd), map[string]string{
		"status": status,
	})
}

// parseJournalLine parses one --line value of the form code:debit:credit.
func parseJournalLine(raw string) (model.JournalLine, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return model.JournalLine{}, fmt.Errorf("invalid line %q: expected code:debit:credit", raw)
	}

	debit, err := common.ParseCurrency(parts[1], "")
	if err != nil {
		return model.JournalLine{}, fmt.Errorf("invalid debit in line %q: %w", raw, err)
	}
	credit, err := common.ParseCurrency(parts[2], "")
	if err != nil {
		return model.JournalLine{}, fmt.Errorf("invalid credit in line %q: %w", raw, err)
	}

	if parts[0] == "" {
		return model.JournalLine{}, fmt.Errorf("invalid line %q: empty account code", raw)
	}

	return model.JournalLine{
		AccountCode: parts[0],
		Debit:       debit,
		Credit:      credit,
	}, nil
}

func runJournalCreate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	rawLines, _ := cmd.Flags().GetStringArray("line")
	lines := make([]model.JournalLine, 0, len(rawLines))
	for _, raw := range rawLines {
		line, err := parseJournalLine(raw)
		if err != nil {
			return err
		}
		lines = append(lines, line)
	}

	date := time.Now()
	if dateStr, _ := cmd.Flags().GetString("date"); dateStr != "" {
		var err error
		date, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", dateStr)
		}
	}

	reference, _ := cmd.Flags().GetString("reference")
	description, _ := cmd.Flags().GetString("description")

	entry := &model.JournalEntry{
		Date:        date,
		Reference:   reference,
		Description: description,
		Lines:       lines,
	}

	if !entry.Balanced() {
		symbol := currencySymbol()
		return fmt.Errorf("entry is not balanced: debits %s, credits %s",
			common.FormatCurrency(entry.TotalDebit(), symbol),
			common.FormatCurrency(entry.TotalCredit(), symbol))
	}

	client, err := initClient()
	if err != nil {
		return err
	}

	created, err := client.CreateJournalEntry(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to create journal entry: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created journal entry %s (%s)",
		created.ID, common.FormatCurrency(created.TotalDebit(), currencySymbol()))))
	return nil
}

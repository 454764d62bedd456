package main

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tallyhq/tally/internal/api"
	"github.com/tallyhq/tally/internal/cli"
	"github.com/tallyhq/tally/internal/config"
	"github.com/tallyhq/tally/internal/listquery"
	"github.com/tallyhq/tally/internal/service"
	"github.com/tallyhq/tally/internal/session"
	"github.com/tallyhq/tally/internal/storage"
	"github.com/tallyhq/tally/internal/tui"
	"golang.org/x/term"
)

// initStorage opens the local cache with proper path expansion and runs
// pending migrations.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dataDir, err := config.DefaultDataDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve data directory: %w", err)
		}
		dbPath = dataDir + "/tally.db"
	}

	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initClient builds the long-lived API client over the persisted session.
func initClient() (*api.Client, error) {
	baseURL := viper.GetString("api.base_url")
	if baseURL == "" {
		return nil, fmt.Errorf("no backend configured: set api.base_url in config or pass --api-url")
	}

	sessionPath, err := session.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session path: %w", err)
	}

	return api.NewClient(baseURL, session.NewStore(sessionPath))
}

// promptPassword reads a password from the terminal without echo.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}

// listFlags is the shared flag set of every list command.
type listFlags struct {
	search      string
	page        int
	pageSize    int
	interactive bool
}

func addListFlags(cmd *cobra.Command) {
	cmd.Flags().String("search", "", "substring search across the searchable fields")
	cmd.Flags().Int("page", 1, "page to display")
	cmd.Flags().Int("page-size", 10, "records per page (5, 10, 20, 50, 100)")
	cmd.Flags().BoolP("interactive", "i", false, "browse interactively")
}

func getListFlags(cmd *cobra.Command) listFlags {
	search, _ := cmd.Flags().GetString("search")
	page, _ := cmd.Flags().GetInt("page")
	pageSize, _ := cmd.Flags().GetInt("page-size")
	interactive, _ := cmd.Flags().GetBool("interactive")
	return listFlags{search: search, page: page, pageSize: pageSize, interactive: interactive}
}

// listSpec wires one resource into the shared list pipeline: a query config
// for the engine, table columns, and a row renderer.
type listSpec[T any] struct {
	title   string
	columns []string
	row     func(T) []string
	cfg     listquery.Config[T]
	filters []tui.Filter
}

// runList is the single code path behind every list command: build a view
// from the flags, then either render one page as a table or hand the records
// to the interactive browser.
func runList[T any](records []T, spec listSpec[T], flags listFlags, filterValues map[string]string) error {
	if flags.interactive {
		return tui.Browse(records, spec.cfg, tui.Options[T]{
			Title:   spec.title,
			Columns: spec.columns,
			Row:     spec.row,
			Filters: spec.filters,
		})
	}

	view := listquery.New(records, spec.cfg)
	view.SetSearch(flags.search)
	for name, value := range filterValues {
		if value != "" {
			view.SetFilter(name, value)
		}
	}
	view.SetPageSize(flags.pageSize)
	view.SetPage(flags.page)

	fmt.Println(cli.FormatTitle(spec.title))

	rows := make([][]string, 0, view.PageSize())
	for _, record := range view.Page() {
		rows = append(rows, spec.row(record))
	}
	cli.RenderTable(os.Stdout, spec.columns, rows)

	fmt.Println(cli.PaginationFooter(
		view.CurrentPage(), view.TotalPages(), view.TotalFiltered(), view.PageSize()))

	return nil
}

// warnIfCacheEmpty nudges the user toward sync when a cache-backed list
// command finds nothing locally.
func warnIfCacheEmpty(count int) {
	if count == 0 {
		fmt.Println(cli.FormatWarning("Local cache is empty: run 'tally sync' first"))
	}
}

// fetchAllPages drains a server-paginated endpoint into one slice.
func fetchAllPages[T any](ctx context.Context, fetch func(context.Context, api.ListParams) (*api.Page[T], error)) ([]T, error) {
	var all []T
	params := api.ListParams{Page: 1, PageSize: 100}
	for {
		page, err := fetch(ctx, params)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Results...)
		if !page.HasNext {
			return all, nil
		}
		params.Page++
	}
}

package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// RenderTable writes a styled table with a header row and dashed rule.
func RenderTable(out io.Writer, headers []string, rows [][]string) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	styled := make([]string, len(headers))
	rules := make([]string, len(headers))
	for i, h := range headers {
		styled[i] = HeaderStyle.Render(h)
		rules[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(w, strings.Join(styled, "\t"))
	fmt.Fprintln(w, strings.Join(rules, "\t"))

	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
}

// PaginationFooter describes the current page of a list view, e.g.
// "page 2/5 · 43 records · page size 10".
func PaginationFooter(page, totalPages, totalRecords, pageSize int) string {
	noun := "records"
	if totalRecords == 1 {
		noun = "record"
	}
	return SubtleStyle.Render(fmt.Sprintf("page %d/%d · %d %s · page size %d",
		page, totalPages, totalRecords, noun, pageSize))
}

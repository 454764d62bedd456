// Package listquery derives a filtered, paginated view from a full record
// set. Every list-bearing command and the interactive browser instantiate a
// View over their records; the engine owns search, filter, and pagination
// state and recomputes the visible slice from scratch on every change.
package listquery

import "strings"

// FilterAll is the sentinel filter value meaning "no constraint".
const FilterAll = "All"

// DefaultPageSizes are the allowed page-size options when a Config does not
// override them.
var DefaultPageSizes = []int{5, 10, 20, 50, 100}

// Accessor extracts a field value from a record for matching.
type Accessor[T any] func(T) string

// Config declares which fields of a record are searchable and which are
// filterable.
type Config[T any] struct {
	// SearchFields are matched case-insensitively against the search term
	// by substring containment.
	SearchFields []Accessor[T]
	// FilterFields maps a filter name to the accessor whose value must
	// equal the selected filter value exactly.
	FilterFields map[string]Accessor[T]
	// PageSizes overrides the allowed page-size options.
	PageSizes []int
}

// Filter returns the records matching the conjunction of the substring
// search and all active equality filters. An empty search term matches
// everything; a filter set to FilterAll is inactive. Search is
// case-insensitive; filter equality is case-sensitive.
func Filter[T any](records []T, searchTerm string, filters map[string]string, cfg Config[T]) []T {
	term := strings.ToLower(strings.TrimSpace(searchTerm))

	out := make([]T, 0, len(records))
	for _, record := range records {
		if term != "" && !matchesSearch(record, term, cfg.SearchFields) {
			continue
		}
		if !matchesFilters(record, filters, cfg.FilterFields) {
			continue
		}
		out = append(out, record)
	}
	return out
}

func matchesSearch[T any](record T, term string, fields []Accessor[T]) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field(record)), term) {
			return true
		}
	}
	return false
}

func matchesFilters[T any](record T, filters map[string]string, fields map[string]Accessor[T]) bool {
	for name, selected := range filters {
		if selected == FilterAll || selected == "" {
			continue
		}
		field, ok := fields[name]
		if !ok {
			continue
		}
		if field(record) != selected {
			return false
		}
	}
	return true
}

// Paginate returns the sub-sequence of records for the given 1-based page.
// A page past the end yields an empty slice, never an error.
func Paginate[T any](records []T, page, pageSize int) []T {
	if page < 1 || pageSize < 1 {
		return nil
	}
	start := (page - 1) * pageSize
	if start >= len(records) {
		return nil
	}
	end := start + pageSize
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}

// TotalPages returns ceil(count/pageSize), minimum 1 so pagination controls
// stay well-formed even for an empty result set.
func TotalPages(count, pageSize int) int {
	if pageSize < 1 {
		return 1
	}
	pages := (count + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// View owns the query state over a record set.
type View[T any] struct {
	filters    map[string]string
	cfg        Config[T]
	records    []T
	searchTerm string
	page       int
	pageSize   int
}

// New creates a View over records, starting at page 1 with a page size
// of 10.
func New[T any](records []T, cfg Config[T]) *View[T] {
	if len(cfg.PageSizes) == 0 {
		cfg.PageSizes = DefaultPageSizes
	}
	return &View[T]{
		cfg:      cfg,
		records:  records,
		filters:  make(map[string]string),
		page:     1,
		pageSize: clampPageSize(10, cfg.PageSizes),
	}
}

// SetRecords replaces the underlying record set, clamping the current page
// into the new range.
func (v *View[T]) SetRecords(records []T) {
	v.records = records
	v.SetPage(v.page)
}

// SetSearch updates the search term and resets to page 1.
func (v *View[T]) SetSearch(term string) {
	v.searchTerm = term
	v.page = 1
}

// SetFilter selects a value for a named filter and resets to page 1. Use
// FilterAll to clear the constraint.
func (v *View[T]) SetFilter(name, value string) {
	v.filters[name] = value
	v.page = 1
}

// SetPage moves to page n, clamped into [1, TotalPages].
func (v *View[T]) SetPage(n int) {
	total := v.TotalPages()
	if n < 1 {
		n = 1
	}
	if n > total {
		n = total
	}
	v.page = n
}

// SetPageSize changes the page size, clamping to the nearest allowed option,
// and resets to page 1.
func (v *View[T]) SetPageSize(n int) {
	v.pageSize = clampPageSize(n, v.cfg.PageSizes)
	v.page = 1
}

// Filtered returns the full filtered record set in input order.
func (v *View[T]) Filtered() []T {
	return Filter(v.records, v.searchTerm, v.filters, v.cfg)
}

// Page returns the visible slice for the current page.
func (v *View[T]) Page() []T {
	filtered := v.Filtered()
	page := v.page
	if total := TotalPages(len(filtered), v.pageSize); page > total {
		page = total
	}
	return Paginate(filtered, page, v.pageSize)
}

// TotalPages returns the page count for the current filtered set.
func (v *View[T]) TotalPages() int {
	return TotalPages(len(v.Filtered()), v.pageSize)
}

// TotalFiltered returns how many records match the current query.
func (v *View[T]) TotalFiltered() int {
	return len(v.Filtered())
}

// CurrentPage returns the 1-based current page, clamped into the valid
// range for the current filtered set.
func (v *View[T]) CurrentPage() int {
	if total := v.TotalPages(); v.page > total {
		return total
	}
	return v.page
}

// PageSize returns the active page size.
func (v *View[T]) PageSize() int {
	return v.pageSize
}

// SearchTerm returns the active search term.
func (v *View[T]) SearchTerm() string {
	return v.searchTerm
}

// FilterValue returns the selected value for a named filter, or FilterAll
// when unset.
func (v *View[T]) FilterValue(name string) string {
	if value, ok := v.filters[name]; ok && value != "" {
		return value
	}
	return FilterAll
}

// PageSizes returns the allowed page-size options.
func (v *View[T]) PageSizes() []int {
	return v.cfg.PageSizes
}

// clampPageSize snaps n to the nearest allowed option, preferring the
// smaller option on ties.
func clampPageSize(n int, allowed []int) int {
	if len(allowed) == 0 {
		return n
	}
	best := allowed[0]
	bestDist := abs(n - best)
	for _, option := range allowed[1:] {
		if dist := abs(n - option); dist < bestDist {
			best = option
			bestDist = dist
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

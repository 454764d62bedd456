package listquery

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID       int
	Category string
	Desc     string
}

func rowConfig() Config[row] {
	return Config[row]{
		SearchFields: []Accessor[row]{
			func(r row) string { return r.Desc },
			func(r row) string { return r.Category },
		},
		FilterFields: map[string]Accessor[row]{
			"category": func(r row) string { return r.Category },
		},
	}
}

func sampleRows() []row {
	return []row{
		{ID: 1, Category: "A", Desc: "Internet"},
		{ID: 2, Category: "B", Desc: "Travel"},
		{ID: 3, Category: "A", Desc: "Office Supplies"},
		{ID: 4, Category: "B", Desc: "International Shipping"},
	}
}

func TestFilter(t *testing.T) {
	cfg := rowConfig()
	records := sampleRows()

	tests := []struct {
		filters map[string]string
		name    string
		search  string
		wantIDs []int
	}{
		{name: "no constraints keeps everything", wantIDs: []int{1, 2, 3, 4}},
		{
			name:    "case-insensitive substring search",
			search:  "inter",
			wantIDs: []int{1, 4},
		},
		{
			name:    "search conjoined with category filter",
			search:  "inter",
			filters: map[string]string{"category": "A"},
			wantIDs: []int{1},
		},
		{
			name:    "sentinel All disables the filter",
			filters: map[string]string{"category": FilterAll},
			wantIDs: []int{1, 2, 3, 4},
		},
		{
			name:    "category equality is case-sensitive",
			filters: map[string]string{"category": "a"},
			wantIDs: []int{},
		},
		{
			name:    "no match yields empty set",
			search:  "zzz",
			wantIDs: []int{},
		},
		{
			name:    "whitespace-only search matches everything",
			search:  "   ",
			wantIDs: []int{1, 2, 3, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(records, tt.search, tt.filters, cfg)
			ids := make([]int, 0, len(got))
			for _, r := range got {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		count    int
		pageSize int
		want     int
	}{
		{count: 12, pageSize: 5, want: 3},
		{count: 10, pageSize: 5, want: 2},
		{count: 0, pageSize: 5, want: 1},
		{count: 1, pageSize: 100, want: 1},
		{count: 101, pageSize: 100, want: 2},
		{count: 5, pageSize: 0, want: 1},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_records_size_%d", tt.count, tt.pageSize), func(t *testing.T) {
			assert.Equal(t, tt.want, TotalPages(tt.count, tt.pageSize))
		})
	}
}

func TestPaginate(t *testing.T) {
	records := make([]row, 12)
	for i := range records {
		records[i] = row{ID: i + 1}
	}

	page1 := Paginate(records, 1, 5)
	require.Len(t, page1, 5)
	assert.Equal(t, 1, page1[0].ID)
	assert.Equal(t, 5, page1[4].ID)

	page2 := Paginate(records, 2, 5)
	require.Len(t, page2, 5)
	assert.Equal(t, 6, page2[0].ID)

	page3 := Paginate(records, 3, 5)
	require.Len(t, page3, 2)
	assert.Equal(t, 11, page3[0].ID)
	assert.Equal(t, 12, page3[1].ID)

	assert.Empty(t, Paginate(records, 4, 5))
	assert.Empty(t, Paginate(records, 0, 5))
	assert.Empty(t, Paginate([]row{}, 1, 5))
}

func TestView_PageResets(t *testing.T) {
	v := New(sampleRows(), rowConfig())
	v.SetPageSize(5)
	v.SetPage(1)

	records := make([]row, 30)
	for i := range records {
		records[i] = row{ID: i + 1, Category: "A", Desc: fmt.Sprintf("item %d", i+1)}
	}
	v.SetRecords(records)

	v.SetPage(3)
	assert.Equal(t, 3, v.CurrentPage())

	v.SetSearch("item")
	assert.Equal(t, 1, v.CurrentPage(), "search change resets to page 1")

	v.SetPage(4)
	v.SetFilter("category", "A")
	assert.Equal(t, 1, v.CurrentPage(), "filter change resets to page 1")

	v.SetPage(2)
	v.SetPageSize(10)
	assert.Equal(t, 1, v.CurrentPage(), "page size change resets to page 1")
}

func TestView_SetPageClamps(t *testing.T) {
	records := make([]row, 12)
	for i := range records {
		records[i] = row{ID: i + 1}
	}
	v := New(records, rowConfig())
	v.SetPageSize(5)

	v.SetPage(99)
	assert.Equal(t, 3, v.CurrentPage())

	v.SetPage(-1)
	assert.Equal(t, 1, v.CurrentPage())
}

func TestView_ShrinkingFilteredSetClampsPage(t *testing.T) {
	records := make([]row, 50)
	for i := range records {
		category := "A"
		if i%2 == 0 {
			category = "B"
		}
		records[i] = row{ID: i + 1, Category: category, Desc: "entry"}
	}
	v := New(records, rowConfig())
	v.SetPageSize(5)
	v.SetPage(10)
	require.Equal(t, 10, v.CurrentPage())

	// Narrowing resets to page 1 anyway, but a stale page must still render
	// a well-formed slice.
	v.SetFilter("category", "A")
	assert.Equal(t, 1, v.CurrentPage())
	assert.Len(t, v.Page(), 5)
	assert.Equal(t, 5, v.TotalPages())
}

func TestView_EmptyFilteredSet(t *testing.T) {
	v := New(sampleRows(), rowConfig())
	v.SetSearch("no such record")

	assert.Equal(t, 1, v.TotalPages())
	assert.Equal(t, 1, v.CurrentPage())
	assert.Empty(t, v.Page())
	assert.Zero(t, v.TotalFiltered())
}

func TestView_PageSizeClampedToAllowed(t *testing.T) {
	v := New(sampleRows(), rowConfig())

	v.SetPageSize(7)
	assert.Equal(t, 5, v.PageSize(), "7 snaps to nearest allowed option, smaller wins ties")

	v.SetPageSize(-3)
	assert.Equal(t, 5, v.PageSize())

	v.SetPageSize(1000)
	assert.Equal(t, 100, v.PageSize())

	v.SetPageSize(20)
	assert.Equal(t, 20, v.PageSize())
}

func TestView_FilterValueDefaults(t *testing.T) {
	v := New(sampleRows(), rowConfig())
	assert.Equal(t, FilterAll, v.FilterValue("category"))

	v.SetFilter("category", "B")
	assert.Equal(t, "B", v.FilterValue("category"))

	v.SetFilter("category", FilterAll)
	assert.Equal(t, FilterAll, v.FilterValue("category"))
	assert.Len(t, v.Filtered(), 4)
}

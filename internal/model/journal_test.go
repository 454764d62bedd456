package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestJournalEntry_Balanced(t *testing.T) {
	tests := []struct {
		name  string
		lines []JournalLine
		want  bool
	}{
		{
			name: "equal debits and credits balance",
			lines: []JournalLine{
				{AccountCode: "5100", Debit: decimal.NewFromInt(500)},
				{AccountCode: "1000", Credit: decimal.NewFromInt(500)},
			},
			want: true,
		},
		{
			name: "unequal totals do not balance",
			lines: []JournalLine{
				{AccountCode: "5100", Debit: decimal.NewFromInt(500)},
				{AccountCode: "1000", Credit: decimal.NewFromInt(450)},
			},
			want: false,
		},
		{
			name: "split legs balance against a single leg",
			lines: []JournalLine{
				{AccountCode: "5100", Debit: decimal.RequireFromString("120.50")},
				{AccountCode: "5200", Debit: decimal.RequireFromString("79.50")},
				{AccountCode: "1000", Credit: decimal.NewFromInt(200)},
			},
			want: true,
		},
		{
			name:  "empty entry is not balanced",
			lines: nil,
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := JournalEntry{Lines: tt.lines}
			assert.Equal(t, tt.want, entry.Balanced())
		})
	}
}

func TestLedgerEntry_GenerateHash(t *testing.T) {
	base := LedgerEntry{
		Date:        time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		AccountCode: "5100",
		Debit:       decimal.RequireFromString("125.00"),
		Reference:   "INV-0042",
	}

	other := base
	assert.Equal(t, base.GenerateHash(), other.GenerateHash())

	other.Debit = decimal.RequireFromString("126.00")
	assert.NotEqual(t, base.GenerateHash(), other.GenerateHash())

	other = base
	other.Date = base.Date.AddDate(0, 0, 1)
	assert.NotEqual(t, base.GenerateHash(), other.GenerateHash())
}

func TestFiscalYear_Contains(t *testing.T) {
	fy := FiscalYear{
		Name:      "FY2025",
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, fy.Contains(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)))
	assert.True(t, fy.Contains(fy.StartDate))
	assert.True(t, fy.Contains(fy.EndDate))
	assert.False(t, fy.Contains(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)))
}

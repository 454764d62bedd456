package main

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tallyhq/tally/internal/model"
)

func TestParseJournalLine(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    model.JournalLine
		wantErr bool
	}{
		{
			name:  "debit leg",
			input: "5010:12500.00:0",
			want: model.JournalLine{
				AccountCode: "5010",
				Debit:       decimal.RequireFromString("12500.00"),
				Credit:      decimal.Zero,
			},
		},
		{
			name:  "credit leg",
			input: "1010:0:12500.00",
			want: model.JournalLine{
				AccountCode: "1010",
				Debit:       decimal.Zero,
				Credit:      decimal.RequireFromString("12500.00"),
			},
		},
		{
			name:    "missing field",
			input:   "5010:100",
			wantErr: true,
		},
		{
			name:    "empty account code",
			input:   ":100:0",
			wantErr: true,
		},
		{
			name:    "non-numeric debit",
			input:   "5010:abc:0",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseJournalLine(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.AccountCode, got.AccountCode)
			assert.True(t, tt.want.Debit.Equal(got.Debit), "debit: want %s got %s", tt.want.Debit, got.Debit)
			assert.True(t, tt.want.Credit.Equal(got.Credit), "credit: want %s got %s", tt.want.Credit, got.Credit)
		})
	}
}

func TestDistinct(t *testing.T) {
	entries := []model.LedgerEntry{
		{AccountCode: "1010"},
		{AccountCode: "5010"},
		{AccountCode: "1010"},
		{AccountCode: ""},
	}

	values := distinct(entries, func(e model.LedgerEntry) string { return e.AccountCode })
	assert.Equal(t, []string{"1010", "5010"}, values)
}

package sheets

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tallyhq/tally/internal/model"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid oauth config",
			config: Config{
				ClientID:     "id",
				ClientSecret: "secret",
				RefreshToken: "token",
				BatchSize:    100,
			},
			wantErr: false,
		},
		{
			name: "valid service account config",
			config: Config{
				ServiceAccountPath: "/path/to/key.json",
				BatchSize:          100,
			},
			wantErr: false,
		},
		{
			name:    "no auth method",
			config:  Config{BatchSize: 100},
			wantErr: true,
		},
		{
			name: "both auth methods",
			config: Config{
				ClientID:           "id",
				ClientSecret:       "secret",
				RefreshToken:       "token",
				ServiceAccountPath: "/path/to/key.json",
				BatchSize:          100,
			},
			wantErr: true,
		},
		{
			name: "zero batch size",
			config: Config{
				ServiceAccountPath: "/path/to/key.json",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPrepareReportData(t *testing.T) {
	w := &Writer{config: DefaultConfig()}

	summary := &model.BudgetSummary{
		FiscalYear:     "FY2025",
		TotalBudget:    decimal.RequireFromString("100000"),
		TotalSpent:     decimal.RequireFromString("64000"),
		TotalRemaining: decimal.RequireFromString("36000"),
		UtilizationPct: 64.0,
	}
	statuses := []model.CategoryBudgetStatus{
		{
			Category: "Office Supplies",
			Budget:   decimal.RequireFromString("5000"),
			Spent:    decimal.RequireFromString("4200"),
		},
		{
			Category: "Travel",
			Budget:   decimal.RequireFromString("10000"),
			Spent:    decimal.RequireFromString("12500"),
		},
	}
	flows := []model.MonthlyFlow{
		{
			Month:   "2025-01",
			Inflow:  decimal.RequireFromString("9000"),
			Outflow: decimal.RequireFromString("7000"),
		},
	}

	values := w.prepareReportData(summary, statuses, flows)
	require.NotEmpty(t, values)

	assert.Equal(t, []any{"Budget Variance Report", "FY2025"}, values[0])

	// The overspent category sorts first (worst variance).
	headerIdx := -1
	for i, row := range values {
		if len(row) > 0 && row[0] == "Category" {
			headerIdx = i
			break
		}
	}
	require.NotEqual(t, -1, headerIdx, "category header row missing")

	travel := values[headerIdx+1]
	assert.Equal(t, "Travel", travel[0])
	assert.Equal(t, "-2500.00", travel[3])
	assert.Equal(t, "YES", travel[4])

	supplies := values[headerIdx+2]
	assert.Equal(t, "Office Supplies", supplies[0])
	assert.Equal(t, "", supplies[4])

	// Input order is untouched.
	assert.Equal(t, "Office Supplies", statuses[0].Category)

	last := values[len(values)-1]
	assert.Equal(t, "2025-01", last[0])
	assert.Equal(t, "2000.00", last[3])
}

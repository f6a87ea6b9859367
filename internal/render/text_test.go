package render

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallied-dev/tallied/internal/accounts"
	"github.com/tallied-dev/tallied/internal/model"
	"github.com/tallied-dev/tallied/internal/reports"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func fixtureEngine() *reports.Engine {
	chart := accounts.NewService([]model.Account{
		{ID: 1010, Name: "Business Checking", Type: model.AccountTypeBank},
		{ID: 3010, Name: "Owner's Equity", Type: model.AccountTypeEquity},
		{ID: 4010, Name: "Sales", Type: model.AccountTypeRevenue},
		{ID: 5020, Name: "Software & SaaS", Type: model.AccountTypeExpense},
	})
	postings := []model.Posting{
		{EntryID: "2024-01-001a", Date: reports.Day(2024, 1, 5), AccountID: 1010, Debit: dec("1000.00")},
		{EntryID: "2024-01-001b", Date: reports.Day(2024, 1, 5), AccountID: 3010, Credit: dec("1000.00")},
		{EntryID: "2024-01-002a", Date: reports.Day(2024, 1, 15), AccountID: 1010, Debit: dec("400.00")},
		{EntryID: "2024-01-002b", Date: reports.Day(2024, 1, 15), AccountID: 4010, Credit: dec("400.00")},
		{EntryID: "2024-02-001a", Date: reports.Day(2024, 2, 10), AccountID: 5020, Debit: dec("100.00")},
		{EntryID: "2024-02-001b", Date: reports.Day(2024, 2, 10), AccountID: 1010, Credit: dec("100.00")},
	}
	return reports.NewEngine(chart, postings)
}

func fixtureRange() reports.DateRange {
	return reports.NewDateRange(reports.Day(2024, 1, 1), reports.Day(2024, 2, 29))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "25.0%", FormatPercent(dec("100"), dec("400")))
	assert.Equal(t, "-12.5%", FormatPercent(dec("-50"), dec("400")))
	assert.Equal(t, "100.0%", FormatPercent(dec("400"), dec("400")))
	assert.Equal(t, "n/a", FormatPercent(dec("100"), dec("0")))
}

func TestIncomeStatementTable(t *testing.T) {
	is, err := reports.BuildIncomeStatement(fixtureEngine(), fixtureRange(), reports.GranularityMonth, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, IncomeStatement(&buf, is, Options{Percent: true}))
	out := buf.String()

	assert.Contains(t, out, "Jan 2024")
	assert.Contains(t, out, "Feb 2024")
	assert.Contains(t, out, "Sales")
	assert.Contains(t, out, "Net Income")
	assert.Contains(t, out, "300.00")
	// Expenses as a share of revenue.
	assert.Contains(t, out, "25.0%")
}

func TestBalanceSheetTable(t *testing.T) {
	bs, err := reports.BuildBalanceSheet(fixtureEngine(), fixtureRange(), reports.GranularityTotal, nil)
	require.NoError(t, err)
	require.True(t, bs.Balanced)

	var buf bytes.Buffer
	require.NoError(t, BalanceSheet(&buf, bs, Options{}))
	out := buf.String()

	assert.Contains(t, out, "Assets")
	assert.Contains(t, out, "Retained Earnings")
	assert.Contains(t, out, "Total Liabilities & Equity")
	assert.Contains(t, out, "1300.00")
	assert.NotContains(t, out, "WARNING")
}

func TestCashFlowTable(t *testing.T) {
	cf, err := reports.BuildCashFlow(fixtureEngine(), fixtureRange(), reports.GranularityMonth, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, CashFlow(&buf, cf, Options{}))
	out := buf.String()

	assert.Contains(t, out, "Beginning Cash")
	assert.Contains(t, out, "Operating Activities")
	assert.Contains(t, out, "Ending Cash")
	assert.Contains(t, out, "1300.00")
}

package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedEntries(t *testing.T, dir string) {
	t.Helper()
	entries := [][]string{
		{"Seed capital", "--date", "2024-01-02", "--debit", "1010", "--credit", "3010", "--amount", "1000.00"},
		{"Consulting invoice", "--date", "2024-01-15", "--debit", "1010", "--credit", "4010", "--amount", "400.00"},
		{"GitHub subscription", "--date", "2024-02-10", "--debit", "5020", "--credit", "1010", "--amount", "100.00"},
	}
	for _, e := range entries {
		args := append([]string{"add", e[0], "--repo", dir}, e[1:]...)
		out, err := runTallied(t, args...)
		require.NoError(t, err, "add failed: %s", out)
	}
}

func TestAddWritesJournal(t *testing.T) {
	dir := initRepo(t, "Test Biz")

	out, err := runTallied(t, "add", "Seed capital", "--repo", dir,
		"--date", "2024-01-02", "--debit", "1010", "--credit", "3010", "--amount", "1000.00")
	require.NoError(t, err, "add failed: %s", out)
	assert.Contains(t, out, "Recorded 2024-01-001")
}

func TestAddRejectsUnknownAccount(t *testing.T) {
	dir := initRepo(t, "Test Biz")

	_, err := runTallied(t, "add", "Bogus", "--repo", dir,
		"--date", "2024-01-02", "--debit", "9999", "--credit", "3010", "--amount", "10.00")
	require.Error(t, err)
}

func TestReportIncome(t *testing.T) {
	dir := initRepo(t, "Test Biz")
	seedEntries(t, dir)

	out, err := runTallied(t, "report", "income", "--repo", dir,
		"--from", "2024-01-01", "--to", "2024-02-29", "--granularity", "month")
	require.NoError(t, err, "report failed: %s", out)

	assert.Contains(t, out, "Jan 2024")
	assert.Contains(t, out, "Feb 2024")
	assert.Contains(t, out, "Service Revenue")
	assert.Contains(t, out, "400.00")
	assert.Contains(t, out, "Net Income")
	assert.Contains(t, out, "300.00")
}

func TestReportBalanceSheet(t *testing.T) {
	dir := initRepo(t, "Test Biz")
	seedEntries(t, dir)

	out, err := runTallied(t, "report", "balance-sheet", "--repo", dir,
		"--from", "2024-01-01", "--to", "2024-02-29", "--granularity", "total")
	require.NoError(t, err, "report failed: %s", out)

	assert.Contains(t, out, "Assets")
	assert.Contains(t, out, "1300.00")
	assert.Contains(t, out, "Total Liabilities & Equity")
	assert.NotContains(t, out, "WARNING")
}

func TestReportCashFlow(t *testing.T) {
	dir := initRepo(t, "Test Biz")
	seedEntries(t, dir)

	out, err := runTallied(t, "report", "cash-flow", "--repo", dir,
		"--from", "2024-01-01", "--to", "2024-02-29", "--granularity", "month")
	require.NoError(t, err, "report failed: %s", out)

	assert.Contains(t, out, "Beginning Cash")
	assert.Contains(t, out, "Operating Activities")
	assert.Contains(t, out, "Ending Cash")
	assert.Contains(t, out, "1300.00")
}

func TestReportPercentColumn(t *testing.T) {
	dir := initRepo(t, "Test Biz")
	seedEntries(t, dir)

	out, err := runTallied(t, "report", "income", "--repo", dir,
		"--from", "2024-01-01", "--to", "2024-02-29", "--granularity", "total", "--percent")
	require.NoError(t, err, "report failed: %s", out)
	assert.Contains(t, out, "25.0%")
}

func TestReportRejectsBadGranularity(t *testing.T) {
	dir := initRepo(t, "Test Biz")

	_, err := runTallied(t, "report", "income", "--repo", dir, "--granularity", "weekly")
	require.Error(t, err)
}

func TestImportListEmpty(t *testing.T) {
	dir := initRepo(t, "Test Biz")

	out, err := runTallied(t, "import", "list", "--repo", dir)
	require.NoError(t, err, "import list failed: %s", out)
	assert.Contains(t, out, "No files waiting")
}

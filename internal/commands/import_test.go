package commands_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chaseExport = `Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #
DEBIT,02/05/2024,GITHUB *PRO SUBSCRIPTION,-20.00,ACH_DEBIT,980.00,
DEBIT,02/12/2024,AWS HOSTING,-35.50,ACH_DEBIT,944.50,
`

func TestImportRun(t *testing.T) {
	dir := initRepo(t, "Test Biz")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "bank.csv"), []byte(chaseExport), 0o644))

	out, err := runTallied(t, "import", "run", "bank.csv", "--repo", dir, "--bank", "1010", "--offset", "5020")
	require.NoError(t, err, "import run failed: %s", out)
	assert.Contains(t, out, "Recorded 2024-02-001")
	assert.Contains(t, out, "Imported 2 transactions from bank.csv")

	// The file moves out of import/ once posted.
	out, err = runTallied(t, "import", "list", "--repo", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No files waiting")
	_, err = os.Stat(filepath.Join(dir, "import", "processed", "bank.csv"))
	require.NoError(t, err)

	// Both transactions land in the expense account.
	out, err = runTallied(t, "report", "income", "--repo", dir,
		"--from", "2024-02-01", "--to", "2024-02-29", "--granularity", "total")
	require.NoError(t, err, "report failed: %s", out)
	assert.Contains(t, out, "Software & SaaS")
	assert.Contains(t, out, "55.50")
}

func TestImportRunRequiresBankAccount(t *testing.T) {
	dir := initRepo(t, "Test Biz")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "bank.csv"), []byte(chaseExport), 0o644))

	_, err := runTallied(t, "import", "run", "bank.csv", "--repo", dir, "--offset", "5020")
	require.Error(t, err, "no bank account configured and no --bank flag")
}

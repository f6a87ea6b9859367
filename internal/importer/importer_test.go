package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chaseSample = `Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #
DEBIT,01/03/2024,GITHUB *PRO SUBSCRIPTION,-4.00,ACH_DEBIT,996.00,
DEBIT,01/05/2024,AWS BILLING,-87.50,ACH_DEBIT,908.50,
CREDIT,01/12/2024,ACME CONSULTING INVOICE 1042,3500.00,ACH_CREDIT,4408.50,
DEBIT,01/22/2024,DELTA AIR 0062341,-412.80,DEBIT_CARD,3995.70,
`

func TestChaseParserParse(t *testing.T) {
	p := &ChaseParser{}
	txns, err := p.Parse(strings.NewReader(chaseSample))
	require.NoError(t, err)
	require.Len(t, txns, 4)

	assert.Equal(t, "GITHUB *PRO SUBSCRIPTION", txns[0].Description)
	assert.Equal(t, "-4.00", txns[0].Amount.StringFixed(2))
	assert.Equal(t, "ACH_DEBIT", txns[0].Type)
	assert.Equal(t, 2024, txns[0].Date.Year())
	assert.Equal(t, 1, int(txns[0].Date.Month()))
	assert.Equal(t, 3, txns[0].Date.Day())

	assert.Equal(t, "ACME CONSULTING INVOICE 1042", txns[2].Description)
	assert.True(t, txns[2].Amount.IsPositive())
	assert.Equal(t, "3500.00", txns[2].Amount.StringFixed(2))
}

func TestChaseParserReference(t *testing.T) {
	p := &ChaseParser{}
	txns, err := p.Parse(strings.NewReader(chaseSample))
	require.NoError(t, err)
	assert.Equal(t, "chase_20240103_GITHUBPROS", txns[0].Reference)
}

func TestChaseParserHeaderOnly(t *testing.T) {
	p := &ChaseParser{}
	txns, err := p.Parse(strings.NewReader("Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #\n"))
	require.NoError(t, err)
	assert.Nil(t, txns)
}

func TestChaseParserBadDate(t *testing.T) {
	in := "Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #\nDEBIT,NOTADATE,desc,-4.00,ACH_DEBIT,100.00,\n"
	_, err := (&ChaseParser{}).Parse(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing date")
}

func TestChaseParserBadAmount(t *testing.T) {
	in := "Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #\nDEBIT,01/03/2024,desc,NOTANUMBER,ACH_DEBIT,100.00,\n"
	_, err := (&ChaseParser{}).Parse(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing amount")
}

func TestGenericParserParse(t *testing.T) {
	in := "Date,Description,Amount\n2024-02-10,OFFICE SUPPLY CO,-35.20\n2024-02-14,CLIENT PAYMENT,1200.00\n"
	p := &GenericParser{}
	txns, err := p.Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, txns, 2)

	assert.Equal(t, "OFFICE SUPPLY CO", txns[0].Description)
	assert.True(t, txns[0].Amount.IsNegative())
	assert.Equal(t, 10, txns[0].Date.Day())
	assert.Equal(t, "generic_20240214_CLIENTPAYM", txns[1].Reference)
	assert.True(t, txns[1].Amount.IsPositive())
}

func TestGenericParserBadDate(t *testing.T) {
	in := "Date,Description,Amount\n02/10/2024,desc,-1.00\n"
	_, err := (&GenericParser{}).Parse(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing date")
}

func TestRegistryGetUnknown(t *testing.T) {
	assert.Nil(t, NewRegistry().Get("nonexistent"))
}

func TestRegistryCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	r.Register(&ChaseParser{})
	assert.NotNil(t, r.Get("Chase"))
	assert.NotNil(t, r.Get("CHASE"))
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.NotNil(t, r.Get("chase"))
	assert.NotNil(t, r.Get("generic"))
	assert.Len(t, r.Formats(), 2)
}

func TestScanFindsCSVs(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(importDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "bank.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "notes.txt"), []byte("data"), 0o644))

	files, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "bank.csv", files[0].Name)
}

func TestScanIgnoresProcessedDir(t *testing.T) {
	dir := t.TempDir()
	processed := filepath.Join(dir, "import", "processed")
	require.NoError(t, os.MkdirAll(processed, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "new.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(processed, "old.csv"), []byte("data"), 0o644))

	files, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "new.csv", files[0].Name)
}

func TestScanMissingDir(t *testing.T) {
	files, err := Scan(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, files)
}

func TestMarkProcessed(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(importDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "bank.csv"), []byte("data"), 0o644))

	require.NoError(t, MarkProcessed(dir, "bank.csv"))

	_, err := os.Stat(filepath.Join(importDir, "bank.csv"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "import", "processed", "bank.csv"))
	assert.NoError(t, err)
}

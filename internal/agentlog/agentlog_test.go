package agentlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func testEntry() Entry {
	return Entry{
		Timestamp:  testTime,
		Agent:      "categorize",
		Action:     "journal_add_double",
		Details:    "Categorized GITHUB as Software & SaaS",
		EntryID:    "2024-03-007",
		CommitHash: "abc1234",
	}
}

func TestAppendNewFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "categorize", entries[0].Agent)
}

func TestAppendExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	e2 := testEntry()
	e2.Agent = "import"
	e2.Action = "importer_import"
	require.NoError(t, Append(dir, []Entry{e2}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "categorize", entries[0].Agent)
	assert.Equal(t, "import", entries[1].Agent)
}

func TestReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	original := testEntry()
	require.NoError(t, Append(dir, []Entry{original}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	assert.True(t, original.Timestamp.Equal(got.Timestamp))
	assert.Equal(t, original.Agent, got.Agent)
	assert.Equal(t, original.Action, got.Action)
	assert.Equal(t, original.Details, got.Details)
	assert.Equal(t, original.EntryID, got.EntryID)
	assert.Equal(t, original.CommitHash, got.CommitHash)
}

func TestReadNotFound(t *testing.T) {
	entries, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestReadHeaderOnly(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "logs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logs", "agent-log.csv"), []byte(Header+"\n"), 0o644))

	entries, err := Read(dir)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestUnmarshalEntryBadFieldCount(t *testing.T) {
	_, err := UnmarshalEntry([]string{"one", "two"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 6 fields")
}

func TestTimestampFormat(t *testing.T) {
	row := MarshalEntry(testEntry())
	assert.Equal(t, "2024-03-15T10:30:00Z", row[0])
}

func TestAppendCreatesLogsDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	info, err := os.Stat(filepath.Join(dir, "logs"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

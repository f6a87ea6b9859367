package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatEntryID(t *testing.T) {
	assert.Equal(t, "2024-01-001", FormatEntryID(2024, 1, 1))
	assert.Equal(t, "2024-12-099", FormatEntryID(2024, 12, 99))
	assert.Equal(t, "2024-03-123", FormatEntryID(2024, 3, 123))
}

func TestFormatLegID(t *testing.T) {
	assert.Equal(t, "2024-03-007a", FormatLegID("2024-03-007", 0))
	assert.Equal(t, "2024-03-007b", FormatLegID("2024-03-007", 1))
	assert.Equal(t, "2024-03-007c", FormatLegID("2024-03-007", 2))
}

func TestParseEntryID(t *testing.T) {
	tests := []struct {
		input            string
		year, month, seq int
	}{
		{"2024-01-001", 2024, 1, 1},
		{"2024-12-099", 2024, 12, 99},
		{"2024-03-007a", 2024, 3, 7},
		{"2024-03-007b", 2024, 3, 7},
	}
	for _, tt := range tests {
		year, month, seq, err := ParseEntryID(tt.input)
		require.NoError(t, err, "input: %s", tt.input)
		assert.Equal(t, tt.year, year)
		assert.Equal(t, tt.month, month)
		assert.Equal(t, tt.seq, seq)
	}
}

func TestParseEntryIDErrors(t *testing.T) {
	for _, input := range []string{"", "not-valid", "2024-01", "xxxx-01-001"} {
		_, _, _, err := ParseEntryID(input)
		assert.Error(t, err, "input: %q", input)
	}
}

func TestEntryGroup(t *testing.T) {
	assert.Equal(t, "2024-03-007", EntryGroup("2024-03-007a"))
	assert.Equal(t, "2024-03-007", EntryGroup("2024-03-007b"))
	assert.Equal(t, "2024-03-007", EntryGroup("2024-03-007"))
	assert.Equal(t, "", EntryGroup(""))
}

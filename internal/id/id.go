// Package id defines the journal entry identifier scheme. Entries are
// numbered per month ("2024-03-007") and each leg of an entry carries a
// letter suffix ("2024-03-007a").
package id

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatEntryID returns an entry ID like "2024-03-007".
func FormatEntryID(year, month, seq int) string {
	return fmt.Sprintf("%04d-%02d-%03d", year, month, seq)
}

// FormatLegID appends the leg suffix: leg 0 is 'a', leg 1 is 'b', and so on.
func FormatLegID(entryID string, leg int) string {
	return entryID + string(rune('a'+leg))
}

// ParseEntryID splits an entry or leg ID into year, month and sequence.
func ParseEntryID(s string) (year, month, seq int, err error) {
	parts := strings.SplitN(EntryGroup(s), "-", 3)
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid entry ID format: %q", s)
	}
	if year, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid year in entry ID %q: %w", s, err)
	}
	if month, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid month in entry ID %q: %w", s, err)
	}
	if seq, err = strconv.Atoi(parts[2]); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid sequence in entry ID %q: %w", s, err)
	}
	return year, month, seq, nil
}

// EntryGroup strips the trailing leg letters from a leg ID, so both legs
// of "2024-03-007" group under the same key.
func EntryGroup(legID string) string {
	i := len(legID)
	for i > 0 && legID[i-1] >= 'a' && legID[i-1] <= 'z' {
		i--
	}
	return legID[:i]
}

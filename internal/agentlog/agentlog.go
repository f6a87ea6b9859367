// Package agentlog records every action the assistant takes against the
// books in an append-only CSV audit trail under logs/.
package agentlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Entry is one row in the audit trail.
type Entry struct {
	Timestamp  time.Time
	Agent      string
	Action     string
	Details    string
	EntryID    string
	CommitHash string
}

// Header is the CSV header for agent-log.csv.
const Header = "timestamp,agent,action,details,entry_id,commit_hash"

const numFields = 6

func logPath(repoRoot string) string {
	return filepath.Join(repoRoot, "logs", "agent-log.csv")
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	return []string{
		e.Timestamp.Format(time.RFC3339),
		e.Agent,
		e.Action,
		e.Details,
		e.EntryID,
		e.CommitHash,
	}
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	ts, err := time.Parse(time.RFC3339, record[0])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[0], err)
	}
	return Entry{
		Timestamp:  ts,
		Agent:      record[1],
		Action:     record[2],
		Details:    record[3],
		EntryID:    record[4],
		CommitHash: record[5],
	}, nil
}

// Append writes entries to <repoRoot>/logs/agent-log.csv, creating the
// file and header if needed.
func Append(repoRoot string, entries []Entry) error {
	path := logPath(repoRoot)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening agent log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	return cw.Error()
}

// Read returns all entries from <repoRoot>/logs/agent-log.csv, oldest
// first. A missing file reads as empty.
func Read(repoRoot string) ([]Entry, error) {
	f, err := os.Open(logPath(repoRoot))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening agent log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading agent log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

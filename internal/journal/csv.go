package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallied-dev/tallied/internal/model"
)

// Header is the CSV header for journal.csv.
const Header = "entry_id,date,account_id,description,debit,credit,counterparty,reference,source,confidence,status,tags,notes"

const (
	numFields  = 13
	dateFormat = "2006-01-02"
	colEntryID = 0
	colDate    = 1
	colAcctID  = 2
	colDesc    = 3
	colDebit   = 4
	colCredit  = 5
	colCparty  = 6
	colRef     = 7
	colSource  = 8
	colConf    = 9
	colStatus  = 10
	colTags    = 11
	colNotes   = 12
)

// ReadPostings reads all postings from a journal.csv reader.
func ReadPostings(r io.Reader) ([]model.Posting, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading journal CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var postings []model.Posting
	for i, rec := range records[1:] {
		p, err := UnmarshalPosting(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		postings = append(postings, p)
	}
	return postings, nil
}

// WritePostings writes postings to a journal.csv writer (including header).
func WritePostings(w io.Writer, postings []model.Posting) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, p := range postings {
		if err := cw.Write(MarshalPosting(p)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// AppendPostings appends postings to an existing journal.csv writer (no header).
func AppendPostings(w io.Writer, postings []model.Posting) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	for i, p := range postings {
		if err := cw.Write(MarshalPosting(p)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	return cw.Error()
}

// MarshalPosting converts a Posting to a CSV row ([]string).
func MarshalPosting(p model.Posting) []string {
	row := make([]string, numFields)
	row[colEntryID] = p.EntryID
	row[colDate] = p.Date.Format(dateFormat)
	row[colAcctID] = strconv.Itoa(p.AccountID)
	row[colDesc] = p.Description

	if !p.Debit.IsZero() {
		row[colDebit] = p.Debit.StringFixed(2)
	}
	if !p.Credit.IsZero() {
		row[colCredit] = p.Credit.StringFixed(2)
	}

	row[colCparty] = p.Counterparty
	row[colRef] = p.Reference
	row[colSource] = string(p.Source)

	if !p.Confidence.IsZero() {
		row[colConf] = p.Confidence.String()
	}

	row[colStatus] = string(p.Status)
	row[colTags] = p.Tags
	row[colNotes] = p.Notes
	return row
}

// UnmarshalPosting converts a CSV row to a Posting.
func UnmarshalPosting(record []string) (model.Posting, error) {
	if len(record) != numFields {
		return model.Posting{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return model.Posting{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	acctID, err := strconv.Atoi(record[colAcctID])
	if err != nil {
		return model.Posting{}, fmt.Errorf("parsing account_id %q: %w", record[colAcctID], err)
	}

	debit, err := parseAmount(record[colDebit])
	if err != nil {
		return model.Posting{}, fmt.Errorf("parsing debit %q: %w", record[colDebit], err)
	}

	credit, err := parseAmount(record[colCredit])
	if err != nil {
		return model.Posting{}, fmt.Errorf("parsing credit %q: %w", record[colCredit], err)
	}

	conf, err := parseAmount(record[colConf])
	if err != nil {
		return model.Posting{}, fmt.Errorf("parsing confidence %q: %w", record[colConf], err)
	}

	return model.Posting{
		EntryID:      record[colEntryID],
		Date:         date,
		AccountID:    acctID,
		Description:  record[colDesc],
		Debit:        debit,
		Credit:       credit,
		Counterparty: record[colCparty],
		Reference:    record[colRef],
		Source:       model.PostingSource(record[colSource]),
		Confidence:   conf,
		Status:       model.PostingStatus(record[colStatus]),
		Tags:         record[colTags],
		Notes:        record[colNotes],
	}, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

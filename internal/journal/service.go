package journal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallied-dev/tallied/internal/id"
	"github.com/tallied-dev/tallied/internal/model"
)

// Service provides business logic for journal entries.
type Service struct {
	repoRoot string
	accounts AccountChecker
}

// NewService creates a journal Service.
func NewService(repoRoot string, accounts AccountChecker) *Service {
	return &Service{repoRoot: repoRoot, accounts: accounts}
}

// AddDoubleParams holds parameters for creating a double-entry journal entry.
type AddDoubleParams struct {
	Date          time.Time
	Description   string
	DebitAccount  int
	CreditAccount int
	Amount        decimal.Decimal
	Counterparty  string
	Reference     string
	Source        model.PostingSource
	Confidence    decimal.Decimal
	Status        model.PostingStatus
	Tags          string
	Notes         string
}

// AddDouble creates a balanced double-entry (debit + credit postings),
// validates, and appends to the month's journal.csv. Returns the entry ID.
func (s *Service) AddDouble(params AddDoubleParams) (string, error) {
	year := params.Date.Year()
	month := int(params.Date.Month())

	seq, err := s.NextEntrySeq(year, month)
	if err != nil {
		return "", err
	}

	entryID := id.FormatEntryID(year, month, seq)
	debitID := id.FormatLegID(entryID, 0)
	creditID := id.FormatLegID(entryID, 1)

	source := params.Source
	if source == "" {
		source = model.SourceManual
	}

	newPostings := []model.Posting{
		{
			EntryID:      debitID,
			Date:         params.Date,
			AccountID:    params.DebitAccount,
			Description:  params.Description,
			Debit:        params.Amount,
			Counterparty: params.Counterparty,
			Reference:    params.Reference,
			Source:       source,
			Confidence:   params.Confidence,
			Status:       params.Status,
			Tags:         params.Tags,
			Notes:        params.Notes,
		},
		{
			EntryID:      creditID,
			Date:         params.Date,
			AccountID:    params.CreditAccount,
			Description:  params.Description,
			Credit:       params.Amount,
			Counterparty: params.Counterparty,
			Reference:    params.Reference,
			Source:       source,
			Confidence:   params.Confidence,
			Status:       params.Status,
			Tags:         params.Tags,
			Notes:        params.Notes,
		},
	}

	// Read existing postings for validation.
	existing, err := s.ReadMonth(year, month)
	if err != nil {
		return "", err
	}

	// Validate ALL postings together.
	all := append(existing, newPostings...)
	if verrs := ValidatePostings(all, s.accounts, year, month); len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, ve := range verrs {
			msgs[i] = ve.Error()
		}
		return "", fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
	}

	// Append to journal file (create dir + header if new).
	journalPath := s.monthPath(year, month)
	dir := filepath.Dir(journalPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating journal dir: %w", err)
	}

	isNew := false
	if _, err := os.Stat(journalPath); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(journalPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return "", fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return "", fmt.Errorf("writing header: %w", err)
		}
	}

	if err := AppendPostings(f, newPostings); err != nil {
		return "", fmt.Errorf("appending postings: %w", err)
	}

	return entryID, nil
}

// ReadMonth reads all postings for a given year/month.
func (s *Service) ReadMonth(year, month int) ([]model.Posting, error) {
	path := s.monthPath(year, month)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	defer f.Close()

	postings, err := ReadPostings(f)
	if err != nil {
		return nil, fmt.Errorf("reading journal %s: %w", path, err)
	}
	return postings, nil
}

// ReadAll reads every posting in the repository, in chronological month order.
func (s *Service) ReadAll() ([]model.Posting, error) {
	months, err := s.listMonths()
	if err != nil {
		return nil, err
	}

	var all []model.Posting
	for _, m := range months {
		postings, err := s.ReadMonth(m.year, m.month)
		if err != nil {
			return nil, err
		}
		all = append(all, postings...)
	}
	return all, nil
}

// ReadThrough reads every posting dated on or before end. Reports need
// postings from all history before the nominal range start (retained
// earnings, beginning cash), so this is the snapshot loader for reporting.
func (s *Service) ReadThrough(end time.Time) ([]model.Posting, error) {
	months, err := s.listMonths()
	if err != nil {
		return nil, err
	}

	var all []model.Posting
	for _, m := range months {
		if m.year > end.Year() || (m.year == end.Year() && m.month > int(end.Month())) {
			continue
		}
		postings, err := s.ReadMonth(m.year, m.month)
		if err != nil {
			return nil, err
		}
		for _, p := range postings {
			if !p.Date.After(end) {
				all = append(all, p)
			}
		}
	}
	return all, nil
}

// HasPostings reports whether any posting references the account. Chart
// deletion checks this so history never points at a missing account.
func (s *Service) HasPostings(accountID int) (bool, error) {
	all, err := s.ReadAll()
	if err != nil {
		return false, err
	}
	for _, p := range all {
		if p.AccountID == accountID {
			return true, nil
		}
	}
	return false, nil
}

// NextEntrySeq returns the next available sequence number for a month.
func (s *Service) NextEntrySeq(year, month int) (int, error) {
	postings, err := s.ReadMonth(year, month)
	if err != nil {
		return 0, err
	}

	maxSeq := 0
	for _, p := range postings {
		_, _, seq, err := id.ParseEntryID(p.EntryID)
		if err != nil {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq + 1, nil
}

type monthDir struct {
	year  int
	month int
}

var yearDirPattern = regexp.MustCompile(`^\d{4}$`)

// listMonths finds every YYYY/MM directory containing a journal.csv.
func (s *Service) listMonths() ([]monthDir, error) {
	entries, err := os.ReadDir(s.repoRoot)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading repo root: %w", err)
	}

	var months []monthDir
	for _, e := range entries {
		if !e.IsDir() || !yearDirPattern.MatchString(e.Name()) {
			continue
		}
		year, _ := strconv.Atoi(e.Name())

		monthEntries, err := os.ReadDir(filepath.Join(s.repoRoot, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading year dir %s: %w", e.Name(), err)
		}
		for _, me := range monthEntries {
			if !me.IsDir() {
				continue
			}
			month, err := strconv.Atoi(me.Name())
			if err != nil || month < 1 || month > 12 {
				continue
			}
			if _, err := os.Stat(s.monthPath(year, month)); err == nil {
				months = append(months, monthDir{year: year, month: month})
			}
		}
	}

	sort.Slice(months, func(i, j int) bool {
		if months[i].year != months[j].year {
			return months[i].year < months[j].year
		}
		return months[i].month < months[j].month
	})
	return months, nil
}

func (s *Service) monthPath(year, month int) string {
	return filepath.Join(s.repoRoot, fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month), "journal.csv")
}

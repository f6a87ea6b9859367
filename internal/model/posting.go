package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PostingStatus represents the lifecycle state of a journal posting.
type PostingStatus string

const (
	StatusAutoConfirmed      PostingStatus = "auto-confirmed"
	StatusPendingReview      PostingStatus = "pending-review"
	StatusUserConfirmed      PostingStatus = "user-confirmed"
	StatusUserCorrected      PostingStatus = "user-corrected"
	StatusVoided             PostingStatus = "voided"
	StatusBootstrapConfirmed PostingStatus = "bootstrap-confirmed"
)

// PostingSource records where a posting came from.
type PostingSource string

const (
	// SourceLedger marks postings produced from an imported bank feed.
	SourceLedger PostingSource = "ledger"
	// SourceManual marks postings entered by hand or by an agent.
	SourceManual PostingSource = "manual"
)

// Posting is a single row in journal.csv: one side of a double-entry.
// Exactly one of Debit/Credit is non-zero, and both are non-negative.
type Posting struct {
	EntryID      string // "YYYY-MM-NNNx" where x = a,b,c...
	Date         time.Time
	AccountID    int
	Description  string
	Debit        decimal.Decimal // zero if credit side
	Credit       decimal.Decimal // zero if debit side
	Counterparty string
	Reference    string
	Source       PostingSource
	Confidence   decimal.Decimal
	Status       PostingStatus
	Tags         string // semicolon-separated
	Notes        string
}

// EntryGroup returns the base entry ID (without leg suffix).
// "2024-01-001a" -> "2024-01-001"
func (p Posting) EntryGroup() string {
	id := p.EntryID
	i := len(id)
	for i > 0 && id[i-1] >= 'a' && id[i-1] <= 'z' {
		i--
	}
	return id[:i]
}

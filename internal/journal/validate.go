package journal

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tallied-dev/tallied/internal/id"
	"github.com/tallied-dev/tallied/internal/model"
)

// ValidationError describes a single invariant violation.
type ValidationError struct {
	Invariant   int
	EntryID     string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invariant %d [%s]: %s", e.Invariant, e.EntryID, e.Description)
}

// AccountChecker tests whether an account ID exists in the chart of accounts.
type AccountChecker interface {
	Exists(id int) bool
}

// ValidatePostings enforces 6 invariants on a set of journal postings for a
// given month.
func ValidatePostings(postings []model.Posting, accounts AccountChecker, year, month int) []ValidationError {
	var errs []ValidationError

	// Group postings by entry.
	groups := make(map[string][]model.Posting)
	var groupOrder []string
	for _, p := range postings {
		g := p.EntryGroup()
		if _, seen := groups[g]; !seen {
			groupOrder = append(groupOrder, g)
		}
		groups[g] = append(groups[g], p)
	}

	// Invariant 1: Entry groups balance (sum(debits) == sum(credits) per group).
	for _, g := range groupOrder {
		totalDebit := decimal.Zero
		totalCredit := decimal.Zero
		for _, p := range groups[g] {
			totalDebit = totalDebit.Add(p.Debit)
			totalCredit = totalCredit.Add(p.Credit)
		}
		if !totalDebit.Equal(totalCredit) {
			errs = append(errs, ValidationError{
				Invariant:   1,
				EntryID:     g,
				Description: fmt.Sprintf("debits (%s) != credits (%s)", totalDebit.StringFixed(2), totalCredit.StringFixed(2)),
			})
		}
	}

	for _, p := range postings {
		// Invariant 2: Exactly one of debit/credit per row.
		hasDebit := !p.Debit.IsZero()
		hasCredit := !p.Credit.IsZero()
		if hasDebit == hasCredit {
			errs = append(errs, ValidationError{
				Invariant:   2,
				EntryID:     p.EntryID,
				Description: "posting must have exactly one of debit or credit",
			})
		}

		// Invariant 3: Valid account references.
		if !accounts.Exists(p.AccountID) {
			errs = append(errs, ValidationError{
				Invariant:   3,
				EntryID:     p.EntryID,
				Description: fmt.Sprintf("unknown account %d", p.AccountID),
			})
		}

		// Invariant 4: Date within month.
		if p.Date.Year() != year || int(p.Date.Month()) != month {
			errs = append(errs, ValidationError{
				Invariant:   4,
				EntryID:     p.EntryID,
				Description: fmt.Sprintf("date %s not in %04d-%02d", p.Date.Format("2006-01-02"), year, month),
			})
		}

		// Invariant 6: Exact decimals — no more than 2 decimal places.
		two := decimal.NewFromInt(100)
		if !p.Debit.IsZero() && !p.Debit.Mul(two).Equal(p.Debit.Mul(two).Floor()) {
			errs = append(errs, ValidationError{
				Invariant:   6,
				EntryID:     p.EntryID,
				Description: fmt.Sprintf("debit %s has more than 2 decimal places", p.Debit),
			})
		}
		if !p.Credit.IsZero() && !p.Credit.Mul(two).Equal(p.Credit.Mul(two).Floor()) {
			errs = append(errs, ValidationError{
				Invariant:   6,
				EntryID:     p.EntryID,
				Description: fmt.Sprintf("credit %s has more than 2 decimal places", p.Credit),
			})
		}
	}

	// Invariant 5: Unique sequential IDs — no duplicates, contiguous 1..N.
	seqSeen := make(map[int]bool)
	for _, p := range postings {
		_, _, seq, err := id.ParseEntryID(p.EntryID)
		if err != nil {
			errs = append(errs, ValidationError{
				Invariant:   5,
				EntryID:     p.EntryID,
				Description: fmt.Sprintf("invalid entry ID: %v", err),
			})
			continue
		}
		seqSeen[seq] = true
	}
	if len(seqSeen) > 0 {
		for i := 1; i <= len(seqSeen); i++ {
			if !seqSeen[i] {
				errs = append(errs, ValidationError{
					Invariant:   5,
					EntryID:     fmt.Sprintf("seq %d", i),
					Description: fmt.Sprintf("missing sequence %d in 1..%d", i, len(seqSeen)),
				})
			}
		}
	}

	return errs
}

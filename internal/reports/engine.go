package reports

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallied-dev/tallied/internal/accounts"
	"github.com/tallied-dev/tallied/internal/model"
)

// significanceThreshold is the absolute balance below which an account with
// no postings anywhere in its subtree is suppressed from rendered reports.
var significanceThreshold = decimal.RequireFromString("0.01")

// Engine computes per-account balances over an immutable snapshot of the
// chart of accounts and the ledger. It is a pure, synchronous computation:
// construct one Engine per snapshot, query it freely, and discard it when
// the chart or ledger changes. The internal memo never outlives the Engine.
type Engine struct {
	chart     *accounts.Service
	byAccount map[int][]model.Posting
	memo      map[memoKey]decimal.Decimal
}

type memoKey struct {
	accountID int
	start     time.Time
	end       time.Time
	rolledUp  bool
}

// NewEngine builds an Engine over a chart and a ledger snapshot. The
// postings slice should contain everything dated on or before the latest
// date any query will touch; postings before a report's nominal start are
// required for retained earnings and beginning cash.
func NewEngine(chart *accounts.Service, postings []model.Posting) *Engine {
	byAccount := make(map[int][]model.Posting)
	for _, p := range postings {
		byAccount[p.AccountID] = append(byAccount[p.AccountID], p)
	}
	return &Engine{
		chart:     chart,
		byAccount: byAccount,
		memo:      make(map[memoKey]decimal.Decimal),
	}
}

// Chart returns the account snapshot the engine was built over.
func (e *Engine) Chart() *accounts.Service { return e.chart }

// EarliestPostingDay returns the calendar day of the oldest posting in the
// snapshot. The second return is false for an empty ledger.
func (e *Engine) EarliestPostingDay() (time.Time, bool) {
	var earliest time.Time
	for _, postings := range e.byAccount {
		for _, p := range postings {
			d := normalizeDay(p.Date)
			if earliest.IsZero() || d.Before(earliest) {
				earliest = d
			}
		}
	}
	return earliest, !earliest.IsZero()
}

// DirectBalance sums the signed amounts of an account's own postings inside
// the range, excluding descendants.
func (e *Engine) DirectBalance(accountID int, r DateRange) (decimal.Decimal, error) {
	key := memoKey{accountID: accountID, start: r.Start, end: r.End}
	if v, ok := e.memo[key]; ok {
		return v, nil
	}

	acct, ok := e.chart.Get(accountID)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("reports: account %d not in snapshot", accountID)
	}

	sum := decimal.Zero
	if !r.Inverted() {
		for _, p := range e.byAccount[accountID] {
			if !r.Contains(p.Date) {
				continue
			}
			amt, err := SignedAmount(acct.Type, p.Debit, p.Credit)
			if err != nil {
				return decimal.Decimal{}, fmt.Errorf("account %d (%s): %w", acct.ID, acct.Name, err)
			}
			sum = sum.Add(amt)
		}
	}

	e.memo[key] = sum
	return sum, nil
}

// RolledUpBalance sums an account's direct balance plus the rolled-up
// balances of all its children, post-order. Summation is decimal and
// order-independent, so re-running yields identical results. A cycle in the
// parent graph fails the whole subtree with accounts.ErrCycle instead of
// silently truncating, which would understate the total.
func (e *Engine) RolledUpBalance(accountID int, r DateRange) (decimal.Decimal, error) {
	return e.rolledUp(accountID, r, make(map[int]struct{}))
}

func (e *Engine) rolledUp(accountID int, r DateRange, visited map[int]struct{}) (decimal.Decimal, error) {
	if _, seen := visited[accountID]; seen {
		return decimal.Decimal{}, fmt.Errorf("%w: account %d revisited", accounts.ErrCycle, accountID)
	}
	visited[accountID] = struct{}{}

	key := memoKey{accountID: accountID, start: r.Start, end: r.End, rolledUp: true}
	if v, ok := e.memo[key]; ok {
		return v, nil
	}

	sum, err := e.DirectBalance(accountID, r)
	if err != nil {
		return decimal.Decimal{}, err
	}
	for _, child := range e.chart.ChildrenOf(accountID) {
		childSum, err := e.rolledUp(child.ID, r, visited)
		if err != nil {
			return decimal.Decimal{}, err
		}
		sum = sum.Add(childSum)
	}

	e.memo[key] = sum
	return sum, nil
}

// EffectiveBalance returns the figure a parent row displays: rolled-up when
// the account is collapsed, direct when expanded (children render their own
// rows, so a rolled-up parent figure would double-count).
func (e *Engine) EffectiveBalance(accountID int, r DateRange, state CollapseState) (decimal.Decimal, error) {
	if state.Collapsed(accountID) {
		return e.RolledUpBalance(accountID, r)
	}
	return e.DirectBalance(accountID, r)
}

// HasAnyPostings reports whether the account or any descendant has at least
// one posting, at any date.
func (e *Engine) HasAnyPostings(accountID int) (bool, error) {
	ids, err := e.chart.DescendantIDs(accountID)
	if err != nil {
		return false, err
	}
	for id := range ids {
		if len(e.byAccount[id]) > 0 {
			return true, nil
		}
	}
	return false, nil
}

// IsSignificant reports whether a rendered report keeps the account's row.
// Accounts with a near-zero direct and rolled-up balance and no postings
// anywhere in their subtree are suppressed. This is a presentation policy;
// the engine only answers the query.
func (e *Engine) IsSignificant(accountID int, r DateRange) (bool, error) {
	rolled, err := e.RolledUpBalance(accountID, r)
	if err != nil {
		return false, err
	}
	if rolled.Abs().GreaterThanOrEqual(significanceThreshold) {
		return true, nil
	}
	direct, err := e.DirectBalance(accountID, r)
	if err != nil {
		return false, err
	}
	if direct.Abs().GreaterThanOrEqual(significanceThreshold) {
		return true, nil
	}
	return e.HasAnyPostings(accountID)
}

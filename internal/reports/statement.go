package reports

import (
	"github.com/shopspring/decimal"

	"github.com/tallied-dev/tallied/internal/model"
)

// Line is one row of a statement. Account rows carry the account ID;
// synthetic rows (Net Income, Retained Earnings) carry a stable Key instead.
// PerPeriod and Total hold the effective figure (rolled-up when collapsed,
// direct when expanded); Direct and RolledUp are both exposed so rendering
// and export collaborators can pick either.
type Line struct {
	AccountID int
	Key       string
	Label     string
	Depth     int
	Direct    decimal.Decimal
	RolledUp  decimal.Decimal
	PerPeriod []decimal.Decimal
	Total     decimal.Decimal
}

// Section groups the lines of one statement area with per-period and
// range totals. Totals are computed from rolled-up balances of the
// section's top-level accounts, so collapse state never changes them.
type Section struct {
	Label     string
	Lines     []Line
	PerPeriod []decimal.Decimal
	Total     decimal.Decimal
}

// boundRange resolves an open-start range against the ledger before a
// statement partitions it. Partitioning walks calendar buckets from Start,
// so an unbounded start must land on the earliest posting's day rather than
// year 1. An empty ledger collapses to the single end day.
func boundRange(e *Engine, r DateRange) DateRange {
	if !r.Start.IsZero() {
		return r
	}
	if earliest, ok := e.EarliestPostingDay(); ok && !earliest.After(r.End) {
		r.Start = earliest
	} else {
		r.Start = r.End
	}
	return r
}

// assembler carries the shared context of one statement build: the engine
// snapshot, the requested range, its period buckets, and the collapse state.
type assembler struct {
	e         *Engine
	r         DateRange
	periods   []Period
	collapsed CollapseState

	// asOf switches period cells from range deltas to cumulative
	// balances through each period's end (balance-sheet semantics).
	asOf bool
}

// valueRange maps a period to the range its cells aggregate over.
func (a *assembler) valueRange(p Period) DateRange {
	if a.asOf {
		return DateRange{End: p.End}
	}
	return p.Range()
}

// totalRange maps the whole request to the range the Total column uses.
func (a *assembler) totalRange() DateRange {
	if a.asOf {
		return DateRange{End: a.r.End}
	}
	return a.r
}

// section assembles one statement section from the top-level accounts of
// the given types, emitting the account tree under each per collapse state
// and suppressing insignificant rows.
func (a *assembler) section(label string, types ...model.AccountType) (Section, error) {
	sec := Section{
		Label:     label,
		PerPeriod: zeros(len(a.periods)),
		Total:     decimal.Zero,
	}

	for _, acct := range a.e.Chart().TopLevelByType(types...) {
		significant, err := a.e.IsSignificant(acct.ID, a.totalRange())
		if err != nil {
			return Section{}, err
		}
		if !significant {
			continue
		}

		lines, err := a.accountLines(acct, 0)
		if err != nil {
			return Section{}, err
		}
		sec.Lines = append(sec.Lines, lines...)

		// Section totals always use rolled-up figures: collapse state
		// must not change what a section sums to.
		for i, p := range a.periods {
			v, err := a.e.RolledUpBalance(acct.ID, a.valueRange(p))
			if err != nil {
				return Section{}, err
			}
			sec.PerPeriod[i] = sec.PerPeriod[i].Add(v)
		}
		total, err := a.e.RolledUpBalance(acct.ID, a.totalRange())
		if err != nil {
			return Section{}, err
		}
		sec.Total = sec.Total.Add(total)
	}

	return sec, nil
}

// accountLines emits the row for one account and, when expanded, the rows
// of its children below it.
func (a *assembler) accountLines(acct model.Account, depth int) ([]Line, error) {
	children := a.e.Chart().ChildrenOf(acct.ID)
	collapsed := a.collapsed.Collapsed(acct.ID)

	line := Line{
		AccountID: acct.ID,
		Label:     acct.Name,
		Depth:     depth,
		PerPeriod: make([]decimal.Decimal, len(a.periods)),
	}

	var err error
	if line.Direct, err = a.e.DirectBalance(acct.ID, a.totalRange()); err != nil {
		return nil, err
	}
	if line.RolledUp, err = a.e.RolledUpBalance(acct.ID, a.totalRange()); err != nil {
		return nil, err
	}
	line.Total = line.Direct
	if collapsed || len(children) == 0 {
		line.Total = line.RolledUp
	}

	for i, p := range a.periods {
		pr := a.valueRange(p)
		if collapsed || len(children) == 0 {
			line.PerPeriod[i], err = a.e.RolledUpBalance(acct.ID, pr)
		} else {
			line.PerPeriod[i], err = a.e.DirectBalance(acct.ID, pr)
		}
		if err != nil {
			return nil, err
		}
	}

	lines := []Line{line}
	if collapsed {
		return lines, nil
	}

	for _, child := range children {
		significant, err := a.e.IsSignificant(child.ID, a.totalRange())
		if err != nil {
			return nil, err
		}
		if !significant {
			continue
		}
		childLines, err := a.accountLines(child, depth+1)
		if err != nil {
			return nil, err
		}
		lines = append(lines, childLines...)
	}
	return lines, nil
}

// syntheticLine builds a computed row like Net Income or Retained Earnings.
func syntheticLine(key, label string, perPeriod []decimal.Decimal, total decimal.Decimal) Line {
	return Line{
		Key:       key,
		Label:     label,
		Direct:    total,
		RolledUp:  total,
		PerPeriod: perPeriod,
		Total:     total,
	}
}

func zeros(n int) []decimal.Decimal {
	z := make([]decimal.Decimal, n)
	for i := range z {
		z[i] = decimal.Zero
	}
	return z
}

// addAll returns element-wise a+b; the slices must be the same length.
func addAll(a, b []decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(a))
	for i := range a {
		out[i] = a[i].Add(b[i])
	}
	return out
}

// subAll returns element-wise a−b; the slices must be the same length.
func subAll(a, b []decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(a))
	for i := range a {
		out[i] = a[i].Sub(b[i])
	}
	return out
}

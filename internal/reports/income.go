package reports

import (
	"github.com/shopspring/decimal"

	"github.com/tallied-dev/tallied/internal/model"
)

// IncomeStatement reports Revenue − COGS − Expenses = Net Income per period
// and for the whole range.
type IncomeStatement struct {
	Periods  []Period
	Revenue  Section
	COGS     Section
	Expenses Section

	NetIncome      []decimal.Decimal
	NetIncomeTotal decimal.Decimal
}

// BuildIncomeStatement assembles the income statement for a range at the
// given granularity. An inverted range yields zero periods and zero totals.
func BuildIncomeStatement(e *Engine, r DateRange, g Granularity, collapsed CollapseState) (*IncomeStatement, error) {
	r = boundRange(e, r)
	a := &assembler{e: e, r: r, periods: Partition(r, g), collapsed: collapsed}

	revenue, err := a.section("Revenue", model.AccountTypeRevenue)
	if err != nil {
		return nil, err
	}
	cogs, err := a.section("Cost of Goods Sold", model.AccountTypeCOGS)
	if err != nil {
		return nil, err
	}
	expenses, err := a.section("Expenses", model.AccountTypeExpense)
	if err != nil {
		return nil, err
	}

	return &IncomeStatement{
		Periods:        a.periods,
		Revenue:        revenue,
		COGS:           cogs,
		Expenses:       expenses,
		NetIncome:      subAll(subAll(revenue.PerPeriod, cogs.PerPeriod), expenses.PerPeriod),
		NetIncomeTotal: revenue.Total.Sub(cogs.Total).Sub(expenses.Total),
	}, nil
}

// NetIncomeOver computes net income (revenue − cogs − expenses) over an
// arbitrary range. Balance sheet retained earnings and cash flow operating
// changes are both defined in terms of this.
func NetIncomeOver(e *Engine, r DateRange) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, spec := range []struct {
		t        model.AccountType
		negative bool
	}{
		{model.AccountTypeRevenue, false},
		{model.AccountTypeCOGS, true},
		{model.AccountTypeExpense, true},
	} {
		for _, acct := range e.Chart().TopLevelByType(spec.t) {
			v, err := e.RolledUpBalance(acct.ID, r)
			if err != nil {
				return decimal.Decimal{}, err
			}
			if spec.negative {
				total = total.Sub(v)
			} else {
				total = total.Add(v)
			}
		}
	}
	return total, nil
}

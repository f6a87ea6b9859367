package reports

import (
	"github.com/shopspring/decimal"

	"github.com/tallied-dev/tallied/internal/model"
)

// BalanceSheet reports assets, liabilities, and equity as cumulative
// balances through each period's end. The equity section carries two
// synthetic rows: Retained Earnings (net income over all history strictly
// before the range start) and Net Income (net income inside the displayed
// range through each period's end).
type BalanceSheet struct {
	Periods     []Period
	Assets      Section
	Liabilities Section
	Equity      Section

	RetainedEarnings Line

	TotalLiabilitiesAndEquity      []decimal.Decimal
	TotalLiabilitiesAndEquityTotal decimal.Decimal

	// Balanced is the reconciliation check: TotalAssets equals
	// TotalLiabilities + TotalEquity + RetainedEarnings within rounding
	// tolerance for every period. A failure indicates a sign-convention
	// or scope bug in the engine, not a data problem.
	Balanced bool
}

// BuildBalanceSheet assembles the balance sheet for a range at the given
// granularity.
func BuildBalanceSheet(e *Engine, r DateRange, g Granularity, collapsed CollapseState) (*BalanceSheet, error) {
	r = boundRange(e, r)
	a := &assembler{e: e, r: r, periods: Partition(r, g), collapsed: collapsed, asOf: true}

	assets, err := a.section("Assets", model.AccountTypeAsset, model.AccountTypeBank)
	if err != nil {
		return nil, err
	}
	liabilities, err := a.section("Liabilities", model.AccountTypeLiability, model.AccountTypeCreditCard)
	if err != nil {
		return nil, err
	}
	equity, err := a.section("Equity", model.AccountTypeEquity)
	if err != nil {
		return nil, err
	}

	// Retained earnings: cumulative net income strictly before the range
	// start, constant across periods.
	retained := decimal.Zero
	if !r.Start.IsZero() {
		retained, err = NetIncomeOver(e, AllBefore(r.Start))
		if err != nil {
			return nil, err
		}
	}
	retainedPerPeriod := make([]decimal.Decimal, len(a.periods))
	for i := range retainedPerPeriod {
		retainedPerPeriod[i] = retained
	}
	retainedLine := syntheticLine("retained-earnings", "Retained Earnings", retainedPerPeriod, retained)

	// Net income inside the displayed range, cumulative through each
	// period's end so columns reconcile independently.
	netIncome := make([]decimal.Decimal, len(a.periods))
	for i, p := range a.periods {
		netIncome[i], err = NetIncomeOver(e, DateRange{Start: r.Start, End: p.End})
		if err != nil {
			return nil, err
		}
	}
	netIncomeTotal, err := NetIncomeOver(e, r)
	if err != nil {
		return nil, err
	}
	netIncomeLine := syntheticLine("net-income", "Net Income", netIncome, netIncomeTotal)

	equity.Lines = append(equity.Lines, netIncomeLine)
	equity.PerPeriod = addAll(equity.PerPeriod, netIncome)
	equity.Total = equity.Total.Add(netIncomeTotal)

	bs := &BalanceSheet{
		Periods:          a.periods,
		Assets:           assets,
		Liabilities:      liabilities,
		Equity:           equity,
		RetainedEarnings: retainedLine,

		TotalLiabilitiesAndEquity:      addAll(addAll(liabilities.PerPeriod, equity.PerPeriod), retainedPerPeriod),
		TotalLiabilitiesAndEquityTotal: liabilities.Total.Add(equity.Total).Add(retained),
	}
	bs.Balanced = bs.reconciles()
	return bs, nil
}

// reconciles checks the accounting identity per period and for the total.
func (bs *BalanceSheet) reconciles() bool {
	for i := range bs.Periods {
		if bs.Assets.PerPeriod[i].Sub(bs.TotalLiabilitiesAndEquity[i]).Abs().GreaterThanOrEqual(significanceThreshold) {
			return false
		}
	}
	return bs.Assets.Total.Sub(bs.TotalLiabilitiesAndEquityTotal).Abs().LessThan(significanceThreshold)
}

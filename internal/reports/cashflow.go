package reports

import (
	"github.com/shopspring/decimal"

	"github.com/tallied-dev/tallied/internal/model"
)

// CashFlow is the indirect-method cash flow statement:
//
//	EndingCash = BeginningCash + Operating + Investing + Financing
//
// per period, where Operating is net income, Investing is the negated net
// increase in non-bank asset accounts, and Financing is the net increase in
// liability and credit-card accounts plus the signed equity change.
// Beginning cash for the first period is the bank-account balance from all
// history before the range start; each later period chains from the prior
// period's ending cash, never independently recomputed from the ledger.
type CashFlow struct {
	Periods []Period

	BeginningCash []decimal.Decimal
	Operating     Section
	Investing     Section
	Financing     Section
	NetChange     []decimal.Decimal
	EndingCash    []decimal.Decimal

	BeginningCashTotal decimal.Decimal
	NetChangeTotal     decimal.Decimal
	EndingCashTotal    decimal.Decimal
}

// BuildCashFlow assembles the cash flow statement for a range at the given
// granularity.
func BuildCashFlow(e *Engine, r DateRange, g Granularity, collapsed CollapseState) (*CashFlow, error) {
	r = boundRange(e, r)
	a := &assembler{e: e, r: r, periods: Partition(r, g), collapsed: collapsed}
	n := len(a.periods)

	// Operating: net income per period.
	opPerPeriod := make([]decimal.Decimal, n)
	var err error
	for i, p := range a.periods {
		opPerPeriod[i], err = NetIncomeOver(e, p.Range())
		if err != nil {
			return nil, err
		}
	}
	opTotal, err := NetIncomeOver(e, r)
	if err != nil {
		return nil, err
	}
	operating := Section{
		Label:     "Operating Activities",
		Lines:     []Line{syntheticLine("net-income", "Net Income", opPerPeriod, opTotal)},
		PerPeriod: opPerPeriod,
		Total:     opTotal,
	}

	// Investing: money moved into non-bank assets leaves cash, so the net
	// increase is negated.
	investing, err := a.section("Investing Activities", model.AccountTypeAsset)
	if err != nil {
		return nil, err
	}
	negateSection(&investing)

	// Financing: liability and credit-card increases bring cash in;
	// equity credits net of debits (e.g. owner draws) complete the section.
	financing, err := a.section("Financing Activities", model.AccountTypeLiability, model.AccountTypeCreditCard, model.AccountTypeEquity)
	if err != nil {
		return nil, err
	}

	cf := &CashFlow{
		Periods:       a.periods,
		BeginningCash: make([]decimal.Decimal, n),
		Operating:     operating,
		Investing:     investing,
		Financing:     financing,
		NetChange:     make([]decimal.Decimal, n),
		EndingCash:    make([]decimal.Decimal, n),
	}

	// Opening position: every bank account rolled up over all history
	// strictly before the range start.
	opening := decimal.Zero
	if !r.Start.IsZero() {
		for _, acct := range e.Chart().TopLevelByType(model.AccountTypeBank) {
			v, err := e.RolledUpBalance(acct.ID, AllBefore(r.Start))
			if err != nil {
				return nil, err
			}
			opening = opening.Add(v)
		}
	}

	running := opening
	for i := range a.periods {
		cf.BeginningCash[i] = running
		cf.NetChange[i] = operating.PerPeriod[i].Add(investing.PerPeriod[i]).Add(financing.PerPeriod[i])
		running = running.Add(cf.NetChange[i])
		cf.EndingCash[i] = running
	}

	cf.BeginningCashTotal = opening
	cf.NetChangeTotal = operating.Total.Add(investing.Total).Add(financing.Total)
	cf.EndingCashTotal = opening.Add(cf.NetChangeTotal)
	return cf, nil
}

// negateSection flips the sign of every figure in a section in place.
func negateSection(sec *Section) {
	for i := range sec.Lines {
		l := &sec.Lines[i]
		l.Direct = l.Direct.Neg()
		l.RolledUp = l.RolledUp.Neg()
		l.Total = l.Total.Neg()
		for j := range l.PerPeriod {
			l.PerPeriod[j] = l.PerPeriod[j].Neg()
		}
	}
	for i := range sec.PerPeriod {
		sec.PerPeriod[i] = sec.PerPeriod[i].Neg()
	}
	sec.Total = sec.Total.Neg()
}

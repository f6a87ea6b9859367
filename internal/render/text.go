package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/tallied-dev/tallied/internal/reports"
)

// Options controls statement rendering.
type Options struct {
	// Percent appends a percentage column against the statement's base
	// figure (income statement: revenue; cash flow: net financing change;
	// balance sheet: each amount against itself).
	Percent bool
}

// IncomeStatement writes a plain-text income statement table.
func IncomeStatement(w io.Writer, is *reports.IncomeStatement, opts Options) error {
	tw := newTable(w)
	writeHeader(tw, "Income Statement", is.Periods, opts)

	base := &is.Revenue.Total
	writeSection(tw, is.Revenue, base, opts)
	writeSection(tw, is.COGS, base, opts)
	writeSection(tw, is.Expenses, base, opts)
	writeTotalRow(tw, "Net Income", is.NetIncome, is.NetIncomeTotal, base, opts)

	return tw.Flush()
}

// BalanceSheet writes a plain-text balance sheet table.
func BalanceSheet(w io.Writer, bs *reports.BalanceSheet, opts Options) error {
	tw := newTable(w)
	writeHeader(tw, "Balance Sheet", bs.Periods, opts)

	// Balance-sheet percentages read each amount against itself.
	writeSection(tw, bs.Assets, nil, opts)
	writeSection(tw, bs.Liabilities, nil, opts)
	writeSection(tw, bs.Equity, nil, opts)
	writeLine(tw, bs.RetainedEarnings, nil, opts)
	writeTotalRow(tw, "Total Liabilities & Equity", bs.TotalLiabilitiesAndEquity, bs.TotalLiabilitiesAndEquityTotal, nil, opts)

	if !bs.Balanced {
		fmt.Fprintln(tw, "WARNING: balance sheet does not reconcile")
	}
	return tw.Flush()
}

// CashFlow writes a plain-text cash flow statement table.
func CashFlow(w io.Writer, cf *reports.CashFlow, opts Options) error {
	tw := newTable(w)
	writeHeader(tw, "Cash Flow", cf.Periods, opts)

	base := &cf.Financing.Total
	writeTotalRow(tw, "Beginning Cash", cf.BeginningCash, cf.BeginningCashTotal, base, opts)
	writeSection(tw, cf.Operating, base, opts)
	writeSection(tw, cf.Investing, base, opts)
	writeSection(tw, cf.Financing, base, opts)
	writeTotalRow(tw, "Net Change", cf.NetChange, cf.NetChangeTotal, base, opts)
	writeTotalRow(tw, "Ending Cash", cf.EndingCash, cf.EndingCashTotal, base, opts)

	return tw.Flush()
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func writeHeader(tw *tabwriter.Writer, title string, periods []reports.Period, opts Options) {
	cols := []string{title}
	for _, p := range periods {
		cols = append(cols, p.Label)
	}
	cols = append(cols, "Total")
	if opts.Percent {
		cols = append(cols, "%")
	}
	fmt.Fprintln(tw, strings.Join(cols, "\t"))
}

func writeSection(tw *tabwriter.Writer, sec reports.Section, base *decimal.Decimal, opts Options) {
	fmt.Fprintln(tw, sec.Label)
	for _, line := range sec.Lines {
		writeLine(tw, line, base, opts)
	}
	writeTotalRow(tw, "Total "+sec.Label, sec.PerPeriod, sec.Total, base, opts)
}

func writeLine(tw *tabwriter.Writer, line reports.Line, base *decimal.Decimal, opts Options) {
	cols := []string{strings.Repeat("  ", line.Depth+1) + line.Label}
	for _, v := range line.PerPeriod {
		cols = append(cols, v.StringFixed(2))
	}
	cols = append(cols, line.Total.StringFixed(2))
	if opts.Percent {
		cols = append(cols, percentOf(line.Total, base))
	}
	fmt.Fprintln(tw, strings.Join(cols, "\t"))
}

func writeTotalRow(tw *tabwriter.Writer, label string, perPeriod []decimal.Decimal, total decimal.Decimal, base *decimal.Decimal, opts Options) {
	cols := []string{label}
	for _, v := range perPeriod {
		cols = append(cols, v.StringFixed(2))
	}
	cols = append(cols, total.StringFixed(2))
	if opts.Percent {
		cols = append(cols, percentOf(total, base))
	}
	fmt.Fprintln(tw, strings.Join(cols, "\t"))
}

// percentOf applies the balance-sheet rule when base is nil: an amount
// against itself is always 100%.
func percentOf(amount decimal.Decimal, base *decimal.Decimal) string {
	if base == nil {
		return FormatPercent(amount, amount)
	}
	return FormatPercent(amount, *base)
}

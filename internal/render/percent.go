package render

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// FormatPercent renders an amount as a percentage of a statement-specific
// base figure, one decimal place. Which base applies is the statement's
// choice (income statement: revenue or net income; cash flow: net financing
// change; balance sheet: the amount itself); the engine only hands over raw
// decimals. A zero base has no meaningful percentage.
func FormatPercent(amount, base decimal.Decimal) string {
	if base.IsZero() {
		return "n/a"
	}
	return amount.Div(base).Mul(hundred).StringFixed(1) + "%"
}

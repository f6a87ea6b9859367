package reports

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallied-dev/tallied/internal/accounts"
	"github.com/tallied-dev/tallied/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testChart() *accounts.Service {
	return accounts.NewService([]model.Account{
		{ID: 1010, Name: "Business Checking", Type: model.AccountTypeBank},
		{ID: 1510, Name: "Equipment", Type: model.AccountTypeAsset},
		{ID: 2010, Name: "Business Credit Card", Type: model.AccountTypeCreditCard},
		{ID: 2510, Name: "Loans Payable", Type: model.AccountTypeLiability},
		{ID: 3010, Name: "Owner's Equity", Type: model.AccountTypeEquity},
		{ID: 4010, Name: "Sales", Type: model.AccountTypeRevenue},
		{ID: 4510, Name: "Cost of Goods Sold", Type: model.AccountTypeCOGS},
		{ID: 5000, Name: "Travel", Type: model.AccountTypeExpense},
		{ID: 5010, Name: "Taxis", Type: model.AccountTypeExpense, ParentID: 5000},
	})
}

// entry builds the two postings of one balanced double-entry.
func entry(seq int, date time.Time, debitAcct, creditAcct int, amount string) []model.Posting {
	base := fmt.Sprintf("%04d-%02d-%03d", date.Year(), int(date.Month()), seq)
	amt := dec(amount)
	return []model.Posting{
		{EntryID: base + "a", Date: date, AccountID: debitAcct, Debit: amt, Source: model.SourceManual, Status: model.StatusUserConfirmed},
		{EntryID: base + "b", Date: date, AccountID: creditAcct, Credit: amt, Source: model.SourceManual, Status: model.StatusUserConfirmed},
	}
}

// testLedger is a balanced posting set spanning December 2023 through
// March 2024, touching every account type.
func testLedger() []model.Posting {
	var ps []model.Posting
	add := func(seq int, d time.Time, debit, credit int, amount string) {
		ps = append(ps, entry(seq, d, debit, credit, amount)...)
	}

	// Pre-range history.
	add(1, Day(2023, 12, 1), 1010, 3010, "1000.00")  // owner contribution
	add(2, Day(2023, 12, 15), 1010, 4010, "500.00")  // sale

	// Reporting range.
	add(1, Day(2024, 1, 15), 1010, 4010, "100.00")   // sale
	add(2, Day(2024, 1, 20), 5010, 1010, "50.00")    // taxi
	add(1, Day(2024, 2, 3), 4010, 1010, "20.00")     // refund
	add(2, Day(2024, 2, 10), 1510, 1010, "200.00")   // equipment purchase
	add(3, Day(2024, 2, 20), 5000, 2010, "30.00")    // travel on credit card
	add(1, Day(2024, 3, 5), 1010, 2510, "400.00")    // loan received
	add(2, Day(2024, 3, 15), 3010, 1010, "150.00")   // owner draw
	add(3, Day(2024, 3, 20), 4510, 2010, "60.00")    // cost of goods

	return ps
}

func testEngine() *Engine {
	return NewEngine(testChart(), testLedger())
}

func q1Range() DateRange {
	return NewDateRange(Day(2024, 1, 1), Day(2024, 3, 31))
}

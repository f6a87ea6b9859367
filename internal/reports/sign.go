package reports

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tallied-dev/tallied/internal/model"
)

// ErrUnknownAccountType indicates an account whose type has no entry in the
// sign-convention table. Such accounts never default to a zero or positive
// sign: a silently wrong sign inverts every total that includes it.
var ErrUnknownAccountType = errors.New("reports: unknown account type")

// SignedAmount turns a posting's debit/credit pair into a signed amount
// under the normal-balance convention for the account type. This table is
// the single source of truth for signs; no other component derives them.
//
//	credit-normal (credit − debit): revenue, liability, equity, credit_card
//	debit-normal  (debit − credit): cogs, expense, asset, bank_account
func SignedAmount(t model.AccountType, debit, credit decimal.Decimal) (decimal.Decimal, error) {
	switch t {
	case model.AccountTypeRevenue,
		model.AccountTypeLiability,
		model.AccountTypeEquity,
		model.AccountTypeCreditCard:
		return credit.Sub(debit), nil
	case model.AccountTypeCOGS,
		model.AccountTypeExpense,
		model.AccountTypeAsset,
		model.AccountTypeBank:
		return debit.Sub(credit), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrUnknownAccountType, t)
	}
}

package model

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeRevenue    AccountType = "revenue"
	AccountTypeCOGS       AccountType = "cogs"
	AccountTypeExpense    AccountType = "expense"
	AccountTypeAsset      AccountType = "asset"
	AccountTypeLiability  AccountType = "liability"
	AccountTypeEquity     AccountType = "equity"
	AccountTypeBank       AccountType = "bank_account"
	AccountTypeCreditCard AccountType = "credit_card"
)

// AccountTypes lists every known account type.
var AccountTypes = []AccountType{
	AccountTypeRevenue,
	AccountTypeCOGS,
	AccountTypeExpense,
	AccountTypeAsset,
	AccountTypeLiability,
	AccountTypeEquity,
	AccountTypeBank,
	AccountTypeCreditCard,
}

// KnownAccountType reports whether t is one of the defined account types.
func KnownAccountType(t AccountType) bool {
	for _, k := range AccountTypes {
		if t == k {
			return true
		}
	}
	return false
}

// Account represents a row in chart-of-accounts.csv. ParentID of 0 means
// the account is top-level.
type Account struct {
	ID          int
	Name        string
	Type        AccountType
	ParentID    int
	TaxLine     string
	Description string
}

// TopLevel reports whether the account has no parent.
func (a Account) TopLevel() bool { return a.ParentID == 0 }

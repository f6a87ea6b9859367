package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallied-dev/tallied/internal/model"
)

// GenericParser handles the lowest common denominator most banks can
// export: a three-column Date,Description,Amount CSV with ISO dates and
// signed amounts (negative = money out).
type GenericParser struct{}

const genericNumFields = 3

// Format returns the parser name.
func (p *GenericParser) Format() string { return "generic" }

// Parse reads a Date,Description,Amount CSV and returns BankTransactions.
func (p *GenericParser) Parse(r io.Reader) ([]model.BankTransaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = genericNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading generic CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var txns []model.BankTransaction
	for i, rec := range records[1:] {
		date, err := time.Parse("2006-01-02", rec[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing date %q: %w", i+2, rec[0], err)
		}
		amount, err := decimal.NewFromString(rec[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing amount %q: %w", i+2, rec[2], err)
		}
		txns = append(txns, model.BankTransaction{
			Date:        date,
			Description: rec[1],
			Amount:      amount,
			Reference:   referenceFor("generic", date.Format("20060102"), rec[1]),
		})
	}
	return txns, nil
}

package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallied-dev/tallied/internal/model"
)

// ChaseParser parses Chase checking CSV exports
// (Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #).
type ChaseParser struct{}

const (
	chaseDateFormat = "01/02/2006"
	chaseNumFields  = 7
)

// Format returns the parser name.
func (p *ChaseParser) Format() string { return "chase" }

// Parse reads a Chase CSV and returns BankTransactions.
func (p *ChaseParser) Parse(r io.Reader) ([]model.BankTransaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = chaseNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading chase CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var txns []model.BankTransaction
	for i, rec := range records[1:] {
		date, err := time.Parse(chaseDateFormat, rec[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing date %q: %w", i+2, rec[1], err)
		}
		amount, err := decimal.NewFromString(rec[3])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing amount %q: %w", i+2, rec[3], err)
		}
		txns = append(txns, model.BankTransaction{
			Date:        date,
			Description: rec[2],
			Amount:      amount,
			Reference:   referenceFor("chase", date.Format("20060102"), rec[2]),
			Type:        rec[4],
		})
	}
	return txns, nil
}

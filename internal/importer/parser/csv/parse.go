package csvparser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/finbook/backend/internal/importer"
	"github.com/finbook/backend/internal/importer/helpers"
	"github.com/finbook/backend/internal/models"
	"github.com/finbook/backend/internal/types"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// Parse parses a CSV file of transfers for the period.
//
// The expected columns are date, category, entity, note, income, expense.
// Exactly one of income and expense must be set per line.
func Parse(f io.Reader, period models.Period) ([]importer.TransferPreview, error) {
	reader := csv.NewReader(f)

	// We can reuse the array in the background to improve performance
	reader.ReuseRecord = true

	var transfers []importer.TransferPreview

	// Skip the first line
	_, err := reader.Read()
	if err == io.EOF {
		return []importer.TransferPreview{}, nil
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return csvReadError(reader, fmt.Errorf("could not read line in CSV: %w", err))
		}

		date, err := types.ParseDate(record[Date])
		if err != nil {
			return csvReadError(reader, fmt.Errorf("could not parse date: %w", err))
		}

		t := importer.TransferPreview{
			Transfer: models.Transfer{
				Date:       date,
				Note:       strings.TrimSpace(record[Note]),
				PeriodID:   period.ID,
				ImportHash: helpers.Sha256String(strings.Join(record, ",")),
			},
			CategoryName: norm.NFC.String(strings.TrimSpace(record[Category])),
			EntityName:   norm.NFC.String(strings.TrimSpace(record[Entity])),
		}

		// Set the transfer type from the income and expense columns
		if record[Income] != "" && record[Expense] != "" {
			return csvReadError(reader, errors.New("both income and expense are set for the transfer"))
		} else if record[Income] == "" && record[Expense] == "" {
			return csvReadError(reader, errors.New("no amount is set for the transfer"))
		} else if record[Income] != "" {
			t.Transfer.Type = models.TransferTypeIncome

			value, err := decimal.NewFromString(record[Income])
			if err != nil {
				return csvReadError(reader, errors.New("income could not be parsed to a decimal"))
			}

			t.Transfer.Value = value
		} else {
			t.Transfer.Type = models.TransferTypeExpense

			value, err := decimal.NewFromString(record[Expense])
			if err != nil {
				return csvReadError(reader, errors.New("expense could not be parsed to a decimal"))
			}

			t.Transfer.Value = value
		}

		if !t.Transfer.Value.IsPositive() {
			return csvReadError(reader, errors.New("the amount for a transfer must be positive"))
		}

		if !t.Transfer.Date.InRange(period.StartDate, period.EndDate) {
			return csvReadError(reader, fmt.Errorf("date %s is not within the period", t.Transfer.Date))
		}

		transfers = append(transfers, t)
	}

	return transfers, nil
}

// csvReadError returns the an error with the format string, including the line of the input
// the error occurred in in the message.
func csvReadError(r *csv.Reader, err error) ([]importer.TransferPreview, error) {
	// always use the first field, we are only interested in the line
	line, _ := r.FieldPos(1)

	return []importer.TransferPreview{}, fmt.Errorf("error in line %d of the CSV: %w", line, err)
}

package models

import (
	"strings"

	"github.com/finbook/backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransferType determines the direction of a transfer. Incomes add to
// the deposit balance, expenses subtract from it.
type TransferType string

const (
	TransferTypeIncome  TransferType = "INCOME"
	TransferTypeExpense TransferType = "EXPENSE"
)

// Transfer is a single booked movement of money. The wallet ID is
// derived from the period on save so that transfers can be scoped to a
// wallet without joining.
type Transfer struct {
	DefaultModel
	WalletID   uuid.UUID
	Type       TransferType
	Name       string
	Date       types.Date
	Value      decimal.Decimal `gorm:"type:DECIMAL(20,8);check:value_positive,value > 0"`
	Note       string
	PeriodID   uuid.UUID
	Period     Period `json:"-"`
	DepositID  uuid.UUID
	Deposit    Deposit `json:"-"`
	CategoryID uuid.UUID
	Category   Category `json:"-"`
	EntityID   *uuid.UUID
	Entity     *Entity `json:"-"`

	// ImportHash is the SHA256 hash of the CSV line the transfer was
	// imported from. It is used to detect duplicate imports.
	ImportHash string
}

// BeforeSave trims whitespace from string fields.
func (t *Transfer) BeforeSave(_ *gorm.DB) error {
	t.Name = strings.TrimSpace(t.Name)
	t.Note = strings.TrimSpace(t.Note)

	return nil
}

func (t *Transfer) BeforeCreate(tx *gorm.DB) error {
	_ = t.DefaultModel.BeforeCreate(tx)

	period, err := t.checkIntegrity(tx, *t)
	if err != nil {
		return err
	}

	// The wallet is derived from the period so that transfers can be
	// scoped to a wallet without joining
	t.WalletID = period.WalletID

	return nil
}

// BeforeUpdate validates the state the transfer is updated to. During
// updates, the receiver holds the stored values, so the checks run
// against the destination of the statement. The wallet never changes on
// updates since all references are checked against the period's wallet.
func (t *Transfer) BeforeUpdate(tx *gorm.DB) error {
	switch updated := tx.Statement.Dest.(type) {
	case Transfer:
		_, err := t.checkIntegrity(tx, updated)
		return err
	case *Transfer:
		_, err := t.checkIntegrity(tx, *updated)
		return err
	}

	// Column updates carry no full transfer, there is nothing to check
	return nil
}

// checkIntegrity validates the references of the transfer.
//
//   - the deposit, category and the optional entity must belong to the
//     same wallet as the period
//   - the date must lie within the period
//   - the category type must match the transfer type
func (t *Transfer) checkIntegrity(tx *gorm.DB, toSave Transfer) (Period, error) {
	var period Period
	err := tx.First(&period, "id = ?", toSave.PeriodID).Error
	if err != nil {
		return Period{}, err
	}

	if !toSave.Date.InRange(period.StartDate, period.EndDate) {
		return Period{}, ErrTransferDateOutOfPeriod
	}

	var deposit Deposit
	err = tx.First(&deposit, "id = ?", toSave.DepositID).Error
	if err != nil {
		return Period{}, err
	}

	if deposit.WalletID != period.WalletID {
		return Period{}, ErrWalletMismatch
	}

	var category Category
	err = tx.First(&category, "id = ?", toSave.CategoryID).Error
	if err != nil {
		return Period{}, err
	}

	if category.WalletID != period.WalletID {
		return Period{}, ErrWalletMismatch
	}

	if CategoryType(toSave.Type) != category.Type {
		return Period{}, ErrCategoryTypeMismatch
	}

	if toSave.EntityID != nil {
		var entity Entity
		err = tx.First(&entity, "id = ?", toSave.EntityID).Error
		if err != nil {
			return Period{}, err
		}

		if entity.WalletID != period.WalletID {
			return Period{}, ErrWalletMismatch
		}
	}

	return period, nil
}

// AfterSave keeps the stored balance of the deposit in sync. It runs
// inside the transaction of the triggering write, so the transfer and
// the balance are updated atomically.
func (t *Transfer) AfterSave(tx *gorm.DB) error {
	return RecalculateBalance(tx, t.DepositID)
}

func (t *Transfer) AfterDelete(tx *gorm.DB) error {
	return RecalculateBalance(tx, t.DepositID)
}

// PeriodSums returns the sum of all income and all expense transfers of
// the period.
func PeriodSums(db *gorm.DB, periodID uuid.UUID) (income, expense decimal.Decimal, err error) {
	for typ, target := range map[TransferType]*decimal.Decimal{
		TransferTypeIncome:  &income,
		TransferTypeExpense: &expense,
	} {
		var sum decimal.NullDecimal
		err = db.Model(&Transfer{}).
			Where(Transfer{PeriodID: periodID, Type: typ}, "PeriodID", "Type").
			Select("SUM(value)").
			Scan(&sum).Error
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}

		*target = sum.Decimal
	}

	return income, expense, nil
}

// CategoryExpenseSum returns the sum of all expense transfers of the
// period booked against the category.
func CategoryExpenseSum(db *gorm.DB, periodID, categoryID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal

	err := db.Model(&Transfer{}).
		Where(Transfer{PeriodID: periodID, CategoryID: categoryID, Type: TransferTypeExpense}, "PeriodID", "CategoryID", "Type").
		Select("SUM(value)").
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}

	return sum.Decimal, nil
}

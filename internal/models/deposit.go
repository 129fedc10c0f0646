package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DepositType describes what kind of money store a deposit is.
type DepositType string

const (
	DepositTypePersonal    DepositType = "PERSONAL"
	DepositTypeCommon      DepositType = "COMMON"
	DepositTypeReserves    DepositType = "RESERVES"
	DepositTypeInvestments DepositType = "INVESTMENTS"
	DepositTypeSavings     DepositType = "SAVINGS"
)

// Deposit represents a place money is kept, e.g. a bank account or a
// cash box. Its balance is the signed sum of all transfers booked
// against it and is maintained by the transfer hooks.
type Deposit struct {
	DefaultModel
	WalletID uuid.UUID `gorm:"uniqueIndex:deposit_wallet_name"`
	Wallet   Wallet    `json:"-"`
	Name     string    `gorm:"uniqueIndex:deposit_wallet_name"`
	Note     string
	Type     DepositType `gorm:"default:PERSONAL"`
	Archived bool
	Balance  decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
}

// BeforeSave trims whitespace and defaults the deposit type.
func (d *Deposit) BeforeSave(_ *gorm.DB) error {
	d.Name = strings.TrimSpace(d.Name)
	d.Note = strings.TrimSpace(d.Note)

	if d.Type == "" {
		d.Type = DepositTypePersonal
	}

	return nil
}

func (d *Deposit) BeforeCreate(tx *gorm.DB) error {
	_ = d.DefaultModel.BeforeCreate(tx)

	return d.checkType(*d)
}

// BeforeUpdate validates the state the deposit is updated to. During
// updates, the receiver holds the stored values, so the check runs
// against the destination of the statement. Column updates, e.g. the
// balance recalculation, carry no full deposit and are not checked.
func (d *Deposit) BeforeUpdate(tx *gorm.DB) error {
	switch updated := tx.Statement.Dest.(type) {
	case Deposit:
		return d.checkType(updated)
	case *Deposit:
		return d.checkType(*updated)
	}

	return nil
}

func (d *Deposit) checkType(toSave Deposit) error {
	switch toSave.Type {
	case DepositTypePersonal, DepositTypeCommon, DepositTypeReserves, DepositTypeInvestments, DepositTypeSavings:
		return nil
	}

	return fmt.Errorf("%w: %s", ErrDepositTypeInvalid, toSave.Type)
}

// BeforeDelete rejects the delete while transfers reference the deposit.
func (d *Deposit) BeforeDelete(tx *gorm.DB) error {
	var count int64
	err := tx.Model(&Transfer{}).Where(Transfer{DepositID: d.ID}, "DepositID").Count(&count).Error
	if err != nil {
		return err
	}

	if count > 0 {
		return ErrDepositReferenced
	}

	return nil
}

// RecalculateBalance recomputes the stored balance of the deposit from
// its transfers and persists it. Incomes count positive, expenses
// negative.
func RecalculateBalance(tx *gorm.DB, depositID uuid.UUID) error {
	var balance decimal.NullDecimal

	err := tx.Model(&Transfer{}).
		Where(Transfer{DepositID: depositID}, "DepositID").
		Select("SUM(CASE WHEN type = ? THEN value ELSE -value END)", TransferTypeIncome).
		Scan(&balance).Error
	if err != nil {
		return err
	}

	return tx.Model(&Deposit{}).
		Where("id = ?", depositID).
		Update("balance", balance.Decimal).Error
}

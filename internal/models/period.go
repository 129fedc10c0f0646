package models

import (
	"strings"

	"github.com/finbook/backend/internal/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Period is a date range for which transfers are aggregated and
// predictions are made.
type Period struct {
	DefaultModel
	WalletID  uuid.UUID `gorm:"uniqueIndex:period_wallet_name"`
	Wallet    Wallet    `json:"-"`
	Name      string    `gorm:"uniqueIndex:period_wallet_name"`
	StartDate types.Date
	EndDate   types.Date
	Active    bool
}

// BeforeSave trims whitespace from string fields.
func (p *Period) BeforeSave(_ *gorm.DB) error {
	p.Name = strings.TrimSpace(p.Name)

	return nil
}

func (p *Period) BeforeCreate(tx *gorm.DB) error {
	_ = p.DefaultModel.BeforeCreate(tx)

	return p.checkIntegrity(tx, *p)
}

// BeforeUpdate validates the state the period is updated to. During
// updates, the receiver holds the stored values, so the checks run
// against the destination of the statement.
func (p *Period) BeforeUpdate(tx *gorm.DB) error {
	switch updated := tx.Statement.Dest.(type) {
	case Period:
		return p.checkIntegrity(tx, updated)
	case *Period:
		return p.checkIntegrity(tx, *updated)
	}

	// Column updates carry no full period, there is nothing to check
	return nil
}

// checkIntegrity validates the date range of the period.
//
//   - the start date must be before the end date
//   - the range must not overlap with any other period of the wallet,
//     ranges are treated as closed intervals
//   - at most one period per wallet can be active
func (p *Period) checkIntegrity(tx *gorm.DB, toSave Period) error {
	if !toSave.StartDate.Before(toSave.EndDate) {
		return ErrPeriodDatesInvalid
	}

	var count int64
	err := tx.Model(&Period{}).
		Where("wallet_id = ?", toSave.WalletID).
		Where("id != ?", toSave.ID).
		Where("start_date <= ? AND end_date >= ?", toSave.EndDate, toSave.StartDate).
		Count(&count).Error
	if err != nil {
		return err
	}

	if count > 0 {
		return ErrPeriodOverlaps
	}

	if toSave.Active {
		err = tx.Model(&Period{}).
			Where(Period{WalletID: toSave.WalletID, Active: true}, "WalletID", "Active").
			Where("id != ?", toSave.ID).
			Count(&count).Error
		if err != nil {
			return err
		}

		if count > 0 {
			return ErrPeriodActiveExists
		}
	}

	return nil
}

// BeforeDelete rejects the delete while transfers reference the period
// and removes the predictions made for it.
func (p *Period) BeforeDelete(tx *gorm.DB) error {
	var count int64
	err := tx.Model(&Transfer{}).Where(Transfer{PeriodID: p.ID}, "PeriodID").Count(&count).Error
	if err != nil {
		return err
	}

	if count > 0 {
		return ErrPeriodReferenced
	}

	return tx.Where("period_id = ?", p.ID).Delete(&ExpensePrediction{}).Error
}

package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ExpensePrediction is the amount of money expected to be spent on a
// category during a period. At most one prediction can exist per
// period and category.
type ExpensePrediction struct {
	DefaultModel
	PeriodID   uuid.UUID `gorm:"uniqueIndex:prediction_period_category"`
	Period     Period    `json:"-"`
	CategoryID uuid.UUID `gorm:"uniqueIndex:prediction_period_category"`
	Category   Category  `json:"-"`
	Value      decimal.Decimal `gorm:"type:DECIMAL(20,8);check:value_positive,value > 0"`
	Note       string
}

func (p *ExpensePrediction) BeforeCreate(tx *gorm.DB) error {
	_ = p.DefaultModel.BeforeCreate(tx)

	return p.checkIntegrity(tx, *p)
}

// BeforeUpdate validates the state the prediction is updated to. During
// updates, the receiver holds the stored values, so the checks run
// against the destination of the statement.
func (p *ExpensePrediction) BeforeUpdate(tx *gorm.DB) error {
	switch updated := tx.Statement.Dest.(type) {
	case ExpensePrediction:
		return p.checkIntegrity(tx, updated)
	case *ExpensePrediction:
		return p.checkIntegrity(tx, *updated)
	}

	// Column updates carry no full prediction, there is nothing to check
	return nil
}

// checkIntegrity verifies that the category is an expense category and
// belongs to the same wallet as the period.
func (p *ExpensePrediction) checkIntegrity(tx *gorm.DB, toSave ExpensePrediction) error {
	var category Category
	err := tx.First(&category, "id = ?", toSave.CategoryID).Error
	if err != nil {
		return err
	}

	if category.Type != CategoryTypeExpense {
		return ErrPredictionCategoryNotExpense
	}

	var period Period
	err = tx.First(&period, "id = ?", toSave.PeriodID).Error
	if err != nil {
		return err
	}

	if category.WalletID != period.WalletID {
		return ErrWalletMismatch
	}

	return nil
}

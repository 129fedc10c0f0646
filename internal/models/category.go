package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoryType determines whether a category classifies incomes or
// expenses. A category is always exactly one of the two.
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "INCOME"
	CategoryTypeExpense CategoryType = "EXPENSE"
)

// Category classifies transfers within a wallet.
type Category struct {
	DefaultModel
	WalletID uuid.UUID `gorm:"uniqueIndex:category_wallet_type_name"`
	Wallet   Wallet    `json:"-"`
	Name     string    `gorm:"uniqueIndex:category_wallet_type_name"`
	Note     string
	Type     CategoryType `gorm:"uniqueIndex:category_wallet_type_name"`
	Archived bool
}

// BeforeSave trims whitespace from string fields.
func (c *Category) BeforeSave(_ *gorm.DB) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Note = strings.TrimSpace(c.Note)

	return nil
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	_ = c.DefaultModel.BeforeCreate(tx)

	return c.checkType(*c)
}

// BeforeUpdate validates the state the category is updated to. During
// updates, the receiver holds the stored values, so the check runs
// against the destination of the statement.
func (c *Category) BeforeUpdate(tx *gorm.DB) error {
	switch updated := tx.Statement.Dest.(type) {
	case Category:
		return c.checkType(updated)
	case *Category:
		return c.checkType(*updated)
	}

	return nil
}

func (c *Category) checkType(toSave Category) error {
	if toSave.Type != CategoryTypeIncome && toSave.Type != CategoryTypeExpense {
		return fmt.Errorf("%w: %s", ErrCategoryTypeInvalid, toSave.Type)
	}

	return nil
}

// BeforeDelete rejects the delete while transfers or predictions
// reference the category.
func (c *Category) BeforeDelete(tx *gorm.DB) error {
	var count int64
	err := tx.Model(&Transfer{}).Where(Transfer{CategoryID: c.ID}, "CategoryID").Count(&count).Error
	if err != nil {
		return err
	}

	if count > 0 {
		return ErrCategoryReferenced
	}

	err = tx.Model(&ExpensePrediction{}).Where(ExpensePrediction{CategoryID: c.ID}, "CategoryID").Count(&count).Error
	if err != nil {
		return err
	}

	if count > 0 {
		return ErrCategoryReferenced
	}

	return nil
}

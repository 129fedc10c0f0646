package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Wallet is the highest level of organization in finbook, all other
// resources reference it directly or transitively.
type Wallet struct {
	DefaultModel
	Name     string    `gorm:"uniqueIndex:wallet_owner_name"`
	Note     string
	Currency string
	OwnerID  uuid.UUID `gorm:"uniqueIndex:wallet_owner_name"`
	Owner    User      `json:"-"`
	Members  []User    `gorm:"many2many:wallet_users" json:"-"`
}

// BeforeSave trims whitespace from string fields.
func (w *Wallet) BeforeSave(_ *gorm.DB) error {
	w.Name = strings.TrimSpace(w.Name)
	w.Note = strings.TrimSpace(w.Note)
	w.Currency = strings.TrimSpace(w.Currency)

	return nil
}

// BeforeDelete removes all dependent resources of the wallet.
//
// The deletes run without hooks since the referential guards of periods,
// deposits, categories and entities would fire for resources that are
// deleted anyway, and batch deletes would invoke them on empty models.
func (w *Wallet) BeforeDelete(tx *gorm.DB) error {
	session := tx.Session(&gorm.Session{NewDB: true, SkipHooks: true})

	err := session.
		Where("period_id IN (SELECT id FROM periods WHERE wallet_id = ?)", w.ID).
		Delete(&ExpensePrediction{}).Error
	if err != nil {
		return err
	}

	err = session.Where("wallet_id = ?", w.ID).Delete(&Transfer{}).Error
	if err != nil {
		return err
	}

	for _, model := range []any{&Period{}, &Deposit{}, &Entity{}, &Category{}} {
		err = session.Where("wallet_id = ?", w.ID).Delete(model).Error
		if err != nil {
			return err
		}
	}

	return tx.Model(w).Association("Members").Clear()
}

// WalletIDs returns the IDs of all wallets the user owns or is a member of.
func WalletIDs(db *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID

	err := db.Model(&Wallet{}).
		Joins("LEFT JOIN wallet_users ON wallet_users.wallet_id = wallets.id").
		Where("wallets.owner_id = ?", userID).
		Or("wallet_users.user_id = ?", userID).
		Distinct().
		Pluck("wallets.id", &ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}

// WalletAccessible reports whether the user owns the wallet or is one of
// its members. When the wallet does not exist, it reports false so that
// inaccessible and missing resources are indistinguishable for clients.
func WalletAccessible(db *gorm.DB, walletID, userID uuid.UUID) (bool, error) {
	var count int64

	err := db.Model(&Wallet{}).
		Joins("LEFT JOIN wallet_users ON wallet_users.wallet_id = wallets.id").
		Where("wallets.id = ?", walletID).
		Where(db.Where("wallets.owner_id = ?", userID).Or("wallet_users.user_id = ?", userID)).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

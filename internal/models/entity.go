package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Entity is a counterparty of a transfer, e.g. an employer or a shop.
type Entity struct {
	DefaultModel
	WalletID uuid.UUID `gorm:"uniqueIndex:entity_wallet_name"`
	Wallet   Wallet    `json:"-"`
	Name     string    `gorm:"uniqueIndex:entity_wallet_name"`
	Note     string
	Archived bool
}

func (e *Entity) BeforeSave(_ *gorm.DB) error {
	e.Name = strings.TrimSpace(e.Name)
	e.Note = strings.TrimSpace(e.Note)

	return nil
}

// BeforeDelete rejects the delete while transfers reference the entity.
func (e *Entity) BeforeDelete(tx *gorm.DB) error {
	var count int64
	err := tx.Model(&Transfer{}).Where("entity_id = ?", e.ID).Count(&count).Error
	if err != nil {
		return err
	}

	if count > 0 {
		return ErrEntityReferenced
	}

	return nil
}

package models_test

import (
	"github.com/finbook/backend/internal/models"
	"github.com/finbook/backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestWalletTrimWhitespace() {
	wallet := suite.createTestWallet(models.Wallet{Name: " Household \t", Note: " some note ", Currency: " € "})

	assert.Equal(suite.T(), "Household", wallet.Name)
	assert.Equal(suite.T(), "some note", wallet.Note)
	assert.Equal(suite.T(), "€", wallet.Currency)
}

func (suite *TestSuiteStandard) TestWalletDuplicateName() {
	owner := suite.createTestUser(models.User{})
	_ = suite.createTestWallet(models.Wallet{Name: "Household", OwnerID: owner.ID})

	err := models.DB.Create(&models.Wallet{Name: "Household", OwnerID: owner.ID}).Error
	assert.ErrorIs(suite.T(), err, models.ErrWalletNameNotUnique)

	// The same name is fine for another user
	_ = suite.createTestWallet(models.Wallet{Name: "Household"})
}

func (suite *TestSuiteStandard) TestWalletIDs() {
	owner := suite.createTestUser(models.User{})
	member := suite.createTestUser(models.User{})
	stranger := suite.createTestUser(models.User{})

	wallet := suite.createTestWallet(models.Wallet{OwnerID: owner.ID, Members: []models.User{member}})
	_ = suite.createTestWallet(models.Wallet{OwnerID: stranger.ID})

	for _, user := range []models.User{owner, member} {
		ids, err := models.WalletIDs(models.DB, user.ID)
		assert.Nil(suite.T(), err)
		assert.Equal(suite.T(), []uuid.UUID{wallet.ID}, ids)

		ok, err := models.WalletAccessible(models.DB, wallet.ID, user.ID)
		assert.Nil(suite.T(), err)
		assert.True(suite.T(), ok)
	}

	ok, err := models.WalletAccessible(models.DB, wallet.ID, stranger.ID)
	assert.Nil(suite.T(), err)
	assert.False(suite.T(), ok)

	// Missing wallets are not accessible
	ok, err = models.WalletAccessible(models.DB, uuid.New(), owner.ID)
	assert.Nil(suite.T(), err)
	assert.False(suite.T(), ok)
}

func (suite *TestSuiteStandard) TestWalletDeleteCascades() {
	wallet := suite.createTestWallet(models.Wallet{})
	period := suite.createTestPeriod(models.Period{WalletID: wallet.ID})
	deposit := suite.createTestDeposit(models.Deposit{WalletID: wallet.ID})
	entity := suite.createTestEntity(models.Entity{WalletID: wallet.ID})
	category := suite.createTestCategory(models.Category{WalletID: wallet.ID})

	_ = suite.createTestPrediction(models.ExpensePrediction{
		PeriodID:   period.ID,
		CategoryID: category.ID,
		Value:      decimal.NewFromFloat(100),
	})

	entityID := entity.ID
	_ = suite.createTestTransfer(models.Transfer{
		Type:       models.TransferTypeExpense,
		Date:       types.NewDate(2026, 1, 10),
		Value:      decimal.NewFromFloat(12.34),
		PeriodID:   period.ID,
		DepositID:  deposit.ID,
		CategoryID: category.ID,
		EntityID:   &entityID,
	})

	err := models.DB.Delete(&wallet).Error
	assert.Nil(suite.T(), err)

	for _, model := range []any{&models.Period{}, &models.Deposit{}, &models.Entity{}, &models.Category{}, &models.ExpensePrediction{}, &models.Transfer{}} {
		var count int64
		err = models.DB.Model(model).Count(&count).Error
		assert.Nil(suite.T(), err)
		assert.Equal(suite.T(), int64(0), count, "%T resources remain after wallet deletion", model)
	}
}

package models_test

import (
	"github.com/finbook/backend/internal/models"
	"github.com/finbook/backend/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestDepositDefaultType() {
	deposit := suite.createTestDeposit(models.Deposit{})
	assert.Equal(suite.T(), models.DepositTypePersonal, deposit.Type)
}

func (suite *TestSuiteStandard) TestDepositInvalidType() {
	wallet := suite.createTestWallet(models.Wallet{})

	err := models.DB.Create(&models.Deposit{
		WalletID: wallet.ID,
		Name:     "Sock drawer",
		Type:     "MATTRESS",
	}).Error
	assert.ErrorIs(suite.T(), err, models.ErrDepositTypeInvalid)
}

func (suite *TestSuiteStandard) TestDepositDuplicateName() {
	wallet := suite.createTestWallet(models.Wallet{})
	_ = suite.createTestDeposit(models.Deposit{WalletID: wallet.ID, Name: "Checking"})

	err := models.DB.Create(&models.Deposit{WalletID: wallet.ID, Name: "Checking"}).Error
	assert.ErrorIs(suite.T(), err, models.ErrDepositNameNotUnique)

	// The same name is fine in another wallet
	_ = suite.createTestDeposit(models.Deposit{Name: "Checking"})
}

func (suite *TestSuiteStandard) TestDepositDeleteGuard() {
	wallet := suite.createTestWallet(models.Wallet{})
	period := suite.createTestPeriod(models.Period{WalletID: wallet.ID})
	deposit := suite.createTestDeposit(models.Deposit{WalletID: wallet.ID})
	category := suite.createTestCategory(models.Category{WalletID: wallet.ID})

	transfer := suite.createTestTransfer(models.Transfer{
		Type:       models.TransferTypeExpense,
		Date:       types.NewDate(2026, 1, 10),
		Value:      decimal.NewFromFloat(10),
		PeriodID:   period.ID,
		DepositID:  deposit.ID,
		CategoryID: category.ID,
	})

	err := models.DB.Delete(&deposit).Error
	assert.ErrorIs(suite.T(), err, models.ErrDepositReferenced)

	err = models.DB.Delete(&transfer).Error
	assert.Nil(suite.T(), err)

	err = models.DB.Delete(&deposit).Error
	assert.Nil(suite.T(), err)
}

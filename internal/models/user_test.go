package models_test

import (
	"github.com/finbook/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestUserEmailNormalized() {
	user := suite.createTestUser(models.User{Email: "  Someone@Example.COM ", Name: " Someone "})

	assert.Equal(suite.T(), "someone@example.com", user.Email)
	assert.Equal(suite.T(), "Someone", user.Name)
}

func (suite *TestSuiteStandard) TestUserDuplicateEmail() {
	_ = suite.createTestUser(models.User{Email: "duplicate@example.com"})

	user := models.User{Email: "Duplicate@example.com"}
	err := user.SetPassword("some password")
	assert.Nil(suite.T(), err)

	err = models.DB.Create(&user).Error
	assert.ErrorIs(suite.T(), err, models.ErrEmailNotUnique)
}

func (suite *TestSuiteStandard) TestUserPassword() {
	user := models.User{Email: "password@example.com"}

	err := user.SetPassword("hunter2hunter2")
	assert.Nil(suite.T(), err)
	assert.NotContains(suite.T(), user.HashedPassword, "hunter2")

	assert.True(suite.T(), user.CheckPassword("hunter2hunter2"))
	assert.False(suite.T(), user.CheckPassword("wrong"))
}

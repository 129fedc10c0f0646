package models_test

import (
	"time"

	"github.com/finbook/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestTimestampsUTC() {
	user := suite.createTestUser(models.User{})

	var reloaded models.User
	err := models.DB.First(&reloaded, "id = ?", user.ID).Error
	assert.Nil(suite.T(), err)

	assert.Equal(suite.T(), time.UTC, reloaded.CreatedAt.Location(), "Timezone for model is not UTC")
	assert.Equal(suite.T(), time.UTC, reloaded.UpdatedAt.Location(), "Timezone for model is not UTC")
}

func (suite *TestSuiteStandard) TestPresetIDKept() {
	id := uuid.New()
	user := suite.createTestUser(models.User{DefaultModel: models.DefaultModel{ID: id}})

	assert.Equal(suite.T(), id, user.ID)
}

package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	v1 "github.com/finbook/backend/internal/controllers/v1"
	"github.com/finbook/backend/internal/models"
	"github.com/finbook/backend/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// predictionFixture creates a wallet with a period and an expense
// category to hang predictions onto.
func (suite *TestSuiteStandard) predictionFixture(headers map[string]string) (v1.PeriodResponse, v1.CategoryResponse) {
	wallet := createTestWallet(suite.T(), headers, v1.WalletEditable{})
	period := createTestPeriod(suite.T(), headers, v1.PeriodEditable{WalletID: wallet.Data.ID})
	category := createTestCategory(suite.T(), headers, v1.CategoryEditable{
		WalletID: wallet.Data.ID,
		Type:     models.CategoryTypeExpense,
	})

	return period, category
}

func (suite *TestSuiteStandard) TestPredictionsCreate() {
	headers, _ := registerTestUser(suite.T())
	period, category := suite.predictionFixture(headers)

	prediction := createTestPrediction(suite.T(), headers, v1.PredictionEditable{
		PeriodID:   period.Data.ID,
		CategoryID: category.Data.ID,
		Value:      decimal.NewFromFloat(180.47),
		Note:       "Less than usual",
	})

	assert.True(suite.T(), prediction.Data.Value.Equal(decimal.NewFromFloat(180.47)))
}

func (suite *TestSuiteStandard) TestPredictionsCreateFails() {
	headers, _ := registerTestUser(suite.T())
	period, category := suite.predictionFixture(headers)

	_ = createTestPrediction(suite.T(), headers, v1.PredictionEditable{
		PeriodID:   period.Data.ID,
		CategoryID: category.Data.ID,
		Value:      decimal.NewFromInt(100),
	})

	incomeCategory := createTestCategory(suite.T(), headers, v1.CategoryEditable{
		WalletID: period.Data.WalletID,
		Type:     models.CategoryTypeIncome,
	})

	otherWallet := createTestWallet(suite.T(), headers, v1.WalletEditable{})
	foreignCategory := createTestCategory(suite.T(), headers, v1.CategoryEditable{
		WalletID: otherWallet.Data.ID,
		Type:     models.CategoryTypeExpense,
	})

	tests := []struct {
		name   string
		body   v1.PredictionEditable
		status int
		err    string
	}{
		{
			"Duplicate period and category",
			v1.PredictionEditable{PeriodID: period.Data.ID, CategoryID: category.Data.ID, Value: decimal.NewFromInt(50)},
			http.StatusBadRequest,
			"there already is a prediction for this category and period",
		},
		{
			"Income category",
			v1.PredictionEditable{PeriodID: period.Data.ID, CategoryID: incomeCategory.Data.ID, Value: decimal.NewFromInt(50)},
			http.StatusBadRequest,
			"predictions can only be created for expense categories",
		},
		{
			"Category in other wallet",
			v1.PredictionEditable{PeriodID: period.Data.ID, CategoryID: foreignCategory.Data.ID, Value: decimal.NewFromInt(50)},
			http.StatusBadRequest,
			"all resources referenced by a record must belong to the same wallet",
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v1/predictions", []v1.PredictionEditable{tt.body}, headers)
			test.AssertHTTPStatus(t, &r, tt.status)

			var response v1.PredictionCreateResponse
			test.DecodeResponse(t, &r, &response)
			require.Len(t, response.Data, 1)
			assert.Equal(t, tt.err, *response.Data[0].Error)
		})
	}
}

func (suite *TestSuiteStandard) TestPredictionsGetFilter() {
	headers, _ := registerTestUser(suite.T())
	period, category := suite.predictionFixture(headers)

	otherCategory := createTestCategory(suite.T(), headers, v1.CategoryEditable{
		WalletID: period.Data.WalletID,
		Type:     models.CategoryTypeExpense,
	})

	_ = createTestPrediction(suite.T(), headers, v1.PredictionEditable{
		PeriodID:   period.Data.ID,
		CategoryID: category.Data.ID,
		Value:      decimal.NewFromInt(100),
	})

	_ = createTestPrediction(suite.T(), headers, v1.PredictionEditable{
		PeriodID:   period.Data.ID,
		CategoryID: otherCategory.Data.ID,
		Value:      decimal.NewFromInt(30),
	})

	tests := []struct {
		name  string
		query string
		len   int
	}{
		{"All", "", 2},
		{"Period", fmt.Sprintf("period=%s", period.Data.ID), 2},
		{"Category", fmt.Sprintf("category=%s", category.Data.ID), 1},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			var list v1.PredictionListResponse
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/predictions?%s", tt.query), "", headers)
			test.AssertHTTPStatus(t, &r, http.StatusOK)
			test.DecodeResponse(t, &r, &list)

			assert.Equal(t, tt.len, len(list.Data))
		})
	}
}

func (suite *TestSuiteStandard) TestPredictionsUpdateDelete() {
	headers, _ := registerTestUser(suite.T())
	period, category := suite.predictionFixture(headers)

	prediction := createTestPrediction(suite.T(), headers, v1.PredictionEditable{
		PeriodID:   period.Data.ID,
		CategoryID: category.Data.ID,
		Value:      decimal.NewFromInt(100),
	})

	r := test.Request(suite.T(), http.MethodPatch, prediction.Data.Links.Self, map[string]any{
		"value": decimal.NewFromInt(120),
	}, headers)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.PredictionResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.True(suite.T(), response.Data.Value.Equal(decimal.NewFromInt(120)))

	r = test.Request(suite.T(), http.MethodDelete, prediction.Data.Links.Self, "", headers)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)
}

// TestPredictionsUpdateFails verifies that an update cannot point a
// valid prediction at an unsuitable category.
func (suite *TestSuiteStandard) TestPredictionsUpdateFails() {
	headers, _ := registerTestUser(suite.T())
	period, category := suite.predictionFixture(headers)

	prediction := createTestPrediction(suite.T(), headers, v1.PredictionEditable{
		PeriodID:   period.Data.ID,
		CategoryID: category.Data.ID,
		Value:      decimal.NewFromInt(100),
	})

	incomeCategory := createTestCategory(suite.T(), headers, v1.CategoryEditable{
		WalletID: period.Data.WalletID,
		Type:     models.CategoryTypeIncome,
	})

	otherWallet := createTestWallet(suite.T(), headers, v1.WalletEditable{})
	foreignCategory := createTestCategory(suite.T(), headers, v1.CategoryEditable{
		WalletID: otherWallet.Data.ID,
		Type:     models.CategoryTypeExpense,
	})

	tests := []struct {
		name string
		body map[string]any
		err  string
	}{
		{
			"Income category",
			map[string]any{"categoryId": incomeCategory.Data.ID},
			"predictions can only be created for expense categories",
		},
		{
			"Category in other wallet",
			map[string]any{"categoryId": foreignCategory.Data.ID},
			"all resources referenced by a record must belong to the same wallet",
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPatch, prediction.Data.Links.Self, tt.body, headers)
			test.AssertHTTPStatus(t, &r, http.StatusBadRequest)

			var response v1.PredictionResponse
			test.DecodeResponse(t, &r, &response)
			assert.Equal(t, tt.err, *response.Error)
		})
	}

	// The rejected updates must not have changed the prediction
	r := test.Request(suite.T(), http.MethodGet, prediction.Data.Links.Self, "", headers)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.PredictionResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), category.Data.ID, response.Data.CategoryID)
}

// TestPredictionsScoping verifies that predictions inherit the wallet
// scope through their period.
func (suite *TestSuiteStandard) TestPredictionsScoping() {
	headersOwner, _ := registerTestUser(suite.T())
	headersStranger, _ := registerTestUser(suite.T())

	period, category := suite.predictionFixture(headersOwner)

	prediction := createTestPrediction(suite.T(), headersOwner, v1.PredictionEditable{
		PeriodID:   period.Data.ID,
		CategoryID: category.Data.ID,
		Value:      decimal.NewFromInt(100),
	})

	r := test.Request(suite.T(), http.MethodGet, prediction.Data.Links.Self, "", headersStranger)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)

	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/predictions", "", headersStranger)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var list v1.PredictionListResponse
	test.DecodeResponse(suite.T(), &r, &list)
	assert.Len(suite.T(), list.Data, 0)
}

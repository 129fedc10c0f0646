package v1_test

import (
	"encoding/json"
	"net/http"

	v1 "github.com/finbook/backend/internal/controllers/v1"
	"github.com/finbook/backend/internal/models"
	"github.com/finbook/backend/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestExport() {
	headers, _ := registerTestUser(suite.T())
	fixture := createTestTransferFixture(suite.T(), headers)

	_ = createTestPrediction(suite.T(), headers, v1.PredictionEditable{
		PeriodID:   fixture.period.Data.ID,
		CategoryID: fixture.category.Data.ID,
		Value:      decimal.NewFromInt(100),
	})

	// Resources of other users must not be exported
	headersOther, _ := registerTestUser(suite.T())
	_ = createTestWallet(suite.T(), headersOther, v1.WalletEditable{Name: "Not exported"})

	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/export", "", headers)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.ExportResponse
	test.DecodeResponse(suite.T(), &r, &response)

	assert.NotEmpty(suite.T(), response.Version)
	assert.False(suite.T(), response.CreationTime.IsZero())

	tests := []struct {
		resource string
		len      int
	}{
		{"Wallet", 1},
		{"Period", 1},
		{"Deposit", 1},
		{"Entity", 1},
		{"Category", 1},
		{"ExpensePrediction", 1},
		{"Transfer", 1},
	}

	for _, tt := range tests {
		raw, ok := response.Data[tt.resource]
		require.True(suite.T(), ok, "export does not contain %s", tt.resource)

		var items []json.RawMessage
		require.Nil(suite.T(), json.Unmarshal(raw, &items))
		assert.Len(suite.T(), items, tt.len, "unexpected number of %s resources", tt.resource)
	}

	var wallets []models.Wallet
	require.Nil(suite.T(), json.Unmarshal(response.Data["Wallet"], &wallets))
	assert.Equal(suite.T(), fixture.wallet.Data.ID, wallets[0].ID)
}

func (suite *TestSuiteStandard) TestExportEmpty() {
	headers, _ := registerTestUser(suite.T())

	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/export", "", headers)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.ExportResponse
	test.DecodeResponse(suite.T(), &r, &response)

	var wallets []models.Wallet
	require.Nil(suite.T(), json.Unmarshal(response.Data["Wallet"], &wallets))
	assert.Len(suite.T(), wallets, 0)
}

func (suite *TestSuiteStandard) TestExportOptions() {
	headers, _ := registerTestUser(suite.T())

	r := test.Request(suite.T(), http.MethodOptions, "http://example.com/v1/export", "", headers)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)
	assert.Equal(suite.T(), "GET", r.Header().Get("allow"))
}

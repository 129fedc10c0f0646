package v1_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	v1 "github.com/finbook/backend/internal/controllers/v1"
	"github.com/finbook/backend/internal/models"
	"github.com/finbook/backend/internal/types"
	"github.com/finbook/backend/test"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// importFixture sets up a wallet with an active period and the
// categories the CSV test files reference. The "Insurance*" category
// exists to verify glob matching of category names.
func importFixture(t *testing.T, headers map[string]string) v1.DepositResponse {
	wallet := createTestWallet(t, headers, v1.WalletEditable{})
	_ = createTestPeriod(t, headers, v1.PeriodEditable{
		WalletID:  wallet.Data.ID,
		StartDate: types.NewDate(2026, 1, 1),
		EndDate:   types.NewDate(2026, 1, 31),
		Active:    true,
	})

	_ = createTestCategory(t, headers, v1.CategoryEditable{WalletID: wallet.Data.ID, Name: "Salary", Type: models.CategoryTypeIncome})
	_ = createTestCategory(t, headers, v1.CategoryEditable{WalletID: wallet.Data.ID, Name: "Groceries", Type: models.CategoryTypeExpense})
	_ = createTestCategory(t, headers, v1.CategoryEditable{WalletID: wallet.Data.ID, Name: "Insurance*", Type: models.CategoryTypeExpense})
	_ = createTestEntity(t, headers, v1.EntityEditable{WalletID: wallet.Data.ID, Name: "Supermarket"})

	return createTestDeposit(t, headers, v1.DepositEditable{WalletID: wallet.Data.ID})
}

func (suite *TestSuiteStandard) TestImportPreview() {
	headers, _ := registerTestUser(suite.T())
	deposit := importFixture(suite.T(), headers)

	body, fileHeaders := test.LoadTestFile(suite.T(), "importer/transfers.csv")
	r := test.Request(suite.T(), http.MethodPost, fmt.Sprintf("http://example.com/v1/import?deposit=%s&preview=true", deposit.Data.ID), body, headers, fileHeaders)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var preview v1.ImportPreviewList
	test.DecodeResponse(suite.T(), &r, &preview)
	require.Len(suite.T(), preview.Data, 3)

	salary := preview.Data[0]
	assert.Equal(suite.T(), models.TransferTypeIncome, salary.Transfer.Type)
	assert.True(suite.T(), salary.Transfer.Value.Equal(decimal.NewFromInt(2700)))
	assert.Equal(suite.T(), "Salary", salary.CategoryName)
	assert.Equal(suite.T(), "Employer Inc.", salary.EntityName)
	assert.NotEqual(suite.T(), uuid.Nil, salary.Transfer.CategoryID)

	// The entity does not exist yet, so it cannot be matched
	assert.Nil(suite.T(), salary.Transfer.EntityID)
	assert.NotNil(suite.T(), salary.DuplicateTransferIDs)
	assert.Len(suite.T(), salary.DuplicateTransferIDs, 0)

	// "Insurance Car" has no exact match, the "Insurance*" category
	// matches as a glob pattern
	insurance := preview.Data[2]
	assert.Equal(suite.T(), "Insurance Car", insurance.CategoryName)
	assert.NotEqual(suite.T(), uuid.Nil, insurance.Transfer.CategoryID)

	// Nothing is created in preview mode
	var list v1.TransferListResponse
	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/expenses", "", headers)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &list)
	assert.Len(suite.T(), list.Data, 0)
}

func (suite *TestSuiteStandard) TestImport() {
	headers, _ := registerTestUser(suite.T())
	deposit := importFixture(suite.T(), headers)

	body, fileHeaders := test.LoadTestFile(suite.T(), "importer/transfers.csv")
	r := test.Request(suite.T(), http.MethodPost, fmt.Sprintf("http://example.com/v1/import?deposit=%s", deposit.Data.ID), body, headers, fileHeaders)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var response v1.TransferCreateResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.Len(suite.T(), response.Data, 3)
	for _, transfer := range response.Data {
		assert.Nil(suite.T(), transfer.Error)
		require.NotNil(suite.T(), transfer.Data)
	}

	// The unknown entity has been created on the fly
	var entities v1.EntityListResponse
	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/entities?name=Employer", "", headers)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &entities)
	assert.Len(suite.T(), entities.Data, 1)

	// 2700.00 - 84.20 - 130.00
	var updated v1.DepositResponse
	r = test.Request(suite.T(), http.MethodGet, deposit.Data.Links.Self, "", headers)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &updated)
	assert.True(suite.T(), updated.Data.Balance.Equal(decimal.NewFromFloat(2485.80)), "balance is %s", updated.Data.Balance)

	// A second preview of the same file flags every line as a duplicate
	body, fileHeaders = test.LoadTestFile(suite.T(), "importer/transfers.csv")
	r = test.Request(suite.T(), http.MethodPost, fmt.Sprintf("http://example.com/v1/import?deposit=%s&preview=true", deposit.Data.ID), body, headers, fileHeaders)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var preview v1.ImportPreviewList
	test.DecodeResponse(suite.T(), &r, &preview)
	require.Len(suite.T(), preview.Data, 3)
	for _, transfer := range preview.Data {
		assert.Len(suite.T(), transfer.DuplicateTransferIDs, 1)
	}
}

// TestImportUnknownCategory verifies that lines referencing a category
// the wallet does not have are rejected. Unlike entities, categories
// are not created on the fly.
func (suite *TestSuiteStandard) TestImportUnknownCategory() {
	headers, _ := registerTestUser(suite.T())
	deposit := importFixture(suite.T(), headers)

	body, fileHeaders := test.LoadTestFile(suite.T(), "importer/unknown-category.csv")
	r := test.Request(suite.T(), http.MethodPost, fmt.Sprintf("http://example.com/v1/import?deposit=%s", deposit.Data.ID), body, headers, fileHeaders)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var response v1.TransferCreateResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.Len(suite.T(), response.Data, 1)
	require.NotNil(suite.T(), response.Data[0].Error)
	assert.Equal(suite.T(), "no category matches the name in the CSV file: Lottery", *response.Data[0].Error)
}

func (suite *TestSuiteStandard) TestImportFails() {
	headersOwner, _ := registerTestUser(suite.T())
	headersStranger, _ := registerTestUser(suite.T())

	deposit := importFixture(suite.T(), headersOwner)

	// A deposit in a wallet without an active period
	idleWallet := createTestWallet(suite.T(), headersOwner, v1.WalletEditable{})
	idleDeposit := createTestDeposit(suite.T(), headersOwner, v1.DepositEditable{WalletID: idleWallet.Data.ID})

	tests := []struct {
		name    string
		query   string
		file    string
		headers map[string]string
		status  int
		err     string
	}{
		{"No deposit parameter", "", "importer/transfers.csv", headersOwner, http.StatusBadRequest, "the specified resource ID is not a valid UUID"},
		{"Unknown deposit", fmt.Sprintf("deposit=%s", uuid.New()), "importer/transfers.csv", headersOwner, http.StatusNotFound, "there is no deposit matching your query"},
		{"Foreign deposit", fmt.Sprintf("deposit=%s", deposit.Data.ID), "importer/transfers.csv", headersStranger, http.StatusNotFound, "there is no deposit matching your query"},
		{"No active period", fmt.Sprintf("deposit=%s", idleDeposit.Data.ID), "importer/transfers.csv", headersOwner, http.StatusBadRequest, "the wallet has no active period to import transfers into"},
		{"Wrong file suffix", fmt.Sprintf("deposit=%s", deposit.Data.ID), "importer/transfers.txt", headersOwner, http.StatusBadRequest, "this endpoint only supports files of the following types: .csv"},
		{"No file", fmt.Sprintf("deposit=%s", deposit.Data.ID), "", headersOwner, http.StatusBadRequest, "you must send a file to this endpoint"},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			var r httptest.ResponseRecorder
			if tt.file == "" {
				r = test.Request(t, http.MethodPost, fmt.Sprintf("http://example.com/v1/import?%s", tt.query), "", tt.headers)
			} else {
				body, fileHeaders := test.LoadTestFile(t, tt.file)
				r = test.Request(t, http.MethodPost, fmt.Sprintf("http://example.com/v1/import?%s", tt.query), body, tt.headers, fileHeaders)
			}

			test.AssertHTTPStatus(t, &r, tt.status)

			var response v1.ImportPreviewList
			test.DecodeResponse(t, &r, &response)
			require.NotNil(t, response.Error)
			assert.Equal(t, tt.err, *response.Error)
		})
	}
}

func (suite *TestSuiteStandard) TestImportOptions() {
	headers, _ := registerTestUser(suite.T())

	r := test.Request(suite.T(), http.MethodOptions, "http://example.com/v1/import", "", headers)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)
	assert.Equal(suite.T(), "POST", r.Header().Get("allow"))
}

package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	v1 "github.com/finbook/backend/internal/controllers/v1"
	"github.com/finbook/backend/internal/types"
	"github.com/finbook/backend/test"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestPeriodsCreate() {
	headers, _ := registerTestUser(suite.T())
	wallet := createTestWallet(suite.T(), headers, v1.WalletEditable{})

	period := createTestPeriod(suite.T(), headers, v1.PeriodEditable{
		WalletID:  wallet.Data.ID,
		Name:      "January 2026",
		StartDate: types.NewDate(2026, 1, 1),
		EndDate:   types.NewDate(2026, 1, 31),
		Active:    true,
	})

	assert.Equal(suite.T(), "January 2026", period.Data.Name)
	assert.True(suite.T(), period.Data.Active)
	assert.Equal(suite.T(), "2026-01-01", period.Data.StartDate.String())
}

func (suite *TestSuiteStandard) TestPeriodsCreateFails() {
	headers, _ := registerTestUser(suite.T())
	wallet := createTestWallet(suite.T(), headers, v1.WalletEditable{})

	_ = createTestPeriod(suite.T(), headers, v1.PeriodEditable{
		WalletID:  wallet.Data.ID,
		Name:      "January 2026",
		StartDate: types.NewDate(2026, 1, 1),
		EndDate:   types.NewDate(2026, 1, 31),
	})

	tests := []struct {
		name   string
		body   v1.PeriodEditable
		status int
		err    string
	}{
		{
			"Start date after end date",
			v1.PeriodEditable{
				WalletID:  wallet.Data.ID,
				Name:      "Backwards",
				StartDate: types.NewDate(2026, 3, 31),
				EndDate:   types.NewDate(2026, 3, 1),
			},
			http.StatusBadRequest,
			"the period start date must be before its end date",
		},
		{
			"Overlapping period",
			v1.PeriodEditable{
				WalletID:  wallet.Data.ID,
				Name:      "Overlap",
				StartDate: types.NewDate(2026, 1, 20),
				EndDate:   types.NewDate(2026, 2, 20),
			},
			http.StatusBadRequest,
			"the period overlaps with another period of the wallet",
		},
		{
			"Duplicate name",
			v1.PeriodEditable{
				WalletID:  wallet.Data.ID,
				Name:      "January 2026",
				StartDate: types.NewDate(2026, 6, 1),
				EndDate:   types.NewDate(2026, 6, 30),
			},
			http.StatusBadRequest,
			"the wallet already has a period with this name",
		},
		{
			"Wallet does not exist",
			v1.PeriodEditable{
				WalletID:  uuid.New(),
				Name:      "Orphan",
				StartDate: types.NewDate(2026, 7, 1),
				EndDate:   types.NewDate(2026, 7, 31),
			},
			http.StatusNotFound,
			"there is no wallet matching your query",
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v1/periods", []v1.PeriodEditable{tt.body}, headers)
			test.AssertHTTPStatus(t, &r, tt.status)

			var response v1.PeriodCreateResponse
			test.DecodeResponse(t, &r, &response)
			require.Len(t, response.Data, 1)
			assert.Equal(t, tt.err, *response.Data[0].Error)
		})
	}
}

// TestPeriodsSingleActive verifies that a wallet can only have one
// active period at a time.
func (suite *TestSuiteStandard) TestPeriodsSingleActive() {
	headers, _ := registerTestUser(suite.T())
	wallet := createTestWallet(suite.T(), headers, v1.WalletEditable{})

	_ = createTestPeriod(suite.T(), headers, v1.PeriodEditable{
		WalletID:  wallet.Data.ID,
		StartDate: types.NewDate(2026, 1, 1),
		EndDate:   types.NewDate(2026, 1, 31),
		Active:    true,
	})

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/periods", []v1.PeriodEditable{{
		WalletID:  wallet.Data.ID,
		Name:      "Second active",
		StartDate: types.NewDate(2026, 2, 1),
		EndDate:   types.NewDate(2026, 2, 28),
		Active:    true,
	}}, headers)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var response v1.PeriodCreateResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), "the wallet already has an active period", *response.Data[0].Error)
}

func (suite *TestSuiteStandard) TestPeriodsGetFilter() {
	headers, _ := registerTestUser(suite.T())
	wallet := createTestWallet(suite.T(), headers, v1.WalletEditable{})
	otherWallet := createTestWallet(suite.T(), headers, v1.WalletEditable{})

	_ = createTestPeriod(suite.T(), headers, v1.PeriodEditable{
		WalletID:  wallet.Data.ID,
		Name:      "January 2026",
		StartDate: types.NewDate(2026, 1, 1),
		EndDate:   types.NewDate(2026, 1, 31),
		Active:    true,
	})

	_ = createTestPeriod(suite.T(), headers, v1.PeriodEditable{
		WalletID:  wallet.Data.ID,
		Name:      "February 2026",
		StartDate: types.NewDate(2026, 2, 1),
		EndDate:   types.NewDate(2026, 2, 28),
	})

	_ = createTestPeriod(suite.T(), headers, v1.PeriodEditable{
		WalletID:  otherWallet.Data.ID,
		Name:      "January 2026",
		StartDate: types.NewDate(2026, 1, 1),
		EndDate:   types.NewDate(2026, 1, 31),
	})

	tests := []struct {
		name  string
		query string
		len   int
	}{
		{"All", "", 3},
		{"Wallet", fmt.Sprintf("wallet=%s", wallet.Data.ID), 2},
		{"Active", "active=true", 1},
		{"Name", "name=January", 2},
		{"Unknown wallet", fmt.Sprintf("wallet=%s", uuid.New()), 0},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			var list v1.PeriodListResponse
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/periods?%s", tt.query), "", headers)
			test.AssertHTTPStatus(t, &r, http.StatusOK)
			test.DecodeResponse(t, &r, &list)

			assert.Equal(t, tt.len, len(list.Data))
		})
	}
}

func (suite *TestSuiteStandard) TestPeriodsUpdate() {
	headers, _ := registerTestUser(suite.T())
	period := createTestPeriod(suite.T(), headers, v1.PeriodEditable{Name: "Original"})

	tests := []struct {
		name     string
		body     map[string]any
		status   int
		testFunc func(t *testing.T, p v1.PeriodResponse)
	}{
		{
			"Rename",
			map[string]any{"name": "Renamed"},
			http.StatusOK,
			func(t *testing.T, p v1.PeriodResponse) {
				assert.Equal(t, "Renamed", p.Data.Name)
			},
		},
		{
			"Activate",
			map[string]any{"active": true},
			http.StatusOK,
			func(t *testing.T, p v1.PeriodResponse) {
				assert.True(t, p.Data.Active)
			},
		},
		{
			"Extend the date range",
			map[string]any{"endDate": "2026-02-15"},
			http.StatusOK,
			func(t *testing.T, p v1.PeriodResponse) {
				assert.Equal(t, "2026-02-15", p.Data.EndDate.String())
			},
		},
		{
			"Invalid date range",
			map[string]any{"endDate": "2025-12-01"},
			http.StatusBadRequest,
			nil,
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPatch, period.Data.Links.Self, tt.body, headers)
			test.AssertHTTPStatus(t, &r, tt.status)

			var response v1.PeriodResponse
			test.DecodeResponse(t, &r, &response)

			if tt.testFunc != nil {
				tt.testFunc(t, response)
			}
		})
	}
}

// TestPeriodsUpdateFails verifies that an update cannot move a valid
// period into a state that violates the wallet's invariants.
func (suite *TestSuiteStandard) TestPeriodsUpdateFails() {
	headers, _ := registerTestUser(suite.T())
	wallet := createTestWallet(suite.T(), headers, v1.WalletEditable{})

	_ = createTestPeriod(suite.T(), headers, v1.PeriodEditable{
		WalletID:  wallet.Data.ID,
		Name:      "January 2026",
		StartDate: types.NewDate(2026, 1, 1),
		EndDate:   types.NewDate(2026, 1, 31),
		Active:    true,
	})

	february := createTestPeriod(suite.T(), headers, v1.PeriodEditable{
		WalletID:  wallet.Data.ID,
		Name:      "February 2026",
		StartDate: types.NewDate(2026, 2, 1),
		EndDate:   types.NewDate(2026, 2, 28),
	})

	tests := []struct {
		name string
		body map[string]any
		err  string
	}{
		{
			"Move onto another period",
			map[string]any{"startDate": "2026-01-15"},
			"the period overlaps with another period of the wallet",
		},
		{
			"Second active period",
			map[string]any{"active": true},
			"the wallet already has an active period",
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPatch, february.Data.Links.Self, tt.body, headers)
			test.AssertHTTPStatus(t, &r, http.StatusBadRequest)

			var response v1.PeriodResponse
			test.DecodeResponse(t, &r, &response)
			assert.Equal(t, tt.err, *response.Error)
		})
	}

	// The rejected updates must not have changed the period
	r := test.Request(suite.T(), http.MethodGet, february.Data.Links.Self, "", headers)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.PeriodResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), "2026-02-01", response.Data.StartDate.String())
	assert.False(suite.T(), response.Data.Active)
}

// TestPeriodsUpdateWalletImmutable verifies that a period cannot be
// moved to another wallet.
func (suite *TestSuiteStandard) TestPeriodsUpdateWalletImmutable() {
	headers, _ := registerTestUser(suite.T())
	period := createTestPeriod(suite.T(), headers, v1.PeriodEditable{})
	otherWallet := createTestWallet(suite.T(), headers, v1.WalletEditable{})

	r := test.Request(suite.T(), http.MethodPatch, period.Data.Links.Self, map[string]any{
		"walletId": otherWallet.Data.ID,
	}, headers)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.PeriodResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), period.Data.WalletID, response.Data.WalletID)
}

func (suite *TestSuiteStandard) TestPeriodsDelete() {
	headers, _ := registerTestUser(suite.T())
	period := createTestPeriod(suite.T(), headers, v1.PeriodEditable{})

	r := test.Request(suite.T(), http.MethodDelete, period.Data.Links.Self, "", headers)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.T(), http.MethodGet, period.Data.Links.Self, "", headers)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestPeriodsScoping() {
	headersOwner, _ := registerTestUser(suite.T())
	headersStranger, _ := registerTestUser(suite.T())

	period := createTestPeriod(suite.T(), headersOwner, v1.PeriodEditable{})

	r := test.Request(suite.T(), http.MethodGet, period.Data.Links.Self, "", headersStranger)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)

	// Creating a period in a foreign wallet is also not possible
	r = test.Request(suite.T(), http.MethodPost, "http://example.com/v1/periods", []v1.PeriodEditable{{
		WalletID:  period.Data.WalletID,
		Name:      "Sneaky",
		StartDate: types.NewDate(2027, 1, 1),
		EndDate:   types.NewDate(2027, 1, 31),
	}}, headersStranger)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

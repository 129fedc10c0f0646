package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	v1 "github.com/finbook/backend/internal/controllers/v1"
	"github.com/finbook/backend/test"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestEntitiesCreate() {
	headers, _ := registerTestUser(suite.T())

	entity := createTestEntity(suite.T(), headers, v1.EntityEditable{
		Name: "Supermarket",
		Note: "The one around the corner",
	})

	assert.Equal(suite.T(), "Supermarket", entity.Data.Name)
}

func (suite *TestSuiteStandard) TestEntitiesCreateFails() {
	headers, _ := registerTestUser(suite.T())
	wallet := createTestWallet(suite.T(), headers, v1.WalletEditable{})

	_ = createTestEntity(suite.T(), headers, v1.EntityEditable{WalletID: wallet.Data.ID, Name: "Landlord"})

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/entities", []v1.EntityEditable{
		{WalletID: wallet.Data.ID, Name: "Landlord"},
	}, headers)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var response v1.EntityCreateResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), "the wallet already has an entity with this name", *response.Data[0].Error)
}

func (suite *TestSuiteStandard) TestEntitiesGetFilter() {
	headers, _ := registerTestUser(suite.T())
	wallet := createTestWallet(suite.T(), headers, v1.WalletEditable{})

	_ = createTestEntity(suite.T(), headers, v1.EntityEditable{WalletID: wallet.Data.ID, Name: "Supermarket"})
	_ = createTestEntity(suite.T(), headers, v1.EntityEditable{WalletID: wallet.Data.ID, Name: "Landlord", Archived: true})

	tests := []struct {
		name  string
		query string
		len   int
	}{
		{"All", "", 2},
		{"Name", "name=market", 1},
		{"Archived", "archived=true", 1},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			var list v1.EntityListResponse
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/entities?%s", tt.query), "", headers)
			test.AssertHTTPStatus(t, &r, http.StatusOK)
			test.DecodeResponse(t, &r, &list)

			assert.Equal(t, tt.len, len(list.Data))
		})
	}
}

func (suite *TestSuiteStandard) TestEntitiesUpdateDelete() {
	headers, _ := registerTestUser(suite.T())
	entity := createTestEntity(suite.T(), headers, v1.EntityEditable{Name: "Before"})

	r := test.Request(suite.T(), http.MethodPatch, entity.Data.Links.Self, map[string]any{"name": "After"}, headers)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.EntityResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), "After", response.Data.Name)

	r = test.Request(suite.T(), http.MethodDelete, entity.Data.Links.Self, "", headers)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)
}

// TestEntitiesDeleteReferenced verifies that entities referenced by a
// transfer cannot be deleted.
func (suite *TestSuiteStandard) TestEntitiesDeleteReferenced() {
	headers, _ := registerTestUser(suite.T())
	fixture := createTestTransferFixture(suite.T(), headers)

	// Attach the entity to the transfer
	r := test.Request(suite.T(), http.MethodPatch, fixture.transfer.Data.Links.Self, map[string]any{
		"entityId": fixture.entity.Data.ID,
	}, headers)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	r = test.Request(suite.T(), http.MethodDelete, fixture.entity.Data.Links.Self, "", headers)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var response httpErrorResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), "the entity is still referenced by at least one transfer", response.Error)
}

func (suite *TestSuiteStandard) TestEntitiesScoping() {
	headersOwner, _ := registerTestUser(suite.T())
	headersStranger, _ := registerTestUser(suite.T())

	entity := createTestEntity(suite.T(), headersOwner, v1.EntityEditable{})

	r := test.Request(suite.T(), http.MethodGet, entity.Data.Links.Self, "", headersStranger)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

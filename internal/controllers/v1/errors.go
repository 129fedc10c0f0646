package v1

import (
	"errors"
	"net/http"

	"github.com/finbook/backend/internal/models"
	"github.com/finbook/backend/internal/token"
)

type httpError struct {
	Error string `json:"error" example:"An ID specified in the query string was not a valid UUID"`
}

// status returns the appropriate status for a database error
func status(err error) int {
	if errors.Is(err, models.ErrGeneral) {
		return http.StatusInternalServerError
	}

	if errors.Is(err, models.ErrResourceNotFound) {
		return http.StatusNotFound
	}

	if errors.Is(err, token.ErrInvalidToken) ||
		errors.Is(err, errNoToken) ||
		errors.Is(err, errLoginFailed) {
		return http.StatusUnauthorized
	}

	if errors.Is(err, errNotWalletOwner) {
		return http.StatusForbidden
	}

	return http.StatusBadRequest
}

// Authentication errors
var (
	errNoToken             = errors.New("you must provide a bearer token in the Authorization header")
	errLoginFailed         = errors.New("no user exists for this combination of email address and password")
	errCredentialsRequired = errors.New("an email address and a password are required")
)

// Member management errors
var (
	errNotWalletOwner    = errors.New("only the wallet owner can manage members")
	errOwnerAlwaysMember = errors.New("the owner always has access to the wallet")
)

// Dashboard errors
var (
	errPeriodIDParameter = errors.New("the period parameter must be set")
)

// Import errors
var (
	errNoFilePost       = errors.New("you must send a file to this endpoint")
	errWrongFileSuffix  = errors.New("this endpoint only supports files of the following types")
	errNoActivePeriod   = errors.New("the wallet has no active period to import transfers into")
	errCategoryNotFound = errors.New("no category matches the name in the CSV file")
)

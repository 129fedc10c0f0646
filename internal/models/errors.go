package models

import (
	"errors"
)

var (
	ErrGeneral          = errors.New("an error occurred on the server during your request")
	ErrResourceNotFound = errors.New("there is no")
)

// Uniqueness violations, translated from sqlite constraint errors by the
// createUpdateCallback.
var (
	ErrEmailNotUnique          = errors.New("a user with this email address already exists")
	ErrWalletNameNotUnique     = errors.New("you already have a wallet with this name")
	ErrPeriodNameNotUnique     = errors.New("the wallet already has a period with this name")
	ErrDepositNameNotUnique    = errors.New("the wallet already has a deposit with this name")
	ErrEntityNameNotUnique     = errors.New("the wallet already has an entity with this name")
	ErrCategoryNameNotUnique   = errors.New("the wallet already has a category of this type with this name")
	ErrPredictionNotUnique     = errors.New("there already is a prediction for this category and period")
	ErrValueNotPositiveChecked = errors.New("the value must be positive")
)

// Validation errors raised by model hooks.
var (
	ErrPeriodDatesInvalid = errors.New("the period start date must be before its end date")
	ErrPeriodOverlaps     = errors.New("the period overlaps with another period of the wallet")
	ErrPeriodActiveExists = errors.New("the wallet already has an active period")

	ErrTransferDateOutOfPeriod = errors.New("the transfer date must be within the period date range")
	ErrCategoryTypeMismatch    = errors.New("the category type does not match the transfer type")
	ErrWalletMismatch          = errors.New("all resources referenced by a record must belong to the same wallet")

	ErrPredictionCategoryNotExpense = errors.New("predictions can only be created for expense categories")

	ErrCategoryTypeInvalid = errors.New("the category type must be either income or expense")
	ErrDepositTypeInvalid  = errors.New("the deposit type is invalid")
)

// Referential guards for deletes.
var (
	ErrCategoryReferenced = errors.New("the category is still referenced by at least one transfer")
	ErrEntityReferenced   = errors.New("the entity is still referenced by at least one transfer")
	ErrDepositReferenced  = errors.New("the deposit is still referenced by at least one transfer")
	ErrPeriodReferenced   = errors.New("the period is still referenced by at least one transfer")
)

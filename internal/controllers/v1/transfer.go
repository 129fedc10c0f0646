package v1

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/finbook/backend/internal/httputil"
	"github.com/finbook/backend/internal/models"
	"github.com/finbook/backend/internal/types"
	fb_uuid "github.com/finbook/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// Incomes and expenses are both transfers. The handlers are shared and
// pin the transfer type, so /v1/incomes only ever sees income transfers
// and /v1/expenses only expense transfers.

// RegisterIncomeRoutes registers the routes for incomes with
// the RouterGroup that is passed.
func RegisterIncomeRoutes(r *gin.RouterGroup) {
	registerTransferRoutes(r, models.TransferTypeIncome, "incomes")
}

// RegisterExpenseRoutes registers the routes for expenses with
// the RouterGroup that is passed.
func RegisterExpenseRoutes(r *gin.RouterGroup) {
	registerTransferRoutes(r, models.TransferTypeExpense, "expenses")
}

func registerTransferRoutes(r *gin.RouterGroup, typ models.TransferType, collection string) {
	// Root group
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", getTransfers(typ, collection))
		r.POST("", createTransfers(typ, collection))
	}

	// Transfer with ID
	{
		r.OPTIONS("/:id", optionsTransferDetail(typ, collection))
		r.GET("/:id", getTransferHandler(typ, collection))
		r.PATCH("/:id", updateTransfer(typ, collection))
		r.DELETE("/:id", deleteTransfer(typ, collection))
	}
}

// TransferEditable represents all user configurable parameters
type TransferEditable struct {
	Name       string          `json:"name" example:"Weekly groceries" default:""`                     // Name of the transfer
	Note       string          `json:"note" example:"Paid in cash" default:""`                         // Notes about the transfer
	Value      decimal.Decimal `json:"value" example:"14.37"`                                          // Amount of the transfer, must be positive
	Date       types.Date      `json:"date" example:"2026-01-14"`                                      // Day the transfer was booked
	PeriodID   uuid.UUID       `json:"periodId" example:"d7ab6a9e-5d43-4b31-89d4-2f8a88a71a9e"`        // ID of the period the transfer belongs to
	DepositID  uuid.UUID       `json:"depositId" example:"af892e10-7e0a-4fb8-b1bc-4b6d88401ed2"`       // ID of the deposit the money is taken from or added to
	CategoryID uuid.UUID       `json:"categoryId" example:"3b1ea324-d438-4419-882a-2fc91d71772f"`      // ID of the category of the transfer
	EntityID   *uuid.UUID      `json:"entityId" example:"d1e28bf6-8986-4a9f-b2f8-4aa3eef1e02c"`        // Optional ID of the entity the money came from or went to
}

func (editable TransferEditable) model(typ models.TransferType) models.Transfer {
	return models.Transfer{
		Type:       typ,
		Name:       editable.Name,
		Note:       editable.Note,
		Value:      editable.Value,
		Date:       editable.Date,
		PeriodID:   editable.PeriodID,
		DepositID:  editable.DepositID,
		CategoryID: editable.CategoryID,
		EntityID:   editable.EntityID,
	}
}

type TransferLinks struct {
	Self string `json:"self" example:"https://example.com/api/v1/expenses/a7b22b22-7b09-4f89-8dc2-1dbaa8d45800"` // The transfer itself
}

type Transfer struct {
	models.DefaultModel
	TransferEditable
	WalletID uuid.UUID     `json:"walletId" example:"550dc009-cea6-4c12-b2a5-03446eb7b7cf"` // ID of the wallet, derived from the period
	Links    TransferLinks `json:"links"`
}

func newTransfer(c *gin.Context, collection string, model models.Transfer) Transfer {
	url := c.GetString(string(models.DBContextURL))

	return Transfer{
		DefaultModel: model.DefaultModel,
		TransferEditable: TransferEditable{
			Name:       model.Name,
			Note:       model.Note,
			Value:      model.Value,
			Date:       model.Date,
			PeriodID:   model.PeriodID,
			DepositID:  model.DepositID,
			CategoryID: model.CategoryID,
			EntityID:   model.EntityID,
		},
		WalletID: model.WalletID,
		Links: TransferLinks{
			Self: fmt.Sprintf("%s/v1/%s/%s", url, collection, model.ID),
		},
	}
}

type TransferListResponse struct {
	Data       []Transfer  `json:"data"`                                                          // List of transfers
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type TransferCreateResponse struct {
	Data  []TransferResponse `json:"data"`                                                          // List of the created transfers or their respective error
	Error *string            `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

func (t *TransferCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	t.Data = append(t.Data, TransferResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type TransferResponse struct {
	Data  *Transfer `json:"data"`                                                          // Data for the transfer
	Error *string   `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type TransferQueryFilter struct {
	WalletID   fb_uuid.UUID `form:"wallet"`                     // By ID of the wallet
	PeriodID   fb_uuid.UUID `form:"period"`                     // By ID of the period
	DepositID  fb_uuid.UUID `form:"deposit"`                    // By ID of the deposit
	CategoryID fb_uuid.UUID `form:"category"`                   // By ID of the category
	EntityID   fb_uuid.UUID `form:"entity"`                     // By ID of the entity
	Name       string       `form:"name" filterField:"false"`   // By name
	Note       string       `form:"note" filterField:"false"`   // By note
	Search     string       `form:"search" filterField:"false"` // By string in name or note
	Offset     uint         `form:"offset" filterField:"false"` // The offset of the first transfer returned. Defaults to 0.
	Limit      int          `form:"limit" filterField:"false"`  // Maximum number of transfers to return. Defaults to 50.
}

func (f TransferQueryFilter) model() models.Transfer {
	var entityID *uuid.UUID
	if f.EntityID.UUID != uuid.Nil {
		entityID = &f.EntityID.UUID
	}

	return models.Transfer{
		WalletID:   f.WalletID.UUID,
		PeriodID:   f.PeriodID.UUID,
		DepositID:  f.DepositID.UUID,
		CategoryID: f.CategoryID.UUID,
		EntityID:   entityID,
	}
}

// getTransferModel loads the transfer from the URI and verifies its
// type and access to its wallet.
func getTransferModel(c *gin.Context, typ models.TransferType, collection string) (models.Transfer, error) {
	resource := strings.TrimSuffix(collection, "s")

	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		return models.Transfer{}, err
	}

	// Filtering on the type makes sure an income is never addressable
	// as an expense and vice versa
	var transfer models.Transfer
	err = models.DB.First(&transfer, "id = ? AND type = ?", uri.ID.UUID, typ).Error
	if err != nil {
		return models.Transfer{}, err
	}

	err = checkWalletAccess(c, transfer.WalletID, resource)
	if err != nil {
		return models.Transfer{}, err
	}

	return transfer, nil
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transfers
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/expenses/{id} [options]
func optionsTransferDetail(typ models.TransferType, collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, err := getTransferModel(c, typ, collection)
		if err != nil {
			c.JSON(status(err), httpError{
				Error: err.Error(),
			})
			return
		}

		httputil.OptionsGetPatchDelete(c)
	}
}

// @Summary		Create transfers
// @Description	Creates new transfers of the collection's type
// @Tags			Transfers
// @Produce		json
// @Success		201			{object}	TransferCreateResponse
// @Failure		400			{object}	TransferCreateResponse
// @Failure		404			{object}	TransferCreateResponse
// @Failure		500			{object}	TransferCreateResponse
// @Param			transfers	body		[]TransferEditable	true	"Transfers"
// @Router			/v1/expenses [post]
func createTransfers(typ models.TransferType, collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var editables []TransferEditable

		// Bind data and return error if not possible
		err := httputil.BindData(c, &editables)
		if err != nil {
			e := err.Error()
			c.JSON(status(err), TransferCreateResponse{
				Error: &e,
			})
			return
		}

		// The final http status. Will be modified when errors occur
		status := http.StatusCreated
		r := TransferCreateResponse{}

		for _, editable := range editables {
			var period models.Period
			err := models.DB.First(&period, "id = ?", editable.PeriodID).Error
			if err != nil {
				status = r.appendError(err, status)
				continue
			}

			err = checkWalletAccess(c, period.WalletID, "period")
			if err != nil {
				status = r.appendError(err, status)
				continue
			}

			transfer := editable.model(typ)

			// The balance hook runs inside the transaction gorm opens
			// for the create, so the transfer and the deposit balance
			// are written atomically
			err = models.DB.Create(&transfer).Error
			if err != nil {
				status = r.appendError(err, status)
				continue
			}

			data := newTransfer(c, collection, transfer)
			r.Data = append(r.Data, TransferResponse{Data: &data})
		}

		c.JSON(status, r)
	}
}

// @Summary		Get transfers
// @Description	Returns a list of transfers of the collection's type
// @Tags			Transfers
// @Produce		json
// @Success		200	{object}	TransferListResponse
// @Failure		400	{object}	TransferListResponse
// @Failure		500	{object}	TransferListResponse
// @Router			/v1/expenses [get]
// @Param			wallet		query	string	false	"Filter by wallet ID"
// @Param			period		query	string	false	"Filter by period ID"
// @Param			deposit		query	string	false	"Filter by deposit ID"
// @Param			category	query	string	false	"Filter by category ID"
// @Param			entity		query	string	false	"Filter by entity ID"
// @Param			name		query	string	false	"Filter by name"
// @Param			note		query	string	false	"Filter by note"
// @Param			search		query	string	false	"Search for this text in name and note"
// @Param			offset		query	uint	false	"The offset of the first transfer returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of transfers to return. Defaults to 50."
func getTransfers(typ models.TransferType, collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter TransferQueryFilter

		// Every parameter is bound into a string, so this will always succeed
		_ = c.Bind(&filter)

		// Get the fields that we are filtering for
		queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

		filterModel := filter.model()

		q := models.DB.
			Order("date DESC").
			Where("type = ?", typ).
			Where(&filterModel, queryFields...)

		q, err := walletScope(c, q)
		if err != nil {
			s := err.Error()
			c.JSON(status(err), TransferListResponse{
				Error: &s,
			})
			return
		}

		q = stringFilters(models.DB, q, setFields, filter.Name, filter.Note, filter.Search)

		// Set the offset. Does not need checking since the default is 0
		q = q.Offset(int(filter.Offset))

		// Default to 50 transfers and set the limit
		limit := 50
		if slices.Contains(setFields, "Limit") {
			limit = filter.Limit
		}
		q = q.Limit(limit)

		var transfers []models.Transfer
		err = q.Find(&transfers).Error
		if err != nil {
			s := err.Error()
			c.JSON(status(err), TransferListResponse{
				Error: &s,
			})
			return
		}

		var count int64
		err = q.Limit(-1).Offset(-1).Count(&count).Error
		if err != nil {
			e := err.Error()
			c.JSON(status(err), TransferListResponse{
				Error: &e,
			})
			return
		}

		data := make([]Transfer, 0)
		for _, transfer := range transfers {
			data = append(data, newTransfer(c, collection, transfer))
		}

		c.JSON(http.StatusOK, TransferListResponse{
			Data: data,
			Pagination: &Pagination{
				Count:  len(data),
				Total:  count,
				Offset: filter.Offset,
				Limit:  limit,
			},
		})
	}
}

// @Summary		Get transfer
// @Description	Returns a specific transfer of the collection's type
// @Tags			Transfers
// @Produce		json
// @Success		200	{object}	TransferResponse
// @Failure		400	{object}	TransferResponse
// @Failure		404	{object}	TransferResponse
// @Failure		500	{object}	TransferResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/expenses/{id} [get]
func getTransferHandler(typ models.TransferType, collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		transfer, err := getTransferModel(c, typ, collection)
		if err != nil {
			s := err.Error()
			c.JSON(status(err), TransferResponse{
				Error: &s,
			})
			return
		}

		data := newTransfer(c, collection, transfer)
		c.JSON(http.StatusOK, TransferResponse{Data: &data})
	}
}

// @Summary		Update transfer
// @Description	Update an existing transfer. Only values to be updated need to be specified.
// @Tags			Transfers
// @Accept			json
// @Produce		json
// @Success		200			{object}	TransferResponse
// @Failure		400			{object}	TransferResponse
// @Failure		404			{object}	TransferResponse
// @Failure		500			{object}	TransferResponse
// @Param			id			path		URIID				true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			transfer	body		TransferEditable	true	"Transfer"
// @Router			/v1/expenses/{id} [patch]
func updateTransfer(typ models.TransferType, collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		transfer, err := getTransferModel(c, typ, collection)
		if err != nil {
			s := err.Error()
			c.JSON(status(err), TransferResponse{
				Error: &s,
			})
			return
		}

		updateFields, err := httputil.GetBodyFields(c, TransferEditable{})
		if err != nil {
			s := err.Error()
			c.JSON(status(err), TransferResponse{
				Error: &s,
			})
			return
		}

		// Prefill the editable with the current values so that partial
		// updates are validated against the full resource.
		data := TransferEditable{
			Name:       transfer.Name,
			Note:       transfer.Note,
			Value:      transfer.Value,
			Date:       transfer.Date,
			PeriodID:   transfer.PeriodID,
			DepositID:  transfer.DepositID,
			CategoryID: transfer.CategoryID,
			EntityID:   transfer.EntityID,
		}

		err = httputil.BindData(c, &data)
		if err != nil {
			s := err.Error()
			c.JSON(status(err), TransferResponse{
				Error: &s,
			})
			return
		}

		// When the transfer moves to another period, the target period
		// must be accessible, too
		if data.PeriodID != transfer.PeriodID {
			var period models.Period
			err = models.DB.First(&period, "id = ?", data.PeriodID).Error
			if err == nil {
				err = checkWalletAccess(c, period.WalletID, "period")
			}

			if err != nil {
				s := err.Error()
				c.JSON(status(err), TransferResponse{
					Error: &s,
				})
				return
			}
		}

		update := data.model(typ)
		update.ID = transfer.ID

		previousDepositID := transfer.DepositID

		// The save hook only recomputes the balance of the deposit the
		// transfer points to after the update. When the transfer moves
		// between deposits, the previous deposit is recomputed in the
		// same transaction.
		err = models.DB.Transaction(func(tx *gorm.DB) error {
			err := tx.Model(&transfer).Select("", updateFields...).Updates(update).Error
			if err != nil {
				return err
			}

			if transfer.DepositID != previousDepositID {
				return models.RecalculateBalance(tx, previousDepositID)
			}

			return nil
		})
		if err != nil {
			s := err.Error()
			c.JSON(status(err), TransferResponse{
				Error: &s,
			})
			return
		}

		r := newTransfer(c, collection, transfer)
		c.JSON(http.StatusOK, TransferResponse{Data: &r})
	}
}

// @Summary		Delete transfer
// @Description	Deletes a transfer and updates the deposit balance
// @Tags			Transfers
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/expenses/{id} [delete]
func deleteTransfer(typ models.TransferType, collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		transfer, err := getTransferModel(c, typ, collection)
		if err != nil {
			c.JSON(status(err), httpError{
				Error: err.Error(),
			})
			return
		}

		err = models.DB.Delete(&transfer).Error
		if err != nil {
			c.JSON(status(err), httpError{
				Error: err.Error(),
			})
			return
		}

		c.JSON(http.StatusNoContent, nil)
	}
}

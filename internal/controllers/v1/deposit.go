package v1

import (
	"fmt"
	"net/http"

	"github.com/finbook/backend/internal/httputil"
	"github.com/finbook/backend/internal/models"
	fb_uuid "github.com/finbook/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// RegisterDepositRoutes registers the routes for deposits with
// the RouterGroup that is passed.
func RegisterDepositRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsDepositList)
		r.GET("", GetDeposits)
		r.POST("", CreateDeposits)
	}

	// Deposit with ID
	{
		r.OPTIONS("/:id", OptionsDepositDetail)
		r.GET("/:id", GetDeposit)
		r.PATCH("/:id", UpdateDeposit)
		r.DELETE("/:id", DeleteDeposit)
	}
}

// DepositEditable represents all user configurable parameters
type DepositEditable struct {
	WalletID uuid.UUID          `json:"walletId" example:"550dc009-cea6-4c12-b2a5-03446eb7b7cf"` // ID of the wallet the deposit belongs to
	Name     string             `json:"name" example:"Checking account" default:""`              // Name of the deposit
	Note     string             `json:"note" example:"Main account" default:""`                  // Notes about the deposit
	Type     models.DepositType `json:"type" example:"PERSONAL" default:"PERSONAL"`              // Type of the deposit
	Archived bool               `json:"archived" example:"true" default:"false"`                 // Is the deposit archived?
}

func (editable DepositEditable) model() models.Deposit {
	return models.Deposit{
		WalletID: editable.WalletID,
		Name:     editable.Name,
		Note:     editable.Note,
		Type:     editable.Type,
		Archived: editable.Archived,
	}
}

type DepositLinks struct {
	Self      string `json:"self" example:"https://example.com/api/v1/deposits/af892e10-7e0a-4fb8-b1bc-4b6d88401ed2"`              // The deposit itself
	Incomes   string `json:"incomes" example:"https://example.com/api/v1/incomes?deposit=af892e10-7e0a-4fb8-b1bc-4b6d88401ed2"`    // Incomes for this deposit
	Expenses  string `json:"expenses" example:"https://example.com/api/v1/expenses?deposit=af892e10-7e0a-4fb8-b1bc-4b6d88401ed2"`  // Expenses for this deposit
}

type Deposit struct {
	models.DefaultModel
	DepositEditable
	Balance decimal.Decimal `json:"balance" example:"1304.37"` // Balance of the deposit, computed from its transfers
	Links   DepositLinks    `json:"links"`
}

func newDeposit(c *gin.Context, model models.Deposit) Deposit {
	url := c.GetString(string(models.DBContextURL))

	return Deposit{
		DefaultModel: model.DefaultModel,
		DepositEditable: DepositEditable{
			WalletID: model.WalletID,
			Name:     model.Name,
			Note:     model.Note,
			Type:     model.Type,
			Archived: model.Archived,
		},
		Balance: model.Balance,
		Links: DepositLinks{
			Self:     fmt.Sprintf("%s/v1/deposits/%s", url, model.ID),
			Incomes:  fmt.Sprintf("%s/v1/incomes?deposit=%s", url, model.ID),
			Expenses: fmt.Sprintf("%s/v1/expenses?deposit=%s", url, model.ID),
		},
	}
}

type DepositListResponse struct {
	Data       []Deposit   `json:"data"`                                                          // List of deposits
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type DepositCreateResponse struct {
	Data  []DepositResponse `json:"data"`                                                          // List of the created deposits or their respective error
	Error *string           `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

func (d *DepositCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	d.Data = append(d.Data, DepositResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type DepositResponse struct {
	Data  *Deposit `json:"data"`                                                          // Data for the deposit
	Error *string  `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type DepositQueryFilter struct {
	WalletID fb_uuid.UUID       `form:"wallet"`                     // By ID of the wallet
	Name     string             `form:"name" filterField:"false"`   // By name
	Note     string             `form:"note" filterField:"false"`   // By note
	Type     models.DepositType `form:"type"`                       // By type
	Archived bool               `form:"archived"`                   // Is the deposit archived?
	Search   string             `form:"search" filterField:"false"` // By string in name or note
	Offset   uint               `form:"offset" filterField:"false"` // The offset of the first deposit returned. Defaults to 0.
	Limit    int                `form:"limit" filterField:"false"`  // Maximum number of deposits to return. Defaults to 50.
}

func (f DepositQueryFilter) model() models.Deposit {
	return models.Deposit{
		WalletID: f.WalletID.UUID,
		Type:     f.Type,
		Archived: f.Archived,
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Deposits
// @Success		204
// @Router			/v1/deposits [options]
func OptionsDepositList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Deposits
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/deposits/{id} [options]
func OptionsDepositDetail(c *gin.Context) {
	_, err := getDeposit(c)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// getDeposit loads the deposit from the URI and verifies access to its wallet.
func getDeposit(c *gin.Context) (models.Deposit, error) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		return models.Deposit{}, err
	}

	var deposit models.Deposit
	err = models.DB.First(&deposit, "id = ?", uri.ID.UUID).Error
	if err != nil {
		return models.Deposit{}, err
	}

	err = checkWalletAccess(c, deposit.WalletID, "deposit")
	if err != nil {
		return models.Deposit{}, err
	}

	return deposit, nil
}

// @Summary		Create deposits
// @Description	Creates new deposits
// @Tags			Deposits
// @Produce		json
// @Success		201			{object}	DepositCreateResponse
// @Failure		400			{object}	DepositCreateResponse
// @Failure		404			{object}	DepositCreateResponse
// @Failure		500			{object}	DepositCreateResponse
// @Param			deposits	body		[]DepositEditable	true	"Deposits"
// @Router			/v1/deposits [post]
func CreateDeposits(c *gin.Context) {
	var editables []DepositEditable

	// Bind data and return error if not possible
	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), DepositCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := DepositCreateResponse{}

	for _, editable := range editables {
		err := checkWalletAccess(c, editable.WalletID, "wallet")
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		deposit := editable.model()

		err = models.DB.Create(&deposit).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newDeposit(c, deposit)
		r.Data = append(r.Data, DepositResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		Get deposits
// @Description	Returns a list of deposits
// @Tags			Deposits
// @Produce		json
// @Success		200	{object}	DepositListResponse
// @Failure		400	{object}	DepositListResponse
// @Failure		500	{object}	DepositListResponse
// @Router			/v1/deposits [get]
// @Param			wallet		query	string	false	"Filter by wallet ID"
// @Param			name		query	string	false	"Filter by name"
// @Param			note		query	string	false	"Filter by note"
// @Param			type		query	string	false	"Filter by type"
// @Param			archived	query	bool	false	"Is the deposit archived?"
// @Param			search		query	string	false	"Search for this text in name and note"
// @Param			offset		query	uint	false	"The offset of the first deposit returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of deposits to return. Defaults to 50."
func GetDeposits(c *gin.Context) {
	var filter DepositQueryFilter

	// Every parameter is bound into a string, so this will always succeed
	_ = c.Bind(&filter)

	// Get the fields that we are filtering for
	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	filterModel := filter.model()

	q := models.DB.
		Order("name ASC").
		Where(&filterModel, queryFields...)

	q, err := walletScope(c, q)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), DepositListResponse{
			Error: &s,
		})
		return
	}

	q = stringFilters(models.DB, q, setFields, filter.Name, filter.Note, filter.Search)

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 deposits and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var deposits []models.Deposit
	err = q.Find(&deposits).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), DepositListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), DepositListResponse{
			Error: &e,
		})
		return
	}

	data := make([]Deposit, 0)
	for _, deposit := range deposits {
		data = append(data, newDeposit(c, deposit))
	}

	c.JSON(http.StatusOK, DepositListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get deposit
// @Description	Returns a specific deposit
// @Tags			Deposits
// @Produce		json
// @Success		200	{object}	DepositResponse
// @Failure		400	{object}	DepositResponse
// @Failure		404	{object}	DepositResponse
// @Failure		500	{object}	DepositResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/deposits/{id} [get]
func GetDeposit(c *gin.Context) {
	deposit, err := getDeposit(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), DepositResponse{
			Error: &s,
		})
		return
	}

	data := newDeposit(c, deposit)
	c.JSON(http.StatusOK, DepositResponse{Data: &data})
}

// @Summary		Update deposit
// @Description	Update an existing deposit. Only values to be updated need to be specified.
// @Tags			Deposits
// @Accept			json
// @Produce		json
// @Success		200		{object}	DepositResponse
// @Failure		400		{object}	DepositResponse
// @Failure		404		{object}	DepositResponse
// @Failure		500		{object}	DepositResponse
// @Param			id		path		URIID			true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			deposit	body		DepositEditable	true	"Deposit"
// @Router			/v1/deposits/{id} [patch]
func UpdateDeposit(c *gin.Context) {
	deposit, err := getDeposit(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), DepositResponse{
			Error: &s,
		})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, DepositEditable{})
	if err != nil {
		s := err.Error()
		c.JSON(status(err), DepositResponse{
			Error: &s,
		})
		return
	}

	// Prefill the editable with the current values so that partial
	// updates are validated against the full resource.
	data := DepositEditable{
		WalletID: deposit.WalletID,
		Name:     deposit.Name,
		Note:     deposit.Note,
		Type:     deposit.Type,
		Archived: deposit.Archived,
	}

	err = httputil.BindData(c, &data)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), DepositResponse{
			Error: &s,
		})
		return
	}

	// The wallet of a deposit cannot be changed
	data.WalletID = deposit.WalletID

	update := data.model()
	update.ID = deposit.ID

	err = models.DB.Model(&deposit).Select("", updateFields...).Updates(update).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), DepositResponse{
			Error: &s,
		})
		return
	}

	r := newDeposit(c, deposit)
	c.JSON(http.StatusOK, DepositResponse{Data: &r})
}

// @Summary		Delete deposit
// @Description	Deletes a deposit. Deposits that transfers reference cannot be deleted.
// @Tags			Deposits
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/deposits/{id} [delete]
func DeleteDeposit(c *gin.Context) {
	deposit, err := getDeposit(c)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Delete(&deposit).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

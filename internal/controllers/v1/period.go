package v1

import (
	"fmt"
	"net/http"

	"github.com/finbook/backend/internal/httputil"
	"github.com/finbook/backend/internal/models"
	"github.com/finbook/backend/internal/types"
	fb_uuid "github.com/finbook/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/exp/slices"
)

// RegisterPeriodRoutes registers the routes for periods with
// the RouterGroup that is passed.
func RegisterPeriodRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsPeriodList)
		r.GET("", GetPeriods)
		r.POST("", CreatePeriods)
	}

	// Period with ID
	{
		r.OPTIONS("/:id", OptionsPeriodDetail)
		r.GET("/:id", GetPeriod)
		r.PATCH("/:id", UpdatePeriod)
		r.DELETE("/:id", DeletePeriod)
	}
}

// PeriodEditable represents all user configurable parameters
type PeriodEditable struct {
	WalletID  uuid.UUID  `json:"walletId" example:"550dc009-cea6-4c12-b2a5-03446eb7b7cf"` // ID of the wallet the period belongs to
	Name      string     `json:"name" example:"January 2026" default:""`                  // Name of the period
	StartDate types.Date `json:"startDate" example:"2026-01-01"`                          // First day of the period
	EndDate   types.Date `json:"endDate" example:"2026-01-31"`                            // Last day of the period, inclusive
	Active    bool       `json:"active" example:"true" default:"false"`                   // Is this the active period of the wallet?
}

func (editable PeriodEditable) model() models.Period {
	return models.Period{
		WalletID:  editable.WalletID,
		Name:      editable.Name,
		StartDate: editable.StartDate,
		EndDate:   editable.EndDate,
		Active:    editable.Active,
	}
}

type PeriodLinks struct {
	Self        string `json:"self" example:"https://example.com/api/v1/periods/d7ab6a9e-5d43-4b31-89d4-2f8a88a71a9e"`               // The period itself
	Predictions string `json:"predictions" example:"https://example.com/api/v1/predictions?period=d7ab6a9e-5d43-4b31-89d4-2f8a88a71a9e"` // Predictions for this period
	Dashboard   string `json:"dashboard" example:"https://example.com/api/v1/dashboard?period=d7ab6a9e-5d43-4b31-89d4-2f8a88a71a9e"` // Dashboard for this period
}

type Period struct {
	models.DefaultModel
	PeriodEditable
	Links PeriodLinks `json:"links"`
}

func newPeriod(c *gin.Context, model models.Period) Period {
	url := c.GetString(string(models.DBContextURL))

	return Period{
		DefaultModel: model.DefaultModel,
		PeriodEditable: PeriodEditable{
			WalletID:  model.WalletID,
			Name:      model.Name,
			StartDate: model.StartDate,
			EndDate:   model.EndDate,
			Active:    model.Active,
		},
		Links: PeriodLinks{
			Self:        fmt.Sprintf("%s/v1/periods/%s", url, model.ID),
			Predictions: fmt.Sprintf("%s/v1/predictions?period=%s", url, model.ID),
			Dashboard:   fmt.Sprintf("%s/v1/dashboard?period=%s", url, model.ID),
		},
	}
}

type PeriodListResponse struct {
	Data       []Period    `json:"data"`                                                          // List of periods
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type PeriodCreateResponse struct {
	Data  []PeriodResponse `json:"data"`                                                          // List of the created periods or their respective error
	Error *string          `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

func (p *PeriodCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	p.Data = append(p.Data, PeriodResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type PeriodResponse struct {
	Data  *Period `json:"data"`                                                          // Data for the period
	Error *string `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type PeriodQueryFilter struct {
	WalletID fb_uuid.UUID `form:"wallet"`                     // By ID of the wallet
	Name     string       `form:"name" filterField:"false"`   // By name
	Active   bool         `form:"active"`                     // Is this the active period?
	Offset   uint         `form:"offset" filterField:"false"` // The offset of the first period returned. Defaults to 0.
	Limit    int          `form:"limit" filterField:"false"`  // Maximum number of periods to return. Defaults to 50.
}

func (f PeriodQueryFilter) model() models.Period {
	return models.Period{
		WalletID: f.WalletID.UUID,
		Active:   f.Active,
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Periods
// @Success		204
// @Router			/v1/periods [options]
func OptionsPeriodList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Periods
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/periods/{id} [options]
func OptionsPeriodDetail(c *gin.Context) {
	_, err := getPeriod(c)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// getPeriod loads the period from the URI and verifies access to its wallet.
func getPeriod(c *gin.Context) (models.Period, error) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		return models.Period{}, err
	}

	var period models.Period
	err = models.DB.First(&period, "id = ?", uri.ID.UUID).Error
	if err != nil {
		return models.Period{}, err
	}

	err = checkWalletAccess(c, period.WalletID, "period")
	if err != nil {
		return models.Period{}, err
	}

	return period, nil
}

// @Summary		Create periods
// @Description	Creates new periods
// @Tags			Periods
// @Produce		json
// @Success		201		{object}	PeriodCreateResponse
// @Failure		400		{object}	PeriodCreateResponse
// @Failure		404		{object}	PeriodCreateResponse
// @Failure		500		{object}	PeriodCreateResponse
// @Param			periods	body		[]PeriodEditable	true	"Periods"
// @Router			/v1/periods [post]
func CreatePeriods(c *gin.Context) {
	var editables []PeriodEditable

	// Bind data and return error if not possible
	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), PeriodCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := PeriodCreateResponse{}

	for _, editable := range editables {
		err := checkWalletAccess(c, editable.WalletID, "wallet")
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		period := editable.model()

		err = models.DB.Create(&period).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newPeriod(c, period)
		r.Data = append(r.Data, PeriodResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		Get periods
// @Description	Returns a list of periods
// @Tags			Periods
// @Produce		json
// @Success		200	{object}	PeriodListResponse
// @Failure		400	{object}	PeriodListResponse
// @Failure		500	{object}	PeriodListResponse
// @Router			/v1/periods [get]
// @Param			wallet	query	string	false	"Filter by wallet ID"
// @Param			name	query	string	false	"Filter by name"
// @Param			active	query	bool	false	"Is this the active period?"
// @Param			offset	query	uint	false	"The offset of the first period returned. Defaults to 0."
// @Param			limit	query	int		false	"Maximum number of periods to return. Defaults to 50."
func GetPeriods(c *gin.Context) {
	var filter PeriodQueryFilter

	// Every parameter is bound into a string, so this will always succeed
	_ = c.Bind(&filter)

	// Get the fields that we are filtering for
	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	filterModel := filter.model()

	q := models.DB.
		Order("start_date ASC").
		Where(&filterModel, queryFields...)

	q, err := walletScope(c, q)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PeriodListResponse{
			Error: &s,
		})
		return
	}

	if filter.Name != "" {
		q = q.Where("name LIKE ?", fmt.Sprintf("%%%s%%", filter.Name))
	} else if slices.Contains(setFields, "Name") {
		q = q.Where("name = ''")
	}

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 periods and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var periods []models.Period
	err = q.Find(&periods).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PeriodListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), PeriodListResponse{
			Error: &e,
		})
		return
	}

	data := make([]Period, 0)
	for _, period := range periods {
		data = append(data, newPeriod(c, period))
	}

	c.JSON(http.StatusOK, PeriodListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get period
// @Description	Returns a specific period
// @Tags			Periods
// @Produce		json
// @Success		200	{object}	PeriodResponse
// @Failure		400	{object}	PeriodResponse
// @Failure		404	{object}	PeriodResponse
// @Failure		500	{object}	PeriodResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/periods/{id} [get]
func GetPeriod(c *gin.Context) {
	period, err := getPeriod(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PeriodResponse{
			Error: &s,
		})
		return
	}

	data := newPeriod(c, period)
	c.JSON(http.StatusOK, PeriodResponse{Data: &data})
}

// @Summary		Update period
// @Description	Update an existing period. Only values to be updated need to be specified.
// @Tags			Periods
// @Accept			json
// @Produce		json
// @Success		200		{object}	PeriodResponse
// @Failure		400		{object}	PeriodResponse
// @Failure		404		{object}	PeriodResponse
// @Failure		500		{object}	PeriodResponse
// @Param			id		path		URIID			true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			period	body		PeriodEditable	true	"Period"
// @Router			/v1/periods/{id} [patch]
func UpdatePeriod(c *gin.Context) {
	period, err := getPeriod(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PeriodResponse{
			Error: &s,
		})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, PeriodEditable{})
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PeriodResponse{
			Error: &s,
		})
		return
	}

	// Prefill the editable with the current values so that partial
	// updates are validated against the full resource.
	data := PeriodEditable{
		WalletID:  period.WalletID,
		Name:      period.Name,
		StartDate: period.StartDate,
		EndDate:   period.EndDate,
		Active:    period.Active,
	}

	err = httputil.BindData(c, &data)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PeriodResponse{
			Error: &s,
		})
		return
	}

	// The wallet of a period cannot be changed
	data.WalletID = period.WalletID

	update := data.model()
	update.ID = period.ID

	err = models.DB.Model(&period).Select("", updateFields...).Updates(update).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PeriodResponse{
			Error: &s,
		})
		return
	}

	r := newPeriod(c, period)
	c.JSON(http.StatusOK, PeriodResponse{Data: &r})
}

// @Summary		Delete period
// @Description	Deletes a period and its predictions. Periods that transfers reference cannot be deleted.
// @Tags			Periods
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/periods/{id} [delete]
func DeletePeriod(c *gin.Context) {
	period, err := getPeriod(c)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Delete(&period).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

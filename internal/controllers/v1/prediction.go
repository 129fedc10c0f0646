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

// RegisterPredictionRoutes registers the routes for expense predictions
// with the RouterGroup that is passed.
func RegisterPredictionRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsPredictionList)
		r.GET("", GetPredictions)
		r.POST("", CreatePredictions)
	}

	// Prediction with ID
	{
		r.OPTIONS("/:id", OptionsPredictionDetail)
		r.GET("/:id", GetPrediction)
		r.PATCH("/:id", UpdatePrediction)
		r.DELETE("/:id", DeletePrediction)
	}
}

// PredictionEditable represents all user configurable parameters
type PredictionEditable struct {
	PeriodID   uuid.UUID       `json:"periodId" example:"d7ab6a9e-5d43-4b31-89d4-2f8a88a71a9e"`   // ID of the period the prediction is made for
	CategoryID uuid.UUID       `json:"categoryId" example:"3b1ea324-d438-4419-882a-2fc91d71772f"` // ID of the expense category the prediction is made for
	Value      decimal.Decimal `json:"value" example:"180.47"`                                    // Predicted amount, must be positive
	Note       string          `json:"note" example:"Less than usual, on holiday" default:""`     // Notes about the prediction
}

func (editable PredictionEditable) model() models.ExpensePrediction {
	return models.ExpensePrediction{
		PeriodID:   editable.PeriodID,
		CategoryID: editable.CategoryID,
		Value:      editable.Value,
		Note:       editable.Note,
	}
}

type PredictionLinks struct {
	Self string `json:"self" example:"https://example.com/api/v1/predictions/a4e36356-4579-461b-8d33-4b94fe0f7bb9"` // The prediction itself
}

type Prediction struct {
	models.DefaultModel
	PredictionEditable
	Links PredictionLinks `json:"links"`
}

func newPrediction(c *gin.Context, model models.ExpensePrediction) Prediction {
	url := c.GetString(string(models.DBContextURL))

	return Prediction{
		DefaultModel: model.DefaultModel,
		PredictionEditable: PredictionEditable{
			PeriodID:   model.PeriodID,
			CategoryID: model.CategoryID,
			Value:      model.Value,
			Note:       model.Note,
		},
		Links: PredictionLinks{
			Self: fmt.Sprintf("%s/v1/predictions/%s", url, model.ID),
		},
	}
}

type PredictionListResponse struct {
	Data       []Prediction `json:"data"`                                                          // List of predictions
	Error      *string      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination  `json:"pagination"`                                                    // Pagination information
}

type PredictionCreateResponse struct {
	Data  []PredictionResponse `json:"data"`                                                          // List of the created predictions or their respective error
	Error *string              `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

func (p *PredictionCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	p.Data = append(p.Data, PredictionResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type PredictionResponse struct {
	Data  *Prediction `json:"data"`                                                          // Data for the prediction
	Error *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type PredictionQueryFilter struct {
	PeriodID   fb_uuid.UUID `form:"period"`                     // By ID of the period
	CategoryID fb_uuid.UUID `form:"category"`                   // By ID of the category
	Note       string       `form:"note" filterField:"false"`   // By note
	Offset     uint         `form:"offset" filterField:"false"` // The offset of the first prediction returned. Defaults to 0.
	Limit      int          `form:"limit" filterField:"false"`  // Maximum number of predictions to return. Defaults to 50.
}

func (f PredictionQueryFilter) model() models.ExpensePrediction {
	return models.ExpensePrediction{
		PeriodID:   f.PeriodID.UUID,
		CategoryID: f.CategoryID.UUID,
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Predictions
// @Success		204
// @Router			/v1/predictions [options]
func OptionsPredictionList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Predictions
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/predictions/{id} [options]
func OptionsPredictionDetail(c *gin.Context) {
	_, err := getPrediction(c)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// getPrediction loads the prediction from the URI and verifies access
// to the wallet of its period.
func getPrediction(c *gin.Context) (models.ExpensePrediction, error) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		return models.ExpensePrediction{}, err
	}

	var prediction models.ExpensePrediction
	err = models.DB.First(&prediction, "id = ?", uri.ID.UUID).Error
	if err != nil {
		return models.ExpensePrediction{}, err
	}

	var period models.Period
	err = models.DB.First(&period, "id = ?", prediction.PeriodID).Error
	if err != nil {
		return models.ExpensePrediction{}, err
	}

	err = checkWalletAccess(c, period.WalletID, "expense prediction")
	if err != nil {
		return models.ExpensePrediction{}, err
	}

	return prediction, nil
}

// @Summary		Create predictions
// @Description	Creates new expense predictions
// @Tags			Predictions
// @Produce		json
// @Success		201			{object}	PredictionCreateResponse
// @Failure		400			{object}	PredictionCreateResponse
// @Failure		404			{object}	PredictionCreateResponse
// @Failure		500			{object}	PredictionCreateResponse
// @Param			predictions	body		[]PredictionEditable	true	"Predictions"
// @Router			/v1/predictions [post]
func CreatePredictions(c *gin.Context) {
	var editables []PredictionEditable

	// Bind data and return error if not possible
	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), PredictionCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := PredictionCreateResponse{}

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

		prediction := editable.model()

		err = models.DB.Create(&prediction).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newPrediction(c, prediction)
		r.Data = append(r.Data, PredictionResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		Get predictions
// @Description	Returns a list of expense predictions
// @Tags			Predictions
// @Produce		json
// @Success		200	{object}	PredictionListResponse
// @Failure		400	{object}	PredictionListResponse
// @Failure		500	{object}	PredictionListResponse
// @Router			/v1/predictions [get]
// @Param			period		query	string	false	"Filter by period ID"
// @Param			category	query	string	false	"Filter by category ID"
// @Param			note		query	string	false	"Filter by note"
// @Param			offset		query	uint	false	"The offset of the first prediction returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of predictions to return. Defaults to 50."
func GetPredictions(c *gin.Context) {
	var filter PredictionQueryFilter

	// Every parameter is bound into a string, so this will always succeed
	_ = c.Bind(&filter)

	// Get the fields that we are filtering for
	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	ids, err := models.WalletIDs(models.DB, currentUser(c).ID)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PredictionListResponse{
			Error: &s,
		})
		return
	}

	filterModel := filter.model()

	// Predictions carry no wallet ID, scoping goes through their period
	q := models.DB.
		Joins("JOIN periods ON periods.id = expense_predictions.period_id").
		Where("periods.wallet_id IN (?)", ids).
		Order("expense_predictions.created_at ASC").
		Where(&filterModel, queryFields...)

	if filter.Note != "" {
		q = q.Where("expense_predictions.note LIKE ?", fmt.Sprintf("%%%s%%", filter.Note))
	} else if slices.Contains(setFields, "Note") {
		q = q.Where("expense_predictions.note = ''")
	}

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 predictions and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var predictions []models.ExpensePrediction
	err = q.Find(&predictions).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PredictionListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), PredictionListResponse{
			Error: &e,
		})
		return
	}

	data := make([]Prediction, 0)
	for _, prediction := range predictions {
		data = append(data, newPrediction(c, prediction))
	}

	c.JSON(http.StatusOK, PredictionListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get prediction
// @Description	Returns a specific expense prediction
// @Tags			Predictions
// @Produce		json
// @Success		200	{object}	PredictionResponse
// @Failure		400	{object}	PredictionResponse
// @Failure		404	{object}	PredictionResponse
// @Failure		500	{object}	PredictionResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/predictions/{id} [get]
func GetPrediction(c *gin.Context) {
	prediction, err := getPrediction(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PredictionResponse{
			Error: &s,
		})
		return
	}

	data := newPrediction(c, prediction)
	c.JSON(http.StatusOK, PredictionResponse{Data: &data})
}

// @Summary		Update prediction
// @Description	Update an existing expense prediction. Only values to be updated need to be specified.
// @Tags			Predictions
// @Accept			json
// @Produce		json
// @Success		200			{object}	PredictionResponse
// @Failure		400			{object}	PredictionResponse
// @Failure		404			{object}	PredictionResponse
// @Failure		500			{object}	PredictionResponse
// @Param			id			path		URIID				true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			prediction	body		PredictionEditable	true	"Prediction"
// @Router			/v1/predictions/{id} [patch]
func UpdatePrediction(c *gin.Context) {
	prediction, err := getPrediction(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PredictionResponse{
			Error: &s,
		})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, PredictionEditable{})
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PredictionResponse{
			Error: &s,
		})
		return
	}

	// Prefill the editable with the current values so that partial
	// updates are validated against the full resource.
	data := PredictionEditable{
		PeriodID:   prediction.PeriodID,
		CategoryID: prediction.CategoryID,
		Value:      prediction.Value,
		Note:       prediction.Note,
	}

	err = httputil.BindData(c, &data)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PredictionResponse{
			Error: &s,
		})
		return
	}

	// When the prediction moves to another period, the target period
	// must be accessible, too
	if data.PeriodID != prediction.PeriodID {
		var period models.Period
		err = models.DB.First(&period, "id = ?", data.PeriodID).Error
		if err == nil {
			err = checkWalletAccess(c, period.WalletID, "period")
		}

		if err != nil {
			s := err.Error()
			c.JSON(status(err), PredictionResponse{
				Error: &s,
			})
			return
		}
	}

	update := data.model()
	update.ID = prediction.ID

	err = models.DB.Model(&prediction).Select("", updateFields...).Updates(update).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PredictionResponse{
			Error: &s,
		})
		return
	}

	r := newPrediction(c, prediction)
	c.JSON(http.StatusOK, PredictionResponse{Data: &r})
}

// @Summary		Delete prediction
// @Description	Deletes an expense prediction
// @Tags			Predictions
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/predictions/{id} [delete]
func DeletePrediction(c *gin.Context) {
	prediction, err := getPrediction(c)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Delete(&prediction).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

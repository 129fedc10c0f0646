package v1

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/finbook/backend/internal/httputil"
	"github.com/finbook/backend/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var backendVersion string

// RegisterExportRoutes registers the routes for exports.
func RegisterExportRoutes(r *gin.RouterGroup, version string) {
	backendVersion = version

	{
		r.OPTIONS("", OptionsExport)
		r.GET("", GetExport)
	}
}

type ExportResponse struct {
	Version      string                     `json:"version"`      // The version of the backend the export was made with
	Data         map[string]json.RawMessage `json:"data"`         // The exported data
	CreationTime time.Time                  `json:"creationTime"` // Time the export was created
	Error        *string                    `json:"error,omitempty"`
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Export
// @Success		204
// @Router			/v1/export [options]
func OptionsExport(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Export
// @Description	Exports all resources of the wallets the authenticated user has access to
// @Tags			Export
// @Produce		json
// @Success		200	{object}	ExportResponse
// @Failure		500	{object}	ExportResponse
// @Router			/v1/export [get]
func GetExport(c *gin.Context) {
	fail := func(err error) {
		s := err.Error()
		c.JSON(status(err), ExportResponse{
			Error: &s,
		})
	}

	ids, err := models.WalletIDs(models.DB, currentUser(c).ID)
	if err != nil {
		fail(err)
		return
	}

	resources := make(map[string]json.RawMessage)

	export := func(name string, target any, q *gorm.DB) bool {
		err := q.Find(target).Error
		if err != nil {
			fail(err)
			return false
		}

		b, err := json.Marshal(target)
		if err != nil {
			fail(err)
			return false
		}

		resources[name] = b
		return true
	}

	var wallets []models.Wallet
	if !export("Wallet", &wallets, models.DB.Where("id IN (?)", ids)) {
		return
	}

	var periods []models.Period
	if !export("Period", &periods, models.DB.Where("wallet_id IN (?)", ids)) {
		return
	}

	var deposits []models.Deposit
	if !export("Deposit", &deposits, models.DB.Where("wallet_id IN (?)", ids)) {
		return
	}

	var entities []models.Entity
	if !export("Entity", &entities, models.DB.Where("wallet_id IN (?)", ids)) {
		return
	}

	var categories []models.Category
	if !export("Category", &categories, models.DB.Where("wallet_id IN (?)", ids)) {
		return
	}

	var predictions []models.ExpensePrediction
	if !export("ExpensePrediction", &predictions, models.DB.
		Joins("JOIN periods ON periods.id = expense_predictions.period_id").
		Where("periods.wallet_id IN (?)", ids)) {
		return
	}

	var transfers []models.Transfer
	if !export("Transfer", &transfers, models.DB.Where("wallet_id IN (?)", ids)) {
		return
	}

	c.JSON(http.StatusOK, ExportResponse{
		Version:      backendVersion,
		Data:         resources,
		CreationTime: time.Now(),
	})
}

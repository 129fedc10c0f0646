package v1

import (
	"net/http"

	"github.com/finbook/backend/internal/httputil"
	"github.com/finbook/backend/internal/models"
	fb_uuid "github.com/finbook/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RegisterDashboardRoutes registers the routes for the dashboard with
// the RouterGroup that is passed.
func RegisterDashboardRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", httputil.OptionsGet)
	r.GET("", GetDashboard)
}

type DashboardQuery struct {
	PeriodID fb_uuid.UUID `form:"period"` // ID of the period to aggregate
}

// DashboardCategory compares the prediction for an expense category
// with the amount actually spent during the period.
type DashboardCategory struct {
	CategoryID uuid.UUID       `json:"categoryId" example:"3b1ea324-d438-4419-882a-2fc91d71772f"` // ID of the category
	Name       string          `json:"name" example:"Groceries"`                                  // Name of the category
	Predicted  decimal.Decimal `json:"predicted" example:"180.47"`                                // Predicted spending, zero when no prediction exists
	Actual     decimal.Decimal `json:"actual" example:"204.40"`                                   // Amount actually spent in the period
	Delta      decimal.Decimal `json:"delta" example:"-23.93"`                                    // Predicted minus actual, negative means overspent
}

type DashboardDeposit struct {
	DepositID uuid.UUID       `json:"depositId" example:"af892e10-7e0a-4fb8-b1bc-4b6d88401ed2"` // ID of the deposit
	Name      string          `json:"name" example:"Checking account"`                          // Name of the deposit
	Balance   decimal.Decimal `json:"balance" example:"1304.37"`                                // Current balance of the deposit
}

type Dashboard struct {
	Period     Period              `json:"period"`                       // The period the dashboard is aggregated for
	IncomeSum  decimal.Decimal     `json:"incomeSum" example:"2700.00"`  // Sum of all incomes in the period
	ExpenseSum decimal.Decimal     `json:"expenseSum" example:"2134.97"` // Sum of all expenses in the period
	Balance    decimal.Decimal     `json:"balance" example:"565.03"`     // Income sum minus expense sum
	Categories []DashboardCategory `json:"categories"`                   // Prediction vs actual per expense category
	Deposits   []DashboardDeposit  `json:"deposits"`                     // Balances of the wallet's deposits
}

type DashboardResponse struct {
	Data  *Dashboard `json:"data"`                                                          // The dashboard
	Error *string    `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

// @Summary		Get dashboard
// @Description	Returns aggregated data for a period: income and expense sums, prediction vs actual per category and deposit balances
// @Tags			Dashboard
// @Produce		json
// @Success		200		{object}	DashboardResponse
// @Failure		400		{object}	DashboardResponse
// @Failure		404		{object}	DashboardResponse
// @Failure		500		{object}	DashboardResponse
// @Param			period	query		string	true	"ID of the period"
// @Router			/v1/dashboard [get]
func GetDashboard(c *gin.Context) {
	var query DashboardQuery
	if err := c.Bind(&query); err != nil || query.PeriodID.UUID == uuid.Nil {
		s := errPeriodIDParameter.Error()
		c.JSON(status(errPeriodIDParameter), DashboardResponse{
			Error: &s,
		})
		return
	}

	var period models.Period
	err := models.DB.First(&period, "id = ?", query.PeriodID.UUID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), DashboardResponse{
			Error: &s,
		})
		return
	}

	err = checkWalletAccess(c, period.WalletID, "period")
	if err != nil {
		s := err.Error()
		c.JSON(status(err), DashboardResponse{
			Error: &s,
		})
		return
	}

	incomeSum, expenseSum, err := models.PeriodSums(models.DB, period.ID)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), DashboardResponse{
			Error: &s,
		})
		return
	}

	var predictions []models.ExpensePrediction
	err = models.DB.Where(models.ExpensePrediction{PeriodID: period.ID}, "PeriodID").Find(&predictions).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), DashboardResponse{
			Error: &s,
		})
		return
	}

	predicted := make(map[uuid.UUID]decimal.Decimal, len(predictions))
	for _, prediction := range predictions {
		predicted[prediction.CategoryID] = prediction.Value
	}

	var categories []models.Category
	err = models.DB.
		Where(models.Category{WalletID: period.WalletID, Type: models.CategoryTypeExpense}, "WalletID", "Type").
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), DashboardResponse{
			Error: &s,
		})
		return
	}

	categoryData := make([]DashboardCategory, 0)
	for _, category := range categories {
		actual, err := models.CategoryExpenseSum(models.DB, period.ID, category.ID)
		if err != nil {
			s := err.Error()
			c.JSON(status(err), DashboardResponse{
				Error: &s,
			})
			return
		}

		prediction := predicted[category.ID]

		// Categories without activity and prediction carry no information
		if actual.IsZero() && prediction.IsZero() {
			continue
		}

		categoryData = append(categoryData, DashboardCategory{
			CategoryID: category.ID,
			Name:       category.Name,
			Predicted:  prediction,
			Actual:     actual,
			Delta:      prediction.Sub(actual),
		})
	}

	var deposits []models.Deposit
	err = models.DB.
		Where(models.Deposit{WalletID: period.WalletID}, "WalletID").
		Order("name ASC").
		Find(&deposits).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), DashboardResponse{
			Error: &s,
		})
		return
	}

	depositData := make([]DashboardDeposit, 0)
	for _, deposit := range deposits {
		depositData = append(depositData, DashboardDeposit{
			DepositID: deposit.ID,
			Name:      deposit.Name,
			Balance:   deposit.Balance,
		})
	}

	c.JSON(http.StatusOK, DashboardResponse{
		Data: &Dashboard{
			Period:     newPeriod(c, period),
			IncomeSum:  incomeSum,
			ExpenseSum: expenseSum,
			Balance:    incomeSum.Sub(expenseSum),
			Categories: categoryData,
			Deposits:   depositData,
		},
	})
}

package v1

import (
	"fmt"
	"net/http"

	"github.com/finbook/backend/internal/httputil"
	"github.com/finbook/backend/internal/models"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slices"
)

// RegisterWalletRoutes registers the routes for wallets with
// the RouterGroup that is passed.
func RegisterWalletRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsWalletList)
		r.GET("", GetWallets)
		r.POST("", CreateWallets)
	}

	// Wallet with ID
	{
		r.OPTIONS("/:id", OptionsWalletDetail)
		r.GET("/:id", GetWallet)
		r.PATCH("/:id", UpdateWallet)
		r.DELETE("/:id", DeleteWallet)
	}

	// Members of a wallet
	{
		r.OPTIONS("/:id/members", OptionsWalletMembers)
		r.GET("/:id/members", GetWalletMembers)
		r.POST("/:id/members", AddWalletMember)
		r.DELETE("/:id/members/:userId", RemoveWalletMember)
	}
}

// WalletEditable represents all user configurable parameters
type WalletEditable struct {
	Name     string `json:"name" example:"Household" default:""`          // Name of the wallet
	Note     string `json:"note" example:"Our shared money" default:""`   // Notes about the wallet
	Currency string `json:"currency" example:"€" default:""`              // Currency the wallet is kept in
}

func (editable WalletEditable) model() models.Wallet {
	return models.Wallet{
		Name:     editable.Name,
		Note:     editable.Note,
		Currency: editable.Currency,
	}
}

type WalletLinks struct {
	Self       string `json:"self" example:"https://example.com/api/v1/wallets/550dc009-cea6-4c12-b2a5-03446eb7b7cf"`            // The wallet itself
	Periods    string `json:"periods" example:"https://example.com/api/v1/periods?wallet=550dc009-cea6-4c12-b2a5-03446eb7b7cf"`  // Periods for this wallet
	Deposits   string `json:"deposits" example:"https://example.com/api/v1/deposits?wallet=550dc009-cea6-4c12-b2a5-03446eb7b7cf"`// Deposits for this wallet
	Entities   string `json:"entities" example:"https://example.com/api/v1/entities?wallet=550dc009-cea6-4c12-b2a5-03446eb7b7cf"`// Entities for this wallet
	Categories string `json:"categories" example:"https://example.com/api/v1/categories?wallet=550dc009-cea6-4c12-b2a5-03446eb7b7cf"` // Categories for this wallet
}

type Wallet struct {
	models.DefaultModel
	WalletEditable
	OwnerID string      `json:"ownerId" example:"d7ab6a9e-5d43-4b31-89d4-2f8a88a71a9e"` // ID of the user owning the wallet
	Links   WalletLinks `json:"links"`
}

func newWallet(c *gin.Context, model models.Wallet) Wallet {
	url := c.GetString(string(models.DBContextURL))

	return Wallet{
		DefaultModel: model.DefaultModel,
		WalletEditable: WalletEditable{
			Name:     model.Name,
			Note:     model.Note,
			Currency: model.Currency,
		},
		OwnerID: model.OwnerID.String(),
		Links: WalletLinks{
			Self:       fmt.Sprintf("%s/v1/wallets/%s", url, model.ID),
			Periods:    fmt.Sprintf("%s/v1/periods?wallet=%s", url, model.ID),
			Deposits:   fmt.Sprintf("%s/v1/deposits?wallet=%s", url, model.ID),
			Entities:   fmt.Sprintf("%s/v1/entities?wallet=%s", url, model.ID),
			Categories: fmt.Sprintf("%s/v1/categories?wallet=%s", url, model.ID),
		},
	}
}

type WalletListResponse struct {
	Data       []Wallet    `json:"data"`                                                          // List of wallets
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type WalletCreateResponse struct {
	Data  []WalletResponse `json:"data"`                                                          // List of the created wallets or their respective error
	Error *string          `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

func (w *WalletCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	w.Data = append(w.Data, WalletResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type WalletResponse struct {
	Data  *Wallet `json:"data"`                                                          // Data for the wallet
	Error *string `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type WalletQueryFilter struct {
	Name     string `form:"name" filterField:"false"`     // By name
	Note     string `form:"note" filterField:"false"`     // By note
	Currency string `form:"currency"`                     // By currency
	Search   string `form:"search" filterField:"false"`   // By string in name or note
	Offset   uint   `form:"offset" filterField:"false"`   // The offset of the first wallet returned. Defaults to 0.
	Limit    int    `form:"limit" filterField:"false"`    // Maximum number of wallets to return. Defaults to 50.
}

func (f WalletQueryFilter) model() models.Wallet {
	return models.Wallet{
		Currency: f.Currency,
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Wallets
// @Success		204
// @Router			/v1/wallets [options]
func OptionsWalletList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Wallets
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/wallets/{id} [options]
func OptionsWalletDetail(c *gin.Context) {
	_, err := getWallet(c)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// getWallet loads the wallet from the URI and verifies access to it.
func getWallet(c *gin.Context) (models.Wallet, error) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		return models.Wallet{}, err
	}

	var wallet models.Wallet
	err = models.DB.First(&wallet, "id = ?", uri.ID.UUID).Error
	if err != nil {
		return models.Wallet{}, err
	}

	err = checkWalletAccess(c, wallet.ID, "wallet")
	if err != nil {
		return models.Wallet{}, err
	}

	return wallet, nil
}

// @Summary		Create wallets
// @Description	Creates new wallets owned by the authenticated user
// @Tags			Wallets
// @Produce		json
// @Success		201		{object}	WalletCreateResponse
// @Failure		400		{object}	WalletCreateResponse
// @Failure		500		{object}	WalletCreateResponse
// @Param			wallets	body		[]WalletEditable	true	"Wallets"
// @Router			/v1/wallets [post]
func CreateWallets(c *gin.Context) {
	var editables []WalletEditable

	// Bind data and return error if not possible
	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), WalletCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := WalletCreateResponse{}

	for _, editable := range editables {
		wallet := editable.model()
		wallet.OwnerID = currentUser(c).ID

		err = models.DB.Create(&wallet).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newWallet(c, wallet)
		r.Data = append(r.Data, WalletResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		Get wallets
// @Description	Returns a list of wallets the authenticated user has access to
// @Tags			Wallets
// @Produce		json
// @Success		200	{object}	WalletListResponse
// @Failure		400	{object}	WalletListResponse
// @Failure		500	{object}	WalletListResponse
// @Router			/v1/wallets [get]
// @Param			name		query	string	false	"Filter by name"
// @Param			note		query	string	false	"Filter by note"
// @Param			currency	query	string	false	"Filter by currency"
// @Param			search		query	string	false	"Search for this text in name and note"
// @Param			offset		query	uint	false	"The offset of the first wallet returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of wallets to return. Defaults to 50."
func GetWallets(c *gin.Context) {
	var filter WalletQueryFilter

	// Every parameter is bound into a string, so this will always succeed
	_ = c.Bind(&filter)

	// Get the fields that we are filtering for
	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	ids, err := models.WalletIDs(models.DB, currentUser(c).ID)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), WalletListResponse{
			Error: &s,
		})
		return
	}

	filterModel := filter.model()

	q := models.DB.
		Order("name ASC").
		Where("id IN (?)", ids).
		Where(&filterModel, queryFields...)

	q = stringFilters(models.DB, q, setFields, filter.Name, filter.Note, filter.Search)

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 wallets and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var wallets []models.Wallet
	err = q.Find(&wallets).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), WalletListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), WalletListResponse{
			Error: &e,
		})
		return
	}

	data := make([]Wallet, 0)
	for _, wallet := range wallets {
		data = append(data, newWallet(c, wallet))
	}

	c.JSON(http.StatusOK, WalletListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get wallet
// @Description	Returns a specific wallet
// @Tags			Wallets
// @Produce		json
// @Success		200	{object}	WalletResponse
// @Failure		400	{object}	WalletResponse
// @Failure		404	{object}	WalletResponse
// @Failure		500	{object}	WalletResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/wallets/{id} [get]
func GetWallet(c *gin.Context) {
	wallet, err := getWallet(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), WalletResponse{
			Error: &s,
		})
		return
	}

	data := newWallet(c, wallet)
	c.JSON(http.StatusOK, WalletResponse{Data: &data})
}

// @Summary		Update wallet
// @Description	Update an existing wallet. Only values to be updated need to be specified.
// @Tags			Wallets
// @Accept			json
// @Produce		json
// @Success		200		{object}	WalletResponse
// @Failure		400		{object}	WalletResponse
// @Failure		404		{object}	WalletResponse
// @Failure		500		{object}	WalletResponse
// @Param			id		path		URIID			true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			wallet	body		WalletEditable	true	"Wallet"
// @Router			/v1/wallets/{id} [patch]
func UpdateWallet(c *gin.Context) {
	wallet, err := getWallet(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), WalletResponse{
			Error: &s,
		})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, WalletEditable{})
	if err != nil {
		s := err.Error()
		c.JSON(status(err), WalletResponse{
			Error: &s,
		})
		return
	}

	// Prefill the editable with the current values so that partial
	// updates keep the remaining fields unchanged for the validation
	// hooks.
	data := WalletEditable{
		Name:     wallet.Name,
		Note:     wallet.Note,
		Currency: wallet.Currency,
	}

	err = httputil.BindData(c, &data)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), WalletResponse{
			Error: &s,
		})
		return
	}

	update := data.model()
	update.ID = wallet.ID
	update.OwnerID = wallet.OwnerID

	err = models.DB.Model(&wallet).Select("", updateFields...).Updates(update).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), WalletResponse{
			Error: &s,
		})
		return
	}

	r := newWallet(c, wallet)
	c.JSON(http.StatusOK, WalletResponse{Data: &r})
}

// @Summary		Delete wallet
// @Description	Deletes a wallet and all resources in it
// @Tags			Wallets
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/wallets/{id} [delete]
func DeleteWallet(c *gin.Context) {
	wallet, err := getWallet(c)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Delete(&wallet).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

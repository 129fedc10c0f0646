package v1

import (
	"fmt"
	"net/http"

	"github.com/finbook/backend/internal/httputil"
	"github.com/finbook/backend/internal/models"
	fb_uuid "github.com/finbook/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/exp/slices"
)

// RegisterEntityRoutes registers the routes for entities with
// the RouterGroup that is passed.
func RegisterEntityRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsEntityList)
		r.GET("", GetEntities)
		r.POST("", CreateEntities)
	}

	// Entity with ID
	{
		r.OPTIONS("/:id", OptionsEntityDetail)
		r.GET("/:id", GetEntity)
		r.PATCH("/:id", UpdateEntity)
		r.DELETE("/:id", DeleteEntity)
	}
}

// EntityEditable represents all user configurable parameters
type EntityEditable struct {
	WalletID uuid.UUID `json:"walletId" example:"550dc009-cea6-4c12-b2a5-03446eb7b7cf"` // ID of the wallet the entity belongs to
	Name     string    `json:"name" example:"Supermarket" default:""`                   // Name of the entity
	Note     string    `json:"note" example:"The one around the corner" default:""`     // Notes about the entity
	Archived bool      `json:"archived" example:"true" default:"false"`                 // Is the entity archived?
}

func (editable EntityEditable) model() models.Entity {
	return models.Entity{
		WalletID: editable.WalletID,
		Name:     editable.Name,
		Note:     editable.Note,
		Archived: editable.Archived,
	}
}

type EntityLinks struct {
	Self string `json:"self" example:"https://example.com/api/v1/entities/d1e28bf6-8986-4a9f-b2f8-4aa3eef1e02c"` // The entity itself
}

type Entity struct {
	models.DefaultModel
	EntityEditable
	Links EntityLinks `json:"links"`
}

func newEntity(c *gin.Context, model models.Entity) Entity {
	url := c.GetString(string(models.DBContextURL))

	return Entity{
		DefaultModel: model.DefaultModel,
		EntityEditable: EntityEditable{
			WalletID: model.WalletID,
			Name:     model.Name,
			Note:     model.Note,
			Archived: model.Archived,
		},
		Links: EntityLinks{
			Self: fmt.Sprintf("%s/v1/entities/%s", url, model.ID),
		},
	}
}

type EntityListResponse struct {
	Data       []Entity    `json:"data"`                                                          // List of entities
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type EntityCreateResponse struct {
	Data  []EntityResponse `json:"data"`                                                          // List of the created entities or their respective error
	Error *string          `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

func (e *EntityCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	e.Data = append(e.Data, EntityResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type EntityResponse struct {
	Data  *Entity `json:"data"`                                                          // Data for the entity
	Error *string `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type EntityQueryFilter struct {
	WalletID fb_uuid.UUID `form:"wallet"`                     // By ID of the wallet
	Name     string       `form:"name" filterField:"false"`   // By name
	Note     string       `form:"note" filterField:"false"`   // By note
	Archived bool         `form:"archived"`                   // Is the entity archived?
	Search   string       `form:"search" filterField:"false"` // By string in name or note
	Offset   uint         `form:"offset" filterField:"false"` // The offset of the first entity returned. Defaults to 0.
	Limit    int          `form:"limit" filterField:"false"`  // Maximum number of entities to return. Defaults to 50.
}

func (f EntityQueryFilter) model() models.Entity {
	return models.Entity{
		WalletID: f.WalletID.UUID,
		Archived: f.Archived,
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Entities
// @Success		204
// @Router			/v1/entities [options]
func OptionsEntityList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Entities
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/entities/{id} [options]
func OptionsEntityDetail(c *gin.Context) {
	_, err := getEntity(c)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// getEntity loads the entity from the URI and verifies access to its wallet.
func getEntity(c *gin.Context) (models.Entity, error) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		return models.Entity{}, err
	}

	var entity models.Entity
	err = models.DB.First(&entity, "id = ?", uri.ID.UUID).Error
	if err != nil {
		return models.Entity{}, err
	}

	err = checkWalletAccess(c, entity.WalletID, "entity")
	if err != nil {
		return models.Entity{}, err
	}

	return entity, nil
}

// @Summary		Create entities
// @Description	Creates new entities
// @Tags			Entities
// @Produce		json
// @Success		201			{object}	EntityCreateResponse
// @Failure		400			{object}	EntityCreateResponse
// @Failure		404			{object}	EntityCreateResponse
// @Failure		500			{object}	EntityCreateResponse
// @Param			entities	body		[]EntityEditable	true	"Entities"
// @Router			/v1/entities [post]
func CreateEntities(c *gin.Context) {
	var editables []EntityEditable

	// Bind data and return error if not possible
	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), EntityCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := EntityCreateResponse{}

	for _, editable := range editables {
		err := checkWalletAccess(c, editable.WalletID, "wallet")
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		entity := editable.model()

		err = models.DB.Create(&entity).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newEntity(c, entity)
		r.Data = append(r.Data, EntityResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		Get entities
// @Description	Returns a list of entities
// @Tags			Entities
// @Produce		json
// @Success		200	{object}	EntityListResponse
// @Failure		400	{object}	EntityListResponse
// @Failure		500	{object}	EntityListResponse
// @Router			/v1/entities [get]
// @Param			wallet		query	string	false	"Filter by wallet ID"
// @Param			name		query	string	false	"Filter by name"
// @Param			note		query	string	false	"Filter by note"
// @Param			archived	query	bool	false	"Is the entity archived?"
// @Param			search		query	string	false	"Search for this text in name and note"
// @Param			offset		query	uint	false	"The offset of the first entity returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of entities to return. Defaults to 50."
func GetEntities(c *gin.Context) {
	var filter EntityQueryFilter

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
		c.JSON(status(err), EntityListResponse{
			Error: &s,
		})
		return
	}

	q = stringFilters(models.DB, q, setFields, filter.Name, filter.Note, filter.Search)

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 entities and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var entities []models.Entity
	err = q.Find(&entities).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), EntityListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), EntityListResponse{
			Error: &e,
		})
		return
	}

	data := make([]Entity, 0)
	for _, entity := range entities {
		data = append(data, newEntity(c, entity))
	}

	c.JSON(http.StatusOK, EntityListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get entity
// @Description	Returns a specific entity
// @Tags			Entities
// @Produce		json
// @Success		200	{object}	EntityResponse
// @Failure		400	{object}	EntityResponse
// @Failure		404	{object}	EntityResponse
// @Failure		500	{object}	EntityResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/entities/{id} [get]
func GetEntity(c *gin.Context) {
	entity, err := getEntity(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), EntityResponse{
			Error: &s,
		})
		return
	}

	data := newEntity(c, entity)
	c.JSON(http.StatusOK, EntityResponse{Data: &data})
}

// @Summary		Update entity
// @Description	Update an existing entity. Only values to be updated need to be specified.
// @Tags			Entities
// @Accept			json
// @Produce		json
// @Success		200		{object}	EntityResponse
// @Failure		400		{object}	EntityResponse
// @Failure		404		{object}	EntityResponse
// @Failure		500		{object}	EntityResponse
// @Param			id		path		URIID			true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			entity	body		EntityEditable	true	"Entity"
// @Router			/v1/entities/{id} [patch]
func UpdateEntity(c *gin.Context) {
	entity, err := getEntity(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), EntityResponse{
			Error: &s,
		})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, EntityEditable{})
	if err != nil {
		s := err.Error()
		c.JSON(status(err), EntityResponse{
			Error: &s,
		})
		return
	}

	// Prefill the editable with the current values so that partial
	// updates are validated against the full resource.
	data := EntityEditable{
		WalletID: entity.WalletID,
		Name:     entity.Name,
		Note:     entity.Note,
		Archived: entity.Archived,
	}

	err = httputil.BindData(c, &data)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), EntityResponse{
			Error: &s,
		})
		return
	}

	// The wallet of an entity cannot be changed
	data.WalletID = entity.WalletID

	update := data.model()
	update.ID = entity.ID

	err = models.DB.Model(&entity).Select("", updateFields...).Updates(update).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), EntityResponse{
			Error: &s,
		})
		return
	}

	r := newEntity(c, entity)
	c.JSON(http.StatusOK, EntityResponse{Data: &r})
}

// @Summary		Delete entity
// @Description	Deletes an entity. Entities that transfers reference cannot be deleted.
// @Tags			Entities
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/entities/{id} [delete]
func DeleteEntity(c *gin.Context) {
	entity, err := getEntity(c)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Delete(&entity).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

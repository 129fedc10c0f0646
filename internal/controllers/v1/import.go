package v1

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/finbook/backend/internal/httputil"
	"github.com/finbook/backend/internal/importer"
	csvparser "github.com/finbook/backend/internal/importer/parser/csv"
	"github.com/finbook/backend/internal/models"
	fb_uuid "github.com/finbook/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ryanuber/go-glob"
)

// RegisterImportRoutes registers the routes for imports.
func RegisterImportRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", httputil.OptionsPost)
	r.POST("", ImportCSV)
}

type ImportQuery struct {
	DepositID fb_uuid.UUID `form:"deposit" binding:"required"` // ID of the deposit to import the transfers for
	Preview   bool         `form:"preview"`                    // When true, nothing is created and the parsed transfers are returned for inspection
}

type ImportPreviewList struct {
	Data  []importer.TransferPreview `json:"data"`                                                          // List of transfer previews
	Error *string                    `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

// getUploadedFile returns the form file and handles potential errors.
func getUploadedFile(c *gin.Context, suffix string) (multipart.File, error) {
	formFile, err := c.FormFile("file")
	if formFile == nil {
		return nil, errNoFilePost
	}

	if err != nil {
		return nil, err
	}

	if !strings.HasSuffix(formFile.Filename, suffix) {
		return nil, fmt.Errorf("%w: %s", errWrongFileSuffix, suffix)
	}

	f, err := formFile.Open()
	if err != nil {
		return nil, err
	}

	return f, nil
}

// matchCategory resolves a CSV category name against the wallet's
// categories of the matching type. An exact name match wins, otherwise
// category names are treated as glob patterns so that a category named
// "Insurance*" matches "Insurance Car".
func matchCategory(walletID uuid.UUID, typ models.TransferType, name string) (uuid.UUID, error) {
	var categories []models.Category
	err := models.DB.
		Where(models.Category{WalletID: walletID, Type: models.CategoryType(typ)}, "WalletID", "Type").
		Find(&categories).Error
	if err != nil {
		return uuid.Nil, err
	}

	for _, category := range categories {
		if category.Name == name {
			return category.ID, nil
		}
	}

	for _, category := range categories {
		if glob.Glob(category.Name, name) {
			return category.ID, nil
		}
	}

	return uuid.Nil, nil
}

// matchEntity resolves a CSV entity name against the wallet's entities,
// exact match first, glob patterns second.
func matchEntity(walletID uuid.UUID, name string) (uuid.UUID, error) {
	var entities []models.Entity
	err := models.DB.
		Where(models.Entity{WalletID: walletID}, "WalletID").
		Find(&entities).Error
	if err != nil {
		return uuid.Nil, err
	}

	for _, entity := range entities {
		if entity.Name == name {
			return entity.ID, nil
		}
	}

	for _, entity := range entities {
		if glob.Glob(entity.Name, name) {
			return entity.ID, nil
		}
	}

	return uuid.Nil, nil
}

// duplicateTransfers finds transfers in the wallet that were already
// imported from the same CSV line.
func duplicateTransfers(preview *importer.TransferPreview, walletID uuid.UUID) error {
	var duplicates []models.Transfer
	err := models.DB.
		Where(models.Transfer{WalletID: walletID, ImportHash: preview.Transfer.ImportHash}, "WalletID", "ImportHash").
		Find(&duplicates).Error
	if err != nil {
		return err
	}

	// When there are no resources, we want an empty list, not null
	duplicateIDs := make([]uuid.UUID, 0)
	for _, duplicate := range duplicates {
		duplicateIDs = append(duplicateIDs, duplicate.ID)
	}
	preview.DuplicateTransferIDs = duplicateIDs

	return nil
}

// @Summary		Import transfers
// @Description	Imports transfers from a CSV file into the active period of the deposit's wallet. With preview=true nothing is created and the parsed transfers are returned.
// @Tags			Import
// @Accept			multipart/form-data
// @Produce		json
// @Success		200		{object}	ImportPreviewList
// @Success		201		{object}	TransferCreateResponse
// @Failure		400		{object}	ImportPreviewList
// @Failure		404		{object}	ImportPreviewList
// @Failure		500		{object}	ImportPreviewList
// @Param			file	formData	file	true	"CSV file with the columns date, category, entity, note, income, expense"
// @Param			deposit	query		string	true	"ID of the deposit to import the transfers for"
// @Param			preview	query		bool	false	"When true, nothing is created"
// @Router			/v1/import [post]
func ImportCSV(c *gin.Context) {
	var query ImportQuery
	if err := c.BindQuery(&query); err != nil || query.DepositID.UUID == uuid.Nil {
		s := httputil.ErrInvalidUUID.Error()
		c.JSON(http.StatusBadRequest, ImportPreviewList{
			Error: &s,
		})
		return
	}

	var deposit models.Deposit
	err := models.DB.First(&deposit, "id = ?", query.DepositID.UUID).Error
	if err == nil {
		err = checkWalletAccess(c, deposit.WalletID, "deposit")
	}
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ImportPreviewList{
			Error: &s,
		})
		return
	}

	var period models.Period
	err = models.DB.First(&period, "wallet_id = ? AND active = ?", deposit.WalletID, true).Error
	if err != nil {
		if errors.Is(err, models.ErrResourceNotFound) {
			err = errNoActivePeriod
		}

		s := err.Error()
		c.JSON(status(err), ImportPreviewList{
			Error: &s,
		})
		return
	}

	f, err := getUploadedFile(c, ".csv")
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ImportPreviewList{
			Error: &s,
		})
		return
	}

	previews, err := csvparser.Parse(f, period)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ImportPreviewList{
			Error: &s,
		})
		return
	}

	for i := range previews {
		preview := &previews[i]
		preview.Transfer.DepositID = deposit.ID

		preview.Transfer.CategoryID, err = matchCategory(deposit.WalletID, preview.Transfer.Type, preview.CategoryName)
		if err == nil {
			var entityID uuid.UUID
			entityID, err = matchEntity(deposit.WalletID, preview.EntityName)
			if entityID != uuid.Nil {
				preview.Transfer.EntityID = &entityID
			}
		}
		if err == nil {
			err = duplicateTransfers(preview, deposit.WalletID)
		}

		if err != nil {
			s := err.Error()
			c.JSON(status(err), ImportPreviewList{
				Error: &s,
			})
			return
		}
	}

	if query.Preview {
		c.JSON(http.StatusOK, ImportPreviewList{Data: previews})
		return
	}

	// The final http status. Will be modified when errors occur
	finalStatus := http.StatusCreated
	r := TransferCreateResponse{}

	for _, preview := range previews {
		transfer := preview.Transfer

		if transfer.CategoryID == uuid.Nil {
			err := fmt.Errorf("%w: %s", errCategoryNotFound, preview.CategoryName)
			finalStatus = r.appendError(err, finalStatus)
			continue
		}

		// Entities the wallet does not know yet are created on the fly
		if transfer.EntityID == nil && preview.EntityName != "" {
			entity := models.Entity{WalletID: deposit.WalletID, Name: preview.EntityName}

			err := models.DB.Create(&entity).Error
			if err != nil {
				finalStatus = r.appendError(err, finalStatus)
				continue
			}

			transfer.EntityID = &entity.ID
		}

		err := models.DB.Create(&transfer).Error
		if err != nil {
			finalStatus = r.appendError(err, finalStatus)
			continue
		}

		collection := "expenses"
		if transfer.Type == models.TransferTypeIncome {
			collection = "incomes"
		}

		data := newTransfer(c, collection, transfer)
		r.Data = append(r.Data, TransferResponse{Data: &data})
	}

	c.JSON(finalStatus, r)
}

package importer

import (
	"github.com/finbook/backend/internal/models"
	"github.com/google/uuid"
)

// TransferPreview is used to preview transfers that will be imported to allow for editing.
type TransferPreview struct {
	Transfer             models.Transfer `json:"transfer"`
	CategoryName         string          `json:"categoryName" example:"Groceries"`  // Name of the category from the CSV file
	EntityName           string          `json:"entityName" example:"Supermarket"`  // Name of the entity from the CSV file
	DuplicateTransferIDs []uuid.UUID     `json:"duplicateTransferIds"`              // IDs of transfers that this transfer duplicates
}

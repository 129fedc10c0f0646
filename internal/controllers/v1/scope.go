package v1

import (
	"fmt"

	"github.com/finbook/backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// walletScope restricts the query to resources in wallets the
// authenticated user has access to.
func walletScope(c *gin.Context, q *gorm.DB) (*gorm.DB, error) {
	ids, err := models.WalletIDs(models.DB, currentUser(c).ID)
	if err != nil {
		return nil, err
	}

	return q.Where("wallet_id IN (?)", ids), nil
}

// checkWalletAccess verifies that the authenticated user has access to
// the wallet. Inaccessible wallets produce the same error as missing
// ones so that responses do not reveal whether a resource exists.
func checkWalletAccess(c *gin.Context, walletID uuid.UUID, resource string) error {
	ok, err := models.WalletAccessible(models.DB, walletID, currentUser(c).ID)
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("%w %s matching your query", models.ErrResourceNotFound, resource)
	}

	return nil
}

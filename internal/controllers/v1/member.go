package v1

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/finbook/backend/internal/httputil"
	"github.com/finbook/backend/internal/models"
	fb_uuid "github.com/finbook/backend/internal/uuid"
	"github.com/gin-gonic/gin"
)

type memberURI struct {
	ID     fb_uuid.UUID `uri:"id" binding:"required"`     // ID of the wallet
	UserID fb_uuid.UUID `uri:"userId" binding:"required"` // ID of the member
}

// MemberEditable represents all user configurable parameters
type MemberEditable struct {
	Email string `json:"email" example:"mail@example.com"` // Email address of the user to add as a member
}

type WalletMember struct {
	models.DefaultModel
	Email string `json:"email" example:"mail@example.com"` // Email address of the member
	Name  string `json:"name" example:"Jane Doe"`          // Name of the member
}

type WalletMemberListResponse struct {
	Data  []WalletMember `json:"data"`                                                          // List of members
	Error *string        `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type WalletMemberResponse struct {
	Data  *WalletMember `json:"data"`                                                          // Data for the member
	Error *string       `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

func newWalletMember(user models.User) WalletMember {
	return WalletMember{
		DefaultModel: user.DefaultModel,
		Email:        user.Email,
		Name:         user.Name,
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Wallets
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/wallets/{id}/members [options]
func OptionsWalletMembers(c *gin.Context) {
	_, err := getWallet(c)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPost(c)
}

// @Summary		List wallet members
// @Description	Returns the users the wallet is shared with. The owner is not part of the list.
// @Tags			Wallets
// @Produce		json
// @Success		200	{object}	WalletMemberListResponse
// @Failure		400	{object}	WalletMemberListResponse
// @Failure		404	{object}	WalletMemberListResponse
// @Failure		500	{object}	WalletMemberListResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/wallets/{id}/members [get]
func GetWalletMembers(c *gin.Context) {
	wallet, err := getWallet(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), WalletMemberListResponse{
			Error: &s,
		})
		return
	}

	var users []models.User
	err = models.DB.Model(&wallet).Association("Members").Find(&users)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), WalletMemberListResponse{
			Error: &s,
		})
		return
	}

	data := make([]WalletMember, 0)
	for _, user := range users {
		data = append(data, newWalletMember(user))
	}

	c.JSON(http.StatusOK, WalletMemberListResponse{Data: data})
}

// @Summary		Add wallet member
// @Description	Shares the wallet with another user. Only the owner can manage members.
// @Tags			Wallets
// @Accept			json
// @Produce		json
// @Success		201		{object}	WalletMemberResponse
// @Failure		400		{object}	WalletMemberResponse
// @Failure		403		{object}	WalletMemberResponse
// @Failure		404		{object}	WalletMemberResponse
// @Failure		500		{object}	WalletMemberResponse
// @Param			id		path		URIID			true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			member	body		MemberEditable	true	"Member"
// @Router			/v1/wallets/{id}/members [post]
func AddWalletMember(c *gin.Context) {
	fail := func(err error) {
		s := err.Error()
		c.JSON(status(err), WalletMemberResponse{
			Error: &s,
		})
	}

	wallet, err := getWallet(c)
	if err != nil {
		fail(err)
		return
	}

	if wallet.OwnerID != currentUser(c).ID {
		fail(errNotWalletOwner)
		return
	}

	var editable MemberEditable
	err = httputil.BindData(c, &editable)
	if err != nil {
		fail(err)
		return
	}

	var user models.User
	err = models.DB.First(&user, "email = ?", strings.ToLower(strings.TrimSpace(editable.Email))).Error
	if err != nil {
		fail(err)
		return
	}

	// The owner always has access, adding them would be redundant
	if user.ID == wallet.OwnerID {
		fail(errOwnerAlwaysMember)
		return
	}

	err = models.DB.Model(&wallet).Association("Members").Append(&user)
	if err != nil {
		fail(err)
		return
	}

	data := newWalletMember(user)
	c.JSON(http.StatusCreated, WalletMemberResponse{Data: &data})
}

// @Summary		Remove wallet member
// @Description	Revokes a user's access to the wallet. Only the owner can manage members.
// @Tags			Wallets
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		403	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id		path	string	true	"ID of the wallet"
// @Param			userId	path	string	true	"ID of the member"
// @Router			/v1/wallets/{id}/members/{userId} [delete]
func RemoveWalletMember(c *gin.Context) {
	fail := func(err error) {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
	}

	var uri memberURI
	err := c.ShouldBindUri(&uri)
	if err != nil {
		fail(err)
		return
	}

	var wallet models.Wallet
	err = models.DB.First(&wallet, "id = ?", uri.ID.UUID).Error
	if err == nil {
		err = checkWalletAccess(c, wallet.ID, "wallet")
	}
	if err != nil {
		fail(err)
		return
	}

	if wallet.OwnerID != currentUser(c).ID {
		fail(errNotWalletOwner)
		return
	}

	var user models.User
	err = models.DB.First(&user, "id = ?", uri.UserID.UUID).Error
	if err != nil {
		fail(fmt.Errorf("%w member matching your query", models.ErrResourceNotFound))
		return
	}

	err = models.DB.Model(&wallet).Association("Members").Delete(&user)
	if err != nil {
		fail(err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

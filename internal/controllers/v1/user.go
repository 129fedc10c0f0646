package v1

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/finbook/backend/internal/httputil"
	"github.com/finbook/backend/internal/models"
	"github.com/finbook/backend/internal/token"
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers the unauthenticated routes for user
// registration and login.
func RegisterAuthRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/register", httputil.OptionsPost)
	r.POST("/register", Register)

	r.OPTIONS("/login", httputil.OptionsPost)
	r.POST("/login", Login)
}

// RegisterUserRoutes registers the routes for the authenticated user.
func RegisterUserRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/me", httputil.OptionsGet)
	r.GET("/me", GetMe)
}

// UserEditable represents all user configurable parameters
type UserEditable struct {
	Email    string `json:"email" example:"mail@example.com" default:""` // Email address, unique across all users
	Name     string `json:"name" example:"Jane Doe" default:""`          // Name of the user
	Password string `json:"password" example:"correct horse battery staple" default:""`
}

type UserLinks struct {
	Self string `json:"self" example:"https://example.com/api/v1/users/me"` // The user itself
}

type User struct {
	models.DefaultModel
	Email string    `json:"email" example:"mail@example.com"`
	Name  string    `json:"name" example:"Jane Doe"`
	Links UserLinks `json:"links"`
}

func newUser(c *gin.Context, model models.User) User {
	url := c.GetString(string(models.DBContextURL))

	return User{
		DefaultModel: model.DefaultModel,
		Email:        model.Email,
		Name:         model.Name,
		Links: UserLinks{
			Self: fmt.Sprintf("%s/v1/users/me", url),
		},
	}
}

type UserResponse struct {
	Data  *User   `json:"data"`                                                          // Data for the user
	Error *string `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

// LoginData represents a successful authentication.
type LoginData struct {
	Token string `json:"token"` // Bearer token for the Authorization header
	User  User   `json:"user"`
}

type LoginResponse struct {
	Data  *LoginData `json:"data"`                                                                   // The token and the user it belongs to
	Error *string `json:"error" example:"no user exists for this combination of email address and password"` // The error, if any occurred
}

type loginRequest struct {
	Email    string `json:"email" example:"mail@example.com"`
	Password string `json:"password" example:"correct horse battery staple"`
}

// @Summary		Register user
// @Description	Creates a new user and returns a bearer token for it
// @Tags			Users
// @Accept			json
// @Produce		json
// @Success		201		{object}	LoginResponse
// @Failure		400		{object}	LoginResponse
// @Failure		500		{object}	LoginResponse
// @Param			user	body		UserEditable	true	"User"
// @Router			/v1/register [post]
func Register(c *gin.Context) {
	var editable UserEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LoginResponse{
			Error: &e,
		})
		return
	}

	if strings.TrimSpace(editable.Email) == "" || editable.Password == "" {
		e := errCredentialsRequired.Error()
		c.JSON(status(errCredentialsRequired), LoginResponse{
			Error: &e,
		})
		return
	}

	user := models.User{
		Email: editable.Email,
		Name:  editable.Name,
	}

	err = user.SetPassword(editable.Password)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LoginResponse{
			Error: &e,
		})
		return
	}

	err = models.DB.Create(&user).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LoginResponse{
			Error: &e,
		})
		return
	}

	value, err := token.New(tokenSecret(), user.ID, tokenValidity())
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LoginResponse{
			Error: &e,
		})
		return
	}

	c.JSON(http.StatusCreated, LoginResponse{
		Data: &LoginData{
			Token: value,
			User:  newUser(c, user),
		},
	})
}

// @Summary		Login
// @Description	Verifies the credentials and returns a bearer token
// @Tags			Users
// @Accept			json
// @Produce		json
// @Success		200			{object}	LoginResponse
// @Failure		400			{object}	LoginResponse
// @Failure		401			{object}	LoginResponse
// @Param			credentials	body		loginRequest	true	"Credentials"
// @Router			/v1/login [post]
func Login(c *gin.Context) {
	var request loginRequest

	err := httputil.BindData(c, &request)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LoginResponse{
			Error: &e,
		})
		return
	}

	var user models.User
	err = models.DB.First(&user, "email = ?", strings.ToLower(strings.TrimSpace(request.Email))).Error
	if err != nil || !user.CheckPassword(request.Password) {
		// Do not leak whether the email address exists
		e := errLoginFailed.Error()
		c.JSON(status(errLoginFailed), LoginResponse{
			Error: &e,
		})
		return
	}

	value, err := token.New(tokenSecret(), user.ID, tokenValidity())
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LoginResponse{
			Error: &e,
		})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Data: &LoginData{
			Token: value,
			User:  newUser(c, user),
		},
	})
}

// @Summary		Get the authenticated user
// @Description	Returns the user the bearer token belongs to
// @Tags			Users
// @Produce		json
// @Success		200	{object}	UserResponse
// @Failure		401	{object}	httpError
// @Router			/v1/users/me [get]
func GetMe(c *gin.Context) {
	user := newUser(c, currentUser(c))
	c.JSON(http.StatusOK, UserResponse{Data: &user})
}

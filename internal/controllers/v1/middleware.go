package v1

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/finbook/backend/internal/models"
	"github.com/finbook/backend/internal/token"
	"github.com/gin-gonic/gin"
)

// contextUser is the context key the authenticated user is stored under.
const contextUser = "finbook-user"

// tokenSecret returns the secret used to sign and verify tokens.
func tokenSecret() string {
	return os.Getenv("FINBOOK_TOKEN_SECRET")
}

// tokenValidity returns the configured token lifetime.
func tokenValidity() time.Duration {
	hours, err := strconv.Atoi(os.Getenv("FINBOOK_TOKEN_EXPIRY_HOURS"))
	if err != nil || hours <= 0 {
		return 24 * time.Hour
	}

	return time.Duration(hours) * time.Hour
}

// Authenticate verifies the bearer token of the request and loads the
// user it belongs to. Requests without a valid token are aborted with
// status 401.
func Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		value, found := strings.CutPrefix(header, "Bearer ")
		if !found || value == "" {
			c.AbortWithStatusJSON(status(errNoToken), httpError{
				Error: errNoToken.Error(),
			})
			return
		}

		claims, err := token.Parse(tokenSecret(), value)
		if err != nil {
			c.AbortWithStatusJSON(status(err), httpError{
				Error: err.Error(),
			})
			return
		}

		var user models.User
		err = models.DB.First(&user, "id = ?", claims.UserID).Error
		if err != nil {
			c.AbortWithStatusJSON(status(token.ErrInvalidToken), httpError{
				Error: token.ErrInvalidToken.Error(),
			})
			return
		}

		c.Set(contextUser, user)
		c.Next()
	}
}

// currentUser returns the user the Authenticate middleware stored for
// this request.
func currentUser(c *gin.Context) models.User {
	return c.MustGet(contextUser).(models.User)
}

package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/karaoke-social-api/pkg/helpers"
)

// Gin context keys set by Auth.
const (
	CtxUserIDKey    = "userID"
	CtxUserNameKey  = "userName"
	CtxUserEmailKey = "userEmail"
)

var errMissingToken = errors.New("missing access token")

// accessClaims reads the access token from the Authorization header or the
// access_token cookie and validates it.
func accessClaims(c *gin.Context, jwt *helpers.JWTManager) (*helpers.Claims, error) {
	token := helpers.BearerOrCookie(c, helpers.AccessCookie)
	if token == "" {
		return nil, errMissingToken
	}
	return jwt.ParseAccessToken(token)
}

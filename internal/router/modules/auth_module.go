package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/karaoke-social-api/internal/container"
	handlers "github.com/oksasatya/karaoke-social-api/internal/interface/http"
	"github.com/oksasatya/karaoke-social-api/internal/interface/middleware"
)

// AuthModule serves account creation and password reset.
// Public: POST /api/auth/register, POST /api/auth/reset/init, POST /api/auth/reset/confirm
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetInitLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetConfirmLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/auth/register", registerLimiter, m.Handler.Register)
	rg.POST("/auth/reset/init", resetInitLimiter, m.Handler.ResetInit)
	rg.POST("/auth/reset/confirm", resetConfirmLimiter, m.Handler.ResetConfirm)
}

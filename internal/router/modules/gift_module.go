package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/karaoke-social-api/internal/container"
	"github.com/oksasatya/karaoke-social-api/internal/domain/entity"
	handlers "github.com/oksasatya/karaoke-social-api/internal/interface/http"
	"github.com/oksasatya/karaoke-social-api/internal/interface/middleware"
	"github.com/oksasatya/karaoke-social-api/pkg/helpers"
)

// GiftModule wires the gift catalog and the coin economy.
type GiftModule struct {
	Handler *handlers.GiftHandler
	JWT     *helpers.JWTManager
	Roles   middleware.RoleChecker
}

func NewGiftModule(h *handlers.GiftHandler, jwt *helpers.JWTManager, roles middleware.RoleChecker) *GiftModule {
	return &GiftModule{Handler: h, JWT: jwt, Roles: roles}
}

func (m *GiftModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	rg.GET("/gifts", middleware.RateLimit(rdb, 300, time.Minute, middleware.KeyByIP(), nil), m.Handler.List)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(rdb, m.JWT))
	{
		// transfers are the only coin sink, keep them tight per user
		auth.POST("/gifts/send", middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByUserID(), nil), m.Handler.Send)
		auth.POST("/coins/purchase", middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByUserID(), nil), m.Handler.BuyCoins)
		auth.GET("/gifts/received", m.Handler.Received)
		auth.GET("/gifts/sent", m.Handler.Sent)
	}

	admin := rg.Group("/")
	admin.Use(middleware.Auth(rdb, m.JWT), middleware.RequireRole(m.Roles, entity.RoleAdmin))
	{
		admin.POST("/gifts", m.Handler.Create)
		admin.PUT("/gifts/:id", m.Handler.Update)
		admin.POST("/gifts/:id/icon", m.Handler.UploadIcon)
	}
}

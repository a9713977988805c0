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

// SongModule wires the catalog and performance interactions.
type SongModule struct {
	Handler *handlers.SongHandler
	Users   *handlers.UserHandler
	JWT     *helpers.JWTManager
	Roles   middleware.RoleChecker
}

func NewSongModule(h *handlers.SongHandler, users *handlers.UserHandler, jwt *helpers.JWTManager, roles middleware.RoleChecker) *SongModule {
	return &SongModule{Handler: h, Users: users, JWT: jwt, Roles: roles}
}

func (m *SongModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	browse := middleware.RateLimit(rdb, 300, time.Minute, middleware.KeyByIP(), nil)
	rg.GET("/songs", browse, m.Handler.List)
	rg.GET("/songs/:id", browse, m.Handler.Get)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(rdb, m.JWT))
	auth.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/songs/search", m.Handler.Search)
		auth.POST("/songs/:id/favorite", m.Users.ToggleFavorite)
		auth.POST("/songs/:id/performances", m.Handler.RecordPerformance)
		auth.POST("/songs/:id/performances/:performanceId/like", m.Handler.ToggleLike)
		auth.POST("/songs/:id/performances/:performanceId/comments", m.Handler.AddComment)
		auth.POST("/uploads/audio", middleware.RateLimit(rdb, 20, time.Minute, middleware.KeyByUserID(), nil), m.Handler.UploadAudio)
	}

	admin := rg.Group("/")
	admin.Use(middleware.Auth(rdb, m.JWT), middleware.RequireRole(m.Roles, entity.RoleAdmin))
	{
		admin.POST("/songs", m.Handler.Create)
	}
}

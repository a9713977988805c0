package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/karaoke-social-api/internal/container"
	handlers "github.com/oksasatya/karaoke-social-api/internal/interface/http"
	"github.com/oksasatya/karaoke-social-api/internal/interface/middleware"
	"github.com/oksasatya/karaoke-social-api/pkg/helpers"
)

// UserModule wires sessions, profiles and the social graph.
// Public: POST /api/login, POST /api/refresh, GET /api/users/online, GET /api/users/leaderboard
// Protected: POST /api/logout, GET|PUT /api/profile, POST /api/profile/avatar,
// GET /api/profile/points, GET /api/users/search, POST /api/users/:id/follow
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIP(), nil)   // 10 req/min per IP
	refreshLimiter := middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByIP(), nil) // 60 req/min per IP
	boardLimiter := middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/refresh", refreshLimiter, m.Handler.Refresh)
	rg.GET("/users/online", boardLimiter, m.Handler.Online)
	rg.GET("/users/leaderboard", boardLimiter, m.Handler.Leaderboard)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(rdb, m.JWT))
	auth.Use(
		middleware.RateLimit(rdb, 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/profile", m.Handler.GetProfile)
		auth.PUT("/profile", m.Handler.UpdateProfile)
		auth.POST("/profile/avatar", m.Handler.UploadAvatar)
		auth.GET("/profile/points", m.Handler.PointsHistory)
		auth.GET("/users/search", m.Handler.Search)
		auth.POST("/users/:id/follow", m.Handler.ToggleFollow)
	}
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/karaoke-social-api/config"
	"github.com/oksasatya/karaoke-social-api/internal/application"
	"github.com/oksasatya/karaoke-social-api/internal/interface/middleware"
	tpl "github.com/oksasatya/karaoke-social-api/pkg/mailer/templates"
	"github.com/oksasatya/karaoke-social-api/pkg/response"
	"github.com/oksasatya/karaoke-social-api/pkg/validation"
)

type AuthHandler struct {
	Users  *application.UserService
	Logger *logrus.Logger
	Cfg    *config.Config
	Geo    tpl.GeoResolver
}

func NewAuthHandler(users *application.UserService, logger *logrus.Logger, cfg *config.Config) *AuthHandler {
	return &AuthHandler{Users: users, Logger: logger, Cfg: cfg, Geo: tpl.IPAPIResolver{}}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=80"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, newUserView(u), "registered", nil)
}

// ResetInit POST /api/auth/reset/init {email}
// Always answers OK so the endpoint cannot be used to probe for accounts.
func (h *AuthHandler) ResetInit(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	ip := middleware.ClientIP(c)
	opts := []tpl.Option{tpl.WithIP(ip), tpl.WithUserAgent(c.GetHeader("User-Agent"))}
	if h.Geo != nil && h.Cfg != nil && h.Cfg.MailSendEnabled {
		opts = append(opts, tpl.WithGeoFromIP(c.Request.Context(), h.Geo, ip))
	}
	link, err := h.Users.StartPasswordReset(c.Request.Context(), req.Email, h.Cfg.ResetPasswordURL, opts...)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	data := gin.H{"requested_at": time.Now().UTC()}
	if h.Cfg.Env != "production" {
		data["reset_link"] = link
	}
	response.Success(c, http.StatusOK, data, "if the account exists a reset link was sent", nil)
}

// ResetConfirm POST /api/auth/reset/confirm {token, new_password}
func (h *AuthHandler) ResetConfirm(c *gin.Context) {
	var req struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,pwd"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Users.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"reset": true}, "password updated", nil)
}

package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/karaoke-social-api/internal/application"
	"github.com/oksasatya/karaoke-social-api/internal/domain/entity"
	"github.com/oksasatya/karaoke-social-api/pkg/helpers"
	"github.com/oksasatya/karaoke-social-api/pkg/response"
	"github.com/oksasatya/karaoke-social-api/pkg/validation"
)

const maxUploadBytes = 20 << 20

type UserHandler struct {
	Svc     *application.UserService
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type updateProfileRequest struct {
	Name      string `json:"name" binding:"omitempty,min=2,max=80"`
	AvatarURL string `json:"avatar_url" binding:"omitempty,url"`
}

type userView struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	AvatarURL      string    `json:"avatar_url"`
	Level          int       `json:"level"`
	Points         int64     `json:"points"`
	Coins          int64     `json:"coins"`
	FollowersCount int       `json:"followers_count"`
	FollowingCount int       `json:"following_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func newUserView(u *entity.User) userView {
	return userView{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		AvatarURL:      u.AvatarURL,
		Level:          u.Level,
		Points:         u.Points,
		Coins:          u.Coins,
		FollowersCount: u.Followers.Len(),
		FollowingCount: u.Following.Len(),
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func tokenMeta(pair application.TokenPair) map[string]any {
	return map[string]any{
		"access_token":       pair.AccessToken,
		"refresh_token":      pair.RefreshToken,
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	}
}

// Login POST /api/login
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, pair, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, res, "login successful", tokenMeta(pair))
}

// Refresh POST /api/refresh. The refresh token comes from the cookie, the
// Authorization header or a JSON body.
func (h *UserHandler) Refresh(c *gin.Context) {
	refresh := helpers.BearerOrCookie(c, helpers.RefreshCookie)
	if refresh == "" {
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		_ = c.ShouldBindJSON(&body)
		refresh = body.RefreshToken
	}
	if refresh == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, _, err := h.Svc.Refresh(c.Request.Context(), refresh)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success[any](c, http.StatusOK, map[string]any{"refreshed": true}, "token refreshed", tokenMeta(pair))
}

// Logout POST /api/logout
func (h *UserHandler) Logout(c *gin.Context) {
	h.Svc.Logout(c.Request.Context(), c.GetString("userID"))
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, map[string]any{"logged_out": true}, "logged out", nil)
}

// GetProfile GET /api/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	p, err := h.Svc.GetProfile(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"user":           newUserView(p.User),
		"followers":      p.Followers,
		"following":      p.Following,
		"favorite_songs": p.FavoriteSongs,
	}, "profile", nil)
}

// UpdateProfile PUT /api/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), c.GetString("userID"), application.UpdateProfileInput{Name: req.Name, AvatarURL: req.AvatarURL})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, newUserView(u), "profile updated", nil)
}

// UploadAvatar POST /api/profile/avatar (multipart field "file")
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "file is required", nil)
		return
	}
	if fh.Size > maxUploadBytes {
		response.Error[any](c, http.StatusRequestEntityTooLarge, "file too large", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "cannot read file", nil)
		return
	}
	defer f.Close()

	url, err := h.Svc.UploadAvatar(c.Request.Context(), c.GetString("userID"), f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"avatar_url": url}, "avatar updated", nil)
}

// Search GET /api/users/search?q=&size=
func (h *UserHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	users, err := h.Svc.SearchUsers(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, users, "users", nil)
}

// ToggleFollow POST /api/users/:id/follow
func (h *UserHandler) ToggleFollow(c *gin.Context) {
	res, err := h.Svc.ToggleFollow(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"following": res.Following, "followers_count": res.FollowersCount}, "follow updated", nil)
}

// ToggleFavorite POST /api/songs/:id/favorite
func (h *UserHandler) ToggleFavorite(c *gin.Context) {
	fav, err := h.Svc.ToggleFavoriteSong(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"favorite": fav}, "favorite updated", nil)
}

// Online GET /api/users/online
func (h *UserHandler) Online(c *gin.Context) {
	users, err := h.Svc.Online(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, users, "online users", nil)
}

// Leaderboard GET /api/users/leaderboard
func (h *UserHandler) Leaderboard(c *gin.Context) {
	users, err := h.Svc.Leaderboard(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, users, "leaderboard", nil)
}

type awardView struct {
	ID        string             `json:"id"`
	Reason    entity.AwardReason `json:"reason"`
	Points    int64              `json:"points"`
	ActorID   string             `json:"actor_id"`
	SourceID  string             `json:"source_id"`
	CreatedAt time.Time          `json:"created_at"`
}

// PointsHistory GET /api/profile/points?limit=
func (h *UserHandler) PointsHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	awards, err := h.Svc.PointsHistory(c.Request.Context(), c.GetString("userID"), limit)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	out := make([]awardView, 0, len(awards))
	for _, a := range awards {
		out = append(out, awardView{ID: a.ID, Reason: a.Reason, Points: a.Points, ActorID: a.ActorID, SourceID: a.SourceID, CreatedAt: a.CreatedAt})
	}
	response.Success(c, http.StatusOK, out, "points history", nil)
}

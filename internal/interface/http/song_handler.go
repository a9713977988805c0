package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/karaoke-social-api/internal/application"
	"github.com/oksasatya/karaoke-social-api/pkg/response"
	"github.com/oksasatya/karaoke-social-api/pkg/validation"
)

type SongHandler struct {
	Svc    *application.SongService
	Logger *logrus.Logger
}

func NewSongHandler(svc *application.SongService, logger *logrus.Logger) *SongHandler {
	return &SongHandler{Svc: svc, Logger: logger}
}

type listSongsQuery struct {
	Genre  string `form:"genre" binding:"omitempty,genre"`
	Search string `form:"search"`
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1"`
}

// List GET /api/songs?genre=&search=&page=&limit=
func (h *SongHandler) List(c *gin.Context) {
	var q listSongsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", validation.ToDetails(err))
		return
	}
	page, err := h.Svc.List(c.Request.Context(), q.Genre, q.Search, q.Page, q.Limit)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, page.Items, "songs", response.NewPageMeta(page.Page, page.Limit, page.Total))
}

// Get GET /api/songs/:id
func (h *SongHandler) Get(c *gin.Context) {
	d, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, d, "song", nil)
}

// Search GET /api/songs/search?q=&size=
func (h *SongHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	songs, err := h.Svc.Search(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, songs, "songs", nil)
}

type createSongRequest struct {
	Title           string `json:"title" binding:"required,max=200"`
	Artist          string `json:"artist" binding:"required,max=200"`
	Lyrics          string `json:"lyrics"`
	DurationSeconds int    `json:"duration_seconds" binding:"required,min=1"`
	CoverURL        string `json:"cover_url" binding:"omitempty,url"`
	AudioURL        string `json:"audio_url" binding:"omitempty,url"`
	Genre           string `json:"genre" binding:"omitempty,genre"`
	Difficulty      int    `json:"difficulty" binding:"required,difficulty"`
}

// Create POST /api/songs (admin)
func (h *SongHandler) Create(c *gin.Context) {
	var req createSongRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	s, err := h.Svc.Create(c.Request.Context(), application.CreateSongInput{
		Title:           req.Title,
		Artist:          req.Artist,
		Lyrics:          req.Lyrics,
		DurationSeconds: req.DurationSeconds,
		CoverURL:        req.CoverURL,
		AudioURL:        req.AudioURL,
		Genre:           req.Genre,
		Difficulty:      req.Difficulty,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, s.Summary(), "song created", nil)
}

type performanceRequest struct {
	AudioURL string `json:"audio_url" binding:"required"`
}

// RecordPerformance POST /api/songs/:id/performances
func (h *SongHandler) RecordPerformance(c *gin.Context) {
	var req performanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.RecordPerformance(c.Request.Context(), c.Param("id"), c.GetString("userID"), req.AudioURL)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"song":           res.Song.Summary(),
		"performance_id": res.Performance.ID,
		"points_awarded": res.PointsAwarded,
		"level":          res.Level,
	}, "performance recorded", nil)
}

// ToggleLike POST /api/songs/:id/performances/:performanceId/like
func (h *SongHandler) ToggleLike(c *gin.Context) {
	res, err := h.Svc.ToggleLike(c.Request.Context(), c.Param("id"), c.Param("performanceId"), c.GetString("userID"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"liked": res.Liked, "likes": res.Likes, "popularity": res.Popularity}, "like updated", nil)
}

type commentRequest struct {
	Text string `json:"text" binding:"required,max=1000"`
}

// AddComment POST /api/songs/:id/performances/:performanceId/comments
func (h *SongHandler) AddComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	cm, err := h.Svc.AddComment(c.Request.Context(), c.Param("id"), c.Param("performanceId"), c.GetString("userID"), req.Text)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"id": cm.ID, "text": cm.Text, "created_at": cm.CreatedAt}, "comment added", nil)
}

// UploadAudio POST /api/uploads/audio (multipart field "file")
func (h *SongHandler) UploadAudio(c *gin.Context) {
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

	url, err := h.Svc.UploadAudio(c.Request.Context(), c.GetString("userID"), f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"audio_url": url}, "audio uploaded", nil)
}

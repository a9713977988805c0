package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/karaoke-social-api/internal/application"
	"github.com/oksasatya/karaoke-social-api/pkg/response"
	"github.com/oksasatya/karaoke-social-api/pkg/validation"
)

type GiftHandler struct {
	Svc    *application.GiftService
	Logger *logrus.Logger
}

func NewGiftHandler(svc *application.GiftService, logger *logrus.Logger) *GiftHandler {
	return &GiftHandler{Svc: svc, Logger: logger}
}

// List GET /api/gifts
func (h *GiftHandler) List(c *gin.Context) {
	gifts, err := h.Svc.ListAvailable(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gifts, "gifts", nil)
}

type createGiftRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
	IconURL     string `json:"icon_url" binding:"omitempty,url"`
	Value       int64  `json:"value" binding:"required,min=1"`
	Tier        string `json:"tier" binding:"omitempty,tier"`
}

// Create POST /api/gifts (admin)
func (h *GiftHandler) Create(c *gin.Context) {
	var req createGiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	g, err := h.Svc.Create(c.Request.Context(), application.CreateGiftInput{
		Name:        req.Name,
		Description: req.Description,
		IconURL:     req.IconURL,
		Value:       req.Value,
		Tier:        req.Tier,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, application.NewGiftView(g), "gift created", nil)
}

type updateGiftRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Description *string `json:"description"`
	IconURL     *string `json:"icon_url" binding:"omitempty,url"`
	Value       *int64  `json:"value" binding:"omitempty,min=1"`
	Tier        *string `json:"tier" binding:"omitempty,tier"`
	Available   *bool   `json:"available"`
}

// Update PUT /api/gifts/:id (admin)
func (h *GiftHandler) Update(c *gin.Context) {
	var req updateGiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	g, err := h.Svc.Update(c.Request.Context(), c.Param("id"), application.UpdateGiftInput{
		Name:        req.Name,
		Description: req.Description,
		IconURL:     req.IconURL,
		Value:       req.Value,
		Tier:        req.Tier,
		Available:   req.Available,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, application.NewGiftView(g), "gift updated", nil)
}

// UploadIcon POST /api/gifts/:id/icon (admin, multipart field "file")
func (h *GiftHandler) UploadIcon(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "file is required", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "cannot read file", nil)
		return
	}
	defer f.Close()

	g, err := h.Svc.UploadIcon(c.Request.Context(), c.Param("id"), f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, application.NewGiftView(g), "icon updated", nil)
}

type sendGiftRequest struct {
	GiftID     string `json:"gift_id" binding:"required"`
	ReceiverID string `json:"receiver_id" binding:"required"`
}

// Send POST /api/gifts/send
func (h *GiftHandler) Send(c *gin.Context) {
	var req sendGiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	r, err := h.Svc.Send(c.Request.Context(), c.GetString("userID"), req.ReceiverID, req.GiftID)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"sender_coins":   r.SenderCoins,
		"receiver_level": r.ReceiverLevel,
		"points_gained":  r.PointsGained,
		"payout":         r.Payout,
		"fee":            r.Fee,
		"stage":          r.Stage.String(),
	}, "gift sent", nil)
}

// Received GET /api/gifts/received
func (h *GiftHandler) Received(c *gin.Context) {
	items, err := h.Svc.Received(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, items, "gifts received", nil)
}

// Sent GET /api/gifts/sent
func (h *GiftHandler) Sent(c *gin.Context) {
	items, err := h.Svc.Sent(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, items, "gifts sent", nil)
}

type buyCoinsRequest struct {
	Amount int64 `json:"amount" binding:"required,min=1"`
}

// BuyCoins POST /api/coins/purchase
func (h *GiftHandler) BuyCoins(c *gin.Context) {
	var req buyCoinsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	balance, err := h.Svc.BuyCoins(c.Request.Context(), c.GetString("userID"), req.Amount)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"coins": balance}, "coins purchased", nil)
}

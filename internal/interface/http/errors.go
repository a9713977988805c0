package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/karaoke-social-api/internal/application"
	"github.com/oksasatya/karaoke-social-api/internal/domain/entity"
	"github.com/oksasatya/karaoke-social-api/internal/domain/ledger"
	"github.com/oksasatya/karaoke-social-api/pkg/response"
)

// statusOf maps service errors to HTTP statuses. Unknown errors are 500.
func statusOf(err error) int {
	switch ledger.KindOf(err) {
	case ledger.KindNotFound:
		return http.StatusNotFound
	case ledger.KindUnavailable:
		return http.StatusConflict
	case ledger.KindInsufficientBalance, ledger.KindValidation:
		return http.StatusBadRequest
	}
	switch {
	case errors.Is(err, entity.ErrSelfFollow):
		return http.StatusBadRequest
	case errors.Is(err, application.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, application.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, application.ErrInvalidResetToken):
		return http.StatusBadRequest
	case errors.Is(err, application.ErrStorageNotReady), errors.Is(err, application.ErrResetUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// fail writes the error envelope for err. Client errors carry the ledger kind
// so callers can branch on it; server errors are logged and hidden.
func fail(c *gin.Context, logger *logrus.Logger, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		if logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"path":       c.FullPath(),
				"request_id": c.GetString("request_id"),
			}).Error("request failed")
		}
		response.Error[any](c, status, "internal error", nil)
		return
	}
	var details any
	if kind := ledger.KindOf(err); kind != "" {
		details = gin.H{"kind": kind}
	}
	response.Error[any](c, status, err.Error(), details)
}

package handler

import (
	"errors"
	"net/http"

	"github.com/cinematalkiez/blackhole/internal/middleware"
	"github.com/cinematalkiez/blackhole/internal/model"
	"github.com/cinematalkiez/blackhole/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CheckHandler exposes the verification store over HTTP
type CheckHandler struct {
	verifications *service.VerificationService
	log           *zap.Logger
}

func NewCheckHandler(verifications *service.VerificationService, log *zap.Logger) *CheckHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckHandler{verifications: verifications, log: log}
}

// Check godoc
// @Summary Verification lookup
// @Description Reports whether a device id is known and verified. Unknown ids report exists=false.
// @Tags Verification
// @Produce json
// @Param id path string true "Device id"
// @Success 200 {object} model.CheckResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /check/{id} [get]
func (h *CheckHandler) Check(c *gin.Context) {
	rec, err := h.verifications.Check(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.log.Error("verification lookup failed", zap.String("device_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Lookup failed"})
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, model.CheckResponse{
		Exists:        rec.Exists,
		TokenVerified: rec.TokenVerified,
	})
}

// MarkVerified godoc
// @Summary Confirm a device
// @Description Called by the external verification workflow once the device is verified.
// @Tags Verification
// @Produce json
// @Security BearerAuth
// @Param id path string true "Device id"
// @Success 200 {object} model.SuccessResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/verify/{id} [post]
func (h *CheckHandler) MarkVerified(c *gin.Context) {
	id := c.Param("id")
	if err := h.verifications.MarkVerified(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrInvalidDeviceID) {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
			return
		}
		h.log.Error("failed to mark device verified", zap.String("device_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to verify device"})
		return
	}

	h.log.Info("verification confirmed",
		zap.String("device_id", id),
		zap.String("by", c.GetString(middleware.ContextSubject)))
	c.JSON(http.StatusOK, model.SuccessResponse{
		Message: "Device verified",
		Data:    model.CheckResponse{Exists: true, TokenVerified: true},
	})
}

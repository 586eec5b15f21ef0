package notification

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fieldjobs/internal/middleware"
	"fieldjobs/internal/pkg/response"
	"fieldjobs/internal/pkg/validator"
)

type Handler struct {
	service   *Service
	publicKey string
}

// NewHandler exposes publicKey to browsers; empty means push is disabled.
func NewHandler(service *Service, publicKey string) *Handler {
	return &Handler{service: service, publicKey: publicKey}
}

// GetNotifications godoc
// @Summary List notifications
// @Description Latest notifications of the caller plus the unread count.
// @Tags Notifications
// @Security BearerAuth
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} ListResponse
// @Router /notifications [get]
func (h *Handler) GetNotifications(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	list, unread, total, err := h.service.List(c.Request.Context(), middleware.UserID(c), limit, offset)
	if err != nil {
		_ = c.Error(err)
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get notifications")
		return
	}

	response.Success(c, http.StatusOK, ListResponse{
		Notifications: list,
		UnreadCount:   unread,
		Total:         total,
	})
}

// GetUnreadCount godoc
// @Summary Unread notification count
// @Tags Notifications
// @Security BearerAuth
// @Success 200 {object} UnreadCountResponse
// @Router /notifications/unread-count [get]
func (h *Handler) GetUnreadCount(c *gin.Context) {
	unread, err := h.service.UnreadCount(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get unread count")
		return
	}
	response.Success(c, http.StatusOK, UnreadCountResponse{UnreadCount: unread})
}

// MarkAsRead godoc
// @Summary Mark a notification as read
// @Tags Notifications
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /notifications/{id}/read [patch]
func (h *Handler) MarkAsRead(c *gin.Context) {
	err := h.service.MarkRead(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if errors.Is(err, ErrNotificationNotFound) {
		response.CustomError(c, http.StatusNotFound, "NOT_FOUND", "Notification not found")
		return
	}
	if err != nil {
		_ = c.Error(err)
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to mark as read")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "read"})
}

// MarkAllAsRead godoc
// @Summary Mark all notifications as read
// @Tags Notifications
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /notifications/read-all [post]
func (h *Handler) MarkAllAsRead(c *gin.Context) {
	n, err := h.service.MarkAllRead(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to mark as read")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "all_read", "updated": n})
}

// VAPIDPublicKey godoc
// @Summary Web push application server key
// @Tags Push
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /push/vapid-public-key [get]
func (h *Handler) VAPIDPublicKey(c *gin.Context) {
	if h.publicKey == "" {
		response.CustomError(c, http.StatusServiceUnavailable, "PUSH_DISABLED", ErrPushDisabled)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"public_key": h.publicKey})
}

// Subscribe godoc
// @Summary Register the browser push subscription
// @Description Replaces any previous subscription of the caller.
// @Tags Push
// @Accept json
// @Security BearerAuth
// @Param request body SubscribeRequest true "PushSubscription JSON"
// @Success 200 {object} map[string]interface{}
// @Failure 400,503 {object} map[string]interface{}
// @Router /push/subscribe [post]
func (h *Handler) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", errs)
		return
	}

	err := h.service.Subscribe(c.Request.Context(), middleware.UserID(c), req)
	switch {
	case errors.Is(err, ErrPushDisabled):
		response.CustomError(c, http.StatusServiceUnavailable, "PUSH_DISABLED", err)
	case errors.Is(err, ErrInvalidSubscription):
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
	case err != nil:
		_ = c.Error(err)
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save subscription")
	default:
		response.Success(c, http.StatusOK, gin.H{"subscribed": true})
	}
}

// Unsubscribe godoc
// @Summary Remove the browser push subscription
// @Tags Push
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /push/subscribe [delete]
func (h *Handler) Unsubscribe(c *gin.Context) {
	if err := h.service.Unsubscribe(c.Request.Context(), middleware.UserID(c)); err != nil {
		_ = c.Error(err)
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to remove subscription")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"subscribed": false})
}

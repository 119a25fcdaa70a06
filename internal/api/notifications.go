package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/plateful/backend/internal/middleware"
	"github.com/plateful/backend/internal/service"
	"github.com/plateful/backend/internal/types"
)

// NotificationsHandler serves reminder preferences, web-push device
// registration and delivery history.
type NotificationsHandler struct {
	prefs          service.IPreferenceService
	auth           service.IAuthService
	vapidPublicKey string
}

func NewNotificationsHandler(prefs service.IPreferenceService, auth service.IAuthService, vapidPublicKey string) *NotificationsHandler {
	return &NotificationsHandler{prefs: prefs, auth: auth, vapidPublicKey: vapidPublicKey}
}

func (h *NotificationsHandler) RegisterRoutes(router *gin.RouterGroup) {
	notifications := router.Group("/notifications")
	notifications.Use(middleware.AuthMiddleware(h.auth))
	{
		notifications.GET("/preferences", h.GetPreferences)
		notifications.PUT("/preferences", h.UpdatePreferences)
		notifications.POST("/devices", h.RegisterDevice)
		notifications.DELETE("/devices/:id", h.RemoveDevice)
		notifications.GET("/history", h.History)
		notifications.GET("/vapid-key", h.VAPIDKey)
	}
}

// GetPreferences returns the user's reminder schedule, creating the default
// row for accounts that have never touched it.
func (h *NotificationsHandler) GetPreferences(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	prefs, err := h.prefs.GetPreferences(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get preferences"})
		return
	}

	c.JSON(http.StatusOK, prefs)
}

// UpdatePreferences replaces the reminder schedule wholesale. Minute fields
// outside [0,1439] are rejected before anything is written.
func (h *NotificationsHandler) UpdatePreferences(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req types.UpdateNotificationPreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	prefs, err := h.prefs.UpdatePreferences(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMinutesOutOfRange), errors.Is(err, service.ErrInvalidInterval):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update preferences"})
		}
		return
	}

	c.JSON(http.StatusOK, prefs)
}

// RegisterDevice stores a web-push subscription. Posting the same endpoint
// again refreshes the existing registration.
func (h *NotificationsHandler) RegisterDevice(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req types.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	device, err := h.prefs.RegisterDevice(c.Request.Context(), userID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register device"})
		return
	}

	c.JSON(http.StatusCreated, device)
}

func (h *NotificationsHandler) RemoveDevice(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	deviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid device id"})
		return
	}

	if err := h.prefs.RemoveDevice(c.Request.Context(), userID, deviceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "device not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove device"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "device removed"})
}

// History returns the most recent delivery log entries, newest first.
func (h *NotificationsHandler) History(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	logs, err := h.prefs.ListHistory(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get history"})
		return
	}

	c.JSON(http.StatusOK, logs)
}

// VAPIDKey hands the browser the public key it needs to subscribe for push.
func (h *NotificationsHandler) VAPIDKey(c *gin.Context) {
	if h.vapidPublicKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "web push is not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"vapid_public_key": h.vapidPublicKey})
}

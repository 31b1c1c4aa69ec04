package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	reminderRepo "doctordash/database/repository/reminder"
	"doctordash/services/reminder"
)

// ReminderHandler exposes reminder schedule management over HTTP.
type ReminderHandler struct {
	Service *reminder.ReminderService
	Engine  *reminder.DispatchEngine
}

// Upsert creates or updates one of the caller's reminders.
func (h *ReminderHandler) Upsert(c *gin.Context) {
	var input reminder.UpsertInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	userID := c.GetString("userID")
	rem, err := h.Service.Upsert(c.Request.Context(), userID, input)
	if err != nil {
		respondReminderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reminder": rem})
}

// List returns all of the caller's reminders.
func (h *ReminderHandler) List(c *gin.Context) {
	userID := c.GetString("userID")

	rems, err := h.Service.List(c.Request.Context(), userID)
	if err != nil {
		getLogger(c).Error("list reminders failed", zap.String("userId", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch reminders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reminders": rems})
}

// Delete removes one of the caller's reminders.
func (h *ReminderHandler) Delete(c *gin.Context) {
	userID := c.GetString("userID")

	if err := h.Service.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondReminderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// TestFire sends one of the caller's reminders immediately so they can
// verify their channels are set up, without touching the schedule.
func (h *ReminderHandler) TestFire(c *gin.Context) {
	userID := c.GetString("userID")

	if err := h.Engine.SendTest(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondReminderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sent": true})
}

// Postpone pushes a reminder's next send time forward by a number of hours.
func (h *ReminderHandler) Postpone(c *gin.Context) {
	var input struct {
		Hours int `json:"hours" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	userID := c.GetString("userID")
	next, err := h.Engine.Postpone(c.Request.Context(), userID, c.Param("id"), input.Hours)
	if err != nil {
		respondReminderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"nextSendAt": next})
}

func respondReminderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, reminder.ErrInvalidReminder):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, reminder.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, reminderRepo.ErrReminderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		getLogger(c).Error("reminder request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

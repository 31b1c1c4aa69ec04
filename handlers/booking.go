package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appointmentRepo "doctordash/database/repository/appointment"
	doctorRepo "doctordash/database/repository/doctor"
	"doctordash/models"
	"doctordash/services/booking"
)

// BookingHandler exposes the hold → payment → finalize flow over HTTP.
type BookingHandler struct {
	Workflow     *booking.ReservationWorkflow
	Appointments appointmentRepo.AppointmentRepository
}

// Hold places a temporary hold on a doctor's slot and returns the signed
// token the client must present for payment and finalize.
func (h *BookingHandler) Hold(c *gin.Context) {
	var input struct {
		DocID    string `json:"docId" binding:"required"`
		SlotDate string `json:"slotDate" binding:"required"`
		SlotTime string `json:"slotTime" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if _, err := models.ParseDateKey(input.SlotDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := models.ParseTimeSlot(input.SlotTime); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("userID")
	token, rec, err := h.Workflow.RequestHold(c.Request.Context(), userID, input.DocID, input.SlotDate, input.SlotTime)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"holdToken": token,
		"expiresAt": rec.ExpiresAt,
	})
}

// Pay creates a payable order for a held slot.
func (h *BookingHandler) Pay(c *gin.Context) {
	var input struct {
		HoldToken string `json:"holdToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	order, err := h.Workflow.InitiatePayment(c.Request.Context(), input.HoldToken)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// Finalize verifies the payment and converts the hold into a confirmed
// appointment. Safe to retry with the same token and payment reference.
func (h *BookingHandler) Finalize(c *gin.Context) {
	var input struct {
		HoldToken  string `json:"holdToken" binding:"required"`
		PaymentRef string `json:"paymentRef" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	appt, err := h.Workflow.Finalize(c.Request.Context(), input.HoldToken, input.PaymentRef)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"appointment": appt})
}

// Release drops a hold early so the slot opens up before the TTL lapses.
func (h *BookingHandler) Release(c *gin.Context) {
	var input struct {
		HoldToken string `json:"holdToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	if err := h.Workflow.Release(c.Request.Context(), input.HoldToken); err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"released": true})
}

// Cancel marks an existing appointment cancelled and frees its slot.
func (h *BookingHandler) Cancel(c *gin.Context) {
	userID := c.GetString("userID")
	appointmentID := c.Param("id")

	if err := h.Workflow.Cancel(c.Request.Context(), userID, appointmentID); err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cancelled": true})
}

// ListAppointments returns the caller's appointments, newest first.
func (h *BookingHandler) ListAppointments(c *gin.Context) {
	userID := c.GetString("userID")

	appts, err := h.Appointments.ListByUser(c.Request.Context(), userID)
	if err != nil {
		getLogger(c).Error("list appointments failed", zap.String("userId", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch appointments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"appointments": appts})
}

// respondBookingError maps workflow errors onto HTTP statuses. Anything
// unknown is a 500 and gets logged with full detail.
func respondBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, booking.ErrSlotUnavailable),
		errors.Is(err, booking.ErrDoctorUnavailable),
		errors.Is(err, booking.ErrLedgerBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrHoldExpired):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrPaymentFailed):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, doctorRepo.ErrDoctorNotFound),
		errors.Is(err, appointmentRepo.ErrAppointmentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		getLogger(c).Error("booking request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

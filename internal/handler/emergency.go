package handlers

import (
	"time"

	"SecuroHub/internal/models"
	"SecuroHub/pkg/constant"
	"SecuroHub/pkg/errors"
	"SecuroHub/pkg/logger"
	"SecuroHub/pkg/metrics"
	"SecuroHub/pkg/notification"
	"SecuroHub/pkg/response"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type EmergencySelectForm struct {
	Contact string `json:"contact" binding:"required"`
}

func pendingEmergency(c *gin.Context) string {
	pending, _ := sessions.Default(c).Get(constant.SessionPendingEmergency).(string)
	return pending
}

func (h *Handlers) handleEmergencyContacts(c *gin.Context) {
	response.Success(c, "emergency contacts", gin.H{
		"contacts": models.EmergencyContacts(),
		"pending":  pendingEmergency(c),
	})
}

// handleEmergencySelect remembers the contact until the user confirms or cancels.
func (h *Handlers) handleEmergencySelect(c *gin.Context) {
	var form EmergencySelectForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.Fail(c, "invalid request", gin.H{"error": err.Error()})
		return
	}
	contact, err := models.FindEmergencyContact(form.Contact)
	if err != nil {
		h.fail(c, err)
		return
	}
	session := sessions.Default(c)
	session.Set(constant.SessionPendingEmergency, contact.Key)
	if err := session.Save(); err != nil {
		response.Error(c, err)
		return
	}
	msg := h.t(c, "EmergencySelected", "confirm the call to "+contact.Name, map[string]interface{}{"Contact": contact.Name})
	response.Success(c, msg, gin.H{"pending": contact})
}

func (h *Handlers) handleEmergencyConfirm(c *gin.Context) {
	pending := pendingEmergency(c)
	if pending == "" {
		h.fail(c, errors.ErrNoPendingEmergency)
		return
	}
	contact, err := models.FindEmergencyContact(pending)
	if err != nil {
		h.fail(c, err)
		return
	}
	user := models.CurrentUser(c)
	dispatch, err := models.RecordDispatch(h.db, user.Username, contact)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.Notifier != nil {
		err := h.Notifier.Notify(c.Request.Context(), notification.EmergencyEvent{
			Username: user.Username,
			Role:     string(user.Role),
			Contact:  contact.Name,
			Link:     contact.Link,
			At:       time.Now(),
		})
		if err != nil {
			logger.Warn("emergency notification incomplete", zap.Error(err))
		}
	}
	if h.Metrics != nil {
		h.Metrics.RecordBusinessOperation(metrics.OpEmergencyDispatch, "ok")
	}

	session := sessions.Default(c)
	session.Delete(constant.SessionPendingEmergency)
	if err := session.Save(); err != nil {
		response.Error(c, err)
		return
	}
	msg := h.t(c, "EmergencyConfirmed", "dialing "+contact.Name, map[string]interface{}{"Contact": contact.Name})
	response.Success(c, msg, gin.H{"contact": contact, "link": contact.Link, "dispatch": dispatch})
}

func (h *Handlers) handleEmergencyCancel(c *gin.Context) {
	session := sessions.Default(c)
	session.Delete(constant.SessionPendingEmergency)
	if err := session.Save(); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, h.t(c, "EmergencyCancelled", "emergency call cancelled", nil), nil)
}

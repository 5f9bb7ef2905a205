package handlers

import (
	"SecuroHub/internal/assistant"
	"SecuroHub/internal/models"
	"SecuroHub/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
)

type ChatForm struct {
	Message   string   `json:"message"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Location  string   `json:"location"`
	Shared    bool     `json:"shared"`
}

func (h *Handlers) handleChatSend(c *gin.Context) {
	var form ChatForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.Fail(c, "invalid request", gin.H{"error": err.Error()})
		return
	}
	user := models.CurrentUser(c)
	ex, err := h.Assistant.Send(c.Request.Context(), user, form.Message, assistant.SendOptions{
		Latitude:  form.Latitude,
		Longitude: form.Longitude,
		Location:  form.Location,
		Shared:    form.Shared,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, h.t(c, "ChatReplied", "reply ready", nil), ex)
}

func (h *Handlers) handleChatHistory(c *gin.Context) {
	user := models.CurrentUser(c)
	messages, err := h.Assistant.History(user, cast.ToInt(c.Query("limit")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "history", messages)
}

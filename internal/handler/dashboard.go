package handlers

import (
	"bytes"
	"net/http"

	"SecuroHub/internal/models"
	"SecuroHub/pkg/response"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) handleMap(c *gin.Context) {
	user := models.CurrentUser(c)
	view, err := h.Dashboard.Map(user.Username)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "map", view)
}

func (h *Handlers) handleStats(c *gin.Context) {
	user := models.CurrentUser(c)
	stats, err := h.Dashboard.Stats(c.Request.Context(), user.Username)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "stats", stats)
}

func (h *Handlers) handleStatsChart(c *gin.Context) {
	user := models.CurrentUser(c)
	var buf bytes.Buffer
	if err := h.Dashboard.Chart(c.Request.Context(), user.Username, &buf); err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

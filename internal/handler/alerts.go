package handlers

import (
	"strings"

	"SecuroHub/internal/listeners"
	"SecuroHub/internal/models"
	"SecuroHub/pkg/errors"
	"SecuroHub/pkg/geo"
	"SecuroHub/pkg/response"
	"SecuroHub/pkg/search"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spf13/cast"
)

const (
	defaultNearbyRadiusKm = 1.0
	defaultSearchLimit    = 20
	maxSearchLimit        = 100
)

func (h *Handlers) handleCreateAlert(c *gin.Context) {
	var form models.AlertForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.Fail(c, "invalid request", gin.H{"error": err.Error()})
		return
	}
	user := models.CurrentUser(c)
	alert, err := models.CreateAlert(h.db, user.Username, form)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, h.t(c, "AlertCreated", "alert submitted", nil), alert)
}

func (h *Handlers) handleListAlerts(c *gin.Context) {
	user := models.CurrentUser(c)
	alerts, err := models.VisibleAlerts(h.db, user.Username)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "alerts", alerts)
}

func (h *Handlers) handleNearbyAlerts(c *gin.Context) {
	lat, errLat := cast.ToFloat64E(c.Query("lat"))
	lng, errLng := cast.ToFloat64E(c.Query("lng"))
	if errLat != nil || errLng != nil || c.Query("lat") == "" || c.Query("lng") == "" {
		h.fail(c, errors.ErrInvalidCoordinates)
		return
	}
	radius := defaultNearbyRadiusKm
	if v := c.Query("radius"); v != "" {
		r, err := cast.ToFloat64E(v)
		if err != nil || r <= 0 {
			response.Fail(c, "radius must be a positive number of kilometres", nil)
			return
		}
		radius = r
	}
	user := models.CurrentUser(c)
	alerts, err := models.NearbyAlerts(h.db, user.Username, geo.Point{Lat: lat, Lng: lng}, radius)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, "nearby alerts", alerts)
}

func (h *Handlers) handleSearchAlerts(c *gin.Context) {
	user := models.CurrentUser(c)
	limit := cast.ToInt(c.Query("limit"))
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	req := search.SearchRequest{
		Keyword:   c.Query("q"),
		Type:      search.DocTypeAlert,
		MustTerms: map[string][]string{"audience": listeners.Audiences(user.Username)},
		Size:      limit,
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, err := models.NormalizeStatus(raw)
		if err != nil {
			h.fail(c, err)
			return
		}
		req.MustTerms["status"] = []string{status}
	}
	if req.Keyword == "" {
		req.SortBy = []string{"-createdAt"}
	}
	res, err := h.Index.Search(c.Request.Context(), req)
	if err != nil {
		response.Error(c, errors.Wrap(err, "search alerts"))
		return
	}
	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}
	alerts, err := models.GetAlertsByIDs(h.db, user.Username, ids)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "search results", gin.H{"total": res.Total, "alerts": alerts})
}

// handleAlertStream pushes new alerts to the dashboard as server-sent events.
func (h *Handlers) handleAlertStream(c *gin.Context) {
	user := models.CurrentUser(c)
	h.Hub.Serve(c, uuid.NewString(), listeners.UserGroup(user.Username))
}

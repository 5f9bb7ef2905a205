package dashboard

import (
	"context"
	"fmt"
	"io"
	"time"

	"SecuroHub/internal/models"
	"SecuroHub/pkg/cache"
	"SecuroHub/pkg/constant"
	"SecuroHub/pkg/logger"
	"SecuroHub/pkg/metrics"

	"github.com/wcharczuk/go-chart/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	statsGenerationKey = "stats:generation"
	DefaultStatsTTL    = 30 * time.Second
)

// Dashboard builds the map and statistics views of the alerts visible to a
// viewer. Statistics are cached per viewer until the next alert submission.
type Dashboard struct {
	db      *gorm.DB
	cache   cache.Cache
	ttl     time.Duration
	metrics *metrics.Metrics
}

func New(db *gorm.DB, c cache.Cache, ttl time.Duration, m *metrics.Metrics) *Dashboard {
	if ttl <= 0 {
		ttl = DefaultStatsTTL
	}
	return &Dashboard{db: db, cache: c, ttl: ttl, metrics: m}
}

func (d *Dashboard) Map(viewer string) (*MapView, error) {
	alerts, err := models.VisibleAlerts(d.db, viewer)
	if err != nil {
		return nil, err
	}
	view := &MapView{
		Center:   DefaultCenter,
		Zoom:     DefaultZoom,
		Markers:  make([]Marker, 0, len(alerts)),
		Hotspots: Cluster(alerts, HotspotRadiusKm),
	}
	for _, a := range alerts {
		view.Markers = append(view.Markers, markerFor(a))
	}
	return view, nil
}

func (d *Dashboard) statsKey(ctx context.Context, viewer string) string {
	var generation int64
	if v, ok := d.cache.Get(ctx, statsGenerationKey); ok {
		switch n := v.(type) {
		case int64:
			generation = n
		case float64:
			generation = int64(n)
		}
	}
	return fmt.Sprintf("stats:%d:%s", generation, viewer)
}

// Stats returns the category counts and totals for viewer.
func (d *Dashboard) Stats(ctx context.Context, viewer string) (*Stats, error) {
	key := d.statsKey(ctx, viewer)
	var cached Stats
	if cache.GetJSON(ctx, d.cache, key, &cached) {
		d.recordCache(true)
		return &cached, nil
	}
	d.recordCache(false)

	stats, err := d.compute(viewer)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, d.cache, key, stats, d.ttl); err != nil {
		logger.Warn("cache stats failed", zap.Error(err))
	}
	return stats, nil
}

func (d *Dashboard) compute(viewer string) (*Stats, error) {
	alerts, err := models.VisibleAlerts(d.db, viewer)
	if err != nil {
		return nil, err
	}
	byStatus := map[string]int64{constant.AlertStatusActive: 0, constant.AlertStatusResolved: 0}
	for _, a := range alerts {
		byStatus[a.Status]++
	}
	users, err := models.CountUsers(d.db)
	if err != nil {
		return nil, err
	}
	messages, err := models.CountMessages(d.db)
	if err != nil {
		return nil, err
	}
	return &Stats{
		Categories:  categorize(alerts),
		Alerts:      byStatus,
		Users:       users,
		Messages:    messages,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func (d *Dashboard) recordCache(hit bool) {
	if d.metrics == nil {
		return
	}
	if hit {
		d.metrics.RecordCacheHit("stats", "get")
	} else {
		d.metrics.RecordCacheMiss("stats", "get")
	}
}

// Invalidate drops every cached statistics view.
func (d *Dashboard) Invalidate(ctx context.Context) {
	if _, err := d.cache.Increment(ctx, statsGenerationKey, 1); err != nil {
		logger.Warn("invalidate stats cache failed", zap.Error(err))
	}
}

// Chart renders the viewer's category counts as a PNG bar chart.
func (d *Dashboard) Chart(ctx context.Context, viewer string, w io.Writer) error {
	stats, err := d.Stats(ctx, viewer)
	if err != nil {
		return err
	}
	bars := make([]chart.Value, 0, len(stats.Categories))
	for _, c := range stats.Categories {
		bars = append(bars, chart.Value{Value: float64(c.Count), Label: c.Category})
	}
	graph := chart.BarChart{
		Title:      "Crime Statistics",
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		Height:     400,
		Width:      640,
		BarWidth:   60,
		YAxis:      chart.YAxis{Name: "Incidents"},
		Bars:       bars,
	}
	return graph.Render(chart.PNG, w)
}

// RefreshGauges publishes global alert, user and message totals.
func (d *Dashboard) RefreshGauges(ctx context.Context) {
	if d.metrics == nil {
		return
	}
	counts, err := models.CountAlertsByStatus(d.db)
	if err != nil {
		logger.Warn("refresh alert gauges failed", zap.Error(err))
		return
	}
	for status, n := range counts {
		d.metrics.SetBusinessMetric("alerts", status, float64(n))
	}
	if users, err := models.CountUsers(d.db); err == nil {
		d.metrics.SetBusinessMetric("users", "total", float64(users))
	}
	if messages, err := models.CountMessages(d.db); err == nil {
		d.metrics.SetBusinessMetric("messages", "total", float64(messages))
	}
}

package listeners

import (
	"context"
	"time"

	"SecuroHub/internal/dashboard"
	"SecuroHub/internal/models"
	"SecuroHub/pkg/logger"
	"SecuroHub/pkg/metrics"
	"SecuroHub/pkg/search"
	"SecuroHub/pkg/sse"
	"SecuroHub/pkg/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const EventAlert = "alert"

// Deps are the side-effect targets of model events. Nil members are skipped.
type Deps struct {
	Hub       *sse.Hub
	Index     search.Engine
	Dashboard *dashboard.Dashboard
	Metrics   *metrics.Metrics
}

// UserGroup is the SSE group that only the given user's streams join.
func UserGroup(username string) string {
	return "user:" + username
}

// AudiencePublic marks shared alerts in the search index; unshared ones carry
// the reporter's UserGroup instead.
const AudiencePublic = "public"

// Audiences lists the audience values viewer may see.
func Audiences(viewer string) []string {
	return []string{AudiencePublic, UserGroup(viewer)}
}

func audience(a *models.Alert) string {
	if a.Shared {
		return AudiencePublic
	}
	return UserGroup(a.Reporter)
}

// AlertDoc converts an alert into its search document.
func AlertDoc(a *models.Alert) search.Doc {
	return search.Doc{
		ID:   a.ID,
		Type: search.DocTypeAlert,
		Fields: map[string]any{
			"description":  a.Description,
			"location":     a.Location,
			"originReport": a.OriginReport,
			"status":       a.Status,
			"reporter":     a.Reporter,
			"audience":     audience(a),
			"createdAt":    a.CreatedAt,
		},
	}
}

func InitAlertListeners(deps Deps) {
	util.Sig().Connect(models.SigAlertCreate, func(sender any, params ...any) {
		alert := sender.(*models.Alert)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if deps.Index != nil {
			if err := deps.Index.Index(ctx, AlertDoc(alert)); err != nil {
				logger.Warn("index alert failed", zap.String("alert", alert.ID), zap.Error(err))
			}
		}
		if deps.Dashboard != nil {
			deps.Dashboard.Invalidate(ctx)
		}
		if deps.Metrics != nil {
			deps.Metrics.RecordBusinessOperation(metrics.OpAlertSubmit, "ok")
		}
		if deps.Hub != nil {
			var err error
			if alert.Shared {
				err = deps.Hub.BroadcastEvent(EventAlert, alert)
			} else {
				err = deps.Hub.SendGroupEvent(UserGroup(alert.Reporter), EventAlert, alert)
			}
			if err != nil {
				logger.Warn("broadcast alert failed", zap.String("alert", alert.ID), zap.Error(err))
			}
		}
		logger.Info("alert created",
			zap.String("alert", alert.ID),
			zap.String("reporter", alert.Reporter),
			zap.String("status", alert.Status),
			zap.Bool("shared", alert.Shared),
		)
	})
}

func InitUserListeners(deps Deps) {
	util.Sig().Connect(models.SigUserCreate, func(sender any, params ...any) {
		user := sender.(*models.User)
		if deps.Dashboard != nil {
			deps.Dashboard.Invalidate(context.Background())
		}
		if deps.Metrics != nil {
			deps.Metrics.RecordBusinessOperation(metrics.OpSignup, "ok")
		}
		logger.Info("user created", zap.String("user", user.Username), zap.String("role", string(user.Role)))
	})
}

const backfillChunk = 500

// Backfill indexes every stored alert. The search index lives in memory, so
// alerts kept by a persistent database are invisible to search until this runs.
func Backfill(ctx context.Context, db *gorm.DB, index search.Engine) (int, error) {
	alerts, err := models.AllAlerts(db)
	if err != nil {
		return 0, err
	}
	for i := 0; i < len(alerts); i += backfillChunk {
		end := min(i+backfillChunk, len(alerts))
		docs := make([]search.Doc, 0, end-i)
		for j := i; j < end; j++ {
			docs = append(docs, AlertDoc(&alerts[j]))
		}
		if err := index.IndexBatch(ctx, docs); err != nil {
			return i, err
		}
	}
	return len(alerts), nil
}

// Reset removes every listener registered by this package.
func Reset() {
	util.Sig().Clear(models.SigAlertCreate)
	util.Sig().Clear(models.SigUserCreate)
}

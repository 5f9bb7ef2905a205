package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"SecuroHub/internal/models"
	"SecuroHub/pkg/constant"
	"SecuroHub/pkg/errors"
	"SecuroHub/pkg/geo"
	"SecuroHub/pkg/llm"
	"SecuroHub/pkg/logger"
	"SecuroHub/pkg/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	ReportPrefix = "report:"

	AnalystPersona = "You're a professional crime analyst. Provide insights on incidents."
	ExpertPersona  = "You're a criminology expert AI assistant."

	DefaultHistoryLimit = 50
)

// Assistant routes chat messages to the crime analyst (reports) or the
// criminology expert (everything else) and keeps the transcript.
type Assistant struct {
	db           *gorm.DB
	analyst      llm.LLM
	expert       llm.LLM
	timeout      time.Duration
	historyLimit int
	metrics      *metrics.Metrics
}

type Option func(*Assistant)

func WithTimeout(d time.Duration) Option { return func(a *Assistant) { a.timeout = d } }

func WithHistoryLimit(n int) Option { return func(a *Assistant) { a.historyLimit = n } }

func WithMetrics(m *metrics.Metrics) Option { return func(a *Assistant) { a.metrics = m } }

func New(db *gorm.DB, analyst, expert llm.LLM, opts ...Option) *Assistant {
	a := &Assistant{db: db, analyst: analyst, expert: expert, historyLimit: DefaultHistoryLimit}
	for _, opt := range opts {
		opt(a)
	}
	if a.historyLimit <= 0 {
		a.historyLimit = DefaultHistoryLimit
	}
	return a
}

// SendOptions carries the optional location of a report. When both
// coordinates are set a report also files an alert.
type SendOptions struct {
	Latitude  *float64
	Longitude *float64
	Location  string
	Shared    bool
}

func (o SendOptions) hasLocation() bool {
	return o.Latitude != nil && o.Longitude != nil
}

type Exchange struct {
	Message *models.ChatMessage `json:"message"`
	Reply   *models.ChatMessage `json:"reply"`
	Alert   *models.Alert       `json:"alert,omitempty"`
}

// IsReport reports whether text asks for the crime analyst.
func IsReport(text string) bool {
	text = strings.TrimSpace(text)
	return len(text) >= len(ReportPrefix) && strings.EqualFold(text[:len(ReportPrefix)], ReportPrefix)
}

// Persona appends the caller's identity to a base system prompt.
func Persona(base string, user *models.User) string {
	if user == nil {
		return base
	}
	return fmt.Sprintf("%s You are assisting %s, who works as a %s. Tailor the depth of your answer to that role.",
		base, user.Username, user.Role)
}

// Send appends text to the user's transcript, asks the matching provider and
// appends its reply. Provider failures become the reply text.
func (a *Assistant) Send(ctx context.Context, user *models.User, text string, opts SendOptions) (*Exchange, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.ErrEmptyMessage
	}
	if opts.hasLocation() && !geo.ValidCoordinates(*opts.Latitude, *opts.Longitude) {
		return nil, errors.ErrInvalidCoordinates
	}

	msg, err := models.AppendUserMessage(a.db, user.Username, text)
	if err != nil {
		return nil, err
	}

	report := IsReport(text)
	provider, base, providerKey, op := a.expert, ExpertPersona, constant.ProviderExpert, metrics.OpQuestion
	if report {
		provider, base, providerKey, op = a.analyst, AnalystPersona, constant.ProviderAnalyst, metrics.OpReport
	}

	replyText := a.ask(ctx, provider, Persona(base, user), text, op)
	reply, err := models.AppendAssistantMessage(a.db, user.Username, replyText, providerKey)
	if err != nil {
		return nil, err
	}

	ex := &Exchange{Message: msg, Reply: reply}
	if report && opts.hasLocation() {
		description := strings.TrimSpace(text[len(ReportPrefix):])
		if description == "" {
			description = text
		}
		alert, err := models.CreateAlert(a.db, user.Username, models.AlertForm{
			Description:  description,
			Location:     opts.Location,
			Latitude:     *opts.Latitude,
			Longitude:    *opts.Longitude,
			Shared:       opts.Shared,
			OriginReport: text,
		})
		if err != nil {
			// the transcript is already written; answer without the alert
			logger.Warn("file alert from report failed", zap.String("user", user.Username), zap.Error(err))
			return ex, nil
		}
		ex.Alert = alert
	}
	return ex, nil
}

func (a *Assistant) ask(ctx context.Context, provider llm.LLM, persona, text, op string) string {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	start := time.Now()
	reply, err := provider.Query(ctx, persona, text)
	status := "ok"
	if err != nil {
		status = "error"
		reply = fmt.Sprintf("%s error: %v", provider.Name(), err)
	}
	if a.metrics != nil {
		a.metrics.RecordBusinessOperation(op, status)
		a.metrics.RecordProviderDuration(provider.Name(), status, time.Since(start))
	}
	return reply
}

// History returns the last limit messages of user in insertion order; a
// non-positive limit selects the configured default.
func (a *Assistant) History(user *models.User, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = a.historyLimit
	}
	return models.ChatHistory(a.db, user.Username, limit)
}

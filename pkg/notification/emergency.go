package notification

import (
	"context"
	"errors"
	"time"

	"SecuroHub/pkg/logger"

	"go.uber.org/zap"
)

// EmergencyEvent is raised when a user confirms an emergency call.
type EmergencyEvent struct {
	Username string    `json:"username"`
	Role     string    `json:"role"`
	Contact  string    `json:"contact"`
	Link     string    `json:"link"`
	At       time.Time `json:"at"`
}

// Sender delivers an emergency event over one channel.
type Sender interface {
	Send(ctx context.Context, ev EmergencyEvent) error
}

type SenderFunc func(ctx context.Context, ev EmergencyEvent) error

func (f SenderFunc) Send(ctx context.Context, ev EmergencyEvent) error { return f(ctx, ev) }

// Notifier fans an event out to every sender. A failing sender does not stop
// the others.
type Notifier struct {
	senders []Sender
}

func NewNotifier(senders ...Sender) *Notifier {
	return &Notifier{senders: senders}
}

func (n *Notifier) Add(s Sender) {
	n.senders = append(n.senders, s)
}

func (n *Notifier) Notify(ctx context.Context, ev EmergencyEvent) error {
	logger.Warn("emergency call confirmed",
		zap.String("user", ev.Username),
		zap.String("role", ev.Role),
		zap.String("contact", ev.Contact),
		zap.String("link", ev.Link),
	)
	var errs []error
	for _, s := range n.senders {
		if err := s.Send(ctx, ev); err != nil {
			logger.Warn("emergency notification failed", zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNotifierFansOut(t *testing.T) {
	var got []string
	ok := SenderFunc(func(ctx context.Context, ev EmergencyEvent) error {
		got = append(got, ev.Contact)
		return nil
	})
	failing := SenderFunc(func(ctx context.Context, ev EmergencyEvent) error {
		return errors.New("pager offline")
	})

	n := NewNotifier(failing)
	n.Add(ok)
	err := n.Notify(context.Background(), EmergencyEvent{Username: "ann", Contact: "Police", Link: "tel:911", At: time.Now()})

	assert.EqualError(t, err, "pager offline")
	assert.Equal(t, []string{"Police"}, got)
	assert.NoError(t, NewNotifier().Notify(context.Background(), EmergencyEvent{}))
}

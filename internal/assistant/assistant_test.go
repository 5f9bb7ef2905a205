package assistant

import (
	"context"
	stderrors "errors"
	"testing"

	"SecuroHub/internal/models"
	"SecuroHub/pkg/constant"
	"SecuroHub/pkg/errors"
	"SecuroHub/pkg/llm"
	"SecuroHub/pkg/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeLLM struct {
	name    string
	reply   string
	err     error
	persona string
	text    string
	calls   int
}

func (f *fakeLLM) Name() string { return f.name }

func (f *fakeLLM) Query(ctx context.Context, persona, text string) (string, error) {
	f.calls++
	f.persona, f.text = persona, text
	return f.reply, f.err
}

func setup(t *testing.T) (*gorm.DB, *models.User) {
	t.Helper()
	db, err := util.InitDatabase("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared", false)
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	user, err := models.Signup(db, "analyst1", "secret1", "Researcher")
	require.NoError(t, err)
	return db, user
}

func ptr(f float64) *float64 { return &f }

func TestIsReport(t *testing.T) {
	assert.True(t, IsReport("report: stolen bike"))
	assert.True(t, IsReport("  REPORT: stolen bike"))
	assert.True(t, IsReport("Report:x"))
	assert.False(t, IsReport("reporting a theft"))
	assert.False(t, IsReport("what is a report:"))
	assert.False(t, IsReport("rep"))
}

func TestSendRoutesReportsToAnalyst(t *testing.T) {
	db, user := setup(t)
	analyst := &fakeLLM{name: "OpenAI", reply: "Pattern matches vehicle theft."}
	expert := &fakeLLM{name: "Gemini", reply: "Broken windows theory."}
	a := New(db, analyst, expert)

	ex, err := a.Send(context.Background(), user, "report: car stolen on 5th", SendOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, analyst.calls)
	assert.Zero(t, expert.calls)
	assert.Equal(t, "report: car stolen on 5th", analyst.text)
	assert.Contains(t, analyst.persona, AnalystPersona)
	assert.Contains(t, analyst.persona, "analyst1")
	assert.Contains(t, analyst.persona, "Researcher")
	assert.Equal(t, "Pattern matches vehicle theft.", ex.Reply.Content)
	assert.Equal(t, constant.ProviderAnalyst, ex.Reply.Provider)
	assert.Nil(t, ex.Alert)

	ex, err = a.Send(context.Background(), user, "Why do crimes cluster?", SendOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, expert.calls)
	assert.Contains(t, expert.persona, ExpertPersona)
	assert.Equal(t, constant.ProviderExpert, ex.Reply.Provider)

	history, err := a.History(user, 0)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, constant.ChatRoleUser, history[0].Role)
	assert.Equal(t, constant.ChatRoleAssistant, history[1].Role)
	assert.Equal(t, "Broken windows theory.", history[3].Content)
}

func TestSendProviderErrorBecomesReply(t *testing.T) {
	db, user := setup(t)
	a := New(db,
		&fakeLLM{name: "OpenAI", err: stderrors.New("rate limited")},
		&fakeLLM{name: "Gemini", err: llm.ErrNoAPIKey},
	)

	ex, err := a.Send(context.Background(), user, "report: shots fired", SendOptions{})
	require.NoError(t, err)
	assert.Equal(t, "OpenAI error: rate limited", ex.Reply.Content)

	ex, err = a.Send(context.Background(), user, "hello", SendOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Gemini error: api key not configured", ex.Reply.Content)
}

func TestSendRejectsEmpty(t *testing.T) {
	db, user := setup(t)
	expert := &fakeLLM{name: "Gemini"}
	a := New(db, &fakeLLM{name: "OpenAI"}, expert)

	_, err := a.Send(context.Background(), user, "   ", SendOptions{})
	assert.ErrorIs(t, err, errors.ErrEmptyMessage)
	assert.Zero(t, expert.calls)

	history, err := a.History(user, 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSendReportWithLocationFilesAlert(t *testing.T) {
	db, user := setup(t)
	a := New(db, &fakeLLM{name: "OpenAI", reply: "noted"}, &fakeLLM{name: "Gemini"})

	ex, err := a.Send(context.Background(), user, "Report: purse snatched near the station",
		SendOptions{Latitude: ptr(37.7793), Longitude: ptr(-122.4193), Location: "Civic Center", Shared: true})
	require.NoError(t, err)
	require.NotNil(t, ex.Alert)
	assert.Equal(t, "purse snatched near the station", ex.Alert.Description)
	assert.Equal(t, "Report: purse snatched near the station", ex.Alert.OriginReport)
	assert.Equal(t, constant.AlertStatusActive, ex.Alert.Status)
	assert.True(t, ex.Alert.Shared)

	_, err = a.Send(context.Background(), user, "report: x", SendOptions{Latitude: ptr(120), Longitude: ptr(0)})
	assert.ErrorIs(t, err, errors.ErrInvalidCoordinates)

	ex, err = a.Send(context.Background(), user, "where is the station?", SendOptions{Latitude: ptr(37.7), Longitude: ptr(-122.4)})
	require.NoError(t, err)
	assert.Nil(t, ex.Alert)
}

func TestHistoryLimit(t *testing.T) {
	db, user := setup(t)
	a := New(db, &fakeLLM{name: "OpenAI"}, &fakeLLM{name: "Gemini", reply: "ok"}, WithHistoryLimit(3))
	for i := 0; i < 3; i++ {
		_, err := a.Send(context.Background(), user, "question", SendOptions{})
		require.NoError(t, err)
	}
	history, err := a.History(user, 0)
	require.NoError(t, err)
	assert.Len(t, history, 3)

	history, err = a.History(user, 100)
	require.NoError(t, err)
	assert.Len(t, history, 6)
}

func TestSendKeepsReplyWhenAlertFails(t *testing.T) {
	db, user := setup(t)
	a := New(db, &fakeLLM{name: "OpenAI", reply: "Noted."}, &fakeLLM{name: "Gemini"})
	require.NoError(t, db.Migrator().DropTable(&models.Alert{}))

	ex, err := a.Send(context.Background(), user, "report: window smashed", SendOptions{Latitude: ptr(37.77), Longitude: ptr(-122.42)})
	require.NoError(t, err)
	assert.Equal(t, "Noted.", ex.Reply.Content)
	assert.Nil(t, ex.Alert)

	history, err := a.History(user, 0)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

package models

import (
	"strings"
	"testing"

	"SecuroHub/pkg/constant"
	"SecuroHub/pkg/errors"
	"SecuroHub/pkg/geo"
	"SecuroHub/pkg/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := util.InitDatabase("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared", false)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestSignup(t *testing.T) {
	db := newTestDB(t)

	user, err := Signup(db, "  alice ", "secret1", "law enforcement")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, RoleLawEnforcement, user.Role)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	_, err = Signup(db, "alice", "another1", "Student")
	assert.ErrorIs(t, err, errors.ErrUsernameTaken)

	_, err = Signup(db, "al", "secret1", "Student")
	assert.ErrorIs(t, err, errors.ErrInvalidUsername)

	_, err = Signup(db, "bob smith", "secret1", "Student")
	assert.ErrorIs(t, err, errors.ErrInvalidUsername)

	_, err = Signup(db, "bob", "12345", "Student")
	assert.ErrorIs(t, err, errors.ErrWeakPassword)

	_, err = Signup(db, "bob", strings.Repeat("p", MaxPasswordLength+8), "Student")
	assert.ErrorIs(t, err, errors.ErrPasswordTooLong)
	_, err = Signup(db, "carol", strings.Repeat("p", MaxPasswordLength), "Student")
	assert.NoError(t, err)

	_, err = Signup(db, "bob", "secret1", "Detective")
	assert.ErrorIs(t, err, errors.ErrInvalidRole)
}

func TestSignupEmitsUserCreate(t *testing.T) {
	db := newTestDB(t)
	var created *User
	util.Sig().Connect(SigUserCreate, func(sender any, params ...any) {
		created = sender.(*User)
	})
	t.Cleanup(func() { util.Sig().Clear(SigUserCreate) })

	_, err := Signup(db, "carol", "secret1", "Researcher")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "carol", created.Username)
}

func TestAuthenticate(t *testing.T) {
	db := newTestDB(t)
	_, err := Signup(db, "dave", "secret1", "Criminologist")
	require.NoError(t, err)

	user, err := Authenticate(db, "dave", "secret1")
	require.NoError(t, err)
	assert.Equal(t, RoleCriminologist, user.Role)

	_, err = Authenticate(db, "dave", "wrong-pass")
	assert.ErrorIs(t, err, errors.ErrInvalidCredentials)

	_, err = Authenticate(db, "nobody", "secret1")
	assert.ErrorIs(t, err, errors.ErrInvalidCredentials)

	missing, err := GetUserByUsername(db, "nobody")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" STUDENT ")
	require.NoError(t, err)
	assert.Equal(t, RoleStudent, r)
	assert.Len(t, Roles(), 4)
	assert.Equal(t, RoleCriminologist, Roles()[0])
}

func TestChatHistory(t *testing.T) {
	db := newTestDB(t)
	for i := 0; i < 5; i++ {
		_, err := AppendUserMessage(db, "erin", string(rune('a'+i)))
		require.NoError(t, err)
	}
	_, err := AppendAssistantMessage(db, "frank", "other user", constant.ProviderExpert)
	require.NoError(t, err)

	all, err := ChatHistory(db, "erin", 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "a", all[0].Content)

	last, err := ChatHistory(db, "erin", 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, "d", last[0].Content)
	assert.Equal(t, "e", last[1].Content)

	n, err := CountMessages(db)
	require.NoError(t, err)
	assert.EqualValues(t, 6, n)
}

func TestCreateAlert(t *testing.T) {
	db := newTestDB(t)

	alert, err := CreateAlert(db, "gina", AlertForm{Description: "Car break-in", Location: "Mission St", Latitude: 37.76, Longitude: -122.42})
	require.NoError(t, err)
	assert.Equal(t, constant.AlertStatusActive, alert.Status)
	assert.Len(t, alert.ID, 36)

	_, err = CreateAlert(db, "gina", AlertForm{Description: "x", Latitude: 91})
	assert.ErrorIs(t, err, errors.ErrInvalidCoordinates)

	_, err = CreateAlert(db, "gina", AlertForm{Description: "x", Status: "closed"})
	assert.ErrorIs(t, err, errors.ErrInvalidStatus)

	_, err = CreateAlert(db, "gina", AlertForm{Description: "   "})
	assert.ErrorIs(t, err, errors.ErrEmptyDescription)

	resolved, err := CreateAlert(db, "gina", AlertForm{Description: "old case", Status: "Resolved"})
	require.NoError(t, err)
	assert.Equal(t, constant.AlertStatusResolved, resolved.Status)

	counts, err := CountAlertsByStatus(db)
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts[constant.AlertStatusActive])
	assert.EqualValues(t, 1, counts[constant.AlertStatusResolved])
}

func TestVisibleAndNearbyAlerts(t *testing.T) {
	db := newTestDB(t)

	mine, err := CreateAlert(db, "hank", AlertForm{Description: "private note", Latitude: 37.7749, Longitude: -122.4194})
	require.NoError(t, err)
	shared, err := CreateAlert(db, "ivy", AlertForm{Description: "shared theft", Latitude: 37.78, Longitude: -122.41, Shared: true})
	require.NoError(t, err)
	_, err = CreateAlert(db, "ivy", AlertForm{Description: "ivy private", Latitude: 37.7749, Longitude: -122.4194})
	require.NoError(t, err)
	_, err = CreateAlert(db, "ivy", AlertForm{Description: "far away", Latitude: 40.71, Longitude: -74.0, Shared: true})
	require.NoError(t, err)

	visible, err := VisibleAlerts(db, "hank")
	require.NoError(t, err)
	require.Len(t, visible, 3)
	assert.Equal(t, "far away", visible[0].Description)
	for _, a := range visible {
		assert.NotEqual(t, "ivy private", a.Description)
	}

	nearby, err := NearbyAlerts(db, "hank", geo.Point{Lat: 37.7749, Lng: -122.4194}, 5)
	require.NoError(t, err)
	require.Len(t, nearby, 2)
	assert.Equal(t, mine.ID, nearby[0].ID)
	assert.Equal(t, shared.ID, nearby[1].ID)
	assert.Greater(t, nearby[1].DistanceKm, 0.0)

	byIDs, err := GetAlertsByIDs(db, "hank", []string{shared.ID, mine.ID, "missing"})
	require.NoError(t, err)
	require.Len(t, byIDs, 2)
	assert.Equal(t, shared.ID, byIDs[0].ID)
}

func TestEmergencyContacts(t *testing.T) {
	contacts := EmergencyContacts()
	require.Len(t, contacts, 3)
	for _, c := range contacts {
		assert.Equal(t, "tel:911", c.Link)
	}

	c, err := FindEmergencyContact("fire department")
	require.NoError(t, err)
	assert.Equal(t, "fire", c.Key)

	_, err = FindEmergencyContact("ghostbusters")
	assert.ErrorIs(t, err, errors.ErrUnknownContact)

	db := newTestDB(t)
	_, err = RecordDispatch(db, "jane", c)
	require.NoError(t, err)
	ds, err := DispatchesOf(db, "jane")
	require.NoError(t, err)
	require.Len(t, ds, 1)
	assert.Equal(t, "fire", ds[0].ContactKey)
}

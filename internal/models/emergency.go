package models

import (
	"strings"
	"time"

	"SecuroHub/pkg/errors"

	"gorm.io/gorm"
)

// EmergencyContact is a dialable service offered on the dashboard.
type EmergencyContact struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Link string `json:"link"`
}

var emergencyContacts = []EmergencyContact{
	{Key: "police", Name: "Police", Link: "tel:911"},
	{Key: "fire", Name: "Fire Department", Link: "tel:911"},
	{Key: "hospital", Name: "Hospital", Link: "tel:911"},
}

func EmergencyContacts() []EmergencyContact {
	return append([]EmergencyContact(nil), emergencyContacts...)
}

// FindEmergencyContact matches by key or display name, ignoring case.
func FindEmergencyContact(name string) (EmergencyContact, error) {
	name = strings.TrimSpace(name)
	for _, c := range emergencyContacts {
		if strings.EqualFold(name, c.Key) || strings.EqualFold(name, c.Name) {
			return c, nil
		}
	}
	return EmergencyContact{}, errors.ErrUnknownContact
}

// EmergencyDispatch records a confirmed emergency call.
type EmergencyDispatch struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Username   string    `json:"username" gorm:"size:32;index"`
	ContactKey string    `json:"contact" gorm:"size:32"`
	Link       string    `json:"link" gorm:"size:64"`
	CreatedAt  time.Time `json:"createdAt"`
}

func RecordDispatch(db *gorm.DB, username string, contact EmergencyContact) (*EmergencyDispatch, error) {
	d := &EmergencyDispatch{Username: username, ContactKey: contact.Key, Link: contact.Link}
	if err := db.Create(d).Error; err != nil {
		return nil, errors.Wrap(err, "record dispatch")
	}
	return d, nil
}

func DispatchesOf(db *gorm.DB, username string) ([]EmergencyDispatch, error) {
	var ds []EmergencyDispatch
	err := db.Where("username = ?", username).Order("id ASC").Find(&ds).Error
	return ds, err
}

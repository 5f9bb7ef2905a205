package models

import (
	"time"

	"gorm.io/gorm"
)

// LoginEvent is an audit record of a sign-in attempt.
type LoginEvent struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"size:32;index"`
	Success   bool      `json:"success"`
	IP        string    `json:"ip" gorm:"size:64"`
	Browser   string    `json:"browser" gorm:"size:64"`
	OS        string    `json:"os" gorm:"size:64"`
	Device    string    `json:"device" gorm:"size:32"`
	City      string    `json:"city,omitempty" gorm:"size:64"`
	CreatedAt time.Time `json:"createdAt"`
}

func RecordLoginEvent(db *gorm.DB, event *LoginEvent) error {
	return db.Create(event).Error
}

func RecentLoginEvents(db *gorm.DB, username string, limit int) ([]LoginEvent, error) {
	var events []LoginEvent
	err := db.Where("username = ?", username).Order("id DESC").Limit(limit).Find(&events).Error
	return events, err
}

// Migrate creates or updates every table of the service.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &ChatMessage{}, &Alert{}, &EmergencyDispatch{}, &LoginEvent{})
}

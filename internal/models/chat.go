package models

import (
	"time"

	"SecuroHub/pkg/constant"
	"SecuroHub/pkg/errors"

	"gorm.io/gorm"
)

// ChatMessage is one entry of a user's rolling transcript. Entries are
// append-only and ordered by ID.
type ChatMessage struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"-" gorm:"size:32;index"`
	Role      string    `json:"role" gorm:"size:16"`
	Content   string    `json:"content" gorm:"type:text"`
	Provider  string    `json:"provider,omitempty" gorm:"size:16"`
	CreatedAt time.Time `json:"createdAt"`
}

func AppendMessage(db *gorm.DB, username, role, content, provider string) (*ChatMessage, error) {
	msg := &ChatMessage{Username: username, Role: role, Content: content, Provider: provider}
	if err := db.Create(msg).Error; err != nil {
		return nil, errors.Wrap(err, "append chat message")
	}
	return msg, nil
}

func AppendUserMessage(db *gorm.DB, username, content string) (*ChatMessage, error) {
	return AppendMessage(db, username, constant.ChatRoleUser, content, "")
}

func AppendAssistantMessage(db *gorm.DB, username, content, provider string) (*ChatMessage, error) {
	return AppendMessage(db, username, constant.ChatRoleAssistant, content, provider)
}

// ChatHistory returns the last limit messages of username in insertion order.
func ChatHistory(db *gorm.DB, username string, limit int) ([]ChatMessage, error) {
	var messages []ChatMessage
	q := db.Where("username = ?", username).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&messages).Error; err != nil {
		return nil, errors.Wrap(err, "query chat history")
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func CountMessages(db *gorm.DB) (int64, error) {
	var n int64
	err := db.Model(&ChatMessage{}).Count(&n).Error
	return n, err
}

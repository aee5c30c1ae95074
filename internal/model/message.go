package model

import "gorm.io/gorm"

const (
	MessageTypeText = "text"
	MessageTypeFile = "file"
)

type Message struct {
	gorm.Model
	ChatID   uint   `json:"chat_id" gorm:"index"`
	SenderID uint   `json:"sender_id"`
	Text     string `json:"text"`
	Type     string `json:"type"`
	FileURL  string `json:"file_url"`
	Read     bool   `json:"read"`
}

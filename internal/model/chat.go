package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Chat struct {
	gorm.Model
	Name      string `json:"name"`
	IsGroup   bool   `json:"is_group"`
	CreatedBy uint   `json:"created_by"`
	// DirectKey канонический ключ пары для личных чатов, NULL для групп.
	// Уникальный индекс гарантирует не больше одного личного чата на пару.
	DirectKey *string `json:"-" gorm:"uniqueIndex"`
}

// ChatMember хранится отдельной строкой, порядок вступления задаётся ID.
type ChatMember struct {
	ID        uint `gorm:"primarykey"`
	ChatID    uint `gorm:"uniqueIndex:idx_chat_member"`
	UserID    uint `gorm:"uniqueIndex:idx_chat_member"`
	CreatedAt time.Time
}

// DirectChatKey builds the canonical "lo:hi" key for a user pair.
func DirectChatKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

package model

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username     string     `json:"username" gorm:"uniqueIndex"`
	Email        string     `json:"email" gorm:"uniqueIndex"`
	PasswordHash string     `json:"-"`
	Nickname     string     `json:"nickname"`
	AvatarURL    string     `json:"avatar_url"`
	StatusText   string     `json:"status_text"`
	StatusEmoji  string     `json:"status_emoji"`
	IsOnline     bool       `json:"is_online"`
	LastSeen     *time.Time `json:"last_seen"`
}

func (u *User) EnsureNickname() {
	if u.Nickname == "" {
		u.Nickname = u.Username
	}
}

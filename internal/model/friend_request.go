package model

import "gorm.io/gorm"

const (
	FriendRequestPending  = "pending"
	FriendRequestAccepted = "accepted"
	FriendRequestRejected = "rejected"
)

// FriendRequest переходит только pending -> accepted|rejected.
// Частичный уникальный индекс допускает единственную pending-заявку
// на упорядоченную пару (from, to); повторная отправка после отказа
// создаёт новую строку.
type FriendRequest struct {
	gorm.Model
	FromUserID uint   `json:"from_user_id" gorm:"uniqueIndex:idx_friend_pending,where:status = 'pending'"`
	ToUserID   uint   `json:"to_user_id" gorm:"uniqueIndex:idx_friend_pending,where:status = 'pending'"`
	Status     string `json:"status"`
}

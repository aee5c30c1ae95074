package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	CallStatusCalling = "calling"
	CallStatusRinging = "ringing"
	CallStatusActive  = "active"
	CallStatusEnded   = "ended"

	CallTypeAudio = "audio"
	CallTypeVideo = "video"
)

// CallSession держит последний offer/answer/ICE-бандл в SignalData;
// обе стороны забирают его поллингом, push-канала нет.
type CallSession struct {
	gorm.Model
	ChatID     uint       `json:"chat_id" gorm:"index"`
	CallerID   uint       `json:"caller_id"`
	ReceiverID uint       `json:"receiver_id"`
	CallType   string     `json:"call_type"`
	Status     string     `json:"status"`
	SignalData string     `json:"signal_data"`
	EndedAt    *time.Time `json:"ended_at"`
}

// Live reports whether the session still occupies the chat's call slot.
func (s *CallSession) Live() bool {
	switch s.Status {
	case CallStatusCalling, CallStatusRinging, CallStatusActive:
		return true
	}
	return false
}

package service

import (
	"context"
	"encoding/json"

	"github.com/pr-poehali-dev/moonly-messenger-2/internal/model"
	"github.com/pr-poehali-dev/moonly-messenger-2/internal/repository"
)

type UserService interface {
	Register(ctx context.Context, username, nickname, email, password string) (*model.User, error)
	Login(ctx context.Context, username, password string) (*model.User, error)
	Profile(ctx context.Context, requestingID, userID uint) (*model.User, error)
	UpdateProfile(ctx context.Context, userID uint, update repository.ProfileUpdate) error
	Search(ctx context.Context, userID uint, query string) ([]*model.User, error)
}

type PresenceService interface {
	MarkOnline(ctx context.Context, userID uint) error
	MarkOffline(ctx context.Context, userID uint) error
	Heartbeat(ctx context.Context, userID uint) error
	IsOnline(ctx context.Context, userID uint) (bool, error)
}

type ChatService interface {
	ListChats(ctx context.Context, userID uint) ([]ChatSummary, error)
	// GetOrCreateDirectChat идемпотентна: повторный вызов для той же пары
	// возвращает существующий чат и existing=true.
	GetOrCreateDirectChat(ctx context.Context, userID, otherUserID uint) (chatID uint, existing bool, err error)
	CreateGroupChat(ctx context.Context, userID uint, name string) (uint, error)
	AddMember(ctx context.Context, chatID, userID uint) error
	IsMember(ctx context.Context, chatID, userID uint) (bool, error)
}

type MessageService interface {
	Append(ctx context.Context, chatID, senderID uint, text, msgType, fileURL string) (*model.Message, error)
	// List возвращает сообщения по порядку и попутно помечает чужие
	// непрочитанные как прочитанные.
	List(ctx context.Context, chatID, userID uint) ([]MessageView, error)
	MarkRead(ctx context.Context, chatID, userID, throughMessageID uint) error
}

type FriendService interface {
	SendRequest(ctx context.Context, fromUserID uint, toUsername string) (requestID uint, err error)
	ListPendingIncoming(ctx context.Context, userID uint) ([]FriendRequestView, error)
	Accept(ctx context.Context, requestID, actingUserID uint) (chatID uint, err error)
	Reject(ctx context.Context, requestID, actingUserID uint) error
}

type CallService interface {
	Start(ctx context.Context, chatID, callerID, receiverID uint, callType string) (sessionID uint, err error)
	UpdateSignal(ctx context.Context, sessionID uint, signal json.RawMessage) error
	End(ctx context.Context, sessionID uint) error
	// Poll возвращает nil, когда живой сессии в чате нет.
	Poll(ctx context.Context, chatID, userID uint) (*CallView, error)
}

type FileService interface {
	Upload(ctx context.Context, userID uint, filename, contentType string, data []byte) (url string, err error)
}

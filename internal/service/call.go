package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/pr-poehali-dev/moonly-messenger-2/internal/model"
	"github.com/pr-poehali-dev/moonly-messenger-2/internal/pkg/apperr"
	"github.com/pr-poehali-dev/moonly-messenger-2/internal/repository"
)

type CallView struct {
	ID         uint            `json:"id"`
	CallerID   uint            `json:"caller_id"`
	ReceiverID uint            `json:"receiver_id"`
	CallType   string          `json:"call_type"`
	Status     string          `json:"status"`
	SignalData json.RawMessage `json:"signal_data"`
	CreatedAt  time.Time       `json:"created_at"`
}

type callService struct {
	callRepo   repository.CallRepository
	chats      ChatService
	staleAfter time.Duration
	log        *zap.Logger
}

func NewCallService(
	callRepo repository.CallRepository,
	chats ChatService,
	staleAfter time.Duration,
	log *zap.Logger,
) CallService {
	return &callService{
		callRepo:   callRepo,
		chats:      chats,
		staleAfter: staleAfter,
		log:        log,
	}
}

func (s *callService) requireMembership(ctx context.Context, chatID, userID uint) error {
	ok, err := s.chats.IsMember(ctx, chatID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.Forbidden, "not a member of this chat")
	}
	return nil
}

func (s *callService) Start(ctx context.Context, chatID, callerID, receiverID uint, callType string) (uint, error) {
	if callerID == 0 {
		return 0, apperr.New(apperr.Unauthorized, "missing user id")
	}
	if chatID == 0 || receiverID == 0 {
		return 0, apperr.New(apperr.InvalidArgument, "chat_id and receiver_id required")
	}
	if callType == "" {
		callType = model.CallTypeAudio
	}
	if callType != model.CallTypeAudio && callType != model.CallTypeVideo {
		return 0, apperr.New(apperr.InvalidArgument, "call_type must be audio or video")
	}

	if err := s.requireMembership(ctx, chatID, callerID); err != nil {
		return 0, err
	}

	live, err := s.callRepo.LatestLive(ctx, chatID)
	if err != nil {
		return 0, apperr.Wrap(apperr.Internal, "failed to check for an active call", err)
	}
	if live != nil {
		return 0, apperr.New(apperr.Conflict, "a call is already in progress in this chat")
	}

	session := &model.CallSession{
		ChatID:     chatID,
		CallerID:   callerID,
		ReceiverID: receiverID,
		CallType:   callType,
		Status:     model.CallStatusCalling,
	}
	if err := s.callRepo.Create(ctx, session); err != nil {
		return 0, apperr.Wrap(apperr.Internal, "failed to start call", err)
	}

	s.log.Info("call started",
		zap.Uint("chat_id", chatID),
		zap.Uint("session_id", session.ID),
		zap.String("call_type", callType),
	)

	return session.ID, nil
}

func (s *callService) UpdateSignal(ctx context.Context, sessionID uint, signal json.RawMessage) error {
	if sessionID == 0 {
		return apperr.New(apperr.InvalidArgument, "call_id required")
	}

	// Перезапись сигнала всегда переводит сессию в active: это единственный
	// переход ringing->active и calling->active в протоколе
	updated, err := s.callRepo.UpdateSignal(ctx, sessionID, string(signal))
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to update call signal", err)
	}
	if !updated {
		return apperr.New(apperr.NotFound, "call session not found")
	}
	return nil
}

func (s *callService) End(ctx context.Context, sessionID uint) error {
	if sessionID == 0 {
		return apperr.New(apperr.InvalidArgument, "call_id required")
	}

	// Завершение идемпотентно: повторный вызов лишь перезапишет ended_at
	if err := s.callRepo.End(ctx, sessionID, time.Now()); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to end call", err)
	}
	return nil
}

func (s *callService) Poll(ctx context.Context, chatID, userID uint) (*CallView, error) {
	if userID == 0 {
		return nil, apperr.New(apperr.Unauthorized, "missing user id")
	}
	if chatID == 0 {
		return nil, apperr.New(apperr.InvalidArgument, "chat_id required")
	}

	if err := s.requireMembership(ctx, chatID, userID); err != nil {
		return nil, err
	}

	// Брошенные вызовы закрываются лениво на поллинге, фонового жнеца нет
	if err := s.callRepo.ExpireStale(ctx, chatID, time.Now().Add(-s.staleAfter)); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to expire stale calls", err)
	}

	session, err := s.callRepo.LatestLive(ctx, chatID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to poll for calls", err)
	}
	if session == nil {
		return nil, nil
	}

	view := &CallView{
		ID:         session.ID,
		CallerID:   session.CallerID,
		ReceiverID: session.ReceiverID,
		CallType:   session.CallType,
		Status:     session.Status,
		CreatedAt:  session.CreatedAt,
	}
	if session.SignalData != "" {
		view.SignalData = json.RawMessage(session.SignalData)
	}
	return view, nil
}

package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pr-poehali-dev/moonly-messenger-2/internal/model"
	"github.com/pr-poehali-dev/moonly-messenger-2/internal/pkg/apperr"
)

func TestCallLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	chatID := env.directChat(t, alice.ID, bob.ID)

	callID, err := env.calls.Start(ctx, chatID, alice.ID, bob.ID, model.CallTypeVideo)
	if err != nil {
		t.Fatalf("start call: %v", err)
	}

	call, err := env.calls.Poll(ctx, chatID, bob.ID)
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if call == nil {
		t.Fatal("poll returned nothing right after start")
	}
	if call.ID != callID || call.Status != model.CallStatusCalling {
		t.Errorf("call = %+v, want id %d in calling state", call, callID)
	}
	if call.CallerID != alice.ID || call.ReceiverID != bob.ID || call.CallType != model.CallTypeVideo {
		t.Errorf("call parties = %+v", call)
	}

	offer := json.RawMessage(`{"type":"offer","sdp":"v=0"}`)
	if err := env.calls.UpdateSignal(ctx, callID, offer); err != nil {
		t.Fatalf("update signal: %v", err)
	}

	call, err = env.calls.Poll(ctx, chatID, alice.ID)
	if err != nil {
		t.Fatalf("poll after signal: %v", err)
	}
	if call == nil || call.Status != model.CallStatusActive {
		t.Fatalf("signal did not activate the session: %+v", call)
	}
	if string(call.SignalData) != string(offer) {
		t.Errorf("signal data = %s, want %s", call.SignalData, offer)
	}

	if err := env.calls.End(ctx, callID); err != nil {
		t.Fatalf("end call: %v", err)
	}
	call, err = env.calls.Poll(ctx, chatID, bob.ID)
	if err != nil {
		t.Fatalf("poll after end: %v", err)
	}
	if call != nil {
		t.Errorf("ended call still polled: %+v", call)
	}

	// Повторное завершение безвредно
	if err := env.calls.End(ctx, callID); err != nil {
		t.Errorf("second end: %v", err)
	}
}

func TestStartCallConflictsAndMembership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	mallory := env.createUser(t, "mallory")
	chatID := env.directChat(t, alice.ID, bob.ID)

	if _, err := env.calls.Start(ctx, chatID, mallory.ID, bob.ID, ""); !apperr.IsKind(err, apperr.Forbidden) {
		t.Errorf("non-member start: got %v, want Forbidden", err)
	}
	if _, err := env.calls.Poll(ctx, chatID, mallory.ID); !apperr.IsKind(err, apperr.Forbidden) {
		t.Errorf("non-member poll: got %v, want Forbidden", err)
	}
	if _, err := env.calls.Start(ctx, chatID, alice.ID, bob.ID, "screenshare"); !apperr.IsKind(err, apperr.InvalidArgument) {
		t.Errorf("bad call type: got %v, want InvalidArgument", err)
	}

	callID, err := env.calls.Start(ctx, chatID, alice.ID, bob.ID, "")
	if err != nil {
		t.Fatalf("start call: %v", err)
	}

	if _, err := env.calls.Start(ctx, chatID, bob.ID, alice.ID, ""); !apperr.IsKind(err, apperr.Conflict) {
		t.Errorf("second live call: got %v, want Conflict", err)
	}

	if err := env.calls.End(ctx, callID); err != nil {
		t.Fatalf("end call: %v", err)
	}
	// Слот освободился
	if _, err := env.calls.Start(ctx, chatID, bob.ID, alice.ID, ""); err != nil {
		t.Errorf("start after end: %v", err)
	}
}

func TestUpdateSignalUnknownSession(t *testing.T) {
	env := newTestEnv(t)

	err := env.calls.UpdateSignal(context.Background(), 12345, json.RawMessage(`{}`))
	if !apperr.IsKind(err, apperr.NotFound) {
		t.Errorf("got %v, want NotFound", err)
	}
}

func TestStaleCallExpiresOnPoll(t *testing.T) {
	env := newTestEnvStale(t, 30*time.Millisecond)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	chatID := env.directChat(t, alice.ID, bob.ID)

	if _, err := env.calls.Start(ctx, chatID, alice.ID, bob.ID, ""); err != nil {
		t.Fatalf("start call: %v", err)
	}

	time.Sleep(60 * time.Millisecond)

	call, err := env.calls.Poll(ctx, chatID, bob.ID)
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if call != nil {
		t.Errorf("stale calling session survived the poll: %+v", call)
	}

	// Активные сессии поллинг не трогает
	activeID, err := env.calls.Start(ctx, chatID, alice.ID, bob.ID, "")
	if err != nil {
		t.Fatalf("restart call: %v", err)
	}
	if err := env.calls.UpdateSignal(ctx, activeID, json.RawMessage(`{"type":"answer"}`)); err != nil {
		t.Fatalf("update signal: %v", err)
	}

	time.Sleep(60 * time.Millisecond)

	call, err = env.calls.Poll(ctx, chatID, bob.ID)
	if err != nil {
		t.Fatalf("poll active: %v", err)
	}
	if call == nil || call.Status != model.CallStatusActive {
		t.Errorf("active session expired by poll: %+v", call)
	}
}

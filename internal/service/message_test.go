package service

import (
	"context"
	"testing"

	"github.com/pr-poehali-dev/moonly-messenger-2/internal/model"
	"github.com/pr-poehali-dev/moonly-messenger-2/internal/pkg/apperr"
)

func TestAppendAndListMessages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	chatID := env.directChat(t, alice.ID, bob.ID)

	first, err := env.messages.Append(ctx, chatID, alice.ID, "hello", "", "")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	second, err := env.messages.Append(ctx, chatID, alice.ID, "again", model.MessageTypeText, "")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if second.ID <= first.ID {
		t.Errorf("ids not increasing: %d then %d", first.ID, second.ID)
	}

	views, err := env.messages.List(ctx, chatID, alice.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("got %d messages, want 2", len(views))
	}
	if views[0].Text != "hello" || views[1].Text != "again" {
		t.Errorf("order broken: %q, %q", views[0].Text, views[1].Text)
	}
	for _, v := range views {
		if !v.IsOwn {
			t.Errorf("message %d not marked own for sender", v.ID)
		}
		if v.SenderName != "alice" {
			t.Errorf("sender name = %q, want alice", v.SenderName)
		}
	}

	bobViews, err := env.messages.List(ctx, chatID, bob.ID)
	if err != nil {
		t.Fatalf("list as bob: %v", err)
	}
	for _, v := range bobViews {
		if v.IsOwn {
			t.Errorf("message %d marked own for non-sender", v.ID)
		}
	}
}

func TestAppendValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	mallory := env.createUser(t, "mallory")
	chatID := env.directChat(t, alice.ID, bob.ID)

	if _, err := env.messages.Append(ctx, chatID, alice.ID, "  ", "", ""); !apperr.IsKind(err, apperr.InvalidArgument) {
		t.Errorf("empty message: got %v, want InvalidArgument", err)
	}
	if _, err := env.messages.Append(ctx, 0, alice.ID, "hi", "", ""); !apperr.IsKind(err, apperr.InvalidArgument) {
		t.Errorf("missing chat: got %v, want InvalidArgument", err)
	}
	if _, err := env.messages.Append(ctx, chatID, mallory.ID, "hi", "", ""); !apperr.IsKind(err, apperr.Forbidden) {
		t.Errorf("non-member append: got %v, want Forbidden", err)
	}
	if _, err := env.messages.List(ctx, chatID, mallory.ID); !apperr.IsKind(err, apperr.Forbidden) {
		t.Errorf("non-member list: got %v, want Forbidden", err)
	}

	// Вложение без текста валидно
	if _, err := env.messages.Append(ctx, chatID, alice.ID, "", model.MessageTypeFile, "https://cdn.example.com/f.png"); err != nil {
		t.Errorf("file-only message rejected: %v", err)
	}
}

func TestUnreadLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	chatID := env.directChat(t, alice.ID, bob.ID)

	for _, text := range []string{"one", "two", "three"} {
		if _, err := env.messages.Append(ctx, chatID, alice.ID, text, "", ""); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	unreadFor := func(userID uint) int64 {
		t.Helper()
		chats, err := env.chats.ListChats(ctx, userID)
		if err != nil {
			t.Fatalf("list chats: %v", err)
		}
		if len(chats) != 1 {
			t.Fatalf("got %d chats, want 1", len(chats))
		}
		return chats[0].UnreadCount
	}

	if got := unreadFor(bob.ID); got != 3 {
		t.Errorf("bob unread = %d, want 3", got)
	}
	// Собственные сообщения в счётчик отправителя не попадают
	if got := unreadFor(alice.ID); got != 0 {
		t.Errorf("alice unread = %d, want 0", got)
	}

	if _, err := env.messages.List(ctx, chatID, bob.ID); err != nil {
		t.Fatalf("bob reads: %v", err)
	}
	if got := unreadFor(bob.ID); got != 0 {
		t.Errorf("bob unread after read = %d, want 0", got)
	}
	if got := unreadFor(alice.ID); got != 0 {
		t.Errorf("alice unread after bob reads = %d, want 0", got)
	}
}

func TestMarkReadThroughMessage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	mallory := env.createUser(t, "mallory")
	chatID := env.directChat(t, alice.ID, bob.ID)

	var ids []uint
	for _, text := range []string{"one", "two", "three"} {
		msg, err := env.messages.Append(ctx, chatID, alice.ID, text, "", "")
		if err != nil {
			t.Fatalf("append: %v", err)
		}
		ids = append(ids, msg.ID)
	}

	if err := env.messages.MarkRead(ctx, chatID, mallory.ID, 0); !apperr.IsKind(err, apperr.Forbidden) {
		t.Errorf("non-member mark read: got %v, want Forbidden", err)
	}

	if err := env.messages.MarkRead(ctx, chatID, bob.ID, ids[1]); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	chats, err := env.chats.ListChats(ctx, bob.ID)
	if err != nil {
		t.Fatalf("list chats: %v", err)
	}
	if chats[0].UnreadCount != 1 {
		t.Errorf("unread after partial ack = %d, want 1", chats[0].UnreadCount)
	}

	if err := env.messages.MarkRead(ctx, chatID, bob.ID, 0); err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	chats, _ = env.chats.ListChats(ctx, bob.ID)
	if chats[0].UnreadCount != 0 {
		t.Errorf("unread after full ack = %d, want 0", chats[0].UnreadCount)
	}
}

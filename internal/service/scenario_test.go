package service

import (
	"context"
	"testing"
)

// Полный путь знакомства: заявка в друзья, принятие, общий чат,
// первое сообщение и сброс непрочитанного.
func TestAliceAndBobScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	requestID, err := env.friends.SendRequest(ctx, alice.ID, "bob")
	if err != nil {
		t.Fatalf("alice sends request: %v", err)
	}

	incoming, err := env.friends.ListPendingIncoming(ctx, bob.ID)
	if err != nil {
		t.Fatalf("bob polls requests: %v", err)
	}
	if len(incoming) != 1 || incoming[0].Username != "alice" {
		t.Fatalf("bob sees %+v, want one request from alice", incoming)
	}

	chatID, err := env.friends.Accept(ctx, requestID, bob.ID)
	if err != nil {
		t.Fatalf("bob accepts: %v", err)
	}

	for _, userID := range []uint{alice.ID, bob.ID} {
		chats, err := env.chats.ListChats(ctx, userID)
		if err != nil {
			t.Fatalf("list chats: %v", err)
		}
		if len(chats) != 1 || chats[0].ID != chatID {
			t.Fatalf("user %d sees %+v, want single chat %d", userID, chats, chatID)
		}
		if chats[0].LastMessage != "" || chats[0].UnreadCount != 0 {
			t.Errorf("fresh chat not empty: %+v", chats[0])
		}
	}

	if _, err := env.messages.Append(ctx, chatID, alice.ID, "hi", "", ""); err != nil {
		t.Fatalf("alice sends hi: %v", err)
	}

	chats, _ := env.chats.ListChats(ctx, bob.ID)
	if chats[0].UnreadCount != 1 {
		t.Errorf("bob unread = %d, want 1", chats[0].UnreadCount)
	}
	if chats[0].LastMessage != "hi" {
		t.Errorf("last message = %q, want hi", chats[0].LastMessage)
	}

	views, err := env.messages.List(ctx, chatID, bob.ID)
	if err != nil {
		t.Fatalf("bob fetches messages: %v", err)
	}
	if len(views) != 1 || views[0].Text != "hi" || views[0].IsOwn {
		t.Fatalf("bob sees %+v", views)
	}

	chats, _ = env.chats.ListChats(ctx, bob.ID)
	if chats[0].UnreadCount != 0 {
		t.Errorf("bob unread after fetch = %d, want 0", chats[0].UnreadCount)
	}
}

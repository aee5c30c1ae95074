package service

import (
	"context"
	"testing"

	"github.com/pr-poehali-dev/moonly-messenger-2/internal/pkg/apperr"
	"github.com/pr-poehali-dev/moonly-messenger-2/internal/repository"
)

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.users.Register(ctx, "al", "Al", "al@example.com", "pw"); !apperr.IsKind(err, apperr.InvalidArgument) {
		t.Errorf("short username: got %v, want InvalidArgument", err)
	}
	if _, err := env.users.Register(ctx, "alice", "", "alice@example.com", "pw"); !apperr.IsKind(err, apperr.InvalidArgument) {
		t.Errorf("missing nickname: got %v, want InvalidArgument", err)
	}

	if _, err := env.users.Register(ctx, "alice", "Alice", "alice@example.com", "secret123"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := env.users.Register(ctx, "alice", "Other", "other@example.com", "secret123"); !apperr.IsKind(err, apperr.Conflict) {
		t.Errorf("duplicate username: got %v, want Conflict", err)
	}
	if _, err := env.users.Register(ctx, "alice2", "Other", "alice@example.com", "secret123"); !apperr.IsKind(err, apperr.Conflict) {
		t.Errorf("duplicate email: got %v, want Conflict", err)
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	registered, err := env.users.Register(ctx, "alice", "Alice", "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	user, err := env.users.Login(ctx, "alice", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("login resolved user %d, want %d", user.ID, registered.ID)
	}

	if _, err := env.users.Login(ctx, "alice", "wrong"); !apperr.IsKind(err, apperr.Unauthorized) {
		t.Errorf("wrong password: got %v, want Unauthorized", err)
	}
	if _, err := env.users.Login(ctx, "ghost", "secret123"); !apperr.IsKind(err, apperr.Unauthorized) {
		t.Errorf("unknown user: got %v, want Unauthorized", err)
	}
}

func TestProfileEmailVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	own, err := env.users.Profile(ctx, alice.ID, 0)
	if err != nil {
		t.Fatalf("own profile: %v", err)
	}
	if own.Email == "" {
		t.Error("own email hidden")
	}

	other, err := env.users.Profile(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("other profile: %v", err)
	}
	if other.Email != "" {
		t.Error("email leaked to another user")
	}

	if _, err := env.users.Profile(ctx, alice.ID, 9999); !apperr.IsKind(err, apperr.NotFound) {
		t.Errorf("missing user: got %v, want NotFound", err)
	}
}

func TestUpdateProfileAndSearch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob_walker")

	if err := env.users.UpdateProfile(ctx, alice.ID, repository.ProfileUpdate{}); !apperr.IsKind(err, apperr.InvalidArgument) {
		t.Errorf("empty update: got %v, want InvalidArgument", err)
	}

	nickname := "Walker Bob"
	if err := env.users.UpdateProfile(ctx, bob.ID, repository.ProfileUpdate{Nickname: &nickname}); err != nil {
		t.Fatalf("update profile: %v", err)
	}

	// Поиск нечувствителен к регистру и смотрит в username и nickname
	found, err := env.users.Search(ctx, alice.ID, "WALKER")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 || found[0].ID != bob.ID {
		t.Fatalf("search found %d users, want bob", len(found))
	}
	if found[0].Email != "" {
		t.Error("search leaked email")
	}

	// Себя в результатах быть не должно
	found, err = env.users.Search(ctx, alice.ID, "alice")
	if err != nil {
		t.Fatalf("self search: %v", err)
	}
	if len(found) != 0 {
		t.Errorf("search returned the requester, got %d results", len(found))
	}
}

package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	if got := KindOf(New(NotFound, "chat not found")); got != NotFound {
		t.Errorf("KindOf = %v, want NotFound", got)
	}
	if got := KindOf(errors.New("plain")); got != Internal {
		t.Errorf("untagged error kind = %v, want Internal", got)
	}
	if got := KindOf(nil); got != Internal {
		t.Errorf("nil error kind = %v, want Internal", got)
	}

	// Обёртки fmt.Errorf не должны терять вид ошибки
	wrapped := fmt.Errorf("handler: %w", New(Forbidden, "not a member"))
	if !IsKind(wrapped, Forbidden) {
		t.Error("kind lost through fmt.Errorf wrapping")
	}
}

func TestMessageOf(t *testing.T) {
	if got := MessageOf(New(Conflict, "username taken")); got != "username taken" {
		t.Errorf("MessageOf = %q", got)
	}
	if got := MessageOf(errors.New("pq: syntax error")); got != "internal error" {
		t.Errorf("untagged message leaked: %q", got)
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(Internal, "failed to save message", cause)

	if !errors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}
	if got := err.Error(); got != "internal: failed to save message: connection refused" {
		t.Errorf("Error() = %q", got)
	}
}

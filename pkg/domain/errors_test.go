package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesByKind(t *testing.T) {
	err := NotFound(7)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected NotFound to match sentinel")
	}
	if errors.Is(err, ErrUnauthorized) {
		t.Fatalf("NotFound must not match Unauthorized")
	}
	wrapped := fmt.Errorf("handler: %w", InvalidInput("Invalid title length"))
	if !errors.Is(wrapped, ErrInvalidInput) {
		t.Fatalf("expected wrapped invalid input to match")
	}
	if KindOf(wrapped) != KindInvalidInput {
		t.Fatalf("unexpected kind %s", KindOf(wrapped))
	}
}

func TestInternalUnwrapsCause(t *testing.T) {
	cause := errors.New("disk gone")
	err := Internal("restore snapshot", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable")
	}
	if !errors.Is(err, ErrInternal) {
		t.Fatalf("expected internal kind")
	}
	if got := err.Error(); got != "internal_error: restore snapshot: disk gone" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestKindOfForeignError(t *testing.T) {
	if KindOf(errors.New("boom")) != KindInternal {
		t.Fatalf("foreign errors should map to internal")
	}
	if (&Error{Kind: KindAlreadyExists}).Error() != "already_exists" {
		t.Fatalf("bare kind should render as kind")
	}
}

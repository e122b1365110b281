package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestCreateUser_NormalizesEmailAndDefaults(t *testing.T) {
	f := newFixture(t)

	u, err := f.identity.CreateUser(context.Background(), CreateUserInput{Email: "  Traveller@Example.COM "})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == uuid.Nil {
		t.Fatalf("expected id to be assigned")
	}
	if u.Email != "traveller@example.com" {
		t.Fatalf("email not normalized: %q", u.Email)
	}
	if !u.NotificationEnabled {
		t.Fatalf("notifications should default to enabled")
	}
	if u.CreatedAt.IsZero() {
		t.Fatalf("created_at not set")
	}
}

func TestCreateUser_NotificationsDisabled(t *testing.T) {
	f := newFixture(t)

	u, err := f.identity.CreateUser(context.Background(), CreateUserInput{
		Email:               "quiet@example.com",
		TelegramChatID:      ptr(int64(42)),
		NotificationEnabled: ptr(false),
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	got, err := f.identity.GetUser(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.NotificationEnabled {
		t.Fatalf("expected notifications disabled after reload")
	}
	if got.TelegramChatID == nil || *got.TelegramChatID != 42 {
		t.Fatalf("unexpected telegram chat id: %v", got.TelegramChatID)
	}
}

func TestCreateUser_DuplicateEmailIgnoresCase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.identity.CreateUser(ctx, CreateUserInput{Email: "dup@example.com"}); err != nil {
		t.Fatalf("first CreateUser: %v", err)
	}
	_, err := f.identity.CreateUser(ctx, CreateUserInput{Email: "DUP@example.com"})
	if !errors.Is(err, ErrUniquenessViolation) {
		t.Fatalf("expected ErrUniquenessViolation, got %v", err)
	}
}

func TestCreateUser_RejectsMalformedEmail(t *testing.T) {
	f := newFixture(t)

	for _, email := range []string{"", "   ", "not-an-email", "Bob <bob@example.com>"} {
		_, err := f.identity.CreateUser(context.Background(), CreateUserInput{Email: email})
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("email %q: expected ErrInvalidArgument, got %v", email, err)
		}
	}
}

func TestGetUser_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.identity.GetUser(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateUser_RejectsZeroTelegramChat(t *testing.T) {
	f := newFixture(t)

	_, err := f.identity.CreateUser(context.Background(), CreateUserInput{
		Email:          "chat@example.com",
		TelegramChatID: ptr(int64(0)),
	})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

package session

import (
	"errors"
	"testing"
	"time"
)

func TestGetOrCreateHonorsClientID(t *testing.T) {
	s := NewStore(time.Hour)

	sess := s.GetOrCreate("client-chosen")
	if sess.ID != "client-chosen" {
		t.Fatalf("expected client id to be honored, got %q", sess.ID)
	}

	again := s.GetOrCreate("client-chosen")
	if again != sess {
		t.Fatalf("second GetOrCreate created a duplicate session")
	}
	if s.Count() != 1 {
		t.Fatalf("expected 1 session, got %d", s.Count())
	}
}

func TestGetOrCreateMintsID(t *testing.T) {
	s := NewStore(time.Hour)

	a := s.GetOrCreate("")
	b := s.GetOrCreate("")
	if a.ID == "" || b.ID == "" {
		t.Fatalf("minted ids must be non-empty")
	}
	if a.ID == b.ID {
		t.Fatalf("minted ids must be unique, both were %q", a.ID)
	}
}

func TestEviction(t *testing.T) {
	s := NewStore(time.Hour)
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return current }

	s.GetOrCreate("stale")
	current = current.Add(30 * time.Minute)
	s.GetOrCreate("fresh")

	// "stale" is now 61 minutes idle, "fresh" 31 minutes.
	current = current.Add(31 * time.Minute)

	if _, err := s.Get("stale"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected stale session to be evicted, got err=%v", err)
	}
	if _, err := s.Get("fresh"); err != nil {
		t.Fatalf("fresh session must survive: %v", err)
	}
}

func TestTouchPreventsEviction(t *testing.T) {
	s := NewStore(time.Hour)
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return current }

	s.GetOrCreate("busy")
	for i := 0; i < 4; i++ {
		current = current.Add(45 * time.Minute)
		if _, err := s.Get("busy"); err != nil {
			t.Fatalf("session touched within timeout was evicted at step %d: %v", i, err)
		}
	}
}

func TestAppendAndPopLastIfRole(t *testing.T) {
	s := NewStore(time.Hour)
	sess := s.GetOrCreate("")

	if err := s.AppendMessage(sess.ID, Message{Role: RoleUser, Content: "hi"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.AppendMessage(sess.ID, Message{Role: RoleAssistant, Content: "hello"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	// Last message is the assistant's, so popping a user message is a no-op.
	s.PopLastIfRole(sess.ID, RoleUser)
	msgs, err := s.Messages(sess.ID)
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("pop with mismatched role must be a no-op, got %d messages", len(msgs))
	}

	s.PopLastIfRole(sess.ID, RoleAssistant)
	msgs, _ = s.Messages(sess.ID)
	if len(msgs) != 1 || msgs[0].Role != RoleUser {
		t.Fatalf("expected only the user message to remain, got %+v", msgs)
	}

	// Popping on an empty transcript must not panic or error.
	s.PopLastIfRole(sess.ID, RoleUser)
	s.PopLastIfRole(sess.ID, RoleUser)
}

func TestDeleteIdempotent(t *testing.T) {
	s := NewStore(time.Hour)
	s.GetOrCreate("gone")
	s.Delete("gone")
	s.Delete("gone")
	s.Delete("never-existed")

	if _, err := s.Get("gone"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMessagesReturnsCopy(t *testing.T) {
	s := NewStore(time.Hour)
	sess := s.GetOrCreate("")
	_ = s.AppendMessage(sess.ID, Message{Role: RoleUser, Content: "original"})

	msgs, _ := s.Messages(sess.ID)
	msgs[0].Content = "mutated"

	fresh, _ := s.Messages(sess.ID)
	if fresh[0].Content != "original" {
		t.Fatalf("internal state mutated via returned slice")
	}
}

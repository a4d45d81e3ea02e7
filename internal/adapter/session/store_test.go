package session

import (
	"fmt"
	"testing"
)

func TestCreateLoadRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir(), 50)
	if err != nil {
		t.Fatal(err)
	}

	sess, err := store.Create()
	if err != nil {
		t.Fatal(err)
	}
	if sess.ID == "" {
		t.Fatal("expected generated session id")
	}

	if err := store.Append(sess, "user", "Hello"); err != nil {
		t.Fatal(err)
	}
	if err := store.Append(sess, "assistant", "Hi, good to meet you."); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load(sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(loaded.Messages))
	}
	if loaded.Messages[0].Role != "user" || loaded.Messages[1].Role != "assistant" {
		t.Error("message roles not preserved")
	}
}

func TestHistoryTrimming(t *testing.T) {
	store, err := NewStore(t.TempDir(), 4)
	if err != nil {
		t.Fatal(err)
	}

	sess, err := store.Create()
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 10; i++ {
		if err := store.Append(sess, "user", fmt.Sprintf("message %d", i)); err != nil {
			t.Fatal(err)
		}
	}

	if len(sess.Messages) != 4 {
		t.Fatalf("expected history trimmed to 4, got %d", len(sess.Messages))
	}
	if sess.Messages[len(sess.Messages)-1].Content != "message 9" {
		t.Error("trimming should keep the most recent messages")
	}
}

func TestListOrdering(t *testing.T) {
	store, err := NewStore(t.TempDir(), 50)
	if err != nil {
		t.Fatal(err)
	}

	first, err := store.Create()
	if err != nil {
		t.Fatal(err)
	}
	second, err := store.Create()
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Append(first, "user", "makes first the most recent"); err != nil {
		t.Fatal(err)
	}

	sessions, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].ID != first.ID {
		t.Error("expected most recently updated session first")
	}
	_ = second
}

func TestLoadMissingSession(t *testing.T) {
	store, err := NewStore(t.TempDir(), 50)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Load("no-such-session"); err == nil {
		t.Error("expected error for missing session")
	}
}

package quiz

import (
	"testing"

	"github.com/example/quizbot/pkg/models"
)

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry()

	if r.Get("u1") != nil {
		t.Fatal("expected no session for unknown user")
	}

	r.Start("u1", []models.Question{{ID: "q1"}})
	if s := r.Get("u1"); s == nil || len(s.Questions) != 1 {
		t.Fatal("expected a one-question session for u1")
	}
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}

	r.Remove("u1")
	if r.Get("u1") != nil {
		t.Fatal("expected session to be removed")
	}
	// Removing again is a no-op
	r.Remove("u1")
}

func TestRegistryStartOverwrites(t *testing.T) {
	r := NewRegistry()

	old := r.Start("u1", []models.Question{{ID: "q1"}, {ID: "q2"}})
	old.CurrentIdx = 1
	old.CorrectCount = 1

	fresh := r.Start("u1", []models.Question{{ID: "q3"}})
	got := r.Get("u1")
	if got != fresh {
		t.Fatal("expected Start to replace the existing session")
	}
	if got.CurrentIdx != 0 || got.CorrectCount != 0 {
		t.Fatalf("new session carried over state: idx=%d correct=%d", got.CurrentIdx, got.CorrectCount)
	}
	if got.Questions[0].ID != "q3" {
		t.Fatalf("new session has wrong questions: %v", got.Questions)
	}
}

package mapper

import (
	"context"
	"errors"
	"testing"
)

func TestParseTone(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"professional", "Friendly", " CASUAL ", "enthusiastic"} {
		if _, err := ParseTone(s); err != nil {
			t.Errorf("expected %q to parse, got %v", s, err)
		}
	}

	if _, err := ParseTone("sarcastic"); err == nil {
		t.Error("expected unknown tone to be rejected")
	}
	if _, err := ParseTone(""); err == nil {
		t.Error("expected empty tone to be rejected")
	}
}

func TestRewrite_UsesModelAnswer(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{textOut: "Hello {{name}}! Quick one: are you open to new roles?\n"}
	m := New(gen, nil)

	got := m.Rewrite(context.Background(), "Hi {{name}}, are you open to new roles?", ToneFriendly)
	if got != "Hello {{name}}! Quick one: are you open to new roles?" {
		t.Fatalf("unexpected rewrite: %q", got)
	}
}

func TestRewrite_FailureReturnsOriginal(t *testing.T) {
	t.Parallel()

	original := "Hi {{name}}, are you open to new roles?"

	gen := &fakeGenerator{textErr: errors.New("quota exceeded")}
	m := New(gen, nil)

	if got := m.Rewrite(context.Background(), original, ToneProfessional); got != original {
		t.Fatalf("expected original text back, got %q", got)
	}

	empty := &fakeGenerator{textOut: "   "}
	m = New(empty, nil)
	if got := m.Rewrite(context.Background(), original, ToneProfessional); got != original {
		t.Fatalf("expected original text back on empty answer, got %q", got)
	}
}

func TestRewrite_EmptyInputSkipsModel(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{}
	m := New(gen, nil)

	if got := m.Rewrite(context.Background(), "", ToneCasual); got != "" {
		t.Fatalf("expected empty passthrough, got %q", got)
	}
	if gen.textCalls != 0 {
		t.Errorf("expected no generator call for empty input, got %d", gen.textCalls)
	}
}

package text

import (
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
	"golang.org/x/text/language"
)

func TestNewSplitter(t *testing.T) {
	logger := zaptest.NewLogger(t)

	t.Run("English language", func(t *testing.T) {
		tok := NewSplitter(language.English, logger)
		if tok == nil {
			t.Fatal("NewSplitter(English) returned nil, model should be available")
		}

		in := "Call me Ishmael. Some years ago - never mind how long precisely - I went to sea. It is a way I have of driving off the spleen."
		got := tok.Split(in)
		if len(got) != 3 {
			t.Fatalf("Split() produced %d sentences, want 3: %q", len(got), got)
		}
		if joined := strings.Join(got, ""); joined != in {
			t.Errorf("Split() lost characters:\n got %q\nwant %q", joined, in)
		}
		// trailing spaces must stay with the sentence they follow
		for i, s := range got[:len(got)-1] {
			if !strings.HasSuffix(s, " ") {
				t.Errorf("sentence %d does not keep its trailing space: %q", i, s)
			}
		}
	})

	t.Run("Unsupported language", func(t *testing.T) {
		tok := NewSplitter(language.Korean, logger)
		if tok != nil {
			t.Error("NewSplitter(Korean) should return nil, no model is bundled")
		}
	})
}

func TestSplitter_NilPassthrough(t *testing.T) {
	var tok *Splitter

	in := "One. Two. Three."
	got := tok.Split(in)
	if len(got) != 1 || got[0] != in {
		t.Errorf("nil Splitter must return input unchanged, got %q", got)
	}
}

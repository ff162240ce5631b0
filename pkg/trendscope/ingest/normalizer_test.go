package ingest

import (
	"strings"
	"testing"
)

func TestNormalizeBasic(t *testing.T) {
	n := NewNormalizer([]string{"the", "a", "of"})

	got := n.Normalize("The Quick Brown Fox")
	want := "quick brown fox"
	if got != want {
		t.Errorf("Normalize = %q, want %q", got, want)
	}
}

func TestNormalizeStripsNonAlpha(t *testing.T) {
	n := NewNormalizer([]string{})

	got := n.Normalize("GPT-4 costs $20, don't panic!")
	want := "gpt costs dont panic"
	if got != want {
		t.Errorf("Normalize = %q, want %q", got, want)
	}
}

func TestNormalizeEmptyAndWhitespace(t *testing.T) {
	n := NewNormalizer(nil)

	for _, input := range []string{"", "   ", "\t\n", "123 456", "!!!"} {
		if got := n.Normalize(input); got != "" {
			t.Errorf("Normalize(%q) = %q, want empty", input, got)
		}
	}
}

func TestNormalizeDefaultStopwords(t *testing.T) {
	n := NewNormalizer(nil)

	got := n.Normalize("this is a test of the system")
	if strings.Contains(" "+got+" ", " the ") {
		t.Errorf("default stopwords should remove 'the', got %q", got)
	}
	if !strings.Contains(got, "test") {
		t.Errorf("content word 'test' should survive, got %q", got)
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	n := NewNormalizer(nil)

	text := "Transformers are eating classical NLP pipelines"
	first := n.Normalize(text)
	for i := 0; i < 5; i++ {
		if got := n.Normalize(text); got != first {
			t.Fatalf("Normalize is not deterministic: %q vs %q", got, first)
		}
	}
}

func TestTokensStopwordCaseInsensitive(t *testing.T) {
	n := NewNormalizer([]string{"AND"})

	tokens := n.Tokens("cats AND dogs and birds")
	for _, tok := range tokens {
		if tok == "and" {
			t.Error("stopword 'and' should be filtered regardless of case")
		}
	}
}

func TestAddRemoveStopword(t *testing.T) {
	n := NewNormalizer([]string{})

	n.AddStopword("Widget")
	if got := n.Normalize("widget factory"); got != "factory" {
		t.Errorf("after AddStopword got %q, want %q", got, "factory")
	}

	n.RemoveStopword("widget")
	if got := n.Normalize("widget factory"); got != "widget factory" {
		t.Errorf("after RemoveStopword got %q, want %q", got, "widget factory")
	}
}

func TestCombine(t *testing.T) {
	got := Combine("  Title here ", " body text ")
	want := "Title here. body text"
	if got != want {
		t.Errorf("Combine = %q, want %q", got, want)
	}
}

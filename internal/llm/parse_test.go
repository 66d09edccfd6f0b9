package llm

import (
	"strings"
	"testing"
)

func TestParseResponseFlashcards(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []Flashcard
	}{
		{
			name: "json array",
			raw:  `[{"question":"What is <b>load balancing</b>?","answer":"Even  distribution."}]`,
			want: []Flashcard{{Question: "What is <b>load balancing</b>?", Answer: "Even distribution."}},
		},
		{
			name: "prose around array",
			raw:  "Here you go:\n[{\"question\":\"Q1\",\"answer\":\"A1\"},{\"question\":\"\",\"answer\":\"skip\"}]\nEnjoy!",
			want: []Flashcard{{Question: "Q1", Answer: "A1"}},
		},
		{
			name: "wrapped object",
			raw:  `{"flashcards":[{"question":"Q","answer":"<i>A</i> <script>x</script>"}]}`,
			want: []Flashcard{{Question: "Q", Answer: "A"}},
		},
		{
			name: "line format",
			raw:  "Q: First?\nA: One.\nQ: Dangling?\nQ: Second?\nA: Two.",
			want: []Flashcard{{Question: "First?", Answer: "One."}, {Question: "Second?", Answer: "Two."}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := ParseResponse(ModeFlashcard, tc.raw)
			if err != nil {
				t.Fatalf("ParseResponse() error = %v", err)
			}
			if len(resp.Flashcards) != len(tc.want) {
				t.Fatalf("got %+v want %+v", resp.Flashcards, tc.want)
			}
			for i := range tc.want {
				if resp.Flashcards[i] != tc.want[i] {
					t.Fatalf("card %d = %+v, want %+v", i, resp.Flashcards[i], tc.want[i])
				}
			}
		})
	}
}

func TestParseResponseRejectsUnusablePayloads(t *testing.T) {
	if _, err := ParseResponse(ModeFlashcard, "I cannot help with that."); err == nil {
		t.Fatal("expected error for prose without cards")
	}
	if _, err := ParseResponse(ModeLanguage, `{"word":"x"}`); err == nil {
		t.Fatal("expected error for incomplete language card")
	}
	if _, err := ParseResponse(ModeExplain, "  "); err == nil {
		t.Fatal("expected error for empty response")
	}
}

func TestParseResponseExplanation(t *testing.T) {
	resp, err := ParseResponse(ModeExplain, "```json\n{\"explanation\": \"Work is shared &amp; balanced.\"}\n```")
	if err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}
	if resp.Explanation != "Work is shared & balanced." {
		t.Fatalf("unexpected explanation %q", resp.Explanation)
	}
	resp, _ = ParseResponse(ModeExplain, "Plain answer without JSON.")
	if resp.Explanation != "Plain answer without JSON." {
		t.Fatalf("plain text should pass through, got %q", resp.Explanation)
	}
}

func TestParseResponseLanguageCard(t *testing.T) {
	raw := `{"word":"refused","translation":"từ chối","question":"Hamas <b>refused</b> to join.","answer":"Declined."}`
	resp, err := ParseResponse(ModeLanguage, raw)
	if err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}
	if resp.Flashcard == nil || resp.Flashcard.Translation != "từ chối" || resp.Flashcard.Word != "refused" {
		t.Fatalf("unexpected card %+v", resp.Flashcard)
	}

	lines := "T: từ chối\nQ: Hamas <b>refused</b> to join.\nA: Declined."
	resp, err = ParseResponse(ModeLanguage, lines)
	if err != nil {
		t.Fatalf("line format error = %v", err)
	}
	if resp.Flashcard.Word != "refused" || resp.Flashcard.Answer != "Declined." {
		t.Fatalf("word should come from the emphasized question text, got %+v", resp.Flashcard)
	}
}

func TestEmphasisHelpers(t *testing.T) {
	if got := EmphasizedText("The <b>foreign minister</b> spoke"); got != "foreign minister" {
		t.Fatalf("EmphasizedText() = %q", got)
	}
	if got := StripEmphasis("a <b>b</b> c <B>d</B>"); got != "a b c d" {
		t.Fatalf("StripEmphasis() = %q", got)
	}
	if got := SanitizeCardText("<p>Hi <b>there</b></p>\n\n<a href='x'>link</a>"); !strings.EqualFold(got, "Hi <b>there</b> link") {
		t.Fatalf("SanitizeCardText() = %q", got)
	}
}

package langdetect

import "testing"

func TestDetect(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{text: "The quick brown fox jumps over the lazy dog while the farmer sleeps.", want: "English"},
		{text: "Le renard brun saute par-dessus le chien paresseux pendant que le fermier dort.", want: "French"},
		{text: "Der schnelle braune Fuchs springt über den faulen Hund, während der Bauer schläft.", want: "German"},
	}
	for _, tc := range cases {
		if got := Detect(tc.text); got != tc.want {
			t.Fatalf("Detect(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestDetectIgnoresShortText(t *testing.T) {
	if got := Detect("<b>ok</b>"); got != "" {
		t.Fatalf("expected no language for short text, got %q", got)
	}
}

package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelsGateOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(WithOutput(&buf), WithFlags(0))

	l.Info("opened %s", "a.pdf")
	l.Debug("hidden")
	l.Trace("hidden")
	l.Warn("slow render")
	l.Error("boom")

	out := buf.String()
	for _, want := range []string{"INFO: opened a.pdf", "WARN: slow render", "ERROR: boom"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got %q", want, out)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug/trace leaked at info level: %q", out)
	}

	buf.Reset()
	l.SetLevel(LevelTrace)
	l.Debug("dbg")
	l.Trace("trc")
	if !strings.Contains(buf.String(), "DEBUG: dbg") || !strings.Contains(buf.String(), "TRACE: trc") {
		t.Fatalf("expected debug and trace output, got %q", buf.String())
	}
}

func TestPrefixOption(t *testing.T) {
	var buf bytes.Buffer
	l := New(WithOutput(&buf), WithFlags(0), WithPrefix("[gateway] "))
	l.Info("listening")
	if got := buf.String(); got != "[gateway] INFO: listening\n" {
		t.Fatalf("unexpected line %q", got)
	}
}

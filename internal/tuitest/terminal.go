package tuitest

import (
	"bytes"
	"io"
)

// terminalQueries are the capability probes bubbletea and lipgloss send on
// start, with the replies of a dark xterm.
var terminalQueries = []struct {
	query string
	reply string
}{
	{query: "\x1b[6n", reply: "\x1b[1;1R"},
	{query: "\x1b]10;?\x07", reply: "\x1b]10;rgb:cccc/cccc/cccc\x07"},
	{query: "\x1b]10;?\x1b\\", reply: "\x1b]10;rgb:cccc/cccc/cccc\x1b\\"},
	{query: "\x1b]11;?\x07", reply: "\x1b]11;rgb:0000/0000/0000\x07"},
	{query: "\x1b]11;?\x1b\\", reply: "\x1b]11;rgb:0000/0000/0000\x1b\\"},
}

type terminalResponder struct {
	w   io.Writer
	buf []byte
}

func newTerminalResponder(w io.Writer) *terminalResponder {
	return &terminalResponder{w: w, buf: make([]byte, 0, 128)}
}

// Process answers every query found in chunk. A short tail is kept so a
// query split across reads is still seen.
func (tr *terminalResponder) Process(chunk []byte) {
	tr.buf = append(tr.buf, chunk...)
	for tr.answerNext() {
	}
	if len(tr.buf) > 256 {
		tr.buf = tr.buf[len(tr.buf)-64:]
	}
}

func (tr *terminalResponder) answerNext() bool {
	for _, q := range terminalQueries {
		idx := bytes.Index(tr.buf, []byte(q.query))
		if idx < 0 {
			continue
		}
		tr.buf = tr.buf[idx+len(q.query):]
		_, _ = tr.w.Write([]byte(q.reply))
		return true
	}
	return false
}

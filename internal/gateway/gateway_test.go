package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/csheth/studyreader/internal/config"
	"github.com/csheth/studyreader/internal/document"
	"github.com/csheth/studyreader/internal/llm"
)

type stubClient struct {
	last llm.Request
	resp llm.Response
	err  error
}

func (c *stubClient) Name() string { return "stub" }

func (c *stubClient) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	c.last = req
	return c.resp, c.err
}

func newTestServer(t *testing.T, client llm.Client) (*Server, *httptest.Server) {
	t.Helper()
	cfg := config.Default()
	cfg.Gateway.UploadDir = filepath.Join(t.TempDir(), "uploads")
	cfg.Gateway.MaxUploadBytes = 1 << 10
	s, err := New(cfg, client, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)
	return s, ts
}

func TestGenerateForwardsKeyAndMode(t *testing.T) {
	client := &stubClient{resp: llm.Response{Flashcards: []llm.Flashcard{{Question: "Q", Answer: "A"}}}}
	_, ts := newTestServer(t, client)

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/generate_flashcard", strings.NewReader(`{"prompt":"make cards","mode":"flashcard"}`))
	req.Header.Set("X-API-Key", "secret")
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	var body struct {
		Flashcards []llm.Flashcard `json:"flashcards"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Flashcards) != 1 || body.Flashcards[0].Question != "Q" {
		t.Fatalf("unexpected body %+v", body)
	}
	if client.last.APIKey != "secret" || client.last.Model != config.DefaultModel || client.last.Mode != llm.ModeFlashcard {
		t.Fatalf("unexpected upstream request %+v", client.last)
	}
	if resp.Header.Get("X-Request-ID") != client.last.ID {
		t.Fatal("response should carry the request id")
	}
}

func TestGenerateErrors(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		err    error
		status int
		kind   string
	}{
		{name: "bad json", body: `{`, status: http.StatusBadRequest},
		{name: "empty prompt", body: `{"prompt":" "}`, status: http.StatusBadRequest},
		{name: "unknown mode", body: `{"prompt":"p","mode":"poem"}`, status: http.StatusBadRequest},
		{name: "upstream failure", body: `{"prompt":"p"}`, err: &llm.APIError{Kind: llm.KindStatus, Provider: "anthropic", Status: 529, Err: errors.New("overloaded")}, status: http.StatusInternalServerError},
		{name: "credential", body: `{"prompt":"p"}`, err: &llm.APIError{Kind: llm.KindCredential, Provider: "anthropic", Err: errors.New("no key")}, status: http.StatusUnauthorized, kind: "credential"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, ts := newTestServer(t, &stubClient{err: tc.err})
			resp, err := ts.Client().Post(ts.URL+"/generate_flashcard", "application/json", strings.NewReader(tc.body))
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tc.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.status)
			}
			var body errorBody
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error == "" || body.Kind != tc.kind {
				t.Fatalf("unexpected error body %+v", body)
			}
		})
	}
}

func upload(t *testing.T, ts *httptest.Server, name string, data []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(data)
	mw.Close()
	resp, err := ts.Client().Post(ts.URL+"/upload_file", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestUploadAndOpen(t *testing.T) {
	s, ts := newTestServer(t, &stubClient{})

	resp := upload(t, ts, "../My Notes.txt", []byte("Chapter one.\n"))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	var body uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Filename != "My_Notes.txt" || body.Kind != document.KindText {
		t.Fatalf("unexpected upload response %+v", body)
	}
	if _, err := os.Stat(filepath.Join(s.uploadDir, "My_Notes.txt")); err != nil {
		t.Fatalf("upload not stored: %v", err)
	}

	open, err := ts.Client().Get(ts.URL + "/open/My_Notes.txt")
	if err != nil {
		t.Fatal(err)
	}
	defer open.Body.Close()
	if open.StatusCode != http.StatusOK || !strings.HasPrefix(open.Header.Get("Content-Type"), "text/plain") {
		t.Fatalf("unexpected open response %d %s", open.StatusCode, open.Header.Get("Content-Type"))
	}

	missing, err := ts.Client().Get(ts.URL + "/open/nope.pdf")
	if err != nil {
		t.Fatal(err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", missing.StatusCode)
	}
}

func TestUploadRejectsUnsupportedAndOversized(t *testing.T) {
	_, ts := newTestServer(t, &stubClient{})

	if resp := upload(t, ts, "photo.png", []byte("\x89PNG\r\n\x1a\n")); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for png, got %d", resp.StatusCode)
	}
	if resp := upload(t, ts, "big.txt", bytes.Repeat([]byte("a"), 4<<10)); resp.StatusCode < 400 {
		t.Fatalf("expected oversized upload to fail, got %d", resp.StatusCode)
	}
}

func TestUploadChecksExtensionBeforeContent(t *testing.T) {
	s, ts := newTestServer(t, &stubClient{})

	// The body is plain text and would sniff as such.
	resp := upload(t, ts, "notes.docx", []byte("Chapter one.\n"))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != document.ErrInvalidFileType.Error() {
		t.Fatalf("unexpected error %q", body.Error)
	}
	if _, err := os.Stat(filepath.Join(s.uploadDir, "notes.docx")); !os.IsNotExist(err) {
		t.Fatalf("rejected upload was stored: %v", err)
	}
}

func TestRecentListsNewestFive(t *testing.T) {
	s, ts := newTestServer(t, &stubClient{})
	base := time.Now().Add(-time.Hour)
	for i, name := range []string{"a.txt", "b.txt", "c.txt", "d.txt", "e.txt", "f.txt"} {
		p := filepath.Join(s.uploadDir, name)
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		at := base.Add(time.Duration(i) * time.Minute)
		if err := os.Chtimes(p, at, at); err != nil {
			t.Fatal(err)
		}
	}

	resp, err := ts.Client().Get(ts.URL + "/recent")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body struct {
		Files []string `json:"files"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	want := []string{"f.txt", "e.txt", "d.txt", "c.txt", "b.txt"}
	if strings.Join(body.Files, ",") != strings.Join(want, ",") {
		t.Fatalf("recent = %v, want %v", body.Files, want)
	}
}

func TestSecureFilename(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{in: "paper.pdf", want: "paper.pdf"},
		{in: "../../etc/passwd", want: "passwd"},
		{in: `C:\Users\me\book.epub`, want: "book.epub"},
		{in: "my file (1).txt", want: "my_file_1_.txt"},
		{in: "...", want: "upload"},
	}
	for _, tc := range cases {
		if got := SecureFilename(tc.in); got != tc.want {
			t.Fatalf("SecureFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

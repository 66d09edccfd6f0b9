// Package gateway serves the completion endpoint and the document upload
// boundary over HTTP, so clients never hold provider credentials for more
// than a single request.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/csheth/studyreader/internal/config"
	"github.com/csheth/studyreader/internal/document"
	"github.com/csheth/studyreader/internal/llm"
	"github.com/csheth/studyreader/internal/storage"
	"github.com/csheth/studyreader/pkg/logger"
)

const (
	apiKeyHeader  = "X-API-Key"
	shutdownGrace = 5 * time.Second
)

var unsafeNameRe = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

type Server struct {
	client    llm.Client
	logger    *logger.Logger
	model     string
	addr      string
	uploadDir string
	maxBytes  int64
}

// New prepares a gateway backed by client. The upload directory is created
// if missing.
func New(cfg *config.Config, client llm.Client, log *logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.Discard()
	}
	if err := os.MkdirAll(cfg.Gateway.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Server{
		client:    client,
		logger:    log,
		model:     cfg.Model,
		addr:      cfg.Gateway.Addr,
		uploadDir: cfg.Gateway.UploadDir,
		maxBytes:  cfg.Gateway.MaxUploadBytes,
	}, nil
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Post("/generate_flashcard", s.handleGenerate)
	r.Post("/upload_file", s.handleUpload)
	r.Get("/open/{filename}", s.handleOpen)
	r.Get("/recent", s.handleRecent)
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Gateway listening on %s", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		s.logger.Info("Gateway shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("[http] %s %s %d (duration=%s, id=%s)", r.Method, r.URL.Path, ww.Status(), time.Since(started).Round(time.Millisecond), middleware.GetReqID(r.Context()))
	})
}

type generateRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
	Mode   string `json:"mode"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var body generateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	if strings.TrimSpace(body.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "prompt is required", "")
		return
	}
	mode := llm.ModeFlashcard
	if body.Mode != "" {
		m, ok := llm.ParseMode(body.Mode)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown mode %q", body.Mode), "")
			return
		}
		mode = m
	}
	model := body.Model
	if model == "" {
		model = s.model
	}

	req := llm.NewRequest(mode, model, body.Prompt, r.Header.Get(apiKeyHeader))
	resp, err := s.client.Generate(r.Context(), req)
	if err != nil {
		s.logger.Warn("Request %s (%s, %s) failed: %v", req.ID, mode, model, err)
		var apiErr *llm.APIError
		if errors.As(err, &apiErr) && apiErr.Kind == llm.KindCredential {
			writeError(w, http.StatusUnauthorized, err.Error(), string(llm.KindCredential))
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}
	w.Header().Set("X-Request-ID", req.ID)
	writeJSON(w, http.StatusOK, resp)
}

type uploadResponse struct {
	Filename string        `json:"filename"`
	Kind     document.Kind `json:"kind"`
	Size     int           `json:"size"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes)
	if err := r.ParseMultipartForm(s.maxBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large", "")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid upload", "")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file part", "")
		return
	}
	defer file.Close()
	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "no selected file", "")
		return
	}
	name := SecureFilename(header.Filename)
	if !document.AllowedName(name) {
		writeError(w, http.StatusBadRequest, document.ErrInvalidFileType.Error(), "")
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload", "")
		return
	}

	kind, err := document.Classify(name, data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	if kind == document.KindPDF {
		if err := document.ValidatePDF(data); err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), "")
			return
		}
	}
	if err := os.WriteFile(filepath.Join(s.uploadDir, name), data, 0o644); err != nil {
		s.logger.Error("Failed to save upload %s: %v", name, err)
		writeError(w, http.StatusInternalServerError, "failed to save file", "")
		return
	}
	s.logger.Info("Stored upload %s (%s, %d bytes)", name, kind, len(data))
	writeJSON(w, http.StatusCreated, uploadResponse{Filename: name, Kind: kind, Size: len(data)})
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	name := SecureFilename(chi.URLParam(r, "filename"))
	f, err := os.Open(filepath.Join(s.uploadDir, name))
	if err != nil {
		writeError(w, http.StatusNotFound, "file not found", "")
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		writeError(w, http.StatusNotFound, "file not found", "")
		return
	}
	w.Header().Set("Content-Type", document.ContentType(name))
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	files, err := s.Recent()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list uploads", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"files": files})
}

// Recent lists the newest uploads first, at most storage.MaxRecentFiles.
func (s *Server) Recent() ([]string, error) {
	entries, err := os.ReadDir(s.uploadDir)
	if err != nil {
		return nil, err
	}
	type upload struct {
		name    string
		modTime time.Time
	}
	var uploads []upload
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		uploads = append(uploads, upload{name: e.Name(), modTime: info.ModTime()})
	}
	sort.Slice(uploads, func(i, j int) bool {
		if uploads[i].modTime.Equal(uploads[j].modTime) {
			return uploads[i].name < uploads[j].name
		}
		return uploads[i].modTime.After(uploads[j].modTime)
	})
	files := make([]string, 0, storage.MaxRecentFiles)
	for i := 0; i < len(uploads) && i < storage.MaxRecentFiles; i++ {
		files = append(files, uploads[i].name)
	}
	return files, nil
}

// SecureFilename reduces name to a plain file name safe to join onto the
// upload directory.
func SecureFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeNameRe.ReplaceAllString(name, "_")
	name = strings.TrimLeft(name, "._")
	if name == "" {
		return "upload"
	}
	return name
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg, kind string) {
	writeJSON(w, status, errorBody{Error: msg, Kind: kind})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Package mockserver is an in-memory stand-in for the document
// question-answering service. It implements the /upload and /chat contract
// closely enough to develop and test the client without the real backend.
package mockserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const maxUploadSize = 32 << 20

// Detail messages returned in failure bodies.
const (
	DetailUnsupportedType = "unsupported file type, please upload a PDF, DOCX or Markdown file"
	DetailUnknownSession  = "session does not exist, please upload a document first"
	DetailMissingFile     = "missing form field: file"
	DetailInvalidRequest  = "request body must be JSON with session_id and query"
	DetailEmptyDocument   = "no text could be extracted from the document"
)

// Server holds uploaded documents keyed by session id.
type Server struct {
	mu      sync.RWMutex
	docs    map[string]*Document
	router  *mux.Router
	logger  *log.Logger
	newID   func() string
	latency time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Server) {
		s.newID = fn
	}
}

// WithLatency delays every response, to exercise loading states.
func WithLatency(d time.Duration) Option {
	return func(s *Server) {
		s.latency = d
	}
}

// New creates a server with its routes registered.
func New(opts ...Option) *Server {
	s := &Server{
		docs:   make(map[string]*Document),
		logger: log.Default(),
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithPrefix("mock")

	r := mux.NewRouter()
	r.Use(s.loggingMiddleware)
	r.HandleFunc("/upload", s.handleUpload).Methods(http.MethodPost)
	r.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Sessions returns the number of stored documents.
func (s *Server) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	s.delay()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDetail(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeDetail(w, http.StatusBadRequest, DetailMissingFile)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, DetailMissingFile)
		return
	}
	defer file.Close()

	kind, ok := kindOf(header.Filename)
	if !ok {
		writeDetail(w, http.StatusBadRequest, DetailUnsupportedType)
		return
	}

	raw, err := io.ReadAll(file)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, fmt.Sprintf("error while processing file: %v", err))
		return
	}

	doc, err := NewDocument(header.Filename, kind, raw)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, fmt.Sprintf("error while processing file: %v", err))
		return
	}
	if len(doc.Passages) == 0 {
		writeDetail(w, http.StatusUnprocessableEntity, DetailEmptyDocument)
		return
	}

	id := s.newID()
	s.mu.Lock()
	s.docs[id] = doc
	s.mu.Unlock()

	s.logger.Info("document indexed", "session_id", id, "file", header.Filename, "passages", len(doc.Passages))
	writeJSON(w, http.StatusOK, map[string]string{
		"session_id": id,
		"message":    "file uploaded and processed",
	})
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	s.delay()

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" || strings.TrimSpace(req.Query) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, DetailInvalidRequest)
		return
	}

	s.mu.RLock()
	doc, ok := s.docs[req.SessionID]
	s.mu.RUnlock()
	if !ok {
		writeDetail(w, http.StatusNotFound, DetailUnknownSession)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"answer": doc.Answer(req.Query)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.Sessions()})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("handled", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(start))
	})
}

func (s *Server) delay() {
	if s.latency > 0 {
		time.Sleep(s.latency)
	}
}

func kindOf(filename string) (Kind, bool) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "pdf":
		return KindPDF, true
	case "docx":
		return KindDOCX, true
	case "md", "markdown":
		return KindMarkdown, true
	default:
		return "", false
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/entrepeneur4lyf/docchat/internal/api"
	"github.com/gabriel-vasile/mimetype"
)

// User-facing messages.
const (
	MsgNoFile      = "please select a file first"
	MsgRetry       = "upload failed, please retry"
	MsgUploadError = "error while uploading the file"
)

var (
	// ErrNoFile is returned by Submit when no candidate is held.
	ErrNoFile = errors.New("no file selected")
	// ErrUnsupportedType is returned by Select for files outside the accepted types.
	ErrUnsupportedType = errors.New("unsupported file type")
)

// accepted maps each accepted MIME type to its extensions.
var accepted = map[string][]string{
	"application/pdf": {".pdf"},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {".docx"},
	"text/markdown": {".md", ".markdown"},
}

// AcceptedExtensions lists the extensions offered by file pickers.
func AcceptedExtensions() []string {
	return []string{".pdf", ".docx", ".md", ".markdown"}
}

// Accepts reports whether a file with this name and MIME type may become a
// candidate. Either the type or the extension has to match.
func Accepts(name, mimeType string) bool {
	if _, ok := accepted[baseMIME(mimeType)]; ok {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, exts := range accepted {
		for _, e := range exts {
			if ext == e {
				return true
			}
		}
	}
	return false
}

// File is a document chosen by the user.
type File struct {
	Name     string
	Size     int64
	MimeType string
	Open     func() (io.ReadCloser, error)
}

// SizeKB formats the size the way the picker shows it.
func (f File) SizeKB() string {
	return fmt.Sprintf("%.2f KB", float64(f.Size)/1024)
}

// Uploader sends a document to the service.
type Uploader interface {
	Upload(ctx context.Context, filename, mimeType string, content io.Reader) (*api.UploadResponse, error)
}

// Observer receives the flow's status transitions.
type Observer interface {
	UploadLoading(loading bool)
	UploadSucceeded(ctx context.Context, sessionID string)
	UploadFailed(message string)
}

// Flow holds at most one candidate file and submits it.
type Flow struct {
	mu        sync.Mutex
	client    Uploader
	observer  Observer
	candidate *File
	logger    *log.Logger
}

// NewFlow creates an upload flow reporting to observer.
func NewFlow(client Uploader, observer Observer, logger *log.Logger) *Flow {
	if logger == nil {
		logger = log.Default()
	}
	return &Flow{
		client:   client,
		observer: observer,
		logger:   logger.WithPrefix("upload"),
	}
}

// Select makes f the candidate, replacing any previous one. Rejected files
// leave the current candidate untouched and report nothing to the observer.
func (fl *Flow) Select(f File) error {
	if !Accepts(f.Name, f.MimeType) {
		fl.logger.Debug("file rejected", "name", f.Name, "mime", f.MimeType)
		return fmt.Errorf("%w: %s", ErrUnsupportedType, f.Name)
	}
	if f.Open == nil {
		return fmt.Errorf("file %s has no content", f.Name)
	}

	fl.mu.Lock()
	defer fl.mu.Unlock()
	fl.candidate = &f
	return nil
}

// SelectPath selects a file from disk, sniffing its MIME type.
func (fl *Flow) SelectPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrUnsupportedType, path)
	}

	mimeType := ""
	if mt, err := mimetype.DetectFile(path); err == nil {
		mimeType = mt.String()
	}
	if baseMIME(mimeType) == "text/plain" && isMarkdown(path) {
		mimeType = "text/markdown"
	}

	return fl.Select(File{
		Name:     filepath.Base(path),
		Size:     info.Size(),
		MimeType: baseMIME(mimeType),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	})
}

// Clear discards the candidate.
func (fl *Flow) Clear() {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	fl.candidate = nil
}

// Candidate returns the pending file, if any.
func (fl *Flow) Candidate() (File, bool) {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if fl.candidate == nil {
		return File{}, false
	}
	return *fl.candidate, true
}

// Submit uploads the candidate and returns the issued session id.
//
// Without a candidate it fails immediately with ErrNoFile and makes no
// request. Otherwise the observer sees loading=true, exactly one terminal
// outcome, then loading=false, whatever happens in between.
func (fl *Flow) Submit(ctx context.Context) (sessionID string, err error) {
	cand, ok := fl.Candidate()
	if !ok {
		fl.observer.UploadFailed(MsgNoFile)
		return "", ErrNoFile
	}

	fl.observer.UploadLoading(true)
	defer fl.observer.UploadLoading(false)

	reported := false
	defer func() {
		if r := recover(); r != nil {
			fl.logger.Error("upload panicked", "file", cand.Name, "panic", r)
			if !reported {
				fl.observer.UploadFailed(MsgUploadError)
			}
			sessionID, err = "", fmt.Errorf("upload %s: panic: %v", cand.Name, r)
		}
	}()

	resp, err := fl.send(ctx, cand)
	if err != nil && !errors.Is(err, api.ErrMalformedResponse) {
		reported = true
		fl.observer.UploadFailed(api.DetailOr(err, MsgUploadError))
		return "", fmt.Errorf("upload %s: %w", cand.Name, err)
	}
	if err != nil || resp == nil || strings.TrimSpace(resp.SessionID) == "" {
		reported = true
		fl.logger.Warn("upload response has no session id", "file", cand.Name)
		fl.observer.UploadFailed(MsgRetry)
		return "", fmt.Errorf("upload %s: %w", cand.Name, api.ErrMalformedResponse)
	}

	reported = true
	fl.observer.UploadSucceeded(ctx, resp.SessionID)
	fl.Clear()
	fl.logger.Info("document uploaded", "file", cand.Name, "session_id", resp.SessionID)
	return resp.SessionID, nil
}

func (fl *Flow) send(ctx context.Context, f File) (*api.UploadResponse, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer rc.Close()
	return fl.client.Upload(ctx, f.Name, f.MimeType, rc)
}

func baseMIME(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}

func isMarkdown(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}

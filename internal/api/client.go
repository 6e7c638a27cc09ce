package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const (
	uploadPath = "/upload"
	chatPath   = "/chat"

	// maxErrorBody bounds how much of a failure response is read for a detail.
	maxErrorBody = 64 << 10
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// ErrMalformedResponse is returned when a 2xx response body cannot be decoded.
var ErrMalformedResponse = errors.New("malformed response body")

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Detail     string // empty when the body carried no string detail
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("server returned %d", e.StatusCode)
}

// DetailOr returns the server-provided detail carried by err, or fallback
// when there is none.
func DetailOr(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}

// UploadResponse is the body of a successful upload.
type UploadResponse struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message,omitempty"`
}

// ChatRequest is the body of a question.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
}

// ChatResponse is the body of a successful answer.
type ChatResponse struct {
	Answer string `json:"answer"`
}

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// Options configures a Client.
type Options struct {
	BaseURL       string
	UploadTimeout time.Duration // zero means no timeout
	ChatTimeout   time.Duration
	HTTPClient    *http.Client
	Logger        *log.Logger
}

// Client talks to the document question-answering service.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	uploadTimeout time.Duration
	chatTimeout   time.Duration
	logger        *log.Logger
}

// NewClient creates a client for the service at opts.BaseURL.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Client{
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		httpClient:    httpClient,
		uploadTimeout: opts.UploadTimeout,
		chatTimeout:   opts.ChatTimeout,
		logger:        logger.WithPrefix("api"),
	}
}

// BaseURL returns the service address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Upload sends one document as the multipart form field "file".
func (c *Client) Upload(ctx context.Context, filename, mimeType string, content io.Reader) (*UploadResponse, error) {
	ctx, cancel := withTimeout(ctx, c.uploadTimeout)
	defer cancel()

	pr, pw := io.Pipe()
	defer pr.Close()
	writer := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeFilePart(writer, filename, mimeType, content))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+uploadPath, pr)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	var out UploadResponse
	if err := c.do(req, "upload", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Chat asks one question against the document bound to sessionID.
func (c *Client) Chat(ctx context.Context, sessionID, query string) (*ChatResponse, error) {
	ctx, cancel := withTimeout(ctx, c.chatTimeout)
	defer cancel()

	body, err := json.Marshal(ChatRequest{SessionID: sessionID, Query: query})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var out ChatResponse
	if err := c.do(req, "chat", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(req *http.Request, op string, out any) error {
	start := time.Now()
	c.logger.Debug("request started", "op", op, "url", req.URL.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "op", op, "err", err, "elapsed", time.Since(start))
		return fmt.Errorf("%s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Detail: readDetail(resp.Body)}
		c.logger.Warn("request rejected", "op", op, "status", resp.StatusCode, "detail", apiErr.Detail, "elapsed", time.Since(start))
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.Warn("undecodable response", "op", op, "status", resp.StatusCode, "err", err)
		return fmt.Errorf("%s: %w: %v", op, ErrMalformedResponse, err)
	}

	c.logger.Debug("request finished", "op", op, "status", resp.StatusCode, "elapsed", time.Since(start))
	return nil
}

// readDetail extracts a string "detail" field from a failure body. Details of
// any other JSON type are ignored.
func readDetail(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err != nil || len(eb.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(eb.Detail, &detail); err != nil {
		return ""
	}
	return detail
}

func writeFilePart(writer *multipart.Writer, filename, mimeType string, content io.Reader) error {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(filename)))
	header.Set("Content-Type", mimeType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("failed to stream file: %w", err)
	}
	return writer.Close()
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

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
	"testing"

	"github.com/charmbracelet/log"
	"github.com/entrepeneur4lyf/docchat/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) UploadLoading(loading bool) {
	if loading {
		r.add("loading:true")
	} else {
		r.add("loading:false")
	}
}

func (r *recorder) UploadSucceeded(ctx context.Context, sessionID string) {
	r.add("success:" + sessionID)
}

func (r *recorder) UploadFailed(message string) {
	r.add("error:" + message)
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type fakeUploader struct {
	calls int
	resp  *api.UploadResponse
	err   error
	panic bool
	got   string
}

func (f *fakeUploader) Upload(ctx context.Context, filename, mimeType string, content io.Reader) (*api.UploadResponse, error) {
	f.calls++
	body, _ := io.ReadAll(content)
	f.got = string(body)
	if f.panic {
		panic("transport exploded")
	}
	return f.resp, f.err
}

func memFile(name, mimeType, content string) File {
	return File{
		Name:     name,
		Size:     int64(len(content)),
		MimeType: mimeType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

func newFlow(client Uploader) (*Flow, *recorder) {
	rec := &recorder{}
	return NewFlow(client, rec, log.New(io.Discard)), rec
}

func TestAccepts(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		want     bool
	}{
		{"report.pdf", "application/pdf", true},
		{"letter.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", true},
		{"notes.md", "text/markdown", true},
		{"notes.markdown", "", true},
		{"README.MD", "text/plain", true},
		{"scan", "application/pdf; charset=binary", true},
		{"photo.png", "image/png", false},
		{"legacy.doc", "application/msword", false},
		{"data.txt", "text/plain", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Accepts(tt.name, tt.mimeType))
		})
	}
}

func TestSelect(t *testing.T) {
	flow, rec := newFlow(&fakeUploader{})

	require.NoError(t, flow.Select(memFile("report.pdf", "application/pdf", "%PDF")))
	cand, ok := flow.Candidate()
	require.True(t, ok)
	assert.Equal(t, "report.pdf", cand.Name)

	t.Run("png never becomes a candidate", func(t *testing.T) {
		err := flow.Select(memFile("photo.png", "image/png", "png"))
		assert.ErrorIs(t, err, ErrUnsupportedType)

		cand, ok := flow.Candidate()
		require.True(t, ok)
		assert.Equal(t, "report.pdf", cand.Name, "rejection keeps the previous candidate")
		assert.Empty(t, rec.Events(), "rejection is silent")
	})

	t.Run("single slot replaces", func(t *testing.T) {
		require.NoError(t, flow.Select(memFile("notes.md", "text/markdown", "# notes")))
		cand, _ := flow.Candidate()
		assert.Equal(t, "notes.md", cand.Name)
	})

	t.Run("clear", func(t *testing.T) {
		flow.Clear()
		_, ok := flow.Candidate()
		assert.False(t, ok)
	})
}

func TestSelectPath(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, content []byte) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, content, 0644))
		return path
	}

	flow, _ := newFlow(&fakeUploader{})

	require.NoError(t, flow.SelectPath(write("guide.md", []byte("# Guide\n\nHello"))))
	cand, _ := flow.Candidate()
	assert.Equal(t, "text/markdown", cand.MimeType)
	assert.Equal(t, int64(14), cand.Size)

	require.NoError(t, flow.SelectPath(write("paper.pdf", []byte("%PDF-1.4\n%âãÏÓ\n1 0 obj\n"))))
	cand, _ = flow.Candidate()
	assert.Equal(t, "application/pdf", cand.MimeType)

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	err := flow.SelectPath(write("photo.png", png))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	err = flow.SelectPath(dir)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	err = flow.SelectPath(filepath.Join(dir, "missing.pdf"))
	assert.Error(t, err)
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		client := &fakeUploader{resp: &api.UploadResponse{SessionID: "abc123"}}
		flow, rec := newFlow(client)
		require.NoError(t, flow.Select(memFile("report.pdf", "application/pdf", "%PDF-1.7")))

		id, err := flow.Submit(ctx)
		require.NoError(t, err)
		assert.Equal(t, "abc123", id)
		assert.Equal(t, "%PDF-1.7", client.got)
		assert.Equal(t, []string{"loading:true", "success:abc123", "loading:false"}, rec.Events())

		_, ok := flow.Candidate()
		assert.False(t, ok, "candidate cleared after success")
	})

	t.Run("no candidate makes no request", func(t *testing.T) {
		client := &fakeUploader{}
		flow, rec := newFlow(client)

		_, err := flow.Submit(ctx)
		assert.ErrorIs(t, err, ErrNoFile)
		assert.Zero(t, client.calls)
		assert.Equal(t, []string{"error:" + MsgNoFile}, rec.Events())
	})

	tests := []struct {
		name    string
		client  *fakeUploader
		message string
		wantErr error
	}{
		{
			name:    "missing session id",
			client:  &fakeUploader{resp: &api.UploadResponse{Message: "ok"}},
			message: MsgRetry,
			wantErr: api.ErrMalformedResponse,
		},
		{
			name:    "blank session id",
			client:  &fakeUploader{resp: &api.UploadResponse{SessionID: "   "}},
			message: MsgRetry,
			wantErr: api.ErrMalformedResponse,
		},
		{
			name:    "undecodable body",
			client:  &fakeUploader{err: fmt.Errorf("upload: %w: invalid character", api.ErrMalformedResponse)},
			message: MsgRetry,
			wantErr: api.ErrMalformedResponse,
		},
		{
			name:    "detail from server",
			client:  &fakeUploader{err: &api.APIError{StatusCode: 413, Detail: "file too large"}},
			message: "file too large",
		},
		{
			name:    "server error without detail",
			client:  &fakeUploader{err: &api.APIError{StatusCode: 500}},
			message: MsgUploadError,
		},
		{
			name:    "transport error",
			client:  &fakeUploader{err: errors.New("connection refused")},
			message: MsgUploadError,
		},
		{
			name:    "panicking transport",
			client:  &fakeUploader{panic: true},
			message: MsgUploadError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flow, rec := newFlow(tt.client)
			require.NoError(t, flow.Select(memFile("report.pdf", "application/pdf", "%PDF")))

			id, err := flow.Submit(ctx)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Empty(t, id)
			assert.Equal(t, 1, tt.client.calls, "never retried")
			assert.Equal(t, []string{"loading:true", "error:" + tt.message, "loading:false"}, rec.Events())

			_, ok := flow.Candidate()
			assert.True(t, ok, "candidate kept after failure")
		})
	}

	t.Run("unreadable candidate", func(t *testing.T) {
		client := &fakeUploader{}
		flow, rec := newFlow(client)
		require.NoError(t, flow.Select(File{
			Name:     "gone.pdf",
			MimeType: "application/pdf",
			Open:     func() (io.ReadCloser, error) { return nil, os.ErrNotExist },
		}))

		_, err := flow.Submit(ctx)
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.Zero(t, client.calls)
		assert.Equal(t, []string{"loading:true", "error:" + MsgUploadError, "loading:false"}, rec.Events())
	})
}

func TestSizeKB(t *testing.T) {
	assert.Equal(t, "1.50 KB", File{Size: 1536}.SizeKB())
	assert.Equal(t, "0.00 KB", File{}.SizeKB())
}

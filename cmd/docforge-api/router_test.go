package main

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/cmd/docforge-api/handlers"
	"github.com/docforge/docforge/internal/config"
	"github.com/docforge/docforge/internal/convert"
	"github.com/docforge/docforge/internal/history"
	"github.com/docforge/docforge/internal/observability"
	"github.com/docforge/docforge/internal/scratch"
)

// newTestRouter wires a fully in-process stack: no LibreOffice, the
// docx converter runs its embedded engine and markdown renders
// directly.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Scratch.Dir = filepath.Join(t.TempDir(), "scratch")
	cfg.Limits.MaxUploadBytes = 1 << 20
	cfg.Limits.ConvertTimeout = 30 * time.Second

	logger := observability.Nop()

	store, err := scratch.NewStore(scratch.Config{
		Dir:       cfg.Scratch.Dir,
		Retention: cfg.Scratch.Retention,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	registry := convert.NewRegistry(
		convert.NewDocxConverter(config.DocxEngineEmbedded, nil),
		convert.NewPptxConverter(),
		convert.NewTextConverter(),
		convert.NewMarkdownConverter(config.MDEngineDirect, nil),
	)
	service := convert.NewService(convert.Config{
		MaxUploadBytes: cfg.Limits.MaxUploadBytes,
		Timeout:        cfg.Limits.ConvertTimeout,
	}, registry, store, history.NewLog(10), logger)

	return NewRouter(logger, cfg, service)
}

func multipartUpload(t *testing.T, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestConvertEndpointReturnsPDF(t *testing.T) {
	router := newTestRouter(t)

	body, contentType := multipartUpload(t, "notes.txt", []byte("hello conversion"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/convert", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="notes.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.NotEmpty(t, rec.Header().Get("X-Conversion-Id"))
	assert.Equal(t, "1", rec.Header().Get("X-Page-Count"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
}

func TestConvertEndpointMarkdown(t *testing.T) {
	router := newTestRouter(t)

	body, contentType := multipartUpload(t, "README.md", []byte("# Title\n\nSome *markdown* text.\n"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/convert", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
}

func TestConvertEndpointUnsupportedType(t *testing.T) {
	router := newTestRouter(t)

	body, contentType := multipartUpload(t, "photo.png", []byte("\x89PNG\r\n"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/convert", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	var resp handlers.ErrorResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unsupported", resp.Code)
	assert.Contains(t, resp.Error, ".png")
}

func TestConvertEndpointMissingFileField(t *testing.T) {
	router := newTestRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "no file here"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/convert", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp handlers.ErrorResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation", resp.Code)
}

func TestConvertEndpointOversizedUpload(t *testing.T) {
	router := newTestRouter(t)

	body, contentType := multipartUpload(t, "big.txt", bytes.Repeat([]byte("x"), 2<<20))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/convert", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp handlers.ErrorResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation", resp.Code)
}

func TestFormatsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/formats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.FormatsResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Formats, 4)

	byExt := map[string]handlers.FormatDTO{}
	for _, f := range resp.Formats {
		byExt[f.Extension] = f
	}
	assert.True(t, byExt[".txt"].Ready)
	assert.True(t, byExt[".md"].Ready)
	assert.Equal(t, "Word Document", byExt[".docx"].Name)
}

func TestHistoryEndpoint(t *testing.T) {
	router := newTestRouter(t)

	body, contentType := multipartUpload(t, "notes.txt", []byte("hello"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/convert", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.HistoryResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, "notes.txt", resp.Entries[0].Input)
	assert.Equal(t, "notes.pdf", resp.Entries[0].Output)
	assert.True(t, resp.Entries[0].Success)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.HealthResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	// The test registry uses only self-contained engines, so every
	// converter reports ready.
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "docforge", resp.Service)
	assert.Len(t, resp.Converters, 4)
	for format, ready := range resp.Converters {
		assert.True(t, ready, "converter %s should be ready", format)
	}
}

func TestHomePage(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))
	assert.Contains(t, rec.Body.String(), "docforge")
	assert.Contains(t, rec.Body.String(), ".docx")
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/convert", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

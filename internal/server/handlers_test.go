package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagesift/pagesift/internal/pipeline"
	"github.com/pagesift/pagesift/internal/testutil"
)

// stubProcessor returns canned pages without touching any OCR backend.
type stubProcessor struct {
	page   pipeline.Page
	err    error
	closed bool
}

func (s *stubProcessor) ProcessPage(ctx context.Context, img image.Image, pageNumber int) (pipeline.Page, error) {
	if s.err != nil {
		return pipeline.Page{}, s.err
	}
	page := s.page
	page.PageNumber = pageNumber
	return page, nil
}

func (s *stubProcessor) ProcessPages(ctx context.Context, pages []pipeline.PageInput, cfg pipeline.ParallelConfig) ([]pipeline.Page, error) {
	out := make([]pipeline.Page, len(pages))
	for i, p := range pages {
		page, err := s.ProcessPage(ctx, p.Image, p.PageNumber)
		if err != nil {
			return nil, err
		}
		out[i] = page
	}
	return out, nil
}

func (s *stubProcessor) Close() error {
	s.closed = true
	return nil
}

func testServer(stub *stubProcessor) *Server {
	return &Server{
		orchestrator: stub,
		maxUploadMB:  10,
		timeoutSec:   5,
		pageWorkers:  1,
	}
}

// imageUpload builds a multipart body with one PNG under the given field.
func imageUpload(t *testing.T, field string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, "page.png")
	require.NoError(t, err)
	require.NoError(t, png.Encode(part, testutil.NewPage(testutil.DefaultPageConfig())))
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestHealthHandler(t *testing.T) {
	srv := testServer(&stubProcessor{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	srv.healthHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.NotEmpty(t, resp.Time)
}

func TestHealthHandlerRejectsPost(t *testing.T) {
	srv := testServer(&stubProcessor{})
	rec := httptest.NewRecorder()
	srv.healthHandler(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestProcessImageHandler(t *testing.T) {
	stub := &stubProcessor{page: pipeline.Page{
		Width:  640,
		Height: 800,
		Regions: []pipeline.Region{
			{ID: "text_1", Type: "text", RawText: "the fox", Status: pipeline.StatusOCRDone},
		},
	}}
	srv := testServer(stub)

	body, contentType := imageUpload(t, "image")
	req := httptest.NewRequest(http.MethodPost, "/process/image", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.processImageHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ProcessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Page)
	assert.Equal(t, 1, resp.Page.PageNumber)
	require.Len(t, resp.Page.Regions, 1)
	assert.Equal(t, "the fox", resp.Page.Regions[0].RawText)
	assert.Empty(t, resp.Overlay, "overlay disabled by default")
}

func TestProcessImageHandlerWithOverlay(t *testing.T) {
	stub := &stubProcessor{page: pipeline.Page{Width: 640, Height: 800}}
	srv := testServer(stub)
	srv.overlayEnabled = true

	body, contentType := imageUpload(t, "image")
	req := httptest.NewRequest(http.MethodPost, "/process/image?overlay=true", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.processImageHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ProcessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Overlay)
}

func TestProcessImageHandlerMissingFile(t *testing.T) {
	srv := testServer(&stubProcessor{})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/process/image", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()

	srv.processImageHandler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProcessImageHandlerInvalidImage(t *testing.T) {
	srv := testServer(&stubProcessor{})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", "page.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("not an image"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/process/image", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()

	srv.processImageHandler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProcessImageHandlerRejectsGet(t *testing.T) {
	srv := testServer(&stubProcessor{})
	rec := httptest.NewRecorder()
	srv.processImageHandler(rec, httptest.NewRequest(http.MethodGet, "/process/image", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestProcessPDFHandlerBadPageSelection(t *testing.T) {
	srv := testServer(&stubProcessor{})
	body, contentType := imageUpload(t, "pdf")
	req := httptest.NewRequest(http.MethodPost, "/process/pdf?pages=zero", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.processPDFHandler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServerClose(t *testing.T) {
	stub := &stubProcessor{}
	srv := testServer(stub)
	require.NoError(t, srv.Close())
	assert.True(t, stub.closed)
}

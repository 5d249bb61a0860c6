package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/mhuisman/brickmosaic/pkg/pipeline"
)

func testHandler(t *testing.T) http.Handler {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	return New(pipeline.NewRunner(nil, nil, logger), logger, Config{})
}

// pngFixture encodes a solid red square.
func pngFixture(t *testing.T, size int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

// multipartBody builds an upload request body with a file part and
// extra form fields.
func multipartBody(t *testing.T, file []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if file != nil {
		fw, err := mw.CreateFormFile("file", "input.png")
		if err != nil {
			t.Fatalf("create file part: %v", err)
		}
		if _, err := fw.Write(file); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestHealthz(t *testing.T) {
	h := testHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestPaletteListing(t *testing.T) {
	h := testHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/palette", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Colors []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
			Code string `json:"code"`
			Hex  string `json:"hex"`
		} `json:"colors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Colors) == 0 {
		t.Fatal("palette listing is empty")
	}
	for _, c := range body.Colors {
		if c.ID == "" || c.Name == "" || c.Code == "" || len(c.Hex) != 7 {
			t.Errorf("incomplete palette entry: %+v", c)
		}
	}
}

func TestConvertPNG(t *testing.T) {
	h := testHandler(t)
	body, contentType := multipartBody(t, pngFixture(t, 64), map[string]string{
		"bricks":    "8",
		"cell_size": "4",
	})
	req := httptest.NewRequest(http.MethodPost, "/convert/png", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("response is not a PNG: %v", err)
	}
	if cfg.Width != 32 || cfg.Height != 32 {
		t.Errorf("preview is %dx%d, want 32x32", cfg.Width, cfg.Height)
	}
}

func TestConvertPDF(t *testing.T) {
	h := testHandler(t)
	body, contentType := multipartBody(t, pngFixture(t, 64), map[string]string{
		"bricks":       "8",
		"cell_size_mm": "10",
	})
	req := httptest.NewRequest(http.MethodPost, "/convert/pdf", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q, want application/pdf", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")) {
		t.Error("response does not start with a PDF header")
	}
}

func TestConvertPDFWithManifest(t *testing.T) {
	h := testHandler(t)
	body, contentType := multipartBody(t, pngFixture(t, 64), map[string]string{
		"bricks":      "8",
		"include_csv": "true",
	})
	req := httptest.NewRequest(http.MethodPost, "/convert/pdf", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/zip" {
		t.Errorf("Content-Type = %q, want application/zip", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Error("response does not start with a zip header")
	}
}

func TestConvertErrors(t *testing.T) {
	h := testHandler(t)

	tests := []struct {
		name   string
		path   string
		file   []byte
		fields map[string]string
		status int
	}{
		{
			name:   "missing file",
			path:   "/convert/png",
			file:   nil,
			fields: nil,
			status: http.StatusBadRequest,
		},
		{
			name:   "undecodable image",
			path:   "/convert/png",
			file:   []byte("not an image"),
			fields: nil,
			status: http.StatusBadRequest,
		},
		{
			name:   "grid size out of range",
			path:   "/convert/png",
			file:   pngFixture(t, 64),
			fields: map[string]string{"bricks": "500"},
			status: http.StatusBadRequest,
		},
		{
			name:   "bricks not an integer",
			path:   "/convert/png",
			file:   pngFixture(t, 64),
			fields: map[string]string{"bricks": "many"},
			status: http.StatusBadRequest,
		},
		{
			name:   "cell size out of range",
			path:   "/convert/png",
			file:   pngFixture(t, 64),
			fields: map[string]string{"bricks": "8", "cell_size": "9999"},
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "printed cell too small",
			path:   "/convert/pdf",
			file:   pngFixture(t, 64),
			fields: map[string]string{"bricks": "8", "cell_size_mm": "0.5"},
			status: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := multipartBody(t, tt.file, tt.fields)
			req := httptest.NewRequest(http.MethodPost, tt.path, body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			var errBody map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &errBody); err != nil {
				t.Fatalf("error body is not JSON: %v", err)
			}
			if errBody["error"] == "" {
				t.Error("error body has no message")
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	h := testHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/convert/png", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("Allow-Origin = %q, want *", origin)
	}
}

func TestRequestIDHeader(t *testing.T) {
	h := testHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("response has no X-Request-ID header")
	}
}

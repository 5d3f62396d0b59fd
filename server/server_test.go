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
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"ipg/config"
	"ipg/docx"
	"ipg/state"
)

func setupTestServer(t *testing.T) *Server {
	t.Helper()

	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	cfg.Document.WorkDir = t.TempDir()

	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Cfg = cfg
	env.Log = zaptest.NewLogger(t)
	return New(ctx)
}

const validPaper = `{
	"title": "A Title",
	"authors": ["A. Author"],
	"affiliations": ["University"],
	"emails": ["a@example.com"],
	"abstract": "Abstract text.",
	"keywords": ["kw"],
	"sections": [{"heading": "Intro", "content": "Body text."}],
	"references": []
}`

func TestGenerate(t *testing.T) {
	s := setupTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(validPaper))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != docx.MIMEType {
		t.Errorf("Content-Type = %q, want %q", got, docx.MIMEType)
	}
	if got := rec.Header().Get("Content-Disposition"); got != "attachment; filename="+DownloadName {
		t.Errorf("Content-Disposition = %q", got)
	}
	if rec.Body.Len() == 0 {
		t.Error("response body is empty")
	}
}

func TestGenerateValidationFailure(t *testing.T) {
	s := setupTestServer(t)

	// blank title
	body := strings.Replace(validPaper, `"A Title"`, `" "`, 1)
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp.Success || !strings.Contains(resp.Error, "title is required") {
		t.Errorf("response = %+v", resp)
	}
}

func TestGenerateRejectsJunk(t *testing.T) {
	s := setupTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("unable to write form file: %v", err)
	}
	w.Close()
	return &buf, w.FormDataContentType()
}

func TestUploadImage(t *testing.T) {
	s := setupTestServer(t)

	var img bytes.Buffer
	if err := png.Encode(&img, image.NewNRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	body, contentType := multipartBody(t, "file", "test.png", img.Bytes())

	req := httptest.NewRequest(http.MethodPost, "/upload-image", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Filename string `json:"filename"`
		Format   string `json:"format"`
		Base64   string `json:"base64"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp.Filename != "test.png" || resp.Format != "PNG" || len(resp.Base64) == 0 {
		t.Errorf("response = %+v", resp)
	}
}

func TestUploadImageRejectsJunk(t *testing.T) {
	s := setupTestServer(t)

	body, contentType := multipartBody(t, "file", "junk.bin", []byte("junk"))
	req := httptest.NewRequest(http.MethodPost, "/upload-image", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSimilarityEndpoint(t *testing.T) {
	s := setupTestServer(t)

	// build a document through the generate endpoint first
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(validPaper))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate status = %d", rec.Code)
	}

	body, contentType := multipartBody(t, "file", "paper.docx", rec.Body.Bytes())
	req = httptest.NewRequest(http.MethodPost, "/similarity", body)
	req.Header.Set("Content-Type", contentType)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		TotalSentences int `json:"total_sentences"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp.TotalSentences == 0 {
		t.Error("report has no sentences")
	}
}

func TestCORSHeaders(t *testing.T) {
	s := setupTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/generate", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("preflight status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/kiranshivaraju/medequip/internal/api/handler"
	"github.com/kiranshivaraju/medequip/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakeAnalyzer struct {
	got    models.AnalysisRequest
	calls  int
	result models.AnalysisResult
	err    error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, req models.AnalysisRequest) (models.AnalysisResult, error) {
	f.calls++
	f.got = req
	return f.result, f.err
}

func okAnalyzer() *fakeAnalyzer {
	return &fakeAnalyzer{result: models.AnalysisResult{
		Equipment:      "Medical Stethoscope",
		DetectedType:   "stethoscope",
		Condition:      string(models.ConditionGood),
		Confidence:     "88%",
		AnalysisSource: "Google Gemini AI",
		EstimatedValue: "$50 - $100",
	}}
}

// uploadRequest builds a multipart request with one file part.
func uploadRequest(t *testing.T, field, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/analyze-equipment", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Error.Code
}

func TestAnalyzeHandler_Success(t *testing.T) {
	svc := okAnalyzer()
	h := handler.NewAnalyzeHandler(svc, 1024)

	rec := httptest.NewRecorder()
	h(rec, uploadRequest(t, "image", "steth.png", "image/png", pngHeader))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "steth.png", svc.got.Filename)
	assert.Equal(t, "image/png", svc.got.MIMEType)
	assert.Equal(t, int64(len(pngHeader)), svc.got.Size)
	assert.Equal(t, pngHeader, svc.got.Image)

	var env struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "Medical Stethoscope", env.Data["equipment"])
	assert.Equal(t, "good", env.Data["condition"])
	assert.Equal(t, "$50 - $100", env.Data["estimatedValue"])
}

func TestAnalyzeHandler_SniffsMissingContentType(t *testing.T) {
	svc := okAnalyzer()
	h := handler.NewAnalyzeHandler(svc, 1024)

	rec := httptest.NewRecorder()
	h(rec, uploadRequest(t, "image", "bed.PNG", "", pngHeader))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", svc.got.MIMEType)
}

func TestAnalyzeHandler_MissingFile(t *testing.T) {
	svc := okAnalyzer()
	h := handler.NewAnalyzeHandler(svc, 1024)

	rec := httptest.NewRecorder()
	h(rec, uploadRequest(t, "photo", "steth.png", "image/png", pngHeader))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "NO_INPUT_PROVIDED", errorCode(t, rec))
	assert.Zero(t, svc.calls)
}

func TestAnalyzeHandler_NotMultipart(t *testing.T) {
	h := handler.NewAnalyzeHandler(okAnalyzer(), 1024)

	r := httptest.NewRequest(http.MethodPost, "/api/analyze-equipment", bytes.NewReader([]byte(`{}`)))
	r.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "NO_INPUT_PROVIDED", errorCode(t, rec))
}

func TestAnalyzeHandler_RejectsFileTypes(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
	}{
		{"pdf extension", "manual.pdf", "image/png"},
		{"no extension", "upload", "image/png"},
		{"non-image mime", "steth.png", "application/pdf"},
		{"svg mime", "steth.png", "image/svg+xml"},
		{"webp", "steth.webp", "image/webp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := okAnalyzer()
			h := handler.NewAnalyzeHandler(svc, 1024)

			rec := httptest.NewRecorder()
			h(rec, uploadRequest(t, "image", tt.filename, tt.contentType, pngHeader))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "INVALID_FILE_TYPE", errorCode(t, rec))
			assert.Zero(t, svc.calls)
		})
	}
}

func TestAnalyzeHandler_AcceptsFileTypes(t *testing.T) {
	tests := []struct {
		filename    string
		contentType string
	}{
		{"a.jpg", "image/jpeg"},
		{"a.JPEG", "image/jpeg"},
		{"a.gif", "image/gif"},
		{"a.png", "image/png"},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			h := handler.NewAnalyzeHandler(okAnalyzer(), 1024)
			rec := httptest.NewRecorder()
			h(rec, uploadRequest(t, "image", tt.filename, tt.contentType, pngHeader))
			assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		})
	}
}

func TestAnalyzeHandler_FileTooLarge(t *testing.T) {
	svc := okAnalyzer()
	h := handler.NewAnalyzeHandler(svc, 64)

	rec := httptest.NewRecorder()
	h(rec, uploadRequest(t, "image", "big.png", "image/png", bytes.Repeat([]byte{0xAB}, 65)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "FILE_TOO_LARGE", errorCode(t, rec))
	assert.Zero(t, svc.calls)
}

func TestAnalyzeHandler_ExactLimitAccepted(t *testing.T) {
	data := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 64-len(pngHeader))...)
	h := handler.NewAnalyzeHandler(okAnalyzer(), 64)

	rec := httptest.NewRecorder()
	h(rec, uploadRequest(t, "image", "edge.png", "image/png", data))

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestAnalyzeHandler_ServiceErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"no input", fmt.Errorf("analyze: %w", models.ErrNoInputProvided), http.StatusBadRequest, "NO_INPUT_PROVIDED"},
		{"assembly", fmt.Errorf("assemble: %w", models.ErrInternalAssembly), http.StatusInternalServerError, "ANALYSIS_FAILED"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "ANALYSIS_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewAnalyzeHandler(&fakeAnalyzer{err: tt.err}, 1024)
			rec := httptest.NewRecorder()
			h(rec, uploadRequest(t, "image", "a.png", "image/png", pngHeader))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantErr, errorCode(t, rec))
		})
	}
}

func TestAnalyzeHandler_FailureCarriesReason(t *testing.T) {
	h := handler.NewAnalyzeHandler(&fakeAnalyzer{err: errors.New("knowledge base exploded")}, 1024)
	rec := httptest.NewRecorder()
	h(rec, uploadRequest(t, "image", "a.png", "image/png", pngHeader))

	var env struct {
		Error struct {
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "knowledge base exploded", env.Error.Details["reason"])
}

func TestAnalyzeHandler_CancelledWritesNothing(t *testing.T) {
	h := handler.NewAnalyzeHandler(&fakeAnalyzer{err: context.Canceled}, 1024)
	rec := httptest.NewRecorder()
	h(rec, uploadRequest(t, "image", "a.png", "image/png", pngHeader))

	assert.Empty(t, rec.Body.Bytes())
}

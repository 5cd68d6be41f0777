package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/kiranshivaraju/medequip/internal/api/response"
	"github.com/kiranshivaraju/medequip/pkg/models"
)

// ImageField is the multipart field carrying the upload.
const ImageField = "image"

// multipartOverhead is allowed on top of the image limit for boundaries and headers.
const multipartOverhead = 1 << 20

// memoryBudget is how much of a multipart form is held in memory before
// spilling to temporary files.
const memoryBudget = 4 << 20

var allowedImageTypes = []string{"jpeg", "jpg", "png", "gif"}

// Analyzer defines the interface the handler depends on.
type Analyzer interface {
	Analyze(ctx context.Context, req models.AnalysisRequest) (models.AnalysisResult, error)
}

// NewAnalyzeHandler returns an http.HandlerFunc for POST /api/analyze-equipment.
func NewAnalyzeHandler(svc Analyzer, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)

		if err := r.ParseMultipartForm(memoryBudget); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				fileTooLarge(w, maxBytes)
				return
			}
			response.Error(w, http.StatusBadRequest, "NO_INPUT_PROVIDED", "No image file provided", nil)
			return
		}
		defer func() {
			if err := r.MultipartForm.RemoveAll(); err != nil {
				slog.Warn("remove multipart temp files failed", "error", err)
			}
		}()

		file, header, err := r.FormFile(ImageField)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "NO_INPUT_PROVIDED", "No image file provided", nil)
			return
		}
		defer file.Close()

		if header.Size > maxBytes {
			fileTooLarge(w, maxBytes)
			return
		}

		image, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "NO_INPUT_PROVIDED", "Could not read uploaded image", nil)
			return
		}
		if int64(len(image)) > maxBytes {
			fileTooLarge(w, maxBytes)
			return
		}

		mimeType := declaredType(header, image)
		if !allowedImage(header.Filename, mimeType) {
			response.Error(w, http.StatusBadRequest, "INVALID_FILE_TYPE", "Only image files are allowed", map[string]string{
				"filename": header.Filename,
				"type":     mimeType,
			})
			return
		}

		slog.Info("processing image",
			"filename", header.Filename,
			"size", len(image),
			"request_id", chimw.GetReqID(r.Context()),
		)

		result, err := svc.Analyze(r.Context(), models.AnalysisRequest{
			Image:    image,
			Filename: header.Filename,
			Size:     int64(len(image)),
			MIMEType: mimeType,
		})
		if err != nil {
			switch {
			case errors.Is(err, models.ErrNoInputProvided):
				response.Error(w, http.StatusBadRequest, "NO_INPUT_PROVIDED", "No image file provided", nil)
			case errors.Is(err, context.Canceled):
				slog.Info("client went away before analysis finished", "filename", header.Filename)
			default:
				slog.Error("analysis failed", "filename", header.Filename, "error", err)
				response.Error(w, http.StatusInternalServerError, "ANALYSIS_FAILED", "Analysis failed", map[string]string{
					"reason": err.Error(),
				})
			}
			return
		}

		response.JSON(w, result)
	}
}

func fileTooLarge(w http.ResponseWriter, maxBytes int64) {
	response.Error(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "Image exceeds the upload limit", map[string]int64{
		"maxBytes": maxBytes,
	})
}

// declaredType prefers the part's Content-Type and sniffs the bytes when the
// client sent none.
func declaredType(header *multipart.FileHeader, image []byte) string {
	ct := strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(image)
	}
	return ct
}

// allowedImage requires both the extension and the MIME type to name one of
// the accepted image formats.
func allowedImage(filename, mimeType string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	extOK, mimeOK := false, false
	for _, t := range allowedImageTypes {
		if ext == t {
			extOK = true
		}
		if strings.HasPrefix(mimeType, "image/") && strings.Contains(mimeType, t) {
			mimeOK = true
		}
	}
	return extOK && mimeOK
}

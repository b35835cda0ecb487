package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/joshua-paul-1/fintrackr/internal/api/middleware"
	"github.com/joshua-paul-1/fintrackr/internal/domain"
	"github.com/joshua-paul-1/fintrackr/internal/pipeline"
)

// Multipart field names of the upload form.
const (
	FormFieldFile     = "pdfFile"
	FormFieldPassword = "password"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to disk.
const multipartMemory = 8 << 20

// Ingester runs statement ingestion.
type Ingester interface {
	Ingest(ctx context.Context, ownerID string, pdfBytes []byte, filename, password string) (*pipeline.Result, error)
	Reprocess(ctx context.Context, ownerID, documentID, password string) (*pipeline.Result, error)
}

// DocumentsHandler handles statement upload endpoints.
type DocumentsHandler struct {
	ingester       Ingester
	maxUploadBytes int64
	log            zerolog.Logger
}

// NewDocumentsHandler creates a new documents handler.
func NewDocumentsHandler(ingester Ingester, maxUploadBytes int64, log zerolog.Logger) *DocumentsHandler {
	return &DocumentsHandler{
		ingester:       ingester,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}

type ingestResponse struct {
	Message string           `json:"message"`
	Result  *pipeline.Result `json:"result"`
}

// UploadPDF handles POST /api/upload-pdf
func (h *DocumentsHandler) UploadPDF(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, "File is too large")
			return
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid upload")
			return
		}
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, header, err := r.FormFile(FormFieldFile)
	if err != nil {
		middleware.WriteDomainError(w, domain.Validation("No file uploaded."))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.log.Error().Err(err).Str("sub", id.Subject).Msg("Failed to read uploaded file")
		middleware.WriteError(w, http.StatusBadRequest, "Invalid upload")
		return
	}

	filename := pipeline.SafeFilename(header.Filename)
	password := r.FormValue(FormFieldPassword)

	res, err := h.ingester.Ingest(r.Context(), id.Subject, data, filename, password)
	if err != nil {
		fail(w, r, err, "PDF upload failed")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, ingestResponse{
		Message: "PDF uploaded and processed successfully",
		Result:  res,
	})
}

// ReprocessPDF handles POST /api/reprocess-pdf
func (h *DocumentsHandler) ReprocessPDF(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	var req struct {
		SubID       string  `json:"subId"`
		PDFID       string  `json:"pdfMongoId"`
		PDFPassword *string `json:"pdfPassword"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.SubID == "" || req.PDFID == "" {
		middleware.WriteDomainError(w, domain.Validation("User ID and PDF ID are required."))
		return
	}
	if req.SubID != id.Subject {
		// documents are only visible to their owner
		middleware.WriteDomainError(w, domain.NotFound("PDF not found"))
		return
	}

	password := ""
	if req.PDFPassword != nil {
		password = *req.PDFPassword
	}

	res, err := h.ingester.Reprocess(r.Context(), id.Subject, req.PDFID, password)
	if err != nil {
		fail(w, r, err, "PDF reprocessing failed")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, ingestResponse{
		Message: "PDF reprocessed successfully",
		Result:  res,
	})
}

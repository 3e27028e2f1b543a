package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/dealmatch/internal/dto"
	"github.com/octobees/dealmatch/internal/service"
)

// multipartOverhead is the room left for form fields and part headers above the file cap.
const multipartOverhead = 64 << 10

// DocumentHandler handles deal document uploads.
type DocumentHandler struct {
	documents *service.DocumentService
	maxBytes  int64
}

// NewDocumentHandler wires a handler backed by the document service.
func NewDocumentHandler(documents *service.DocumentService, maxBytes int64) *DocumentHandler {
	return &DocumentHandler{documents: documents, maxBytes: maxBytes}
}

// Upload handles POST /api/documents/upload requests.
func (h *DocumentHandler) Upload(c echo.Context) error {
	req := c.Request()
	if h.maxBytes > 0 {
		req.Body = http.MaxBytesReader(c.Response(), req.Body, h.maxBytes+multipartOverhead)
	}

	fileHeader, err := c.FormFile("document")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return Error(c, http.StatusRequestEntityTooLarge, "document too large")
		}
		return Error(c, http.StatusBadRequest, "No file uploaded")
	}
	if h.maxBytes > 0 && fileHeader.Size > h.maxBytes {
		return Error(c, http.StatusRequestEntityTooLarge, "document too large")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Error(c, http.StatusBadRequest, "unable to open file")
	}
	defer file.Close()

	doc, err := h.documents.Upload(req.Context(), currentUserID(c), service.UploadInput{
		FileName:     fileHeader.Filename,
		ContentType:  fileHeader.Header.Get(echo.HeaderContentType),
		Content:      file,
		DealID:       c.FormValue("dealId"),
		BusinessID:   c.FormValue("businessId"),
		DocumentType: c.FormValue("documentType"),
	})
	if err != nil {
		return respondError(c, err, "upload document")
	}

	return Success(c, http.StatusCreated, "", dto.UploadResponse{
		Document: doc,
		Message:  "Document uploaded successfully",
	})
}

// ListByDeal handles GET /api/documents/:dealId requests.
func (h *DocumentHandler) ListByDeal(c echo.Context) error {
	docs, err := h.documents.ListByDeal(c.Request().Context(), currentUserID(c), c.Param("dealId"))
	if err != nil {
		return respondError(c, err, "list documents")
	}
	return Success(c, http.StatusOK, "", docs)
}

package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/opsledger/internal/model"
	"github.com/erazemk/opsledger/internal/store"
)

// DocumentsHandler handles document metadata endpoints. File contents are
// stored elsewhere; only the path is recorded.
type DocumentsHandler struct {
	DB *sqlx.DB
}

type createDocumentRequest struct {
	DocumentType string `json:"documentType"`
	RelatedID    *int64 `json:"relatedId"`
	RelatedType  string `json:"relatedType"`
	FileName     string `json:"fileName"`
	FilePath     string `json:"filePath"`
}

// Create handles POST /api/documents. The uploader is the session user.
func (h *DocumentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !model.ValidDocumentType(req.DocumentType) {
		jsonError(w, http.StatusBadRequest, "invalid documentType")
		return
	}
	if req.FileName == "" || req.FilePath == "" {
		jsonError(w, http.StatusBadRequest, "fileName and filePath required")
		return
	}

	claims := GetClaims(r.Context())
	doc, err := store.CreateDocument(r.Context(), h.DB, model.Document{
		DocumentType: req.DocumentType,
		RelatedID:    req.RelatedID,
		RelatedType:  req.RelatedType,
		FileName:     req.FileName,
		FilePath:     req.FilePath,
		UploadDate:   time.Now(),
		UploadedBy:   claims.UserID,
	})
	if err != nil {
		internalError(w, r, err, "create document")
		return
	}

	slog.Info("document recorded", "user", claims.Username, "type", doc.DocumentType, "file", doc.FileName)
	jsonResponse(w, http.StatusCreated, doc)
}

// List handles GET /api/documents?relatedId=&relatedType=.
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	relatedType := q.Get("relatedType")
	relatedID, err := strconv.ParseInt(q.Get("relatedId"), 10, 64)
	if err != nil || relatedType == "" {
		jsonError(w, http.StatusBadRequest, "relatedId and relatedType required")
		return
	}

	docs, err := store.ListDocuments(r.Context(), h.DB, relatedID, relatedType)
	if err != nil {
		internalError(w, r, err, "list documents")
		return
	}
	jsonResponse(w, http.StatusOK, docs)
}

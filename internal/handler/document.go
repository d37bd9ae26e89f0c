package handler

import (
	"log/slog"
	"net/http"

	models "seriatim/internal/domain/models/outline"
	outlineSvc "seriatim/internal/domain/services/outline"
	"seriatim/internal/httputil"
)

// DocumentHandler handles document HTTP requests
type DocumentHandler struct {
	docService outlineSvc.DocumentService
	logger     *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docService outlineSvc.DocumentService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService: docService,
		logger:     logger,
	}
}

// CreateDocument creates an empty document owned by the caller
// POST /api/documents
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.docService.CreateDocument(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// ListDocuments lists the caller's documents
// GET /api/documents
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docService.ListDocuments(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, docs)
}

// GetDocument returns a document with its items. Anonymous callers may
// read publicly viewable documents.
// GET /api/documents/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	view, err := h.docService.GetDocument(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, view)
}

// DeleteDocument trashes the document, or deletes it if already trashed
// DELETE /api/documents/{id}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.docService.DeleteDocument(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// RenameDocument sets the document title
// POST /api/documents/{id}/rename
func (h *DocumentHandler) RenameDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req outlineSvc.RenameDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.docService.RenameDocument(r.Context(), httputil.GetUserID(r), id, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondNoContent(w)
}

// EditOutline replaces the outline below the root with the posted snapshot
// and returns the client id to item id mapping. Unresolved ids map to null.
// POST /api/documents/{id}/edit
func (h *DocumentHandler) EditOutline(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var snapshot models.Snapshot
	if err := httputil.ParseJSON(w, r, &snapshot); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.docService.ReconcileOutline(r.Context(), httputil.GetUserID(r), id, &snapshot)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result.IDs)
}

// EditText updates item text without touching structure. The body maps
// item ids to their new text.
// POST /api/documents/{id}/edit_text
func (h *DocumentHandler) EditText(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var changes map[string]string
	if err := httputil.ParseJSON(w, r, &changes); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req := &outlineSvc.EditTextRequest{Items: changes}
	if err := h.docService.EditText(r.Context(), httputil.GetUserID(r), id, req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondNoContent(w)
}

// CopyDocument copies a viewable document into a new one owned by the caller
// POST /api/documents/{id}/copy
func (h *DocumentHandler) CopyDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	doc, err := h.docService.CopyDocument(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// SetPublicViewability toggles anonymous read access
// POST /api/documents/{id}/public_viewability
func (h *DocumentHandler) SetPublicViewability(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req outlineSvc.PublicViewabilityRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.docService.SetPubliclyViewable(r.Context(), httputil.GetUserID(r), id, req.PubliclyViewable); err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondNoContent(w)
}

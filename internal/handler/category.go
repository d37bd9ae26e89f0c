package handler

import (
	"log/slog"
	"net/http"

	outlineSvc "seriatim/internal/domain/services/outline"
	"seriatim/internal/httputil"
)

// CategoryHandler handles per-user document categories
type CategoryHandler struct {
	categoryService outlineSvc.CategoryService
	logger          *slog.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService outlineSvc.CategoryService, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// ListCategories lists the caller's categories on a document
// GET /api/documents/{id}/categories
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	categories, err := h.categoryService.ListCategories(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, categories)
}

// AddCategory tags a document. A duplicate answers 409 with the existing id.
// POST /api/documents/{id}/categories
func (h *CategoryHandler) AddCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req outlineSvc.CategoryRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	category, err := h.categoryService.AddCategory(r.Context(), httputil.GetUserID(r), id, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, category)
}

// RemoveCategory untags a document; removing Trash restores it
// DELETE /api/documents/{id}/categories/{name}
func (h *CategoryHandler) RemoveCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	name, ok := pathID(w, r, "name")
	if !ok {
		return
	}

	if err := h.categoryService.RemoveCategory(r.Context(), httputil.GetUserID(r), id, name); err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondNoContent(w)
}

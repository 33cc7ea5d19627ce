package handler

import (
	"log/slog"
	"net/http"

	"testdeck/internal/domain/services"
	"testdeck/internal/httputil"
)

// TagHandler handles tag HTTP requests
type TagHandler struct {
	tagService services.TagService
	logger     *slog.Logger
}

// NewTagHandler creates a new tag handler
func NewTagHandler(tagService services.TagService, logger *slog.Logger) *TagHandler {
	return &TagHandler{
		tagService: tagService,
		logger:     logger,
	}
}

// CreateTag creates a tag in a project
// POST /api/projects/{id}/tags
func (h *TagHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req services.CreateTagRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ProjectID = r.PathValue("id")

	tag, err := h.tagService.CreateTag(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, tag)
}

// ListTags lists a project's tags
// GET /api/projects/{id}/tags
func (h *TagHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tagService.ListByProject(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tags)
}

// DeleteTag deletes a tag and its case links
// DELETE /api/tags/{id}
func (h *TagHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	if err := h.tagService.DeleteTag(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

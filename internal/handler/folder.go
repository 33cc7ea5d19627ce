package handler

import (
	"log/slog"
	"net/http"

	"testdeck/internal/domain/services"
	"testdeck/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	folderService services.FolderService
	logger        *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folderService services.FolderService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
		logger:        logger,
	}
}

// CreateFolder creates a new folder appended at the end of its sibling group
// POST /api/folders
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req services.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.CreatedBy = httputil.GetUserID(r)

	folder, err := h.folderService.CreateFolder(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// RenameFolder updates a folder's title
// PATCH /api/folders/{id}
func (h *FolderHandler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	var req services.RenameFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	folder, err := h.folderService.RenameFolder(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// MoveFolder relocates a folder to a new parent and/or sibling index.
// The target_parent_id field is tri-state: absent keeps the current parent,
// explicit null moves the folder to root level.
// POST /api/folders/{id}/move
func (h *FolderHandler) MoveFolder(w http.ResponseWriter, r *http.Request) {
	var req services.MoveFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	folder, err := h.folderService.MoveFolder(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// ReorderFolder moves a folder within its current parent
// POST /api/folders/{id}/reorder
func (h *FolderHandler) ReorderFolder(w http.ResponseWriter, r *http.Request) {
	var req services.ReorderFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	folder, err := h.folderService.ReorderFolder(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// ListProjectFolders returns the project's folder forest, ordered by
// position at every level
// GET /api/projects/{id}/folders
func (h *FolderHandler) ListProjectFolders(w http.ResponseWriter, r *http.Request) {
	forest, err := h.folderService.ListProjectFolders(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, forest)
}

// GetAncestorPath returns the chain from the root folder down to and
// including the requested one
// GET /api/folders/{id}/path
func (h *FolderHandler) GetAncestorPath(w http.ResponseWriter, r *http.Request) {
	path, err := h.folderService.GetAncestorPath(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"path": path,
	})
}

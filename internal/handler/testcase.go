package handler

import (
	"log/slog"
	"net/http"

	"testdeck/internal/domain/services"
	"testdeck/internal/httputil"
)

// TestCaseHandler handles test case HTTP requests
type TestCaseHandler struct {
	caseService services.TestCaseService
	tagService  services.TagService
	logger      *slog.Logger
}

// NewTestCaseHandler creates a new test case handler
func NewTestCaseHandler(caseService services.TestCaseService, tagService services.TagService, logger *slog.Logger) *TestCaseHandler {
	return &TestCaseHandler{
		caseService: caseService,
		tagService:  tagService,
		logger:      logger,
	}
}

// CreateTestCase creates a single test case
// POST /api/testcases
func (h *TestCaseHandler) CreateTestCase(w http.ResponseWriter, r *http.Request) {
	var req services.CreateTestCaseRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.CreatedBy = httputil.GetUserID(r)

	tc, err := h.caseService.CreateTestCase(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, tc)
}

// BulkCreateTestCases creates several cases in one folder at once
// POST /api/testcases/bulk
func (h *TestCaseHandler) BulkCreateTestCases(w http.ResponseWriter, r *http.Request) {
	var req services.BulkCreateTestCasesRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.CreatedBy = httputil.GetUserID(r)

	cases, err := h.caseService.BulkCreateTestCases(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"cases": cases,
	})
}

// GetTestCase retrieves a test case with its tags
// GET /api/testcases/{id}
func (h *TestCaseHandler) GetTestCase(w http.ResponseWriter, r *http.Request) {
	tc, err := h.caseService.GetTestCase(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tc)
}

// UpdateTestCase updates a case's editable fields
// PATCH /api/testcases/{id}
func (h *TestCaseHandler) UpdateTestCase(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateTestCaseRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tc, err := h.caseService.UpdateTestCase(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tc)
}

// DeleteTestCase removes a case and closes its position gap
// DELETE /api/testcases/{id}
func (h *TestCaseHandler) DeleteTestCase(w http.ResponseWriter, r *http.Request) {
	if err := h.caseService.DeleteTestCase(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListByFolder lists a folder's cases ordered by position
// GET /api/folders/{id}/testcases
func (h *TestCaseHandler) ListByFolder(w http.ResponseWriter, r *http.Request) {
	cases, err := h.caseService.ListByFolder(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, cases)
}

// AttachTag links a tag to a test case
// PUT /api/testcases/{id}/tags/{tagID}
func (h *TestCaseHandler) AttachTag(w http.ResponseWriter, r *http.Request) {
	if err := h.tagService.AttachTag(r.Context(), r.PathValue("id"), r.PathValue("tagID")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DetachTag removes a tag from a test case
// DELETE /api/testcases/{id}/tags/{tagID}
func (h *TestCaseHandler) DetachTag(w http.ResponseWriter, r *http.Request) {
	if err := h.tagService.DetachTag(r.Context(), r.PathValue("id"), r.PathValue("tagID")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

package handler

import (
	"log/slog"
	"net/http"

	"testdeck/internal/domain/services"
	"testdeck/internal/httputil"
)

// TestRunHandler handles run and run entry HTTP requests
type TestRunHandler struct {
	runService services.TestRunService
	attService services.AttachmentService
	logger     *slog.Logger
}

// NewTestRunHandler creates a new test run handler
func NewTestRunHandler(runService services.TestRunService, attService services.AttachmentService, logger *slog.Logger) *TestRunHandler {
	return &TestRunHandler{
		runService: runService,
		attService: attService,
		logger:     logger,
	}
}

// CreateRun snapshots the selected test cases into a new run
// POST /api/runs
func (h *TestRunHandler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req services.CreateRunRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.CreatedBy = httputil.GetUserID(r)

	run, err := h.runService.CreateRun(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, run)
}

// GetRun retrieves a run with its entries
// GET /api/runs/{id}
func (h *TestRunHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.runService.GetRun(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, run)
}

// ListRuns lists a project's runs
// GET /api/projects/{id}/runs
func (h *TestRunHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.runService.ListByProject(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, runs)
}

// SetEntryStatus updates one entry's execution status
// PATCH /api/runs/{id}/entries/{entryID}
func (h *TestRunHandler) SetEntryStatus(w http.ResponseWriter, r *http.Request) {
	var req services.SetEntryStatusRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.runService.SetEntryStatus(r.Context(), r.PathValue("id"), r.PathValue("entryID"), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, entry)
}

// UploadAttachment stores one evidence file for a run entry. The request is
// multipart/form-data with the file under the "file" field.
// POST /api/runs/{id}/entries/{entryID}/attachments
func (h *TestRunHandler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	att, err := h.attService.Upload(r.Context(), &services.UploadAttachmentRequest{
		RunID:      r.PathValue("id"),
		EntryID:    r.PathValue("entryID"),
		FileName:   header.Filename,
		Content:    file,
		UploadedBy: httputil.GetUserID(r),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, att)
}

// ListAttachments lists an entry's evidence files
// GET /api/runs/{id}/entries/{entryID}/attachments
func (h *TestRunHandler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	atts, err := h.attService.ListByEntry(r.Context(), r.PathValue("entryID"))
	if err != nil {
		writeError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, atts)
}

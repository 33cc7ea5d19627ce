package handler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"testdeck/internal/domain"
	"testdeck/internal/domain/models"
	"testdeck/internal/domain/services"
)

// stubFolderService records the last move request and returns canned values
type stubFolderService struct {
	lastMoveID  string
	lastMoveReq *services.MoveFolderRequest
	moveErr     error
}

func (s *stubFolderService) CreateFolder(ctx context.Context, req *services.CreateFolderRequest) (*models.Folder, error) {
	return &models.Folder{ID: "folder-1", ProjectID: req.ProjectID, Title: req.Title}, nil
}

func (s *stubFolderService) RenameFolder(ctx context.Context, id string, req *services.RenameFolderRequest) (*models.Folder, error) {
	return &models.Folder{ID: id, Title: req.Title}, nil
}

func (s *stubFolderService) MoveFolder(ctx context.Context, id string, req *services.MoveFolderRequest) (*models.Folder, error) {
	s.lastMoveID = id
	s.lastMoveReq = req
	if s.moveErr != nil {
		return nil, s.moveErr
	}
	return &models.Folder{ID: id}, nil
}

func (s *stubFolderService) ReorderFolder(ctx context.Context, id string, req *services.ReorderFolderRequest) (*models.Folder, error) {
	return s.MoveFolder(ctx, id, &services.MoveFolderRequest{Position: req.Position})
}

func (s *stubFolderService) ListProjectFolders(ctx context.Context, projectID string) (*models.FolderForest, error) {
	return &models.FolderForest{Folders: []*models.FolderTreeNode{}}, nil
}

func (s *stubFolderService) GetAncestorPath(ctx context.Context, id string) ([]models.Folder, error) {
	return []models.Folder{{ID: id}}, nil
}

func newFolderTestServer(svc services.FolderService) *http.ServeMux {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewFolderHandler(svc, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/folders/{id}/move", h.MoveFolder)
	mux.HandleFunc("GET /api/folders/{id}/path", h.GetAncestorPath)
	return mux
}

func TestMoveFolderParsesTriStateParent(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantPresent bool
		wantNil     bool
		wantValue   string
	}{
		{name: "absent parent keeps current", body: `{"position": 1}`, wantPresent: false},
		{name: "null parent means root", body: `{"target_parent_id": null, "position": 0}`, wantPresent: true, wantNil: true},
		{name: "explicit parent", body: `{"target_parent_id": "folder-9", "position": 2}`, wantPresent: true, wantValue: "folder-9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubFolderService{}
			mux := newFolderTestServer(stub)

			req := httptest.NewRequest(http.MethodPost, "/api/folders/folder-1/move", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
			}
			if stub.lastMoveID != "folder-1" {
				t.Fatalf("moved folder = %q, want folder-1", stub.lastMoveID)
			}

			got := stub.lastMoveReq.TargetParentID
			if got.Present != tt.wantPresent {
				t.Fatalf("Present = %v, want %v", got.Present, tt.wantPresent)
			}
			if tt.wantPresent && tt.wantNil && got.Value != nil {
				t.Fatalf("Value = %q, want nil", *got.Value)
			}
			if tt.wantValue != "" && (got.Value == nil || *got.Value != tt.wantValue) {
				t.Fatalf("Value = %v, want %q", got.Value, tt.wantValue)
			}
		})
	}
}

func TestMoveFolderErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "validation", err: fmt.Errorf("%w: bad position", domain.ErrValidation), wantStatus: http.StatusBadRequest},
		{name: "not found", err: fmt.Errorf("folder x: %w", domain.ErrNotFound), wantStatus: http.StatusNotFound},
		{name: "conflict", err: &domain.ConflictError{Message: "positions collided"}, wantStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubFolderService{moveErr: tt.err}
			mux := newFolderTestServer(stub)

			req := httptest.NewRequest(http.MethodPost, "/api/folders/folder-1/move", strings.NewReader(`{"position": 0}`))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
				t.Fatalf("content type = %q, want application/problem+json", ct)
			}
		})
	}
}

func TestMoveFolderRejectsMalformedBody(t *testing.T) {
	stub := &stubFolderService{}
	mux := newFolderTestServer(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/folders/folder-1/move", strings.NewReader(`{"position": `))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

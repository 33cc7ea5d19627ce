package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"testdeck/internal/domain"
	"testdeck/internal/domain/models"
	"testdeck/internal/domain/services"
	"testdeck/internal/statuses"
)

// fakeTestCaseRepo keeps cases in memory with the same position primitives as
// the Postgres repository
type fakeTestCaseRepo struct {
	cases  map[string]*models.TestCase
	nextID int
}

func newFakeTestCaseRepo() *fakeTestCaseRepo {
	return &fakeTestCaseRepo{cases: make(map[string]*models.TestCase)}
}

func (r *fakeTestCaseRepo) Create(ctx context.Context, tc *models.TestCase) error {
	r.nextID++
	tc.ID = fmt.Sprintf("case-%d", r.nextID)
	copied := *tc
	r.cases[tc.ID] = &copied
	return nil
}

func (r *fakeTestCaseRepo) GetByID(ctx context.Context, id string) (*models.TestCase, error) {
	tc, ok := r.cases[id]
	if !ok {
		return nil, fmt.Errorf("test case %s: %w", id, domain.ErrNotFound)
	}
	copied := *tc
	return &copied, nil
}

func (r *fakeTestCaseRepo) Update(ctx context.Context, tc *models.TestCase) error {
	stored, ok := r.cases[tc.ID]
	if !ok {
		return fmt.Errorf("test case %s: %w", tc.ID, domain.ErrNotFound)
	}
	*stored = *tc
	return nil
}

func (r *fakeTestCaseRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.cases[id]; !ok {
		return fmt.Errorf("test case %s: %w", id, domain.ErrNotFound)
	}
	delete(r.cases, id)
	return nil
}

func (r *fakeTestCaseRepo) ListByFolder(ctx context.Context, folderID string) ([]models.TestCase, error) {
	var result []models.TestCase
	for _, tc := range r.cases {
		if tc.FolderID == folderID {
			result = append(result, *tc)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Position < result[j].Position })
	return result, nil
}

func (r *fakeTestCaseRepo) GetByIDs(ctx context.Context, ids []string) ([]models.TestCase, error) {
	var result []models.TestCase
	for _, id := range ids {
		if tc, ok := r.cases[id]; ok {
			result = append(result, *tc)
		}
	}
	return result, nil
}

func (r *fakeTestCaseRepo) MaxPosition(ctx context.Context, folderID string) (int, error) {
	max := -1
	for _, tc := range r.cases {
		if tc.FolderID == folderID && tc.Position > max {
			max = tc.Position
		}
	}
	return max, nil
}

func (r *fakeTestCaseRepo) ClosePositionGap(ctx context.Context, folderID string, abovePosition int) error {
	for _, tc := range r.cases {
		if tc.FolderID == folderID && tc.Position > abovePosition {
			tc.Position--
		}
	}
	return nil
}

// fakeTagRepo is the minimal tag store the case service needs
type fakeTagRepo struct {
	tags    map[string]*models.Tag
	byCase  map[string][]string
	nextID  int
	deleted []string
}

func newFakeTagRepo() *fakeTagRepo {
	return &fakeTagRepo{tags: make(map[string]*models.Tag), byCase: make(map[string][]string)}
}

func (r *fakeTagRepo) Create(ctx context.Context, tag *models.Tag) error {
	r.nextID++
	tag.ID = fmt.Sprintf("tag-%d", r.nextID)
	copied := *tag
	r.tags[tag.ID] = &copied
	return nil
}

func (r *fakeTagRepo) GetByID(ctx context.Context, id string) (*models.Tag, error) {
	tag, ok := r.tags[id]
	if !ok {
		return nil, fmt.Errorf("tag %s: %w", id, domain.ErrNotFound)
	}
	copied := *tag
	return &copied, nil
}

func (r *fakeTagRepo) ListByProject(ctx context.Context, projectID string) ([]models.Tag, error) {
	result := []models.Tag{}
	for _, tag := range r.tags {
		if tag.ProjectID == projectID {
			result = append(result, *tag)
		}
	}
	return result, nil
}

func (r *fakeTagRepo) Delete(ctx context.Context, id string) error {
	delete(r.tags, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *fakeTagRepo) Attach(ctx context.Context, caseID, tagID string) error {
	r.byCase[caseID] = append(r.byCase[caseID], tagID)
	return nil
}

func (r *fakeTagRepo) Detach(ctx context.Context, caseID, tagID string) error {
	kept := r.byCase[caseID][:0]
	for _, id := range r.byCase[caseID] {
		if id != tagID {
			kept = append(kept, id)
		}
	}
	r.byCase[caseID] = kept
	return nil
}

func (r *fakeTagRepo) ListByCase(ctx context.Context, caseID string) ([]models.Tag, error) {
	result := []models.Tag{}
	for _, id := range r.byCase[caseID] {
		if tag, ok := r.tags[id]; ok {
			result = append(result, *tag)
		}
	}
	return result, nil
}

func mustRegistry(t *testing.T) *statuses.Registry {
	t.Helper()
	registry, err := statuses.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() failed: %v", err)
	}
	return registry
}

type caseServiceFixture struct {
	svc       services.TestCaseService
	caseRepo  *fakeTestCaseRepo
	folderSvc services.FolderService
	folderID  string
}

func newCaseServiceFixture(t *testing.T) *caseServiceFixture {
	t.Helper()
	folderRepo := newFakeFolderRepo()
	caseRepo := newFakeTestCaseRepo()
	tagRepo := newFakeTagRepo()
	projects := &fakeProjectRepo{existing: map[string]bool{testProjectID: true}}
	tx := &fakeTxManager{}
	logger := testLogger()

	folderSvc := NewFolderService(folderRepo, projects, tx, logger)
	svc := NewTestCaseService(caseRepo, folderRepo, tagRepo, tx, mustRegistry(t), logger)

	folder := mustCreate(t, folderSvc, "Checkout", nil)

	return &caseServiceFixture{
		svc:       svc,
		caseRepo:  caseRepo,
		folderSvc: folderSvc,
		folderID:  folder.ID,
	}
}

func TestCreateTestCaseAssignsPositionAndDefaults(t *testing.T) {
	f := newCaseServiceFixture(t)
	ctx := context.Background()

	first, err := f.svc.CreateTestCase(ctx, &services.CreateTestCaseRequest{
		FolderID: f.folderID,
		Title:    "Add to cart",
	})
	if err != nil {
		t.Fatalf("CreateTestCase() failed: %v", err)
	}
	second, err := f.svc.CreateTestCase(ctx, &services.CreateTestCaseRequest{
		FolderID: f.folderID,
		Title:    "Remove from cart",
		Priority: "high",
	})
	if err != nil {
		t.Fatalf("CreateTestCase() failed: %v", err)
	}

	if first.Position != 0 || second.Position != 1 {
		t.Fatalf("positions = %d, %d, want 0, 1", first.Position, second.Position)
	}
	if first.Priority != "medium" {
		t.Fatalf("default priority = %q, want medium", first.Priority)
	}
	if second.Priority != "high" {
		t.Fatalf("priority = %q, want high", second.Priority)
	}
}

func TestCreateTestCaseRejectsUnknownPriority(t *testing.T) {
	f := newCaseServiceFixture(t)

	_, err := f.svc.CreateTestCase(context.Background(), &services.CreateTestCaseRequest{
		FolderID: f.folderID,
		Title:    "Add to cart",
		Priority: "urgent",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("CreateTestCase() error = %v, want validation error", err)
	}
}

func TestBulkCreateTestCases(t *testing.T) {
	f := newCaseServiceFixture(t)
	ctx := context.Background()

	// Pre-existing case occupies position 0
	if _, err := f.svc.CreateTestCase(ctx, &services.CreateTestCaseRequest{
		FolderID: f.folderID,
		Title:    "Existing",
	}); err != nil {
		t.Fatalf("CreateTestCase() failed: %v", err)
	}

	created, err := f.svc.BulkCreateTestCases(ctx, &services.BulkCreateTestCasesRequest{
		FolderID: f.folderID,
		Cases: []services.BulkTestCaseItem{
			{Title: "One"},
			{Title: "Two", Priority: "low"},
			{Title: "Three"},
		},
	})
	if err != nil {
		t.Fatalf("BulkCreateTestCases() failed: %v", err)
	}

	if len(created) != 3 {
		t.Fatalf("created %d cases, want 3", len(created))
	}
	for i, tc := range created {
		if tc.Position != i+1 {
			t.Fatalf("case %q position = %d, want %d", tc.Title, tc.Position, i+1)
		}
	}
}

func TestBulkCreateValidatesBeforeWriting(t *testing.T) {
	f := newCaseServiceFixture(t)

	_, err := f.svc.BulkCreateTestCases(context.Background(), &services.BulkCreateTestCasesRequest{
		FolderID: f.folderID,
		Cases: []services.BulkTestCaseItem{
			{Title: "Fine"},
			{Title: "   "},
		},
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("BulkCreateTestCases() error = %v, want validation error", err)
	}
	if len(f.caseRepo.cases) != 0 {
		t.Fatalf("partial write: %d cases stored, want 0", len(f.caseRepo.cases))
	}
}

func TestDeleteTestCaseClosesGap(t *testing.T) {
	f := newCaseServiceFixture(t)
	ctx := context.Background()

	var ids []string
	for _, title := range []string{"One", "Two", "Three"} {
		tc, err := f.svc.CreateTestCase(ctx, &services.CreateTestCaseRequest{
			FolderID: f.folderID,
			Title:    title,
		})
		if err != nil {
			t.Fatalf("CreateTestCase() failed: %v", err)
		}
		ids = append(ids, tc.ID)
	}

	if err := f.svc.DeleteTestCase(ctx, ids[0]); err != nil {
		t.Fatalf("DeleteTestCase() failed: %v", err)
	}

	remaining, err := f.svc.ListByFolder(ctx, f.folderID)
	if err != nil {
		t.Fatalf("ListByFolder() failed: %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("remaining = %d cases, want 2", len(remaining))
	}
	for i, tc := range remaining {
		if tc.Position != i {
			t.Fatalf("case %q position = %d after delete, want %d", tc.Title, tc.Position, i)
		}
	}
}

func TestUpdateTestCase(t *testing.T) {
	f := newCaseServiceFixture(t)
	ctx := context.Background()

	tc, err := f.svc.CreateTestCase(ctx, &services.CreateTestCaseRequest{
		FolderID: f.folderID,
		Title:    "Original",
	})
	if err != nil {
		t.Fatalf("CreateTestCase() failed: %v", err)
	}

	// No fields at all is rejected
	if _, err := f.svc.UpdateTestCase(ctx, tc.ID, &services.UpdateTestCaseRequest{}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("empty update error = %v, want validation error", err)
	}

	newTitle := "Renamed"
	newPriority := "critical"
	updated, err := f.svc.UpdateTestCase(ctx, tc.ID, &services.UpdateTestCaseRequest{
		Title:    &newTitle,
		Priority: &newPriority,
	})
	if err != nil {
		t.Fatalf("UpdateTestCase() failed: %v", err)
	}
	if updated.Title != "Renamed" || updated.Priority != "critical" {
		t.Fatalf("updated = %q/%q, want Renamed/critical", updated.Title, updated.Priority)
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"

	"testdeck/internal/domain"
	"testdeck/internal/domain/models"
	"testdeck/internal/domain/repositories"
	"testdeck/internal/domain/services"
	"testdeck/internal/httputil"
)

// fakeFolderRepo keeps folders in memory and implements the same position
// bookkeeping primitives as the Postgres repository, so the service algorithm
// can be exercised end to end.
type fakeFolderRepo struct {
	folders map[string]*models.Folder
	nextID  int
}

func newFakeFolderRepo() *fakeFolderRepo {
	return &fakeFolderRepo{folders: make(map[string]*models.Folder)}
}

func ptrEq(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (r *fakeFolderRepo) inGroup(f *models.Folder, projectID string, parentID *string) bool {
	return f.ProjectID == projectID && ptrEq(f.ParentFolderID, parentID)
}

func (r *fakeFolderRepo) Create(ctx context.Context, folder *models.Folder) error {
	r.nextID++
	folder.ID = fmt.Sprintf("folder-%d", r.nextID)
	copied := *folder
	r.folders[folder.ID] = &copied
	return nil
}

func (r *fakeFolderRepo) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	f, ok := r.folders[id]
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	copied := *f
	return &copied, nil
}

func (r *fakeFolderRepo) UpdateTitle(ctx context.Context, id, title string) (*models.Folder, error) {
	f, ok := r.folders[id]
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	f.Title = title
	copied := *f
	return &copied, nil
}

func (r *fakeFolderRepo) ListByProject(ctx context.Context, projectID string) ([]models.Folder, error) {
	var result []models.Folder
	for _, f := range r.folders {
		if f.ProjectID == projectID {
			result = append(result, *f)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Position < result[j].Position
	})
	return result, nil
}

func (r *fakeFolderRepo) CountByProject(ctx context.Context, projectID string) (int, error) {
	count := 0
	for _, f := range r.folders {
		if f.ProjectID == projectID {
			count++
		}
	}
	return count, nil
}

func (r *fakeFolderRepo) MaxPosition(ctx context.Context, projectID string, parentFolderID *string) (int, error) {
	max := -1
	for _, f := range r.folders {
		if r.inGroup(f, projectID, parentFolderID) && f.Position > max {
			max = f.Position
		}
	}
	return max, nil
}

func (r *fakeFolderRepo) CountSiblings(ctx context.Context, projectID string, parentFolderID *string, excludeID string) (int, error) {
	count := 0
	for _, f := range r.folders {
		if r.inGroup(f, projectID, parentFolderID) && f.ID != excludeID {
			count++
		}
	}
	return count, nil
}

func (r *fakeFolderRepo) IsDescendant(ctx context.Context, folderID, candidateID string) (bool, error) {
	queue := []string{folderID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, f := range r.folders {
			if f.ParentFolderID != nil && *f.ParentFolderID == current {
				if f.ID == candidateID {
					return true, nil
				}
				queue = append(queue, f.ID)
			}
		}
	}
	return false, nil
}

func (r *fakeFolderRepo) ClosePositionGap(ctx context.Context, projectID string, parentFolderID *string, abovePosition int) error {
	for _, f := range r.folders {
		if r.inGroup(f, projectID, parentFolderID) && f.Position > abovePosition {
			f.Position--
		}
	}
	return nil
}

func (r *fakeFolderRepo) OpenPositionGap(ctx context.Context, projectID string, parentFolderID *string, fromPosition int, excludeID string) error {
	for _, f := range r.folders {
		if r.inGroup(f, projectID, parentFolderID) && f.Position >= fromPosition && f.ID != excludeID {
			f.Position++
		}
	}
	return nil
}

func (r *fakeFolderRepo) SetLocation(ctx context.Context, id string, parentFolderID *string, position int) error {
	f, ok := r.folders[id]
	if !ok {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	f.ParentFolderID = parentFolderID
	f.Position = position
	return nil
}

// fakeProjectRepo recognizes a fixed set of project IDs
type fakeProjectRepo struct {
	existing map[string]bool
}

func (r *fakeProjectRepo) Create(ctx context.Context, project *models.Project) error { return nil }
func (r *fakeProjectRepo) GetByID(ctx context.Context, id, ownerID string) (*models.Project, error) {
	if !r.existing[id] {
		return nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}
	return &models.Project{ID: id, OwnerID: ownerID}, nil
}
func (r *fakeProjectRepo) Exists(ctx context.Context, id string) (bool, error) {
	return r.existing[id], nil
}
func (r *fakeProjectRepo) List(ctx context.Context, ownerID string) ([]models.Project, error) {
	return []models.Project{}, nil
}
func (r *fakeProjectRepo) Update(ctx context.Context, project *models.Project) error { return nil }
func (r *fakeProjectRepo) Delete(ctx context.Context, id, ownerID string) (*models.Project, error) {
	return nil, nil
}

// fakeTxManager runs the function directly; the fakes share state anyway
type fakeTxManager struct{}

func (m *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const testProjectID = "project-1"

func newTestFolderService(t *testing.T) (services.FolderService, *fakeFolderRepo) {
	t.Helper()
	repo := newFakeFolderRepo()
	projects := &fakeProjectRepo{existing: map[string]bool{testProjectID: true}}
	svc := NewFolderService(repo, projects, &fakeTxManager{}, testLogger())
	return svc, repo
}

func mustCreate(t *testing.T, svc services.FolderService, title string, parentID *string) *models.Folder {
	t.Helper()
	folder, err := svc.CreateFolder(context.Background(), &services.CreateFolderRequest{
		ProjectID:      testProjectID,
		Title:          title,
		ParentFolderID: parentID,
		CreatedBy:      "user-1",
	})
	if err != nil {
		t.Fatalf("CreateFolder(%q) failed: %v", title, err)
	}
	return folder
}

// groupOrder returns the titles of a sibling group sorted by position, and
// fails the test if the positions are not exactly 0..n-1.
func groupOrder(t *testing.T, repo *fakeFolderRepo, parentID *string) []string {
	t.Helper()
	var group []*models.Folder
	for _, f := range repo.folders {
		if repo.inGroup(f, testProjectID, parentID) {
			group = append(group, f)
		}
	}
	sort.Slice(group, func(i, j int) bool { return group[i].Position < group[j].Position })

	titles := make([]string, 0, len(group))
	for i, f := range group {
		if f.Position != i {
			t.Fatalf("positions not dense: folder %q has position %d, want %d", f.Title, f.Position, i)
		}
		titles = append(titles, f.Title)
	}
	return titles
}

func assertOrder(t *testing.T, repo *fakeFolderRepo, parentID *string, want ...string) {
	t.Helper()
	got := groupOrder(t, repo, parentID)
	if len(got) != len(want) {
		t.Fatalf("sibling group has %d folders %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sibling order = %v, want %v", got, want)
		}
	}
}

func TestCreateFolderAppendsAtEnd(t *testing.T) {
	svc, _ := newTestFolderService(t)

	a := mustCreate(t, svc, "A", nil)
	b := mustCreate(t, svc, "B", nil)
	c := mustCreate(t, svc, "C", nil)

	if a.Position != 0 || b.Position != 1 || c.Position != 2 {
		t.Fatalf("root positions = %d, %d, %d, want 0, 1, 2", a.Position, b.Position, c.Position)
	}

	// A new nested group starts over at zero
	child := mustCreate(t, svc, "A1", &a.ID)
	if child.Position != 0 {
		t.Fatalf("first child position = %d, want 0", child.Position)
	}
}

func TestCreateFolderValidation(t *testing.T) {
	svc, _ := newTestFolderService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *services.CreateFolderRequest
		want error
	}{
		{
			name: "empty title",
			req:  &services.CreateFolderRequest{ProjectID: testProjectID, Title: "   "},
			want: domain.ErrValidation,
		},
		{
			name: "missing project",
			req:  &services.CreateFolderRequest{ProjectID: "no-such-project", Title: "A"},
			want: domain.ErrNotFound,
		},
		{
			name: "title too long",
			req:  &services.CreateFolderRequest{ProjectID: testProjectID, Title: strings.Repeat("x", 300)},
			want: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateFolder(ctx, tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("CreateFolder() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRenameFolderKeepsPosition(t *testing.T) {
	svc, repo := newTestFolderService(t)

	mustCreate(t, svc, "A", nil)
	b := mustCreate(t, svc, "B", nil)

	renamed, err := svc.RenameFolder(context.Background(), b.ID, &services.RenameFolderRequest{Title: "B renamed"})
	if err != nil {
		t.Fatalf("RenameFolder() failed: %v", err)
	}
	if renamed.Title != "B renamed" {
		t.Fatalf("title = %q, want %q", renamed.Title, "B renamed")
	}
	if renamed.Position != 1 {
		t.Fatalf("position changed to %d on rename, want 1", renamed.Position)
	}
	assertOrder(t, repo, nil, "A", "B renamed")
}

func intPtr(v int) *int { return &v }

func TestReorderWithinParent(t *testing.T) {
	tests := []struct {
		name      string
		moveTitle string
		position  int
		want      []string
	}{
		{name: "first to last", moveTitle: "A", position: 2, want: []string{"B", "C", "A"}},
		{name: "last to first", moveTitle: "C", position: 0, want: []string{"C", "A", "B"}},
		{name: "middle down", moveTitle: "B", position: 2, want: []string{"A", "C", "B"}},
		{name: "no-op move", moveTitle: "B", position: 1, want: []string{"A", "B", "C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestFolderService(t)
			byTitle := map[string]string{}
			for _, title := range []string{"A", "B", "C"} {
				byTitle[title] = mustCreate(t, svc, title, nil).ID
			}

			_, err := svc.ReorderFolder(context.Background(), byTitle[tt.moveTitle], &services.ReorderFolderRequest{
				Position: intPtr(tt.position),
			})
			if err != nil {
				t.Fatalf("ReorderFolder() failed: %v", err)
			}

			assertOrder(t, repo, nil, tt.want...)
		})
	}
}

func TestMoveFolderAcrossParents(t *testing.T) {
	svc, repo := newTestFolderService(t)
	ctx := context.Background()

	parent := mustCreate(t, svc, "Parent", nil)
	a := mustCreate(t, svc, "A", &parent.ID)
	mustCreate(t, svc, "B", &parent.ID)
	mustCreate(t, svc, "C", &parent.ID)

	other := mustCreate(t, svc, "Other", nil)
	mustCreate(t, svc, "X", &other.ID)
	mustCreate(t, svc, "Y", &other.ID)

	// Move A out of [A B C] into the middle of [X Y]
	moved, err := svc.MoveFolder(ctx, a.ID, &services.MoveFolderRequest{
		TargetParentID: httputil.OptionalString{Present: true, Value: &other.ID},
		Position:       intPtr(1),
	})
	if err != nil {
		t.Fatalf("MoveFolder() failed: %v", err)
	}

	if moved.ParentFolderID == nil || *moved.ParentFolderID != other.ID {
		t.Fatalf("moved folder parent = %v, want %s", moved.ParentFolderID, other.ID)
	}
	if moved.Position != 1 {
		t.Fatalf("moved folder position = %d, want 1", moved.Position)
	}

	// Source group closed its gap, destination group made room
	assertOrder(t, repo, &parent.ID, "B", "C")
	assertOrder(t, repo, &other.ID, "X", "A", "Y")
}

func TestMoveFolderToRootWithExplicitNull(t *testing.T) {
	svc, repo := newTestFolderService(t)
	ctx := context.Background()

	parent := mustCreate(t, svc, "Parent", nil)
	child := mustCreate(t, svc, "Child", &parent.ID)

	// target_parent_id: null moves to root level; absence would keep the parent
	moved, err := svc.MoveFolder(ctx, child.ID, &services.MoveFolderRequest{
		TargetParentID: httputil.OptionalString{Present: true, Value: nil},
		Position:       intPtr(0),
	})
	if err != nil {
		t.Fatalf("MoveFolder() failed: %v", err)
	}
	if moved.ParentFolderID != nil {
		t.Fatalf("moved folder parent = %v, want nil", *moved.ParentFolderID)
	}

	assertOrder(t, repo, nil, "Child", "Parent")
	assertOrder(t, repo, &parent.ID)
}

func TestMoveFolderAbsentParentKeepsCurrent(t *testing.T) {
	svc, repo := newTestFolderService(t)
	ctx := context.Background()

	parent := mustCreate(t, svc, "Parent", nil)
	a := mustCreate(t, svc, "A", &parent.ID)
	mustCreate(t, svc, "B", &parent.ID)

	moved, err := svc.MoveFolder(ctx, a.ID, &services.MoveFolderRequest{
		Position: intPtr(1),
	})
	if err != nil {
		t.Fatalf("MoveFolder() failed: %v", err)
	}
	if moved.ParentFolderID == nil || *moved.ParentFolderID != parent.ID {
		t.Fatalf("parent changed on reorder: %v", moved.ParentFolderID)
	}
	assertOrder(t, repo, &parent.ID, "B", "A")
}

func TestMoveFolderRoundTrip(t *testing.T) {
	svc, repo := newTestFolderService(t)
	ctx := context.Background()

	a := mustCreate(t, svc, "A", nil)
	b := mustCreate(t, svc, "B", nil)
	mustCreate(t, svc, "C", nil)

	// Move A under B, then back to its original root slot
	if _, err := svc.MoveFolder(ctx, a.ID, &services.MoveFolderRequest{
		TargetParentID: httputil.OptionalString{Present: true, Value: &b.ID},
		Position:       intPtr(0),
	}); err != nil {
		t.Fatalf("move in failed: %v", err)
	}
	assertOrder(t, repo, nil, "B", "C")

	if _, err := svc.MoveFolder(ctx, a.ID, &services.MoveFolderRequest{
		TargetParentID: httputil.OptionalString{Present: true, Value: nil},
		Position:       intPtr(0),
	}); err != nil {
		t.Fatalf("move back failed: %v", err)
	}
	assertOrder(t, repo, nil, "A", "B", "C")
}

func TestMoveFolderRejectsCycles(t *testing.T) {
	svc, _ := newTestFolderService(t)
	ctx := context.Background()

	root := mustCreate(t, svc, "Root", nil)
	mid := mustCreate(t, svc, "Mid", &root.ID)
	leaf := mustCreate(t, svc, "Leaf", &mid.ID)

	tests := []struct {
		name   string
		id     string
		target string
	}{
		{name: "own parent", id: root.ID, target: root.ID},
		{name: "direct child", id: root.ID, target: mid.ID},
		{name: "deep descendant", id: root.ID, target: leaf.ID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.MoveFolder(ctx, tt.id, &services.MoveFolderRequest{
				TargetParentID: httputil.OptionalString{Present: true, Value: &tt.target},
				Position:       intPtr(0),
			})
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("MoveFolder() error = %v, want validation error", err)
			}
		})
	}
}

func TestMoveFolderPositionBounds(t *testing.T) {
	svc, _ := newTestFolderService(t)
	ctx := context.Background()

	a := mustCreate(t, svc, "A", nil)
	mustCreate(t, svc, "B", nil)
	mustCreate(t, svc, "C", nil)

	tests := []struct {
		name     string
		position *int
	}{
		{name: "missing position", position: nil},
		{name: "negative position", position: intPtr(-1)},
		// 3 folders, self excluded: valid insertion indexes are 0..2
		{name: "past the end", position: intPtr(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.MoveFolder(ctx, a.ID, &services.MoveFolderRequest{Position: tt.position})
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("MoveFolder() error = %v, want validation error", err)
			}
		})
	}

	// The boundary itself is allowed: moving to the end slot
	if _, err := svc.MoveFolder(ctx, a.ID, &services.MoveFolderRequest{Position: intPtr(2)}); err != nil {
		t.Fatalf("MoveFolder() to end slot failed: %v", err)
	}
}

func TestMoveFolderNotFound(t *testing.T) {
	svc, _ := newTestFolderService(t)

	_, err := svc.MoveFolder(context.Background(), "no-such-folder", &services.MoveFolderRequest{
		Position: intPtr(0),
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("MoveFolder() error = %v, want not found", err)
	}
}

func TestListProjectFoldersBuildsForest(t *testing.T) {
	svc, _ := newTestFolderService(t)
	ctx := context.Background()

	a := mustCreate(t, svc, "A", nil)
	mustCreate(t, svc, "B", nil)
	a1 := mustCreate(t, svc, "A1", &a.ID)
	mustCreate(t, svc, "A2", &a.ID)
	mustCreate(t, svc, "A1a", &a1.ID)

	forest, err := svc.ListProjectFolders(ctx, testProjectID)
	if err != nil {
		t.Fatalf("ListProjectFolders() failed: %v", err)
	}

	if len(forest.Folders) != 2 {
		t.Fatalf("root count = %d, want 2", len(forest.Folders))
	}
	if forest.Folders[0].Title != "A" || forest.Folders[1].Title != "B" {
		t.Fatalf("root order = %q, %q, want A, B", forest.Folders[0].Title, forest.Folders[1].Title)
	}

	nodeA := forest.Folders[0]
	if len(nodeA.Children) != 2 || nodeA.Children[0].Title != "A1" || nodeA.Children[1].Title != "A2" {
		t.Fatalf("children of A wrong: %+v", nodeA.Children)
	}
	if len(nodeA.Children[0].Children) != 1 || nodeA.Children[0].Children[0].Title != "A1a" {
		t.Fatalf("grandchildren of A wrong: %+v", nodeA.Children[0].Children)
	}
}

func TestListProjectFoldersEmptyProject(t *testing.T) {
	svc, _ := newTestFolderService(t)

	forest, err := svc.ListProjectFolders(context.Background(), testProjectID)
	if err != nil {
		t.Fatalf("ListProjectFolders() failed: %v", err)
	}
	if forest.Folders == nil {
		t.Fatal("empty forest should be an empty slice, not nil")
	}
	if len(forest.Folders) != 0 {
		t.Fatalf("folder count = %d, want 0", len(forest.Folders))
	}
}

func TestGetAncestorPath(t *testing.T) {
	svc, _ := newTestFolderService(t)
	ctx := context.Background()

	root := mustCreate(t, svc, "Root", nil)
	mid := mustCreate(t, svc, "Mid", &root.ID)
	leaf := mustCreate(t, svc, "Leaf", &mid.ID)

	path, err := svc.GetAncestorPath(ctx, leaf.ID)
	if err != nil {
		t.Fatalf("GetAncestorPath() failed: %v", err)
	}

	want := []string{"Root", "Mid", "Leaf"}
	if len(path) != len(want) {
		t.Fatalf("path length = %d, want %d", len(path), len(want))
	}
	for i, title := range want {
		if path[i].Title != title {
			t.Fatalf("path[%d] = %q, want %q", i, path[i].Title, title)
		}
	}

	// A root folder's path is just itself
	rootPath, err := svc.GetAncestorPath(ctx, root.ID)
	if err != nil {
		t.Fatalf("GetAncestorPath(root) failed: %v", err)
	}
	if len(rootPath) != 1 || rootPath[0].Title != "Root" {
		t.Fatalf("root path = %+v, want just Root", rootPath)
	}
}

func TestGetAncestorPathDetectsCorruptChain(t *testing.T) {
	svc, repo := newTestFolderService(t)
	ctx := context.Background()

	a := mustCreate(t, svc, "A", nil)
	b := mustCreate(t, svc, "B", &a.ID)

	// Corrupt the store directly: make A a child of B, forming a cycle the
	// service must refuse to walk forever
	repo.folders[a.ID].ParentFolderID = &b.ID

	_, err := svc.GetAncestorPath(ctx, b.ID)
	if err == nil {
		t.Fatal("GetAncestorPath() on a cyclic chain should fail")
	}
}

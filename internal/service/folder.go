package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"testdeck/internal/config"
	"testdeck/internal/domain"
	"testdeck/internal/domain/models"
	"testdeck/internal/domain/repositories"
	"testdeck/internal/domain/services"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// folderService implements the folder hierarchy manager. All position
// mutations of one reposition run inside a single transaction; the dense
// ordering invariant (positions exactly {0..n-1} per sibling group) holds
// after every committed operation.
type folderService struct {
	folderRepo  repositories.FolderRepository
	projectRepo repositories.ProjectRepository
	txManager   repositories.TransactionManager
	logger      *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo repositories.FolderRepository,
	projectRepo repositories.ProjectRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.FolderService {
	return &folderService{
		folderRepo:  folderRepo,
		projectRepo: projectRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// CreateFolder appends a folder as the last child of the given parent
func (s *folderService) CreateFolder(ctx context.Context, req *services.CreateFolderRequest) (*models.Folder, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	exists, err := s.projectRepo.Exists(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("project %s: %w", req.ProjectID, domain.ErrNotFound)
	}

	if req.ParentFolderID != nil {
		parent, err := s.folderRepo.GetByID(ctx, *req.ParentFolderID)
		if err != nil {
			return nil, fmt.Errorf("parent folder: %w", err)
		}
		if parent.ProjectID != req.ProjectID {
			return nil, fmt.Errorf("%w: parent folder belongs to a different project", domain.ErrValidation)
		}
	}

	now := time.Now()
	folder := &models.Folder{
		ProjectID:      req.ProjectID,
		ParentFolderID: req.ParentFolderID,
		Title:          req.Title,
		CreatedBy:      req.CreatedBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// Append: one past the current maximum position of the sibling group.
	// The max read and the insert share a transaction; the position
	// uniqueness constraint backstops concurrent appends to the same group.
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		maxPos, err := s.folderRepo.MaxPosition(txCtx, req.ProjectID, req.ParentFolderID)
		if err != nil {
			return err
		}
		folder.Position = maxPos + 1

		return s.folderRepo.Create(txCtx, folder)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"title", folder.Title,
		"project_id", folder.ProjectID,
		"parent_folder_id", folder.ParentFolderID,
		"position", folder.Position,
	)

	return folder, nil
}

// RenameFolder updates the title only; position and parent are untouched
func (s *folderService) RenameFolder(ctx context.Context, id string, req *services.RenameFolderRequest) (*models.Folder, error) {
	title := strings.TrimSpace(req.Title)
	if err := validation.Validate(title,
		validation.Required.Error("title is required"),
		validation.Length(1, config.MaxFolderTitleLength),
	); err != nil {
		return nil, fmt.Errorf("%w: title %v", domain.ErrValidation, err)
	}

	folder, err := s.folderRepo.UpdateTitle(ctx, id, title)
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder renamed", "id", folder.ID, "title", folder.Title)

	return folder, nil
}

// MoveFolder relocates a folder to a new parent and/or sibling index.
//
// The reposition runs as one atomic unit: validate, close the gap the folder
// leaves behind in its old sibling group (only when the parent changes), open
// a slot at the requested index in the destination group excluding the moved
// folder itself, then place the folder. Either every shift commits or none
// does.
func (s *folderService) MoveFolder(ctx context.Context, id string, req *services.MoveFolderRequest) (*models.Folder, error) {
	if req.Position == nil {
		return nil, fmt.Errorf("%w: position is required", domain.ErrValidation)
	}
	newPosition := *req.Position
	if newPosition < 0 {
		return nil, fmt.Errorf("%w: position must be a non-negative integer", domain.ErrValidation)
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		folder, err := s.folderRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}

		// Tri-state target parent: absent keeps the current parent,
		// explicit null moves to root level.
		newParent := folder.ParentFolderID
		if req.TargetParentID.Present {
			newParent = req.TargetParentID.Value
		}

		if newParent != nil {
			if *newParent == folder.ID {
				return fmt.Errorf("%w: folder cannot become its own parent", domain.ErrValidation)
			}

			parent, err := s.folderRepo.GetByID(txCtx, *newParent)
			if err != nil {
				return fmt.Errorf("target parent folder: %w", err)
			}
			if parent.ProjectID != folder.ProjectID {
				return fmt.Errorf("%w: target parent folder belongs to a different project", domain.ErrValidation)
			}

			isDescendant, err := s.folderRepo.IsDescendant(txCtx, folder.ID, parent.ID)
			if err != nil {
				return err
			}
			if isDescendant {
				return fmt.Errorf("%w: folder cannot become a child of its own descendant", domain.ErrValidation)
			}
		}

		// The requested position must be a valid insertion index in the
		// destination group, the folder itself not counted.
		siblingCount, err := s.folderRepo.CountSiblings(txCtx, folder.ProjectID, newParent, folder.ID)
		if err != nil {
			return err
		}
		if newPosition > siblingCount {
			return fmt.Errorf("%w: invalid position %d, maximum allowed is %d", domain.ErrValidation, newPosition, siblingCount)
		}

		// Gap closure in the source group first. For a same-parent reorder
		// this transiently collides the moved row with a neighbour; the
		// position uniqueness constraint is deferred to commit, by which
		// point the placement below has resolved it.
		if err := s.folderRepo.ClosePositionGap(txCtx, folder.ProjectID, folder.ParentFolderID, folder.Position); err != nil {
			return err
		}

		// Space-making in the destination group.
		if err := s.folderRepo.OpenPositionGap(txCtx, folder.ProjectID, newParent, newPosition, folder.ID); err != nil {
			return err
		}

		// Placement.
		return s.folderRepo.SetLocation(txCtx, folder.ID, newParent, newPosition)
	})
	if err != nil {
		return nil, err
	}

	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder moved",
		"id", folder.ID,
		"parent_folder_id", folder.ParentFolderID,
		"position", folder.Position,
	)

	return folder, nil
}

// ReorderFolder moves a folder within its current parent. Sugar over
// MoveFolder: an absent target parent keeps the current one.
func (s *folderService) ReorderFolder(ctx context.Context, id string, req *services.ReorderFolderRequest) (*models.Folder, error) {
	return s.MoveFolder(ctx, id, &services.MoveFolderRequest{
		Position: req.Position,
	})
}

// ListProjectFolders returns the project's folder forest, every children
// slice ordered by ascending position
func (s *folderService) ListProjectFolders(ctx context.Context, projectID string) (*models.FolderForest, error) {
	exists, err := s.projectRepo.Exists(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("project %s: %w", projectID, domain.ErrNotFound)
	}

	allFolders, err := s.folderRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	// Two-pass assembly: create all nodes, then connect children to
	// parents. ListByProject orders rows by position, so every children
	// slice comes out position-sorted.
	nodeMap := make(map[string]*models.FolderTreeNode)
	for _, folder := range allFolders {
		nodeMap[folder.ID] = &models.FolderTreeNode{
			ID:             folder.ID,
			Title:          folder.Title,
			ParentFolderID: folder.ParentFolderID,
			Position:       folder.Position,
			CreatedAt:      folder.CreatedAt,
			Children:       []*models.FolderTreeNode{},
		}
	}

	roots := make([]*models.FolderTreeNode, 0)
	for _, folder := range allFolders {
		node := nodeMap[folder.ID]
		if folder.ParentFolderID == nil {
			roots = append(roots, node)
		} else if parent, ok := nodeMap[*folder.ParentFolderID]; ok {
			parent.Children = append(parent.Children, node)
		}
	}

	s.logger.Debug("project folder forest built",
		"project_id", projectID,
		"folder_count", len(allFolders),
	)

	return &models.FolderForest{Folders: roots}, nil
}

// GetAncestorPath returns the path from the root down to and including the
// given folder. The upward walk is capped at the project's folder count so a
// corrupted parent chain fails loudly instead of looping forever.
func (s *folderService) GetAncestorPath(ctx context.Context, id string) ([]models.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	total, err := s.folderRepo.CountByProject(ctx, folder.ProjectID)
	if err != nil {
		return nil, err
	}

	path := []models.Folder{*folder}
	current := folder
	for steps := 0; current.ParentFolderID != nil; steps++ {
		if steps >= total {
			return nil, fmt.Errorf("folder %s: parent chain exceeds project folder count, hierarchy is corrupt", id)
		}

		parent, err := s.folderRepo.GetByID(ctx, *current.ParentFolderID)
		if err != nil {
			return nil, fmt.Errorf("broken parent link at %s: %w", *current.ParentFolderID, err)
		}

		path = append([]models.Folder{*parent}, path...)
		current = parent
	}

	return path, nil
}

// validateCreateRequest validates a folder creation request
func (s *folderService) validateCreateRequest(req *services.CreateFolderRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ProjectID, validation.Required),
		validation.Field(&req.Title,
			validation.Required,
			validation.Length(1, config.MaxFolderTitleLength),
		),
	)
}

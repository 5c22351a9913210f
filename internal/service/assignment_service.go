package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"anoa.com/classcollab/internal/dto"
	"anoa.com/classcollab/internal/model"
	"anoa.com/classcollab/internal/repository"
	"anoa.com/classcollab/pkg/apperror"
	"anoa.com/classcollab/pkg/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssignmentService interface {
	Create(ctx context.Context, groupID, callerID uuid.UUID, req dto.CreateAssignmentRequest) (*model.Assignment, error)
	Get(ctx context.Context, assignmentID uuid.UUID) (*model.Assignment, error)
	ListForGroup(ctx context.Context, groupID uuid.UUID) ([]*model.Assignment, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Assignment, error)
	UpdateWorkDivision(ctx context.Context, assignmentID, callerID uuid.UUID, req dto.UpdateWorkDivisionRequest) (*model.Assignment, error)
	UploadFile(ctx context.Context, assignmentID, uploaderID uuid.UUID, fileName string, file io.Reader) (*model.AssignmentFile, error)
	DeleteFile(ctx context.Context, assignmentID, callerID, uploadID uuid.UUID) error
	ListMyFiles(ctx context.Context, userID uuid.UUID) ([]dto.MyFileEntry, error)
}

type assignmentService struct {
	assignmentRepo repository.AssignmentRepository
	groupRepo      repository.GroupRepository
	userRepo       repository.UserRepository
	fileStorage    storage.FileStorage
	uploadFolder   string
}

func NewAssignmentService(assignmentRepo repository.AssignmentRepository, groupRepo repository.GroupRepository, userRepo repository.UserRepository, fileStorage storage.FileStorage, uploadFolder string) AssignmentService {
	if uploadFolder == "" {
		uploadFolder = "assignments"
	}
	return &assignmentService{
		assignmentRepo: assignmentRepo,
		groupRepo:      groupRepo,
		userRepo:       userRepo,
		fileStorage:    fileStorage,
		uploadFolder:   uploadFolder,
	}
}

// Create stores a new assignment for the group. Only the group's current
// leader may create one. Past deadlines are accepted: backfilling records of
// already-expired work is a valid use.
func (s *assignmentService) Create(ctx context.Context, groupID, callerID uuid.UUID, req dto.CreateAssignmentRequest) (*model.Assignment, error) {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if group.LeaderID != callerID {
		return nil, fmt.Errorf("only the group leader can create assignments: %w", apperror.ErrForbidden)
	}

	division, err := s.buildWorkDivision(ctx, uuid.Nil, req.WorkDivision)
	if err != nil {
		return nil, err
	}

	assignment := &model.Assignment{
		GroupID:      groupID,
		Title:        req.Title,
		Description:  req.Description,
		Deadline:     req.Deadline,
		CreatedByID:  callerID,
		WorkDivision: division,
	}

	if err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		return nil, err
	}
	return s.Get(ctx, assignment.ID)
}

func (s *assignmentService) Get(ctx context.Context, assignmentID uuid.UUID) (*model.Assignment, error) {
	assignment, err := s.assignmentRepo.FindByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("assignment not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return assignment, nil
}

func (s *assignmentService) ListForGroup(ctx context.Context, groupID uuid.UUID) ([]*model.Assignment, error) {
	if _, err := s.loadGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.assignmentRepo.ListByGroup(ctx, groupID)
}

func (s *assignmentService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Assignment, error) {
	groups, err := s.groupRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	groupIDs := make([]uuid.UUID, 0, len(groups))
	for _, g := range groups {
		groupIDs = append(groupIDs, g.ID)
	}
	return s.assignmentRepo.ListByGroupsByDeadline(ctx, groupIDs)
}

// UpdateWorkDivision replaces the entire division wholesale. Leadership is
// re-checked against the group's current state, not cached from creation.
// Listed members must resolve to users but need not currently be group
// members: stale entries for removed members are tolerated as history.
func (s *assignmentService) UpdateWorkDivision(ctx context.Context, assignmentID, callerID uuid.UUID, req dto.UpdateWorkDivisionRequest) (*model.Assignment, error) {
	assignment, err := s.Get(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	group, err := s.loadGroup(ctx, assignment.GroupID)
	if err != nil {
		return nil, err
	}
	if group.LeaderID != callerID {
		return nil, fmt.Errorf("only the group leader can update the work division: %w", apperror.ErrForbidden)
	}

	division, err := s.buildWorkDivision(ctx, assignmentID, req.WorkDivision)
	if err != nil {
		return nil, err
	}

	if err := s.assignmentRepo.ReplaceWorkDivision(ctx, assignmentID, division); err != nil {
		return nil, err
	}
	return s.Get(ctx, assignmentID)
}

// UploadFile appends one submission. Any current group member may upload,
// with no per-member limit; all submissions are retained.
func (s *assignmentService) UploadFile(ctx context.Context, assignmentID, uploaderID uuid.UUID, fileName string, file io.Reader) (*model.AssignmentFile, error) {
	if fileName == "" {
		return nil, fmt.Errorf("file name is required: %w", apperror.ErrValidation)
	}

	assignment, err := s.Get(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	group, err := s.loadGroup(ctx, assignment.GroupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(uploaderID) {
		return nil, fmt.Errorf("only group members can upload files: %w", apperror.ErrForbidden)
	}

	fileURL, err := s.fileStorage.UploadFile(ctx, file, s.uploadFolder, fileName)
	if err != nil {
		return nil, err
	}

	upload := &model.AssignmentFile{
		AssignmentID: assignmentID,
		UserID:       uploaderID,
		FileName:     fileName,
		FileURL:      fileURL,
	}
	if err := s.assignmentRepo.AddUpload(ctx, upload); err != nil {
		return nil, err
	}
	return upload, nil
}

func (s *assignmentService) DeleteFile(ctx context.Context, assignmentID, callerID, uploadID uuid.UUID) error {
	assignment, err := s.Get(ctx, assignmentID)
	if err != nil {
		return err
	}

	upload, err := s.assignmentRepo.FindUpload(ctx, uploadID)
	if err != nil || upload.AssignmentID != assignmentID {
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return fmt.Errorf("file not found: %w", apperror.ErrNotFound)
	}

	group, err := s.loadGroup(ctx, assignment.GroupID)
	if err != nil {
		return err
	}

	isUploader := upload.UserID == callerID
	isLeader := group.LeaderID == callerID
	if !isUploader && !isLeader {
		return fmt.Errorf("only the uploader or the group leader can delete this file: %w", apperror.ErrForbidden)
	}

	deleted, err := s.assignmentRepo.DeleteUpload(ctx, uploadID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("file not found: %w", apperror.ErrNotFound)
	}

	// Best effort: the metadata row is the source of truth, a dangling blob
	// is preferable to a metadata row pointing at nothing.
	if err := s.fileStorage.DeleteFile(ctx, upload.FileURL); err != nil {
		log.Printf("Failed to delete stored file %s: %v", upload.FileURL, err)
	}
	return nil
}

func (s *assignmentService) ListMyFiles(ctx context.Context, userID uuid.UUID) ([]dto.MyFileEntry, error) {
	uploads, err := s.assignmentRepo.ListUploadsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.MyFileEntry, 0, len(uploads))
	for _, upload := range uploads {
		entries = append(entries, dto.MyFileEntry{
			ID:              upload.ID.String(),
			FileName:        upload.FileName,
			FileURL:         upload.FileURL,
			UploadedAt:      upload.CreatedAt,
			AssignmentID:    upload.AssignmentID.String(),
			AssignmentTitle: upload.Assignment.Title,
			GroupName:       upload.Assignment.Group.Name,
		})
	}
	return entries, nil
}

// buildWorkDivision validates and normalizes division entries: members must
// resolve to users, and later entries for the same member replace earlier
// ones so the result carries at most one task per member.
func (s *assignmentService) buildWorkDivision(ctx context.Context, assignmentID uuid.UUID, items []dto.WorkItemRequest) ([]model.WorkItem, error) {
	if len(items) == 0 {
		return nil, nil
	}

	byMember := make(map[uuid.UUID]int)
	division := make([]model.WorkItem, 0, len(items))
	for _, item := range items {
		memberID, err := uuid.Parse(item.MemberID)
		if err != nil {
			return nil, fmt.Errorf("invalid member id %q: %w", item.MemberID, apperror.ErrValidation)
		}
		if idx, ok := byMember[memberID]; ok {
			division[idx].Task = item.Task
			continue
		}
		byMember[memberID] = len(division)
		division = append(division, model.WorkItem{
			AssignmentID: assignmentID,
			MemberID:     memberID,
			Task:         item.Task,
		})
	}

	memberIDs := make([]uuid.UUID, 0, len(byMember))
	for id := range byMember {
		memberIDs = append(memberIDs, id)
	}
	users, err := s.userRepo.FindByIDs(ctx, memberIDs)
	if err != nil {
		return nil, err
	}
	if len(users) != len(memberIDs) {
		return nil, fmt.Errorf("one or more work division members do not exist: %w", apperror.ErrNotFound)
	}

	return division, nil
}

func (s *assignmentService) loadGroup(ctx context.Context, groupID uuid.UUID) (*model.Group, error) {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("group not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return group, nil
}

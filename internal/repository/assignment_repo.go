package repository

import (
	"context"

	"anoa.com/classcollab/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssignmentRepository interface {
	Create(ctx context.Context, assignment *model.Assignment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Assignment, error)
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*model.Assignment, error)
	ListByGroupsByDeadline(ctx context.Context, groupIDs []uuid.UUID) ([]*model.Assignment, error)
	ReplaceWorkDivision(ctx context.Context, assignmentID uuid.UUID, items []model.WorkItem) error
	AddUpload(ctx context.Context, upload *model.AssignmentFile) error
	FindUpload(ctx context.Context, uploadID uuid.UUID) (*model.AssignmentFile, error)
	DeleteUpload(ctx context.Context, uploadID uuid.UUID) (bool, error)
	ListUploadsByUser(ctx context.Context, userID uuid.UUID) ([]*model.AssignmentFile, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *model.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Assignment, error) {
	var assignment model.Assignment
	if err := r.db.WithContext(ctx).
		Preload("Group").
		Preload("CreatedBy").
		Preload("WorkDivision.Member").
		Preload("Uploads", func(db *gorm.DB) *gorm.DB {
			return db.Order("assignment_files.created_at ASC")
		}).
		Preload("Uploads.User").
		First(&assignment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*model.Assignment, error) {
	var assignments []*model.Assignment
	if err := r.db.WithContext(ctx).
		Preload("CreatedBy").
		Preload("WorkDivision.Member").
		Preload("Uploads.User").
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *assignmentRepository) ListByGroupsByDeadline(ctx context.Context, groupIDs []uuid.UUID) ([]*model.Assignment, error) {
	var assignments []*model.Assignment
	if len(groupIDs) == 0 {
		return assignments, nil
	}
	if err := r.db.WithContext(ctx).
		Preload("Group").
		Preload("CreatedBy").
		Where("group_id IN ?", groupIDs).
		Order("deadline ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// ReplaceWorkDivision swaps the whole division wholesale, not a merge.
func (r *assignmentRepository) ReplaceWorkDivision(ctx context.Context, assignmentID uuid.UUID, items []model.WorkItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assignment_id = ?", assignmentID).Delete(&model.WorkItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

func (r *assignmentRepository) AddUpload(ctx context.Context, upload *model.AssignmentFile) error {
	return r.db.WithContext(ctx).Create(upload).Error
}

func (r *assignmentRepository) FindUpload(ctx context.Context, uploadID uuid.UUID) (*model.AssignmentFile, error) {
	var upload model.AssignmentFile
	if err := r.db.WithContext(ctx).
		Preload("User").
		First(&upload, "id = ?", uploadID).Error; err != nil {
		return nil, err
	}
	return &upload, nil
}

func (r *assignmentRepository) DeleteUpload(ctx context.Context, uploadID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", uploadID).Delete(&model.AssignmentFile{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *assignmentRepository) ListUploadsByUser(ctx context.Context, userID uuid.UUID) ([]*model.AssignmentFile, error) {
	var uploads []*model.AssignmentFile
	if err := r.db.WithContext(ctx).
		Preload("Assignment").
		Preload("Assignment.Group").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&uploads).Error; err != nil {
		return nil, err
	}
	return uploads, nil
}

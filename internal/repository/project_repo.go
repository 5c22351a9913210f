package repository

import (
	"context"

	"anoa.com/classcollab/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
	ListByClass(ctx context.Context, classID uuid.UUID) ([]*model.Project, error)
	ListByClassByDeadline(ctx context.Context, classID uuid.UUID) ([]*model.Project, error)
	Update(ctx context.Context, project *model.Project) error
	AddFile(ctx context.Context, file *model.ProjectFile) error

	CreateAnnouncement(ctx context.Context, announcement *model.Announcement) error
	ListAnnouncementsByClass(ctx context.Context, classID uuid.UUID) ([]*model.Announcement, error)
	ListAnnouncementsByTeacher(ctx context.Context, teacherID uuid.UUID) ([]*model.Announcement, error)
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *projectRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).
		Preload("Teacher").
		Preload("Files").
		First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) ListByClass(ctx context.Context, classID uuid.UUID) ([]*model.Project, error) {
	var projects []*model.Project
	if err := r.db.WithContext(ctx).
		Preload("Teacher").
		Preload("Files").
		Where("class_id = ?", classID).
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepository) ListByClassByDeadline(ctx context.Context, classID uuid.UUID) ([]*model.Project, error) {
	var projects []*model.Project
	if err := r.db.WithContext(ctx).
		Preload("Class").
		Where("class_id = ?", classID).
		Order("deadline ASC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepository) Update(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

func (r *projectRepository) AddFile(ctx context.Context, file *model.ProjectFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *projectRepository) CreateAnnouncement(ctx context.Context, announcement *model.Announcement) error {
	return r.db.WithContext(ctx).Create(announcement).Error
}

func (r *projectRepository) ListAnnouncementsByClass(ctx context.Context, classID uuid.UUID) ([]*model.Announcement, error) {
	var announcements []*model.Announcement
	if err := r.db.WithContext(ctx).
		Preload("Teacher").
		Where("class_id = ?", classID).
		Order("created_at DESC").
		Find(&announcements).Error; err != nil {
		return nil, err
	}
	return announcements, nil
}

func (r *projectRepository) ListAnnouncementsByTeacher(ctx context.Context, teacherID uuid.UUID) ([]*model.Announcement, error) {
	var announcements []*model.Announcement
	if err := r.db.WithContext(ctx).
		Preload("Class").
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Find(&announcements).Error; err != nil {
		return nil, err
	}
	return announcements, nil
}

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

type ProjectService interface {
	Create(ctx context.Context, classID, teacherID uuid.UUID, req dto.CreateProjectRequest) (*model.Project, error)
	Get(ctx context.Context, projectID uuid.UUID) (*model.Project, error)
	ListForClass(ctx context.Context, classID uuid.UUID) ([]*model.Project, error)
	Update(ctx context.Context, projectID, callerID uuid.UUID, req dto.UpdateProjectRequest) (*model.Project, error)
	UploadFile(ctx context.Context, projectID, callerID uuid.UUID, fileName string, file io.Reader) (*model.ProjectFile, error)

	Announce(ctx context.Context, classID, teacherID uuid.UUID, req dto.CreateAnnouncementRequest) (*model.Announcement, error)
	ListAnnouncementsForClass(ctx context.Context, classID uuid.UUID) ([]*model.Announcement, error)
	ListAnnouncementsForTeacher(ctx context.Context, teacherID uuid.UUID) ([]*model.Announcement, error)
}

type projectService struct {
	projectRepo  repository.ProjectRepository
	classRepo    repository.ClassRepository
	fileStorage  storage.FileStorage
	uploadFolder string
}

func NewProjectService(projectRepo repository.ProjectRepository, classRepo repository.ClassRepository, fileStorage storage.FileStorage, uploadFolder string) ProjectService {
	if uploadFolder == "" {
		uploadFolder = "projects"
	}
	return &projectService{
		projectRepo:  projectRepo,
		classRepo:    classRepo,
		fileStorage:  fileStorage,
		uploadFolder: uploadFolder,
	}
}

// Create publishes a project to the class. An announcement of type "project"
// is written alongside it so the class feed carries the new deadline without
// a separate teacher action. The announcement is best effort: a failure there
// does not roll back the project.
func (s *projectService) Create(ctx context.Context, classID, teacherID uuid.UUID, req dto.CreateProjectRequest) (*model.Project, error) {
	if err := s.requireClassTeacher(ctx, classID, teacherID); err != nil {
		return nil, err
	}

	project := &model.Project{
		ClassID:     classID,
		TeacherID:   teacherID,
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	announcement := &model.Announcement{
		ClassID:   classID,
		TeacherID: teacherID,
		Title:     fmt.Sprintf("New project: %s", project.Title),
		Content:   project.Description,
		Type:      "project",
		ProjectID: &project.ID,
	}
	if err := s.projectRepo.CreateAnnouncement(ctx, announcement); err != nil {
		log.Printf("Failed to create announcement for project %s: %v", project.ID, err)
	}

	return s.Get(ctx, project.ID)
}

func (s *projectService) Get(ctx context.Context, projectID uuid.UUID) (*model.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("project not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return project, nil
}

func (s *projectService) ListForClass(ctx context.Context, classID uuid.UUID) ([]*model.Project, error) {
	if _, err := s.classRepo.FindByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("class not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return s.projectRepo.ListByClass(ctx, classID)
}

// Update applies partial changes. Only the teacher who created the project
// may modify it.
func (s *projectService) Update(ctx context.Context, projectID, callerID uuid.UUID, req dto.UpdateProjectRequest) (*model.Project, error) {
	project, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if project.TeacherID != callerID {
		return nil, fmt.Errorf("only the project's teacher can update it: %w", apperror.ErrForbidden)
	}

	if req.Title != nil {
		project.Title = *req.Title
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Deadline != nil {
		project.Deadline = *req.Deadline
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}
	return s.Get(ctx, projectID)
}

func (s *projectService) UploadFile(ctx context.Context, projectID, callerID uuid.UUID, fileName string, file io.Reader) (*model.ProjectFile, error) {
	if fileName == "" {
		return nil, fmt.Errorf("file name is required: %w", apperror.ErrValidation)
	}

	project, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.TeacherID != callerID {
		return nil, fmt.Errorf("only the project's teacher can attach files: %w", apperror.ErrForbidden)
	}

	fileURL, err := s.fileStorage.UploadFile(ctx, file, s.uploadFolder, fileName)
	if err != nil {
		return nil, err
	}

	projectFile := &model.ProjectFile{
		ProjectID: projectID,
		FileName:  fileName,
		FileURL:   fileURL,
	}
	if err := s.projectRepo.AddFile(ctx, projectFile); err != nil {
		return nil, err
	}
	return projectFile, nil
}

func (s *projectService) Announce(ctx context.Context, classID, teacherID uuid.UUID, req dto.CreateAnnouncementRequest) (*model.Announcement, error) {
	if err := s.requireClassTeacher(ctx, classID, teacherID); err != nil {
		return nil, err
	}

	announcement := &model.Announcement{
		ClassID:   classID,
		TeacherID: teacherID,
		Title:     req.Title,
		Content:   req.Content,
		Type:      "general",
	}
	if err := s.projectRepo.CreateAnnouncement(ctx, announcement); err != nil {
		return nil, err
	}
	return announcement, nil
}

func (s *projectService) ListAnnouncementsForClass(ctx context.Context, classID uuid.UUID) ([]*model.Announcement, error) {
	return s.projectRepo.ListAnnouncementsByClass(ctx, classID)
}

func (s *projectService) ListAnnouncementsForTeacher(ctx context.Context, teacherID uuid.UUID) ([]*model.Announcement, error) {
	return s.projectRepo.ListAnnouncementsByTeacher(ctx, teacherID)
}

func (s *projectService) requireClassTeacher(ctx context.Context, classID, userID uuid.UUID) error {
	class, err := s.classRepo.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("class not found: %w", apperror.ErrNotFound)
		}
		return err
	}
	if class.TeacherID != userID {
		return fmt.Errorf("only the class teacher can do this: %w", apperror.ErrForbidden)
	}
	return nil
}

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

type ClassService interface {
	Create(ctx context.Context, teacherID uuid.UUID, req dto.CreateClassRequest) (*model.Class, error)
	Get(ctx context.Context, classID uuid.UUID) (*model.Class, error)
	ListForTeacher(ctx context.Context, teacherID uuid.UUID) ([]*model.Class, error)
	ListForStudent(ctx context.Context, studentID uuid.UUID) ([]*model.Class, error)
	JoinByCode(ctx context.Context, userID uuid.UUID, code string) (*model.Class, error)
	RemoveStudent(ctx context.Context, classID, callerID, studentID uuid.UUID) error

	UploadFile(ctx context.Context, classID, callerID uuid.UUID, fileName string, file io.Reader) (*model.ClassFile, error)
	ListFiles(ctx context.Context, classID uuid.UUID) ([]*model.ClassFile, error)
	DeleteFile(ctx context.Context, classID, callerID, fileID uuid.UUID) error
}

type classService struct {
	classRepo    repository.ClassRepository
	userRepo     repository.UserRepository
	fileStorage  storage.FileStorage
	uploadFolder string
}

func NewClassService(classRepo repository.ClassRepository, userRepo repository.UserRepository, fileStorage storage.FileStorage, uploadFolder string) ClassService {
	if uploadFolder == "" {
		uploadFolder = "class-files"
	}
	return &classService{
		classRepo:    classRepo,
		userRepo:     userRepo,
		fileStorage:  fileStorage,
		uploadFolder: uploadFolder,
	}
}

func (s *classService) Create(ctx context.Context, teacherID uuid.UUID, req dto.CreateClassRequest) (*model.Class, error) {
	teacher, err := s.userRepo.FindByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	if !teacher.IsTeacher {
		return nil, fmt.Errorf("only teachers can create a class: %w", apperror.ErrForbidden)
	}

	if _, err := s.classRepo.FindByCode(ctx, req.Code); err == nil {
		return nil, fmt.Errorf("class code already exists: %w", apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	class := &model.Class{
		Name:        req.Name,
		Description: req.Description,
		Code:        req.Code,
		TeacherID:   teacherID,
	}
	if err := s.classRepo.Create(ctx, class); err != nil {
		return nil, err
	}
	return class, nil
}

func (s *classService) Get(ctx context.Context, classID uuid.UUID) (*model.Class, error) {
	class, err := s.classRepo.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("class not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return class, nil
}

func (s *classService) ListForTeacher(ctx context.Context, teacherID uuid.UUID) ([]*model.Class, error) {
	return s.classRepo.ListByTeacher(ctx, teacherID)
}

func (s *classService) ListForStudent(ctx context.Context, studentID uuid.UUID) ([]*model.Class, error) {
	return s.classRepo.ListByStudent(ctx, studentID)
}

// JoinByCode enrolls the caller in the class with the given join code.
// Joining a class you already belong to is not an error: the class is
// returned either way.
func (s *classService) JoinByCode(ctx context.Context, userID uuid.UUID, code string) (*model.Class, error) {
	class, err := s.classRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invalid join code: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if _, err := s.classRepo.AddStudent(ctx, class.ID, userID); err != nil {
		return nil, err
	}
	return class, nil
}

func (s *classService) RemoveStudent(ctx context.Context, classID, callerID, studentID uuid.UUID) error {
	class, err := s.Get(ctx, classID)
	if err != nil {
		return err
	}

	if class.TeacherID != callerID {
		return fmt.Errorf("only the class teacher can remove students: %w", apperror.ErrForbidden)
	}

	return s.classRepo.RemoveStudent(ctx, classID, studentID)
}

// UploadFile shares course material with the class. Only the teacher uploads;
// students read through ListFiles.
func (s *classService) UploadFile(ctx context.Context, classID, callerID uuid.UUID, fileName string, file io.Reader) (*model.ClassFile, error) {
	if fileName == "" {
		return nil, fmt.Errorf("file name is required: %w", apperror.ErrValidation)
	}

	class, err := s.Get(ctx, classID)
	if err != nil {
		return nil, err
	}
	if class.TeacherID != callerID {
		return nil, fmt.Errorf("only the class teacher can upload class files: %w", apperror.ErrForbidden)
	}

	fileURL, err := s.fileStorage.UploadFile(ctx, file, s.uploadFolder, fileName)
	if err != nil {
		return nil, err
	}

	classFile := &model.ClassFile{
		ClassID:    classID,
		UploaderID: callerID,
		FileName:   fileName,
		FileURL:    fileURL,
	}
	if err := s.classRepo.AddFile(ctx, classFile); err != nil {
		return nil, err
	}
	return classFile, nil
}

func (s *classService) ListFiles(ctx context.Context, classID uuid.UUID) ([]*model.ClassFile, error) {
	if _, err := s.Get(ctx, classID); err != nil {
		return nil, err
	}
	return s.classRepo.ListFiles(ctx, classID)
}

func (s *classService) DeleteFile(ctx context.Context, classID, callerID, fileID uuid.UUID) error {
	class, err := s.Get(ctx, classID)
	if err != nil {
		return err
	}
	if class.TeacherID != callerID {
		return fmt.Errorf("only the class teacher can delete class files: %w", apperror.ErrForbidden)
	}

	file, err := s.classRepo.FindFile(ctx, fileID)
	if err != nil || file.ClassID != classID {
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return fmt.Errorf("file not found: %w", apperror.ErrNotFound)
	}

	deleted, err := s.classRepo.DeleteFile(ctx, fileID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("file not found: %w", apperror.ErrNotFound)
	}

	// Best effort: the metadata row is the source of truth.
	if err := s.fileStorage.DeleteFile(ctx, file.FileURL); err != nil {
		log.Printf("Failed to delete stored file %s: %v", file.FileURL, err)
	}
	return nil
}

package repository

import (
	"context"

	"anoa.com/classcollab/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ClassRepository interface {
	Create(ctx context.Context, class *model.Class) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Class, error)
	FindByCode(ctx context.Context, code string) (*model.Class, error)
	ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]*model.Class, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*model.Class, error)
	AddStudent(ctx context.Context, classID, userID uuid.UUID) (bool, error)
	RemoveStudent(ctx context.Context, classID, userID uuid.UUID) error
	IsStudent(ctx context.Context, classID, userID uuid.UUID) (bool, error)

	AddFile(ctx context.Context, file *model.ClassFile) error
	ListFiles(ctx context.Context, classID uuid.UUID) ([]*model.ClassFile, error)
	FindFile(ctx context.Context, fileID uuid.UUID) (*model.ClassFile, error)
	DeleteFile(ctx context.Context, fileID uuid.UUID) (bool, error)
}

type classRepository struct {
	db *gorm.DB
}

func NewClassRepository(db *gorm.DB) ClassRepository {
	return &classRepository{db: db}
}

func (r *classRepository) Create(ctx context.Context, class *model.Class) error {
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *classRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Class, error) {
	var class model.Class
	if err := r.db.WithContext(ctx).
		Preload("Teacher").
		Preload("Students", func(db *gorm.DB) *gorm.DB {
			// roster display order = join order
			return db.Order("class_students.id ASC")
		}).
		Preload("Students.User").
		First(&class, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *classRepository) FindByCode(ctx context.Context, code string) (*model.Class, error) {
	var class model.Class
	if err := r.db.WithContext(ctx).First(&class, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *classRepository) ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]*model.Class, error) {
	var classes []*model.Class
	if err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Find(&classes).Error; err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *classRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*model.Class, error) {
	var classes []*model.Class
	if err := r.db.WithContext(ctx).
		Joins("JOIN class_students cs ON cs.class_id = classes.id").
		Where("cs.user_id = ?", studentID).
		Order("cs.id ASC").
		Find(&classes).Error; err != nil {
		return nil, err
	}
	return classes, nil
}

// AddStudent enrolls the user, reporting false when the user was already on
// the roster. The unique (class_id, user_id) constraint makes the insert
// idempotent.
func (r *classRepository) AddStudent(ctx context.Context, classID, userID uuid.UUID) (bool, error) {
	entry := model.ClassStudent{ClassID: classID, UserID: userID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entry)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *classRepository) RemoveStudent(ctx context.Context, classID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("class_id = ? AND user_id = ?", classID, userID).
		Delete(&model.ClassStudent{}).Error
}

func (r *classRepository) AddFile(ctx context.Context, file *model.ClassFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *classRepository) ListFiles(ctx context.Context, classID uuid.UUID) ([]*model.ClassFile, error) {
	var files []*model.ClassFile
	if err := r.db.WithContext(ctx).
		Preload("Uploader").
		Where("class_id = ?", classID).
		Order("created_at DESC").
		Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

func (r *classRepository) FindFile(ctx context.Context, fileID uuid.UUID) (*model.ClassFile, error) {
	var file model.ClassFile
	if err := r.db.WithContext(ctx).First(&file, "id = ?", fileID).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *classRepository) DeleteFile(ctx context.Context, fileID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ?", fileID).
		Delete(&model.ClassFile{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *classRepository) IsStudent(ctx context.Context, classID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.ClassStudent{}).
		Where("class_id = ? AND user_id = ?", classID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

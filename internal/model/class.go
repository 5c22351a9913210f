package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Class struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	// Code is the teacher-chosen join code students use to enroll themselves.
	Code      string         `gorm:"size:50;uniqueIndex;not null" json:"code"`
	TeacherID uuid.UUID      `gorm:"type:uuid;not null" json:"teacher_id"`
	Teacher   User           `gorm:"constraint:OnDelete:CASCADE" json:"teacher,omitempty"`
	Students  []ClassStudent `gorm:"foreignKey:ClassID" json:"students,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (c *Class) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

// ClassFile is course material the teacher shares with the whole class.
type ClassFile struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClassID    uuid.UUID `gorm:"type:uuid;not null;index" json:"class_id"`
	UploaderID uuid.UUID `gorm:"type:uuid;not null" json:"uploader_id"`
	Uploader   User      `gorm:"constraint:OnDelete:CASCADE" json:"uploader,omitempty"`
	FileName   string    `gorm:"size:255;not null" json:"file_name"`
	FileURL    string    `gorm:"type:text;not null" json:"file_url"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}

func (f *ClassFile) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID, err = uuid.NewV7()
	}
	return
}

// ClassStudent is one roster entry. The autoincrement ID doubles as the
// display order: students are listed in the order they joined.
type ClassStudent struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	ClassID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_class_student" json:"class_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_class_student" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

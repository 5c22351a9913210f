package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is a class-level deadline item created by the class teacher.
type Project struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ClassID     uuid.UUID     `gorm:"type:uuid;not null;index" json:"class_id"`
	Class       Class         `gorm:"constraint:OnDelete:CASCADE" json:"class,omitempty"`
	TeacherID   uuid.UUID     `gorm:"type:uuid;not null" json:"teacher_id"`
	Teacher     User          `gorm:"constraint:OnDelete:CASCADE" json:"teacher,omitempty"`
	Title       string        `gorm:"size:255;not null" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	Deadline    time.Time     `gorm:"not null" json:"deadline"`
	Files       []ProjectFile `gorm:"foreignKey:ProjectID" json:"files,omitempty"`
	CreatedAt   time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}

type ProjectFile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	FileName  string    `gorm:"size:255;not null" json:"file_name"`
	FileURL   string    `gorm:"type:text;not null" json:"file_url"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}

func (f *ProjectFile) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID, err = uuid.NewV7()
	}
	return
}

// Announcement is a class-wide notice. Project announcements carry a link to
// the project they were generated for.
type Announcement struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ClassID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"class_id"`
	Class     Class      `gorm:"constraint:OnDelete:CASCADE" json:"class,omitempty"`
	TeacherID uuid.UUID  `gorm:"type:uuid;not null" json:"teacher_id"`
	Teacher   User       `gorm:"constraint:OnDelete:CASCADE" json:"teacher,omitempty"`
	Title     string     `gorm:"size:255;not null" json:"title"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	Type      string     `gorm:"size:20;not null;default:general" json:"type"` // 'general' | 'project'
	ProjectID *uuid.UUID `gorm:"type:uuid" json:"project_id,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (a *Announcement) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}

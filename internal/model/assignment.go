package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Assignment belongs to exactly one group; GroupID is immutable after
// creation. CreatedBy must be the group leader at creation time and is not
// re-validated later.
type Assignment struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID      uuid.UUID        `gorm:"type:uuid;not null;index" json:"group_id"`
	Group        Group            `gorm:"constraint:OnDelete:CASCADE" json:"group,omitempty"`
	Title        string           `gorm:"size:255;not null" json:"title"`
	Description  string           `gorm:"type:text;not null" json:"description"`
	Deadline     time.Time        `gorm:"not null" json:"deadline"`
	CreatedByID  uuid.UUID        `gorm:"type:uuid;not null" json:"created_by_id"`
	CreatedBy    User             `gorm:"constraint:OnDelete:CASCADE" json:"created_by,omitempty"`
	WorkDivision []WorkItem       `gorm:"foreignKey:AssignmentID" json:"work_division,omitempty"`
	Uploads      []AssignmentFile `gorm:"foreignKey:AssignmentID" json:"uploads,omitempty"`
	CreatedAt    time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

func (a *Assignment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}

// WorkItem maps one member to a free-text task. At most one row per member
// per assignment; later writes for the same member replace, not append.
type WorkItem struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	AssignmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_work_item" json:"assignment_id"`
	MemberID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_work_item" json:"member_id"`
	Member       User      `gorm:"constraint:OnDelete:CASCADE" json:"member,omitempty"`
	Task         string    `gorm:"type:text" json:"task"`
}

// AssignmentFile is one submission. The list is append-only, individually
// deletable, with no per-member limit.
type AssignmentFile struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AssignmentID uuid.UUID  `gorm:"type:uuid;not null;index" json:"assignment_id"`
	Assignment   Assignment `gorm:"constraint:OnDelete:CASCADE" json:"assignment,omitempty"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null" json:"user_id"`
	User         User      `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	FileName     string    `gorm:"size:255;not null" json:"file_name"`
	FileURL      string    `gorm:"type:text;not null" json:"file_url"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}

func (f *AssignmentFile) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID, err = uuid.NewV7()
	}
	return
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message covers group, class and private chat. Exactly one of GroupID,
// ClassID and RecipientID is set per row; never two.
//
// Seq is a server-assigned, strictly increasing sequence used to break ties
// when CreatedAt timestamps collide. Retrieval is always chronological
// ascending by (created_at, seq).
type Message struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Seq         int64      `gorm:"autoIncrement;uniqueIndex" json:"seq"`
	SenderID    uuid.UUID  `gorm:"type:uuid;not null" json:"sender_id"`
	Sender      User       `gorm:"constraint:OnDelete:CASCADE" json:"sender,omitempty"`
	GroupID     *uuid.UUID `gorm:"type:uuid;index:idx_messages_group" json:"group_id,omitempty"`
	ClassID     *uuid.UUID `gorm:"type:uuid;index:idx_messages_class" json:"class_id,omitempty"`
	RecipientID *uuid.UUID `gorm:"type:uuid;index:idx_messages_recipient" json:"recipient_id,omitempty"`
	Body        string     `gorm:"type:text;not null" json:"body"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID, err = uuid.NewV7()
	}
	return
}

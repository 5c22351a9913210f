package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationRejected = "rejected"
)

// Group names are not unique. ClassID is nullable: a group may be standalone,
// not tied to any class. The leader is set at creation and never transferred.
type Group struct {
	ID           uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string             `gorm:"size:255;not null" json:"name"`
	ClassID      *uuid.UUID         `gorm:"type:uuid" json:"class_id,omitempty"`
	Class        *Class             `gorm:"constraint:OnDelete:SET NULL" json:"class,omitempty"`
	LeaderID     uuid.UUID          `gorm:"type:uuid;not null" json:"leader_id"`
	Leader       User               `gorm:"constraint:OnDelete:CASCADE" json:"leader,omitempty"`
	Members      []GroupMember      `gorm:"foreignKey:GroupID" json:"members,omitempty"`
	JoinRequests []GroupJoinRequest `gorm:"foreignKey:GroupID" json:"join_requests,omitempty"`
	Invitations  []GroupInvitation  `gorm:"foreignKey:GroupID" json:"invitations,omitempty"`
	CreatedAt    time.Time          `gorm:"autoCreateTime" json:"created_at"`
}

func (g *Group) BeforeCreate(tx *gorm.DB) (err error) {
	if g.ID == uuid.Nil {
		g.ID, err = uuid.NewV7()
	}
	return
}

// HasMember reports whether userID is the leader or appears in the loaded
// member rows.
func (g *Group) HasMember(userID uuid.UUID) bool {
	if g.LeaderID == userID {
		return true
	}
	for _, m := range g.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// GroupMember rows carry a unique (group_id, user_id) constraint so that
// membership adds can be idempotent inserts rather than blind appends.
type GroupMember struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	GroupID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_group_member" json:"group_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_group_member" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

type GroupJoinRequest struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	GroupID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_group_join_request" json:"group_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_group_join_request" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"requested_at"`
}

// GroupInvitation is an append-only log: past decisions are retained per
// user, and only the latest pending entry per user is actionable.
type GroupInvitation struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"group_id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User        User       `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Status      string     `gorm:"size:20;not null;default:pending" json:"status"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

func (i *GroupInvitation) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID, err = uuid.NewV7()
	}
	return
}

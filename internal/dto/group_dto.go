package dto

import (
	"time"

	"anoa.com/classcollab/internal/model"
	"github.com/google/uuid"
)

type CreateGroupRequest struct {
	Name      string   `json:"name" binding:"required,min=2,max=255"`
	ClassID   *string  `json:"class_id" binding:"omitempty,uuid"`
	MemberIDs []string `json:"member_ids" binding:"omitempty,dive,uuid"`
}

type HandleJoinRequestRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Action string `json:"action" binding:"required,oneof=accept reject"`
}

type InviteMemberRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

type HandleInvitationRequest struct {
	Action string `json:"action" binding:"required,oneof=accept reject"`
}

type AddMemberRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

type InvitationEntry struct {
	ID          uuid.UUID   `json:"id"`
	User        UserSummary `json:"user"`
	Status      string      `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	RespondedAt *time.Time  `json:"responded_at,omitempty"`
}

type GroupResponse struct {
	ID           uuid.UUID         `json:"id"`
	Name         string            `json:"name"`
	ClassID      *uuid.UUID        `json:"class_id,omitempty"`
	ClassName    string            `json:"class_name,omitempty"`
	Leader       UserSummary       `json:"leader"`
	Members      []UserSummary     `json:"members"`
	JoinRequests []UserSummary     `json:"join_requests"`
	Invitations  []InvitationEntry `json:"invitations"`
	CreatedAt    time.Time         `json:"created_at"`
}

func NewGroupResponse(g *model.Group) GroupResponse {
	resp := GroupResponse{
		ID:           g.ID,
		Name:         g.Name,
		ClassID:      g.ClassID,
		Leader:       NewUserSummary(&g.Leader),
		Members:      make([]UserSummary, 0, len(g.Members)),
		JoinRequests: make([]UserSummary, 0, len(g.JoinRequests)),
		Invitations:  make([]InvitationEntry, 0, len(g.Invitations)),
		CreatedAt:    g.CreatedAt,
	}
	if g.Class != nil {
		resp.ClassName = g.Class.Name
	}
	for i := range g.Members {
		resp.Members = append(resp.Members, NewUserSummary(&g.Members[i].User))
	}
	for i := range g.JoinRequests {
		resp.JoinRequests = append(resp.JoinRequests, NewUserSummary(&g.JoinRequests[i].User))
	}
	for i := range g.Invitations {
		inv := &g.Invitations[i]
		resp.Invitations = append(resp.Invitations, InvitationEntry{
			ID:          inv.ID,
			User:        NewUserSummary(&inv.User),
			Status:      inv.Status,
			CreatedAt:   inv.CreatedAt,
			RespondedAt: inv.RespondedAt,
		})
	}
	return resp
}

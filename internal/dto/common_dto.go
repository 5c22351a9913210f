package dto

import (
	"time"

	"anoa.com/classcollab/internal/model"
	"github.com/google/uuid"
)

type UserSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	SRN       *string   `json:"srn,omitempty"`
	IsTeacher bool      `json:"is_teacher"`
}

func NewUserSummary(u *model.User) UserSummary {
	return UserSummary{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		SRN:       u.SRN,
		IsTeacher: u.IsTeacher,
	}
}

type MessageResponse struct {
	ID        uuid.UUID   `json:"id"`
	Seq       int64       `json:"seq"`
	Sender    UserSummary `json:"sender"`
	Body      string      `json:"body"`
	CreatedAt time.Time   `json:"created_at"`
}

func NewMessageResponse(m *model.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		Seq:       m.Seq,
		Sender:    NewUserSummary(&m.Sender),
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}

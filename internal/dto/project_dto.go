package dto

import "time"

type CreateProjectRequest struct {
	Title       string    `json:"title" binding:"required,min=2,max=255"`
	Description string    `json:"description"`
	Deadline    time.Time `json:"deadline" binding:"required"`
}

type UpdateProjectRequest struct {
	Title       *string    `json:"title" binding:"omitempty,min=2,max=255"`
	Description *string    `json:"description"`
	Deadline    *time.Time `json:"deadline"`
}

type CreateAnnouncementRequest struct {
	Title   string `json:"title" binding:"required,min=2,max=255"`
	Content string `json:"content" binding:"required"`
}

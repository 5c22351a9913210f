package dto

import "time"

type WorkItemRequest struct {
	MemberID string `json:"member_id" binding:"required,uuid"`
	Task     string `json:"task" binding:"required"`
}

type CreateAssignmentRequest struct {
	Title       string    `json:"title" binding:"required,min=2,max=255"`
	Description string    `json:"description" binding:"required"`
	// Past deadlines are accepted: backfill and record-keeping are valid uses.
	Deadline     time.Time         `json:"deadline" binding:"required"`
	WorkDivision []WorkItemRequest `json:"work_division" binding:"omitempty,dive"`
}

type UpdateWorkDivisionRequest struct {
	// The division is replaced wholesale, not merged.
	WorkDivision []WorkItemRequest `json:"work_division" binding:"dive"`
}

type MyFileEntry struct {
	ID              string    `json:"id"`
	FileName        string    `json:"file_name"`
	FileURL         string    `json:"file_url"`
	UploadedAt      time.Time `json:"uploaded_at"`
	AssignmentID    string    `json:"assignment_id"`
	AssignmentTitle string    `json:"assignment_title"`
	GroupName       string    `json:"group_name"`
}

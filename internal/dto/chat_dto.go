package dto

import "time"

type SendMessageRequest struct {
	Body string `json:"body" binding:"required,min=1"`
}

type FetchMessagesQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=200"`
}

type RecentChatEntry struct {
	User            UserSummary      `json:"user"`
	LastMessage     *MessageResponse `json:"last_message,omitempty"`
	LastMessageTime time.Time        `json:"last_message_time"`
}

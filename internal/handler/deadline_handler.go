package handler

import (
	"net/http"

	"anoa.com/classcollab/internal/service"
	"anoa.com/classcollab/pkg/response"
	"github.com/gin-gonic/gin"
)

type DeadlineHandler struct {
	service service.DeadlineService
}

func NewDeadlineHandler(service service.DeadlineService) *DeadlineHandler {
	return &DeadlineHandler{service: service}
}

// GetMyDeadlines returns the caller's merged deadline feed, ascending.
func (h *DeadlineHandler) GetMyDeadlines(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	deadlines, err := h.service.StudentDeadlines(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": deadlines})
}

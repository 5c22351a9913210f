package dto

type CreateClassRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=255"`
	Description string `json:"description"`
	Code        string `json:"code" binding:"required,min=4,max=50"`
}

type JoinClassRequest struct {
	Code string `json:"code" binding:"required"`
}

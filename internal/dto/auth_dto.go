package dto

type RegisterRequest struct {
	Name     string  `json:"name" binding:"required,min=2,max=100"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=6"`
	SRN      *string `json:"srn" binding:"omitempty,min=3,max=50"`
	// IsTeacher is immutable per account after registration.
	IsTeacher bool `json:"is_teacher"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}

type LookupBySRNsRequest struct {
	SRNs []string `json:"srns" binding:"required,min=1,dive,required"`
}

type SearchUsersQuery struct {
	Query string `form:"q" binding:"required,min=1"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=50"`
}

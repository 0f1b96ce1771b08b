package handler

// RegisterRequest represents the request body for sign-up
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50" example:"jane"`
	Email    string `json:"email" binding:"required,email,max=255" example:"jane@example.com"`
	Password string `json:"password" binding:"required,min=6,max=72" example:"secret123"`
	FullName string `json:"full_name" binding:"max=100" example:"Jane Doe"`
	Phone    string `json:"phone" binding:"max=20" example:"+84901234567"`
	Role     string `json:"role" binding:"omitempty,role" example:"buyer"`
}

// LoginRequest represents the request body for user login.
// Identifier accepts an email or a username.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required,max=255" example:"jane@example.com"`
	Password   string `json:"password" binding:"required,max=72" example:"secret123"`
}

// LogoutResponse represents the response body for logout
type LogoutResponse struct {
	Message string `json:"message" example:"Logged out"`
}

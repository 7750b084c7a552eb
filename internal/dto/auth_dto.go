package dto

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=4"`
}

type UserResponse struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type LoginResponse struct {
	User               UserResponse `json:"user"`
	SubscriptionStatus string       `json:"subscription_status"`
	TrialEndsAt        *string      `json:"trial_ends_at"`
	ExpiresIn          int          `json:"expires_in"` // seconds
}

type SubscriptionResponse struct {
	Status      string  `json:"status"`
	TrialEndsAt *string `json:"trial_ends_at"`
	Expired     bool    `json:"expired"`
}

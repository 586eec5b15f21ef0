package auth

import "fieldjobs/internal/domain"

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin installer"`
	FullName string `json:"full_name" validate:"required,notblank,max=200"`
	Phone    string `json:"phone" validate:"omitempty,max=30"`
}

type UpdateProfileRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,notblank,max=200"`
	Phone    *string `json:"phone" validate:"omitempty,max=30"`
}

type TokensResponse struct {
	AccessToken string `json:"access_token"`
}

type LoginResponse struct {
	User   *domain.User   `json:"user"`
	Tokens TokensResponse `json:"tokens"`
}

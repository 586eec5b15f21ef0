package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldjobs/internal/middleware"
	"fieldjobs/internal/pkg/response"
	"fieldjobs/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Login godoc
// @Summary Log in
// @Description Exchanges email and password for a bearer access token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} LoginResponse
// @Failure 400,401,403 {object} map[string]interface{}
// @Router /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !bind(c, &req) {
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			response.CustomError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Email or password is incorrect")
		case errors.Is(err, ErrAccountLocked):
			response.CustomError(c, http.StatusForbidden, "ACCOUNT_LOCKED", "Account is temporarily locked")
		default:
			_ = c.Error(err)
			response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to login")
		}
		return
	}

	response.Success(c, http.StatusOK, LoginResponse{
		User:   result.User,
		Tokens: TokensResponse{AccessToken: result.AccessToken},
	})
}

// GetMe godoc
// @Summary Current user
// @Tags Users
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /users/me [get]
func (h *Handler) GetMe(c *gin.Context) {
	u, err := h.service.Me(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u)
}

// UpdateProfile godoc
// @Summary Update own profile
// @Tags Users
// @Accept json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Fields to change"
// @Success 200 {object} map[string]interface{}
// @Router /users/me [put]
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if !bind(c, &req) {
		return
	}

	u, err := h.service.UpdateProfile(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u)
}

// CreateUser godoc
// @Summary Create a user
// @Description Admin creates an installer or admin account.
// @Tags Users
// @Accept json
// @Security BearerAuth
// @Param request body CreateUserRequest true "User"
// @Success 201 {object} map[string]interface{}
// @Failure 400,403,409 {object} map[string]interface{}
// @Router /admin/users [post]
func (h *Handler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !bind(c, &req) {
		return
	}

	u, err := h.service.CreateUser(c.Request.Context(), middleware.Role(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, u)
}

// ListInstallers godoc
// @Summary List installers
// @Tags Users
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /admin/installers [get]
func (h *Handler) ListInstallers(c *gin.Context) {
	users, err := h.service.ListInstallers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"installers": users})
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return false
	}
	if errs := validator.Validate(req); errs != nil {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", errs)
		return false
	}
	return true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		response.CustomError(c, http.StatusNotFound, "NOT_FOUND", "User not found")
	case errors.Is(err, ErrUnauthorized):
		response.CustomError(c, http.StatusForbidden, "FORBIDDEN", err)
	case errors.Is(err, ErrEmailAlreadyExists):
		response.CustomError(c, http.StatusConflict, "EMAIL_EXISTS", "This email is already registered")
	case errors.Is(err, ErrInvalidRole):
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
	default:
		_ = c.Error(err)
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

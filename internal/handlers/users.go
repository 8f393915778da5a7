package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/BradenHooton/warden/internal/models"
	"github.com/BradenHooton/warden/internal/services"
	pkghttp "github.com/BradenHooton/warden/pkg/http"
)

// UserService defines the interface for user business logic
type UserService interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context, q services.ListQuery) (*services.UserPage, error)
	ValidateNewUser(ctx context.Context, in services.CreateUserInput) ([]string, error)
	CreateUser(ctx context.Context, in services.CreateUserInput) (*models.User, error)
}

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	service UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// CreateUserRequest represents the request body for creating a user. Name,
// email and password rules are enforced by the user form validator so that
// every failing rule is reported at once.
type CreateUserRequest struct {
	Name        string                   `json:"name" validate:"max=200"`
	Email       string                   `json:"email" validate:"max=254"`
	Password    string                   `json:"password" validate:"max=72"`
	Role        string                   `json:"role" validate:"omitempty,oneof=Admin Editor Viewer Custom"`
	Permissions *models.PermissionMatrix `json:"permissions,omitempty"`
}

func (req CreateUserRequest) toInput() services.CreateUserInput {
	role := models.Role(req.Role)
	if role == "" {
		role = models.RoleViewer
	}
	return services.CreateUserInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Role:        role,
		Permissions: req.Permissions,
	}
}

// GetUser handles GET /users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, userModelToResponse(user))
}

// ListUsers handles GET /users?q=&sort=&order=&page=
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page := 1
	if p := query.Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			pkghttp.WriteBadRequest(w, "Invalid page parameter")
			return
		}
		page = n
	}

	result, err := h.service.ListUsers(r.Context(), services.ListQuery{
		Search: query.Get("q"),
		Sort:   query.Get("sort"),
		Order:  query.Get("order"),
		Page:   page,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, pageToResponse(result))
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}
	if msgs := ValidateRequest(req); msgs != nil {
		pkghttp.WriteValidationFailed(w, msgs)
		return
	}

	user, err := h.service.CreateUser(r.Context(), req.toInput())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, userModelToResponse(user))
}

// ValidateUser handles POST /users/validate. It runs the same checks as
// CreateUser without saving anything.
func (h *UserHandler) ValidateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}
	if msgs := ValidateRequest(req); msgs != nil {
		pkghttp.WriteJSON(w, http.StatusOK, messagesResponse(msgs))
		return
	}

	msgs, err := h.service.ValidateNewUser(r.Context(), req.toInput())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, messagesResponse(msgs))
}

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/warden/internal/models"
	"github.com/BradenHooton/warden/internal/services"
)

func TestGetUser_Success_HidesPasswordHash(t *testing.T) {
	mock := &MockUserService{
		GetUserFunc: func(ctx context.Context, id string) (*models.User, error) {
			assert.Equal(t, "u1", id)
			return &models.User{ID: "u1", Name: "Ada", Email: "ada@x.com", PasswordHash: "$2a$hash", Role: models.RoleViewer}, nil
		},
	}
	h := NewUserHandler(mock)

	req := WithURLParam(httptest.NewRequest("GET", "/users/u1", nil), "id", "u1")
	w := httptest.NewRecorder()
	h.GetUser(w, req)

	var resp UserResponse
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "Ada", resp.Name)
	assert.Equal(t, models.RoleViewer, resp.Role)
	assert.NotContains(t, w.Body.String(), "hash")
	assert.NotContains(t, w.Body.String(), "password")
}

func TestGetUser_NotFound(t *testing.T) {
	h := NewUserHandler(&MockUserService{})

	req := WithURLParam(httptest.NewRequest("GET", "/users/missing", nil), "id", "missing")
	w := httptest.NewRecorder()
	h.GetUser(w, req)

	AssertErrorResponse(t, w, http.StatusNotFound, "not_found")
}

func TestListUsers_PassesQuery(t *testing.T) {
	var got services.ListQuery
	mock := &MockUserService{
		ListUsersFunc: func(ctx context.Context, q services.ListQuery) (*services.UserPage, error) {
			got = q
			return &services.UserPage{
				Users:      []*models.User{{ID: "u1", Name: "Ada", Email: "ada@x.com", Role: models.RoleAdmin}},
				Page:       2,
				PageSize:   10,
				Total:      11,
				TotalPages: 2,
			}, nil
		},
	}
	h := NewUserHandler(mock)

	req := httptest.NewRequest("GET", "/users?q=ada&sort=email&order=desc&page=2", nil)
	w := httptest.NewRecorder()
	h.ListUsers(w, req)

	var resp ListUsersResponse
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, services.ListQuery{Search: "ada", Sort: "email", Order: "desc", Page: 2}, got)
	assert.Equal(t, 11, resp.Total)
	assert.Equal(t, 2, resp.TotalPages)
	require.Len(t, resp.Users, 1)
	assert.Equal(t, "u1", resp.Users[0].ID)
}

func TestListUsers_EmptyPageRendersEmptyArray(t *testing.T) {
	h := NewUserHandler(&MockUserService{})

	w := httptest.NewRecorder()
	h.ListUsers(w, httptest.NewRequest("GET", "/users", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"users":[]`)
}

func TestListUsers_BadParams(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		svcErr error
	}{
		{"non-numeric page", "/users?page=abc", nil},
		{"zero page", "/users?page=0", nil},
		{"unknown sort", "/users?sort=password", models.ErrBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockUserService{
				ListUsersFunc: func(ctx context.Context, q services.ListQuery) (*services.UserPage, error) {
					if tt.svcErr != nil {
						return nil, tt.svcErr
					}
					t.Fatal("service should not be called")
					return nil, nil
				},
			}
			h := NewUserHandler(mock)

			w := httptest.NewRecorder()
			h.ListUsers(w, httptest.NewRequest("GET", tt.url, nil))

			AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
		})
	}
}

func TestCreateUser_Success(t *testing.T) {
	var got services.CreateUserInput
	mock := &MockUserService{
		CreateUserFunc: func(ctx context.Context, in services.CreateUserInput) (*models.User, error) {
			got = in
			return &models.User{ID: "new", Name: in.Name, Email: in.Email, PasswordHash: "hashed", Role: in.Role}, nil
		},
	}
	h := NewUserHandler(mock)

	req := NewTestRequest(t, "POST", "/users", CreateUserRequest{
		Name: "Grace", Email: "grace@x.com", Password: "Password1!",
	})
	w := httptest.NewRecorder()
	h.CreateUser(w, req)

	var resp UserResponse
	AssertJSONResponse(t, w, http.StatusCreated, &resp)
	assert.Equal(t, "new", resp.ID)
	assert.Equal(t, models.RoleViewer, got.Role, "role defaults to Viewer")
	assert.Equal(t, "Password1!", got.Password)
	assert.NotContains(t, w.Body.String(), "hashed")
}

func TestCreateUser_ValidationMessages(t *testing.T) {
	mock := &MockUserService{
		CreateUserFunc: func(ctx context.Context, in services.CreateUserInput) (*models.User, error) {
			return nil, &services.ValidationError{Messages: []string{"Email already exists"}}
		},
	}
	h := NewUserHandler(mock)

	req := NewTestRequest(t, "POST", "/users", CreateUserRequest{
		Name: "Dup", Email: "dup@x.com", Password: "Password1!", Role: "Viewer",
	})
	w := httptest.NewRecorder()
	h.CreateUser(w, req)

	AssertValidationFailed(t, w, []string{"Email already exists"})
}

func TestCreateUser_RejectsUnknownRole(t *testing.T) {
	h := NewUserHandler(&MockUserService{})

	req := NewTestRequest(t, "POST", "/users", CreateUserRequest{
		Name: "X", Email: "x@x.com", Password: "Password1!", Role: "Owner",
	})
	w := httptest.NewRecorder()
	h.CreateUser(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Role must be one of")
}

func TestCreateUser_RejectsOverlongPassword(t *testing.T) {
	h := NewUserHandler(&MockUserService{})

	req := NewTestRequest(t, "POST", "/users", CreateUserRequest{
		Name: "X", Email: "x@x.com", Password: "A1!" + strings.Repeat("a", 80),
	})
	w := httptest.NewRecorder()
	h.CreateUser(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Password must have a maximum of 72 characters")
}

func TestCreateUser_MalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"not json", "{name"},
		{"unknown field", `{"name":"a","isAdmin":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewUserHandler(&MockUserService{})

			w := httptest.NewRecorder()
			h.CreateUser(w, httptest.NewRequest("POST", "/users", strings.NewReader(tt.body)))

			AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
		})
	}
}

func TestValidateUser_ReturnsMessages(t *testing.T) {
	mock := &MockUserService{
		ValidateNewUserFunc: func(ctx context.Context, in services.CreateUserInput) ([]string, error) {
			return []string{"Name is required"}, nil
		},
	}
	h := NewUserHandler(mock)

	req := NewTestRequest(t, "POST", "/users/validate", CreateUserRequest{Email: "a@b.com", Password: "Password1!"})
	w := httptest.NewRecorder()
	h.ValidateUser(w, req)

	var resp MessagesResponse
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.False(t, resp.Valid)
	assert.Equal(t, []string{"Name is required"}, resp.Messages)
}

func TestValidateUser_Valid(t *testing.T) {
	h := NewUserHandler(&MockUserService{})

	req := NewTestRequest(t, "POST", "/users/validate", CreateUserRequest{Name: "A", Email: "a@b.com", Password: "Password1!"})
	w := httptest.NewRecorder()
	h.ValidateUser(w, req)

	var resp MessagesResponse
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.True(t, resp.Valid)
	assert.Empty(t, resp.Messages)
	assert.Contains(t, w.Body.String(), `"messages":[]`)
}

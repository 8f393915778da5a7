package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/BradenHooton/warden/internal/models"
	"github.com/BradenHooton/warden/internal/services"
	pkghttp "github.com/BradenHooton/warden/pkg/http"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithURLParam sets a chi route parameter on the request
func WithURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(req.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target any) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
}

// AssertValidationFailed checks for a 422 carrying exactly messages
func AssertValidationFailed(t *testing.T, w *httptest.ResponseRecorder, messages []string) {
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "Response status mismatch")

	var resp pkghttp.ValidationErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode validation response")
	assert.Equal(t, "validation_failed", resp.Error)
	assert.Equal(t, messages, resp.Messages)
}

// MockUserService implements UserService for testing
type MockUserService struct {
	GetUserFunc         func(ctx context.Context, id string) (*models.User, error)
	ListUsersFunc       func(ctx context.Context, q services.ListQuery) (*services.UserPage, error)
	ValidateNewUserFunc func(ctx context.Context, in services.CreateUserInput) ([]string, error)
	CreateUserFunc      func(ctx context.Context, in services.CreateUserInput) (*models.User, error)
}

func (m *MockUserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	if m.GetUserFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetUserFunc(ctx, id)
}

func (m *MockUserService) ListUsers(ctx context.Context, q services.ListQuery) (*services.UserPage, error) {
	if m.ListUsersFunc == nil {
		return &services.UserPage{Page: 1, PageSize: services.DefaultPageSize}, nil
	}
	return m.ListUsersFunc(ctx, q)
}

func (m *MockUserService) ValidateNewUser(ctx context.Context, in services.CreateUserInput) ([]string, error) {
	if m.ValidateNewUserFunc == nil {
		return nil, nil
	}
	return m.ValidateNewUserFunc(ctx, in)
}

func (m *MockUserService) CreateUser(ctx context.Context, in services.CreateUserInput) (*models.User, error) {
	if m.CreateUserFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.CreateUserFunc(ctx, in)
}

// MockRoleService implements RoleService for testing
type MockRoleService struct {
	AssignRoleFunc   func(ctx context.Context, userID string, role models.Role, matrix *models.PermissionMatrix) (*services.RoleChange, error)
	UndoFunc         func(ctx context.Context, changeID string) (*models.User, error)
	ExportMatrixFunc func(ctx context.Context, userID string) ([]byte, error)
}

func (m *MockRoleService) AssignRole(ctx context.Context, userID string, role models.Role, matrix *models.PermissionMatrix) (*services.RoleChange, error) {
	if m.AssignRoleFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.AssignRoleFunc(ctx, userID, role, matrix)
}

func (m *MockRoleService) Undo(ctx context.Context, changeID string) (*models.User, error) {
	if m.UndoFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.UndoFunc(ctx, changeID)
}

func (m *MockRoleService) ExportMatrix(ctx context.Context, userID string) ([]byte, error) {
	if m.ExportMatrixFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.ExportMatrixFunc(ctx, userID)
}

// MockAuditService implements AuditService for testing
type MockAuditService struct {
	TrailForUserFunc func(ctx context.Context, userID string) ([]models.AuditEntry, error)
	RecentFunc       func(ctx context.Context) ([]models.AuditEntry, error)
}

func (m *MockAuditService) TrailForUser(ctx context.Context, userID string) ([]models.AuditEntry, error) {
	if m.TrailForUserFunc == nil {
		return []models.AuditEntry{}, nil
	}
	return m.TrailForUserFunc(ctx, userID)
}

func (m *MockAuditService) Recent(ctx context.Context) ([]models.AuditEntry, error) {
	if m.RecentFunc == nil {
		return []models.AuditEntry{}, nil
	}
	return m.RecentFunc(ctx)
}

// MockPinger implements Pinger for testing
type MockPinger struct {
	PingFunc func(ctx context.Context) error
}

func (m *MockPinger) Ping(ctx context.Context) error {
	if m.PingFunc == nil {
		return nil
	}
	return m.PingFunc(ctx)
}

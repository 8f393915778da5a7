//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/BradenHooton/warden/internal/auth"
	"github.com/BradenHooton/warden/internal/handlers"
	middlewareCustom "github.com/BradenHooton/warden/internal/middleware"
	"github.com/BradenHooton/warden/internal/models"
	"github.com/BradenHooton/warden/internal/routes"
	"github.com/BradenHooton/warden/internal/services"
	"github.com/BradenHooton/warden/internal/storage"
	pkghttp "github.com/BradenHooton/warden/pkg/http"
)

const testJWTSecret = "test-secret-32-characters-long-for-testing"

// SentNotification is a captured account notification
type SentNotification struct {
	UserID  string
	Kind    string
	Role    models.Role
	Created time.Time
}

// MockNotifier captures notifications for test assertions
type MockNotifier struct {
	Sent []SentNotification
	mu   sync.Mutex
}

func (m *MockNotifier) UserCreated(ctx context.Context, user *models.User) error {
	m.record(SentNotification{UserID: user.ID, Kind: "created", Role: user.Role})
	return nil
}

func (m *MockNotifier) RoleChanged(ctx context.Context, user *models.User, previous models.Role) error {
	m.record(SentNotification{UserID: user.ID, Kind: "role_changed", Role: user.Role})
	return nil
}

func (m *MockNotifier) record(n SentNotification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n.Created = time.Now()
	m.Sent = append(m.Sent, n)
}

// Notifications returns a copy of everything captured so far
func (m *MockNotifier) Notifications() []SentNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentNotification(nil), m.Sent...)
}

// TestServer wraps httptest.Server with the storage and all dependencies
type TestServer struct {
	Server       *httptest.Server
	Store        storage.Store
	Notifier     *MockNotifier
	TokenManager *auth.TokenManager
}

// NewTestServer initializes a complete HTTP server over store. saver decides
// whether role saves are confirmed.
func NewTestServer(store storage.Store, saver services.RoleSaver) *TestServer {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	userRepo, auditRepo := InitializeRepositories(store)
	notifier := &MockNotifier{}

	auditService := services.NewAuditService(auditRepo, models.DefaultAuditCap, models.AuditCapScopeGlobal, logger)
	userService := services.NewUserService(userRepo, auditService, notifier, services.DefaultPageSize, logger)
	roleService := services.NewRoleService(userRepo, auditService, saver, notifier, time.Minute, logger)
	adminService := services.NewAdminService(userRepo, auditRepo, logger)

	tokenManager := auth.NewTokenManager(testJWTSecret, 15*time.Minute)

	ipConfig, _ := pkghttp.NewIPConfig(nil)

	router := chi.NewRouter()
	router.Use(chiMiddleware.RequestID)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: "test"}))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(chiMiddleware.Recoverer)

	routes.RegisterRoutes(router, routes.Handlers{
		Health:      handlers.NewHealthHandler(store, storage.BackendPostgres, logger),
		Users:       handlers.NewUserHandler(userService),
		Roles:       handlers.NewRoleHandler(roleService),
		Audit:       handlers.NewAuditHandler(auditService, userService),
		Permissions: handlers.NewPermissionHandler(),
		Admin:       handlers.NewAdminHandler(adminService),
	}, tokenManager, routes.Limits{
		Read:  middlewareCustom.RateLimitConfig{RequestsPerMinute: 10000, IPConfig: ipConfig},
		Write: middlewareCustom.RateLimitConfig{RequestsPerMinute: 10000, IPConfig: ipConfig},
	})

	return &TestServer{
		Server:       httptest.NewServer(router),
		Store:        store,
		Notifier:     notifier,
		TokenManager: tokenManager,
	}
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	if ts.Server != nil {
		ts.Server.Close()
	}
}

// AdminToken mints a token carrying the Admin role
func (ts *TestServer) AdminToken() (string, error) {
	return ts.TokenManager.GenerateToken("integration-admin", models.RoleAdmin, nil)
}

// Request makes an HTTP request to the test server
func (ts *TestServer) Request(method, path string, body any, headers map[string]string) (*http.Response, error) {
	url := ts.Server.URL + path

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}

	// Set headers
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return http.DefaultClient.Do(req)
}

// RequestWithAuth makes an authenticated HTTP request with access token
func (ts *TestServer) RequestWithAuth(method, path, accessToken string, body any) (*http.Response, error) {
	headers := map[string]string{
		"Authorization": "Bearer " + accessToken,
	}
	return ts.Request(method, path, body, headers)
}

// ParseJSONResponse parses JSON response body into target struct
func ParseJSONResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}

// GetErrorMessage extracts error message from error response
func GetErrorMessage(resp *http.Response) (string, error) {
	defer resp.Body.Close()
	var errResp map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		return "", err
	}
	if msg, ok := errResp["message"].(string); ok {
		return msg, nil
	}
	return "", fmt.Errorf("no message in error response")
}

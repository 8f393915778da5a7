package services

import (
	"context"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/service/ses"

	"github.com/BradenHooton/warden/internal/models"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	ListFunc    func(ctx context.Context) ([]*models.User, error)
	GetByIDFunc func(ctx context.Context, id string) (*models.User, error)
	CreateFunc  func(ctx context.Context, user *models.User) (*models.User, error)
	UpdateFunc  func(ctx context.Context, user *models.User) (*models.User, error)
}

func (m *MockUserRepository) List(ctx context.Context) ([]*models.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.User{}, nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

// MockAuditLogRepository implements AuditLogRepository for testing
type MockAuditLogRepository struct {
	PrependFunc    func(ctx context.Context, entry models.AuditEntry, capacity int, scope string) error
	ListFunc       func(ctx context.Context) ([]models.AuditEntry, error)
	ListByUserFunc func(ctx context.Context, userID string, limit int) ([]models.AuditEntry, error)
}

func (m *MockAuditLogRepository) Prepend(ctx context.Context, entry models.AuditEntry, capacity int, scope string) error {
	if m.PrependFunc != nil {
		return m.PrependFunc(ctx, entry, capacity, scope)
	}
	return nil
}

func (m *MockAuditLogRepository) List(ctx context.Context) ([]models.AuditEntry, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []models.AuditEntry{}, nil
}

func (m *MockAuditLogRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.AuditEntry, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID, limit)
	}
	return []models.AuditEntry{}, nil
}

// MockRoleSaver implements RoleSaver for testing
type MockRoleSaver struct {
	SaveFunc func(ctx context.Context, user *models.User) error
}

func (m *MockRoleSaver) Save(ctx context.Context, user *models.User) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, user)
	}
	return nil
}

// MockNotifier implements Notifier for testing
type MockNotifier struct {
	UserCreatedFunc func(ctx context.Context, user *models.User) error
	RoleChangedFunc func(ctx context.Context, user *models.User, previous models.Role) error
}

func (m *MockNotifier) UserCreated(ctx context.Context, user *models.User) error {
	if m.UserCreatedFunc != nil {
		return m.UserCreatedFunc(ctx, user)
	}
	return nil
}

func (m *MockNotifier) RoleChanged(ctx context.Context, user *models.User, previous models.Role) error {
	if m.RoleChangedFunc != nil {
		return m.RoleChangedFunc(ctx, user, previous)
	}
	return nil
}

// MockSESClient implements SESAPI for testing
type MockSESClient struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *MockSESClient) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(ctx, params, optFns...)
	}
	return &ses.SendEmailOutput{}, nil
}

// discardLogger returns a logger that writes nowhere.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/BradenHooton/warden/internal/forms"
	"github.com/BradenHooton/warden/internal/models"
	"github.com/BradenHooton/warden/internal/validation"
	"github.com/BradenHooton/warden/pkg/auth"
	"github.com/BradenHooton/warden/pkg/logger"
	"github.com/google/uuid"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	List(ctx context.Context) ([]*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
}

// Sort keys and directions accepted by ListUsers.
const (
	SortByName  = "name"
	SortByEmail = "email"
	SortByRole  = "role"
	OrderAsc    = "asc"
	OrderDesc   = "desc"
)

// DefaultPageSize is the number of users per page.
const DefaultPageSize = 10

// ListQuery selects one page of the user table.
type ListQuery struct {
	Search string
	Sort   string
	Order  string
	Page   int
}

// UserPage is one page of users plus the size of the filtered set.
type UserPage struct {
	Users      []*models.User
	Page       int
	PageSize   int
	Total      int
	TotalPages int
}

// CreateUserInput is the add-user form as submitted.
type CreateUserInput struct {
	Name        string
	Email       string
	Password    string
	Role        models.Role
	Permissions *models.PermissionMatrix
}

// UserService handles user business logic
type UserService struct {
	repo         UserRepository
	audit        *AuditService
	notifier     Notifier
	logger       *slog.Logger
	pageSize     int
	hashPassword func(string) (string, error)
	now          func() time.Time
}

// NewUserService creates a new UserService
func NewUserService(repo UserRepository, audit *AuditService, notifier Notifier, pageSize int, log *slog.Logger) *UserService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &UserService{
		repo:         repo,
		audit:        audit,
		notifier:     notifier,
		logger:       log,
		pageSize:     pageSize,
		hashPassword: auth.HashPassword,
		now:          time.Now,
	}
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("user not found", slog.String("user_id", id))
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return user, nil
}

// ListUsers filters, sorts and pages the user table. Search matches a
// case-insensitive substring of name, email or role.
func (s *UserService) ListUsers(ctx context.Context, q ListQuery) (*UserPage, error) {
	sortKey, err := sortKeyFor(q.Sort)
	if err != nil {
		return nil, err
	}
	desc := false
	switch strings.ToLower(q.Order) {
	case "", OrderAsc:
	case OrderDesc:
		desc = true
	default:
		return nil, fmt.Errorf("unknown sort order %q: %w", q.Order, models.ErrBadRequest)
	}

	users, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	filtered := filterUsers(users, q.Search)
	slices.SortStableFunc(filtered, func(a, b *models.User) int {
		c := strings.Compare(strings.ToLower(sortKey(a)), strings.ToLower(sortKey(b)))
		if desc {
			return -c
		}
		return c
	})

	page := q.Page
	if page < 1 {
		page = 1
	}
	total := len(filtered)
	start := min((page-1)*s.pageSize, total)
	end := min(start+s.pageSize, total)

	return &UserPage{
		Users:      filtered[start:end],
		Page:       page,
		PageSize:   s.pageSize,
		Total:      total,
		TotalPages: (total + s.pageSize - 1) / s.pageSize,
	}, nil
}

func sortKeyFor(key string) (func(*models.User) string, error) {
	switch strings.ToLower(key) {
	case "", SortByName:
		return func(u *models.User) string { return u.Name }, nil
	case SortByEmail:
		return func(u *models.User) string { return u.Email }, nil
	case SortByRole:
		return func(u *models.User) string { return string(u.Role) }, nil
	}
	return nil, fmt.Errorf("unknown sort key %q: %w", key, models.ErrBadRequest)
}

func filterUsers(users []*models.User, search string) []*models.User {
	term := strings.ToLower(strings.TrimSpace(search))
	out := make([]*models.User, 0, len(users))
	for _, u := range users {
		if term == "" ||
			strings.Contains(strings.ToLower(u.Name), term) ||
			strings.Contains(strings.ToLower(u.Email), term) ||
			strings.Contains(strings.ToLower(string(u.Role)), term) {
			out = append(out, u)
		}
	}
	return out
}

// ValidateNewUser runs the add-user checks without saving anything.
func (s *UserService) ValidateNewUser(ctx context.Context, in CreateUserInput) ([]string, error) {
	existing, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return validation.ValidateNewUser(validation.NewUserForm{
		Name:        in.Name,
		Email:       in.Email,
		Password:    in.Password,
		Role:        in.Role,
		Permissions: derefMatrix(in.Permissions),
	}, existing), nil
}

// CreateUser runs the add-user flow and persists the result. A rejected form
// comes back as *ValidationError.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	existing, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	form := fillAddUserForm(in)
	form = forms.ReduceAddUser(form, forms.Submit{
		Existing: existing,
		UserID:   uuid.NewString(),
		AuditID:  uuid.NewString(),
		Now:      s.now().UTC(),
	})
	if form.Phase != forms.PhaseCommitted {
		s.logger.Info("user creation rejected",
			slog.String("email", logger.SanitizedEmail(in.Email)),
			slog.Int("problems", len(form.Errors)),
		)
		return nil, &ValidationError{Messages: form.Errors}
	}

	commit := form.Committed
	hashed, err := s.hashPassword(commit.Password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	commit.User.PasswordHash = hashed

	created, err := s.repo.Create(ctx, commit.User)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			// Lost a race with a concurrent create of the same email.
			return nil, &ValidationError{Messages: []string{validation.MsgEmailTaken}}
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.audit.RecordEntry(ctx, commit.Audit)
	if err := s.notifier.UserCreated(ctx, created); err != nil {
		s.logger.Warn("failed to send account notification", slog.String("user_id", created.ID), slog.Any("error", err))
	}

	s.logger.Info("user created",
		slog.String("user_id", created.ID),
		slog.String("email", logger.SanitizedEmail(created.Email)),
		slog.String("role", string(created.Role)),
	)
	return created, nil
}

// fillAddUserForm replays the submitted fields through the add-user reducer.
func fillAddUserForm(in CreateUserInput) forms.AddUserForm {
	form := forms.NewAddUserForm()
	form = forms.ReduceAddUser(form, forms.SetName{Value: in.Name})
	form = forms.ReduceAddUser(form, forms.SetEmail{Value: in.Email})
	form = forms.ReduceAddUser(form, forms.SetPassword{Value: in.Password})
	if in.Role != "" {
		form = forms.ReduceAddUser(form, forms.SetRole{Role: in.Role})
	}
	if in.Permissions != nil {
		for _, module := range models.Modules {
			flags := in.Permissions.Get(module)
			for _, flag := range models.Flags {
				form = forms.ReduceAddUser(form, forms.TogglePermission{Module: module, Flag: flag, Value: flags.Get(flag)})
			}
		}
	}
	return form
}

func derefMatrix(m *models.PermissionMatrix) models.PermissionMatrix {
	if m == nil {
		return models.PermissionMatrix{}
	}
	return *m
}

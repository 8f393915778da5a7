package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/BradenHooton/warden/internal/forms"
	"github.com/BradenHooton/warden/internal/models"
	"github.com/google/uuid"
)

// DefaultUndoWindow is how long a confirmed role change can be undone.
const DefaultUndoWindow = 5 * time.Second

// ExportFilename is the download name of an exported permission matrix.
const ExportFilename = "role_matrix.json"

// RoleChange describes a confirmed role assignment.
type RoleChange struct {
	ID            string
	User          *models.User
	PreviousRole  models.Role
	UndoExpiresAt time.Time
}

// RoleService assigns roles optimistically: the change is written first,
// then confirmed through a RoleSaver, and rolled back if confirmation fails.
type RoleService struct {
	users      UserRepository
	audit      *AuditService
	saver      RoleSaver
	notifier   Notifier
	logger     *slog.Logger
	undoWindow time.Duration
	now        func() time.Time

	mu      sync.Mutex
	changes map[string]forms.Compensation
	locks   map[string]*userLock
}

// userLock is dropped from RoleService.locks once refs reaches zero.
type userLock struct {
	sync.Mutex
	refs int
}

// NewRoleService creates a new RoleService
func NewRoleService(users UserRepository, audit *AuditService, saver RoleSaver, notifier Notifier, undoWindow time.Duration, log *slog.Logger) *RoleService {
	if saver == nil {
		saver = NoopSaver{}
	}
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	if undoWindow <= 0 {
		undoWindow = DefaultUndoWindow
	}
	return &RoleService{
		users:      users,
		audit:      audit,
		saver:      saver,
		notifier:   notifier,
		logger:     log,
		undoWindow: undoWindow,
		now:        time.Now,
		changes:    make(map[string]forms.Compensation),
		locks:      make(map[string]*userLock),
	}
}

// lockUser serializes role changes for one user. The returned func releases
// the lock.
func (s *RoleService) lockUser(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &userLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()

		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}

// AssignRole applies role to the user. matrix is only consulted for the
// Custom role; preset roles always get their derived matrix.
func (s *RoleService) AssignRole(ctx context.Context, userID string, role models.Role, matrix *models.PermissionMatrix) (*RoleChange, error) {
	if userID == "" || role == "" {
		return nil, &ValidationError{Messages: []string{forms.MsgNoUserSelected}}
	}

	unlock := s.lockUser(userID)
	defer unlock()

	before, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	form := forms.LoadRoleAssignment(before)
	form = forms.ReduceRoleAssignment(form, forms.SetRole{Role: role})
	if matrix != nil {
		form = form.WithPermissions(*matrix)
	}
	if msgs := form.Check(); msgs != nil {
		return nil, &ValidationError{Messages: msgs}
	}

	change := forms.NewCompensation(uuid.NewString(), before, form.Snapshot(), s.now())

	// Optimistic apply.
	applied, err := s.users.Update(ctx, change.Applied.ApplyTo(before))
	if err != nil {
		s.logger.Error("failed to apply role change", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	s.audit.Record(ctx, userID, forms.UpdatedAction(role))

	if err := s.saver.Save(ctx, applied); err != nil {
		s.rollback(ctx, change, before, err)
		return nil, fmt.Errorf("%w: %w", models.ErrSaveFailed, err)
	}

	change, err = change.Commit(s.now())
	if err != nil {
		return nil, models.ErrInternalServer
	}
	s.remember(change)

	s.audit.LogRoleChange(ctx, userID, before.Role, role, nil)
	if err := s.notifier.RoleChanged(ctx, applied, before.Role); err != nil {
		s.logger.Warn("failed to send role change notification", slog.String("user_id", userID), slog.Any("error", err))
	}

	return &RoleChange{
		ID:            change.ID,
		User:          applied,
		PreviousRole:  before.Role,
		UndoExpiresAt: change.CommittedAt.Add(s.undoWindow),
	}, nil
}

// rollback restores the snapshot taken before an optimistic apply. It runs
// even if ctx was cancelled, since a cancelled save is still a failed save.
func (s *RoleService) rollback(ctx context.Context, change forms.Compensation, before *models.User, cause error) {
	ctx = context.WithoutCancel(ctx)

	_, restore, err := change.Revert()
	if err != nil {
		s.logger.Error("role change already reverted", slog.String("change_id", change.ID))
		return
	}
	if _, err := s.users.Update(ctx, restore.ApplyTo(before)); err != nil {
		s.logger.Error("failed to roll back role change",
			slog.String("user_id", change.UserID),
			slog.String("change_id", change.ID),
			slog.Any("error", err),
		)
		return
	}

	s.audit.Record(ctx, change.UserID, forms.RevertedAction(restore.Role))
	s.audit.LogRoleChange(ctx, change.UserID, before.Role, change.Applied.Role, cause)
	s.logger.Warn("role change rolled back",
		slog.String("user_id", change.UserID),
		slog.String("restored_role", string(restore.Role)),
		slog.Any("error", cause),
	)
}

// Undo reverts a confirmed change while it is still inside the undo window.
// Only the latest change for a user can be undone; older ones are superseded.
func (s *RoleService) Undo(ctx context.Context, changeID string) (*models.User, error) {
	s.mu.Lock()
	change, ok := s.changes[changeID]
	s.mu.Unlock()
	if !ok {
		return nil, models.ErrNotFound
	}

	unlock := s.lockUser(change.UserID)
	defer unlock()

	// Re-read under the user lock; another undo may have won.
	s.mu.Lock()
	change, ok = s.changes[changeID]
	s.mu.Unlock()
	if !ok {
		return nil, models.ErrNotFound
	}

	if change.State == forms.CompensationReverted || change.State == forms.CompensationSuperseded {
		return nil, models.ErrAlreadyReverted
	}
	if !change.Undoable(s.now(), s.undoWindow) {
		return nil, models.ErrUndoExpired
	}

	current, err := s.users.GetByID(ctx, change.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", change.UserID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if !forms.SnapshotOf(current).Equal(change.Applied) {
		s.logger.Warn("role changed since confirmation, undo refused",
			slog.String("user_id", change.UserID),
			slog.String("change_id", changeID),
		)
		return nil, models.ErrAlreadyReverted
	}

	reverted, restore, err := change.Revert()
	if err != nil {
		return nil, err
	}
	restored, err := s.users.Update(ctx, restore.ApplyTo(current))
	if err != nil {
		s.logger.Error("failed to undo role change", slog.String("change_id", changeID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	s.remember(reverted)

	s.audit.Record(ctx, change.UserID, forms.RevertedAction(restore.Role))
	s.logger.Info("role change undone",
		slog.String("user_id", change.UserID),
		slog.String("restored_role", string(restore.Role)),
	)
	return restored, nil
}

// remember stores change and forgets entries whose undo window has passed.
// A newly committed change supersedes every earlier one for the same user.
func (s *RoleService) remember(change forms.Compensation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(change.ID)
	if change.State == forms.CompensationCommitted {
		for id, c := range s.changes {
			if c.UserID == change.UserID {
				s.changes[id] = c.Supersede()
			}
		}
	}
	s.changes[change.ID] = change
}

// PruneExpired drops change records that can no longer be undone and
// returns how many were removed.
func (s *RoleService) PruneExpired(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pruneLocked(""), nil
}

// pruneLocked requires s.mu. keep is never removed.
func (s *RoleService) pruneLocked(keep string) int {
	now := s.now()
	removed := 0
	for id, c := range s.changes {
		if id != keep && now.Sub(c.CreatedAt) > 2*s.undoWindow {
			delete(s.changes, id)
			removed++
		}
	}
	return removed
}

// ExportMatrix renders the user's effective permission matrix as indented
// JSON, in the shape the role editor shows it.
func (s *RoleService) ExportMatrix(ctx context.Context, userID string) ([]byte, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	form := forms.LoadRoleAssignment(user)
	data, err := json.MarshalIndent(form.Permissions, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode matrix: %w", err)
	}
	return data, nil
}

package forms

import (
	"time"

	"github.com/BradenHooton/warden/internal/models"
)

// Snapshot is the role-related part of a user record.
type Snapshot struct {
	Role        models.Role
	Permissions *models.PermissionMatrix
}

// SnapshotOf captures a user's current role and matrix.
func SnapshotOf(user *models.User) Snapshot {
	c := user.Clone()
	return Snapshot{Role: c.Role, Permissions: c.Permissions}
}

// ApplyTo returns a copy of user carrying this snapshot.
func (s Snapshot) ApplyTo(user *models.User) *models.User {
	c := user.Clone()
	c.Role = s.Role
	c.Permissions = nil
	if s.Permissions != nil {
		p := *s.Permissions
		c.Permissions = &p
	}
	return c
}

// Equal reports whether two snapshots carry the same role and matrix.
func (s Snapshot) Equal(o Snapshot) bool {
	if s.Role != o.Role {
		return false
	}
	if s.Permissions == nil || o.Permissions == nil {
		return s.Permissions == nil && o.Permissions == nil
	}
	return *s.Permissions == *o.Permissions
}

// CompensationState tracks an optimistic change through its lifetime.
type CompensationState string

const (
	CompensationPending   CompensationState = "pending"
	CompensationCommitted CompensationState = "committed"
	CompensationReverted  CompensationState = "reverted"
	// CompensationSuperseded marks a committed change that a later change to
	// the same user replaced. It can no longer be undone.
	CompensationSuperseded CompensationState = "superseded"
)

// Compensation records an optimistically applied change together with what
// is needed to undo it.
type Compensation struct {
	ID          string
	UserID      string
	Previous    Snapshot
	Applied     Snapshot
	State       CompensationState
	CreatedAt   time.Time
	CommittedAt time.Time
}

// NewCompensation records that applied is about to replace before's role.
func NewCompensation(id string, before *models.User, applied Snapshot, now time.Time) Compensation {
	return Compensation{
		ID:        id,
		UserID:    before.ID,
		Previous:  SnapshotOf(before),
		Applied:   applied,
		State:     CompensationPending,
		CreatedAt: now,
	}
}

// Commit marks a pending change as confirmed.
func (c Compensation) Commit(now time.Time) (Compensation, error) {
	if c.State != CompensationPending {
		return c, models.ErrBadRequest
	}
	c.State = CompensationCommitted
	c.CommittedAt = now
	return c, nil
}

// Supersede marks a committed change as replaced by a newer one.
func (c Compensation) Supersede() Compensation {
	if c.State == CompensationCommitted {
		c.State = CompensationSuperseded
	}
	return c
}

// Revert marks the change as undone and returns the snapshot to restore.
func (c Compensation) Revert() (Compensation, Snapshot, error) {
	if c.State == CompensationReverted || c.State == CompensationSuperseded {
		return c, Snapshot{}, models.ErrAlreadyReverted
	}
	c.State = CompensationReverted
	return c, c.Previous, nil
}

// Undoable reports whether a committed change may still be undone at now.
func (c Compensation) Undoable(now time.Time, window time.Duration) bool {
	return c.State == CompensationCommitted && !now.After(c.CommittedAt.Add(window))
}

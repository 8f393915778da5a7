package services

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/BradenHooton/warden/internal/models"
)

// Defaults for SimulatedSaver.
const (
	DefaultSaveDelay       = time.Second
	DefaultSaveFailureRate = 0.2
)

// ErrSimulatedFailure is returned by SimulatedSaver on an injected failure.
var ErrSimulatedFailure = errors.New("simulated save failure")

// RoleSaver confirms a role change that has already been applied locally.
// A returned error causes the change to be rolled back.
type RoleSaver interface {
	Save(ctx context.Context, user *models.User) error
}

// NoopSaver confirms every change immediately.
type NoopSaver struct{}

func (NoopSaver) Save(context.Context, *models.User) error { return nil }

// SimulatedSaver stands in for a slow, unreliable remote: it waits Delay and
// then fails with probability FailureRate.
type SimulatedSaver struct {
	Delay       time.Duration
	FailureRate float64
	roll        func() float64
}

func NewSimulatedSaver(delay time.Duration, failureRate float64) *SimulatedSaver {
	return &SimulatedSaver{Delay: delay, FailureRate: failureRate, roll: rand.Float64}
}

func (s *SimulatedSaver) Save(ctx context.Context, _ *models.User) error {
	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	roll := s.roll
	if roll == nil {
		roll = rand.Float64
	}
	if roll() < s.FailureRate {
		return ErrSimulatedFailure
	}
	return nil
}

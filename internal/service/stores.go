// Package service holds the business rules that sit above the
// repositories: the password-reset lifecycle and the registration state
// machine. Both depend on narrow store interfaces rather than concrete
// repositories so the time- and collaborator-dependent rules can be
// exercised without a database.
package service

import (
	"context"
	"time"

	"github.com/campusbuzz/event-registration/internal/model"
)

// UserStore is the slice of the user repository the reset service needs.
// *repository.UserRepo satisfies it.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
	SetResetToken(ctx context.Context, userID uint64, tokenHash string, expires time.Time) error
	ClearResetToken(ctx context.Context, userID uint64) error
	ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string, now time.Time) (model.User, error)
}

// EventStore is the slice of the event repository the registration
// service needs. The two mutations must be atomic conditional
// operations keyed on the (event, user) pair, not read-modify-write
// round trips. *repository.EventRepo satisfies it.
type EventStore interface {
	GetByID(ctx context.Context, id uint64) (model.Event, error)
	AddRegistration(ctx context.Context, eventID, userID uint64) error
	RemoveRegistration(ctx context.Context, eventID, userID uint64) error
	IsRegistered(ctx context.Context, eventID, userID uint64) (bool, error)
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/campusbuzz/event-registration/internal/repository"
)

// CancelWindow is the period before an event's date during which
// cancellation is disallowed. Computed as exact 24-hour multiples, not
// calendar days, so the cutoff never drifts across timezones or DST.
const CancelWindow = 15 * 24 * time.Hour

// ErrWindowClosed is returned when a cancellation is attempted 15 days
// or less before the event. The registration is left untouched.
var ErrWindowClosed = errors.New("registration can only be cancelled 15 days before event")

// RegistrationService manages the per-(user, event) registration
// relationship. The state is binary: a user is registered for an event
// or not. The store primitives it calls are atomic conditional
// mutations, so concurrent calls for the same pair cannot create
// duplicates.
type RegistrationService struct {
	Events EventStore
	Now    func() time.Time
}

func NewRegistrationService(events EventStore) *RegistrationService {
	return &RegistrationService{Events: events, Now: time.Now}
}

// Register adds the user to the event. Late registration is allowed:
// the cancel window deliberately does not apply here, only the
// surrounding UI discourages it.
func (s *RegistrationService) Register(ctx context.Context, eventID, userID uint64) error {
	if _, err := s.Events.GetByID(ctx, eventID); err != nil {
		return err
	}
	return s.Events.AddRegistration(ctx, eventID, userID)
}

// Cancel removes the user from the event, provided the event is more
// than 15 days out. The wall clock is read at call time; two calls
// straddling the cutoff instant may legitimately disagree.
func (s *RegistrationService) Cancel(ctx context.Context, eventID, userID uint64) error {
	ev, err := s.Events.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	registered, err := s.Events.IsRegistered(ctx, eventID, userID)
	if err != nil {
		return err
	}
	if !registered {
		return repository.ErrNotRegistered
	}
	if ev.Date.Sub(s.Now()) <= CancelWindow {
		return ErrWindowClosed
	}
	return s.Events.RemoveRegistration(ctx, eventID, userID)
}

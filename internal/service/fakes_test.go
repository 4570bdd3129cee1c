package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/campusbuzz/event-registration/internal/model"
	"github.com/campusbuzz/event-registration/internal/repository"
)

// testClock is a controllable time source for the window and expiry
// rules.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(start time.Time) *testClock { return &testClock{now: start} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// fakeUserStore mirrors the reset-token semantics of the SQL user
// repository in memory.
type fakeUserStore struct {
	mu    sync.Mutex
	seq   uint64
	users map[uint64]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[uint64]*model.User{}}
}

func (s *fakeUserStore) add(name, email, passwordHash string) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	u := &model.User{ID: s.seq, Name: name, Email: email, PasswordHash: passwordHash, Role: model.RoleStudent}
	s.users[u.ID] = u
	return u
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return *u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (s *fakeUserStore) SetResetToken(_ context.Context, userID uint64, tokenHash string, expires time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.ResetTokenHash = &tokenHash
	u.ResetTokenExpires = &expires
	return nil
}

func (s *fakeUserStore) ClearResetToken(_ context.Context, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.ResetTokenHash = nil
		u.ResetTokenExpires = nil
	}
	return nil
}

func (s *fakeUserStore) ConsumeResetToken(_ context.Context, tokenHash, newPasswordHash string, now time.Time) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ResetTokenHash != nil && *u.ResetTokenHash == tokenHash &&
			u.ResetTokenExpires != nil && u.ResetTokenExpires.After(now) {
			u.PasswordHash = newPasswordHash
			u.ResetTokenHash = nil
			u.ResetTokenExpires = nil
			return *u, nil
		}
	}
	return model.User{}, repository.ErrResetTokenInvalid
}

// fakeMailer records sent mail and can be told to fail.
type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

type sentMail struct {
	to, subject, body string
}

func (m *fakeMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("relay unreachable")
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

// fakeEventStore mirrors the atomic pair mutations of the SQL event
// repository in memory.
type fakeEventStore struct {
	mu     sync.Mutex
	events map[uint64]model.Event
	regs   map[[2]uint64]bool
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{events: map[uint64]model.Event{}, regs: map[[2]uint64]bool{}}
}

func (s *fakeEventStore) add(ev model.Event) model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[ev.ID] = ev
	return ev
}

func (s *fakeEventStore) GetByID(_ context.Context, id uint64) (model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		return model.Event{}, repository.ErrEventNotFound
	}
	return ev, nil
}

func (s *fakeEventStore) AddRegistration(_ context.Context, eventID, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[eventID]; !ok {
		return repository.ErrEventNotFound
	}
	key := [2]uint64{eventID, userID}
	if s.regs[key] {
		return repository.ErrAlreadyRegistered
	}
	s.regs[key] = true
	return nil
}

func (s *fakeEventStore) RemoveRegistration(_ context.Context, eventID, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]uint64{eventID, userID}
	if !s.regs[key] {
		return repository.ErrNotRegistered
	}
	delete(s.regs, key)
	return nil
}

func (s *fakeEventStore) IsRegistered(_ context.Context, eventID, userID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regs[[2]uint64{eventID, userID}], nil
}

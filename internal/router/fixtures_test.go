package router

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/campusbuzz/event-registration/internal/model"
	"github.com/campusbuzz/event-registration/internal/repository"
)

// memUserStore is an in-memory stand-in for *repository.UserRepo. It
// satisfies both handler.AuthUserStore and service.UserStore.
type memUserStore struct {
	mu    sync.Mutex
	seq   uint64
	users map[uint64]*model.User
}

func newMemUserStore() *memUserStore { return &memUserStore{users: map[uint64]*model.User{}} }

func (s *memUserStore) Create(_ context.Context, name, email, passwordHash string, role model.Role) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return model.User{}, repository.ErrEmailExists
		}
	}
	s.seq++
	u := &model.User{ID: s.seq, Name: name, Email: email, PasswordHash: passwordHash, Role: role, CreatedAt: time.Now()}
	s.users[u.ID] = u
	return *u, nil
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return *u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (s *memUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return *u, nil
	}
	return model.User{}, repository.ErrUserNotFound
}

func (s *memUserStore) SetResetToken(_ context.Context, userID uint64, tokenHash string, expires time.Time) error {
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

func (s *memUserStore) ClearResetToken(_ context.Context, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.ResetTokenHash = nil
		u.ResetTokenExpires = nil
	}
	return nil
}

func (s *memUserStore) ConsumeResetToken(_ context.Context, tokenHash, newPasswordHash string, now time.Time) (model.User, error) {
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

// memEventStore is an in-memory stand-in for *repository.EventRepo. It
// satisfies both handler.EventCatalog and service.EventStore.
type memEventStore struct {
	mu     sync.Mutex
	seq    uint64
	events map[uint64]model.Event
	regs   map[[2]uint64]bool
	users  *memUserStore
}

func newMemEventStore(users *memUserStore) *memEventStore {
	return &memEventStore{events: map[uint64]model.Event{}, regs: map[[2]uint64]bool{}, users: users}
}

func (s *memEventStore) Create(_ context.Context, ev model.Event) (model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	ev.ID = s.seq
	ev.CreatedAt = time.Now()
	s.events[ev.ID] = ev
	return ev, nil
}

func (s *memEventStore) GetByID(_ context.Context, id uint64) (model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		return model.Event{}, repository.ErrEventNotFound
	}
	return ev, nil
}

func (s *memEventStore) registrantsLocked(eventID uint64) []model.Registrant {
	regs := []model.Registrant{}
	for key := range s.regs {
		if key[0] != eventID {
			continue
		}
		if u, err := s.users.GetByID(context.Background(), key[1]); err == nil {
			regs = append(regs, model.Registrant{UserID: u.ID, Name: u.Name, Email: u.Email})
		}
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].UserID < regs[j].UserID })
	return regs
}

func (s *memEventStore) GetWithRegistrants(_ context.Context, id uint64) (model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		return model.Event{}, repository.ErrEventNotFound
	}
	ev.Registrants = s.registrantsLocked(id)
	return ev, nil
}

func (s *memEventStore) List(_ context.Context) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Event{}
	for _, ev := range s.events {
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *memEventStore) ListWithRegistrants(ctx context.Context) ([]model.Event, error) {
	events, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range events {
		events[i].Registrants = s.registrantsLocked(events[i].ID)
	}
	return events, nil
}

func (s *memEventStore) Update(_ context.Context, ev model.Event) (model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.events[ev.ID]
	if !ok {
		return model.Event{}, repository.ErrEventNotFound
	}
	ev.CreatedAt = cur.CreatedAt
	s.events[ev.ID] = ev
	return ev, nil
}

func (s *memEventStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return repository.ErrEventNotFound
	}
	delete(s.events, id)
	for key := range s.regs {
		if key[0] == id {
			delete(s.regs, key)
		}
	}
	return nil
}

func (s *memEventStore) AddRegistration(_ context.Context, eventID, userID uint64) error {
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

func (s *memEventStore) RemoveRegistration(_ context.Context, eventID, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]uint64{eventID, userID}
	if !s.regs[key] {
		return repository.ErrNotRegistered
	}
	delete(s.regs, key)
	return nil
}

func (s *memEventStore) IsRegistered(_ context.Context, eventID, userID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regs[[2]uint64{eventID, userID}], nil
}

// memMailer records reset mail so tests can read the token back.
type memMailer struct {
	mu   sync.Mutex
	sent []string // bodies
	fail bool
}

func (m *memMailer) Send(_, _, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("relay unreachable")
	}
	m.sent = append(m.sent, body)
	return nil
}

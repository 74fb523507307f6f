// Package session holds the process-wide session state: one Store is built
// at start-up, hydrated from durable storage, and injected into everything
// that needs to read or change who is logged in.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/dmitrijs2005/bookauth/internal/client/models"
	"github.com/dmitrijs2005/bookauth/internal/client/repositories/credentials"
	"github.com/dmitrijs2005/bookauth/internal/common"
	"github.com/dmitrijs2005/bookauth/internal/logging"
	"github.com/samber/oops"
)

// Listener is called synchronously after every transition. Listeners may
// call Get but must not call Set.
type Listener func(state models.SessionState)

// Store is the single in-memory holder of the session state. Transitions
// into Authenticated write both durable slots, transitions into Anonymous
// erase them; the other states leave storage untouched.
type Store struct {
	writeMu sync.Mutex // serializes Set so listeners observe transitions in order

	mu        sync.RWMutex
	state     models.SessionState
	listeners map[uint64]Listener
	nextID    uint64

	creds credentials.Repository
	log   logging.Logger
	now   func() time.Time
}

type Option func(*Store)

// WithClock overrides the clock used to judge token expiry during hydration.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func NewStore(creds credentials.Repository, log logging.Logger, opts ...Option) *Store {
	s := &Store{
		state:     models.Anonymous(),
		listeners: make(map[uint64]Listener),
		creds:     creds,
		log:       log.With("component", "session_store"),
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Get returns a snapshot of the current state. The returned User is a copy.
func (s *Store) Get() models.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot(s.state)
}

func snapshot(st models.SessionState) models.SessionState {
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

// Subscribe registers l and returns the function that removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Set validates st, persists it when it is Authenticated or Anonymous, and
// then notifies all subscribers. When persisting fails the in-memory state
// is left unchanged and the error is returned.
func (s *Store) Set(ctx context.Context, st models.SessionState) error {
	if !st.Valid() {
		return oops.Code("SESSION_INVALID_STATE").
			With("status", st.Status.String()).
			Wrap(common.ErrInvalidState)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.setLocked(ctx, st)
}

// CompareAndSet behaves like Set but only when the current status is
// expect. It reports whether the transition happened.
func (s *Store) CompareAndSet(ctx context.Context, expect models.Status, st models.SessionState) (bool, error) {
	return s.Update(ctx, func(cur models.SessionState) (models.SessionState, bool) {
		return st, cur.Status == expect
	})
}

// Update runs fn on a snapshot of the current state while holding the write
// lock. When fn returns true its state is persisted and applied as by Set.
func (s *Store) Update(ctx context.Context, fn func(cur models.SessionState) (models.SessionState, bool)) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next, ok := fn(s.Get())
	if !ok {
		return false, nil
	}
	if !next.Valid() {
		return false, oops.Code("SESSION_INVALID_STATE").
			With("status", next.Status.String()).
			Wrap(common.ErrInvalidState)
	}
	if err := s.setLocked(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

// Clear moves to Anonymous even when erasing durable storage fails; the
// storage error is still returned so the caller can report it.
func (s *Store) Clear(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.clearLocked(ctx)
}

// Expire clears the session the backend rejected. token is the one the
// rejected request carried. An authenticated session holding a different
// token was created after that request and is left alone; Expire then
// reports false.
func (s *Store) Expire(ctx context.Context, token string) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if cur := s.Get(); cur.IsAuthenticated() && cur.Token != token {
		return false, nil
	}
	return true, s.clearLocked(ctx)
}

func (s *Store) clearLocked(ctx context.Context) error {
	err := s.creds.Clear(ctx)
	s.apply(ctx, models.Anonymous())
	if err != nil {
		return oops.Code("SESSION_CLEAR_FAILED").Wrap(err)
	}
	return nil
}

func (s *Store) setLocked(ctx context.Context, st models.SessionState) error {
	if err := s.persist(ctx, st); err != nil {
		return oops.Code("SESSION_PERSIST_FAILED").
			With("status", st.Status.String()).
			Wrap(err)
	}
	s.apply(ctx, st)
	return nil
}

func (s *Store) persist(ctx context.Context, st models.SessionState) error {
	switch st.Status {
	case models.StatusAuthenticated:
		user, err := json.Marshal(st.User)
		if err != nil {
			return err
		}
		return s.creds.Save(ctx, credentials.Credentials{Token: st.Token, User: user})
	case models.StatusAnonymous:
		return s.creds.Clear(ctx)
	default:
		return nil
	}
}

// apply swaps the state and notifies. The caller holds writeMu.
func (s *Store) apply(ctx context.Context, st models.SessionState) {
	s.mu.Lock()
	prev := s.state.Status
	s.state = st
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	s.log.Debug(ctx, "session transition", "from", prev.String(), "to", st.Status.String())

	for _, l := range listeners {
		l(snapshot(st))
	}
}

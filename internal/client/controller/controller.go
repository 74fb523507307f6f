// Package controller coordinates the session: it owns the write side of the
// session store, calls the auth service, and tells the UI where to go next.
//
// At most one of Login, Register, UpdateProfile, Refresh and ForgotPassword
// runs at a time; a second call while one is in flight is rejected with
// common.ErrOperationInProgress. Logout waits for the running operation and
// then always clears the local session.
package controller

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/bookauth/internal/client/models"
	"github.com/dmitrijs2005/bookauth/internal/client/services"
	"github.com/dmitrijs2005/bookauth/internal/client/session"
	"github.com/dmitrijs2005/bookauth/internal/common"
	"github.com/dmitrijs2005/bookauth/internal/logging"
)

const (
	RouteLogin   = "/login"
	RouteLanding = "/docs"
)

// Navigator moves the UI to a route.
type Navigator interface {
	Navigate(route string)
}

type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) { f(route) }

type Controller struct {
	store *session.Store
	auth  services.AuthService
	nav   Navigator
	log   logging.Logger

	op sync.Mutex

	verifyAttempts uint64
	verifyBase     time.Duration
	verifyWG       sync.WaitGroup
}

type Option func(*Controller)

func WithNavigator(n Navigator) Option {
	return func(c *Controller) {
		if n != nil {
			c.nav = n
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithVerifyAttempts bounds how many times Verify asks the backend when it
// cannot be reached.
func WithVerifyAttempts(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.verifyAttempts = uint64(n)
		}
	}
}

// WithVerifyBackoff sets the first delay of Verify's exponential backoff.
func WithVerifyBackoff(base time.Duration) Option {
	return func(c *Controller) {
		if base > 0 {
			c.verifyBase = base
		}
	}
}

func New(store *session.Store, auth services.AuthService, opts ...Option) *Controller {
	c := &Controller{
		store:          store,
		auth:           auth,
		nav:            NavigatorFunc(func(string) {}),
		log:            logging.Nop(),
		verifyAttempts: 3,
		verifyBase:     500 * time.Millisecond,
	}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.With("component", "session_controller")
	return c
}

// State returns the current session state.
func (c *Controller) State() models.SessionState {
	return c.store.Get()
}

// Subscribe forwards to the store.
func (c *Controller) Subscribe(l session.Listener) func() {
	return c.store.Subscribe(l)
}

func (c *Controller) acquire(op string) (release func(), err error) {
	if !c.op.TryLock() {
		return nil, &Error{Op: op, Kind: common.ErrOperationInProgress, Message: "Another request is still in progress"}
	}
	return c.op.Unlock, nil
}

// begin moves the store to Authenticating and returns the state to go back
// to if the operation does not succeed.
func (c *Controller) begin(ctx context.Context, op string) (models.SessionState, error) {
	prev := c.store.Get()
	if err := c.store.Set(ctx, models.Authenticating()); err != nil {
		logging.LogError(ctx, c.log, "failed to enter authenticating state", err)
		return prev, &Error{Op: op, Kind: common.ErrUnexpected, Message: "Could not update the local session"}
	}
	return prev, nil
}

// restore puts prev back unless something else (a forced logout) already
// moved the store out of Authenticating.
func (c *Controller) restore(ctx context.Context, prev models.SessionState) {
	if prev.Status == models.StatusAuthenticating {
		prev = models.Anonymous()
	}
	if _, err := c.store.CompareAndSet(context.WithoutCancel(ctx), models.StatusAuthenticating, prev); err != nil {
		logging.LogError(ctx, c.log, "failed to restore session state", err)
	}
}

func canceled(ctx context.Context, op string) *Error {
	return &Error{Op: op, Kind: ctx.Err(), Message: "Request canceled"}
}

func (c *Controller) navigate(route string) {
	c.nav.Navigate(route)
}

// HandleUnauthorized is registered with the gateway. token is what the
// rejected request carried. A 401 for a session that has been replaced
// since is ignored.
func (c *Controller) HandleUnauthorized(ctx context.Context, token string) {
	was := c.store.Get().Status
	expired, err := c.store.Expire(context.WithoutCancel(ctx), token)
	if err != nil {
		logging.LogError(ctx, c.log, "forced logout could not clear storage", err)
	}
	if !expired {
		c.log.Info(ctx, "ignoring backend rejection of a replaced session")
		return
	}
	c.log.Info(ctx, "session ended by backend", "previous", was.String())
	c.navigate(RouteLogin)
}

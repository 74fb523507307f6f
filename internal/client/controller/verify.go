package controller

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/bookauth/internal/client/models"
	"github.com/dmitrijs2005/bookauth/internal/client/services"
	"github.com/dmitrijs2005/bookauth/internal/common"
)

// Verify checks a hydrated session against the backend. The session is
// demoted to Anonymous only when a reachable backend says it is not valid;
// if the backend stays unreachable after the configured attempts the state
// is left alone and common.ErrNetwork is returned. A valid answer refreshes
// the stored user (and token, when the backend reissues one).
func (c *Controller) Verify(ctx context.Context) error {
	const op = "verify"

	st := c.store.Get()
	if !st.IsAuthenticated() {
		return nil
	}

	var res services.SessionResult
	backoff := retry.WithMaxRetries(c.verifyAttempts-1, retry.NewExponential(c.verifyBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		res = c.auth.Session(ctx)
		if res.Kind == services.FailureNetwork {
			c.log.Debug(ctx, "session check could not reach backend", "message", res.Message)
			return retry.RetryableError(common.ErrNetwork)
		}
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return canceled(ctx, op)
		}
		c.log.Warn(ctx, "session could not be verified, keeping it", "error", err)
		return &Error{Op: op, Kind: common.ErrNetwork, Message: res.Message}
	}
	if ctx.Err() != nil {
		return canceled(ctx, op)
	}

	switch {
	case res.Expired || (res.Kind == services.FailureNone && !res.Authenticated):
		demoted, err := c.store.Update(ctx, func(cur models.SessionState) (models.SessionState, bool) {
			return models.Anonymous(), cur.IsAuthenticated() && cur.Token == st.Token
		})
		if err != nil {
			return &Error{Op: op, Kind: common.ErrUnexpected, Message: "Could not clear the local session"}
		}
		if demoted {
			c.log.Info(ctx, "stored session rejected by backend", "message", res.Message)
			c.navigate(RouteLogin)
		}
		return nil

	case res.Authenticated && res.Data != nil:
		token := res.Data.Token
		if token == "" {
			token = st.Token
		}
		user := res.Data.User
		if _, err := c.store.Update(ctx, func(cur models.SessionState) (models.SessionState, bool) {
			return models.Authenticated(user, token), cur.IsAuthenticated() && cur.Token == st.Token
		}); err != nil {
			return &Error{Op: op, Kind: common.ErrUnexpected, Message: "Could not save the verified session"}
		}
		return nil

	case res.Authenticated:
		return nil

	default:
		c.log.Warn(ctx, "session check failed, keeping session", "kind", res.Kind.String(), "message", res.Message)
		return &Error{Op: op, Kind: common.ErrUnexpected, Message: res.Message}
	}
}

// VerifyInBackground runs Verify on its own goroutine. Wait blocks until
// every such goroutine has returned.
func (c *Controller) VerifyInBackground(ctx context.Context) {
	c.verifyWG.Add(1)
	go func() {
		defer c.verifyWG.Done()
		start := time.Now()
		if err := c.Verify(ctx); err != nil {
			c.log.Debug(ctx, "background verification finished with error", "error", err, "duration", time.Since(start))
		}
	}()
}

func (c *Controller) Wait() {
	c.verifyWG.Wait()
}

package gateway

import (
	"context"
	"net/http"
	"sync"

	"github.com/dmitrijs2005/bookauth/internal/common"
	"github.com/dmitrijs2005/bookauth/internal/logging"
	"github.com/google/uuid"
)

// Credentials is the part of durable storage the gateway touches.
type Credentials interface {
	Token(ctx context.Context) (string, error)
	ClearIfToken(ctx context.Context, token string) (bool, error)
}

// UnauthorizedHandler runs after the durable credentials were cleared
// because the backend answered 401. token is the one the rejected request
// carried, "" when it carried none.
type UnauthorizedHandler func(ctx context.Context, token string)

// authTransport wraps a base RoundTripper with the outbound token hook and
// the inbound 401 hook.
type authTransport struct {
	base  http.RoundTripper
	creds Credentials
	log   logging.Logger

	mu       sync.RWMutex
	handlers []UnauthorizedHandler
}

func (t *authTransport) addHandler(h UnauthorizedHandler) {
	t.mu.Lock()
	t.handlers = append(t.handlers, h)
	t.mu.Unlock()
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	out := req.Clone(ctx)

	token, err := t.creds.Token(ctx)
	if err != nil {
		t.log.Warn(ctx, "token unavailable, sending unauthenticated", "error", err)
		token = ""
	}
	if token != "" {
		out.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	} else {
		out.Header.Del(common.AuthorizationHeaderName)
	}
	if out.Header.Get(common.RequestIDHeaderName) == "" {
		out.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		t.forceLogout(ctx, out, token)
	}
	return resp, nil
}

func (t *authTransport) forceLogout(ctx context.Context, req *http.Request, token string) {
	log := t.log.With(
		"method", req.Method,
		"path", req.URL.Path,
		"request_id", req.Header.Get(common.RequestIDHeaderName),
	)

	// A 401 answering a request sent with a token that has since been
	// replaced says nothing about the current session.
	cleared, err := t.creds.ClearIfToken(ctx, token)
	switch {
	case err != nil:
		log.Error(ctx, "failed to clear credentials after 401", "error", err)
	case !cleared:
		log.Info(ctx, "ignoring 401 for a replaced token")
		return
	default:
		log.Warn(ctx, "backend rejected credentials, forcing logout")
	}

	t.mu.RLock()
	handlers := append([]UnauthorizedHandler(nil), t.handlers...)
	t.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, token)
	}
}

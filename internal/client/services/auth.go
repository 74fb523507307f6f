// Package services contains application services for the client.
// This file defines the authentication service: register, login, logout,
// session check, profile read/update and password reset against the backend
// REST API, with every failure normalized into a result value.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/bookauth/internal/client/gateway"
	"github.com/dmitrijs2005/bookauth/internal/client/models"
	"github.com/dmitrijs2005/bookauth/internal/common"
	"github.com/dmitrijs2005/bookauth/internal/logging"
)

// DefaultProfilePath is the profile endpoint used when none is configured.
// The backend also serves the same resource at /users/me.
const DefaultProfilePath = "/auth/user"

// Doer is the part of the HTTP gateway the service needs.
type Doer interface {
	Do(ctx context.Context, method, path string, in, out any) error
}

// AuthService defines the account operations.
//
// Contract:
//   - No method returns an error; failures come back as Result values with
//     Success=false, a user-facing Message and a Kind.
//   - Logout always reports success; a failed backend call only means the
//     server did not hear about it.
//   - Session distinguishes an expired/invalid credential (Expired) from a
//     backend that could not be reached (Kind=FailureNetwork).
//   - The service never touches durable storage.
type AuthService interface {
	Register(ctx context.Context, in models.RegisterInput) Result[AuthPayload]
	Login(ctx context.Context, in models.LoginInput) Result[AuthPayload]
	Logout(ctx context.Context) Result[struct{}]
	Session(ctx context.Context) SessionResult
	GetUser(ctx context.Context) Result[models.User]
	UpdateProfile(ctx context.Context, p models.ProfileUpdate) Result[models.User]
	ForgotPassword(ctx context.Context, email string) Result[struct{}]
}

type authService struct {
	api         Doer
	log         logging.Logger
	profilePath string
}

type Option func(*authService)

// WithProfilePath selects the profile endpoint, e.g. "/users/me".
func WithProfilePath(path string) Option {
	return func(a *authService) {
		if path != "" {
			a.profilePath = path
		}
	}
}

// NewAuthService constructs an AuthService on top of the gateway.
func NewAuthService(api Doer, log logging.Logger, opts ...Option) AuthService {
	a := &authService{api: api, log: log.With("component", "auth_service"), profilePath: DefaultProfilePath}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *authService) Register(ctx context.Context, in models.RegisterInput) Result[AuthPayload] {
	return a.authenticate(ctx, "/auth/signup", toRegisterRequest(in), registerMessages)
}

func (a *authService) Login(ctx context.Context, in models.LoginInput) Result[AuthPayload] {
	return a.authenticate(ctx, "/auth/login", toLoginRequest(in), loginMessages)
}

func (a *authService) authenticate(ctx context.Context, path string, body any, m messages) Result[AuthPayload] {
	var raw json.RawMessage
	if err := a.api.Do(ctx, http.MethodPost, path, body, &raw); err != nil {
		return failure[AuthPayload](ctx, a.log, err, m)
	}

	inner, msg, ok, err := unwrap(raw)
	if err != nil {
		return failure[AuthPayload](ctx, a.log, err, m)
	}
	if !ok {
		return Result[AuthPayload]{Message: orDefault(msg, m.fallback), Kind: FailureServer, StatusCode: http.StatusOK}
	}

	payload, err := decodeAuthPayload(inner)
	if err != nil {
		return failure[AuthPayload](ctx, a.log, err, m)
	}
	return Result[AuthPayload]{Success: true, Message: msg, Data: &payload}
}

func (a *authService) Logout(ctx context.Context) Result[struct{}] {
	err := a.api.Do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	switch {
	case err == nil:
		return Result[struct{}]{Success: true, Message: "Logged out"}
	case isResponse(err):
		a.log.Warn(ctx, "logout call failed, clearing local state anyway", "error", err)
		return Result[struct{}]{Success: true, Message: "Logged out locally"}
	default:
		a.log.Warn(ctx, "network error during logout, clearing local state", "error", err)
		return Result[struct{}]{Success: true, Message: "Logged out locally due to network error"}
	}
}

func (a *authService) Session(ctx context.Context) SessionResult {
	var raw json.RawMessage
	err := a.api.Do(ctx, http.MethodGet, "/auth/session", nil, &raw)
	if err == nil {
		res, derr := decodeSession(raw)
		if derr == nil {
			return res
		}
		err = derr
	}

	switch kind := classify(ctx, err); {
	case gateway.IsUnauthorized(err):
		return SessionResult{Message: "Session expired or invalid", Expired: true, Kind: FailureServer}
	case kind == FailureNetwork:
		return SessionResult{Message: "Network error while checking session", Kind: kind}
	case kind == FailureCanceled:
		return SessionResult{Message: canceledMessage, Kind: kind}
	default:
		if kind == FailureUnexpected {
			logging.LogError(ctx, a.log, "session check failed", err)
		}
		return SessionResult{Message: "Error checking session status", Kind: kind}
	}
}

func (a *authService) GetUser(ctx context.Context) Result[models.User] {
	var raw json.RawMessage
	if err := a.api.Do(ctx, http.MethodGet, a.profilePath, nil, &raw); err != nil {
		return failure[models.User](ctx, a.log, err, getUserMessages)
	}
	return a.userResult(ctx, raw, getUserMessages)
}

func (a *authService) UpdateProfile(ctx context.Context, p models.ProfileUpdate) Result[models.User] {
	var raw json.RawMessage
	if err := a.api.Do(ctx, http.MethodPut, a.profilePath, toProfileRequest(p), &raw); err != nil {
		return failure[models.User](ctx, a.log, err, updateProfileMessages)
	}
	return a.userResult(ctx, raw, updateProfileMessages)
}

func (a *authService) userResult(ctx context.Context, raw json.RawMessage, m messages) Result[models.User] {
	inner, msg, ok, err := unwrap(raw)
	if err != nil {
		return failure[models.User](ctx, a.log, err, m)
	}
	if !ok {
		return Result[models.User]{Message: orDefault(msg, m.fallback), Kind: FailureServer, StatusCode: http.StatusOK}
	}
	user, err := decodeUser(inner)
	if err != nil {
		return failure[models.User](ctx, a.log, err, m)
	}
	return Result[models.User]{Success: true, Message: msg, Data: &user}
}

func (a *authService) ForgotPassword(ctx context.Context, email string) Result[struct{}] {
	var raw json.RawMessage
	if err := a.api.Do(ctx, http.MethodPost, "/auth/forgot-password", forgotPasswordRequest{Email: email}, &raw); err != nil {
		return failure[struct{}](ctx, a.log, err, forgotPasswordMessages)
	}
	_, msg, ok, err := unwrap(raw)
	if err != nil {
		return failure[struct{}](ctx, a.log, err, forgotPasswordMessages)
	}
	if !ok {
		return Result[struct{}]{Message: orDefault(msg, forgotPasswordMessages.fallback), Kind: FailureServer, StatusCode: http.StatusOK}
	}
	return Result[struct{}]{Success: true, Message: msg}
}

// failure applies the translation policy: a server answer keeps the
// server's message and field errors, no answer becomes the network message,
// anything else becomes the unexpected message.
func failure[T any](ctx context.Context, log logging.Logger, err error, m messages) Result[T] {
	res := Result[T]{Kind: classify(ctx, err)}

	switch res.Kind {
	case FailureServer:
		var re *gateway.ResponseError
		errors.As(err, &re)
		res.StatusCode = re.StatusCode
		res.Message = orDefault(re.Message, m.fallback)
		res.Errors = re.Errors
	case FailureNetwork:
		res.Message = m.network
	case FailureCanceled:
		res.Message = canceledMessage
	default:
		logging.LogError(ctx, log, "auth request failed", err)
		res.Message = m.unexpected
	}
	return res
}

func classify(ctx context.Context, err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case isResponse(err):
		return FailureServer
	case errors.Is(err, common.ErrNetwork):
		return FailureNetwork
	case ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)):
		return FailureCanceled
	default:
		return FailureUnexpected
	}
}

func isResponse(err error) bool {
	var re *gateway.ResponseError
	return errors.As(err, &re)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

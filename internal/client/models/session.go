package models

import "fmt"

// Status tags the session state variant.
type Status int

const (
	StatusAnonymous Status = iota
	StatusAuthenticating
	StatusAuthenticated
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusAnonymous:
		return "anonymous"
	case StatusAuthenticating:
		return "authenticating"
	case StatusAuthenticated:
		return "authenticated"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// SessionState is the tagged variant
// {Anonymous, Authenticating, Authenticated(User, Token), Error(Reason)}.
// User and Token are set only for StatusAuthenticated, Reason only for
// StatusError. Build values with the constructors below.
type SessionState struct {
	Status Status
	User   *User
	Token  string
	Reason string
}

func Anonymous() SessionState { return SessionState{Status: StatusAnonymous} }

func Authenticating() SessionState { return SessionState{Status: StatusAuthenticating} }

func Authenticated(user User, token string) SessionState {
	return SessionState{Status: StatusAuthenticated, User: &user, Token: token}
}

func Failed(reason string) SessionState {
	return SessionState{Status: StatusError, Reason: reason}
}

// IsAuthenticated reports whether the state carries a usable identity.
func (s SessionState) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated
}

// Valid checks the variant invariants, most importantly that a token is
// never present without a user.
func (s SessionState) Valid() bool {
	switch s.Status {
	case StatusAuthenticated:
		return s.User != nil && s.Token != "" && s.Reason == ""
	case StatusAnonymous, StatusAuthenticating:
		return s.User == nil && s.Token == "" && s.Reason == ""
	case StatusError:
		return s.User == nil && s.Token == ""
	default:
		return false
	}
}

package services

import "github.com/dmitrijs2005/bookauth/internal/client/models"

// FailureKind says which branch of the translation policy produced a
// failed result.
type FailureKind int

const (
	FailureNone FailureKind = iota
	// FailureServer: the backend answered with an error status or a
	// success:false envelope.
	FailureServer
	// FailureNetwork: the request left but no response came back.
	FailureNetwork
	// FailureCanceled: the caller's context ended first.
	FailureCanceled
	FailureUnexpected
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureServer:
		return "server"
	case FailureNetwork:
		return "network"
	case FailureCanceled:
		return "canceled"
	default:
		return "unexpected"
	}
}

// Result is the uniform outcome of an account operation.
type Result[T any] struct {
	Success bool
	Message string
	Data    *T
	Errors  map[string]string

	Kind       FailureKind
	StatusCode int
}

// AuthPayload is what signup and login answer with.
type AuthPayload struct {
	User  models.User
	Token string
}

// SessionResult is the outcome of a session check. Data is set only when
// Authenticated is true and the backend returned the user; Data.Token may be
// empty when the backend did not reissue one.
type SessionResult struct {
	Authenticated bool
	Data          *AuthPayload
	Message       string
	Expired       bool
	Kind          FailureKind
}

const canceledMessage = "Request canceled"

type messages struct {
	fallback   string
	network    string
	unexpected string
}

var (
	registerMessages = messages{
		fallback:   "Registration failed",
		network:    "Network error. Please check your connection.",
		unexpected: "An unexpected error occurred during registration.",
	}
	loginMessages = messages{
		fallback:   "Login failed",
		network:    "Network error. Please check your connection.",
		unexpected: "An unexpected error occurred during login.",
	}
	getUserMessages = messages{
		fallback:   "Error fetching user data",
		network:    "Network error while fetching user data",
		unexpected: "An unexpected error occurred while fetching user data",
	}
	updateProfileMessages = messages{
		fallback:   "Error updating profile",
		network:    "Network error while updating profile",
		unexpected: "An unexpected error occurred while updating profile",
	}
	forgotPasswordMessages = messages{
		fallback:   "Error requesting password reset",
		network:    "Network error while requesting password reset",
		unexpected: "An unexpected error occurred while requesting password reset",
	}
)

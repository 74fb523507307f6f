package common

import "errors"

// Error taxonomy shared by the gateway, the auth service, the session
// controller and the registration wizard. Callers match with errors.Is.
var (
	// ErrValidation is raised locally and never reaches the network.
	ErrValidation = errors.New("validation error")

	// ErrAuthenticationFailed covers rejected credentials and rejected registrations.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrSessionExpired is a 401 on an authenticated call.
	ErrSessionExpired = errors.New("session expired")

	// ErrNetwork means the request left the client but no response came back.
	ErrNetwork = errors.New("network error")

	// ErrUnexpected is the catch-all.
	ErrUnexpected = errors.New("unexpected error")

	ErrOperationInProgress = errors.New("another session operation is in progress")
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrInvalidState        = errors.New("invalid session state")
)

// Package common contains shared constants and sentinel errors used across
// the client components.
package common

// Header names set on every outbound request by the gateway.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
	BearerScheme            = "Bearer"
)

// Durable slot keys. Both slots are written and cleared together.
const (
	TokenSlot = "auth_token"
	UserSlot  = "user"
)

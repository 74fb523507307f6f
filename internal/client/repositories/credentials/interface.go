// Package credentials persists the two durable client slots: the bearer
// token and the serialized user profile. The slots are written and cleared
// together, never independently.
package credentials

import "context"

// Credentials is the content of both slots. A zero field means the slot is
// empty.
type Credentials struct {
	Token string
	User  []byte
}

// Complete reports whether both slots are filled.
func (c Credentials) Complete() bool {
	return c.Token != "" && len(c.User) > 0
}

// Empty reports whether both slots are empty.
func (c Credentials) Empty() bool {
	return c.Token == "" && len(c.User) == 0
}

type Repository interface {
	// Token returns the stored bearer token or "" when there is none.
	Token(ctx context.Context) (string, error)
	// Load returns whatever the slots contain, possibly partially filled.
	Load(ctx context.Context) (Credentials, error)
	// Save writes both slots atomically. Both fields must be non-empty.
	Save(ctx context.Context, c Credentials) error
	// Clear empties both slots atomically.
	Clear(ctx context.Context) error
	// ClearIfToken empties both slots only while the token slot still
	// holds token, and reports whether it did.
	ClearIfToken(ctx context.Context, token string) (bool, error)
}

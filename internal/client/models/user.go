// Package models defines the client-side data model: the user identity, the
// session state variant, and the inputs of the account operations.
//
// JSON tags on these types describe the client's own camelCase encoding used
// for the durable user slot. The backend's snake_case wire format lives in
// the services package and never leaks in here.
package models

import (
	"strings"
	"time"
)

// User is the identity record owned by the session store while a session is
// authenticated. It is replaced wholesale on login, refresh and update.
type User struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Email              string          `json:"email"`
	SoftwareExperience ExperienceLevel `json:"softwareExperience,omitempty"`
	HardwareExperience ExperienceLevel `json:"hardwareExperience,omitempty"`
	Avatar             string          `json:"avatar,omitempty"`
	Initials           string          `json:"initials,omitempty"`
	CreatedAt          *time.Time      `json:"createdAt,omitempty"`
	LastLoginAt        *time.Time      `json:"lastLoginAt,omitempty"`
}

// DisplayInitials returns Initials, deriving them from Name when the server
// did not send any.
func (u User) DisplayInitials() string {
	if u.Initials != "" {
		return u.Initials
	}
	var b strings.Builder
	for _, part := range strings.Fields(u.Name) {
		for _, r := range part {
			b.WriteString(strings.ToUpper(string(r)))
			break
		}
		if b.Len() >= 2 {
			break
		}
	}
	return b.String()
}

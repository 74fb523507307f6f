package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/bookauth/internal/client/models"
	"github.com/samber/oops"
)

// Everything crossing the backend boundary is declared in this file. The
// backend speaks snake_case for experience and timestamp fields, the models
// package speaks camelCase; nothing else in the repo knows about the former.

// wireID accepts both "42" and 42 since the backend's primary key is an
// integer while the client treats ids as opaque strings.
type wireID string

func (id *wireID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = wireID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	*id = wireID(n.String())
	return nil
}

func (id wireID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

type wireUser struct {
	ID                 wireID     `json:"id"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	SoftwareExperience string     `json:"software_experience,omitempty"`
	HardwareExperience string     `json:"hardware_experience,omitempty"`
	Avatar             string     `json:"avatar,omitempty"`
	Initials           string     `json:"initials,omitempty"`
	CreatedAt          *time.Time `json:"created_at,omitempty"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
}

type registerRequest struct {
	Name               string `json:"name"`
	Email              string `json:"email"`
	Password           string `json:"password"`
	SoftwareExperience string `json:"software_experience,omitempty"`
	HardwareExperience string `json:"hardware_experience,omitempty"`
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// profileRequest omits nil fields, so a partial update transmits only the
// keys that changed.
type profileRequest struct {
	Name               *string `json:"name,omitempty"`
	Email              *string `json:"email,omitempty"`
	SoftwareExperience *string `json:"software_experience,omitempty"`
	HardwareExperience *string `json:"hardware_experience,omitempty"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// authPayload is {user, token}. The backend may also wrap it in a
// {success, message, data} envelope.
type authPayload struct {
	User  *wireUser `json:"user"`
	Token string    `json:"token"`
}

type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type sessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *wireUser    `json:"user"`
	Token         string       `json:"token"`
	Data          *authPayload `json:"data"`
	Message       string       `json:"message"`
}

func toWireUser(u models.User) wireUser {
	return wireUser{
		ID:                 wireID(u.ID),
		Name:               u.Name,
		Email:              u.Email,
		SoftwareExperience: string(u.SoftwareExperience),
		HardwareExperience: string(u.HardwareExperience),
		Avatar:             u.Avatar,
		Initials:           u.Initials,
		CreatedAt:          u.CreatedAt,
		LastLoginAt:        u.LastLoginAt,
	}
}

func fromWireUser(w wireUser) models.User {
	return models.User{
		ID:                 string(w.ID),
		Name:               w.Name,
		Email:              w.Email,
		SoftwareExperience: models.ExperienceLevel(w.SoftwareExperience),
		HardwareExperience: models.ExperienceLevel(w.HardwareExperience),
		Avatar:             w.Avatar,
		Initials:           w.Initials,
		CreatedAt:          w.CreatedAt,
		LastLoginAt:        w.LastLoginAt,
	}
}

func toRegisterRequest(in models.RegisterInput) registerRequest {
	return registerRequest{
		Name:               in.Name,
		Email:              in.Email,
		Password:           in.Password,
		SoftwareExperience: string(in.SoftwareExperience),
		HardwareExperience: string(in.HardwareExperience),
	}
}

func toLoginRequest(in models.LoginInput) loginRequest {
	return loginRequest{Email: in.Email, Password: in.Password, RememberMe: in.RememberMe}
}

func toProfileRequest(p models.ProfileUpdate) profileRequest {
	req := profileRequest{Name: p.Name, Email: p.Email}
	if p.SoftwareExperience != nil {
		s := string(*p.SoftwareExperience)
		req.SoftwareExperience = &s
	}
	if p.HardwareExperience != nil {
		s := string(*p.HardwareExperience)
		req.HardwareExperience = &s
	}
	return req
}

// unwrap strips the optional {success, message, data} envelope. It returns
// the inner payload and, when the envelope reports success:false, the
// server's message with ok=false.
func unwrap(raw json.RawMessage) (payload json.RawMessage, message string, ok bool, err error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, "", true, nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, "", false, oops.Code("AUTH_RESPONSE_DECODE_FAILED").Wrapf(err, "decode response envelope")
	}
	if env.Success == nil {
		return raw, "", true, nil
	}
	if !*env.Success {
		return nil, env.Message, false, nil
	}
	if len(env.Data) == 0 {
		return raw, env.Message, true, nil
	}
	return env.Data, env.Message, true, nil
}

func decodeAuthPayload(raw json.RawMessage) (AuthPayload, error) {
	var p authPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return AuthPayload{}, oops.Code("AUTH_RESPONSE_DECODE_FAILED").Wrapf(err, "decode auth payload")
	}
	if p.User == nil || p.Token == "" {
		return AuthPayload{}, oops.Code("AUTH_RESPONSE_INCOMPLETE").
			With("has_user", p.User != nil).
			With("has_token", p.Token != "").
			Errorf("auth payload must carry both user and token")
	}
	return AuthPayload{User: fromWireUser(*p.User), Token: p.Token}, nil
}

// decodeUser accepts {user: {...}} as well as a bare user object, the
// latter being what /users/me answers.
func decodeUser(raw json.RawMessage) (models.User, error) {
	var wrapped struct {
		User *wireUser `json:"user"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return models.User{}, oops.Code("AUTH_RESPONSE_DECODE_FAILED").Wrapf(err, "decode user payload")
	}
	if wrapped.User != nil {
		return fromWireUser(*wrapped.User), nil
	}

	var bare wireUser
	if err := json.Unmarshal(raw, &bare); err != nil {
		return models.User{}, oops.Code("AUTH_RESPONSE_DECODE_FAILED").Wrapf(err, "decode user payload")
	}
	if bare.ID == "" && bare.Email == "" {
		return models.User{}, oops.Code("AUTH_RESPONSE_INCOMPLETE").Errorf("user payload is empty")
	}
	return fromWireUser(bare), nil
}

func decodeSession(raw json.RawMessage) (SessionResult, error) {
	var s sessionResponse
	if err := json.Unmarshal(raw, &s); err != nil {
		return SessionResult{}, oops.Code("AUTH_RESPONSE_DECODE_FAILED").Wrapf(err, "decode session payload")
	}
	res := SessionResult{Authenticated: s.Authenticated, Message: s.Message}

	user, token := s.User, s.Token
	if s.Data != nil {
		if s.Data.User != nil {
			user = s.Data.User
		}
		if s.Data.Token != "" {
			token = s.Data.Token
		}
	}
	if s.Authenticated && user != nil {
		res.Data = &AuthPayload{User: fromWireUser(*user), Token: token}
	}
	return res, nil
}

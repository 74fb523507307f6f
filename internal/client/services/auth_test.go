package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/bookauth/internal/client/gateway"
	"github.com/dmitrijs2005/bookauth/internal/client/models"
	"github.com/dmitrijs2005/bookauth/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fake gateway ----

type call struct {
	Method string
	Path   string
	In     any
}

type fakeDoer struct {
	body  string
	err   error
	calls []call
}

func (f *fakeDoer) Do(_ context.Context, method, path string, in, out any) error {
	f.calls = append(f.calls, call{Method: method, Path: path, In: in})
	if f.err != nil {
		return f.err
	}
	if raw, ok := out.(*json.RawMessage); ok && f.body != "" {
		*raw = json.RawMessage(f.body)
	}
	return nil
}

func newSvc(d Doer, opts ...Option) AuthService {
	return NewAuthService(d, logging.Nop(), opts...)
}

var (
	netErr       = &gateway.TransportError{Method: "POST", Path: "/x", Err: errors.New("connection refused")}
	unauthorized = &gateway.ResponseError{StatusCode: http.StatusUnauthorized, Message: "Incorrect email or password"}
)

const authBody = `{"user":{"id":1,"name":"Jo","email":"jo@example.com","software_experience":"beginner"},"token":"tok"}`

// ---- register / login ----

func TestRegister_Success(t *testing.T) {
	d := &fakeDoer{body: authBody}
	res := newSvc(d).Register(context.Background(), models.RegisterInput{
		Name: "Jo", Email: "jo@example.com", Password: "Password1",
		SoftwareExperience: models.ExperienceBeginner,
		HardwareExperience: models.ExperienceAdvanced,
	})

	require.True(t, res.Success, res.Message)
	require.NotNil(t, res.Data)
	assert.Equal(t, "tok", res.Data.Token)
	assert.Equal(t, models.ExperienceBeginner, res.Data.User.SoftwareExperience)

	require.Len(t, d.calls, 1)
	assert.Equal(t, http.MethodPost, d.calls[0].Method)
	assert.Equal(t, "/auth/signup", d.calls[0].Path)
	req, ok := d.calls[0].In.(registerRequest)
	require.True(t, ok)
	assert.Equal(t, "advanced", req.HardwareExperience)
}

func TestRegister_Failures(t *testing.T) {
	tests := []struct {
		name       string
		doer       *fakeDoer
		wantKind   FailureKind
		wantMsg    string
		wantErrors map[string]string
	}{
		{
			name: "server message and errors",
			doer: &fakeDoer{err: &gateway.ResponseError{
				StatusCode: http.StatusBadRequest,
				Message:    "Email already registered",
				Errors:     map[string]string{"email": "taken"},
			}},
			wantKind:   FailureServer,
			wantMsg:    "Email already registered",
			wantErrors: map[string]string{"email": "taken"},
		},
		{
			name:     "server without message",
			doer:     &fakeDoer{err: &gateway.ResponseError{StatusCode: http.StatusInternalServerError}},
			wantKind: FailureServer,
			wantMsg:  "Registration failed",
		},
		{
			name:     "envelope success false",
			doer:     &fakeDoer{body: `{"success":false}`},
			wantKind: FailureServer,
			wantMsg:  "Registration failed",
		},
		{
			name:     "network",
			doer:     &fakeDoer{err: netErr},
			wantKind: FailureNetwork,
			wantMsg:  "Network error. Please check your connection.",
		},
		{
			name:     "malformed body",
			doer:     &fakeDoer{body: `{"user":null}`},
			wantKind: FailureUnexpected,
			wantMsg:  "An unexpected error occurred during registration.",
		},
		{
			name:     "encode failure",
			doer:     &fakeDoer{err: errors.New("encode POST /auth/signup request")},
			wantKind: FailureUnexpected,
			wantMsg:  "An unexpected error occurred during registration.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newSvc(tt.doer).Register(context.Background(), models.RegisterInput{Name: "Jo"})
			assert.False(t, res.Success)
			assert.Nil(t, res.Data)
			assert.Equal(t, tt.wantKind, res.Kind)
			assert.Equal(t, tt.wantMsg, res.Message)
			assert.Equal(t, tt.wantErrors, res.Errors)
		})
	}
}

func TestLogin_SendsRememberMe(t *testing.T) {
	d := &fakeDoer{body: `{"success":true,"message":"Welcome","data":` + authBody + `}`}
	res := newSvc(d).Login(context.Background(), models.LoginInput{Email: "jo@example.com", Password: "Password1", RememberMe: true})

	require.True(t, res.Success)
	assert.Equal(t, "Welcome", res.Message)
	assert.Equal(t, "jo@example.com", res.Data.User.Email)

	require.Len(t, d.calls, 1)
	assert.Equal(t, "/auth/login", d.calls[0].Path)
	assert.Equal(t, loginRequest{Email: "jo@example.com", Password: "Password1", RememberMe: true}, d.calls[0].In)
}

func TestLogin_WrongPassword(t *testing.T) {
	res := newSvc(&fakeDoer{err: unauthorized}).Login(context.Background(), models.LoginInput{Email: "a@b.co", Password: "nope"})

	assert.False(t, res.Success)
	assert.Equal(t, FailureServer, res.Kind)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, "Incorrect email or password", res.Message)
}

func TestLogin_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := newSvc(&fakeDoer{err: context.Canceled}).Login(ctx, models.LoginInput{})
	assert.False(t, res.Success)
	assert.Equal(t, FailureCanceled, res.Kind)
}

// ---- logout ----

func TestLogout_AlwaysSucceeds(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{name: "ok", wantMsg: "Logged out"},
		{name: "server error", err: &gateway.ResponseError{StatusCode: http.StatusInternalServerError}, wantMsg: "Logged out locally"},
		{name: "network error", err: netErr, wantMsg: "Logged out locally due to network error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDoer{err: tt.err}
			res := newSvc(d).Logout(context.Background())
			assert.True(t, res.Success)
			assert.Equal(t, tt.wantMsg, res.Message)
			require.Len(t, d.calls, 1)
			assert.Equal(t, "/auth/logout", d.calls[0].Path)
		})
	}
}

// ---- session ----

func TestSession(t *testing.T) {
	tests := []struct {
		name        string
		doer        *fakeDoer
		wantAuth    bool
		wantExpired bool
		wantKind    FailureKind
		wantMsg     string
	}{
		{
			name:     "authenticated",
			doer:     &fakeDoer{body: `{"authenticated":true,"user":{"id":1,"name":"Jo"}}`},
			wantAuth: true,
		},
		{
			name: "not authenticated",
			doer: &fakeDoer{body: `{"authenticated":false}`},
		},
		{
			name:        "expired",
			doer:        &fakeDoer{err: unauthorized},
			wantExpired: true,
			wantKind:    FailureServer,
			wantMsg:     "Session expired or invalid",
		},
		{
			name:     "network",
			doer:     &fakeDoer{err: netErr},
			wantKind: FailureNetwork,
			wantMsg:  "Network error while checking session",
		},
		{
			name:     "server error",
			doer:     &fakeDoer{err: &gateway.ResponseError{StatusCode: http.StatusBadGateway}},
			wantKind: FailureServer,
			wantMsg:  "Error checking session status",
		},
		{
			name:     "garbage",
			doer:     &fakeDoer{body: `[1,2]`},
			wantKind: FailureUnexpected,
			wantMsg:  "Error checking session status",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newSvc(tt.doer).Session(context.Background())
			assert.Equal(t, tt.wantAuth, res.Authenticated)
			assert.Equal(t, tt.wantExpired, res.Expired)
			assert.Equal(t, tt.wantKind, res.Kind)
			assert.Equal(t, tt.wantMsg, res.Message)
			if tt.wantAuth {
				require.NotNil(t, res.Data)
				assert.Equal(t, "Jo", res.Data.User.Name)
			}
		})
	}
}

// ---- profile ----

func TestGetUser_ConfigurablePath(t *testing.T) {
	d := &fakeDoer{body: `{"id":5,"name":"Jo","email":"jo@example.com"}`}
	res := newSvc(d, WithProfilePath("/users/me")).GetUser(context.Background())

	require.True(t, res.Success)
	assert.Equal(t, "5", res.Data.ID)
	assert.Equal(t, "/users/me", d.calls[0].Path)
	assert.Equal(t, http.MethodGet, d.calls[0].Method)
}

func TestGetUser_NetworkMessage(t *testing.T) {
	res := newSvc(&fakeDoer{err: netErr}).GetUser(context.Background())
	assert.False(t, res.Success)
	assert.Equal(t, "Network error while fetching user data", res.Message)
}

// TestUpdateProfile_PartialOverHTTP runs against a backend that applies
// only the keys present in the body, so untouched fields must survive.
func TestUpdateProfile_PartialOverHTTP(t *testing.T) {
	stored := map[string]any{
		"id": 1, "name": "Jo", "email": "jo@example.com",
		"software_experience": "beginner", "hardware_experience": "advanced",
	}
	var sent map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/auth/user", r.URL.Path)
		b, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(b, &sent))
		for k, v := range sent {
			stored[k] = v
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"user": stored})
	}))
	defer srv.Close()

	g := gateway.New(srv.URL+"/api", noCreds{})
	svc := newSvc(g)

	name := "X"
	res := svc.UpdateProfile(context.Background(), models.ProfileUpdate{Name: &name})

	require.True(t, res.Success, res.Message)
	assert.Equal(t, map[string]any{"name": "X"}, sent)
	assert.Equal(t, "X", res.Data.Name)
	assert.Equal(t, "jo@example.com", res.Data.Email)
	assert.Equal(t, models.ExperienceBeginner, res.Data.SoftwareExperience)
	assert.Equal(t, models.ExperienceAdvanced, res.Data.HardwareExperience)
}

func TestUpdateProfile_ServerErrors(t *testing.T) {
	d := &fakeDoer{err: &gateway.ResponseError{StatusCode: 422, Errors: map[string]string{"email": "value is not a valid email address"}}}
	res := newSvc(d).UpdateProfile(context.Background(), models.ProfileUpdate{})

	assert.False(t, res.Success)
	assert.Equal(t, "Error updating profile", res.Message)
	assert.Equal(t, "value is not a valid email address", res.Errors["email"])
}

// ---- forgot password ----

func TestForgotPassword(t *testing.T) {
	d := &fakeDoer{body: `{"success":true,"message":"Reset link sent"}`}
	res := newSvc(d).ForgotPassword(context.Background(), "jo@example.com")
	require.True(t, res.Success)
	assert.Equal(t, "Reset link sent", res.Message)
	assert.Equal(t, forgotPasswordRequest{Email: "jo@example.com"}, d.calls[0].In)

	res = newSvc(&fakeDoer{err: netErr}).ForgotPassword(context.Background(), "jo@example.com")
	assert.False(t, res.Success)
	assert.Equal(t, "Network error while requesting password reset", res.Message)

	res = newSvc(&fakeDoer{err: &gateway.ResponseError{StatusCode: 404}}).ForgotPassword(context.Background(), "jo@example.com")
	assert.Equal(t, "Error requesting password reset", res.Message)
}

func TestFailureKind_String(t *testing.T) {
	assert.Equal(t, "network", FailureNetwork.String())
	assert.Equal(t, "unexpected", FailureUnexpected.String())
}

type noCreds struct{}

func (noCreds) Token(context.Context) (string, error) { return "", nil }
func (noCreds) ClearIfToken(context.Context, string) (bool, error) {
	return true, nil
}

package controller

import (
	"context"
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/dmitrijs2005/bookauth/internal/client/models"
	"github.com/dmitrijs2005/bookauth/internal/client/rules"
	"github.com/dmitrijs2005/bookauth/internal/common"
	"github.com/dmitrijs2005/bookauth/internal/logging"
)

// Login signs in and, on success, stores the user and token and navigates
// to the landing route. A rejected login leaves the previous state in place.
func (c *Controller) Login(ctx context.Context, in models.LoginInput) error {
	const op = "login"
	release, err := c.acquire(op)
	if err != nil {
		return err
	}
	defer release()

	in.Email = strings.TrimSpace(in.Email)
	if err := validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required.Error("Email is required"), rules.Email),
		validation.Field(&in.Password, validation.Required.Error("Password is required")),
	); err != nil {
		fields := rules.FieldErrors(err)
		return validationError(op, fields, rules.FirstMessage(fields))
	}

	prev, err := c.begin(ctx, op)
	if err != nil {
		return err
	}
	if err := c.signIn(ctx, op, in, prev); err != nil {
		return err
	}
	c.navigate(RouteLanding)
	return nil
}

func (c *Controller) signIn(ctx context.Context, op string, in models.LoginInput, prev models.SessionState) error {
	res := c.auth.Login(ctx, in)
	if ctx.Err() != nil {
		c.restore(ctx, prev)
		return canceled(ctx, op)
	}
	if !res.Success {
		c.restore(ctx, prev)
		return fromResult(op, res.Kind, res.StatusCode, res.Message, res.Errors, common.ErrAuthenticationFailed)
	}

	ok, err := c.store.CompareAndSet(ctx, models.StatusAuthenticating, models.Authenticated(res.Data.User, res.Data.Token))
	if err != nil {
		logging.LogError(ctx, c.log, "failed to store session", err)
		c.restore(ctx, prev)
		return &Error{Op: op, Kind: common.ErrUnexpected, Message: "Signed in, but the session could not be saved"}
	}
	if !ok {
		return &Error{Op: op, Kind: common.ErrSessionExpired, Message: "The session ended while signing in"}
	}
	c.log.Info(ctx, "signed in", "user_id", res.Data.User.ID)
	return nil
}

// AccountCreatedPrefix starts the message of a Register error returned
// after the account was created but the follow-up sign-in failed.
const AccountCreatedPrefix = "Account created, but signing in failed: "

// Register creates the account, signs in with the same credentials and
// navigates to the landing route.
func (c *Controller) Register(ctx context.Context, in models.RegisterInput) error {
	const op = "register"
	release, err := c.acquire(op)
	if err != nil {
		return err
	}
	defer release()

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required.Error("Name is required"), rules.Name),
		validation.Field(&in.Email, validation.Required.Error("Email is required"), rules.Email),
		validation.Field(&in.Password, validation.Required.Error("Password is required"), rules.Password),
		validation.Field(&in.SoftwareExperience, rules.Experience),
		validation.Field(&in.HardwareExperience, rules.Experience),
	); err != nil {
		fields := rules.FieldErrors(err)
		return validationError(op, fields, rules.FirstMessage(fields))
	}

	prev, err := c.begin(ctx, op)
	if err != nil {
		return err
	}

	res := c.auth.Register(ctx, in)
	if ctx.Err() != nil {
		c.restore(ctx, prev)
		return canceled(ctx, op)
	}
	if !res.Success {
		c.restore(ctx, prev)
		return fromResult(op, res.Kind, res.StatusCode, res.Message, res.Errors, common.ErrAuthenticationFailed)
	}
	c.log.Info(ctx, "account created", "user_id", res.Data.User.ID)

	if err := c.signIn(ctx, op, models.LoginInput{Email: in.Email, Password: in.Password}, prev); err != nil {
		var e *Error
		if errors.As(err, &e) {
			e.Message = AccountCreatedPrefix + e.Message
		}
		return err
	}
	c.navigate(RouteLanding)
	return nil
}

// Logout tells the backend and clears the local session whatever it says.
// It returns the message to show.
func (c *Controller) Logout(ctx context.Context) string {
	c.op.Lock()
	defer c.op.Unlock()

	res := c.auth.Logout(ctx)
	if err := c.store.Clear(context.WithoutCancel(ctx)); err != nil {
		logging.LogError(ctx, c.log, "logout could not erase durable storage", err)
	}
	c.log.Info(ctx, "signed out", "detail", res.Message)
	c.navigate(RouteLogin)
	return res.Message
}

// UpdateProfile sends the fields of p that differ from the current user and
// replaces the user with the server's answer. The token is kept.
func (c *Controller) UpdateProfile(ctx context.Context, p models.ProfileUpdate) (models.User, error) {
	const op = "update_profile"
	release, err := c.acquire(op)
	if err != nil {
		return models.User{}, err
	}
	defer release()

	st := c.store.Get()
	if !st.IsAuthenticated() {
		return models.User{}, &Error{Op: op, Kind: common.ErrNotAuthenticated, Message: "Please log in first"}
	}

	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		p.Name = &name
	}
	if p.Email != nil {
		email := strings.TrimSpace(*p.Email)
		p.Email = &email
	}
	changes := p.Changes(*st.User)
	if changes.Empty() {
		return *st.User, nil
	}

	if err := validation.ValidateStruct(&changes,
		validation.Field(&changes.Name, validation.NilOrNotEmpty.Error("Name is required"), rules.Name),
		validation.Field(&changes.Email, validation.NilOrNotEmpty.Error("Email is required"), rules.Email),
		validation.Field(&changes.SoftwareExperience, rules.Experience),
		validation.Field(&changes.HardwareExperience, rules.Experience),
	); err != nil {
		fields := rules.FieldErrors(err)
		return models.User{}, validationError(op, fields, rules.FirstMessage(fields))
	}

	res := c.auth.UpdateProfile(ctx, changes)
	if ctx.Err() != nil {
		return models.User{}, canceled(ctx, op)
	}
	if !res.Success {
		return models.User{}, fromResult(op, res.Kind, res.StatusCode, res.Message, res.Errors, common.ErrUnexpected)
	}
	return c.replaceUser(ctx, op, st.Token, *res.Data)
}

// Refresh re-reads the user from the backend.
func (c *Controller) Refresh(ctx context.Context) (models.User, error) {
	const op = "refresh"
	release, err := c.acquire(op)
	if err != nil {
		return models.User{}, err
	}
	defer release()

	st := c.store.Get()
	if !st.IsAuthenticated() {
		return models.User{}, &Error{Op: op, Kind: common.ErrNotAuthenticated, Message: "Please log in first"}
	}

	res := c.auth.GetUser(ctx)
	if ctx.Err() != nil {
		return models.User{}, canceled(ctx, op)
	}
	if !res.Success {
		return models.User{}, fromResult(op, res.Kind, res.StatusCode, res.Message, res.Errors, common.ErrUnexpected)
	}
	return c.replaceUser(ctx, op, st.Token, *res.Data)
}

// replaceUser swaps in user as long as the session still holds token.
func (c *Controller) replaceUser(ctx context.Context, op, token string, user models.User) (models.User, error) {
	ok, err := c.store.Update(ctx, func(cur models.SessionState) (models.SessionState, bool) {
		if !cur.IsAuthenticated() || cur.Token != token {
			return cur, false
		}
		return models.Authenticated(user, token), true
	})
	if err != nil {
		logging.LogError(ctx, c.log, "failed to store updated user", err)
		return models.User{}, &Error{Op: op, Kind: common.ErrUnexpected, Message: "The profile could not be saved locally"}
	}
	if !ok {
		return models.User{}, &Error{Op: op, Kind: common.ErrSessionExpired, Message: "The session ended before the profile was saved"}
	}
	return user, nil
}

// ForgotPassword asks the backend to send a reset link to email and returns
// the message to show.
func (c *Controller) ForgotPassword(ctx context.Context, email string) (string, error) {
	const op = "forgot_password"
	release, err := c.acquire(op)
	if err != nil {
		return "", err
	}
	defer release()

	email = strings.TrimSpace(email)
	if err := validation.Validate(email, validation.Required.Error("Email is required"), rules.Email); err != nil {
		return "", validationError(op, map[string]string{"email": err.Error()}, err.Error())
	}

	res := c.auth.ForgotPassword(ctx, email)
	if ctx.Err() != nil {
		return "", canceled(ctx, op)
	}
	if !res.Success {
		return "", fromResult(op, res.Kind, res.StatusCode, res.Message, res.Errors, common.ErrUnexpected)
	}
	if res.Message == "" {
		return "If the address is registered, a reset link is on its way.", nil
	}
	return res.Message, nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/bookauth/internal/client/controller"
	"github.com/dmitrijs2005/bookauth/internal/client/models"
	"github.com/dmitrijs2005/bookauth/internal/client/wizard"
	"github.com/dmitrijs2005/bookauth/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// ask reads one line, using the App's reader and output.
func (a *App) ask(prompt string) (string, error) {
	return getSimpleText(a.reader, prompt, a.out)
}

// askSecret reads a password without echo and returns it as a string. The
// raw bytes are wiped before returning.
func (a *App) askSecret(prompt string) (string, error) {
	pw, err := getPassword(prompt, a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

// report prints a failed operation the way a form shows inline errors.
func (a *App) report(err error) {
	var ce *controller.Error
	var ve *wizard.ValidationError
	switch {
	case errors.As(err, &ce):
		fmt.Fprintln(a.out, ce.Message)
		a.reportFields(ce.Fields)
	case errors.As(err, &ve):
		a.reportFields(ve.Fields)
	default:
		fmt.Fprintln(a.out, "Error:", err)
	}
}

func (a *App) reportFields(fields map[string]string) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(a.out, "  %s: %s\n", k, fields[k])
	}
}

// Login prompts for credentials and signs in. Failures are printed and
// also returned.
func (a *App) Login(ctx context.Context) error {
	email, err := a.ask("Enter email")
	if err != nil {
		return err
	}
	password, err := a.askSecret("Enter password")
	if err != nil {
		return err
	}
	remember, err := a.ask("Remember me for 7 days? (y/N)")
	if err != nil {
		return err
	}

	in := models.LoginInput{Email: email, Password: password, RememberMe: parseYesNo(remember, false)}
	if err := a.ctl.Login(ctx, in); err != nil {
		a.report(err)
		return err
	}

	if st := a.ctl.State(); st.IsAuthenticated() {
		fmt.Fprintf(a.out, "Welcome back, %s!\n", st.User.Name)
	} else {
		fmt.Fprintln(a.out, "Signed in, but the session has already ended")
	}
	return nil
}

// Logout always succeeds locally.
func (a *App) Logout(ctx context.Context) error {
	msg := a.ctl.Logout(ctx)
	fmt.Fprintln(a.out, msg)
	return nil
}

// Forgot asks for an email and requests a password reset link.
func (a *App) Forgot(ctx context.Context) error {
	email, err := a.ask("Enter the email of your account")
	if err != nil {
		return err
	}
	msg, err := a.ctl.ForgotPassword(ctx, email)
	if err != nil {
		a.report(err)
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

// Register walks the user through the registration wizard. Giving up at any
// step discards the draft and returns nil.
func (a *App) Register(ctx context.Context) error {
	w := wizard.New()
	for {
		a.printProgress(w)

		var (
			done bool
			err  error
		)
		switch w.Step() {
		case wizard.StepAccount:
			done, err = a.accountStep(w)
		case wizard.StepExperience:
			done, err = a.experienceStep(w)
		case wizard.StepReview:
			done, err = a.reviewStep(ctx, w)
		}
		if err != nil || done {
			return err
		}
	}
}

func (a *App) printProgress(w *wizard.Wizard) {
	parts := make([]string, 0, len(wizard.Steps))
	for _, s := range wizard.Steps {
		switch {
		case s == w.Step():
			parts = append(parts, fmt.Sprintf("[%d %s]", s, s.Label()))
		case w.Completed(s):
			parts = append(parts, fmt.Sprintf("%d %s ✓", s, s.Label()))
		default:
			parts = append(parts, fmt.Sprintf("%d %s", s, s.Label()))
		}
	}
	fmt.Fprintln(a.out, strings.Join(parts, " > "))
	fmt.Fprintf(a.out, "%s\n%s\n", w.Step().Title(), w.Step().Subtitle())
}

func (a *App) printRequirements(w *wizard.Wizard) {
	fmt.Fprintf(a.out, "Password strength: %d/%d\n", w.Strength(), wizard.MaxStrength)
	for _, r := range w.Requirements() {
		mark := "✗"
		if r.Satisfied {
			mark = "✓"
		}
		fmt.Fprintf(a.out, "  %s %s\n", mark, r.Description)
	}
}

// accountStep collects name, email and password. An empty answer keeps
// what was entered before.
func (a *App) accountStep(w *wizard.Wizard) (done bool, err error) {
	d := w.Draft().Account

	name, err := a.ask(withDefault("Full name", d.Name))
	if err != nil {
		return true, err
	}
	if name != "" {
		w.SetName(name)
	}

	email, err := a.ask(withDefault("Email", d.Email))
	if err != nil {
		return true, err
	}
	if email != "" {
		w.SetEmail(email)
	}

	password, err := a.askSecret("Password")
	if err != nil {
		return true, err
	}
	if password != "" || d.Password == "" {
		w.SetPassword(password)
		a.printRequirements(w)

		confirm, err := a.askSecret("Confirm password")
		if err != nil {
			return true, err
		}
		w.SetConfirmPassword(confirm)
	}

	return a.advance(w)
}

func (a *App) experienceStep(w *wizard.Wizard) (done bool, err error) {
	d := w.Draft().Background

	for _, q := range []struct {
		title   string
		current models.ExperienceLevel
		set     func(models.ExperienceLevel)
	}{
		{"Software experience", d.SoftwareExperience, w.SetSoftwareExperience},
		{"Hardware experience", d.HardwareExperience, w.SetHardwareExperience},
	} {
		answer, err := a.ask(experienceMenu(q.title, q.current) + "\n(number, or 'b' to go back)")
		if err != nil {
			return true, err
		}
		if strings.EqualFold(answer, "b") {
			w.Previous()
			return false, nil
		}
		level, ok := parseExperience(answer, q.current)
		if !ok {
			fmt.Fprintln(a.out, "Please pick one of the listed options")
			return false, nil
		}
		q.set(level)
	}

	return a.advance(w)
}

// advance tries the gate of the current step and offers to retry.
func (a *App) advance(w *wizard.Wizard) (done bool, err error) {
	if err := w.Next(); err != nil {
		a.report(err)
		answer, aerr := a.ask("Try again? (Y/n)")
		if aerr != nil {
			return true, aerr
		}
		if !parseYesNo(answer, true) {
			fmt.Fprintln(a.out, "Registration cancelled")
			return true, nil
		}
	}
	return false, nil
}

func (a *App) reviewStep(ctx context.Context, w *wizard.Wizard) (done bool, err error) {
	d := w.Draft()
	fmt.Fprintf(a.out, "Name: %s\nEmail: %s\nSoftware: %s\nHardware: %s\n",
		strings.TrimSpace(d.Account.Name), d.Account.Email,
		experienceLabel(d.Background.SoftwareExperience), experienceLabel(d.Background.HardwareExperience))

	answer, err := a.ask("[s]ubmit, [b]ack, [1] edit basic info, [2] edit experience, [c]ancel")
	if err != nil {
		return true, err
	}

	switch strings.ToLower(answer) {
	case "s", "submit", "":
		if err := w.Submit(ctx, a.ctl); err != nil {
			var ce *controller.Error
			if !errors.As(err, &ce) {
				var ve *wizard.ValidationError
				if errors.As(err, &ve) {
					a.report(err)
				} else {
					fmt.Fprintln(a.out, "Registration failed. Please try again.")
				}
				return false, nil
			}
			a.report(err)
			if strings.HasPrefix(ce.Message, controller.AccountCreatedPrefix) {
				fmt.Fprintln(a.out, "Use 'login' to sign in.")
				return true, nil
			}
			return errors.Is(err, context.Canceled), nil
		}
		if st := a.ctl.State(); st.IsAuthenticated() {
			fmt.Fprintf(a.out, "Welcome, %s! Your account is ready.\n", st.User.Name)
		} else {
			fmt.Fprintln(a.out, "Your account is ready, but the session has already ended. Use 'login' to sign in.")
		}
		return true, nil
	case "b", "back":
		w.Previous()
	case "1":
		_ = w.GoTo(wizard.StepAccount)
	case "2":
		_ = w.GoTo(wizard.StepExperience)
	case "c", "cancel":
		fmt.Fprintln(a.out, "Registration cancelled")
		return true, nil
	default:
		fmt.Fprintln(a.out, "Unknown choice:", answer)
	}
	return false, nil
}

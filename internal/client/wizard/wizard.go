// Package wizard implements the three-step registration flow: account
// details, experience levels, review. Each forward move is gated by the
// validation of the step being left; going back never loses input.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/dmitrijs2005/bookauth/internal/client/models"
	"github.com/dmitrijs2005/bookauth/internal/client/rules"
	"github.com/dmitrijs2005/bookauth/internal/common"
)

type Step int

const (
	StepAccount Step = iota + 1
	StepExperience
	StepReview
)

// Steps lists the steps in order.
var Steps = []Step{StepAccount, StepExperience, StepReview}

// Label is the short name shown in the progress indicator.
func (s Step) Label() string {
	switch s {
	case StepAccount:
		return "Basic Info"
	case StepExperience:
		return "Experience"
	case StepReview:
		return "Review"
	default:
		return fmt.Sprintf("step %d", int(s))
	}
}

func (s Step) Title() string {
	switch s {
	case StepAccount:
		return "Create Account"
	case StepExperience:
		return "Your Experience"
	case StepReview:
		return "Review Information"
	default:
		return ""
	}
}

func (s Step) Subtitle() string {
	switch s {
	case StepAccount:
		return "Tell us about yourself"
	case StepExperience:
		return "Help us tailor your experience"
	case StepReview:
		return "Confirm your details before submitting"
	default:
		return ""
	}
}

// Account is the first step's input.
type Account struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// Background is the second step's input.
type Background struct {
	SoftwareExperience models.ExperienceLevel
	HardwareExperience models.ExperienceLevel
}

// Draft is everything entered so far. It lives only in memory.
type Draft struct {
	Account    Account
	Background Background
}

// ValidationError lists the fields that keep Step's gate closed.
type ValidationError struct {
	Step   Step
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s", e.Step.Label(), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return common.ErrValidation }

// Registrar performs the final registration (and sign-in).
type Registrar interface {
	Register(ctx context.Context, in models.RegisterInput) error
}

// Wizard is not safe for concurrent use; it belongs to one form.
type Wizard struct {
	draft Draft
	step  Step
}

func New() *Wizard {
	return &Wizard{step: StepAccount}
}

func (w *Wizard) Step() Step { return w.step }

func (w *Wizard) Draft() Draft { return w.draft }

func (w *Wizard) SetName(v string)            { w.draft.Account.Name = v }
func (w *Wizard) SetEmail(v string)           { w.draft.Account.Email = v }
func (w *Wizard) SetPassword(v string)        { w.draft.Account.Password = v }
func (w *Wizard) SetConfirmPassword(v string) { w.draft.Account.ConfirmPassword = v }

func (w *Wizard) SetSoftwareExperience(v models.ExperienceLevel) {
	w.draft.Background.SoftwareExperience = v
}

func (w *Wizard) SetHardwareExperience(v models.ExperienceLevel) {
	w.draft.Background.HardwareExperience = v
}

// Requirements is the checklist for the password currently in the draft.
func (w *Wizard) Requirements() []Requirement {
	return PasswordRequirements(w.draft.Account.Password)
}

// Strength is the strength of the password currently in the draft.
func (w *Wizard) Strength() int {
	return PasswordStrength(w.draft.Account.Password)
}

// Completed reports whether s is behind the current step.
func (w *Wizard) Completed(s Step) bool {
	return s < w.step
}

// Validate evaluates the gate that leaves step s. The review step has no gate.
func (w *Wizard) Validate(s Step) error {
	var err error
	switch s {
	case StepAccount:
		a := w.draft.Account
		err = validation.ValidateStruct(&a,
			validation.Field(&a.Name, validation.Required.Error("Name is required"), rules.Name),
			validation.Field(&a.Email, validation.Required.Error("Email is required"), rules.Email),
			validation.Field(&a.Password,
				validation.Required.Error("Password is required"),
				rules.Password,
				validation.By(func(interface{}) error {
					if !allSatisfied(a.Password) {
						return errors.New("Password must contain uppercase, lowercase and a number")
					}
					return nil
				}),
			),
			validation.Field(&a.ConfirmPassword,
				validation.Required.Error("Please confirm your password"),
				rules.Equals(a.Password, "Passwords do not match"),
			),
		)
	case StepExperience:
		b := w.draft.Background
		err = validation.ValidateStruct(&b,
			validation.Field(&b.SoftwareExperience, validation.Required.Error("Please select your software experience"), rules.Experience),
			validation.Field(&b.HardwareExperience, validation.Required.Error("Please select your hardware experience"), rules.Experience),
		)
	case StepReview:
		return nil
	default:
		return fmt.Errorf("unknown step %d: %w", int(s), common.ErrInvalidState)
	}
	if err != nil {
		fields := rules.FieldErrors(err)
		if fields == nil {
			return err
		}
		return &ValidationError{Step: s, Fields: fields}
	}
	return nil
}

// CanAdvance reports whether Next would succeed.
func (w *Wizard) CanAdvance() bool {
	return w.step < StepReview && w.Validate(w.step) == nil
}

// Next validates the current step and moves to the following one.
func (w *Wizard) Next() error {
	if w.step >= StepReview {
		return fmt.Errorf("already on the last step: %w", common.ErrInvalidState)
	}
	if err := w.Validate(w.step); err != nil {
		return err
	}
	w.step++
	return nil
}

// Previous moves one step back, keeping everything entered.
func (w *Wizard) Previous() {
	if w.step > StepAccount {
		w.step--
	}
}

// GoTo jumps back to a completed step. Jumping forward is refused.
func (w *Wizard) GoTo(s Step) error {
	if s == w.step {
		return nil
	}
	if s < StepAccount || !w.Completed(s) {
		return fmt.Errorf("step %q is not completed: %w", s.Label(), common.ErrInvalidState)
	}
	w.step = s
	return nil
}

// Input is the registration request the draft describes.
func (w *Wizard) Input() models.RegisterInput {
	a, b := w.draft.Account, w.draft.Background
	return models.RegisterInput{
		Name:               strings.TrimSpace(a.Name),
		Email:              a.Email,
		Password:           a.Password,
		SoftwareExperience: b.SoftwareExperience,
		HardwareExperience: b.HardwareExperience,
	}
}

// Submit hands the draft to r from the review step. Both gates are checked
// again first. On success the draft is discarded; on failure it is kept so
// the user can retry.
func (w *Wizard) Submit(ctx context.Context, r Registrar) error {
	if w.step != StepReview {
		return fmt.Errorf("submit from %q: %w", w.step.Label(), common.ErrInvalidState)
	}
	for _, s := range []Step{StepAccount, StepExperience} {
		if err := w.Validate(s); err != nil {
			return err
		}
	}
	if err := r.Register(ctx, w.Input()); err != nil {
		return err
	}
	w.Reset()
	return nil
}

// Reset discards the draft and returns to the first step.
func (w *Wizard) Reset() {
	*w = Wizard{step: StepAccount}
}

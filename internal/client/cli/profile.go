package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/bookauth/internal/client/models"
)

func (a *App) printUser(u models.User) {
	fmt.Fprintf(a.out, "[%s] %s <%s>\n", u.DisplayInitials(), u.Name, u.Email)
	fmt.Fprintf(a.out, "Software experience: %s\n", experienceLabel(u.SoftwareExperience))
	fmt.Fprintf(a.out, "Hardware experience: %s\n", experienceLabel(u.HardwareExperience))
	if u.CreatedAt != nil {
		fmt.Fprintf(a.out, "Member since: %s\n", u.CreatedAt.Format("2006-01-02"))
	}
}

// WhoAmI prints the signed-in user as held locally. It does not call the
// backend; see Refresh for that.
func (a *App) WhoAmI(ctx context.Context) error {
	st := a.ctl.State()
	if !st.IsAuthenticated() {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}
	a.printUser(*st.User)
	return nil
}

// Profile edits name, email and both experience levels. Empty answers keep
// the current value and only changed fields are sent.
func (a *App) Profile(ctx context.Context) error {
	st := a.ctl.State()
	if !st.IsAuthenticated() {
		fmt.Fprintln(a.out, "Please log in first")
		return nil
	}
	u := *st.User

	var p models.ProfileUpdate

	name, err := a.ask(withDefault("Full name", u.Name))
	if err != nil {
		return err
	}
	if name != "" {
		p.Name = &name
	}

	email, err := a.ask(withDefault("Email", u.Email))
	if err != nil {
		return err
	}
	if email != "" {
		p.Email = &email
	}

	for _, q := range []struct {
		title   string
		current models.ExperienceLevel
		dst     **models.ExperienceLevel
	}{
		{"Software experience", u.SoftwareExperience, &p.SoftwareExperience},
		{"Hardware experience", u.HardwareExperience, &p.HardwareExperience},
	} {
		answer, err := a.ask(experienceMenu(q.title, q.current))
		if err != nil {
			return err
		}
		level, ok := parseExperience(answer, q.current)
		if !ok {
			fmt.Fprintln(a.out, "Please pick one of the listed options")
			return nil
		}
		if level != "" {
			*q.dst = &level
		}
	}

	if p.Changes(u).Empty() {
		fmt.Fprintln(a.out, "Nothing to update")
		return nil
	}

	updated, err := a.ctl.UpdateProfile(ctx, p)
	if err != nil {
		a.report(err)
		return err
	}
	fmt.Fprintln(a.out, "Profile updated")
	a.printUser(updated)
	return nil
}

// Refresh re-reads the user from the backend.
func (a *App) Refresh(ctx context.Context) error {
	u, err := a.ctl.Refresh(ctx)
	if err != nil {
		a.report(err)
		return err
	}
	a.printUser(u)
	return nil
}

package models

// RegisterInput is what the wizard hands to the controller on submit.
// Experience levels are optional for the backend.
type RegisterInput struct {
	Name               string
	Email              string
	Password           string
	SoftwareExperience ExperienceLevel
	HardwareExperience ExperienceLevel
}

// LoginInput carries the credentials of a login attempt.
type LoginInput struct {
	Email      string
	Password   string
	RememberMe bool
}

// ProfileUpdate is a partial profile. A nil field means "unchanged" and is
// not transmitted.
type ProfileUpdate struct {
	Name               *string
	Email              *string
	SoftwareExperience *ExperienceLevel
	HardwareExperience *ExperienceLevel
}

// Empty reports whether no field is set.
func (p ProfileUpdate) Empty() bool {
	return p.Name == nil && p.Email == nil && p.SoftwareExperience == nil && p.HardwareExperience == nil
}

// Changes drops the fields whose value equals the one already held by
// current, so only genuinely changed keys reach the server.
func (p ProfileUpdate) Changes(current User) ProfileUpdate {
	var out ProfileUpdate
	if p.Name != nil && *p.Name != current.Name {
		out.Name = p.Name
	}
	if p.Email != nil && *p.Email != current.Email {
		out.Email = p.Email
	}
	if p.SoftwareExperience != nil && *p.SoftwareExperience != current.SoftwareExperience {
		out.SoftwareExperience = p.SoftwareExperience
	}
	if p.HardwareExperience != nil && *p.HardwareExperience != current.HardwareExperience {
		out.HardwareExperience = p.HardwareExperience
	}
	return out
}

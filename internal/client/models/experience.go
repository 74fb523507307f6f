package models

// ExperienceLevel is the self-reported software or hardware experience.
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
)

// ExperienceOption pairs a level with the label shown to the user.
type ExperienceOption struct {
	Value ExperienceLevel
	Label string
}

// ExperienceOptions is the ordered list offered by the registration wizard
// and the profile editor.
var ExperienceOptions = []ExperienceOption{
	{Value: ExperienceBeginner, Label: "Beginner (0–1 years)"},
	{Value: ExperienceIntermediate, Label: "Intermediate (2–5 years)"},
	{Value: ExperienceAdvanced, Label: "Advanced (5+ years)"},
}

// Valid reports whether l is one of ExperienceOptions.
func (l ExperienceLevel) Valid() bool {
	for _, o := range ExperienceOptions {
		if o.Value == l {
			return true
		}
	}
	return false
}

// ExperienceValues returns the option values as []any, the shape expected by
// validation.In.
func ExperienceValues() []any {
	values := make([]any, 0, len(ExperienceOptions))
	for _, o := range ExperienceOptions {
		values = append(values, o.Value)
	}
	return values
}

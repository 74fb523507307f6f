package wizard

import (
	"unicode/utf8"

	"github.com/dmitrijs2005/bookauth/internal/client/rules"
)

// Requirement is one line of the password checklist.
type Requirement struct {
	Description string
	Satisfied   bool
}

// MaxStrength is the strength of a password meeting every requirement.
const MaxStrength = 4

// PasswordRequirements evaluates the checklist for p, always in the same
// order. Character classes are ASCII.
func PasswordRequirements(p string) []Requirement {
	var upper, lower, digit bool
	for i := 0; i < len(p); i++ {
		switch c := p[i]; {
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= '0' && c <= '9':
			digit = true
		}
	}
	return []Requirement{
		{Description: "At least 8 characters", Satisfied: utf8.RuneCountInString(p) >= rules.MinPasswordLength},
		{Description: "Contains uppercase letter", Satisfied: upper},
		{Description: "Contains lowercase letter", Satisfied: lower},
		{Description: "Contains number", Satisfied: digit},
	}
}

// PasswordStrength counts the satisfied requirements of p, 0 to MaxStrength.
func PasswordStrength(p string) int {
	n := 0
	for _, r := range PasswordRequirements(p) {
		if r.Satisfied {
			n++
		}
	}
	return n
}

func allSatisfied(p string) bool {
	return PasswordStrength(p) == MaxStrength
}

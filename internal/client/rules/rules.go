// Package rules holds the input validation rules shared by the registration
// wizard and the session controller.
package rules

import (
	"errors"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/dmitrijs2005/bookauth/internal/client/models"
)

// EmailPattern is the local@domain.tld shape accepted by every form.
var EmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	MinNameLength     = 2
	MinPasswordLength = 8
)

var (
	Email = validation.Match(EmailPattern).Error("Please enter a valid email address")

	// Name counts characters after trimming surrounding whitespace.
	Name = validation.By(func(value interface{}) error {
		s, ok := stringValue(value)
		if !ok {
			return nil
		}
		if utf8.RuneCountInString(strings.TrimSpace(s)) < MinNameLength {
			return errors.New("Name must be at least 2 characters")
		}
		return nil
	})

	Password = validation.RuneLength(MinPasswordLength, 0).Error("Password must be at least 8 characters")

	Experience = validation.In(models.ExperienceValues()...).Error("Please select one of the listed experience levels")
)

func stringValue(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	default:
		return "", false
	}
}

// Equals fails unless the value equals want.
func Equals(want, message string) validation.Rule {
	return validation.By(func(value interface{}) error {
		s, _ := stringValue(value)
		if s != want {
			return errors.New(message)
		}
		return nil
	})
}

// FieldErrors flattens ozzo's validation.Errors into field -> message with
// lowerCamel keys. Any other error yields nil.
func FieldErrors(err error) map[string]string {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for k, v := range verrs {
		if v == nil {
			continue
		}
		out[lowerFirst(k)] = v.Error()
	}
	return out
}

// FirstMessage returns the message of the alphabetically first field error,
// for callers that show a single line.
func FirstMessage(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return ""
	}
	return fields[keys[0]]
}

func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[n:]
}

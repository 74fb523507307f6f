package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/dmitrijs2005/bookauth/internal/client/models"
)

// readPassword is a test seam for term.ReadPassword.
// In tests you can replace it with a stub to avoid touching the terminal.
var readPassword = term.ReadPassword

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword prints prompt to w and reads a password from the user's
// terminal without echo. A newline is printed after the read to keep the
// UI tidy.
//
// The returned byte slice should be wiped by the caller when no longer needed.
func GetPassword(prompt string, w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// withDefault appends the current value to prompt so an empty answer can
// keep it.
func withDefault(prompt, current string) string {
	if current == "" {
		return prompt
	}
	return fmt.Sprintf("%s [%s]", prompt, current)
}

// parseYesNo treats y/yes as true, everything else as def when empty and
// false otherwise.
func parseYesNo(answer string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "":
		return def
	case "y", "yes":
		return true
	default:
		return false
	}
}

// experienceMenu renders the numbered experience options.
func experienceMenu(title string, current models.ExperienceLevel) string {
	var b strings.Builder
	b.WriteString(title)
	for i, o := range models.ExperienceOptions {
		mark := " "
		if o.Value == current {
			mark = "*"
		}
		fmt.Fprintf(&b, "\n %s %d) %s", mark, i+1, o.Label)
	}
	return b.String()
}

// parseExperience accepts a menu number or a level name. An empty answer
// keeps current. ok is false for anything else.
func parseExperience(answer string, current models.ExperienceLevel) (models.ExperienceLevel, bool) {
	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer == "" {
		return current, true
	}
	if n, err := strconv.Atoi(answer); err == nil {
		if n >= 1 && n <= len(models.ExperienceOptions) {
			return models.ExperienceOptions[n-1].Value, true
		}
		return "", false
	}
	level := models.ExperienceLevel(answer)
	if level.Valid() {
		return level, true
	}
	return "", false
}

func experienceLabel(level models.ExperienceLevel) string {
	for _, o := range models.ExperienceOptions {
		if o.Value == level {
			return o.Label
		}
	}
	return "Not selected"
}

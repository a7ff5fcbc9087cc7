package course

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Code identifies a course by subject and catalog number, e.g. {CS 340}.
type Code struct {
	Subject string
	Number  string
}

// Label returns the display form of the code, "CS 340".
func (c Code) Label() string {
	return c.Subject + " " + c.Number
}

// ErrBadCourseCode is returned when free-text input cannot be interpreted as
// a course code.
var ErrBadCourseCode = errors.New("could not interpret course code")

// Leading letters are the subject, then optional whitespace, then the
// catalog number. Trailing content after the digits is ignored.
var codePattern = regexp.MustCompile(`^([A-Z]+)\s*([0-9]+)`)

// Parse normalizes free-text input like "cs 340", "CS340" or " cs   340 "
// into a Code. It returns both the subject and the number or neither;
// there is no partial result.
func Parse(text string) (Code, error) {
	normalized := strings.ToUpper(strings.TrimSpace(text))

	m := codePattern.FindStringSubmatch(normalized)
	if m == nil {
		return Code{}, fmt.Errorf("%w: %q", ErrBadCourseCode, text)
	}
	return Code{Subject: m[1], Number: m[2]}, nil
}

package model

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidSchoolCode is returned for a missing or malformed tenant code.
var ErrInvalidSchoolCode = errors.New("invalid school code")

var schoolCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,32}$`)

// SchoolCode is the tenant partition key. Every repository call takes one
// explicitly; there is no ambient tenant.
type SchoolCode string

// ParseSchoolCode trims and validates a raw tenant code.
func ParseSchoolCode(raw string) (SchoolCode, error) {
	code := strings.TrimSpace(raw)
	if !schoolCodePattern.MatchString(code) {
		return "", ErrInvalidSchoolCode
	}
	return SchoolCode(code), nil
}

func (s SchoolCode) String() string { return string(s) }

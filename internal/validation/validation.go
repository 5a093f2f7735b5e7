// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	minPasswordLen = 6
	maxPasswordLen = 128
	maxBioLen      = 250
	maxEmailLen    = 254
	maxNameLen     = 100
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidatePassword checks if a password meets requirements.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLen)
	}
	if len(password) > maxPasswordLen {
		return fmt.Errorf("password must not exceed %d characters", maxPasswordLen)
	}
	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	if len(email) > maxEmailLen {
		return fmt.Errorf("email must not exceed %d characters", maxEmailLen)
	}
	return nil
}

// ValidateFullName checks that a display name is present and bounded.
func ValidateFullName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("full name is required")
	}
	if len(name) > maxNameLen {
		return fmt.Errorf("full name must not exceed %d characters", maxNameLen)
	}
	return nil
}

// ValidateBio checks the bio length bound.
func ValidateBio(bio string) error {
	if len(bio) > maxBioLen {
		return fmt.Errorf("bio must not exceed %d characters", maxBioLen)
	}
	return nil
}

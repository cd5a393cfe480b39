// Package utils holds input validation shared by the backend and the CLI.
package utils

import (
	"fmt"
	"math"
	"net/mail"
	"strings"
	"unicode"
)

// MaxHours is the largest number of hours a single record may carry.
const MaxHours = 24 * 7

// NormalizeEmail returns the lower-cased address part of email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail returns an error if email is not a bare address.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email address")
	}

	return nil
}

// ValidateSettingKey returns an error if the key is not made of letters,
// numbers, underscores, hyphens and periods.
func ValidateSettingKey(key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	if len(key) > 128 {
		return fmt.Errorf("key is too long")
	}

	for _, r := range key {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' && r != '.' {
			return fmt.Errorf("key can only contain letters, numbers, underscores, hyphens, and periods")
		}
	}

	return nil
}

// ValidateHours returns an error if hours is not a positive amount of at
// most MaxHours.
func ValidateHours(hours float64) error {
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours <= 0 {
		return fmt.Errorf("hours must be positive")
	}

	if hours > MaxHours {
		return fmt.Errorf("hours cannot exceed %d", MaxHours)
	}

	return nil
}

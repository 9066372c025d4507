package domain

import (
	"regexp"
	"strings"
)

// Format validation belongs to the form layer and runs before the setters;
// the step machine itself only gates on presence and sequencing.
var (
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern   = regexp.MustCompile(`^(\+353|0)?[1-9]\d{8}$`)
	eircodePattern = regexp.MustCompile(`^[A-Z0-9]{3}\s?[A-Z0-9]{4}$`)
)

// ValidEmail reports whether the email has a plausible address shape.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidPhone reports whether the value matches the Irish phone number pattern.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// ValidEircode reports whether the value matches the Eircode pattern,
// case-insensitively. Empty is allowed: the field is optional.
func ValidEircode(eircode string) bool {
	if eircode == "" {
		return true
	}
	return eircodePattern.MatchString(strings.ToUpper(eircode))
}

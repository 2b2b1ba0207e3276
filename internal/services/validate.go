package services

import (
	"net/mail"
	"regexp"
	"strings"
	"time"
)

const minPasswordLength = 6

var (
	adminEmailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	phonePattern      = regexp.MustCompile(`^\d{10,15}$`)
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", invalid("username", "Username is required")
	}
	return username, nil
}

func validatePassword(field, password string) error {
	if password == "" {
		return invalid(field, "Password is required")
	}
	if len(password) < minPasswordLength {
		return invalid(field, "Password must be at least 6 characters")
	}
	return nil
}

// validateAdminEmail returns nil for an empty address; admin email is optional.
func validateAdminEmail(email string) (*string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, nil
	}
	if !adminEmailPattern.MatchString(email) {
		return nil, invalid("email", "Please use a valid email address")
	}
	return &email, nil
}

func validateVoterEmail(email string) (string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", invalid("email", "Email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return "", invalid("email", "Please provide a valid email")
	}
	at := strings.LastIndex(email, "@")
	if !strings.Contains(email[at+1:], ".") {
		return "", invalid("email", "Please provide a valid email")
	}
	return email, nil
}

func validatePhone(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", invalid("phone", "Phone number is required")
	}
	if !phonePattern.MatchString(phone) {
		return "", invalid("phone", "Phone number is not valid")
	}
	return phone, nil
}

func requireText(field, value, message string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", invalid(field, message)
	}
	return value, nil
}

// parseDateOfBirth accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the
// calendar date at UTC midnight.
func parseDateOfBirth(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, invalid("dateOfBirth", "Date of birth is required")
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, invalid("dateOfBirth", "Date of birth must be a date (YYYY-MM-DD)")
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

package services

import "errors"

var (
	// ErrInvalidCredentials is returned for any failed password check. It does
	// not reveal whether the username exists.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSelfDeletion is returned when an administrator tries to delete their
	// own account.
	ErrSelfDeletion = errors.New("cannot delete your own account")
	// ErrDuplicateVoter is returned when the NIN or email is already registered.
	ErrDuplicateVoter = errors.New("voter with this NIN or email already exists")
	// ErrIneligible is returned when the applicant is under the voting age.
	ErrIneligible = errors.New("voter must be at least 18 years old")
	// ErrExportsDisabled is returned when no roster storage is configured.
	ErrExportsDisabled = errors.New("roster exports are not configured")
)

// ValidationError reports a malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

package types

import "time"

// MinimumVotingAge is the age a voter must have reached at registration.
const MinimumVotingAge = 18

// Gender is the self-declared gender of a voter.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Valid reports whether g is one of the accepted values.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	default:
		return false
	}
}

// Voter represents a registered voter.
type Voter struct {
	// ID is the opaque unique identifier of the voter.
	ID string `json:"id" db:"id"`

	Name   string `json:"name" db:"name"`
	Gender Gender `json:"gender" db:"gender"`

	// DateOfBirth is a calendar date; only year, month and day are meaningful.
	DateOfBirth time.Time `json:"dateOfBirth" db:"date_of_birth"`

	// NIN is the national identification number. Unique across voters.
	NIN string `json:"nin" db:"nin"`

	Address string `json:"address" db:"address"`

	// Phone holds 10 to 15 digits.
	Phone string `json:"phone" db:"phone"`

	// Email is unique across voters, compared case-insensitively.
	Email string `json:"email" db:"email"`

	// IsVerified is set by an administrator after manual review.
	IsVerified bool `json:"isVerified" db:"is_verified"`

	// RegistrationDate is assigned by the server when the voter is stored.
	RegistrationDate time.Time `json:"registrationDate" db:"registration_date"`
}

// AgeAt returns the voter's age in whole years as of asOf.
func (v Voter) AgeAt(asOf time.Time) int {
	return ComputeAge(v.DateOfBirth, asOf)
}

// ComputeAge returns the number of full calendar years between dateOfBirth
// and asOf. The year difference is reduced by one when asOf's month and day
// fall before the birthday in that year.
func ComputeAge(dateOfBirth, asOf time.Time) int {
	age := asOf.Year() - dateOfBirth.Year()
	if asOf.Month() < dateOfBirth.Month() ||
		(asOf.Month() == dateOfBirth.Month() && asOf.Day() < dateOfBirth.Day()) {
		age--
	}
	return age
}

// IsEligible reports whether age meets the minimum voting age.
func IsEligible(age int) bool {
	return age >= MinimumVotingAge
}

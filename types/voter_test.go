package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestComputeAge(t *testing.T) {
	tests := []struct {
		name string
		dob  time.Time
		asOf time.Time
		want int
	}{
		{"day before birthday", date(2006, time.June, 15), date(2024, time.June, 14), 17},
		{"on birthday", date(2006, time.June, 15), date(2024, time.June, 15), 18},
		{"month before birthday", date(2006, time.June, 15), date(2024, time.May, 30), 17},
		{"month after birthday", date(2006, time.June, 15), date(2024, time.July, 1), 18},
		{"leap day birth in common year", date(2004, time.February, 29), date(2022, time.February, 28), 17},
		{"leap day birth after feb", date(2004, time.February, 29), date(2022, time.March, 1), 18},
		{"born today", date(2024, time.January, 1), date(2024, time.January, 1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeAge(tt.dob, tt.asOf))
		})
	}
}

func TestIsEligible(t *testing.T) {
	assert.False(t, IsEligible(17))
	assert.True(t, IsEligible(18))
	assert.True(t, IsEligible(90))
}

func TestVoterAgeAt(t *testing.T) {
	v := Voter{DateOfBirth: date(2006, time.June, 15)}
	assert.Equal(t, 17, v.AgeAt(date(2024, time.June, 14)))
	assert.True(t, IsEligible(v.AgeAt(date(2024, time.June, 15))))
}

func TestGenderAndRoleValid(t *testing.T) {
	assert.True(t, GenderFemale.Valid())
	assert.False(t, Gender("male").Valid())
	assert.True(t, RoleSuperAdmin.Valid())
	assert.False(t, Role("root").Valid())
}

// Package domain holds validated identifier types shared across the service.
// Raw strings are parsed once at the boundary; everything past the parsers
// works with types that cannot hold malformed values.
package domain

import (
	"fmt"

	dErrors "studentregistry/pkg/domain-errors"
)

const (
	dobLength      = 8
	phoneMinLength = 7
	phoneMaxLength = 20
)

// DOB is a date of birth in YYYYMMDD form, exactly 8 decimal digits.
// Construct it through ParseDOB.
type DOB string

// Phone is a phone number of 7 to 20 decimal digits, stored exactly as
// submitted. No normalization: leading zeros are significant because the
// value participates in identifier derivation.
type Phone string

// StudentID is the stable identifier for a student record, derived from the
// date of birth and phone number.
type StudentID string

// ParseDOB validates a raw date-of-birth string.
func ParseDOB(raw string) (DOB, error) {
	if len(raw) != dobLength || !isDigits(raw) {
		return "", dErrors.New(dErrors.CodeValidation, "dob must be exactly 8 digits")
	}
	return DOB(raw), nil
}

// ParsePhone validates a raw phone number string.
func ParsePhone(raw string) (Phone, error) {
	if len(raw) < phoneMinLength || len(raw) > phoneMaxLength || !isDigits(raw) {
		return "", dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("phone must be %d to %d digits", phoneMinLength, phoneMaxLength))
	}
	return Phone(raw), nil
}

// DeriveStudentID concatenates dob and phone with no separator or transform.
// The fixed 8-digit dob prefix makes the mapping injective, and keeping the
// raw digits means the same two facts always reproduce the same identifier.
func DeriveStudentID(dob DOB, phone Phone) StudentID {
	return StudentID(string(dob) + string(phone))
}

func (id StudentID) String() string { return string(id) }

func (d DOB) String() string { return string(d) }

func (p Phone) String() string { return string(p) }

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

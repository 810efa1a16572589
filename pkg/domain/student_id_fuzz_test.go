package domain

import (
	"strings"
	"testing"
)

// FuzzParseDOB checks that the parser never accepts a value violating the
// 8-digit precondition, and that accepted values round-trip unchanged.
func FuzzParseDOB(f *testing.F) {
	f.Add("20010403")
	f.Add("00000000")
	f.Add("2001-04-03")
	f.Add("")
	f.Fuzz(func(t *testing.T, raw string) {
		dob, err := ParseDOB(raw)
		if err != nil {
			return
		}
		if len(raw) != 8 || !isDigits(raw) {
			t.Fatalf("accepted malformed dob %q", raw)
		}
		if dob.String() != raw {
			t.Fatalf("dob %q mutated to %q", raw, dob)
		}
	})
}

// FuzzDeriveStudentID checks that any accepted input pair derives an id that
// is exactly the two raw strings concatenated, with the dob as an 8-byte
// prefix.
func FuzzDeriveStudentID(f *testing.F) {
	f.Add("20010403", "09012345678")
	f.Add("19870101", "1234567")
	f.Fuzz(func(t *testing.T, rawDOB, rawPhone string) {
		dob, err := ParseDOB(rawDOB)
		if err != nil {
			return
		}
		phone, err := ParsePhone(rawPhone)
		if err != nil {
			return
		}
		id := DeriveStudentID(dob, phone).String()
		if id != rawDOB+rawPhone {
			t.Fatalf("id %q is not the concatenation of %q and %q", id, rawDOB, rawPhone)
		}
		if !strings.HasPrefix(id, rawDOB) || len(id) != 8+len(rawPhone) {
			t.Fatalf("id %q lost the fixed-width dob prefix", id)
		}
	})
}

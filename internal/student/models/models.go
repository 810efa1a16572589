// Package models defines the student record, its history snapshots, and the
// request/response shapes of the HTTP surface.
package models

import (
	"strings"
	"time"

	"studentregistry/pkg/domain"
	dErrors "studentregistry/pkg/domain-errors"
)

// Student is the single current row for an identifier. The id is derived
// from dob and phone and never changes; version counts how many times the
// row has been overwritten.
type Student struct {
	ID        domain.StudentID `json:"id"`
	DOB       string           `json:"dob"`
	Phone     string           `json:"phone"`
	Name      string           `json:"name"`
	Version   int              `json:"version"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Clone returns a copy so store internals never alias caller-held rows.
func (s *Student) Clone() *Student {
	cp := *s
	return &cp
}

// StudentSnapshot is a write-once copy of a student row taken at the moment
// it was superseded. Version and UpdatedAt are the superseded row's values;
// ChangedAt is when the overwrite happened.
type StudentSnapshot struct {
	EntryID   int64            `json:"entry_id"`
	StudentID domain.StudentID `json:"student_id"`
	DOB       string           `json:"dob"`
	Phone     string           `json:"phone"`
	Name      string           `json:"name"`
	Version   int              `json:"version"`
	UpdatedAt time.Time        `json:"updated_at"`
	ChangedAt time.Time        `json:"changed_at"`
}

// UpsertStudentRequest is the wire shape of POST /students.
type UpsertStudentRequest struct {
	DOB   string `json:"dob"`
	Phone string `json:"phone"`
	Name  string `json:"name"`
}

// UpsertStudentInput is the validated form of an upsert request. It can only
// be built through Validate, so the service never sees malformed fields.
type UpsertStudentInput struct {
	DOB   domain.DOB
	Phone domain.Phone
	Name  string
}

// Validate enforces the syntactic preconditions and returns the typed input.
func (r UpsertStudentRequest) Validate() (UpsertStudentInput, error) {
	dob, err := domain.ParseDOB(r.DOB)
	if err != nil {
		return UpsertStudentInput{}, err
	}
	phone, err := domain.ParsePhone(r.Phone)
	if err != nil {
		return UpsertStudentInput{}, err
	}
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return UpsertStudentInput{}, dErrors.New(dErrors.CodeValidation, "name must not be empty")
	}
	return UpsertStudentInput{DOB: dob, Phone: phone, Name: name}, nil
}

// HistoryResponse is the wire shape of GET /students/{id}/history.
type HistoryResponse struct {
	StudentID string            `json:"student_id"`
	Entries   []StudentSnapshot `json:"entries"`
}

// Package store provides the Postgres and in-memory implementations of the
// student persistence surface.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"studentregistry/internal/student/models"
	"studentregistry/pkg/domain"
	"studentregistry/pkg/platform/sentinel"
)

// querier is satisfied by *sql.DB and *sql.Tx so the same store code serves
// both standalone reads and transactional writes.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Postgres persists students and their history snapshots in PostgreSQL.
type Postgres struct {
	q querier
}

// NewPostgres builds a store over a connection pool, for reads outside any
// transaction.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{q: db}
}

// NewPostgresTx builds a store bound to an open transaction. All writes go
// through here so the archive and the overwrite commit or roll back together.
func NewPostgresTx(tx *sql.Tx) *Postgres {
	return &Postgres{q: tx}
}

const studentColumns = "id, dob, phone, name, version, updated_at"

func (s *Postgres) FindByID(ctx context.Context, id domain.StudentID) (*models.Student, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = $1`, id.String())
	return scanStudent(row)
}

// FindByIDForUpdate locks the row until the enclosing transaction ends, so
// two concurrent upserts on the same id cannot both read the same pre-state.
func (s *Postgres) FindByIDForUpdate(ctx context.Context, id domain.StudentID) (*models.Student, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = $1 FOR UPDATE`, id.String())
	return scanStudent(row)
}

func (s *Postgres) Insert(ctx context.Context, student *models.Student) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO students (id, dob, phone, name, version, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		student.ID.String(), student.DOB, student.Phone, student.Name,
		student.Version, student.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert student: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, student *models.Student) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE students
		 SET dob = $2, phone = $3, name = $4, version = $5, updated_at = $6
		 WHERE id = $1`,
		student.ID.String(), student.DOB, student.Phone, student.Name,
		student.Version, student.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update student %s: %w", student.ID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *Postgres) ArchiveSnapshot(ctx context.Context, student *models.Student, changedAt time.Time) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO student_history (student_id, dob, phone, name, version, updated_at, changed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		student.ID.String(), student.DOB, student.Phone, student.Name,
		student.Version, student.UpdatedAt, changedAt)
	if err != nil {
		return fmt.Errorf("archive snapshot: %w", err)
	}
	return nil
}

func (s *Postgres) ListHistory(ctx context.Context, id domain.StudentID) ([]models.StudentSnapshot, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT entry_id, student_id, dob, phone, name, version, updated_at, changed_at
		 FROM student_history WHERE student_id = $1 ORDER BY version`, id.String())
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []models.StudentSnapshot
	for rows.Next() {
		var e models.StudentSnapshot
		var studentID string
		if err := rows.Scan(&e.EntryID, &studentID, &e.DOB, &e.Phone, &e.Name,
			&e.Version, &e.UpdatedAt, &e.ChangedAt); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		e.StudentID = domain.StudentID(studentID)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}

func scanStudent(row *sql.Row) (*models.Student, error) {
	var st models.Student
	var id string
	err := row.Scan(&id, &st.DOB, &st.Phone, &st.Name, &st.Version, &st.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan student: %w", err)
	}
	st.ID = domain.StudentID(id)
	return &st, nil
}

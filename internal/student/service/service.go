// Package service orchestrates the versioned student store: identifier
// derivation, the insert-or-archive-and-overwrite transaction, and point
// lookups.
package service

import (
	"context"
	"errors"
	"time"

	"studentregistry/internal/student/models"
	"studentregistry/pkg/domain"
	dErrors "studentregistry/pkg/domain-errors"
	"studentregistry/pkg/platform/sentinel"
)

// Store is the persistence surface the service drives. Implementations
// return sentinel errors for infrastructure facts; the service translates
// them into domain errors.
type Store interface {
	// FindByID reads the current row. sentinel.ErrNotFound when absent.
	FindByID(ctx context.Context, id domain.StudentID) (*models.Student, error)
	// FindByIDForUpdate reads the current row holding a write lock for the
	// remainder of the enclosing transaction.
	FindByIDForUpdate(ctx context.Context, id domain.StudentID) (*models.Student, error)
	Insert(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	// ArchiveSnapshot copies the given row into the history table verbatim,
	// stamping changedAt as the capture time.
	ArchiveSnapshot(ctx context.Context, student *models.Student, changedAt time.Time) error
	// ListHistory returns all snapshots for an id ordered by version.
	ListHistory(ctx context.Context, id domain.StudentID) ([]models.StudentSnapshot, error)
}

// StoreTx provides the transactional boundary for an upsert. The key is the
// student id the transaction targets; implementations may use it to pick a
// lock (in-memory) or ignore it (Postgres row locks serialize on their own).
// fn runs exactly once inside the boundary; any error aborts with no partial
// state.
type StoreTx interface {
	RunInTx(ctx context.Context, key string, fn func(store Store) error) error
}

// Cache is an optional read-through cache for lookups. Implementations are
// best-effort: a failing cache must degrade to store reads, never to errors.
type Cache interface {
	Get(ctx context.Context, id domain.StudentID) (*models.Student, bool)
	Set(ctx context.Context, student *models.Student)
	Invalidate(ctx context.Context, id domain.StudentID)
}

// Service persists student records with full version history. It keeps
// orchestration out of handlers and storage details out of the domain.
type Service struct {
	store Store
	tx    StoreTx
	cache Cache
	now   func() time.Time
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithCache attaches a lookup cache.
func WithCache(cache Cache) Option {
	return func(s *Service) { s.cache = cache }
}

// WithClock overrides the write timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, tx StoreTx, opts ...Option) *Service {
	s := &Service{
		store: store,
		tx:    tx,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upsert derives the identifier from the validated input and atomically
// inserts a first version or archives the current row before overwriting it.
// Every call that hits an existing id advances the version and appends
// exactly one snapshot, even when the submitted fields are unchanged: the
// store records update attempts, not content diffs.
func (s *Service) Upsert(ctx context.Context, input models.UpsertStudentInput) (*models.Student, error) {
	id := domain.DeriveStudentID(input.DOB, input.Phone)

	var result *models.Student
	err := s.tx.RunInTx(ctx, id.String(), func(store Store) error {
		now := s.now()

		current, err := store.FindByIDForUpdate(ctx, id)
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			created := &models.Student{
				ID:        id,
				DOB:       input.DOB.String(),
				Phone:     input.Phone.String(),
				Name:      input.Name,
				Version:   1,
				UpdatedAt: now,
			}
			if err := store.Insert(ctx, created); err != nil {
				return err
			}
			result = created
			return nil
		case err != nil:
			return err
		}

		// Archive keeps the superseded row's own version and updated_at;
		// only the live row moves forward.
		if err := store.ArchiveSnapshot(ctx, current, now); err != nil {
			return err
		}
		updated := &models.Student{
			ID:        id,
			DOB:       input.DOB.String(),
			Phone:     input.Phone.String(),
			Name:      input.Name,
			Version:   current.Version + 1,
			UpdatedAt: now,
		}
		if err := store.Update(ctx, updated); err != nil {
			return err
		}
		result = updated
		return nil
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeTimeout) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "upsert transaction failed")
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
	return result, nil
}

// Lookup returns the current row for an id. Any string is a valid key; a
// miss is a normal negative result, not a failure. History is never
// returned here.
func (s *Service) Lookup(ctx context.Context, id string) (*models.Student, error) {
	studentID := domain.StudentID(id)

	if s.cache != nil {
		if student, ok := s.cache.Get(ctx, studentID); ok {
			return student, nil
		}
	}

	student, err := s.store.FindByID(ctx, studentID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "student not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "lookup failed")
	}

	if s.cache != nil {
		s.cache.Set(ctx, student)
	}
	return student, nil
}

// History lists the archived snapshots for an id, oldest version first. The
// student must currently exist.
func (s *Service) History(ctx context.Context, id string) ([]models.StudentSnapshot, error) {
	studentID := domain.StudentID(id)

	if _, err := s.store.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "student not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "history read failed")
	}

	entries, err := s.store.ListHistory(ctx, studentID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "history read failed")
	}
	return entries, nil
}

package store

import (
	"context"
	"sync"
	"time"

	"studentregistry/internal/student/models"
	"studentregistry/pkg/domain"
	"studentregistry/pkg/platform/sentinel"
)

// InMemory keeps students and snapshots in maps. It backs unit tests and
// relies on the sharded in-memory transaction boundary for same-id
// serialization; the RWMutex only protects map access.
type InMemory struct {
	mu       sync.RWMutex
	students map[domain.StudentID]*models.Student
	history  map[domain.StudentID][]models.StudentSnapshot
	nextID   int64
}

func NewInMemory() *InMemory {
	return &InMemory{
		students: make(map[domain.StudentID]*models.Student),
		history:  make(map[domain.StudentID][]models.StudentSnapshot),
	}
}

func (s *InMemory) FindByID(_ context.Context, id domain.StudentID) (*models.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	student, ok := s.students[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return student.Clone(), nil
}

func (s *InMemory) FindByIDForUpdate(ctx context.Context, id domain.StudentID) (*models.Student, error) {
	// Same as FindByID; exclusion comes from the transaction boundary.
	return s.FindByID(ctx, id)
}

func (s *InMemory) Insert(_ context.Context, student *models.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.students[student.ID]; exists {
		return sentinel.ErrConflict
	}
	s.students[student.ID] = student.Clone()
	return nil
}

func (s *InMemory) Update(_ context.Context, student *models.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.students[student.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.students[student.ID] = student.Clone()
	return nil
}

func (s *InMemory) ArchiveSnapshot(_ context.Context, student *models.Student, changedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.history[student.ID] = append(s.history[student.ID], models.StudentSnapshot{
		EntryID:   s.nextID,
		StudentID: student.ID,
		DOB:       student.DOB,
		Phone:     student.Phone,
		Name:      student.Name,
		Version:   student.Version,
		UpdatedAt: student.UpdatedAt,
		ChangedAt: changedAt,
	})
	return nil
}

func (s *InMemory) ListHistory(_ context.Context, id domain.StudentID) ([]models.StudentSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.StudentSnapshot{}, s.history[id]...), nil
}

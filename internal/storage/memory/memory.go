// Package memory implements the application store in process memory.
// It backs tests and the CLI demo mode with the same scoping and
// ordering semantics as the Postgres store.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jobtrail/jobtrail/internal/models"
	"github.com/jobtrail/jobtrail/internal/storage"
)

// Store keeps rows in a mutex-guarded map.
type Store struct {
	mu     sync.RWMutex
	nextID uint
	rows   map[uint]models.JobApplication
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{nextID: 1, rows: make(map[uint]models.JobApplication)}
}

var _ storage.ApplicationStore = (*Store)(nil)

func (s *Store) Create(_ context.Context, app *models.JobApplication) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	app.ID = s.nextID
	s.nextID++
	app.CreatedAt = now
	app.UpdatedAt = now

	s.rows[app.ID] = *app
	return nil
}

func (s *Store) ListByUser(_ context.Context, userID uuid.UUID, filter storage.ListFilter) ([]models.JobApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	apps := make([]models.JobApplication, 0)
	for _, row := range s.rows {
		if row.UserID != userID {
			continue
		}
		if filter.Status != "" && row.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !matches(row, filter.Search) {
			continue
		}
		apps = append(apps, row)
	}

	// Newest first; fall back to id for rows created in the same instant.
	sort.Slice(apps, func(i, j int) bool {
		if apps[i].CreatedAt.Equal(apps[j].CreatedAt) {
			return apps[i].ID > apps[j].ID
		}
		return apps[i].CreatedAt.After(apps[j].CreatedAt)
	})
	return apps, nil
}

func matches(row models.JobApplication, search string) bool {
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(row.Company), needle) ||
		strings.Contains(strings.ToLower(row.Role), needle)
}

func (s *Store) GetByUser(_ context.Context, id uint, userID uuid.UUID) (*models.JobApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[id]
	if !ok || row.UserID != userID {
		return nil, storage.ErrNotFound
	}
	copied := row
	return &copied, nil
}

func (s *Store) Update(_ context.Context, app *models.JobApplication) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[app.ID]; !ok {
		return storage.ErrNotFound
	}
	app.UpdatedAt = time.Now()
	s.rows[app.ID] = *app
	return nil
}

func (s *Store) DeleteByUser(_ context.Context, id uint, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[id]
	if !ok || row.UserID != userID {
		return storage.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

// Package store holds the client-side state for the current session's
// job applications. It is the single authoritative in-memory list the UI
// reads from; every mutation goes through the API client and the list is
// kept consistent with the server afterwards.
package store

import (
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/jobtrail/jobtrail/internal/auth"
	"github.com/jobtrail/jobtrail/internal/client"
	"github.com/jobtrail/jobtrail/internal/dtos"
	"github.com/jobtrail/jobtrail/internal/models"
)

// State is the externally visible lifecycle of the store.
type State int

const (
	// StateUninitialized means no session: the list is empty.
	StateUninitialized State = iota
	// StateLoading means the initial fetch is in flight.
	StateLoading
	// StateReady means the list reflects the last successful fetch,
	// possibly annotated with a non-fatal error from a failed refresh.
	StateReady
)

// Store mediates between UI code and the applications API.
type Store struct {
	apps *client.Applications
	log  *logrus.Logger

	mu    sync.RWMutex
	token string
	// loadedFor is the token value whose initial load completed; it
	// guards Load against redundant fetches on re-render. A token
	// change resets it.
	loadedFor string
	state     State
	loading   bool
	err       error
	items     []models.JobApplication
}

// NewStore creates a store over the applications client.
func NewStore(apps *client.Applications, log *logrus.Logger) *Store {
	return &Store{apps: apps, log: log}
}

// BindSession subscribes the store to session-token changes so sign-in
// resets the load guard and sign-out clears all local state.
func (s *Store) BindSession(m *auth.SessionManager) {
	m.OnChange(s.SetToken)
}

// SetToken installs the session token the store fetches with. An empty
// token tears the store down to uninitialized; a new token invalidates
// the load guard so the next Load hits the network.
func (s *Store) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == "" {
		s.token = ""
		s.loadedFor = ""
		s.items = nil
		s.err = nil
		s.loading = false
		s.state = StateUninitialized
		return
	}
	if token != s.token {
		s.token = token
		s.loadedFor = ""
	}
}

// Load fetches the current user's applications unless this token's
// initial load already completed. It toggles the loading flag for the
// duration; a failure records the error and keeps any prior data.
func (s *Store) Load(ctx context.Context) error {
	return s.fetch(ctx, false, false)
}

// Refresh re-fetches unconditionally and silently: no loading flag, so
// callers refreshing in the background don't flash a spinner.
func (s *Store) Refresh(ctx context.Context) error {
	return s.fetch(ctx, true, true)
}

func (s *Store) fetch(ctx context.Context, force, silent bool) error {
	s.mu.Lock()
	token := s.token
	if token == "" {
		s.mu.Unlock()
		return nil
	}
	if s.loadedFor == token && !force {
		s.mu.Unlock()
		return nil
	}
	if !silent {
		s.loading = true
		s.state = StateLoading
	}
	s.err = nil
	s.mu.Unlock()

	items, err := s.apps.GetAll(ctx, token, "", "")

	s.mu.Lock()
	defer s.mu.Unlock()

	if !silent {
		s.loading = false
	}
	// The session may have changed or ended while the request was in
	// flight; stale results must not overwrite the newer state.
	if s.token != token {
		return err
	}
	if err != nil {
		s.log.WithError(err).Error("failed to fetch applications")
		s.err = err
		if s.loadedFor == "" {
			s.state = StateUninitialized
		} else {
			s.state = StateReady
		}
		return err
	}

	if items == nil {
		items = []models.JobApplication{}
	}
	s.items = items
	s.loadedFor = token
	s.state = StateReady
	return nil
}

// Add creates an application and refreshes the list on success. On
// failure the local state is untouched and the error is returned to the
// caller.
func (s *Store) Add(ctx context.Context, data dtos.CreateApplicationRequest) error {
	token := s.currentToken()
	if token == "" {
		return nil
	}
	if _, err := s.apps.Create(ctx, token, data); err != nil {
		s.log.WithError(err).Error("failed to add application")
		return err
	}
	return s.Refresh(ctx)
}

// Update patches an application and refreshes the list on success.
func (s *Store) Update(ctx context.Context, id uint, data dtos.UpdateApplicationRequest) error {
	token := s.currentToken()
	if token == "" {
		return nil
	}
	if _, err := s.apps.Update(ctx, token, id, data); err != nil {
		s.log.WithError(err).WithField("id", id).Error("failed to update application")
		return err
	}
	return s.Refresh(ctx)
}

// Remove deletes an application. The deletion is already known to the
// list, so on success the row is dropped locally without a refetch; on
// failure the row stays.
func (s *Store) Remove(ctx context.Context, id uint) error {
	token := s.currentToken()
	if token == "" {
		return nil
	}
	if err := s.apps.Delete(ctx, token, id); err != nil {
		s.log.WithError(err).WithField("id", id).Error("failed to delete application")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.items[:0]
	for _, app := range s.items {
		if app.ID != id {
			kept = append(kept, app)
		}
	}
	s.items = kept
	return nil
}

func (s *Store) currentToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// State returns the store's lifecycle state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Loading reports whether a non-silent fetch is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the most recent fetch error, cleared on the next attempt.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Applications returns a copy of the current list.
func (s *Store) Applications() []models.JobApplication {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.JobApplication, len(s.items))
	copy(out, s.items)
	return out
}

// Filter returns the rows matching an exact status and/or a
// case-insensitive company/role substring, computed from the cached list.
func (s *Store) Filter(status models.Status, search string) []models.JobApplication {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(search)
	out := make([]models.JobApplication, 0)
	for _, app := range s.items {
		if status != "" && app.Status != status {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(app.Company), needle) &&
			!strings.Contains(strings.ToLower(app.Role), needle) {
			continue
		}
		out = append(out, app)
	}
	return out
}

// Counts returns how many cached rows sit in each status.
func (s *Store) Counts() map[models.Status]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[models.Status]int, 4)
	for _, status := range models.Statuses() {
		counts[status] = 0
	}
	for _, app := range s.items {
		counts[app.Status]++
	}
	return counts
}

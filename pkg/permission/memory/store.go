package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/infinitewater/bucket/pkg/permission"
)

// Store keeps registered permissions and grants in process memory.
type Store struct {
	mu         sync.RWMutex
	registered map[string]struct{}
	grants     map[string]map[string]struct{} // actor ID → permission names
}

// NewStore creates an empty in-memory permission store.
func NewStore() *Store {
	return &Store{
		registered: make(map[string]struct{}),
		grants:     make(map[string]map[string]struct{}),
	}
}

// Register declares a permission.
func (s *Store) Register(name string) error {
	if name == "" {
		return fmt.Errorf("register permission: empty name")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.registered[name] = struct{}{}
	return nil
}

// HasPermission reports whether the actor holds a registered permission.
func (s *Store) HasPermission(actorID, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.registered[name]; !ok {
		return false, nil
	}
	_, ok := s.grants[actorID][name]
	return ok, nil
}

// Grant gives the actor a registered permission.
func (s *Store) Grant(actorID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.registered[name]; !ok {
		return fmt.Errorf("grant %q: %w", name, permission.ErrUnknownPermission)
	}
	perms, ok := s.grants[actorID]
	if !ok {
		perms = make(map[string]struct{})
		s.grants[actorID] = perms
	}
	perms[name] = struct{}{}
	return nil
}

// Revoke removes a permission from the actor.
func (s *Store) Revoke(actorID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	perms, ok := s.grants[actorID]
	if !ok {
		return nil
	}
	delete(perms, name)
	if len(perms) == 0 {
		delete(s.grants, actorID)
	}
	return nil
}

// Granted lists the actor's permissions in sorted order.
func (s *Store) Granted(actorID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.grants[actorID]))
	for name := range s.grants[actorID] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Ensure Store implements the permission.Store interface.
var _ permission.Store = (*Store)(nil)

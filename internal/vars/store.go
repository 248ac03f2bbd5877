package vars

import "sync"

// Store maps variable names to string values, partitioned by provenance:
// parameters bound from positional arguments, secrets bound from the
// environment, and captures bound at runtime from command output. Lookup
// prefers captures, then parameters, then secrets.
//
// A Store is safe for concurrent use. Parallel lanes read from a Fork, a
// point-in-time snapshot whose capture writes also propagate back to the
// store it was forked from; sibling lanes therefore never observe each
// other's captures, while steps after the group's join barrier see them all.
// Concurrent writes to the same capture name are last-writer-wins.
type Store struct {
	mu       sync.Mutex
	parent   *Store
	params   map[string]string
	secrets  map[string]string
	captures map[string]string
}

// NewStore creates an empty variable store.
func NewStore() *Store {
	return &Store{
		params:   make(map[string]string),
		secrets:  make(map[string]string),
		captures: make(map[string]string),
	}
}

// BindParam binds a declared parameter. Parameters are seeded once at script
// entry, before any step runs.
func (s *Store) BindParam(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params[name] = value
}

// BindSecret binds a declared secret. Secrets are read-only for the rest of
// the run.
func (s *Store) BindSecret(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secrets[name] = value
}

// SetCapture binds a runtime-captured value, overwriting any prior binding
// with the same name. On a fork the write also propagates to the parent
// chain, so the capture survives the fork's join barrier.
func (s *Store) SetCapture(name, value string) {
	s.mu.Lock()
	s.captures[name] = value
	parent := s.parent
	s.mu.Unlock()

	if parent != nil {
		parent.SetCapture(name, value)
	}
}

// Lookup resolves a name against the store: captures first, then
// parameters, then secrets.
func (s *Store) Lookup(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.captures[name]; ok {
		return v, true
	}
	if v, ok := s.params[name]; ok {
		return v, true
	}
	if v, ok := s.secrets[name]; ok {
		return v, true
	}
	return "", false
}

// Fork returns a snapshot of the store for a parallel lane. Reads hit only
// the snapshot; capture writes go to the snapshot and to every ancestor.
func (s *Store) Fork() *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	child := &Store{
		parent:   s,
		params:   make(map[string]string, len(s.params)),
		secrets:  make(map[string]string, len(s.secrets)),
		captures: make(map[string]string, len(s.captures)),
	}
	for k, v := range s.params {
		child.params[k] = v
	}
	for k, v := range s.secrets {
		child.secrets[k] = v
	}
	for k, v := range s.captures {
		child.captures[k] = v
	}
	return child
}

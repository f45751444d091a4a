package clients

import (
	"fmt"
	"slices"
	"sync"
)

// Registry is the ordered set of clients. Order is insertion order and
// decides both folder-name suffixes and match tie-breaks.
type Registry struct {
	mu      sync.RWMutex
	clients []Client
	index   map[Client]struct{}
}

// NewRegistry returns a registry holding list in order, dropping repeats.
func NewRegistry(list ...Client) *Registry {
	r := &Registry{index: make(map[Client]struct{}, len(list))}
	for _, c := range list {
		_ = r.insert(c)
	}
	return r
}

// Add parses raw and registers the client. Adding a client that is already
// present is a no-op reported as ErrDuplicate.
func (r *Registry) Add(raw string) (Client, error) {
	c, err := Parse(raw)
	if err != nil {
		return Client{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.insert(c); err != nil {
		return c, err
	}
	return c, nil
}

func (r *Registry) insert(c Client) error {
	if _, ok := r.index[c]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, DisplayName(c))
	}
	r.index[c] = struct{}{}
	r.clients = append(r.clients, c)
	return nil
}

// Remove deletes c by value and reports whether it was present.
func (r *Registry) Remove(c Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.index[c]; !ok {
		return false
	}
	delete(r.index, c)
	r.clients = slices.DeleteFunc(r.clients, func(existing Client) bool { return existing == c })
	return true
}

// Contains reports whether c is registered.
func (r *Registry) Contains(c Client) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.index[c]
	return ok
}

// Len returns the number of registered clients.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Clients returns a snapshot in registry order.
func (r *Registry) Clients() []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.clients)
}

// FolderMapping computes the collision-resolved folder name of every client
// in the current snapshot. Callers compute it once per run and reuse it.
func (r *Registry) FolderMapping() map[Client]string {
	snapshot := r.Clients()
	names := AssignFolderNames(snapshot)
	mapping := make(map[Client]string, len(snapshot))
	for i, c := range snapshot {
		mapping[c] = names[i]
	}
	return mapping
}

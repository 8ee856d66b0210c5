package core

import (
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
)

var nameRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,32}$`)

// ValidName reports whether a username satisfies the protocol's format rule:
// 1-32 characters, alphanumeric plus underscore and hyphen.
func ValidName(name string) bool {
	return nameRe.MatchString(name)
}

// Session is the server-side record of one joined client.
type Session struct {
	// ID is monotonically assigned and never reused while the server runs.
	ID       int64
	Name     string
	Client   *Client
	JoinedAt time.Time
	// LastMessageAt tracks the most recent accepted message.
	LastMessageAt time.Time
	bucket        TokenBucket
}

// Registry is the authoritative session membership map. Usernames are unique
// case-insensitively among registered sessions. All mutation happens on the
// hub goroutine; the only concurrent surface is Snapshot, which serves
// diagnostics from a copy refreshed after every mutation.
type Registry struct {
	sessions map[int64]*Session
	byName   map[string]*Session // keyed by lowercased name
	nextID   int64
	max      int

	snapMu sync.RWMutex
	snap   []string
}

// NewRegistry builds a registry capped at maxClients sessions (0 = no cap).
func NewRegistry(maxClients int) *Registry {
	return &Registry{
		sessions: make(map[int64]*Session),
		byName:   make(map[string]*Session),
		max:      maxClients,
	}
}

// Register creates a session for the client under the given name.
func (r *Registry) Register(c *Client, name string, now time.Time) (*Session, *CoreError) {
	if r.max > 0 && len(r.sessions) >= r.max {
		return nil, NewError(ErrCodeServerFull, "server is full")
	}
	key := strings.ToLower(name)
	if _, exists := r.byName[key]; exists {
		return nil, NewError(ErrCodeNameTaken, "username already in use")
	}
	r.nextID++
	s := &Session{
		ID:       r.nextID,
		Name:     name,
		Client:   c,
		JoinedAt: now,
	}
	r.sessions[s.ID] = s
	r.byName[key] = s
	r.refreshSnapshot()
	return s, nil
}

// Unregister removes a session by id, returning it, or nil if already gone.
func (r *Registry) Unregister(id int64) *Session {
	s, ok := r.sessions[id]
	if !ok {
		return nil
	}
	delete(r.sessions, id)
	delete(r.byName, strings.ToLower(s.Name))
	r.refreshSnapshot()
	return s
}

// Lookup returns the session with the given id, or nil.
func (r *Registry) Lookup(id int64) *Session {
	return r.sessions[id]
}

// FindByName resolves a session by username, case-insensitively.
func (r *Registry) FindByName(name string) *Session {
	return r.byName[strings.ToLower(name)]
}

// Rename changes a session's username in place, keeping the uniqueness
// invariant. A case-only change of the session's own name is allowed.
func (r *Registry) Rename(id int64, newName string) *CoreError {
	s, ok := r.sessions[id]
	if !ok {
		return NewError(ErrCodeBadRequest, "unknown session")
	}
	oldKey := strings.ToLower(s.Name)
	newKey := strings.ToLower(newName)
	if other, exists := r.byName[newKey]; exists && other != s {
		return NewError(ErrCodeNameTaken, "username already in use")
	}
	delete(r.byName, oldKey)
	r.byName[newKey] = s
	s.Name = newName
	r.refreshSnapshot()
	return nil
}

// Len reports the number of registered sessions.
func (r *Registry) Len() int {
	return len(r.sessions)
}

// Each calls fn for every registered session.
func (r *Registry) Each(fn func(*Session)) {
	for _, s := range r.sessions {
		fn(s)
	}
}

// ActiveUsers returns the registered usernames in join order.
func (r *Registry) ActiveUsers() []string {
	sessions := lo.Values(r.sessions)
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID < sessions[j].ID })
	return lo.Map(sessions, func(s *Session, _ int) string { return s.Name })
}

func (r *Registry) refreshSnapshot() {
	names := r.ActiveUsers()
	r.snapMu.Lock()
	r.snap = names
	r.snapMu.Unlock()
}

// Snapshot returns the active usernames as of the last mutation. Unlike
// every other method it is safe for concurrent use.
func (r *Registry) Snapshot() []string {
	r.snapMu.RLock()
	defer r.snapMu.RUnlock()
	return append([]string(nil), r.snap...)
}

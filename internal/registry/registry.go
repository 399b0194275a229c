// Package registry holds the canonical admission state of every connection:
// which canonical names are pending an operator decision and which are active.
package registry

import (
	"sync"

	"gatechat/internal/model"
)

// Registry is the in-memory session index keyed by canonical name. A key is
// in at most one of the pending and active sets at any instant. Sessions are
// mutated only here; callers treat them as read-only.
type Registry struct {
	mu           sync.RWMutex
	pending      map[string]*model.Session
	active       map[string]*model.Session
	pendingOrder []string
	activeOrder  []string
}

// NewRegistry creates an empty session registry
func NewRegistry() *Registry {
	return &Registry{
		pending: make(map[string]*model.Session),
		active:  make(map[string]*model.Session),
	}
}

// PutPending binds the canonical key to the session and records it as pending.
// A second request with the same key before a decision silently replaces the
// earlier entry; the displaced session is returned so callers can log it.
// A key that is already active cannot be re-requested: the call is refused
// with ok = false and the session is left untouched, so a key is never in
// both sets at once.
func (r *Registry) PutPending(sess *model.Session, key, displayName string) (displaced *model.Session, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, isActive := r.active[key]; isActive {
		return nil, false
	}

	sess.Key = key
	sess.DisplayName = displayName
	sess.State = model.SessionPending

	displaced = r.pending[key]
	if displaced == nil {
		r.pendingOrder = append(r.pendingOrder, key)
	}
	r.pending[key] = sess
	return displaced, true
}

// Promote moves a pending session to the active set and marks it authorized.
// Returns false if the key has no pending entry.
func (r *Registry) Promote(key string) (*model.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.pending[key]
	if !ok {
		return nil, false
	}
	delete(r.pending, key)
	r.pendingOrder = remove(r.pendingOrder, key)

	sess.Authorized = true
	sess.State = model.SessionActive
	if old, wasActive := r.active[key]; wasActive {
		// Keeps activeOrder in step with the map even if a key ever reaches
		// promote while active; the displaced session loses authorization.
		old.Authorized = false
	} else {
		r.activeOrder = append(r.activeOrder, key)
	}
	r.active[key] = sess
	return sess, true
}

// RemovePending deletes the pending entry for key if present. Idempotent.
func (r *Registry) RemovePending(key string) (*model.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.pending[key]
	if !ok {
		return nil, false
	}
	delete(r.pending, key)
	r.pendingOrder = remove(r.pendingOrder, key)
	return sess, true
}

// RemoveActive deletes the active entry for key if present. Idempotent.
func (r *Registry) RemoveActive(key string) (*model.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.active[key]
	if !ok {
		return nil, false
	}
	delete(r.active, key)
	r.activeOrder = remove(r.activeOrder, key)
	sess.Authorized = false
	return sess, true
}

// LookupPending returns the pending session for key, if any.
func (r *Registry) LookupPending(key string) (*model.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.pending[key]
	return sess, ok
}

// LookupActive returns the active session for key, if any.
func (r *Registry) LookupActive(key string) (*model.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.active[key]
	return sess, ok
}

// Authorized reports whether sess is the current active entry for its key.
// Active-set membership, not the session's own flag, is the source of truth:
// a session displaced by a later request with the same name never passes.
func (r *Registry) Authorized(sess *model.Session) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active[sess.Key] == sess
}

// PendingKeys returns the pending canonical keys in insertion order.
func (r *Registry) PendingKeys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.pendingOrder...)
}

// ActiveKeys returns the active canonical keys in insertion order.
func (r *Registry) ActiveKeys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.activeOrder...)
}

// Snapshot returns both key lists for admin observers.
func (r *Registry) Snapshot() model.AdminState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return model.AdminState{
		Pending: append([]string(nil), r.pendingOrder...),
		Active:  append([]string(nil), r.activeOrder...),
	}
}

func remove(keys []string, key string) []string {
	for i, k := range keys {
		if k == key {
			return append(keys[:i], keys[i+1:]...)
		}
	}
	return keys
}

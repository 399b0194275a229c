package model

import "strings"

type SessionState string

const (
	SessionUnbound    SessionState = "unbound"
	SessionPending    SessionState = "pending"
	SessionActive     SessionState = "active"
	SessionTerminated SessionState = "terminated"
)

// Session is the server-side record for one live connection. ConnID is the
// opaque transport handle; Key is the canonical name used as the registry
// index. Authorized is denormalized from active-set membership and is written
// only by the registry.
type Session struct {
	ConnID      string
	Key         string
	DisplayName string
	Authorized  bool
	State       SessionState
}

// CanonicalKey derives the registry index from a display name.
func CanonicalKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

package service

import (
	"log"
	"strings"
	"sync"

	"gatechat/internal/model"
	"gatechat/internal/registry"
)

// CommandOutcome classifies the result of an operator command.
type CommandOutcome string

const (
	OutcomeApplied         CommandOutcome = "applied"
	OutcomeAccessDenied    CommandOutcome = "access-denied"
	OutcomeTargetNotFound  CommandOutcome = "target-not-found"
	OutcomeTargetNotActive CommandOutcome = "target-not-active"
	OutcomeIgnored         CommandOutcome = "ignored"
)

// AdmissionService owns every mutation of the session registry: operator
// allow/deny/kick, access requests, and disconnects all serialize on its
// mutex, so a command and its broadcasts are atomic with respect to a racing
// disconnect on the same key. Connection closes are issued after the registry
// mutation completes.
type AdmissionService struct {
	mu          sync.Mutex
	reg         *registry.Registry
	broadcaster Broadcaster
	authSvc     *AuthService
}

// NewAdmissionService creates a new admission service
func NewAdmissionService(reg *registry.Registry, authSvc *AuthService) *AdmissionService {
	return &AdmissionService{reg: reg, authSvc: authSvc}
}

// SetBroadcaster injects the WebSocket hub (set after construction to break
// the hub/service cycle).
func (s *AdmissionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// HandleConsoleCommand applies a command line from the trusted operator
// console. No credential check: the console already has process-level trust.
func (s *AdmissionService) HandleConsoleCommand(line string) CommandOutcome {
	verb, target := parseCommand(line)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(verb, target)
}

// HandleAdminCommand applies a command from the remote admin channel. The
// shared secret is checked on every call; a mismatch notifies only the
// requesting connection and mutates nothing.
func (s *AdmissionService) HandleAdminCommand(connID string, cmd model.AdminCommand) CommandOutcome {
	if !s.authSvc.VerifySecret(cmd.Password) {
		s.broadcaster.SendTo(connID, "access-denied", nil)
		return OutcomeAccessDenied
	}

	verb, target := parseCommand(cmd.Command)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(verb, target)
}

// RequestAccess binds the (trimmed, lower-cased) name to the session and
// records it as pending. A later request with the same key displaces the
// earlier one; the displaced connection stays open but is no longer indexed.
// A name that is already active is refused and the requester stays unbound.
func (s *AdmissionService) RequestAccess(sess *model.Session, name string) {
	key := model.CanonicalKey(name)
	if key == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	displaced, ok := s.reg.PutPending(sess, key, name)
	if !ok {
		log.Printf("request for %q ignored: name already active", key)
		return
	}

	if displaced != nil {
		log.Printf("pending entry %q displaced an earlier request from the same name", key)
	}
	log.Printf("[!] REQUEST: %q wants to join.", name)
	log.Printf("allow %s | deny %s", key, key)

	s.broadcaster.BroadcastAdmins("admin-state", s.reg.Snapshot())
}

// Disconnect purges a session after its transport connection drops. Sessions
// the controller already terminated (kick, deny) and sessions that never
// submitted a name need no registry action or broadcast.
func (s *AdmissionService) Disconnect(sess *model.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.State == model.SessionTerminated || sess.Key == "" {
		sess.State = model.SessionTerminated
		return
	}

	// Remove only entries this session owns: a later request with the same
	// name may have displaced it, and its entry must survive.
	removed := false
	if cur, ok := s.reg.LookupPending(sess.Key); ok && cur == sess {
		s.reg.RemovePending(sess.Key)
		removed = true
	}
	if cur, ok := s.reg.LookupActive(sess.Key); ok && cur == sess {
		s.reg.RemoveActive(sess.Key)
		removed = true
	}
	sess.State = model.SessionTerminated

	if !removed {
		return
	}

	log.Printf("[-] %s has left the server.", sess.DisplayName)
	s.broadcaster.BroadcastAll("system", sess.DisplayName+" left the chat")
	s.broadcaster.BroadcastAll("online-users", s.reg.ActiveKeys())
	s.broadcaster.BroadcastAdmins("admin-state", s.reg.Snapshot())
}

// Snapshot returns the current pending/active key lists for admin observers.
func (s *AdmissionService) Snapshot() model.AdminState {
	return s.reg.Snapshot()
}

// apply executes one verb under the admission mutex.
func (s *AdmissionService) apply(verb, target string) CommandOutcome {
	switch verb {
	case "allow":
		return s.allow(target)
	case "deny":
		return s.deny(target)
	case "kick":
		return s.kick(target)
	default:
		return OutcomeIgnored
	}
}

func (s *AdmissionService) allow(key string) CommandOutcome {
	sess, ok := s.reg.Promote(key)
	if !ok {
		log.Printf("user %q not found", key)
		return OutcomeTargetNotFound
	}

	log.Printf("ALLOWED: %s is now active.", sess.DisplayName)
	s.broadcaster.SendTo(sess.ConnID, "permission-granted", nil)
	s.broadcaster.BroadcastAll("system", sess.DisplayName+" joined the chat")
	s.broadcaster.BroadcastAll("online-users", s.reg.ActiveKeys())
	s.broadcaster.BroadcastAdmins("admin-state", s.reg.Snapshot())
	return OutcomeApplied
}

func (s *AdmissionService) deny(key string) CommandOutcome {
	sess, ok := s.reg.RemovePending(key)
	if !ok {
		return OutcomeTargetNotFound
	}
	sess.State = model.SessionTerminated

	log.Printf("DENIED: %s", key)
	s.broadcaster.SendTo(sess.ConnID, "permission-denied", nil)
	s.broadcaster.BroadcastAdmins("admin-state", s.reg.Snapshot())
	s.broadcaster.CloseConn(sess.ConnID)
	return OutcomeApplied
}

func (s *AdmissionService) kick(key string) CommandOutcome {
	sess, ok := s.reg.RemoveActive(key)
	if !ok {
		log.Printf("user %q is not active", key)
		return OutcomeTargetNotActive
	}
	sess.State = model.SessionTerminated

	log.Printf("KICKED: %s", sess.DisplayName)
	s.broadcaster.SendTo(sess.ConnID, "kicked", nil)
	s.broadcaster.BroadcastAll("online-users", s.reg.ActiveKeys())
	s.broadcaster.BroadcastAdmins("admin-state", s.reg.Snapshot())
	s.broadcaster.CloseConn(sess.ConnID)
	return OutcomeApplied
}

// parseCommand splits a command line into a verb and a canonical target. The
// target may contain spaces; interior runs of whitespace collapse to one.
func parseCommand(line string) (verb, target string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.ToLower(strings.Join(fields[1:], " "))
}

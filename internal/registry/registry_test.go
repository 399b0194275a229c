package registry

import (
	"testing"

	"gatechat/internal/model"
)

func newSession(connID string) *model.Session {
	return &model.Session{ConnID: connID, State: model.SessionUnbound}
}

// TestPutPendingRecordsEntry verifies a name request lands in the pending set
// with the canonical key bound and the original casing preserved.
func TestPutPendingRecordsEntry(t *testing.T) {
	reg := NewRegistry()
	sess := newSession("c1")

	displaced, ok := reg.PutPending(sess, "alice", "Alice")
	if !ok {
		t.Fatal("PutPending refused a fresh key")
	}
	if displaced != nil {
		t.Errorf("expected no displaced session, got %+v", displaced)
	}

	got, ok := reg.LookupPending("alice")
	if !ok {
		t.Fatal("pending entry not found")
	}
	if got.DisplayName != "Alice" {
		t.Errorf("DisplayName = %q, want %q", got.DisplayName, "Alice")
	}
	if got.Key != "alice" {
		t.Errorf("Key = %q, want %q", got.Key, "alice")
	}
	if got.State != model.SessionPending {
		t.Errorf("State = %q, want %q", got.State, model.SessionPending)
	}
}

// TestPutPendingOverwriteReturnsDisplaced verifies that a second request with
// the same canonical key silently replaces the first and reports the loser.
func TestPutPendingOverwriteReturnsDisplaced(t *testing.T) {
	reg := NewRegistry()
	first := newSession("c1")
	second := newSession("c2")

	reg.PutPending(first, "carol", "Carol")
	displaced, _ := reg.PutPending(second, "carol", "carol ")

	if displaced != first {
		t.Fatalf("displaced = %+v, want the first session", displaced)
	}
	got, _ := reg.LookupPending("carol")
	if got != second {
		t.Error("pending entry should be the latest request")
	}
	if keys := reg.PendingKeys(); len(keys) != 1 {
		t.Errorf("PendingKeys = %v, want exactly one entry", keys)
	}
}

// TestPromoteMovesPendingToActive verifies the allow transition: the key
// leaves the pending set, joins the active set, and the session is marked
// authorized.
func TestPromoteMovesPendingToActive(t *testing.T) {
	reg := NewRegistry()
	sess := newSession("c1")
	reg.PutPending(sess, "alice", "Alice")

	promoted, ok := reg.Promote("alice")
	if !ok {
		t.Fatal("Promote failed for a pending key")
	}
	if promoted != sess {
		t.Error("Promote returned a different session")
	}
	if !promoted.Authorized {
		t.Error("promoted session not authorized")
	}
	if promoted.State != model.SessionActive {
		t.Errorf("State = %q, want %q", promoted.State, model.SessionActive)
	}
	if _, stillPending := reg.LookupPending("alice"); stillPending {
		t.Error("key still pending after promote")
	}
	if _, active := reg.LookupActive("alice"); !active {
		t.Error("key not active after promote")
	}
}

// TestPromoteUnknownKey verifies allow on an unknown key changes nothing.
func TestPromoteUnknownKey(t *testing.T) {
	reg := NewRegistry()

	if _, ok := reg.Promote("ghost"); ok {
		t.Error("Promote succeeded for an unknown key")
	}
	if len(reg.PendingKeys()) != 0 || len(reg.ActiveKeys()) != 0 {
		t.Error("registry mutated by a failed promote")
	}
}

// TestKeyNeverInBothSets verifies the exclusivity invariant across the full
// transition sequence.
func TestKeyNeverInBothSets(t *testing.T) {
	reg := NewRegistry()
	sess := newSession("c1")

	check := func(stage string) {
		_, pending := reg.LookupPending("bob")
		_, active := reg.LookupActive("bob")
		if pending && active {
			t.Errorf("%s: key present in both pending and active", stage)
		}
	}

	reg.PutPending(sess, "bob", "Bob")
	check("after put")
	reg.Promote("bob")
	check("after promote")
	reg.RemoveActive("bob")
	check("after remove")
}

// TestRemoveIsIdempotent verifies removal of absent keys is a no-op.
func TestRemoveIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	sess := newSession("c1")
	reg.PutPending(sess, "alice", "Alice")
	reg.Promote("alice")

	if _, ok := reg.RemoveActive("alice"); !ok {
		t.Fatal("first removal should report presence")
	}
	if _, ok := reg.RemoveActive("alice"); ok {
		t.Error("second removal should report absence")
	}
	if _, ok := reg.RemovePending("alice"); ok {
		t.Error("pending removal should report absence")
	}
}

// TestRemoveActiveClearsAuthorized verifies a removed session can no longer
// pass the broadcast gate.
func TestRemoveActiveClearsAuthorized(t *testing.T) {
	reg := NewRegistry()
	sess := newSession("c1")
	reg.PutPending(sess, "alice", "Alice")
	reg.Promote("alice")

	removed, _ := reg.RemoveActive("alice")
	if removed.Authorized {
		t.Error("removed session still flagged authorized")
	}
	if reg.Authorized(removed) {
		t.Error("Authorized returned true for a removed session")
	}
}

// TestAuthorizedRequiresIdentity verifies a session displaced by a later
// request with the same name never counts as the active entry, even after
// that name is allowed.
func TestAuthorizedRequiresIdentity(t *testing.T) {
	reg := NewRegistry()
	first := newSession("c1")
	second := newSession("c2")

	reg.PutPending(first, "carol", "Carol")
	reg.PutPending(second, "carol", "carol")
	reg.Promote("carol")

	if reg.Authorized(first) {
		t.Error("displaced session passed the authorization check")
	}
	if !reg.Authorized(second) {
		t.Error("winning session failed the authorization check")
	}
}

// TestPutPendingRefusedWhileActive verifies a key held by an active session
// cannot re-enter the pending set: the request is refused, the requesting
// session stays untouched, and the key stays in exactly one set.
func TestPutPendingRefusedWhileActive(t *testing.T) {
	reg := NewRegistry()
	holder := newSession("c1")
	reg.PutPending(holder, "alice", "Alice")
	reg.Promote("alice")

	intruder := newSession("c2")
	displaced, ok := reg.PutPending(intruder, "alice", "alice")
	if ok {
		t.Fatal("PutPending accepted an already-active key")
	}
	if displaced != nil {
		t.Errorf("displaced = %+v, want nil on refusal", displaced)
	}
	if intruder.Key != "" || intruder.State != model.SessionUnbound {
		t.Errorf("refused session was mutated: %+v", intruder)
	}
	if _, pending := reg.LookupPending("alice"); pending {
		t.Error("key entered pending while active")
	}
	if !reg.Authorized(holder) {
		t.Error("active holder lost authorization")
	}
}

// TestActiveKeysNeverDuplicated verifies the active key list agrees with the
// active map across repeated transitions on the same key: one entry while
// active, zero after removal.
func TestActiveKeysNeverDuplicated(t *testing.T) {
	reg := NewRegistry()

	for i := 0; i < 3; i++ {
		sess := newSession("c1")
		reg.PutPending(sess, "alice", "Alice")
		reg.Promote("alice")

		if keys := reg.ActiveKeys(); len(keys) != 1 || keys[0] != "alice" {
			t.Fatalf("round %d: ActiveKeys = %v, want [alice]", i, keys)
		}

		reg.RemoveActive("alice")
		if keys := reg.ActiveKeys(); len(keys) != 0 {
			t.Fatalf("round %d: ActiveKeys after removal = %v, want empty", i, keys)
		}
	}
}

// TestSnapshotKeysInInsertionOrder verifies the key lists preserve the order
// requests arrived in.
func TestSnapshotKeysInInsertionOrder(t *testing.T) {
	reg := NewRegistry()
	for i, name := range []string{"zed", "alice", "mike"} {
		reg.PutPending(newSession(string(rune('a'+i))), name, name)
	}
	reg.Promote("zed")
	reg.Promote("mike")

	pending := reg.PendingKeys()
	if len(pending) != 1 || pending[0] != "alice" {
		t.Errorf("PendingKeys = %v, want [alice]", pending)
	}

	active := reg.ActiveKeys()
	if len(active) != 2 || active[0] != "zed" || active[1] != "mike" {
		t.Errorf("ActiveKeys = %v, want [zed mike]", active)
	}

	snap := reg.Snapshot()
	if len(snap.Pending) != 1 || len(snap.Active) != 2 {
		t.Errorf("Snapshot = %+v, want 1 pending / 2 active", snap)
	}
}

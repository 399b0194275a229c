package service

import (
	"context"
	"errors"
	"sync"

	"gatechat/internal/model"
)

// recordedEvent is one call observed by the fake broadcaster.
type recordedEvent struct {
	Kind    string // "all", "to", "admins", "close"
	Target  string
	Event   string
	Payload interface{}
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakeBroadcaster) BroadcastAll(event string, payload interface{}) {
	f.record(recordedEvent{Kind: "all", Event: event, Payload: payload})
}

func (f *fakeBroadcaster) SendTo(connID string, event string, payload interface{}) {
	f.record(recordedEvent{Kind: "to", Target: connID, Event: event, Payload: payload})
}

func (f *fakeBroadcaster) BroadcastAdmins(event string, payload interface{}) {
	f.record(recordedEvent{Kind: "admins", Event: event, Payload: payload})
}

func (f *fakeBroadcaster) CloseConn(connID string) {
	f.record(recordedEvent{Kind: "close", Target: connID})
}

func (f *fakeBroadcaster) record(ev recordedEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

func (f *fakeBroadcaster) snapshot() []recordedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedEvent(nil), f.events...)
}

// count returns how many recorded events match kind and event name.
func (f *fakeBroadcaster) count(kind, event string) int {
	n := 0
	for _, ev := range f.snapshot() {
		if ev.Kind == kind && ev.Event == event {
			n++
		}
	}
	return n
}

// find returns the first recorded event with the given kind and event name.
func (f *fakeBroadcaster) find(kind, event string) (recordedEvent, bool) {
	for _, ev := range f.snapshot() {
		if ev.Kind == kind && ev.Event == event {
			return ev, true
		}
	}
	return recordedEvent{}, false
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	records  []*model.ChatRecord
	inserted chan *model.ChatRecord
	listErr  error
	insErr   error
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{inserted: make(chan *model.ChatRecord, 16)}
}

func (f *fakeMessageRepo) Insert(ctx context.Context, record *model.ChatRecord) error {
	if f.insErr != nil {
		return f.insErr
	}
	f.mu.Lock()
	f.records = append(f.records, record)
	f.mu.Unlock()
	f.inserted <- record
	return nil
}

func (f *fakeMessageRepo) ListAscending(ctx context.Context) ([]*model.ChatRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*model.ChatRecord(nil), f.records...), nil
}

type fakeHistoryCache struct {
	mu       sync.Mutex
	records  []*model.ChatRecord
	appended chan *model.ChatRecord
	err      error
}

func newFakeHistoryCache() *fakeHistoryCache {
	return &fakeHistoryCache{appended: make(chan *model.ChatRecord, 16)}
}

func (f *fakeHistoryCache) Append(ctx context.Context, record *model.ChatRecord) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	f.records = append(f.records, record)
	f.mu.Unlock()
	f.appended <- record
	return nil
}

func (f *fakeHistoryCache) Recent(ctx context.Context) ([]*model.ChatRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*model.ChatRecord(nil), f.records...), nil
}

var errBackendDown = errors.New("backend down")

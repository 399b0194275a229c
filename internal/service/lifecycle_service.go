package service

import (
	"context"
	"log"
	"time"

	"gatechat/internal/cache"
	"gatechat/internal/model"
	"gatechat/internal/repository"
)

const historyTimeout = 5 * time.Second

// LifecycleService binds transport connections to sessions: history replay on
// connect, access requests, and cleanup on disconnect. Registry mutation is
// delegated to the admission service so the whole system keeps one
// serialization point.
type LifecycleService struct {
	admission    *AdmissionService
	messageRepo  repository.MessageRepository
	historyCache cache.HistoryCache
	broadcaster  Broadcaster
}

// NewLifecycleService creates a new lifecycle service
func NewLifecycleService(admission *AdmissionService, messageRepo repository.MessageRepository, historyCache cache.HistoryCache) *LifecycleService {
	return &LifecycleService{
		admission:    admission,
		messageRepo:  messageRepo,
		historyCache: historyCache,
	}
}

// SetBroadcaster injects the WebSocket hub
func (s *LifecycleService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Connect returns a fresh session for a new connection and pushes the chat
// history to it. History sync is best-effort: on failure the connection
// simply starts with an empty backlog.
func (s *LifecycleService) Connect(connID string) *model.Session {
	sess := &model.Session{
		ConnID: connID,
		State:  model.SessionUnbound,
	}

	go s.syncHistory(connID)
	return sess
}

// RequestAccess records sess as pending under the canonical form of name.
func (s *LifecycleService) RequestAccess(sess *model.Session, name string) {
	s.admission.RequestAccess(sess, name)
}

// Disconnect purges sess from the registry and notifies the remaining
// connections. Safe to call for sessions the operator already terminated.
func (s *LifecycleService) Disconnect(sess *model.Session) {
	s.admission.Disconnect(sess)
}

func (s *LifecycleService) syncHistory(connID string) {
	ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
	defer cancel()

	records, err := s.historyCache.Recent(ctx)
	if err != nil {
		log.Printf("history cache read failed: %v", err)
		records = nil
	}
	if len(records) == 0 {
		records, err = s.messageRepo.ListAscending(ctx)
		if err != nil {
			log.Printf("history fetch failed: %v", err)
			return
		}
	}
	if len(records) == 0 {
		return
	}

	s.broadcaster.SendTo(connID, "chat-history", records)
}

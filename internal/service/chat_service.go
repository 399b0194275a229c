package service

import (
	"context"
	"log"
	"time"

	"gatechat/internal/cache"
	"gatechat/internal/model"
	"gatechat/internal/registry"
	"gatechat/internal/repository"
)

const persistTimeout = 5 * time.Second

// ChatService is the broadcast gateway: it gates inbound messages on
// authorization, fans them out to every connection, and hands them to the
// persistence layer on a best-effort side channel. Broadcast never waits on
// persistence.
type ChatService struct {
	reg          *registry.Registry
	messageRepo  repository.MessageRepository
	historyCache cache.HistoryCache
	broadcaster  Broadcaster
	now          func() time.Time
}

// NewChatService creates a new chat service
func NewChatService(reg *registry.Registry, messageRepo repository.MessageRepository, historyCache cache.HistoryCache) *ChatService {
	return &ChatService{
		reg:          reg,
		messageRepo:  messageRepo,
		historyCache: historyCache,
		now:          time.Now,
	}
}

// SetBroadcaster injects the WebSocket hub
func (s *ChatService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// HandleMessage broadcasts one chat line from sess. Messages from sessions
// that are not the current active entry for their key are dropped without any
// error to the sender; this is the sole authorization gate in the system.
func (s *ChatService) HandleMessage(sess *model.Session, text string) {
	if !s.reg.Authorized(sess) {
		return
	}

	timeString := s.now().Format("15:04")

	s.broadcaster.BroadcastAll("chat message", model.ChatMessage{
		User: sess.DisplayName,
		Text: text,
		Time: timeString,
	})

	record := &model.ChatRecord{
		Username: sess.DisplayName,
		Text:     text,
		Time:     timeString,
	}
	go s.persist(record)
}

// persist writes the record to Mongo and the Redis history list. Failures are
// logged and dropped; the broadcast already happened.
func (s *ChatService) persist(record *model.ChatRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := s.messageRepo.Insert(ctx, record); err != nil {
		log.Printf("failed to persist chat message: %v", err)
	}
	if err := s.historyCache.Append(ctx, record); err != nil {
		log.Printf("failed to cache chat message: %v", err)
	}
}

package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"gatechat/internal/model"
)

// HistoryCache keeps the most recent chat records in Redis so new
// connections can replay history without a database round trip.
type HistoryCache interface {
	Append(ctx context.Context, record *model.ChatRecord) error
	Recent(ctx context.Context) ([]*model.ChatRecord, error)
}

type historyCache struct {
	client *redis.Client
	limit  int64
	ttl    time.Duration
}

// NewHistoryCache creates a history cache bounded to limit records
func NewHistoryCache(client *redis.Client, limit int) HistoryCache {
	return &historyCache{
		client: client,
		limit:  int64(limit),
		ttl:    24 * time.Hour,
	}
}

func (c *historyCache) key() string {
	return "chat:history"
}

func (c *historyCache) Append(ctx context.Context, record *model.ChatRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	pipe := c.client.TxPipeline()
	pipe.RPush(ctx, c.key(), data)
	pipe.LTrim(ctx, c.key(), -c.limit, -1)
	pipe.Expire(ctx, c.key(), c.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (c *historyCache) Recent(ctx context.Context) ([]*model.ChatRecord, error) {
	items, err := c.client.LRange(ctx, c.key(), 0, -1).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	records := make([]*model.ChatRecord, 0, len(items))
	for _, item := range items {
		var record model.ChatRecord
		if err := json.Unmarshal([]byte(item), &record); err != nil {
			return nil, err
		}
		records = append(records, &record)
	}
	return records, nil
}

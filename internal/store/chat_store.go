package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/PrajwalNP160/major-project-sub001/internal/models"
)

// RedisChatStore appends group chat messages to a per-group Redis list.
type RedisChatStore struct {
	rdb *redis.Client
}

func NewRedisChatStore(addr string) *RedisChatStore {
	return &RedisChatStore{
		rdb: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

// NewRedisChatStoreFromClient wires an existing client (used in tests).
func NewRedisChatStoreFromClient(rdb *redis.Client) *RedisChatStore {
	return &RedisChatStore{rdb: rdb}
}

func chatKey(groupID string) string { return "groupchat:" + groupID }

func (s *RedisChatStore) AppendMessage(ctx context.Context, groupID string, msg models.ChatMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal chat message: %w", err)
	}
	if err := s.rdb.RPush(ctx, chatKey(groupID), data).Err(); err != nil {
		return fmt.Errorf("append chat message: %w", err)
	}
	return nil
}

// Recent returns up to limit of the most recent persisted messages for
// the group, oldest first.
func (s *RedisChatStore) Recent(ctx context.Context, groupID string, limit int64) ([]models.ChatMessage, error) {
	raw, err := s.rdb.LRange(ctx, chatKey(groupID), -limit, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read chat history: %w", err)
	}
	out := make([]models.ChatMessage, 0, len(raw))
	for _, item := range raw {
		var msg models.ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

func (s *RedisChatStore) Close() error { return s.rdb.Close() }

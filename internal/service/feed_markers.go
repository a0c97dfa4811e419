package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// FeedMarkers tracks per-user read and dismissed feed item ids. Synthetic
// items have no backing row, so their state lives here rather than in the
// relational store.
type FeedMarkers interface {
	Read(ctx context.Context, userID string) (map[string]struct{}, error)
	Dismissed(ctx context.Context, userID string) (map[string]struct{}, error)
	MarkRead(ctx context.Context, userID string, ids ...string) error
	Dismiss(ctx context.Context, userID string, ids ...string) error
}

const (
	feedReadKey      = "feed:read:%s"
	feedDismissedKey = "feed:dismissed:%s"
)

// RedisFeedMarkers keeps markers in two Redis sets per user.
type RedisFeedMarkers struct {
	client *redis.Client
}

// NewRedisFeedMarkers constructs the Redis-backed marker store.
func NewRedisFeedMarkers(client *redis.Client) *RedisFeedMarkers {
	return &RedisFeedMarkers{client: client}
}

func (m *RedisFeedMarkers) Read(ctx context.Context, userID string) (map[string]struct{}, error) {
	return m.members(ctx, fmt.Sprintf(feedReadKey, userID))
}

func (m *RedisFeedMarkers) Dismissed(ctx context.Context, userID string) (map[string]struct{}, error) {
	return m.members(ctx, fmt.Sprintf(feedDismissedKey, userID))
}

func (m *RedisFeedMarkers) MarkRead(ctx context.Context, userID string, ids ...string) error {
	return m.add(ctx, fmt.Sprintf(feedReadKey, userID), ids)
}

func (m *RedisFeedMarkers) Dismiss(ctx context.Context, userID string, ids ...string) error {
	return m.add(ctx, fmt.Sprintf(feedDismissedKey, userID), ids)
}

func (m *RedisFeedMarkers) members(ctx context.Context, key string) (map[string]struct{}, error) {
	values, err := m.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		set[value] = struct{}{}
	}
	return set, nil
}

func (m *RedisFeedMarkers) add(ctx context.Context, key string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	return m.client.SAdd(ctx, key, members...).Err()
}

// MemoryFeedMarkers is an in-process marker store for tests and single-node
// development.
type MemoryFeedMarkers struct {
	mu        sync.Mutex
	read      map[string]map[string]struct{}
	dismissed map[string]map[string]struct{}
}

// NewMemoryFeedMarkers constructs an empty in-memory marker store.
func NewMemoryFeedMarkers() *MemoryFeedMarkers {
	return &MemoryFeedMarkers{
		read:      make(map[string]map[string]struct{}),
		dismissed: make(map[string]map[string]struct{}),
	}
}

func (m *MemoryFeedMarkers) Read(_ context.Context, userID string) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copySet(m.read[userID]), nil
}

func (m *MemoryFeedMarkers) Dismissed(_ context.Context, userID string) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copySet(m.dismissed[userID]), nil
}

func (m *MemoryFeedMarkers) MarkRead(_ context.Context, userID string, ids ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.read[userID] == nil {
		m.read[userID] = make(map[string]struct{})
	}
	for _, id := range ids {
		m.read[userID][id] = struct{}{}
	}
	return nil
}

func (m *MemoryFeedMarkers) Dismiss(_ context.Context, userID string, ids ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dismissed[userID] == nil {
		m.dismissed[userID] = make(map[string]struct{})
	}
	for _, id := range ids {
		m.dismissed[userID][id] = struct{}{}
	}
	return nil
}

func copySet(src map[string]struct{}) map[string]struct{} {
	dst := make(map[string]struct{}, len(src))
	for key := range src {
		dst[key] = struct{}{}
	}
	return dst
}

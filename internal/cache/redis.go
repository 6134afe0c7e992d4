// Package cache keeps a per-room list of recent broadcast entries in Redis
// so hydration does not hit Postgres on every page load. All methods are
// nil-receiver safe: a nil *RedisClient behaves like a permanent miss.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const roomTTL = 24 * time.Hour

// Entry mirrors one persisted chat row.
type Entry struct {
	ID      int64  `json:"id"`
	UserID  int64  `json:"userId"`
	ShapeID string `json:"shapeId,omitempty"`
	Message string `json:"message"`
}

// RedisClient wraps the Redis client for room log caching.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient connects and pings; callers treat a nil client as
// cache-disabled.
func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	log.Printf("[Redis] Connected to %s", addr)
	return &RedisClient{client: client}, nil
}

func roomKey(roomID string) string {
	return "room:" + roomID + ":entries"
}

// AddEntry appends an entry to the room's cached log. RPUSHX keeps a room
// that was never filled from Postgres out of the cache, so a partial list is
// never served.
func (r *RedisClient) AddEntry(ctx context.Context, roomID string, e *Entry) error {
	if r == nil {
		return nil
	}

	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	key := roomKey(roomID)
	if err := r.client.RPushX(ctx, key, data).Err(); err != nil {
		log.Printf("[Redis] Failed to append entry for room %s: %v", roomID, err)
		return err
	}
	r.client.Expire(ctx, key, roomTTL)
	return nil
}

// Entries returns the cached log oldest-first, or nil when the room is not
// cached.
func (r *RedisClient) Entries(ctx context.Context, roomID string) ([]Entry, error) {
	if r == nil {
		return nil, nil
	}

	results, err := r.client.LRange(ctx, roomKey(roomID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(results))
	for _, data := range results {
		var e Entry
		if err := json.Unmarshal([]byte(data), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Fill replaces the cached log for a room with the given entries,
// oldest-first.
func (r *RedisClient) Fill(ctx context.Context, roomID string, entries []Entry) error {
	if r == nil {
		return nil
	}

	key := roomKey(roomID)
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	for i := range entries {
		data, err := json.Marshal(&entries[i])
		if err != nil {
			return err
		}
		pipe.RPush(ctx, key, data)
	}
	pipe.Expire(ctx, key, roomTTL)

	_, err := pipe.Exec(ctx)
	return err
}

// Invalidate drops the cached log for a room. Deletes go through here since
// rewriting the list in place is not worth the bookkeeping.
func (r *RedisClient) Invalidate(ctx context.Context, roomID string) error {
	if r == nil {
		return nil
	}
	return r.client.Del(ctx, roomKey(roomID)).Err()
}

// Health checks the connection.
func (r *RedisClient) Health(ctx context.Context) error {
	if r == nil {
		return nil
	}
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (r *RedisClient) Close() error {
	if r == nil {
		return nil
	}
	return r.client.Close()
}

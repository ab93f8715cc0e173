package room

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"cardroom-server/pkg/betting"

	"github.com/redis/go-redis/v9"
)

// ErrNoSnapshot is an error when no persisted round exists for the room
var ErrNoSnapshot = errors.New("no round snapshot")

// RoundSnapshot pairs the round state with its betting round number so a
// restarted server can resume exactly where the room left off
type RoundSnapshot struct {
	State        *betting.State `json:"state"`
	BettingRound int            `json:"bettingRound"`
}

// RoundStore persists betting round snapshots between actions
type RoundStore interface {
	Save(ctx context.Context, roomID string, snap *RoundSnapshot) error
	Load(ctx context.Context, roomID string) (*RoundSnapshot, error)
	Delete(ctx context.Context, roomID string) error
}

// RedisStore is a RoundStore backed by redis
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore returns a redis-backed round store. The TTL bounds how long
// an abandoned round snapshot lives.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		rdb: rdb,
		ttl: ttl,
	}
}

func snapshotKey(roomID string) string {
	return "betting:round:" + roomID
}

// Save persists the snapshot
func (r *RedisStore) Save(ctx context.Context, roomID string, snap *RoundSnapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	return r.rdb.Set(ctx, snapshotKey(roomID), b, r.ttl).Err()
}

// Load retrieves the snapshot, or ErrNoSnapshot
func (r *RedisStore) Load(ctx context.Context, roomID string) (*RoundSnapshot, error) {
	b, err := r.rdb.Get(ctx, snapshotKey(roomID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSnapshot
		}

		return nil, err
	}

	var snap RoundSnapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, err
	}

	return &snap, nil
}

// Delete removes the snapshot
func (r *RedisStore) Delete(ctx context.Context, roomID string) error {
	return r.rdb.Del(ctx, snapshotKey(roomID)).Err()
}

// NopStore is a RoundStore that persists nothing
type NopStore struct{}

// Save does nothing
func (NopStore) Save(context.Context, string, *RoundSnapshot) error { return nil }

// Load always reports no snapshot
func (NopStore) Load(context.Context, string) (*RoundSnapshot, error) { return nil, ErrNoSnapshot }

// Delete does nothing
func (NopStore) Delete(context.Context, string) error { return nil }

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wricardo/solitaire/game/engine"
	"github.com/wricardo/solitaire/game/service"
)

const (
	redisKeyPrefix   = "solitaire:session:"
	redisScanCount   = 100
	defaultRedisTTL  = 7 * 24 * time.Hour
	redisCallTimeout = 5 * time.Second
)

// RedisPersistence implements SessionPersistence on a Redis server. Each session is
// one JSON document under solitaire:session:<id> that expires after the TTL unless
// it is saved again.
type RedisPersistence struct {
	client *redis.Client
	ttl    time.Duration
	codec  codec
}

// NewRedisPersistence connects to addr and checks the connection. A zero ttl keeps
// the default of one week.
func NewRedisPersistence(ctx context.Context, addr string, ttl time.Duration, configManager service.ConfigManager) (*RedisPersistence, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	if ttl <= 0 {
		ttl = defaultRedisTTL
	}
	return &RedisPersistence{
		client: client,
		ttl:    ttl,
		codec:  codec{configs: configManager},
	}, nil
}

// SetEngineOptions sets the options loaded games are restored with
func (rp *RedisPersistence) SetEngineOptions(opts ...engine.Option) {
	rp.codec.engineOpts = opts
}

// Close releases the connection pool
func (rp *RedisPersistence) Close() error {
	return rp.client.Close()
}

func (rp *RedisPersistence) key(id string) string {
	return redisKeyPrefix + strings.ToLower(id)
}

func callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), redisCallTimeout)
}

// Save stores the session and refreshes its TTL
func (rp *RedisPersistence) Save(session *service.Session) error {
	data, err := rp.codec.encode(session)
	if err != nil {
		return err
	}

	ctx, cancel := callContext()
	defer cancel()
	if err := rp.client.Set(ctx, rp.key(session.ID), data, rp.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session %s: %w", session.ID, err)
	}
	return nil
}

// Load retrieves a session by ID
func (rp *RedisPersistence) Load(id string) (*service.Session, error) {
	ctx, cancel := callContext()
	defer cancel()

	data, err := rp.client.Get(ctx, rp.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", id, err)
	}
	return rp.codec.decode(data)
}

// Delete removes a session
func (rp *RedisPersistence) Delete(id string) error {
	ctx, cancel := callContext()
	defer cancel()

	n, err := rp.client.Del(ctx, rp.key(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll returns the IDs of every stored session
func (rp *RedisPersistence) ListAll() ([]string, error) {
	ctx, cancel := callContext()
	defer cancel()

	var ids []string
	iter := rp.client.Scan(ctx, 0, redisKeyPrefix+"*", redisScanCount).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), redisKeyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan sessions: %w", err)
	}
	return ids, nil
}

// Exists checks if a session is stored
func (rp *RedisPersistence) Exists(id string) bool {
	ctx, cancel := callContext()
	defer cancel()

	n, err := rp.client.Exists(ctx, rp.key(id)).Result()
	return err == nil && n > 0
}

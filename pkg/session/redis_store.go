package session

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// defaultKeyPrefix namespaces all session keys in Redis.
const defaultKeyPrefix = "accesskit:sessions"

// RedisStore implements Store on Redis. Per account it keeps a sorted set
// of session IDs scored by heartbeat time in unix milliseconds, plus a hash
// of session metadata. Register-or-evict, heartbeat and remove each run as
// a Lua script, so every mutation is atomic on the server regardless of how
// many application instances share the store.
//
// For equal heartbeat scores ZRANGE returns members in lexical order, which
// matches the package-wide eviction tie-break of session ID ascending.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// sessionMeta is the per-session metadata stored in the account hash.
type sessionMeta struct {
	TenantID  uuid.UUID `json:"tenant_id"`
	CreatedAt int64     `json:"created_at"` // unix milliseconds
}

var registerScript = redis.NewScript(`
if redis.call('ZSCORE', KEYS[1], ARGV[1]) then
	redis.call('ZADD', KEYS[1], ARGV[2], ARGV[1])
	return 0
end
local evicted = 0
while redis.call('ZCARD', KEYS[1]) >= tonumber(ARGV[3]) do
	local oldest = redis.call('ZRANGE', KEYS[1], 0, 0)
	if #oldest == 0 then break end
	redis.call('ZREM', KEYS[1], oldest[1])
	redis.call('HDEL', KEYS[2], oldest[1])
	evicted = evicted + 1
end
redis.call('ZADD', KEYS[1], ARGV[2], ARGV[1])
redis.call('HSET', KEYS[2], ARGV[1], ARGV[4])
return evicted
`)

var heartbeatScript = redis.NewScript(`
if redis.call('ZSCORE', KEYS[1], ARGV[1]) then
	redis.call('ZADD', KEYS[1], ARGV[2], ARGV[1])
end
return 0
`)

var removeScript = redis.NewScript(`
redis.call('ZREM', KEYS[1], ARGV[1])
redis.call('HDEL', KEYS[2], ARGV[1])
return 0
`)

var pruneScript = redis.NewScript(`
local stale = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
for _, member in ipairs(stale) do
	redis.call('ZREM', KEYS[1], member)
	redis.call('HDEL', KEYS[2], member)
end
return #stale
`)

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{
		client:    client,
		keyPrefix: defaultKeyPrefix,
	}
}

// NewRedisStoreWithPrefix creates a Redis-backed store under a custom key
// namespace, for multi-application Redis deployments.
func NewRedisStoreWithPrefix(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisStore{
		client:    client,
		keyPrefix: prefix,
	}
}

func (s *RedisStore) heartbeatKey(accountID uuid.UUID) string {
	return s.keyPrefix + ":" + accountID.String() + ":hb"
}

func (s *RedisStore) metaKey(accountID uuid.UUID) string {
	return s.keyPrefix + ":" + accountID.String() + ":meta"
}

// Register implements Store.
func (s *RedisStore) Register(ctx context.Context, sess *Session, maxSessions int) error {
	if sess == nil || sess.ID == "" {
		return ErrInvalidSession
	}

	meta, err := json.Marshal(sessionMeta{
		TenantID:  sess.TenantID,
		CreatedAt: sess.CreatedAt.UnixMilli(),
	})
	if err != nil {
		return errors.Join(ErrInvalidSession, err)
	}

	keys := []string{s.heartbeatKey(sess.AccountID), s.metaKey(sess.AccountID)}
	args := []any{sess.ID, sess.LastHeartbeatAt.UnixMilli(), maxSessions, string(meta)}

	if err := registerScript.Run(ctx, s.client, keys, args...).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// Heartbeat implements Store. The script only refreshes members that still
// exist, so an evicted session is a silent no-op.
func (s *RedisStore) Heartbeat(ctx context.Context, accountID uuid.UUID, sessionID string, at time.Time) error {
	keys := []string{s.heartbeatKey(accountID)}
	if err := heartbeatScript.Run(ctx, s.client, keys, sessionID, at.UnixMilli()).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// Remove implements Store.
func (s *RedisStore) Remove(ctx context.Context, accountID uuid.UUID, sessionID string) error {
	keys := []string{s.heartbeatKey(accountID), s.metaKey(accountID)}
	if err := removeScript.Run(ctx, s.client, keys, sessionID).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// List implements Store.
func (s *RedisStore) List(ctx context.Context, accountID uuid.UUID) ([]*Session, error) {
	scored, err := s.client.ZRangeWithScores(ctx, s.heartbeatKey(accountID), 0, -1).Result()
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	if len(scored) == 0 {
		return nil, nil
	}

	metas, err := s.client.HGetAll(ctx, s.metaKey(accountID)).Result()
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	sessions := make([]*Session, 0, len(scored))
	for _, member := range scored {
		sessionID, ok := member.Member.(string)
		if !ok {
			continue
		}

		sess := &Session{
			ID:              sessionID,
			AccountID:       accountID,
			LastHeartbeatAt: time.UnixMilli(int64(member.Score)).UTC(),
		}
		if raw, ok := metas[sessionID]; ok {
			var meta sessionMeta
			if err := json.Unmarshal([]byte(raw), &meta); err == nil {
				sess.TenantID = meta.TenantID
				sess.CreatedAt = time.UnixMilli(meta.CreatedAt).UTC()
			}
		}
		sessions = append(sessions, sess)
	}

	return sessions, nil
}

// DeleteStale implements Store. It walks all heartbeat sets with SCAN to
// avoid blocking Redis, pruning each atomically.
func (s *RedisStore) DeleteStale(ctx context.Context, olderThan time.Time) (int64, error) {
	cutoff := strconv.FormatInt(olderThan.UnixMilli(), 10)
	pattern := s.keyPrefix + ":*:hb"

	var reclaimed int64
	var cursor uint64
	for {
		batch, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return reclaimed, errors.Join(ErrStoreUnavailable, err)
		}

		for _, hbKey := range batch {
			metaKey := hbKey[:len(hbKey)-len(":hb")] + ":meta"
			pruned, err := pruneScript.Run(ctx, s.client, []string{hbKey, metaKey}, cutoff).Int64()
			if err != nil {
				return reclaimed, errors.Join(ErrStoreUnavailable, err)
			}
			reclaimed += pruned
		}

		cursor = next
		if cursor == 0 {
			return reclaimed, nil
		}
	}
}

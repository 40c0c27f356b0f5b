package session

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	fieldUserID    = "user_id"
	fieldCreatedAt = "created_at"
	fieldExpiresAt = "expires_at"
)

// RedisStore keeps each session in a hash under "session:<id>" that
// Redis expires together with the session.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "session:",
	}
}

func (r *RedisStore) key(sessionID string) string {
	return r.prefix + sessionID
}

func (r *RedisStore) Create(ctx context.Context, s Session) error {
	if s.SessionID == "" || s.UserID == "" {
		return errors.New("session: missing session_id or user_id")
	}
	if !s.ExpiresAt.After(time.Now()) {
		return errors.New("session: expires_at must be in the future")
	}

	key := r.key(s.SessionID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			fieldUserID, s.UserID,
			fieldCreatedAt, s.CreatedAt.Unix(),
			fieldExpiresAt, s.ExpiresAt.Unix(),
		)
		pipe.ExpireAt(ctx, key, s.ExpiresAt)
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "session: write")
	}

	return nil
}

func (r *RedisStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	fields, err := r.client.HGetAll(ctx, r.key(sessionID)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "session: read")
	}
	if len(fields) == 0 {
		return nil, nil
	}

	createdAt, err := unixField(fields, fieldCreatedAt)
	if err != nil {
		return nil, err
	}
	expiresAt, err := unixField(fields, fieldExpiresAt)
	if err != nil {
		return nil, err
	}

	return &Session{
		SessionID: sessionID,
		UserID:    fields[fieldUserID],
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}, nil
}

func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.key(sessionID)).Err()
}

func unixField(fields map[string]string, name string) (time.Time, error) {
	sec, err := strconv.ParseInt(fields[name], 10, 64)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "session: corrupt %s", name)
	}
	return time.Unix(sec, 0).UTC(), nil
}

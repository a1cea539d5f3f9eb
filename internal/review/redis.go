// internal/review/redis.go
package review

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"menu-classifier/internal/common/errors"
	"menu-classifier/internal/common/logger"
	"menu-classifier/internal/common/metrics"
	"menu-classifier/internal/models"
)

const sessionKeyPrefix = "review:session:"

// RedisStore backs review sessions with Redis so multiple instances can
// share them. Expiry rides on the key TTL; Claim uses GETDEL so only
// one corrector ever receives the session.
type RedisStore struct {
	client *redis.Client
	logger logger.Logger
}

func NewRedisStore(client *redis.Client, log logger.Logger) *RedisStore {
	return &RedisStore{client: client, logger: log}
}

func sessionKey(requestID string) string {
	return sessionKeyPrefix + requestID
}

func (s *RedisStore) Open(ctx context.Context, session *models.ReviewSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return errors.NewInternalComputeError(fmt.Errorf("marshal session: %w", err))
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return errors.NewInternalComputeError(fmt.Errorf("session %s already expired", session.RequestID))
	}

	created, err := s.client.SetNX(ctx, sessionKey(session.RequestID), payload, ttl).Result()
	if err != nil {
		return errors.NewInternalComputeError(fmt.Errorf("redis setnx: %w", err))
	}
	if !created {
		return errors.NewDuplicateSessionError(session.RequestID)
	}
	metrics.ReviewSessionsOpen.Inc()
	return nil
}

func (s *RedisStore) Get(ctx context.Context, requestID string) (*models.ReviewSession, error) {
	payload, err := s.client.Get(ctx, sessionKey(requestID)).Bytes()
	if err == redis.Nil {
		return nil, errors.NewUnknownSessionError(requestID)
	}
	if err != nil {
		return nil, errors.NewInternalComputeError(fmt.Errorf("redis get: %w", err))
	}
	return decodeSession(payload, requestID)
}

func (s *RedisStore) Claim(ctx context.Context, requestID string) (*models.ReviewSession, error) {
	payload, err := s.client.GetDel(ctx, sessionKey(requestID)).Bytes()
	if err == redis.Nil {
		return nil, errors.NewUnknownSessionError(requestID)
	}
	if err != nil {
		return nil, errors.NewInternalComputeError(fmt.Errorf("redis getdel: %w", err))
	}
	metrics.ReviewSessionsOpen.Dec()

	session, err := decodeSession(payload, requestID)
	if err != nil {
		return nil, err
	}
	if session.Expired(time.Now()) {
		return nil, errors.NewUnknownSessionError(requestID)
	}
	return session, nil
}

func decodeSession(payload []byte, requestID string) (*models.ReviewSession, error) {
	var session models.ReviewSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, errors.NewInternalComputeError(fmt.Errorf("decode session %s: %w", requestID, err))
	}
	return &session, nil
}

// Package redis provides a Redis-backed session store. Sessions expire via
// key TTL; a per-user set indexes session IDs so all of a user's sessions
// can be revoked at once.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dom/lunch-order-website/internal/domain"
	"github.com/dom/lunch-order-website/internal/repository"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "lunch:"

type sessionRepository struct {
	client *goredis.Client
	now    func() time.Time
}

func NewSessionRepository(client *goredis.Client) *sessionRepository {
	return &sessionRepository{client: client, now: time.Now}
}

// NewClient connects and pings, failing fast on a bad address.
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: failed to ping server: %w", err)
	}
	return client, nil
}

func sessionKey(id uuid.UUID) string {
	return keyPrefix + "session:" + id.String()
}

func userSessionsKey(userID uuid.UUID) string {
	return keyPrefix + "user_sessions:" + userID.String()
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.UserSession) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = r.now()
	}
	ttl := session.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return fmt.Errorf("redis: session %s already expired", session.ID)
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}

	indexKey := userSessionsKey(session.UserID)
	_, err = r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(session.ID), payload, ttl)
		pipe.SAdd(ctx, indexKey, session.ID.String())
		pipe.ExpireGT(ctx, indexKey, ttl)
		pipe.ExpireNX(ctx, indexKey, ttl)
		return nil
	})
	return err
}

func (r *sessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.UserSession, error) {
	payload, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, repository.ErrSessionNotFound
		}
		return nil, err
	}

	var session domain.UserSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("redis: corrupt session %s: %w", id, err)
	}
	return &session, nil
}

func (r *sessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	session, err := r.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil
		}
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, sessionKey(id))
		pipe.SRem(ctx, userSessionsKey(session.UserID), id.String())
		return nil
	})
	return err
}

func (r *sessionRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	indexKey := userSessionsKey(userID)
	ids, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(ids)+1)
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, indexKey)

	return r.client.Del(ctx, keys...).Err()
}

var _ repository.SessionRepository = (*sessionRepository)(nil)

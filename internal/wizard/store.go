package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/covercellhq/covercell-backend/pkg/redis"
)

// ErrSessionNotFound is returned when a session id is unknown or expired.
var ErrSessionNotFound = errors.New("wizard session not found")

// Store persists wizard sessions and the in-flight submission claim.
type Store interface {
	Save(ctx context.Context, sess *Session, ttl time.Duration) error
	Find(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	ClaimSubmit(ctx context.Context, id string, ttl time.Duration) (bool, error)
	ReleaseSubmit(ctx context.Context, id string) error
}

type redisStore struct {
	client *redis.Client
}

// NewRedisStore builds the production store on the shared Redis client.
func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func (s *redisStore) Save(ctx context.Context, sess *Session, ttl time.Duration) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encoding wizard session: %w", err)
	}
	return s.client.Set(ctx, s.client.WizardSessionKey(sess.ID), payload, ttl)
}

func (s *redisStore) Find(ctx context.Context, id string) (*Session, error) {
	raw, err := s.client.Get(ctx, s.client.WizardSessionKey(id))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("loading wizard session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("decoding wizard session: %w", err)
	}
	return &sess, nil
}

func (s *redisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.client.WizardSessionKey(id), s.client.WizardSubmitKey(id))
}

func (s *redisStore) ClaimSubmit(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, s.client.WizardSubmitKey(id), "1", ttl)
}

func (s *redisStore) ReleaseSubmit(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.client.WizardSubmitKey(id))
}

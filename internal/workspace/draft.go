package workspace

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoDraft means no saved draft exists for the participant and session.
var ErrNoDraft = errors.New("no draft saved")

// DraftStore persists the participant's in-progress code between reconnects
// so a dropped connection mid-phase does not lose work.
type DraftStore interface {
	Load(ctx context.Context, participantID, gameID int) (string, error)
	Save(ctx context.Context, participantID, gameID int, code string) error
	Clear(ctx context.Context, participantID, gameID int) error
}

// RedisDraftStore keeps drafts in Redis with a TTL a bit longer than the
// longest plausible session, so abandoned drafts age out on their own.
type RedisDraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDraftStore(client *redis.Client, ttl time.Duration) *RedisDraftStore {
	return &RedisDraftStore{client: client, ttl: ttl}
}

func draftKey(participantID, gameID int) string {
	return fmt.Sprintf("draft:%d:%d", participantID, gameID)
}

func (s *RedisDraftStore) Load(ctx context.Context, participantID, gameID int) (string, error) {
	code, err := s.client.Get(ctx, draftKey(participantID, gameID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoDraft
	}
	if err != nil {
		return "", fmt.Errorf("load draft: %w", err)
	}
	return code, nil
}

func (s *RedisDraftStore) Save(ctx context.Context, participantID, gameID int, code string) error {
	if err := s.client.Set(ctx, draftKey(participantID, gameID), code, s.ttl).Err(); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (s *RedisDraftStore) Clear(ctx context.Context, participantID, gameID int) error {
	if err := s.client.Del(ctx, draftKey(participantID, gameID)).Err(); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}

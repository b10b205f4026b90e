package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ChatViewState is the per-user UI snapshot that used to live in the browser's
// sessionStorage under chat_state_<chatId>. Keeping it server-side lets a user
// resume the same selected session across tabs and devices.
type ChatViewState struct {
	SelectedSessionId string `json:"selectedSessionId"`
	SelectedSessaoNum int    `json:"selectedSessaoNumber"`
	ThreadId          string `json:"threadId"`
	LastChatId        string `json:"lastChatId"`
	Timestamp         int64  `json:"timestamp"`
}

// stale snapshots are discarded rather than restored
const stateTTL = 30 * time.Minute

type StateStore struct {
	rdb *redis.Client
}

func NewStateStore(rdb *redis.Client) *StateStore {
	return &StateStore{rdb: rdb}
}

func stateKey(userId, chatId string) string {
	return fmt.Sprintf("chat_state:%s:%s", userId, chatId)
}

func (s *StateStore) Save(ctx context.Context, userId, chatId string, state *ChatViewState) error {
	if s.rdb == nil {
		return nil
	}
	state.Timestamp = time.Now().UnixMilli()
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, stateKey(userId, chatId), data, stateTTL).Err()
}

// Load returns nil when no snapshot exists or the stored one is stale.
func (s *StateStore) Load(ctx context.Context, userId, chatId string) (*ChatViewState, error) {
	if s.rdb == nil {
		return nil, nil
	}
	data, err := s.rdb.Get(ctx, stateKey(userId, chatId)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var state ChatViewState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}

	if time.Since(time.UnixMilli(state.Timestamp)) > stateTTL {
		return nil, nil
	}
	return &state, nil
}

func (s *StateStore) Clear(ctx context.Context, userId, chatId string) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Del(ctx, stateKey(userId, chatId)).Err()
}

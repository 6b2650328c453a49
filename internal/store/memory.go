package store

import (
	"context"
	"hash/fnv"
	"sort"
	"sync"

	"github.com/rcliao/shop-recommender/internal/model"
)

const shardCount = 16

type shard struct {
	mu    sync.RWMutex
	convs map[string]*model.Conversation
}

// MemoryStore implements Store in process memory. Conversations are spread
// over shards so unrelated ids rarely share a lock. Values are deep-copied on
// the way in and out.
type MemoryStore struct {
	shards [shardCount]*shard
}

// NewMemoryStore returns an empty volatile store.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	for i := range s.shards {
		s.shards[i] = &shard{convs: make(map[string]*model.Conversation)}
	}
	return s
}

func (s *MemoryStore) shardFor(id string) *shard {
	h := fnv.New32a()
	h.Write([]byte(id))
	return s.shards[h.Sum32()%shardCount]
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*model.Conversation, error) {
	sh := s.shardFor(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	conv, ok := sh.convs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return conv.Clone(), nil
}

func (s *MemoryStore) Put(ctx context.Context, conv *model.Conversation) error {
	sh := s.shardFor(conv.ID)
	c := conv.Clone()

	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.convs[conv.ID] = c
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if _, ok := sh.convs[id]; !ok {
		return ErrNotFound
	}
	delete(sh.convs, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, p ListParams) ([]model.ConversationSummary, error) {
	var out []model.ConversationSummary
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, c := range sh.convs {
			if sum := c.Summary(); matches(sum, p) {
				out = append(out, sum)
			}
		}
		sh.mu.RUnlock()
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastMessageAt.Equal(out[j].LastMessageAt) {
			return out[i].LastMessageAt.After(out[j].LastMessageAt)
		}
		return out[i].ID > out[j].ID
	})
	if p.Limit > 0 && len(out) > p.Limit {
		out = out[:p.Limit]
	}
	return out, nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	for _, sh := range s.shards {
		sh.mu.Lock()
		sh.convs = make(map[string]*model.Conversation)
		sh.mu.Unlock()
	}
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

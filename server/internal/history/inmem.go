package history

import (
	"context"
	"sort"
	"sync"

	"pickup-ledger/server/internal/model"
)

// InMemoryStore 是一个基于内存的抽卡记录存储实现。
type InMemoryStore struct {
	mu   sync.RWMutex
	data map[model.HistoryKey]model.PickupHistory
}

func NewInMemoryStore() *InMemoryStore {
	// 重启即丢数据，适合本地调试与测试；部署时使用 SQLiteStore。
	return &InMemoryStore{data: make(map[model.HistoryKey]model.PickupHistory)}
}

// Get 根据复合主键获取记录，返回副本。
func (s *InMemoryStore) Get(_ context.Context, key model.HistoryKey) (*model.PickupHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := clone(h)
	return &out, nil
}

// Save 保存或覆盖记录。
func (s *InMemoryStore) Save(_ context.Context, h *model.PickupHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[h.Key()] = clone(*h)
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, key model.HistoryKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; !ok {
		return ErrNotFound
	}
	delete(s.data, key)
	return nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID string) ([]model.PickupHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.PickupHistory{}
	for key, h := range s.data {
		if key.UserID == userID {
			out = append(out, clone(h))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventID < out[j].EventID })
	return out, nil
}

// clone 深拷贝 Result，避免调用方与存储共享切片。
func clone(h model.PickupHistory) model.PickupHistory {
	result := make([]model.PullSession, len(h.Result))
	for i, s := range h.Result {
		s.Tier3StudentIDs = append([]string(nil), s.Tier3StudentIDs...)
		if s.Tier3StudentIDs == nil {
			s.Tier3StudentIDs = []string{}
		}
		result[i] = s
	}
	h.Result = result
	return h
}

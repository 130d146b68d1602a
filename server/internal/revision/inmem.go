package revision

import (
	"context"
	"sync"

	"pickup-ledger/server/internal/model"
)

// InMemoryStore 是一个基于内存的提交日志实现。
type InMemoryStore struct {
	mu            sync.RWMutex
	revisions     map[model.HistoryKey][]model.Revision
	seq           map[model.HistoryKey]int64
	submissionIDs map[model.HistoryKey]map[string]int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		revisions:     make(map[model.HistoryKey][]model.Revision),
		seq:           make(map[model.HistoryKey]int64),
		submissionIDs: make(map[model.HistoryKey]map[string]int64),
	}
}

// Append 追加一次提交，并为该 key 分配单调递增 seq。
// 相同 SubmissionID 会直接返回已分配的 seq（幂等）。
func (s *InMemoryStore) Append(_ context.Context, key model.HistoryKey, rev *model.Revision) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rev.SubmissionID != "" {
		if seen, ok := s.submissionIDs[key]; ok {
			if seq, exists := seen[rev.SubmissionID]; exists {
				return seq, nil
			}
		}
	}

	s.seq[key]++
	seq := s.seq[key]

	revCopy := *rev
	revCopy.Seq = seq
	revCopy.UserID = key.UserID
	revCopy.EventID = key.EventID
	s.revisions[key] = append(s.revisions[key], revCopy)

	if rev.SubmissionID != "" {
		if s.submissionIDs[key] == nil {
			s.submissionIDs[key] = make(map[string]int64)
		}
		s.submissionIDs[key][rev.SubmissionID] = seq
	}

	return seq, nil
}

// List 返回切片副本，避免调用方修改内部数据。
func (s *InMemoryStore) List(_ context.Context, key model.HistoryKey) ([]model.Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	revs := s.revisions[key]
	out := make([]model.Revision, len(revs))
	copy(out, revs)
	return out, nil
}

package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"pickup-ledger/server/internal/history"
	"pickup-ledger/server/internal/model"
	"pickup-ledger/server/internal/revision"
	"pickup-ledger/server/internal/roster"
)

func newTestLedger(now time.Time) (*Ledger, *history.InMemoryStore, *revision.InMemoryStore) {
	store := history.NewInMemoryStore()
	revisions := revision.NewInMemoryStore()
	students := roster.New([]model.StudentName{
		{Name: "코코나", StudentID: "10050"},
		{Name: "하루나(새해)", StudentID: "10057"},
	})
	return New(store, revisions, students, WithClock(func() time.Time { return now })), store, revisions
}

// TestLedgerSubmitAppendsRevisionAndSavesSnapshot 验证提交先写日志再保存快照。
func TestLedgerSubmitAppendsRevisionAndSavesSnapshot(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l, store, revisions := newTestLedger(now)
	ctx := context.Background()

	res, err := l.Submit(ctx, SubmitRequest{UserID: "u1", EventID: "e1", Raw: "010 1 2 7 코코나\n020 1 1 8 새루나"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !res.Applied {
		t.Fatalf("expected submission to be applied")
	}
	if len(res.History.Result) != 2 || res.History.Result[1].Tier3StudentIDs[0] != "10057" {
		t.Fatalf("unexpected result: %+v", res.History.Result)
	}

	revs, err := revisions.List(ctx, model.HistoryKey{UserID: "u1", EventID: "e1"})
	if err != nil {
		t.Fatalf("list revisions: %v", err)
	}
	if len(revs) != 1 || revs[0].Seq != 1 {
		t.Fatalf("expected one revision with seq 1, got %+v", revs)
	}

	saved, err := store.Get(ctx, model.HistoryKey{UserID: "u1", EventID: "e1"})
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if saved.Revision != 1 || !saved.CreatedAt.Equal(now) {
		t.Fatalf("unexpected snapshot: %+v", saved)
	}
}

// TestLedgerResubmitReplacesSnapshot 验证编辑即整体替换，且保留创建时间。
func TestLedgerResubmitReplacesSnapshot(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l, _, _ := newTestLedger(now)
	ctx := context.Background()

	if _, err := l.Submit(ctx, SubmitRequest{UserID: "u1", EventID: "e1", Raw: "1 2 7 코코나"}); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	l.now = func() time.Time { return now.Add(time.Hour) }
	res, err := l.Submit(ctx, SubmitRequest{UserID: "u1", EventID: "e1", Raw: "0 1 9\n0 2 8"})
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}

	h := res.History
	if h.Revision != 2 || h.Raw != "0 1 9\n0 2 8" || len(h.Result) != 2 {
		t.Fatalf("unexpected snapshot after resubmit: %+v", h)
	}
	if !h.CreatedAt.Equal(now) || !h.UpdatedAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected timestamps: created=%v updated=%v", h.CreatedAt, h.UpdatedAt)
	}
}

// TestLedgerSubmitIdempotentBySubmissionID 验证相同 SubmissionID 的重试不会产生新版本。
func TestLedgerSubmitIdempotentBySubmissionID(t *testing.T) {
	l, _, revisions := newTestLedger(time.Now())
	ctx := context.Background()
	req := SubmitRequest{UserID: "u1", EventID: "e1", Raw: "1 2 7 코코나", SubmissionID: "sub-1"}

	if _, err := l.Submit(ctx, req); err != nil {
		t.Fatalf("submit: %v", err)
	}
	res, err := l.Submit(ctx, req)
	if err != nil {
		t.Fatalf("retry submit: %v", err)
	}
	if res.Applied {
		t.Fatalf("expected retry to be treated as duplicate")
	}
	if res.History.Revision != 1 {
		t.Fatalf("expected revision 1, got %d", res.History.Revision)
	}

	revs, _ := revisions.List(ctx, model.HistoryKey{UserID: "u1", EventID: "e1"})
	if len(revs) != 1 {
		t.Fatalf("expected 1 revision stored, got %d", len(revs))
	}
}

// TestLedgerRejectsEmptyKey 验证缺少用户或活动 ID 时返回 ErrInvalidKey。
func TestLedgerRejectsEmptyKey(t *testing.T) {
	l, _, _ := newTestLedger(time.Now())
	ctx := context.Background()

	if _, err := l.Submit(ctx, SubmitRequest{UserID: " ", EventID: "e1"}); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
	if _, err := l.List(ctx, ""); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey from List, got %v", err)
	}
}

// TestLedgerDeleteKeepsRevisions 验证删除快照后提交日志仍在。
func TestLedgerDeleteKeepsRevisions(t *testing.T) {
	l, _, _ := newTestLedger(time.Now())
	ctx := context.Background()

	if _, err := l.Submit(ctx, SubmitRequest{UserID: "u1", EventID: "e1", Raw: "1 2 7 코코나"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := l.Delete(ctx, "u1", "e1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := l.Get(ctx, "u1", "e1"); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	revs, err := l.Revisions(ctx, "u1", "e1")
	if err != nil {
		t.Fatalf("revisions: %v", err)
	}
	if len(revs) != 1 {
		t.Fatalf("expected revision log to survive delete, got %d", len(revs))
	}
}

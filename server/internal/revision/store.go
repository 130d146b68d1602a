package revision

import (
	"context"

	"pickup-ledger/server/internal/model"
)

type Store interface {
	// Append 以 append-first 的契约写入一次提交，返回本次写入的 seq。
	// 约定：同一 key 的 seq 单调递增；相同 SubmissionID 的请求应幂等返回同一 seq。
	Append(ctx context.Context, key model.HistoryKey, rev *model.Revision) (int64, error)
	// List 返回该 key 的全量提交，按 seq 排序。
	List(ctx context.Context, key model.HistoryKey) ([]model.Revision, error)
}

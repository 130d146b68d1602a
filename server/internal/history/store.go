package history

import (
	"context"
	"errors"

	"pickup-ledger/server/internal/model"
)

var ErrNotFound = errors.New("pickup history not found")

// Store 保存每个 (用户, 活动) 的最新抽卡记录快照。
// 编辑历史时整体替换快照，不做局部更新。
type Store interface {
	Get(ctx context.Context, key model.HistoryKey) (*model.PickupHistory, error)
	// Save 按复合主键插入或覆盖。
	Save(ctx context.Context, h *model.PickupHistory) error
	// Delete 删除快照；不存在时返回 ErrNotFound。
	Delete(ctx context.Context, key model.HistoryKey) error
	// ListByUser 返回该用户的全部记录，按 EventID 排序。
	ListByUser(ctx context.Context, userID string) ([]model.PickupHistory, error)
}

package ledger

import "pickup-ledger/server/internal/model"

// Reduce 把一次提交归约进快照，不触发外部调用。
// 快照被整体替换；seq 不比快照新的提交不生效（重复提交据此幂等）。
// state 为 nil 时创建新快照。
func Reduce(state *model.PickupHistory, rev model.Revision, sessions []model.PullSession) (*model.PickupHistory, bool) {
	if state == nil {
		state = &model.PickupHistory{
			UserID:    rev.UserID,
			EventID:   rev.EventID,
			CreatedAt: rev.CreatedAt,
		}
	} else if rev.Seq <= state.Revision {
		return state, false
	}

	if sessions == nil {
		sessions = []model.PullSession{}
	}
	state.Raw = rev.Raw
	state.Result = sessions
	state.Revision = rev.Seq
	state.UpdatedAt = rev.CreatedAt
	return state, true
}

package pickup

import "pickup-ledger/server/internal/model"

// Summarize 汇总一组十连结果。Trials 取最后一批的累计抽数。
func Summarize(sessions []model.PullSession) model.Summary {
	sum := model.Summary{StudentIDs: []string{}}
	seen := make(map[string]struct{})
	for _, s := range sessions {
		sum.Tier1Count += s.Tier1Count
		sum.Tier2Count += s.Tier2Count
		sum.Tier3Count += s.Tier3Count
		for _, id := range s.Tier3StudentIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			sum.StudentIDs = append(sum.StudentIDs, id)
		}
	}
	if n := len(sessions); n > 0 {
		sum.Trials = sessions[n-1].Trial
	}
	if sum.Trials > 0 {
		sum.Tier3Rate = float64(sum.Tier3Count) / float64(sum.Trials)
	}
	return sum
}

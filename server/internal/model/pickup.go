package model

import "time"

// PullSession 表示一次十连抽的结果，对应用户粘贴记录中的一行。
// 字段名沿用已存储 JSON blob 的 camelCase 格式，不能随意改动。
type PullSession struct {
	// 截至本批次的累计抽数，始终是 10 的正整数倍。
	Trial      int `json:"trial"`
	Tier1Count int `json:"tier1Count"`
	Tier2Count int `json:"tier2Count"`
	Tier3Count int `json:"tier3Count"`
	// 按文本顺序解析出的三星学生 ID；无法识别的名字会被丢弃，不做补齐。
	Tier3StudentIDs []string `json:"tier3StudentIds"`
}

// StudentName 是学生名字到学生 ID 的映射项。
// Name 可能带有括号形式的变体限定，例如 "하루나(새해)"。
type StudentName struct {
	Name      string `json:"name" yaml:"name"`
	StudentID string `json:"studentId" yaml:"studentId"`
}

// PickupHistory 是某个用户在某个活动下的抽卡记录快照。
type PickupHistory struct {
	UserID  string        `json:"user_id"`
	EventID string        `json:"event_id"`
	Raw     string        `json:"raw"`
	Result  []PullSession `json:"result"`
	// Revision 是最近一次归约进快照的提交序号。
	Revision  int64     `json:"revision"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Revision 是一次原始文本提交，append-first 写入提交日志。
type Revision struct {
	Seq          int64     `json:"seq"`
	SubmissionID string    `json:"submission_id"`
	UserID       string    `json:"user_id"`
	EventID      string    `json:"event_id"`
	Raw          string    `json:"raw"`
	CreatedAt    time.Time `json:"created_at"`
}

// Summary 是一组十连结果的汇总。
type Summary struct {
	Trials     int      `json:"trials"`
	Tier1Count int      `json:"tier1_count"`
	Tier2Count int      `json:"tier2_count"`
	Tier3Count int      `json:"tier3_count"`
	Tier3Rate  float64  `json:"tier3_rate"`
	StudentIDs []string `json:"student_ids"`
}

// HistoryKey 是抽卡记录的复合主键：用户 + 活动。
type HistoryKey struct {
	UserID  string `json:"user_id"`
	EventID string `json:"event_id"`
}

// Key 返回该记录的复合主键。
func (h *PickupHistory) Key() HistoryKey {
	return HistoryKey{UserID: h.UserID, EventID: h.EventID}
}

package ledger

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"pickup-ledger/server/internal/history"
	"pickup-ledger/server/internal/metrics"
	"pickup-ledger/server/internal/model"
	"pickup-ledger/server/internal/pickup"
	"pickup-ledger/server/internal/revision"
)

var ErrInvalidKey = errors.New("user_id and event_id are required")

// StudentSource 提供当前的学生名字索引。
type StudentSource interface {
	Students() []model.StudentName
}

// Ledger 负责抽卡记录的解析与持久化编排。
//
// 职责与契约：
// - append-first：任何提交先写提交日志，再解析并归约快照，保证可回放与幂等。
// - 快照整体替换：编辑记录就是重新提交原始文本。
// - 解析器保持纯函数，学生索引每次显式传入。
type Ledger struct {
	store     history.Store
	revisions revision.Store
	students  StudentSource
	now       func() time.Time
	logger    *zap.Logger
	metrics   *metrics.Metrics

	// 串行化同一实例内的写操作，避免并发提交时旧快照覆盖新快照。
	writeMu sync.Mutex
}

type Option func(*Ledger)

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Ledger) { l.metrics = m }
}

func New(store history.Store, revisions revision.Store, students StudentSource, opts ...Option) *Ledger {
	l := &Ledger{
		store:     store,
		revisions: revisions,
		students:  students,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SubmitRequest 是一次原始文本提交。SubmissionID 为空时不做幂等去重。
type SubmitRequest struct {
	UserID       string
	EventID      string
	Raw          string
	SubmissionID string
}

// SubmitResult 返回提交后的快照以及对应的解析报告。
type SubmitResult struct {
	History *model.PickupHistory
	Report  pickup.Report
	// Applied 为 false 表示这是一次重复提交，快照未变化。
	Applied bool
}

// Preview 用当前名册解析 raw，不写任何存储。
func (l *Ledger) Preview(raw string) pickup.Report {
	report := pickup.ParseWithReport(raw, l.students.Students())
	l.metrics.ObserveReport(report)
	return report
}

// Submit 解析并保存一次提交。
//
// 副作用说明：
// - 追加提交到 revision 日志（append-first）。
// - 归约并覆盖 history 快照。
func (l *Ledger) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	key, err := normalizeKey(req.UserID, req.EventID)
	if err != nil {
		return nil, err
	}

	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	now := l.now()
	rev := model.Revision{
		SubmissionID: req.SubmissionID,
		UserID:       key.UserID,
		EventID:      key.EventID,
		Raw:          req.Raw,
		CreatedAt:    now,
	}
	// append-first：先写提交事实，再归约快照。
	seq, err := l.revisions.Append(ctx, key, &rev)
	if err != nil {
		l.metrics.ObserveSubmission("error")
		return nil, err
	}
	rev.Seq = seq

	current, err := l.store.Get(ctx, key)
	if err != nil && !errors.Is(err, history.ErrNotFound) {
		l.metrics.ObserveSubmission("error")
		return nil, err
	}

	students := l.students.Students()
	report := pickup.ParseWithReport(req.Raw, students)
	state, applied := Reduce(current, rev, report.Sessions)
	if !applied {
		l.metrics.ObserveSubmission("duplicate")
		l.logger.Info("duplicate pickup submission ignored",
			zap.String("user_id", key.UserID),
			zap.String("event_id", key.EventID),
			zap.Int64("seq", seq),
			zap.Int64("revision", state.Revision))
		return &SubmitResult{History: state, Report: pickup.ParseWithReport(state.Raw, students)}, nil
	}

	if err := l.store.Save(ctx, state); err != nil {
		l.metrics.ObserveSubmission("error")
		return nil, err
	}
	l.metrics.ObserveReport(report)
	l.metrics.ObserveSubmission("applied")
	l.logger.Info("pickup history saved",
		zap.String("user_id", key.UserID),
		zap.String("event_id", key.EventID),
		zap.Int64("revision", seq),
		zap.Int("sessions", len(report.Sessions)),
		zap.Int("skipped_lines", len(report.SkippedLines)),
		zap.Int("unresolved", len(report.Unresolved)))

	return &SubmitResult{History: state, Report: report, Applied: true}, nil
}

func (l *Ledger) Get(ctx context.Context, userID, eventID string) (*model.PickupHistory, error) {
	key, err := normalizeKey(userID, eventID)
	if err != nil {
		return nil, err
	}
	return l.store.Get(ctx, key)
}

// Delete 删除快照，提交日志保留。
func (l *Ledger) Delete(ctx context.Context, userID, eventID string) error {
	key, err := normalizeKey(userID, eventID)
	if err != nil {
		return err
	}

	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	if err := l.store.Delete(ctx, key); err != nil {
		return err
	}
	l.logger.Info("pickup history deleted", zap.String("user_id", key.UserID), zap.String("event_id", key.EventID))
	return nil
}

func (l *Ledger) List(ctx context.Context, userID string) ([]model.PickupHistory, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidKey
	}
	return l.store.ListByUser(ctx, userID)
}

func (l *Ledger) Revisions(ctx context.Context, userID, eventID string) ([]model.Revision, error) {
	key, err := normalizeKey(userID, eventID)
	if err != nil {
		return nil, err
	}
	return l.revisions.List(ctx, key)
}

func normalizeKey(userID, eventID string) (model.HistoryKey, error) {
	key := model.HistoryKey{
		UserID:  strings.TrimSpace(userID),
		EventID: strings.TrimSpace(eventID),
	}
	if key.UserID == "" || key.EventID == "" {
		return model.HistoryKey{}, ErrInvalidKey
	}
	return key, nil
}

package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pickup-ledger/server/internal/model"
)

// SQLiteStore 把解析结果序列化为 JSON blob，与原始文本一起保存。
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore 使用已初始化表结构的连接（见 storage.OpenSQLite）。
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Get(ctx context.Context, key model.HistoryKey) (*model.PickupHistory, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, event_id, raw, result, revision, created_at, updated_at
		FROM pickup_histories WHERE user_id = ? AND event_id = ?`,
		key.UserID, key.EventID)

	h, err := scanHistory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get pickup history: %w", err)
	}
	return h, nil
}

func (s *SQLiteStore) Save(ctx context.Context, h *model.PickupHistory) error {
	result := h.Result
	if result == nil {
		result = []model.PullSession{}
	}
	blob, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode pickup result: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO pickup_histories (user_id, event_id, raw, result, revision, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, event_id) DO UPDATE SET
			raw = excluded.raw,
			result = excluded.result,
			revision = excluded.revision,
			updated_at = excluded.updated_at`,
		h.UserID, h.EventID, h.Raw, string(blob), h.Revision,
		h.CreatedAt.UTC().Format(time.RFC3339Nano), h.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save pickup history: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key model.HistoryKey) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM pickup_histories WHERE user_id = ? AND event_id = ?`, key.UserID, key.EventID)
	if err != nil {
		return fmt.Errorf("delete pickup history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete pickup history: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ListByUser(ctx context.Context, userID string) ([]model.PickupHistory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, event_id, raw, result, revision, created_at, updated_at
		FROM pickup_histories WHERE user_id = ? ORDER BY event_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list pickup histories: %w", err)
	}
	defer rows.Close()

	out := []model.PickupHistory{}
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("list pickup histories: %w", err)
		}
		out = append(out, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pickup histories: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHistory(row rowScanner) (*model.PickupHistory, error) {
	var (
		h                    model.PickupHistory
		blob                 string
		createdAt, updatedAt string
	)
	if err := row.Scan(&h.UserID, &h.EventID, &h.Raw, &blob, &h.Revision, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(blob), &h.Result); err != nil {
		return nil, fmt.Errorf("decode pickup result: %w", err)
	}
	var err error
	if h.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if h.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &h, nil
}

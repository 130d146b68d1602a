package revision

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pickup-ledger/server/internal/model"
)

// SQLiteStore 把提交日志写入 pickup_revisions 表。
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Append(ctx context.Context, key model.HistoryKey, rev *model.Revision) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("append revision: %w", err)
	}
	defer tx.Rollback()

	if rev.SubmissionID != "" {
		var seq int64
		err := tx.QueryRowContext(ctx, `
			SELECT seq FROM pickup_revisions
			WHERE user_id = ? AND event_id = ? AND submission_id = ?`,
			key.UserID, key.EventID, rev.SubmissionID).Scan(&seq)
		if err == nil {
			return seq, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("append revision: %w", err)
		}
	}

	var seq int64
	if err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) + 1 FROM pickup_revisions
		WHERE user_id = ? AND event_id = ?`, key.UserID, key.EventID).Scan(&seq); err != nil {
		return 0, fmt.Errorf("append revision: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO pickup_revisions (user_id, event_id, seq, submission_id, raw, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		key.UserID, key.EventID, seq, rev.SubmissionID, rev.Raw,
		rev.CreatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
		return 0, fmt.Errorf("append revision: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("append revision: %w", err)
	}
	return seq, nil
}

func (s *SQLiteStore) List(ctx context.Context, key model.HistoryKey) ([]model.Revision, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, submission_id, raw, created_at FROM pickup_revisions
		WHERE user_id = ? AND event_id = ? ORDER BY seq`, key.UserID, key.EventID)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()

	out := []model.Revision{}
	for rows.Next() {
		var (
			rev       model.Revision
			createdAt string
		)
		if err := rows.Scan(&rev.Seq, &rev.SubmissionID, &rev.Raw, &createdAt); err != nil {
			return nil, fmt.Errorf("list revisions: %w", err)
		}
		if rev.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("list revisions: parse created_at: %w", err)
		}
		rev.UserID = key.UserID
		rev.EventID = key.EventID
		out = append(out, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	return out, nil
}

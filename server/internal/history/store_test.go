package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pickup-ledger/server/internal/model"
	"pickup-ledger/server/internal/storage"
)

func newStores(t *testing.T) map[string]Store {
	t.Helper()
	db, err := storage.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return map[string]Store{
		"memory": NewInMemoryStore(),
		"sqlite": NewSQLiteStore(db),
	}
}

func sampleHistory(userID, eventID string) *model.PickupHistory {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &model.PickupHistory{
		UserID:  userID,
		EventID: eventID,
		Raw:     "010 1 2 7 코코나",
		Result: []model.PullSession{
			{Trial: 10, Tier1Count: 7, Tier2Count: 2, Tier3Count: 1, Tier3StudentIDs: []string{"10050"}},
		},
		Revision:  1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TestStoreSaveAndGet 验证保存后按复合主键取回的内容一致。
func TestStoreSaveAndGet(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			want := sampleHistory("u1", "e1")
			require.NoError(t, store.Save(ctx, want))

			got, err := store.Get(ctx, want.Key())
			require.NoError(t, err)
			assert.Equal(t, want, got)

			_, err = store.Get(ctx, model.HistoryKey{UserID: "u1", EventID: "missing"})
			assert.True(t, errors.Is(err, ErrNotFound))
		})
	}
}

// TestStoreSaveOverwrites 验证同一主键再次保存会整体替换快照，但保留创建时间。
func TestStoreSaveOverwrites(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first := sampleHistory("u1", "e1")
			require.NoError(t, store.Save(ctx, first))

			second := sampleHistory("u1", "e1")
			second.Raw = "0 1 9"
			second.Result = []model.PullSession{{Trial: 10, Tier1Count: 9, Tier2Count: 1, Tier3StudentIDs: []string{}}}
			second.Revision = 2
			second.UpdatedAt = first.UpdatedAt.Add(time.Hour)
			require.NoError(t, store.Save(ctx, second))

			got, err := store.Get(ctx, second.Key())
			require.NoError(t, err)
			assert.Equal(t, "0 1 9", got.Raw)
			assert.Equal(t, int64(2), got.Revision)
			assert.Equal(t, second.Result, got.Result)
			assert.True(t, got.UpdatedAt.Equal(second.UpdatedAt))
		})
	}
}

// TestStoreDeleteAndList 验证删除与按用户列出。
func TestStoreDeleteAndList(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Save(ctx, sampleHistory("u1", "e2")))
			require.NoError(t, store.Save(ctx, sampleHistory("u1", "e1")))
			require.NoError(t, store.Save(ctx, sampleHistory("u2", "e1")))

			list, err := store.ListByUser(ctx, "u1")
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "e1", list[0].EventID)
			assert.Equal(t, "e2", list[1].EventID)

			require.NoError(t, store.Delete(ctx, model.HistoryKey{UserID: "u1", EventID: "e1"}))
			err = store.Delete(ctx, model.HistoryKey{UserID: "u1", EventID: "e1"})
			assert.True(t, errors.Is(err, ErrNotFound))

			list, err = store.ListByUser(ctx, "u1")
			require.NoError(t, err)
			assert.Len(t, list, 1)

			empty, err := store.ListByUser(ctx, "nobody")
			require.NoError(t, err)
			assert.NotNil(t, empty)
			assert.Empty(t, empty)
		})
	}
}

// TestInMemoryStoreGetReturnsCopy 验证修改返回值不会影响存储内容。
func TestInMemoryStoreGetReturnsCopy(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	h := sampleHistory("u1", "e1")
	require.NoError(t, store.Save(ctx, h))

	got, err := store.Get(ctx, h.Key())
	require.NoError(t, err)
	got.Result[0].Tier3StudentIDs[0] = "mutated"

	again, err := store.Get(ctx, h.Key())
	require.NoError(t, err)
	assert.Equal(t, "10050", again.Result[0].Tier3StudentIDs[0])
}

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Minute)
		return now
	}
}

func TestMemoryStoreCreateGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(WithClock(fixedClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))))

	rec, err := store.Create(ctx, Record{
		UserID:  7,
		Kind:    KindEMI,
		Tool:    "loan_amortization",
		Input:   json.RawMessage(`{"principal":25000}`),
		Summary: json.RawMessage(`{"periodic_payment":512.91}`),
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 1, 0, 0, time.UTC), rec.CreatedAt)

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestMemoryStoreIDGenerator(t *testing.T) {
	id := uuid.MustParse("6f1c3a52-6a0e-4c61-8f0e-0d7f6bcb2f44")
	store := NewMemoryStore(WithIDGenerator(func() uuid.UUID { return id }))

	rec, err := store.Create(context.Background(), Record{UserID: 1, Kind: KindMortgage})
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
}

func TestMemoryStoreGetNotFound(t *testing.T) {
	_, err := NewMemoryStore().Get(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryStoreCreateInvalid(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Create(ctx, Record{UserID: 0, Kind: KindBudget})
	assert.True(t, errors.Is(err, ErrInvalidRecord))

	_, err = store.Create(ctx, Record{UserID: 1, Kind: "pension"})
	assert.True(t, errors.Is(err, ErrInvalidRecord))
}

func TestMemoryStoreListByUser(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(WithClock(fixedClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))))

	first, err := store.Create(ctx, Record{UserID: 1, Kind: KindEMI})
	require.NoError(t, err)
	second, err := store.Create(ctx, Record{UserID: 1, Kind: KindROI})
	require.NoError(t, err)
	third, err := store.Create(ctx, Record{UserID: 1, Kind: KindEMI})
	require.NoError(t, err)
	_, err = store.Create(ctx, Record{UserID: 2, Kind: KindEMI})
	require.NoError(t, err)

	all, err := store.ListByUser(ctx, 1, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uuid.UUID{third.ID, second.ID, first.ID}, []uuid.UUID{all[0].ID, all[1].ID, all[2].ID})

	emi, err := store.ListByUser(ctx, 1, KindEMI)
	require.NoError(t, err)
	require.Len(t, emi, 2)
	assert.Equal(t, third.ID, emi[0].ID)

	none, err := store.ListByUser(ctx, 99, "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryStoreConcurrent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Create(ctx, Record{UserID: 3, Kind: KindSavingsGoal})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	recs, err := store.ListByUser(ctx, 3, KindSavingsGoal)
	require.NoError(t, err)
	assert.Len(t, recs, 50)
}

func TestMemoryStoreCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryStore().Create(ctx, Record{UserID: 1, Kind: KindBudget})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKindValid(t *testing.T) {
	for _, k := range Kinds {
		assert.True(t, k.Valid(), k)
	}
	assert.False(t, Kind("").Valid())
}

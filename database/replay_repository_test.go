package database

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T, ttl time.Duration) (*ReplayRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewReplayRepository(client, ttl), mr
}

func TestReplayRepository_MarkAndCheck(t *testing.T) {
	repo, mr := newTestRepository(t, time.Hour)
	repo.now = func() time.Time { return time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	seen, err := repo.IsProcessed(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)

	marked, err := repo.MarkProcessed(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, marked)

	seen, err = repo.IsProcessed(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, seen)

	marked, err = repo.MarkProcessed(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, marked)

	val, err := mr.Get("webhook:event:evt_1")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-10T12:00:00Z", val)
	assert.Equal(t, time.Hour, mr.TTL("webhook:event:evt_1"))
}

func TestReplayRepository_Expiry(t *testing.T) {
	repo, mr := newTestRepository(t, time.Minute)
	ctx := context.Background()

	_, err := repo.MarkProcessed(ctx, "evt_2")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	seen, err := repo.IsProcessed(ctx, "evt_2")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestReplayRepository_ConcurrentMarkSingleWinner(t *testing.T) {
	repo, _ := newTestRepository(t, time.Hour)

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.MarkProcessed(context.Background(), "evt_race")
			if err == nil && ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins)
}

func TestReplayRepository_ConnectionError(t *testing.T) {
	repo, mr := newTestRepository(t, time.Hour)
	mr.Close()

	_, err := repo.IsProcessed(context.Background(), "evt_3")
	assert.Error(t, err)
}

func TestNewRedisClient_InvalidURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "not a url")
	assert.Error(t, err)
}

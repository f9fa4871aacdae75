package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/debot/pkg/adapters/redis"
	"github.com/aretw0/debot/pkg/ports"
	"github.com/aretw0/debot/pkg/session"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocker_Serializes(t *testing.T) {
	locker := session.NewLocker()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(ctx, "race", time.Second)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
			assert.NoError(t, unlock(ctx))
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
	assert.Zero(t, locker.Held())
}

func TestLocker_LockLifecycle(t *testing.T) {
	locker := session.NewLocker()
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		unlock, err := locker.Lock(ctx, fmt.Sprintf("session-%d", i), time.Second)
		require.NoError(t, err)
		require.NoError(t, unlock(ctx))
	}
	assert.Zero(t, locker.Held(), "released sessions must not keep lock entries")
}

func TestLocker_ContextCancelled(t *testing.T) {
	locker := session.NewLocker()
	unlock, err := locker.Lock(context.Background(), "busy", time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "busy", time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, locker.Held())

	require.NoError(t, unlock(context.Background()))
	require.NoError(t, unlock(context.Background()), "unlock is idempotent")
	assert.Zero(t, locker.Held())
}

type failingLocker struct{}

func (failingLocker) Lock(context.Context, string, time.Duration) (ports.UnlockFunc, error) {
	return nil, errors.New("remote down")
}

func TestLocker_Distributed(t *testing.T) {
	t.Run("Redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })

		locker := session.NewLocker(session.WithDistributed(redis.NewLocker(client, "test:")))
		ctx := context.Background()

		unlock, err := locker.Lock(ctx, "s1", time.Minute)
		require.NoError(t, err)
		assert.True(t, mr.Exists("test:lock:s1"))

		require.NoError(t, unlock(ctx))
		assert.False(t, mr.Exists("test:lock:s1"))
	})

	t.Run("Remote failure releases the local lock", func(t *testing.T) {
		locker := session.NewLocker(session.WithDistributed(failingLocker{}))
		_, err := locker.Lock(context.Background(), "s1", time.Minute)
		assert.ErrorContains(t, err, "remote down")
		assert.Zero(t, locker.Held())
	})
}

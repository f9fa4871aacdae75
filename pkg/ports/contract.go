package ports

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/debot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunCheckpointStoreContract runs a suite of tests to verify that a CheckpointStore
// implementation adheres to the defined interface contract.
func RunCheckpointStoreContract(t *testing.T, store CheckpointStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	newCheckpoint := func(id string) *domain.Checkpoint {
		return &domain.Checkpoint{
			SessionID: id,
			Address:   domain.Address("0:" + strings.Repeat("ab", 32)),
			Current:   domain.ContextID(2),
			Previous:  domain.StateZero,
			State:     domain.AccountState{"balance": "0x10", "data": "te6cc"},
			UpdatedAt: time.Now().UTC().Truncate(time.Second),
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		cp := newCheckpoint(sessionID)

		err := store.Save(ctx, cp)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, cp.Address, loaded.Address)
		assert.Equal(t, cp.Current, loaded.Current)
		assert.Equal(t, cp.Previous, loaded.Previous)
		assert.Equal(t, "0x10", loaded.State["balance"])
	})

	t.Run("Sentinels Survive", func(t *testing.T) {
		cp := newCheckpoint(sessionID + "-exit")
		cp.Current = domain.StateExit
		require.NoError(t, store.Save(ctx, cp))
		defer func() { _ = store.Delete(ctx, cp.SessionID) }()

		loaded, err := store.Load(ctx, cp.SessionID)
		require.NoError(t, err)
		assert.True(t, loaded.Current.IsExit())
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrCheckpointNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, newCheckpoint(sessionID)))

		err := store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrCheckpointNotFound, "Load after Delete should return ErrCheckpointNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, newCheckpoint(id1))
		_ = store.Save(ctx, newCheckpoint(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

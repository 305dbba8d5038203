package unit_test

import (
	"context"
	"testing"
	"time"

	"lab-preauth/internal/domain"
	"lab-preauth/internal/service/lock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockService_AcquireOrRefresh(t *testing.T) {
	ctx := context.Background()
	alice := domain.Actor{ID: uuid.New(), Name: "Dr. Alia", Role: domain.RoleReviewer}
	bob := domain.Actor{ID: uuid.New(), Name: "Dr. Badr", Role: domain.RoleReviewer}

	t.Run("Free Lock Is Granted", func(t *testing.T) {
		svc := lock.NewService(lock.NewMemoryStore(), 30*time.Minute)

		result, err := svc.AcquireOrRefresh(ctx, "REQ-2026-001", alice)

		require.NoError(t, err)
		assert.True(t, result.Granted)
		assert.Equal(t, alice.ID, result.Lock.HolderID)
		assert.Equal(t, alice.Name, result.Lock.HolderName)
		assert.True(t, result.Lock.ExpiresAt.After(result.Lock.AcquiredAt))
	})

	t.Run("Held Lock Blocks Other Reviewer", func(t *testing.T) {
		svc := lock.NewService(lock.NewMemoryStore(), 30*time.Minute)

		first, err := svc.AcquireOrRefresh(ctx, "REQ-2026-001", alice)
		require.NoError(t, err)
		require.True(t, first.Granted)

		second, err := svc.AcquireOrRefresh(ctx, "REQ-2026-001", bob)

		require.NoError(t, err, "a conflict is a result, not an error")
		assert.False(t, second.Granted)
		assert.Equal(t, alice.ID, second.Lock.HolderID)
		assert.Equal(t, alice.Name, second.Lock.HolderName)
	})

	t.Run("Same Holder Refreshes", func(t *testing.T) {
		svc := lock.NewService(lock.NewMemoryStore(), 30*time.Minute)

		first, err := svc.AcquireOrRefresh(ctx, "REQ-2026-001", alice)
		require.NoError(t, err)

		second, err := svc.AcquireOrRefresh(ctx, "REQ-2026-001", alice)

		require.NoError(t, err)
		assert.True(t, second.Granted)
		assert.False(t, second.Lock.ExpiresAt.Before(first.Lock.ExpiresAt))
	})

	t.Run("Expired Lock Is Reclaimable", func(t *testing.T) {
		store := lock.NewMemoryStore()
		svc := lock.NewService(store, 30*time.Minute)

		stale := domain.ReviewLock{
			RequestID:  "REQ-2026-001",
			HolderID:   alice.ID,
			HolderName: alice.Name,
			AcquiredAt: time.Now().Add(-time.Hour),
			ExpiresAt:  time.Now().Add(-30 * time.Minute),
		}
		require.NoError(t, store.Save(ctx, stale, time.Minute))

		result, err := svc.AcquireOrRefresh(ctx, "REQ-2026-001", bob)

		require.NoError(t, err)
		assert.True(t, result.Granted)
		assert.Equal(t, bob.ID, result.Lock.HolderID)
	})

	t.Run("Independent Requests Do Not Contend", func(t *testing.T) {
		svc := lock.NewService(lock.NewMemoryStore(), 30*time.Minute)

		first, err := svc.AcquireOrRefresh(ctx, "REQ-2026-001", alice)
		require.NoError(t, err)
		second, err := svc.AcquireOrRefresh(ctx, "REQ-2026-002", bob)
		require.NoError(t, err)

		assert.True(t, first.Granted)
		assert.True(t, second.Granted)
	})
}

func TestLockService_Release(t *testing.T) {
	ctx := context.Background()
	alice := domain.Actor{ID: uuid.New(), Name: "Dr. Alia", Role: domain.RoleReviewer}
	bob := domain.Actor{ID: uuid.New(), Name: "Dr. Badr", Role: domain.RoleReviewer}

	svc := lock.NewService(lock.NewMemoryStore(), 30*time.Minute)

	_, err := svc.AcquireOrRefresh(ctx, "REQ-2026-001", alice)
	require.NoError(t, err)

	require.NoError(t, svc.Release(ctx, "REQ-2026-001"))

	result, err := svc.AcquireOrRefresh(ctx, "REQ-2026-001", bob)
	require.NoError(t, err)
	assert.True(t, result.Granted)

	t.Run("Releasing Unheld Lock Is A No-Op", func(t *testing.T) {
		assert.NoError(t, svc.Release(ctx, "REQ-2026-404"))
	})
}

func TestLockService_Holder(t *testing.T) {
	ctx := context.Background()
	alice := domain.Actor{ID: uuid.New(), Name: "Dr. Alia", Role: domain.RoleReviewer}

	t.Run("Unlocked Request Has No Holder", func(t *testing.T) {
		svc := lock.NewService(lock.NewMemoryStore(), 30*time.Minute)

		holder, err := svc.Holder(ctx, "REQ-2026-001")
		require.NoError(t, err)
		assert.Nil(t, holder)
	})

	t.Run("Live Lock Reports Holder", func(t *testing.T) {
		svc := lock.NewService(lock.NewMemoryStore(), 30*time.Minute)

		_, err := svc.AcquireOrRefresh(ctx, "REQ-2026-001", alice)
		require.NoError(t, err)

		holder, err := svc.Holder(ctx, "REQ-2026-001")
		require.NoError(t, err)
		require.NotNil(t, holder)
		assert.Equal(t, alice.ID, holder.HolderID)
	})

	t.Run("Expired Lock Reports Nothing", func(t *testing.T) {
		store := lock.NewMemoryStore()
		svc := lock.NewService(store, 30*time.Minute)

		stale := domain.ReviewLock{
			RequestID: "REQ-2026-001",
			HolderID:  alice.ID,
			ExpiresAt: time.Now().Add(-time.Minute),
		}
		require.NoError(t, store.Save(ctx, stale, time.Minute))

		holder, err := svc.Holder(ctx, "REQ-2026-001")
		require.NoError(t, err)
		assert.Nil(t, holder)
	})
}

package repository

import (
	"context"
	"testing"
	"time"

	"animalitos/domain/entities"
	"animalitos/repository/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawRepository(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := newDrawRepository(testDB.DB.Pool)
	ctx := context.Background()

	draw := testutil.CreateTestDraw("lottery-1", "07", "Prize Pool")
	created, err := repo.CreateIfAbsent(ctx, draw)
	require.NoError(t, err)
	assert.True(t, created)

	t.Run("one draw per lottery", func(t *testing.T) {
		again, err := repo.CreateIfAbsent(ctx, testutil.CreateTestDraw("lottery-1", "12", "Prize Pool"))
		require.NoError(t, err)
		assert.False(t, again)

		stored, err := repo.GetByLotteryID(ctx, "lottery-1")
		require.NoError(t, err)
		assert.Equal(t, draw.ID, stored.ID)
		assert.Equal(t, "07", stored.WinningAnimalNumber)
		assert.Equal(t, entities.DrawStatusOpen, stored.Status)
	})

	t.Run("missing draw", func(t *testing.T) {
		stored, err := repo.GetByID(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, stored)
	})

	t.Run("settled payouts are summed", func(t *testing.T) {
		require.NoError(t, draw.BeginSettling())
		require.NoError(t, draw.MarkSettled(decimal.RequireFromString("20.00"), 1, time.Now().UTC()))
		require.NoError(t, repo.Update(ctx, draw))

		failed := testutil.CreateTestDraw("lottery-2", "01", "Prize Pool")
		_, err := repo.CreateIfAbsent(ctx, failed)
		require.NoError(t, err)
		require.NoError(t, failed.BeginSettling())
		require.NoError(t, failed.MarkFailed("prize pool short"))
		require.NoError(t, repo.Update(ctx, failed))

		sums, err := repo.SumPayoutsByPot(ctx)
		require.NoError(t, err)
		assert.True(t, sums["Prize Pool"].Equal(decimal.RequireFromString("20")))

		stored, err := repo.GetByIDForUpdate(ctx, failed.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.FailureReason)
		assert.Equal(t, "prize pool short", *stored.FailureReason)
	})

	t.Run("update of unknown draw", func(t *testing.T) {
		err := repo.Update(ctx, testutil.CreateTestDraw("lottery-x", "01", "Prize Pool"))
		assert.ErrorIs(t, err, entities.ErrDrawNotFound)
	})
}

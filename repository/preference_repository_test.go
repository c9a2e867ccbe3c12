package repository

import (
	"context"
	"testing"

	"poporingbot/domain/interfaces"
	"poporingbot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ interfaces.KeyValueStore = (*PreferenceRepository)(nil)
	_ interfaces.KeyValueStore = (*RedisPreferenceStore)(nil)
)

// exerciseStore runs the shared KeyValueStore contract against any backend
func exerciseStore(t *testing.T, store interfaces.KeyValueStore) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		value, found, err := store.Get(ctx, "c.404")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, value)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "c.100", "global"))

		value, found, err := store.Get(ctx, "c.100")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "global", value)
	})

	t.Run("set overwrites", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "s.200", "global"))
		require.NoError(t, store.Set(ctx, "s.200", "sea"))

		value, _, err := store.Get(ctx, "s.200")
		require.NoError(t, err)
		assert.Equal(t, "sea", value)
	})

	t.Run("repeated set is idempotent", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "c.300", "sea"))
		require.NoError(t, store.Set(ctx, "c.300", "sea"))

		value, found, err := store.Get(ctx, "c.300")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "sea", value)
	})

	t.Run("channel and guild keys are independent", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "c.500", "global"))

		_, found, err := store.Get(ctx, "s.500")
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestPreferenceRepository(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	exerciseStore(t, NewPreferenceRepository(testDB.DB))
}

func TestPreferenceRepository_RejectsUnknownRegion(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewPreferenceRepository(testDB.DB)
	err := repo.Set(context.Background(), "c.100", "europe")
	assert.Error(t, err)
}

func TestRedisPreferenceStore(t *testing.T) {
	t.Parallel()
	testRedis := testutil.SetupTestRedis(t)

	exerciseStore(t, NewRedisPreferenceStore(testRedis.Client))
}

func TestNewRedisClient(t *testing.T) {
	t.Parallel()
	testRedis := testutil.SetupTestRedis(t)

	client, err := NewRedisClient(context.Background(), testRedis.URL)
	require.NoError(t, err)
	defer client.Close()

	_, err = NewRedisClient(context.Background(), "not a url")
	assert.Error(t, err)
}

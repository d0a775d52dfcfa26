package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nareshsaladi2024/OICAgentOps/types"
)

// backends returns one fresh store of each type for contract tests.
func backends(t *testing.T) map[string]Store {
	t.Helper()

	fileStore, err := NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	redisStore, err := NewRedisStore(StoreConfig{Type: StoreTypeRedis, RedisAddr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { redisStore.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fileStore,
		"redis":  redisStore,
	}
}

func TestStoreReadEmpty(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			doc, err := store.Read(context.Background())
			require.NoError(t, err)
			assert.Empty(t, doc.LastFailedInstanceIDs)
			assert.Empty(t, doc.LastRecoveryJobIDs)
			assert.Empty(t, doc.ActiveEnvironment)
			assert.Nil(t, doc.LastResubmitSummary)
		})
	}
}

func TestStoreMergeRoundTrip(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Merge(ctx, Patch{
				LastFailedInstanceIDs: Strings([]string{"I1", "I2"}),
				ActiveEnvironment:     String("dev"),
			})
			require.NoError(t, err)

			doc, err := store.Read(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"I1", "I2"}, doc.LastFailedInstanceIDs)
			assert.Equal(t, "dev", doc.ActiveEnvironment)
		})
	}
}

func TestStoreMergeLeavesUntouchedFields(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Merge(ctx, Patch{
				LastFailedInstanceIDs: Strings([]string{"I1"}),
				ActiveEnvironment:     String("prod"),
			})
			require.NoError(t, err)

			// A patch touching only job ids must not disturb the rest.
			doc, err := store.Merge(ctx, Patch{
				LastRecoveryJobIDs: Strings([]string{"J9"}),
			})
			require.NoError(t, err)

			assert.Equal(t, []string{"I1"}, doc.LastFailedInstanceIDs)
			assert.Equal(t, []string{"J9"}, doc.LastRecoveryJobIDs)
			assert.Equal(t, "prod", doc.ActiveEnvironment)
		})
	}
}

func TestStoreMergeReplacesSlices(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Merge(ctx, Patch{LastRecoveryJobIDs: Strings([]string{"J1", "J2"})})
			require.NoError(t, err)

			doc, err := store.Merge(ctx, Patch{LastRecoveryJobIDs: Strings([]string{"J3"})})
			require.NoError(t, err)

			assert.Equal(t, []string{"J3"}, doc.LastRecoveryJobIDs)
		})
	}
}

func TestStoreMergeSummary(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			summary := &types.ResubmitSummary{Requested: 2, Succeeded: 2, InstanceIDs: []string{"I1", "I2"}}
			_, err := store.Merge(ctx, Patch{LastResubmitSummary: summary})
			require.NoError(t, err)

			doc, err := store.Read(ctx)
			require.NoError(t, err)
			require.NotNil(t, doc.LastResubmitSummary)
			assert.Equal(t, 2, doc.LastResubmitSummary.Requested)
			assert.Equal(t, []string{"I1", "I2"}, doc.LastResubmitSummary.InstanceIDs)
		})
	}
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	ctx := context.Background()

	first, err := NewFileStore(path)
	require.NoError(t, err)
	_, err = first.Merge(ctx, Patch{LastFailedInstanceIDs: Strings([]string{"I1"})})
	require.NoError(t, err)

	second, err := NewFileStore(path)
	require.NoError(t, err)
	doc, err := second.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"I1"}, doc.LastFailedInstanceIDs)
}

func TestFileStoreCorruptFileReadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store, err := NewFileStore(path)
	require.NoError(t, err)

	doc, err := store.Read(context.Background())
	require.NoError(t, err)
	assert.Empty(t, doc.LastFailedInstanceIDs)

	// A merge over the corrupt file starts from empty and heals it.
	merged, err := store.Merge(context.Background(), Patch{ActiveEnvironment: String("dev")})
	require.NoError(t, err)
	assert.Equal(t, "dev", merged.ActiveEnvironment)
	assert.Empty(t, merged.LastFailedInstanceIDs)
}

func TestFileStoreNoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	store, err := NewFileStore(path)
	require.NoError(t, err)
	_, err = store.Merge(context.Background(), Patch{ActiveEnvironment: String("dev")})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.json", entries[0].Name())
}

func TestRedisStoreCorruptValueReadsEmpty(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := NewRedisStore(StoreConfig{RedisAddr: mr.Addr()})
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, mr.Set(defaultRedisKey, "{broken"))

	doc, err := store.Read(context.Background())
	require.NoError(t, err)
	assert.Empty(t, doc.LastRecoveryJobIDs)
}

func TestNewStoreFactory(t *testing.T) {
	mem, err := NewStore(StoreConfig{Type: StoreTypeMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, mem)

	file, err := NewStore(StoreConfig{Type: StoreTypeFile, FilePath: filepath.Join(t.TempDir(), "s.json")})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, file)

	_, err = NewStore(StoreConfig{Type: "cassandra"})
	assert.Error(t, err)
}

package resultcache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staticmap/pkg/logger"
)

func TestKeyDeterministic(t *testing.T) {
	a := Key(5, -34.6037, -58.3816, "pin", "center", 1)
	b := Key(5, -34.6037, -58.3816, "pin", "center", 1)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestKeyDistinguishesParameters(t *testing.T) {
	base := Key(5, -34.6037, -58.3816, "pin", "center", 1)

	assert.NotEqual(t, base, Key(5, -34.6037, -58.3816, "pin", "center", 2))
	assert.NotEqual(t, base, Key(6, -34.6037, -58.3816, "pin", "center", 1))
	assert.NotEqual(t, base, Key(5, -34.6038, -58.3816, "pin", "center", 1))
	assert.NotEqual(t, base, Key(5, -34.6037, -58.3817, "pin", "center", 1))
	assert.NotEqual(t, base, Key(5, -34.6037, -58.3816, "flag", "center", 1))
	assert.NotEqual(t, base, Key(5, -34.6037, -58.3816, "pin", "bottom", 1))
}

func TestKeyFieldSeparation(t *testing.T) {
	// Adjacent numeric fields must not be confusable by concatenation.
	assert.NotEqual(t, Key(5, 1, 23, "", "", 1), Key(51, 2, 3, "", "", 1))
	assert.NotEqual(t, Key(1, 23, 4, "", "", 1), Key(12, 3, 4, "", "", 1))
}

func TestStoreRoundTrip(t *testing.T) {
	store, err := New(t.TempDir(), logger.NewNoOp())
	require.NoError(t, err)

	digest := Key(12, -34.6037, -58.3816, "", "center", 1)
	payload := []byte("not really a png")

	assert.False(t, store.Exists(digest))
	_, ok := store.Read(digest)
	assert.False(t, ok)

	require.NoError(t, store.Write(digest, payload))

	assert.True(t, store.Exists(digest))
	got, ok := store.Read(digest)
	require.True(t, ok)
	assert.Equal(t, payload, got)
}

func TestStoreWriteIsAtomic(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir, logger.NewNoOp())
	require.NoError(t, err)

	digest := Key(1, 2, 3, "", "", 1)
	require.NoError(t, store.Write(digest, []byte("first")))
	require.NoError(t, store.Write(digest, []byte("second")))

	got, ok := store.Read(digest)
	require.True(t, ok)
	assert.Equal(t, []byte("second"), got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files may be left behind")
	assert.Equal(t, digest+".png", entries[0].Name())
}

func TestStoreCorruptReadIsAMiss(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir, logger.NewNoOp())
	require.NoError(t, err)

	digest := Key(3, 4, 5, "", "", 1)
	// A directory at the cache path makes the read fail outright.
	require.NoError(t, os.Mkdir(filepath.Join(dir, digest+".png"), 0755))

	_, ok := store.Read(digest)
	assert.False(t, ok)
}

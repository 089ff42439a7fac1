package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/bencode"
)

func testTorrent(t *testing.T) []byte {
	t.Helper()
	data, err := bencode.EncodeBytes(map[string]interface{}{
		"announce": "http://tracker.example.com/announce",
		"info": map[string]interface{}{
			"name":         "modpack",
			"length":       int64(100),
			"piece length": int64(16384),
			"pieces":       "01234567890123456789",
		},
	})
	require.NoError(t, err)
	return data
}

func TestWatchDirEngineAddAndForget(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "watch")
	eng, err := NewWatchDirEngine(dir)
	require.NoError(t, err)

	resp, err := eng.Add(context.Background(), testTorrent(t), AddOptions{SavePath: "/srv/mods"})
	require.NoError(t, err)
	require.NotNil(t, resp.ID)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".torrent", filepath.Ext(entries[0].Name()))

	require.NoError(t, eng.Forget(context.Background(), *resp.ID))

	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWatchDirEngineForgetUnknownHandle(t *testing.T) {
	eng, err := NewWatchDirEngine(filepath.Join(t.TempDir(), "watch"))
	require.NoError(t, err)

	assert.Error(t, eng.Forget(context.Background(), 42))
}

func TestWatchDirEngineRejectsGarbage(t *testing.T) {
	eng, err := NewWatchDirEngine(filepath.Join(t.TempDir(), "watch"))
	require.NoError(t, err)

	_, err = eng.Add(context.Background(), []byte("not a torrent"), AddOptions{})
	assert.Error(t, err)
}

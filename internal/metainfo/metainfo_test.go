package metainfo

import (
	"crypto/sha1"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/bencode"
)

func encodeTorrent(t *testing.T, info map[string]interface{}) []byte {
	t.Helper()
	data, err := bencode.EncodeBytes(map[string]interface{}{
		"announce": "http://tracker.example.com/announce",
		"info":     info,
	})
	require.NoError(t, err)
	return data
}

func TestParseSingleFile(t *testing.T) {
	info := map[string]interface{}{
		"name":         "mods.pbo",
		"length":       int64(4096),
		"piece length": int64(16384),
		"pieces":       "01234567890123456789",
	}
	data := encodeTorrent(t, info)

	tor, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "mods.pbo", tor.Name)
	assert.Equal(t, int64(4096), tor.TotalSize())
	assert.Empty(t, tor.Files)

	rawInfo, err := bencode.EncodeBytes(info)
	require.NoError(t, err)
	assert.Equal(t, sha1.Sum(rawInfo), tor.InfoHash)
	assert.Len(t, tor.HashString(), 40)
}

func TestParseMultiFile(t *testing.T) {
	data := encodeTorrent(t, map[string]interface{}{
		"name":         "modpack",
		"piece length": int64(16384),
		"pieces":       "01234567890123456789",
		"files": []map[string]interface{}{
			{"length": int64(100), "path": []string{"addons", "a.pbo"}},
			{"length": int64(250), "path": []string{"addons", "b.pbo"}},
		},
	})

	tor, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "modpack", tor.Name)
	require.Len(t, tor.Files, 2)
	assert.Equal(t, []string{"addons", "b.pbo"}, tor.Files[1].Path)
	assert.Equal(t, int64(350), tor.TotalSize())
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse([]byte("not a torrent"))
	assert.Error(t, err)
}

func TestParseRejectsMissingInfo(t *testing.T) {
	data, err := bencode.EncodeBytes(map[string]interface{}{
		"announce": "http://tracker.example.com/announce",
	})
	require.NoError(t, err)

	_, err = Parse(data)
	assert.Error(t, err)
}

func TestHashChangesWithContent(t *testing.T) {
	a := encodeTorrent(t, map[string]interface{}{
		"name": "modpack", "length": int64(1), "piece length": int64(16384), "pieces": "01234567890123456789",
	})
	b := encodeTorrent(t, map[string]interface{}{
		"name": "modpack", "length": int64(2), "piece length": int64(16384), "pieces": "01234567890123456789",
	})

	ta, err := Parse(a)
	require.NoError(t, err)
	tb, err := Parse(b)
	require.NoError(t, err)
	assert.NotEqual(t, ta.HashString(), tb.HashString())
}

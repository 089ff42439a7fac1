// Package metainfo decodes just enough of a torrent metafile to identify it
// and describe its contents: name, file list, total size and infohash.
package metainfo

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/bencode"
)

type File struct {
	Length int64    `bencode:"length"`
	Path   []string `bencode:"path"`
}

type Torrent struct {
	Name     string
	Length   int64
	Files    []File
	InfoHash [20]byte
}

// Parse decodes a raw .torrent payload. The info dictionary is kept as raw
// bencode so the infohash matches what the engine computes.
func Parse(data []byte) (*Torrent, error) {
	var outer struct {
		Info bencode.RawMessage `bencode:"info"`
	}
	if err := bencode.DecodeBytes(data, &outer); err != nil {
		return nil, fmt.Errorf("failed to decode torrent: %w", err)
	}
	if len(outer.Info) == 0 {
		return nil, fmt.Errorf("torrent has no info dictionary")
	}

	var info struct {
		Name   string `bencode:"name"`
		Length int64  `bencode:"length"`
		Files  []File `bencode:"files"`
	}
	if err := bencode.DecodeBytes(outer.Info, &info); err != nil {
		return nil, fmt.Errorf("failed to decode torrent info: %w", err)
	}

	return &Torrent{
		Name:     info.Name,
		Length:   info.Length,
		Files:    info.Files,
		InfoHash: sha1.Sum(outer.Info),
	}, nil
}

// TotalSize is the sum of all file lengths, or the single-file length.
func (t *Torrent) TotalSize() int64 {
	if t.Length > 0 {
		return t.Length
	}
	var total int64
	for _, f := range t.Files {
		total += f.Length
	}
	return total
}

// HashString returns the infohash as lowercase hex.
func (t *Torrent) HashString() string {
	return hex.EncodeToString(t.InfoHash[:])
}

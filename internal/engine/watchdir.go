package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/tyen-customs-a3/modsync/internal/metainfo"
)

// WatchDirEngine drops .torrent files into a directory watched by an
// external client. Forget removes the file again; whether the watching
// client also stops the transfer is its own business.
type WatchDirEngine struct {
	watchDir string
	handles  handleMap
}

// NewWatchDirEngine creates the watch directory if needed.
func NewWatchDirEngine(watchDir string) (*WatchDirEngine, error) {
	if err := os.MkdirAll(watchDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create watch directory: %w", err)
	}
	return &WatchDirEngine{watchDir: watchDir}, nil
}

// Add writes the torrent file into the watch directory.
func (e *WatchDirEngine) Add(ctx context.Context, content []byte, opts AddOptions) (AddResponse, error) {
	t, err := metainfo.Parse(content)
	if err != nil {
		return AddResponse{}, fmt.Errorf("failed to parse torrent: %w", err)
	}

	torrentPath := filepath.Join(e.watchDir, fmt.Sprintf("%s.torrent", t.HashString()))
	if err := os.WriteFile(torrentPath, content, 0644); err != nil {
		return AddResponse{}, fmt.Errorf("failed to write torrent file: %w", err)
	}

	log.Info().Str("path", torrentPath).Msg("saved torrent file to watch directory")

	id := e.handles.assign(torrentPath)
	return AddResponse{ID: &id}, nil
}

// Forget deletes the previously written torrent file.
func (e *WatchDirEngine) Forget(ctx context.Context, id uint64) error {
	torrentPath, ok := e.handles.take(id)
	if !ok {
		return fmt.Errorf("unknown transfer handle %d", id)
	}

	if err := os.Remove(torrentPath); err != nil {
		return fmt.Errorf("failed to remove torrent file: %w", err)
	}

	log.Debug().Str("path", torrentPath).Msg("removed torrent file from watch directory")
	return nil
}

// Package engine abstracts the transfer backends behind an add/forget/query
// capability. The sync core only ever sees this interface.
package engine

import (
	"context"
	"fmt"

	"github.com/tyen-customs-a3/modsync/internal/config"
)

// RateLimits carries per-direction throughput caps in bytes per second.
// A nil field means no limit; zero values are never passed to a backend.
type RateLimits struct {
	UploadBps   *int64
	DownloadBps *int64
}

// AddOptions parameterizes a transfer registration.
type AddOptions struct {
	// SavePath is the directory the backend writes into.
	SavePath string
	// Overwrite asks the backend to reconcile against existing files on disk
	// rather than refusing to start.
	Overwrite bool
	// Paused registers the transfer stopped: fetch-and-stop rather than seed.
	Paused bool
	Limits RateLimits
}

// AddResponse reports the outcome of a registration. ID is nil when the
// backend accepted the transfer but cannot name it (rtorrent, watch dirs).
type AddResponse struct {
	ID *uint64
}

// Engine is the transfer-engine capability consumed by the sync core.
// Handles are assigned by the adapter on successful Add and are never
// reused within a session. Forget for an unknown or already-removed handle
// returns an error; callers decide whether that matters.
type Engine interface {
	Add(ctx context.Context, content []byte, opts AddOptions) (AddResponse, error)
	Forget(ctx context.Context, id uint64) error
}

// New builds the engine selected by cfg.Engine.Type.
func New(cfg *config.Config) (Engine, error) {
	switch cfg.Engine.Type {
	case "qbittorrent":
		return NewQBitEngine(cfg.Engine.QBit)
	case "deluge":
		return NewDelugeEngine(cfg.Engine.Deluge)
	case "rtorrent":
		return NewRTorrentEngine(cfg.Engine.RTorrent)
	case "watchdir":
		return NewWatchDirEngine(cfg.Engine.WatchDir)
	default:
		return nil, fmt.Errorf("unknown engine type %q", cfg.Engine.Type)
	}
}

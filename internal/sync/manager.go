package sync

import (
	"context"
	"fmt"

	"github.com/docker/go-units"
	"github.com/rs/zerolog"

	"github.com/tyen-customs-a3/modsync/internal/config"
	"github.com/tyen-customs-a3/modsync/internal/engine"
)

// Syncer performs the retire-then-register protocol against a transfer
// engine. It holds no transfer state of its own: the caller owns the
// previous handle across invocations and must not run two invocations for
// the same download path concurrently.
type Syncer struct {
	eng    engine.Engine
	notify Notifier
	log    zerolog.Logger
}

func NewSyncer(eng engine.Engine, notify Notifier, logger zerolog.Logger) *Syncer {
	return &Syncer{
		eng:    eng,
		notify: notify,
		log:    logger,
	}
}

// ManageTransfer replaces the previous transfer (if any) with one built from
// content, emitting status and events along the way. It returns the new
// handle, or nil when no transfer was registered: either the download path
// is unconfigured, or the engine accepted the add without naming a handle.
// Neither is an error. Failing to retire the previous transfer is never an
// error either; the one failure that crosses this boundary is the add call
// itself erroring, because that leaves no active transfer at all.
func (s *Syncer) ManageTransfer(ctx context.Context, cfg *config.Config, prev *uint64, content []byte) (*uint64, error) {
	s.log.Debug().
		Str("url", cfg.TorrentURL).
		Str("downloadPath", cfg.DownloadPath).
		Str("size", units.HumanSize(float64(len(content)))).
		Interface("previousID", prev).
		Msg("managing transfer")

	// Retire the old transfer first. The old one may already be gone from
	// the engine; that is no reason to skip registering the new one.
	if prev != nil {
		s.notify.Status(StatusUpdating())

		if err := s.eng.Forget(ctx, *prev); err != nil {
			s.log.Warn().
				Err(err).
				Uint64("id", *prev).
				Msg("failed to forget previous torrent, adding new one anyway")
			s.notify.Event(Event{
				Type:    EventError,
				Message: fmt.Sprintf("failed to forget old torrent %d: %v", *prev, err),
			})
		} else {
			s.log.Debug().Uint64("id", *prev).Msg("forgot previous torrent")
		}
	}

	if cfg.DownloadPath == "" {
		const msg = "download path not configured"
		s.log.Info().Msg("download path is empty, cannot add torrent")
		s.notify.Event(Event{Type: EventError, Message: msg})
		s.notify.Status(StatusError(msg))
		return nil, nil
	}

	// The engine validates and checks asynchronously; from here until the
	// add resolves we are updating.
	s.notify.Status(StatusUpdating())

	opts := engine.AddOptions{
		SavePath: cfg.DownloadPath,
		// The remote bundle is authoritative: always reconcile against
		// whatever partial state is already on disk.
		Overwrite: true,
		Paused:    !cfg.ShouldSeed,
		Limits: engine.RateLimits{
			UploadBps:   rateLimitBytes(cfg.MaxUploadKB),
			DownloadBps: rateLimitBytes(cfg.MaxDownloadKB),
		},
	}

	resp, err := s.eng.Add(ctx, content, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to add torrent: %w", err)
	}

	if resp.ID == nil {
		const msg = "torrent added but engine returned no id"
		s.log.Warn().Msg(msg)
		s.notify.Event(Event{Type: EventError, Message: msg})
		s.notify.Status(StatusError(msg))
		return nil, nil
	}

	s.log.Info().
		Uint64("id", *resp.ID).
		Bool("seeding", cfg.ShouldSeed).
		Msg("torrent added")
	s.notify.Event(Event{Type: EventTorrentAdded, ID: *resp.ID})
	s.notify.Status(StatusIdle())

	return resp.ID, nil
}

package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-units"
	"github.com/rs/zerolog"

	"github.com/tyen-customs-a3/modsync/internal/config"
	"github.com/tyen-customs-a3/modsync/internal/metainfo"
)

// Command is a user-triggered intent forwarded to the scheduling loop.
type Command int

const (
	// CommandRefresh checks the remote torrent now instead of waiting for
	// the next tick.
	CommandRefresh Command = iota
	// CommandVerify re-registers the current content so the engine rechecks
	// local files against it.
	CommandVerify
)

// torrentFetcher is what the scheduler needs from a Fetcher.
type torrentFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Scheduler drives the sync loop. It is the single owner of the transfer
// handle: Run is the only goroutine that invokes ManageTransfer, which
// gives the orchestrator its single-flight guarantee, and the handle
// returned by one invocation is threaded into the next.
type Scheduler struct {
	cfg    *config.Config
	syncer *Syncer
	fetch  torrentFetcher
	cmds   chan Command
	log    zerolog.Logger

	// Loop-local state, touched only from Run.
	current     *uint64
	currentHash string
	lastContent []byte
}

func NewScheduler(cfg *config.Config, syncer *Syncer, fetch torrentFetcher, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		syncer: syncer,
		fetch:  fetch,
		cmds:   make(chan Command, 8),
		log:    logger,
	}
}

// TriggerRefresh requests a remote check. Non-blocking; a full command
// queue drops the request, which is fine since a refresh is already due.
func (s *Scheduler) TriggerRefresh() {
	select {
	case s.cmds <- CommandRefresh:
	default:
	}
}

// TriggerVerify requests a local-file verification. Non-blocking.
func (s *Scheduler) TriggerVerify() {
	select {
	case s.cmds <- CommandVerify:
	default:
	}
}

// Run executes the sync loop until ctx is cancelled: an immediate refresh,
// then one on every tick or command.
func (s *Scheduler) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.Interval) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}

	s.log.Info().
		Str("url", s.cfg.TorrentURL).
		Str("schedule", interval.String()).
		Msg("starting sync loop")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := s.refresh(ctx); err != nil {
		s.log.Error().Err(err).Msg("sync failed")
	}

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("sync loop stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := s.refresh(ctx); err != nil {
				s.log.Error().Err(err).Msg("sync failed")
			}
		case cmd := <-s.cmds:
			if err := s.handle(ctx, cmd); err != nil {
				s.log.Error().Err(err).Msg("sync failed")
			}
		}
	}
}

// RunPending drains queued commands and returns. One-shot CLI commands use
// this instead of the long-lived Run loop.
func (s *Scheduler) RunPending(ctx context.Context) error {
	for {
		select {
		case cmd := <-s.cmds:
			if err := s.handle(ctx, cmd); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (s *Scheduler) handle(ctx context.Context, cmd Command) error {
	switch cmd {
	case CommandRefresh:
		s.log.Info().Msg("manual refresh requested")
		return s.refresh(ctx)
	case CommandVerify:
		s.log.Info().Msg("folder verify requested")
		return s.verify(ctx)
	default:
		return nil
	}
}

// refresh downloads the remote torrent and replaces the active transfer if
// the content changed. A failed replace keeps the old handle so the next
// attempt retries the same retire-then-register sequence.
func (s *Scheduler) refresh(ctx context.Context) error {
	content, err := s.fetch.Fetch(ctx, s.cfg.TorrentURL)
	if err != nil {
		return fmt.Errorf("failed to fetch remote torrent: %w", err)
	}

	t, err := metainfo.Parse(content)
	if err != nil {
		return fmt.Errorf("remote payload is not a valid torrent: %w", err)
	}

	if s.current != nil && t.HashString() == s.currentHash {
		s.log.Debug().Str("hash", s.currentHash).Msg("remote torrent unchanged")
		return nil
	}

	s.log.Info().
		Str("name", t.Name).
		Str("hash", t.HashString()).
		Str("totalSize", units.HumanSize(float64(t.TotalSize()))).
		Msg("remote torrent changed, replacing transfer")

	id, err := s.syncer.ManageTransfer(ctx, s.cfg, s.current, content)
	if err != nil {
		// Keep the old handle: the add failed, so nothing replaced it.
		return fmt.Errorf("failed to replace transfer: %w", err)
	}

	s.current = id
	s.currentHash = t.HashString()
	s.lastContent = content
	return nil
}

// verify forces the engine to recheck local files by re-registering the
// current content with overwrite on. Without cached content it degrades to
// a refresh.
func (s *Scheduler) verify(ctx context.Context) error {
	if s.lastContent == nil {
		s.log.Info().Msg("no known torrent to verify against, refreshing instead")
		return s.refresh(ctx)
	}

	id, err := s.syncer.ManageTransfer(ctx, s.cfg, s.current, s.lastContent)
	if err != nil {
		return fmt.Errorf("failed to verify local files: %w", err)
	}
	s.current = id
	return nil
}

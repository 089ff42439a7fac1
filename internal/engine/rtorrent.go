package engine

import (
	"context"
	"fmt"

	rtorrent "github.com/autobrr/go-rtorrent"
	"github.com/rs/zerolog/log"

	"github.com/tyen-customs-a3/modsync/internal/config"
)

// RTorrentEngine drives an rTorrent instance over XML-RPC. rTorrent does
// not report an identifier on add, so Add always returns a nil ID and
// Forget cannot resolve handles; replacement relies on rTorrent's own
// duplicate handling.
type RTorrentEngine struct {
	client *rtorrent.Client
}

// NewRTorrentEngine connects to rTorrent and verifies the endpoint responds.
func NewRTorrentEngine(cfg config.RTorrentConfig) (*RTorrentEngine, error) {
	rt := rtorrent.NewClient(rtorrent.Config{
		Addr:      cfg.URL,
		BasicUser: cfg.BasicUser,
		BasicPass: cfg.BasicPass,
	})

	if _, err := rt.Name(context.Background()); err != nil {
		log.Error().Err(err).Str("url", cfg.URL).Msg("failed to connect to rtorrent")
		return nil, fmt.Errorf("failed to connect to rtorrent: %w", err)
	}

	log.Debug().Str("url", cfg.URL).Msg("connected to rtorrent")
	return &RTorrentEngine{client: rt}, nil
}

// Add hands the torrent to rTorrent. The response carries no identifier.
func (e *RTorrentEngine) Add(ctx context.Context, content []byte, opts AddOptions) (AddResponse, error) {
	var extraArgs []*rtorrent.FieldValue
	if opts.SavePath != "" {
		extraArgs = append(extraArgs, rtorrent.DDirectory.SetValue(opts.SavePath))
	}

	log.Debug().
		Str("directory", opts.SavePath).
		Bool("paused", opts.Paused).
		Msg("adding torrent to rtorrent")

	if opts.Paused {
		if err := e.client.AddTorrentStopped(ctx, content, extraArgs...); err != nil {
			return AddResponse{}, fmt.Errorf("failed to add torrent: %w", err)
		}
	} else {
		if err := e.client.AddTorrent(ctx, content, extraArgs...); err != nil {
			return AddResponse{}, fmt.Errorf("failed to add torrent: %w", err)
		}
	}

	// No hash comes back over the add call, so there is nothing to hand out.
	return AddResponse{ID: nil}, nil
}

// Forget always fails: rTorrent never handed out a handle to forget.
func (e *RTorrentEngine) Forget(ctx context.Context, id uint64) error {
	return fmt.Errorf("unknown transfer handle %d: rtorrent does not report handles", id)
}

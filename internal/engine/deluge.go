package engine

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/autobrr/go-deluge"
	"github.com/rs/zerolog/log"

	"github.com/tyen-customs-a3/modsync/internal/config"
	"github.com/tyen-customs-a3/modsync/internal/metainfo"
)

// DelugeEngine drives a Deluge daemon, v2 with a v1 fallback.
type DelugeEngine struct {
	client interface {
		Connect(ctx context.Context) error
		AddTorrentFile(ctx context.Context, filename, contents string, options *deluge.Options) (string, error)
		RemoveTorrent(ctx context.Context, id string, rmFiles bool) (bool, error)
	}
	isV2    bool
	handles handleMap
}

// NewDelugeEngine connects to the Deluge daemon, trying v2 first.
func NewDelugeEngine(cfg config.DelugeConfig) (*DelugeEngine, error) {
	settings := deluge.Settings{
		Hostname: cfg.Hostname,
		Login:    cfg.Username,
		Password: cfg.Password,
	}

	v2client := deluge.NewV2(settings)
	if err := v2client.Connect(context.Background()); err == nil {
		log.Debug().Str("hostname", cfg.Hostname).Msg("connected to deluge v2")
		return &DelugeEngine{client: v2client, isV2: true}, nil
	}

	v1client := deluge.NewV1(settings)
	if err := v1client.Connect(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to connect to deluge: %w", err)
	}

	log.Debug().Str("hostname", cfg.Hostname).Msg("connected to deluge v1")
	return &DelugeEngine{client: v1client, isV2: false}, nil
}

// Add registers the torrent with Deluge and returns a session handle mapped
// to the hash Deluge reports back.
func (e *DelugeEngine) Add(ctx context.Context, content []byte, opts AddOptions) (AddResponse, error) {
	t, err := metainfo.Parse(content)
	if err != nil {
		return AddResponse{}, fmt.Errorf("failed to parse torrent: %w", err)
	}

	downloadLocation := opts.SavePath
	addPaused := opts.Paused
	options := &deluge.Options{
		DownloadLocation: &downloadLocation,
		AddPaused:        &addPaused,
	}
	// Deluge takes per-torrent caps in KiB/s.
	if opts.Limits.UploadBps != nil {
		up := int(*opts.Limits.UploadBps / 1024)
		options.MaxUploadSpeed = &up
	}
	if opts.Limits.DownloadBps != nil {
		down := int(*opts.Limits.DownloadBps / 1024)
		options.MaxDownloadSpeed = &down
	}

	log.Debug().
		Str("name", t.Name).
		Str("downloadLocation", downloadLocation).
		Bool("addPaused", addPaused).
		Msg("adding torrent to deluge")

	contents := base64.StdEncoding.EncodeToString(content)
	hash, err := e.client.AddTorrentFile(ctx, t.Name+".torrent", contents, options)
	if err != nil {
		return AddResponse{}, fmt.Errorf("failed to add torrent: %w", err)
	}

	id := e.handles.assign(hash)
	return AddResponse{ID: &id}, nil
}

// Forget removes the torrent from Deluge, keeping files on disk.
func (e *DelugeEngine) Forget(ctx context.Context, id uint64) error {
	hash, ok := e.handles.take(id)
	if !ok {
		return fmt.Errorf("unknown transfer handle %d", id)
	}

	log.Debug().Uint64("id", id).Str("hash", hash).Msg("removing torrent from deluge")

	if _, err := e.client.RemoveTorrent(ctx, hash, false); err != nil {
		return fmt.Errorf("failed to remove torrent: %w", err)
	}
	return nil
}

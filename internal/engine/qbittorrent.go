package engine

import (
	"context"
	"fmt"
	"strconv"

	qbittorrent "github.com/autobrr/go-qbittorrent"
	"github.com/rs/zerolog/log"

	"github.com/tyen-customs-a3/modsync/internal/config"
	"github.com/tyen-customs-a3/modsync/internal/metainfo"
)

// QBitEngine drives a qBittorrent WebUI backend.
type QBitEngine struct {
	client  *qbittorrent.Client
	handles handleMap
}

// NewQBitEngine connects and logs in to a qBittorrent instance.
func NewQBitEngine(cfg config.QBitConfig) (*QBitEngine, error) {
	qb := qbittorrent.NewClient(qbittorrent.Config{
		Host:      cfg.URL,
		Username:  cfg.Username,
		Password:  cfg.Password,
		BasicUser: cfg.BasicUser,
		BasicPass: cfg.BasicPass,
	})

	if err := qb.Login(); err != nil {
		log.Error().Err(err).Str("url", cfg.URL).Msg("failed to login to qbittorrent")
		return nil, fmt.Errorf("failed to login to qbittorrent: %w", err)
	}

	log.Debug().Str("url", cfg.URL).Msg("connected to qbittorrent")
	return &QBitEngine{client: qb}, nil
}

// Add registers the torrent and returns a session handle. qBittorrent does
// not echo the hash back on add, so it is computed from the metainfo here.
func (e *QBitEngine) Add(ctx context.Context, content []byte, opts AddOptions) (AddResponse, error) {
	t, err := metainfo.Parse(content)
	if err != nil {
		return AddResponse{}, fmt.Errorf("failed to parse torrent: %w", err)
	}

	qopts := map[string]string{
		"savepath": opts.SavePath,
	}
	if opts.Paused {
		qopts["paused"] = "true"
	}
	if opts.Overwrite {
		// Recheck whatever is already on disk instead of starting blind.
		qopts["skip_checking"] = "false"
	}
	if opts.Limits.UploadBps != nil {
		qopts["upLimit"] = strconv.FormatInt(*opts.Limits.UploadBps, 10)
	}
	if opts.Limits.DownloadBps != nil {
		qopts["dlLimit"] = strconv.FormatInt(*opts.Limits.DownloadBps, 10)
	}

	log.Debug().
		Str("name", t.Name).
		Str("hash", t.HashString()).
		Interface("options", qopts).
		Msg("adding torrent to qbittorrent")

	if err := e.client.AddTorrentFromMemoryCtx(ctx, content, qopts); err != nil {
		return AddResponse{}, fmt.Errorf("failed to add torrent: %w", err)
	}

	id := e.handles.assign(t.HashString())
	return AddResponse{ID: &id}, nil
}

// Forget removes the torrent from qBittorrent, keeping downloaded files on
// disk so the replacement transfer can reconcile against them.
func (e *QBitEngine) Forget(ctx context.Context, id uint64) error {
	hash, ok := e.handles.take(id)
	if !ok {
		return fmt.Errorf("unknown transfer handle %d", id)
	}

	log.Debug().Uint64("id", id).Str("hash", hash).Msg("removing torrent from qbittorrent")

	if err := e.client.DeleteTorrentsCtx(ctx, []string{hash}, false); err != nil {
		return fmt.Errorf("failed to remove torrent: %w", err)
	}
	return nil
}

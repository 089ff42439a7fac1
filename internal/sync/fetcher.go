package sync

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// maxTorrentSize caps how much of a remote response is read; anything
// larger is not a mod-bundle metafile.
const maxTorrentSize = 32 << 20

// Fetcher downloads the remote .torrent payload.
type Fetcher struct {
	client *http.Client
	log    zerolog.Logger
}

func NewFetcher(logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: 60 * time.Second},
		log:    logger,
	}
}

// Fetch retrieves the torrent metafile at url.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		f.log.Error().Err(err).Str("url", url).Msg("failed to create fetch request")
		return nil, fmt.Errorf("failed to create fetch request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.log.Error().Err(err).Str("url", url).Msg("failed to fetch torrent")
		return nil, fmt.Errorf("failed to fetch torrent: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.log.Error().Str("url", url).Str("status", resp.Status).Msg("unexpected response fetching torrent")
		return nil, fmt.Errorf("unexpected response fetching torrent: %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTorrentSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read torrent data: %w", err)
	}

	f.log.Debug().Str("url", url).Int("bytes", len(data)).Msg("fetched remote torrent")
	return data, nil
}

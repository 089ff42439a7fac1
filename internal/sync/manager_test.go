package sync

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tyen-customs-a3/modsync/internal/config"
	"github.com/tyen-customs-a3/modsync/internal/engine"
)

type fakeEngine struct {
	forgetErr error
	forgotten []uint64

	addErr  error
	addID   *uint64
	addOpts []engine.AddOptions
}

func (f *fakeEngine) Add(ctx context.Context, content []byte, opts engine.AddOptions) (engine.AddResponse, error) {
	f.addOpts = append(f.addOpts, opts)
	if f.addErr != nil {
		return engine.AddResponse{}, f.addErr
	}
	return engine.AddResponse{ID: f.addID}, nil
}

func (f *fakeEngine) Forget(ctx context.Context, id uint64) error {
	f.forgotten = append(f.forgotten, id)
	return f.forgetErr
}

// recorder captures events and statuses, plus a combined trace so tests can
// assert cross-kind ordering.
type recorder struct {
	events   []Event
	statuses []Status
	trace    []string
}

func (r *recorder) Event(ev Event) {
	r.events = append(r.events, ev)
	if ev.Type == EventTorrentAdded {
		r.trace = append(r.trace, fmt.Sprintf("event:added:%d", ev.ID))
	} else {
		r.trace = append(r.trace, "event:error")
	}
}

func (r *recorder) Status(st Status) {
	r.statuses = append(r.statuses, st)
	r.trace = append(r.trace, "status:"+st.State.String())
}

func (r *recorder) finalStatus() Status {
	return r.statuses[len(r.statuses)-1]
}

func uint64p(v uint64) *uint64 { return &v }
func int64p(v int64) *int64    { return &v }

func newTestSyncer(eng engine.Engine, rec *recorder) *Syncer {
	return NewSyncer(eng, rec, zerolog.Nop())
}

func TestManageTransferEmptyDownloadPath(t *testing.T) {
	for _, prev := range []*uint64{nil, uint64p(7)} {
		eng := &fakeEngine{}
		rec := &recorder{}
		s := newTestSyncer(eng, rec)

		cfg := &config.Config{TorrentURL: "https://example.com/mods.torrent"}
		id, err := s.ManageTransfer(context.Background(), cfg, prev, []byte("content"))

		require.NoError(t, err)
		assert.Nil(t, id)

		var errEvents int
		for _, ev := range rec.events {
			if ev.Type == EventError {
				errEvents++
			}
		}
		assert.Equal(t, 1, errEvents)
		assert.Equal(t, StateError, rec.finalStatus().State)
		assert.Equal(t, "download path not configured", rec.finalStatus().Message)

		// The guard must fire before any registration.
		assert.Empty(t, eng.addOpts)
	}
}

func TestManageTransferNoEngineCallsWithoutPrev(t *testing.T) {
	eng := &fakeEngine{}
	rec := &recorder{}
	s := newTestSyncer(eng, rec)

	cfg := &config.Config{}
	id, err := s.ManageTransfer(context.Background(), cfg, nil, []byte("content"))

	require.NoError(t, err)
	assert.Nil(t, id)
	assert.Empty(t, eng.forgotten)
	assert.Empty(t, eng.addOpts)
}

func TestManageTransferForgetFailureStillAdds(t *testing.T) {
	eng := &fakeEngine{
		forgetErr: errors.New("torrent already gone"),
		addID:     uint64p(9),
	}
	rec := &recorder{}
	s := newTestSyncer(eng, rec)

	cfg := &config.Config{DownloadPath: "/tmp/mods"}
	id, err := s.ManageTransfer(context.Background(), cfg, uint64p(3), []byte("content"))

	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, uint64(9), *id)

	// The failed retire is reported but does not short-circuit the add.
	assert.Equal(t, []uint64{3}, eng.forgotten)
	require.Len(t, eng.addOpts, 1)
	require.NotEmpty(t, rec.events)
	assert.Equal(t, EventError, rec.events[0].Type)
	assert.Contains(t, rec.events[0].Message, "3")
	assert.Equal(t, StateIdle, rec.finalStatus().State)
}

func TestManageTransferSuccessEventOrder(t *testing.T) {
	eng := &fakeEngine{addID: uint64p(42)}
	rec := &recorder{}
	s := newTestSyncer(eng, rec)

	cfg := &config.Config{DownloadPath: "/tmp/mods"}
	id, err := s.ManageTransfer(context.Background(), cfg, nil, []byte("content"))

	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, uint64(42), *id)

	assert.Equal(t, []string{
		"status:updating",
		"event:added:42",
		"status:idle",
	}, rec.trace)
}

func TestManageTransferNoIDReturned(t *testing.T) {
	eng := &fakeEngine{addID: nil}
	rec := &recorder{}
	s := newTestSyncer(eng, rec)

	cfg := &config.Config{DownloadPath: "/tmp/mods"}
	id, err := s.ManageTransfer(context.Background(), cfg, nil, []byte("content"))

	require.NoError(t, err)
	assert.Nil(t, id)
	require.Len(t, eng.addOpts, 1)

	require.NotEmpty(t, rec.events)
	assert.Equal(t, EventError, rec.events[0].Type)
	assert.Equal(t, StateError, rec.finalStatus().State)
}

func TestManageTransferAddErrorIsFatal(t *testing.T) {
	eng := &fakeEngine{addErr: errors.New("engine exploded")}
	rec := &recorder{}
	s := newTestSyncer(eng, rec)

	cfg := &config.Config{DownloadPath: "/tmp/mods"}
	id, err := s.ManageTransfer(context.Background(), cfg, uint64p(5), []byte("content"))

	require.Error(t, err)
	assert.Nil(t, id)
	assert.ErrorContains(t, err, "failed to add torrent")
	assert.ErrorContains(t, err, "engine exploded")

	// No Idle after a fatal add failure.
	for _, st := range rec.statuses {
		assert.NotEqual(t, StateIdle, st.State)
	}
}

func TestManageTransferReplaceScenario(t *testing.T) {
	eng := &fakeEngine{addID: uint64p(42)}
	rec := &recorder{}
	s := newTestSyncer(eng, rec)

	cfg := &config.Config{
		TorrentURL:    "magnet:x",
		DownloadPath:  "/tmp/mods",
		ShouldSeed:    false,
		MaxDownloadKB: int64p(500),
	}
	id, err := s.ManageTransfer(context.Background(), cfg, uint64p(7), []byte("content"))

	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, uint64(42), *id)
	assert.Equal(t, []uint64{7}, eng.forgotten)

	// Clean retire: no error events, only the add.
	require.Len(t, rec.events, 1)
	assert.Equal(t, EventTorrentAdded, rec.events[0].Type)
	assert.Equal(t, uint64(42), rec.events[0].ID)
	assert.Equal(t, StateIdle, rec.finalStatus().State)

	require.Len(t, eng.addOpts, 1)
	opts := eng.addOpts[0]
	assert.Equal(t, "/tmp/mods", opts.SavePath)
	assert.True(t, opts.Overwrite)
	assert.True(t, opts.Paused)
	assert.Nil(t, opts.Limits.UploadBps)
	require.NotNil(t, opts.Limits.DownloadBps)
	assert.Equal(t, int64(512000), *opts.Limits.DownloadBps)
}

func TestManageTransferSeedingStartsUnpaused(t *testing.T) {
	eng := &fakeEngine{addID: uint64p(1)}
	rec := &recorder{}
	s := newTestSyncer(eng, rec)

	cfg := &config.Config{DownloadPath: "/tmp/mods", ShouldSeed: true}
	_, err := s.ManageTransfer(context.Background(), cfg, nil, []byte("content"))

	require.NoError(t, err)
	require.Len(t, eng.addOpts, 1)
	assert.False(t, eng.addOpts[0].Paused)
}

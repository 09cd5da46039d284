package sync_test

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notekeeper/internal/rpc"
	notesync "github.com/nhle/notekeeper/internal/sync"
)

type fakeSyncer struct {
	mu    gosync.Mutex
	calls int
	err   error
}

func (f *fakeSyncer) Sync(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *fakeSyncer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func nextResult(t *testing.T, p *notesync.Poller) notesync.SyncResultMsg {
	t.Helper()
	msg := p.WaitForNextResult()()
	result, ok := msg.(notesync.SyncResultMsg)
	require.True(t, ok, "unexpected message %T", msg)
	return result
}

func TestPollerSyncsOnStartAndRefresh(t *testing.T) {
	s := &fakeSyncer{}
	p := notesync.New(s, time.Hour)
	defer p.Stop()

	first, ok := p.Start()().(notesync.SyncResultMsg)
	require.True(t, ok)
	assert.NoError(t, first.Error)
	assert.Nil(t, p.Start())

	p.Refresh()
	second := nextResult(t, p)
	assert.NoError(t, second.Error)
	assert.Equal(t, 2, s.Calls())

	status := p.Status()
	assert.Equal(t, notesync.SyncIdle, status.State)
	assert.False(t, status.LastSync.IsZero())
}

func TestPollerReportsErrors(t *testing.T) {
	s := &fakeSyncer{err: fmt.Errorf("notes.list: %w", &rpc.Error{Code: rpc.CodeUnauthenticated})}
	p := notesync.New(s, time.Hour)
	defer p.Stop()

	result, ok := p.Start()().(notesync.SyncResultMsg)
	require.True(t, ok)
	assert.Error(t, result.Error)
	assert.True(t, result.AuthError)
	assert.Equal(t, notesync.SyncError, p.Status().State)
	assert.Equal(t, "sync failed", p.Status().State.String())
}

func TestPollerTicks(t *testing.T) {
	s := &fakeSyncer{err: errors.New("offline")}
	p := notesync.New(s, 10*time.Millisecond)
	defer p.Stop()

	p.Start()()
	result := nextResult(t, p)
	assert.False(t, result.AuthError)
	assert.GreaterOrEqual(t, s.Calls(), 2)
}

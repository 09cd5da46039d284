// Package sync refreshes the client's notes from the server in the
// background and reports each round to the Bubble Tea runtime.
package sync

import (
	"context"
	"errors"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/notekeeper/internal/rpc"
)

// SyncState represents the current state of the poller.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

func (s SyncState) String() string {
	switch s {
	case SyncRunning:
		return "syncing"
	case SyncError:
		return "sync failed"
	default:
		return "idle"
	}
}

// SyncStatus is a snapshot of the poller's progress.
type SyncStatus struct {
	State    SyncState
	LastSync time.Time
	Error    error
}

// SyncResultMsg is a tea.Msg sent when a sync round completes.
type SyncResultMsg struct {
	Error error

	// AuthError is set when the server rejected the session token.
	AuthError bool
	At        time.Time
}

// Syncer refreshes local state from the server. *client.Store satisfies it.
type Syncer interface {
	Sync(ctx context.Context) error
}

// syncTimeout is the maximum time allowed for a single sync round.
const syncTimeout = 30 * time.Second

// DefaultInterval is used when the configured interval is not positive.
const DefaultInterval = 120 * time.Second

// Poller runs Sync on an interval and on demand.
type Poller struct {
	syncer    Syncer
	interval  time.Duration
	status    SyncStatus
	resultCh  chan SyncResultMsg
	triggerCh chan struct{}
	stopCh    chan struct{}
	mu        gosync.Mutex
	running   bool
}

// New creates a Poller that calls s.Sync every interval.
func New(s Syncer, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		syncer:    s,
		interval:  interval,
		resultCh:  make(chan SyncResultMsg, 16),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
}

// Start launches the polling goroutine and returns a command that waits
// for the first result. Calling Start twice returns nil.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.mu.Unlock()

	go p.loop()

	return p.waitForResult()
}

// Stop halts the polling goroutine.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	p.running = false
}

// Refresh requests an immediate sync round.
func (p *Poller) Refresh() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
		// A round is already pending.
	}
}

// Status returns the current sync status.
func (p *Poller) Status() SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Poller) loop() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.syncOnce()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.syncOnce()
		case <-p.triggerCh:
			p.syncOnce()
		}
	}
}

func (p *Poller) syncOnce() {
	p.setStatus(SyncRunning, nil)

	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	err := p.syncer.Sync(ctx)
	if err != nil {
		p.setStatus(SyncError, err)
		p.sendResult(SyncResultMsg{
			Error:     err,
			AuthError: errors.Is(err, rpc.ErrUnauthenticated),
			At:        time.Now(),
		})
		return
	}

	p.setStatus(SyncIdle, nil)
	p.sendResult(SyncResultMsg{At: time.Now()})
}

func (p *Poller) setStatus(state SyncState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.State = state
	p.status.Error = err
	if state == SyncIdle && err == nil {
		p.status.LastSync = time.Now()
	}
}

// sendResult sends a result without blocking.
func (p *Poller) sendResult(msg SyncResultMsg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the poller
	}
}

func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next sync result.
// Call it after handling a SyncResultMsg to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}

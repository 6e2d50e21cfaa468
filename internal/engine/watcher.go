package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/valcheur/go-steam-monitor/internal/core/model"
	"github.com/valcheur/go-steam-monitor/internal/util"
)

// WatchHandle identifies one running watch loop.
type WatchHandle string

// watchEntry pairs a watcher's cancel func with its in-flight guard. The
// guard makes ticks skip instead of queue when a poll outlives the interval;
// polls tracks the outstanding poll goroutine so shutdown can drain it.
type watchEntry struct {
	cancel   context.CancelFunc
	inFlight atomic.Bool
	polls    sync.WaitGroup
}

// Registry tracks running watchers by handle.
type Registry struct {
	mu      sync.Mutex
	entries map[WatchHandle]*watchEntry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[WatchHandle]*watchEntry)}
}

func (r *Registry) add(handle WatchHandle, entry *watchEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[handle] = entry
}

func (r *Registry) remove(handle WatchHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, handle)
}

// Cancel stops one watcher. Returns false if the handle is unknown, which
// includes watchers that already stopped on their own.
func (r *Registry) Cancel(handle WatchHandle) bool {
	r.mu.Lock()
	entry, ok := r.entries[handle]
	delete(r.entries, handle)
	r.mu.Unlock()
	if ok {
		entry.cancel()
	}
	return ok
}

// CancelAll stops every running watcher.
func (r *Registry) CancelAll() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[WatchHandle]*watchEntry)
	r.mu.Unlock()
	for _, entry := range entries {
		entry.cancel()
	}
}

// Len reports the number of running watchers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// StartWatching polls one player's achievements for one game on a fixed
// interval and pushes the full normalized list to the sink after every
// successful poll. Failed or empty polls are skipped silently; the loop keeps
// running until the handle is cancelled or ctx is done. If a poll is still
// running when the next tick fires, that tick is dropped rather than queued.
func (e *Engine) StartWatching(ctx context.Context, steamID string, appID int, sink AchievementSink) (WatchHandle, error) {
	if !e.provider.Configured() {
		return "", model.ErrNotConfigured
	}

	handle := WatchHandle(uuid.NewString())
	watchCtx, cancel := context.WithCancel(ctx)
	entry := &watchEntry{cancel: cancel}
	e.watchers.add(handle, entry)

	go e.watchLoop(watchCtx, handle, entry, steamID, appID, sink)

	util.LogInfof("Watching achievements: steamid=%s appid=%d handle=%s", steamID, appID, handle)
	return handle, nil
}

// StopWatching cancels one watcher by handle.
func (e *Engine) StopWatching(handle WatchHandle) bool {
	return e.watchers.Cancel(handle)
}

// StopAllWatchers cancels every running watcher.
func (e *Engine) StopAllWatchers() {
	e.watchers.CancelAll()
}

func (e *Engine) watchLoop(ctx context.Context, handle WatchHandle, entry *watchEntry, steamID string, appID int, sink AchievementSink) {
	defer e.watchers.remove(handle)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	// Polls run off the loop goroutine so a slow provider cannot delay tick
	// delivery; the in-flight guard then drops ticks instead of queueing them.
	spawn := func() {
		entry.polls.Add(1)
		go func() {
			defer entry.polls.Done()
			e.pollOnce(ctx, entry, steamID, appID, sink)
		}()
	}

	// Immediate first poll so the sink does not wait a full interval for
	// its initial snapshot.
	spawn()

	for {
		select {
		case <-ctx.Done():
			entry.polls.Wait()
			util.LogDebugf("Watcher stopped: handle=%s", handle)
			return
		case <-ticker.C:
			spawn()
		}
	}
}

func (e *Engine) pollOnce(ctx context.Context, entry *watchEntry, steamID string, appID int, sink AchievementSink) {
	if !entry.inFlight.CompareAndSwap(false, true) {
		util.LogDebugf("Watcher poll still in flight, skipping tick: steamid=%s appid=%d", steamID, appID)
		return
	}
	defer entry.inFlight.Store(false)

	records, err := e.provider.FetchPlayerAchievements(ctx, steamID, appID)
	if err != nil {
		util.LogDebugf("Watcher poll failed: steamid=%s appid=%d err=%v", steamID, appID, err)
		return
	}
	if len(records) == 0 || ctx.Err() != nil {
		return
	}
	sink(records)
}

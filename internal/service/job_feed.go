package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lcs-staffing/admin-console/internal/domain"
	"github.com/lcs-staffing/admin-console/internal/events"
	"github.com/lcs-staffing/admin-console/internal/repository"
)

const feedRefreshTimeout = 10 * time.Second

// Snapshot is one ordered view of all postings, newest first.
// Err is set when the store could not be read; subscribers keep their last good view.
type Snapshot struct {
	Jobs    []domain.JobPosting
	Version uint64
	Err     error
}

// JobLister is the read side the feed reloads from.
type JobLister interface {
	List(ctx context.Context, filter repository.JobFilter) ([]domain.JobPosting, error)
}

type feedSubscriber struct {
	ch     chan Snapshot
	closed bool
}

// JobFeed pushes a fresh snapshot to every subscriber whenever a job event is published.
// Slow subscribers only ever see the latest snapshot; versions never go backwards.
type JobFeed struct {
	jobs   JobLister
	logger *zap.Logger

	refreshMu sync.Mutex
	mu        sync.Mutex
	nextID    uint64
	version   uint64
	subs      map[uint64]*feedSubscriber
	unsub     []func()
}

// NewJobFeed subscribes the feed to job events on dispatcher.
func NewJobFeed(jobs JobLister, dispatcher events.Dispatcher, logger *zap.Logger) *JobFeed {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &JobFeed{
		jobs:   jobs,
		logger: logger,
		subs:   map[uint64]*feedSubscriber{},
	}
	if dispatcher != nil {
		for _, t := range events.JobEventTypes {
			f.unsub = append(f.unsub, dispatcher.Subscribe(t, f.onEvent))
		}
	}
	return f
}

// Subscribe returns a channel that first receives the current snapshot and then
// every later one. The channel is closed by cancel or when ctx ends.
func (f *JobFeed) Subscribe(ctx context.Context) (<-chan Snapshot, func()) {
	f.refreshMu.Lock()
	defer f.refreshMu.Unlock()

	jobs, err := f.jobs.List(ctx, repository.JobFilter{})

	f.mu.Lock()
	f.nextID++
	id := f.nextID
	sub := &feedSubscriber{ch: make(chan Snapshot, 1)}
	f.subs[id] = sub
	sub.ch <- Snapshot{Jobs: jobs, Version: f.version, Err: storeError("job", err)}
	f.mu.Unlock()

	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			f.mu.Lock()
			defer f.mu.Unlock()
			delete(f.subs, id)
			if !sub.closed {
				sub.closed = true
				close(sub.ch)
			}
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()
	return sub.ch, cancel
}

// Subscribers reports how many subscriptions are open.
func (f *JobFeed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Close detaches the feed from the dispatcher and closes all subscriptions.
func (f *JobFeed) Close() {
	for _, unsub := range f.unsub {
		unsub()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, sub := range f.subs {
		if !sub.closed {
			sub.closed = true
			close(sub.ch)
		}
		delete(f.subs, id)
	}
}

func (f *JobFeed) onEvent(ctx context.Context, _ events.Event) error {
	if f.Subscribers() == 0 {
		return nil
	}
	f.Refresh(ctx)
	return nil
}

// Refresh reloads the list and delivers it to every subscriber.
func (f *JobFeed) Refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), feedRefreshTimeout)
	defer cancel()

	f.refreshMu.Lock()
	defer f.refreshMu.Unlock()

	jobs, err := f.jobs.List(ctx, repository.JobFilter{})
	if err != nil {
		f.logger.Warn("job feed refresh failed", zap.Error(err))
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.version++
	snap := Snapshot{Jobs: jobs, Version: f.version, Err: storeError("job", err)}
	for _, sub := range f.subs {
		select {
		case <-sub.ch:
		default:
		}
		sub.ch <- snap
	}
}

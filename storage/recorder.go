package storage

import (
	"context"
	"sync"
	"time"
)

const (
	recorderQueue   = 256
	recorderTimeout = 5 * time.Second
)

// Recorder writes records on its own goroutine so callers never wait on the
// database. A nil *Recorder, or one without a store, discards everything.
type Recorder struct {
	store *Store
	logf  func(format string, args ...any)
	jobs  chan func(context.Context) error
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewRecorder starts a recorder. logf receives write failures.
func NewRecorder(store *Store, logf func(format string, args ...any)) *Recorder {
	r := &Recorder{
		store: store,
		logf:  logf,
		jobs:  make(chan func(context.Context) error, recorderQueue),
		done:  make(chan struct{}),
	}

	go r.run()

	return r
}

func (r *Recorder) run() {
	defer close(r.done)

	for job := range r.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), recorderTimeout)
		if err := job(ctx); err != nil && r.logf != nil {
			r.logf("STORE: %v", err)
		}
		cancel()
	}
}

func (r *Recorder) enqueue(job func(context.Context) error) {
	if r == nil || r.store == nil {
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}

	select {
	case r.jobs <- job:
	default:
		if r.logf != nil {
			r.logf("STORE: queue full, dropping record")
		}
	}
}

// RoomCreated records a new room.
func (r *Recorder) RoomCreated(room Room) {
	r.enqueue(func(ctx context.Context) error {
		return r.store.CreateRoom(ctx, room)
	})
}

// RoomClosed marks a room closed.
func (r *Recorder) RoomClosed(id string, at time.Time) {
	r.enqueue(func(ctx context.Context) error {
		return r.store.CloseRoom(ctx, id, at)
	})
}

// GameFinished records a finished game.
func (r *Recorder) GameFinished(game Game) {
	r.enqueue(func(ctx context.Context) error {
		return r.store.RecordGame(ctx, game)
	})
}

// Close stops accepting records and waits for queued ones to be written.
func (r *Recorder) Close() {
	if r == nil {
		return
	}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.jobs)
	r.mu.Unlock()

	<-r.done
}

/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/Seednode/codenames/games/deck"
	"github.com/Seednode/codenames/storage"
	"github.com/google/uuid"
)

var (
	ErrUnsupportedLang = errors.New("unsupported lang")
	ErrSlugExhausted   = errors.New("unable to allocate a free room slug")
)

const slugAttempts = 32

// RoomRegistry holds every live room, keyed by id and by slug.
type RoomRegistry struct {
	cfg      *Config
	pools    map[string]*deck.Pool
	recorder *storage.Recorder

	mu     sync.Mutex
	rng    *rand.Rand
	byID   map[string]*Hub
	bySlug map[string]*Hub

	quit     chan struct{}
	stopOnce sync.Once
}

func newRoomRegistry(cfg *Config, pools map[string]*deck.Pool, recorder *storage.Recorder) *RoomRegistry {
	r := &RoomRegistry{
		cfg:      cfg,
		pools:    pools,
		recorder: recorder,
		rng:      deck.NewRand(),
		byID:     make(map[string]*Hub),
		bySlug:   make(map[string]*Hub),
		quit:     make(chan struct{}),
	}

	if cfg.sessionTimeout > 0 {
		go r.reaperLoop(cfg.sessionTimeout)
	}

	return r
}

// Create opens a new room whose cards and names come from the lang pool.
func (r *RoomRegistry) Create(lang string) (*Hub, error) {
	if lang == "" {
		lang = deck.DefaultLang
	}

	pool, ok := r.pools[lang]
	if !ok {
		return nil, ErrUnsupportedLang
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var slug string
	for range slugAttempts {
		candidate, err := newSlug(r.rng, pool)
		if err != nil {
			return nil, err
		}
		if _, taken := r.bySlug[candidate]; !taken {
			slug = candidate
			break
		}
	}
	if slug == "" {
		return nil, ErrSlugExhausted
	}

	hub := newHub(r.cfg, uuid.NewString(), slug, pool, r.recorder)
	r.byID[hub.id] = hub
	r.bySlug[hub.slug] = hub
	go hub.run()

	r.recorder.RoomCreated(storage.Room{
		ID:        hub.id,
		Slug:      hub.slug,
		Lang:      pool.Lang,
		CreatedAt: hub.createdAt,
	})

	logf(r.cfg, "ROOMS: Created room %s (%s, %s)", hub.slug, hub.id, pool.Lang)

	return hub, nil
}

func (r *RoomRegistry) Lookup(slug string) (*Hub, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hub, ok := r.bySlug[slug]
	return hub, ok
}

// Destroy closes a room and disconnects its clients. It reports whether the
// room existed.
func (r *RoomRegistry) Destroy(id string) bool {
	r.mu.Lock()
	hub, ok := r.byID[id]
	if ok {
		delete(r.byID, id)
		delete(r.bySlug, hub.slug)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}

	hub.stop()
	r.recorder.RoomClosed(hub.id, time.Now())

	logf(r.cfg, "ROOMS: Closed room %s", hub.slug)

	return true
}

func (r *RoomRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.byID)
}

// Close destroys every room and stops the reaper.
func (r *RoomRegistry) Close() {
	r.stopOnce.Do(func() {
		close(r.quit)
	})

	r.mu.Lock()
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		r.Destroy(id)
	}
}

func (r *RoomRegistry) reap(cutoff time.Time) {
	r.mu.Lock()
	var idle []string
	for id, hub := range r.byID {
		if hub.idleSince().Before(cutoff) {
			idle = append(idle, id)
		}
	}
	r.mu.Unlock()

	for _, id := range idle {
		r.Destroy(id)
	}
}

func (r *RoomRegistry) reaperLoop(idleTimeout time.Duration) {
	ticker := time.NewTicker(idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.reap(time.Now().Add(-idleTimeout))
		case <-r.quit:
			return
		}
	}
}

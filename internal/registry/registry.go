// Package registry implements the sharded, concurrent lobby registry: a
// fixed number of independently-locked partitions keyed by a hash of the
// lobby code, so lookups for lobbies in different shards never contend on
// the same mutex.
package registry

import (
	"hash/fnv"
	"sort"
	"sync"

	"crossfire/server/internal/lobby"
	"crossfire/server/internal/tick"
)

// Handle bundles a lobby's simulation state with its tick loop and the
// channel used to stop that loop's goroutine.
type Handle struct {
	Code  string
	Lobby *lobby.Lobby
	Loop  *tick.Loop
	Stop  chan struct{}
}

const defaultShardCount = 16

type shard struct {
	mu     sync.RWMutex
	lobbies map[string]*Handle
}

// Registry partitions lobby handles across a fixed number of shards.
type Registry struct {
	shards []*shard
}

// New constructs a Registry with the given shard count (default 16 if
// non-positive).
func New(shardCount int) *Registry {
	if shardCount <= 0 {
		shardCount = defaultShardCount
	}
	r := &Registry{shards: make([]*shard, shardCount)}
	for i := range r.shards {
		r.shards[i] = &shard{lobbies: make(map[string]*Handle)}
	}
	return r
}

func (r *Registry) shardFor(code string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(code))
	return r.shards[h.Sum32()%uint32(len(r.shards))]
}

// Insert adds a handle under its code, returning false if the code is
// already registered.
func (r *Registry) Insert(handle *Handle) bool {
	s := r.shardFor(handle.Code)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.lobbies[handle.Code]; exists {
		return false
	}
	s.lobbies[handle.Code] = handle
	return true
}

// Get looks up a lobby handle by code.
func (r *Registry) Get(code string) (*Handle, bool) {
	s := r.shardFor(code)
	s.mu.RLock()
	defer s.mu.RUnlock()
	handle, ok := s.lobbies[code]
	return handle, ok
}

// Remove deletes a lobby handle by code, returning it if present.
func (r *Registry) Remove(code string) (*Handle, bool) {
	s := r.shardFor(code)
	s.mu.Lock()
	defer s.mu.Unlock()
	handle, ok := s.lobbies[code]
	if ok {
		delete(s.lobbies, code)
	}
	return handle, ok
}

// Codes returns every registered lobby code across all shards, sorted for
// stable listing output.
func (r *Registry) Codes() []string {
	var codes []string
	for _, s := range r.shards {
		s.mu.RLock()
		for code := range s.lobbies {
			codes = append(codes, code)
		}
		s.mu.RUnlock()
	}
	sort.Strings(codes)
	return codes
}

// Len reports the total number of registered lobbies across all shards.
func (r *Registry) Len() int {
	total := 0
	for _, s := range r.shards {
		s.mu.RLock()
		total += len(s.lobbies)
		s.mu.RUnlock()
	}
	return total
}

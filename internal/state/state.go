package state

import (
	"maps"
	"slices"
	"sync"

	"github.com/sugallat/squarebg/internal/pattern"
)

type Phase int

const (
	STARTING Phase = iota
	READY
	RELOADING
	STOPPED
)

func (p Phase) String() string {
	switch p {
	case READY:
		return "ready"
	case RELOADING:
		return "reloading"
	case STOPPED:
		return "stopped"
	default:
		return "starting"
	}
}

// State is an immutable view of the active background sections.
type State struct {
	Phase          Phase
	Sections       map[string]pattern.Options
	DefaultSection string
	// Generation increases with every Replace, so redraws can skip stale work.
	Generation uint64
}

// Section looks up name, falling back to DefaultSection when name is empty.
func (s State) Section(name string) (pattern.Options, bool) {
	if name == "" {
		name = s.DefaultSection
	}
	o, ok := s.Sections[name]
	return o, ok
}

func (s State) SectionNames() []string {
	return slices.Sorted(maps.Keys(s.Sections))
}

type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore() *Store {
	return &Store{state: State{Phase: STARTING, Sections: map[string]pattern.Options{}}}
}

func (store *Store) Snapshot() State {
	store.mu.RLock()
	defer store.mu.RUnlock()
	snap := store.state
	snap.Sections = maps.Clone(store.state.Sections)
	return snap
}

func (store *Store) SetPhase(phase Phase) {
	store.mu.Lock()
	store.state.Phase = phase
	store.mu.Unlock()
}

// Replace swaps in a new set of sections and returns the new generation.
func (store *Store) Replace(sections map[string]pattern.Options, defaultSection string) uint64 {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.state.Sections = maps.Clone(sections)
	if store.state.Sections == nil {
		store.state.Sections = map[string]pattern.Options{}
	}
	store.state.DefaultSection = defaultSection
	store.state.Generation++
	return store.state.Generation
}

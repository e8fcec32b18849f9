// Package site owns the live homepage data: the application state object,
// its persistence, the snapshot history and editor drafts.
package site

import (
	"sync"

	"github.com/eringen/scholarpage/content"
)

type subscriber func(content.Site, uint64)

// State is the single live copy of the homepage. Readers get deep copies;
// every change is a full replace that bumps the revision and notifies
// subscribers in registration order.
type State struct {
	mu   sync.RWMutex
	site content.Site
	rev  uint64

	// writeMu serializes Replace so that subscribers see revisions in order.
	writeMu sync.Mutex
	subs    []subscriber
}

// NewState returns a State holding a copy of s at revision 1.
func NewState(s content.Site) *State {
	s = s.Clone()
	s.Normalize()
	return &State{site: s, rev: 1}
}

// Current returns a deep copy of the live site.
func (st *State) Current() content.Site {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.site.Clone()
}

// Revision returns the number of the live revision.
func (st *State) Revision() uint64 {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.rev
}

// Snapshot returns a deep copy of the live site together with its
// revision, read under one lock.
func (st *State) Snapshot() (content.Site, uint64) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.site.Clone(), st.rev
}

// Replace swaps in a copy of s and returns the new revision.
func (st *State) Replace(s content.Site) uint64 {
	s = s.Clone()
	s.Normalize()

	st.writeMu.Lock()
	defer st.writeMu.Unlock()

	st.mu.Lock()
	st.site = s
	st.rev++
	rev := st.rev
	subs := append([]subscriber(nil), st.subs...)
	st.mu.Unlock()

	for _, fn := range subs {
		fn(s.Clone(), rev)
	}
	return rev
}

// Subscribe registers fn to run after every Replace.
func (st *State) Subscribe(fn func(s content.Site, rev uint64)) {
	st.writeMu.Lock()
	defer st.writeMu.Unlock()
	st.mu.Lock()
	st.subs = append(st.subs, fn)
	st.mu.Unlock()
}

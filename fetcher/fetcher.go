// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

// Package fetcher implements the content-addressed artifact cache
// (component C1): request/serve of TxSets and QuorumSets by hash, with
// pending-callback continuations for validations that suspend on a
// missing artifact.
package fetcher

import (
	"sync"

	"github.com/engboniface/stellar-core/core"
)

// RequestFunc issues a broadcast request to the overlay for hash.
type RequestFunc func(hash core.Hash)

// itemFetcher is the generic content-addressed cache shared by the
// TxSet and QuorumSet fetchers.
type itemFetcher[T any] struct {
	mtx sync.Mutex

	items     map[core.Hash]T
	peers     map[core.Hash]map[core.Hash]struct{} // hash -> candidate peer set
	pending   map[core.Hash][]func(T)
	requested map[core.Hash]bool

	request RequestFunc
}

func newItemFetcher[T any](request RequestFunc) *itemFetcher[T] {
	return &itemFetcher[T]{
		items:     make(map[core.Hash]T),
		peers:     make(map[core.Hash]map[core.Hash]struct{}),
		pending:   make(map[core.Hash][]func(T)),
		requested: make(map[core.Hash]bool),
		request:   request,
	}
}

// fetchItem returns the cached item if present; otherwise, if
// askNetwork, issues a broadcast request and returns absent.
func (f *itemFetcher[T]) fetchItem(hash core.Hash, askNetwork bool) (T, bool) {
	f.mtx.Lock()
	if item, ok := f.items[hash]; ok {
		f.mtx.Unlock()
		return item, true
	}
	if askNetwork {
		f.requested[hash] = true
	}
	f.mtx.Unlock()

	// request may re-enter this fetcher (e.g. trackPeer), so it runs unlocked
	if askNetwork && f.request != nil {
		f.request(hash)
	}
	var zero T
	return zero, false
}

// whenAvailable registers a continuation to run exactly once, the first
// time this hash's artifact arrives.
func (f *itemFetcher[T]) whenAvailable(hash core.Hash, cb func(T)) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.pending[hash] = append(f.pending[hash], cb)
}

// recvItem stores item, draining and removing any pending continuations
// for its hash atomically. It returns true iff at least one fetch for
// this hash was outstanding (a continuation was waiting, or the item had
// been explicitly requested from the network).
func (f *itemFetcher[T]) recvItem(hash core.Hash, item T) bool {
	f.mtx.Lock()
	f.items[hash] = item
	callbacks := f.pending[hash]
	delete(f.pending, hash)
	wasOutstanding := len(callbacks) > 0 || f.requested[hash]
	delete(f.requested, hash)
	delete(f.peers, hash)
	f.mtx.Unlock()

	for _, cb := range callbacks {
		cb(item)
	}
	return wasOutstanding
}

// doesntHave removes peer from hash's candidate set; if that empties the
// set, it escalates by re-issuing a broadcast request.
func (f *itemFetcher[T]) doesntHave(hash core.Hash, peer core.NodeID) {
	f.mtx.Lock()
	set, ok := f.peers[hash]
	if ok {
		delete(set, peer.Hash())
	}
	empty := !ok || len(set) == 0
	f.mtx.Unlock()

	if empty && f.request != nil {
		f.request(hash)
	}
}

// trackPeer records peer as a candidate source for hash (called when a
// request for hash is sent to peer).
func (f *itemFetcher[T]) trackPeer(hash core.Hash, peer core.NodeID) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	set, ok := f.peers[hash]
	if !ok {
		set = make(map[core.Hash]struct{})
		f.peers[hash] = set
	}
	set[peer.Hash()] = struct{}{}
}

// stopFetchingAll cancels outstanding network requests without
// discarding already-cached items or registered continuations.
func (f *itemFetcher[T]) stopFetchingAll() {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.requested = make(map[core.Hash]bool)
	f.peers = make(map[core.Hash]map[core.Hash]struct{})
}

// clear wipes the cache entirely: items, requests, peer tracking and
// pending continuations.
func (f *itemFetcher[T]) clear() {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.items = make(map[core.Hash]T)
	f.peers = make(map[core.Hash]map[core.Hash]struct{})
	f.pending = make(map[core.Hash][]func(T))
	f.requested = make(map[core.Hash]bool)
}

// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package fetcher

import "github.com/engboniface/stellar-core/core"

// QuorumSetFetcher is the single-buffer content-addressed cache for
// QuorumSets. Unlike the TxSet fetcher, QuorumSets are not tied to a
// particular ledger so there is no need to rotate buffers.
type QuorumSetFetcher struct {
	items *itemFetcher[*core.QuorumSet]
}

// NewQuorumSetFetcher creates a QuorumSetFetcher that issues requests via
// request, pre-seeded with the node's own local QuorumSet so that
// retrieveQuorumSet calls for local.Hash() never hit the network.
func NewQuorumSetFetcher(request RequestFunc, local *core.QuorumSet) *QuorumSetFetcher {
	f := &QuorumSetFetcher{items: newItemFetcher[*core.QuorumSet](request)}
	if local != nil {
		f.items.recvItem(local.Hash(), local)
	}
	return f
}

// FetchItem returns the cached QuorumSet if present; otherwise, if
// askNetwork, issues a broadcast request and returns absent.
func (f *QuorumSetFetcher) FetchItem(hash core.Hash, askNetwork bool) (*core.QuorumSet, bool) {
	return f.items.fetchItem(hash, askNetwork)
}

// WhenAvailable registers a continuation for hash.
func (f *QuorumSetFetcher) WhenAvailable(hash core.Hash, cb func(*core.QuorumSet)) {
	f.items.whenAvailable(hash, cb)
}

// RecvItem stores qs, keyed by its own Hash.
func (f *QuorumSetFetcher) RecvItem(qs *core.QuorumSet) bool {
	return f.items.recvItem(qs.Hash(), qs)
}

// DoesntHave removes peer as a candidate source for hash.
func (f *QuorumSetFetcher) DoesntHave(hash core.Hash, peer core.NodeID) {
	f.items.doesntHave(hash, peer)
}

// TrackPeer records peer as a candidate source for hash.
func (f *QuorumSetFetcher) TrackPeer(hash core.Hash, peer core.NodeID) {
	f.items.trackPeer(hash, peer)
}

// StopFetchingAll cancels outstanding network requests.
func (f *QuorumSetFetcher) StopFetchingAll() {
	f.items.stopFetchingAll()
}

// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package fetcher

import "github.com/engboniface/stellar-core/core"

// TxSetFetcher is the double-buffered cache for TxSets. The buffer is
// swapped on each externalization: the just-current buffer becomes old
// and is wiped on the *next* externalization, giving late messages for
// the just-closed ledger a bounded window to land.
type TxSetFetcher struct {
	buffers [2]*itemFetcher[*core.TxSet]
	current int
}

// NewTxSetFetcher creates a TxSetFetcher that issues requests via request.
func NewTxSetFetcher(request RequestFunc) *TxSetFetcher {
	return &TxSetFetcher{
		buffers: [2]*itemFetcher[*core.TxSet]{
			newItemFetcher[*core.TxSet](request),
			newItemFetcher[*core.TxSet](request),
		},
	}
}

func (f *TxSetFetcher) active() *itemFetcher[*core.TxSet] { return f.buffers[f.current] }

// FetchItem returns the cached TxSet if present in either buffer;
// otherwise, if askNetwork, issues a broadcast request and returns absent.
func (f *TxSetFetcher) FetchItem(hash core.Hash, askNetwork bool) (*core.TxSet, bool) {
	if ts, ok := f.active().fetchItem(hash, false); ok {
		return ts, true
	}
	if ts, ok := f.buffers[1-f.current].fetchItem(hash, false); ok {
		return ts, true
	}
	return f.active().fetchItem(hash, askNetwork)
}

// WhenAvailable registers a continuation for hash in the active buffer.
func (f *TxSetFetcher) WhenAvailable(hash core.Hash, cb func(*core.TxSet)) {
	f.active().whenAvailable(hash, cb)
}

// RecvItem stores ts, keyed by its own ContentsHash, in the active buffer.
func (f *TxSetFetcher) RecvItem(ts *core.TxSet) bool {
	return f.active().recvItem(ts.ContentsHash(), ts)
}

// DoesntHave removes peer as a candidate source for hash in the active buffer.
func (f *TxSetFetcher) DoesntHave(hash core.Hash, peer core.NodeID) {
	f.active().doesntHave(hash, peer)
}

// TrackPeer records peer as a candidate source for hash.
func (f *TxSetFetcher) TrackPeer(hash core.Hash, peer core.NodeID) {
	f.active().trackPeer(hash, peer)
}

// Rotate is called on externalization: it stops outstanding fetches on
// the current buffer, swaps current <-> other, then clears the new
// current buffer (which was the buffer retired one externalize ago).
func (f *TxSetFetcher) Rotate() {
	f.active().stopFetchingAll()
	f.current = 1 - f.current
	f.active().clear()
}

// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package herder

import "github.com/engboniface/stellar-core/core"

// RecvTxSet feeds an inbound TxSet into the fetcher cache. It is the
// overlay's entry point for CORE SPEC §6's "recvTxSet".
func (h *Herder) RecvTxSet(ts *core.TxSet) bool {
	return h.txSetFetcher.RecvItem(ts)
}

// RecvFBAQuorumSet feeds an inbound QuorumSet into the fetcher cache,
// the overlay's entry point for CORE SPEC §6's "recvFBAQuorumSet".
func (h *Herder) RecvFBAQuorumSet(qs *core.QuorumSet) bool {
	return h.qSetFetcher.RecvItem(qs)
}

// DoesntHaveTxSet records that peer does not have the TxSet identified
// by hash, escalating the request if it was the last candidate.
func (h *Herder) DoesntHaveTxSet(hash core.Hash, peer core.NodeID) {
	h.txSetFetcher.DoesntHave(hash, peer)
}

// DoesntHaveFBAQuorumSet records that peer does not have the QuorumSet
// identified by hash, escalating the request if it was the last
// candidate.
func (h *Herder) DoesntHaveFBAQuorumSet(hash core.Hash, peer core.NodeID) {
	h.qSetFetcher.DoesntHave(hash, peer)
}

// TxSet answers a peer's want-request for an artifact this node already
// holds, without issuing a network request of its own.
func (h *Herder) TxSet(hash core.Hash) (*core.TxSet, bool) {
	return h.txSetFetcher.FetchItem(hash, false)
}

// QuorumSet answers a peer's want-request for a quorum set this node
// already holds, without issuing a network request of its own.
func (h *Herder) QuorumSet(hash core.Hash) (*core.QuorumSet, bool) {
	return h.qSetFetcher.FetchItem(hash, false)
}

// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package node

import (
	"github.com/engboniface/stellar-core/core"
	"github.com/engboniface/stellar-core/txpool"
)

// receiverAdapter bridges p2p.Receiver to the Herder (for FBA envelopes
// and artifacts) and the TxPool (for loose transactions), since those
// live behind separate interfaces on the consuming side.
type receiverAdapter struct {
	node *Node
}

func (a *receiverAdapter) RecvFBAEnvelope(env *core.Envelope, cb func(bool)) {
	a.node.herder.RecvFBAEnvelope(env, cb)
}

func (a *receiverAdapter) RecvTxSet(ts *core.TxSet) bool {
	return a.node.herder.RecvTxSet(ts)
}

func (a *receiverAdapter) RecvFBAQuorumSet(qs *core.QuorumSet) bool {
	return a.node.herder.RecvFBAQuorumSet(qs)
}

func (a *receiverAdapter) RecvTransaction(tx *core.Transaction) {
	if a.node.txpool.TryAdd(tx) == txpool.Pending {
		a.node.overlay.BroadcastTransaction(tx)
	}
}

func (a *receiverAdapter) DoesntHaveTxSet(hash core.Hash, peer core.NodeID) {
	a.node.herder.DoesntHaveTxSet(hash, peer)
}

func (a *receiverAdapter) DoesntHaveFBAQuorumSet(hash core.Hash, peer core.NodeID) {
	a.node.herder.DoesntHaveFBAQuorumSet(hash, peer)
}

// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package herder

import (
	"github.com/engboniface/stellar-core/core"
	"github.com/engboniface/stellar-core/logger"
)

// ValidateValue implements scp.Driver, per CORE SPEC §4.3.
func (h *Herder) ValidateValue(slotIndex uint64, nodeID core.NodeID, value []byte, cb func(bool)) {
	v, err := core.UnmarshalValue(value)
	if err != nil {
		cb(false)
		return
	}

	lcl := h.resources.Ledger.GetLastClosedLedgerHeader()
	synced := h.isSynced()
	if synced {
		if slotIndex != lcl.LedgerSeq+1 || v.CloseTime <= lcl.CloseTime {
			cb(false)
			return
		}
	}

	h.withTxSet(v.TxSetHash, func(txSet *core.TxSet) {
		if !synced {
			cb(true)
			return
		}
		cb(txSet.CheckValid(lcl, h.resources.Ledger.ValidateTx))
	})
}

// ValidateBallot implements scp.Driver, per CORE SPEC §4.3.
func (h *Herder) ValidateBallot(slotIndex uint64, nodeID core.NodeID, counter uint32, value []byte, cb func(bool)) {
	v, err := core.UnmarshalValue(value)
	if err != nil {
		cb(false)
		return
	}

	now := h.resources.Clock.Now()

	if v.CloseTime > uint64(now.Add(h.config.MaxTimeSlip).Unix()) {
		cb(false)
		return
	}

	h.mtx.Lock()
	lastTrigger := h.lastTriggerTime
	h.mtx.Unlock()

	budget := lastTrigger.Add(counterSum(counter, h.config.MaxFBATimeout))
	if now.Add(h.config.MaxTimeSlip).Before(budget) {
		cb(false) // counter-exhaustion guard: this counter outran elapsed wall time
		return
	}

	desired := h.config.DesiredBaseFee
	if v.BaseFee < desired/2 || v.BaseFee > desired*2 {
		cb(false)
		return
	}

	lcl := h.resources.Ledger.GetLastClosedLedgerHeader()
	synced := h.isSynced()

	h.withTxSet(v.TxSetHash, func(txSet *core.TxSet) {
		if !synced {
			cb(true)
			return
		}
		if !txSet.CheckValid(lcl, h.resources.Ledger.ValidateTx) {
			cb(false)
			return
		}
		for _, must := range h.resources.TxQueue.OldestAgeBucketTxs() {
			if !txSet.Contains(must) {
				cb(false)
				return
			}
		}
		cb(true)
	})
}

// withTxSet fetches-or-defers the TxSet named by hash, invoking fn
// exactly once it is available (immediately on a cache hit).
func (h *Herder) withTxSet(hash core.Hash, fn func(*core.TxSet)) {
	if ts, ok := h.txSetFetcher.FetchItem(hash, true); ok {
		fn(ts)
		return
	}
	h.txSetFetcher.WhenAvailable(hash, fn)
}

// RetrieveQuorumSet implements scp.Driver, per CORE SPEC §4.3.
func (h *Herder) RetrieveQuorumSet(nodeID core.NodeID, qSetHash core.Hash, cb func(*core.QuorumSet)) {
	if qs, ok := h.qSetFetcher.FetchItem(qSetHash, true); ok {
		cb(qs)
		return
	}
	h.qSetFetcher.WhenAvailable(qSetHash, cb)
}

// EmitEnvelope implements scp.Driver, per CORE SPEC §4.3: dropped while
// unsynced, otherwise broadcast.
func (h *Herder) EmitEnvelope(env *core.Envelope) {
	if !h.isSynced() {
		return
	}
	h.resources.Overlay.BroadcastEnvelope(env)
}

// ValueExternalized implements scp.Driver, per CORE SPEC §4.3.
func (h *Herder) ValueExternalized(slotIndex uint64, value core.Value) {
	h.mtx.Lock()
	h.cancelBumpTimerLocked()
	h.mtx.Unlock()

	ts, ok := h.txSetFetcher.FetchItem(value.TxSetHash, false)
	if !ok {
		logger.I().Fatalw("externalized value references an unfetched txset",
			"slotIndex", slotIndex, "txSetHash", value.TxSetHash.String())
		return
	}

	h.txSetFetcher.Rotate()

	if err := h.resources.Ledger.ExternalizeValue(ts); err != nil {
		logger.I().Errorw("externalize value failed", "slotIndex", slotIndex, "error", err)
		return
	}

	h.resources.TxQueue.RemoveAndReset(ts.Transactions())
	h.rebroadcastPendingSiblings(ts.Transactions())
}

// BallotDidHearFromQuorum implements scp.Driver, per CORE SPEC §4.4.
func (h *Herder) BallotDidHearFromQuorum(slotIndex uint64, ballot core.Ballot) {
	h.armBumpTimer(slotIndex, ballot)
}

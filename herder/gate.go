// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package herder

import (
	"github.com/engboniface/stellar-core/core"
	"github.com/engboniface/stellar-core/logger"
)

// LedgerClosed is the event the ledger engine raises once it has
// applied an externalized TxSet. Per DESIGN NOTES Open Question (a),
// this handler is always active: it re-arms the trigger timer after
// every close (Start arms it the first time) and is the only path that
// decrements the sync-gate counter.
func (h *Herder) LedgerClosed(header core.LedgerHeader) {
	h.resources.TxQueue.Shift()

	if h.resources.Ledger.GetState() == Synced {
		h.mtx.Lock()
		if h.ledgersToWaitToParticipate > 0 {
			h.ledgersToWaitToParticipate--
			logger.I().Infow("sync gate", "remaining", h.ledgersToWaitToParticipate)
		}
		h.mtx.Unlock()
	}

	h.resetTriggerTimer(header)
}

// RecvFBAEnvelope implements the §4.4 routing rule: drop envelopes
// outside the ledger-validity bracket, buffer future-slot envelopes for
// replay at their trigger, and hand anything else straight to the
// slot-machine.
func (h *Herder) RecvFBAEnvelope(env *core.Envelope, cb func(bool)) {
	if !h.isSynced() {
		// while catching up, accept conservatively without routing
		// through slot-index/close-time checks
		if h.engine != nil {
			h.engine.ReceiveEnvelope(env, cb)
		} else if cb != nil {
			cb(false)
		}
		return
	}

	lcl := h.resources.Ledger.GetLastClosedLedgerHeader()
	bracket := h.config.LedgerValidityBracket
	low := uint64(0)
	if lcl.LedgerSeq > bracket {
		low = lcl.LedgerSeq - bracket
	}
	high := lcl.LedgerSeq + bracket
	if env.SlotIndex < low || env.SlotIndex > high {
		if cb != nil {
			cb(false)
		}
		return
	}

	if env.SlotIndex > lcl.LedgerSeq+1 {
		h.mtx.Lock()
		h.futureEnvelopes[env.SlotIndex] = append(h.futureEnvelopes[env.SlotIndex], bufferedEnvelope{env, cb})
		h.mtx.Unlock()
		return
	}

	if h.engine != nil {
		h.engine.ReceiveEnvelope(env, cb)
	} else if cb != nil {
		cb(false)
	}
}

// replayFutureEnvelopes delivers and discards any envelopes buffered
// for slotIndex, in the order they were received.
func (h *Herder) replayFutureEnvelopes(slotIndex uint64) {
	h.mtx.Lock()
	buffered := h.futureEnvelopes[slotIndex]
	delete(h.futureEnvelopes, slotIndex)
	h.mtx.Unlock()

	if h.engine == nil {
		for _, be := range buffered {
			if be.cb != nil {
				be.cb(false)
			}
		}
		return
	}
	for _, be := range buffered {
		h.engine.ReceiveEnvelope(be.env, be.cb)
	}
}

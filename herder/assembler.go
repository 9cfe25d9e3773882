// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package herder

import (
	"github.com/engboniface/stellar-core/core"
	"github.com/engboniface/stellar-core/logger"
)

// triggerNextLedger implements C5, per CORE SPEC §4.5.
func (h *Herder) triggerNextLedger() {
	now := h.resources.Clock.Now()

	h.mtx.Lock()
	h.lastTriggerTime = now
	h.mtx.Unlock()

	lcl := h.resources.Ledger.GetLastClosedLedgerHeader()
	proposed := h.resources.TxQueue.ToTxSet(lcl)

	h.txSetFetcher.RecvItem(proposed)
	h.resources.Overlay.BroadcastTxSet(proposed)

	nextCloseTime := uint64(now.Unix())
	if lcl.CloseTime+1 > nextCloseTime {
		nextCloseTime = lcl.CloseTime + 1
	}

	value := core.Value{
		TxSetHash: proposed.ContentsHash(),
		CloseTime: nextCloseTime,
		BaseFee:   h.config.DesiredBaseFee,
	}

	h.mtx.Lock()
	h.localValue = value
	h.mtx.Unlock()

	slotIndex := lcl.LedgerSeq + 1
	logger.I().Infow("triggered ledger", "slotIndex", slotIndex, "txCount", proposed.Len())

	if h.engine != nil {
		h.engine.PrepareValue(slotIndex, value, false)
	}

	h.replayFutureEnvelopes(slotIndex)
}

// rebroadcastPendingSiblings implements SUPPLEMENTED FEATURE 4: after
// externalizing, any transaction still pending in an account whose
// queue was just reset gets reflooded once, so siblings of a
// just-committed transaction aren't left to wait out aging alone.
func (h *Herder) rebroadcastPendingSiblings(committed []*core.Transaction) {
	seen := make(map[core.Hash]bool)
	for _, tx := range committed {
		account := tx.SourceAccount()
		if seen[account.Hash()] {
			continue
		}
		seen[account.Hash()] = true

		siblings := h.resources.TxQueue.AccountPendingTxs(account)
		if len(siblings) == 0 {
			continue
		}
		for _, sibling := range siblings {
			h.resources.Overlay.BroadcastTransaction(sibling)
		}
		logger.I().Debugw("rebroadcast pending siblings", "account", account.String(), "count", len(siblings))
	}
}

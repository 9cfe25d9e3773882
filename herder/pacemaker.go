// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package herder

import (
	"math"
	"time"

	"github.com/engboniface/stellar-core/core"
	"github.com/engboniface/stellar-core/logger"
)

// resetTriggerTimer (re)arms the trigger timer to fire
// ExpLedgerTimespan after lcl's close, or immediately if that instant
// has already passed. Per DESIGN NOTES Open Question (a), this is
// always active and is the sole path that keeps ledgers closing.
func (h *Herder) resetTriggerTimer(lcl core.LedgerHeader) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	h.cancelTriggerTimerLocked()

	due := time.Unix(int64(lcl.CloseTime), 0).Add(h.config.ExpLedgerTimespan)
	delay := due.Sub(h.resources.Clock.Now())
	if delay < 0 {
		delay = 0
	}

	h.triggerGen++
	gen := h.triggerGen
	h.triggerTimer = time.AfterFunc(delay, func() { h.onTriggerFire(gen) })
}

func (h *Herder) cancelTriggerTimerLocked() {
	if h.triggerTimer != nil {
		h.triggerTimer.Stop()
		h.triggerTimer = nil
	}
	h.triggerGen++
}

func (h *Herder) onTriggerFire(gen int64) {
	h.mtx.Lock()
	current := h.triggerGen
	h.mtx.Unlock()
	if gen != current {
		return // stale fire: a newer arming (or a cancellation) superseded this one
	}
	h.triggerNextLedger()
}

// armBumpTimer implements ballotDidHearFromQuorum's timer half: delay
// 2^counter seconds, capped so it never panics on large counters.
// Arming cancels any previously-armed bump timer.
func (h *Herder) armBumpTimer(slotIndex uint64, ballot core.Ballot) {
	if !h.isSynced() {
		return
	}
	delay := bumpDelay(ballot.Counter)

	h.mtx.Lock()
	h.cancelBumpTimerLocked()
	h.bumpGen++
	gen := h.bumpGen
	h.bumpTimer = time.AfterFunc(delay, func() { h.onBumpFire(gen, slotIndex) })
	h.mtx.Unlock()
}

func (h *Herder) cancelBumpTimerLocked() {
	if h.bumpTimer != nil {
		h.bumpTimer.Stop()
		h.bumpTimer = nil
	}
	h.bumpGen++
}

func (h *Herder) onBumpFire(gen int64, slotIndex uint64) {
	h.mtx.Lock()
	current := h.bumpGen
	value := h.localValue
	h.mtx.Unlock()
	if gen != current {
		return // cancelled or superseded by a later arming
	}
	logger.I().Infow("bump timer fired", "slotIndex", slotIndex)
	if h.engine != nil {
		h.engine.PrepareValue(slotIndex, value, true)
	}
}

// bumpDelay is 2^counter seconds, used both to arm the real timer and
// to evaluate the counter-exhaustion guard in validateBallot.
func bumpDelay(counter uint32) time.Duration {
	if counter > 30 {
		counter = 30 // avoid overflowing time.Duration for adversarial counters
	}
	return time.Duration(math.Pow(2, float64(counter))) * time.Second
}

// counterSum computes Σ_{i=0..k-1} min(maxTimeout, 2^i), the elapsed
// wall-clock budget a ballot counter of k has consumed.
func counterSum(k uint32, maxTimeout time.Duration) time.Duration {
	var sum time.Duration
	for i := uint32(0); i < k; i++ {
		d := bumpDelay(i)
		if d > maxTimeout {
			d = maxTimeout
		}
		sum += d
	}
	return sum
}

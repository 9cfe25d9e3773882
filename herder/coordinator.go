// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

// Package herder implements the FBA Adapter (C3), Slot Coordinator (C4)
// and Proposal Assembler (C5): the node-side of the slot-machine
// boundary, plus the timers and buffers that drive it.
package herder

import (
	"sync"
	"time"

	"github.com/engboniface/stellar-core/core"
	"github.com/engboniface/stellar-core/fetcher"
	"github.com/engboniface/stellar-core/logger"
	"github.com/engboniface/stellar-core/scp"
)

var _ scp.Driver = (*Herder)(nil)

// Herder coordinates one node's participation in FBA slot agreement.
type Herder struct {
	resources *Resources
	config    Config

	engine scp.Engine

	txSetFetcher *fetcher.TxSetFetcher
	qSetFetcher  *fetcher.QuorumSetFetcher

	mtx                        sync.Mutex
	ledgersToWaitToParticipate int
	lastTriggerTime            time.Time
	localValue                 core.Value

	futureEnvelopes map[uint64][]bufferedEnvelope

	triggerTimer *time.Timer
	triggerGen   int64

	bumpTimer *time.Timer
	bumpGen   int64

	stopCh chan struct{}
}

// New builds a Herder over resources, ready for SetEngine and Start.
func New(resources *Resources, config Config) *Herder {
	h := &Herder{
		resources:                  resources,
		config:                     config,
		ledgersToWaitToParticipate: ledgersToWaitToParticipate,
		futureEnvelopes:            make(map[uint64][]bufferedEnvelope),
	}
	if h.resources.Clock == nil {
		h.resources.Clock = systemClock{}
	}
	if h.resources.Metrics == nil {
		h.resources.Metrics = nopMetrics{}
	}
	qs := config.QuorumSet
	h.qSetFetcher = fetcher.NewQuorumSetFetcher(h.requestQuorumSet, &qs)
	h.txSetFetcher = fetcher.NewTxSetFetcher(h.requestTxSet)
	return h
}

// SetEngine wires the slot-machine that this Herder drives. It must be
// called before Start.
func (h *Herder) SetEngine(engine scp.Engine) {
	h.engine = engine
}

// Resources exposes the Herder's capability bundle so a node's wiring
// step can fill in the Overlay field once the overlay itself depends
// on this Herder (breaking the construction cycle).
func (h *Herder) Resources() *Resources {
	return h.resources
}

// requestTxSet and requestQuorumSet are the fetchers' RequestFunc: they
// broadcast the want and track every peer asked as a candidate source,
// so a later doesntHave from all of them escalates to a rebroadcast.
func (h *Herder) requestTxSet(hash core.Hash) {
	for _, peer := range h.resources.Overlay.RequestTxSet(hash) {
		h.txSetFetcher.TrackPeer(hash, peer)
	}
}

func (h *Herder) requestQuorumSet(hash core.Hash) {
	for _, peer := range h.resources.Overlay.RequestQuorumSet(hash) {
		h.qSetFetcher.TrackPeer(hash, peer)
	}
}

// Start arms the trigger timer against the current last-closed-ledger
// header.
func (h *Herder) Start() {
	h.mtx.Lock()
	if h.stopCh != nil {
		h.mtx.Unlock()
		return
	}
	h.stopCh = make(chan struct{})
	h.mtx.Unlock()

	lcl := h.resources.Ledger.GetLastClosedLedgerHeader()
	h.resetTriggerTimer(lcl)
	logger.I().Infow("started herder", "lastClosedLedger", lcl.LedgerSeq)
}

// Stop cancels both timers. It is idempotent.
func (h *Herder) Stop() {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	if h.stopCh == nil {
		return
	}
	close(h.stopCh)
	h.stopCh = nil
	h.cancelTriggerTimerLocked()
	h.cancelBumpTimerLocked()
}

// Bootstrap implements SUPPLEMENTED FEATURE 3: when the node is
// starting a brand-new network it skips the sync gate entirely and
// triggers the first ledger immediately.
func (h *Herder) Bootstrap() {
	h.mtx.Lock()
	h.ledgersToWaitToParticipate = 0
	h.mtx.Unlock()
	logger.I().Infow("bootstrapping new network")
	h.triggerNextLedger()
}

func (h *Herder) isSynced() bool {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return h.ledgersToWaitToParticipate == 0
}

type bufferedEnvelope struct {
	env *core.Envelope
	cb  func(bool)
}

// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package herder

import (
	"time"

	"github.com/engboniface/stellar-core/core"
	"github.com/engboniface/stellar-core/txpool"
)

// LedgerEngineState distinguishes whether the node is caught up with the
// network, per CORE SPEC §6 "getState() (at least distinguishing SYNCED)".
type LedgerEngineState int

const (
	Unsynced LedgerEngineState = iota
	Synced
)

// Ledger is the external ledger engine collaborator (CORE SPEC §1, §6).
type Ledger interface {
	GetLastClosedLedgerHeader() core.LedgerHeader
	GetTxFee() int64
	GetState() LedgerEngineState
	ExternalizeValue(txSet *core.TxSet) error

	// ValidateTx checks a single transaction against a ledger snapshot;
	// it is the TxValidator the FBA Adapter threads through TxSet.CheckValid.
	ValidateTx(ledger core.LedgerHeader, tx *core.Transaction) bool

	NetworkLedgerOpsCap() uint32
	AccountBalance(account core.NodeID) int64
	OnLedgerSeqNum(account core.NodeID) uint64
}

// Overlay is the external network collaborator (CORE SPEC §1, §6).
// RequestTxSet/RequestQuorumSet return the peers the want-request was
// sent to, so the fetcher can track them as candidates for doesntHave
// escalation.
type Overlay interface {
	BroadcastEnvelope(env *core.Envelope)
	BroadcastTxSet(ts *core.TxSet)
	BroadcastTransaction(tx *core.Transaction)
	RequestTxSet(hash core.Hash) []core.NodeID
	RequestQuorumSet(hash core.Hash) []core.NodeID
}

// TxQueue is the subset of txpool.TxPool the Herder depends on, narrowed
// for mockability in tests (matches the teacher's consensus.TxPool style).
type TxQueue interface {
	TryAdd(tx *core.Transaction) txpool.AddResult
	RemoveAndReset(txs []*core.Transaction)
	Ban(txs []*core.Transaction)
	Shift()
	ToTxSet(lcl core.LedgerHeader) *core.TxSet
	GetAccountTransactionQueueInfo(account core.NodeID) txpool.AccountTxQueueInfo
	AccountPendingTxs(account core.NodeID) []*core.Transaction
	OldestAgeBucketTxs() []*core.Transaction
}

// Clock is the external time source, abstracted so tests can drive a
// virtual clock instead of wall time (CORE SPEC §5 "virtual clock").
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Metrics records coordinator-level counters. The default nopMetrics
// discards everything; a real deployment supplies its own sink.
type Metrics interface {
	IncCounter(name string)
}

type nopMetrics struct{}

func (nopMetrics) IncCounter(string) {}

// Resources bundles every external collaborator the Herder needs,
// replacing a cyclic back-reference to an application object with an
// explicit capability set assembled at construction time.
type Resources struct {
	Ledger  Ledger
	Overlay Overlay
	TxQueue TxQueue
	Clock   Clock
	Metrics Metrics
	Signer  *core.PrivateKey
}

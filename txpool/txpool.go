// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

// Package txpool implements the per-account pending transaction queue
// (component C2): admission, banning, aging, and TxSet construction for
// the next proposal.
package txpool

import (
	"sync"

	"github.com/engboniface/stellar-core/core"
)

// AddResult is the outcome of TryAdd, modeled as an explicit sum type
// rather than an error so that callers never need to string-match.
type AddResult int

const (
	Pending AddResult = iota
	Duplicate
	Error
	TryAgainLater
)

func (r AddResult) String() string {
	switch r {
	case Pending:
		return "PENDING"
	case Duplicate:
		return "DUPLICATE"
	case Error:
		return "ERROR"
	case TryAgainLater:
		return "TRY_AGAIN_LATER"
	default:
		return "UNKNOWN"
	}
}

// LedgerState is the narrow view of the external ledger engine the pool
// needs to admit and expire transactions.
type LedgerState interface {
	// OnLedgerSeqNum is the sequence number of an account as committed on
	// the last closed ledger (i.e. the next valid seqNum is this + 1).
	OnLedgerSeqNum(account core.NodeID) uint64
	// AccountBalance is the spendable balance available to cover fees.
	AccountBalance(account core.NodeID) int64
	// NetworkLedgerOpsCap is the protocol-wide cap on operations per ledger.
	NetworkLedgerOpsCap() uint32
}

// Config configures queue lifetimes and admission economics.
type Config struct {
	// PendingDepth is the number of ledgers an account queue may sit
	// unused before being banned wholesale.
	PendingDepth int
	// BanDepth is the number of ledgers a ban is held before lifting.
	BanDepth int
	// PoolLedgerMultiplier bounds the pool to this many ledgers' worth
	// of operations: maxQueueSizeOps = PoolLedgerMultiplier * networkLedgerOpsCap.
	PoolLedgerMultiplier int
	// FeeMultiplier is the factor a replacement tx's fee must reach: it
	// displaces the tx at the same seqNum only if its fee is at least
	// FeeMultiplier times the displaced tx's fee.
	FeeMultiplier int64
}

// DefaultConfig matches the values documented in the original design.
var DefaultConfig = Config{
	PendingDepth:         5,
	BanDepth:             10,
	PoolLedgerMultiplier: 2,
	FeeMultiplier:        10,
}

// TxPool is the per-account pending transaction queue described by C2.
type TxPool struct {
	cfg    Config
	ledger LedgerState

	mtx      sync.RWMutex
	accounts map[core.Hash]*AccountTxQueue
	banned   *bannedDeque

	queueSizeOps uint64
}

// New creates a TxPool backed by ledger.
func New(cfg Config, ledger LedgerState) *TxPool {
	return &TxPool{
		cfg:      cfg,
		ledger:   ledger,
		accounts: make(map[core.Hash]*AccountTxQueue),
		banned:   newBannedDeque(cfg.BanDepth),
	}
}

// AccountTxQueueInfo is the externally-visible summary of one account's
// queue state.
type AccountTxQueueInfo struct {
	MaxSeq       uint64
	TotalFees    int64
	QueueSizeOps uint64
	Age          int
}

// GetAccountTransactionQueueInfo returns the current queue state for
// account. If the account has no pending queue, every field is zero
// except MaxSeq, which is the account's on-ledger sequence number.
func (p *TxPool) GetAccountTransactionQueueInfo(account core.NodeID) AccountTxQueueInfo {
	p.mtx.RLock()
	defer p.mtx.RUnlock()
	q := p.accounts[account.Hash()]
	if q == nil {
		return AccountTxQueueInfo{MaxSeq: p.ledger.OnLedgerSeqNum(account)}
	}
	return AccountTxQueueInfo{
		MaxSeq:       q.maxSeq(),
		TotalFees:    q.totalFees,
		QueueSizeOps: q.queueSizeOps,
		Age:          q.age,
	}
}

// AccountPendingTxs returns the current pending transactions for
// account, in queue order; nil if the account has no pending queue.
func (p *TxPool) AccountPendingTxs(account core.NodeID) []*core.Transaction {
	p.mtx.RLock()
	defer p.mtx.RUnlock()
	q := p.accounts[account.Hash()]
	if q == nil {
		return nil
	}
	out := make([]*core.Transaction, len(q.txs))
	copy(out, q.txs)
	return out
}

// QueueSizeOps is the global operation count currently queued (mQueueSizeOps).
func (p *TxPool) QueueSizeOps() uint64 {
	p.mtx.RLock()
	defer p.mtx.RUnlock()
	return p.queueSizeOps
}

// IsBanned reports whether hash is currently in any banned bucket.
func (p *TxPool) IsBanned(hash core.Hash) bool {
	p.mtx.RLock()
	defer p.mtx.RUnlock()
	return p.banned.contains(hash)
}

// CountBanned returns the number of hashes in banned bucket index.
func (p *TxPool) CountBanned(index int) int {
	p.mtx.RLock()
	defer p.mtx.RUnlock()
	return p.banned.count(index)
}

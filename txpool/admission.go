// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package txpool

import "github.com/engboniface/stellar-core/core"

// TryAdd attempts to admit tx into the pending pool, per the admission
// rules of C2 (banned check, duplicate/replace check, seqNum contiguity,
// balance check, global size cap).
func (p *TxPool) TryAdd(tx *core.Transaction) AddResult {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	hash := tx.FullHash()
	if p.banned.contains(hash) {
		return Error
	}

	key := tx.SourceAccount().Hash()
	q, existing := p.accounts[key]

	if existing {
		if i := q.findByHash(hash); i >= 0 {
			return Duplicate
		}
		if i := q.findBySeq(tx.SeqNum()); i >= 0 {
			old := q.txs[i]
			if tx.FeeBid() < p.cfg.FeeMultiplier*old.FeeBid() {
				return TryAgainLater
			}
			p.queueSizeOps -= q.queueSizeOps
			q.replaceAt(i, tx)
			p.queueSizeOps += q.queueSizeOps
			q.age = 0
			return Pending
		}
	}

	onLedger := p.ledger.OnLedgerSeqNum(tx.SourceAccount())
	expected := onLedger + 1
	if existing && q.maxSeq() > onLedger {
		expected = q.maxSeq() + 1
	}
	if tx.SeqNum() != expected {
		return Error
	}

	prevTotal := int64(0)
	if existing {
		prevTotal = q.totalFees
	}
	if p.ledger.AccountBalance(tx.SourceAccount()) < prevTotal+tx.FeeBid() {
		return Error
	}

	if !existing {
		q = newAccountTxQueue()
		p.accounts[key] = q
	}
	q.append(tx)
	q.age = 0
	p.queueSizeOps += uint64(tx.NumOperations())

	if ok := p.enforceGlobalCap(key, hash); !ok {
		// roll back our own insertion: the tx itself was the one evicted
		return TryAgainLater
	}
	return Pending
}

func (p *TxPool) maxQueueSizeOps() uint64 {
	return uint64(p.cfg.PoolLedgerMultiplier) * uint64(p.ledger.NetworkLedgerOpsCap())
}

// enforceGlobalCap evicts lowest fee-per-op account-queue tails until the
// pool fits within maxQueueSizeOps. It returns false if doing so would
// require evicting the just-admitted (ownerKey, txHash) itself, in which
// case it undoes every eviction it performed and the caller must treat
// the admission as TRY_AGAIN_LATER.
func (p *TxPool) enforceGlobalCap(ownerKey core.Hash, txHash core.Hash) bool {
	max := p.maxQueueSizeOps()
	type evicted struct {
		key core.Hash
		tx  *core.Transaction
	}
	var history []evicted

	for p.queueSizeOps > max {
		worstKey, worst := p.lowestFeePerOpAccount()
		if worst == nil || worst.empty() {
			break // nothing left to evict; cap unreachable (shouldn't happen)
		}
		evictedTx := worst.txs[len(worst.txs)-1]
		worst.dropFrom(len(worst.txs) - 1)
		p.queueSizeOps -= uint64(evictedTx.NumOperations())
		if worst.empty() {
			delete(p.accounts, worstKey)
		}

		if worstKey == ownerKey && evictedTx.FullHash() == txHash {
			// the incoming tx itself is the one that must go: restore
			// every other eviction we performed, but leave this one out.
			for i := len(history) - 1; i >= 0; i-- {
				e := history[i]
				q := p.accounts[e.key]
				if q == nil {
					q = newAccountTxQueue()
					p.accounts[e.key] = q
				}
				q.append(e.tx)
				p.queueSizeOps += uint64(e.tx.NumOperations())
			}
			return false
		}
		history = append(history, evicted{worstKey, evictedTx})
	}
	return true
}

func (p *TxPool) lowestFeePerOpAccount() (core.Hash, *AccountTxQueue) {
	var (
		bestKey core.Hash
		best    *AccountTxQueue
		bestFPO = -1.0
	)
	for key, q := range p.accounts {
		if q.empty() {
			continue
		}
		fpo := q.feePerOp()
		if best == nil || fpo < bestFPO {
			best, bestKey, bestFPO = q, key, fpo
		}
	}
	return bestKey, best
}

// RemoveAndReset drops each tx (and any older-seq ancestors in the same
// account queue) from the pool, typically called after externalization.
func (p *TxPool) RemoveAndReset(txs []*core.Transaction) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	for _, tx := range txs {
		key := tx.SourceAccount().Hash()
		q := p.accounts[key]
		if q == nil {
			continue
		}
		i := q.findBySeq(tx.SeqNum())
		if i < 0 {
			continue
		}
		dropped := q.dropThrough(i)
		for _, d := range dropped {
			p.queueSizeOps -= uint64(d.NumOperations())
		}
		q.age = 0
		if q.empty() {
			delete(p.accounts, key)
		}
	}
}

// Ban extracts each tx (if resident) and all its descendants from the
// pool, moving their hashes into banned bucket 0. Banning a
// non-resident hash simply records it.
func (p *TxPool) Ban(txs []*core.Transaction) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	for _, tx := range txs {
		key := tx.SourceAccount().Hash()
		q := p.accounts[key]
		if q == nil {
			p.banned.ban(tx.FullHash())
			continue
		}
		i := q.findByHash(tx.FullHash())
		if i < 0 {
			p.banned.ban(tx.FullHash())
			continue
		}
		dropped := q.dropFrom(i)
		for _, d := range dropped {
			p.queueSizeOps -= uint64(d.NumOperations())
			p.banned.ban(d.FullHash())
		}
		if q.empty() {
			delete(p.accounts, key)
		}
	}
}

// Shift is invoked once per ledger close: it ages every account queue,
// banning any whose age reaches PendingDepth, and rotates the banned
// deque so buckets older than BanDepth become admissible again.
func (p *TxPool) Shift() {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	p.banned.shift()

	for key, q := range p.accounts {
		q.age++
		if q.age == p.cfg.PendingDepth {
			for _, tx := range q.txs {
				p.banned.ban(tx.FullHash())
			}
			p.queueSizeOps -= q.queueSizeOps
			delete(p.accounts, key)
		}
	}
}

// ToTxSet flattens every pending account queue into one TxSet proposed
// against lcl.
func (p *TxPool) ToTxSet(lcl core.LedgerHeader) *core.TxSet {
	p.mtx.RLock()
	defer p.mtx.RUnlock()

	txs := make([]*core.Transaction, 0, p.queueSizeOps)
	for _, q := range p.accounts {
		txs = append(txs, q.txs...)
	}
	return core.NewTxSet(lcl.Hash, txs)
}

// OldestAgeBucketTxs returns every pending transaction belonging to an
// account queue whose age equals the current maximum age across all
// queues (the "oldest age bucket" referenced by the liveness check in
// validateBallot). An empty pool returns nil.
func (p *TxPool) OldestAgeBucketTxs() []*core.Transaction {
	p.mtx.RLock()
	defer p.mtx.RUnlock()

	maxAge := -1
	for _, q := range p.accounts {
		if q.age > maxAge {
			maxAge = q.age
		}
	}
	if maxAge < 0 {
		return nil
	}
	var out []*core.Transaction
	for _, q := range p.accounts {
		if q.age == maxAge {
			out = append(out, q.txs...)
		}
	}
	return out
}

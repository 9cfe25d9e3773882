// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package txpool

import "github.com/engboniface/stellar-core/core"

// AccountTxQueue is the ordered, strictly-increasing-seqNum sequence of
// transactions pending for one account.
type AccountTxQueue struct {
	txs          []*core.Transaction
	totalFees    int64
	queueSizeOps uint64
	age          int
}

func newAccountTxQueue() *AccountTxQueue {
	return &AccountTxQueue{}
}

// maxSeq is the seqNum of the queue tail, computed in O(1).
func (q *AccountTxQueue) maxSeq() uint64 {
	if len(q.txs) == 0 {
		return 0
	}
	return q.txs[len(q.txs)-1].SeqNum()
}

func (q *AccountTxQueue) empty() bool { return len(q.txs) == 0 }

// append adds tx to the tail and updates the cached totals.
func (q *AccountTxQueue) append(tx *core.Transaction) {
	q.txs = append(q.txs, tx)
	q.totalFees += tx.FeeBid()
	q.queueSizeOps += uint64(tx.NumOperations())
}

// findBySeq returns the index of the tx with the given seqNum, or -1.
func (q *AccountTxQueue) findBySeq(seqNum uint64) int {
	for i, tx := range q.txs {
		if tx.SeqNum() == seqNum {
			return i
		}
	}
	return -1
}

// findByHash returns the index of the tx with the given hash, or -1.
func (q *AccountTxQueue) findByHash(hash core.Hash) int {
	for i, tx := range q.txs {
		if tx.FullHash() == hash {
			return i
		}
	}
	return -1
}

// replaceAt swaps the transaction at index i for tx, fixing the caches.
func (q *AccountTxQueue) replaceAt(i int, tx *core.Transaction) {
	old := q.txs[i]
	q.totalFees += tx.FeeBid() - old.FeeBid()
	q.queueSizeOps += uint64(tx.NumOperations()) - uint64(old.NumOperations())
	q.txs[i] = tx
}

// dropFrom removes every transaction from index i to the tail (inclusive),
// returning the dropped transactions and fixing the caches.
func (q *AccountTxQueue) dropFrom(i int) []*core.Transaction {
	if i < 0 || i >= len(q.txs) {
		return nil
	}
	dropped := q.txs[i:]
	for _, tx := range dropped {
		q.totalFees -= tx.FeeBid()
		q.queueSizeOps -= uint64(tx.NumOperations())
	}
	q.txs = q.txs[:i]
	return dropped
}

// dropThrough removes every transaction up to and including index i
// (the tx itself and any older-seq ancestors), returning the dropped set.
func (q *AccountTxQueue) dropThrough(i int) []*core.Transaction {
	if i < 0 || i >= len(q.txs) {
		return nil
	}
	dropped := q.txs[:i+1]
	for _, tx := range dropped {
		q.totalFees -= tx.FeeBid()
		q.queueSizeOps -= uint64(tx.NumOperations())
	}
	q.txs = q.txs[i+1:]
	return dropped
}

// feePerOp is used to rank account queues for eviction under the global cap.
func (q *AccountTxQueue) feePerOp() float64 {
	if q.queueSizeOps == 0 {
		return 0
	}
	return float64(q.totalFees) / float64(q.queueSizeOps)
}

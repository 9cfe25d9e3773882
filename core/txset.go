// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package core

import (
	"bytes"
	"sort"
)

// LedgerHeader is an immutable snapshot reported by the ledger engine.
type LedgerHeader struct {
	LedgerSeq uint64
	CloseTime uint64
	Hash      Hash
}

// TxValidator checks a single transaction's validity against a ledger
// snapshot. It is supplied by the external ledger collaborator.
type TxValidator func(ledger LedgerHeader, tx *Transaction) bool

// TxSet is an unordered multiset of Transactions plus the ledger hash
// they were proposed against.
type TxSet struct {
	transactions       []*Transaction
	previousLedgerHash Hash
}

// NewTxSet builds a TxSet from transactions (deduplicated by FullHash).
func NewTxSet(previousLedgerHash Hash, txs []*Transaction) *TxSet {
	seen := make(map[Hash]bool, len(txs))
	out := make([]*Transaction, 0, len(txs))
	for _, tx := range txs {
		if seen[tx.FullHash()] {
			continue
		}
		seen[tx.FullHash()] = true
		out = append(out, tx)
	}
	return &TxSet{transactions: out, previousLedgerHash: previousLedgerHash}
}

func (ts *TxSet) Transactions() []*Transaction { return ts.transactions }
func (ts *TxSet) PreviousLedgerHash() Hash      { return ts.previousLedgerHash }
func (ts *TxSet) Len() int                      { return len(ts.transactions) }

func (ts *TxSet) sorted() []*Transaction {
	out := make([]*Transaction, len(ts.transactions))
	copy(out, ts.transactions)
	sort.Slice(out, func(i, j int) bool { return out[i].FullHash().Less(out[j].FullHash()) })
	return out
}

// ContentsHash is the deterministic hash of the canonical serialization:
// transactions sorted by FullHash, preceded by the previous ledger hash.
func (ts *TxSet) ContentsHash() Hash {
	b, _ := ts.Marshal()
	return HashBytes(b)
}

// Marshal encodes the TxSet canonically (sorted by FullHash).
func (ts *TxSet) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(ts.previousLedgerHash.Bytes())
	putUint32(&buf, uint32(len(ts.transactions)))
	for _, tx := range ts.sorted() {
		txb, err := tx.Marshal()
		if err != nil {
			return nil, err
		}
		putBytes(&buf, txb)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a TxSet previously produced by Marshal.
func (ts *TxSet) Unmarshal(b []byte) error {
	if len(b) < HashSize {
		return errTruncated("txset previous ledger hash")
	}
	prev, ok := DecodeHash(b[:HashSize])
	if !ok {
		return errTruncated("txset previous ledger hash")
	}
	rest := b[HashSize:]
	n, rest, ok := readUint32(rest)
	if !ok {
		return errTruncated("txset count")
	}
	txs := make([]*Transaction, 0, n)
	for i := uint32(0); i < n; i++ {
		txb, next, ok := readBytes(rest)
		if !ok {
			return errTruncated("txset entry")
		}
		rest = next
		tx, err := UnmarshalTransaction(txb)
		if err != nil {
			return err
		}
		txs = append(txs, tx)
	}
	ts.previousLedgerHash = prev
	ts.transactions = txs
	return nil
}

// UnmarshalTxSet decodes a TxSet from bytes.
func UnmarshalTxSet(b []byte) (*TxSet, error) {
	ts := new(TxSet)
	if err := ts.Unmarshal(b); err != nil {
		return nil, err
	}
	return ts, nil
}

// CheckValid reports whether every transaction in the set is valid
// against ledger and the previous-ledger-hash linkage holds.
func (ts *TxSet) CheckValid(ledger LedgerHeader, validate TxValidator) bool {
	if ts.previousLedgerHash != ledger.Hash {
		return false
	}
	for _, tx := range ts.transactions {
		if !validate(ledger, tx) {
			return false
		}
	}
	return true
}

// Contains reports whether tx (by FullHash) is present in the set.
func (ts *TxSet) Contains(tx *Transaction) bool {
	for _, t := range ts.transactions {
		if t.FullHash() == tx.FullHash() {
			return true
		}
	}
	return false
}

func errTruncated(what string) error {
	return &truncatedError{what}
}

type truncatedError struct{ what string }

func (e *truncatedError) Error() string { return "core: truncated " + e.what }

// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package storage

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/engboniface/stellar-core/core"
	"github.com/engboniface/stellar-core/herder"
)

// Config configures the ledger-state economics Storage enforces.
type Config struct {
	BaseFee       int64
	NetworkOpsCap uint32
}

// DefaultConfig matches the values documented in the original design.
var DefaultConfig = Config{
	BaseFee:       100,
	NetworkOpsCap: 1000,
}

// AccountState is an account's committed balance and sequence number.
type AccountState struct {
	Balance int64
	SeqNum  uint64
}

func (a AccountState) marshal() []byte {
	b := make([]byte, 16)
	binary.BigEndian.PutUint64(b[:8], uint64(a.Balance))
	binary.BigEndian.PutUint64(b[8:], a.SeqNum)
	return b
}

func (a *AccountState) unmarshal(b []byte) bool {
	if len(b) != 16 {
		return false
	}
	a.Balance = int64(binary.BigEndian.Uint64(b[:8]))
	a.SeqNum = binary.BigEndian.Uint64(b[8:])
	return true
}

func marshalLedgerHeader(h core.LedgerHeader) []byte {
	b := make([]byte, 16+core.HashSize)
	binary.BigEndian.PutUint64(b[:8], h.LedgerSeq)
	binary.BigEndian.PutUint64(b[8:16], h.CloseTime)
	copy(b[16:], h.Hash.Bytes())
	return b
}

func unmarshalLedgerHeader(b []byte) (core.LedgerHeader, bool) {
	if len(b) != 16+core.HashSize {
		return core.LedgerHeader{}, false
	}
	hash, ok := core.DecodeHash(b[16:])
	if !ok {
		return core.LedgerHeader{}, false
	}
	return core.LedgerHeader{
		LedgerSeq: binary.BigEndian.Uint64(b[:8]),
		CloseTime: binary.BigEndian.Uint64(b[8:16]),
		Hash:      hash,
	}, true
}

func ledgerHeaderKey(seq uint64) []byte {
	b := make([]byte, 9)
	b[0] = colLedgerHeaderBySeq
	binary.BigEndian.PutUint64(b[1:], seq)
	return b
}

func accountKey(account core.NodeID) []byte {
	return concatBytes([]byte{colAccountByID}, account.Bytes())
}

// Storage is the badger-backed Ledger collaborator: it answers every
// query herder.Ledger needs and applies externalized TxSets.
type Storage struct {
	db  *badger.DB
	cfg Config

	mu    sync.RWMutex
	state herder.LedgerEngineState
}

// New wraps db as a Storage, seeding a genesis LedgerHeader if the
// store is empty.
func New(db *badger.DB, cfg Config) *Storage {
	s := &Storage{db: db, cfg: cfg, state: herder.Unsynced}
	if !hasKey(db, []byte{colLastClosedSeq}) {
		s.setLastClosedLedgerHeader(core.LedgerHeader{})
	}
	return s
}

// SetState marks the ledger as caught up (or not) with the network.
// A new Storage starts Unsynced; the state changes only through this
// method, which the node wiring does not call.
func (s *Storage) SetState(state herder.LedgerEngineState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

func (s *Storage) GetState() herder.LedgerEngineState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Storage) GetTxFee() int64 { return s.cfg.BaseFee }

func (s *Storage) NetworkLedgerOpsCap() uint32 { return s.cfg.NetworkOpsCap }

// GetLastClosedLedgerHeader returns the most recently externalized
// header, or the zero header before genesis.
func (s *Storage) GetLastClosedLedgerHeader() core.LedgerHeader {
	seqB, err := getValue(s.db, []byte{colLastClosedSeq})
	if err != nil {
		return core.LedgerHeader{}
	}
	seq := binary.BigEndian.Uint64(seqB)
	b, err := getValue(s.db, ledgerHeaderKey(seq))
	if err != nil {
		return core.LedgerHeader{}
	}
	header, ok := unmarshalLedgerHeader(b)
	if !ok {
		return core.LedgerHeader{}
	}
	return header
}

func (s *Storage) setLastClosedLedgerHeader(h core.LedgerHeader) error {
	return updateDB(s.db, []updateFunc{
		func(txn setter) error { return txn.Set(ledgerHeaderKey(h.LedgerSeq), marshalLedgerHeader(h)) },
		func(txn setter) error {
			seqB := make([]byte, 8)
			binary.BigEndian.PutUint64(seqB, h.LedgerSeq)
			return txn.Set([]byte{colLastClosedSeq}, seqB)
		},
	})
}

// AccountBalance is the spendable balance available to cover fees; a
// never-seen account has zero balance.
func (s *Storage) AccountBalance(account core.NodeID) int64 {
	return s.accountState(account).Balance
}

// OnLedgerSeqNum is the committed sequence number of account; a
// never-seen account is at sequence 0.
func (s *Storage) OnLedgerSeqNum(account core.NodeID) uint64 {
	return s.accountState(account).SeqNum
}

func (s *Storage) accountState(account core.NodeID) AccountState {
	b, err := getValue(s.db, accountKey(account))
	if err != nil {
		return AccountState{}
	}
	var state AccountState
	state.unmarshal(b)
	return state
}

// CreditAccount sets up an account's initial balance, e.g. from a
// genesis allocation.
func (s *Storage) CreditAccount(account core.NodeID, amount int64) error {
	state := s.accountState(account)
	state.Balance += amount
	return updateDB(s.db, []updateFunc{
		func(txn setter) error { return txn.Set(accountKey(account), state.marshal()) },
	})
}

// ValidateTx checks seqNum contiguity and fee affordability against
// ledger's committed account state. It is the TxValidator threaded
// through TxSet.CheckValid.
func (s *Storage) ValidateTx(ledger core.LedgerHeader, tx *core.Transaction) bool {
	if tx.Validate() != nil {
		return false
	}
	state := s.accountState(tx.SourceAccount())
	if tx.SeqNum() != state.SeqNum+1 {
		return false
	}
	fee := s.cfg.BaseFee * int64(tx.NumOperations())
	return state.Balance >= fee+tx.FeeBid()
}

// ExternalizeValue applies every transaction in ts against the
// committed account state and advances the last-closed-ledger header.
func (s *Storage) ExternalizeValue(ts *core.TxSet) error {
	lcl := s.GetLastClosedLedgerHeader()
	updates := make(map[core.Hash]AccountState)
	for _, tx := range ts.Transactions() {
		hash := tx.SourceAccount().Hash()
		state, ok := updates[hash]
		if !ok {
			state = s.accountState(tx.SourceAccount())
		}
		fee := s.cfg.BaseFee*int64(tx.NumOperations()) + tx.FeeBid()
		state.Balance -= fee
		state.SeqNum = tx.SeqNum()
		updates[hash] = state
	}

	fns := make([]updateFunc, 0, len(updates))
	accounts := make(map[core.Hash]core.NodeID, len(updates))
	for _, tx := range ts.Transactions() {
		accounts[tx.SourceAccount().Hash()] = tx.SourceAccount()
	}
	for hash, st := range updates {
		account := accounts[hash]
		state := st
		fns = append(fns, func(txn setter) error { return txn.Set(accountKey(account), state.marshal()) })
	}
	if err := updateDB(s.db, fns); err != nil {
		return err
	}

	next := core.LedgerHeader{
		LedgerSeq: lcl.LedgerSeq + 1,
		CloseTime: uint64(time.Now().Unix()),
		Hash:      ts.ContentsHash(),
	}
	if lcl.CloseTime >= next.CloseTime {
		next.CloseTime = lcl.CloseTime + 1
	}
	return s.setLastClosedLedgerHeader(next)
}

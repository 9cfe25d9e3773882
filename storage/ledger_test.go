// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package storage

import (
	"testing"

	"github.com/dgraph-io/badger/v3"
	"github.com/engboniface/stellar-core/core"
	"github.com/engboniface/stellar-core/herder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, DefaultConfig)
}

func TestStorage_GenesisLedgerHeader(t *testing.T) {
	s := newTestStorage(t)
	h := s.GetLastClosedLedgerHeader()
	assert.Equal(t, uint64(0), h.LedgerSeq)
}

func TestStorage_CreditAndBalance(t *testing.T) {
	s := newTestStorage(t)
	priv := core.GenerateKey(nil)

	assert.Equal(t, int64(0), s.AccountBalance(priv.PublicKey()))
	require.NoError(t, s.CreditAccount(priv.PublicKey(), 1000))
	assert.Equal(t, int64(1000), s.AccountBalance(priv.PublicKey()))
}

func TestStorage_ValidateTx(t *testing.T) {
	s := newTestStorage(t)
	priv := core.GenerateKey(nil)
	require.NoError(t, s.CreditAccount(priv.PublicKey(), 1000))

	lcl := s.GetLastClosedLedgerHeader()
	tx := core.NewTransaction(priv, 1, 10, 1, nil)
	assert.True(t, s.ValidateTx(lcl, tx))

	badSeq := core.NewTransaction(priv, 5, 10, 1, nil)
	assert.False(t, s.ValidateTx(lcl, badSeq))

	tooExpensive := core.NewTransaction(priv, 1, 100000, 1, nil)
	assert.False(t, s.ValidateTx(lcl, tooExpensive))
}

func TestStorage_ExternalizeValueAdvancesLedgerAndDebitsFees(t *testing.T) {
	s := newTestStorage(t)
	priv := core.GenerateKey(nil)
	require.NoError(t, s.CreditAccount(priv.PublicKey(), 1000))

	lcl := s.GetLastClosedLedgerHeader()
	tx := core.NewTransaction(priv, 1, 10, 1, nil)
	ts := core.NewTxSet(lcl.Hash, []*core.Transaction{tx})

	require.NoError(t, s.ExternalizeValue(ts))

	next := s.GetLastClosedLedgerHeader()
	assert.Equal(t, uint64(1), next.LedgerSeq)
	assert.Equal(t, uint64(1), s.OnLedgerSeqNum(priv.PublicKey()))
	assert.Equal(t, int64(1000-s.cfg.BaseFee-10), s.AccountBalance(priv.PublicKey()))
}

func TestStorage_SyncState(t *testing.T) {
	s := newTestStorage(t)
	assert.Equal(t, herder.Unsynced, s.GetState())
	s.SetState(herder.Synced)
	assert.Equal(t, herder.Synced, s.GetState())
}

// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package txpool

import (
	"testing"

	"github.com/engboniface/stellar-core/core"
	"github.com/stretchr/testify/assert"
)

type fakeLedger struct {
	onLedgerSeq map[core.Hash]uint64
	balances    map[core.Hash]int64
	opsCap      uint32
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		onLedgerSeq: make(map[core.Hash]uint64),
		balances:    make(map[core.Hash]int64),
		opsCap:      1000,
	}
}

func (l *fakeLedger) OnLedgerSeqNum(account core.NodeID) uint64 { return l.onLedgerSeq[account.Hash()] }
func (l *fakeLedger) AccountBalance(account core.NodeID) int64  { return l.balances[account.Hash()] }
func (l *fakeLedger) NetworkLedgerOpsCap() uint32               { return l.opsCap }

func newTx(t *testing.T, src *core.PrivateKey, seq uint64, fee int64, ops uint32) *core.Transaction {
	t.Helper()
	return core.NewTransaction(src, seq, fee, ops, []byte("payload"))
}

func TestTryAdd_Idempotence(t *testing.T) {
	assert := assert.New(t)
	ledger := newFakeLedger()
	key := core.GenerateKey(nil)
	ledger.balances[key.PublicKey().Hash()] = 1_000_000

	pool := New(DefaultConfig, ledger)
	tx := newTx(t, key, 1, 100, 1)

	assert.Equal(Pending, pool.TryAdd(tx))
	info1 := pool.GetAccountTransactionQueueInfo(key.PublicKey())

	assert.Equal(Duplicate, pool.TryAdd(tx))
	info2 := pool.GetAccountTransactionQueueInfo(key.PublicKey())

	assert.Equal(info1, info2)
}

func TestTryAdd_ReplaceRequiresFeeMultiplier(t *testing.T) {
	assert := assert.New(t)
	ledger := newFakeLedger()
	key := core.GenerateKey(nil)
	ledger.balances[key.PublicKey().Hash()] = 1_000_000

	pool := New(DefaultConfig, ledger)
	a := newTx(t, key, 5, 100, 1)
	assert.Equal(Pending, pool.TryAdd(a))

	weak := newTx(t, key, 5, 500, 1) // < 10x
	assert.Equal(TryAgainLater, pool.TryAdd(weak))

	strong := newTx(t, key, 5, 1000, 1) // exactly 10x: fee=1000 replaces fee=100
	assert.Equal(Pending, pool.TryAdd(strong))

	info := pool.GetAccountTransactionQueueInfo(key.PublicKey())
	assert.EqualValues(5, info.MaxSeq)
	assert.EqualValues(1000, info.TotalFees)
	assert.Equal(0, info.Age)
}

func TestTryAdd_SeqNumGap(t *testing.T) {
	assert := assert.New(t)
	ledger := newFakeLedger()
	key := core.GenerateKey(nil)
	ledger.balances[key.PublicKey().Hash()] = 1_000_000

	pool := New(DefaultConfig, ledger)
	tx := newTx(t, key, 3, 100, 1) // onLedger=0, expected seq=1
	assert.Equal(Error, pool.TryAdd(tx))
}

func TestTryAdd_InsufficientBalance(t *testing.T) {
	assert := assert.New(t)
	ledger := newFakeLedger()
	key := core.GenerateKey(nil)
	ledger.balances[key.PublicKey().Hash()] = 50

	pool := New(DefaultConfig, ledger)
	tx := newTx(t, key, 1, 100, 1)
	assert.Equal(Error, pool.TryAdd(tx))
}

func TestTryAdd_BannedHashRejected(t *testing.T) {
	assert := assert.New(t)
	ledger := newFakeLedger()
	key := core.GenerateKey(nil)
	ledger.balances[key.PublicKey().Hash()] = 1_000_000

	pool := New(DefaultConfig, ledger)
	tx := newTx(t, key, 1, 100, 1)
	pool.Ban([]*core.Transaction{tx})

	assert.True(pool.IsBanned(tx.FullHash()))
	assert.Equal(Error, pool.TryAdd(tx))
}

func TestAgingToBan(t *testing.T) {
	assert := assert.New(t)
	ledger := newFakeLedger()
	key := core.GenerateKey(nil)
	ledger.balances[key.PublicKey().Hash()] = 1_000_000

	cfg := DefaultConfig
	cfg.PendingDepth = 4
	pool := New(cfg, ledger)

	tx := newTx(t, key, 1, 100, 1)
	assert.Equal(Pending, pool.TryAdd(tx))

	for i := 0; i < 4; i++ {
		pool.Shift()
	}

	assert.True(pool.IsBanned(tx.FullHash()))
	info := pool.GetAccountTransactionQueueInfo(key.PublicKey())
	assert.EqualValues(0, info.TotalFees)
}

func TestShiftCompositionEmptiesBannedBuckets(t *testing.T) {
	assert := assert.New(t)
	ledger := newFakeLedger()
	key := core.GenerateKey(nil)

	cfg := DefaultConfig
	cfg.BanDepth = 3
	pool := New(cfg, ledger)

	tx := newTx(t, key, 1, 100, 1)
	pool.Ban([]*core.Transaction{tx})
	assert.True(pool.IsBanned(tx.FullHash()))

	for i := 0; i < cfg.BanDepth; i++ {
		pool.Shift()
	}
	assert.False(pool.IsBanned(tx.FullHash()))
}

func TestRemoveAndResetThenShift_ResetsAge(t *testing.T) {
	assert := assert.New(t)
	ledger := newFakeLedger()
	key := core.GenerateKey(nil)
	ledger.balances[key.PublicKey().Hash()] = 1_000_000

	pool := New(DefaultConfig, ledger)
	tx := newTx(t, key, 1, 100, 1)
	assert.Equal(Pending, pool.TryAdd(tx))
	// a second tx keeps the account queue alive once tx is removed
	next := newTx(t, key, 2, 100, 1)
	assert.Equal(Pending, pool.TryAdd(next))

	pool.Shift()
	pool.Shift()
	info := pool.GetAccountTransactionQueueInfo(key.PublicKey())
	assert.Equal(2, info.Age)

	ledger.onLedgerSeq[key.PublicKey().Hash()] = 1
	pool.RemoveAndReset([]*core.Transaction{tx})
	pool.Shift()
	info = pool.GetAccountTransactionQueueInfo(key.PublicKey())
	assert.Equal(1, info.Age)
}

func TestBanCascadesDescendants(t *testing.T) {
	assert := assert.New(t)
	ledger := newFakeLedger()
	key := core.GenerateKey(nil)
	ledger.balances[key.PublicKey().Hash()] = 1_000_000

	pool := New(DefaultConfig, ledger)
	a := newTx(t, key, 1, 100, 1)
	b := newTx(t, key, 2, 100, 1)
	c := newTx(t, key, 3, 100, 1)
	assert.Equal(Pending, pool.TryAdd(a))
	assert.Equal(Pending, pool.TryAdd(b))
	assert.Equal(Pending, pool.TryAdd(c))

	pool.Ban([]*core.Transaction{a})

	assert.True(pool.IsBanned(a.FullHash()))
	assert.True(pool.IsBanned(b.FullHash()))
	assert.True(pool.IsBanned(c.FullHash()))

	info := pool.GetAccountTransactionQueueInfo(key.PublicKey())
	assert.EqualValues(0, info.TotalFees)
}

func TestGlobalCapEvictsLowestFeePerOp(t *testing.T) {
	assert := assert.New(t)
	ledger := newFakeLedger()
	ledger.opsCap = 1 // maxQueueSizeOps = PoolLedgerMultiplier * 1

	cfg := DefaultConfig
	cfg.PoolLedgerMultiplier = 2 // cap = 2 ops

	pool := New(cfg, ledger)

	cheap := core.GenerateKey(nil)
	rich := core.GenerateKey(nil)
	ledger.balances[cheap.PublicKey().Hash()] = 1_000_000
	ledger.balances[rich.PublicKey().Hash()] = 1_000_000

	txCheap1 := newTx(t, cheap, 1, 10, 1)
	txCheap2 := newTx(t, cheap, 2, 10, 1)
	assert.Equal(Pending, pool.TryAdd(txCheap1))
	assert.Equal(Pending, pool.TryAdd(txCheap2)) // fits exactly at cap=2

	txRich := newTx(t, rich, 1, 10_000, 1) // k+1-th op; must evict the cheap tail
	assert.Equal(Pending, pool.TryAdd(txRich))
	assert.LessOrEqual(pool.QueueSizeOps(), uint64(2))

	info := pool.GetAccountTransactionQueueInfo(rich.PublicKey())
	assert.EqualValues(1, info.MaxSeq)
}

func TestGlobalCap_IncomingTxEvictedIsTryAgainLater(t *testing.T) {
	assert := assert.New(t)
	ledger := newFakeLedger()
	ledger.opsCap = 1

	cfg := DefaultConfig
	cfg.PoolLedgerMultiplier = 1 // cap = 1 op

	pool := New(cfg, ledger)

	rich := core.GenerateKey(nil)
	poor := core.GenerateKey(nil)
	ledger.balances[rich.PublicKey().Hash()] = 1_000_000
	ledger.balances[poor.PublicKey().Hash()] = 1_000_000

	txRich := newTx(t, rich, 1, 10_000, 1)
	assert.Equal(Pending, pool.TryAdd(txRich))

	txPoor := newTx(t, poor, 1, 1, 1) // lowest fee-per-op; would be the one evicted
	assert.Equal(TryAgainLater, pool.TryAdd(txPoor))

	// rich's tx must still be present, unaffected by the failed admission
	info := pool.GetAccountTransactionQueueInfo(rich.PublicKey())
	assert.EqualValues(1, info.MaxSeq)
	assert.EqualValues(10_000, info.TotalFees)

	infoPoor := pool.GetAccountTransactionQueueInfo(poor.PublicKey())
	assert.EqualValues(0, infoPoor.TotalFees)
}

func TestToTxSet(t *testing.T) {
	assert := assert.New(t)
	ledger := newFakeLedger()
	key := core.GenerateKey(nil)
	ledger.balances[key.PublicKey().Hash()] = 1_000_000

	pool := New(DefaultConfig, ledger)
	tx := newTx(t, key, 1, 100, 1)
	assert.Equal(Pending, pool.TryAdd(tx))

	lcl := core.LedgerHeader{LedgerSeq: 10, Hash: core.HashBytes([]byte("lcl"))}
	ts := pool.ToTxSet(lcl)
	assert.Equal(lcl.Hash, ts.PreviousLedgerHash())
	assert.True(ts.Contains(tx))
}

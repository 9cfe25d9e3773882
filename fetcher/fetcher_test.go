// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package fetcher

import (
	"testing"

	"github.com/engboniface/stellar-core/core"
	"github.com/stretchr/testify/assert"
)

func newTxSet(t *testing.T, seed string) *core.TxSet {
	t.Helper()
	key := core.GenerateKey(nil)
	tx := core.NewTransaction(key, 1, 100, 1, []byte(seed))
	return core.NewTxSet(core.HashBytes([]byte(seed)), []*core.Transaction{tx})
}

func TestTxSetFetcher_RoundTrip(t *testing.T) {
	assert := assert.New(t)
	var requested []core.Hash
	f := NewTxSetFetcher(func(h core.Hash) { requested = append(requested, h) })

	ts := newTxSet(t, "a")
	hash := ts.ContentsHash()

	_, ok := f.FetchItem(hash, true)
	assert.False(ok)
	assert.Equal([]core.Hash{hash}, requested)

	got := false
	f.WhenAvailable(hash, func(*core.TxSet) { got = true })

	assert.True(f.RecvItem(ts))
	assert.True(got)

	cached, ok := f.FetchItem(hash, false)
	assert.True(ok)
	assert.Same(ts, cached)
}

func TestTxSetFetcher_Rotate(t *testing.T) {
	assert := assert.New(t)
	f := NewTxSetFetcher(func(core.Hash) {})

	ts := newTxSet(t, "b")
	hash := ts.ContentsHash()
	f.RecvItem(ts)

	// still reachable in the buffer just retired
	f.Rotate()
	_, ok := f.FetchItem(hash, false)
	assert.True(ok)

	// wiped once it cycles all the way back around
	f.Rotate()
	_, ok = f.FetchItem(hash, false)
	assert.False(ok)
}

func TestQuorumSetFetcher_SelfSeeded(t *testing.T) {
	assert := assert.New(t)
	local := &core.QuorumSet{Threshold: 1, Validators: []core.NodeID{core.GenerateKey(nil).PublicKey()}}

	requested := 0
	f := NewQuorumSetFetcher(func(core.Hash) { requested++ }, local)

	qs, ok := f.FetchItem(local.Hash(), true)
	assert.True(ok)
	assert.Same(local, qs)
	assert.Equal(0, requested, "local quorum set must never trigger a network request")
}

func TestQuorumSetFetcher_DoesntHaveEscalates(t *testing.T) {
	assert := assert.New(t)
	requested := 0
	f := NewQuorumSetFetcher(func(core.Hash) { requested++ }, nil)

	hash := core.HashBytes([]byte("qs"))
	peer := core.GenerateKey(nil).PublicKey()

	_, ok := f.FetchItem(hash, true)
	assert.False(ok)
	assert.Equal(1, requested)

	f.TrackPeer(hash, peer)
	f.DoesntHave(hash, peer)
	assert.Equal(2, requested, "emptying the candidate set should re-request")
}

// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package p2p

import (
	"testing"
	"time"

	"github.com/engboniface/stellar-core/core"
	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeMessage_RoundTrip(t *testing.T) {
	payload := []byte("payload-bytes")
	b := encodeMessage(MsgTxSet, payload)

	typ, got, err := decodeMessage(b)
	assert.NoError(t, err)
	assert.Equal(t, MsgTxSet, typ)
	assert.Equal(t, payload, got)
}

func TestDecodeMessage_RejectsMalformed(t *testing.T) {
	_, _, err := decodeMessage([]byte{0xff})
	assert.Error(t, err)
}

type connectedPeerPair struct {
	a, b *Peer
}

func newConnectedPeerPair() *connectedPeerPair {
	rwcA, rwcB := newRWCPipe()
	a := NewPeer(core.GenerateKey(nil).PublicKey(), nil)
	b := NewPeer(core.GenerateKey(nil).PublicKey(), nil)
	a.OnConnected(rwcA)
	b.OnConnected(rwcB)
	return &connectedPeerPair{a: a, b: b}
}

type fakeReceiver struct {
	envelopes []*core.Envelope
	txSets    []*core.TxSet
	txs       []*core.Transaction
}

func (r *fakeReceiver) RecvFBAEnvelope(env *core.Envelope, cb func(bool)) {
	r.envelopes = append(r.envelopes, env)
	cb(true)
}
func (r *fakeReceiver) RecvTxSet(ts *core.TxSet) bool {
	r.txSets = append(r.txSets, ts)
	return true
}
func (r *fakeReceiver) RecvFBAQuorumSet(qs *core.QuorumSet) bool { return true }
func (r *fakeReceiver) RecvTransaction(tx *core.Transaction)     { r.txs = append(r.txs, tx) }
func (r *fakeReceiver) DoesntHaveTxSet(hash core.Hash, peer core.NodeID) {}
func (r *fakeReceiver) DoesntHaveFBAQuorumSet(hash core.Hash, peer core.NodeID) {}

type fakeStore struct {
	txSet *core.TxSet
	qSet  *core.QuorumSet
}

func (s *fakeStore) TxSet(hash core.Hash) (*core.TxSet, bool) {
	if s.txSet != nil && s.txSet.ContentsHash() == hash {
		return s.txSet, true
	}
	return nil, false
}
func (s *fakeStore) QuorumSet(hash core.Hash) (*core.QuorumSet, bool) {
	if s.qSet != nil && s.qSet.Hash() == hash {
		return s.qSet, true
	}
	return nil, false
}

func TestOverlay_DispatchEnvelopeRebroadcasts(t *testing.T) {
	pair := newConnectedPeerPair()
	host := &Host{peerStore: NewPeerStore()}
	host.peerStore.Store(pair.b)

	recv := &fakeReceiver{}
	ov := NewOverlay(host, recv, &fakeStore{})

	priv := core.GenerateKey(nil)
	env := &core.Envelope{SlotIndex: 5, Statement: []byte("stmt")}
	env.Sign(priv)
	b, err := env.Marshal()
	assert.NoError(t, err)

	sub := pair.a.SubscribeMsg()
	ov.dispatch(pair.a, encodeMessage(MsgEnvelope, b))

	assert.Len(t, recv.envelopes, 1)
	assert.Equal(t, uint64(5), recv.envelopes[0].SlotIndex)

	// the accepted envelope is flooded to the connected peer (pair.b),
	// whose writes arrive on pair.a
	select {
	case e := <-sub.Events():
		typ, _, err := decodeMessage(e.([]byte))
		assert.NoError(t, err)
		assert.Equal(t, MsgEnvelope, typ)
	case <-time.After(time.Second):
		t.Fatal("expected the envelope to be rebroadcast to connected peers")
	}
}

func TestOverlay_WantTxSetServesFromStore(t *testing.T) {
	pair := newConnectedPeerPair()
	host := &Host{peerStore: NewPeerStore()}

	ts := core.NewTxSet(core.Hash{}, nil)
	ov := NewOverlay(host, &fakeReceiver{}, &fakeStore{txSet: ts})

	sub := pair.b.SubscribeMsg()
	ov.dispatch(pair.a, encodeMessage(MsgWantTxSet, ts.ContentsHash().Bytes()))

	select {
	case e := <-sub.Events():
		typ, payload, err := decodeMessage(e.([]byte))
		assert.NoError(t, err)
		assert.Equal(t, MsgTxSet, typ)
		got, err := core.UnmarshalTxSet(payload)
		assert.NoError(t, err)
		assert.Equal(t, ts.ContentsHash(), got.ContentsHash())
	case <-time.After(time.Second):
		t.Fatal("expected a reply on the peer's write side")
	}
}

// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package p2p

import (
	"github.com/engboniface/stellar-core/core"
	"github.com/engboniface/stellar-core/logger"
)

// Receiver is notified of every artifact and FBA statement arriving
// from the overlay. The node's receiverAdapter implements it, forwarding
// to the Herder and the TxPool.
type Receiver interface {
	RecvFBAEnvelope(env *core.Envelope, cb func(bool))
	RecvTxSet(ts *core.TxSet) bool
	RecvFBAQuorumSet(qs *core.QuorumSet) bool
	RecvTransaction(tx *core.Transaction)
	DoesntHaveTxSet(hash core.Hash, peer core.NodeID)
	DoesntHaveFBAQuorumSet(hash core.Hash, peer core.NodeID)
}

// Store answers want-requests for artifacts this node already holds.
type Store interface {
	TxSet(hash core.Hash) (*core.TxSet, bool)
	QuorumSet(hash core.Hash) (*core.QuorumSet, bool)
}

// Overlay is the gossip mesh that backs herder.Overlay: every outbound
// call floods all connected peers, and every inbound message is
// dispatched to Receiver by type.
type Overlay struct {
	host     *Host
	receiver Receiver
	store    Store
}

// NewOverlay wires receiver and store to host's peer traffic.
func NewOverlay(host *Host, receiver Receiver, store Store) *Overlay {
	ov := &Overlay{host: host, receiver: receiver, store: store}
	ov.host.SetPeerAddedHandler(ov.onAddedPeer)
	return ov
}

func (ov *Overlay) onAddedPeer(peer *Peer) {
	go ov.handlePeerMsg(peer)
}

func (ov *Overlay) handlePeerMsg(peer *Peer) {
	sub := peer.SubscribeMsg()
	for e := range sub.Events() {
		b, ok := e.([]byte)
		if !ok {
			continue
		}
		ov.dispatch(peer, b)
	}
}

func (ov *Overlay) dispatch(peer *Peer, b []byte) {
	typ, payload, err := decodeMessage(b)
	if err != nil {
		return
	}
	switch typ {
	case MsgEnvelope:
		env, err := core.UnmarshalEnvelope(payload)
		if err != nil || !env.VerifySignature() {
			return
		}
		ov.receiver.RecvFBAEnvelope(env, func(ok bool) {
			if ok {
				ov.BroadcastEnvelope(env)
			}
		})
	case MsgTxSet:
		ts, err := core.UnmarshalTxSet(payload)
		if err != nil {
			return
		}
		ov.receiver.RecvTxSet(ts)
	case MsgQuorumSet:
		qs, err := core.UnmarshalQuorumSet(payload)
		if err != nil {
			return
		}
		ov.receiver.RecvFBAQuorumSet(qs)
	case MsgTransaction:
		tx, err := core.UnmarshalTransaction(payload)
		if err != nil {
			return
		}
		ov.receiver.RecvTransaction(tx)
	case MsgWantTxSet:
		hash, ok := core.DecodeHash(payload)
		if !ok {
			return
		}
		if ts, ok := ov.store.TxSet(hash); ok {
			ov.sendTxSet(peer, ts)
			return
		}
		ov.send(peer, MsgDontHaveTxSet, hash.Bytes())
	case MsgWantQuorumSet:
		hash, ok := core.DecodeHash(payload)
		if !ok {
			return
		}
		if qs, ok := ov.store.QuorumSet(hash); ok {
			ov.sendQuorumSet(peer, qs)
			return
		}
		ov.send(peer, MsgDontHaveQuorumSet, hash.Bytes())
	case MsgDontHaveTxSet:
		hash, ok := core.DecodeHash(payload)
		if !ok {
			return
		}
		ov.receiver.DoesntHaveTxSet(hash, peer.NodeID())
	case MsgDontHaveQuorumSet:
		hash, ok := core.DecodeHash(payload)
		if !ok {
			return
		}
		ov.receiver.DoesntHaveFBAQuorumSet(hash, peer.NodeID())
	}
}

// BroadcastEnvelope floods env to every connected peer.
func (ov *Overlay) BroadcastEnvelope(env *core.Envelope) {
	b, err := env.Marshal()
	if err != nil {
		return
	}
	ov.broadcast(MsgEnvelope, b)
}

// BroadcastTxSet floods ts to every connected peer.
func (ov *Overlay) BroadcastTxSet(ts *core.TxSet) {
	b, err := ts.Marshal()
	if err != nil {
		return
	}
	ov.broadcast(MsgTxSet, b)
}

// BroadcastTransaction floods tx to every connected peer.
func (ov *Overlay) BroadcastTransaction(tx *core.Transaction) {
	b, err := tx.Marshal()
	if err != nil {
		return
	}
	ov.broadcast(MsgTransaction, b)
}

// BroadcastQuorumSet floods qs to every connected peer; used to seed the
// network with a node's own quorum set so its RetrieveQuorumSet never
// blocks on discovery.
func (ov *Overlay) BroadcastQuorumSet(qs *core.QuorumSet) {
	b, err := qs.Marshal()
	if err != nil {
		return
	}
	ov.broadcast(MsgQuorumSet, b)
}

// RequestTxSet asks every connected peer whether it has the TxSet
// identified by hash, and returns the peers asked.
func (ov *Overlay) RequestTxSet(hash core.Hash) []core.NodeID {
	return ov.broadcast(MsgWantTxSet, hash.Bytes())
}

// RequestQuorumSet asks every connected peer whether it has the
// QuorumSet identified by hash, and returns the peers asked.
func (ov *Overlay) RequestQuorumSet(hash core.Hash) []core.NodeID {
	return ov.broadcast(MsgWantQuorumSet, hash.Bytes())
}

func (ov *Overlay) sendTxSet(peer *Peer, ts *core.TxSet) {
	b, err := ts.Marshal()
	if err != nil {
		return
	}
	ov.send(peer, MsgTxSet, b)
}

func (ov *Overlay) sendQuorumSet(peer *Peer, qs *core.QuorumSet) {
	b, err := qs.Marshal()
	if err != nil {
		return
	}
	ov.send(peer, MsgQuorumSet, b)
}

// broadcast sends msg to every connected peer and returns the peers it
// was successfully sent to.
func (ov *Overlay) broadcast(typ MessageType, payload []byte) []core.NodeID {
	msg := encodeMessage(typ, payload)
	peers := ov.host.PeerStore().List()
	sent := make([]core.NodeID, 0, len(peers))
	for _, peer := range peers {
		if err := peer.WriteMsg(msg); err != nil {
			logger.I().Debugw("broadcast failed", "peer", peer.String(), "err", err)
			continue
		}
		sent = append(sent, peer.NodeID())
	}
	return sent
}

func (ov *Overlay) send(peer *Peer, typ MessageType, payload []byte) {
	msg := encodeMessage(typ, payload)
	if err := peer.WriteMsg(msg); err != nil {
		logger.I().Debugw("send failed", "peer", peer.String(), "err", err)
	}
}

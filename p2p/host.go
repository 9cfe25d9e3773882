// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

// Package p2p is the overlay network: a libp2p-backed
// mesh of peer connections carrying Envelope, TxSet, QuorumSet and
// Transaction gossip plus the content-addressed want/don't-have flow
// that fetcher drives.
package p2p

import (
	"context"
	"errors"
	"time"

	"github.com/engboniface/stellar-core/core"
	"github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p-core/crypto"
	"github.com/libp2p/go-libp2p-core/host"
	"github.com/libp2p/go-libp2p-core/network"
	"github.com/libp2p/go-libp2p-core/peer"
	"github.com/libp2p/go-libp2p-core/peerstore"
	"github.com/multiformats/go-multiaddr"
)

const protocolID = "/stellar-core/fba/1.0.0"

// Host owns the libp2p transport and the set of known peers.
type Host struct {
	privKey   *core.PrivateKey
	localAddr multiaddr.Multiaddr

	peerStore *PeerStore
	libHost   host.Host

	onAddedPeer func(peer *Peer)

	reconnectInterval time.Duration
}

// NewHost brings up a libp2p host listening on localAddr, identified by
// privKey.
func NewHost(privKey *core.PrivateKey, localAddr multiaddr.Multiaddr) (*Host, error) {
	h := new(Host)
	h.privKey = privKey
	h.localAddr = localAddr
	h.peerStore = NewPeerStore()

	libHost, err := h.newLibHost()
	if err != nil {
		return nil, err
	}
	h.libHost = libHost
	h.libHost.SetStreamHandler(protocolID, h.handleStream)
	h.reconnectInterval = 5 * time.Second
	go h.reconnectLoop()
	return h, nil
}

func (h *Host) newLibHost() (host.Host, error) {
	priv, err := crypto.UnmarshalEd25519PrivateKey(h.privKey.Bytes())
	if err != nil {
		return nil, err
	}
	return libp2p.New(
		context.Background(),
		libp2p.Identity(priv),
		libp2p.ListenAddrs(h.localAddr),
	)
}

func (h *Host) handleStream(s network.Stream) {
	nodeID, err := getRemoteNodeID(s)
	if err != nil {
		s.Close()
		return
	}
	p, loaded := h.peerStore.LoadOrStore(NewPeer(nodeID, s.Conn().RemoteMultiaddr()))
	if !loaded && h.onAddedPeer != nil {
		go h.onAddedPeer(p)
	}
	if err := p.SetConnecting(); err != nil {
		s.Close()
		return
	}
	p.OnConnected(s)
}

func (h *Host) reconnectLoop() {
	for range time.Tick(h.reconnectInterval) {
		for _, p := range h.peerStore.List() {
			if p.Status() == PeerStatusDisconnected {
				go h.connectPeer(p)
			}
		}
	}
}

func (h *Host) connectPeer(p *Peer) {
	if err := p.SetConnecting(); err != nil { // prevent simultaneous connections from both hosts
		return
	}
	s, err := h.newStream(p)
	if err != nil {
		p.Disconnect()
		return
	}
	p.OnConnected(s)
}

func (h *Host) newStream(p *Peer) (network.Stream, error) {
	id, err := getLibp2pID(p.NodeID())
	if err != nil {
		return nil, err
	}
	h.libHost.Peerstore().AddAddr(id, p.Addr(), peerstore.PermanentAddrTTL)
	return h.libHost.NewStream(context.Background(), id, protocolID)
}

// AddPeer registers a known peer address and starts connecting to it.
func (h *Host) AddPeer(p *Peer) {
	p, loaded := h.peerStore.LoadOrStore(p)
	if !loaded && h.onAddedPeer != nil {
		go h.onAddedPeer(p)
	}
	go h.connectPeer(p)
}

// SetPeerAddedHandler registers the callback invoked the first time a
// new peer is observed, either from an inbound stream or AddPeer.
func (h *Host) SetPeerAddedHandler(fn func(peer *Peer)) {
	h.onAddedPeer = fn
}

func (h *Host) PeerStore() *PeerStore {
	return h.peerStore
}

// LocalNodeID is this host's own identity.
func (h *Host) LocalNodeID() core.NodeID {
	return h.privKey.PublicKey()
}

func getRemoteNodeID(s network.Stream) (core.NodeID, error) {
	pub, ok := s.Conn().RemotePublicKey().(*crypto.Ed25519PublicKey)
	if !ok {
		return core.NodeID{}, errors.New("invalid pubkey type")
	}
	b, err := pub.Raw()
	if err != nil {
		return core.NodeID{}, err
	}
	return core.DecodeNodeID(b), nil
}

func getLibp2pID(nodeID core.NodeID) (peer.ID, error) {
	key, err := crypto.UnmarshalEd25519PublicKey(nodeID.Bytes())
	if err != nil {
		return "", err
	}
	return peer.IDFromPublicKey(key)
}

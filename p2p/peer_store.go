// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package p2p

import (
	"sync"

	"github.com/engboniface/stellar-core/core"
)

// PeerStore tracks the set of known peers keyed by node identity.
type PeerStore struct {
	peers map[string]*Peer
	mtx   sync.RWMutex
}

// NewPeerStore creates an empty PeerStore.
func NewPeerStore() *PeerStore {
	return &PeerStore{
		peers: make(map[string]*Peer),
	}
}

func (s *PeerStore) Load(nodeID core.NodeID) *Peer {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.peers[nodeID.String()]
}

func (s *PeerStore) Store(p *Peer) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.peers[p.String()] = p
}

func (s *PeerStore) Delete(nodeID core.NodeID) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	delete(s.peers, nodeID.String())
}

func (s *PeerStore) List() []*Peer {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	peers := make([]*Peer, 0, len(s.peers))
	for _, p := range s.peers {
		peers = append(peers, p)
	}
	return peers
}

func (s *PeerStore) LoadOrStore(p *Peer) (actual *Peer, loaded bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if actual, loaded = s.peers[p.String()]; loaded {
		return actual, loaded
	}
	s.peers[p.String()] = p
	return p, false
}

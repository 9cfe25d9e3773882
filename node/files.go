// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package node

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path"

	"github.com/engboniface/stellar-core/core"
	"github.com/engboniface/stellar-core/p2p"
	"github.com/multiformats/go-multiaddr"
)

type PeerInfo struct {
	NodeID []byte
	Addr   string
}

// Genesis describes the initial quorum set and account allocations for
// a brand-new network.
type Genesis struct {
	Validators []GenesisValidator
	Threshold  uint32
}

type GenesisValidator struct {
	NodeID  []byte
	Balance int64
}

const (
	NodekeyFile = "nodekey"
	GenesisFile = "genesis.json"
	PeersFile   = "peers.json"
)

func readNodeKey(datadir string) (*core.PrivateKey, error) {
	b, err := ioutil.ReadFile(path.Join(datadir, NodekeyFile))
	if err != nil {
		return nil, fmt.Errorf("cannot read %s, %w", NodekeyFile, err)
	}
	return core.DecodePrivateKey(b), nil
}

func readGenesis(datadir string) (*Genesis, error) {
	f, err := os.Open(path.Join(datadir, GenesisFile))
	if err != nil {
		return nil, fmt.Errorf("cannot read %s, %w", GenesisFile, err)
	}
	defer f.Close()

	genesis := new(Genesis)
	if err := json.NewDecoder(f).Decode(genesis); err != nil {
		return nil, fmt.Errorf("cannot parse %s, %w", GenesisFile, err)
	}
	return genesis, nil
}

func readPeers(datadir string) ([]*p2p.Peer, error) {
	f, err := os.Open(path.Join(datadir, PeersFile))
	if err != nil {
		return nil, fmt.Errorf("cannot read %s, %w", PeersFile, err)
	}
	defer f.Close()

	var raws []PeerInfo
	if err := json.NewDecoder(f).Decode(&raws); err != nil {
		return nil, fmt.Errorf("cannot parse %s, %w", PeersFile, err)
	}

	peers := make([]*p2p.Peer, len(raws))
	for i, r := range raws {
		addr, err := multiaddr.NewMultiaddr(r.Addr)
		if err != nil {
			return nil, fmt.Errorf("invalid multiaddr %w", err)
		}
		peers[i] = p2p.NewPeer(core.DecodeNodeID(r.NodeID), addr)
	}
	return peers, nil
}

func (g *Genesis) quorumSet() core.QuorumSet {
	validators := make([]core.NodeID, len(g.Validators))
	for i, v := range g.Validators {
		validators[i] = core.DecodeNodeID(v.NodeID)
	}
	threshold := g.Threshold
	if threshold == 0 {
		threshold = uint32(len(validators)/2 + 1)
	}
	return core.QuorumSet{Threshold: threshold, Validators: validators}
}

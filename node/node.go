// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package node

import (
	"fmt"
	"net"
	"path"

	"github.com/engboniface/stellar-core/core"
	"github.com/engboniface/stellar-core/herder"
	"github.com/engboniface/stellar-core/logger"
	"github.com/engboniface/stellar-core/p2p"
	"github.com/engboniface/stellar-core/storage"
	"github.com/engboniface/stellar-core/txpool"
	"github.com/multiformats/go-multiaddr"
)

// Node wires together one running stellar-core-style consensus
// participant: storage, overlay, transaction queue and herder.
type Node struct {
	config Config

	privKey *core.PrivateKey
	genesis *Genesis
	peers   []*p2p.Peer

	storage *storage.Storage
	host    *p2p.Host
	overlay *p2p.Overlay
	txpool  *txpool.TxPool
	herder  *herder.Herder
}

func Run(config Config) {
	node := new(Node)
	node.config = config
	node.setupLogger()
	node.readFiles()
	node.setupComponents()
	logger.I().Infow("node setup done, starting herder...")
	node.herder.Start()
	if node.config.HerderConfig.StartNewNetwork {
		node.herder.Bootstrap()
	}
	select {}
}

func (node *Node) setupLogger() {
	logger.Init(logger.NewWithConfig(logger.Config{Debug: node.config.Debug}))
}

func (node *Node) readFiles() {
	var err error
	node.privKey, err = readNodeKey(node.config.Datadir)
	if err != nil {
		logger.I().Fatalw("read key failed", "error", err)
	}
	logger.I().Infow("read nodekey", "nodeID", node.privKey.PublicKey().String())

	node.genesis, err = readGenesis(node.config.Datadir)
	if err != nil {
		logger.I().Fatalw("read genesis failed", "error", err)
	}

	node.peers, err = readPeers(node.config.Datadir)
	if err != nil {
		logger.I().Fatalw("read peers failed", "error", err)
	}
	logger.I().Infow("read peers", "count", len(node.peers))
}

func (node *Node) setupComponents() {
	if err := node.setupStorage(); err != nil {
		logger.I().Fatalw("setup storage failed", "error", err)
	}
	if err := node.setupHost(); err != nil {
		logger.I().Fatalw("setup p2p host failed", "error", err)
	}
	logger.I().Infow("setup p2p host", "port", node.config.Port)

	node.txpool = txpool.New(node.config.TxPoolConfig, node.storage)
	node.setupHerder()
	node.setupOverlay()
	serveNodeAPI(node)
}

func (node *Node) setupStorage() error {
	db, err := storage.NewDB(path.Join(node.config.Datadir, "db"))
	if err != nil {
		return fmt.Errorf("cannot create db %w", err)
	}
	node.storage = storage.New(db, node.config.StorageConfig)
	for _, v := range node.genesis.Validators {
		if v.Balance == 0 {
			continue
		}
		if err := node.storage.CreditAccount(core.DecodeNodeID(v.NodeID), v.Balance); err != nil {
			return fmt.Errorf("cannot credit genesis account %w", err)
		}
	}
	return nil
}

func (node *Node) setupHost() error {
	ln, err := net.Listen("tcp4", fmt.Sprintf(":%d", node.config.Port))
	if err != nil {
		return fmt.Errorf("cannot listen on %d, %w", node.config.Port, err)
	}
	ln.Close()
	addr, _ := multiaddr.NewMultiaddr(fmt.Sprintf("/ip4/0.0.0.0/tcp/%d", node.config.Port))
	host, err := p2p.NewHost(node.privKey, addr)
	if err != nil {
		return fmt.Errorf("cannot create p2p host %w", err)
	}
	for _, p := range node.peers {
		if !p.NodeID().Equal(node.privKey.PublicKey()) {
			host.AddPeer(p)
		}
	}
	node.host = host
	return nil
}

func (node *Node) setupHerder() {
	cfg := node.config.HerderConfig
	cfg.QuorumSet = node.genesis.quorumSet()
	node.herder = herder.New(&herder.Resources{
		Ledger:  node.storage,
		TxQueue: node.txpool,
		Signer:  node.privKey,
	}, cfg)
}

func (node *Node) setupOverlay() {
	adapter := &receiverAdapter{node: node}
	node.overlay = p2p.NewOverlay(node.host, adapter, node.herder)
	node.herder.Resources().Overlay = node.overlay
}

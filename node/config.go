// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package node

import (
	"github.com/engboniface/stellar-core/herder"
	"github.com/engboniface/stellar-core/storage"
	"github.com/engboniface/stellar-core/txpool"
)

type Config struct {
	Debug   bool
	Datadir string
	Port    int
	APIPort int

	StorageConfig storage.Config
	TxPoolConfig  txpool.Config
	HerderConfig  herder.Config
}

var DefaultConfig = Config{
	Port:          15150,
	APIPort:       9040,
	StorageConfig: storage.DefaultConfig,
	TxPoolConfig:  txpool.DefaultConfig,
	HerderConfig:  herder.DefaultConfig,
}

// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

// Package storage is the persistent ledger store backing herder.Ledger:
// closed ledger headers and per-account balance/sequence state.
package storage

import (
	"bytes"

	"github.com/dgraph-io/badger/v3"
)

// data collection prefixes for different data collections
const (
	_                     byte = iota
	colLedgerHeaderBySeq       // LedgerHeader by LedgerSeq
	colLastClosedSeq           // the current LedgerSeq, singleton key
	colAccountByID             // AccountState by NodeID
)

// NewDB opens (creating if necessary) a badger store at path.
func NewDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	return badger.Open(opts)
}

type setter interface {
	Set(key, value []byte) error
}

type updateFunc func(setter setter) error

func getValue(db *badger.DB, key []byte) ([]byte, error) {
	var val []byte
	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == nil {
			val, err = item.ValueCopy(nil)
		}
		return err
	})
	return val, err
}

func hasKey(db *badger.DB, key []byte) bool {
	err := db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})
	return err == nil
}

func updateDB(db *badger.DB, fns []updateFunc) error {
	return db.Update(func(txn *badger.Txn) error {
		for _, fn := range fns {
			if err := fn(txn); err != nil {
				return err
			}
		}
		return nil
	})
}

func concatBytes(srcs ...[]byte) []byte {
	buf := bytes.NewBuffer(nil)
	for _, src := range srcs {
		buf.Grow(len(src))
	}
	for _, src := range srcs {
		buf.Write(src)
	}
	return buf.Bytes()
}

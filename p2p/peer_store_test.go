// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package p2p

import (
	"testing"

	"github.com/engboniface/stellar-core/core"
	"github.com/stretchr/testify/assert"
)

func TestPeerStore_LoadOrStore(t *testing.T) {
	store := NewPeerStore()
	priv := core.GenerateKey(nil)
	p := NewPeer(priv.PublicKey(), nil)

	actual, loaded := store.LoadOrStore(p)
	assert.False(t, loaded)
	assert.Same(t, p, actual)

	actual, loaded = store.LoadOrStore(NewPeer(priv.PublicKey(), nil))
	assert.True(t, loaded)
	assert.Same(t, p, actual)

	assert.Same(t, p, store.Load(priv.PublicKey()))
	assert.Len(t, store.List(), 1)

	store.Delete(priv.PublicKey())
	assert.Nil(t, store.Load(priv.PublicKey()))
}

// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package core

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"io"
)

// ErrInvalidSig is returned when a signature fails verification.
var ErrInvalidSig = errors.New("invalid signature")

// NodeID identifies a participant in the federated quorum system. It is
// the node's ed25519 public key.
type NodeID struct {
	key ed25519.PublicKey
}

// DecodeNodeID decodes raw bytes into a NodeID.
func DecodeNodeID(b []byte) NodeID {
	return NodeID{key: append(ed25519.PublicKey{}, b...)}
}

func (id NodeID) Bytes() []byte { return id.key }

func (id NodeID) Equal(o NodeID) bool { return id.key.Equal(o.key) }

func (id NodeID) String() string { return id.Hash().String() }

// Hash is a stable, fixed-width identifier suitable for use as a map key
// or set element (NodeID itself is a variable-length slice).
func (id NodeID) Hash() Hash { return HashBytes(id.key) }

// PrivateKey is a node's ed25519 signing key.
type PrivateKey struct {
	key ed25519.PrivateKey
	pub NodeID
}

// GenerateKey creates a new random PrivateKey. If rnd is nil, crypto/rand
// is used.
func GenerateKey(rnd io.Reader) *PrivateKey {
	if rnd == nil {
		rnd = rand.Reader
	}
	pub, priv, err := ed25519.GenerateKey(rnd)
	if err != nil {
		panic(err) // crypto/rand failure is unrecoverable
	}
	return &PrivateKey{key: priv, pub: NodeID{key: pub}}
}

// DecodePrivateKey decodes raw bytes into a PrivateKey.
func DecodePrivateKey(b []byte) *PrivateKey {
	priv := ed25519.PrivateKey(b)
	return &PrivateKey{key: priv, pub: NodeID{key: priv.Public().(ed25519.PublicKey)}}
}

func (priv *PrivateKey) Bytes() []byte { return priv.key }

func (priv *PrivateKey) PublicKey() NodeID { return priv.pub }

// Sign signs msg, returning a detached signature.
func (priv *PrivateKey) Sign(msg []byte) []byte {
	return ed25519.Sign(priv.key, msg)
}

// Verify checks sig against msg for the given NodeID.
func Verify(id NodeID, msg, sig []byte) bool {
	return ed25519.Verify(id.key, msg, sig)
}

// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package core

import (
	"bytes"
	"crypto/sha512"
	"encoding/base64"
	"encoding/binary"
)

// HashSize is the length in bytes of a Hash.
const HashSize = 32

// Hash is a sha512_256 digest over a canonical encoding.
type Hash [HashSize]byte

// ZeroHash is the zero value, used for genesis previousLedgerHash.
var ZeroHash Hash

// HashBytes returns the sha512_256 digest of b.
func HashBytes(b []byte) Hash {
	return sha512.Sum512_256(b)
}

func (h Hash) Bytes() []byte { return h[:] }

func (h Hash) String() string { return base64.StdEncoding.EncodeToString(h[:]) }

func (h Hash) Equal(o Hash) bool { return h == o }

// Less orders hashes by their raw bytes, used to canonicalize sets.
func (h Hash) Less(o Hash) bool { return bytes.Compare(h[:], o[:]) < 0 }

// DecodeHash reads a Hash from raw bytes; b must be exactly HashSize long.
func DecodeHash(b []byte) (Hash, bool) {
	var h Hash
	if len(b) != HashSize {
		return h, false
	}
	copy(h[:], b)
	return h, true
}

func putUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func putUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func putBytes(buf *bytes.Buffer, b []byte) {
	putUint32(buf, uint32(len(b)))
	buf.Write(b)
}

func readUint64(b []byte) (uint64, []byte, bool) {
	if len(b) < 8 {
		return 0, nil, false
	}
	return binary.BigEndian.Uint64(b[:8]), b[8:], true
}

func readUint32(b []byte) (uint32, []byte, bool) {
	if len(b) < 4 {
		return 0, nil, false
	}
	return binary.BigEndian.Uint32(b[:4]), b[4:], true
}

func readBytes(b []byte) ([]byte, []byte, bool) {
	n, rest, ok := readUint32(b)
	if !ok || uint32(len(rest)) < n {
		return nil, nil, false
	}
	return rest[:n], rest[n:], true
}

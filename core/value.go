// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package core

import "bytes"

// Value is the StellarBallot payload: the thing nodes vote to externalize
// for a slot.
type Value struct {
	TxSetHash Hash
	CloseTime uint64
	BaseFee   uint32
}

// Marshal encodes the Value canonically.
func (v Value) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(v.TxSetHash.Bytes())
	putUint64(&buf, v.CloseTime)
	putUint32(&buf, v.BaseFee)
	return buf.Bytes(), nil
}

// Unmarshal decodes a Value previously produced by Marshal.
func (v *Value) Unmarshal(b []byte) error {
	if len(b) < HashSize {
		return errTruncated("value txset hash")
	}
	hash, ok := DecodeHash(b[:HashSize])
	if !ok {
		return errTruncated("value txset hash")
	}
	rest := b[HashSize:]
	closeTime, rest, ok := readUint64(rest)
	if !ok {
		return errTruncated("value close time")
	}
	baseFee, _, ok := readUint32(rest)
	if !ok {
		return errTruncated("value base fee")
	}
	v.TxSetHash = hash
	v.CloseTime = closeTime
	v.BaseFee = baseFee
	return nil
}

// UnmarshalValue decodes a Value from its opaque wire bytes.
func UnmarshalValue(b []byte) (Value, error) {
	var v Value
	err := v.Unmarshal(b)
	return v, err
}

// Compare orders two values lexicographically by canonical bytes. Per
// DESIGN NOTES, slotIndex and ballotCounter are intentionally ignored.
func (v Value) Compare(o Value) int {
	a, _ := v.Marshal()
	b, _ := o.Marshal()
	return bytes.Compare(a, b)
}

// Ballot is {counter, value}; counter escalates on timeouts.
type Ballot struct {
	Counter uint32
	Value   Value
}

// Envelope is the signed wrapper carrying one FBA statement for a slot.
type Envelope struct {
	SlotIndex uint64
	NodeID    NodeID
	Statement []byte // opaque, FBA-slot-machine-defined ballot/vote payload
	Signature []byte
}

// SigningBytes is what Signature is computed over: everything but the
// signature itself.
func (e *Envelope) SigningBytes() []byte {
	var buf bytes.Buffer
	putUint64(&buf, e.SlotIndex)
	putBytes(&buf, e.NodeID.Bytes())
	putBytes(&buf, e.Statement)
	return buf.Bytes()
}

// Marshal encodes the Envelope canonically.
func (e *Envelope) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(e.SigningBytes())
	putBytes(&buf, e.Signature)
	return buf.Bytes(), nil
}

// Unmarshal decodes an Envelope previously produced by Marshal.
func (e *Envelope) Unmarshal(b []byte) error {
	slotIndex, rest, ok := readUint64(b)
	if !ok {
		return errTruncated("envelope slot index")
	}
	nodeIDB, rest, ok := readBytes(rest)
	if !ok {
		return errTruncated("envelope node id")
	}
	statement, rest, ok := readBytes(rest)
	if !ok {
		return errTruncated("envelope statement")
	}
	sig, _, ok := readBytes(rest)
	if !ok {
		return errTruncated("envelope signature")
	}
	e.SlotIndex = slotIndex
	e.NodeID = DecodeNodeID(nodeIDB)
	e.Statement = statement
	e.Signature = sig
	return nil
}

// UnmarshalEnvelope decodes an Envelope from its opaque wire bytes.
func UnmarshalEnvelope(b []byte) (*Envelope, error) {
	e := new(Envelope)
	if err := e.Unmarshal(b); err != nil {
		return nil, err
	}
	return e, nil
}

// Sign computes and attaches e.Signature using priv.
func (e *Envelope) Sign(priv *PrivateKey) {
	e.NodeID = priv.PublicKey()
	e.Signature = priv.Sign(e.SigningBytes())
}

// VerifySignature reports whether e.Signature is valid for e.NodeID.
func (e *Envelope) VerifySignature() bool {
	return Verify(e.NodeID, e.SigningBytes(), e.Signature)
}

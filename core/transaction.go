// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package core

import (
	"bytes"
	"errors"
)

// errors
var (
	ErrInvalidTxHash = errors.New("invalid tx hash")
	ErrNilTx         = errors.New("nil tx")
)

// Transaction is an opaque, signed payload plus the accessors the
// transaction queue and FBA adapter need. Equality is by FullHash.
type Transaction struct {
	payload       []byte
	sourceAccount NodeID
	seqNum        uint64
	feeBid        int64
	numOperations uint32
	signature     []byte
	fullHash      Hash
}

// NewTransaction builds and signs a transaction. numOperations must be >= 1.
func NewTransaction(source *PrivateKey, seqNum uint64, feeBid int64, numOperations uint32, payload []byte) *Transaction {
	tx := &Transaction{
		payload:       payload,
		sourceAccount: source.PublicKey(),
		seqNum:        seqNum,
		feeBid:        feeBid,
		numOperations: numOperations,
	}
	tx.fullHash = HashBytes(tx.signingBytes())
	tx.signature = source.Sign(tx.fullHash.Bytes())
	return tx
}

func (tx *Transaction) signingBytes() []byte {
	var buf bytes.Buffer
	putBytes(&buf, tx.sourceAccount.Bytes())
	putUint64(&buf, tx.seqNum)
	putUint64(&buf, uint64(tx.feeBid))
	putUint32(&buf, tx.numOperations)
	putBytes(&buf, tx.payload)
	return buf.Bytes()
}

// Validate checks that the cached hash and signature are self-consistent.
func (tx *Transaction) Validate() error {
	if tx == nil {
		return ErrNilTx
	}
	if tx.fullHash != HashBytes(tx.signingBytes()) {
		return ErrInvalidTxHash
	}
	if !Verify(tx.sourceAccount, tx.fullHash.Bytes(), tx.signature) {
		return ErrInvalidSig
	}
	return nil
}

func (tx *Transaction) FullHash() Hash         { return tx.fullHash }
func (tx *Transaction) SourceAccount() NodeID  { return tx.sourceAccount }
func (tx *Transaction) SeqNum() uint64         { return tx.seqNum }
func (tx *Transaction) FeeBid() int64          { return tx.feeBid }
func (tx *Transaction) NumOperations() uint32  { return tx.numOperations }
func (tx *Transaction) Payload() []byte        { return tx.payload }

// Marshal encodes the transaction as canonical bytes.
func (tx *Transaction) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(tx.signingBytes())
	putBytes(&buf, tx.signature)
	putBytes(&buf, tx.fullHash.Bytes())
	return buf.Bytes(), nil
}

// Unmarshal decodes a transaction previously produced by Marshal.
func (tx *Transaction) Unmarshal(b []byte) error {
	srcBytes, rest, ok := readBytes(b)
	if !ok {
		return errors.New("core: truncated transaction (source)")
	}
	seqNum, rest, ok := readUint64(rest)
	if !ok {
		return errors.New("core: truncated transaction (seqnum)")
	}
	feeBid, rest, ok := readUint64(rest)
	if !ok {
		return errors.New("core: truncated transaction (fee)")
	}
	numOps, rest, ok := readUint32(rest)
	if !ok {
		return errors.New("core: truncated transaction (numops)")
	}
	payload, rest, ok := readBytes(rest)
	if !ok {
		return errors.New("core: truncated transaction (payload)")
	}
	sig, rest, ok := readBytes(rest)
	if !ok {
		return errors.New("core: truncated transaction (sig)")
	}
	hashBytes, _, ok := readBytes(rest)
	if !ok {
		return errors.New("core: truncated transaction (hash)")
	}
	hash, ok := DecodeHash(hashBytes)
	if !ok {
		return errors.New("core: invalid transaction hash length")
	}
	tx.sourceAccount = DecodeNodeID(srcBytes)
	tx.seqNum = seqNum
	tx.feeBid = int64(feeBid)
	tx.numOperations = numOps
	tx.payload = payload
	tx.signature = sig
	tx.fullHash = hash
	return nil
}

// UnmarshalTransaction decodes a single transaction from bytes.
func UnmarshalTransaction(b []byte) (*Transaction, error) {
	tx := new(Transaction)
	if err := tx.Unmarshal(b); err != nil {
		return nil, err
	}
	return tx, nil
}

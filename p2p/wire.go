// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package p2p

import (
	"errors"

	"google.golang.org/protobuf/encoding/protowire"
)

// MessageType discriminates the payload carried by a wire message.
type MessageType byte

const (
	MsgEnvelope MessageType = iota + 1
	MsgTxSet
	MsgQuorumSet
	MsgTransaction
	MsgWantTxSet
	MsgWantQuorumSet
	MsgDontHaveTxSet
	MsgDontHaveQuorumSet
)

const (
	fieldType    protowire.Number = 1
	fieldPayload protowire.Number = 2
)

var errMalformedMessage = errors.New("p2p: malformed message")

// encodeMessage frames typ and payload into one wire message. The
// envelope itself is hand-encoded with protowire rather than a
// protoc-generated type, since the carried payloads (Envelope, TxSet,
// QuorumSet, Transaction, bare hashes) already have their own canonical
// encodings in core.
func encodeMessage(typ MessageType, payload []byte) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldType, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(typ))
	b = protowire.AppendTag(b, fieldPayload, protowire.BytesType)
	b = protowire.AppendBytes(b, payload)
	return b
}

func decodeMessage(b []byte) (MessageType, []byte, error) {
	var typ MessageType
	var payload []byte
	for len(b) > 0 {
		num, wtyp, n := protowire.ConsumeTag(b)
		if n < 0 {
			return 0, nil, errMalformedMessage
		}
		b = b[n:]
		switch num {
		case fieldType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, nil, errMalformedMessage
			}
			typ = MessageType(v)
			b = b[n:]
		case fieldPayload:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, nil, errMalformedMessage
			}
			payload = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, wtyp, b)
			if n < 0 {
				return 0, nil, errMalformedMessage
			}
			b = b[n:]
		}
	}
	if typ == 0 {
		return 0, nil, errMalformedMessage
	}
	return typ, payload, nil
}

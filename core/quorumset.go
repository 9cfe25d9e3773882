// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package core

import (
	"bytes"
	"sort"
)

// QuorumSet is a node's statement of whom it trusts, with a threshold.
type QuorumSet struct {
	Threshold  uint32
	Validators []NodeID
}

// Hash is the identifying digest of the canonical serialization.
func (qs *QuorumSet) Hash() Hash {
	b, _ := qs.Marshal()
	return HashBytes(b)
}

// sortedValidators returns Validators in canonical, content-addressed
// order (by hash), so Marshal/Hash don't depend on construction order.
func (qs *QuorumSet) sortedValidators() []NodeID {
	out := make([]NodeID, len(qs.Validators))
	copy(out, qs.Validators)
	sort.Slice(out, func(i, j int) bool { return out[i].Hash().Less(out[j].Hash()) })
	return out
}

// Marshal encodes the QuorumSet canonically.
func (qs *QuorumSet) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	putUint32(&buf, qs.Threshold)
	validators := qs.sortedValidators()
	putUint32(&buf, uint32(len(validators)))
	for _, v := range validators {
		putBytes(&buf, v.Bytes())
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a QuorumSet previously produced by Marshal.
func (qs *QuorumSet) Unmarshal(b []byte) error {
	threshold, rest, ok := readUint32(b)
	if !ok {
		return errTruncated("quorumset threshold")
	}
	n, rest, ok := readUint32(rest)
	if !ok {
		return errTruncated("quorumset count")
	}
	validators := make([]NodeID, 0, n)
	for i := uint32(0); i < n; i++ {
		vb, next, ok := readBytes(rest)
		if !ok {
			return errTruncated("quorumset validator")
		}
		rest = next
		validators = append(validators, DecodeNodeID(vb))
	}
	qs.Threshold = threshold
	qs.Validators = validators
	return nil
}

// UnmarshalQuorumSet decodes a QuorumSet from bytes.
func UnmarshalQuorumSet(b []byte) (*QuorumSet, error) {
	qs := new(QuorumSet)
	if err := qs.Unmarshal(b); err != nil {
		return nil, err
	}
	return qs, nil
}

// Contains reports whether id is one of the quorum set's validators.
func (qs *QuorumSet) Contains(id NodeID) bool {
	for _, v := range qs.Validators {
		if v.Equal(id) {
			return true
		}
	}
	return false
}

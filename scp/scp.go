// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

// Package scp defines the narrow callback contract between a federated
// Byzantine agreement slot-machine and the node that hosts it. The
// slot-machine itself (ballot nomination, vote/accept/confirm) is an
// external collaborator and is not implemented here; this package only
// fixes the boundary the two sides call across.
package scp

import "github.com/engboniface/stellar-core/core"

// Driver is implemented by the node and invoked by the slot-machine.
// Every method is called from the slot-machine's single-threaded
// reactor loop; implementations must not block beyond registering a
// continuation.
type Driver interface {
	// ValidateValue decodes and checks value for slotIndex as proposed
	// by nodeID, resolving cb exactly once. ValidateValue may suspend by
	// returning without calling cb, in which case cb is invoked later
	// from a fetch continuation.
	ValidateValue(slotIndex uint64, nodeID core.NodeID, value []byte, cb func(bool))

	// ValidateBallot decodes value and checks the ballot {counter, value}
	// for slotIndex, resolving cb exactly once. It may suspend the same
	// way ValidateValue does.
	ValidateBallot(slotIndex uint64, nodeID core.NodeID, counter uint32, value []byte, cb func(bool))

	// RetrieveQuorumSet resolves cb with nodeID's quorum set once known,
	// fetching it from the network if necessary.
	RetrieveQuorumSet(nodeID core.NodeID, qSetHash core.Hash, cb func(*core.QuorumSet))

	// EmitEnvelope broadcasts env to the network on the slot-machine's
	// behalf.
	EmitEnvelope(env *core.Envelope)

	// ValueExternalized reports that the slot-machine has committed
	// value for slotIndex.
	ValueExternalized(slotIndex uint64, value core.Value)

	// BallotDidHearFromQuorum reports that a quorum of nodes has been
	// heard from voting on ballot in slotIndex, used to arm the bump
	// timer.
	BallotDidHearFromQuorum(slotIndex uint64, ballot core.Ballot)
}

// Engine is implemented by the slot-machine and invoked by the node.
type Engine interface {
	// PrepareValue injects value as this node's candidate for
	// slotIndex. bumpCounter requests that the local ballot's counter
	// be advanced before voting, used to recover from a stalled round.
	PrepareValue(slotIndex uint64, value core.Value, bumpCounter bool)

	// ReceiveEnvelope hands env to the slot-machine for processing,
	// resolving cb with whether env was well-formed and relevant.
	ReceiveEnvelope(env *core.Envelope, cb func(bool))
}

// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package herder

import (
	"time"

	"github.com/engboniface/stellar-core/core"
)

// Config holds the Herder's FBA-tuning parameters (CORE SPEC §6
// "Configuration (enumerated)").
type Config struct {
	// QuorumSet is this node's statement of whom it trusts.
	QuorumSet core.QuorumSet

	// DesiredBaseFee is the fee-per-operation this node proposes.
	DesiredBaseFee uint32

	// ExpLedgerTimespan is the target time between ledger closes.
	ExpLedgerTimespan time.Duration

	// MaxFBATimeout caps the per-ballot-counter wait used by the
	// counter-exhaustion guard in validateBallot.
	MaxFBATimeout time.Duration

	// MaxTimeSlip is the tolerated clock skew between nodes.
	MaxTimeSlip time.Duration

	// LedgerValidityBracket is the window, in ledgers, outside of which
	// an incoming envelope's slotIndex is dropped outright.
	LedgerValidityBracket uint64

	// StartNewNetwork, when true, bypasses the sync gate and triggers
	// the first ledger immediately at Bootstrap.
	StartNewNetwork bool
}

// DefaultConfig matches the values suggested by CORE SPEC §6.
var DefaultConfig = Config{
	DesiredBaseFee:        100,
	ExpLedgerTimespan:     5 * time.Second,
	MaxFBATimeout:         30 * time.Second,
	MaxTimeSlip:           60 * time.Second,
	LedgerValidityBracket: 10,
}

// ledgersToWaitToParticipate is the sync-gate's starting value (CORE
// SPEC §3 "Sync-gate counter").
const ledgersToWaitToParticipate = 3

// Package assurances implements §4.8: per-validator availability
// bitfields over the C cores, supermajority tallying, and the resulting
// ρ-to-"available reports" handoff plus timeout cleanup.
//
// Grounded on beacon-chain/p2p/subnets.go's bitfield.Bitvector/Bitlist
// usage (BitAt-driven iteration over a validator's subnet/committee
// bits) and beacon-chain/core/blocks/validity_conditions.go's
// one-check-per-function shape.
package assurances

import (
	"github.com/prysmaticlabs/go-bitfield"
	"github.com/sirupsen/logrus"

	"github.com/jamzig/jamzig-sub002/crypto"
	"github.com/jamzig/jamzig-sub002/overlay"
	"github.com/jamzig/jamzig-sub002/params"
	"github.com/jamzig/jamzig-sub002/shared/hashutil"
	"github.com/jamzig/jamzig-sub002/state"
)

var log = logrus.WithField("prefix", "assurances")

// Assurance is one validator's per-block availability attestation: one
// bit per core, set iff that validator holds the core's work-report data.
type Assurance struct {
	ValidatorIndex state.ValidatorIndex
	Anchor         state.Hash
	Bits           bitfield.Bitlist
	Signature      state.Ed25519Signature
}

// Outcome carries the reports that became available this block, in core
// order, for the accumulation stage to enqueue (§4.9).
type Outcome struct {
	AvailableReports []state.WorkReport
}

// Process validates ex against tr's current ρ and κ, tallies per-core bit
// counts, atomically takes every core that reaches V_s out of ρ, and
// finally clears any remaining pending report whose timeout has expired.
func Process(
	tr *overlay.Transition,
	ex []Assurance,
	parentHeaderHash state.Hash,
	cfg *params.Config,
	verifier crypto.Ed25519Verifier,
) (Outcome, error) {
	coreCount := int(cfg.CoreCount)
	rho := tr.Rho()

	for i, a := range ex {
		if a.Bits.Len() != uint64(coreCount) {
			return Outcome{}, ErrBadBitfieldLength
		}
		if i > 0 && ex[i-1].ValidatorIndex >= a.ValidatorIndex {
			return Outcome{}, ErrValidatorsNotOrdered
		}
		if a.Anchor != parentHeaderHash {
			return Outcome{}, ErrBadAnchor
		}
		for c := 0; c < coreCount; c++ {
			if a.Bits.BitAt(uint64(c)) && rho[c] == nil {
				return Outcome{}, ErrBitSetForEmptyCore
			}
		}
		if int(a.ValidatorIndex) >= len(tr.Kappa()) {
			return Outcome{}, ErrBadAssuranceSignature
		}
		key := tr.Kappa()[a.ValidatorIndex].Ed25519
		message := crypto.AvailabilityContext(hashutil.HashConcat(a.Anchor[:], a.Bits.Bytes()))
		if !verifier.Verify(key, message, a.Signature) {
			return Outcome{}, ErrBadAssuranceSignature
		}
	}

	counts := make([]int, coreCount)
	for _, a := range ex {
		for c := 0; c < coreCount; c++ {
			if a.Bits.BitAt(uint64(c)) {
				counts[c]++
			}
		}
	}

	threshold := int(cfg.SuperMajority())
	var outcome Outcome
	rhoPrime := tr.EnsureRho()
	for c := 0; c < coreCount; c++ {
		if counts[c] >= threshold && (*rhoPrime)[c] != nil {
			outcome.AvailableReports = append(outcome.AvailableReports, (*rhoPrime)[c].Report)
			(*rhoPrime)[c] = nil
		}
	}

	current := tr.Tau()
	for c := 0; c < coreCount; c++ {
		pending := (*rhoPrime)[c]
		if pending != nil && uint64(current) >= uint64(pending.Timeout)+uint64(cfg.WorkReplacementPeriod) {
			(*rhoPrime)[c] = nil
		}
	}

	log.WithField("available", len(outcome.AvailableReports)).Debug("assurances: processed")
	return outcome, nil
}

// Package header implements the block-header validity checks named in
// spec §4.5: parent linkage, timing, authorship, the epoch/tickets
// markers, and the seal/entropy-source VRF signatures.
//
// Grounded on beacon-chain/core/blocks/validity_conditions.go's
// one-check-per-function shape (each condition returns a distinct
// sentinel error rather than panicking) and block.go's header-field
// layout.
package header

import (
	"github.com/sirupsen/logrus"

	"github.com/jamzig/jamzig-sub002/crypto"
	"github.com/jamzig/jamzig-sub002/overlay"
	"github.com/jamzig/jamzig-sub002/safrole"
	"github.com/jamzig/jamzig-sub002/shared/hashutil"
	"github.com/jamzig/jamzig-sub002/state"
)

var log = logrus.WithField("prefix", "header")

// Header is the unsigned portion of a block header plus its seal and
// entropy-source VRF signatures, per §3.
type Header struct {
	ParentHash      state.Hash
	ParentStateRoot state.Hash
	ExtrinsicHash   state.Hash
	Slot            state.TimeSlot
	EpochMarker     *safrole.EpochMarker
	TicketsMarker   []state.Hash
	AuthorIndex     state.ValidatorIndex
	VrfSignature    state.BandersnatchVrfSignature // entropy-source signature, Y(H_v)
	Seal            state.BandersnatchVrfSignature // slot-sealer signature
}

// ValidateStructure checks h's parent linkage, timing, authorship and
// marker presence against the transition and the Safrole result already
// computed for this slot (§4.12 step 1). It runs after Safrole, so the author
// is looked up in the post-rotation κ; the slot check uses the pre-state τ
// from Base(). extrinsicBytes is the canonical encoding of the block's
// combined extrinsic, used only to recompute the extrinsic hash.
func ValidateStructure(
	tr *overlay.Transition,
	h *Header,
	parentHeaderHash state.Hash,
	extrinsicBytes []byte,
	safroleResult safrole.Result,
) error {
	if h.ParentHash != parentHeaderHash {
		return ErrInvalidParentHash
	}
	if h.ParentStateRoot != lastStateRoot(tr) {
		return ErrInvalidPriorStateRoot
	}
	if h.ExtrinsicHash != hashutil.Hash(extrinsicBytes) {
		return ErrInvalidExtrinsicHash
	}
	if uint64(h.Slot) <= uint64(tr.Base().Tau) {
		return ErrSlotNotGreaterThanParent
	}
	if int(h.AuthorIndex) >= len(tr.Kappa()) {
		return ErrInvalidAuthorIndex
	}

	if (h.EpochMarker != nil) != safroleResult.NewEpoch {
		return ErrInvalidEpochMarkerTiming
	}
	if h.EpochMarker != nil {
		if h.EpochMarker.Entropy != safroleResult.EpochMarker.Entropy {
			return ErrInvalidEpochMarkerTiming
		}
		if len(h.EpochMarker.Validators) != len(safroleResult.EpochMarker.Validators) {
			return ErrInvalidEpochMarkerTiming
		}
	}
	if (len(h.TicketsMarker) != 0) != (len(safroleResult.TicketsMarker) != 0) {
		return ErrInvalidTicketsMarkerTiming
	}
	for i := range h.TicketsMarker {
		if h.TicketsMarker[i] != safroleResult.TicketsMarker[i] {
			return ErrInvalidTicketsMarkerTiming
		}
	}

	log.WithField("slot", h.Slot).Debug("header: structure validated")
	return nil
}

// ValidateSeal checks h's slot-sealer and entropy-source VRF signatures
// against tr's post-rotation γ_s (§4.12 step 9, run once Safrole, reports,
// assurances, accumulation, authorizations and history have all applied).
// newEpoch must be the same value safroleResult.NewEpoch carried at step 1.
func ValidateSeal(tr *overlay.Transition, h *Header, newEpoch bool, vrf crypto.VRFVerifier) error {
	author := tr.Kappa()[h.AuthorIndex]
	if err := verifySeal(tr, h, author, vrf, newEpoch); err != nil {
		return err
	}

	entropyInput := append(append([]byte{}, []byte("jam_entropy")...), h.Seal[:]...)
	if _, err := vrf.Verify(author.Bandersnatch, entropyInput, nil, h.VrfSignature); err != nil {
		return ErrEntropySourceVerificationFailed
	}

	log.WithField("slot", h.Slot).Debug("header: seal validated")
	return nil
}

// verifySeal checks the slot-sealer signature against γ_s's current arm:
// in tickets mode the sealer's VRF output must match the ticket's id
// (§4.5, §4.4); in fallback mode the sealer's bandersnatch key must equal
// the fallback series' entry for this epoch slot.
func verifySeal(tr *overlay.Transition, h *Header, author state.Validator, vrf crypto.VRFVerifier, newEpoch bool) error {
	series := tr.GammaS()
	epochSlot := tr.Time.EpochSlot()

	entropy := tr.Eta()[3]
	if newEpoch {
		entropy = tr.Eta()[2]
	}

	if series.IsTickets {
		ticket := series.Tickets[epochSlot]
		input := append(append([]byte{}, []byte("jam_ticket_seal")...), entropy[:]...)
		input = append(input, ticket.Attempt)
		output, err := vrf.Verify(author.Bandersnatch, input, nil, h.Seal)
		if err != nil {
			return ErrTicketSealVerificationFailed
		}
		if state.Hash(output) != ticket.ID {
			return ErrInvalidTicketId
		}
		return nil
	}

	expected := series.Fallback[epochSlot]
	if author.Bandersnatch != expected {
		return ErrFallbackSealVerificationFailed
	}
	input := append(append([]byte{}, []byte("jam_fallback_seal")...), entropy[:]...)
	if _, err := vrf.Verify(author.Bandersnatch, input, nil, h.Seal); err != nil {
		return ErrFallbackSealVerificationFailed
	}
	return nil
}

func lastStateRoot(tr *overlay.Transition) state.Hash {
	beta := tr.Beta()
	if len(beta) == 0 {
		return state.Hash{}
	}
	return beta[len(beta)-1].StateRoot
}

package header

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jamzig/jamzig-sub002/crypto"
	"github.com/jamzig/jamzig-sub002/overlay"
	"github.com/jamzig/jamzig-sub002/safrole"
	"github.com/jamzig/jamzig-sub002/shared/hashutil"
	"github.com/jamzig/jamzig-sub002/state"
)

const epochLength = 4

func fallbackFixture(t *testing.T) (*overlay.Transition, state.Validator) {
	t.Helper()

	s := state.New(1, epochLength)
	author := state.Validator{Bandersnatch: [32]byte{0xAB}}
	s.Kappa = state.ValidatorSet{author, {Bandersnatch: [32]byte{0x02}}}
	s.Eta = [4]state.Hash{{0x01}, {0x02}, {0x03}, {0x04}}
	s.GammaS = state.SealerSeries{
		IsTickets: false,
		Fallback:  []state.BandersnatchKey{{0x02}, author.Bandersnatch, {0x02}, {0x02}},
	}
	s.Beta = []state.BlockInfo{{StateRoot: state.Hash{0xEE}}}

	tr := overlay.New(s, overlay.Time{ParentSlot: 0, CurrentSlot: 1, EpochLength: epochLength, TicketEnd: 2, Rotation: 2})
	return tr, author
}

func sealFixture(tr *overlay.Transition, author state.Validator, h *Header) {
	input := append(append([]byte{}, []byte("jam_fallback_seal")...), tr.Eta()[3][:]...)
	h.Seal = crypto.SignVRF(author.Bandersnatch, input, nil)
	entropyInput := append(append([]byte{}, []byte("jam_entropy")...), h.Seal[:]...)
	h.VrfSignature = crypto.SignVRF(author.Bandersnatch, entropyInput, nil)
}

// validateAll runs both phases in sequence, the way the STF driver does:
// ValidateStructure at §4.12 step 1, ValidateSeal at step 9.
func validateAll(tr *overlay.Transition, h *Header, parentHeaderHash state.Hash, extrinsic []byte, result safrole.Result, vrf crypto.VRFVerifier) error {
	if err := ValidateStructure(tr, h, parentHeaderHash, extrinsic, result); err != nil {
		return err
	}
	return ValidateSeal(tr, h, result.NewEpoch, vrf)
}

func TestValidateFallbackSealSucceeds(t *testing.T) {
	tr, author := fallbackFixture(t)

	extrinsic := []byte("empty extrinsic")
	h := &Header{
		ParentHash:      state.Hash{},
		ParentStateRoot: state.Hash{0xEE},
		ExtrinsicHash:   hashutil.Hash(extrinsic),
		Slot:            1,
		AuthorIndex:     0,
	}
	sealFixture(tr, author, h)

	err := validateAll(tr, h, state.Hash{}, extrinsic, safrole.Result{}, crypto.StdVRFVerifier{})
	require.NoError(t, err)
}

func TestValidateRejectsWrongExtrinsicHash(t *testing.T) {
	tr, author := fallbackFixture(t)

	h := &Header{
		ParentHash:      state.Hash{},
		ParentStateRoot: state.Hash{0xEE},
		ExtrinsicHash:   state.Hash{0x01},
		Slot:            1,
		AuthorIndex:     0,
	}
	sealFixture(tr, author, h)

	err := validateAll(tr, h, state.Hash{}, []byte("empty extrinsic"), safrole.Result{}, crypto.StdVRFVerifier{})
	require.ErrorIs(t, err, ErrInvalidExtrinsicHash)
}

func TestValidateRejectsNonIncreasingSlot(t *testing.T) {
	tr, author := fallbackFixture(t)
	tr.Base().Tau = 5

	extrinsic := []byte("empty extrinsic")
	h := &Header{
		ParentHash:      state.Hash{},
		ParentStateRoot: state.Hash{0xEE},
		ExtrinsicHash:   hashutil.Hash(extrinsic),
		Slot:            1,
		AuthorIndex:     0,
	}
	sealFixture(tr, author, h)

	err := validateAll(tr, h, state.Hash{}, extrinsic, safrole.Result{}, crypto.StdVRFVerifier{})
	require.ErrorIs(t, err, ErrSlotNotGreaterThanParent)
}

func TestValidateRejectsWrongSealer(t *testing.T) {
	tr, _ := fallbackFixture(t)
	impostor := state.Validator{Bandersnatch: [32]byte{0x02}}

	extrinsic := []byte("empty extrinsic")
	h := &Header{
		ParentHash:      state.Hash{},
		ParentStateRoot: state.Hash{0xEE},
		ExtrinsicHash:   hashutil.Hash(extrinsic),
		Slot:            1,
		AuthorIndex:     1,
	}
	sealFixture(tr, impostor, h)

	err := validateAll(tr, h, state.Hash{}, extrinsic, safrole.Result{}, crypto.StdVRFVerifier{})
	require.ErrorIs(t, err, ErrFallbackSealVerificationFailed)
}

func TestValidateRejectsBadAuthorIndex(t *testing.T) {
	tr, author := fallbackFixture(t)

	extrinsic := []byte("empty extrinsic")
	h := &Header{
		ParentHash:      state.Hash{},
		ParentStateRoot: state.Hash{0xEE},
		ExtrinsicHash:   hashutil.Hash(extrinsic),
		Slot:            1,
		AuthorIndex:     99,
	}
	sealFixture(tr, author, h)

	err := ValidateStructure(tr, h, state.Hash{}, extrinsic, safrole.Result{})
	require.ErrorIs(t, err, ErrInvalidAuthorIndex)
}

package transition

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jamzig/jamzig-sub002/accumulation"
	"github.com/jamzig/jamzig-sub002/crypto"
	"github.com/jamzig/jamzig-sub002/disputes"
	"github.com/jamzig/jamzig-sub002/header"
	"github.com/jamzig/jamzig-sub002/params"
	"github.com/jamzig/jamzig-sub002/shared/hashutil"
	"github.com/jamzig/jamzig-sub002/state"
)

// nopPVM never gets exercised in the fixtures below since no report becomes
// available without reports/assurances extrinsics, but Verifiers still
// requires one.
type nopPVM struct{}

func (nopPVM) Accumulate(svc state.ServiceAccount, report *state.WorkReport, result *state.WorkResult, gasLimit state.Gas) (state.ServiceAccount, state.Gas, state.Hash, bool) {
	return svc, 0, state.Hash{}, false
}

// buildFixture returns a minimal, internally-consistent pre-state plus the
// fallback-sealed header needed to transition it by exactly one slot, with
// every extrinsic empty.
func buildFixture(t *testing.T) (*state.State, state.Hash, *Block, *params.Config, Verifiers) {
	t.Helper()

	cfg := params.Tiny()
	s := state.New(int(cfg.CoreCount), int(cfg.EpochLength))
	s.Tau = 0
	author := state.Validator{Bandersnatch: [32]byte{0xAB}, Ed25519: [32]byte{0xCD}}
	s.Kappa = state.ValidatorSet{author}
	for i := 1; i < int(cfg.ValidatorCount); i++ {
		s.Kappa = append(s.Kappa, state.Validator{Bandersnatch: [32]byte{byte(i)}})
	}
	s.GammaK = s.Kappa.Clone()
	s.Iota = s.Kappa.Clone()
	s.Lambda = s.Kappa.Clone()
	s.Eta = [4]state.Hash{{0x01}, {0x02}, {0x03}, {0x04}}
	fallback := make([]state.BandersnatchKey, cfg.EpochLength)
	for i := range fallback {
		fallback[i] = author.Bandersnatch
	}
	s.GammaS = state.SealerSeries{IsTickets: false, Fallback: fallback}

	parentHeaderHash := state.Hash{0x99}
	s.Beta = []state.BlockInfo{{HeaderHash: parentHeaderHash, StateRoot: state.Hash{0xEE}}}

	extrinsic := []byte("empty extrinsic")
	h := header.Header{
		ParentHash:      parentHeaderHash,
		ParentStateRoot: state.Hash{0xEE},
		ExtrinsicHash:   hashutil.Hash(extrinsic),
		Slot:            1,
		AuthorIndex:     0,
	}

	input := append(append([]byte{}, []byte("jam_fallback_seal")...), s.Eta[3][:]...)
	h.Seal = crypto.SignVRF(author.Bandersnatch, input, nil)
	entropyInput := append(append([]byte{}, []byte("jam_entropy")...), h.Seal[:]...)
	h.VrfSignature = crypto.SignVRF(author.Bandersnatch, entropyInput, nil)

	blk := &Block{Header: h, ExtrinsicBytes: extrinsic}
	v := Verifiers{
		Ed25519: crypto.StdEd25519Verifier{},
		VRF:     crypto.StdVRFVerifier{},
		Ring:    crypto.StdRingVRFVerifier{},
		PVM:     nopPVM{},
	}
	return s, parentHeaderHash, blk, cfg, v
}

func TestProcessCommitsEmptyBlock(t *testing.T) {
	s, parentHeaderHash, blk, cfg, v := buildFixture(t)

	result, err := Process(context.Background(), s, parentHeaderHash, blk, cfg, v)
	require.NoError(t, err)
	require.Equal(t, state.TimeSlot(1), s.Tau)
	require.Len(t, s.Beta, 2)
	require.Equal(t, state.Hash{0xEE}, s.Beta[0].StateRoot)
	require.Equal(t, result.HeaderHash, s.Beta[1].HeaderHash)
	require.NotEqual(t, state.Hash{}, result.StateRoot)
}

func TestProcessRejectsBadParentHash(t *testing.T) {
	s, _, blk, cfg, v := buildFixture(t)
	blk.Header.ParentHash = state.Hash{0x01}

	_, err := Process(context.Background(), s, state.Hash{0x99}, blk, cfg, v)
	require.ErrorIs(t, err, header.ErrInvalidParentHash)
	require.Equal(t, state.TimeSlot(0), s.Tau, "base must be untouched on a failed transition")
}

func TestProcessRejectsNonIncreasingSlot(t *testing.T) {
	s, parentHeaderHash, blk, cfg, v := buildFixture(t)
	s.Tau = 5

	_, err := Process(context.Background(), s, parentHeaderHash, blk, cfg, v)
	require.Error(t, err)
	require.Equal(t, state.TimeSlot(5), s.Tau, "base must be untouched on a failed transition")
}

func TestProcessRejectsBadDisputesExtrinsic(t *testing.T) {
	s, parentHeaderHash, blk, cfg, v := buildFixture(t)
	blk.Disputes = disputes.Extrinsic{
		Verdicts: []disputes.Verdict{{Target: state.Hash{0x01}, Age: 0}},
	}

	_, err := Process(context.Background(), s, parentHeaderHash, blk, cfg, v)
	require.Error(t, err)
	require.Equal(t, state.TimeSlot(0), s.Tau, "base must be untouched on a failed transition")
}

var _ = accumulation.PVM(nopPVM{})

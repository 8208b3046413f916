package safrole

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jamzig/jamzig-sub002/crypto"
	"github.com/jamzig/jamzig-sub002/overlay"
	"github.com/jamzig/jamzig-sub002/params"
	"github.com/jamzig/jamzig-sub002/state"
)

func buildFixture(t *testing.T) (*overlay.Transition, *params.Config) {
	t.Helper()
	cfg := params.Tiny()
	s := state.New(int(cfg.CoreCount), int(cfg.EpochLength))
	s.Tau = 0
	s.Kappa = state.ValidatorSet{{Bandersnatch: [32]byte{0x01}}, {Bandersnatch: [32]byte{0x02}}}
	s.GammaK = s.Kappa.Clone()
	s.Iota = s.Kappa.Clone()
	s.Eta = [4]state.Hash{{0xA0}, {0xA1}, {0xA2}, {0xA3}}
	s.GammaZ = state.BandersnatchVrfRoot(crypto.RingRoot([][32]byte{s.Kappa[0].Bandersnatch, s.Kappa[1].Bandersnatch}))

	tr := overlay.New(s, overlay.Time{ParentSlot: 0, CurrentSlot: 1, EpochLength: cfg.EpochLength, TicketEnd: cfg.TicketSubmissionEndOffset, Rotation: cfg.RotationPeriod})
	return tr, cfg
}

func TestProcessAdvancesTau(t *testing.T) {
	tr, cfg := buildFixture(t)

	result, err := Process(tr, 1, state.Hash{0xFF}, nil, cfg, crypto.StdRingVRFVerifier{})
	require.NoError(t, err)
	require.False(t, result.NewEpoch)
	require.Equal(t, state.TimeSlot(1), tr.Tau())
}

func TestProcessRejectsNonIncreasingSlot(t *testing.T) {
	tr, cfg := buildFixture(t)
	tr.Base().Tau = 5

	_, err := Process(tr, 5, state.Hash{0xFF}, nil, cfg, crypto.StdRingVRFVerifier{})
	require.ErrorIs(t, err, ErrBadSlot)
	require.Equal(t, state.TimeSlot(5), tr.Base().Tau, "base must be untouched on a failed call")
}

func TestProcessFoldsBlockEntropyIntoEta0(t *testing.T) {
	tr, cfg := buildFixture(t)
	before := tr.Eta()[0]

	_, err := Process(tr, 1, state.Hash{0xFF}, nil, cfg, crypto.StdRingVRFVerifier{})
	require.NoError(t, err)
	require.NotEqual(t, before, tr.Eta()[0])
}

func TestProcessAcceptsWellOrderedTickets(t *testing.T) {
	tr, cfg := buildFixture(t)
	eta2 := tr.Eta()[2]
	ringRoot := tr.Base().GammaZ

	mk := func(attempt uint8) TicketEnvelope {
		input := append(append([]byte{}, []byte("jam_ticket_seal")...), eta2[:]...)
		input = append(input, attempt)
		sig := crypto.SignRingVRF([144]byte(ringRoot), len(tr.Base().Kappa), input, nil)
		return TicketEnvelope{Attempt: attempt, Signature: sig}
	}
	outputFor := func(attempt uint8) state.Hash {
		input := append(append([]byte{}, []byte("jam_ticket_seal")...), eta2[:]...)
		input = append(input, attempt)
		return state.Hash(crypto.RingVRFOutput([144]byte(ringRoot), len(tr.Base().Kappa), input, nil))
	}

	t1, t2 := mk(0), mk(1)
	o1, o2 := outputFor(0), outputFor(1)
	if !lessHash(o1, o2) {
		t1, t2 = t2, t1
	}

	_, err := Process(tr, 1, state.Hash{0xFF}, []TicketEnvelope{t1, t2}, cfg, crypto.StdRingVRFVerifier{})
	require.NoError(t, err)
	require.Len(t, tr.GammaA(), 2)
}

func TestProcessRejectsBadTicketOrder(t *testing.T) {
	tr, cfg := buildFixture(t)
	eta2 := tr.Eta()[2]
	ringRoot := tr.Base().GammaZ

	mk := func(attempt uint8) TicketEnvelope {
		input := append(append([]byte{}, []byte("jam_ticket_seal")...), eta2[:]...)
		input = append(input, attempt)
		sig := crypto.SignRingVRF([144]byte(ringRoot), len(tr.Base().Kappa), input, nil)
		return TicketEnvelope{Attempt: attempt, Signature: sig}
	}
	outputFor := func(attempt uint8) state.Hash {
		input := append(append([]byte{}, []byte("jam_ticket_seal")...), eta2[:]...)
		input = append(input, attempt)
		return state.Hash(crypto.RingVRFOutput([144]byte(ringRoot), len(tr.Base().Kappa), input, nil))
	}

	t1, t2 := mk(0), mk(1)
	o1, o2 := outputFor(0), outputFor(1)
	// Deliberately submit in the wrong order relative to ticket id.
	if lessHash(o1, o2) {
		t1, t2 = t2, t1
	}

	_, err := Process(tr, 1, state.Hash{0xFF}, []TicketEnvelope{t1, t2}, cfg, crypto.StdRingVRFVerifier{})
	require.ErrorIs(t, err, ErrBadTicketOrder)
}

func TestProcessNewEpochFallbackUsesPosteriorEta2(t *testing.T) {
	cfg := params.Tiny()
	s := state.New(int(cfg.CoreCount), int(cfg.EpochLength))
	s.Tau = cfg.EpochLength - 1
	s.Kappa = state.ValidatorSet{{Bandersnatch: [32]byte{0x01}}, {Bandersnatch: [32]byte{0x02}}}
	s.GammaK = s.Kappa.Clone()
	s.Iota = s.Kappa.Clone()
	s.Eta = [4]state.Hash{{0xE0}, {0xE1}, {0xE2}, {0xE3}}
	s.GammaZ = state.BandersnatchVrfRoot(crypto.RingRoot([][32]byte{s.Kappa[0].Bandersnatch, s.Kappa[1].Bandersnatch}))
	// GammaA stays empty, so |gamma_a| != E and the handover condition for
	// ticket mode can never hold regardless of the tail/consecutive checks.

	tm := overlay.Time{
		ParentSlot:  s.Tau,
		CurrentSlot: state.TimeSlot(cfg.EpochLength),
		EpochLength: cfg.EpochLength,
		TicketEnd:   cfg.TicketSubmissionEndOffset,
		Rotation:    cfg.RotationPeriod,
	}
	tr := overlay.New(s, tm)

	result, err := Process(tr, tm.CurrentSlot, state.Hash{0xFF}, nil, cfg, crypto.StdRingVRFVerifier{})
	require.NoError(t, err)
	require.True(t, result.NewEpoch)

	series := tr.GammaS()
	require.False(t, series.IsTickets)
	// Posterior eta is [old_eta0, old_eta0, old_eta1, old_eta2]; step 6d's
	// fallback derivation must use posterior eta2, i.e. old eta1.
	want := fallbackSeries(s.Eta[1], s.Kappa.Clone(), cfg.EpochLength)
	require.Equal(t, want.Fallback, series.Fallback)
}

func TestProcessRejectsTicketPastSubmissionEnd(t *testing.T) {
	cfg := params.Tiny()
	s := state.New(int(cfg.CoreCount), int(cfg.EpochLength))
	s.Kappa = state.ValidatorSet{{Bandersnatch: [32]byte{0x01}}}
	s.GammaK = s.Kappa.Clone()
	s.Iota = s.Kappa.Clone()
	s.Eta = [4]state.Hash{{0xA0}, {0xA1}, {0xA2}, {0xA3}}

	slot := state.TimeSlot(cfg.TicketSubmissionEndOffset)
	tr := overlay.New(s, overlay.Time{ParentSlot: 0, CurrentSlot: slot, EpochLength: cfg.EpochLength, TicketEnd: cfg.TicketSubmissionEndOffset, Rotation: cfg.RotationPeriod})

	_, err := Process(tr, slot, state.Hash{0xFF}, []TicketEnvelope{{Attempt: 0}}, cfg, crypto.StdRingVRFVerifier{})
	require.ErrorIs(t, err, ErrUnexpectedTicket)
}

package reports

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ed25519"

	"github.com/jamzig/jamzig-sub002/crypto"
	"github.com/jamzig/jamzig-sub002/overlay"
	"github.com/jamzig/jamzig-sub002/params"
	"github.com/jamzig/jamzig-sub002/shared/hashutil"
	"github.com/jamzig/jamzig-sub002/state"
)

type kv struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
}

func buildFixture(t *testing.T) (*overlay.Transition, *params.Config, []kv) {
	t.Helper()
	cfg := params.Tiny()
	cfg.CoreCount = 2
	cfg.ValidatorCount = 6
	cfg.EpochLength = 12
	cfg.RotationPeriod = 4

	keys := make([]kv, cfg.ValidatorCount)
	set := make(state.ValidatorSet, cfg.ValidatorCount)
	for i := range keys {
		pub, priv, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = kv{pub: pub, priv: priv}
		var k state.Ed25519Key
		copy(k[:], pub)
		set[i] = state.Validator{Ed25519: k}
	}

	s := state.New(int(cfg.CoreCount), int(cfg.EpochLength))
	s.Kappa = set
	s.Lambda = set.Clone()
	s.Tau = 5
	s.Alpha[0] = state.AuthPool{{0xAA}}
	s.Alpha[1] = state.AuthPool{{0xBB}}
	s.Delta[1] = state.ServiceAccount{CodeHash: state.Hash{0xCC}, MinGasAccumulate: 10}
	s.Beta = []state.BlockInfo{{
		HeaderHash: state.Hash{0x10},
		StateRoot:  state.Hash{0x11},
		BeefyRoot:  state.Hash{0x12},
	}}

	tr := overlay.New(s, overlay.Time{ParentSlot: 4, CurrentSlot: 5, EpochLength: cfg.EpochLength, TicketEnd: 10, Rotation: cfg.RotationPeriod})
	return tr, cfg, keys
}

// signersForCore finds validator indices the rotation assignment maps to
// core, for the fixture's entropy and the guarantee slot's rotation.
func signersForCore(tr *overlay.Transition, cfg *params.Config, slot state.TimeSlot, core state.CoreIndex, n int) []state.ValidatorIndex {
	rotationIndex := rotationIndexForSlot(slot, cfg)
	entropy := tr.Eta()[2]
	assignment := globalAssignments.assignment(entropy, rotationIndex, int(cfg.ValidatorCount), int(cfg.CoreCount))
	var out []state.ValidatorIndex
	for i, c := range assignment {
		if c == core {
			out = append(out, state.ValidatorIndex(i))
			if len(out) == n {
				break
			}
		}
	}
	return out
}

func makeGuarantee(t *testing.T, tr *overlay.Transition, cfg *params.Config, keys []kv, core state.CoreIndex, slot state.TimeSlot, packageHash byte, n int) Guarantee {
	t.Helper()
	report := state.WorkReport{
		PackageHash:    state.Hash{packageHash},
		CoreIndex:      core,
		AuthorizerHash: authorizerFor(core),
		AnchorHash:     state.Hash{0x10},
		AnchorStateRoot: state.Hash{0x11},
		AnchorBeefyRoot: state.Hash{0x12},
		Results: []state.WorkResult{{
			ServiceId:     1,
			CodeHash:      state.Hash{0xCC},
			AccumulateGas: 20,
		}},
	}
	payloadHash := hashutil.Hash(EncodeWorkReport(&report))
	message := crypto.AvailabilityContext(payloadHash)

	indices := signersForCore(tr, cfg, slot, core, n)
	require.Len(t, indices, n, "fixture entropy did not assign %d signers to core %d", n, core)

	sigs := make([]GuarantorSignature, len(indices))
	for i, idx := range indices {
		sig := ed25519.Sign(keys[idx].priv, message)
		var s state.Ed25519Signature
		copy(s[:], sig)
		sigs[i] = GuarantorSignature{ValidatorIndex: idx, Signature: s}
	}

	return Guarantee{CoreIndex: core, Report: report, Slot: slot, Signatures: sigs}
}

func authorizerFor(core state.CoreIndex) state.Hash {
	if core == 0 {
		return state.Hash{0xAA}
	}
	return state.Hash{0xBB}
}

func TestProcessAcceptsValidGuarantee(t *testing.T) {
	tr, cfg, keys := buildFixture(t)
	g := makeGuarantee(t, tr, cfg, keys, 0, 5, 0x01, 2)

	reporters, err := Process(tr, []Guarantee{g}, cfg, crypto.StdEd25519Verifier{})
	require.NoError(t, err)
	require.Len(t, reporters, 2)
	require.NotNil(t, tr.Rho()[0])
	require.Equal(t, state.Hash{0x01}, tr.Rho()[0].Report.PackageHash)
}

func TestProcessRejectsCoreOutOfOrder(t *testing.T) {
	tr, cfg, _ := buildFixture(t)
	// The core-ordering check runs before any per-guarantee validation, so
	// these stubs never need valid signatures/assignment.
	g0 := Guarantee{CoreIndex: 1, Report: state.WorkReport{PackageHash: state.Hash{0x01}}}
	g1 := Guarantee{CoreIndex: 0, Report: state.WorkReport{PackageHash: state.Hash{0x02}}}

	_, err := Process(tr, []Guarantee{g0, g1}, cfg, crypto.StdEd25519Verifier{})
	require.ErrorIs(t, err, ErrCoresNotIncreasing)
}

func TestProcessRejectsDuplicatePackageHash(t *testing.T) {
	tr, cfg, keys := buildFixture(t)
	g0 := makeGuarantee(t, tr, cfg, keys, 0, 5, 0x01, 2)
	g1 := makeGuarantee(t, tr, cfg, keys, 1, 5, 0x01, 2)

	_, err := Process(tr, []Guarantee{g0, g1}, cfg, crypto.StdEd25519Verifier{})
	require.ErrorIs(t, err, ErrDuplicatePackageHash)
}

func TestProcessRejectsUnknownAuthorizer(t *testing.T) {
	tr, cfg, keys := buildFixture(t)
	g := makeGuarantee(t, tr, cfg, keys, 0, 5, 0x01, 2)
	g.Report.AuthorizerHash = state.Hash{0xFF}
	// Re-sign over the changed report so only the authorizer check can fail.
	message := crypto.AvailabilityContext(hashutil.Hash(EncodeWorkReport(&g.Report)))
	for i, sig := range g.Signatures {
		copy(g.Signatures[i].Signature[:], ed25519.Sign(keys[sig.ValidatorIndex].priv, message))
	}

	_, err := Process(tr, []Guarantee{g}, cfg, crypto.StdEd25519Verifier{})
	require.ErrorIs(t, err, ErrAuthorizerNotInPool)
}

func TestProcessRejectsBadCoreAssignment(t *testing.T) {
	tr, cfg, keys := buildFixture(t)
	g := makeGuarantee(t, tr, cfg, keys, 0, 5, 0x01, 2)
	// Relabel the guarantee's declared core so its signers are no longer
	// assigned to it.
	g.CoreIndex = 1
	g.Report.CoreIndex = 1
	g.Report.AuthorizerHash = authorizerFor(1)

	_, err := Process(tr, []Guarantee{g}, cfg, crypto.StdEd25519Verifier{})
	require.ErrorIs(t, err, ErrBadCoreAssignment)
}

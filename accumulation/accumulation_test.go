package accumulation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jamzig/jamzig-sub002/overlay"
	"github.com/jamzig/jamzig-sub002/params"
	"github.com/jamzig/jamzig-sub002/state"
)

// stubPVM credits the service's balance by the result's declared gas and
// reports the output hash as the result's payload hash, so tests can assert
// on δ/θ without an actual PVM.
type stubPVM struct{}

func (stubPVM) Accumulate(svc state.ServiceAccount, report *state.WorkReport, result *state.WorkResult, gasLimit state.Gas) (state.ServiceAccount, state.Gas, state.Hash, bool) {
	svc.Balance += uint64(gasLimit)
	return svc, gasLimit, result.PayloadHash, true
}

// failingPVM always reports failure, so δ and θ are left untouched.
type failingPVM struct{}

func (failingPVM) Accumulate(svc state.ServiceAccount, report *state.WorkReport, result *state.WorkResult, gasLimit state.Gas) (state.ServiceAccount, state.Gas, state.Hash, bool) {
	return svc, 0, state.Hash{}, false
}

func buildFixture(t *testing.T) (*overlay.Transition, *params.Config) {
	t.Helper()
	cfg := params.Tiny()
	s := state.New(int(cfg.CoreCount), int(cfg.EpochLength))
	s.Tau = 5
	s.Delta[1] = state.ServiceAccount{Balance: 100, PreimageAvailable: map[state.Hash]state.TimeSlot{}}
	tr := overlay.New(s, overlay.Time{CurrentSlot: 5, ParentSlot: 4, EpochLength: cfg.EpochLength})
	return tr, cfg
}

func TestProcessAccumulatesReportWithNoDependencies(t *testing.T) {
	tr, cfg := buildFixture(t)
	report := state.WorkReport{
		PackageHash: state.Hash{0x01},
		Results: []state.WorkResult{
			{ServiceId: 1, PayloadHash: state.Hash{0xAA}, AccumulateGas: 10},
		},
	}

	theta, err := Process(tr, []state.WorkReport{report}, false, cfg, stubPVM{})
	require.NoError(t, err)
	require.Len(t, theta, 1)
	require.Equal(t, state.Hash{0xAA}, theta[0].OutputHash)

	svc := tr.Delta()[1]
	require.Equal(t, uint64(110), svc.Balance)

	lane := int(5 % cfg.EpochLength)
	require.Empty(t, tr.Vartheta()[lane])
	require.Contains(t, tr.Xi()[lane], state.Hash{0x01})
}

func TestProcessHoldsReportWithUnmetDependency(t *testing.T) {
	tr, cfg := buildFixture(t)
	report := state.WorkReport{
		PackageHash:   state.Hash{0x02},
		Prerequisites: []state.Hash{{0xFF}},
		Results: []state.WorkResult{
			{ServiceId: 1, PayloadHash: state.Hash{0xBB}, AccumulateGas: 10},
		},
	}

	theta, err := Process(tr, []state.WorkReport{report}, false, cfg, stubPVM{})
	require.NoError(t, err)
	require.Empty(t, theta)

	lane := int(5 % cfg.EpochLength)
	require.Len(t, tr.Vartheta()[lane], 1)
	require.Equal(t, state.Hash{0x02}, tr.Vartheta()[lane][0].Report.PackageHash)
	require.Empty(t, tr.Xi()[lane])
}

func TestProcessChainsDependencyWithinSameBlock(t *testing.T) {
	tr, cfg := buildFixture(t)
	first := state.WorkReport{
		PackageHash: state.Hash{0x03},
		Results:     []state.WorkResult{{ServiceId: 1, PayloadHash: state.Hash{0xCC}, AccumulateGas: 5}},
	}
	second := state.WorkReport{
		PackageHash:   state.Hash{0x04},
		Prerequisites: []state.Hash{{0x03}},
		Results:       []state.WorkResult{{ServiceId: 1, PayloadHash: state.Hash{0xDD}, AccumulateGas: 5}},
	}

	theta, err := Process(tr, []state.WorkReport{first, second}, false, cfg, stubPVM{})
	require.NoError(t, err)
	require.Len(t, theta, 2)
}

func TestProcessUnknownServiceFails(t *testing.T) {
	tr, cfg := buildFixture(t)
	report := state.WorkReport{
		PackageHash: state.Hash{0x05},
		Results:     []state.WorkResult{{ServiceId: 99, PayloadHash: state.Hash{0xEE}, AccumulateGas: 5}},
	}

	_, err := Process(tr, []state.WorkReport{report}, false, cfg, stubPVM{})
	require.ErrorIs(t, err, ErrUnknownService)
}

func TestProcessFailedResultLeavesDeltaUntouched(t *testing.T) {
	tr, cfg := buildFixture(t)
	report := state.WorkReport{
		PackageHash: state.Hash{0x06},
		Results:     []state.WorkResult{{ServiceId: 1, PayloadHash: state.Hash{0xFF}, AccumulateGas: 5}},
	}

	theta, err := Process(tr, []state.WorkReport{report}, false, cfg, failingPVM{})
	require.NoError(t, err)
	require.Empty(t, theta)
	require.Equal(t, uint64(100), tr.Delta()[1].Balance)
}

func TestProcessShiftsXiOnEpochBoundary(t *testing.T) {
	tr, cfg := buildFixture(t)
	(*tr.EnsureXi())[1] = []state.Hash{{0x10}}

	_, err := Process(tr, nil, true, cfg, stubPVM{})
	require.NoError(t, err)

	require.Contains(t, tr.Xi()[0], state.Hash{0x10})
}

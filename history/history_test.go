package history

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jamzig/jamzig-sub002/overlay"
	"github.com/jamzig/jamzig-sub002/params"
	"github.com/jamzig/jamzig-sub002/state"
)

func TestProcessAppendsBlockWithZeroStateRoot(t *testing.T) {
	cfg := params.Tiny()
	s := state.New(int(cfg.CoreCount), int(cfg.EpochLength))
	tr := overlay.New(s, overlay.Time{EpochLength: cfg.EpochLength})

	Process(tr, state.Hash{0x01}, state.Hash{0x02}, []state.Hash{{0x03}}, state.Hash{}, cfg)

	beta := tr.Beta()
	require.Len(t, beta, 1)
	require.Equal(t, state.Hash{0x01}, beta[0].HeaderHash)
	require.Equal(t, state.Hash{0x02}, beta[0].BeefyRoot)
	require.Equal(t, state.Hash{}, beta[0].StateRoot)
	require.Equal(t, []state.Hash{{0x03}}, beta[0].WorkReports)
}

func TestProcessPatchesPreviousBlockStateRoot(t *testing.T) {
	cfg := params.Tiny()
	s := state.New(int(cfg.CoreCount), int(cfg.EpochLength))
	s.Beta = []state.BlockInfo{{HeaderHash: state.Hash{0x01}}}
	tr := overlay.New(s, overlay.Time{EpochLength: cfg.EpochLength})

	Process(tr, state.Hash{0x04}, state.Hash{0x05}, nil, state.Hash{0xAA}, cfg)

	beta := tr.Beta()
	require.Len(t, beta, 2)
	require.Equal(t, state.Hash{0xAA}, beta[0].StateRoot)
	require.Equal(t, state.Hash{}, beta[1].StateRoot)
}

func TestProcessEvictsOldestOnceFull(t *testing.T) {
	cfg := params.Tiny()
	cfg.RecentHistoryDepth = 2
	s := state.New(int(cfg.CoreCount), int(cfg.EpochLength))
	s.Beta = []state.BlockInfo{
		{HeaderHash: state.Hash{0x01}},
		{HeaderHash: state.Hash{0x02}},
	}
	tr := overlay.New(s, overlay.Time{EpochLength: cfg.EpochLength})

	Process(tr, state.Hash{0x03}, state.Hash{0x06}, nil, state.Hash{0xBB}, cfg)

	beta := tr.Beta()
	require.Len(t, beta, 2)
	require.Equal(t, state.Hash{0x02}, beta[0].HeaderHash)
	require.Equal(t, state.Hash{0xBB}, beta[0].StateRoot)
	require.Equal(t, state.Hash{0x03}, beta[1].HeaderHash)
}

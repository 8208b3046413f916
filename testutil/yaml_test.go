package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jamzig/jamzig-sub002/overlay"
	"github.com/jamzig/jamzig-sub002/state"
)

func TestLoadYAMLTimingVectors(t *testing.T) {
	var suite TimingSuite
	require.NoError(t, LoadYAML("testdata/timing.yaml", &suite))
	require.Len(t, suite.Cases, 3)

	for _, c := range suite.Cases {
		c := c
		t.Run(c.Name, func(t *testing.T) {
			tm := overlay.Time{
				ParentSlot:  state.TimeSlot(c.ParentSlot),
				CurrentSlot: state.TimeSlot(c.CurrentSlot),
				EpochLength: c.EpochLength,
				TicketEnd:   c.TicketEnd,
				Rotation:    c.Rotation,
			}
			require.Equal(t, c.WantNewEpoch, tm.IsNewEpoch())
			require.Equal(t, c.WantCrossedEnd, tm.DidCrossTicketSubmissionEnd())
		})
	}
}

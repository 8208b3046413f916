package overlay

import "github.com/jamzig/jamzig-sub002/state"

// Time answers the epoch/rotation questions the rest of the STF needs
// about a (parent_slot, current_slot) pair, per §4.3.
type Time struct {
	ParentSlot  state.TimeSlot
	CurrentSlot state.TimeSlot
	EpochLength uint32
	TicketEnd   uint32 // Y
	Rotation    uint32 // R
}

// IsNewEpoch reports whether current_slot and parent_slot fall in different
// epochs.
func (t Time) IsNewEpoch() bool {
	return uint64(t.CurrentSlot)/uint64(t.EpochLength) > uint64(t.ParentSlot)/uint64(t.EpochLength)
}

// EpochSlot returns the offset of current_slot within its epoch.
func (t Time) EpochSlot() uint32 {
	return uint32(uint64(t.CurrentSlot) % uint64(t.EpochLength))
}

// DidCrossTicketSubmissionEnd reports whether this block's slot is the
// first in its epoch to reach or pass the ticket-submission deadline Y,
// i.e. the parent was still before Y and this block is at or past it.
func (t Time) DidCrossTicketSubmissionEnd() bool {
	parentEpochSlot := uint32(uint64(t.ParentSlot) % uint64(t.EpochLength))
	sameEpoch := uint64(t.ParentSlot)/uint64(t.EpochLength) == uint64(t.CurrentSlot)/uint64(t.EpochLength)
	return sameEpoch && parentEpochSlot < t.TicketEnd && t.EpochSlot() >= t.TicketEnd
}

// IsConsecutiveEpoch reports whether current_slot's epoch immediately
// follows parent_slot's epoch (no skipped epoch in between).
func (t Time) IsConsecutiveEpoch() bool {
	return uint64(t.CurrentSlot)/uint64(t.EpochLength) == uint64(t.ParentSlot)/uint64(t.EpochLength)+1
}

// PriorWasInTicketSubmissionTail reports whether parent_slot fell at or
// after Y within its own epoch.
func (t Time) PriorWasInTicketSubmissionTail() bool {
	parentEpochSlot := uint32(uint64(t.ParentSlot) % uint64(t.EpochLength))
	return parentEpochSlot >= t.TicketEnd
}

// RotationIndex returns current_slot's guarantor-rotation index, i.e. which
// R-slot rotation period current_slot falls in within its epoch.
func (t Time) RotationIndex() uint32 {
	return t.EpochSlot() / t.Rotation
}

// SameRotation reports whether a guarantee declared for slot s was produced
// under the same rotation assignment as the current slot.
func (t Time) SameRotation(s state.TimeSlot) bool {
	other := Time{ParentSlot: s, CurrentSlot: s, EpochLength: t.EpochLength, Rotation: t.Rotation}
	sameEpoch := uint64(s)/uint64(t.EpochLength) == uint64(t.CurrentSlot)/uint64(t.EpochLength)
	return sameEpoch && other.RotationIndex() == t.RotationIndex()
}

package state

import "github.com/jamzig/jamzig-sub002/trie"

// State is the full JAM global state container. Every component is owned
// exclusively by the State it belongs to (§3 "Ownership"); the delta
// overlay in package overlay holds either a shared borrow against this
// value or an exclusive prime copy, never both for the same component.
type State struct {
	Tau   TimeSlot    // τ: current slot
	Eta   [4]Hash     // η: entropy buffer η0..η3

	Iota      ValidatorSet // ι: next validator set
	Kappa     ValidatorSet // κ: current validator set
	Lambda    ValidatorSet // λ: previous validator set
	GammaK    ValidatorSet // γ_k: pending next-epoch validators
	GammaZ    BandersnatchVrfRoot // γ_z: ring-VRF root commitment
	GammaS    SealerSeries // γ_s: slot-sealer series
	GammaA    []Ticket     // γ_a: ticket accumulator, |γ_a| ≤ E

	Alpha []AuthPool  // α: authorization pools, one per core
	Phi   []AuthQueue // φ: authorization queues, one per core

	Rho []*PendingReport // ρ: pending reports per core

	Beta        []BlockInfo // β.recent_history
	BeefyBelt   *trie.MMR   // β.BEEFY belt

	Delta map[ServiceId]ServiceAccount // δ: service accounts

	Chi Privileges // χ: privileges

	Psi Disputes // ψ: disputes

	Pi Statistics // π: statistics

	Vartheta [][]ReadyItem // ϑ: ready queue, E lanes
	Xi       [][]Hash      // ξ: accumulated queue, E lanes of work-package hashes

	Theta []AccumulationOutput // θ: last accumulation outputs
}

// New returns a zero-valued State shaped for coreCount cores and
// epochLength lanes; callers populate validator sets, pools and queues
// before use.
func New(coreCount int, epochLength int) *State {
	s := &State{
		Alpha:     make([]AuthPool, coreCount),
		Phi:       make([]AuthQueue, coreCount),
		Rho:       make([]*PendingReport, coreCount),
		Delta:     map[ServiceId]ServiceAccount{},
		Psi:       NewDisputes(),
		Vartheta:  make([][]ReadyItem, epochLength),
		Xi:        make([][]Hash, epochLength),
		BeefyBelt: trie.NewMMR(),
		Chi:       Privileges{Assign: make([]ServiceId, coreCount), AlwaysAccumulate: map[ServiceId]Gas{}},
		Pi: Statistics{
			Services: map[ServiceId]ServiceStats{},
		},
	}
	return s
}

// Clone deep-copies the entire state. transition.ProcessForks uses it to give
// each fork its own state; the overlay does not call it, and instead clones
// one component at a time.
func (s *State) Clone() *State {
	cp := &State{
		Tau:       s.Tau,
		Eta:       s.Eta,
		Iota:      s.Iota.Clone(),
		Kappa:     s.Kappa.Clone(),
		Lambda:    s.Lambda.Clone(),
		GammaK:    s.GammaK.Clone(),
		GammaZ:    s.GammaZ,
		GammaS:    s.GammaS.Clone(),
		GammaA:    append([]Ticket(nil), s.GammaA...),
		Alpha:     make([]AuthPool, len(s.Alpha)),
		Phi:       make([]AuthQueue, len(s.Phi)),
		Rho:       make([]*PendingReport, len(s.Rho)),
		Beta:      append([]BlockInfo(nil), s.Beta...),
		BeefyBelt: s.BeefyBelt.Clone(),
		Delta:     make(map[ServiceId]ServiceAccount, len(s.Delta)),
		Chi:       s.Chi.Clone(),
		Psi:       s.Psi.Clone(),
		Pi:        s.Pi.Clone(),
		Vartheta:  make([][]ReadyItem, len(s.Vartheta)),
		Xi:        make([][]Hash, len(s.Xi)),
		Theta:     append([]AccumulationOutput(nil), s.Theta...),
	}
	for i := range s.Alpha {
		cp.Alpha[i] = s.Alpha[i].Clone()
	}
	for i := range s.Phi {
		cp.Phi[i] = s.Phi[i].Clone()
	}
	for i := range s.Rho {
		cp.Rho[i] = s.Rho[i].Clone()
	}
	for k, v := range s.Delta {
		cp.Delta[k] = v.Clone()
	}
	for i := range s.Vartheta {
		cp.Vartheta[i] = append([]ReadyItem(nil), s.Vartheta[i]...)
	}
	for i := range s.Xi {
		cp.Xi[i] = append([]Hash(nil), s.Xi[i]...)
	}
	return cp
}

// CheckInvariants validates the cross-component invariants listed in §3 and
// reiterated as Testable Properties in §8. Nothing in the repository calls
// it: neither the tests nor the transition path (the driver establishes
// these invariants by construction).
func (s *State) CheckInvariants(coreCount, validatorCount, epochLength, maxAuthPool, maxAuthQueue, historyDepth int) error {
	if len(s.Iota) != validatorCount || len(s.Kappa) != validatorCount || len(s.GammaK) != validatorCount {
		return errInvariant("validator set length mismatch")
	}
	if s.GammaS.IsTickets && len(s.GammaS.Tickets) != epochLength {
		return errInvariant("gamma_s tickets arm wrong length")
	}
	if !s.GammaS.IsTickets && len(s.GammaS.Fallback) != epochLength {
		return errInvariant("gamma_s fallback arm wrong length")
	}
	if len(s.GammaA) > epochLength {
		return errInvariant("gamma_a exceeds epoch length")
	}
	for i := 1; i < len(s.GammaA); i++ {
		if string(s.GammaA[i-1].ID[:]) >= string(s.GammaA[i].ID[:]) {
			return errInvariant("gamma_a not strictly increasing")
		}
	}
	for c := 0; c < coreCount; c++ {
		if len(s.Alpha[c]) > maxAuthPool {
			return errInvariant("auth pool exceeds O")
		}
		if len(s.Phi[c]) != maxAuthQueue {
			return errInvariant("auth queue wrong length")
		}
		if s.Rho[c] != nil && s.Rho[c].Timeout > s.Tau {
			return errInvariant("pending report timeout in the future")
		}
	}
	if len(s.Beta) > historyDepth {
		return errInvariant("recent history exceeds H")
	}
	for h := range s.Psi.Good {
		if _, ok := s.Psi.Bad[h]; ok {
			return errInvariant("good/bad disputes overlap")
		}
		if _, ok := s.Psi.Wonky[h]; ok {
			return errInvariant("good/wonky disputes overlap")
		}
	}
	for h := range s.Psi.Bad {
		if _, ok := s.Psi.Wonky[h]; ok {
			return errInvariant("bad/wonky disputes overlap")
		}
	}
	if len(s.Chi.Assign) != coreCount {
		return errInvariant("chi.assign wrong length")
	}
	return nil
}

type invariantError struct{ msg string }

func (e *invariantError) Error() string { return "state: invariant violated: " + e.msg }

func errInvariant(msg string) error { return &invariantError{msg} }

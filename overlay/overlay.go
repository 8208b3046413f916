// Package overlay implements the copy-on-write "state transition" layer
// described in spec §4.3/§9: every state component exists in a base and an
// optional prime variant. ensure(component) materializes a prime by
// deep-cloning base; merge_prime_onto_base commits every present prime back
// into base via move semantics. A failed transition simply drops the
// Transition value without calling Merge, leaving base untouched.
//
// Grounded on beacon-chain/core/state/transition.go's
// reassign-on-every-step idiom (`state, err = e.ProcessX(state)`),
// formalized here as explicit prime fields instead of reassigned locals so
// a half-finished transition can be discarded as a unit.
package overlay

import (
	"github.com/mohae/deepcopy"

	"github.com/jamzig/jamzig-sub002/state"
	"github.com/jamzig/jamzig-sub002/trie"
)

// Transition is the delta overlay over a base *state.State.
type Transition struct {
	base *state.State
	Time Time

	primeTau    *state.TimeSlot
	primeEta    *[4]state.Hash
	primeIota   *state.ValidatorSet
	primeKappa  *state.ValidatorSet
	primeLambda *state.ValidatorSet
	primeGammaK *state.ValidatorSet
	primeGammaZ *state.BandersnatchVrfRoot
	primeGammaS *state.SealerSeries
	primeGammaA *[]state.Ticket
	primeAlpha  *[]state.AuthPool
	primePhi    *[]state.AuthQueue
	primeRho    *[]*state.PendingReport
	primeBeta   *[]state.BlockInfo
	primeBelt   *trie.MMR
	primeDelta  *map[state.ServiceId]state.ServiceAccount
	primeChi    *state.Privileges
	primePsi    *state.Disputes
	primePi     *state.Statistics
	primeVartheta *[][]state.ReadyItem
	primeXi       *[][]state.Hash
	primeTheta    *[]state.AccumulationOutput
}

// New begins a transition over base for the given block/parent slots.
func New(base *state.State, t Time) *Transition {
	return &Transition{base: base, Time: t}
}

// Base returns the immutable pre-state. Base is never mutated during a
// transition (§4.3).
func (tr *Transition) Base() *state.State { return tr.base }

func ensure[T any](prime **T, makeClone func() T) *T {
	if *prime == nil {
		v := makeClone()
		*prime = &v
	}
	return *prime
}

func deepClone[T any](v T) T {
	return deepcopy.Copy(v).(T)
}

// Tau / EnsureTau: τ, current slot.
func (tr *Transition) Tau() state.TimeSlot {
	if tr.primeTau != nil {
		return *tr.primeTau
	}
	return tr.base.Tau
}
func (tr *Transition) EnsureTau() *state.TimeSlot {
	return ensure(&tr.primeTau, func() state.TimeSlot { return tr.base.Tau })
}

// Eta / EnsureEta: η, entropy buffer.
func (tr *Transition) Eta() [4]state.Hash {
	if tr.primeEta != nil {
		return *tr.primeEta
	}
	return tr.base.Eta
}
func (tr *Transition) EnsureEta() *[4]state.Hash {
	return ensure(&tr.primeEta, func() [4]state.Hash { return tr.base.Eta })
}

// Iota / EnsureIota: ι.
func (tr *Transition) Iota() state.ValidatorSet {
	if tr.primeIota != nil {
		return *tr.primeIota
	}
	return tr.base.Iota
}
func (tr *Transition) EnsureIota() *state.ValidatorSet {
	return ensure(&tr.primeIota, func() state.ValidatorSet { return tr.base.Iota.Clone() })
}

// Kappa / EnsureKappa: κ.
func (tr *Transition) Kappa() state.ValidatorSet {
	if tr.primeKappa != nil {
		return *tr.primeKappa
	}
	return tr.base.Kappa
}
func (tr *Transition) EnsureKappa() *state.ValidatorSet {
	return ensure(&tr.primeKappa, func() state.ValidatorSet { return tr.base.Kappa.Clone() })
}

// Lambda / EnsureLambda: λ.
func (tr *Transition) Lambda() state.ValidatorSet {
	if tr.primeLambda != nil {
		return *tr.primeLambda
	}
	return tr.base.Lambda
}
func (tr *Transition) EnsureLambda() *state.ValidatorSet {
	return ensure(&tr.primeLambda, func() state.ValidatorSet { return tr.base.Lambda.Clone() })
}

// GammaK / EnsureGammaK: γ_k.
func (tr *Transition) GammaK() state.ValidatorSet {
	if tr.primeGammaK != nil {
		return *tr.primeGammaK
	}
	return tr.base.GammaK
}
func (tr *Transition) EnsureGammaK() *state.ValidatorSet {
	return ensure(&tr.primeGammaK, func() state.ValidatorSet { return tr.base.GammaK.Clone() })
}

// GammaZ / EnsureGammaZ: γ_z.
func (tr *Transition) GammaZ() state.BandersnatchVrfRoot {
	if tr.primeGammaZ != nil {
		return *tr.primeGammaZ
	}
	return tr.base.GammaZ
}
func (tr *Transition) EnsureGammaZ() *state.BandersnatchVrfRoot {
	return ensure(&tr.primeGammaZ, func() state.BandersnatchVrfRoot { return tr.base.GammaZ })
}

// GammaS / EnsureGammaS: γ_s.
func (tr *Transition) GammaS() state.SealerSeries {
	if tr.primeGammaS != nil {
		return *tr.primeGammaS
	}
	return tr.base.GammaS
}
func (tr *Transition) EnsureGammaS() *state.SealerSeries {
	return ensure(&tr.primeGammaS, func() state.SealerSeries { return tr.base.GammaS.Clone() })
}

// GammaA / EnsureGammaA: γ_a.
func (tr *Transition) GammaA() []state.Ticket {
	if tr.primeGammaA != nil {
		return *tr.primeGammaA
	}
	return tr.base.GammaA
}
func (tr *Transition) EnsureGammaA() *[]state.Ticket {
	return ensure(&tr.primeGammaA, func() []state.Ticket { return append([]state.Ticket(nil), tr.base.GammaA...) })
}

// Alpha / EnsureAlpha: α.
func (tr *Transition) Alpha() []state.AuthPool {
	if tr.primeAlpha != nil {
		return *tr.primeAlpha
	}
	return tr.base.Alpha
}
func (tr *Transition) EnsureAlpha() *[]state.AuthPool {
	return ensure(&tr.primeAlpha, func() []state.AuthPool {
		out := make([]state.AuthPool, len(tr.base.Alpha))
		for i, p := range tr.base.Alpha {
			out[i] = p.Clone()
		}
		return out
	})
}

// Phi / EnsurePhi: φ.
func (tr *Transition) Phi() []state.AuthQueue {
	if tr.primePhi != nil {
		return *tr.primePhi
	}
	return tr.base.Phi
}
func (tr *Transition) EnsurePhi() *[]state.AuthQueue {
	return ensure(&tr.primePhi, func() []state.AuthQueue {
		out := make([]state.AuthQueue, len(tr.base.Phi))
		for i, q := range tr.base.Phi {
			out[i] = q.Clone()
		}
		return out
	})
}

// Rho / EnsureRho: ρ.
func (tr *Transition) Rho() []*state.PendingReport {
	if tr.primeRho != nil {
		return *tr.primeRho
	}
	return tr.base.Rho
}
func (tr *Transition) EnsureRho() *[]*state.PendingReport {
	return ensure(&tr.primeRho, func() []*state.PendingReport {
		out := make([]*state.PendingReport, len(tr.base.Rho))
		for i, r := range tr.base.Rho {
			out[i] = r.Clone()
		}
		return out
	})
}

// Beta / EnsureBeta: β.recent_history.
func (tr *Transition) Beta() []state.BlockInfo {
	if tr.primeBeta != nil {
		return *tr.primeBeta
	}
	return tr.base.Beta
}
func (tr *Transition) EnsureBeta() *[]state.BlockInfo {
	return ensure(&tr.primeBeta, func() []state.BlockInfo { return append([]state.BlockInfo(nil), tr.base.Beta...) })
}

// Belt returns β's BEEFY MMR belt.
func (tr *Transition) Belt() *trie.MMR {
	if tr.primeBelt != nil {
		return tr.primeBelt
	}
	return tr.base.BeefyBelt
}

// EnsureBelt materializes a prime copy of the BEEFY belt.
func (tr *Transition) EnsureBelt() *trie.MMR {
	if tr.primeBelt == nil {
		tr.primeBelt = tr.base.BeefyBelt.Clone()
	}
	return tr.primeBelt
}

// SetBelt replaces the prime belt outright (used after MMR.Append, which
// returns a new value rather than mutating in place).
func (tr *Transition) SetBelt(m *trie.MMR) { tr.primeBelt = m }

// Delta / EnsureDelta: δ.
func (tr *Transition) Delta() map[state.ServiceId]state.ServiceAccount {
	if tr.primeDelta != nil {
		return *tr.primeDelta
	}
	return tr.base.Delta
}
func (tr *Transition) EnsureDelta() *map[state.ServiceId]state.ServiceAccount {
	return ensure(&tr.primeDelta, func() map[state.ServiceId]state.ServiceAccount {
		return deepClone(tr.base.Delta)
	})
}

// Chi / EnsureChi: χ.
func (tr *Transition) Chi() state.Privileges {
	if tr.primeChi != nil {
		return *tr.primeChi
	}
	return tr.base.Chi
}
func (tr *Transition) EnsureChi() *state.Privileges {
	return ensure(&tr.primeChi, func() state.Privileges { return tr.base.Chi.Clone() })
}

// Psi / EnsurePsi: ψ.
func (tr *Transition) Psi() state.Disputes {
	if tr.primePsi != nil {
		return *tr.primePsi
	}
	return tr.base.Psi
}
func (tr *Transition) EnsurePsi() *state.Disputes {
	return ensure(&tr.primePsi, func() state.Disputes { return tr.base.Psi.Clone() })
}

// Pi / EnsurePi: π.
func (tr *Transition) Pi() state.Statistics {
	if tr.primePi != nil {
		return *tr.primePi
	}
	return tr.base.Pi
}
func (tr *Transition) EnsurePi() *state.Statistics {
	return ensure(&tr.primePi, func() state.Statistics { return tr.base.Pi.Clone() })
}

// Vartheta / EnsureVartheta: ϑ.
func (tr *Transition) Vartheta() [][]state.ReadyItem {
	if tr.primeVartheta != nil {
		return *tr.primeVartheta
	}
	return tr.base.Vartheta
}
func (tr *Transition) EnsureVartheta() *[][]state.ReadyItem {
	return ensure(&tr.primeVartheta, func() [][]state.ReadyItem {
		out := make([][]state.ReadyItem, len(tr.base.Vartheta))
		for i, lane := range tr.base.Vartheta {
			out[i] = append([]state.ReadyItem(nil), lane...)
		}
		return out
	})
}

// Xi / EnsureXi: ξ.
func (tr *Transition) Xi() [][]state.Hash {
	if tr.primeXi != nil {
		return *tr.primeXi
	}
	return tr.base.Xi
}
func (tr *Transition) EnsureXi() *[][]state.Hash {
	return ensure(&tr.primeXi, func() [][]state.Hash {
		out := make([][]state.Hash, len(tr.base.Xi))
		for i, lane := range tr.base.Xi {
			out[i] = append([]state.Hash(nil), lane...)
		}
		return out
	})
}

// Theta / EnsureTheta: θ.
func (tr *Transition) Theta() []state.AccumulationOutput {
	if tr.primeTheta != nil {
		return *tr.primeTheta
	}
	return tr.base.Theta
}
func (tr *Transition) EnsureTheta() *[]state.AccumulationOutput {
	return ensure(&tr.primeTheta, func() []state.AccumulationOutput {
		return append([]state.AccumulationOutput(nil), tr.base.Theta...)
	})
}

// MergePrimeOntoBase moves every present prime into base atomically. A
// caller that wants abort-on-failure semantics must not call Merge until
// every sub-step has returned successfully; until then base is left
// untouched no matter how many primes were ensured (§4.3, §4.12 step 10).
func (tr *Transition) MergePrimeOntoBase() {
	b := tr.base
	if tr.primeTau != nil {
		b.Tau = *tr.primeTau
	}
	if tr.primeEta != nil {
		b.Eta = *tr.primeEta
	}
	if tr.primeIota != nil {
		b.Iota = *tr.primeIota
	}
	if tr.primeKappa != nil {
		b.Kappa = *tr.primeKappa
	}
	if tr.primeLambda != nil {
		b.Lambda = *tr.primeLambda
	}
	if tr.primeGammaK != nil {
		b.GammaK = *tr.primeGammaK
	}
	if tr.primeGammaZ != nil {
		b.GammaZ = *tr.primeGammaZ
	}
	if tr.primeGammaS != nil {
		b.GammaS = *tr.primeGammaS
	}
	if tr.primeGammaA != nil {
		b.GammaA = *tr.primeGammaA
	}
	if tr.primeAlpha != nil {
		b.Alpha = *tr.primeAlpha
	}
	if tr.primePhi != nil {
		b.Phi = *tr.primePhi
	}
	if tr.primeRho != nil {
		b.Rho = *tr.primeRho
	}
	if tr.primeBeta != nil {
		b.Beta = *tr.primeBeta
	}
	if tr.primeBelt != nil {
		b.BeefyBelt = tr.primeBelt
	}
	if tr.primeDelta != nil {
		b.Delta = *tr.primeDelta
	}
	if tr.primeChi != nil {
		b.Chi = *tr.primeChi
	}
	if tr.primePsi != nil {
		b.Psi = *tr.primePsi
	}
	if tr.primePi != nil {
		b.Pi = *tr.primePi
	}
	if tr.primeVartheta != nil {
		b.Vartheta = *tr.primeVartheta
	}
	if tr.primeXi != nil {
		b.Xi = *tr.primeXi
	}
	if tr.primeTheta != nil {
		b.Theta = *tr.primeTheta
	}
}

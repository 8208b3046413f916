// Package state defines the 16 named JAM state components (§3) and the
// container that owns them.
//
// Grounded on beacon-chain/core/state/state.go's state-container shape and
// beacon-chain/state/types.go's per-component field layout; TimeSlot and
// ValidatorIndex reuse the eth2-types "named uint wrapper" pattern the
// teacher applies to Slot/ValidatorIndex.
package state

import (
	types "github.com/prysmaticlabs/eth2-types"
)

// Semantic types, §3.
type (
	Hash                       [32]byte
	StateKey                   [32]byte
	TimeSlot                   = types.Slot
	ServiceId                  uint32
	ValidatorIndex             = types.ValidatorIndex
	CoreIndex                  uint16
	Gas                        uint64
	Ed25519Key                 [32]byte
	Ed25519Signature           [64]byte
	BandersnatchKey            [32]byte
	BandersnatchVrfSignature   [96]byte
	BandersnatchRingSignature  [784]byte
	BandersnatchVrfRoot        [144]byte
	BlsKey                     [144]byte
)

// Validator is one entry of a validator set (ι, κ, λ, γ_k).
type Validator struct {
	Ed25519       Ed25519Key
	Bandersnatch  BandersnatchKey
	Bls           BlsKey
	Metadata      [128]byte
}

// Clone returns a deep (value) copy; Validator has no pointer/slice fields
// so a plain value copy already satisfies the overlay's deep-clone
// requirement.
func (v Validator) Clone() Validator { return v }

// ValidatorSet is a fixed-size (V) list of validators: ι, κ, λ, γ_k.
type ValidatorSet []Validator

// Clone deep-copies the set.
func (vs ValidatorSet) Clone() ValidatorSet {
	out := make(ValidatorSet, len(vs))
	copy(out, vs)
	return out
}

// Ticket is one entry of the ticket accumulator γ_a or, once sealed, of the
// tickets-mode slot-sealer series γ_s.
type Ticket struct {
	ID       Hash // derived from the ring-VRF output, §4.4 step 4
	Attempt  uint8
	Envelope BandersnatchRingSignature
}

// SealerSeries (γ_s) is a closed tagged union: either exactly E tickets or
// exactly E fallback Bandersnatch keys, per §3/§9 ("a closed tagged union;
// both arms always length E").
type SealerSeries struct {
	IsTickets bool
	Tickets   []Ticket
	Fallback  []BandersnatchKey
}

// Clone deep-copies the series.
func (s SealerSeries) Clone() SealerSeries {
	out := SealerSeries{IsTickets: s.IsTickets}
	if s.IsTickets {
		out.Tickets = append([]Ticket(nil), s.Tickets...)
	} else {
		out.Fallback = append([]BandersnatchKey(nil), s.Fallback...)
	}
	return out
}

// AuthPool is α[c]: a bounded sequence of at most O authorizer hashes.
type AuthPool []Hash

// Clone deep-copies the pool.
func (p AuthPool) Clone() AuthPool { return append(AuthPool(nil), p...) }

// AuthQueue is φ[c]: exactly Q fixed slots of authorizer hashes.
type AuthQueue []Hash

// Clone deep-copies the queue.
func (q AuthQueue) Clone() AuthQueue { return append(AuthQueue(nil), q...) }

// WorkReport is the opaque unit of availability and accumulation named in
// the GLOSSARY. Its payload fields beyond the ones the STF inspects
// directly are treated as opaque per §1 (PVM execution is out of scope).
type WorkReport struct {
	PackageHash        Hash
	CoreIndex          CoreIndex
	AuthorizerHash     Hash
	AuthOutput         []byte
	AnchorHash         Hash
	AnchorStateRoot    Hash
	AnchorBeefyRoot    Hash
	LookupAnchorSlot   TimeSlot
	Prerequisites      []Hash
	SegmentRootLookup  []Hash
	Results            []WorkResult
}

// ContentHash returns the report's package hash as a cheap identity for it.
// It is not a hash of the report's contents: the "jam_available" guarantor
// signature payload is built from the canonical encoding produced by
// reports.EncodeWorkReport instead.
func (r *WorkReport) ContentHash() Hash {
	return r.PackageHash
}

// WorkResult is one service's declared outcome within a work-report.
type WorkResult struct {
	ServiceId      ServiceId
	CodeHash       Hash
	PayloadHash    Hash
	AccumulateGas  Gas
	Output         []byte
}

// PendingReport is one entry of ρ: a reported work-report awaiting
// availability, with the slot at which it was reported (its timeout
// baseline).
type PendingReport struct {
	Report  WorkReport
	Timeout TimeSlot
}

// Clone deep-copies the pending report.
func (p *PendingReport) Clone() *PendingReport {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Report.AuthOutput = append([]byte(nil), p.Report.AuthOutput...)
	cp.Report.Prerequisites = append([]Hash(nil), p.Report.Prerequisites...)
	cp.Report.SegmentRootLookup = append([]Hash(nil), p.Report.SegmentRootLookup...)
	cp.Report.Results = append([]WorkResult(nil), p.Report.Results...)
	for i := range cp.Report.Results {
		cp.Report.Results[i].Output = append([]byte(nil), p.Report.Results[i].Output...)
	}
	return &cp
}

// BlockInfo is one entry of β's recent-history ring, §4.11.
type BlockInfo struct {
	HeaderHash Hash
	BeefyRoot  Hash
	StateRoot  Hash
	WorkReports []Hash
}

// ServiceAccount (δ[id]) holds a service's balance, code and preimage
// bookkeeping. Storage/preimage contents beyond availability metadata are
// opaque per §1 (PVM internals out of scope).
type ServiceAccount struct {
	Balance            uint64
	CodeHash           Hash
	MinGasAccumulate   Gas
	MinGasOnTransfer   Gas
	StorageFootprint   uint64
	ItemCount          uint64
	PreimageAvailable  map[Hash]TimeSlot
}

// Clone deep-copies the account.
func (a ServiceAccount) Clone() ServiceAccount {
	cp := a
	cp.PreimageAvailable = make(map[Hash]TimeSlot, len(a.PreimageAvailable))
	for k, v := range a.PreimageAvailable {
		cp.PreimageAvailable[k] = v
	}
	return cp
}

// Privileges (χ).
type Privileges struct {
	Manager           *ServiceId
	Assign            []ServiceId // length exactly C
	Designate         *ServiceId
	AlwaysAccumulate  map[ServiceId]Gas
}

// Clone deep-copies the privileges.
func (p Privileges) Clone() Privileges {
	cp := Privileges{Assign: append([]ServiceId(nil), p.Assign...)}
	if p.Manager != nil {
		m := *p.Manager
		cp.Manager = &m
	}
	if p.Designate != nil {
		d := *p.Designate
		cp.Designate = &d
	}
	cp.AlwaysAccumulate = make(map[ServiceId]Gas, len(p.AlwaysAccumulate))
	for k, v := range p.AlwaysAccumulate {
		cp.AlwaysAccumulate[k] = v
	}
	return cp
}

// Disputes (ψ): the four pairwise-disjoint sets.
type Disputes struct {
	Good    map[Hash]struct{}
	Bad     map[Hash]struct{}
	Wonky   map[Hash]struct{}
	Punish  map[Ed25519Key]struct{}
}

// NewDisputes returns an empty Disputes value.
func NewDisputes() Disputes {
	return Disputes{
		Good:   map[Hash]struct{}{},
		Bad:    map[Hash]struct{}{},
		Wonky:  map[Hash]struct{}{},
		Punish: map[Ed25519Key]struct{}{},
	}
}

// Clone deep-copies the disputes sets.
func (d Disputes) Clone() Disputes {
	cp := NewDisputes()
	for k := range d.Good {
		cp.Good[k] = struct{}{}
	}
	for k := range d.Bad {
		cp.Bad[k] = struct{}{}
	}
	for k := range d.Wonky {
		cp.Wonky[k] = struct{}{}
	}
	for k := range d.Punish {
		cp.Punish[k] = struct{}{}
	}
	return cp
}

// ValidatorStats is one validator's per-epoch-generation statistics record
// (π keeps a current and a previous generation, per SPEC_FULL.md).
type ValidatorStats struct {
	Blocks        uint32
	Tickets       uint32
	PreImages     uint32
	PreImageBytes uint64
	Guarantees    uint32
	Assurances    uint32
}

// Statistics (π).
type Statistics struct {
	CurrentValidators  []ValidatorStats
	PreviousValidators []ValidatorStats
	Cores              []CoreStats
	Services           map[ServiceId]ServiceStats
}

// CoreStats is one core's per-block activity counters.
type CoreStats struct {
	GasUsed          Gas
	Imports          uint32
	Exports          uint32
	ExtrinsicSize    uint64
	Bundles          uint32
}

// ServiceStats is one service's per-block accumulation activity counters.
type ServiceStats struct {
	AccumulateCount uint32
	AccumulateGas   Gas
	OnTransferCount uint32
}

// Clone deep-copies the statistics.
func (s Statistics) Clone() Statistics {
	cp := Statistics{
		CurrentValidators:  append([]ValidatorStats(nil), s.CurrentValidators...),
		PreviousValidators: append([]ValidatorStats(nil), s.PreviousValidators...),
		Cores:              append([]CoreStats(nil), s.Cores...),
		Services:           make(map[ServiceId]ServiceStats, len(s.Services)),
	}
	for k, v := range s.Services {
		cp.Services[k] = v
	}
	return cp
}

// ReadyItem is one lane entry of ϑ: a work-report awaiting its dependencies.
type ReadyItem struct {
	Report       WorkReport
	Dependencies []Hash
}

// AccumulationOutput is one entry of θ.
type AccumulationOutput struct {
	ServiceId  ServiceId
	OutputHash Hash
}

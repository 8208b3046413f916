package state

import (
	"encoding/binary"

	"github.com/jamzig/jamzig-sub002/shared/bytesutil"
)

// Component tags for the state-merklization dictionary (§6): "one byte
// component tag, followed by component-specific subkey bytes zero-padded to
// 32". Resolved per SPEC_FULL.md's "supplemented features" section against
// original_source/, which tags singleton components with the bare tag byte
// and indexed components (α, φ, ρ by CoreIndex; δ by ServiceId) with
// tag+index.
const (
	tagTau byte = iota
	tagEta
	tagIota
	tagKappa
	tagLambda
	tagGammaK
	tagGammaZ
	tagGammaS
	tagGammaA
	tagAlpha
	tagPhi
	tagRho
	tagBeta
	tagDelta
	tagChi
	tagPsi
	tagPi
	tagVartheta
	tagXi
	tagTheta
)

// singletonKey builds the 32-byte key for a component with no sub-index.
func singletonKey(tag byte) StateKey {
	var k StateKey
	k[0] = tag
	return k
}

// indexedKey builds the 32-byte key for a component indexed by a small
// integer (CoreIndex or ServiceId), tag byte followed by a little-endian
// index, zero-padded to 32 bytes total.
func indexedKey(tag byte, index uint32) StateKey {
	var k StateKey
	k[0] = tag
	binary.LittleEndian.PutUint32(k[1:5], index)
	return k
}

// TauKey, EtaKey, ... return the merklization key for each singleton
// component.
func TauKey() StateKey    { return singletonKey(tagTau) }
func EtaKey() StateKey    { return singletonKey(tagEta) }
func IotaKey() StateKey   { return singletonKey(tagIota) }
func KappaKey() StateKey  { return singletonKey(tagKappa) }
func LambdaKey() StateKey { return singletonKey(tagLambda) }
func GammaKKey() StateKey { return singletonKey(tagGammaK) }
func GammaZKey() StateKey { return singletonKey(tagGammaZ) }
func GammaSKey() StateKey { return singletonKey(tagGammaS) }
func GammaAKey() StateKey { return singletonKey(tagGammaA) }
func BetaKey() StateKey   { return singletonKey(tagBeta) }
func ChiKey() StateKey    { return singletonKey(tagChi) }
func PsiKey() StateKey    { return singletonKey(tagPsi) }
func PiKey() StateKey     { return singletonKey(tagPi) }
func ThetaKey() StateKey  { return singletonKey(tagTheta) }

// AlphaKey, PhiKey and RhoKey return the merklization key for core c's slot
// of α, φ and ρ respectively.
func AlphaKey(c CoreIndex) StateKey { return indexedKey(tagAlpha, uint32(c)) }
func PhiKey(c CoreIndex) StateKey   { return indexedKey(tagPhi, uint32(c)) }
func RhoKey(c CoreIndex) StateKey   { return indexedKey(tagRho, uint32(c)) }

// VarthetaKey and XiKey return the merklization key for lane l of ϑ and ξ.
func VarthetaKey(l int) StateKey { return indexedKey(tagVartheta, uint32(l)) }
func XiKey(l int) StateKey       { return indexedKey(tagXi, uint32(l)) }

// DeltaKey returns the merklization key for service id's δ entry.
func DeltaKey(id ServiceId) StateKey { return indexedKey(tagDelta, uint32(id)) }

// PadValue zero-pads or truncates a value to exactly n bytes, used by
// callers building fixed-width merklization values.
func PadValue(v []byte, n int) []byte { return bytesutil.PadTo(v, n) }

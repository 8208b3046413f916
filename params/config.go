// Package params defines the protocol-fixed parameters of the JAM state
// transition function: core count, validator count, epoch length, and the
// other compile-time constants referenced throughout the STF.
package params

// Config holds every protocol-fixed parameter named in the data model.
// A node is configured with exactly one Config for its lifetime; the STF
// itself never mutates it.
type Config struct {
	CoreCount                  uint16 // C
	ValidatorCount              uint16 // V
	EpochLength                 uint32 // E, in slots
	RotationPeriod               uint32 // R, in slots
	TicketSubmissionEndOffset    uint32 // Y, within an epoch
	MaxTicketAttempts            uint8  // N
	MaxTicketsPerExtrinsic       uint32 // K
	RecentHistoryDepth           uint32 // H
	MaxAuthPoolItems             uint32 // O
	MaxAuthQueueItems            uint32 // Q
	WorkReplacementPeriod        uint32 // U
	MaxWorkReportDependencies    uint32 // J
	MaxLookupAnchorAge           uint32 // L
	MaxWorkReportSize            uint64 // bytes
	CoreAccumulateGasBudget      uint64 // per-core accumulate gas per block
}

// SuperMajority returns V_s = 2V/3 + 1.
func (c *Config) SuperMajority() uint16 {
	return uint16(2*int(c.ValidatorCount)/3) + 1
}

// Mainnet returns the full-size JAM protocol configuration.
func Mainnet() *Config {
	return &Config{
		CoreCount:                 341,
		ValidatorCount:            1023,
		EpochLength:               600,
		RotationPeriod:            10,
		TicketSubmissionEndOffset: 500,
		MaxTicketAttempts:         3,
		MaxTicketsPerExtrinsic:    16,
		RecentHistoryDepth:        8,
		MaxAuthPoolItems:          8,
		MaxAuthQueueItems:         80,
		WorkReplacementPeriod:     5,
		MaxWorkReportDependencies: 8,
		MaxLookupAnchorAge:        14400,
		MaxWorkReportSize:         96 * 1024,
		CoreAccumulateGasBudget:   3_500_000_000,
	}
}

// Tiny returns a small configuration suitable for unit and fuzz tests,
// mirroring the teacher's mainnet/minimal split in shared/params.
func Tiny() *Config {
	return &Config{
		CoreCount:                 2,
		ValidatorCount:            6,
		EpochLength:               12,
		RotationPeriod:            4,
		TicketSubmissionEndOffset: 10,
		MaxTicketAttempts:         3,
		MaxTicketsPerExtrinsic:    3,
		RecentHistoryDepth:        4,
		MaxAuthPoolItems:          4,
		MaxAuthQueueItems:         4,
		WorkReplacementPeriod:     3,
		MaxWorkReportDependencies: 4,
		MaxLookupAnchorAge:        100,
		MaxWorkReportSize:         4096,
		CoreAccumulateGasBudget:   1_000_000,
	}
}

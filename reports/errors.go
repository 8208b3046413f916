package reports

import "errors"

// Error kinds named in spec §4.7/§7.
var (
	ErrBadCoreIndex              = errors.New("reports: core_index >= C")
	ErrCoresNotIncreasing         = errors.New("reports: guarantees not core-index-strictly-increasing")
	ErrWorkReportTooBig           = errors.New("reports: output size exceeds max_work_report_size")
	ErrAccumulateGasOverBudget    = errors.New("reports: sum of declared accumulate-gas exceeds core budget")
	ErrServiceGasUnderMinimum     = errors.New("reports: declared gas below service's min_gas_accumulate")
	ErrTooManyDependencies        = errors.New("reports: dependency count exceeds J")
	ErrFutureSlot                 = errors.New("reports: guarantee.slot > current_slot")
	ErrSlotTooOld                 = errors.New("reports: guarantee.slot outside current-or-last epoch")
	ErrAnchorNotRecent            = errors.New("reports: anchor hash not present in recent history")
	ErrBadStateRoot               = errors.New("reports: anchor state_root does not match recent history")
	ErrBadBeefyMmrRoot            = errors.New("reports: anchor beefy root does not match recent history")
	ErrGuarantorCountOutOfRange   = errors.New("reports: guarantor signature count outside [V_s lower, V_s upper] bound")
	ErrGuarantorsNotIncreasing    = errors.New("reports: guarantor validator indices not strictly increasing")
	ErrBadGuarantorSignature      = errors.New("reports: guarantor signature failed verification")
	ErrBadCoreAssignment          = errors.New("reports: guarantor is not assigned to the declared core this rotation")
	ErrUnknownService             = errors.New("reports: result references a service not in delta")
	ErrBadCodeHash                = errors.New("reports: result code_hash does not match service's code")
	ErrDependencyNotRecent        = errors.New("reports: prerequisite or segment-root lookup hash not present in recent history")
	ErrCoreNotFree                = errors.New("reports: core is occupied and its prior report has not timed out")
	ErrDuplicatePackageHash       = errors.New("reports: package hash duplicates a report in recent history or this batch")
	ErrAuthorizerNotInPool        = errors.New("reports: authorizer hash does not belong to alpha[core]")
)

package accumulation

import "github.com/jamzig/jamzig-sub002/state"

// PVM is the opaque program-virtual-machine oracle the STF dispatches a
// ready work-result to, per §1/§4.9: its internals are not specified
// here, only the (next_account, gas_used, result|failure) contract it
// answers with. On failure (including running out of declared gas) next
// is ignored and δ is left untouched for that result.
type PVM interface {
	Accumulate(svc state.ServiceAccount, report *state.WorkReport, result *state.WorkResult, gasLimit state.Gas) (next state.ServiceAccount, gasUsed state.Gas, outputHash state.Hash, ok bool)
}

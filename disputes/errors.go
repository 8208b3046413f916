package disputes

import "errors"

// Error kinds named in spec §4.6/§7.
var (
	ErrVerdictTargetAlreadyJudged  = errors.New("disputes: verdict target already in good/bad/wonky")
	ErrVerdictVoteCountMismatch    = errors.New("disputes: verdict carries fewer than V_s votes")
	ErrVerdictBadSignature         = errors.New("disputes: a verdict vote signature failed verification")
	ErrVerdictVotesNotOrdered      = errors.New("disputes: verdict votes not strictly validator-index-increasing")
	ErrCulpritNotForBadVerdict     = errors.New("disputes: culprit targets a report not in the bad set")
	ErrCulpritAlreadyPunished      = errors.New("disputes: culprit already in the punish set")
	ErrCulpritBadSignature         = errors.New("disputes: culprit guarantee signature failed verification")
	ErrFaultNotForGoodVerdict      = errors.New("disputes: fault targets a report not in the good set")
	ErrFaultAlreadyPunished        = errors.New("disputes: fault already in the punish set")
	ErrFaultBadSignature           = errors.New("disputes: fault vote signature failed verification")
	ErrFaultVoteNotInverted        = errors.New("disputes: fault vote does not invert the verdict outcome")
)

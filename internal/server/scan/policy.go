package scan

// Verdict is the outcome of evaluating one scanned code pair.
type Verdict string

const (
	// VerdictRejectIncomplete means at least one code was empty after
	// sanitization; nothing is recorded.
	VerdictRejectIncomplete Verdict = "REJECT_INCOMPLETE"
	// VerdictAccept means the pair matched and was not seen before.
	VerdictAccept Verdict = "ACCEPT"
	// VerdictRequireOverride means the pair mismatched or repeats an
	// already-recorded pair; a supervisor must release it.
	VerdictRequireOverride Verdict = "REQUIRE_OVERRIDE"
)

// Decide is the divergence policy: a total function of the sanitized pair
// and the duplicate-lookup result.
//
// The operator scans the same physical identifier twice, from two spots on
// the label, so equality is the primary check. A mismatch and an exact
// repeat of a prior pair are treated the same way: both go through the
// override path.
func Decide(transport, order string, duplicate bool) Verdict {
	if transport == "" || order == "" {
		return VerdictRejectIncomplete
	}
	if transport != order || duplicate {
		return VerdictRequireOverride
	}
	return VerdictAccept
}

package gate

// Decision is the UI outcome of the gate
type Decision int

const (
	Loading Decision = iota
	Entering
	Finalizing
	NeedsVerification
)

func (d Decision) String() string {
	switch d {
	case Loading:
		return "loading"
	case Entering:
		return "entering"
	case Finalizing:
		return "finalizing"
	case NeedsVerification:
		return "needs_verification"
	default:
		return "unknown"
	}
}

// Decide maps a reconciled state to a decision. A local grant alone is
// never enough.
func Decide(s GateState) Decision {
	switch {
	case s.RemoteVerified && s.LocalValid:
		return Entering
	case s.RemoteVerified:
		return Finalizing
	default:
		return NeedsVerification
	}
}

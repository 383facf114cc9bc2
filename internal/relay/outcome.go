package relay

// Outcome classifies how the engine disposed of an inbound envelope.
type Outcome int

const (
	// Accepted means the envelope mutated room state and produced its
	// outbound result.
	Accepted Outcome = iota
	// Ignored means the envelope was silently discarded: malformed JSON, an
	// unknown type, or a state-machine precondition violation.
	Ignored
	// UserError means an expected user mistake (a mistyped room code) that
	// was reported back to the requesting connection only.
	UserError
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Ignored:
		return "ignored"
	case UserError:
		return "user-error"
	default:
		return "unknown"
	}
}

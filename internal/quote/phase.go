package quote

// Phase is a step in the lifecycle of a single quote request. Each request
// starts at Idle and ends in exactly one terminal phase; no phase is re-entered.
type Phase int

const (
	Idle Phase = iota
	Validating
	Invalid
	Submitting
	Transmitted
	Denied
	Failed
	Priced
)

var phaseNames = [...]string{
	Idle:        "idle",
	Validating:  "validating",
	Invalid:     "invalid",
	Submitting:  "submitting",
	Transmitted: "transmitted",
	Denied:      "denied",
	Failed:      "failed",
	Priced:      "priced",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// Terminal reports whether p ends the lifecycle.
func (p Phase) Terminal() bool {
	switch p {
	case Invalid, Denied, Failed, Priced:
		return true
	}
	return false
}

// PhaseFor maps an error returned by a quote operation to its terminal phase.
func PhaseFor(err error) Phase {
	switch KindOf(err) {
	case KindNone:
		return Priced
	case KindInvalid:
		return Invalid
	case KindDenied:
		return Denied
	default:
		return Failed
	}
}

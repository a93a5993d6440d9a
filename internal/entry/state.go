package entry

// Mode is which screen of the entry flow is showing.
type Mode int

const (
	ModeLanding Mode = iota
	ModeForm
)

func (m Mode) String() string {
	switch m {
	case ModeLanding:
		return "landing"
	case ModeForm:
		return "form"
	default:
		return "unknown"
	}
}

// Status tracks the submission lifecycle.
type Status int

const (
	StatusIdle Status = iota
	StatusSubmitting
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSubmitting:
		return "submitting"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Intent is fixed at construction: join when a code was supplied, create otherwise.
type Intent int

const (
	IntentCreate Intent = iota
	IntentJoin
)

func (i Intent) String() string {
	if i == IntentJoin {
		return "join"
	}
	return "create"
}

// Outcome reports what a call to Submit did.
type Outcome int

const (
	// OutcomeRefused means the submission was inert: name too short, a
	// submission already in flight, not on the form, or torn down.
	OutcomeRefused Outcome = iota
	OutcomeProceeded
	OutcomeFailed
	// OutcomeDiscarded means the controller was closed while the gateway
	// call was outstanding and its result was dropped.
	OutcomeDiscarded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRefused:
		return "refused"
	case OutcomeProceeded:
		return "proceeded"
	case OutcomeFailed:
		return "failed"
	case OutcomeDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// State is a point-in-time copy of the form.
type State struct {
	Mode         Mode
	Intent       Intent
	JoinCode     string
	DisplayName  string
	AvatarID     string
	Status       Status
	ErrorMessage string
}

// CanSubmit reports whether a Submit call would reach the gateway.
func (s State) CanSubmit() bool {
	return s.Mode == ModeForm && s.Status != StatusSubmitting && ValidDisplayName(s.DisplayName)
}

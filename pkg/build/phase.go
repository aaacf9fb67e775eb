package build

// Phase is the stage a build run reached.
type Phase int

const (
	PhaseDiscover Phase = iota
	PhaseValidate
	PhaseOrder
	PhaseDispatch
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseDiscover:
		return "DISCOVER"
	case PhaseValidate:
		return "VALIDATE"
	case PhaseOrder:
		return "ORDER"
	case PhaseDispatch:
		return "DISPATCH"
	case PhaseDone:
		return "DONE"
	case PhaseFailed:
		return "FAILED"
	}

	return "UNKNOWN"
}

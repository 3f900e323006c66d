package fetch

// State is the lifecycle of a Resource.
type State int

const (
	NotStarted State = iota
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText lets State appear as its name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

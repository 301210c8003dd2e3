package ingest

// State is the position of a source in its ingestion run.
//
//	Idle -> Fetching -> Parsing -> Validating -> Persisting -> Idle
//
// Failed is reached from Fetching, Parsing or Persisting and is left by the next run.
type State int

const (
	StateIdle State = iota
	StateFetching
	StateParsing
	StateValidating
	StatePersisting
	StateFailed
)

var stateNames = [...]string{
	StateIdle:       "idle",
	StateFetching:   "fetching",
	StateParsing:    "parsing",
	StateValidating: "validating",
	StatePersisting: "persisting",
	StateFailed:     "failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// stateLabels lists every state name, for metrics that expose all of them.
func stateLabels() []string {
	return stateNames[:]
}

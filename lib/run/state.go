package run

// State identifies where in the acquisition sequence a run is.
type State int

const (
	Idle State = iota
	Connecting
	Identifying
	Configuring
	Stabilizing
	Sampling
	ShuttingDown
	Finished
)

var stateNames = map[State]string{
	Idle:         "idle",
	Connecting:   "connecting",
	Identifying:  "identifying",
	Configuring:  "configuring",
	Stabilizing:  "stabilizing",
	Sampling:     "sampling",
	ShuttingDown: "shutting down",
	Finished:     "finished",
}

func (s State) String() string { return stateNames[s] }

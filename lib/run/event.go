package run

import "github.com/gotmc/magnadc/lib/sink"

// EventKind tags entries on the run-log stream.
type EventKind int

const (
	KindState    EventKind = iota // state transition; State is set
	KindInfo                      // human-readable progress line; Text is set
	KindSent                      // command written; Text is the wire line
	KindReceived                  // reply line; Text is the raw reply
	KindSample                    // measurement stored; Sample is set
	KindSkip                      // measurement skipped after a parse failure
	KindError                     // fatal run error; Err is set
	KindDone                      // sentinel: end of run, stream closes after
)

// Event is one entry in a run's ordered log stream. The stream is
// drained by the control surface; the acquisition worker never blocks
// on it.
type Event struct {
	Kind   EventKind
	State  State
	Text   string
	Sample sink.Sample
	Err    error // set on KindError; on KindDone when the run failed
}

// Package run executes one timed acquisition against a Magna-Power TS
// series supply: connect, identify, configure, stabilize, sample on an
// interval, and shut the output down safely on every exit path.
package run

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gotmc/magnadc"
	"github.com/gotmc/magnadc/lib/sink"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"
)

// OpenFunc opens the line transport for a run. The default opens the
// configured serial port; tests substitute scripted ports.
type OpenFunc func(cfg Config) (magnadc.Port, error)

func defaultOpen(cfg Config) (magnadc.Port, error) {
	return magnadc.Open(cfg.Port, cfg.BaudRate, cfg.ReadTimeout)
}

// Runner executes one acquisition run. It owns the connection, the
// config, and the sink for the run's duration; the control surface only
// consumes the event stream. A Runner is single use: one Start per
// Runner, one run at a time per connection.
type Runner struct {
	cfg     Config
	snk     *sink.Memory
	log     zerolog.Logger
	open    OpenFunc
	started bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger attaches a diagnostic logger. The formal record of the run
// is the event stream; the logger is for operator-level diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// WithOpener substitutes the transport opener.
func WithOpener(open OpenFunc) Option {
	return func(r *Runner) { r.open = open }
}

// New creates a Runner for cfg, appending samples to snk. cfg should
// already be validated.
func New(cfg Config, snk *sink.Memory, opts ...Option) *Runner {
	r := &Runner{
		cfg:  cfg.withDefaults(),
		snk:  snk,
		log:  zerolog.Nop(),
		open: defaultOpen,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start launches the run on its own goroutine and returns the run-log
// stream. The stream always ends with a single KindDone sentinel and is
// then closed, whatever the outcome; the consumer never hangs waiting
// for completion. Cancel ctx to stop the run early: the shutdown
// sequence still executes and the stream still terminates.
func (r *Runner) Start(ctx context.Context) (<-chan Event, error) {
	if r.started {
		return nil, errors.New("run already started")
	}
	r.started = true

	q := newEventQueue()
	go func() {
		err := r.run(ctx, q)
		q.push(Event{Kind: KindState, State: Finished})
		switch {
		case err == nil:
			q.push(Event{Kind: KindDone, Text: "run complete"})
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			q.push(Event{Kind: KindDone, Text: "run stopped"})
		default:
			q.push(Event{Kind: KindDone, Text: "run failed", Err: err})
		}
		q.close()
	}()
	return q.out, nil
}

func (r *Runner) run(ctx context.Context, q *eventQueue) error {
	cfg := r.cfg
	state := func(s State) {
		r.log.Debug().Stringer("state", s).Msg("state change")
		q.push(Event{Kind: KindState, State: s})
	}
	info := func(format string, a ...any) {
		q.push(Event{Kind: KindInfo, Text: fmt.Sprintf(format, a...)})
	}

	state(Connecting)
	info("connecting to %s at %d baud", cfg.Port, cfg.BaudRate)
	port, err := r.open(cfg)
	if err != nil {
		r.log.Error().Err(err).Msg("connect failed")
		q.push(Event{Kind: KindError, Err: err})
		state(ShuttingDown)
		return err
	}

	// Every line on the wire, both directions, goes on the stream.
	ins := magnadc.NewInstrument(loggedPort{p: port, q: q})

	runErr := r.sequence(ctx, q, ins)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		r.log.Error().Err(runErr).Msg("run failed")
		q.push(Event{Kind: KindError, Err: runErr})
	}

	state(ShuttingDown)
	// Zero the setpoint and drop the output before the port goes away. A
	// failed safety command is logged and shutdown continues: leaving
	// the port open would be worse than an unreported disable failure.
	if err := ins.SetCurrent(0); err != nil {
		info("shutdown: %s", err)
	}
	if err := ins.DisableOutput(); err != nil {
		info("shutdown: %s", err)
	} else {
		info("output stopped and current set to 0")
	}
	if err := port.Close(); err != nil {
		runErr = multierr.Append(runErr, err)
	} else {
		info("serial connection closed")
	}
	return runErr
}

// sequence walks Identifying through Sampling. The caller owns shutdown.
func (r *Runner) sequence(ctx context.Context, q *eventQueue, ins *magnadc.Instrument) error {
	cfg := r.cfg
	state := func(s State) {
		r.log.Debug().Stringer("state", s).Msg("state change")
		q.push(Event{Kind: KindState, State: s})
	}
	info := func(format string, a ...any) {
		q.push(Event{Kind: KindInfo, Text: fmt.Sprintf(format, a...)})
	}

	if cfg.StartDelay > 0 {
		info("waiting %s for the supply to come up", cfg.StartDelay)
	}
	if !sleep(ctx, cfg.StartDelay) {
		info("stop requested during start delay")
		return ctx.Err()
	}

	state(Identifying)
	idn, err := ins.Identify()
	if err != nil {
		return err
	}
	info("device identity: %s", idn)

	state(Configuring)
	start := time.Now() // elapsed-time reference for every sample
	// Current to zero and the compliance limit in place before the
	// output enables, so enabling never exposes an unbounded setpoint.
	steps := []func() error{
		ins.SetLocalControl,
		func() error { return ins.SetCurrent(0) },
		func() error { return ins.SetVoltageLimit(cfg.VoltageLimit) },
		ins.EnableOutput,
		func() error { return ins.SetCurrent(cfg.TargetCurrent) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	info("supply sourcing %s A, compliance limit %s V",
		trimNum(cfg.TargetCurrent), trimNum(cfg.VoltageLimit))

	state(Stabilizing)
	if cfg.Stabilize > 0 {
		info("stabilization wait %s", cfg.Stabilize)
	}
	if !sleep(ctx, cfg.Stabilize) {
		info("stop requested during stabilization")
		return ctx.Err()
	}

	state(Sampling)
	info("starting %d measurements", cfg.SampleCount)
	for i := 0; i < cfg.SampleCount; i++ {
		if ctx.Err() != nil {
			info("stop requested, halting measurement loop")
			return ctx.Err()
		}
		elapsed := time.Since(start)

		volts, verr := ins.MeasureVoltage()
		if fatal(verr) {
			return verr
		}
		amps, aerr := ins.MeasureCurrent()
		if fatal(aerr) {
			return aerr
		}
		if verr != nil || aerr != nil {
			q.push(Event{Kind: KindSkip, Text: skipText(verr, aerr)})
		} else {
			s := sink.Sample{Elapsed: elapsed, Voltage: volts, Current: amps}
			r.snk.Append(s)
			r.log.Debug().
				Dur("elapsed", s.Elapsed).
				Float64("volts", s.Voltage).
				Float64("amps", s.Current).
				Msg("sample")
			q.push(Event{Kind: KindSample, Sample: s})
		}

		if i < cfg.SampleCount-1 {
			if !sleep(ctx, cfg.SampleInterval) {
				info("stop requested during interval")
				return ctx.Err()
			}
		}
	}
	info("data logging complete")
	return nil
}

// fatal reports whether a measurement error must end the run. Parse
// failures are recovered locally; everything else is not.
func fatal(err error) bool {
	if err == nil {
		return false
	}
	var pe *magnadc.ParseError
	return !errors.As(err, &pe)
}

// skipText names the raw replies behind a skipped measurement.
func skipText(errs ...error) string {
	var parts []string
	for _, err := range errs {
		var pe *magnadc.ParseError
		if errors.As(err, &pe) {
			parts = append(parts, fmt.Sprintf("%s -> %q", pe.Op, pe.Reply))
		}
	}
	return "unparseable measurement: " + strings.Join(parts, ", ")
}

// trimNum renders a setpoint the way it goes on the wire.
func trimNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// loggedPort mirrors every exchanged line onto the event stream.
type loggedPort struct {
	p magnadc.Port
	q *eventQueue
}

func (lp loggedPort) WriteLine(s string) error {
	err := lp.p.WriteLine(s)
	if err == nil {
		lp.q.push(Event{Kind: KindSent, Text: s})
	}
	return err
}

func (lp loggedPort) ReadLine() (string, error) {
	s, err := lp.p.ReadLine()
	if err == nil {
		lp.q.push(Event{Kind: KindReceived, Text: s})
	}
	return s, err
}

func (lp loggedPort) Close() error { return lp.p.Close() }

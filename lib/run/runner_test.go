package run

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gotmc/magnadc"
	"github.com/gotmc/magnadc/lib/sink"
	"github.com/stretchr/testify/require"
)

// fakePort scripts the supply's side of the conversation. Replies are
// keyed by the exact wire line; a slice of replies is consumed in order,
// with the last entry repeating so steady-state measurements don't need
// long scripts. A query with no scripted reply times out.
type fakePort struct {
	mu      sync.Mutex
	lines   []string
	replies map[string][]string
	pending string
	closes  int
}

func (f *fakePort) WriteLine(s string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = append(f.lines, s)
	f.pending = s
	return nil
}

func (f *fakePort) ReadLine() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rs := f.replies[f.pending]
	if len(rs) == 0 {
		return "", magnadc.ErrTimeout
	}
	r := rs[0]
	if len(rs) > 1 {
		f.replies[f.pending] = rs[1:]
	}
	return r, nil
}

func (f *fakePort) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	return nil
}

func (f *fakePort) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.lines))
	copy(out, f.lines)
	return out
}

func healthyPort() *fakePort {
	return &fakePort{replies: map[string][]string{
		"*IDN?":      {"Magna-Power Electronics, TS Series IV"},
		"MEAS:VOLT?": {"5.012"},
		"MEAS:CURR?": {"1.998"},
	}}
}

func opener(p *fakePort) OpenFunc {
	return func(Config) (magnadc.Port, error) { return p, nil }
}

func testConfig() Config {
	return Config{
		Port:           "/dev/ttyTEST",
		VoltageLimit:   9,
		TargetCurrent:  5,
		SampleInterval: 50 * time.Millisecond,
		SampleCount:    3,
		Destination:    "out.csv",
	}
}

// drain collects the whole stream and returns it with the terminal
// sentinel, which must be the stream's last event.
func drain(t *testing.T, events <-chan Event) ([]Event, Event) {
	t.Helper()
	var all []Event
	for e := range events {
		all = append(all, e)
	}
	require.NotEmpty(t, all)
	done := all[len(all)-1]
	require.Equal(t, KindDone, done.Kind)
	return all, done
}

func kinds(events []Event, k EventKind) []Event {
	var out []Event
	for _, e := range events {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

func states(events []Event) []State {
	var out []State
	for _, e := range events {
		if e.Kind == KindState {
			out = append(out, e.State)
		}
	}
	return out
}

func TestRunCollectsAllSamples(t *testing.T) {
	port := healthyPort()
	snk := sink.NewMemory()
	r := New(testConfig(), snk, WithOpener(opener(port)))

	events, err := r.Start(context.Background())
	require.NoError(t, err)
	all, done := drain(t, events)
	require.NoError(t, done.Err)

	samples := snk.All()
	require.Len(t, samples, 3)
	for _, s := range samples {
		require.Equal(t, 5.012, s.Voltage)
		require.Equal(t, 1.998, s.Current)
	}
	for i := 1; i < len(samples); i++ {
		require.Greater(t, samples[i].Elapsed, samples[i-1].Elapsed)
		require.GreaterOrEqual(t, samples[i].Elapsed-samples[i-1].Elapsed, 50*time.Millisecond)
	}

	require.Equal(t,
		[]State{Connecting, Identifying, Configuring, Stabilizing, Sampling, ShuttingDown, Finished},
		states(all))
	require.Len(t, kinds(all, KindSample), 3)
	require.Equal(t, 1, port.closes)
}

func TestRunConfigureAndShutdownOrder(t *testing.T) {
	port := healthyPort()
	r := New(testConfig(), sink.NewMemory(), WithOpener(opener(port)))

	events, err := r.Start(context.Background())
	require.NoError(t, err)
	_, done := drain(t, events)
	require.NoError(t, done.Err)

	sent := port.sent()
	require.Equal(t, []string{
		"*IDN?",
		"CONF:SETPT 0",
		"CURR 0",
		"VOLT 9",
		"OUTP:START",
		"CURR 5",
	}, sent[:6])
	// Safety pair last, in order: zero the current, then drop output.
	require.Equal(t, []string{"CURR 0", "OUTP:STOP"}, sent[len(sent)-2:])
}

func TestRunSkipsUnparseableMeasurement(t *testing.T) {
	port := healthyPort()
	port.replies["MEAS:VOLT?"] = []string{"5.012", "ERR", "5.020"}
	snk := sink.NewMemory()
	r := New(testConfig(), snk, WithOpener(opener(port)))

	events, err := r.Start(context.Background())
	require.NoError(t, err)
	all, done := drain(t, events)
	require.NoError(t, done.Err)

	require.Equal(t, 2, snk.Len())
	skips := kinds(all, KindSkip)
	require.Len(t, skips, 1)
	require.Contains(t, skips[0].Text, `"ERR"`)
	require.Empty(t, kinds(all, KindError))
}

func TestRunCancelledBeforeSampling(t *testing.T) {
	port := healthyPort()
	cfg := testConfig()
	cfg.StartDelay = time.Hour
	snk := sink.NewMemory()
	r := New(cfg, snk, WithOpener(opener(port)))

	ctx, cancel := context.WithCancel(context.Background())
	events, err := r.Start(ctx)
	require.NoError(t, err)
	cancel()

	begin := time.Now()
	_, done := drain(t, events)
	require.Less(t, time.Since(begin), 5*time.Second)

	require.NoError(t, done.Err)
	require.Equal(t, "run stopped", done.Text)
	require.Zero(t, snk.Len())

	// The port reached Open, so the safety pair still runs.
	sent := port.sent()
	require.Equal(t, []string{"CURR 0", "OUTP:STOP"}, sent)
	require.Equal(t, 1, port.closes)
}

func TestRunCancelledDuringInterval(t *testing.T) {
	port := healthyPort()
	cfg := testConfig()
	cfg.SampleInterval = time.Hour
	snk := sink.NewMemory()
	r := New(cfg, snk, WithOpener(opener(port)))

	ctx, cancel := context.WithCancel(context.Background())
	events, err := r.Start(ctx)
	require.NoError(t, err)

	go func() {
		for snk.Len() == 0 {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()

	_, done := drain(t, events)
	require.NoError(t, done.Err)
	// The iteration under way completed before the loop noticed.
	require.Equal(t, 1, snk.Len())
	sent := port.sent()
	require.Equal(t, []string{"CURR 0", "OUTP:STOP"}, sent[len(sent)-2:])
}

func TestRunOpenFailure(t *testing.T) {
	connectErr := &magnadc.ConnectError{Port: "/dev/ttyTEST", Err: errors.New("no such device")}
	r := New(testConfig(), sink.NewMemory(), WithOpener(func(Config) (magnadc.Port, error) {
		return nil, connectErr
	}))

	events, err := r.Start(context.Background())
	require.NoError(t, err)
	all, done := drain(t, events)

	var ce *magnadc.ConnectError
	require.True(t, errors.As(done.Err, &ce))
	require.Len(t, kinds(all, KindError), 1)
	require.Empty(t, kinds(all, KindSent))
	require.Equal(t, []State{Connecting, ShuttingDown, Finished}, states(all))
}

func TestRunCommFailureTriggersShutdown(t *testing.T) {
	port := healthyPort()
	delete(port.replies, "MEAS:CURR?") // second query of each iteration times out
	r := New(testConfig(), sink.NewMemory(), WithOpener(opener(port)))

	events, err := r.Start(context.Background())
	require.NoError(t, err)
	all, done := drain(t, events)

	var ce *magnadc.CommError
	require.True(t, errors.As(done.Err, &ce))
	require.Equal(t, "MEAS:CURR?", ce.Op)
	require.Len(t, kinds(all, KindError), 1)

	sent := port.sent()
	require.Equal(t, []string{"CURR 0", "OUTP:STOP"}, sent[len(sent)-2:])
	require.Equal(t, 1, port.closes)
}

func TestRunStreamMirrorsWireTraffic(t *testing.T) {
	port := healthyPort()
	r := New(testConfig(), sink.NewMemory(), WithOpener(opener(port)))

	events, err := r.Start(context.Background())
	require.NoError(t, err)
	all, done := drain(t, events)
	require.NoError(t, done.Err)

	var sent []string
	for _, e := range kinds(all, KindSent) {
		sent = append(sent, e.Text)
	}
	require.Equal(t, port.sent(), sent)

	received := kinds(all, KindReceived)
	// One identity reply plus two replies per sampling iteration.
	require.Len(t, received, 1+2*3)
}

func TestRunnerSingleUse(t *testing.T) {
	r := New(testConfig(), sink.NewMemory(), WithOpener(opener(healthyPort())))
	events, err := r.Start(context.Background())
	require.NoError(t, err)

	_, err = r.Start(context.Background())
	require.Error(t, err)

	_, done := drain(t, events)
	require.NoError(t, done.Err)
}

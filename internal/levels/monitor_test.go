package levels

import (
	"math"
	"sync/atomic"
	"testing"
	"time"
)

// dbFor returns a dBFS value that normalizes to exactly level.
func dbFor(level float64) float64 {
	return 20 * math.Log10(level)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	m := NewMonitor(Config{})
	cases := []struct {
		db   float64
		want float64
	}{
		{db: -160, want: 0},
		{db: -50, want: 0},
		{db: math.Inf(-1), want: 0},
		{db: -40, want: 0.05},
		{db: -6, want: math.Pow(10, -6.0/20)},
		{db: 0, want: 1},
		{db: 12, want: 1},
	}
	for _, tc := range cases {
		if got := m.Normalize(tc.db); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("Normalize(%v) = %v, want %v", tc.db, got, tc.want)
		}
	}
}

func TestSnapshotLengthIsConstant(t *testing.T) {
	t.Parallel()

	m := NewMonitor(Config{Capacity: 5})
	for i := 0; i < 12; i++ {
		if got := len(m.Snapshot().Samples); got != 5 {
			t.Fatalf("tick %d: unexpected length %d", i, got)
		}
		m.Record(dbFor(0.5))
	}
}

func TestSnapshotBeforeWrapKeepsWriteOrder(t *testing.T) {
	t.Parallel()

	m := NewMonitor(Config{Capacity: 5})
	values := []float64{0.1, 0.2, 0.3}
	for _, v := range values {
		m.Record(dbFor(v))
	}

	got := m.Snapshot().Samples
	for i, v := range values {
		if math.Abs(got[i]-v) > 1e-9 {
			t.Fatalf("slot %d = %v, want %v (%v)", i, got[i], v, got)
		}
	}
	if got[3] != 0 || got[4] != 0 {
		t.Fatalf("expected trailing zeros, got %v", got)
	}
}

func TestSnapshotAfterWrapIsRotatedWindow(t *testing.T) {
	t.Parallel()

	m := NewMonitor(Config{Capacity: 4})
	values := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7}
	for _, v := range values {
		m.Record(dbFor(v))
	}

	want := values[len(values)-4:]
	got := m.Snapshot().Samples
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("unexpected window %v, want %v", got, want)
		}
	}
}

func TestResetZeroesRing(t *testing.T) {
	t.Parallel()

	m := NewMonitor(Config{Capacity: 3})
	m.Record(dbFor(0.9))
	m.Reset()
	for _, v := range m.Snapshot().Samples {
		if v != 0 {
			t.Fatalf("expected zeroed ring, got %v", m.Snapshot().Samples)
		}
	}
}

func TestElapsedIsRecomputedFromStart(t *testing.T) {
	t.Parallel()

	m := NewMonitor(Config{Capacity: 3, Interval: time.Hour})
	base := time.Unix(1000, 0)
	var offset atomic.Int64
	m.now = func() time.Time { return base.Add(time.Duration(offset.Load())) }

	m.Start(MeterFunc(func() float64 { return -20 }))
	defer m.Stop()

	offset.Store(int64(1500 * time.Millisecond))
	m.Tick()
	offset.Store(int64(1600 * time.Millisecond))
	m.Tick()

	if got := m.Snapshot().Elapsed; got != 1600*time.Millisecond {
		t.Fatalf("unexpected elapsed: %v", got)
	}
}

func TestStartTicksMeter(t *testing.T) {
	t.Parallel()

	m := NewMonitor(Config{Capacity: 4, Interval: 5 * time.Millisecond})
	var reads atomic.Int32
	m.Start(MeterFunc(func() float64 {
		reads.Add(1)
		return -10
	}))

	deadline := time.After(2 * time.Second)
	for reads.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("meter was not polled")
		case <-time.After(5 * time.Millisecond):
		}
	}
	m.Stop()

	if m.Snapshot().Samples[0] == 0 {
		t.Fatalf("expected first slot to be written")
	}
}

func TestStopKeepsElapsedUntilReset(t *testing.T) {
	t.Parallel()

	m := NewMonitor(Config{Capacity: 3, Interval: time.Hour})
	base := time.Unix(1000, 0)
	var offset atomic.Int64
	m.now = func() time.Time { return base.Add(time.Duration(offset.Load())) }

	m.Start(MeterFunc(func() float64 { return -20 }))
	offset.Store(int64(2 * time.Second))
	m.Tick()
	m.Stop()

	offset.Store(int64(5 * time.Second))
	m.Record(-20)
	if got := m.Snapshot().Elapsed; got != 2*time.Second {
		t.Fatalf("expected last take elapsed after stop, got %v", got)
	}

	m.Reset()
	if got := m.Snapshot().Elapsed; got != 0 {
		t.Fatalf("expected reset to clear elapsed, got %v", got)
	}
}

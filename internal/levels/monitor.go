package levels

import (
	"math"
	"sync"
	"time"

	"lingomic/internal/domain"
)

const (
	DefaultCapacity     = 30
	DefaultInterval     = 50 * time.Millisecond
	DefaultNoiseFloorDB = -50.0
	DefaultMinAmplitude = 0.05
	DefaultMaxAmplitude = 1.0
)

// Meter reports the instantaneous average power in dBFS.
type Meter interface {
	AveragePower() float64
}

// MeterFunc adapts a function to Meter.
type MeterFunc func() float64

func (f MeterFunc) AveragePower() float64 { return f() }

// Config controls ring size, sampling rate and amplitude shaping.
type Config struct {
	Capacity     int
	Interval     time.Duration
	NoiseFloorDB float64
	MinAmplitude float64
	MaxAmplitude float64
}

// Monitor samples a Meter into a fixed-size ring for waveform display.
type Monitor struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	meter   Meter
	samples []float64
	next    int
	ticks   int
	started time.Time
	elapsed time.Duration
	stop    chan struct{}
	done    chan struct{}
}

func NewMonitor(cfg Config) *Monitor {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.NoiseFloorDB == 0 {
		cfg.NoiseFloorDB = DefaultNoiseFloorDB
	}
	if cfg.MinAmplitude <= 0 {
		cfg.MinAmplitude = DefaultMinAmplitude
	}
	if cfg.MaxAmplitude <= 0 || cfg.MaxAmplitude < cfg.MinAmplitude {
		cfg.MaxAmplitude = DefaultMaxAmplitude
	}
	return &Monitor{
		cfg:     cfg,
		now:     time.Now,
		samples: make([]float64, cfg.Capacity),
	}
}

// Normalize maps a dBFS reading onto the display band.
func (m *Monitor) Normalize(db float64) float64 {
	if math.IsNaN(db) || db <= m.cfg.NoiseFloorDB {
		return 0
	}
	level := math.Pow(10, db/20)
	return math.Min(math.Max(level, m.cfg.MinAmplitude), m.cfg.MaxAmplitude)
}

// Start resets the ring and ticks meter until Stop.
func (m *Monitor) Start(meter Meter) {
	m.Stop()

	m.mu.Lock()
	m.resetLocked()
	m.meter = meter
	m.started = m.now()
	stop := make(chan struct{})
	done := make(chan struct{})
	m.stop = stop
	m.done = done
	m.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(m.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				m.Tick()
			}
		}
	}()
}

// Stop halts sampling. The ring and elapsed time keep the last take.
func (m *Monitor) Stop() {
	m.mu.Lock()
	stop, done := m.stop, m.done
	m.stop, m.done = nil, nil
	m.meter = nil
	m.started = time.Time{}
	m.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

// Reset zeroes the ring and elapsed time.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
}

func (m *Monitor) resetLocked() {
	for i := range m.samples {
		m.samples[i] = 0
	}
	m.next = 0
	m.ticks = 0
	m.elapsed = 0
}

// Tick reads the meter once and advances the write index.
func (m *Monitor) Tick() {
	m.mu.Lock()
	meter := m.meter
	m.mu.Unlock()

	db := math.Inf(-1)
	if meter != nil {
		db = meter.AveragePower()
	}
	m.Record(db)
}

// Record writes a dBFS reading at the current index.
func (m *Monitor) Record(db float64) {
	level := m.Normalize(db)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples[m.next] = level
	m.next = (m.next + 1) % len(m.samples)
	m.ticks++
	if !m.started.IsZero() {
		m.elapsed = m.now().Sub(m.started)
	}
}

// Snapshot returns the ring oldest-first. Before the first wrap the view
// starts at slot zero, with unwritten slots trailing as zeros.
func (m *Monitor) Snapshot() domain.LevelSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]float64, len(m.samples))
	start := 0
	if m.ticks >= len(m.samples) {
		start = m.next
	}
	for i := range out {
		out[i] = m.samples[(start+i)%len(m.samples)]
	}
	return domain.LevelSnapshot{Samples: out, Elapsed: m.elapsed}
}

package audio

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"lingomic/internal/domain"
	"lingomic/internal/levels"
)

const blockQueue = 256

// RecorderConfig controls capture format and where finished files land.
type RecorderConfig struct {
	Capture CaptureConfig
	TempDir string
}

// Recorder captures the microphone into a FLAC temp file while feeding the
// level monitor.
type Recorder struct {
	opener  DeviceOpener
	cfg     RecorderConfig
	monitor *levels.Monitor
	meter   *PowerMeter
	log     zerolog.Logger
	now     func() time.Time

	mu     sync.Mutex
	active *take
}

type take struct {
	device  Device
	encoder *FlacEncoder
	blocks  chan []int16
	done    chan struct{}
	encErr  error
	started time.Time

	mu      sync.Mutex
	closed  bool
	dropped int
}

func NewRecorder(opener DeviceOpener, cfg RecorderConfig, monitor *levels.Monitor, logger zerolog.Logger) *Recorder {
	if cfg.Capture.SampleRate <= 0 {
		cfg.Capture.SampleRate = 44100
	}
	if cfg.Capture.Channels <= 0 {
		cfg.Capture.Channels = 1
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	if monitor == nil {
		monitor = levels.NewMonitor(levels.Config{})
	}
	return &Recorder{
		opener:  opener,
		cfg:     cfg,
		monitor: monitor,
		meter:   NewPowerMeter(),
		log:     logger.With().Str("component", "recorder").Logger(),
		now:     time.Now,
	}
}

// Start opens the capture device and begins encoding. Starting while already
// recording is a no-op.
func (r *Recorder) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		return nil
	}

	encoder, err := NewFlacEncoder(r.cfg.Capture.SampleRate, r.cfg.Capture.Channels)
	if err != nil {
		return domain.EncoderInitFailed("flac", err)
	}

	t := &take{
		encoder: encoder,
		blocks:  make(chan []int16, blockQueue),
		done:    make(chan struct{}),
	}

	device, err := r.opener.Open(r.cfg.Capture, func(data []byte) {
		samples := decodePCM16(data)
		r.meter.Observe(samples)

		t.mu.Lock()
		defer t.mu.Unlock()
		if t.closed {
			return
		}
		select {
		case t.blocks <- samples:
		default:
			t.dropped++
		}
	})
	if err != nil {
		return domain.DeviceConfigFailed("open capture device", err)
	}
	t.device = device

	go func() {
		defer close(t.done)
		for block := range t.blocks {
			if t.encErr != nil {
				continue
			}
			t.encErr = t.encoder.Write(block)
		}
	}()

	r.meter.Reset()
	if err := device.Start(); err != nil {
		t.shutdown()
		<-t.done
		device.Close()
		return domain.DeviceConfigFailed("start capture device", err)
	}

	t.started = r.now()
	r.active = t
	r.monitor.Start(r.meter)
	r.log.Info().
		Int("sample_rate", r.cfg.Capture.SampleRate).
		Int("channels", r.cfg.Capture.Channels).
		Str("device", r.cfg.Capture.InputDevice).
		Msg("recording started")
	return nil
}

// Stop finishes the take and writes it to a fresh temp file.
func (r *Recorder) Stop() (*domain.Recording, error) {
	r.mu.Lock()
	t := r.active
	r.active = nil
	r.mu.Unlock()

	if t == nil {
		return nil, nil
	}

	r.monitor.Stop()
	if err := t.device.Stop(); err != nil {
		r.log.Warn().Err(err).Msg("capture device stop failed")
	}
	t.device.Close()
	t.shutdown()
	<-t.done
	r.meter.Reset()

	duration := r.now().Sub(t.started)
	t.mu.Lock()
	dropped := t.dropped
	t.mu.Unlock()
	if dropped > 0 {
		r.log.Warn().Int("blocks", dropped).Msg("capture blocks dropped")
	}
	if t.encErr != nil {
		return nil, domain.FileIOError("Failed to encode recording", t.encErr)
	}
	if err := t.encoder.Close(); err != nil {
		return nil, domain.FileIOError("Failed to encode recording", err)
	}

	path := filepath.Join(r.cfg.TempDir, "recording-"+uuid.NewString()+".flac")
	if err := os.WriteFile(path, t.encoder.Bytes(), 0o600); err != nil {
		return nil, domain.FileIOError("Failed to get recording file", err)
	}

	r.log.Info().
		Str("path", path).
		Uint64("frames", t.encoder.Frames()).
		Dur("duration", duration).
		Msg("recording stopped")

	return &domain.Recording{
		Path:       path,
		SampleRate: r.cfg.Capture.SampleRate,
		Channels:   r.cfg.Capture.Channels,
		Duration:   duration,
	}, nil
}

func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active != nil
}

// Levels returns the waveform ring for the current or last take.
func (r *Recorder) Levels() domain.LevelSnapshot {
	return r.monitor.Snapshot()
}

func (t *take) shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.closed = true
		close(t.blocks)
	}
}

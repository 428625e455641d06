package audio

import (
	"encoding/binary"
	"math"
	"sync/atomic"
)

// SilenceDB is reported for an all-zero block.
const SilenceDB = -160.0

// PowerMeter holds the average power of the most recent capture block.
type PowerMeter struct {
	bits atomic.Uint64
}

func NewPowerMeter() *PowerMeter {
	m := &PowerMeter{}
	m.bits.Store(math.Float64bits(SilenceDB))
	return m
}

// AveragePower returns the last block's RMS level in dBFS.
func (m *PowerMeter) AveragePower() float64 {
	return math.Float64frombits(m.bits.Load())
}

func (m *PowerMeter) Observe(samples []int16) {
	m.bits.Store(math.Float64bits(RMSDecibels(samples)))
}

func (m *PowerMeter) Reset() {
	m.bits.Store(math.Float64bits(SilenceDB))
}

// RMSDecibels returns the RMS level of samples relative to full scale.
func RMSDecibels(samples []int16) float64 {
	if len(samples) == 0 {
		return SilenceDB
	}
	var sum float64
	for _, s := range samples {
		v := float64(s) / 32768
		sum += v * v
	}
	rms := math.Sqrt(sum / float64(len(samples)))
	if rms == 0 {
		return SilenceDB
	}
	return math.Max(20*math.Log10(rms), SilenceDB)
}

func decodePCM16(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return samples
}

package audio

import (
	"bytes"
	"fmt"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

const (
	BlockSize     = 4096
	BitsPerSample = 16
)

// FlacEncoder buffers verbatim FLAC frames of interleaved 16-bit PCM in
// memory.
type FlacEncoder struct {
	buf        bytes.Buffer
	enc        *flac.Encoder
	sampleRate uint32
	channels   int
	pending    []int16
	frames     uint64
}

func NewFlacEncoder(sampleRate int, channels int) (*FlacEncoder, error) {
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("unsupported channel count %d", channels)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}

	e := &FlacEncoder{sampleRate: uint32(sampleRate), channels: channels}
	info := &meta.StreamInfo{
		BlockSizeMin:  BlockSize,
		BlockSizeMax:  BlockSize,
		SampleRate:    uint32(sampleRate),
		NChannels:     uint8(channels),
		BitsPerSample: BitsPerSample,
	}
	enc, err := flac.NewEncoder(&e.buf, info)
	if err != nil {
		return nil, fmt.Errorf("creating flac encoder: %w", err)
	}
	enc.EnablePredictionAnalysis(true)
	e.enc = enc
	return e, nil
}

// Write appends interleaved samples and flushes every full block.
func (e *FlacEncoder) Write(samples []int16) error {
	e.pending = append(e.pending, samples...)
	blockLen := BlockSize * e.channels
	for len(e.pending) >= blockLen {
		if err := e.writeFrame(e.pending[:blockLen]); err != nil {
			return err
		}
		e.pending = e.pending[blockLen:]
	}
	return nil
}

// Close flushes the partial block and finalizes the stream.
func (e *FlacEncoder) Close() error {
	if n := len(e.pending) - len(e.pending)%e.channels; n > 0 {
		if err := e.writeFrame(e.pending[:n]); err != nil {
			return err
		}
	}
	e.pending = nil
	return e.enc.Close()
}

func (e *FlacEncoder) Bytes() []byte {
	return e.buf.Bytes()
}

// Frames is the number of per-channel samples encoded so far.
func (e *FlacEncoder) Frames() uint64 {
	return e.frames
}

func (e *FlacEncoder) writeFrame(interleaved []int16) error {
	n := len(interleaved) / e.channels
	subframes := make([]*frame.Subframe, e.channels)
	for ch := range subframes {
		samples := make([]int32, n)
		for i := 0; i < n; i++ {
			samples[i] = int32(interleaved[i*e.channels+ch])
		}
		subframes[ch] = &frame.Subframe{
			SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
			Samples:   samples,
			NSamples:  n,
		}
	}

	layout := frame.ChannelsMono
	if e.channels == 2 {
		layout = frame.ChannelsLR
	}
	f := &frame.Frame{
		Header: frame.Header{
			BlockSize:     uint16(n),
			SampleRate:    e.sampleRate,
			Channels:      layout,
			BitsPerSample: BitsPerSample,
		},
		Subframes: subframes,
	}
	if err := e.enc.WriteFrame(f); err != nil {
		return fmt.Errorf("writing flac frame: %w", err)
	}
	e.frames += uint64(n)
	return nil
}

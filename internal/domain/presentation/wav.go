package presentation

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-audio/wav"
)

// ErrNotWAV is returned for data that is not a RIFF/WAVE stream.
var ErrNotWAV = errors.New("not a RIFF/WAVE stream")

const (
	wavFormatPCM        = 1
	wavFormatFloat      = 3
	wavFormatExtensible = 0xFFFE
)

// PCM holds the first channel of a decoded WAV clip, normalized to [-1,1].
type PCM struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Samples    []float64
}

// Duration returns the playing time of the clip.
func (p *PCM) Duration() time.Duration {
	if p.SampleRate == 0 {
		return 0
	}
	return time.Duration(len(p.Samples)) * time.Second / time.Duration(p.SampleRate)
}

// DecodeWAV decodes integer PCM (8 to 32 bit) and 32-bit float WAV data.
func DecodeWAV(data []byte) (*PCM, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	if !decoder.IsValidFile() {
		return nil, ErrNotWAV
	}

	format := decoder.WavAudioFormat
	bits := int(decoder.BitDepth)
	switch {
	case format == wavFormatFloat && bits == 32:
	case format == wavFormatPCM || format == wavFormatExtensible:
		if bits < 8 || bits > 32 {
			return nil, fmt.Errorf("wav: unsupported bit depth %d", bits)
		}
	default:
		return nil, fmt.Errorf("wav: unsupported format %d with %d bits", format, bits)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wav: decode samples: %w", err)
	}
	channels := buf.Format.NumChannels
	if channels <= 0 || buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("wav: invalid channel count or sample rate")
	}

	scale := 1 / float64(int64(1)<<(bits-1))
	samples := make([]float64, len(buf.Data)/channels)
	for i := range samples {
		v := buf.Data[i*channels]
		switch {
		case format == wavFormatFloat:
			samples[i] = float64(math.Float32frombits(uint32(int32(v))))
		case bits == 8:
			// 8-bit WAV is unsigned around 128.
			samples[i] = float64(v-128) * scale
		default:
			samples[i] = float64(v) * scale
		}
	}

	return &PCM{
		SampleRate: buf.Format.SampleRate,
		Channels:   channels,
		BitDepth:   bits,
		Samples:    samples,
	}, nil
}

package presentation

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeWAV(sampleRate int, samples []int16) []byte {
	var buf bytes.Buffer
	dataSize := len(samples) * 2
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	_ = binary.Write(&buf, binary.LittleEndian, samples)
	return buf.Bytes()
}

func sine(sampleRate int, freq float64, seconds float64) []int16 {
	n := int(float64(sampleRate) * seconds)
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)) * 20000)
	}
	return samples
}

// encodeWAV24 writes a mono 24-bit WAV with the go-audio encoder.
func encodeWAV24(t *testing.T, sampleRate int, samples []int) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, sampleRate, 24, 1, 1)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: 24,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func sine24(sampleRate int, freq float64, seconds float64) []int {
	n := int(float64(sampleRate) * seconds)
	samples := make([]int, n)
	for i := range samples {
		samples[i] = int(math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)) * 5000000)
	}
	return samples
}

func TestDecodeWAV(t *testing.T) {
	pcm, err := DecodeWAV(encodeWAV(16000, []int16{0, 16384, -32768}))
	require.NoError(t, err)
	assert.Equal(t, 16000, pcm.SampleRate)
	assert.Equal(t, 1, pcm.Channels)
	assert.Equal(t, []float64{0, 0.5, -1}, pcm.Samples)

	pcm, err = DecodeWAV(encodeWAV(8000, make([]int16, 8000)))
	require.NoError(t, err)
	assert.Equal(t, time.Second, pcm.Duration())

	_, err = DecodeWAV([]byte("ID3\x03mp3 data here"))
	assert.ErrorIs(t, err, ErrNotWAV)

	_, err = DecodeWAV([]byte("RIFF\x04\x00\x00\x00WAVE"))
	assert.Error(t, err)
}

func TestDecodeWAV_24Bit(t *testing.T) {
	pcm, err := DecodeWAV(encodeWAV24(t, 16000, []int{0, 4194304, -8388608}))
	require.NoError(t, err)
	assert.Equal(t, 24, pcm.BitDepth)
	assert.Equal(t, 16000, pcm.SampleRate)
	assert.Equal(t, []float64{0, 0.5, -1}, pcm.Samples)
}

// positionedPlayer returns a player that reports a fixed playback position.
func positionedPlayer(clip *Clip, position time.Duration) *Player {
	p := NewPlayer(newGatedOutput(), zerolog.Nop())
	base := time.Unix(1000, 0)
	p.now = func() time.Time { return base }
	p.Load(clip)
	_ = p.Play(context.Background())
	p.now = func() time.Time { return base.Add(position) }
	return p
}

func TestPCMAnalyser_ToneIsLoudSilenceIsQuiet(t *testing.T) {
	tone := &Clip{ContentType: "audio/wav", Data: encodeWAV(16000, sine(16000, 1000, 1))}
	player := positionedPlayer(tone, 500*time.Millisecond)
	defer player.Pause()

	analyser, err := NewPCMAnalyser(player)
	require.NoError(t, err)
	require.Equal(t, 128, analyser.FrequencyBinCount())

	bins := make([]byte, analyser.FrequencyBinCount())
	for i := 0; i < 20; i++ {
		analyser.ByteFrequencyData(bins)
	}
	assert.Greater(t, Loudness(bins), 0.0)
	// 1kHz at 16kHz sampling lands in bin 16.
	assert.Equal(t, byte(255), bins[16])

	silent := &Clip{ContentType: "audio/wav", Data: encodeWAV(16000, make([]int16, 16000))}
	quiet := positionedPlayer(silent, 500*time.Millisecond)
	defer quiet.Pause()

	analyser, err = NewPCMAnalyser(quiet)
	require.NoError(t, err)
	analyser.ByteFrequencyData(bins)
	assert.Zero(t, Loudness(bins))
}

func TestPCMAnalyser_24BitTone(t *testing.T) {
	tone := &Clip{ContentType: "audio/wav", Data: encodeWAV24(t, 16000, sine24(16000, 1000, 1))}
	player := positionedPlayer(tone, 500*time.Millisecond)
	defer player.Pause()

	analyser, err := NewPCMAnalyser(player)
	require.NoError(t, err)

	bins := make([]byte, analyser.FrequencyBinCount())
	for i := 0; i < 20; i++ {
		analyser.ByteFrequencyData(bins)
	}
	assert.Greater(t, Loudness(bins), 0.0)
	assert.Equal(t, byte(255), bins[16])
}

func TestPCMAnalyser_UndecodableAndSuspended(t *testing.T) {
	player := positionedPlayer(&Clip{ContentType: "audio/mpeg", Data: []byte("ID3 mp3")}, time.Second)
	defer player.Pause()

	a, err := NewPCMAnalyser(player)
	require.NoError(t, err)
	bins := []byte{9, 9, 9}
	a.ByteFrequencyData(bins)
	assert.Equal(t, []byte{0, 0, 0}, bins)

	pcm := a.(*PCMAnalyser)
	pcm.Suspend()
	assert.True(t, pcm.Suspended())
	require.NoError(t, pcm.Resume())
	assert.False(t, pcm.Suspended())

	_, err = NewPCMAnalyser(nil)
	assert.Error(t, err)
}

func TestDecibelsToByte(t *testing.T) {
	assert.Equal(t, byte(0), decibelsToByte(math.Inf(-1)))
	assert.Equal(t, byte(0), decibelsToByte(-120))
	assert.Equal(t, byte(255), decibelsToByte(0))
	assert.Equal(t, byte(127), decibelsToByte(-65))
}

package wavio

import "fmt"

// Format describes one PCM encoding: channel layout, sample width in bytes,
// and sample rate. Two formats are compatible only when all three fields match.
type Format struct {
	Channels    uint16
	SampleWidth uint16
	SampleRate  uint32
}

// Equal reports whether both descriptors identify the same PCM encoding.
func (f Format) Equal(other Format) bool {
	return f.Channels == other.Channels &&
		f.SampleWidth == other.SampleWidth &&
		f.SampleRate == other.SampleRate
}

// BitsPerSample returns the sample width expressed in bits.
func (f Format) BitsPerSample() uint16 {
	return f.SampleWidth * 8
}

// BlockAlign returns the byte size of one sample frame across all channels.
func (f Format) BlockAlign() uint16 {
	return f.Channels * f.SampleWidth
}

// ByteRate returns the encoded bytes consumed per second of audio.
func (f Format) ByteRate() uint32 {
	return f.SampleRate * uint32(f.Channels) * uint32(f.SampleWidth)
}

// Validate checks the descriptor for zero-valued fields.
func (f Format) Validate() error {
	if f.Channels == 0 {
		return fmt.Errorf("wav format: zero channels")
	}
	if f.SampleWidth == 0 {
		return fmt.Errorf("wav format: zero sample width")
	}
	if f.SampleRate == 0 {
		return fmt.Errorf("wav format: zero sample rate")
	}
	return nil
}

func (f Format) String() string {
	return fmt.Sprintf("%dch/%d-bit/%dHz", f.Channels, f.BitsPerSample(), f.SampleRate)
}

package wavio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Info is the result of a header-only inspection: the PCM format plus the
// location and declared size of the sample payload.
type Info struct {
	Format     Format
	DataOffset int64
	DataSize   int64
}

const (
	// pcmFormatTag is the fmt-chunk encoding tag for uncompressed PCM.
	pcmFormatTag = 1
	// fmtChunkSize is the canonical fmt-chunk payload size for PCM.
	fmtChunkSize = 16
)

// Probe opens path, walks the RIFF chunk list until both the fmt and data
// chunks are located, and closes the file without reading any sample payload.
func Probe(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()
	return probe(f)
}

// ReadFormat returns only the format descriptor from path.
func ReadFormat(path string) (Format, error) {
	info, err := Probe(path)
	if err != nil {
		return Format{}, err
	}
	return info.Format, nil
}

func probe(r io.ReadSeeker) (Info, error) {
	var preamble [12]byte
	if _, err := io.ReadFull(r, preamble[:]); err != nil {
		return Info{}, fmt.Errorf("read riff preamble: %w", truncated(err))
	}
	if string(preamble[0:4]) != "RIFF" {
		return Info{}, errors.New("not a RIFF container")
	}
	if string(preamble[8:12]) != "WAVE" {
		return Info{}, errors.New("not a WAVE container")
	}

	var (
		info    Info
		haveFmt bool
	)
	offset := int64(12)
	for {
		var chunkHeader [8]byte
		if _, err := io.ReadFull(r, chunkHeader[:]); err != nil {
			if haveFmt && info.DataOffset > 0 {
				break
			}
			return Info{}, fmt.Errorf("read chunk header: %w", truncated(err))
		}
		chunkID := string(chunkHeader[0:4])
		chunkSize := int64(binary.LittleEndian.Uint32(chunkHeader[4:8]))
		offset += 8

		switch chunkID {
		case "fmt ":
			format, err := readFormatChunk(r, chunkSize)
			if err != nil {
				return Info{}, err
			}
			info.Format = format
			haveFmt = true
			offset += chunkSize
		case "data":
			info.DataOffset = offset
			info.DataSize = chunkSize
			if haveFmt {
				return info, nil
			}
			// fmt chunk has not appeared yet; skip the payload and keep walking.
			if _, err := r.Seek(chunkSize, io.SeekCurrent); err != nil {
				return Info{}, fmt.Errorf("skip data chunk: %w", err)
			}
			offset += chunkSize
		default:
			if _, err := r.Seek(chunkSize, io.SeekCurrent); err != nil {
				return Info{}, fmt.Errorf("skip %q chunk: %w", chunkID, err)
			}
			offset += chunkSize
		}

		// RIFF chunks are word aligned; odd sizes carry a pad byte.
		if chunkSize%2 == 1 {
			if _, err := r.Seek(1, io.SeekCurrent); err != nil {
				return Info{}, fmt.Errorf("skip pad byte: %w", err)
			}
			offset++
		}

		if haveFmt && info.DataOffset > 0 {
			return info, nil
		}
	}
	return info, nil
}

func readFormatChunk(r io.ReadSeeker, size int64) (Format, error) {
	if size < fmtChunkSize {
		return Format{}, fmt.Errorf("fmt chunk too small: %d bytes", size)
	}
	var fields [fmtChunkSize]byte
	if _, err := io.ReadFull(r, fields[:]); err != nil {
		return Format{}, fmt.Errorf("read fmt chunk: %w", truncated(err))
	}
	if tag := binary.LittleEndian.Uint16(fields[0:2]); tag != pcmFormatTag {
		return Format{}, fmt.Errorf("unsupported encoding tag %d, only PCM is supported", tag)
	}
	format := Format{
		Channels:   binary.LittleEndian.Uint16(fields[2:4]),
		SampleRate: binary.LittleEndian.Uint32(fields[4:8]),
	}
	bitsPerSample := binary.LittleEndian.Uint16(fields[14:16])
	if bitsPerSample%8 != 0 {
		return Format{}, fmt.Errorf("unsupported bit depth %d", bitsPerSample)
	}
	format.SampleWidth = bitsPerSample / 8
	if err := format.Validate(); err != nil {
		return Format{}, err
	}
	if size > fmtChunkSize {
		if _, err := r.Seek(size-fmtChunkSize, io.SeekCurrent); err != nil {
			return Format{}, fmt.Errorf("skip fmt extension: %w", err)
		}
	}
	return format, nil
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errors.New("container truncated")
	}
	return err
}

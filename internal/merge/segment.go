package merge

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"bookbind/internal/naturalsort"
	"bookbind/internal/wavio"
)

// Segment is one input audio file contributing to the merged output.
// The format descriptor is probed lazily and cached.
type Segment struct {
	Path string

	probed bool
	info   wavio.Info
}

// NewSegment wraps a path without touching the file.
func NewSegment(path string) *Segment {
	return &Segment{Path: path}
}

// Info probes the segment header on first call and caches the result.
func (s *Segment) Info() (wavio.Info, error) {
	if s.probed {
		return s.info, nil
	}
	info, err := wavio.Probe(s.Path)
	if err != nil {
		return wavio.Info{}, &UnreadableFormatError{Path: s.Path, Err: err}
	}
	s.info = info
	s.probed = true
	return info, nil
}

// Format returns the segment's cached or freshly probed descriptor.
func (s *Segment) Format() (wavio.Format, error) {
	info, err := s.Info()
	if err != nil {
		return wavio.Format{}, err
	}
	return info.Format, nil
}

// CollectSegments lists the WAV files in dir in natural order. Dot-prefixed
// names are skipped so in-flight temp outputs are never picked up as inputs.
func CollectSegments(dir string) ([]*Segment, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read segment directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), ".wav") {
			continue
		}
		names = append(names, name)
	}
	naturalsort.Sort(names)

	segments := make([]*Segment, 0, len(names))
	for _, name := range names {
		segments = append(segments, NewSegment(filepath.Join(dir, name)))
	}
	return segments, nil
}

// OrderSegments sorts segments in place by the natural order of their base names.
func OrderSegments(segments []*Segment) {
	sort.SliceStable(segments, func(i, j int) bool {
		return naturalsort.Less(filepath.Base(segments[i].Path), filepath.Base(segments[j].Path))
	})
}

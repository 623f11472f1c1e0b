package merge

// Strategy identifies which merge algorithm produced (or attempted) an output.
type Strategy string

const (
	StrategyDirect  Strategy = "direct"
	StrategySox     Strategy = "sox"
	StrategyFFmpeg  Strategy = "ffmpeg"
	StrategyRaw     Strategy = "raw"
	StrategyBounded Strategy = "bounded"
)

// Options carries per-request behavioral flags.
type Options struct {
	// ForceTool requests a specific external tool: "", "sox", or "ffmpeg".
	// Ignored when the tool is not installed.
	ForceTool string
	// DeleteSources removes consumed segment files after a successful merge.
	DeleteSources bool
}

// Request describes one merge invocation. The segment order is the playback order.
type Request struct {
	Segments   []*Segment
	OutputPath string
	Options    Options
}

// Outcome reports a completed merge. SegmentsDropped is nonzero only when the
// bounded fallback truncated the input set; such an outcome is degraded, not a
// plain success.
type Outcome struct {
	OutputPath       string
	Strategy         Strategy
	SegmentsIncluded int
	SegmentsDropped  int
}

// Degraded reports whether the merge lost segments.
func (o Outcome) Degraded() bool {
	return o.SegmentsDropped > 0
}

package deps

import (
	"context"
	"testing"
	"time"
)

func TestProbeMissingBinaries(t *testing.T) {
	avail := Probe(context.Background(), "definitely-not-sox-9000", "definitely-not-ffmpeg-9000", time.Second)
	if avail.Sox.Available {
		t.Fatal("missing sox binary reported available")
	}
	if avail.FFmpeg.Available {
		t.Fatal("missing ffmpeg binary reported available")
	}
	if avail.Sox.Detail == "" || avail.FFmpeg.Detail == "" {
		t.Fatal("expected detail for missing binaries")
	}
}

func TestProbeNonzeroExitCountsAsAvailable(t *testing.T) {
	// `false` exists on any POSIX system and always exits nonzero; existence
	// is what availability means, not a clean version banner.
	req := Requirement{Name: "false", Command: "false"}
	status := probeOne(context.Background(), req, time.Second)
	if !status.Available {
		t.Fatalf("nonzero exit must still count as available: %+v", status)
	}
}

func TestProbeUnconfiguredCommand(t *testing.T) {
	status := probeOne(context.Background(), Requirement{Name: "empty"}, time.Second)
	if status.Available {
		t.Fatal("empty command reported available")
	}
	if status.Detail != "command not configured" {
		t.Fatalf("unexpected detail: %q", status.Detail)
	}
}

func TestCheckBinaries(t *testing.T) {
	statuses := CheckBinaries([]Requirement{
		{Name: "shell", Command: "sh", Description: "posix shell"},
		{Name: "ghost", Command: "no-such-binary-bookbind"},
	})
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	if !statuses[0].Available {
		t.Fatalf("sh should be available: %+v", statuses[0])
	}
	if statuses[1].Available {
		t.Fatalf("missing binary should be unavailable: %+v", statuses[1])
	}
}

func TestRequirementsCarryConfiguredBinaries(t *testing.T) {
	reqs := Requirements("/opt/sox", "/opt/ffmpeg")
	if reqs[0].Command != "/opt/sox" || reqs[1].Command != "/opt/ffmpeg" {
		t.Fatalf("configured binaries not carried: %+v", reqs)
	}
}

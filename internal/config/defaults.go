package config

const (
	defaultOutputDir = "~/audiobooks"
	defaultWorkDir   = "~/.local/share/bookbind/work"
	defaultLogDir    = "~/.local/share/bookbind/logs"
	defaultStateDir  = "~/.local/share/bookbind/state"

	defaultLargeCollectionThreshold = 100
	defaultFallbackSegmentCap       = 500
	defaultChunkSizeBytes           = 1 << 20

	defaultSoxBinary           = "sox"
	defaultFFmpegBinary        = "ffmpeg"
	defaultProbeTimeoutSeconds = 5
	defaultMergeTimeoutSeconds = 3600

	defaultBatchWorkers = 2

	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultLogMaxSizeMB  = 25
	defaultLogMaxBackups = 5
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			WorkDir:   defaultWorkDir,
			LogDir:    defaultLogDir,
			StateDir:  defaultStateDir,
		},
		Merge: Merge{
			LargeCollectionThreshold: defaultLargeCollectionThreshold,
			FallbackSegmentCap:       defaultFallbackSegmentCap,
			ChunkSizeBytes:           defaultChunkSizeBytes,
		},
		Tools: Tools{
			SoxBinary:           defaultSoxBinary,
			FFmpegBinary:        defaultFFmpegBinary,
			ProbeTimeoutSeconds: defaultProbeTimeoutSeconds,
			MergeTimeoutSeconds: defaultMergeTimeoutSeconds,
		},
		Batch: Batch{
			Workers: defaultBatchWorkers,
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
		},
		History: History{
			Enabled: true,
		},
	}
}

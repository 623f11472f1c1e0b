package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMerge(); err != nil {
		return err
	}
	if err := c.validateBatch(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateMerge() error {
	if c.Merge.LargeCollectionThreshold <= 0 {
		return errors.New("merge.large_collection_threshold must be positive")
	}
	if c.Merge.FallbackSegmentCap <= 0 {
		return errors.New("merge.fallback_segment_cap must be positive")
	}
	switch c.Merge.ForceTool {
	case "", "sox", "ffmpeg":
	default:
		return fmt.Errorf("merge.force_tool must be empty, %q, or %q", "sox", "ffmpeg")
	}
	return nil
}

func (c *Config) validateBatch() error {
	if c.Batch.Workers < 1 {
		return errors.New("batch.workers must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be %q or %q", "console", "json")
	}
	return nil
}

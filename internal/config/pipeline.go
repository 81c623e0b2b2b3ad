package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvPipelineWorkDir            = "CLAIMSIGHT_PIPELINE_WORK_DIR"
	EnvPipelineStagingConcurrency = "CLAIMSIGHT_PIPELINE_STAGING_CONCURRENCY"
	EnvPipelineDetectorDelay      = "CLAIMSIGHT_PIPELINE_DETECTOR_DELAY"
	EnvPipelineDetectorJitter     = "CLAIMSIGHT_PIPELINE_DETECTOR_JITTER"
	EnvPipelineItemDelay          = "CLAIMSIGHT_PIPELINE_ITEM_DELAY"
	EnvPipelineItemJitter         = "CLAIMSIGHT_PIPELINE_ITEM_JITTER"
)

// PipelineConfig holds batch-processing parameters: where evidence is staged
// for classification and how the jittered pacing against the external
// detector is tuned.
type PipelineConfig struct {
	WorkDir            string `toml:"work_dir"`
	StagingConcurrency int    `toml:"staging_concurrency"`
	DetectorDelay      string `toml:"detector_delay"`
	DetectorJitter     string `toml:"detector_jitter"`
	ItemDelay          string `toml:"item_delay"`
	ItemJitter         string `toml:"item_jitter"`
}

func (c *PipelineConfig) DetectorDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.DetectorDelay)
	return d
}

func (c *PipelineConfig) DetectorJitterDuration() time.Duration {
	d, _ := time.ParseDuration(c.DetectorJitter)
	return d
}

func (c *PipelineConfig) ItemDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.ItemDelay)
	return d
}

func (c *PipelineConfig) ItemJitterDuration() time.Duration {
	d, _ := time.ParseDuration(c.ItemJitter)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *PipelineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	if overlay.WorkDir != "" {
		c.WorkDir = overlay.WorkDir
	}
	if overlay.StagingConcurrency != 0 {
		c.StagingConcurrency = overlay.StagingConcurrency
	}
	if overlay.DetectorDelay != "" {
		c.DetectorDelay = overlay.DetectorDelay
	}
	if overlay.DetectorJitter != "" {
		c.DetectorJitter = overlay.DetectorJitter
	}
	if overlay.ItemDelay != "" {
		c.ItemDelay = overlay.ItemDelay
	}
	if overlay.ItemJitter != "" {
		c.ItemJitter = overlay.ItemJitter
	}
}

func (c *PipelineConfig) loadDefaults() {
	if c.WorkDir == "" {
		c.WorkDir = os.TempDir()
	}
	if c.StagingConcurrency == 0 {
		c.StagingConcurrency = 4
	}
	if c.DetectorDelay == "" {
		c.DetectorDelay = "1s"
	}
	if c.DetectorJitter == "" {
		c.DetectorJitter = "1s"
	}
	if c.ItemDelay == "" {
		c.ItemDelay = "2s"
	}
	if c.ItemJitter == "" {
		c.ItemJitter = "2s"
	}
}

func (c *PipelineConfig) loadEnv() {
	if v := os.Getenv(EnvPipelineWorkDir); v != "" {
		c.WorkDir = v
	}
	if v := os.Getenv(EnvPipelineStagingConcurrency); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.StagingConcurrency = n
		}
	}
	if v := os.Getenv(EnvPipelineDetectorDelay); v != "" {
		c.DetectorDelay = v
	}
	if v := os.Getenv(EnvPipelineDetectorJitter); v != "" {
		c.DetectorJitter = v
	}
	if v := os.Getenv(EnvPipelineItemDelay); v != "" {
		c.ItemDelay = v
	}
	if v := os.Getenv(EnvPipelineItemJitter); v != "" {
		c.ItemJitter = v
	}
}

func (c *PipelineConfig) validate() error {
	if c.StagingConcurrency < 1 {
		return fmt.Errorf("invalid staging_concurrency: %d", c.StagingConcurrency)
	}
	for name, value := range map[string]string{
		"detector_delay":  c.DetectorDelay,
		"detector_jitter": c.DetectorJitter,
		"item_delay":      c.ItemDelay,
		"item_jitter":     c.ItemJitter,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	return nil
}

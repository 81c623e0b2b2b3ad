package config

import (
	"fmt"
	"os"
	"time"
)

const (
	EnvDetectorPython      = "CLAIMSIGHT_DETECTOR_PYTHON"
	EnvDetectorImageScript = "CLAIMSIGHT_DETECTOR_IMAGE_SCRIPT"
	EnvDetectorVideoScript = "CLAIMSIGHT_DETECTOR_VIDEO_SCRIPT"
	EnvDetectorTimeout     = "CLAIMSIGHT_DETECTOR_TIMEOUT"
)

// DetectorConfig holds the external deep-analysis subprocess parameters.
type DetectorConfig struct {
	Python      string `toml:"python"`
	ImageScript string `toml:"image_script"`
	VideoScript string `toml:"video_script"`
	Timeout     string `toml:"timeout"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *DetectorConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *DetectorConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *DetectorConfig) Merge(overlay *DetectorConfig) {
	if overlay.Python != "" {
		c.Python = overlay.Python
	}
	if overlay.ImageScript != "" {
		c.ImageScript = overlay.ImageScript
	}
	if overlay.VideoScript != "" {
		c.VideoScript = overlay.VideoScript
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *DetectorConfig) loadDefaults() {
	if c.Python == "" {
		c.Python = "python3"
	}
	if c.ImageScript == "" {
		c.ImageScript = "scripts/analyze_image.py"
	}
	if c.VideoScript == "" {
		c.VideoScript = "scripts/analyze_video.py"
	}
	if c.Timeout == "" {
		c.Timeout = "90s"
	}
}

func (c *DetectorConfig) loadEnv() {
	if v := os.Getenv(EnvDetectorPython); v != "" {
		c.Python = v
	}
	if v := os.Getenv(EnvDetectorImageScript); v != "" {
		c.ImageScript = v
	}
	if v := os.Getenv(EnvDetectorVideoScript); v != "" {
		c.VideoScript = v
	}
	if v := os.Getenv(EnvDetectorTimeout); v != "" {
		c.Timeout = v
	}
}

func (c *DetectorConfig) validate() error {
	if c.ImageScript == "" || c.VideoScript == "" {
		return fmt.Errorf("analyzer scripts required")
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}

package detection

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/claimsight/claimsight/pkg/formatting"
)

// Result is the external analyzer's stdout contract. Success false means the
// analyzer ran but could not produce a determination; transport failures
// never reach this type.
type Result struct {
	Success         bool    `json:"success"`
	Error           string  `json:"error,omitempty"`
	IsAIGenerated   bool    `json:"is_ai_generated"`
	Verdict         string  `json:"verdict,omitempty"`
	AIPercentage    float64 `json:"ai_percentage"`
	HumanPercentage float64 `json:"human_percentage"`
	Confidence      string  `json:"confidence,omitempty"`
}

// DeepDetector is the layer 3 boundary. Implementations return an error for
// any failure to obtain a determination; the classifier owns the fail-open
// interpretation of that error.
type DeepDetector interface {
	Analyze(ctx context.Context, path string, kind MediaKind) (*Result, error)
}

// DefaultDetectorTimeout bounds a single external analysis invocation.
const DefaultDetectorTimeout = 90 * time.Second

// ScriptDetector invokes the external analyzer scripts as subprocesses,
// passing the staged file path as the sole argument and parsing a single
// JSON object from stdout.
type ScriptDetector struct {
	python      string
	imageScript string
	videoScript string
	timeout     time.Duration
	logger      *slog.Logger
}

func NewScriptDetector(python, imageScript, videoScript string, timeout time.Duration, logger *slog.Logger) *ScriptDetector {
	if timeout <= 0 {
		timeout = DefaultDetectorTimeout
	}
	return &ScriptDetector{
		python:      python,
		imageScript: imageScript,
		videoScript: videoScript,
		timeout:     timeout,
		logger:      logger.With("system", "detector"),
	}
}

func (d *ScriptDetector) Analyze(ctx context.Context, path string, kind MediaKind) (*Result, error) {
	var script string
	switch kind {
	case KindImage:
		script = d.imageScript
	case KindVideo:
		script = d.videoScript
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMediaKind, kind)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, d.python, script, path)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		d.logger.Warn("analyzer subprocess failed",
			"script", script,
			"duration", time.Since(start),
			"stderr", truncate(stderr.String(), 512),
			"error", err)
		return nil, fmt.Errorf("%w: %v", ErrDetectorUnavailable, err)
	}

	res, err := formatting.Parse[Result](stdout.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDetectorMalformed, err)
	}
	if !res.Success {
		return nil, fmt.Errorf("%w: %s", ErrDetectorIncomplete, res.Error)
	}

	d.logger.Debug("analysis complete",
		"script", script,
		"duration", time.Since(start),
		"verdict", res.Verdict)
	return &res, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}

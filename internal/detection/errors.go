package detection

import "errors"

// Sentinel errors for the detection pipeline.
var (
	ErrEmptyBatch           = errors.New("batch contains no media items")
	ErrDetectorUnavailable  = errors.New("deep detector unavailable")
	ErrDetectorIncomplete   = errors.New("deep detector reported failure")
	ErrDetectorMalformed    = errors.New("deep detector returned malformed output")
	ErrUnsupportedMediaKind = errors.New("unsupported media kind")
)

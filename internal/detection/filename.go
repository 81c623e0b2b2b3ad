package detection

import (
	"fmt"
	"strings"
)

type namePattern struct {
	fragment   string
	generator  string
	confidence Confidence
}

// namePatterns maps filename fragments to the generators that embed them in
// exported media. Order is the tie-break: the first matching fragment wins.
// Fragments are matched case-insensitively anywhere in the filename.
var namePatterns = []namePattern{
	{"kling", "Kling AI", ConfidenceVeryHigh},
	{"sora", "Sora", ConfidenceVeryHigh},
	{"midjourney", "Midjourney", ConfidenceVeryHigh},
	{"dall-e", "DALL-E", ConfidenceVeryHigh},
	{"dalle", "DALL-E", ConfidenceVeryHigh},
	{"stable-diffusion", "Stable Diffusion", ConfidenceVeryHigh},
	{"runway", "Runway", ConfidenceHigh},
	{"firefly", "Adobe Firefly", ConfidenceHigh},
	{"leonardo", "Leonardo AI", ConfidenceHigh},
	{"veo", "Google Veo", ConfidenceHigh},
	{"pika", "Pika", ConfidenceHigh},
	{"luma", "Luma Dream Machine", ConfidenceHigh},
	{"haiper", "Haiper", ConfidenceHigh},
	{"ideogram", "Ideogram", ConfidenceHigh},
}

// MatchFilename is layer 1: a pure scan of the filename for generator
// signatures left behind by AI tools' default export names. A hit is a
// terminal AI determination; no metadata or file contents are consulted.
func MatchFilename(name string) LayerOutcome {
	lower := strings.ToLower(name)
	for _, p := range namePatterns {
		if strings.Contains(lower, p.fragment) {
			return LayerOutcome{
				Layer:      1,
				Passed:     false,
				Generator:  p.generator,
				Confidence: p.confidence,
				Reason:     fmt.Sprintf("filename contains generator signature %q", p.fragment),
				Indicators: []string{"filename fragment: " + p.fragment},
			}
		}
	}
	return LayerOutcome{Layer: 1, Passed: true, Reason: "no generator signature in filename"}
}

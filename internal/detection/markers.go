package detection

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// metadataScanLimit bounds how much of a file's head is decoded for textual
// marker scanning. Container metadata atoms sit at the head or tail of real
// files; the head window catches the provenance boxes generators write.
const metadataScanLimit = 64 * 1024

var (
	aigcIDPattern     = regexp.MustCompile(`aigc[_-]?id\D{0,6}(\d{4,})`)
	iso6709Pattern    = regexp.MustCompile(`[+-]\d{2,3}\.\d{2,6}[+-]\d{2,3}\.\d{2,6}`)
	appleModelPattern = regexp.MustCompile(`(iphone[\s0-9a-z,]{0,16})`)
	cameraLensPattern = regexp.MustCompile(`((?:back|front)[a-z\s]{0,24}camera[a-z0-9\s\.]{0,32})`)
	androidFPSPattern = regexp.MustCompile(`com\.android\.capture\.fps\D{0,8}(\d{1,3}(?:\.\d+)?)`)
	labeledModel      = regexp.MustCompile(`model[="':\s]{1,4}([a-z0-9][a-z0-9 ._\-]{1,30})`)
)

// byteDance generator markers are matched on the raw bytes: the editor tags
// appear inside binary atoms that do not survive lossy text decoding.
var byteDanceMarkers = [][]byte{
	[]byte("JianyingPro"),
	[]byte("ByteDance"),
	[]byte("Dreamina"),
}

// decodePrefix lowers the head of the file to scannable text, dropping
// invalid UTF-8 sequences rather than failing.
func decodePrefix(data []byte) string {
	if len(data) > metadataScanLimit {
		data = data[:metadataScanLimit]
	}
	return strings.ToLower(strings.ToValidUTF8(string(data), ""))
}

// AnalyzeVideoMetadata is the layer 2 video variant. It scans container
// metadata for generator provenance bundles and, failing those, for
// corroborated physical-capture markers that justify skipping deep analysis.
// Rules are evaluated in fixed order; the first conclusive rule wins.
func AnalyzeVideoMetadata(data []byte, name string) LayerOutcome {
	if len(data) == 0 {
		return LayerOutcome{Layer: 2, Passed: true, Reason: "no metadata available; deferring to deep analysis"}
	}
	text := decodePrefix(data)

	// Kling provenance: the klingai vendor tag and an AIGC content marker
	// must co-occur; either alone is not terminal.
	if strings.Contains(text, "klingai") && strings.Contains(text, "aigc") {
		indicators := []string{"klingai provenance bundle", "aigc content marker"}
		if m := aigcIDPattern.FindStringSubmatch(text); m != nil {
			indicators = append(indicators, "aigc id "+m[1])
		}
		return LayerOutcome{
			Layer:      2,
			Passed:     false,
			Generator:  "Kling AI",
			SourceType: "generator provenance metadata",
			Confidence: ConfidenceVeryHigh,
			Reason:     "container carries Kling AI provenance bundle",
			Indicators: indicators,
		}
	}

	// C2PA manifests naming OpenAI as the claim generator.
	if strings.Contains(text, "c2pa") && strings.Contains(text, "openai") {
		return LayerOutcome{
			Layer:      2,
			Passed:     false,
			Generator:  "Sora",
			SourceType: "c2pa content credentials",
			Confidence: ConfidenceVeryHigh,
			Reason:     "c2pa manifest names openai as claim generator",
			Indicators: []string{"c2pa manifest", "openai claim generator"},
		}
	}

	for _, marker := range byteDanceMarkers {
		if bytes.Contains(data, marker) {
			return LayerOutcome{
				Layer:      2,
				Passed:     false,
				Generator:  "CapCut / Dreamina",
				SourceType: "editor export metadata",
				Confidence: ConfidenceHigh,
				Reason:     fmt.Sprintf("container carries %s export marker", marker),
				Indicators: []string{"bytedance marker: " + string(marker)},
			}
		}
	}

	// Apple capture corroboration: brand, camera hardware, and an ISO 6709
	// location stamp must all be present before the genuine shortcut applies.
	if strings.Contains(text, "apple") &&
		(strings.Contains(text, "back camera") || strings.Contains(text, "front camera")) &&
		iso6709Pattern.MatchString(text) {
		out := LayerOutcome{
			Layer:       2,
			Passed:      true,
			CameraPhoto: true,
			Reason:      "physical capture corroborated by device, lens, and location metadata",
			Indicators:  []string{"apple device marker", "camera hardware marker", "iso 6709 location"},
		}
		if m := appleModelPattern.FindStringSubmatch(text); m != nil {
			out.Device = "Apple " + strings.TrimSpace(m[1])
		}
		if m := cameraLensPattern.FindStringSubmatch(text); m != nil {
			out.Indicators = append(out.Indicators, "lens: "+strings.TrimSpace(m[1]))
		}
		return out
	}

	// Android capture corroboration: platform version plus capture frame
	// rate only appear together on genuine device recordings.
	if strings.Contains(text, "com.android.version") {
		if m := androidFPSPattern.FindStringSubmatch(text); m != nil {
			out := LayerOutcome{
				Layer:       2,
				Passed:      true,
				CameraPhoto: true,
				Reason:      "physical capture corroborated by android platform and frame-rate metadata",
				Indicators:  []string{"com.android.version", "capture fps " + m[1]},
			}
			if dm := labeledModel.FindStringSubmatch(text); dm != nil {
				out.Device = strings.TrimSpace(dm[1])
			}
			return out
		}
	}

	return LayerOutcome{Layer: 2, Passed: true, Reason: "no metadata markers; deferring to deep analysis"}
}

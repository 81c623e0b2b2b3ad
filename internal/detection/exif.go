package detection

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bep/imagemeta"
)

type generatorSignature struct {
	marker    string
	generator string
}

// generatorSignatures are software and toolchain strings that AI image
// generators embed in EXIF, XMP, or IPTC blocks. Matched case-insensitively
// against decoded metadata text; first hit wins.
var generatorSignatures = []generatorSignature{
	{"midjourney", "Midjourney"},
	{"dall-e", "DALL-E"},
	{"openai", "DALL-E"},
	{"stable diffusion", "Stable Diffusion"},
	{"sdxl", "Stable Diffusion"},
	{"adobe firefly", "Adobe Firefly"},
	{"leonardo.ai", "Leonardo AI"},
	{"ideogram", "Ideogram"},
	{"black forest labs", "FLUX"},
	{"recraft", "Recraft"},
}

// digitalSourceAI is the IPTC digital source type URI fragment reserved for
// media produced purely by a trained algorithm.
const digitalSourceAI = "trainedalgorithmicmedia"

var screenshotNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)screen[\s_-]?shot`),
	regexp.MustCompile(`(?i)^capture[\s_-]`),
	regexp.MustCompile(`(?i)^img_capture`),
}

var screenshotOSMarkers = []string{"android", "ios", "macos", "windows"}

// cameraFieldMarkers are the independent EXIF exposure fields whose joint
// presence indicates a physical camera wrote the file. At least three must
// be present for the camera-photo finding.
var cameraFieldMarkers = []string{
	"ExposureTime",
	"FNumber",
	"FocalLength",
	"ISOSpeedRatings",
	"Flash",
	"MeteringMode",
	"WhiteBalance",
}

const cameraMarkerThreshold = 3

var (
	labeledMake      = regexp.MustCompile(`make[="':\s]{1,4}([a-z0-9][a-z0-9 ._\-]{1,24})`)
	textFieldPattern = regexp.MustCompile(`[a-z]+`)
)

// AnalyzeImageMetadata is the layer 2 image variant. Generator signatures
// and the algorithmic digital source type are terminal AI determinations;
// screenshot, camera, and device findings accumulate onto the pass outcome
// as context for layer 3 and the final report.
func AnalyzeImageMetadata(data []byte, name string) LayerOutcome {
	if len(data) == 0 {
		return LayerOutcome{Layer: 2, Passed: true, Reason: "no metadata available; deferring to deep analysis"}
	}

	tags := decodeImageTags(data, name)
	text := decodePrefix(data)
	if len(tags) > 0 {
		var sb strings.Builder
		sb.WriteString(text)
		for k, v := range tags {
			fmt.Fprintf(&sb, "\n%s=%v", k, v)
		}
		text = strings.ToLower(sb.String())
	}

	for _, sig := range generatorSignatures {
		if strings.Contains(text, sig.marker) {
			return LayerOutcome{
				Layer:      2,
				Passed:     false,
				Generator:  sig.generator,
				SourceType: "generator software metadata",
				Confidence: ConfidenceHigh,
				Reason:     fmt.Sprintf("metadata carries generator signature %q", sig.marker),
				Indicators: []string{"software marker: " + sig.marker},
			}
		}
	}

	if strings.Contains(text, digitalSourceAI) {
		return LayerOutcome{
			Layer:      2,
			Passed:     false,
			Generator:  "unidentified generator",
			SourceType: "iptc digital source type",
			Confidence: ConfidenceVeryHigh,
			Reason:     "iptc digital source type declares trained algorithmic media",
			Indicators: []string{"digital source type: " + digitalSourceAI},
		}
	}

	out := LayerOutcome{Layer: 2, Passed: true, Reason: "no generator markers; deferring to deep analysis"}

	if isScreenshot(name, text) {
		out.Screenshot = true
		out.Indicators = append(out.Indicators, "screenshot markers present")
	}

	if markers := cameraMarkers(tags, text); len(markers) >= cameraMarkerThreshold {
		out.CameraPhoto = true
		out.Indicators = append(out.Indicators, markers...)
		out.Reason = "camera exposure metadata present; deferring to deep analysis"
	}

	if device := deviceLabel(tags, text); device != "" {
		out.Device = device
		out.Indicators = append(out.Indicators, "device: "+device)
	}

	return out
}

// decodeImageTags structurally decodes EXIF and XMP tags. Decoding failures
// degrade to the textual scan rather than failing the layer.
func decodeImageTags(data []byte, name string) map[string]any {
	format, ok := imageFormatFor(name, data)
	if !ok {
		return nil
	}
	tags := map[string]any{}
	_, err := imagemeta.Decode(imagemeta.Options{
		R:           bytes.NewReader(data),
		ImageFormat: format,
		Sources:     imagemeta.EXIF | imagemeta.XMP | imagemeta.IPTC,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			return true
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			tags[ti.Tag] = ti.Value
			return nil
		},
	})
	if err != nil {
		return nil
	}
	return tags
}

func imageFormatFor(name string, data []byte) (imagemeta.ImageFormat, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return imagemeta.JPEG, true
	case ".png":
		return imagemeta.PNG, true
	case ".webp":
		return imagemeta.WebP, true
	case ".tif", ".tiff":
		return imagemeta.TIFF, true
	}
	if bytes.HasPrefix(data, []byte{0xff, 0xd8}) {
		return imagemeta.JPEG, true
	}
	if bytes.HasPrefix(data, []byte("\x89PNG")) {
		return imagemeta.PNG, true
	}
	return 0, false
}

func isScreenshot(name, text string) bool {
	for _, p := range screenshotNamePatterns {
		if p.MatchString(name) {
			return true
		}
	}
	if strings.Contains(text, "screenshot") {
		for _, os := range screenshotOSMarkers {
			if strings.Contains(text, os) {
				return true
			}
		}
	}
	return false
}

func cameraMarkers(tags map[string]any, text string) []string {
	var found []string
	for _, field := range cameraFieldMarkers {
		if _, ok := tags[field]; ok {
			found = append(found, "exif field: "+field)
			continue
		}
		if strings.Contains(text, strings.ToLower(field)) {
			found = append(found, "exif field: "+field)
		}
	}
	return found
}

// deviceLabel assembles "Make Model" from decoded tags, falling back to
// labeled-field scanning of the raw text. Placeholder values are dropped.
func deviceLabel(tags map[string]any, text string) string {
	maker := cleanedTag(tags, "Make")
	model := cleanedTag(tags, "Model")
	if maker == "" {
		if m := labeledMake.FindStringSubmatch(text); m != nil {
			maker = strings.TrimSpace(m[1])
		}
	}
	if model == "" {
		if m := labeledModel.FindStringSubmatch(text); m != nil {
			model = strings.TrimSpace(m[1])
		}
	}
	maker = rejectPlaceholder(maker)
	model = rejectPlaceholder(model)
	switch {
	case maker != "" && model != "":
		if strings.Contains(strings.ToLower(model), strings.ToLower(maker)) {
			return model
		}
		return maker + " " + model
	case model != "":
		return model
	case maker != "":
		return maker
	}
	return ""
}

func cleanedTag(tags map[string]any, key string) string {
	v, ok := tags[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	return strings.TrimSpace(strings.Trim(s, "\x00"))
}

func rejectPlaceholder(s string) string {
	if strings.EqualFold(s, "unknown") || !textFieldPattern.MatchString(strings.ToLower(s)) {
		return ""
	}
	return s
}

package detection_test

import (
	"strings"
	"testing"

	"github.com/claimsight/claimsight/internal/detection"
)

func TestAnalyzeVideoMetadataKlingBundle(t *testing.T) {
	data := []byte("....com.klingai.video....aigc_id:202601120042....")

	out := detection.AnalyzeVideoMetadata(data, "clip.mp4")
	if out.Passed {
		t.Fatal("expected AI determination for kling provenance bundle")
	}
	if out.Layer != 2 {
		t.Errorf("layer: got %d, want 2", out.Layer)
	}
	if out.Generator != "Kling AI" {
		t.Errorf("generator: got %s, want Kling AI", out.Generator)
	}
	if out.Confidence != detection.ConfidenceVeryHigh {
		t.Errorf("confidence: got %s, want very high", out.Confidence)
	}

	var foundID bool
	for _, ind := range out.Indicators {
		if strings.Contains(ind, "202601120042") {
			foundID = true
		}
	}
	if !foundID {
		t.Errorf("indicators missing extracted aigc id: %v", out.Indicators)
	}
}

func TestAnalyzeVideoMetadataKlingTagAloneNotTerminal(t *testing.T) {
	// The vendor tag without an AIGC marker must not conclude the cascade.
	out := detection.AnalyzeVideoMetadata([]byte("....klingai...."), "clip.mp4")
	if !out.Passed {
		t.Errorf("vendor tag alone concluded AI: %s", out.Reason)
	}
}

func TestAnalyzeVideoMetadataC2PAOpenAI(t *testing.T) {
	data := []byte("....c2pa.manifest....claim_generator=OpenAI Sora....")

	out := detection.AnalyzeVideoMetadata(data, "clip.mp4")
	if out.Passed {
		t.Fatal("expected AI determination for c2pa openai manifest")
	}
	if out.Generator != "Sora" {
		t.Errorf("generator: got %s, want Sora", out.Generator)
	}
	if out.Confidence != detection.ConfidenceVeryHigh {
		t.Errorf("confidence: got %s, want very high", out.Confidence)
	}
}

func TestAnalyzeVideoMetadataByteDanceMarkers(t *testing.T) {
	for _, marker := range []string{"JianyingPro", "ByteDance", "Dreamina"} {
		t.Run(marker, func(t *testing.T) {
			data := []byte("\x00\x01" + marker + "\xff\xfe")

			out := detection.AnalyzeVideoMetadata(data, "clip.mp4")
			if out.Passed {
				t.Fatalf("expected AI determination for %s marker", marker)
			}
			if out.Generator != "CapCut / Dreamina" {
				t.Errorf("generator: got %s, want CapCut / Dreamina", out.Generator)
			}
			if out.Confidence != detection.ConfidenceHigh {
				t.Errorf("confidence: got %s, want high", out.Confidence)
			}
		})
	}
}

func TestAnalyzeVideoMetadataAppleCapture(t *testing.T) {
	data := []byte("....Apple iPhone 15 Pro....back camera 24mm f/1.78....+37.3349-122.0090/....")

	out := detection.AnalyzeVideoMetadata(data, "clip.mov")
	if !out.Passed {
		t.Fatalf("expected pass for corroborated capture, got %s", out.Reason)
	}
	if !out.CameraPhoto {
		t.Error("expected camera-photo finding")
	}
	if !strings.HasPrefix(out.Device, "Apple iphone") && !strings.HasPrefix(out.Device, "Apple iPhone") {
		t.Errorf("device: got %q, want apple model", out.Device)
	}
}

func TestAnalyzeVideoMetadataAppleWithoutLocation(t *testing.T) {
	// Brand and lens without an ISO 6709 stamp must not corroborate capture.
	data := []byte("....Apple iPhone 15 Pro....back camera....")

	out := detection.AnalyzeVideoMetadata(data, "clip.mov")
	if !out.Passed {
		t.Fatalf("expected pass, got %s", out.Reason)
	}
	if out.CameraPhoto {
		t.Error("capture corroborated without location stamp")
	}
}

func TestAnalyzeVideoMetadataAndroidCapture(t *testing.T) {
	data := []byte("....com.android.version 14....com.android.capture.fps: 30.0....model=\"pixel 8 pro\"....")

	out := detection.AnalyzeVideoMetadata(data, "clip.mp4")
	if !out.Passed {
		t.Fatalf("expected pass for android capture, got %s", out.Reason)
	}
	if !out.CameraPhoto {
		t.Error("expected camera-photo finding")
	}
	if !strings.Contains(out.Device, "pixel") {
		t.Errorf("device: got %q, want pixel model", out.Device)
	}
}

func TestAnalyzeVideoMetadataAndroidVersionAloneNotCorroborated(t *testing.T) {
	out := detection.AnalyzeVideoMetadata([]byte("....com.android.version 14...."), "clip.mp4")
	if !out.Passed {
		t.Fatalf("expected pass, got %s", out.Reason)
	}
	if out.CameraPhoto {
		t.Error("capture corroborated without frame-rate metadata")
	}
}

func TestAnalyzeVideoMetadataEmpty(t *testing.T) {
	out := detection.AnalyzeVideoMetadata(nil, "clip.mp4")
	if !out.Passed {
		t.Error("empty metadata must pass through to deep analysis")
	}
	if out.CameraPhoto {
		t.Error("empty metadata must not corroborate capture")
	}
}

func TestAnalyzeVideoMetadataInconclusive(t *testing.T) {
	out := detection.AnalyzeVideoMetadata([]byte("ftypisom moov mvhd ordinary container atoms"), "clip.mp4")
	if !out.Passed {
		t.Errorf("inconclusive metadata flagged AI: %s", out.Reason)
	}
	if out.CameraPhoto {
		t.Error("inconclusive metadata must not corroborate capture")
	}
}

func TestAnalyzeVideoMetadataRuleOrder(t *testing.T) {
	// Kling provenance must win even when capture markers are also present.
	data := []byte("....klingai....aigc....Apple....back camera....+37.3349-122.0090/....")

	out := detection.AnalyzeVideoMetadata(data, "clip.mp4")
	if out.Passed {
		t.Fatal("expected AI determination")
	}
	if out.Generator != "Kling AI" {
		t.Errorf("generator: got %s, want Kling AI", out.Generator)
	}
}

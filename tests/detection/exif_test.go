package detection_test

import (
	"image/color"
	"strings"
	"testing"

	"github.com/claimsight/claimsight/internal/detection"
)

func TestAnalyzeImageMetadataGeneratorSignatures(t *testing.T) {
	tests := []struct {
		name          string
		metadata      string
		wantGenerator string
	}{
		{"midjourney software tag", "software=Midjourney v6.1", "Midjourney"},
		{"dall-e credit", "credit: DALL-E", "DALL-E"},
		{"openai toolchain", "creatortool=OpenAI", "DALL-E"},
		{"stable diffusion", "parameters: Stable Diffusion prompt", "Stable Diffusion"},
		{"sdxl", "model hash sdxl_base_1.0", "Stable Diffusion"},
		{"firefly", "Generated with Adobe Firefly", "Adobe Firefly"},
		{"leonardo", "leonardo.ai canvas export", "Leonardo AI"},
		{"flux", "Black Forest Labs FLUX.1", "FLUX"},
		{"recraft", "recraft v3 raster", "Recraft"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := detection.AnalyzeImageMetadata([]byte(tt.metadata), "photo.jpg")
			if out.Passed {
				t.Fatalf("expected AI determination for %q", tt.metadata)
			}
			if out.Layer != 2 {
				t.Errorf("layer: got %d, want 2", out.Layer)
			}
			if out.Generator != tt.wantGenerator {
				t.Errorf("generator: got %s, want %s", out.Generator, tt.wantGenerator)
			}
			if out.Confidence != detection.ConfidenceHigh {
				t.Errorf("confidence: got %s, want high", out.Confidence)
			}
		})
	}
}

func TestAnalyzeImageMetadataDigitalSourceType(t *testing.T) {
	data := []byte("digitalsourcetype=http://cv.iptc.org/newscodes/digitalsourcetype/trainedAlgorithmicMedia")

	out := detection.AnalyzeImageMetadata(data, "photo.jpg")
	if out.Passed {
		t.Fatal("expected AI determination for algorithmic digital source type")
	}
	if out.Confidence != detection.ConfidenceVeryHigh {
		t.Errorf("confidence: got %s, want very high", out.Confidence)
	}
	if out.Generator != "unidentified generator" {
		t.Errorf("generator: got %s, want unidentified generator", out.Generator)
	}
}

func TestAnalyzeImageMetadataCameraMarkers(t *testing.T) {
	data := []byte("ExposureTime=1/120 FNumber=1.8 FocalLength=6.86mm ISOSpeedRatings=50")

	out := detection.AnalyzeImageMetadata(data, "IMG_4021.jpg")
	if !out.Passed {
		t.Fatalf("camera metadata flagged AI: %s", out.Reason)
	}
	if !out.CameraPhoto {
		t.Error("expected camera-photo finding for four exposure fields")
	}
}

func TestAnalyzeImageMetadataCameraMarkersBelowThreshold(t *testing.T) {
	data := []byte("ExposureTime=1/120 FNumber=1.8")

	out := detection.AnalyzeImageMetadata(data, "IMG_4021.jpg")
	if !out.Passed {
		t.Fatalf("unexpected AI determination: %s", out.Reason)
	}
	if out.CameraPhoto {
		t.Error("two exposure fields must not reach the camera-photo threshold")
	}
}

func TestAnalyzeImageMetadataScreenshotByName(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"Screenshot_20260114-093021.png", true},
		{"Screen Shot 2026-01-14 at 9.30.21 AM.png", true},
		{"IMG_4021.jpg", false},
	}

	for _, tt := range tests {
		out := detection.AnalyzeImageMetadata([]byte("some pixels"), tt.filename)
		if out.Screenshot != tt.want {
			t.Errorf("screenshot(%q): got %v, want %v", tt.filename, out.Screenshot, tt.want)
		}
	}
}

func TestAnalyzeImageMetadataScreenshotByOSMarker(t *testing.T) {
	data := []byte("userComment=Screenshot captured on Android 14")

	out := detection.AnalyzeImageMetadata(data, "export.png")
	if !out.Screenshot {
		t.Error("expected screenshot finding for os-corroborated marker")
	}
}

func TestAnalyzeImageMetadataDeviceLabel(t *testing.T) {
	data := []byte(`make="samsung" model="sm-s918b" ExposureTime FNumber FocalLength`)

	out := detection.AnalyzeImageMetadata(data, "photo.jpg")
	if !out.Passed {
		t.Fatalf("unexpected AI determination: %s", out.Reason)
	}
	if !strings.Contains(out.Device, "samsung") {
		t.Errorf("device: got %q, want samsung label", out.Device)
	}
}

func TestAnalyzeImageMetadataPlaceholderDeviceDropped(t *testing.T) {
	data := []byte(`make="unknown" model="unknown" ordinary metadata`)

	out := detection.AnalyzeImageMetadata(data, "photo.jpg")
	if out.Device != "" {
		t.Errorf("device: got %q, want empty for placeholder values", out.Device)
	}
}

func TestAnalyzeImageMetadataEmpty(t *testing.T) {
	out := detection.AnalyzeImageMetadata(nil, "photo.jpg")
	if !out.Passed {
		t.Error("empty metadata must pass through to deep analysis")
	}
	if out.Layer != 2 {
		t.Errorf("layer: got %d, want 2", out.Layer)
	}
}

func TestAnalyzeImageMetadataInconclusive(t *testing.T) {
	out := detection.AnalyzeImageMetadata([]byte("plain pixels with no provenance"), "photo.jpg")
	if !out.Passed {
		t.Errorf("inconclusive metadata flagged AI: %s", out.Reason)
	}
	if out.CameraPhoto || out.Screenshot {
		t.Error("inconclusive metadata must carry no findings")
	}
}

func TestAnalyzeImageMetadataDecodesEncodedPNG(t *testing.T) {
	data := encodePNG(t, color.RGBA{R: 40, G: 90, B: 160, A: 255})

	out := detection.AnalyzeImageMetadata(data, "photo.png")
	if !out.Passed {
		t.Errorf("plain encoded PNG flagged AI: %s", out.Reason)
	}
	if out.Generator != "" {
		t.Errorf("generator: got %q, want none", out.Generator)
	}
	if out.Layer != 2 {
		t.Errorf("layer: got %d, want 2", out.Layer)
	}
}

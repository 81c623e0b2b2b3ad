package detection_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"testing"
	"time"

	"github.com/claimsight/claimsight/internal/detection"
)

func TestImageRiskPolicy(t *testing.T) {
	tests := []struct {
		name       string
		aiDetected int
		genuine    int
		total      int
		want       detection.RiskScore
	}{
		{"no hits", 0, 5, 5, detection.RiskLow},
		{"one of five", 1, 4, 5, detection.RiskMedium},
		{"two of five", 2, 3, 5, detection.RiskMedium},
		{"exactly half", 2, 2, 4, detection.RiskHigh},
		{"majority", 4, 1, 5, detection.RiskHigh},
		{"all flagged", 3, 0, 3, detection.RiskHigh},
		{"single flagged item", 1, 0, 1, detection.RiskHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detection.ImageRiskPolicy(tt.aiDetected, tt.genuine, tt.total)
			if got != tt.want {
				t.Errorf("ImageRiskPolicy(%d, %d, %d) = %s, want %s", tt.aiDetected, tt.genuine, tt.total, got, tt.want)
			}
		})
	}
}

func TestVideoRiskPolicy(t *testing.T) {
	tests := []struct {
		name       string
		aiDetected int
		genuine    int
		total      int
		want       detection.RiskScore
	}{
		{"no hits", 0, 4, 4, detection.RiskLow},
		{"minority flagged", 1, 3, 4, detection.RiskMedium},
		{"tie stays medium", 2, 2, 4, detection.RiskMedium},
		{"majority flagged", 3, 1, 4, detection.RiskHigh},
		{"single flagged item", 1, 0, 1, detection.RiskHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detection.VideoRiskPolicy(tt.aiDetected, tt.genuine, tt.total)
			if got != tt.want {
				t.Errorf("VideoRiskPolicy(%d, %d, %d) = %s, want %s", tt.aiDetected, tt.genuine, tt.total, got, tt.want)
			}
		})
	}
}

func TestPolicyFor(t *testing.T) {
	// One flagged of four: the policies diverge on this input.
	if got := detection.PolicyFor(detection.KindImage)(2, 2, 4); got != detection.RiskHigh {
		t.Errorf("image policy at half: got %s, want High", got)
	}
	if got := detection.PolicyFor(detection.KindVideo)(2, 2, 4); got != detection.RiskMedium {
		t.Errorf("video policy at tie: got %s, want Medium", got)
	}
}

func TestProcessEmptyBatch(t *testing.T) {
	p := detection.NewBatchProcessor(&stubDetector{result: genuineResult()}, detection.Delays{}, slog.Default())

	_, err := p.Process(context.Background(), nil, detection.ImageRiskPolicy)
	if !errors.Is(err, detection.ErrEmptyBatch) {
		t.Errorf("error: got %v, want ErrEmptyBatch", err)
	}
}

func TestProcessCountsAndConfidence(t *testing.T) {
	det := &stubDetector{result: genuineResult()}
	p := detection.NewBatchProcessor(det, detection.Delays{}, slog.Default())

	items := []*detection.MediaItem{
		{Name: "sora_clip.mp4", Kind: detection.KindVideo},
		{Name: "IMG_0001.jpg", Kind: detection.KindImage, Data: []byte("ordinary")},
		{Name: "IMG_0002.jpg", Kind: detection.KindImage, Data: []byte("ordinary")},
		{Name: "IMG_0003.jpg", Kind: detection.KindImage, Data: []byte("ordinary")},
	}

	report, err := p.Process(context.Background(), items, detection.ImageRiskPolicy)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}

	if report.FileCount != 4 {
		t.Errorf("file count: got %d, want 4", report.FileCount)
	}
	if report.AIDetectedCount != 1 {
		t.Errorf("ai detected: got %d, want 1", report.AIDetectedCount)
	}
	if report.GenuineCount != 3 {
		t.Errorf("genuine: got %d, want 3", report.GenuineCount)
	}
	if report.Confidence != 75 {
		t.Errorf("confidence: got %d, want 75", report.Confidence)
	}
	if report.RiskScore != detection.RiskMedium {
		t.Errorf("risk score: got %s, want Medium", report.RiskScore)
	}
	if report.ProcessedAt.IsZero() {
		t.Error("processed_at not set")
	}
	if len(report.Items) != 4 {
		t.Errorf("verdicts: got %d, want 4", len(report.Items))
	}
}

func TestProcessConfidenceRounds(t *testing.T) {
	det := &stubDetector{result: genuineResult()}
	p := detection.NewBatchProcessor(det, detection.Delays{}, slog.Default())

	// Two genuine of three: 66.67 rounds to 67.
	items := []*detection.MediaItem{
		{Name: "kling_clip.mp4", Kind: detection.KindVideo},
		{Name: "IMG_0001.jpg", Kind: detection.KindImage},
		{Name: "IMG_0002.jpg", Kind: detection.KindImage},
	}

	report, err := p.Process(context.Background(), items, detection.VideoRiskPolicy)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if report.Confidence != 67 {
		t.Errorf("confidence: got %d, want 67", report.Confidence)
	}
}

// pacedStub records invocation spacing to verify the detector slot is held
// one call at a time.
type pacedStub struct {
	result  *detection.Result
	active  bool
	overlap bool
	calls   int
}

func (d *pacedStub) Analyze(ctx context.Context, path string, kind detection.MediaKind) (*detection.Result, error) {
	if d.active {
		d.overlap = true
	}
	d.active = true
	defer func() { d.active = false }()
	d.calls++
	return d.result, nil
}

func TestProcessSequentialPacing(t *testing.T) {
	det := &pacedStub{result: genuineResult()}
	delays := detection.Delays{
		DetectorBase: 10 * time.Millisecond,
		ItemBase:     20 * time.Millisecond,
	}
	p := detection.NewBatchProcessor(det, delays, slog.Default())

	items := []*detection.MediaItem{
		{Name: "IMG_0001.jpg", Kind: detection.KindImage},
		{Name: "IMG_0002.jpg", Kind: detection.KindImage},
		{Name: "IMG_0003.jpg", Kind: detection.KindImage},
	}

	start := time.Now()
	if _, err := p.Process(context.Background(), items, detection.ImageRiskPolicy); err != nil {
		t.Fatalf("process failed: %v", err)
	}
	elapsed := time.Since(start)

	if det.calls != 3 {
		t.Errorf("detector calls: got %d, want 3", det.calls)
	}
	if det.overlap {
		t.Error("detector invocations overlapped")
	}

	// Three pre-call pauses plus two inter-item pauses.
	min := 3*delays.DetectorBase + 2*delays.ItemBase
	if elapsed < min {
		t.Errorf("elapsed %v, want at least %v of pacing", elapsed, min)
	}
}

func encodePNG(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestProcessFlagsDuplicateImages(t *testing.T) {
	det := &stubDetector{result: genuineResult()}
	p := detection.NewBatchProcessor(det, detection.Delays{}, slog.Default())

	data := encodePNG(t, color.RGBA{R: 120, G: 80, B: 40, A: 255})
	items := []*detection.MediaItem{
		{Name: "front.png", Kind: detection.KindImage, Data: data},
		{Name: "front-again.png", Kind: detection.KindImage, Data: data},
	}

	report, err := p.Process(context.Background(), items, detection.ImageRiskPolicy)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}

	if report.Items[0].DuplicateOf != "" {
		t.Errorf("first item marked duplicate of %q", report.Items[0].DuplicateOf)
	}
	if report.Items[1].DuplicateOf != "front.png" {
		t.Errorf("duplicate_of: got %q, want front.png", report.Items[1].DuplicateOf)
	}
	if report.Items[1].Name != "front-again.png" {
		t.Errorf("duplicate verdict name: got %q, want front-again.png", report.Items[1].Name)
	}
	if report.Items[1].Authenticity != report.Items[0].Authenticity {
		t.Error("duplicate must reuse the original's authenticity")
	}
}

func TestProcessDuplicatesSkipLayersAndCounts(t *testing.T) {
	det := &stubDetector{result: genuineResult()}
	p := detection.NewBatchProcessor(det, detection.Delays{}, slog.Default())

	data := encodePNG(t, color.RGBA{R: 200, G: 60, B: 60, A: 255})
	items := []*detection.MediaItem{
		{Name: "roof.png", Kind: detection.KindImage, Data: data},
		{Name: "roof-copy.png", Kind: detection.KindImage, Data: data},
	}

	report, err := p.Process(context.Background(), items, detection.ImageRiskPolicy)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}

	if det.calls != 1 {
		t.Errorf("detector calls: got %d, want 1", det.calls)
	}
	if report.FileCount != 1 {
		t.Errorf("file count: got %d, want 1", report.FileCount)
	}
	if report.GenuineCount != 1 {
		t.Errorf("genuine: got %d, want 1", report.GenuineCount)
	}
	if report.AIDetectedCount != 0 {
		t.Errorf("ai detected: got %d, want 0", report.AIDetectedCount)
	}
	if report.Confidence != 100 {
		t.Errorf("confidence: got %d, want 100", report.Confidence)
	}
	if len(report.Items) != 2 {
		t.Fatalf("verdicts: got %d, want 2", len(report.Items))
	}
	if report.Items[1].DuplicateOf != "roof.png" {
		t.Errorf("duplicate_of: got %q, want roof.png", report.Items[1].DuplicateOf)
	}
}

func TestProcessVideosNeverDeduplicated(t *testing.T) {
	det := &stubDetector{result: genuineResult()}
	p := detection.NewBatchProcessor(det, detection.Delays{}, slog.Default())

	data := []byte("identical video bytes")
	items := []*detection.MediaItem{
		{Name: "clip-a.mp4", Kind: detection.KindVideo, Data: data},
		{Name: "clip-b.mp4", Kind: detection.KindVideo, Data: data},
	}

	report, err := p.Process(context.Background(), items, detection.VideoRiskPolicy)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}

	for _, item := range report.Items {
		if item.DuplicateOf != "" {
			t.Errorf("%s marked duplicate of %q", item.Name, item.DuplicateOf)
		}
	}
}

package pipeline

import (
	"math"
	"testing"
)

// gaussianBump adds a Gaussian-shaped bump to a profile.
func gaussianBump(profile []float64, center int, amplitude, sigma float64) {
	for i := range profile {
		d := float64(i - center)
		profile[i] += amplitude * math.Exp(-(d*d)/(2*sigma*sigma))
	}
}

func TestDetectSingleBump(t *testing.T) {
	profile := make([]float64, 100)
	gaussianBump(profile, 50, 0.8, 2.0)

	peaks := NewPeakDetector().Detect(profile)
	if len(peaks) != 1 {
		t.Fatalf("expected exactly 1 peak, got %d: %+v", len(peaks), peaks)
	}

	peak := peaks[0]
	if peak.Bin < 49 || peak.Bin > 51 {
		t.Errorf("peak at bin %d, want 50 +/- 1", peak.Bin)
	}
	if peak.Wavelength < 560 || peak.Wavelength > 570 {
		t.Errorf("peak wavelength %d nm, want about 565", peak.Wavelength)
	}
	if math.Abs(peak.Value-0.8) > 0.05 {
		t.Errorf("peak value %f, want about 0.8", peak.Value)
	}
}

func TestDetectBelowThresholdIgnored(t *testing.T) {
	profile := make([]float64, 100)
	gaussianBump(profile, 50, 0.04, 2.0)

	if peaks := NewPeakDetector().Detect(profile); len(peaks) != 0 {
		t.Errorf("expected no peaks below threshold, got %+v", peaks)
	}
}

func TestDetectFirstComeBlocksLater(t *testing.T) {
	// With the default 400 px plot over 100 bins, one bin is 4 px, so peaks
	// within 6 bins of an accepted peak fall inside the 25 px window. The
	// smaller bump at bin 30 is accepted first and blocks the larger one at
	// bin 36; the distant bump at 60 is unaffected.
	profile := make([]float64, 100)
	gaussianBump(profile, 30, 0.3, 1.0)
	gaussianBump(profile, 36, 0.9, 1.0)
	gaussianBump(profile, 60, 0.5, 1.0)

	peaks := NewPeakDetector().Detect(profile)
	if len(peaks) != 2 {
		t.Fatalf("expected 2 peaks, got %d: %+v", len(peaks), peaks)
	}
	if peaks[0].Bin != 30 {
		t.Errorf("first peak at bin %d, want 30 (first-come ordering)", peaks[0].Bin)
	}
	if peaks[1].Bin != 60 {
		t.Errorf("second peak at bin %d, want 60", peaks[1].Bin)
	}
}

func TestDetectSeparatedPeaksBothAccepted(t *testing.T) {
	profile := make([]float64, 100)
	gaussianBump(profile, 30, 0.3, 1.0)
	gaussianBump(profile, 40, 0.9, 1.0) // 40 px away, outside the window

	peaks := NewPeakDetector().Detect(profile)
	if len(peaks) != 2 {
		t.Fatalf("expected 2 peaks, got %d: %+v", len(peaks), peaks)
	}
}

func TestDetectPlotWidthChangesWindow(t *testing.T) {
	profile := make([]float64, 100)
	gaussianBump(profile, 30, 0.3, 1.0)
	gaussianBump(profile, 36, 0.9, 1.0)

	// At 800 px the same 6-bin gap is 48 px and both peaks survive.
	peaks := NewPeakDetector(WithPlotWidth(800)).Detect(profile)
	if len(peaks) != 2 {
		t.Fatalf("expected 2 peaks at 800 px, got %d: %+v", len(peaks), peaks)
	}
}

func TestDetectShortProfile(t *testing.T) {
	if peaks := NewPeakDetector().Detect([]float64{1, 2, 1}); peaks != nil {
		t.Errorf("expected nil for short profile, got %+v", peaks)
	}
}

package pipeline

import (
	"errors"
	"math"
	"testing"
)

func TestProcessFrameUniformScenario(t *testing.T) {
	// Reference at RGB (200,200,200), sample at (100,100,100): absorbance
	// should sit at -log10(0.5) outside the red correction band and below it
	// inside the band.
	p := NewProcessor()

	reference, err := p.ProcessFrame(uniformBlock(100, 20, 200, 200, 200), nil)
	if err != nil {
		t.Fatalf("processing reference: %v", err)
	}
	sample, err := p.ProcessFrame(uniformBlock(100, 20, 100, 100, 100), nil)
	if err != nil {
		t.Fatalf("processing sample: %v", err)
	}

	absorbance, err := Absorbance(reference, sample)
	if err != nil {
		t.Fatalf("computing absorbance: %v", err)
	}
	if len(absorbance) != DefaultBins {
		t.Fatalf("got %d bins, want %d", len(absorbance), DefaultBins)
	}

	expected := -math.Log10(0.5)
	for i, v := range absorbance {
		if v < 0 || v > 1 {
			t.Fatalf("bin %d: absorbance %f outside [0, 1]", i, v)
		}
		// Smoothing blends across the channel-weight boundaries, but the
		// intensity ratio is 0.5 everywhere, so absorbance still lands on
		// the expected value up to the red correction.
		if v > expected+1e-6 {
			t.Errorf("bin %d: absorbance %f exceeds %f", i, v, expected)
		}
	}
	if math.Abs(absorbance[0]-expected) > 1e-6 {
		t.Errorf("bin 0: absorbance = %f, want %f", absorbance[0], expected)
	}
}

func TestProcessFrameSelfCalibrationIsDegenerate(t *testing.T) {
	// A calibration frame identical to the capture wipes out green entirely
	// and leaves only the 5% residue on red and blue. Using such a frame as
	// reference must produce zero absorbance, never NaN or infinity.
	p := NewProcessor()
	block := uniformBlock(100, 20, 0, 200, 0)
	calibration := uniformBlock(100, 20, 0, 200, 0)

	reference, err := p.ProcessFrame(block, calibration)
	if err != nil {
		t.Fatalf("processing frame: %v", err)
	}
	for i, v := range reference {
		if v != 0 {
			t.Fatalf("bin %d: intensity = %f, want 0 after self-subtraction", i, v)
		}
	}

	sample, err := p.ProcessFrame(uniformBlock(100, 20, 100, 100, 100), nil)
	if err != nil {
		t.Fatalf("processing sample: %v", err)
	}

	absorbance, err := Absorbance(reference, sample)
	if err != nil {
		t.Fatalf("computing absorbance: %v", err)
	}
	for i, v := range absorbance {
		if v != 0 || math.IsNaN(v) {
			t.Errorf("bin %d: absorbance = %f, want 0", i, v)
		}
	}
}

func TestProcessFrameCalibrationMismatch(t *testing.T) {
	p := NewProcessor()
	block := uniformBlock(100, 20, 200, 200, 200)
	calibration := uniformBlock(80, 20, 10, 10, 10)

	_, err := p.ProcessFrame(block, calibration)
	if err == nil {
		t.Fatal("expected dimension error, got nil")
	}
	var dimErr *DimensionError
	if !errors.As(err, &dimErr) {
		t.Fatalf("expected *DimensionError, got %T: %v", err, err)
	}
}

func TestProcessFrameOutputInvariants(t *testing.T) {
	p := NewProcessor(WithBins(64))
	if p.Bins() != 64 {
		t.Fatalf("Bins() = %d, want 64", p.Bins())
	}

	out, err := p.ProcessFrame(uniformBlock(321, 17, 13, 90, 201), nil)
	if err != nil {
		t.Fatalf("ProcessFrame failed: %v", err)
	}
	if len(out) != 64 {
		t.Fatalf("got %d bins, want 64", len(out))
	}
	for i, v := range out {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("bin %d: invalid intensity %f", i, v)
		}
	}
}

func TestProcessFrameAllocatesFreshOutput(t *testing.T) {
	p := NewProcessor()
	block := uniformBlock(100, 20, 200, 200, 200)

	first, err := p.ProcessFrame(block, nil)
	if err != nil {
		t.Fatalf("ProcessFrame failed: %v", err)
	}
	second, err := p.ProcessFrame(block, nil)
	if err != nil {
		t.Fatalf("ProcessFrame failed: %v", err)
	}

	first[0] = -1
	if second[0] == -1 {
		t.Error("ProcessFrame returned a shared buffer")
	}
}

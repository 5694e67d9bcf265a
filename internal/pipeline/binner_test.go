package pipeline

import (
	"errors"
	"math"
	"testing"
)

// uniformBlock fills a block with a single RGB value.
func uniformBlock(width, height int, r, g, b uint8) *PixelBlock {
	block := NewPixelBlock(width, height)
	for i := 0; i < len(block.Pix); i += 4 {
		block.Pix[i] = r
		block.Pix[i+1] = g
		block.Pix[i+2] = b
		block.Pix[i+3] = 0xff
	}
	return block
}

func TestBinBlockUniform(t *testing.T) {
	block := uniformBlock(100, 20, 200, 150, 100)

	bins, err := BinBlock(block, nil, 100)
	if err != nil {
		t.Fatalf("BinBlock failed: %v", err)
	}

	for i, count := range bins.Counts {
		if count != 20 {
			t.Fatalf("bin %d: count = %d, want 20", i, count)
		}
	}

	red, green, blue := bins.Averages()
	for i := range red {
		if red[i] != 200 || green[i] != 150 || blue[i] != 100 {
			t.Fatalf("bin %d averages = (%f, %f, %f), want (200, 150, 100)", i, red[i], green[i], blue[i])
		}
	}
}

func TestBinBlockRejectsDarkTexels(t *testing.T) {
	// Channel sum 29 is below the floor; 30 is not.
	dark := uniformBlock(10, 10, 9, 10, 10)
	bins, err := BinBlock(dark, nil, 10)
	if err != nil {
		t.Fatalf("BinBlock failed: %v", err)
	}
	for i, count := range bins.Counts {
		if count != 0 {
			t.Errorf("bin %d collected %d dark texels", i, count)
		}
	}

	lit := uniformBlock(10, 10, 10, 10, 10)
	bins, err = BinBlock(lit, nil, 10)
	if err != nil {
		t.Fatalf("BinBlock failed: %v", err)
	}
	for i, count := range bins.Counts {
		if count != 10 {
			t.Errorf("bin %d: count = %d, want 10", i, count)
		}
	}
}

func TestBinBlockNoiseFactors(t *testing.T) {
	block := uniformBlock(10, 1, 100, 100, 100)
	calibration := uniformBlock(10, 1, 40, 40, 40)

	bins, err := BinBlock(block, calibration, 10)
	if err != nil {
		t.Fatalf("BinBlock failed: %v", err)
	}

	red, green, blue := bins.Averages()
	// 100 - 40*0.95 = 62, 100 - 40*1.05 = 58
	if math.Abs(red[0]-62) > 1e-9 || math.Abs(blue[0]-62) > 1e-9 {
		t.Errorf("red/blue averages = %f/%f, want 62", red[0], blue[0])
	}
	if math.Abs(green[0]-58) > 1e-9 {
		t.Errorf("green average = %f, want 58", green[0])
	}
}

func TestBinBlockSelfCalibrationZeroes(t *testing.T) {
	// A calibration frame identical to the capture subtracts at least the
	// whole signal on red and blue; green over-subtracts and clamps at zero.
	block := uniformBlock(100, 20, 120, 90, 60)
	calibration := uniformBlock(100, 20, 120, 90, 60)

	bins, err := BinBlock(block, calibration, 100)
	if err != nil {
		t.Fatalf("BinBlock failed: %v", err)
	}

	red, green, blue := bins.Averages()
	for i := range red {
		// 120 - 120*0.95 = 6, 60 - 60*0.95 = 3, green clamps to 0
		if math.Abs(red[i]-6) > 1e-9 || math.Abs(blue[i]-3) > 1e-9 || green[i] != 0 {
			t.Fatalf("bin %d averages = (%f, %f, %f)", i, red[i], green[i], blue[i])
		}
	}
}

func TestBinBlockDimensionMismatch(t *testing.T) {
	block := uniformBlock(100, 20, 200, 200, 200)
	calibration := uniformBlock(90, 20, 10, 10, 10)

	_, err := BinBlock(block, calibration, 100)
	if err == nil {
		t.Fatal("expected dimension error, got nil")
	}

	var dimErr *DimensionError
	if !errors.As(err, &dimErr) {
		t.Fatalf("expected *DimensionError, got %T: %v", err, err)
	}
}

func TestBinBlockColumnMapping(t *testing.T) {
	// A 40-wide block into 10 bins: 4 columns per bin.
	block := NewPixelBlock(40, 1)
	for x := 0; x < 40; x++ {
		i := 4 * x
		block.Pix[i] = uint8(40 + x) // keep channel sum above the dark floor
		block.Pix[i+3] = 0xff
	}

	bins, err := BinBlock(block, nil, 10)
	if err != nil {
		t.Fatalf("BinBlock failed: %v", err)
	}
	for i, count := range bins.Counts {
		if count != 4 {
			t.Errorf("bin %d: count = %d, want 4", i, count)
		}
	}
	// First bin sums columns 0-3: 40+41+42+43
	if bins.Red[0] != 166 {
		t.Errorf("bin 0 red sum = %f, want 166", bins.Red[0])
	}
}

func TestResampleBlockDimensions(t *testing.T) {
	block := uniformBlock(100, 20, 50, 60, 70)

	out := ResampleBlock(block, 50, 10)
	if out.Width != 50 || out.Height != 10 {
		t.Fatalf("resampled to %s, want 50x10", out)
	}

	// Uniform input stays uniform under bilinear scaling.
	r, g, b := out.RGB(25, 5)
	if r != 50 || g != 60 || b != 70 {
		t.Errorf("resampled texel = (%d, %d, %d), want (50, 60, 70)", r, g, b)
	}

	// Same-size resampling must still copy, never alias.
	same := ResampleBlock(block, 100, 20)
	same.Pix[0] = 0
	if block.Pix[0] != 50 {
		t.Error("ResampleBlock aliased the source buffer")
	}
}

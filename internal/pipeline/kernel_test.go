package pipeline

import (
	"math"
	"testing"
)

func TestGaussianKernelSumsToOne(t *testing.T) {
	cases := []struct {
		size  int
		sigma float64
	}{
		{3, 0.5},
		{5, 1.0},
		{7, 1.5},
		{11, 2.5},
		{5, 100},
	}

	for _, tc := range cases {
		kernel := GaussianKernel(tc.size, tc.sigma)
		if len(kernel) != tc.size {
			t.Fatalf("size=%d sigma=%f: got %d weights", tc.size, tc.sigma, len(kernel))
		}

		var sum float64
		for _, w := range kernel {
			sum += w
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("size=%d sigma=%f: weights sum to %.12f", tc.size, tc.sigma, sum)
		}
	}
}

func TestGaussianKernelSymmetric(t *testing.T) {
	kernel := GaussianKernel(5, 1.0)
	for i := 0; i < len(kernel)/2; i++ {
		if math.Abs(kernel[i]-kernel[len(kernel)-1-i]) > 1e-12 {
			t.Errorf("kernel not symmetric: w[%d]=%g w[%d]=%g", i, kernel[i], len(kernel)-1-i, kernel[len(kernel)-1-i])
		}
	}
	if kernel[2] <= kernel[1] || kernel[1] <= kernel[0] {
		t.Errorf("kernel not peaked at center: %v", kernel)
	}
}

func TestGaussianKernelClampsSigma(t *testing.T) {
	// Non-positive sigma clamps to an epsilon, collapsing the kernel to an
	// identity tap at the center.
	for _, sigma := range []float64{0, -1} {
		kernel := GaussianKernel(5, sigma)
		if math.Abs(kernel[2]-1) > 1e-9 {
			t.Errorf("sigma=%f: center weight = %g, want 1", sigma, kernel[2])
		}
		for i, w := range kernel {
			if i != 2 && w > 1e-9 {
				t.Errorf("sigma=%f: tap %d = %g, want 0", sigma, i, w)
			}
		}
	}
}

func TestDisplayKernelSize(t *testing.T) {
	if got := DisplayKernelSize(1.5); got != 11 {
		t.Errorf("DisplayKernelSize(1.5) = %d, want 11", got)
	}
	if got := DisplayKernelSize(1.0); got != 7 {
		t.Errorf("DisplayKernelSize(1.0) = %d, want 7", got)
	}
}

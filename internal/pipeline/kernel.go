package pipeline

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// minSigma is the floor applied to non-positive sigmas. A sigma this small
// makes the kernel an identity within float precision, which is the safest
// interpretation of a degenerate request.
const minSigma = 1e-6

// GaussianKernel returns size weights of a sampled Gaussian centered at
// floor(size/2), normalized to sum to 1. size must be odd and positive;
// sigma <= 0 is clamped to minSigma.
func GaussianKernel(size int, sigma float64) []float64 {
	if sigma <= 0 {
		sigma = minSigma
	}

	kernel := make([]float64, size)
	mean := float64(size / 2)
	for x := range kernel {
		d := float64(x) - mean
		kernel[x] = math.Exp(-(d * d) / (2 * sigma * sigma))
	}

	floats.Scale(1/floats.Sum(kernel), kernel)
	return kernel
}

// DisplayKernelSize derives the kernel size used for display smoothing from
// its sigma: three standard deviations each side of the center tap.
func DisplayKernelSize(sigma float64) int {
	return int(math.Ceil(sigma*3))*2 + 1
}

package pipeline

// Smooth convolves a profile with the given kernel using edge truncation:
// taps falling outside the profile are dropped and the surviving tap weights
// are renormalized, so edge bins remain a weighted average of their available
// neighbors instead of darkening toward zero-padded values.
//
// A fresh slice is returned; the input is never mutated. Non-finite input
// values are treated as zero.
func Smooth(profile, kernel []float64) []float64 {
	n := len(profile)
	half := len(kernel) / 2

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum, weight float64
		for k, w := range kernel {
			j := i + k - half
			if j < 0 || j >= n {
				continue
			}
			sum += w * sanitize(profile[j])
			weight += w
		}
		if weight > 0 {
			out[i] = sum / weight
		}
	}
	return out
}

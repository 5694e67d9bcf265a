package pipeline

// Dark texels carry no band signal, only sensor noise. Texels whose absolute
// channel sum (0-765) falls below this floor are dropped before binning and
// do not contribute to bin counts.
const darkTexelFloor = 30

// Dark-frame subtraction factors. The green channel of consumer camera
// sensors reads hot relative to red and blue, so its noise estimate is
// inflated while the other two are slightly relaxed. The exact values are
// empirically tuned and downstream output parity depends on them.
const (
	NoiseFactorRed   = 0.95
	NoiseFactorGreen = 1.05
	NoiseFactorBlue  = 0.95
)

// ChannelBins holds the spatial projection of a pixel block along the
// dispersion axis: per-bin channel sums plus the number of texels that
// survived dark-texel rejection in each bin.
type ChannelBins struct {
	Red    []float64
	Green  []float64
	Blue   []float64
	Counts []int
}

// Bins returns the number of bins.
func (c *ChannelBins) Bins() int {
	return len(c.Counts)
}

// Averages reduces the channel sums to per-bin channel means. Bins that
// collected no texels yield zero in all three channels.
func (c *ChannelBins) Averages() (red, green, blue []float64) {
	n := c.Bins()
	red = make([]float64, n)
	green = make([]float64, n)
	blue = make([]float64, n)
	for i, count := range c.Counts {
		if count == 0 {
			continue
		}
		red[i] = c.Red[i] / float64(count)
		green[i] = c.Green[i] / float64(count)
		blue[i] = c.Blue[i] / float64(count)
	}
	return red, green, blue
}

// BinBlock projects a pixel block onto n wavelength bins along its horizontal
// axis, subtracting per-texel dark-frame noise when a calibration block is
// supplied. A calibration block of different dimensions is a hard error:
// silently proceeding would misalign the per-texel noise estimates.
func BinBlock(block, calibration *PixelBlock, n int) (*ChannelBins, error) {
	if calibration != nil && !block.SameSize(calibration) {
		return nil, newBlockDimensionError("calibration frame", block, calibration)
	}

	bins := &ChannelBins{
		Red:    make([]float64, n),
		Green:  make([]float64, n),
		Blue:   make([]float64, n),
		Counts: make([]int, n),
	}

	for y := 0; y < block.Height; y++ {
		for x := 0; x < block.Width; x++ {
			r, g, b := block.RGB(x, y)
			if int(r)+int(g)+int(b) < darkTexelFloor {
				continue
			}

			var noiseR, noiseG, noiseB float64
			if calibration != nil {
				nr, ng, nb := calibration.RGB(x, y)
				noiseR = float64(nr) * NoiseFactorRed
				noiseG = float64(ng) * NoiseFactorGreen
				noiseB = float64(nb) * NoiseFactorBlue
			}

			bin := x * n / block.Width
			bins.Red[bin] += max(0, float64(r)-noiseR)
			bins.Green[bin] += max(0, float64(g)-noiseG)
			bins.Blue[bin] += max(0, float64(b)-noiseB)
			bins.Counts[bin]++
		}
	}

	return bins, nil
}

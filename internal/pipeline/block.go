package pipeline

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// PixelBlock is a rectangular block of raw camera pixels in RGBA order,
// 8 bits per channel. The horizontal axis is the dispersion axis. Blocks are
// treated as immutable once captured; frame, reference, sample and
// calibration captures are always independent instances.
type PixelBlock struct {
	Width  int
	Height int
	Pix    []uint8 // 4*Width*Height bytes, RGBA interleaved, row-major
}

// NewPixelBlock allocates a zeroed block of the given dimensions.
func NewPixelBlock(width, height int) *PixelBlock {
	return &PixelBlock{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, 4*width*height),
	}
}

// FromImage copies an image into a new PixelBlock.
func FromImage(img image.Image) *PixelBlock {
	bounds := img.Bounds()
	block := NewPixelBlock(bounds.Dx(), bounds.Dy())

	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == 4*block.Width {
		copy(block.Pix, rgba.Pix[rgba.PixOffset(bounds.Min.X, bounds.Min.Y):])
		return block
	}

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			block.Pix[i] = uint8(r >> 8)
			block.Pix[i+1] = uint8(g >> 8)
			block.Pix[i+2] = uint8(b >> 8)
			block.Pix[i+3] = uint8(a >> 8)
			i += 4
		}
	}
	return block
}

// RGB returns the red, green and blue samples of the texel at (x, y).
func (b *PixelBlock) RGB(x, y int) (r, g, bl uint8) {
	i := 4 * (y*b.Width + x)
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2]
}

// SameSize reports whether two blocks have identical dimensions.
func (b *PixelBlock) SameSize(other *PixelBlock) bool {
	return other != nil && b.Width == other.Width && b.Height == other.Height
}

func (b *PixelBlock) String() string {
	return fmt.Sprintf("%dx%d", b.Width, b.Height)
}

// ResampleBlock scales a block to the given dimensions using bilinear
// interpolation. The pipeline never resamples implicitly: a calibration frame
// of mismatched size is a hard error, and reconciling dimensions is an
// explicit caller decision made through this helper.
func ResampleBlock(block *PixelBlock, width, height int) *PixelBlock {
	if block.Width == width && block.Height == height {
		out := NewPixelBlock(width, height)
		copy(out.Pix, block.Pix)
		return out
	}

	src := &image.RGBA{
		Pix:    block.Pix,
		Stride: 4 * block.Width,
		Rect:   image.Rect(0, 0, block.Width, block.Height),
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Rect, src, src.Rect, draw.Src, nil)

	return &PixelBlock{Width: width, Height: height, Pix: dst.Pix}
}

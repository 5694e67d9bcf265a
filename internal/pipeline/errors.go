package pipeline

import "fmt"

// DimensionError reports incompatible dimensions between two inputs that must
// align exactly: a calibration frame against its target block, or a reference
// profile against a sample profile. The call producing it yields no partial
// output; the caller decides whether to skip the frame or surface a warning.
type DimensionError struct {
	What string // what failed to align, e.g. "calibration frame"
	Want string
	Got  string
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s dimensions %s do not match %s", e.What, e.Got, e.Want)
}

func newBlockDimensionError(what string, want, got *PixelBlock) *DimensionError {
	return &DimensionError{What: what, Want: want.String(), Got: got.String()}
}

func newLengthDimensionError(what string, want, got int) *DimensionError {
	return &DimensionError{
		What: what,
		Want: fmt.Sprintf("%d bins", want),
		Got:  fmt.Sprintf("%d bins", got),
	}
}

// Package calibrator tracks and rewrites the axis calibration of one
// evdev device through its XInput properties.
package calibrator

// AxisRange is the raw coordinate range mapped onto one screen axis.
// Min greater than Max is meaningful: it is how an inverted axis is
// stored, so no ordering is enforced.
type AxisRange struct {
	Min int64
	Max int64
}

// XYinfo is a complete calibration state. It is a value type; new
// states are produced instead of mutated in place.
type XYinfo struct {
	X      AxisRange
	Y      AxisRange
	SwapXY bool
}

// CalibrationValues returns the four bounds in the order the device
// property stores them.
func (a XYinfo) CalibrationValues() []int64 {
	return []int64{a.X.Min, a.X.Max, a.Y.Min, a.Y.Max}
}

// SwapValue returns the swap flag as the 0/1 value the device property
// stores.
func (a XYinfo) SwapValue() int64 {
	if a.SwapXY {
		return 1
	}
	return 0
}

// FoldInversion folds raw driver inversion flags into the bound
// ordering by exchanging min and max on each inverted axis.
func (a XYinfo) FoldInversion(invertX, invertY bool) XYinfo {
	if invertX {
		a.X.Min, a.X.Max = a.X.Max, a.X.Min
	}
	if invertY {
		a.Y.Min, a.Y.Max = a.Y.Max, a.Y.Min
	}
	return a
}

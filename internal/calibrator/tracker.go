package calibrator

import (
	"github.com/bnema/xcal/internal/logger"
	"github.com/bnema/xcal/internal/xserver"
)

// Device is the property access the tracker needs from a session.
type Device interface {
	Name() string
	GetProperty(name string) (xserver.Property, error)
	SetProperty(name string, format byte, values []int64) error
	Sync() error
}

// Step names reported in an ApplyResult.
const (
	StepSwap        = "axes swap"
	StepInversion   = "inversion reset"
	StepCalibration = "calibration"
	StepSync        = "sync"
)

// StepResult records the outcome of one write in an Apply sequence.
type StepResult struct {
	Step string
	Err  error
}

// ApplyResult lists every step Apply attempted, in issue order.
type ApplyResult struct {
	Steps []StepResult
}

// AllSucceeded reports whether every attempted step completed.
func (r ApplyResult) AllSucceeded() bool {
	for _, s := range r.Steps {
		if s.Err != nil {
			return false
		}
	}
	return true
}

// Failed returns the steps that did not complete.
func (r ApplyResult) Failed() []StepResult {
	var failed []StepResult
	for _, s := range r.Steps {
		if s.Err != nil {
			failed = append(failed, s)
		}
	}
	return failed
}

// Tracker keeps the calibration snapshots for one device session: the
// state first observed (baseline for reporting) and the state believed
// currently active on the device.
type Tracker struct {
	dev  Device
	orig XYinfo
	old  XYinfo
}

// NewTracker builds a tracker over dev. initial seeds the
// currently-active snapshot until Detect replaces it; it is also what a
// quirk recovery re-asserts if the very first Detect finds the
// calibration property empty.
func NewTracker(dev Device, initial XYinfo) *Tracker {
	return &Tracker{dev: dev, orig: initial, old: initial}
}

// Original returns the calibration as first observed by Detect.
func (t *Tracker) Original() XYinfo { return t.orig }

// Current returns the calibration believed active on the device.
func (t *Tracker) Current() XYinfo { return t.old }

// Commit records axys as the currently active calibration. The tracker
// does not assume a write took effect beyond what the driver reported,
// so committing after a successful Apply is the caller's call.
func (t *Tracker) Commit(axys XYinfo) { t.old = axys }

// Detect reads the device's live calibration into the tracked state and
// records it as the first-seen baseline. Absent or malformed properties
// leave the corresponding field untouched: older evdev drivers do not
// expose all three properties, so detection is best effort and never
// fails.
func (t *Tracker) Detect() XYinfo {
	if prop, err := t.dev.GetProperty(xserver.PropCalibration); err == nil && prop.Exists() {
		if prop.Format == xserver.Format32 {
			switch len(prop.Items) {
			case 0:
				// QUIRK: after a suspend/resume cycle the calibration
				// property comes back empty even though the old values
				// are still active on the device. Re-assert the tracked
				// values so device and tracker agree again.
				logger.Debug("calibration property empty, re-asserting tracked values")
				if err := t.setCalibration(t.old); err != nil {
					logger.Debugf("re-assert failed: %v", err)
				}
			case 4:
				t.old.X = AxisRange{Min: prop.Items[0], Max: prop.Items[1]}
				t.old.Y = AxisRange{Min: prop.Items[2], Max: prop.Items[3]}
			}
		}
	}

	if prop, err := t.dev.GetProperty(xserver.PropSwapAxes); err == nil && prop.Exists() {
		if prop.Format == xserver.Format8 && len(prop.Items) == 1 {
			t.old.SwapXY = prop.Items[0] != 0
			logger.Debugf("read axes swap value of %t", t.old.SwapXY)
		}
	}

	if prop, err := t.dev.GetProperty(xserver.PropInversion); err == nil && prop.Exists() {
		if prop.Format == xserver.Format8 && len(prop.Items) == 2 {
			invertX, invertY := prop.Items[0] != 0, prop.Items[1] != 0
			logger.Debugf("read invert_x=%t, invert_y=%t", invertX, invertY)
			t.old = t.old.FoldInversion(invertX, invertY)
		}
	}

	logger.Infof("current calibration: min_x=%d, max_x=%d, min_y=%d, max_y=%d",
		t.old.X.Min, t.old.X.Max, t.old.Y.Min, t.old.Y.Max)

	t.orig = t.old
	return t.old
}

// Apply writes newAxys to the device: the swap flag when it changed,
// then an unconditional inversion reset, then the four bounds, then a
// sync barrier. Every step is attempted even when an earlier one fails,
// so a partial calibration still lands on the device; the result
// records each attempted step. Call Commit once the result is
// acceptable.
func (t *Tracker) Apply(newAxys XYinfo) ApplyResult {
	var result ApplyResult
	logger.Debug("doing dynamic recalibration")

	if t.old.SwapXY != newAxys.SwapXY {
		logger.Debugf("swapping x and y axis: %t", newAxys.SwapXY)
		err := t.dev.SetProperty(xserver.PropSwapAxes, xserver.Format8, []int64{newAxys.SwapValue()})
		result.Steps = append(result.Steps, StepResult{Step: StepSwap, Err: err})
	}

	// Inversion is carried by the bound ordering written below, so the
	// raw driver flags are always cleared, never set.
	err := t.dev.SetProperty(xserver.PropInversion, xserver.Format8, []int64{0, 0})
	result.Steps = append(result.Steps, StepResult{Step: StepInversion, Err: err})

	err = t.setCalibration(newAxys)
	result.Steps = append(result.Steps, StepResult{Step: StepCalibration, Err: err})

	err = t.dev.Sync()
	result.Steps = append(result.Steps, StepResult{Step: StepSync, Err: err})

	return result
}

func (t *Tracker) setCalibration(axys XYinfo) error {
	logger.Debugf("setting calibration data: %d, %d, %d, %d",
		axys.X.Min, axys.X.Max, axys.Y.Min, axys.Y.Max)
	return t.dev.SetProperty(xserver.PropCalibration, xserver.Format32, axys.CalibrationValues())
}

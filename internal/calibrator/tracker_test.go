package calibrator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/xcal/internal/xserver"
)

type write struct {
	name   string
	format byte
	values []int64
}

// fakeDevice records every write so tests can assert on the exact
// sequence. Writes listed in failOn still get recorded before failing,
// matching a driver that rejects a value it received.
type fakeDevice struct {
	props  map[string]xserver.Property
	failOn map[string]error
	writes []write
	synced int
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		props:  make(map[string]xserver.Property),
		failOn: make(map[string]error),
	}
}

func (d *fakeDevice) Name() string { return "FooTouch" }

func (d *fakeDevice) GetProperty(name string) (xserver.Property, error) {
	return d.props[name], nil
}

func (d *fakeDevice) SetProperty(name string, format byte, values []int64) error {
	d.writes = append(d.writes, write{name: name, format: format, values: append([]int64(nil), values...)})
	return d.failOn[name]
}

func (d *fakeDevice) Sync() error {
	d.synced++
	return nil
}

func intProp(format byte, items ...int64) xserver.Property {
	return xserver.Property{Type: xserver.TypeInteger, Format: format, Items: items}
}

func TestDetectCalibrationOnly(t *testing.T) {
	// Device reports calibration but no swap or inversion properties:
	// swap defaults to false and both snapshots match.
	dev := newFakeDevice()
	dev.props[xserver.PropCalibration] = intProp(xserver.Format32, 0, 1000, 0, 600)

	tracker := NewTracker(dev, XYinfo{})
	axys := tracker.Detect()

	want := XYinfo{X: AxisRange{Min: 0, Max: 1000}, Y: AxisRange{Min: 0, Max: 600}}
	assert.Equal(t, want, axys)
	assert.Equal(t, want, tracker.Current())
	assert.Equal(t, tracker.Current(), tracker.Original())
	assert.Empty(t, dev.writes)
}

func TestDetectReadsSwap(t *testing.T) {
	dev := newFakeDevice()
	dev.props[xserver.PropCalibration] = intProp(xserver.Format32, 0, 1000, 0, 600)
	dev.props[xserver.PropSwapAxes] = intProp(xserver.Format8, 1)

	tracker := NewTracker(dev, XYinfo{})
	axys := tracker.Detect()
	assert.True(t, axys.SwapXY)
}

func TestDetectFoldsInversionIntoBounds(t *testing.T) {
	tests := []struct {
		name    string
		inverts []int64
		wantX   AxisRange
		wantY   AxisRange
	}{
		{name: "invert x", inverts: []int64{1, 0}, wantX: AxisRange{100, 0}, wantY: AxisRange{0, 50}},
		{name: "invert y", inverts: []int64{0, 1}, wantX: AxisRange{0, 100}, wantY: AxisRange{50, 0}},
		{name: "no inversion", inverts: []int64{0, 0}, wantX: AxisRange{0, 100}, wantY: AxisRange{0, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := newFakeDevice()
			dev.props[xserver.PropCalibration] = intProp(xserver.Format32, 0, 100, 0, 50)
			dev.props[xserver.PropInversion] = intProp(xserver.Format8, tt.inverts...)

			axys := NewTracker(dev, XYinfo{}).Detect()
			assert.Equal(t, tt.wantX, axys.X)
			assert.Equal(t, tt.wantY, axys.Y)
		})
	}
}

func TestDetectQuirkReassertsTrackedCalibration(t *testing.T) {
	// Zero items means the property was silently cleared (resume
	// quirk): the tracked values must be written back, not reset.
	dev := newFakeDevice()
	dev.props[xserver.PropCalibration] = intProp(xserver.Format32)

	seed := XYinfo{X: AxisRange{Min: 10, Max: 900}, Y: AxisRange{Min: 20, Max: 580}}
	tracker := NewTracker(dev, seed)
	axys := tracker.Detect()

	require.Len(t, dev.writes, 1)
	assert.Equal(t, xserver.PropCalibration, dev.writes[0].name)
	assert.Equal(t, xserver.Format32, dev.writes[0].format)
	assert.Equal(t, []int64{10, 900, 20, 580}, dev.writes[0].values)
	assert.Equal(t, seed, axys)
	assert.Equal(t, seed, tracker.Current())
}

func TestDetectIgnoresMalformedProperties(t *testing.T) {
	dev := newFakeDevice()
	dev.props[xserver.PropCalibration] = intProp(xserver.Format32, 1, 2) // wrong item count
	dev.props[xserver.PropSwapAxes] = intProp(xserver.Format8, 1, 1)    // wrong item count
	dev.props[xserver.PropInversion] = intProp(xserver.Format32, 1, 0)  // wrong format

	seed := XYinfo{X: AxisRange{Min: 5, Max: 6}, Y: AxisRange{Min: 7, Max: 8}}
	axys := NewTracker(dev, seed).Detect()
	assert.Equal(t, seed, axys)
	assert.Empty(t, dev.writes)
}

func TestApplyWriteOrder(t *testing.T) {
	// Swap changes, so the full sequence is swap, inversion reset,
	// calibration, then the sync barrier.
	dev := newFakeDevice()
	tracker := NewTracker(dev, XYinfo{})

	newAxys := XYinfo{X: AxisRange{Min: 1000, Max: 0}, Y: AxisRange{Min: 0, Max: 600}, SwapXY: true}
	result := tracker.Apply(newAxys)

	assert.True(t, result.AllSucceeded())
	require.Len(t, dev.writes, 3)

	assert.Equal(t, write{name: xserver.PropSwapAxes, format: xserver.Format8, values: []int64{1}}, dev.writes[0])
	assert.Equal(t, write{name: xserver.PropInversion, format: xserver.Format8, values: []int64{0, 0}}, dev.writes[1])
	assert.Equal(t, write{name: xserver.PropCalibration, format: xserver.Format32, values: []int64{1000, 0, 0, 600}}, dev.writes[2])
	assert.Equal(t, 1, dev.synced)
}

func TestApplySkipsUnchangedSwap(t *testing.T) {
	dev := newFakeDevice()
	tracker := NewTracker(dev, XYinfo{SwapXY: true})

	result := tracker.Apply(XYinfo{X: AxisRange{0, 100}, Y: AxisRange{0, 100}, SwapXY: true})
	assert.True(t, result.AllSucceeded())

	for _, w := range dev.writes {
		assert.NotEqual(t, xserver.PropSwapAxes, w.name)
	}
}

func TestApplyAttemptsEveryStepOnFailure(t *testing.T) {
	// A failed swap write must not stop the calibration write, and the
	// aggregate result must still be a failure.
	dev := newFakeDevice()
	dev.failOn[xserver.PropSwapAxes] = fmt.Errorf("write refused")
	tracker := NewTracker(dev, XYinfo{})

	result := tracker.Apply(XYinfo{X: AxisRange{0, 1000}, Y: AxisRange{0, 600}, SwapXY: true})
	assert.False(t, result.AllSucceeded())

	failed := result.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, StepSwap, failed[0].Step)

	var wroteCalibration bool
	for _, w := range dev.writes {
		if w.name == xserver.PropCalibration {
			wroteCalibration = true
			assert.Equal(t, []int64{0, 1000, 0, 600}, w.values)
		}
	}
	assert.True(t, wroteCalibration)
	assert.Equal(t, 1, dev.synced)
}

func TestCommitUpdatesCurrentOnly(t *testing.T) {
	dev := newFakeDevice()
	dev.props[xserver.PropCalibration] = intProp(xserver.Format32, 0, 1000, 0, 600)
	tracker := NewTracker(dev, XYinfo{})
	tracker.Detect()

	newAxys := XYinfo{X: AxisRange{0, 500}, Y: AxisRange{0, 300}}
	tracker.Commit(newAxys)
	assert.Equal(t, newAxys, tracker.Current())
	assert.Equal(t, XYinfo{X: AxisRange{0, 1000}, Y: AxisRange{0, 600}}, tracker.Original())
}

func TestFoldInversion(t *testing.T) {
	axys := XYinfo{X: AxisRange{0, 100}, Y: AxisRange{0, 50}}
	assert.Equal(t, AxisRange{100, 0}, axys.FoldInversion(true, false).X)
	assert.Equal(t, AxisRange{50, 0}, axys.FoldInversion(false, true).Y)
	assert.Equal(t, axys, axys.FoldInversion(false, false))
	// Folding twice restores the original ordering.
	assert.Equal(t, axys, axys.FoldInversion(true, true).FoldInversion(true, true))
}

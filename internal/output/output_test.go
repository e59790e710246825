package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/xcal/internal/calibrator"
)

var testAxys = calibrator.XYinfo{
	X:      calibrator.AxisRange{Min: 0, Max: 1000},
	Y:      calibrator.AxisRange{Min: 0, Max: 600},
	SwapXY: true,
}

func TestParseType(t *testing.T) {
	for _, valid := range []string{"auto", "xorg.conf.d", "hal", "xinput"} {
		parsed, err := ParseType(valid)
		require.NoError(t, err)
		assert.Equal(t, Type(valid), parsed)
	}

	_, err := ParseType("xorg")
	assert.Error(t, err)
}

func TestRenderXinputCommands(t *testing.T) {
	text, err := Render(TypeXinput, "FooTouch", "", testAxys)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	require.Len(t, lines, 3)

	var commands []string
	for _, line := range lines {
		if strings.Contains(line, "xinput set-int-prop") {
			commands = append(commands, line)
		}
	}
	require.Len(t, commands, 2)
	assert.Contains(t, commands[0], `"FooTouch"`)
	assert.Contains(t, commands[0], "32 0 1000 0 600")
	assert.Contains(t, commands[1], `"FooTouch"`)
	assert.Contains(t, commands[1], "8 1")
}

func TestRenderXorgConfD(t *testing.T) {
	text, err := Render(TypeXorgConfD, "FooTouch", "FooTouch", testAxys)
	require.NoError(t, err)

	assert.Contains(t, text, `Section "InputClass"`)
	assert.Contains(t, text, `MatchProduct	"FooTouch"`)
	assert.Contains(t, text, `"Calibration"	"0 1000 0 600"`)
	assert.Contains(t, text, `"SwapAxes"	"1"`)
	assert.Contains(t, text, "EndSection")
	assert.NotContains(t, text, namePlaceholder)
}

func TestRenderXorgConfDPlaceholder(t *testing.T) {
	text, err := Render(TypeXorgConfD, "FooTouch", "", testAxys)
	require.NoError(t, err)

	assert.Contains(t, text, namePlaceholder)
	assert.Contains(t, text, "Change '"+namePlaceholder+"' to your device's name")
}

func TestRenderHAL(t *testing.T) {
	text, err := Render(TypeHAL, "FooTouch", "FooTouch", testAxys)
	require.NoError(t, err)

	assert.Contains(t, text, `<match key="info.product" contains="FooTouch">`)
	assert.Contains(t, text, `<merge key="input.x11_options.calibration" type="string">0 1000 0 600</merge>`)
	assert.Contains(t, text, `<merge key="input.x11_options.swapaxes" type="string">1</merge>`)
	assert.Contains(t, text, "</match>")
}

func TestResolveAuto(t *testing.T) {
	orig := xorgConfDirs
	defer func() { xorgConfDirs = orig }()

	t.Run("with drop-in directory", func(t *testing.T) {
		xorgConfDirs = []string{t.TempDir()}
		assert.Equal(t, TypeXorgConfD, Resolve(TypeAuto))
	})

	t.Run("without drop-in directory", func(t *testing.T) {
		xorgConfDirs = []string{filepath.Join(t.TempDir(), "missing")}
		assert.Equal(t, TypeXinput, Resolve(TypeAuto))
	})

	t.Run("concrete types pass through", func(t *testing.T) {
		assert.Equal(t, TypeHAL, Resolve(TypeHAL))
	})
}

func TestHardwareName(t *testing.T) {
	root := t.TempDir()
	deviceDir := filepath.Join(root, "event3", "device")
	require.NoError(t, os.MkdirAll(deviceDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(deviceDir, "name"), []byte("FooTouch\n"), 0o644))
	// Non-event entries are skipped.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "mouse0"), 0o755))

	name, err := hardwareNameIn(root, "FooTouch")
	require.NoError(t, err)
	assert.Equal(t, "FooTouch", name)

	_, err = hardwareNameIn(root, "BarTouch")
	assert.Error(t, err)
}

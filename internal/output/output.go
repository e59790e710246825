// Package output renders an applied calibration into one of the
// persistent formats understood by the X stack. Renderers are pure
// string formatting; writing the result anywhere is the caller's job.
package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/bnema/xcal/internal/calibrator"
	"github.com/bnema/xcal/internal/xserver"
)

// Type selects the persistent representation.
type Type string

const (
	TypeAuto      Type = "auto"
	TypeXorgConfD Type = "xorg.conf.d"
	TypeHAL       Type = "hal"
	TypeXinput    Type = "xinput"
)

// ParseType validates a user-supplied output type.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeAuto, TypeXorgConfD, TypeHAL, TypeXinput:
		return t, nil
	}
	return "", fmt.Errorf("unknown output type %q (want auto, xorg.conf.d, hal or xinput)", s)
}

// Printed in place of the hardware name when sysfs has no match.
const namePlaceholder = "!!Name_Of_TouchScreen!!"

// Drop-in directories whose presence means the platform takes
// xorg.conf.d snippets. Overridable for tests.
var xorgConfDirs = []string{"/etc/X11/xorg.conf.d", "/usr/share/X11/xorg.conf.d"}

// Resolve turns TypeAuto into a concrete type for this platform.
func Resolve(t Type) Type {
	if t != TypeAuto {
		return t
	}
	if hasXorgConfD() {
		return TypeXorgConfD
	}
	return TypeXinput
}

func hasXorgConfD() bool {
	for _, dir := range xorgConfDirs {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return true
		}
	}
	return false
}

// Render formats axys in the requested representation. deviceName is
// the X device name used by the xinput commands; hardwareName is the
// kernel device name used as the match string, empty when unknown.
func Render(t Type, deviceName, hardwareName string, axys calibrator.XYinfo) (string, error) {
	switch Resolve(t) {
	case TypeXorgConfD:
		return renderXorgConfD(hardwareName, axys), nil
	case TypeHAL:
		return renderHAL(hardwareName, axys), nil
	case TypeXinput:
		return renderXinput(deviceName, axys), nil
	default:
		return "", fmt.Errorf("unsupported output type %q", t)
	}
}

func matchName(hardwareName string) (string, bool) {
	if hardwareName == "" {
		return namePlaceholder, true
	}
	return hardwareName, false
}

func renderXorgConfD(hardwareName string, axys calibrator.XYinfo) string {
	name, placeholder := matchName(hardwareName)
	var b strings.Builder
	b.WriteString("  copy the snippet below into '/etc/X11/xorg.conf.d/99-calibration.conf'\n")
	b.WriteString("Section \"InputClass\"\n")
	b.WriteString("\tIdentifier\t\"calibration\"\n")
	fmt.Fprintf(&b, "\tMatchProduct\t\"%s\"\n", name)
	fmt.Fprintf(&b, "\tOption\t\"Calibration\"\t\"%d %d %d %d\"\n",
		axys.X.Min, axys.X.Max, axys.Y.Min, axys.Y.Max)
	fmt.Fprintf(&b, "\tOption\t\"SwapAxes\"\t\"%d\"\n", axys.SwapValue())
	b.WriteString("EndSection\n")
	if placeholder {
		fmt.Fprintf(&b, "\nChange '%s' to your device's name in the snippet above.\n", name)
	}
	return b.String()
}

func renderHAL(hardwareName string, axys calibrator.XYinfo) string {
	name, placeholder := matchName(hardwareName)
	var b strings.Builder
	b.WriteString("  copy the policy below into '/etc/hal/fdi/policy/touchscreen.fdi'\n")
	fmt.Fprintf(&b, "<match key=\"info.product\" contains=\"%s\">\n", name)
	fmt.Fprintf(&b, "  <merge key=\"input.x11_options.calibration\" type=\"string\">%d %d %d %d</merge>\n",
		axys.X.Min, axys.X.Max, axys.Y.Min, axys.Y.Max)
	fmt.Fprintf(&b, "  <merge key=\"input.x11_options.swapaxes\" type=\"string\">%d</merge>\n", axys.SwapValue())
	b.WriteString("</match>\n")
	if placeholder {
		fmt.Fprintf(&b, "\nChange '%s' to your device's name in the config above.\n", name)
	}
	return b.String()
}

func renderXinput(deviceName string, axys calibrator.XYinfo) string {
	var b strings.Builder
	b.WriteString("  Install the 'xinput' tool and copy the command(s) below in a script that starts with your X session\n")
	fmt.Fprintf(&b, "    xinput set-int-prop \"%s\" \"%s\" 32 %d %d %d %d\n",
		deviceName, xserver.PropCalibration, axys.X.Min, axys.X.Max, axys.Y.Min, axys.Y.Max)
	fmt.Fprintf(&b, "    xinput set-int-prop \"%s\" \"%s\" 8 %d\n",
		deviceName, xserver.PropSwapAxes, axys.SwapValue())
	return b.String()
}

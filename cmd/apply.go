package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/bnema/xcal/internal/calibrator"
	"github.com/bnema/xcal/internal/config"
	"github.com/bnema/xcal/internal/logger"
	"github.com/bnema/xcal/internal/output"
	"github.com/bnema/xcal/internal/ui"
	"github.com/bnema/xcal/internal/xserver"
	"github.com/spf13/cobra"
)

var (
	applySwap       bool
	applyOutputType string
)

var applyCmd = &cobra.Command{
	Use:   "apply <min-x> <max-x> <min-y> <max-y>",
	Short: "Apply a calibration and print its persistent form",
	Long: `Apply writes the given axis bounds (and optional axis swap) to the device,
then prints the configuration that makes the calibration permanent.
Pass min greater than max to invert an axis.`,
	Args: cobra.ExactArgs(4),
	RunE: runApply,
}

func init() {
	applyCmd.Flags().BoolVar(&applySwap, "swap", false, "swap the x and y axes")
	applyCmd.Flags().StringVarP(&applyOutputType, "output-type", "o", "", "persistent output format (auto, xorg.conf.d, hal, xinput)")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	newAxys, err := parseBounds(args, applySwap)
	if err != nil {
		return err
	}
	outType, err := output.ParseType(resolveOutputType(applyOutputType))
	if err != nil {
		return err
	}
	spec, err := deviceSpec()
	if err != nil {
		return err
	}

	session, err := xserver.Open(spec)
	if err != nil {
		return err
	}
	defer session.Close()

	logger.Infof("calibrating evdev driver for %q id=%d", session.Name(), session.DeviceID())

	tracker := calibrator.NewTracker(session, calibrator.XYinfo{})
	tracker.Detect()

	return applyAndRender(os.Stdout, tracker, outType, session.Name(), newAxys)
}

// applyAndRender writes the calibration to the device and then prints
// its persistent form. The persistent output is printed even when some
// writes failed, so the user still gets the config block; the failure
// only decides the final status.
func applyAndRender(w io.Writer, tracker *calibrator.Tracker, outType output.Type, deviceName string, newAxys calibrator.XYinfo) error {
	result := tracker.Apply(newAxys)
	for _, step := range result.Failed() {
		logger.Errorf("%s write failed: %v", step.Step, step.Err)
	}
	if result.AllSucceeded() {
		tracker.Commit(newAxys)
	}

	fmt.Fprintln(w, ui.InfoStyle.Render("--> Making the calibration permanent <--"))
	if err := renderOutput(w, outType, deviceName, newAxys); err != nil {
		return err
	}
	if !result.AllSucceeded() {
		return fmt.Errorf("calibration was only partially applied")
	}
	return nil
}

// parseBounds turns the four positional arguments into a calibration
// state.
func parseBounds(args []string, swap bool) (calibrator.XYinfo, error) {
	bounds := make([]int64, 4)
	for i, arg := range args {
		v, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return calibrator.XYinfo{}, fmt.Errorf("invalid axis bound %q", arg)
		}
		bounds[i] = v
	}
	return calibrator.XYinfo{
		X:      calibrator.AxisRange{Min: bounds[0], Max: bounds[1]},
		Y:      calibrator.AxisRange{Min: bounds[2], Max: bounds[3]},
		SwapXY: swap,
	}, nil
}

// resolveOutputType applies the flag > config > default precedence.
func resolveOutputType(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if t := config.Get().Output.Type; t != "" {
		return t
	}
	return string(output.TypeAuto)
}

// renderOutput prints the persistent form of axys for the device,
// falling back to the placeholder name when sysfs has no match.
func renderOutput(w io.Writer, outType output.Type, deviceName string, axys calibrator.XYinfo) error {
	hardwareName, err := output.HardwareName(deviceName)
	if err != nil {
		logger.Debugf("sysfs lookup: %v", err)
		hardwareName = ""
	}
	text, err := output.Render(outType, deviceName, hardwareName, axys)
	if err != nil {
		return err
	}
	fmt.Fprint(w, text)
	return nil
}

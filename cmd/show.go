package cmd

import (
	"fmt"

	"github.com/bnema/xcal/internal/calibrator"
	"github.com/bnema/xcal/internal/ui"
	"github.com/bnema/xcal/internal/xserver"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the device's current calibration",
	Long: `Show opens the device, reads its live calibration properties and prints
the axis bounds and swap state without changing anything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := deviceSpec()
		if err != nil {
			return err
		}
		session, err := xserver.Open(spec)
		if err != nil {
			return err
		}
		defer session.Close()

		tracker := calibrator.NewTracker(session, calibrator.XYinfo{})
		axys := tracker.Detect()

		fmt.Println(ui.HeaderStyle.Render(fmt.Sprintf("Device %q (id %d)", session.Name(), session.DeviceID())))
		fmt.Printf("  x: min=%d max=%d\n", axys.X.Min, axys.X.Max)
		fmt.Printf("  y: min=%d max=%d\n", axys.Y.Min, axys.Y.Max)
		fmt.Printf("  swap_xy: %d\n", axys.SwapValue())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}

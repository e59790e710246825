package cmd

import (
	"os"

	"github.com/bnema/xcal/internal/output"
	"github.com/spf13/cobra"
)

var (
	renderSwap       bool
	renderOutputType string
)

// render exists so a calibration computed elsewhere can be turned into
// config output without touching the device again.
var renderCmd = &cobra.Command{
	Use:   "render <min-x> <max-x> <min-y> <max-y>",
	Short: "Print the persistent form of a calibration without applying it",
	Long: `Render formats the given calibration in the selected output format without
opening the device or writing anything to it. The device name comes from
--device and is used verbatim in the output.`,
	Args: cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		newAxys, err := parseBounds(args, renderSwap)
		if err != nil {
			return err
		}
		outType, err := output.ParseType(resolveOutputType(renderOutputType))
		if err != nil {
			return err
		}
		deviceName, err := deviceSpec()
		if err != nil {
			return err
		}
		return renderOutput(os.Stdout, outType, deviceName, newAxys)
	},
}

func init() {
	renderCmd.Flags().BoolVar(&renderSwap, "swap", false, "swap the x and y axes")
	renderCmd.Flags().StringVarP(&renderOutputType, "output-type", "o", "", "persistent output format (auto, xorg.conf.d, hal, xinput)")
	rootCmd.AddCommand(renderCmd)
}

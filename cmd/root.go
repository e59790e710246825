package cmd

import (
	"fmt"

	"github.com/bnema/xcal/internal/config"
	"github.com/bnema/xcal/internal/logger"
	"github.com/spf13/cobra"
)

var (
	flagConfigPath string
	flagDevice     string
	flagVerbose    bool

	rootCmd = &cobra.Command{
		Use:   "xcal",
		Short: "Xcal - evdev touchscreen calibration for X11",
		Long: `Xcal reads and rewrites the axis calibration of an evdev touch device
through the X server's XInput device properties, and prints the matching
persistent configuration (xorg.conf.d snippet, HAL policy or xinput
commands) so the calibration survives a restart.`,
		SilenceUsage: true,
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file to use instead of the default search path")
	rootCmd.PersistentFlags().StringVarP(&flagDevice, "device", "d", "", "device name or numeric id to calibrate")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if flagConfigPath != "" {
		config.SetConfigPath(flagConfigPath)
	}
	if err := config.Init(); err != nil {
		logger.Warnf("config: %v", err)
	}
	if level := config.Get().Logging.LogLevel; level != "" {
		logger.SetLevel(level)
	}
	if flagVerbose {
		logger.SetVerbose()
	}
}

// deviceSpec resolves the device argument from flag or config.
func deviceSpec() (string, error) {
	if flagDevice != "" {
		return flagDevice, nil
	}
	if name := config.Get().Device.Name; name != "" {
		return name, nil
	}
	return "", fmt.Errorf("no device given: pass --device or set device.name in the config (try 'xcal list')")
}

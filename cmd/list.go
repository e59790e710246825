package cmd

import (
	"fmt"

	"github.com/bnema/xcal/internal/ui"
	"github.com/bnema/xcal/internal/xserver"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the X server's input devices",
	Long:  `List every input device known to the X server with its numeric id, for use with --device.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		devices, err := xserver.ListDevices()
		if err != nil {
			return fmt.Errorf("failed to list devices: %w", err)
		}

		rows := [][]string{}
		for _, dev := range devices {
			rows = append(rows, []string{fmt.Sprintf("%d", dev.ID), dev.Name, dev.UseString()})
		}

		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(ui.ColorSubtle)).
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == 0: // Header row
					return lipgloss.NewStyle().
						Foreground(ui.ColorPrimary).
						Bold(true).
						Padding(0, 1)
				case col == 0: // Id column
					return lipgloss.NewStyle().
						Foreground(ui.ColorInfo).
						Padding(0, 1)
				default:
					return lipgloss.NewStyle().
						Foreground(ui.ColorText).
						Padding(0, 1)
				}
			}).
			Headers("ID", "NAME", "USE").
			Rows(rows...)

		fmt.Println(t.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

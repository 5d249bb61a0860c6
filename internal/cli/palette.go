package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newPaletteCmd creates the palette command, which lists the buildable
// brick colors with their legend codes.
func newPaletteCmd() *cobra.Command {
	var palettePath string

	cmd := &cobra.Command{
		Use:   "palette",
		Short: "List the buildable brick colors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pal, err := loadPalette(palettePath)
			if err != nil {
				return err
			}

			fmt.Println(StyleTitle.Render("Brick palette") + StyleDim.Render(fmt.Sprintf(" (%d colors)", pal.Len())))
			for i, c := range pal.Colors() {
				line := fmt.Sprintf("%s %-4s %-14s %s", swatch(c.Hex()), c.Code(), c.Name, StyleDim.Render(c.Hex()))
				if i == 0 {
					line += StyleDim.Render("  background")
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&palettePath, "palette", "", "TOML palette file (default: built-in catalog)")
	return cmd
}

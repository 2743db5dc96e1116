package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"feecalc/providers/presets"
)

// presetsCmd lists the bundled starting points
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List bundled quote presets",
	Long: `Presets prints the bundled starting points for common setups. Use one
with 'feecalc quote --preset <id>'.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, p := range presets.All() {
			fmt.Printf("%-16s %s\n", p.ID, p.Label)
			fmt.Printf("%-16s %s\n", "", p.Description)
		}
	},
}

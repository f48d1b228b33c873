package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/loykin/apiscope/pkg/scenario"
)

var tierColors = map[scenario.Tier]*color.Color{
	scenario.TierNone:        color.New(color.FgGreen),
	scenario.TierRebuild:     color.New(color.FgYellow, color.Bold),
	scenario.TierReconfigure: color.New(color.FgCyan),
}

var KeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List configure keys and their effect on the HTTP client",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return PrintKeys(cmd.OutOrStdout())
	},
}

// PrintKeys writes the configure vocabulary as a table.
func PrintKeys(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "KEY\tTIER\tDESCRIPTION"); err != nil {
		return err
	}
	for _, k := range scenario.Keys() {
		tier := k.Tier.String()
		if c, ok := tierColors[k.Tier]; ok {
			tier = c.Sprint(tier)
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", k.Key, tier, k.Description); err != nil {
			return err
		}
	}
	return tw.Flush()
}

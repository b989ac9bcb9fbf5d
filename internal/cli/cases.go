package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmirzaei/mizan/internal/seed"
)

var casesCmd = &cobra.Command{
	Use:   "cases <cases.yaml>",
	Short: "List the sample cases in a seed file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cases, err := seed.Load(args[0])
		if err != nil {
			return err
		}
		for _, c := range cases {
			fmt.Printf("%-12s %s  %s علیه %s\n", c.CaseID, c.Date, c.Plaintiff, c.Defendant)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(casesCmd)
}

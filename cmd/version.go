package cmd

import (
	"fmt"

	"github.com/aptxgo/aptx/pkg/aptx"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%d.%d.%d\n", aptx.Major, aptx.Minor, aptx.Patch)
	},
	DisableFlagsInUseLine: true,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

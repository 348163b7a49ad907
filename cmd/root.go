package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lumenscan/lumenscan/output"
)

var (
	// Version is overwritten at build time via -ldflags.
	Version = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   "lumenscan",
	Short: "Pattern-driven source scanning",
	Long: `lumenscan scans source trees for declaratively authored patterns —
substrings, regexes, and structured JSONPath/XPath matches — scoped to code
or comments and gated by proximity conditions.`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		noBanner, _ := cmd.Flags().GetBool("no-banner")
		logger := output.NewLogger(output.VerbosityDefault)
		if output.ShouldShowBanner(logger.IsTTY(), noBanner) {
			output.PrintBanner(logger.GetWriter(), Version, output.DefaultBannerOptions())
		} else if !noBanner {
			fmt.Fprintln(os.Stderr, output.GetCompactBanner(Version))
		}
	},
}

// Execute runs the root command; main's only job is to call this.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("no-banner", false, "Disable startup banner")
	rootCmd.AddCommand(scanCmd)
}

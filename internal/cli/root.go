package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "desinfo",
	Short: "Desinfo - automated claim verification for Swedish social media",
	Long: `Desinfo fetches posts from Reddit and Twitter/X (or takes a claim
directly), gathers evidence from reliable news and fact-checking sources,
and asks a language model to rate the truthfulness of the claims it finds.

Results are stored in PostgreSQL with full provenance: the source post,
the claim text, the evaluation verdict, and every evidence snippet the
model was shown.

Desinfo flags likely disinformation for human review. It does not decide
what is true.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("desinfo v0.2.0")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.desinfo/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(versionCmd)
}

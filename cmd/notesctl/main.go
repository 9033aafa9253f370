package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	profileFile string
	instruction string
	outputFile  string
	verbose     bool

	rootCmd = &cobra.Command{
		Use:   "notesctl",
		Short: "Turn raw sources into styled study notes from the terminal",
	}

	runCmd = &cobra.Command{
		Use:   "run [source...]",
		Short: "Run the notes workflow on URLs, PDF paths, text files or literal text",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runPipeline,
	}

	learnCmd = &cobra.Command{
		Use:   "learn [note file]",
		Short: "Learn a style profile from an example note and print it as YAML",
		Args:  cobra.ExactArgs(1),
		RunE:  learnProfile,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stdout")

	runCmd.Flags().StringVarP(&profileFile, "profile", "p", "", "style profile file (YAML or JSON)")
	runCmd.Flags().StringVarP(&instruction, "instruction", "i", "", "extra instruction for the cleaner")
	runCmd.Flags().StringVarP(&outputFile, "out", "o", "", "write the final state as JSON to this file")

	learnCmd.Flags().StringVarP(&profileFile, "merge", "m", "", "merge the learned profile over this profile file")
	learnCmd.Flags().StringVarP(&outputFile, "out", "o", "", "write the profile to this file instead of stdout")

	rootCmd.AddCommand(runCmd, learnCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

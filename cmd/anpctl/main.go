package main

import (
	"fmt"
	"os"

	"github.com/danmuck/anp/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "anpctl",
	Short: "Encode, decode and serve ANP messages",
	Long: `anpctl works with the ANP binary protocol: it describes message types,
encodes and decodes messages, and runs an echo daemon on the non-blocking
transport.`,
	Version:       "0.6.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(describeCmd, encodeCmd, decodeCmd, serveCmd, sendCmd, configCmd)
}

func main() {
	logging.ConfigureRuntime()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "anpctl: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/btcsuite/btclog"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var (
	debugLevel string

	logBackend = btclog.NewBackend(os.Stdout)
	log        = logBackend.Logger("BPC")
)

var rootCmd = &cobra.Command{
	Use:   "bpcommit",
	Short: "bpcommit embeds and verifies deterministic Bitcoin commitments",
	Long: `bpcommit is a command line tool around the bp-core library: it
embeds LNPBP-1/2 key-set commitments into lock scripts and verifies them,
derives Taproot output keys and scriptPubkeys from an internal key and an
optional script-tree root, and constructs, conceals and parses blinded
single-use-seals.`,
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
	DisableAutoGenTag: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&debugLevel, "debuglevel", "info", "logging level for all "+
			"subsystems; one of trace, debug, info, warn, "+
			"error, critical, off",
	)

	rootCmd.AddCommand(
		newCommitCommand(),
		newVerifyCommand(),
		newDeriveOutputKeyCommand(),
		newSealNewCommand(),
		newSealConcealCommand(),
	)
}

func setupLogging() {
	level, ok := parseLevel(debugLevel)
	if !ok {
		level = btclog.LevelInfo
	}
	log.SetLevel(level)
}

func parseLevel(s string) (btclog.Level, bool) {
	switch s {
	case "trace":
		return btclog.LevelTrace, true
	case "debug":
		return btclog.LevelDebug, true
	case "info":
		return btclog.LevelInfo, true
	case "warn":
		return btclog.LevelWarn, true
	case "error":
		return btclog.LevelError, true
	case "critical":
		return btclog.LevelCritical, true
	case "off":
		return btclog.LevelOff, true
	default:
		return 0, false
	}
}

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"atlaswifi/internal/app"
)

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(out io.Writer) *cobra.Command {
	config := app.DefaultConfig()
	var noParamCheck, noErrorCodes bool

	rootCmd := &cobra.Command{
		Use:   "atlaswifi",
		Short: "Atlas WiFi uplink payload builder",
		Long: `Builds 12-byte Atlas WiFi geolocation payloads from a Wi-Fi scan.

Access points are filtered (reserved and multicast addresses are always
dropped, optional filters reject locally administered addresses, empty SSIDs
and phone hotspots), up to two are selected, and their MAC addresses are
printed as "HEX COUNT", one line per attempt.

Example usage:
  atlaswifi --scan scan.yaml --filters all --sorting rssi --attempts 2`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.ShowVersion {
				app.ShowVersion(out)
				return nil
			}

			if config.ConfigFile != "" {
				fc, err := app.LoadFile(config.ConfigFile)
				if err != nil {
					return err
				}
				fc.Apply(&config, func(flag string) bool {
					return cmd.Flags().Changed(flag)
				})
			}
			if cmd.Flags().Changed("no-param-check") {
				config.CheckParameters = !noParamCheck
			}
			if cmd.Flags().Changed("no-error-codes") {
				config.ReportErrors = !noErrorCodes
			}

			application := app.NewApplication(config, out)
			return application.Run()
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&config.ScanFile, "scan", "s", "", "Scan result file (YAML)")
	flags.StringVarP(&config.ConfigFile, "config", "c", "", "Config file (YAML); flags override its values")
	flags.StringSliceVarP(&config.Filters, "filters", "f", nil, "Optional filters: locally-administered, ssid-empty, ssid-blacklist, all or none")
	flags.StringVar(&config.Sorting, "sorting", app.DefaultSorting, "Selection order: none or rssi")
	flags.IntVarP(&config.Attempts, "attempts", "n", app.DefaultAttempts, "Number of payloads to build from the same scan")
	flags.StringVarP(&config.JournalDir, "journal-dir", "j", "", "Directory for the daily uplink journal (disabled when empty)")
	flags.BoolVarP(&config.JournalUTC, "utc", "u", true, "Use UTC for journal rotation")
	flags.IntVar(&config.JournalMaxDays, "journal-max-days", app.DefaultJournalMaxDays, "Remove journal files older than this many days (0 keeps all)")
	flags.BoolVar(&noParamCheck, "no-param-check", false, "Skip nil, list size and MAC separator checks")
	flags.BoolVar(&noErrorCodes, "no-error-codes", false, "Log pipeline errors instead of failing")
	flags.BoolVarP(&config.Verbose, "verbose", "v", false, "Verbose logging")
	flags.BoolVar(&config.ShowVersion, "version", false, "Show version information")

	return rootCmd
}

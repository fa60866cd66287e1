package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	Config   string
	Output   string
	Currency string
	AsOf     string
	Academy  string
	Database string
}

var flags globalFlags

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "acad",
		Short: "Track subscriptions, payments and finances of a sports academy",
		Long: "Computes what every player owes for their monthly or yearly subscription, " +
			"warns about unpaid months and builds yearly financial reports from data files " +
			"or a local SQLite database.",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.Config, "config", "", "Path to config file (default ~/.acad/config.yaml)")
	pf.StringVar(&flags.Output, "output", "table", "Output format: table or json")
	pf.StringVar(&flags.Currency, "currency", "", "ISO 4217 currency code (default: academy, config, then system locale)")
	pf.StringVar(&flags.AsOf, "as-of", "", "Compute balances as of this date, YYYY-MM-DD (default today)")
	pf.StringVar(&flags.Academy, "academy", "", "Academy ID or name in the database (default: config, or the only one stored)")
	pf.StringVar(&flags.Database, "database", "", "SQLite database file (default: config, or ~/.acad/academy.db)")

	root.AddCommand(
		playersCmd(),
		warningsCmd(),
		playerCmd(),
		reportCmd(),
		exportCmd(),
		initConfigCmd(),
		importCmd(),
		enrollCmd(),
		payCmd(),
		discountCmd(),
		reverseCmd(),
		expenseCmd(),
		coachCmd(),
		salaryCmd(),
		revenueCmd(),
		renewCmd(),
		attendCmd(),
		attendanceCmd(),
		activateCmd(),
		deactivateCmd(),
		removeCmd(),
	)
	return root
}

// run builds the app from the global flags and runs fn, exiting on error.
func run(fn func(a *app) error) {
	a, err := newApp(flags)
	if err != nil {
		exitOnError(err)
	}
	defer a.log.Sync() //nolint:errcheck
	if err := fn(a); err != nil {
		a.log.Debug("command failed", zap.Error(err))
		exitOnError(err)
	}
}

func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

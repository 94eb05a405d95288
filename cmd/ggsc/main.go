package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/ts4z/ggsc/config"
	"github.com/ts4z/ggsc/dbutil"
	"github.com/ts4z/ggsc/state"
)

var (
	tournamentName string
	chips          string
	modeName       string
	pko            bool
	inputPath      string
	outDir         string
	dryRun         bool
	asYAML         bool
	clock          clockwork.Clock = clockwork.NewRealClock()
)

// openStorage returns the configured structure storage.  dir overrides
// output_dir for file storage.
func openStorage(ctx context.Context, dir string) (state.StructureStorage, error) {
	switch config.Storage() {
	case "file":
		if dir == "" {
			dir = config.OutputDir()
		}
		return state.NewFileStorage(dir), nil
	case "db":
		db, err := dbutil.Connect(ctx)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		return state.NewDBStorage(ctx, db, clock)
	default:
		return nil, fmt.Errorf("unknown storage %q (want file or db)", config.Storage())
	}
}

func addModeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&modeName, "mode", "", "Parser: standard, pko, csv or xlsx (default from config or file extension)")
	cmd.Flags().BoolVar(&pko, "pko", false, "Shorthand for --mode=pko")
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Read payouts from this file instead of stdin")
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ggsc",
		Short:         "Convert pasted GG payout listings into prize structures",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	convertCmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert payouts and save the structure",
		Args:  cobra.NoArgs,
		RunE:  runConvert,
	}
	convertCmd.Flags().StringVarP(&tournamentName, "name", "n", "", "Tournament name (also the file name)")
	convertCmd.Flags().StringVarP(&chips, "chips", "c", "", "Total chips")
	convertCmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "Directory for file storage (default output_dir)")
	convertCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the structure instead of saving it")
	addModeFlags(convertCmd)

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show what the parser reads from the payouts, without saving",
		Args:  cobra.NoArgs,
		RunE:  runInspect,
	}
	inspectCmd.Flags().BoolVar(&asYAML, "yaml", false, "Print YAML instead of a table")
	addModeFlags(inspectCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved structures",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
	listCmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "Directory for file storage (default output_dir)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web app",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	hashCmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Hash a password for the password_hash setting",
		Args:  cobra.NoArgs,
		RunE:  runHashPassword,
	}

	rootCmd.AddCommand(convertCmd, inspectCmd, listCmd, serveCmd, hashCmd)
	return rootCmd
}

func main() {
	config.Init()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

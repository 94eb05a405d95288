package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/ts4z/ggsc/config"
	"github.com/ts4z/ggsc/convert"
	"github.com/ts4z/ggsc/payout"
	"github.com/ts4z/ggsc/textutil"
)

// selectedMode works out the mode from the flags.  It returns "" when
// nothing says, leaving the choice to the config default.
func selectedMode() (payout.Mode, error) {
	if pko {
		return payout.ModePKO, nil
	}
	if modeName != "" {
		return payout.ParseMode(modeName)
	}
	if inputPath != "" {
		return payout.ModeForFilename(inputPath), nil
	}
	return "", nil
}

func stdinIsTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.InOrStdin().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func readInput(cmd *cobra.Command) ([]byte, error) {
	if inputPath != "" && inputPath != "-" {
		return os.ReadFile(inputPath)
	}
	if stdinIsTerminal(cmd) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Paste structure here, then press Ctrl-D:")
	}
	return io.ReadAll(cmd.InOrStdin())
}

func reportParse(cmd *cobra.Command, r *payout.Result) {
	if r.Skipped > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped %d unreadable entries\n", r.Skipped)
	}
	if r.Partial() {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: stopped reading early, %d players kept: %v\n", r.Players.Len(), r.Err)
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	mode, err := selectedMode()
	if err != nil {
		return err
	}
	data, err := readInput(cmd)
	if err != nil {
		return fmt.Errorf("reading payouts: %w", err)
	}

	storage, err := openStorage(ctx, outDir)
	if err != nil {
		return err
	}
	defer storage.Close()

	c := convert.NewConverter(storage, clock, config.DefaultMode())
	req := &convert.Request{
		TournamentName: tournamentName,
		Chips:          chips,
		Mode:           mode,
		Data:           data,
	}

	if dryRun {
		out, err := c.Prepare(req)
		if err != nil {
			return err
		}
		reportParse(cmd, out.Parse)
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "    ")
		return enc.Encode(out.Export)
	}

	out, err := c.Convert(ctx, req)
	if err != nil {
		return err
	}
	reportParse(cmd, out.Parse)
	fmt.Fprintf(cmd.OutOrStdout(), "Data saved to JSON file successfully at %s\n", out.Location)
	return nil
}

type inspection struct {
	Mode    payout.Mode    `yaml:"mode"`
	Skipped int            `yaml:"skipped"`
	Partial string         `yaml:"partial,omitempty"`
	Players []payout.Entry `yaml:"players"`
}

func placeName(rank string) string {
	n, err := strconv.Atoi(rank)
	if err != nil {
		return rank
	}
	return textutil.FormatPlace(n)
}

func runInspect(cmd *cobra.Command, args []string) error {
	mode, err := selectedMode()
	if err != nil {
		return err
	}
	if mode == "" {
		mode = config.DefaultMode()
	}
	data, err := readInput(cmd)
	if err != nil {
		return fmt.Errorf("reading payouts: %w", err)
	}
	r, err := payout.Parse(mode, data)
	if err != nil {
		return err
	}

	if asYAML {
		in := inspection{Mode: r.Mode, Skipped: r.Skipped, Players: r.Players.Entries()}
		if r.Partial() {
			in.Partial = r.Err.Error()
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(in); err != nil {
			return err
		}
		return enc.Close()
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
	fmt.Fprintf(w, "place\tname\tamount\n")
	for _, e := range r.Players.Entries() {
		fmt.Fprintf(w, "%s\t%s\t%.2f\n", placeName(e.Rank), e.Name, e.Amount)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	reportParse(cmd, r)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	storage, err := openStorage(ctx, outDir)
	if err != nil {
		return err
	}
	defer storage.Close()

	slugs, err := storage.FetchStructureSlugs(ctx)
	if err != nil {
		return fmt.Errorf("listing structures: %w", err)
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
	fmt.Fprintf(w, "name\tlocation\n")
	for _, s := range slugs {
		fmt.Fprintf(w, "%s\t%s\n", s.Name, s.Location)
	}
	return w.Flush()
}

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/scenecheck/internal/config"
	"github.com/san-kum/scenecheck/internal/scenario"
	"github.com/san-kum/scenecheck/internal/storage"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool

	cfg *config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "scenecheck",
		Short:         "validate and compare recorded driving scenarios",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging()
			return loadConfig(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	validateCmd := &cobra.Command{
		Use:   "validate [record...]",
		Short: "sanity check records",
		Args:  cobra.MinimumNArgs(1),
		RunE:  validateRecords,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored records",
		RunE:  listRecords,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list configuration presets",
		RunE:  listPresets,
	}

	trajectoryCmd := &cobra.Command{
		Use:   "trajectory [record] [track]",
		Short: "print or export one track",
		Args:  cobra.ExactArgs(2),
		RunE:  showTrajectory,
	}
	trajectoryCmd.Flags().StringVar(&csvOut, "csv", "", "write the track to a csv file")

	rootCmd.AddCommand(
		validateCmd,
		newCompareCmd(),
		newCompareSetsCmd(),
		newGenerateCmd(),
		trajectoryCmd,
		newPlotCmd(),
		listCmd,
		newHistoryCmd(),
		presetsCmd,
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// loadConfig applies the preset first, then the config file, then the data
// directory flag.
func loadConfig(cmd *cobra.Command) error {
	cfg = config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %s)", preset, strings.Join(config.ListPresets(), ", "))
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("data") || cfg.Storage.Dir == "" {
		cfg.Storage.Dir = dataDir
	}
	slog.Debug("config loaded", "preset", preset, "file", configFile, "mode", cfg.Mode, "data", cfg.Storage.Dir)
	return nil
}

func store() *storage.Store {
	return storage.New(cfg.Storage.Dir)
}

func ledgerPath() string {
	if filepath.IsAbs(cfg.Storage.Ledger) {
		return cfg.Storage.Ledger
	}
	return filepath.Join(cfg.Storage.Dir, cfg.Storage.Ledger)
}

func validateRecords(cmd *cobra.Command, args []string) error {
	st := store()
	failed := 0
	for _, ref := range args {
		rec, err := st.Resolve(ref)
		if err == nil {
			err = scenario.SanityCheck(rec)
		}
		if err != nil {
			failed++
			fmt.Printf("%s: %v\n", ref, err)
			continue
		}
		fmt.Printf("%s: ok (%d steps, %d tracks, ego %s)\n", ref, rec.Length, len(rec.Tracks), rec.Metadata.SDCID)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d records invalid", failed, len(args))
	}
	return nil
}

func listRecords(cmd *cobra.Command, args []string) error {
	runs, err := store().List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no records found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tSOURCE\tTIME\tSTEPS\tTRACKS\tEGO")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			r.ID,
			r.Scenario,
			r.Source,
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.Length,
			r.Tracks,
			r.SDCID,
		)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMODE\tPOS\tHEADING\tVEL\tEXACT\tEQUAL LEN\tPOLICY")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		t := p.Tolerance
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%t\t%t\t%s\n",
			name, p.Mode, t.PositionDecimals, t.HeadingDecimals, t.VelocityDecimals,
			t.Exact, t.RequireEqualLength, p.Generate.Policy)
	}
	return w.Flush()
}

var csvOut string

func showTrajectory(cmd *cobra.Command, args []string) error {
	rec, err := store().Resolve(args[0])
	if err != nil {
		return err
	}
	if err := scenario.SanityCheck(rec); err != nil {
		return err
	}
	tr, ok := rec.Tracks[args[1]]
	if !ok {
		return fmt.Errorf("track %q not in record (tracks: %s)", args[1], strings.Join(rec.TrackIDs(), ", "))
	}

	if csvOut != "" {
		if err := storage.ExportTrackCSV(csvOut, tr); err != nil {
			return err
		}
		fmt.Printf("wrote %d samples to %s\n", tr.State.Len(), csvOut)
		return nil
	}

	s := tr.State
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "track %s (%s), %d samples\n", args[1], tr.Type, s.Len())
	fmt.Fprintln(w, "T\tX\tY\tHEADING\tVX\tVY\tVALID")
	for i := 0; i < s.Len(); i++ {
		fmt.Fprintf(w, "%d\t%.4f\t%.4f\t%.4f\t%.3f\t%.3f\t%t\n",
			i, s.Position[i].X, s.Position[i].Y, s.Heading[i], s.Velocity[i].X, s.Velocity[i].Y, s.Valid[i])
	}
	return w.Flush()
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/scenecheck/internal/compare"
	"github.com/san-kum/scenecheck/internal/export"
	"github.com/san-kum/scenecheck/internal/metrics"
	"github.com/san-kum/scenecheck/internal/scenario"
	"github.com/san-kum/scenecheck/internal/storage"
	"github.com/san-kum/scenecheck/internal/viz"
)

var (
	mode             string
	positionDecimals int
	headingDecimals  int
	velocityDecimals int
	strict           bool
	browse           bool
	limit            int
	noLedger         bool
	historyN         int
	svgOut           string
)

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [a] [b]",
		Short: "compare two records under the configured tolerance",
		Long:  "Records are stored ids or json file paths. Exits non-zero on any mismatch.",
		Args:  cobra.ExactArgs(2),
		RunE:  compareRecords,
	}
	addToleranceFlags(cmd)
	cmd.Flags().BoolVar(&browse, "browse", false, "open the interactive mismatch browser")
	cmd.Flags().IntVar(&limit, "limit", 20, "max mismatches to print (0 for all)")
	cmd.Flags().BoolVar(&noLedger, "no-ledger", false, "do not record the result in the ledger")
	return cmd
}

func newCompareSetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare-sets [dir-a] [dir-b]",
		Short: "compare two directories of records keyed by file name",
		Args:  cobra.ExactArgs(2),
		RunE:  compareSets,
	}
	addToleranceFlags(cmd)
	return cmd
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "show recent comparison results",
		RunE:  showHistory,
	}
	cmd.Flags().IntVarP(&historyN, "n", "n", 20, "number of entries")
	return cmd
}

func newPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot [a] [b] [track]",
		Short: "plot drift of one track between two records",
		Args:  cobra.ExactArgs(3),
		RunE:  plotDrift,
	}
	cmd.Flags().StringVar(&svgOut, "svg", "", "also write a trajectory overlay svg")
	return cmd
}

func addToleranceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&mode, "mode", string(compare.FullScene), "comparison mode (ego_only, full_scene)")
	cmd.Flags().IntVar(&positionDecimals, "position-decimals", compare.DefaultPositionDecimals, "decimal places for positions")
	cmd.Flags().IntVar(&headingDecimals, "heading-decimals", compare.DefaultHeadingDecimals, "decimal places for headings")
	cmd.Flags().IntVar(&velocityDecimals, "velocity-decimals", compare.DefaultVelocityDecimals, "decimal places for velocities")
	cmd.Flags().BoolVar(&strict, "strict", false, "exact comparison, equal lengths, controls included")
}

// comparison resolves mode and tolerance from config, then applies any flags
// the user set explicitly.
func comparison(cmd *cobra.Command) (compare.Mode, compare.Tolerance, error) {
	if cmd.Flags().Changed("mode") {
		cfg.Mode = mode
	}
	t := &cfg.Tolerance
	if cmd.Flags().Changed("position-decimals") {
		t.PositionDecimals = positionDecimals
	}
	if cmd.Flags().Changed("heading-decimals") {
		t.HeadingDecimals = headingDecimals
	}
	if cmd.Flags().Changed("velocity-decimals") {
		t.VelocityDecimals = velocityDecimals
	}

	m, err := cfg.CompareMode()
	if err != nil {
		return "", compare.Tolerance{}, err
	}
	if strict {
		return m, compare.StrictTolerance(), nil
	}
	return m, cfg.CompareTolerance(), nil
}

func compareRecords(cmd *cobra.Command, args []string) error {
	m, tol, err := comparison(cmd)
	if err != nil {
		return err
	}

	st := store()
	a, err := st.Resolve(args[0])
	if err != nil {
		return err
	}
	b, err := st.Resolve(args[1])
	if err != nil {
		return err
	}

	rep, err := compare.Compare(a, b, m, tol)
	if err != nil {
		return err
	}
	slog.Debug("compared", "a", args[0], "b", args[1], "mode", m, "mismatches", len(rep.Mismatches))

	if !noLedger {
		if err := recordResult(cmd.Context(), args[0], args[1], rep); err != nil {
			slog.Warn("ledger write failed", "err", err)
		}
	}

	if browse {
		if _, err := tea.NewProgram(viz.NewBrowser(a, b, rep), tea.WithAltScreen()).Run(); err != nil {
			return err
		}
	} else {
		fmt.Println(viz.RenderReport(rep, limit))
	}
	return rep.Err()
}

func recordResult(ctx context.Context, refA, refB string, rep *compare.Report) error {
	if err := store().Init(); err != nil {
		return err
	}
	l, err := storage.OpenLedger(ledgerPath())
	if err != nil {
		return err
	}
	defer l.Close()

	e := storage.EntryFromReport(rep)
	e.RecordA, e.RecordB = refA, refB
	id, err := l.Record(ctx, e)
	if err != nil {
		return err
	}
	slog.Debug("ledger entry", "id", id)
	return nil
}

// loadDir reads every json record in dir keyed by base name without extension.
func loadDir(dir string) (map[string]*scenario.Record, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	recs := make(map[string]*scenario.Record, len(paths))
	for _, p := range paths {
		rec, err := storage.ReadFile(p)
		if err != nil {
			return nil, err
		}
		recs[strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))] = rec
	}
	return recs, nil
}

func compareSets(cmd *cobra.Command, args []string) error {
	m, tol, err := comparison(cmd)
	if err != nil {
		return err
	}

	a, err := loadDir(args[0])
	if err != nil {
		return err
	}
	b, err := loadDir(args[1])
	if err != nil {
		return err
	}

	batch, err := compare.CompareSets(a, b, m, tol)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EPISODE\tSTATUS\tMISMATCHES")
	for _, key := range batch.Keys {
		switch {
		case batch.Errors[key] != nil:
			fmt.Fprintf(w, "%s\terror\t%v\n", key, batch.Errors[key])
		case batch.Reports[key].OK():
			fmt.Fprintf(w, "%s\tok\t0\n", key)
		default:
			fmt.Fprintf(w, "%s\tfail\t%d\n", key, len(batch.Reports[key].Mismatches))
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if failed := batch.Failed(); len(failed) > 0 {
		return fmt.Errorf("%d of %d episodes differ", len(failed), len(batch.Keys))
	}
	return nil
}

func showHistory(cmd *cobra.Command, args []string) error {
	l, err := storage.OpenLedger(ledgerPath())
	if err != nil {
		return err
	}
	defer l.Close()

	entries, err := l.Recent(cmd.Context(), historyN)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no comparisons recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tA\tB\tMODE\tSTEPS\tRESULT\tKINDS")
	for _, e := range entries {
		result := "ok"
		if !e.OK {
			result = fmt.Sprintf("%d mismatches", e.Mismatches)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"), e.RecordA, e.RecordB, e.Mode, e.Steps, result, kindSummary(e.Kinds))
	}
	return w.Flush()
}

func kindSummary(kinds map[compare.Kind]int) string {
	parts := make([]string, 0, len(kinds))
	for k, n := range kinds {
		parts = append(parts, fmt.Sprintf("%s=%d", k, n))
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}

func plotDrift(cmd *cobra.Command, args []string) error {
	st := store()
	a, err := st.Resolve(args[0])
	if err != nil {
		return err
	}
	b, err := st.Resolve(args[1])
	if err != nil {
		return err
	}

	ta, tb := a.Tracks[args[2]], b.Tracks[args[2]]
	if ta == nil || tb == nil {
		return fmt.Errorf("track %q must exist in both records", args[2])
	}

	dist := metrics.Distances(ta, tb)
	if len(dist) < 2 {
		return fmt.Errorf("track %q has too few common samples to plot", args[2])
	}

	fmt.Println(asciigraph.Plot(dist,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("%s position drift (rms %.4f)", args[2], metrics.RMS(dist)))))
	fmt.Println()

	n := len(dist)
	ya, yb := make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		ya[i] = ta.State.Position[i].Y
		yb[i] = tb.State.Position[i].Y
	}
	fmt.Println(asciigraph.PlotMany([][]float64{ya, yb},
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red),
		asciigraph.Caption(fmt.Sprintf("%s y: a (blue) vs b (red)", args[2]))))
	fmt.Println()

	fmt.Println(viz.RenderMetrics(metrics.Track(ta, tb, metrics.Default()...)))

	if svgOut != "" {
		return writeOverlay(svgOut, ta, tb, dist)
	}
	return nil
}

func writeOverlay(path string, ta, tb *scenario.Track, dist []float64) error {
	n := len(dist)
	pa, pb := make([]r2.Vec, n), make([]r2.Vec, n)
	worst := 0
	for i := 0; i < n; i++ {
		pa[i] = r2.Vec{X: ta.State.Position[i].X, Y: ta.State.Position[i].Y}
		pb[i] = r2.Vec{X: tb.State.Position[i].X, Y: tb.State.Position[i].Y}
		if dist[i] > dist[worst] {
			worst = i
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	err = export.TrajectorySVG(f, 800, 400, []export.Series{
		{Name: "a", Points: pa, Stroke: "#00ccff"},
		{Name: "b", Points: pb, Stroke: "#ffaa00"},
	}, export.Marker{At: pb[worst], Label: fmt.Sprintf("t=%d %.3f", worst, dist[worst])})
	if err != nil {
		return err
	}
	fmt.Println("wrote", path)
	return nil
}

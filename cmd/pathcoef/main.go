package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/pathcoef/internal/config"
	"github.com/san-kum/pathcoef/internal/corr"
	"github.com/san-kum/pathcoef/internal/dataset"
	"github.com/san-kum/pathcoef/internal/ksweep"
	"github.com/san-kum/pathcoef/internal/runner"
	"github.com/san-kum/pathcoef/internal/storage"
	"github.com/san-kum/pathcoef/internal/viz"
)

var (
	dataDir     string
	response    string
	predictors  string
	exclude     bool
	groupBy     string
	correction  float64
	gridSize    int
	runSelect   bool
	maxVIF      float64
	missing     string
	configFile  string
	saveRun     bool
	verbose     bool
	interactive bool
	plotGroup   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pathcoef",
		Short: "path-coefficient analysis with multicollinearity diagnostics",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".pathcoef", "run storage directory")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [data.csv]",
		Short: "run the full path analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}
	addAnalysisFlags(analyzeCmd)
	analyzeCmd.Flags().StringVar(&groupBy, "by", "", "grouping column (one analysis per group)")
	analyzeCmd.Flags().BoolVar(&runSelect, "select", false, "run VIF pruning and the stepwise model ladder")
	analyzeCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	analyzeCmd.Flags().BoolVar(&saveRun, "save", false, "save results under the storage directory")

	sweepCmd := &cobra.Command{
		Use:   "sweep [data.csv]",
		Short: "plot direct effects across the k grid",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	addAnalysisFlags(sweepCmd)
	sweepCmd.Flags().BoolVar(&interactive, "interactive", false, "open the interactive explorer")

	selectCmd := &cobra.Command{
		Use:   "select [data.csv]",
		Short: "VIF pruning followed by the stepwise model ladder",
		Args:  cobra.ExactArgs(1),
		RunE:  runSelectCmd,
	}
	addAnalysisFlags(selectCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "replot a saved k sweep",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotGroup, "group", "", "plot only this group")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print saved run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	rootCmd.AddCommand(analyzeCmd, sweepCmd, selectCmd, listCmd, plotCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&response, "response", "", "response (dependent) column")
	cmd.Flags().StringVar(&predictors, "predictors", "", "comma-separated predictor columns (default: all numeric except response)")
	cmd.Flags().BoolVar(&exclude, "exclude", false, "treat --predictors as columns to drop from the default set")
	cmd.Flags().Float64Var(&correction, "k", -1, "fixed diagonal correction in [0,1); negative runs the k sweep instead")
	cmd.Flags().IntVar(&gridSize, "grid", config.DefaultKGridSize, "number of k values swept when no fixed k is given")
	cmd.Flags().Float64Var(&maxVIF, "max-vif", config.DefaultMaxVIF, "VIF pruning threshold")
	cmd.Flags().StringVar(&missing, "missing", config.DefaultMissing, "missing-data policy: pairwise or listwise")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "print selection progress")
}

func buildOptions(cmd *cobra.Command) (runner.Options, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return runner.Options{}, err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("response") || cfg.Response == "" {
		cfg.Response = response
	}
	if cmd.Flags().Changed("predictors") {
		cfg.Predictors = splitList(predictors)
	}
	if cmd.Flags().Changed("exclude") {
		cfg.Exclude = exclude
	}
	if cmd.Flags().Changed("by") {
		cfg.GroupBy = groupBy
	}
	if cmd.Flags().Changed("k") && correction >= 0 {
		k := correction
		cfg.Correction = &k
	}
	if cmd.Flags().Changed("grid") {
		cfg.KGridSize = gridSize
	}
	if cmd.Flags().Changed("select") {
		cfg.RunSelection = runSelect
	}
	if cmd.Flags().Changed("max-vif") {
		cfg.MaxVIF = maxVIF
	}
	if cmd.Flags().Changed("missing") {
		cfg.Missing = missing
	}

	opts, err := cfg.Options()
	if err != nil {
		return runner.Options{}, err
	}
	if verbose {
		opts.Observer = progressPrinter{}
	}
	return opts, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	tbl, err := dataset.LoadCSV(args[0])
	if err != nil {
		return err
	}
	opts, err := buildOptions(cmd)
	if err != nil {
		return err
	}

	res, err := runner.Run(context.Background(), tbl, opts)
	if err != nil {
		return err
	}

	if res.Analysis != nil {
		printAnalysis(res.Analysis)
	}
	for _, g := range res.Groups {
		fmt.Printf("\n==== group %s ====\n", g.Key)
		if g.Err != nil {
			fmt.Printf("failed: %v\n", g.Err)
		}
		if g.Analysis != nil {
			printAnalysis(g.Analysis)
		}
	}

	if saveRun {
		store := storage.New(dataDir)
		if err := store.Init(); err != nil {
			return err
		}
		runID, err := store.Save(args[0], res, opts)
		if err != nil {
			return err
		}
		fmt.Printf("\nsaved run %s\n", runID)
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	tbl, err := dataset.LoadCSV(args[0])
	if err != nil {
		return err
	}
	opts, err := buildOptions(cmd)
	if err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	names, err := tbl.Resolve(dataset.Schema{
		Response:   opts.Response,
		Predictors: opts.Predictors,
		Exclude:    opts.Exclude,
	})
	if err != nil {
		return err
	}
	m, ry, err := corr.Build(tbl, names, opts.Response, opts.Policy)
	if err != nil {
		return err
	}
	sweep, err := ksweep.Run(m, ry, opts.KGridSize)
	if err != nil {
		return err
	}

	if interactive {
		return viz.RunExplorer(sweep)
	}
	fmt.Println(viz.SweepPlot(sweep, 12, 78))
	return nil
}

func runSelectCmd(cmd *cobra.Command, args []string) error {
	tbl, err := dataset.LoadCSV(args[0])
	if err != nil {
		return err
	}
	opts, err := buildOptions(cmd)
	if err != nil {
		return err
	}
	opts.RunSelection = true
	opts.Grouping = ""

	res, err := runner.Run(context.Background(), tbl, opts)
	if err != nil {
		return err
	}
	printSelection(res.Analysis)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	runs, err := store.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no saved runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tDATA\tRESPONSE\tGROUPS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			run.ID, run.Timestamp.Format("2006-01-02 15:04"), run.Data, run.Response, len(run.Groups))
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	groups, err := store.LoadSweep(args[0])
	if err != nil {
		return err
	}
	for _, g := range groups {
		if plotGroup != "" && g.Key != plotGroup {
			continue
		}
		if g.Key != "" {
			fmt.Printf("\n==== group %s ====\n", g.Key)
		}
		fmt.Println(viz.SweepPlot(g.Table, 12, 78))
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	meta, err := store.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func printAnalysis(a *runner.Analysis) {
	fmt.Printf("response: %s  predictors: %s\n\n", a.Response, strings.Join(a.Predictors, ", "))

	printCorrelations(a)
	printEffects(a)
	printDiagnostics(a)

	if a.Sweep != nil {
		fmt.Println("\nk sweep (no fixed correction given):")
		fmt.Println(viz.SweepPlot(a.Sweep, 10, 78))
	}
	if a.Pruning != nil {
		printSelection(a)
	}
}

func printCorrelations(a *runner.Analysis) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprint(w, "CORR")
	for _, name := range a.Predictors {
		fmt.Fprintf(w, "\t%s", name)
	}
	fmt.Fprintf(w, "\t%s\n", a.Response)
	for i, name := range a.Predictors {
		fmt.Fprint(w, name)
		for j := range a.Predictors {
			fmt.Fprintf(w, "\t%.4f", a.Corr.At(i, j))
		}
		fmt.Fprintf(w, "\t%.4f\n", a.ResponseCor.At(i))
	}
	w.Flush()
}

func printEffects(a *runner.Analysis) {
	if a.Path == nil {
		return
	}
	fmt.Println("\neffects (diagonal = direct, row sums ≈ correlation with response):")
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprint(w, "EFFECT")
	for _, name := range a.Predictors {
		fmt.Fprintf(w, "\tvia %s", name)
	}
	fmt.Fprintln(w)
	for i, name := range a.Predictors {
		fmt.Fprint(w, name)
		for j := range a.Predictors {
			fmt.Fprintf(w, "\t%+.4f", a.Path.Effects[i][j])
		}
		fmt.Fprintln(w)
	}
	w.Flush()

	fmt.Printf("\nR2 = %.4f   residual effect = %.4f   k = %g\n", a.Path.R2, a.Path.Residual, a.Path.K)
	for _, warn := range a.Path.Warnings {
		fmt.Println("warning:", warn)
	}
}

func printDiagnostics(a *runner.Analysis) {
	d := a.Diagnostics
	fmt.Println("\nmulticollinearity diagnostics:")
	fmt.Printf("  eigenvalues: %s\n", formatVector(d.Eigenvalues))
	fmt.Printf("  condition number: %s   determinant: %.6g\n",
		formatScalar(d.ConditionNumber), d.Determinant)
	fmt.Printf("  heaviest variable in near-null direction: %s\n", d.WeightVar)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  PREDICTOR\tVIF")
	for i, name := range d.Predictors {
		fmt.Fprintf(w, "  %s\t%s\n", name, formatScalar(d.VIF[i]))
	}
	w.Flush()
	for _, warn := range d.Warnings {
		fmt.Println("warning:", warn)
	}
}

func printSelection(a *runner.Analysis) {
	fmt.Println("\nVIF pruning:")
	if len(a.Pruning.Steps) == 0 {
		fmt.Println("  no predictor above the threshold, nothing removed")
	} else {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "  ITER\tREMOVED\tVIF\tMAX VIF AFTER\tREMAINING")
		for i, rec := range a.Pruning.Steps {
			fmt.Fprintf(w, "  %d\t%s\t%s\t%s\t%d\n",
				i+1, rec.Removed, formatScalar(rec.VIF), formatScalar(rec.MaxVIFAfter), rec.Remaining)
		}
		w.Flush()
	}
	fmt.Printf("selected: %s\n", strings.Join(a.Selected, ", "))

	fmt.Println("\nstepwise ladder:")
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  STEP\tPREDICTORS\tR2\tRESIDUAL\tMAX VIF\tCOND\tDROPPED NEXT")
	for i, step := range a.Ladder {
		fmt.Fprintf(w, "  %d\t%s\t%.4f\t%.4f\t%s\t%s\t%s\n",
			i+1, strings.Join(step.Predictors, ","), step.Path.R2, step.Path.Residual,
			formatScalar(step.MaxVIF), formatScalar(step.Diagnostics.ConditionNumber), step.Dropped)
	}
	w.Flush()
}

type progressPrinter struct{}

func (progressPrinter) PruneStep(removed string, vif, maxAfter float64, remaining int) {
	fmt.Printf("prune: removed %s (VIF %s), max VIF now %s, %d predictors left\n",
		removed, formatScalar(vif), formatScalar(maxAfter), remaining)
}

func (progressPrinter) LadderStep(step int, predictors []string, r2, cond float64) {
	fmt.Printf("ladder step %d: %d predictors, R2 %.4f, condition number %s\n",
		step+1, len(predictors), r2, formatScalar(cond))
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func formatScalar(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.3f", v)
}

func formatVector(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprintf("%.4f", v)
	}
	return strings.Join(parts, ", ")
}

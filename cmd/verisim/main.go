package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verisim/verisim/internal/config"
	"github.com/verisim/verisim/internal/logger"
	"github.com/verisim/verisim/internal/phys"
	"github.com/verisim/verisim/internal/report"
	"github.com/verisim/verisim/internal/stats"
	"github.com/verisim/verisim/internal/sweep"
	"github.com/verisim/verisim/internal/tui"
)

var (
	dataDir    string
	logLevel   string
	configFile string
	workers    int
	live       bool

	// sweep grid overrides
	engines   []string
	masses    []float64
	stepSizes []float64

	// single-run point
	engine     string
	iterations int
	stepSize   float64
	mass       float64
	gravity    float64
	force      float64
	tolerance  float64
	duration   float64

	// report selection
	plotBundle string
	plotStat   string
	plotBy     string
	pointKey   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "verisim",
		Short: "rigid-body conservation benchmark",
		Long: "verisim sweeps a rigid-body drop test across engines and parameters,\n" +
			"checking momentum and energy conservation against tolerances.",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".verisim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "INFO", "log level")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run a parameter sweep",
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0 = from config)")
	sweepCmd.Flags().BoolVar(&live, "live", false, "live progress view")
	sweepCmd.Flags().StringSliceVar(&engines, "engines", nil, "engines to sweep")
	sweepCmd.Flags().Float64SliceVar(&masses, "masses", nil, "mass values to sweep")
	sweepCmd.Flags().Float64SliceVar(&stepSizes, "step-sizes", nil, "step sizes to sweep")
	sweepCmd.Flags().Float64Var(&duration, "time", 0, "simulated duration (0 = from config)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a single configuration point",
		RunE:  runPoint,
	}
	runCmd.Flags().StringVar(&engine, "engine", "analytic", "engine")
	runCmd.Flags().IntVar(&iterations, "iters", config.DefaultIters, "solver iterations")
	runCmd.Flags().Float64Var(&stepSize, "dt", config.DefaultStepSize, "step size")
	runCmd.Flags().Float64Var(&mass, "mass", 1.0, "body mass")
	runCmd.Flags().Float64Var(&gravity, "gravity", config.DefaultGravity, "gravity z-component")
	runCmd.Flags().Float64Var(&force, "force", 0.0, "applied force z-component")
	runCmd.Flags().Float64Var(&tolerance, "tolerance", 0.0, "residual tolerance (0 = no gate)")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "simulated duration")

	pointsCmd := &cobra.Command{
		Use:   "points",
		Short: "print the expanded configuration points",
		RunE:  listPoints,
	}
	pointsCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")

	enginesCmd := &cobra.Command{
		Use:   "engines",
		Short: "list available engines",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range phys.NewRegistry().List() {
				fmt.Println(name)
			}
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored sweeps",
		RunE:  listSweeps,
	}

	reportCmd := &cobra.Command{
		Use:   "report [sweep_id]",
		Short: "summarize a stored sweep",
		Args:  cobra.ExactArgs(1),
		RunE:  reportSweep,
	}
	reportCmd.Flags().StringVar(&plotBundle, "plot", "", "bundle to plot (e.g. energyError)")
	reportCmd.Flags().StringVar(&plotStat, "stat", "MaxAbs", "statistic kind to plot")
	reportCmd.Flags().StringVar(&plotBy, "by", "mass", "grid dimension for the x-axis")
	reportCmd.Flags().StringVar(&pointKey, "point", "", "print full bundles of one point key")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the default sweep config",
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Write(os.Stdout, config.DefaultConfig())
		},
	}

	rootCmd.AddCommand(sweepCmd, runCmd, pointsCmd, enginesCmd, listCmd, reportCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	// CLI flags override the config file.
	if cmd.Flags().Changed("engines") {
		cfg.Grid.Engines = engines
	}
	if cmd.Flags().Changed("masses") {
		cfg.Grid.Masses = masses
	}
	if cmd.Flags().Changed("step-sizes") {
		cfg.Grid.StepSizes = stepSizes
	}
	if cmd.Flags().Changed("time") {
		cfg.Scenario.Duration = duration
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	if cmd.Flags().Changed("data") {
		cfg.DataDir = dataDir
	}
	return cfg, cfg.Validate()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	kinds, err := cfg.ParseKinds()
	if err != nil {
		return err
	}

	log := logger.New(os.Stderr, logLevel)
	runner := sweep.NewRunner(phys.NewRegistry(), cfg.Scenario, kinds, log)

	store := report.New(cfg.DataDir)
	if err := store.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if live {
		return runSweepLive(ctx, cfg, runner, store)
	}

	obs := func(idx, total int, res *sweep.Result) {
		if res.Err != nil {
			log.Errorf("[%d/%d] %s: %v", idx+1, total, res.Point.Key(), res.Err)
			return
		}
		log.Infof("[%d/%d] %s passed=%v", idx+1, total, res.Point.Key(), res.Passed)
	}

	var results []*sweep.Result
	if cfg.Workers > 1 {
		results, err = runner.RunParallel(ctx, cfg.Grid, cfg.Workers, obs)
	} else {
		results, err = runner.RunAll(ctx, cfg.Grid, obs)
	}
	if err != nil {
		return err
	}

	sweepID, err := store.Save(cfg.Scenario, cfg.Kinds, results)
	if err != nil {
		return err
	}

	records := make([]report.Record, len(results))
	for i, res := range results {
		records[i] = report.FromResult(res)
	}
	report.RenderSummary(os.Stdout, records)
	fmt.Printf("\nsaved as %s\n", sweepID)
	return nil
}

func runSweepLive(ctx context.Context, cfg *config.Config, runner *sweep.Runner, store *report.Store) error {
	msgs := make(chan tea.Msg)
	prog := tea.NewProgram(tui.NewModel(msgs))

	go func() {
		obs := func(idx, total int, res *sweep.Result) {
			msgs <- tui.ResultMsg{Total: total, Record: report.FromResult(res)}
		}
		var results []*sweep.Result
		var err error
		if cfg.Workers > 1 {
			results, err = runner.RunParallel(ctx, cfg.Grid, cfg.Workers, obs)
		} else {
			results, err = runner.RunAll(ctx, cfg.Grid, obs)
		}
		sweepID := ""
		if err == nil {
			sweepID, _ = store.Save(cfg.Scenario, cfg.Kinds, results)
		}
		msgs <- tui.DoneMsg{SweepID: sweepID}
	}()

	_, err := prog.Run()
	return err
}

func runPoint(cmd *cobra.Command, args []string) error {
	scenario := config.DefaultConfig().Scenario
	scenario.Duration = duration

	log := logger.New(os.Stderr, logLevel)
	runner := sweep.NewRunner(phys.NewRegistry(), scenario, stats.DefaultKinds(), log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res := runner.RunPoint(ctx, sweep.Point{
		Engine:     engine,
		Iterations: iterations,
		StepSize:   stepSize,
		Mass:       mass,
		Gravity:    gravity,
		Force:      force,
		Tolerance:  tolerance,
	})
	rec := report.FromResult(res)

	fmt.Printf("point:   %s\n", rec.Key)
	fmt.Printf("steps:   %d\n", rec.Steps)
	for _, name := range []string{sweep.ScalarSimTime, sweep.ScalarWallTime, sweep.ScalarTimeRatio,
		sweep.ScalarEnergy0, sweep.ScalarAngMomentum0} {
		fmt.Printf("%s: %g\n", name, rec.Scalars[name])
	}
	fmt.Println()
	report.RenderBundle(os.Stdout, rec)

	if res.Err != nil {
		return res.Err
	}
	if !res.Passed {
		return fmt.Errorf("tolerance %g exceeded", tolerance)
	}
	return nil
}

func listPoints(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	points := cfg.Grid.Points()
	for _, p := range points {
		fmt.Println(p.Key())
	}
	fmt.Printf("%d points\n", len(points))
	return nil
}

func listSweeps(cmd *cobra.Command, args []string) error {
	store := report.New(dataDir)
	sweeps, err := store.List()
	if err != nil {
		return err
	}
	if len(sweeps) == 0 {
		fmt.Println("no sweeps found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIMESTAMP\tPOINTS\tFAILED")
	for _, meta := range sweeps {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n",
			meta.ID, meta.Timestamp.Format("2006-01-02 15:04:05"), meta.Points, meta.Failed)
	}
	return w.Flush()
}

func reportSweep(cmd *cobra.Command, args []string) error {
	store := report.New(dataDir)
	meta, records, err := store.Load(args[0])
	if err != nil {
		return err
	}

	if pointKey != "" {
		for _, rec := range records {
			if rec.Key == pointKey {
				report.RenderBundle(os.Stdout, rec)
				return nil
			}
		}
		return fmt.Errorf("point %s not found in %s", pointKey, meta.ID)
	}

	report.RenderSummary(os.Stdout, records)

	if plotBundle != "" {
		kinds, err := stats.ParseKinds(plotStat)
		if err != nil {
			return err
		}
		graph, err := report.Plot(records, plotBundle, kinds[0], plotBy)
		if err != nil {
			return err
		}
		fmt.Println("\n" + graph)
	}
	return nil
}

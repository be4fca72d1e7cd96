package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/EnderRifter/StarSim-sub000/internal/config"
)

var (
	dataDir string
	verbose bool

	configFile string
	preset     string

	dt          float64
	steps       int
	sampleEvery int
	seed        uint64
	updaterName string
	integrator  string
	theta       float64
	softening   float64
	gravConst   float64
	universe    float64
	numBodies   int
	generator   string
	validate    bool

	svgOut    string
	outFile   string
	svgStyle  string
	plane     string
	bodyID    uint64
	centerID  uint64
	frameRate int
	sizes     []int
	thetas    []float64
	gridSpecs []string
	metric    string
	numRuns   int
)

// main registers the commands and runs the root command. It exits with
// status 1 if the command returns an error.
func main() {
	rootCmd := &cobra.Command{
		Use:           "starsim",
		Short:         "barnes-hut n-body gravity simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".starsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringVar(&svgOut, "svg", "", "also write trajectories to this svg file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energy and orbital radius of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	addBodyFlags(plotCmd)

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export sampled states to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (stdout if empty)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw trajectories as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&svgOut, "out", "o", "", "output file (stdout if empty)")
	exportSVGCmd.Flags().StringVar(&plane, "plane", "xy", "projection plane: xy, xz or yz")
	exportSVGCmd.Flags().StringVar(&svgStyle, "style", "trajectories", "trajectories, snapshot (final frame) or canvas (3d view of the final frame)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "orbital frequency analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	addBodyFlags(analyzeCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time every updater across body counts",
		Args:  cobra.NoArgs,
		RunE:  benchUpdaters,
	}
	addSimFlags(benchCmd)
	benchCmd.Flags().IntSliceVar(&sizes, "sizes", []int{100, 500, 2000}, "body counts")

	compareCmd := &cobra.Command{
		Use:   "compare [updater...]",
		Short: "compare updaters against direct summation",
		RunE:  compareUpdaters,
	}
	addSimFlags(compareCmd)

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "measure force error and cost across opening angles",
		Args:  cobra.NoArgs,
		RunE:  tuneTheta,
	}
	addSimFlags(tuneCmd)
	tuneCmd.Flags().Float64SliceVar(&thetas, "thetas", []float64{0, 0.2, 0.4, 0.6, 0.8, 1.0, 1.5}, "opening angles")

	gridCmd := &cobra.Command{
		Use:   "grid",
		Short: "grid search config parameters for the smallest metric",
		Args:  cobra.NoArgs,
		RunE:  gridSearch,
	}
	addSimFlags(gridCmd)
	gridCmd.Flags().StringArrayVar(&gridSpecs, "param", nil, "name=v1,v2,... (theta, softening, dt)")
	gridCmd.Flags().StringVar(&metric, "metric", "energy_drift", "result metric to minimise")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run consecutive seeds concurrently",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	addSimFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 4, "number of seeds")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	presetsCmd := &cobra.Command{
		Use:   "presets [kind]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd,
		analyzeCmd, benchCmd, compareCmd, tuneCmd, gridCmd, ensembleCmd, liveCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "preset as kind/name, see `starsim presets`")
	f.Float64Var(&dt, "dt", d.Dt, "timestep")
	f.IntVar(&steps, "steps", d.Steps, "number of ticks")
	f.IntVar(&sampleEvery, "sample-every", d.SampleEvery, "record every n-th tick")
	f.Uint64Var(&seed, "seed", d.Seed, "random seed")
	f.StringVar(&updaterName, "updater", d.Updater, "exact, barneshut, parallel or reference")
	f.StringVar(&integrator, "integrator", d.Integrator, "symplectic or euler")
	f.Float64Var(&theta, "theta", d.Physics.Theta, "opening angle")
	f.Float64Var(&softening, "softening", d.Physics.Softening, "gravitational softening length")
	f.Float64Var(&gravConst, "g", d.Physics.G, "gravitational constant")
	f.Float64Var(&universe, "universe", d.Physics.UniverseRadius, "universe radius")
	f.IntVar(&numBodies, "bodies", d.Generator.Bodies, "number of bodies")
	f.StringVar(&generator, "generator", d.Generator.Kind, "solar, binary, disk or cluster")
	f.BoolVar(&validate, "validate", d.ValidateState, "stop on NaN or Inf state")
}

func addBodyFlags(cmd *cobra.Command) {
	cmd.Flags().Uint64Var(&bodyID, "body", 1, "body id to follow")
	cmd.Flags().Uint64Var(&centerID, "center", 0, "body id used as centre")
}

// resolveConfig layers defaults, preset, config file and explicit flags, in
// that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		kind, name, ok := strings.Cut(preset, "/")
		p := config.GetPreset(kind, name)
		if !ok || p == nil {
			return nil, fmt.Errorf("unknown preset: %s (kinds: %v)", preset, config.ListKinds())
		}
		cfg = p
	}

	if configFile != "" {
		merged, err := config.Merge(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = merged
	}

	f := cmd.Flags()
	if f.Changed("dt") {
		cfg.Dt = dt
	}
	if f.Changed("steps") {
		cfg.Steps = steps
	}
	if f.Changed("sample-every") {
		cfg.SampleEvery = sampleEvery
	}
	if f.Changed("seed") {
		cfg.Seed = seed
	}
	if f.Changed("updater") {
		cfg.Updater = updaterName
	}
	if f.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if f.Changed("theta") {
		cfg.Physics.Theta = theta
	}
	if f.Changed("softening") {
		cfg.Physics.Softening = softening
	}
	if f.Changed("g") {
		cfg.Physics.G = gravConst
	}
	if f.Changed("universe") {
		cfg.Physics.UniverseRadius = universe
	}
	if f.Changed("bodies") {
		cfg.Generator.Bodies = numBodies
	}
	if f.Changed("generator") {
		cfg.Generator.Kind = generator
	}
	if f.Changed("validate") {
		cfg.ValidateState = validate
	}

	return cfg, cfg.Validate()
}

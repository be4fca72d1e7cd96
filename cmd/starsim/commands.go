package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"

	"github.com/EnderRifter/StarSim-sub000/internal/analysis"
	"github.com/EnderRifter/StarSim-sub000/internal/config"
	"github.com/EnderRifter/StarSim-sub000/internal/experiment"
	"github.com/EnderRifter/StarSim-sub000/internal/export"
	"github.com/EnderRifter/StarSim-sub000/internal/logging"
	"github.com/EnderRifter/StarSim-sub000/internal/optim"
	"github.com/EnderRifter/StarSim-sub000/internal/physics"
	"github.com/EnderRifter/StarSim-sub000/internal/sim"
	"github.com/EnderRifter/StarSim-sub000/internal/storage"
	"github.com/EnderRifter/StarSim-sub000/internal/viz"
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	log := logging.New(os.Stderr, verbose)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg, nil).WithLogger(log)
	if err := exp.Setup(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s: %d bodies, %s/%s, %d steps...\n",
		cfg.Name, len(exp.Bodies()), cfg.Updater, cfg.Integrator, cfg.Steps)

	result, runErr := exp.Run(ctx)
	if result == nil {
		return runErr
	}

	runID, err := st.Save(exp.Metadata(), result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", result.Elapsed.Round(time.Millisecond))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("frames: %d\n", len(result.Frames))
	fmt.Printf("energy drift: %.3e\n", result.EnergyDrift)
	printMetrics(result.Metrics)

	if svgOut != "" {
		svg, err := export.TrajectoriesToSVG(result.Frames, export.PlaneXY, 800, 800)
		if err != nil {
			return err
		}
		if err := export.WriteFile(svgOut, svg); err != nil {
			return err
		}
		fmt.Printf("trajectories: %s\n", svgOut)
	}

	return runErr
}

func printMetrics(m map[string]float64) {
	if len(m) == 0 {
		return
	}
	fmt.Println("\nmetrics:")
	for _, name := range sortedNames(m) {
		fmt.Printf("  %s: %.6g\n", viz.MetricLabel.Render(name), m[name])
	}
}

func sortedNames(m map[string]float64) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tUPDATER\tBODIES\tSTEPS\tDT\tDRIFT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%g\t%.2e\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Updater,
			run.Bodies,
			run.StepsTaken,
			run.Dt,
			run.EnergyDrift,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []sim.Frame, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(frames) == 0 {
		return nil, nil, fmt.Errorf("run %s has no frames", runID)
	}
	return meta, frames, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("generator: %s, %d bodies\n", meta.Generator, meta.Bodies)
	fmt.Printf("samples: %d\n\n", len(frames))

	g := physics.NewGravity(meta.G, meta.Softening)
	energy := analysis.EnergySeries(frames, g)
	fmt.Println(asciigraph.Plot(energy,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("total energy"),
	))
	fmt.Println()

	if radial := analysis.RadialSeries(frames, bodyID, centerID); len(radial) > 1 {
		fmt.Println(asciigraph.Plot(radial,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("distance body %d to body %d", bodyID, centerID)),
		))
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	return storage.WriteStates(os.Stdout, frames)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if outFile != "" {
		return storage.ExportJSON(outFile, *meta, frames)
	}
	return storage.WriteJSON(os.Stdout, *meta, frames)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	_, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	svg, err := renderSVG(frames, svgStyle, export.Plane(plane))
	if err != nil {
		return err
	}
	if svgOut == "" {
		_, err = fmt.Println(svg)
		return err
	}
	return export.WriteFile(svgOut, svg)
}

const (
	svgSize     = 800
	svgCanvasW  = 100
	svgCanvasH  = 50
	svgDotScale = 4
)

func renderSVG(frames []sim.Frame, style string, plane export.Plane) (string, error) {
	switch style {
	case "trajectories":
		return export.TrajectoriesToSVG(frames, plane, svgSize, svgSize)
	case "snapshot", "canvas":
	default:
		return "", fmt.Errorf("unknown svg style %q (trajectories, snapshot, canvas)", style)
	}

	if len(frames) == 0 {
		return "", fmt.Errorf("run has no frames")
	}
	final := frames[len(frames)-1].Bodies
	if style == "snapshot" {
		return export.FinalSnapshotSVG(final, plane, svgSize, svgSize)
	}

	c := viz.NewCanvas(svgCanvasW, svgCanvasH)
	cam := viz.NewCamera(1)
	com, _ := physics.CenterOfMass(final)
	radius := 0.0
	for _, b := range final {
		radius = math.Max(radius, b.Position.Dist3(com))
	}
	cam.Target = com
	cam.Fit(math.Max(radius, 1))
	viz.RenderBodies(c, cam, final, 0)
	return export.CanvasToSVG(c, svgDotScale), nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}

	radial := analysis.RadialSeries(frames, bodyID, centerID)
	if len(radial) < 4 {
		return fmt.Errorf("bodies %d and %d share fewer than 4 frames", bodyID, centerID)
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("body %d around body %d, %d samples\n\n", bodyID, centerID, len(radial))

	ps := analysis.PowerSpectrum(radial)
	plotData := ps
	if len(ps) > 8 {
		plotData = ps[1 : len(ps)/2]
	}
	fmt.Println(asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (radius)"),
	))
	fmt.Println()

	sampleDt := meta.Dt * float64(meta.SampleEvery)
	period, ok := analysis.DominantPeriod(radial, sampleDt)
	if !ok {
		fmt.Println("no dominant frequency (flat or short series)")
		return nil
	}
	fmt.Printf("dominant frequency: %.4f\n", 1/period)
	fmt.Printf("period: %.4f\n", period)
	return nil
}

func benchUpdaters(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	registry := experiment.NewRegistry()
	integ, err := registry.GetIntegrator(base.Integrator)
	if err != nil {
		return err
	}
	gen, err := registry.GetGenerator(base.Generator.Kind)
	if err != nil {
		return err
	}

	benchSteps := base.Steps
	if !cmd.Flags().Changed("steps") {
		benchSteps = 20
	}

	fmt.Printf("benchmarking %s bodies, %d steps each\n\n", base.Generator.Kind, benchSteps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODIES\tUPDATER\tTIME\tPER STEP\tSTEPS/SEC")

	for _, n := range sizes {
		cfg := base.Clone()
		cfg.Generator.Bodies = n
		initial := gen(rand.New(rand.NewSource(cfg.Seed)), experiment.GeneratorParams(cfg))

		for _, name := range registry.ListUpdaters() {
			upd, err := registry.GetUpdater(name, cfg.Params(), integ)
			if err != nil {
				return err
			}
			bodies := physics.CloneAll(initial)
			start := time.Now()
			for i := 0; i < benchSteps; i++ {
				upd.Advance(bodies, cfg.Dt)
			}
			elapsed := time.Since(start)
			fmt.Fprintf(w, "%d\t%s\t%v\t%v\t%.1f\n",
				n, name, elapsed.Round(time.Microsecond),
				(elapsed / time.Duration(benchSteps)).Round(time.Microsecond),
				float64(benchSteps)/elapsed.Seconds())
		}
	}

	return w.Flush()
}

func compareUpdaters(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	registry := experiment.NewRegistry()
	names := args
	if len(names) == 0 {
		names = registry.ListUpdaters()
	}
	integ, err := registry.GetIntegrator(cfg.Integrator)
	if err != nil {
		return err
	}
	gen, err := registry.GetGenerator(cfg.Generator.Kind)
	if err != nil {
		return err
	}
	initial := gen(rand.New(rand.NewSource(cfg.Seed)), experiment.GeneratorParams(cfg))

	run := func(u sim.Updater) ([]*physics.Body, *sim.Result, error) {
		bodies := physics.CloneAll(initial)
		res, err := sim.New(u).Run(context.Background(), bodies, cfg.RunConfig())
		return bodies, res, err
	}

	baseline, _, err := run(sim.NewExact(cfg.Gravity(), integ))
	if err != nil {
		return err
	}

	fmt.Printf("comparing updaters: %d bodies, dt=%g, %d steps, theta=%g\n\n",
		len(initial), cfg.Dt, cfg.Steps, cfg.Physics.Theta)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "UPDATER\tENERGY DRIFT\tMAX DEVIATION\tMEAN DEVIATION\tTIME")

	for _, name := range names {
		upd, err := registry.GetUpdater(name, cfg.Params(), integ)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}
		final, res, err := run(upd)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}
		maxDev, meanDev := deviation(final, baseline)
		fmt.Fprintf(w, "%s\t%.3e\t%.3e\t%.3e\t%v\n",
			name, res.EnergyDrift, maxDev, meanDev, res.Elapsed.Round(time.Microsecond))
	}

	return w.Flush()
}

// deviation compares positions of matching bodies.
func deviation(got, want []*physics.Body) (maxDev, meanDev float64) {
	n := 0
	for i := range got {
		if i >= len(want) || !got[i].Same(want[i]) {
			continue
		}
		d := got[i].Position.Dist3(want[i].Position)
		maxDev = math.Max(maxDev, d)
		meanDev += d
		n++
	}
	if n > 0 {
		meanDev /= float64(n)
	}
	return maxDev, meanDev
}

func tuneTheta(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	gen, err := experiment.NewRegistry().GetGenerator(cfg.Generator.Kind)
	if err != nil {
		return err
	}
	bodies := gen(rand.New(rand.NewSource(cfg.Seed)), experiment.GeneratorParams(cfg))

	results := optim.ThetaSweep(bodies, cfg.Gravity(), cfg.Params().HalfSide(), thetas)

	fmt.Printf("opening angle sweep: %d bodies (%s)\n\n", len(bodies), cfg.Generator.Kind)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "THETA\tMEAN ERR\tMAX ERR\tEXACT\tAGGREGATES\tTIME")
	errs := make([]float64, 0, len(results))
	for _, r := range results {
		fmt.Fprintf(w, "%.2f\t%.3e\t%.3e\t%d\t%d\t%v\n",
			r.Theta, r.MeanRelError, r.MaxRelError, r.Exact, r.Approximations, r.Elapsed.Round(time.Microsecond))
		errs = append(errs, r.MeanRelError)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nmean error %s\n", viz.Sparkline(errs, len(errs)))
	return nil
}

// parseGrid reads name=v1,v2,... specs.
func parseGrid(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, spec := range specs {
		name, list, ok := strings.Cut(spec, "=")
		if !ok || list == "" {
			return nil, nil, fmt.Errorf("bad --param %q, want name=v1,v2", spec)
		}
		var vals []float64
		for _, s := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("bad value in --param %q: %w", spec, err)
			}
			vals = append(vals, v)
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}
	return names, ranges, nil
}

func gridSearch(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if len(gridSpecs) == 0 {
		return fmt.Errorf("at least one --param is required")
	}
	names, ranges, err := parseGrid(gridSpecs)
	if err != nil {
		return err
	}
	gs, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	best, trials, err := gs.Search(ctx, cfg, metric)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(metric))
	for _, tr := range trials {
		cols := make([]string, len(names))
		for i, n := range names {
			cols[i] = strconv.FormatFloat(tr.Params[n], 'g', -1, 64)
		}
		val := fmt.Sprintf("%.4e", tr.Value)
		if tr.Err != nil {
			val = "error: " + tr.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\n", strings.Join(cols, "\t"), val)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}
	fmt.Printf("\nbest: %v -> %s = %.4e\n", best.Params, metric, best.Value)
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if numRuns < 1 {
		return fmt.Errorf("--runs must be at least 1")
	}
	log := logging.New(os.Stderr, verbose)
	registry := experiment.NewRegistry()
	integ, err := registry.GetIntegrator(cfg.Integrator)
	if err != nil {
		return err
	}
	if _, err := registry.GetUpdater(cfg.Updater, cfg.Params(), integ); err != nil {
		return err
	}
	gen, err := registry.GetGenerator(cfg.Generator.Kind)
	if err != nil {
		return err
	}

	newUpdater := func() sim.Updater {
		// Updaters keep per-tick scratch state, so every run gets its own.
		u, _ := registry.GetUpdater(cfg.Updater, cfg.Params(), integ)
		return u
	}
	initial := func(s uint64) []*physics.Body {
		return gen(rand.New(rand.NewSource(s)), experiment.GeneratorParams(cfg))
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	results, err := sim.NewEnsemble(newUpdater, numRuns, cfg.Seed).WithLogger(log).Run(ctx, cfg.RunConfig(), initial)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tSTEPS\tENERGY DRIFT\tBOUNDED\tTIME")
	var drifts []float64
	for i, r := range results {
		drifts = append(drifts, r.EnergyDrift)
		fmt.Fprintf(w, "%d\t%d\t%.3e\t%s\t%v\n",
			cfg.Seed+uint64(i), r.StepsTaken, r.EnergyDrift,
			viz.ProgressBar(boundedFraction(r, cfg), 10), r.Elapsed.Round(time.Millisecond))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	mean := 0.0
	for _, d := range drifts {
		mean += d
	}
	mean /= float64(len(drifts))
	fmt.Printf("\n%d runs in %v, mean drift %.3e\n", len(results), time.Since(start).Round(time.Millisecond), mean)
	return nil
}

// boundedFraction is the share of bodies in the final frame still inside the
// root region.
func boundedFraction(r *sim.Result, cfg *config.Config) float64 {
	f, ok := r.Final()
	if !ok || len(f.Bodies) == 0 {
		return 0
	}
	params := cfg.Params()
	in := 0
	for _, b := range f.Bodies {
		if params.Contains(b.Position) {
			in++
		}
	}
	return float64(in) / float64(len(f.Bodies))
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg, nil)
	if err := exp.Setup(); err != nil {
		return err
	}

	m := viz.NewModel(cfg.Name, exp.Simulator().Updater(), exp.Bodies(), cfg.Dt, cfg.Params().HalfSide()).WithFPS(frameRate)

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	kinds := config.ListKinds()
	if len(args) == 1 {
		if config.ListPresets(args[0]) == nil {
			fmt.Printf("no presets for kind: %s\n", args[0])
			return nil
		}
		kinds = args
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tUPDATER\tBODIES\tSTEPS\tDT")
	for _, kind := range kinds {
		for _, name := range config.ListPresets(kind) {
			p := config.GetPreset(kind, name)
			fmt.Fprintf(w, "%s/%s\t%s\t%d\t%d\t%g\n", kind, name, p.Updater, p.Generator.Bodies, p.Steps, p.Dt)
		}
	}
	return w.Flush()
}

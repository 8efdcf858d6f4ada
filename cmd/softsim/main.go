package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/softsim/internal/config"
	"github.com/san-kum/softsim/internal/mesh"
	"github.com/san-kum/softsim/internal/metrics"
	"github.com/san-kum/softsim/internal/sim"
	"github.com/san-kum/softsim/internal/storage"
	"github.com/san-kum/softsim/internal/viz"
	"github.com/san-kum/softsim/internal/xpbd"
)

var (
	dataDir string
	verbose bool

	configFile string
	preset     string

	nodeFile   string
	eleFile    string
	layout     string
	generator  string
	resolution int
	size       float64
	height     float64

	density          float64
	edgeCompliance   float64
	volumeCompliance float64
	damping          float64
	ground           float64
	dt               float64
	substeps         int
	frames           int

	noSave bool
	theme  string
)

var logger *slog.Logger

func main() {
	rootCmd := &cobra.Command{
		Use:   "softsim",
		Short: "xpbd soft body simulator",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunMenu(theme, logger)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".softsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.Flags().StringVar(&theme, "theme", "jelly", "color theme")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and save it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addBodyFlags(runCmd)
	runCmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames to simulate")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "simulate in the terminal with grab and tuning",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addBodyFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", "jelly", "color theme")

	genCmd := &cobra.Command{
		Use:   "gen [prefix]",
		Short: "write a generated mesh as TetGen .node/.ele files",
		Args:  cobra.ExactArgs(1),
		RunE:  generateMesh,
	}
	genCmd.Flags().StringVar(&generator, "generator", "box", "mesh generator (box, tet)")
	genCmd.Flags().IntVar(&resolution, "resolution", config.DefaultResolution, "box cells per axis")
	genCmd.Flags().Float64Var(&size, "size", 1.0, "box or tetrahedron edge length")
	genCmd.Flags().Float64Var(&height, "height", config.DefaultHeight, "height above the origin")

	sweepCmd := &cobra.Command{
		Use:   "sweep [edge_compliance...]",
		Short: "compare edge compliances on the same body",
		Args:  cobra.MinimumNArgs(1),
		RunE:  sweepCompliance,
	}
	addBodyFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames to simulate")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run frames to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id] [out.svg]",
		Short: "plot centroid height of a run as SVG",
		Args:  cobra.ExactArgs(2),
		RunE:  exportSVG,
	}

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [out.svg]",
		Short: "simulate, then render the final pose as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  snapshot,
	}
	addBodyFlags(snapshotCmd)
	snapshotCmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames to simulate before drawing")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tMESH\tEDGE\tVOLUME\tFRAMES\tGRABS")
			for _, name := range config.ListPresets() {
				p := config.Presets[name]
				fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%d\t%d\n",
					name, p.MeshName(), p.EdgeCompliance, p.VolumeCompliance, p.Frames, len(p.Grabs))
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, genCmd, sweepCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, snapshotCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addBodyFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&nodeFile, "node", "", "node file")
	cmd.Flags().StringVar(&eleFile, "ele", "", "element file")
	cmd.Flags().StringVar(&layout, "layout", "tetgen", "mesh file layout (tetgen, blender)")
	cmd.Flags().StringVar(&generator, "generator", "box", "mesh generator when no files are given (box, tet)")
	cmd.Flags().IntVar(&resolution, "resolution", config.DefaultResolution, "box cells per axis")
	cmd.Flags().Float64Var(&size, "size", 1.0, "box or tetrahedron edge length")
	cmd.Flags().Float64Var(&height, "height", config.DefaultHeight, "height of the generated mesh")
	cmd.Flags().Float64Var(&density, "density", 1.0, "mass density")
	cmd.Flags().Float64Var(&edgeCompliance, "edge-compliance", config.DefaultCompliance, "edge compliance")
	cmd.Flags().Float64Var(&volumeCompliance, "volume-compliance", 0, "volume compliance")
	cmd.Flags().Float64Var(&damping, "damping", xpbd.DefaultDamping, "per-substep velocity damping")
	cmd.Flags().Float64Var(&ground, "ground", 0, "ground plane height")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "frame timestep")
	cmd.Flags().IntVar(&substeps, "substeps", config.DefaultSubsteps, "substeps per frame")
}

// resolveConfig layers defaults, preset, config file and explicitly set
// flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	name := "run"

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		name = preset
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		name = strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile))
	}

	flags := cmd.Flags()
	if flags.Changed("node") {
		cfg.Mesh.Node = nodeFile
	}
	if flags.Changed("ele") {
		cfg.Mesh.Element = eleFile
	}
	if flags.Changed("layout") {
		cfg.Mesh.Layout = layout
	}
	if flags.Changed("generator") {
		cfg.Mesh.Node = ""
		cfg.Mesh.Generator = generator
	}
	if flags.Changed("resolution") {
		cfg.Mesh.Resolution = resolution
	}
	if flags.Changed("size") {
		cfg.Mesh.Size = size
	}
	if flags.Changed("height") {
		cfg.Mesh.Height = height
	}
	if flags.Changed("density") {
		cfg.Density = density
	}
	if flags.Changed("edge-compliance") {
		cfg.EdgeCompliance = edgeCompliance
	}
	if flags.Changed("volume-compliance") {
		cfg.VolumeCompliance = volumeCompliance
	}
	if flags.Changed("damping") {
		cfg.Damping = damping
	}
	if flags.Changed("ground") {
		cfg.GroundHeight = ground
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("substeps") {
		cfg.Substeps = substeps
	}
	if flags.Changed("frames") {
		cfg.Frames = frames
	}

	if cfg.Mesh.Node != "" && cfg.Mesh.Element == "" {
		cfg.Mesh.Element = strings.TrimSuffix(cfg.Mesh.Node, ".node") + ".ele"
	}

	return cfg, name, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	body, err := cfg.Body(logger)
	if err != nil {
		return err
	}
	if body.NumParticles() == 0 {
		return fmt.Errorf("mesh %s has no particles", cfg.MeshName())
	}

	s := sim.New(body)
	for _, m := range metrics.Default(body) {
		s.AddMetric(m)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s: %d particles, %d tetrahedra...\n", name, body.NumParticles(), len(body.Tetrahedra()))
	start := time.Now()

	simCfg := cfg.SimConfig()
	result, err := s.Run(ctx, simCfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("frames: %d\n", result.StepsTaken)
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(storage.RunMetadata{
			Name:             name,
			Mesh:             cfg.MeshName(),
			Particles:        body.NumParticles(),
			Tetrahedra:       len(body.Tetrahedra()),
			Dt:               cfg.Dt,
			Substeps:         cfg.Substeps,
			Frames:           cfg.Frames,
			EdgeCompliance:   cfg.EdgeCompliance,
			VolumeCompliance: cfg.VolumeCompliance,
		}, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	printMetrics(result.Metrics)
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	body, err := cfg.Body(logger)
	if err != nil {
		return err
	}
	if body.NumParticles() == 0 {
		return fmt.Errorf("mesh %s has no particles", cfg.MeshName())
	}

	return viz.RunLive(body, viz.Settings{
		Name:     name,
		Dt:       cfg.Dt,
		Substeps: cfg.Substeps,
		Gravity:  mgl64.Vec3(cfg.Gravity),
		Theme:    theme,
	})
}

func generateMesh(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	cfg.Mesh = config.MeshConfig{
		Generator:  generator,
		Resolution: resolution,
		Size:       size,
		Height:     height,
	}

	m, err := cfg.BuildMesh(logger)
	if err != nil {
		return err
	}

	nodePath, elePath, err := mesh.Save(args[0], m)
	if err != nil {
		return err
	}

	fmt.Printf("wrote %s (%d nodes)\n", nodePath, len(m.Nodes))
	fmt.Printf("wrote %s (%d elements)\n", elePath, len(m.Elements))
	return nil
}

func sweepCompliance(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	values := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil || v < 0 {
			return fmt.Errorf("invalid compliance %q", a)
		}
		values[i] = v
	}

	factories := make([]sim.Factory, len(values))
	for i, v := range values {
		member := cfg.Clone()
		member.EdgeCompliance = v
		factories[i] = func() (*xpbd.SoftBody, []sim.Metric, error) {
			body, err := member.Body(logger)
			if err != nil {
				return nil, nil, err
			}
			return body, metrics.Default(body), nil
		}
	}

	fmt.Printf("sweeping edge compliance for %s (dt=%.4f, substeps=%d, frames=%d)\n\n", name, cfg.Dt, cfg.Substeps, cfg.Frames)

	start := time.Now()
	results, err := sim.NewEnsemble(factories...).Run(context.Background(), cfg.SimConfig())
	if err != nil {
		return err
	}

	fmt.Printf("%-12s  %-12s  %-12s  %-12s  %-12s\n", "compliance", "drop", "edge_strain", "volume_err", "stability")
	fmt.Println(strings.Repeat("-", 68))
	for i, r := range results {
		fmt.Printf("%-12g  %12.4f  %12.4f  %12.4f  %12.2f\n", values[i],
			r.Metrics["centroid_drop"], r.Metrics["edge_strain"], r.Metrics["volume_error"], r.Metrics["stability"])
	}
	fmt.Printf("\ncompleted in %v\n", time.Since(start))
	return nil
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
	fmt.Fprintln(w, "ID\tMESH\tTIME\tPARTICLES\tFRAMES\tDT\tEDGE\tVOLUME")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.4fs\t%g\t%g\n",
			run.ID,
			run.Mesh,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.Frames,
			run.Dt,
			run.EdgeCompliance,
			run.VolumeCompliance,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	recorded, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(recorded) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("mesh: %s\n", meta.Mesh)
	fmt.Printf("samples: %d\n\n", len(recorded))

	series := []struct {
		caption string
		value   func(sim.Frame) float64
	}{
		{"centroid height", func(f sim.Frame) float64 { return f.Centroid.Y() }},
		{"max edge error", func(f sim.Frame) float64 { return f.EdgeError }},
		{"max volume error", func(f sim.Frame) float64 { return f.VolumeError }},
	}

	for _, s := range series {
		data := make([]float64, len(recorded))
		for i, f := range recorded {
			data[i] = s.value(f)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
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
	recorded, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	if len(recorded) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"time", "cx", "cy", "cz", "edge_error", "volume_error"}); err != nil {
		return err
	}
	for _, f := range recorded {
		row := []string{
			strconv.FormatFloat(f.Time, 'f', 6, 64),
			strconv.FormatFloat(f.Centroid.X(), 'f', 6, 64),
			strconv.FormatFloat(f.Centroid.Y(), 'f', 6, 64),
			strconv.FormatFloat(f.Centroid.Z(), 'f', 6, 64),
			strconv.FormatFloat(f.EdgeError, 'f', 6, 64),
			strconv.FormatFloat(f.VolumeError, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	recorded, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}

	return storage.ExportJSON(os.Stdout, *meta, recorded)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	recorded, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}

	ts := make([]float64, len(recorded))
	hs := make([]float64, len(recorded))
	for i, f := range recorded {
		ts[i], hs[i] = f.Time, f.Centroid.Y()
	}

	svg := viz.SeriesSVG(ts, hs, 800, 400, "#00ffcc")
	if svg == "" {
		return fmt.Errorf("no data to plot")
	}
	return os.WriteFile(args[1], []byte(svg), 0644)
}

func snapshot(cmd *cobra.Command, args []string) error {
	cfg, _, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	body, err := cfg.Body(logger)
	if err != nil {
		return err
	}

	result, err := sim.New(body).Run(cmd.Context(), cfg.SimConfig())
	if err != nil {
		return err
	}
	for _, e := range result.Errors {
		logger.Warn("simulation stopped early", "err", e)
	}

	svg := viz.CanvasSVG(viz.Snapshot(body, 80, 40), 4, "#00ff00")
	if err := os.WriteFile(args[0], []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s after %d frames\n", args[0], result.StepsTaken)
	return nil
}

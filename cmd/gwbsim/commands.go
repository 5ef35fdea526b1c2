package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/gwbsim/internal/analysis"
	"github.com/san-kum/gwbsim/internal/automation"
	"github.com/san-kum/gwbsim/internal/config"
	"github.com/san-kum/gwbsim/internal/cosmology"
	"github.com/san-kum/gwbsim/internal/dynamo"
	"github.com/san-kum/gwbsim/internal/experiment"
	"github.com/san-kum/gwbsim/internal/export"
	"github.com/san-kum/gwbsim/internal/integrators"
	"github.com/san-kum/gwbsim/internal/population"
	"github.com/san-kum/gwbsim/internal/sfh"
	"github.com/san-kum/gwbsim/internal/sim"
	"github.com/san-kum/gwbsim/internal/storage"
	"github.com/san-kum/gwbsim/internal/store"
	"github.com/san-kum/gwbsim/internal/tui"
	"github.com/san-kum/gwbsim/internal/viz"
)

// referenceF anchors the f^(2/3) line drawn next to spectra.
const referenceF = 1e-3

// loadConfig applies --preset, then --config over it, then the flags the
// user actually set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		var err error
		if cfg, err = config.LoadOver(configFile, cfg); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("catalog") {
		cfg.Population.Path = catalogPath
	}
	if flags.Changed("sfh") {
		cfg.SFH.Model = sfhModel
	}
	if flags.Changed("data") || cfg.Output.Dir == "" {
		cfg.Output.Dir = dataDir
	}
	if !flags.Changed("log-level") && cfg.LogLevel != "" {
		if err := setupLogging(cfg.LogLevel); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func openStores(ctx context.Context, dir string) (*storage.Store, *store.RunIndex, error) {
	st := storage.New(dir)
	if err := st.Init(); err != nil {
		return nil, nil, err
	}
	idx, err := store.Open(ctx, filepath.Join(dir, store.IndexFile))
	if err != nil {
		return nil, nil, err
	}
	return st, idx, nil
}

func runBinning(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg, logrus.WithField("sfh", cfg.SFH.Model))
	if err := exp.Setup(); err != nil {
		return err
	}
	if err := exp.LoadCatalog(); err != nil {
		return err
	}

	st, idx, err := openStores(ctx, cfg.Output.Dir)
	if err != nil {
		return err
	}
	defer idx.Close()

	styles := viz.NewStyles(viz.GetTheme(theme))
	var res *sim.Result
	if withTUI {
		if logrus.GetLevel() > logrus.WarnLevel {
			logrus.SetLevel(logrus.WarnLevel)
		}
		res, err = tui.Run(ctx, "binning with "+exp.SFHName(), styles,
			func(ctx context.Context, obs dynamo.Observer) (*sim.Result, error) {
				exp.Engine().AddObserver(obs)
				return exp.Run(ctx)
			})
	} else {
		res, err = exp.Run(ctx)
	}
	if err != nil {
		return err
	}

	id, err := exp.Persist(ctx, st, idx, res)
	if err != nil {
		return err
	}
	meta, err := st.Load(id)
	if err != nil {
		return err
	}
	fmt.Println(viz.RenderSummary(styles, meta, analysis.Summarize(res)))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	_, idx, err := openStores(ctx, dataDir)
	if err != nil {
		return err
	}
	defer idx.Close()

	runs, err := idx.List(ctx, store.Filter{SFH: sfhFilter, Limit: limit})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTAG\tTIME\tSFH\tMODE\tSYSTEMS\tOMEGA\tELAPSED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%.4g\t%.2fs\n",
			run.ID,
			run.Tag,
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			run.SFH,
			run.Mode,
			run.Systems,
			run.OmegaTotal(),
			run.Elapsed,
		)
	}
	return w.Flush()
}

func loadRun(id string) (*storage.RunMetadata, *sim.Result, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(id)
	if err != nil {
		return nil, nil, err
	}
	res, err := st.LoadResult(id)
	if err != nil {
		return nil, nil, err
	}
	return meta, res, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, res, err := loadRun(args[0])
	if err != nil {
		return err
	}
	pts := analysis.Spectrum(res.Grid)
	graph := analysis.PlotSpectrum(pts, referenceF, 80, 15)
	if graph == "" {
		fmt.Printf("run %s has an empty spectrum\n", meta.ID)
		return nil
	}
	fmt.Printf("%s  sfh=%s  %.3g-%.3g Hz\n\n", meta.ID, meta.SFH, res.Grid.F.Lo(), res.Grid.F.Hi())
	fmt.Println(graph)
	fmt.Println()
	fmt.Println(analysis.PlotShells(analysis.Shells(res.Grid, res.Epochs), 80, 10))
	return nil
}

func summarizeRun(cmd *cobra.Command, args []string) error {
	meta, res, err := loadRun(args[0])
	if err != nil {
		return err
	}
	fmt.Println(viz.RenderSummary(viz.NewStyles(viz.GetTheme(theme)), meta, analysis.Summarize(res)))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, res, err := loadRun(args[0])
	if err != nil {
		return err
	}
	path := outPath
	if path == "" {
		path = meta.ID + "." + exportFormat
	}

	switch exportFormat {
	case "json":
		err = storage.ExportJSON(path, meta, res)
	case "arrow":
		err = storage.ExportArrow(path, res)
	case "svg":
		err = export.WriteSpectrumSVG(path, analysis.Spectrum(res.Grid), referenceF)
	default:
		return fmt.Errorf("unknown export format %q (json, arrow, svg)", exportFormat)
	}
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"run": meta.ID, "path": path}).Info("exported")
	return nil
}

func deleteRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	_, idx, err := openStores(ctx, dataDir)
	if err != nil {
		return err
	}
	defer idx.Close()
	return idx.Delete(ctx, args[0])
}

func reindexRuns(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, idx, err := openStores(ctx, dataDir)
	if err != nil {
		return err
	}
	defer idx.Close()
	n, err := idx.Rebuild(ctx, st)
	if err != nil {
		return err
	}
	logrus.WithField("runs", n).Info("index rebuilt")
	return nil
}

func output(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func writeZTable(cmd *cobra.Command, args []string) error {
	integ, err := integrators.New("rk4")
	if err != nil {
		return err
	}
	c, err := cosmology.New(cosmology.Planck18(), integ, zMax, config.DefaultCosmoSteps)
	if err != nil {
		return err
	}
	ages, zs, err := c.AgeRedshiftTable(zPoints)
	if err != nil {
		return err
	}

	w, closeFn, err := output(outPath)
	if err != nil {
		return err
	}
	if err := cosmology.WriteAgeTable(w, ages, zs); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, idx, err := openStores(ctx, base.Output.Dir)
	if err != nil {
		return err
	}
	defer idx.Close()

	r := &automation.Runner{Base: base, Store: st, Index: idx, Log: logrus.WithField("scenario", sc.Name)}
	results, err := r.Run(ctx, sc)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tSFH\tRUN\tOMEGA")
	for _, res := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.4g\n", res.Name, res.SFH, res.RunID, res.Omega)
	}
	w.Flush()
	return err
}

func listPresets(cmd *cobra.Command, args []string) error {
	fmt.Println("presets:")
	for _, p := range config.ListPresets() {
		fmt.Printf("  %s\n", p)
	}
	return nil
}

func tabulateSFH(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Println("models:")
		for _, name := range sfh.Names() {
			fmt.Printf("  %s\n", name)
		}
		return nil
	}

	cfg := config.DefaultConfig()
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return err
		}
	}
	opts := cfg.SFH
	opts.Model = args[0]
	model, err := sfh.New(opts, cfg.Policy())
	if err != nil {
		return err
	}
	if sfhPoints < 2 {
		return fmt.Errorf("need at least 2 points, got %d", sfhPoints)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "z\tpsi [Msun/yr/Mpc^3]\t(%s)\n", model.Name())
	for i := 0; i < sfhPoints; i++ {
		z := zMax * float64(i) / float64(sfhPoints-1)
		psi, err := model.Rate(z)
		if err != nil {
			fmt.Fprintf(w, "%g\t%s\n", z, err)
			continue
		}
		fmt.Fprintf(w, "%g\t%.5g\n", z, psi)
	}
	return w.Flush()
}

func preprocessSeBa(cmd *cobra.Command, args []string) error {
	cat, err := population.Load(args[0], population.FormatSeBa)
	if err != nil {
		return err
	}
	fields := logrus.Fields{"rows": cat.Rows, "systems": len(cat.Systems)}
	for _, name := range cat.Skipped.Names() {
		fields[name] = cat.Skipped.Get(name)
	}
	logrus.WithFields(fields).Info("catalog preprocessed")

	w, closeFn, err := output(outPath)
	if err != nil {
		return err
	}
	if err := population.WriteCSV(w, cat.Systems); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

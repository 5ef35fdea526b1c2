package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/gwbsim/internal/config"
)

var (
	dataDir  string
	logLevel string
	theme    string

	configFile  string
	preset      string
	catalogPath string
	sfhModel    string
	withTUI     bool

	sfhFilter string
	limit     int

	exportFormat string
	outPath      string

	zMax      float64
	zPoints   int
	sfhPoints int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "gwbsim",
		Short:         "gravitational-wave background from double white dwarf populations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel)
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", "night", "summary colour theme")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "bin a catalog, save and index the run",
		Args:  cobra.NoArgs,
		RunE:  runBinning,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "start from a preset configuration")
	runCmd.Flags().StringVar(&catalogPath, "catalog", "", "population catalog")
	runCmd.Flags().StringVar(&sfhModel, "sfh", "", "star formation history model")
	runCmd.Flags().BoolVar(&withTUI, "tui", false, "show a live progress view")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list indexed runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
	listCmd.Flags().StringVar(&sfhFilter, "sfh", "", "only runs with this SFH")
	listCmd.Flags().IntVar(&limit, "limit", 0, "maximum number of runs")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the spectrum and redshift shell contributions",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	summaryCmd := &cobra.Command{
		Use:   "summary [run_id]",
		Short: "spectral index, kind fractions and counters of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  summarizeRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as json, arrow or svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "json, arrow or svg")
	exportCmd.Flags().StringVar(&outPath, "out", "", "output file (default <run_id>.<format>)")

	deleteCmd := &cobra.Command{
		Use:   "delete [run_id]",
		Short: "remove a run from the index",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteRun,
	}

	reindexCmd := &cobra.Command{
		Use:   "reindex",
		Short: "rebuild the run index from the data directory",
		Args:  cobra.NoArgs,
		RunE:  reindexRuns,
	}

	ztableCmd := &cobra.Command{
		Use:   "ztable",
		Short: "write an age-redshift table",
		Args:  cobra.NoArgs,
		RunE:  writeZTable,
	}
	ztableCmd.Flags().Float64Var(&zMax, "max-z", config.DefaultMaxZ, "highest redshift")
	ztableCmd.Flags().IntVar(&zPoints, "points", config.DefaultTablePoints, "table rows")
	ztableCmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")

	sweepCmd := &cobra.Command{
		Use:   "sweep [scenario.yaml]",
		Short: "run every step of a scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&configFile, "config", "", "base config file (yaml)")
	sweepCmd.Flags().StringVar(&preset, "preset", "", "base preset")
	sweepCmd.Flags().StringVar(&catalogPath, "catalog", "", "population catalog")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	sfhCmd := &cobra.Command{
		Use:   "sfh [model]",
		Short: "list SFH models or tabulate one against redshift",
		Args:  cobra.MaximumNArgs(1),
		RunE:  tabulateSFH,
	}
	sfhCmd.Flags().Float64Var(&zMax, "max-z", config.DefaultMaxZ, "highest redshift")
	sfhCmd.Flags().IntVar(&sfhPoints, "points", 17, "rows")
	sfhCmd.Flags().StringVar(&configFile, "config", "", "config file providing sfh options")

	preprocessCmd := &cobra.Command{
		Use:   "preprocess [seba.dat]",
		Short: "derive catalog columns from a SeBa output file",
		Args:  cobra.ExactArgs(1),
		RunE:  preprocessSeBa,
	}
	preprocessCmd.Flags().StringVar(&outPath, "out", "", "output CSV (default stdout)")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, summaryCmd, exportCmd, deleteCmd, reindexCmd,
		ztableCmd, sweepCmd, presetsCmd, sfhCmd, preprocessCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logrus.WithError(err).Error("gwbsim failed")
		stop()
		os.Exit(1)
	}
}

func setupLogging(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetOutput(os.Stderr)
	return nil
}

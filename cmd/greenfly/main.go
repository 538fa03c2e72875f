// Package main provides the CLI entrypoint for greenfly.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/greenfly/internal/config"
	"github.com/verte-zerg/greenfly/internal/export"
	"github.com/verte-zerg/greenfly/internal/logging"
	"github.com/verte-zerg/greenfly/internal/model"
	"github.com/verte-zerg/greenfly/internal/sim"
	"github.com/verte-zerg/greenfly/internal/stats"
	"github.com/verte-zerg/greenfly/internal/store"
	"github.com/verte-zerg/greenfly/internal/tui"
	"github.com/verte-zerg/greenfly/internal/validate"
)

const (
	defaultJuveniles    = 10
	defaultAdults       = 10
	defaultSeniles      = 10
	defaultGenerations  = 5
	defaultTrigger      = 100
	defaultBirthRate    = 2.0
	defaultJuvenileSurv = 1.0
	defaultAdultSurv    = 1.0
	defaultSenileSurv   = 0.0
	defaultLogLevel     = "warn"
	defaultHistoryLimit = 20
	defaultPlotWidth    = 80
	plotHeight          = 10
)

var (
	logLevel string
	dbPath   string

	runJuveniles    int
	runAdults       int
	runSeniles      int
	runGenerations  int
	runTrigger      int
	runBirthRate    float64
	runJuvenileSurv float64
	runAdultSurv    float64
	runSenileSurv   float64
	runSeed         int64
	runPlot         bool
	runThousands    bool
	runCSV          string
	runChart        string
	runYAML         string
	runForce        bool
	runSave         bool

	historyLimit int
	exportCSV    string
	exportChart  string
	exportYAML   string
	exportForce  bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "greenfly",
		Short:         "Greenfly population model",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runInteractiveCmd,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "run archive path (default: XDG data dir)")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newHistoryCmd())

	return rootCmd
}

// settings is the resolved file configuration shared by every command.
type settings struct {
	file       config.FileConfig
	validation validate.Validation
	logger     *slog.Logger
	dbPath     string
	autoSave   bool
}

func loadSettings(cmd *cobra.Command) (settings, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	level := logLevel
	applyStringConfig(cmd, "log-level", &level, fileCfg.Logging.Level)
	path := dbPath
	if path == "" {
		path = config.DefaultDBPath()
	}
	applyStringConfig(cmd, "db", &path, fileCfg.Archive.DBPath)

	minGen, maxGen := fileCfg.Validation.Bounds(validate.DefaultMinGenerations, validate.DefaultMaxGenerations)
	if minGen < 1 || maxGen < minGen {
		return settings{}, fmt.Errorf("invalid generation bounds in config: %d-%d", minGen, maxGen)
	}
	autoSave := true
	if fileCfg.Archive.AutoSave != nil {
		autoSave = *fileCfg.Archive.AutoSave
	}
	return settings{
		file:       fileCfg,
		validation: validate.New(minGen, maxGen),
		logger:     logging.NewLogger(level, os.Stderr),
		dbPath:     path,
		autoSave:   autoSave,
	}, nil
}

func openStore(path string) (*store.Store, func(), error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	closeFn := func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}
	return st, closeFn, nil
}

func runInteractiveCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	cfg := tui.Config{
		Validation: s.validation,
		Logger:     s.logger,
		NewSource:  sim.NewSource,
	}
	if s.file.Model.Complete() {
		var defaults model.Options
		s.file.Model.Apply(&defaults)
		if err := s.validation.Options(defaults); err != nil {
			s.logger.Warn("ignoring configured starting options", "error", err)
		} else {
			cfg.Defaults = &defaults
		}
	}

	if s.autoSave {
		st, closeStore, err := openStore(s.dbPath)
		if err != nil {
			return err
		}
		defer closeStore()
		cfg.Archive = st
	}

	program := tea.NewProgram(tui.NewModel(cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the model once and print the results",
		Args:  cobra.NoArgs,
		RunE:  runModelCmd,
	}
	cmd.Flags().IntVar(&runJuveniles, "juveniles", defaultJuveniles, "starting juvenile population")
	cmd.Flags().IntVar(&runAdults, "adults", defaultAdults, "starting adult population")
	cmd.Flags().IntVar(&runSeniles, "seniles", defaultSeniles, "starting senile population")
	cmd.Flags().IntVar(&runGenerations, "generations", defaultGenerations, "number of generations")
	cmd.Flags().IntVar(&runTrigger, "trigger", defaultTrigger, "total population that triggers disease")
	cmd.Flags().Float64Var(&runBirthRate, "birth-rate", defaultBirthRate, "juveniles born per adult")
	cmd.Flags().Float64Var(&runJuvenileSurv, "juvenile-survival", defaultJuvenileSurv, "juvenile survival rate (0-1)")
	cmd.Flags().Float64Var(&runAdultSurv, "adult-survival", defaultAdultSurv, "adult survival rate (0-1)")
	cmd.Flags().Float64Var(&runSenileSurv, "senile-survival", defaultSenileSurv, "senile survival rate (0-1)")
	cmd.Flags().Int64Var(&runSeed, "seed", 0, "seed for the disease rate draws (default: time based)")
	cmd.Flags().BoolVar(&runPlot, "plot", false, "print population curves")
	cmd.Flags().BoolVar(&runThousands, "thousands", false, "print counts in thousands")
	cmd.Flags().StringVar(&runCSV, "csv", "", "write generations CSV to path")
	cmd.Flags().StringVar(&runChart, "chart", "", "write a PNG chart to path")
	cmd.Flags().StringVar(&runYAML, "yaml", "", "write options and generations as YAML to path")
	cmd.Flags().BoolVar(&runForce, "force", false, "overwrite existing output files")
	cmd.Flags().BoolVar(&runSave, "save", false, "archive the run")
	return cmd
}

func runModelCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	m := s.file.Model
	applyIntConfig(cmd, "juveniles", &runJuveniles, m.StartingJuveniles)
	applyIntConfig(cmd, "adults", &runAdults, m.StartingAdults)
	applyIntConfig(cmd, "seniles", &runSeniles, m.StartingSeniles)
	applyIntConfig(cmd, "generations", &runGenerations, m.Generations)
	applyIntConfig(cmd, "trigger", &runTrigger, m.DiseaseTrigger)
	applyFloatConfig(cmd, "birth-rate", &runBirthRate, m.AdultBirthRate)
	applyFloatConfig(cmd, "juvenile-survival", &runJuvenileSurv, m.JuvenileSurvivalRate)
	applyFloatConfig(cmd, "adult-survival", &runAdultSurv, m.AdultSurvivalRate)
	applyFloatConfig(cmd, "senile-survival", &runSenileSurv, m.SenileSurvivalRate)
	applyBoolConfig(cmd, "save", &runSave, s.file.Archive.AutoSave)

	opts := model.Options{
		StartingJuveniles:    runJuveniles,
		StartingAdults:       runAdults,
		StartingSeniles:      runSeniles,
		Generations:          runGenerations,
		JuvenileSurvivalRate: runJuvenileSurv,
		AdultSurvivalRate:    runAdultSurv,
		SenileSurvivalRate:   runSenileSurv,
		AdultBirthRate:       runBirthRate,
		DiseaseTrigger:       runTrigger,
	}
	if err := s.validation.Options(opts); err != nil {
		return err
	}

	source := sim.NewSource()
	if cmd.Flags().Changed("seed") {
		source = sim.NewSeededSource(runSeed)
	}
	engine := sim.NewEngine(opts, sim.WithSource(source), sim.WithLogger(s.logger))
	engine.RunAllGenerations()
	generations := engine.Generations()

	out := cmd.OutOrStdout()
	if err := printRun(out, opts, generations, runThousands, runPlot); err != nil {
		return err
	}

	if err := writeOutputs(s.logger, opts, generations, runCSV, runChart, runYAML, runForce); err != nil {
		return err
	}

	if runSave {
		st, closeStore, err := openStore(s.dbPath)
		if err != nil {
			return err
		}
		defer closeStore()
		id, err := st.InsertRun(context.Background(), opts, generations)
		if err != nil {
			return fmt.Errorf("failed to archive run: %w", err)
		}
		s.logger.Info("run archived", "id", id)
		if _, err := fmt.Fprintf(out, "Archived run %d\n", id); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func printRun(w io.Writer, opts model.Options, generations []model.Generation, thousands, plot bool) error {
	if err := stats.RenderOptions(w, opts); err != nil {
		return fmt.Errorf("failed to write options: %w", err)
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	render := stats.RenderGenerations
	if thousands {
		render = stats.RenderGenerationsInThousands
	}
	if err := render(w, generations); err != nil {
		return fmt.Errorf("failed to write generations: %w", err)
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderSummary(w, stats.Summarize(generations)); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	if plot {
		if _, err := fmt.Fprintln(w); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if err := stats.RenderCurvesWithSize(w, generations, terminalWidth(), plotHeight, false); err != nil {
			return fmt.Errorf("failed to write curves: %w", err)
		}
	}
	return nil
}

func writeOutputs(logger *slog.Logger, opts model.Options, generations []model.Generation, csvPath, chartPath, yamlPath string, force bool) error {
	outputs := []struct {
		kind  string
		path  string
		write func(path string) error
	}{
		{"csv", csvPath, func(path string) error { return export.WriteCSVFile(path, generations, force) }},
		{"chart", chartPath, func(path string) error { return export.WriteChartFile(path, generations, force) }},
		{"yaml", yamlPath, func(path string) error { return export.WriteYAMLFile(path, opts, generations, force) }},
	}
	for _, output := range outputs {
		if output.path == "" {
			continue
		}
		abs, err := filepath.Abs(output.path)
		if err != nil {
			return fmt.Errorf("invalid %s path: %w", output.kind, err)
		}
		if err := output.write(abs); err != nil {
			if errors.Is(err, export.ErrFileExists) {
				return fmt.Errorf("file already exists at %s (use --force to overwrite)", abs)
			}
			return fmt.Errorf("failed to write %s: %w", output.kind, err)
		}
		logger.Info("output written", "kind", output.kind, "path", abs)
		logErrf("Generations data written to %s\n", abs)
	}
	return nil
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultPlotWidth
	}
	return width
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived runs",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLimit, "limit", defaultHistoryLimit, "number of runs to list (0 for all)")

	showCmd := &cobra.Command{
		Use:   "show ID",
		Short: "Print an archived run",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShowCmd,
	}
	exportCmd := &cobra.Command{
		Use:   "export ID",
		Short: "Export an archived run",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryExportCmd,
	}
	exportCmd.Flags().StringVar(&exportCSV, "csv", "", "write generations CSV to path")
	exportCmd.Flags().StringVar(&exportChart, "chart", "", "write a PNG chart to path")
	exportCmd.Flags().StringVar(&exportYAML, "yaml", "", "write options and generations as YAML to path")
	exportCmd.Flags().BoolVar(&exportForce, "force", false, "overwrite existing output files")
	rmCmd := &cobra.Command{
		Use:   "rm ID",
		Short: "Delete an archived run",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryRmCmd,
	}
	cmd.AddCommand(showCmd, exportCmd, rmCmd)
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if historyLimit < 0 {
		return fmt.Errorf("--limit must be >= 0")
	}
	st, closeStore, err := openStore(s.dbPath)
	if err != nil {
		return err
	}
	defer closeStore()
	runs, err := st.ListRuns(context.Background(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if err := stats.RenderRuns(cmd.OutOrStdout(), runs); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	return nil
}

func loadRun(cmd *cobra.Command, arg string) (settings, model.RunRecord, error) {
	id, err := parseRunID(arg)
	if err != nil {
		return settings{}, model.RunRecord{}, err
	}
	s, err := loadSettings(cmd)
	if err != nil {
		return settings{}, model.RunRecord{}, err
	}
	st, closeStore, err := openStore(s.dbPath)
	if err != nil {
		return settings{}, model.RunRecord{}, err
	}
	defer closeStore()
	record, err := st.GetRun(context.Background(), id)
	if err != nil {
		return settings{}, model.RunRecord{}, fmt.Errorf("failed to load run: %w", err)
	}
	return s, record, nil
}

func runHistoryShowCmd(cmd *cobra.Command, args []string) error {
	_, record, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "Run %d (%s)\n\n", record.ID, record.CreatedAt.Local().Format("2006-01-02 15:04:05")); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return printRun(out, record.Options, record.Generations, false, false)
}

func runHistoryExportCmd(cmd *cobra.Command, args []string) error {
	if exportCSV == "" && exportChart == "" && exportYAML == "" {
		return fmt.Errorf("at least one of --csv, --chart or --yaml is required")
	}
	s, record, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}
	return writeOutputs(s.logger, record.Options, record.Generations, exportCSV, exportChart, exportYAML, exportForce)
}

func runHistoryRmCmd(cmd *cobra.Command, args []string) error {
	id, err := parseRunID(args[0])
	if err != nil {
		return err
	}
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(s.dbPath)
	if err != nil {
		return err
	}
	defer closeStore()
	if err := st.DeleteRun(context.Background(), id); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	s.logger.Info("run deleted", "id", id)
	return nil
}

func parseRunID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid run id %q", arg)
	}
	return id, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# greenfly configuration
# Uncomment a value to enable it. CLI flags override config values.

[model]
# Starting options for "greenfly run". The interactive menu starts
# pre-configured only when every key below is set.
# juveniles = %d
# adults = %d
# seniles = %d
# generations = %d
# trigger = %d              # Total population that triggers disease
# birth-rate = %.1f         # Juveniles born per adult
# juvenile-survival = %.1f  # 0-1
# adult-survival = %.1f     # 0-1
# senile-survival = %.1f    # 0-1

[validation]
# min-generations = %d
# max-generations = %d

[logging]
# level = %q               # debug, info, warn or error

[archive]
# auto-save = true          # Archive interactive runs (and "run" without --save)
# db-path = "/path/to/greenfly.db"
`,
		defaultJuveniles,
		defaultAdults,
		defaultSeniles,
		defaultGenerations,
		defaultTrigger,
		defaultBirthRate,
		defaultJuvenileSurv,
		defaultAdultSurv,
		defaultSenileSurv,
		validate.DefaultMinGenerations,
		validate.DefaultMaxGenerations,
		defaultLogLevel,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

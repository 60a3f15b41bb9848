// Package cli systemscheck-import 命令行：批量行校验/导入、工作簿导入、种子数据
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"systemscheck/internal/config"
	"systemscheck/internal/importer"
	"systemscheck/internal/logger"
	"systemscheck/internal/store"
)

// app 一次命令执行的共享状态
type app struct {
	configPath string
	dataDir    string
	logLevel   string
	workers    int
	strict     bool
	jsonOut    bool

	cfg   *config.AppConfig
	store *store.Store
	imp   *importer.Coordinator
}

// NewRootCmd 构建命令树
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "systemscheck-import",
		Short: "Validate and import SystemsCheck audit scorecards",
		Long: `systemscheck-import validates and imports SystemsCheck scorecards into the local store.

Batch rows (JSON) carry one row per facility and month with eight system scores.
Workbooks (.xlsx) are extracted sheet by sheet, matched against the criteria catalog,
scored, and validated before commit.`,
		SilenceUsage:       true,
		PersistentPreRunE:  func(cmd *cobra.Command, args []string) error { return a.open(cmd) },
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return a.close() },
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "Path to config.toml (default: beside the executable)")
	pf.StringVar(&a.dataDir, "data-dir", "", "Data directory (overrides config)")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level (trace|debug|info|warn|error)")
	pf.IntVarP(&a.workers, "workers", "w", 0, "Parallel workers (overrides config)")
	pf.BoolVar(&a.strict, "strict-ambiguity", false, "Treat near-tied facility matches as errors")
	pf.BoolVar(&a.jsonOut, "json", false, "Print results as JSON")

	root.AddCommand(newValidateCmd(a), newImportCmd(a), newWorkbookCmd(a), newSeedCmd(a))
	return root
}

// Execute 执行命令行
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) open(cmd *cobra.Command) error {
	path := a.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, _, err := config.LoadFile(path)
	if err != nil {
		return err
	}
	if a.dataDir != "" {
		cfg.Data.DataDir = a.dataDir
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.workers > 0 {
		cfg.Import.Workers = a.workers
	}
	if cmd.Flags().Changed("strict-ambiguity") {
		cfg.Matching.StrictAmbiguity = a.strict
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	a.cfg = cfg

	if _, err := config.EnsureDataDir(cfg); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	st, err := store.New(config.DBPath(cfg))
	if err != nil {
		return err
	}
	a.store = st

	log := logger.New(logger.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: "systemscheck-import",
		Writer:  cmd.ErrOrStderr(),
	})
	opts := importer.OptionsFromConfig(cfg)
	opts.Logger = &log
	imp, err := importer.NewCoordinator(importer.Deps{
		Facilities: st,
		Catalog:    st,
		Scorecards: st,
		ImportLog:  st,
	}, opts)
	if err != nil {
		return err
	}
	a.imp = imp
	return nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"systemscheck/internal/config"
	"systemscheck/internal/importer"
	"systemscheck/internal/logger"
	"systemscheck/internal/server"
	"systemscheck/internal/store"
)

var (
	configPath = flag.String("config", "", "配置文件路径 (默认为可执行文件同目录下的 config.toml)")
	port       = flag.Int("port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	devMode    = flag.Bool("dev", false, "开发模式")
	dataDir    = flag.String("dataDir", "", "数据目录 (覆盖配置文件)")
	seedPath   = flag.String("seed", "", "启动时加载的种子文件 (TOML)")
)

func main() {
	flag.Parse()

	path := *configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, info, err := config.LoadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败，使用默认配置: %v\n", err)
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}

	// 命令行参数覆盖配置
	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}

	logger.Init(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Service: "systemscheck"})
	log := logger.Named("main")
	log.Info().Str("config", path).Bool("config_found", info.FileFound).Msg("configuration loaded")

	dir, err := config.EnsureDataDir(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("create data dir failed")
	}
	log.Info().Str("data_dir", dir).Msg("data directory ready")

	st, err := store.New(config.DBPath(cfg))
	if err != nil {
		log.Fatal().Err(err).Msg("open database failed")
	}
	defer st.Close()

	if *seedPath != "" {
		seed, err := store.LoadSeed(*seedPath)
		if err != nil {
			log.Fatal().Err(err).Msg("load seed failed")
		}
		if err := st.ApplySeed(context.Background(), seed, *seedPath); err != nil {
			log.Fatal().Err(err).Msg("apply seed failed")
		}
		log.Info().Int("facilities", len(seed.Facilities)).Int("criteria", len(seed.Criteria)).Msg("seed applied")
	}

	imp, err := importer.NewCoordinator(importer.Deps{
		Facilities: st,
		Catalog:    st,
		Scorecards: st,
		ImportLog:  st,
	}, importer.OptionsFromConfig(cfg))
	if err != nil {
		log.Fatal().Err(err).Msg("create importer failed")
	}

	srv := server.NewServer(cfg, st, imp)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	// 等待信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server stopped")
		}
		return
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

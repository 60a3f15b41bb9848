// Package server HTTP 服务：gin 路由、CORS、访问日志与优雅关闭
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"systemscheck/internal/api"
	"systemscheck/internal/config"
	"systemscheck/internal/importer"
	"systemscheck/internal/logger"
	"systemscheck/internal/store"
)

// Server HTTP服务器
type Server struct {
	router *gin.Engine
	srv    *http.Server
	store  *store.Store
	api    *api.Handler
	log    *zerolog.Logger
}

// NewServer 创建服务器；store 由调用方打开并负责关闭
func NewServer(cfg *config.AppConfig, st *store.Store, imp *importer.Coordinator) *Server {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	s := &Server{
		router: router,
		store:  st,
		api:    api.NewHandler(st, imp),
		log:    logger.Named("http"),
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	s.setupRoutes()
	return s
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	s.router.Use(gin.Recovery(), s.accessLog(), cors())

	api := s.router.Group("/api")
	{
		s.api.RegisterRoutes(api)
	}
	s.router.GET("/healthz", func(c *gin.Context) {
		if err := s.store.DB().PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// accessLog 每个请求一条结构化日志；5xx 记为 error，慢请求记为 warn
func (s *Server) accessLog() gin.HandlerFunc {
	const slow = 2 * time.Second
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		elapsed := time.Since(start)
		status := c.Writer.Status()
		evt := s.log.Info()
		switch {
		case status >= http.StatusInternalServerError:
			evt = s.log.Error()
		case elapsed >= slow:
			evt = s.log.Warn()
		}
		evt.Int("status", status).
			Dur("elapsed", elapsed).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("bytes", c.Writer.Size()).
			Msg("request done")
	}
}

// Handler 返回 http.Handler（用于测试）
func (s *Server) Handler() http.Handler { return s.router }

// Run 启动服务器并阻塞，正常关闭时返回 nil
func (s *Server) Run() error {
	s.log.Info().Str("addr", s.srv.Addr).Msg("http listening")
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

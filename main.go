package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	pool, err := newDBPool(context.Background(), cfg.DBURL)
	if err != nil {
		log.Fatalw("database unavailable", "error", err)
	}
	defer pool.Close()
	log.Info("DB pool ready")

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	h := &Handler{
		db:           &pgStore{pool: pool},
		insights:     newGenerateClient(cfg.GenerateURL, cfg.GenerateModel, cfg.GenerateTimeout),
		log:          log,
		authRequired: cfg.AuthRequired,
		now:          time.Now,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h.newRouter(cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("listening", "addr", srv.Addr, "auth_required", cfg.AuthRequired, "generate_url", cfg.GenerateURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("graceful shutdown failed", "error", err)
	}
}

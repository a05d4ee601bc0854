package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mishannn/landparser-go/internal/api"
	"github.com/mishannn/landparser-go/internal/config"
	"github.com/mishannn/landparser-go/internal/export"
	"github.com/mishannn/landparser-go/internal/logger"
	"github.com/mishannn/landparser-go/internal/pipeline"
	"github.com/mishannn/landparser-go/internal/session"
)

const shutdownTimeout = 10 * time.Second

func newCache(ctx context.Context, cfg *config.Config, l *zap.Logger) (pipeline.Cache, func()) {
	if cfg.Redis.Address == "" {
		return pipeline.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.MaxEntries), func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Address,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		l.Warn("redis is unavailable, falling back to memory cache", zap.String("address", cfg.Redis.Address), zap.Error(err))
		rdb.Close()
		return pipeline.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.MaxEntries), func() {}
	}

	return pipeline.NewRedisCache(rdb, cfg.Cache.TTL), func() { rdb.Close() }
}

func main() {
	var configFilePath string
	flag.StringVar(&configFilePath, "c", "config.yaml", "config file path")

	var envFilePath string
	flag.StringVar(&envFilePath, "env", ".env", "env file with provider credentials")

	flag.Parse()

	cfg, err := config.Load(configFilePath, envFilePath)
	if err != nil {
		log.Fatalf("can't read config: %s", err)
	}

	l, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("can't create logger: %s", err)
	}
	defer l.Sync()

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache, closeCache := newCache(ctx, cfg, l)
	defer closeCache()

	p := pipeline.NewPipeline(cfg.Pipeline(), cache, l)
	state := session.NewState(cfg.Server.Debounce, cfg.Server.MaxSelections)
	server := api.NewServer(p, state, export.NewExporter(l), cfg.Credentials, l)

	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: server.Router(),
	}

	serveErr := make(chan error, 1)
	go func() {
		l.Info("server started", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			l.Error("can't serve http", zap.Error(err))
			return
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error("can't shutdown server", zap.Error(err))
	}
	l.Info("server stopped")
}

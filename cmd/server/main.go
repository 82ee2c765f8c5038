package main

//go:generate swag init -d ../../ -g cmd/server/main.go -o ../../internal/docs --parseInternal

// @title           Book API
// @version         1.0.0
// @description     A simple Book API

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @BasePath  /

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
	"github.com/snnyvrz/books-crud-api/internal/config"
	"github.com/snnyvrz/books-crud-api/internal/db"
	"github.com/snnyvrz/books-crud-api/internal/logging"
	"github.com/snnyvrz/books-crud-api/internal/metrics"
	"github.com/snnyvrz/books-crud-api/internal/server"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const appVersion = "1.0.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	startTime := time.Now()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	gin.SetMode(cfg.GinMode)

	logger, err := logging.New(cfg.LogLevel, cfg.GinMode)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	database, err := db.ConnectWithRetry(cfg, logger)
	if err != nil {
		logger.Error("database connection failed", zap.String("driver", cfg.DB.Driver), zap.Error(err))
		return err
	}
	defer func() {
		if err := db.Close(database); err != nil {
			logger.Warn("closing database", zap.Error(err))
		}
	}()

	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	e, err := server.New(server.Options{
		DB:        database,
		Driver:    cfg.DB.Driver,
		Logger:    logger,
		Metrics:   metrics.NewManager(),
		Version:   appVersion,
		StartTime: startTime,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	nCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(nCtx)

	g.Go(func() error {
		logger.Info("api server starting",
			zap.String("addr", cfg.Addr),
			zap.String("gin_mode", cfg.GinMode),
			zap.String("db_driver", cfg.DB.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()

		if nCtx.Err() != nil {
			logger.Info("api server stopping. reason: requested to stop")
		} else {
			logger.Info("api server stopping. reason: errored at running")
		}

		sCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		err := srv.Shutdown(sCtx)
		switch {
		case err == nil:
			logger.Info("api server graceful shutdown succeeded")
		case errors.Is(err, context.DeadlineExceeded):
			logger.Warn("api server graceful shutdown timed out")
		default:
			logger.Warn("api server graceful shutdown failed", zap.Error(err))
		}

		if err != nil {
			logger.Warn("api server going to force shutdown", zap.Error(srv.Close()))
		}
		return nil
	})

	err = g.Wait()
	logger.Info("api server stopped", zap.String("addr", cfg.Addr), zap.Error(err))
	return err
}

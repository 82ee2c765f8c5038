package db

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/snnyvrz/books-crud-api/internal/config"
	"github.com/snnyvrz/books-crud-api/internal/logging"
	"github.com/snnyvrz/books-crud-api/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.New()
	cfg.DB.Path = filepath.Join(t.TempDir(), "books.db")
	cfg.DB.MaxAttempts = 1
	return cfg
}

func TestConnectWithRetry_SQLite(t *testing.T) {
	cfg := sqliteConfig(t)

	database, err := ConnectWithRetry(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("expected connection, got error: %v", err)
	}
	t.Cleanup(func() { _ = Close(database) })

	if err := Migrate(database); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	if !database.Migrator().HasTable(&model.Book{}) {
		t.Errorf("expected books table to exist after migration")
	}

	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	if got := sqlDB.Stats().MaxOpenConnections; got != 1 {
		t.Errorf("expected sqlite pool capped at 1 connection, got %d", got)
	}
}

func TestDialector_UnsupportedDriver(t *testing.T) {
	cfg := config.New()
	cfg.DB.Driver = "oracle"

	if _, err := Dialector(cfg); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestDialector_KnownDrivers(t *testing.T) {
	for _, driver := range []string{config.DriverSQLite, config.DriverPostgres, config.DriverMySQL} {
		cfg := config.New()
		cfg.DB.Driver = driver

		d, err := Dialector(cfg)
		if err != nil {
			t.Fatalf("driver %s: unexpected error %v", driver, err)
		}
		if d.Name() != driver {
			t.Errorf("expected dialector %s, got %s", driver, d.Name())
		}
	}
}

func TestIsFatal(t *testing.T) {
	authErr := fmt.Errorf("connect: %w", &pgconn.PgError{Code: "28P01"})
	if !isFatal(authErr) {
		t.Errorf("expected invalid_password to be fatal")
	}

	if isFatal(fmt.Errorf("connect: %w", &pgconn.PgError{Code: "57P03"})) {
		t.Errorf("expected cannot_connect_now to be retried")
	}

	if isFatal(errors.New("connection refused")) {
		t.Errorf("expected plain errors to be retried")
	}
}

func TestSessionMiddleware_BindsSessionToRequest(t *testing.T) {
	cfg := sqliteConfig(t)
	database, err := ConnectWithRetry(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { _ = Close(database) })

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SessionMiddleware(database))

	var seen *gorm.DB
	r.GET("/probe", func(c *gin.Context) {
		seen = FromContext(c.Request.Context(), nil)
		c.Status(http.StatusNoContent)
	})

	req, _ := http.NewRequest(http.MethodGet, "/probe", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}
	if seen == nil {
		t.Fatalf("expected a session in the request context")
	}
	if seen.Statement.Context == nil {
		t.Errorf("expected session to carry the request context")
	}
}

func TestFromContext_FallsBackWithoutMiddleware(t *testing.T) {
	cfg := sqliteConfig(t)
	database, err := ConnectWithRetry(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { _ = Close(database) })

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	session := FromContext(req.Context(), database)
	if session == nil {
		t.Fatalf("expected fallback session")
	}
	if session.Statement.Context != req.Context() {
		t.Errorf("expected fallback session bound to the given context")
	}
}

func TestSessionMiddleware_ReleasesConnectionOnEveryExitPath(t *testing.T) {
	cfg := sqliteConfig(t)
	database, err := ConnectWithRetry(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { _ = Close(database) })

	if err := Migrate(database); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(logging.Recovery(zap.NewNop()), SessionMiddleware(database))

	r.GET("/ok", func(c *gin.Context) {
		var count int64
		if err := FromContext(c.Request.Context(), nil).Model(&model.Book{}).Count(&count).Error; err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})
	r.GET("/err", func(c *gin.Context) {
		err := FromContext(c.Request.Context(), nil).Exec("SELECT * FROM no_such_table").Error
		if err == nil {
			t.Errorf("expected statement against a missing table to fail")
		}
		c.AbortWithStatus(http.StatusInternalServerError)
	})
	r.GET("/abort", func(c *gin.Context) {
		var books []model.Book
		_ = FromContext(c.Request.Context(), nil).Find(&books).Error
		c.AbortWithStatus(http.StatusBadRequest)
	})
	r.GET("/panic", func(c *gin.Context) {
		var books []model.Book
		_ = FromContext(c.Request.Context(), nil).Find(&books).Error
		panic("handler blew up")
	})
	r.GET("/cancelled", func(c *gin.Context) {
		var books []model.Book
		if err := FromContext(c.Request.Context(), nil).Find(&books).Error; err == nil {
			t.Errorf("expected statement on a cancelled context to fail")
		}
		c.AbortWithStatus(http.StatusServiceUnavailable)
	})

	cases := []struct {
		path   string
		status int
	}{
		{"/err", http.StatusInternalServerError},
		{"/abort", http.StatusBadRequest},
		{"/panic", http.StatusInternalServerError},
		{"/cancelled", http.StatusServiceUnavailable},
		{"/ok", http.StatusOK},
	}

	for _, tc := range cases {
		req, _ := http.NewRequest(http.MethodGet, tc.path, nil)
		if tc.path == "/cancelled" {
			ctx, cancel := context.WithCancel(req.Context())
			cancel()
			req = req.WithContext(ctx)
		}

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != tc.status {
			t.Errorf("%s: expected status %d, got %d", tc.path, tc.status, w.Code)
		}
		if inUse := sqlDB.Stats().InUse; inUse != 0 {
			t.Errorf("%s: expected no connections in use after the request, got %d", tc.path, inUse)
		}
	}
}

// Package server assembles the gin engine: middleware, routes and docs.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/snnyvrz/books-crud-api/internal/db"
	"github.com/snnyvrz/books-crud-api/internal/docs"
	"github.com/snnyvrz/books-crud-api/internal/handler"
	"github.com/snnyvrz/books-crud-api/internal/logging"
	"github.com/snnyvrz/books-crud-api/internal/metrics"
	"github.com/snnyvrz/books-crud-api/internal/repository"
	"github.com/snnyvrz/books-crud-api/internal/validation"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Options struct {
	DB        *gorm.DB
	Driver    string
	Logger    *zap.Logger
	Metrics   *metrics.Manager
	Version   string
	StartTime time.Time
}

// CORSConfig allows any origin to call the API.
func CORSConfig() cors.Config {
	return cors.Config{
		AllowAllOrigins: true,
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowHeaders:  []string{"*"},
		ExposeHeaders: []string{logging.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
}

func New(opts Options) (*gin.Engine, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("server: database is required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewManager()
	}
	if opts.StartTime.IsZero() {
		opts.StartTime = time.Now()
	}

	sqlDB, err := opts.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("server: underlying sql.DB: %w", err)
	}

	validation.RegisterJSONTagNames()

	e := gin.New()

	if err := e.SetTrustedProxies([]string{
		"127.0.0.1",
		"::1",
	}); err != nil {
		return nil, fmt.Errorf("server: trusted proxies: %w", err)
	}

	e.Use(
		logging.Middleware(opts.Logger),
		opts.Metrics.Middleware(),
		logging.Recovery(opts.Logger),
		cors.New(CORSConfig()),
	)

	e.GET("/", handler.Root)

	healthHandler := handler.NewHealthHandler(sqlDB, opts.Driver, opts.StartTime, opts.Version)
	healthHandler.RegisterRoutes(e)

	e.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))

	docs.SwaggerInfo.BasePath = "/"
	e.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := e.Group("")
	api.Use(db.SessionMiddleware(opts.DB))
	{
		bookHandler := handler.NewBookHandler(repository.NewGormBookRepository(opts.DB), opts.Logger)
		bookHandler.RegisterRoutes(api)
	}

	return e, nil
}

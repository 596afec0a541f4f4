package bootstrap

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	app "github.com/mohammadpnp/csv-user-import/internal/application/user"
	"github.com/mohammadpnp/csv-user-import/internal/infrastructure/repository"
	httpecho "github.com/mohammadpnp/csv-user-import/internal/interfaces/http/echo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func NewHTTPServer(db *gorm.DB, sweepWaitlist app.SweepWaitlist, logger *zap.Logger) *echo.Echo {
	server := echo.New()
	server.HideBanner = true

	server.Use(middleware.Recover())
	server.Use(middleware.RequestID())
	server.Use(middleware.BodyLimit("10M"))
	server.Use(requestLogger(logger))

	importJobRepo := repository.NewImportJobRepository(db)
	startImport := app.NewStartImportUsersFromCSV(importJobRepo)
	importHandler := httpecho.NewImportHandler(startImport)
	getImportJob := app.NewGetImportJob(importJobRepo)
	jobHandler := httpecho.NewJobHandler(getImportJob)

	var sweepHandler *httpecho.SweepHandler
	if sweepWaitlist != nil {
		sweepHandler = httpecho.NewSweepHandler(sweepWaitlist)
	}

	httpecho.RegisterRoutes(server, importHandler, jobHandler, sweepHandler)

	server.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return server
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				logger.Error("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Info("request", fields...)
			return nil
		},
	})
}

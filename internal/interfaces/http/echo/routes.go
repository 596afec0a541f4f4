package echo

import (
	e "github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes mounts the handlers that are not nil.
func RegisterRoutes(server *e.Echo, importHandler *ImportHandler, jobHandler *JobHandler, sweepHandler *SweepHandler) {
	if importHandler != nil {
		server.POST("/api/v1/imports/users", importHandler.ImportUsers)
	}
	if jobHandler != nil {
		server.GET("/api/v1/imports/:id", jobHandler.GetImportJob)
	}
	if sweepHandler != nil {
		server.POST("/api/v1/waitlist/sweeps", sweepHandler.SweepWaitlist)
	}
	server.GET("/metrics", e.WrapHandler(promhttp.Handler()))
}

package handlers

import (
	"time"

	"data-admin/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"
)

// NewRouter wires the API routes onto a fresh gin engine.
func NewRouter(a *API, log logr.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(log))

	api := r.Group(services.APIBasePath)
	{
		api.GET("/configuration", a.GetConfig)

		api.GET("/data", a.GetData)
		api.GET("/data/*path", a.GetData)
		api.PUT("/data/*path", a.PutData)
		api.DELETE("/data/*path", a.DeleteData)
	}
	return r
}

// RequestLogger logs one line per request.
func RequestLogger(log logr.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
		)
	}
}

package web

import (
	"github.com/gin-gonic/gin"
)

// CountdownModule mounts the JSON endpoints under /api.
func CountdownModule(s *Server) Module {
	return ModuleFunc(func(c *Controller) {
		c.GET("/state", s.getState)
		c.GET("/share", s.getShare)
	})
}

func HealthModule(s *Server) Module {
	return ModuleFunc(func(c *Controller) {
		c.GET("/healthz", s.getHealth)
	})
}

// GET /api/state
func (s *Server) getState(ctx *gin.Context) (any, *APIError) {
	return s.snapshot(s.opts.Clock.Now()), nil
}

// GET /api/share
func (s *Server) getShare(ctx *gin.Context) (any, *APIError) {
	return s.sharePayload(requestURL(ctx.Request)), nil
}

// GET /healthz
func (s *Server) getHealth(ctx *gin.Context) (any, *APIError) {
	return gin.H{"status": "ok", "version": s.opts.Version}, nil
}
